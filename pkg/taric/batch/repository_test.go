package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/storage"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
	"github.com/tigerroll/tamato/pkg/taric/test"
)

func strPtr(s string) *string { return &s }

func TestBatchLifecycle(t *testing.T) {
	ctx := context.Background()
	db := test.NewSQLiteDB(t)
	repo := NewRepository(db)

	seed, err := repo.CreateBatch(ctx, "seed.xml", "tester", false)
	require.NoError(t, err)
	delta, err := repo.CreateBatch(ctx, "delta.xml", "tester", false, seed.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusImporting, delta.Status)

	deps, err := repo.Dependencies(ctx, delta.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, seed.ID, deps[0].ID)

	dependents, err := repo.Dependents(ctx, seed.ID)
	require.NoError(t, err)
	require.Len(t, dependents, 1)
	assert.Equal(t, delta.ID, dependents[0].ID)

	wb, err := storage.NewStore(db).CreateWorkbasket(ctx, "seed", "tester")
	require.NoError(t, err)
	require.NoError(t, repo.SetBatchWorkbasket(ctx, seed.ID, wb.ID))

	require.NoError(t, repo.FinishBatch(ctx, seed.ID, StatusSucceeded))
	got, err := repo.GetBatch(ctx, seed.ID)
	require.NoError(t, err)
	assert.True(t, got.Finished())
	require.NotNil(t, got.WorkbasketID)
	assert.Equal(t, wb.ID, *got.WorkbasketID)

	err = repo.FinishBatch(ctx, seed.ID, StatusFailed)
	assert.True(t, errors.Is(err, exception.ErrBatchFinished))
	assert.Error(t, repo.FinishBatch(ctx, delta.ID, StatusImporting))

	importing, err := repo.BatchesByStatus(ctx, StatusImporting)
	require.NoError(t, err)
	require.Len(t, importing, 1)
	assert.Equal(t, delta.ID, importing[0].ID)
}

func TestChunkStateMachine(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(test.NewSQLiteDB(t))
	b, err := repo.CreateBatch(ctx, "chunks.xml", "tester", false)
	require.NoError(t, err)

	first := &ImporterXMLChunk{BatchID: b.ID, ChunkNumber: 1, ChunkText: "<a/>"}
	second := &ImporterXMLChunk{BatchID: b.ID, ChunkNumber: 2, ChunkText: "<b/>"}
	require.NoError(t, repo.CreateChunk(ctx, second))
	require.NoError(t, repo.CreateChunk(ctx, first))

	waiting, err := repo.Chunks(ctx, b.ID, ChunkWaiting)
	require.NoError(t, err)
	require.Len(t, waiting, 2)
	assert.Equal(t, 1, waiting[0].ChunkNumber)

	require.NoError(t, repo.ClaimChunk(ctx, first))
	assert.Equal(t, ChunkRunning, first.Status)

	// Only one chunk of a scope runs at a time.
	err = repo.ClaimChunk(ctx, second)
	assert.True(t, IsNotClaimed(err))
	// A chunk can be claimed once.
	assert.True(t, IsNotClaimed(repo.ClaimChunk(ctx, first)))

	require.NoError(t, repo.FinishChunk(ctx, first.ID, ChunkErrored))
	assert.Error(t, repo.FinishChunk(ctx, first.ID, ChunkDone))

	n, err := repo.CountChunks(ctx, b.ID, ChunkWaiting, ChunkRunning)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.ResetChunk(ctx, first.ID))
	reset, err := repo.GetChunk(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, ChunkWaiting, reset.Status)
	assert.Error(t, repo.ResetChunk(ctx, first.ID))

	require.NoError(t, repo.ForceErrorChunk(ctx, second.ID))
	total, err := repo.CountChunks(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestClaimScopesBySplitKey(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(test.NewSQLiteDB(t))
	b, err := repo.CreateBatch(ctx, "split.xml", "tester", true)
	require.NoError(t, err)

	ch01 := &ImporterXMLChunk{BatchID: b.ID, RecordCode: strPtr("400"), Chapter: strPtr("01"), ChunkNumber: 1, ChunkText: "x"}
	ch02 := &ImporterXMLChunk{BatchID: b.ID, RecordCode: strPtr("400"), Chapter: strPtr("02"), ChunkNumber: 1, ChunkText: "y"}
	ch01b := &ImporterXMLChunk{BatchID: b.ID, RecordCode: strPtr("400"), Chapter: strPtr("01"), ChunkNumber: 2, ChunkText: "z"}
	for _, c := range []*ImporterXMLChunk{ch01, ch02, ch01b} {
		require.NoError(t, repo.CreateChunk(ctx, c))
	}

	require.NoError(t, repo.ClaimChunk(ctx, ch01))
	require.NoError(t, repo.ClaimChunk(ctx, ch02))
	assert.True(t, IsNotClaimed(repo.ClaimChunk(ctx, ch01b)))
}

func TestIssuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(test.NewSQLiteDB(t))
	b, err := repo.CreateBatch(ctx, "issues.xml", "tester", false)
	require.NoError(t, err)

	require.NoError(t, repo.AddIssues(ctx, b.ID, nil))
	require.NoError(t, repo.AddIssues(ctx, b.ID, []domain.Issue{
		{
			ObjectType:        "quota.definition",
			RelatedObjectType: "quota.order.number",
			IdentityKeys:      map[string]string{"sid": "99"},
			Description:       "No matches for possible related taric object",
			Severity:          domain.SeverityError,
			UpdateType:        domain.UpdateTypeCreate,
			TransactionID:     "1",
		},
		{ObjectType: "footnote", Description: "lone delete", Severity: domain.SeverityWarning},
	}))

	errs, err := repo.Issues(ctx, b.ID, domain.SeverityError)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "99", errs[0].IdentityKeys["sid"])
	assert.Equal(t, domain.UpdateTypeCreate, errs[0].UpdateType)
	assert.Equal(t, "quota.order.number", errs[0].RelatedObjectType)

	all, err := repo.Issues(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
