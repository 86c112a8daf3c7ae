package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/test"
)

func newStore(t *testing.T) *Store {
	return NewStore(test.NewSQLiteDB(t))
}

func TestCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	wb, err := s.CreateWorkbasket(ctx, "seed", "tester")
	require.NoError(t, err)
	txn, err := s.CreateTransaction(ctx, wb.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), txn.Sequence)

	_, err = s.Create(ctx, txn, "QuotaOrderNumber", "sid=9", map[string]string{"sid": "9", "order_number": "091234"})
	require.NoError(t, err)

	own := View{WorkbasketID: wb.ID}
	found, err := s.LatestApproved(ctx, Query{Model: "QuotaOrderNumber", IdentityKey: "sid=9"}, own)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "091234", found[0].Attributes["order_number"])
	assert.Equal(t, domain.UpdateTypeCreate, found[0].UpdateType)

	byAttr, err := s.LatestApproved(ctx, Query{Model: "QuotaOrderNumber", Attrs: map[string]string{"order_number": "091234"}}, own)
	require.NoError(t, err)
	assert.Len(t, byAttr, 1)

	// Another workbasket does not see unpublished changes.
	other, err := s.LatestApproved(ctx, Query{Model: "QuotaOrderNumber", IdentityKey: "sid=9"}, View{WorkbasketID: "other"})
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.SetWorkbasketStatus(ctx, wb.ID, WorkbasketPublished))
	other, err = s.LatestApproved(ctx, Query{Model: "QuotaOrderNumber", IdentityKey: "sid=9"}, View{WorkbasketID: "other"})
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestVersionsAndDeletion(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	wb, err := s.CreateWorkbasket(ctx, "changes", "tester")
	require.NoError(t, err)
	view := View{WorkbasketID: wb.ID}

	t1, _ := s.CreateTransaction(ctx, wb.ID, "1")
	rec, err := s.Create(ctx, t1, "Footnote", "footnote_type__footnote_type_id=TN;footnote_id=001", map[string]string{"footnote_id": "001", "valid_between": "2021-01-01/"})
	require.NoError(t, err)

	_, err = s.Create(ctx, t1, "Footnote", rec.IdentityKey, map[string]string{})
	assert.True(t, errors.Is(err, ErrIntegrityViolation))

	t2, _ := s.CreateTransaction(ctx, wb.ID, "2")
	assert.Equal(t, int64(2), t2.Sequence)
	updated, err := s.NewVersion(ctx, rec, t2, map[string]string{"valid_between": "2021-01-01/2021-06-30"}, false)
	require.NoError(t, err)
	assert.Equal(t, "001", updated.Attributes["footnote_id"])
	assert.Equal(t, rec.VersionGroupID, updated.VersionGroupID)

	// Visibility up to the first transaction still shows the original.
	first := int64(1)
	found, err := s.LatestApproved(ctx, Query{Model: "Footnote", IdentityKey: rec.IdentityKey}, View{WorkbasketID: wb.ID, UpToSequence: &first})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2021-01-01/", found[0].Attributes["valid_between"])

	t3, _ := s.CreateTransaction(ctx, wb.ID, "3")
	_, err = s.NewVersion(ctx, updated, t3, nil, true)
	require.NoError(t, err)
	found, err = s.LatestApproved(ctx, Query{Model: "Footnote", IdentityKey: rec.IdentityKey}, view)
	require.NoError(t, err)
	assert.Empty(t, found)

	// A deleted identity may be created again.
	t4, _ := s.CreateTransaction(ctx, wb.ID, "4")
	revived, err := s.Create(ctx, t4, "Footnote", rec.IdentityKey, map[string]string{"footnote_id": "001"})
	require.NoError(t, err)
	assert.Equal(t, rec.VersionGroupID, revived.VersionGroupID)
}

func TestClearWorkbasket(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	published, _ := s.CreateWorkbasket(ctx, "base", "tester")
	p1, _ := s.CreateTransaction(ctx, published.ID, "1")
	base, err := s.Create(ctx, p1, "FootnoteType", "footnote_type_id=TN", map[string]string{"footnote_type_id": "TN"})
	require.NoError(t, err)
	require.NoError(t, s.SetWorkbasketStatus(ctx, published.ID, WorkbasketPublished))

	draft, _ := s.CreateWorkbasket(ctx, "draft", "tester")
	empty, err := s.IsWorkbasketEmpty(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, empty)

	d1, _ := s.CreateTransaction(ctx, draft.ID, "1")
	_, err = s.NewVersion(ctx, base, d1, map[string]string{"application_code": "7"}, false)
	require.NoError(t, err)
	_, err = s.Create(ctx, d1, "FootnoteType", "footnote_type_id=PN", map[string]string{"footnote_type_id": "PN"})
	require.NoError(t, err)

	empty, err = s.IsWorkbasketEmpty(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, empty)

	require.NoError(t, s.ClearWorkbasket(ctx, draft.ID))

	empty, err = s.IsWorkbasketEmpty(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, empty)

	view := View{WorkbasketID: draft.ID}
	found, err := s.LatestApproved(ctx, Query{Model: "FootnoteType", IdentityKey: "footnote_type_id=TN"}, view)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, base.ID, found[0].ID)

	found, err = s.LatestApproved(ctx, Query{Model: "FootnoteType", IdentityKey: "footnote_type_id=PN"}, view)
	require.NoError(t, err)
	assert.Empty(t, found)

	// The cleared identity can be created afresh.
	d2, _ := s.CreateTransaction(ctx, draft.ID, "2")
	_, err = s.Create(ctx, d2, "FootnoteType", "footnote_type_id=PN", map[string]string{"footnote_type_id": "PN"})
	assert.NoError(t, err)
}
