package chunker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/tamato/pkg/taric/batch"
	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/parse"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
	"github.com/tigerroll/tamato/pkg/taric/tags"
	"github.com/tigerroll/tamato/pkg/taric/test"
)

type memoryStore struct {
	chunks []*batch.ImporterXMLChunk
	issues []domain.Issue
}

func (m *memoryStore) CreateChunk(_ context.Context, c *batch.ImporterXMLChunk) error {
	m.chunks = append(m.chunks, c)
	return nil
}

func (m *memoryStore) AddIssues(_ context.Context, _ string, issues []domain.Issue) error {
	m.issues = append(m.issues, issues...)
	return nil
}

func footnoteTypes(n int) [][]test.Record {
	out := make([][]test.Record, n)
	for i := range out {
		out[i] = []test.Record{test.FootnoteType(fmt.Sprintf("%02d", i))}
	}
	return out
}

func TestChunksStayWithinBound(t *testing.T) {
	const maxSize = 2048
	store := &memoryStore{}
	xml := test.Envelope("E1", footnoteTypes(40)...)

	n, err := New(store, maxSize, nil).ChunkTaric(context.Background(), strings.NewReader(xml), &batch.ImportBatch{ID: "b", Name: "big.xml"}, nil)
	require.NoError(t, err)
	require.Greater(t, n, 1)
	require.Len(t, store.chunks, n)

	// A chunk overshoots the bound by at most one encoded transaction.
	overhead := len(tags.EnvelopeEnd())
	largest := 0
	require.NoError(t, tags.Stream(strings.NewReader(xml), tags.Schema.Transaction, tags.StreamHandler{
		Element: func(e *tags.Element) error {
			largest = max(largest, len(tags.EncodeString(e)))
			return nil
		},
	}))
	overhead += largest

	var ids []string
	for i, c := range store.chunks {
		assert.Equal(t, i+1, c.ChunkNumber)
		assert.Equal(t, batch.ChunkWaiting, c.Status)
		assert.LessOrEqual(t, len(c.ChunkText), maxSize+overhead)
		assert.Contains(t, c.ChunkText, `id="E1"`)

		parsed, err := parse.Envelope(strings.NewReader(c.ChunkText))
		require.NoError(t, err)
		for _, p := range parsed {
			ids = append(ids, p.Messages[0].Object.Text("footnote_type_id"))
		}
	}
	require.Len(t, ids, 40)
	assert.Equal(t, "00", ids[0])
	assert.Equal(t, "39", ids[39])
}

func TestSmallEnvelopeIsOneChunk(t *testing.T) {
	store := &memoryStore{}
	n, err := New(store, 0, nil).ChunkTaric(context.Background(), strings.NewReader(test.Envelope("E2", footnoteTypes(3)...)), &batch.ImportBatch{ID: "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Nil(t, store.chunks[0].RecordCode)
}

func TestRecordGroupFiltering(t *testing.T) {
	store := &memoryStore{}
	xml := test.Envelope("E3",
		[]test.Record{test.AdditionalCodeType("5")},
		[]test.Record{test.FootnoteType("TN"), test.AdditionalCodeType("6")},
	)

	n, err := New(store, 0, nil).ChunkTaric(context.Background(), strings.NewReader(xml), &batch.ImportBatch{ID: "b"}, []string{"10000"})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	txns, err := parse.Envelope(strings.NewReader(store.chunks[0].ChunkText))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Len(t, txns[0].Messages, 1)
	assert.Equal(t, "footnote.type", txns[0].Messages[0].Object.Tag)
	assert.Equal(t, "2", txns[0].ID)
}

func TestNothingOfInterest(t *testing.T) {
	store := &memoryStore{}
	n, err := New(store, 0, nil).ChunkTaric(context.Background(), strings.NewReader(test.Envelope("E4", footnoteTypes(2)...)), &batch.ImportBatch{ID: "b"}, []string{"99999"})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.chunks)
}

func TestSplitJobIsRejected(t *testing.T) {
	store := &memoryStore{}
	_, err := New(store, 0, nil).ChunkTaric(context.Background(), strings.NewReader(test.Envelope("E5")), &batch.ImportBatch{ID: "b", Name: "split.xml", SplitJob: true}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrSplitJobUnsupported))
	assert.True(t, exception.IsFatal(err))
	require.Len(t, store.issues, 1)
	assert.Equal(t, domain.SeverityError, store.issues[0].Severity)
	assert.Empty(t, store.chunks)
}

func TestMalformedEnvelope(t *testing.T) {
	_, err := New(&memoryStore{}, 0, nil).ChunkTaric(context.Background(), strings.NewReader("<env:envelope><env:transaction>"), &batch.ImportBatch{ID: "b"}, nil)
	assert.Error(t, err)
}

func TestSplitTaricKeysByChapter(t *testing.T) {
	store := &memoryStore{}
	xml := test.Envelope("E6",
		[]test.Record{test.GoodsNomenclature("1", "0101000000")},
		[]test.Record{test.GoodsNomenclature("2", "0201000000")},
		[]test.Record{test.FootnoteType("TN")},
		[]test.Record{test.GoodsNomenclature("3", "0102000000")},
	)

	n, err := New(store, 0, nil).SplitTaric(context.Background(), strings.NewReader(xml), &batch.ImportBatch{ID: "b", SplitJob: true}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	got := map[string]int{}
	for _, c := range store.chunks {
		require.NotNil(t, c.RecordCode)
		key := *c.RecordCode
		if c.Chapter != nil {
			key += "/" + *c.Chapter
		}
		txns, err := parse.Envelope(strings.NewReader(c.ChunkText))
		require.NoError(t, err)
		got[key] = len(txns)
		assert.Equal(t, 1, c.ChunkNumber)
	}
	assert.Equal(t, map[string]int{"100": 1, "400/01": 2, "400/02": 1}, got)
}
