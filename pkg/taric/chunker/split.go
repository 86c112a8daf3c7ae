package chunker

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/tigerroll/tamato/pkg/taric/batch"
	"github.com/tigerroll/tamato/pkg/taric/tags"
)

// commodityRecordCode is split further by chapter.
const commodityRecordCode = "400"

var itemIDTag = tags.Msg("goods.nomenclature.item.id")

// splitKey scopes the chunks of a split job.
type splitKey struct {
	recordCode string
	chapter    string
}

// SplitTaric is the chunker for split-job batches. Each transaction goes to
// the chunk series of its first record's record code; commodity records
// are further separated by the chapter of their item id. Every series is
// numbered from 1 and runs independently of the others.
func (c *Chunker) SplitTaric(ctx context.Context, r io.Reader, b *batch.ImportBatch, recordGroup []string) (int, error) {
	var envelopeID string
	open := map[splitKey]*chunk{}
	numbers := map[splitKey]int{}
	written := 0

	flush := func(k splitKey) error {
		numbers[k]++
		text := open[k].close()
		delete(open, k)
		rc, chapter := k.recordCode, k.chapter
		ch := &batch.ImporterXMLChunk{
			BatchID:     b.ID,
			RecordCode:  &rc,
			ChunkNumber: numbers[k],
			ChunkText:   text,
			Status:      batch.ChunkWaiting,
		}
		if chapter != "" {
			ch.Chapter = &chapter
		}
		if err := c.store.CreateChunk(ctx, ch); err != nil {
			return err
		}
		written++
		return nil
	}

	filter := newRecordFilter(recordGroup)
	err := tags.Stream(r, tags.Schema.Transaction, tags.StreamHandler{
		Open: func(start xml.StartElement) error {
			if tags.Schema.Envelope.Matches(start.Name) {
				envelopeID = attr(start, "id")
			}
			return nil
		},
		Element: func(txn *tags.Element) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !filter.apply(txn) {
				return nil
			}
			k := keyOf(txn)
			cur := open[k]
			if cur == nil {
				cur = &chunk{}
				cur.open(envelopeID)
				open[k] = cur
			}
			cur.add(tags.EncodeString(txn))
			if cur.b.Len() > c.maxSize {
				return flush(k)
			}
			return nil
		},
	})
	if err != nil {
		return written, fmt.Errorf("split batch %s: %w", b.Name, err)
	}

	keys := make([]splitKey, 0, len(open))
	for k := range open {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].recordCode != keys[j].recordCode {
			return keys[i].recordCode < keys[j].recordCode
		}
		return keys[i].chapter < keys[j].chapter
	})
	for _, k := range keys {
		if err := flush(k); err != nil {
			return written, err
		}
	}

	c.recorder.RecordChunks(b.Name, written)
	log.Infof("batch %s: split into %d chunks over %d series", b.Name, written, len(numbers))
	return written, nil
}

func keyOf(txn *tags.Element) splitKey {
	rec := txn.Find(tags.Schema.Record)
	if rec == nil {
		return splitKey{}
	}
	k := splitKey{recordCode: rec.ChildText(tags.Schema.RecordCode)}
	if k.recordCode == commodityRecordCode {
		if item := rec.Find(itemIDTag); item != nil && len(item.Value()) >= 2 {
			k.chapter = item.Value()[:2]
		}
	}
	return k
}
