// Package chunker splits an uploaded envelope into self-contained envelope
// chunks small enough to import one at a time.
package chunker

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tigerroll/tamato/pkg/taric/batch"
	"github.com/tigerroll/tamato/pkg/taric/core/config"
	"github.com/tigerroll/tamato/pkg/taric/core/metrics"
	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
	"github.com/tigerroll/tamato/pkg/taric/tags"
)

var log = logger.For("chunker")

// Store receives chunks, and the issue raised for a batch that cannot be
// chunked.
type Store interface {
	CreateChunk(ctx context.Context, chunk *batch.ImporterXMLChunk) error
	AddIssues(ctx context.Context, batchID string, issues []domain.Issue) error
}

// Chunker writes chunks for a batch.
type Chunker struct {
	store    Store
	maxSize  int
	recorder metrics.Recorder
}

// New returns a chunker closing chunks once they grow past maxSize bytes.
// A non-positive maxSize uses config.DefaultMaxChunkSize.
func New(store Store, maxSize int, recorder metrics.Recorder) *Chunker {
	if maxSize <= 0 {
		maxSize = config.DefaultMaxChunkSize
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Chunker{store: store, maxSize: maxSize, recorder: recorder}
}

// chunk is an envelope being written.
type chunk struct {
	b            strings.Builder
	transactions int
}

func (c *chunk) open(envelopeID string) {
	c.b.WriteString(tags.XMLHeader)
	c.b.WriteString(tags.EnvelopeStart(envelopeID))
}

func (c *chunk) add(txn string) {
	c.b.WriteString(txn)
	c.transactions++
}

func (c *chunk) close() string {
	c.b.WriteString(tags.EnvelopeEnd())
	return c.b.String()
}

// ChunkTaric streams r and writes every transaction that has a record in
// recordGroup into the batch's chunks, in document order. An empty
// recordGroup keeps everything. It returns how many chunks were written;
// zero means the envelope held nothing of interest.
func (c *Chunker) ChunkTaric(ctx context.Context, r io.Reader, b *batch.ImportBatch, recordGroup []string) (int, error) {
	if b.SplitJob {
		return 0, c.rejectSplitJob(ctx, b)
	}

	var (
		envelopeID string
		current    *chunk
		written    int
	)
	flush := func() error {
		written++
		text := current.close()
		if err := c.store.CreateChunk(ctx, &batch.ImporterXMLChunk{
			BatchID:     b.ID,
			ChunkNumber: written,
			ChunkText:   text,
			Status:      batch.ChunkWaiting,
		}); err != nil {
			return err
		}
		log.Debugf("batch %s: chunk %d, %d transactions, %d bytes", b.Name, written, current.transactions, len(text))
		current = nil
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
			if current == nil {
				current = &chunk{}
				current.open(envelopeID)
			}
			current.add(tags.EncodeString(txn))
			if current.b.Len() > c.maxSize {
				return flush()
			}
			return nil
		},
	})
	if err != nil {
		return written, fmt.Errorf("chunk batch %s: %w", b.Name, err)
	}
	if current != nil {
		if err := flush(); err != nil {
			return written, err
		}
	}

	c.recorder.RecordChunks(b.Name, written)
	log.Infof("batch %s: wrote %d chunks", b.Name, written)
	return written, nil
}

func (c *Chunker) rejectSplitJob(ctx context.Context, b *batch.ImportBatch) error {
	err := exception.NewImportErrorf("chunker", "batch %s is a split job", b.Name, exception.ErrSplitJobUnsupported)
	issue := domain.Issue{
		ObjectType:   "import.batch",
		IdentityKeys: map[string]string{"batch": b.Name},
		Description:  err.Error(),
		Severity:     domain.SeverityError,
	}
	if storeErr := c.store.AddIssues(ctx, b.ID, []domain.Issue{issue}); storeErr != nil {
		log.Errorf("batch %s: recording split job issue: %v", b.Name, storeErr)
	}
	return err
}

// recordFilter drops records outside an allow-list of
// record_code+subrecord_code values.
type recordFilter struct {
	allowed map[string]bool
}

func newRecordFilter(group []string) recordFilter {
	f := recordFilter{}
	if len(group) > 0 {
		f.allowed = make(map[string]bool, len(group))
		for _, code := range group {
			f.allowed[code] = true
		}
	}
	return f
}

// apply removes unwanted records from txn, then any app.message left
// without a record. It reports whether anything remains.
func (f recordFilter) apply(txn *tags.Element) bool {
	if f.allowed != nil {
		txn.RemoveChildren(func(msg *tags.Element) bool {
			if !tags.Schema.AppMessage.Matches(msg.XMLName) {
				return false
			}
			for _, transmission := range msg.Iter(tags.Schema.Transmission) {
				transmission.RemoveChildren(func(rec *tags.Element) bool {
					return tags.Schema.Record.Matches(rec.XMLName) && !f.allowed[recordCode(rec)]
				})
			}
			return len(msg.FindAll(tags.Schema.Record)) == 0
		})
	}
	return len(txn.FindAll(tags.Schema.Record)) > 0
}

func recordCode(rec *tags.Element) string {
	return rec.ChildText(tags.Schema.RecordCode) + rec.ChildText(tags.Schema.SubrecordCode)
}

func attr(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
