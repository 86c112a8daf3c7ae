package orchestration

import (
	"context"

	"github.com/tigerroll/tamato/pkg/taric/batch"
	"github.com/tigerroll/tamato/pkg/taric/importer"
)

// Runner imports one claimed chunk and reports the chunk status it earned.
type Runner interface {
	RunChunk(ctx context.Context, b *batch.ImportBatch, chunk *batch.ImporterXMLChunk) (string, error)
}

// ImportRunner runs chunks through the importer pipeline.
type ImportRunner struct {
	deps importer.Deps
}

// NewImportRunner returns a runner using deps for every chunk.
func NewImportRunner(deps importer.Deps) *ImportRunner {
	return &ImportRunner{deps: deps}
}

// RunChunk implements Runner. A chunk with ERROR issues is ERRORED; its
// issues are already stored against the batch.
func (r *ImportRunner) RunChunk(ctx context.Context, b *batch.ImportBatch, chunk *batch.ImporterXMLChunk) (string, error) {
	imp, err := importer.Run(ctx, r.deps, importer.Params{
		Batch:     b,
		XMLString: chunk.ChunkText,
	})
	if err != nil {
		return batch.ChunkErrored, err
	}
	if imp.Status() == importer.StatusFailed {
		return batch.ChunkErrored, nil
	}
	return batch.ChunkDone, nil
}
