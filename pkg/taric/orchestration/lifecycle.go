// Package orchestration moves import batches and their chunks through
// their states: it decides which chunks may run, runs them on a worker
// pool and finishes batches once their chunks are settled.
package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/tigerroll/tamato/pkg/taric/batch"
	"github.com/tigerroll/tamato/pkg/taric/core/metrics"
	"github.com/tigerroll/tamato/pkg/taric/core/tx"
	"github.com/tigerroll/tamato/pkg/taric/storage"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

var log = logger.For("orchestration")

// Store is the batch and chunk persistence orchestration needs.
type Store interface {
	batch.Batches
	batch.Chunks
}

// Lifecycle records chunk outcomes and finishes batches.
type Lifecycle struct {
	store       Store
	workbaskets storage.Workbaskets
	tm          tx.TransactionManager
	recorder    metrics.Recorder
}

// NewLifecycle returns a lifecycle. A nil recorder discards measurements.
func NewLifecycle(store Store, workbaskets storage.Workbaskets, tm tx.TransactionManager, recorder metrics.Recorder) *Lifecycle {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Lifecycle{store: store, workbaskets: workbaskets, tm: tm, recorder: recorder}
}

// CompleteChunk moves a RUNNING chunk to status (DONE or ERRORED) and
// settles its batch. It returns the batch status afterwards.
func (l *Lifecycle) CompleteChunk(ctx context.Context, chunk *batch.ImporterXMLChunk, status string) (string, error) {
	if err := l.store.FinishChunk(ctx, chunk.ID, status); err != nil {
		return "", err
	}
	chunk.Status = status
	l.recorder.RecordChunkStatus(status)
	log.Infof("chunk %d of batch %s: %s", chunk.ChunkNumber, chunk.BatchID, status)
	return l.Settle(ctx, chunk.BatchID)
}

// Settle finishes batchID when none of its chunks is WAITING or RUNNING:
// FAILED when any chunk ERRORED, SUCCEEDED otherwise. A failed batch has
// its workbasket cleared and, while still EDITING, archived. A succeeded
// batch whose workbasket holds nothing has it archived. Settle returns the
// batch status afterwards; IMPORTING means chunks are still open.
func (l *Lifecycle) Settle(ctx context.Context, batchID string) (string, error) {
	b, err := l.store.GetBatch(ctx, batchID)
	if err != nil {
		return "", err
	}
	if b.Finished() {
		return b.Status, nil
	}

	open, err := l.store.CountChunks(ctx, batchID, batch.ChunkWaiting, batch.ChunkRunning)
	if err != nil {
		return "", err
	}
	if open > 0 {
		return batch.StatusImporting, nil
	}
	errored, err := l.store.CountChunks(ctx, batchID, batch.ChunkErrored)
	if err != nil {
		return "", err
	}
	status := batch.StatusSucceeded
	if errored > 0 {
		status = batch.StatusFailed
	}

	if err := l.finish(ctx, b, status); err != nil {
		if errors.Is(err, exception.ErrBatchFinished) {
			// Another worker settled it first.
			current, getErr := l.store.GetBatch(ctx, batchID)
			if getErr != nil {
				return "", getErr
			}
			return current.Status, nil
		}
		return "", err
	}
	l.recorder.RecordBatchStatus(status)
	log.Infof("batch %s: %s (%d errored chunks)", b.Name, status, errored)
	return status, nil
}

func (l *Lifecycle) finish(ctx context.Context, b *batch.ImportBatch, status string) (err error) {
	t, err := l.tm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("finish batch %s: %w", b.Name, err)
	}
	defer func() {
		if err != nil {
			if rbErr := l.tm.Rollback(t); rbErr != nil {
				log.Errorf("batch %s: rollback: %v", b.Name, rbErr)
			}
		}
	}()
	txCtx := tx.WithTx(ctx, t)

	if err = l.store.FinishBatch(txCtx, b.ID, status); err != nil {
		return err
	}
	if b.WorkbasketID != nil {
		if err = l.settleWorkbasket(txCtx, *b.WorkbasketID, status); err != nil {
			return fmt.Errorf("finish batch %s: %w", b.Name, err)
		}
	}
	return l.tm.Commit(t)
}

func (l *Lifecycle) settleWorkbasket(ctx context.Context, id, status string) error {
	if status == batch.StatusFailed {
		if err := l.workbaskets.ClearWorkbasket(ctx, id); err != nil {
			return err
		}
		wb, err := l.workbaskets.GetWorkbasket(ctx, id)
		if err != nil {
			return err
		}
		if wb.Status != storage.WorkbasketEditing {
			return nil
		}
		return l.workbaskets.SetWorkbasketStatus(ctx, id, storage.WorkbasketArchived)
	}

	empty, err := l.workbaskets.IsWorkbasketEmpty(ctx, id)
	if err != nil || !empty {
		return err
	}
	return l.workbaskets.SetWorkbasketStatus(ctx, id, storage.WorkbasketArchived)
}
