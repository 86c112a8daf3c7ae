package orchestration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/tamato/pkg/taric/batch"
	"github.com/tigerroll/tamato/pkg/taric/storage"
)

// Scheduler claims the chunks that may run next and hands them to a pool.
// It keeps no state between calls beyond what the store holds; a finished
// chunk triggers the next scheduling pass.
type Scheduler struct {
	store       Store
	workbaskets storage.Workbaskets
	lifecycle   *Lifecycle
	runner      Runner
	pool        *Pool

	// wbMu serialises workbasket creation for batches that have none yet.
	wbMu sync.Mutex
}

// NewScheduler returns a scheduler.
func NewScheduler(store Store, workbaskets storage.Workbaskets, lifecycle *Lifecycle, runner Runner, pool *Pool) *Scheduler {
	return &Scheduler{store: store, workbaskets: workbaskets, lifecycle: lifecycle, runner: runner, pool: pool}
}

// ScheduleAll schedules every IMPORTING batch. It is how a restarted
// process picks up where it stopped.
func (s *Scheduler) ScheduleAll(ctx context.Context) error {
	batches, err := s.store.BatchesByStatus(ctx, batch.StatusImporting)
	if err != nil {
		return err
	}
	var result *multierror.Error
	for _, b := range batches {
		if err := s.Schedule(ctx, b.ID); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Schedule claims whatever chunks of batchID may run now and submits them.
// A batch whose dependencies are unfinished, or that has nothing left to
// claim, is left alone; a batch with nothing open is settled.
func (s *Scheduler) Schedule(ctx context.Context, batchID string) error {
	b, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if b.Finished() {
		return nil
	}

	blocked, err := s.Blocked(ctx, b)
	if err != nil {
		return err
	}
	if blocked {
		log.Infof("batch %s waits for its dependencies", b.Name)
		return nil
	}
	if err := s.ensureWorkbasket(ctx, b); err != nil {
		return err
	}

	var claimed []*batch.ImporterXMLChunk
	if b.SplitJob {
		claimed, err = s.claimSplit(ctx, b)
	} else {
		claimed, err = s.claimNext(ctx, b)
	}
	if err != nil {
		return err
	}

	if len(claimed) == 0 {
		status, err := s.lifecycle.Settle(ctx, b.ID)
		if err != nil {
			return err
		}
		if status == batch.StatusSucceeded {
			return s.scheduleDependents(ctx, b)
		}
		return nil
	}

	for _, c := range claimed {
		c := c
		s.pool.Submit(fmt.Sprintf("%s#%d", b.Name, c.ChunkNumber), func(ctx context.Context) error {
			return s.process(ctx, b, c)
		})
	}
	return nil
}

// Blocked reports whether any batch b depends on still has WAITING,
// RUNNING or ERRORED chunks.
func (s *Scheduler) Blocked(ctx context.Context, b *batch.ImportBatch) (bool, error) {
	deps, err := s.store.Dependencies(ctx, b.ID)
	if err != nil {
		return false, err
	}
	for _, dep := range deps {
		n, err := s.store.CountChunks(ctx, dep.ID, batch.ChunkWaiting, batch.ChunkRunning, batch.ChunkErrored)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Retry returns an ERRORED chunk to WAITING and schedules its batch.
func (s *Scheduler) Retry(ctx context.Context, chunkID string) error {
	if err := s.store.ResetChunk(ctx, chunkID); err != nil {
		return err
	}
	c, err := s.store.GetChunk(ctx, chunkID)
	if err != nil {
		return err
	}
	log.Infof("chunk %d of batch %s reset for another run", c.ChunkNumber, c.BatchID)
	return s.Schedule(ctx, c.BatchID)
}

// Abandon marks every WAITING chunk of batchID ERRORED and settles the
// batch, which then fails once no chunk is running.
func (s *Scheduler) Abandon(ctx context.Context, batchID string) (string, error) {
	waiting, err := s.store.Chunks(ctx, batchID, batch.ChunkWaiting)
	if err != nil {
		return "", err
	}
	for _, c := range waiting {
		if err := s.store.ForceErrorChunk(ctx, c.ID); err != nil {
			return "", err
		}
		s.lifecycle.recorder.RecordChunkStatus(batch.ChunkErrored)
	}
	log.Warnf("batch %s abandoned, %d chunks marked errored", batchID, len(waiting))
	return s.lifecycle.Settle(ctx, batchID)
}

func (s *Scheduler) process(ctx context.Context, b *batch.ImportBatch, c *batch.ImporterXMLChunk) error {
	var result *multierror.Error
	status, err := s.runner.RunChunk(ctx, b, c)
	if err != nil {
		status = batch.ChunkErrored
		result = multierror.Append(result, err)
	}

	// The outcome is recorded even when ctx was cancelled mid-run.
	final, err := s.lifecycle.CompleteChunk(context.WithoutCancel(ctx), c, status)
	if err != nil {
		return multierror.Append(result, err).ErrorOrNil()
	}

	switch {
	case ctx.Err() != nil:
	case final == batch.StatusImporting:
		err = s.Schedule(ctx, b.ID)
	case final == batch.StatusSucceeded:
		err = s.scheduleDependents(ctx, b)
	}
	if err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (s *Scheduler) scheduleDependents(ctx context.Context, b *batch.ImportBatch) error {
	dependents, err := s.store.Dependents(ctx, b.ID)
	if err != nil {
		return err
	}
	var result *multierror.Error
	for _, d := range dependents {
		if err := s.Schedule(ctx, d.ID); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// claimNext claims the lowest-numbered WAITING chunk of a batch whose
// chunks run strictly one after another. Nothing is claimed while a chunk
// is RUNNING or ERRORED.
func (s *Scheduler) claimNext(ctx context.Context, b *batch.ImportBatch) ([]*batch.ImporterXMLChunk, error) {
	chunks, err := s.store.Chunks(ctx, b.ID, batch.ChunkWaiting, batch.ChunkRunning, batch.ChunkErrored)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if c.Status != batch.ChunkWaiting {
			return nil, nil
		}
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	return s.claim(ctx, &chunks[0])
}

// claimSplit claims, for every unblocked record code, the lowest-numbered
// WAITING chunk of each idle scope.
func (s *Scheduler) claimSplit(ctx context.Context, b *batch.ImportBatch) ([]*batch.ImporterXMLChunk, error) {
	chunks, err := s.store.Chunks(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	type scope struct{ recordCode, chapter string }
	pendingCodes := map[string]bool{}
	busy := map[scope]bool{}
	next := map[scope]*batch.ImporterXMLChunk{}
	for i := range chunks {
		c := &chunks[i]
		sc := scope{deref(c.RecordCode), deref(c.Chapter)}
		switch c.Status {
		case batch.ChunkDone:
			continue
		case batch.ChunkWaiting:
			if cur, ok := next[sc]; !ok || c.ChunkNumber < cur.ChunkNumber {
				next[sc] = c
			}
		default:
			busy[sc] = true
		}
		pendingCodes[sc.recordCode] = true
	}

	pending := make([]string, 0, len(pendingCodes))
	for code := range pendingCodes {
		pending = append(pending, code)
	}
	unblocked := map[string]bool{}
	for _, code := range UnblockedRecordCodes(pending) {
		unblocked[code] = true
	}

	scopes := make([]scope, 0, len(next))
	for sc := range next {
		if unblocked[sc.recordCode] && !busy[sc] {
			scopes = append(scopes, sc)
		}
	}
	sort.Slice(scopes, func(i, j int) bool {
		if scopes[i].recordCode != scopes[j].recordCode {
			return scopes[i].recordCode < scopes[j].recordCode
		}
		return scopes[i].chapter < scopes[j].chapter
	})

	var out []*batch.ImporterXMLChunk
	for _, sc := range scopes {
		got, err := s.claim(ctx, next[sc])
		if err != nil {
			return out, err
		}
		out = append(out, got...)
	}
	return out, nil
}

func (s *Scheduler) claim(ctx context.Context, c *batch.ImporterXMLChunk) ([]*batch.ImporterXMLChunk, error) {
	if err := s.store.ClaimChunk(ctx, c); err != nil {
		if batch.IsNotClaimed(err) {
			return nil, nil
		}
		return nil, err
	}
	s.lifecycle.recorder.RecordChunkStatus(batch.ChunkRunning)
	return []*batch.ImporterXMLChunk{c}, nil
}

func (s *Scheduler) ensureWorkbasket(ctx context.Context, b *batch.ImportBatch) error {
	if b.WorkbasketID != nil {
		return nil
	}
	s.wbMu.Lock()
	defer s.wbMu.Unlock()

	current, err := s.store.GetBatch(ctx, b.ID)
	if err != nil {
		return err
	}
	if current.WorkbasketID != nil {
		b.WorkbasketID = current.WorkbasketID
		return nil
	}
	wb, err := s.workbaskets.CreateWorkbasket(ctx, b.Name, b.Author)
	if err != nil {
		return err
	}
	if err := s.store.SetBatchWorkbasket(ctx, b.ID, wb.ID); err != nil {
		return err
	}
	b.WorkbasketID = &wb.ID
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
