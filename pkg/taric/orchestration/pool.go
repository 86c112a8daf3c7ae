package orchestration

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when a non-positive worker count is given.
const DefaultWorkers = 4

// Pool runs chunk tasks on a bounded number of goroutines. A failing task
// does not stop the others; failures are collected and returned by Drain.
// Tasks may submit further tasks.
type Pool struct {
	ctx     context.Context
	g       errgroup.Group
	pending sync.WaitGroup

	mu   sync.Mutex
	errs *multierror.Error
}

// NewPool returns a pool running at most workers tasks at once. Tasks
// receive ctx.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p := &Pool{ctx: ctx}
	p.g.SetLimit(workers)
	return p
}

// Submit queues task. It never blocks: the task waits for a free worker on
// its own goroutine.
func (p *Pool) Submit(name string, task func(ctx context.Context) error) {
	p.pending.Add(1)
	go p.g.Go(func() error {
		defer p.pending.Done()
		if err := task(p.ctx); err != nil {
			log.Errorf("task %s: %v", name, err)
			p.mu.Lock()
			p.errs = multierror.Append(p.errs, fmt.Errorf("%s: %w", name, err))
			p.mu.Unlock()
		}
		return nil
	})
}

// Drain waits until every submitted task, including those submitted while
// draining, has finished, and returns their aggregated failures.
func (p *Pool) Drain() error {
	p.pending.Wait()
	_ = p.g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.errs.ErrorOrNil()
	p.errs = nil
	return err
}
