// Package commit applies validated transactions to storage inside a single
// database transaction.
package commit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tigerroll/tamato/pkg/taric/core/metrics"
	"github.com/tigerroll/tamato/pkg/taric/core/tx"
	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/parse"
	"github.com/tigerroll/tamato/pkg/taric/parsers"
	"github.com/tigerroll/tamato/pkg/taric/storage"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

var log = logger.For("commit")

// Commit outcomes reported to metrics.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
)

// Engine writes parsed transactions to storage.
type Engine struct {
	tm          tx.TransactionManager
	records     storage.Records
	workbaskets storage.Workbaskets
	recorder    metrics.Recorder
}

// NewEngine returns an engine. A nil recorder discards measurements.
func NewEngine(tm tx.TransactionManager, records storage.Records, workbaskets storage.Workbaskets, recorder metrics.Recorder) *Engine {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Engine{tm: tm, records: records, workbaskets: workbaskets, recorder: recorder}
}

// CanSave reports whether no ERROR issue exists in txns.
func CanSave(txns []*parse.ParsedTransaction) bool {
	for _, t := range txns {
		for _, m := range t.Messages {
			if m.Object.HasErrors() {
				return false
			}
		}
	}
	return true
}

// plan is the in-memory back-fill for one commit: child attributes merged
// onto in-import parents, and the children absorbed that way.
type plan struct {
	overlay  map[*parsers.TaricObject]map[string]string
	absorbed map[*parsers.TaricObject]bool
}

// backfill merges each child onto a parent in the same transaction when
// there is one, whatever either's update type. Other children are applied
// against their stored parent during dispatch.
func backfill(txns []*parse.ParsedTransaction) plan {
	p := plan{overlay: map[*parsers.TaricObject]map[string]string{}, absorbed: map[*parsers.TaricObject]bool{}}
	for _, t := range txns {
		for _, m := range t.Messages {
			child := m.Object
			if child.Def.Stub || !child.Def.IsChild() {
				continue
			}
			link := child.Def.Parent
			var parent *parsers.TaricObject
			for _, other := range t.Messages {
				if other.Object != child && link.Matches(child, other.Object) {
					parent = other.Object
				}
			}
			if parent == nil {
				continue
			}
			attrs := p.overlay[parent]
			if attrs == nil {
				attrs = map[string]string{}
				p.overlay[parent] = attrs
			}
			for k, v := range link.MergeAttributes(child) {
				attrs[k] = v
			}
			p.absorbed[child] = true
		}
	}
	return p
}

// Commit applies txns to the workbasket. It returns false, with nothing
// written, when any ERROR issue exists before or during the commit.
// Integrity violations are converted into issues on the offending object.
func (e *Engine) Commit(ctx context.Context, workbasketID string, txns []*parse.ParsedTransaction) (committed bool, err error) {
	if !CanSave(txns) {
		return false, nil
	}
	start := time.Now()
	p := backfill(txns)

	t, err := e.tm.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin commit: %w", err)
	}
	defer func() {
		outcome := OutcomeCommitted
		if !committed {
			outcome = OutcomeRolledBack
		}
		e.recorder.ObserveCommit(outcome, time.Since(start))
	}()
	txCtx := tx.WithTx(ctx, t)

	for _, pt := range txns {
		stxn, err := e.workbaskets.CreateTransaction(txCtx, workbasketID, pt.ID)
		if err != nil {
			e.rollback(t)
			return false, err
		}
		for n, m := range pt.Messages {
			obj := m.Object
			if !obj.Def.Persistable() || p.absorbed[obj] {
				continue
			}
			savepoint := fmt.Sprintf("msg_%d_%d", stxn.Sequence, n)
			if err := t.Savepoint(savepoint); err != nil {
				e.rollback(t)
				return false, fmt.Errorf("savepoint %s: %w", savepoint, err)
			}
			dispatchErr := e.dispatch(txCtx, stxn, obj, p.overlay[obj])
			if dispatchErr == nil {
				continue
			}
			if !errors.Is(dispatchErr, storage.ErrIntegrityViolation) {
				e.rollback(t)
				return false, dispatchErr
			}
			if err := t.RollbackToSavepoint(savepoint); err != nil {
				e.rollback(t)
				return false, fmt.Errorf("rollback to %s: %w", savepoint, err)
			}
			obj.AddIssue(domain.Issue{
				Description:       dispatchErr.Error(),
				RelatedObjectType: obj.Tag,
				IdentityKeys:      obj.IdentityFilter(),
				Severity:          domain.SeverityError,
			})
		}
	}

	if !CanSave(txns) {
		log.Warnf("workbasket %s: integrity errors during commit, rolling back", workbasketID)
		e.rollback(t)
		return false, nil
	}
	if err := e.tm.Commit(t); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	log.Infof("workbasket %s: committed %d transactions", workbasketID, len(txns))
	return true, nil
}

func (e *Engine) rollback(t tx.Tx) {
	if err := e.tm.Rollback(t); err != nil {
		log.Errorf("rollback failed: %v", err)
	}
}

func (e *Engine) dispatch(ctx context.Context, stxn *storage.Transaction, obj *parsers.TaricObject, overlay map[string]string) error {
	if obj.Def.IsChild() {
		return e.dispatchChild(ctx, stxn, obj)
	}

	attrs := obj.Attributes()
	for k, v := range overlay {
		attrs[k] = v
	}
	if obj.UpdateType == domain.UpdateTypeCreate {
		_, err := e.records.Create(ctx, stxn, obj.Def.Model, obj.IdentityKey(), attrs)
		return err
	}

	current, err := e.current(ctx, stxn, storage.Query{Model: obj.Def.Model, IdentityKey: obj.IdentityKey()})
	if err != nil {
		return err
	}
	_, err = e.records.NewVersion(ctx, current, stxn, attrs, obj.UpdateType == domain.UpdateTypeDelete)
	return err
}

// dispatchChild applies a child with no parent in its transaction to the
// stored parent. A lone child delete leaves the parent untouched.
func (e *Engine) dispatchChild(ctx context.Context, stxn *storage.Transaction, obj *parsers.TaricObject) error {
	link := obj.Def.Parent
	if obj.UpdateType == domain.UpdateTypeDelete {
		obj.AddIssue(domain.Issue{
			Description:       fmt.Sprintf("Deleting %s on its own has no effect on %s", obj.Tag, link.Tag),
			RelatedObjectType: link.Tag,
			IdentityKeys:      link.ParentKeys(obj),
			Severity:          domain.SeverityWarning,
		})
		return nil
	}

	parentDef, ok := parsers.ByTag(link.Tag)
	if !ok {
		return fmt.Errorf("parent tag %s is not registered", link.Tag)
	}
	keys := link.ParentKeys(obj)
	q := storage.Query{Model: link.Model}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	if parentDef.HasIdentity(names) {
		q.IdentityKey = parsers.IdentityKey(parentDef.Identity, keys)
	} else {
		q.Attrs = keys
	}
	current, err := e.current(ctx, stxn, q)
	if err != nil {
		return err
	}
	_, err = e.records.NewVersion(ctx, current, stxn, link.MergeAttributes(obj), false)
	return err
}

// current returns the latest version visible at stxn. A missing or
// ambiguous row is an integrity violation.
func (e *Engine) current(ctx context.Context, stxn *storage.Transaction, q storage.Query) (*storage.Record, error) {
	seq := stxn.Sequence
	found, err := e.records.LatestApproved(ctx, q, storage.View{WorkbasketID: stxn.WorkbasketID, UpToSequence: &seq})
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: no current %s matching %s", storage.ErrIntegrityViolation, q.Model, describe(q))
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w: %d current %s rows match %s", storage.ErrIntegrityViolation, len(found), q.Model, describe(q))
}

func describe(q storage.Query) string {
	if q.IdentityKey != "" {
		return q.IdentityKey
	}
	return domain.FormatKeys(q.Attrs)
}
