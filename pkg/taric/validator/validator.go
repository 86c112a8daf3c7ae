// Package validator checks parsed transactions against committed storage
// and against what came earlier in the same import. It never looks forward:
// a message in transaction n is checked against transactions 1..n only.
package validator

import (
	"context"
	"fmt"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/parse"
	"github.com/tigerroll/tamato/pkg/taric/parsers"
	"github.com/tigerroll/tamato/pkg/taric/storage"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

var log = logger.For("validator")

// Issue descriptions.
const (
	MsgNoMatches       = "No matches for possible related taric object"
	MsgMultipleMatches = "Multiple matches for possible related taric object"
)

// Validator records issues on parsed objects. Data problems become issues;
// only storage failures and wiring errors are returned.
type Validator struct {
	records storage.Records
	view    storage.View
}

// New returns a validator resolving committed state through records as
// seen from view.
func New(records storage.Records, view storage.View) *Validator {
	return &Validator{records: records, view: view}
}

// Validate checks every message in document order.
func (v *Validator) Validate(ctx context.Context, txns []*parse.ParsedTransaction) error {
	a := newArena(txns)
	pos := 0
	for _, t := range txns {
		a.advance(pos + len(t.Messages))
		for range t.Messages {
			if err := v.check(ctx, a, pos); err != nil {
				return err
			}
			pos++
		}
	}
	log.Debugf("validated %d messages in %d transactions", pos, len(txns))
	return nil
}

func (v *Validator) check(ctx context.Context, a *arena, pos int) error {
	e := a.entries[pos]
	obj := e.obj
	if obj.Def.Stub {
		return nil
	}

	legal := v.checkLegality(obj)
	if obj.Def.IsChild() {
		if obj.UpdateType == domain.UpdateTypeCreate {
			if err := v.checkParent(a, obj); err != nil {
				return err
			}
		}
	} else {
		if obj.UpdateType == domain.UpdateTypeCreate {
			if err := v.checkChildren(a, obj); err != nil {
				return err
			}
		}
		if legal {
			if err := v.checkIdentity(ctx, a, pos); err != nil {
				return err
			}
		}
	}
	for _, l := range obj.Def.Links {
		if err := v.checkLink(ctx, a, pos, l); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkLegality(obj *parsers.TaricObject) bool {
	switch {
	case obj.UpdateType == domain.UpdateTypeUpdate && !obj.Def.UpdatesAllowed():
		obj.AddIssue(domain.Issue{
			Description:  fmt.Sprintf("Taric objects of type %s can't be updated, only created and deleted.", obj.Def.Model),
			Severity:     domain.SeverityError,
			IdentityKeys: obj.IdentityFilter(),
		})
		return false
	case obj.UpdateType == domain.UpdateTypeDelete && !obj.Def.DeletesAllowed():
		obj.AddIssue(domain.Issue{
			Description:  fmt.Sprintf("Taric objects of type %s can't be deleted.", obj.Def.Model),
			Severity:     domain.SeverityError,
			IdentityKeys: obj.IdentityFilter(),
		})
		return false
	}
	return true
}

// checkParent requires a created child to have its parent somewhere in the
// current or an earlier transaction.
func (v *Validator) checkParent(a *arena, obj *parsers.TaricObject) error {
	p := obj.Def.Parent
	parentDef, ok := parsers.ByTag(p.Tag)
	if !ok {
		return exception.NewImportErrorf("validator", "parent tag %s of %s is not registered", p.Tag, obj.Def.Name, exception.ErrParserNotRegistered)
	}
	names := make([]string, len(p.Fields))
	values := make([]string, len(p.Fields))
	keys := make(map[string]string, len(p.Fields))
	for n, f := range p.Fields {
		names[n] = f.Target
		values[n] = obj.Text(f.Local)
		keys[f.Target] = values[n]
	}
	if len(a.lookup(parentDef, names, values)) > 0 {
		return nil
	}
	obj.AddIssue(domain.Issue{
		Description:       fmt.Sprintf("Missing expected parent object %s", parentDef.Name),
		RelatedObjectType: p.Tag,
		IdentityKeys:      keys,
		Severity:          domain.SeverityError,
	})
	return nil
}

// checkChildren requires every mandatory child type of a created record.
func (v *Validator) checkChildren(a *arena, obj *parsers.TaricObject) error {
	for _, child := range parsers.ChildParsers(obj.Def) {
		if !child.Parent.Required {
			continue
		}
		names := make([]string, len(child.Parent.Fields))
		values := make([]string, len(child.Parent.Fields))
		keys := make(map[string]string, len(child.Parent.Fields))
		for n, f := range child.Parent.Fields {
			names[n] = f.Local
			values[n] = obj.Text(f.Target)
			keys[f.Local] = values[n]
		}
		if len(a.lookup(child, names, values)) > 0 {
			continue
		}
		obj.AddIssue(domain.Issue{
			Description:       fmt.Sprintf("Missing expected child object %s", child.Name),
			RelatedObjectType: child.Tag,
			IdentityKeys:      keys,
			Severity:          domain.SeverityError,
		})
	}
	return nil
}

// checkIdentity enforces CREATE uniqueness and UPDATE/DELETE existence. The
// latest earlier message for the identity decides when there is one;
// otherwise committed storage does.
func (v *Validator) checkIdentity(ctx context.Context, a *arena, pos int) error {
	obj := a.entries[pos].obj
	key := obj.IdentityKey()

	exists := false
	deletedInImport := false
	if prior := latestBefore(a.byIdentity(obj.Tag, key), pos); prior >= 0 {
		if a.entries[prior].obj.UpdateType == domain.UpdateTypeDelete {
			deletedInImport = true
		} else {
			exists = true
		}
	} else {
		found, err := v.records.LatestApproved(ctx, storage.Query{Model: obj.Def.Model, IdentityKey: key}, v.view)
		if err != nil {
			return err
		}
		exists = len(found) > 0
	}

	switch obj.UpdateType {
	case domain.UpdateTypeCreate:
		if exists {
			obj.AddIssue(domain.Issue{
				Description:       fmt.Sprintf("Taric object of type %s already exists and can't be created again.", obj.Def.Model),
				RelatedObjectType: obj.Tag,
				IdentityKeys:      obj.IdentityFilter(),
				Severity:          domain.SeverityError,
			})
		}
	case domain.UpdateTypeUpdate, domain.UpdateTypeDelete:
		if exists {
			return nil
		}
		reason := "does not exist"
		if deletedInImport {
			reason = "has already been deleted"
		}
		obj.AddIssue(domain.Issue{
			Description:       fmt.Sprintf("Taric object of type %s %s, so the %s can't be applied.", obj.Def.Model, reason, obj.UpdateType),
			RelatedObjectType: obj.Tag,
			IdentityKeys:      obj.IdentityFilter(),
			Severity:          domain.SeverityError,
		})
	}
	return nil
}

// checkLink resolves one model link against earlier objects and storage.
// Matches are counted once per identity; an identity whose latest message
// deletes it no longer counts, except for a delete in the same transaction
// as the message being checked, which lets linked records be deleted
// together.
func (v *Validator) checkLink(ctx context.Context, a *arena, pos int, l parsers.ModelLink) error {
	e := a.entries[pos]
	obj := e.obj

	names := l.Targets()
	values := make([]string, len(l.Fields))
	keys := make(map[string]string, len(l.Fields))
	empty := true
	for n, f := range l.Fields {
		values[n] = obj.Text(f.Local)
		keys[f.Target] = values[n]
		if values[n] != "" {
			empty = false
		}
	}
	if l.Optional && empty {
		return nil
	}

	target, ok := parsers.ByTag(l.Tag)
	if !ok {
		return exception.NewImportErrorf("validator", "link target %s of %s is not registered", l.Tag, obj.Def.Name, exception.ErrParserNotRegistered)
	}

	latest := map[string]int{}
	for _, p := range a.lookup(target, names, values) {
		latest[a.entries[p].obj.IdentityKey()] = p
	}
	matches := 0
	for _, p := range latest {
		cand := a.entries[p]
		if cand.obj.UpdateType != domain.UpdateTypeDelete {
			matches++
			continue
		}
		if obj.UpdateType == domain.UpdateTypeDelete && cand.txIndex == e.txIndex {
			matches++
		}
	}

	q := storage.Query{Model: target.Model}
	if target.HasIdentity(names) {
		q.IdentityKey = parsers.IdentityKey(target.Identity, keys)
	} else {
		q.Attrs = keys
	}
	found, err := v.records.LatestApproved(ctx, q, v.view)
	if err != nil {
		return err
	}
	for _, r := range found {
		if _, seen := latest[r.IdentityKey]; !seen {
			matches++
		}
	}

	switch {
	case matches == 0:
		obj.AddIssue(domain.Issue{
			Description:       MsgNoMatches,
			RelatedObjectType: l.Tag,
			IdentityKeys:      keys,
			Severity:          domain.SeverityError,
		})
	case matches > 1:
		obj.AddIssue(domain.Issue{
			Description:       MsgMultipleMatches,
			RelatedObjectType: l.Tag,
			IdentityKeys:      keys,
			Severity:          domain.SeverityError,
		})
	}
	return nil
}

// lookup finds visible objects of def's tag whose names hold values, using
// the identity index when names are exactly the identity.
func (a *arena) lookup(def *parsers.Definition, names, values []string) []int {
	if def.HasIdentity(names) {
		m := make(map[string]string, len(names))
		for n, name := range names {
			m[name] = values[n]
		}
		return a.byIdentity(def.Tag, parsers.IdentityKey(def.Identity, m))
	}
	return a.byFields(def.Tag, names, values)
}
