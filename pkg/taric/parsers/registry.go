package parsers

import (
	"fmt"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
)

type registry struct {
	ordered  []*Definition
	byCode   map[string]*Definition
	byTag    map[string]*Definition
	children map[string][]*Definition
}

var defs = &registry{
	byCode:   map[string]*Definition{},
	byTag:    map[string]*Definition{},
	children: map[string][]*Definition{},
}

// Register adds definitions to the registry. It panics on a duplicate
// record code or tag; registration happens from init functions only.
func Register(list ...*Definition) {
	for _, d := range list {
		if _, dup := defs.byCode[d.Code()]; dup {
			panic(fmt.Sprintf("parsers: duplicate record code %s for %s", d.Code(), d.Name))
		}
		if _, dup := defs.byTag[d.Tag]; dup {
			panic(fmt.Sprintf("parsers: duplicate tag %s for %s", d.Tag, d.Name))
		}
		defs.byCode[d.Code()] = d
		defs.byTag[d.Tag] = d
		defs.ordered = append(defs.ordered, d)
		if d.Parent != nil {
			defs.children[d.Parent.Tag] = append(defs.children[d.Parent.Tag], d)
		}
	}
}

// ByCode returns the definition for a record and subrecord code.
func ByCode(recordCode, subrecordCode string) (*Definition, bool) {
	d, ok := defs.byCode[recordCode+subrecordCode]
	return d, ok
}

// ByTag returns the definition for an element name.
func ByTag(tag string) (*Definition, bool) {
	d, ok := defs.byTag[tag]
	return d, ok
}

// All returns every definition in registration order.
func All() []*Definition {
	out := make([]*Definition, len(defs.ordered))
	copy(out, defs.ordered)
	return out
}

// ParserByModel returns the standalone definition storing model. When
// several share a model, as the quota events do, the first registered wins.
func ParserByModel(model string) (*Definition, error) {
	for _, d := range defs.ordered {
		if d.Model == model && !d.IsChild() {
			return d, nil
		}
	}
	return nil, exception.NewImportError("parsers", fmt.Sprintf("model %s", model), exception.ErrParserNotRegistered, false)
}

// MustParserByModel is ParserByModel for wiring that cannot fail at runtime.
func MustParserByModel(model string) *Definition {
	d, err := ParserByModel(model)
	if err != nil {
		panic(err)
	}
	return d
}

// ChildParsers returns the definitions merged onto def's records.
func ChildParsers(def *Definition) []*Definition {
	return defs.children[def.Tag]
}

// Unknown returns a stub object for a tag with no definition. The stub is
// never persisted and carries an ERROR issue.
func Unknown(h Header) *TaricObject {
	def := &Definition{
		Name:          "UnknownRecordParser",
		Tag:           h.Tag,
		RecordCode:    h.RecordCode,
		SubrecordCode: h.SubrecordCode,
		Stub:          true,
	}
	obj := &TaricObject{
		Def:            def,
		TransactionID:  h.TransactionID,
		RecordCode:     h.RecordCode,
		SubrecordCode:  h.SubrecordCode,
		SequenceNumber: h.SequenceNumber,
		UpdateType:     h.UpdateType,
		Tag:            h.Tag,
		Values:         map[string]any{},
	}
	obj.AddIssue(domain.Issue{
		Description: fmt.Sprintf("No parser registered for %s (record %s%s)", h.Tag, h.RecordCode, h.SubrecordCode),
		Severity:    domain.SeverityError,
		IdentityKeys: map[string]string{
			"record_code":    h.RecordCode,
			"subrecord_code": h.SubrecordCode,
		},
	})
	return obj
}
