package validator

import (
	"strings"

	"github.com/tigerroll/tamato/pkg/taric/parse"
	"github.com/tigerroll/tamato/pkg/taric/parsers"
)

// entry is one parsed message addressed by its position in document order.
type entry struct {
	obj     *parsers.TaricObject
	txIndex int
}

// arena holds every parsed object of an import in document order. Only
// entries below frontier are visible to lookups; the validator moves the
// frontier to the end of each transaction before checking it, so nothing
// from a later transaction is ever consulted.
type arena struct {
	entries  []entry
	frontier int
	identity map[string][]int
	fields   map[string]*fieldIndex
}

// fieldIndex maps the values of a field tuple on one tag to positions. It is
// built on first use and caught up to the frontier on every lookup.
type fieldIndex struct {
	tag    string
	names  []string
	upTo   int
	values map[string][]int
}

func newArena(txns []*parse.ParsedTransaction) *arena {
	a := &arena{identity: map[string][]int{}, fields: map[string]*fieldIndex{}}
	for _, t := range txns {
		for _, m := range t.Messages {
			a.entries = append(a.entries, entry{obj: m.Object, txIndex: t.Index})
		}
	}
	return a
}

func identityKey(tag, key string) string {
	return tag + "|" + key
}

// advance makes entries up to, but excluding, end visible.
func (a *arena) advance(end int) {
	for ; a.frontier < end; a.frontier++ {
		obj := a.entries[a.frontier].obj
		if obj.Def.Stub {
			continue
		}
		k := identityKey(obj.Tag, obj.IdentityKey())
		a.identity[k] = append(a.identity[k], a.frontier)
	}
}

// byIdentity returns visible positions of tag with the given identity key.
func (a *arena) byIdentity(tag, key string) []int {
	return a.identity[identityKey(tag, key)]
}

// byFields returns visible positions of tag whose names hold values.
func (a *arena) byFields(tag string, names []string, values []string) []int {
	indexKey := tag + "|" + strings.Join(names, ",")
	fi, ok := a.fields[indexKey]
	if !ok {
		fi = &fieldIndex{tag: tag, names: names, values: map[string][]int{}}
		a.fields[indexKey] = fi
	}
	for ; fi.upTo < a.frontier; fi.upTo++ {
		obj := a.entries[fi.upTo].obj
		if obj.Tag != tag || obj.Def.Stub {
			continue
		}
		vals := make([]string, len(names))
		for n, name := range names {
			vals[n] = obj.Text(name)
		}
		k := strings.Join(vals, "\x00")
		fi.values[k] = append(fi.values[k], fi.upTo)
	}
	return fi.values[strings.Join(values, "\x00")]
}

// latestBefore returns the last position in positions below before, or -1.
func latestBefore(positions []int, before int) int {
	latest := -1
	for _, p := range positions {
		if p >= before {
			break
		}
		latest = p
	}
	return latest
}
