package orchestration

import (
	"sort"
	"sync"

	"github.com/tigerroll/tamato/pkg/taric/parsers"
)

var (
	graphOnce sync.Once
	graph     map[string][]string
)

// RecordCodeDependencies maps each record code to the record codes its
// records link to. It is derived once from the parser registry; links
// inside one record code are not edges.
func RecordCodeDependencies() map[string][]string {
	graphOnce.Do(func() {
		codeOf := map[string]string{}
		for _, def := range parsers.All() {
			if def.Parent == nil && !def.Stub {
				codeOf[def.Model] = def.RecordCode
			}
		}

		edges := map[string]map[string]bool{}
		add := func(from, model string) {
			to, ok := codeOf[model]
			if !ok || to == from {
				return
			}
			if edges[from] == nil {
				edges[from] = map[string]bool{}
			}
			edges[from][to] = true
		}
		for _, def := range parsers.All() {
			for _, l := range def.Links {
				add(def.RecordCode, l.Model)
			}
			if def.Parent != nil {
				add(def.RecordCode, def.Parent.Model)
			}
		}

		graph = make(map[string][]string, len(edges))
		for from, tos := range edges {
			for to := range tos {
				graph[from] = append(graph[from], to)
			}
			sort.Strings(graph[from])
		}
	})
	return graph
}

// UnblockedRecordCodes returns, in ascending order, the codes of pending
// that depend on no other pending code. pending holds the record codes of
// a split batch that still have unfinished chunks. Should the graph ever
// hold a cycle among pending codes the lowest code is released so the
// batch keeps moving.
func UnblockedRecordCodes(pending []string) []string {
	deps := RecordCodeDependencies()
	open := make(map[string]bool, len(pending))
	for _, c := range pending {
		open[c] = true
	}

	var out []string
	for c := range open {
		blocked := false
		for _, d := range deps[c] {
			if open[d] {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, c)
		}
	}
	sort.Strings(out)

	if len(out) == 0 && len(open) > 0 {
		lowest := pending[0]
		for _, c := range pending {
			if c < lowest {
				lowest = c
			}
		}
		log.Warnf("record codes %v depend on each other; releasing %s", pending, lowest)
		out = []string{lowest}
	}
	return out
}
