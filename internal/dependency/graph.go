// Package dependency builds and flattens dependency graphs.
package dependency // import "github.com/CognitoIQ/go-xsd/internal/dependency"

import "sort"

// insertUnique inserts s into set, preserving order. If s is already in set,
// it is not added. The augmented set is returned.
func insertUnique(set []string, s string) []string {
	i := sort.SearchStrings(set, s)
	if i >= len(set) || set[i] != s {
		set = append(set, "")
		copy(set[i+1:], set[i:])
		set[i] = s
	}
	return set
}

// A Graph is a collection of named targets and their dependencies.
// The zero value is an empty graph.
type Graph struct {
	targets []string
	deps    map[string][]string

	// Broken, if not nil, is called by Flatten for every edge it
	// ignores because the edge closes a cycle.
	Broken func(target, dependency string)
}

// Len returns the number of targets in the graph.
func (g *Graph) Len() int {
	return len(g.targets)
}

// Add adds a dependency to a Graph.
func (g *Graph) Add(target, dependency string) {
	if g.deps == nil {
		g.deps = make(map[string][]string)
	}
	g.targets = insertUnique(g.targets, target)
	g.deps[target] = insertUnique(g.deps[target], dependency)
}

// AddTarget adds a target with no dependencies. Adding a target that
// is already in the Graph has no effect.
func (g *Graph) AddTarget(target string) {
	g.targets = insertUnique(g.targets, target)
}

type mark int

const (
	unvisited mark = iota
	visiting
	done
)

// Flatten calls the walk function on each vertex in the Graph in
// topological order, starting with the leaves and traversing up to
// the roots. Targets and their dependencies are visited in sorted
// order, so the same Graph is always traversed in the same order.
//
// Every vertex is visited once. An edge leading back to a vertex whose
// dependencies are still being walked is dropped and reported to
// g.Broken.
func (g *Graph) Flatten(walk func(string)) {
	marks := make(map[string]mark, len(g.targets))
	for _, tgt := range g.targets {
		g.visit(tgt, marks, walk)
	}
}

func (g *Graph) visit(v string, marks map[string]mark, walk func(string)) {
	if marks[v] != unvisited {
		return
	}
	marks[v] = visiting
	for _, dep := range g.deps[v] {
		if marks[dep] == visiting {
			if g.Broken != nil {
				g.Broken(v, dep)
			}
			continue
		}
		g.visit(dep, marks, walk)
	}
	marks[v] = done
	walk(v)
}
