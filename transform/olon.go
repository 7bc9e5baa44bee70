package transform

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/brunokim/sasp/logic"
)

type edge struct {
	to      logic.Key
	negated bool
}

// node of the call graph, annotated with the parity of negations to reach it.
type node struct {
	key logic.Key
	odd bool
}

func callGraph(rules []*logic.Clause) map[logic.Key][]edge {
	graph := make(map[logic.Key][]edge)
	for _, c := range rules {
		from := c.Head.Key()
		for _, lit := range c.Body {
			if lit.IsBuiltin() {
				continue
			}
			graph[from] = append(graph[from], edge{lit.Positive().Key(), lit.Negated})
		}
	}
	return graph
}

// oddLoopConstraints returns ':- B, not h' for every rule 'h :- B' whose head is
// reachable from its body through an odd number of negations.
func oddLoopConstraints(rules []*logic.Clause) []*logic.Clause {
	graph := callGraph(rules)
	var clauses []*logic.Clause
	for _, c := range rules {
		if !inOddLoop(graph, c) {
			continue
		}
		var body []*logic.Literal
		for _, lit := range append(append([]*logic.Literal(nil), c.Body...), c.Head.Complement()) {
			if !containsLit(body, lit) {
				body = append(body, lit)
			}
		}
		clauses = append(clauses, logic.NewClause(nil, body...))
	}
	return clauses
}

func inOddLoop(graph map[logic.Key][]edge, c *logic.Clause) bool {
	head := c.Head.Key()
	visited := mapset.NewSet[node]()
	var queue []node
	for _, lit := range c.Body {
		if lit.IsBuiltin() {
			continue
		}
		n := node{lit.Positive().Key(), lit.Negated}
		if visited.Add(n) {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.key == head && n.odd {
			return true
		}
		for _, e := range graph[n.key] {
			next := node{e.to, n.odd != e.negated}
			if visited.Add(next) {
				queue = append(queue, next)
			}
		}
	}
	return false
}

func containsLit(lits []*logic.Literal, lit *logic.Literal) bool {
	for _, l := range lits {
		if l.Eq(lit) {
			return true
		}
	}
	return false
}
