package resolve

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/brunokim/sasp/logic"
)

// NodeKind tells how a goal was proved.
type NodeKind int

const (
	// Expanded goals were proved by a clause, whose body goals are the children.
	Expanded NodeKind = iota
	// Coinductive goals succeeded by an identical ancestor.
	Coinductive
	// Reused goals were already proved in the same branch.
	Reused
	Builtin
	// Negation goals were proved by failing to prove their positive literal.
	Negation
	Forall
)

var nodeKindNames = map[NodeKind]string{
	Expanded:    "expanded",
	Coinductive: "coinductive",
	Reused:      "reused",
	Builtin:     "builtin",
	Negation:    "negation",
	Forall:      "forall",
}

func (k NodeKind) String() string {
	return nodeKindNames[k]
}

// Node of a justification tree.
type Node struct {
	Goal     *logic.Literal
	Kind     NodeKind
	Children []*Node
}

// Model is an accepted answer set.
type Model struct {
	// Vars of the query, in order of appearance.
	Vars []logic.Var
	// Bindings of query variables that are bound or aliased to another variable.
	Bindings map[logic.Var]logic.Term
	// Constraints over unbound variables, keyed by their canonical representative.
	Constraints map[logic.Var][]logic.Term
	// Literals proved in this model, excluding auxiliary ones, in proof order.
	Literals []*logic.Literal
	// Justification of every top-level goal, including the consistency check.
	Justification []*Node
}

// Resolve returns the value of a query variable, which may be itself if unbound.
func (m *Model) Resolve(x logic.Var) logic.Term {
	if t, ok := m.Bindings[x]; ok {
		return t
	}
	return x
}

// String returns the model in set notation, followed by bindings.
func (m *Model) String() string {
	return m.format(m.literalStrings())
}

// key identifies the model regardless of the order its literals were proved.
func (m *Model) key() string {
	lits := m.literalStrings()
	sort.Strings(lits)
	return m.format(lits)
}

func (m *Model) literalStrings() []string {
	lits := make([]string, len(m.Literals))
	for i, lit := range m.Literals {
		lits[i] = lit.String()
	}
	return lits
}

func (m *Model) format(lits []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "{ %s }", strings.Join(lits, ", "))
	for _, x := range m.Vars {
		if t, ok := m.Bindings[x]; ok {
			fmt.Fprintf(&b, " %v = %v", x, t)
			continue
		}
		for _, c := range m.Constraints[x] {
			fmt.Fprintf(&b, " %v \\= %v", x, c)
		}
	}
	return b.String()
}

func (m *Machine) buildModel(st state) *Model {
	s := st.store
	model := &Model{
		Vars:        m.query,
		Bindings:    make(map[logic.Var]logic.Term),
		Constraints: make(map[logic.Var][]logic.Term),
	}
	var unbound []logic.Var
	for _, x := range m.query {
		t := s.Resolve(x)
		if t != logic.Term(x) {
			model.Bindings[x] = t
			continue
		}
		unbound = append(unbound, x)
	}
	seen := make(map[string]bool)
	itr := st.chs.Iterator()
	for !itr.Done() {
		_, e := itr.Next()
		if e.status != Succeeded || e.lit.Aux {
			continue
		}
		lit := s.ResolveLiteral(e.lit)
		key := lit.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		model.Literals = append(model.Literals, lit)
		unbound = append(unbound, lit.Vars()...)
	}
	for _, t := range model.Bindings {
		unbound = append(unbound, logic.Vars(t)...)
	}
	for _, x := range unbound {
		v := s.Lookup(x)
		if v.Bound || len(v.Constraints.Forbidden) == 0 {
			continue
		}
		if _, ok := model.Constraints[v.Var]; ok {
			continue
		}
		cs := make([]logic.Term, len(v.Constraints.Forbidden))
		for i, c := range v.Constraints.Forbidden {
			cs[i] = s.Resolve(c)
		}
		sort.Slice(cs, func(i, j int) bool { return logic.Less(cs[i], cs[j]) })
		// Patterns that were variables may now resolve to the same value.
		model.Constraints[v.Var] = slices.CompactFunc(cs, logic.Eq)
	}
	model.Justification = buildJustification(st)
	return model
}

// buildJustification assembles the trace of st as a forest of nodes.
func buildJustification(st state) []*Node {
	var events []*event
	for e := st.trace; e != nil; e = e.prev {
		events = append(events, e)
	}
	nodes := make(map[int]*Node)
	var roots []*Node
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		node := &Node{Goal: st.store.ResolveLiteral(e.lit), Kind: e.kind}
		nodes[e.id] = node
		if parent, ok := nodes[e.parent]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots
}
