// Package transform prepares a program for goal-directed search.
//
// It synthesizes the dual rules that prove default negation, the constraints implied
// by classical negation and by odd loops over negation, and the consistency check that
// every candidate model must satisfy.
//
// For a predicate p/n with clauses C1..Ck, the dual is
//
//	not p(X1..Xn) :- not p__1(X1..Xn), ..., not p__k(X1..Xn).
//
// and for each clause Ci = p(t1..tn) :- g1..gm, after moving head terms into goals
// Xj = tj, there is one dual clause per goal, negating it:
//
//	not p__i(X̄) :- not g1.
//	not p__i(X̄) :- g1, not g2.
//	...
//
// Variables that appear only in the body must be false for all values, so they are
// quantified with forall over an extra auxiliary predicate.
package transform

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
)

const (
	checkName    = "nmr_check"
	checkPrefix  = "chk_"
	abduceSuffix = "__abd"
	bodySuffix   = "__b"
)

// Compile returns the program with duals and consistency check.
func Compile(p *logic.Program) (*logic.Program, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	var rules, constraints []*logic.Clause
	for _, c := range p.Clauses {
		if c.IsConstraint() {
			constraints = append(constraints, c)
		} else {
			rules = append(rules, c)
		}
	}
	rules = append(rules, abducibles(p.Abducibles)...)
	constraints = append(constraints, classicalConstraints(rules, constraints, p.Query)...)
	constraints = append(constraints, oddLoopConstraints(rules)...)
	checks, check := checkRules(constraints)
	rules = append(rules, checks...)

	keys := predicateKeys(rules, constraints, p.Query)
	clauses := append([]*logic.Clause(nil), rules...)
	for _, key := range keys {
		clauses = append(clauses, duals(key, clausesOf(rules, key))...)
	}
	return &logic.Program{
		Clauses:    clauses,
		Query:      p.Query,
		Check:      check,
		Abducibles: p.Abducibles,
		ModelCount: p.ModelCount,
	}, nil
}

func validate(p *logic.Program) error {
	if len(p.Clauses) == 0 && len(p.Query) == 0 && len(p.Abducibles) == 0 {
		return errors.Errorf(errors.InvalidInput, "empty program")
	}
	checkBody := func(lits []*logic.Literal) error {
		for _, lit := range lits {
			if lit.IsForall() {
				return errors.Errorf(errors.InvalidInput, "forall is not allowed in programs: %v", lit)
			}
			if lit.Aux {
				return errors.Errorf(errors.InvalidInput, "auxiliary literal in program: %v", lit)
			}
		}
		return nil
	}
	for _, c := range p.Clauses {
		if h := c.Head; h != nil {
			if h.IsBuiltin() {
				return errors.Errorf(errors.InvalidInput, "can't redefine builtin %v", h.Indicator())
			}
			if h.Negated {
				return errors.Errorf(errors.InvalidInput, "negated head in %v", c)
			}
			if h.Aux {
				return errors.Errorf(errors.InvalidInput, "auxiliary head in %v", c)
			}
		}
		if err := checkBody(c.Body); err != nil {
			return err
		}
	}
	for _, abd := range p.Abducibles {
		if abd.Negated || abd.IsBuiltin() {
			return errors.Errorf(errors.InvalidInput, "invalid abducible %v", abd)
		}
	}
	return checkBody(p.Query)
}

func headVars(n int) []logic.Term {
	xs := make([]logic.Term, n)
	for i := range xs {
		xs[i] = logic.NewVar("A").WithSuffix(i + 1)
	}
	return xs
}

func auxLit(name string, args []logic.Term, prov logic.Provenance) *logic.Literal {
	return &logic.Literal{Name: name, Args: args, Aux: true, Provenance: prov}
}

// auxName returns a name for predicates derived from key.
func auxName(key logic.Key, suffix string) string {
	name := key.Name
	if key.Classical {
		name = "-" + name
	}
	return name + suffix
}

// abducibles make each literal an even loop with an auxiliary twin.
//
//	p(X̄) :- not p__abd(X̄).
//	p__abd(X̄) :- not p(X̄).
func abducibles(abds []*logic.Literal) []*logic.Clause {
	var clauses []*logic.Clause
	for _, abd := range abds {
		xs := headVars(len(abd.Args))
		head := abd.WithArgs(xs...)
		twin := auxLit(auxName(abd.Key(), abduceSuffix), xs, logic.Original)
		clauses = append(clauses,
			logic.NewClause(head, twin.Complement()),
			logic.NewClause(twin, head.Complement()))
	}
	return clauses
}

// classicalConstraints forbid a literal and its classical negation to both hold.
func classicalConstraints(rules, constraints []*logic.Clause, query []*logic.Literal) []*logic.Clause {
	var clauses []*logic.Clause
	for _, key := range predicateKeys(rules, constraints, query) {
		if !key.Classical || key.Aux {
			continue
		}
		xs := headVars(key.Arity)
		pos := logic.NewLiteral(key.Name, xs...)
		neg := &logic.Literal{Name: key.Name, Args: xs, Classical: true}
		clauses = append(clauses, logic.NewClause(nil, pos, neg))
	}
	return clauses
}

// checkRules returns an auxiliary rule per constraint, and the goal that checks all
// of them.
func checkRules(constraints []*logic.Clause) ([]*logic.Clause, *logic.Literal) {
	if len(constraints) == 0 {
		return nil, nil
	}
	var clauses []*logic.Clause
	var checks []*logic.Literal
	for i, c := range constraints {
		chk := auxLit(fmt.Sprintf("%s%d", checkPrefix, i+1), nil, logic.Check)
		clauses = append(clauses, &logic.Clause{Head: chk, Body: c.Body, Provenance: logic.Check})
		checks = append(checks, chk.Complement())
	}
	check := auxLit(checkName, nil, logic.Check)
	clauses = append(clauses, &logic.Clause{Head: check, Body: checks, Provenance: logic.Check})
	return clauses, check
}

// predicateKeys returns the keys of positive non-builtin literals, in order of appearance.
func predicateKeys(rules, constraints []*logic.Clause, query []*logic.Literal) []logic.Key {
	var keys []logic.Key
	seen := mapset.NewSet[logic.Key]()
	add := func(lit *logic.Literal) {
		if lit == nil || lit.IsBuiltin() {
			return
		}
		key := lit.Positive().Key()
		if seen.Add(key) {
			keys = append(keys, key)
		}
	}
	for _, cs := range [][]*logic.Clause{rules, constraints} {
		for _, c := range cs {
			add(c.Head)
			for _, lit := range c.Body {
				add(lit)
			}
		}
	}
	for _, lit := range query {
		add(lit)
	}
	return keys
}

func clausesOf(rules []*logic.Clause, key logic.Key) []*logic.Clause {
	var cs []*logic.Clause
	for _, c := range rules {
		if c.Head.Key() == key {
			cs = append(cs, c)
		}
	}
	return cs
}

// negate returns the literal that holds iff lit doesn't.
func negate(lit *logic.Literal) *logic.Literal {
	if !lit.IsBuiltin() || lit.Name == logic.Is {
		return lit.Complement()
	}
	l := *lit
	switch lit.Name {
	case logic.Unify:
		l.Name = logic.NotUnify
	case logic.NotUnify:
		l.Name = logic.Unify
	case logic.Lt:
		l.Name = logic.Ge
	case logic.Ge:
		l.Name = logic.Lt
	case logic.Gt:
		l.Name = logic.Le
	case logic.Le:
		l.Name = logic.Gt
	case logic.True:
		l.Name = logic.Fail
	case logic.Fail:
		l.Name = logic.True
	}
	return &l
}

// duals returns the clauses proving the negation of key, given its clauses.
func duals(key logic.Key, clauses []*logic.Clause) []*logic.Clause {
	xs := headVars(key.Arity)
	head := &logic.Literal{
		Name: key.Name, Args: xs, Negated: true, Classical: key.Classical, Aux: key.Aux,
		Provenance: logic.Dual,
	}
	var body []*logic.Literal
	var result []*logic.Clause
	for i, c := range clauses {
		name := auxName(key, fmt.Sprintf("__%d", i+1))
		aux := auxLit(name, xs, logic.Dual)
		body = append(body, aux.Complement())
		result = append(result, clauseDuals(aux, xs, c)...)
	}
	dual := &logic.Clause{Head: head, Body: body, Provenance: logic.Dual}
	return append([]*logic.Clause{dual}, result...)
}

// clauseDuals returns the clauses proving 'not aux(xs)', where aux is clause c with its
// head normalized to xs.
func clauseDuals(aux *logic.Literal, xs []logic.Term, c *logic.Clause) []*logic.Clause {
	goals := normalize(xs, c)
	headSet := mapset.NewSet[logic.Var]()
	for _, x := range xs {
		headSet.Add(x.(logic.Var))
	}
	var bodyOnly []logic.Var
	for _, lit := range goals {
		for _, y := range lit.Vars() {
			if !headSet.Contains(y) {
				headSet.Add(y)
				bodyOnly = append(bodyOnly, y)
			}
		}
	}
	if len(bodyOnly) == 0 {
		return conjunctionDuals(aux, goals)
	}
	args := append(append([]logic.Term(nil), xs...), varTerms(bodyOnly)...)
	inner := auxLit(aux.Name+bodySuffix, args, logic.Dual)
	goal := inner.Complement()
	for i := len(bodyOnly) - 1; i >= 0; i-- {
		goal = logic.NewForall(bodyOnly[i], goal)
	}
	clause := &logic.Clause{Head: aux.Complement(), Body: []*logic.Literal{goal}, Provenance: logic.Dual}
	return append([]*logic.Clause{clause}, conjunctionDuals(inner, goals)...)
}

// conjunctionDuals returns 'not head :- g1, ..., g(j-1), not gj' for each goal j.
func conjunctionDuals(head *logic.Literal, goals []*logic.Literal) []*logic.Clause {
	var clauses []*logic.Clause
	for j, g := range goals {
		body := append(append([]*logic.Literal(nil), goals[:j]...), negate(g))
		clauses = append(clauses, &logic.Clause{Head: head.Complement(), Body: body, Provenance: logic.Dual})
	}
	return clauses
}

func varTerms(xs []logic.Var) []logic.Term {
	ts := make([]logic.Term, len(xs))
	for i, x := range xs {
		ts[i] = x
	}
	return ts
}

// normalize returns the goals of c with its head args replaced by xs.
//
// A variable arg seen for the first time is renamed to the corresponding head var, and
// any other arg becomes a unification goal.
func normalize(xs []logic.Term, c *logic.Clause) []*logic.Literal {
	subst := make(map[logic.Var]logic.Term)
	var pending []int
	for j, arg := range c.Head.Args {
		if x, ok := arg.(logic.Var); ok {
			if _, seen := subst[x]; !seen {
				subst[x] = xs[j]
				continue
			}
		}
		pending = append(pending, j)
	}
	f := func(t logic.Term) logic.Term { return replace(t, subst) }
	var goals []*logic.Literal
	for _, j := range pending {
		goals = append(goals, logic.NewLiteral(logic.Unify, xs[j], f(c.Head.Args[j])))
	}
	for _, lit := range c.Body {
		goals = append(goals, lit.Map(f))
	}
	return goals
}

func replace(term logic.Term, subst map[logic.Var]logic.Term) logic.Term {
	switch t := term.(type) {
	case logic.Var:
		if val, ok := subst[t]; ok {
			return val
		}
		return t
	case *logic.Comp:
		if logic.IsGround(t) {
			return t
		}
		args := make([]logic.Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = replace(arg, subst)
		}
		return logic.NewComp(t.Functor, args...)
	}
	return term
}
