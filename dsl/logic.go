// Package dsl has terse constructors for terms and literals, to write programs in Go.
package dsl

import (
	"github.com/brunokim/sasp/logic"
)

func Terms(terms ...logic.Term) []logic.Term {
	return terms
}

func Atom(name string) logic.Atom {
	return logic.Atom{Name: name}
}

func Int(i int) logic.Int {
	return logic.Int{Value: i}
}

func Var(name string) logic.Var {
	return logic.NewVar(name)
}

func SVar(name string, suffix int) logic.Var {
	return logic.NewVar(name).WithSuffix(suffix)
}

func Comp(functor string, args ...logic.Term) *logic.Comp {
	return logic.NewComp(functor, args...)
}

func Indicator(name string, arity int) logic.Indicator {
	return logic.Indicator{Name: name, Arity: arity}
}

// ----

func List(terms ...logic.Term) logic.Term {
	return logic.NewList(terms...)
}

func IList(terms ...logic.Term) logic.Term {
	n := len(terms)
	butlast, last := terms[:n-1], terms[n-1]
	return logic.NewIncompleteList(butlast, last)
}

// ---- Literals

func Lit(name string, args ...logic.Term) *logic.Literal {
	return logic.NewLiteral(name, args...)
}

// Not returns the default negation of lit.
func Not(lit *logic.Literal) *logic.Literal {
	return lit.Complement()
}

// Neg returns the classical negation of lit.
func Neg(lit *logic.Literal) *logic.Literal {
	l := *lit
	l.Classical = !l.Classical
	return &l
}

func Aux(lit *logic.Literal) *logic.Literal {
	l := *lit
	l.Aux = true
	return &l
}

func Forall(x logic.Var, goal *logic.Literal) *logic.Literal {
	return logic.NewForall(x, goal)
}

func Eq(a, b logic.Term) *logic.Literal {
	return logic.NewLiteral(logic.Unify, a, b)
}

func Neq(a, b logic.Term) *logic.Literal {
	return logic.NewLiteral(logic.NotUnify, a, b)
}

func Is(a, b logic.Term) *logic.Literal {
	return logic.NewLiteral(logic.Is, a, b)
}

func Cmp(op string, a, b logic.Term) *logic.Literal {
	return logic.NewLiteral(op, a, b)
}

// ---- Clauses

func Clause(head *logic.Literal, body ...*logic.Literal) *logic.Clause {
	return logic.NewClause(head, body...)
}

func Constraint(body ...*logic.Literal) *logic.Clause {
	return logic.NewClause(nil, body...)
}

func Clauses(cs ...*logic.Clause) []*logic.Clause {
	return cs
}

func Query(lits ...*logic.Literal) []*logic.Literal {
	return lits
}

// Program returns a program without directives.
func Program(query []*logic.Literal, cs ...*logic.Clause) *logic.Program {
	return &logic.Program{Clauses: cs, Query: query, ModelCount: -1}
}
