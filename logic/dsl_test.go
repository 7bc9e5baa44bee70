package logic_test

import (
	"github.com/brunokim/sasp/dsl"
)

var (
	atom       = dsl.Atom
	clause     = dsl.Clause
	comp       = dsl.Comp
	constraint = dsl.Constraint
	forall     = dsl.Forall
	ilist      = dsl.IList
	int_       = dsl.Int
	list       = dsl.List
	lit        = dsl.Lit
	neg        = dsl.Neg
	neq        = dsl.Neq
	not        = dsl.Not
	svar       = dsl.SVar
	var_       = dsl.Var
)
