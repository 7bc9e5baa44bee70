package resolve

import (
	"context"

	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/store"
	"github.com/brunokim/sasp/unify"
)

var negatedComparison = map[string]string{
	logic.Lt: logic.Ge,
	logic.Ge: logic.Lt,
	logic.Gt: logic.Le,
	logic.Le: logic.Gt,
}

func (m *Machine) builtin(ctx context.Context, st state, lit *logic.Literal, parent *frame) (state, error) {
	if lit.IsForall() {
		if lit.Negated {
			return state{}, errors.Errorf(errors.InvalidInput, "negated forall is not supported: %v", lit)
		}
		return m.forall(ctx, st, lit, parent)
	}
	name := lit.Name
	if lit.Negated {
		switch name {
		case logic.Unify:
			name = logic.NotUnify
		case logic.NotUnify:
			name = logic.Unify
		case logic.True:
			name = logic.Fail
		case logic.Fail:
			name = logic.True
		case logic.Is:
		default:
			name = negatedComparison[name]
		}
	}
	var err error
	switch name {
	case logic.True:
	case logic.Fail:
		return state{}, fail("fail")
	case logic.Unify:
		st.store, err = m.unifier.Unify(st.store, lit.Args[0], lit.Args[1])
	case logic.NotUnify:
		return m.disunify(st, lit, parent, lit.Args[0], lit.Args[1])
	case logic.Is:
		var value int
		if value, err = eval(st.store, lit.Args[1]); err != nil {
			break
		}
		if lit.Negated {
			return m.disunify(st, lit, parent, lit.Args[0], logic.Int{Value: value})
		}
		st.store, err = m.unifier.Unify(st.store, lit.Args[0], logic.Int{Value: value})
	default:
		var ok bool
		if ok, err = compare(st.store, name, lit.Args[0], lit.Args[1]); err == nil && !ok {
			err = fail("%v is false", st.store.ResolveLiteral(lit))
		}
	}
	if err != nil {
		return state{}, err
	}
	st, id := st.nextID()
	return st.record(id, parent, lit, Builtin), nil
}

// disunify makes a and b different, with a choice point if there's more than one way.
func (m *Machine) disunify(st state, lit *logic.Literal, parent *frame, a, b logic.Term) (state, error) {
	stores, err := m.unifier.Disunify(st.store, a, b)
	if err != nil {
		return state{}, err
	}
	st, id := st.nextID()
	st = st.record(id, parent, lit, Builtin)
	alts := make([]state, len(stores))
	for i, s := range stores {
		alts[i] = st
		alts[i].store = s
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return m.choose(&stateAlternatives{states: alts})
}

// forall proves that goal holds for all values of a variable.
//
// First, the goal is proved with the variable locked. If a proof leaves it unbound and
// unconstrained, the goal holds for any value. If a proof forbids it from having a
// set of ground values, the goal is also proved for each of these values, keeping the
// other variables frozen. Any other proof is discarded, and the next one is tried.
func (m *Machine) forall(ctx context.Context, st state, lit *logic.Literal, parent *frame) (state, error) {
	rest := st.goals
	st, id := st.nextID()
	f := &frame{id: id, lit: lit, parent: parent, entry: -1}
	st = st.record(id, parent, lit, Forall)
	x, ok := unify.Deref(st.store, lit.Args[0]).(logic.Var)
	if !ok {
		// Already bound, so it's just the goal.
		st.goals = pushTasks([]task{{kind: callTask, lit: lit.Scope, frame: f}}, rest)
		return st, nil
	}
	st.store = st.store.SetLoop(x, store.ForallLocked)
	sub := m.nested(st, pushTasks([]task{{kind: callTask, lit: lit.Scope, frame: f}}, nil))
	for {
		res, err := sub.solve(ctx)
		if err == ErrExhausted {
			return state{}, fail("%v doesn't hold", st.store.ResolveLiteral(lit))
		}
		if err != nil {
			return state{}, err
		}
		v := res.store.Lookup(x)
		if v.Bound {
			continue
		}
		forbidden := make([]logic.Term, len(v.Constraints.Forbidden))
		ground := true
		for i, pattern := range v.Constraints.Forbidden {
			forbidden[i] = res.store.Resolve(pattern)
			ground = ground && logic.IsGround(forbidden[i])
		}
		if !ground {
			continue
		}
		if len(forbidden) == 0 {
			res.goals = rest
			return res, nil
		}
		final, err := m.forallValues(ctx, res, lit, f, v.Var, forbidden)
		if err == ErrExhausted {
			continue
		}
		if err != nil {
			return state{}, err
		}
		final.goals = rest
		return final, nil
	}
}

// forallValues proves the scope of lit with x replaced by each value.
func (m *Machine) forallValues(ctx context.Context, st state, lit *logic.Literal, f *frame, x logic.Var, values []logic.Term) (state, error) {
	scope := st.store.ResolveLiteral(lit.Scope)
	var frozen []logic.Var
	prev := make(map[logic.Var]store.Bindable)
	for _, y := range scope.Vars() {
		if y == x {
			continue
		}
		prev[y] = st.store.Lookup(y).Constraints.Bindable
		frozen = append(frozen, y)
		st.store = st.store.SetBindable(y, store.Frozen)
	}
	for _, val := range values {
		goal := scope.Map(func(t logic.Term) logic.Term { return substitute(t, x, val) })
		sub := m.nested(st, pushTasks([]task{{kind: callTask, lit: goal, frame: f}}, nil))
		res, err := sub.solve(ctx)
		if err != nil {
			return state{}, err
		}
		st = res
	}
	for _, y := range frozen {
		st.store = st.store.SetBindable(y, prev[y])
	}
	return st, nil
}

// eval evaluates an integer expression.
func eval(s *store.Store, term logic.Term) (int, error) {
	switch t := unify.Deref(s, term).(type) {
	case logic.Int:
		return t.Value, nil
	case *logic.Comp:
		if t.Functor == "-" && len(t.Args) == 1 {
			a, err := eval(s, t.Args[0])
			return -a, err
		}
		if len(t.Args) != 2 {
			break
		}
		a, err := eval(s, t.Args[0])
		if err != nil {
			return 0, err
		}
		b, err := eval(s, t.Args[1])
		if err != nil {
			return 0, err
		}
		switch t.Functor {
		case "+":
			return a + b, nil
		case "-":
			return a - b, nil
		case "*":
			return a * b, nil
		case "/", "mod":
			if b == 0 {
				return 0, fail("division by zero in %v", s.Resolve(t))
			}
			if t.Functor == "/" {
				return a / b, nil
			}
			return a % b, nil
		}
	case logic.Var:
		return 0, fail("%v is not instantiated", t)
	}
	return 0, fail("%v is not an integer expression", s.Resolve(term))
}

func compare(s *store.Store, op string, x, y logic.Term) (bool, error) {
	a, err := eval(s, x)
	if err != nil {
		return false, err
	}
	b, err := eval(s, y)
	if err != nil {
		return false, err
	}
	switch op {
	case logic.Lt:
		return a < b, nil
	case logic.Gt:
		return a > b, nil
	case logic.Le:
		return a <= b, nil
	case logic.Ge:
		return a >= b, nil
	}
	return false, errors.Errorf(errors.InvalidInput, "unknown comparison %q", op)
}
