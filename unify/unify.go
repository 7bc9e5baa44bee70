// Package unify implements unification of terms over a constraint store.
//
// Unification never mutates a store: it returns a new version on success, and any
// error leaves the input version as the one to continue from. Errors are kinded, and
// all of them are recoverable by backtracking.
package unify

import (
	"fmt"

	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/store"
)

// Unifier unifies terms, optionally checking that a variable doesn't occur in its value.
type Unifier struct {
	OccursCheck bool
}

// Binding is a variable that was bound or linked during unification, and the term it
// was unified with.
type Binding struct {
	Var  logic.Var
	Term logic.Term
}

func (b Binding) String() string {
	return fmt.Sprintf("%v = %v", b.Var, b.Term)
}

// Unify returns a store where a and b are equal.
func (u Unifier) Unify(s *store.Store, a, b logic.Term) (*store.Store, error) {
	s, _, err := u.unify(s, a, b, true)
	return s, err
}

// UnifyArgs unifies two term lists pairwise, left to right.
func (u Unifier) UnifyArgs(s *store.Store, xs, ys []logic.Term) (*store.Store, error) {
	if len(xs) != len(ys) {
		return nil, errors.Errorf(errors.UnificationFailure, "arity mismatch: %d != %d", len(xs), len(ys))
	}
	for i := range xs {
		var err error
		if s, err = u.Unify(s, xs[i], ys[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MGU unifies a and b and returns the bindings made, in order.
//
// An empty list of bindings means that a and b were already identical.
func (u Unifier) MGU(s *store.Store, a, b logic.Term) (*store.Store, []Binding, error) {
	return u.unify(s, a, b, true)
}

// Deref follows bindings of term until it finds a non-variable or an unbound variable.
// Unbound variables are returned as their canonical representative.
func Deref(s *store.Store, term logic.Term) logic.Term {
	for {
		x, ok := term.(logic.Var)
		if !ok {
			return term
		}
		v := s.Lookup(x)
		if !v.Bound {
			return v.Var
		}
		term = v.Term
	}
}

type compPair struct {
	a, b *logic.Comp
}

// unify pushes term pairs on an explicit stack and returns the bindings made.
//
// With checked unset, bindings skip testing forbidden patterns. That's the mode used for
// trial unifications, which must not recurse into the constraints of other variables.
func (u Unifier) unify(s *store.Store, a, b logic.Term, checked bool) (*store.Store, []Binding, error) {
	var err error
	var trail []Binding
	var seen map[compPair]struct{}
	stack := []logic.Term{a, b}
	for len(stack) > 0 {
		// Pop term pair from stack.
		n := len(stack)
		t1, t2 := Deref(s, stack[n-2]), Deref(s, stack[n-1])
		stack = stack[:n-2]
		x1, isVar1 := t1.(logic.Var)
		x2, isVar2 := t2.(logic.Var)
		switch {
		case isVar1 && isVar2:
			if x1 == x2 {
				// 1. Same canonical variable, nothing to do.
				continue
			}
			// 2. Two unbound variables, merge them.
			if s, err = u.link(s, x1, x2); err != nil {
				return nil, nil, err
			}
			trail = append(trail, Binding{x1, x2})
		case isVar1:
			// 3. One variable and a value, check constraints and bind.
			if s, err = u.bind(s, x1, t2, checked); err != nil {
				return nil, nil, err
			}
			trail = append(trail, Binding{x1, t2})
		case isVar2:
			if s, err = u.bind(s, x2, t1, checked); err != nil {
				return nil, nil, err
			}
			trail = append(trail, Binding{x2, t1})
		default:
			// 4. Two values, compare them structurally.
			c1, ok1 := t1.(*logic.Comp)
			c2, ok2 := t2.(*logic.Comp)
			if !ok1 || !ok2 {
				if !logic.Eq(t1, t2) {
					return nil, nil, mismatch(t1, t2)
				}
				continue
			}
			if c1 == c2 {
				continue
			}
			if c1.Functor != c2.Functor || len(c1.Args) != len(c2.Args) {
				return nil, nil, mismatch(t1, t2)
			}
			// Cyclic terms may present the same pair again.
			if seen == nil {
				seen = make(map[compPair]struct{})
			}
			if _, ok := seen[compPair{c1, c2}]; ok {
				continue
			}
			seen[compPair{c1, c2}] = struct{}{}
			// Push args in reverse, so they are unified left to right.
			for i := len(c1.Args) - 1; i >= 0; i-- {
				stack = append(stack, c1.Args[i], c2.Args[i])
			}
		}
	}
	return s, trail, nil
}

func mismatch(t1, t2 logic.Term) error {
	return errors.Errorf(errors.UnificationFailure, "%v != %v", t1, t2)
}

func (u Unifier) link(s *store.Store, x, y logic.Var) (*store.Store, error) {
	vx, vy := s.Lookup(x), s.Lookup(y)
	if vx.Constraints.Bindable == store.Frozen && vy.Constraints.Bindable == store.Frozen {
		return nil, errors.Errorf(errors.FrozenVariable, "can't unify frozen %v and %v", x, y)
	}
	return s.Link(x, y)
}

func (u Unifier) bind(s *store.Store, x logic.Var, val logic.Term, checked bool) (*store.Store, error) {
	v := s.Lookup(x)
	if v.Constraints.Bindable == store.Frozen {
		return nil, errors.Errorf(errors.FrozenVariable, "can't bind frozen %v to %v", x, val)
	}
	if u.OccursCheck && occurs(s, v.Var, val) {
		return nil, errors.Errorf(errors.OccursCheckViolation, "%v occurs in %v", x, s.Resolve(val))
	}
	if !checked {
		return s.Bind(x, val)
	}
	residuals, err := u.testConstraints(s, v.Var, v.Constraints.Forbidden, val)
	if err != nil {
		return nil, err
	}
	if s, err = s.Bind(x, val); err != nil {
		return nil, err
	}
	for _, r := range residuals {
		if s, err = s.AddConstraint(r.Var, r.Term); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func occurs(s *store.Store, x logic.Var, term logic.Term) bool {
	for _, y := range logic.Vars(s.Resolve(term)) {
		if y == x {
			return true
		}
	}
	return false
}

// testConstraints checks whether binding x to val is allowed by its forbidden patterns.
//
// Each pattern is tried with a trial unification against val, whose store is always
// discarded:
//
// * if the trial fails, the pattern can never match and is satisfied;
//
// * if the trial succeeds with no bindings, val is identical to the pattern;
//
// * if the trial succeeds binding a single variable, the pattern is satisfied as long
// as that variable doesn't get the same value, which is returned as a residual constraint.
//
// A trial that succeeds with more bindings is treated as a violation.
func (u Unifier) testConstraints(s *store.Store, x logic.Var, forbidden []logic.Term, val logic.Term) ([]Binding, error) {
	var residuals []Binding
	for _, pattern := range forbidden {
		_, bindings, err := u.unify(s, val, pattern, false)
		if err != nil {
			if errors.IsLocal(err) {
				continue
			}
			return nil, err
		}
		switch len(bindings) {
		case 0:
			return nil, errors.Errorf(errors.ConstraintViolation, "%v must not be %v", x, s.Resolve(pattern))
		case 1:
			residuals = append(residuals, bindings[0])
		default:
			return nil, errors.Errorf(errors.ConstraintViolation, "%v = %v may match %v", x, s.Resolve(val), s.Resolve(pattern))
		}
	}
	return residuals, nil
}

// Disunify returns the stores where a and b are different, one for each possible way.
//
// If a and b can't be unified, the single alternative is the input store. If they are
// identical, there is no alternative. If unification would bind V1=t1, ..., Vn=tn,
// the alternatives are, in order: V1≠t1; V1=t1 and V2≠t2; and so on.
func (u Unifier) Disunify(s *store.Store, a, b logic.Term) ([]*store.Store, error) {
	_, bindings, err := u.unify(s, a, b, true)
	if err != nil {
		if errors.IsLocal(err) {
			return []*store.Store{s}, nil
		}
		return nil, err
	}
	if len(bindings) == 0 {
		return nil, errors.Errorf(errors.ConstraintViolation, "%v is identical to %v", s.Resolve(a), s.Resolve(b))
	}
	var alts []*store.Store
	curr := s
	for _, binding := range bindings {
		if alt, err := curr.AddConstraint(binding.Var, binding.Term); err == nil {
			alts = append(alts, alt)
		} else if !errors.IsLocal(err) {
			return nil, err
		}
		if curr, err = u.Unify(curr, binding.Var, binding.Term); err != nil {
			break
		}
	}
	if len(alts) == 0 {
		return nil, errors.Errorf(errors.ConstraintViolation, "%v can't be made different from %v", s.Resolve(a), s.Resolve(b))
	}
	return alts, nil
}
