package resolve

import (
	"context"

	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/store"
)

// call proves lit, called from parent.
func (m *Machine) call(ctx context.Context, st state, lit *logic.Literal, parent *frame) (state, error) {
	if lit.IsBuiltin() {
		return m.builtin(ctx, st, lit, parent)
	}
	goal := st.store.ResolveLiteral(lit)
	// 1. Fail if the complement was already assumed in this branch.
	if _, _, ok := st.findCHS(goal.Complement()); ok {
		m.log.Debug("complement in CHS", "goal", goal.String())
		return state{}, fail("complement of %v in CHS", goal)
	}
	// 2. Succeed coinductively on an identical pending ancestor, if there's a negation
	// in between. Otherwise it's a positive loop, that can't be part of a minimal model.
	if anc, negations := st.ancestor(parent, goal); anc != nil {
		if !goal.Negated && negations == 0 {
			m.log.Debug("positive loop", "goal", goal.String())
			return state{}, fail("positive loop on %v", goal)
		}
		m.stats.Coinductive++
		m.log.Debug("coinductive success", "goal", goal.String())
		for _, x := range goal.Vars() {
			st.store = st.store.SetLoop(x, store.Loop)
		}
		st, id := st.nextID()
		return st.record(id, parent, lit, Coinductive), nil
	}
	// 3. Reuse an already proved literal.
	if _, status, ok := st.findCHS(goal); ok && status == Succeeded {
		m.stats.Reuses++
		st, id := st.nextID()
		return st.record(id, parent, lit, Reused), nil
	}
	if goal.Negated && !m.dual {
		return m.negate(ctx, st, lit, parent)
	}
	// 4. Expand goal with each clause.
	st, id := st.nextID()
	st, i := st.insertCHS(lit, Pending)
	f := &frame{id: id, lit: lit, parent: parent, entry: i}
	st = st.record(id, parent, lit, Expanded)
	return m.choose(&clauseAlternatives{
		m:       m,
		base:    st,
		goal:    lit,
		frame:   f,
		clauses: m.code[lit.Key()],
	})
}

// negate proves 'not P' without duals, by searching for a proof of P.
//
// If there is none, 'not P' succeeds. If a proof binds a single variable of P to a
// ground value, that value is forbidden and the search is repeated. Any other proof
// makes 'not P' fail.
func (m *Machine) negate(ctx context.Context, st state, lit *logic.Literal, parent *frame) (state, error) {
	pos := lit.Positive()
	st, id := st.nextID()
	f := &frame{id: id, lit: lit, parent: parent, entry: -1}
	for round := 0; round < m.opts.NegationLimit; round++ {
		sub := m.nested(st, pushTasks([]task{{kind: callTask, lit: pos, frame: f}}, nil))
		res, err := sub.solve(ctx)
		if err == ErrExhausted {
			st, _ = st.insertCHS(lit, Succeeded)
			return st.record(id, parent, lit, Negation), nil
		}
		if err != nil {
			return state{}, err
		}
		x, val, ok := singleBinding(st.store, res.store, pos)
		if !ok {
			m.log.Debug("negation fails", "goal", st.store.ResolveLiteral(lit).String())
			return state{}, fail("%v is provable", pos)
		}
		if st.store, err = st.store.AddConstraint(x, val); err != nil {
			return state{}, err
		}
	}
	m.log.Warn("negation limit reached", "goal", st.store.ResolveLiteral(lit).String(), "limit", m.opts.NegationLimit)
	return state{}, fail("negation limit reached for %v", lit)
}

// singleBinding returns the variable of lit that was bound to a ground value from s1 to
// s2, if that was the single change.
func singleBinding(s1, s2 *store.Store, lit *logic.Literal) (logic.Var, logic.Term, bool) {
	var x logic.Var
	var val logic.Term
	found := false
	seen := make(map[logic.Var]bool)
	for _, y := range s1.ResolveLiteral(lit).Vars() {
		v := s2.Lookup(y)
		if !v.Bound {
			if seen[v.Var] {
				// Two distinct variables became aliases.
				return x, nil, false
			}
			seen[v.Var] = true
			continue
		}
		t := s2.Resolve(y)
		if found || !logic.IsGround(t) {
			return x, nil, false
		}
		x, val, found = y, t, true
	}
	return x, val, found
}
