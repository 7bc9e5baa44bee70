// Package resolve implements a goal-directed search for stable models.
//
// The machine proves goals against program clauses depth-first, in program order,
// keeping a coinductive hypothesis set (CHS) of the literals assumed true along the
// current branch. A call identical to a pending ancestor succeeds coinductively if
// there is a negation in between, which lets even loops over negation terminate. A
// call whose complement is in the CHS fails, which makes odd loops fail.
//
// Negated goals are proved with dual rules, as produced by the transform package. For
// programs without duals, a bounded sub-search with constructive constraints is used.
//
// After all query goals succeed, the consistency check of the program is proved with
// the same store and CHS, and only then a model is emitted.
//
// Each state of the search is immutable, built on persistent collections. A choice
// point holds a generator of alternative states, and backtracking just asks the latest
// choice point for another one.
package resolve

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/benbjohnson/immutable"

	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/store"
	"github.com/brunokim/sasp/unify"
)

// ErrExhausted is returned when there are no more models to find.
var ErrExhausted = stderrors.New("search exhausted")

// Options for running a machine.
type Options struct {
	OccursCheck bool
	// Maximum number of steps, or 0 for no limit.
	IterLimit int
	// Maximum number of constraints added when proving a negated goal without duals.
	NegationLimit int
	// Logger for search events. Defaults to discarding everything.
	Logger *slog.Logger
	// File to output one JSON object per step.
	DebugFilename string
}

// Stats counts search events.
type Stats struct {
	Steps       int `json:"steps"`
	Backtracks  int `json:"backtracks"`
	Coinductive int `json:"coinductive"`
	Reuses      int `json:"reuses"`
	Candidates  int `json:"candidates"`
	Models      int `json:"models"`
}

// alternatives generates the states of a choice point.
type alternatives interface {
	next() (state, bool, error)
}

// choicePoint represents an OR-stack frame.
type choicePoint struct {
	prev *choicePoint
	alt  alternatives
}

// Machine searches for models of a program.
type Machine struct {
	code    map[logic.Key][]*logic.Clause
	dual    bool
	opts    Options
	unifier unify.Unifier
	log     *slog.Logger
	stats   *Stats
	debug   *debugWriter

	query   []logic.Var
	initial state
	started bool
	seen    map[string]bool

	choicePoint *choicePoint
}

// New returns a machine for an already transformed program.
func New(p *logic.Program, opts Options) (*Machine, error) {
	if len(p.Clauses) == 0 && len(p.Query) == 0 {
		return nil, errors.Errorf(errors.InvalidInput, "empty program")
	}
	if opts.NegationLimit <= 0 {
		opts.NegationLimit = 64
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Machine{
		code:    make(map[logic.Key][]*logic.Clause),
		opts:    opts,
		unifier: unify.Unifier{OccursCheck: opts.OccursCheck},
		log:     logger,
		stats:   &Stats{},
		seen:    make(map[string]bool),
	}
	for _, c := range p.Clauses {
		if c.Head == nil {
			return nil, errors.Errorf(errors.InvalidInput, "integrity constraint must be transformed before search: %v", c)
		}
		if c.Head.IsBuiltin() || c.Head.Negated && c.Provenance == logic.Original {
			return nil, errors.Errorf(errors.InvalidInput, "invalid clause head: %v", c.Head)
		}
		key := c.Head.Key()
		m.code[key] = append(m.code[key], c)
		if c.Provenance == logic.Dual {
			m.dual = true
		}
	}
	var tasks []task
	var fresh int
	for _, lit := range p.Query {
		tasks = append(tasks, task{kind: callTask, lit: lit})
		for _, x := range lit.Vars() {
			fresh = max(fresh, x.Suffix())
		}
	}
	for _, x := range logic.Vars(queryTerms(p.Query)...) {
		if !x.IsAnonymous() {
			m.query = append(m.query, x)
		}
	}
	if len(p.Query) == 0 {
		for _, lit := range propositions(p) {
			tasks = append(tasks, task{kind: chooseTask, lit: lit})
		}
	}
	if p.Check != nil {
		tasks = append(tasks, task{kind: checkTask, lit: p.Check})
	}
	tasks = append(tasks, task{kind: finalTask})
	m.initial = state{
		store: store.New(),
		chs:   immutable.NewList[entry](),
		goals: pushTasks(tasks, nil),
		fresh: fresh,
	}
	if opts.DebugFilename != "" {
		m.debug = newDebugWriter(opts.DebugFilename, logger)
	}
	return m, nil
}

func queryTerms(query []*logic.Literal) []logic.Term {
	var terms []logic.Term
	for _, lit := range query {
		terms = append(terms, lit.Terms()...)
	}
	return terms
}

// propositions returns the 0-arity user predicates, in order of appearance.
func propositions(p *logic.Program) []*logic.Literal {
	var lits []*logic.Literal
	seen := make(map[logic.Key]bool)
	add := func(lit *logic.Literal) {
		if lit == nil || len(lit.Args) > 0 || lit.Aux || lit.IsBuiltin() {
			return
		}
		lit = lit.Positive()
		if seen[lit.Key()] {
			return
		}
		seen[lit.Key()] = true
		lits = append(lits, &logic.Literal{Name: lit.Name, Classical: lit.Classical})
	}
	for _, c := range p.Clauses {
		if c.Provenance != logic.Original {
			continue
		}
		add(c.Head)
		for _, lit := range c.Body {
			add(lit)
		}
	}
	return lits
}

// Stats returns the search statistics so far.
func (m *Machine) Stats() Stats {
	return *m.stats
}

// Close releases the debug file, if any.
func (m *Machine) Close() error {
	if m.debug == nil {
		return nil
	}
	return m.debug.close()
}

// Next returns the next model, or ErrExhausted if there are no more.
//
// Models with the same literals and bindings as an already returned one are skipped,
// even if their literals were proved in another order.
func (m *Machine) Next(ctx context.Context) (*Model, error) {
	for {
		st, err := m.solve(ctx)
		if err != nil {
			if err == ErrExhausted {
				m.log.Info("search exhausted", "models", m.stats.Models, "steps", m.stats.Steps)
			}
			return nil, err
		}
		model := m.buildModel(st)
		key := model.key()
		if m.seen[key] {
			m.log.Debug("skipping repeated model", "model", model.String())
			continue
		}
		m.seen[key] = true
		m.stats.Models++
		m.log.Info("found model", "index", m.stats.Models, "model", model.String())
		return model, nil
	}
}

// nested returns a machine that proves goals from st, sharing the program and stats.
func (m *Machine) nested(st state, goals *cont) *Machine {
	st.goals = goals
	return &Machine{
		code:    m.code,
		dual:    m.dual,
		opts:    m.opts,
		unifier: m.unifier,
		log:     m.log,
		stats:   m.stats,
		debug:   m.debug,
		initial: st,
	}
}

// solve runs the machine until all goals are proved, and returns the final state.
// Subsequent calls backtrack into the latest choice point.
func (m *Machine) solve(ctx context.Context) (state, error) {
	var st state
	var err error
	if !m.started {
		m.started = true
		st = m.initial
	} else if st, err = m.backtrack(); err != nil {
		return state{}, err
	}
	for {
		if err := m.tick(ctx); err != nil {
			return state{}, err
		}
		if st.goals == nil {
			return st, nil
		}
		m.debug.write(m.stats.Steps, st, m.choicePoint)
		next, err := m.execute(ctx, st)
		if err != nil {
			if !errors.IsLocal(err) {
				return state{}, err
			}
			if next, err = m.backtrack(); err != nil {
				return state{}, err
			}
		}
		st = next
	}
}

func (m *Machine) tick(ctx context.Context) error {
	m.stats.Steps++
	if m.opts.IterLimit > 0 && m.stats.Steps > m.opts.IterLimit {
		return errors.New("maximum iteration limit reached: %d", m.opts.IterLimit)
	}
	if m.stats.Steps%256 == 0 {
		return ctx.Err()
	}
	return nil
}

// backtrack returns the next alternative from the latest choice point, dropping
// exhausted ones.
func (m *Machine) backtrack() (state, error) {
	for m.choicePoint != nil {
		m.stats.Backtracks++
		st, ok, err := m.choicePoint.alt.next()
		if err != nil {
			return state{}, err
		}
		if ok {
			return st, nil
		}
		m.choicePoint = m.choicePoint.prev
	}
	return state{}, ErrExhausted
}

// choose creates a choice point and returns its first alternative.
func (m *Machine) choose(alt alternatives) (state, error) {
	m.choicePoint = &choicePoint{prev: m.choicePoint, alt: alt}
	st, ok, err := alt.next()
	if err != nil {
		return state{}, err
	}
	if !ok {
		m.choicePoint = m.choicePoint.prev
		return state{}, fail("no alternatives")
	}
	return st, nil
}

func fail(msg string, args ...interface{}) error {
	return errors.Errorf(errors.Failure, msg, args...)
}

func (m *Machine) execute(ctx context.Context, st state) (state, error) {
	t := st.goals.task
	st.goals = st.goals.next
	switch t.kind {
	case callTask:
		return m.call(ctx, st, t.lit, t.frame)
	case exitTask:
		if t.frame.entry >= 0 {
			st = st.succeed(t.frame.entry)
		}
		return st, nil
	case chooseTask:
		return m.choose(&stateAlternatives{states: []state{
			m.withCall(st, t.lit),
			m.withCall(st, t.lit.Complement()),
		}})
	case checkTask:
		m.stats.Candidates++
		m.log.Debug("checking candidate model", "candidate", m.stats.Candidates)
		return m.call(ctx, st, t.lit, nil)
	case finalTask:
		return m.finalCheck(st)
	}
	panic("resolve.Machine.execute: unhandled task kind")
}

func (m *Machine) withCall(st state, lit *logic.Literal) state {
	st.goals = &cont{task{kind: callTask, lit: lit}, st.goals}
	return st
}

// finalCheck rejects a branch where a literal and its complement both succeeded.
//
// Literals with free variables hold for all their values, so it's enough that a
// positive and a negated literal unify.
func (m *Machine) finalCheck(st state) (state, error) {
	var pos, neg []*logic.Literal
	itr := st.chs.Iterator()
	for !itr.Done() {
		_, e := itr.Next()
		if e.status != Succeeded {
			continue
		}
		if e.lit.Negated {
			neg = append(neg, e.lit)
		} else {
			pos = append(pos, e.lit)
		}
	}
	for _, l1 := range pos {
		for _, l2 := range neg {
			if l1.Key() != l2.Positive().Key() {
				continue
			}
			if _, err := m.unifier.UnifyArgs(st.store, l1.Args, l2.Args); err == nil {
				lit := st.store.ResolveLiteral(l1)
				m.log.Debug("rejected model with complementary literals", "literal", lit.String())
				return state{}, fail("%v and %v both hold", lit, st.store.ResolveLiteral(l2))
			}
		}
	}
	return st, nil
}

// stateAlternatives are precomputed states.
type stateAlternatives struct {
	states []state
}

func (a *stateAlternatives) next() (state, bool, error) {
	if len(a.states) == 0 {
		return state{}, false, nil
	}
	st := a.states[0]
	a.states = a.states[1:]
	return st, true, nil
}

// clauseAlternatives try each clause of a goal in order.
type clauseAlternatives struct {
	m       *Machine
	base    state
	goal    *logic.Literal
	frame   *frame
	clauses []*logic.Clause
}

func (a *clauseAlternatives) next() (state, bool, error) {
	for len(a.clauses) > 0 {
		c := a.clauses[0]
		a.clauses = a.clauses[1:]
		st, c := a.base.rename(c)
		s, err := a.m.unifier.UnifyArgs(st.store, a.goal.Args, c.Head.Args)
		if err != nil {
			if errors.IsLocal(err) {
				continue
			}
			return state{}, false, err
		}
		st.store = s
		tasks := make([]task, 0, len(c.Body)+1)
		for _, lit := range c.Body {
			tasks = append(tasks, task{kind: callTask, lit: lit, frame: a.frame})
		}
		tasks = append(tasks, task{kind: exitTask, frame: a.frame})
		st.goals = pushTasks(tasks, st.goals)
		return st, true, nil
	}
	return state{}, false, nil
}
