package resolve

import (
	"fmt"

	"github.com/benbjohnson/immutable"

	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/store"
)

// Status of a literal within the coinductive hypothesis set.
type Status int

const (
	// Pending literals are being proved by an ancestor goal.
	Pending Status = iota
	// Succeeded literals were proved in the current branch.
	Succeeded
)

func (s Status) String() string {
	if s == Pending {
		return "pending"
	}
	return "succeeded"
}

type entry struct {
	lit    *logic.Literal
	status Status
}

type taskKind int

const (
	callTask taskKind = iota
	exitTask
	// chooseTask proves either a literal or its complement.
	chooseTask
	// checkTask proves the consistency check of a candidate model.
	checkTask
	// finalTask rejects models with a literal and its complement.
	finalTask
)

// frame is a goal being proved, linked to the goal that called it.
type frame struct {
	id     int
	lit    *logic.Literal
	parent *frame
	// Index of the literal in the CHS, or -1.
	entry int
}

type task struct {
	kind taskKind
	lit  *logic.Literal
	// Frame of the caller, for call tasks, or frame being exited, for exit tasks.
	frame *frame
}

func (t task) String() string {
	switch t.kind {
	case callTask:
		return fmt.Sprintf("call %v", t.lit)
	case exitTask:
		return fmt.Sprintf("exit %v", t.frame.lit)
	case chooseTask:
		return fmt.Sprintf("choose %v", t.lit)
	case checkTask:
		return fmt.Sprintf("check %v", t.lit)
	case finalTask:
		return "final"
	}
	return "unknown"
}

// cont is an immutable list of tasks still to be done.
type cont struct {
	task task
	next *cont
}

func pushTasks(tasks []task, next *cont) *cont {
	for i := len(tasks) - 1; i >= 0; i-- {
		next = &cont{tasks[i], next}
	}
	return next
}

func (c *cont) len() int {
	n := 0
	for ; c != nil; c = c.next {
		n++
	}
	return n
}

// event records a goal within the justification of a model.
type event struct {
	id, parent int
	lit        *logic.Literal
	kind       NodeKind
	prev       *event
}

// state is a version of the search. Every field is immutable, so that restoring a
// state is enough to backtrack.
type state struct {
	store *store.Store
	chs   *immutable.List[entry]
	goals *cont
	trace *event
	// Counter for fresh variables and frame ids.
	fresh int
}

func (st state) nextID() (state, int) {
	st.fresh++
	return st, st.fresh
}

func (st state) record(id int, parent *frame, lit *logic.Literal, kind NodeKind) state {
	var parentID int
	if parent != nil {
		parentID = parent.id
	}
	st.trace = &event{id: id, parent: parentID, lit: lit, kind: kind, prev: st.trace}
	return st
}

// findCHS returns the index of an entry identical to lit, with current bindings.
func (st state) findCHS(lit *logic.Literal) (int, Status, bool) {
	itr := st.chs.Iterator()
	for !itr.Done() {
		i, e := itr.Next()
		if st.store.ResolveLiteral(e.lit).Eq(lit) {
			return i, e.status, true
		}
	}
	return -1, Pending, false
}

func (st state) insertCHS(lit *logic.Literal, status Status) (state, int) {
	st.chs = st.chs.Append(entry{lit, status})
	return st, st.chs.Len() - 1
}

func (st state) succeed(i int) state {
	e := st.chs.Get(i)
	e.status = Succeeded
	st.chs = st.chs.Set(i, e)
	return st
}

// ancestor walks up from parent looking for a frame with a literal identical to lit.
// It also returns the number of negated frames in between, not counting the auxiliary
// literals internal to dual rules.
func (st state) ancestor(parent *frame, lit *logic.Literal) (*frame, int) {
	negations := 0
	for f := parent; f != nil; f = f.parent {
		if f.lit.IsForall() {
			continue
		}
		if st.store.ResolveLiteral(f.lit).Eq(lit) {
			return f, negations
		}
		if f.lit.Negated && !(f.lit.Aux && f.lit.Provenance == logic.Dual) {
			negations++
		}
	}
	return nil, 0
}

// rename returns a copy of clause with fresh variables.
func (st state) rename(c *logic.Clause) (state, *logic.Clause) {
	xs := c.Vars()
	if len(xs) == 0 {
		return st, c
	}
	subst := make(map[logic.Var]logic.Var, len(xs))
	for _, x := range xs {
		st.fresh++
		subst[x] = x.WithSuffix(st.fresh)
	}
	f := func(t logic.Term) logic.Term { return replaceVars(t, subst) }
	c2 := &logic.Clause{Provenance: c.Provenance}
	if c.Head != nil {
		c2.Head = c.Head.Map(f)
	}
	c2.Body = make([]*logic.Literal, len(c.Body))
	for i, lit := range c.Body {
		c2.Body[i] = lit.Map(f)
	}
	return st, c2
}

func replaceVars(term logic.Term, subst map[logic.Var]logic.Var) logic.Term {
	switch t := term.(type) {
	case logic.Var:
		if y, ok := subst[t]; ok {
			return y
		}
		return t
	case *logic.Comp:
		if logic.IsGround(t) {
			return t
		}
		args := make([]logic.Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = replaceVars(arg, subst)
		}
		return logic.NewComp(t.Functor, args...)
	default:
		return term
	}
}

// substitute replaces all occurrences of x in term by val.
func substitute(term logic.Term, x logic.Var, val logic.Term) logic.Term {
	switch t := term.(type) {
	case logic.Var:
		if t == x {
			return val
		}
		return t
	case *logic.Comp:
		if logic.IsGround(t) {
			return t
		}
		args := make([]logic.Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = substitute(arg, x, val)
		}
		return logic.NewComp(t.Functor, args...)
	default:
		return term
	}
}
