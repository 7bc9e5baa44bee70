// Package store implements a persistent variable store with disequality constraints.
//
// Variables are registered lazily in an arena of cells, indexed by int ids. A cell may
// be bound to a term, be an alias to an older cell, or be unbound with a set of
// constraints. Every operation returns a new Store and leaves the receiver untouched,
// sharing structure between both versions. Backtracking is just holding on to an older
// version.
//
// Alias chains only point from younger to older cells, so they are never cyclic. A
// lookup walks the chain on every call, and chains are not compressed.
package store

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/benbjohnson/immutable"

	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
)

// Bindable restricts what can be done with an unbound variable.
type Bindable int

const (
	// Free variables can be bound and constrained.
	Free Bindable = iota
	// BindOnly variables behave like free ones, but dominate them when merged.
	BindOnly
	// Frozen variables can't be bound nor receive new constraints.
	Frozen
)

func (b Bindable) String() string {
	switch b {
	case Free:
		return "free"
	case BindOnly:
		return "bind-only"
	case Frozen:
		return "frozen"
	}
	return "unknown"
}

// LoopStatus tells whether a variable is tied to a coinductive success.
type LoopStatus int

const (
	NonLoop LoopStatus = iota
	// Loop variables appeared in a goal that succeeded coinductively. A disequality
	// between a loop and a non-loop variable only constrains the loop variable.
	Loop
	// ForallLocked variables are quantified by an enclosing forall. This status is
	// permanent.
	ForallLocked
)

func (s LoopStatus) String() string {
	switch s {
	case NonLoop:
		return "non-loop"
	case Loop:
		return "loop"
	case ForallLocked:
		return "forall-locked"
	}
	return "unknown"
}

// Constraints attached to an unbound variable.
type Constraints struct {
	// Forbidden are the values the variable must not unify with, in standard order.
	Forbidden []logic.Term
	Bindable  Bindable
	Loop      LoopStatus
}

// IsZero returns whether there are no constraints.
func (c Constraints) IsZero() bool {
	return len(c.Forbidden) == 0 && c.Bindable == Free && c.Loop == NonLoop
}

// Value is the result of looking up a variable.
type Value struct {
	// Var is the canonical representative of the variable.
	Var logic.Var
	// ID is the canonical cell id, or -1 if the variable was never registered.
	ID          int
	Bound       bool
	Term        logic.Term
	Constraints Constraints
}

type cellKind int

const (
	unbound cellKind = iota
	bound
	alias
)

type cell struct {
	kind  cellKind
	owner logic.Var
	term  logic.Term
	alias int
	cons  Constraints
}

type varHasher struct{}

func (varHasher) Hash(x logic.Var) uint32 {
	h := fnv.New32a()
	h.Write([]byte(x.Name))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(x.Suffix()))
	h.Write(buf[:])
	return h.Sum32()
}

func (varHasher) Equal(a, b logic.Var) bool {
	return a == b
}

// Store is an immutable mapping of variables to values.
type Store struct {
	ids   *immutable.Map[logic.Var, int]
	cells *immutable.List[cell]
}

// New returns an empty store.
func New() *Store {
	return &Store{
		ids:   immutable.NewMap[logic.Var, int](varHasher{}),
		cells: immutable.NewList[cell](),
	}
}

// Len returns the number of registered variables.
func (s *Store) Len() int {
	return s.cells.Len()
}

func (s *Store) walk(id int) int {
	for {
		c := s.cells.Get(id)
		if c.kind != alias {
			return id
		}
		id = c.alias
	}
}

func (s *Store) canonicalID(x logic.Var) (int, bool) {
	id, ok := s.ids.Get(x)
	if !ok {
		return -1, false
	}
	return s.walk(id), true
}

// register returns the store with x registered and the canonical id of x.
func (s *Store) register(x logic.Var) (*Store, int) {
	if id, ok := s.canonicalID(x); ok {
		return s, id
	}
	id := s.cells.Len()
	return &Store{
		ids:   s.ids.Set(x, id),
		cells: s.cells.Append(cell{kind: unbound, owner: x}),
	}, id
}

func (s *Store) set(id int, c cell) *Store {
	return &Store{ids: s.ids, cells: s.cells.Set(id, c)}
}

// Lookup resolves the alias chain of x and returns its canonical value.
func (s *Store) Lookup(x logic.Var) Value {
	id, ok := s.canonicalID(x)
	if !ok {
		return Value{Var: x, ID: -1}
	}
	c := s.cells.Get(id)
	return Value{Var: c.owner, ID: id, Bound: c.kind == bound, Term: c.term, Constraints: c.cons}
}

// Canonical returns the representative variable of x's alias class.
func (s *Store) Canonical(x logic.Var) logic.Var {
	return s.Lookup(x).Var
}

// Bind records x as bound to term.
func (s *Store) Bind(x logic.Var, term logic.Term) (*Store, error) {
	s, id := s.register(x)
	c := s.cells.Get(id)
	if c.kind == bound {
		return nil, errors.Errorf(errors.UnificationFailure, "%v is already bound to %v", x, c.term)
	}
	if c.cons.Bindable == Frozen {
		return nil, errors.Errorf(errors.FrozenVariable, "can't bind frozen %v to %v", x, term)
	}
	return s.set(id, cell{kind: bound, owner: c.owner, term: term}), nil
}

// Link makes x and y aliases of each other, merging their constraints.
//
// The younger cell becomes an alias of the older. Flags combine to the most restrictive.
// It's a no-op if both are already the same.
func (s *Store) Link(x, y logic.Var) (*Store, error) {
	s, idx := s.register(x)
	s, idy := s.register(y)
	if idx == idy {
		return s, nil
	}
	if idx > idy {
		idx, idy = idy, idx
	}
	older, younger := s.cells.Get(idx), s.cells.Get(idy)
	if older.kind == bound || younger.kind == bound {
		return nil, errors.Errorf(errors.UnificationFailure, "can't link bound variables %v and %v", older.owner, younger.owner)
	}
	cons := Constraints{
		Bindable: max(older.cons.Bindable, younger.cons.Bindable),
		Loop:     max(older.cons.Loop, younger.cons.Loop),
	}
	s = s.set(idy, cell{kind: alias, owner: younger.owner, alias: idx})
	var forbidden []logic.Term
	for _, patterns := range [][]logic.Term{older.cons.Forbidden, younger.cons.Forbidden} {
		for _, pattern := range patterns {
			pattern = s.Resolve(pattern)
			if pattern == logic.Term(older.owner) {
				return nil, errors.Errorf(errors.IncompatibleVariables, "%v and %v are constrained to be different", older.owner, younger.owner)
			}
			forbidden = insertTerm(forbidden, pattern)
		}
	}
	cons.Forbidden = forbidden
	return s.set(idx, cell{kind: unbound, owner: older.owner, cons: cons}), nil
}

// AddConstraint forbids x from having the same value as pattern.
//
// If pattern is an unbound variable, the constraint is mutual, unless exactly one of
// them is a loop variable. In that case, only the loop variable is constrained.
// If x is bound, it's an error only if the pattern is identical to its value.
func (s *Store) AddConstraint(x logic.Var, pattern logic.Term) (*Store, error) {
	pattern = s.Resolve(pattern)
	v := s.Lookup(x)
	if v.Bound {
		if logic.Eq(s.Resolve(v.Term), pattern) {
			return nil, errors.Errorf(errors.ConstraintViolation, "%v is bound to %v", x, pattern)
		}
		return s, nil
	}
	y, ok := pattern.(logic.Var)
	if !ok {
		return s.addForbidden(x, pattern)
	}
	w := s.Lookup(y)
	if w.Var == v.Var {
		return nil, errors.Errorf(errors.SelfConstraint, "can't constrain %v against itself", x)
	}
	xLoop := v.Constraints.Loop == Loop
	yLoop := w.Constraints.Loop == Loop
	switch {
	case xLoop && !yLoop:
		return s.addForbidden(x, y)
	case yLoop && !xLoop:
		return s.addForbidden(y, v.Var)
	}
	s, err := s.addForbidden(x, y)
	if err != nil {
		return nil, err
	}
	return s.addForbidden(y, v.Var)
}

func (s *Store) addForbidden(x logic.Var, pattern logic.Term) (*Store, error) {
	s, id := s.register(x)
	c := s.cells.Get(id)
	if c.cons.Bindable == Frozen {
		return nil, errors.Errorf(errors.ConstraintOnFrozen, "can't constrain frozen %v with %v", x, pattern)
	}
	c.cons.Forbidden = insertTerm(c.cons.Forbidden, pattern)
	return s.set(id, c), nil
}

// SetBindable changes the bindable flag of an unbound x.
func (s *Store) SetBindable(x logic.Var, b Bindable) *Store {
	s, id := s.register(x)
	c := s.cells.Get(id)
	if c.kind != unbound {
		return s
	}
	c.cons.Bindable = b
	return s.set(id, c)
}

// SetLoop changes the loop status of an unbound x. ForallLocked is never changed.
func (s *Store) SetLoop(x logic.Var, status LoopStatus) *Store {
	s, id := s.register(x)
	c := s.cells.Get(id)
	if c.kind != unbound || c.cons.Loop == ForallLocked || c.cons.Loop == status {
		return s
	}
	c.cons.Loop = status
	return s.set(id, c)
}

// Resolve replaces all bound variables within term by their values. Unbound variables
// are replaced by their canonical representative.
func (s *Store) Resolve(term logic.Term) logic.Term {
	return s.resolve(term, nil)
}

// ResolveLiteral resolves all terms within lit.
func (s *Store) ResolveLiteral(lit *logic.Literal) *logic.Literal {
	return lit.Map(s.Resolve)
}

func (s *Store) resolve(term logic.Term, visiting []int) logic.Term {
	switch t := term.(type) {
	case logic.Var:
		id, ok := s.canonicalID(t)
		if !ok {
			return t
		}
		c := s.cells.Get(id)
		if c.kind != bound {
			return c.owner
		}
		for _, v := range visiting {
			if v == id {
				// Cyclic term, possible without occurs check.
				return c.owner
			}
		}
		return s.resolve(c.term, append(visiting, id))
	case *logic.Comp:
		if logic.IsGround(t) {
			return t
		}
		args := make([]logic.Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = s.resolve(arg, visiting)
		}
		return logic.NewComp(t.Functor, args...)
	default:
		return term
	}
}

// insertTerm returns a copy of the sorted slice terms with t, if it's not present.
func insertTerm(terms []logic.Term, t logic.Term) []logic.Term {
	i := sort.Search(len(terms), func(i int) bool { return !logic.Less(terms[i], t) })
	if i < len(terms) && logic.Eq(terms[i], t) {
		return terms
	}
	result := make([]logic.Term, len(terms)+1)
	copy(result, terms[:i])
	result[i] = t
	copy(result[i+1:], terms[i:])
	return result
}
