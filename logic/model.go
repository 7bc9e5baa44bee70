// Package logic implements the term language of answer set programs.
//
// A logic term can fall in one of three categories:
//
// * atomic: a term that represents an immutable value, an atom or an int.
//
// * variable: a term that represents an unbound, yet-to-be-resolved term.
//
// * complex: a compound term that contains other terms, recursively.
//
// Programs are made of literals, not terms. A literal is a predicate applied to
// terms, that may be negated by default negation ('not p') or classical negation
// ('-p'). A clause of the form 'head :- lit1, lit2.' must be read as "head holds if
// lit1 and lit2 hold". A clause with no literals in the body is called a fact, and a
// clause without head is an integrity constraint: its body must never hold.
//
// Metadata that other systems encode within predicate names, like the negation and
// the provenance of synthesized rules, is carried as explicit fields of Literal.
package logic

import (
	"fmt"
	"strings"
)

// ---- Basic types

// Term is a representation of a logic term.
type Term interface {
	fmt.Stringer
	vars(seen map[Var]struct{}, xs []Var) []Var
	hasVar() bool
}

// Atom is an atomic term representing a symbol.
type Atom struct {
	// Name is the identifier for an atom.
	Name string
}

// Int is an atomic term representing an integer.
type Int struct {
	// Value is the (immutable) value of an int.
	Value int
}

// Var is a variable term.
type Var struct {
	// Name is the identifier for a var.
	Name   string
	suffix int
}

// Comp is a complex term, representing an immutable compound term.
type Comp struct {
	// Functor is the primary identifier of a comp.
	Functor string
	// Args is the list of terms within this term.
	Args    []Term
	hasVar_ bool
}

// ---- Public vars

var (
	// EmptyList is an atom representing an empty list.
	EmptyList = Atom{"[]"}
)

const (
	// ListFunctor is the functor of a list cell.
	ListFunctor = "."
)

// ---- Vars

// NewVar creates a new var.
//
// It panics if the name doesn't start with an uppercase letter or an underscore.
func NewVar(name string) Var {
	if !IsVar(name) {
		panic(fmt.Sprintf("NewVar: invalid name: %q", name))
	}
	return Var{name, 0}
}

// WithSuffix creates a new var with the same name and provided suffix. Used to
// generate vars from the same template.
func (x Var) WithSuffix(suffix int) Var {
	return Var{x.Name, suffix}
}

// Suffix returns the var's suffix, which is 0 for vars written in a program.
func (x Var) Suffix() int {
	return x.suffix
}

// IsAnonymous returns whether the var was written as '_'.
func (x Var) IsAnonymous() bool {
	return x.Name == "_"
}

// ---- Compound terms

// NewComp creates a compound term.
func NewComp(functor string, terms ...Term) *Comp {
	var hasVar bool
	for _, term := range terms {
		if term.hasVar() {
			hasVar = true
			break
		}
	}
	return &Comp{Functor: functor, Args: terms, hasVar_: hasVar}
}

// Indicator is a notation for a predicate, usually shown as name/arity, e.g., f/2.
type Indicator struct {
	// Name is the predicate name.
	Name string
	// Arity is the predicate's number of args.
	Arity int
}

func (i Indicator) String() string {
	return fmt.Sprintf("%s/%d", i.Name, i.Arity)
}

// Indicator returns the functor's indicator.
func (c *Comp) Indicator() Indicator {
	return Indicator{c.Functor, len(c.Args)}
}

// ---- Lists

// NewList creates a list with the provided terms and EmptyList as tail.
func NewList(terms ...Term) Term {
	return NewIncompleteList(terms, EmptyList)
}

// NewIncompleteList creates a list with the provided terms and tail.
func NewIncompleteList(terms []Term, tail Term) Term {
	for i := len(terms) - 1; i >= 0; i-- {
		tail = NewComp(ListFunctor, terms[i], tail)
	}
	return tail
}

// unrollList returns the elements of a list and its tail.
func (c *Comp) unrollList() ([]Term, Term) {
	var elems []Term
	var tail Term = c
	for {
		l, ok := tail.(*Comp)
		if !ok || l.Functor != ListFunctor || len(l.Args) != 2 {
			return elems, tail
		}
		elems = append(elems, l.Args[0])
		tail = l.Args[1]
	}
}

// ---- Vars()

// Vars returns a set with all term variables, in insertion order.
func Vars(terms ...Term) []Var {
	var xs []Var
	seen := make(map[Var]struct{})
	for _, term := range terms {
		if term.hasVar() {
			xs = term.vars(seen, xs)
		}
	}
	return xs
}

func (t Atom) vars(seen map[Var]struct{}, xs []Var) []Var { return xs }
func (t Int) vars(seen map[Var]struct{}, xs []Var) []Var  { return xs }

func (t Var) vars(seen map[Var]struct{}, xs []Var) []Var {
	if _, ok := seen[t]; ok {
		return xs
	}
	seen[t] = struct{}{}
	return append(xs, t)
}

func (t *Comp) vars(seen map[Var]struct{}, xs []Var) []Var {
	if !t.hasVar_ {
		return xs
	}
	for _, term := range t.Args {
		xs = term.vars(seen, xs)
	}
	return xs
}

// ---- hasVar()

func (t Atom) hasVar() bool  { return false }
func (t Int) hasVar() bool   { return false }
func (t Var) hasVar() bool   { return true }
func (t *Comp) hasVar() bool { return t.hasVar_ }

// IsGround returns whether term contains no variables.
func IsGround(term Term) bool {
	return !term.hasVar()
}

// ---- Comparisons

func termOrder(t Term) int {
	switch t.(type) {
	case Var:
		return 1
	case Int:
		return 2
	case Atom:
		return 3
	case *Comp:
		return 4
	default:
		panic(fmt.Sprintf("logic.termOrder: unhandled type %T", t))
	}
}

type ordering int

const (
	less ordering = iota
	equal
	more
)

func compareStrings(s1, s2 string) ordering {
	if s1 < s2 {
		return less
	}
	if s1 > s2 {
		return more
	}
	return equal
}

func compareInts(a, b int) ordering {
	if a < b {
		return less
	}
	if a > b {
		return more
	}
	return equal
}

func compare(t1, t2 Term) ordering {
	switch u := t1.(type) {
	case Atom:
		if v, ok := t2.(Atom); ok {
			return compareStrings(u.Name, v.Name)
		}
	case Int:
		if v, ok := t2.(Int); ok {
			return compareInts(u.Value, v.Value)
		}
	case Var:
		if v, ok := t2.(Var); ok {
			return u.compare(v)
		}
	case *Comp:
		if v, ok := t2.(*Comp); ok {
			return u.compare(v)
		}
	default:
		panic(fmt.Sprintf("logic.compare: unhandled type %T", t1))
	}
	return compareInts(termOrder(t1), termOrder(t2))
}

func (x Var) compare(other Var) ordering {
	if o := compareStrings(x.Name, other.Name); o != equal {
		return o
	}
	return compareInts(x.suffix, other.suffix)
}

func (c *Comp) compare(other *Comp) ordering {
	if o := compareInts(len(c.Args), len(other.Args)); o != equal {
		return o
	}
	if o := compareStrings(c.Functor, other.Functor); o != equal {
		return o
	}
	for i := 0; i < len(c.Args); i++ {
		if o := compare(c.Args[i], other.Args[i]); o != equal {
			return o
		}
	}
	return equal
}

func compareTerms(ts1, ts2 []Term) ordering {
	if o := compareInts(len(ts1), len(ts2)); o != equal {
		return o
	}
	for i := range ts1 {
		if o := compare(ts1[i], ts2[i]); o != equal {
			return o
		}
	}
	return equal
}

// Less returns the order between t1 and t2, following the standard of terms.
//
// The order of terms is: Vars < Ints < Atoms < Comps. Comps are first compared by
// arity, then by functor, then by args pairwise.
func Less(t1, t2 Term) bool {
	return compare(t1, t2) == less
}

// Eq returns whether t1 and t2 are identical terms.
//
// Note that this only takes into account the structure of terms, not whether
// any binding may make them identical.
func Eq(t1, t2 Term) bool {
	return compare(t1, t2) == equal
}

// EqTerms returns whether two term lists are pairwise identical.
func EqTerms(ts1, ts2 []Term) bool {
	return compareTerms(ts1, ts2) == equal
}

// ---- String()

func (t Atom) String() string {
	return FormatAtom(t.Name)
}

func (t Int) String() string {
	return fmt.Sprintf("%d", t.Value)
}

func (t Var) String() string {
	if t.suffix > 0 {
		return fmt.Sprintf("%s_%d", t.Name, t.suffix)
	}
	return t.Name
}

func (t *Comp) String() string {
	if t.Functor == ListFunctor && len(t.Args) == 2 {
		return formatList(t)
	}
	if op, ok := infixOps[t.Functor]; ok && len(t.Args) == 2 {
		return fmt.Sprintf("(%v%s%v)", t.Args[0], op, t.Args[1])
	}
	return fmt.Sprintf("%s(%s)", FormatAtom(t.Functor), formatTerms(t.Args))
}

var infixOps = map[string]string{
	"+":   " + ",
	"-":   " - ",
	"*":   " * ",
	"/":   " / ",
	"mod": " mod ",
}

func formatTerms(terms []Term) string {
	args := make([]string, len(terms))
	for i, arg := range terms {
		args[i] = arg.String()
	}
	return strings.Join(args, ", ")
}

func formatList(c *Comp) string {
	elems, tail := c.unrollList()
	if tail == EmptyList {
		return fmt.Sprintf("[%s]", formatTerms(elems))
	}
	return fmt.Sprintf("[%s|%v]", formatTerms(elems), tail)
}
