package logic

import (
	"fmt"
	"strings"
)

// Provenance tells which step produced a literal or clause.
type Provenance int

const (
	// Original is for code written by the program author.
	Original Provenance = iota
	// Dual is for rules synthesized to prove default negation.
	Dual
	// Check is for the synthetic consistency check rules.
	Check
)

func (p Provenance) String() string {
	switch p {
	case Original:
		return "original"
	case Dual:
		return "dual"
	case Check:
		return "check"
	default:
		return fmt.Sprintf("provenance(%d)", int(p))
	}
}

// Builtin predicate names.
const (
	Unify    = "="
	NotUnify = "\\="
	Lt       = "<"
	Gt       = ">"
	Le       = "=<"
	Ge       = ">="
	Is       = "is"
	True     = "true"
	Fail     = "fail"
	Forall   = "forall"
)

var builtins = map[Indicator]bool{
	{Unify, 2}:    true,
	{NotUnify, 2}: true,
	{Lt, 2}:       true,
	{Gt, 2}:       true,
	{Le, 2}:       true,
	{Ge, 2}:       true,
	{Is, 2}:       true,
	{True, 0}:     true,
	{Fail, 0}:     true,
	{Forall, 1}:   true,
}

var infixBuiltins = map[string]bool{
	Unify: true, NotUnify: true, Lt: true, Gt: true, Le: true, Ge: true, Is: true,
}

// IsBuiltin returns whether name/arity is handled by the resolver instead of clauses.
func IsBuiltin(ind Indicator) bool {
	return builtins[ind]
}

// Literal is a predicate applied to terms, possibly negated.
//
// A forall literal has the quantified variable as its single arg, and the goal in Scope.
type Literal struct {
	Name string
	Args []Term
	// Negated is set for default negation, 'not p'.
	Negated bool
	// Classical is set for classical negation, '-p'.
	Classical bool
	// Aux marks predicates introduced by program transformation. They are not printed.
	Aux        bool
	Provenance Provenance
	Scope      *Literal
}

// Key identifies the set of clauses a literal may resolve against.
type Key struct {
	Name      string
	Arity     int
	Negated   bool
	Classical bool
	Aux       bool
}

func (k Key) String() string {
	var b strings.Builder
	if k.Negated {
		b.WriteString("not ")
	}
	if k.Classical {
		b.WriteString("-")
	}
	fmt.Fprintf(&b, "%s/%d", FormatAtom(k.Name), k.Arity)
	return b.String()
}

// NewLiteral returns a positive literal.
func NewLiteral(name string, args ...Term) *Literal {
	return &Literal{Name: name, Args: args}
}

// NewForall returns a literal that proves goal for all values of x.
func NewForall(x Var, goal *Literal) *Literal {
	return &Literal{Name: Forall, Args: []Term{x}, Scope: goal}
}

// Key returns the literal's dispatch key.
func (l *Literal) Key() Key {
	return Key{l.Name, len(l.Args), l.Negated, l.Classical, l.Aux}
}

// Indicator returns the predicate indicator, ignoring negation.
func (l *Literal) Indicator() Indicator {
	return Indicator{l.Name, len(l.Args)}
}

// IsBuiltin returns whether the literal is proved by the resolver directly.
func (l *Literal) IsBuiltin() bool {
	return !l.Aux && !l.Classical && IsBuiltin(l.Indicator())
}

// IsForall returns whether the literal is a forall.
func (l *Literal) IsForall() bool {
	return l.IsBuiltin() && l.Name == Forall
}

// Positive returns the literal without default negation.
func (l *Literal) Positive() *Literal {
	if !l.Negated {
		return l
	}
	l2 := *l
	l2.Negated = false
	return &l2
}

// Complement returns the literal with the default negation flipped.
func (l *Literal) Complement() *Literal {
	l2 := *l
	l2.Negated = !l.Negated
	return &l2
}

// WithArgs returns a copy of the literal with other args.
func (l *Literal) WithArgs(args ...Term) *Literal {
	l2 := *l
	l2.Args = args
	return &l2
}

// Map replaces every term of the literal, including the forall scope.
func (l *Literal) Map(f func(Term) Term) *Literal {
	args := make([]Term, len(l.Args))
	for i, arg := range l.Args {
		args[i] = f(arg)
	}
	l2 := l.WithArgs(args...)
	if l.Scope != nil {
		l2.Scope = l.Scope.Map(f)
	}
	return l2
}

// Terms returns all terms within the literal, including the forall scope.
func (l *Literal) Terms() []Term {
	terms := append([]Term(nil), l.Args...)
	if l.Scope != nil {
		terms = append(terms, l.Scope.Terms()...)
	}
	return terms
}

// Vars returns the literal's variables, in order of appearance.
func (l *Literal) Vars() []Var {
	return Vars(l.Terms()...)
}

// Eq returns whether two literals are identical.
func (l *Literal) Eq(other *Literal) bool {
	if l.Key() != other.Key() || !EqTerms(l.Args, other.Args) {
		return false
	}
	if l.Scope == nil || other.Scope == nil {
		return l.Scope == other.Scope
	}
	return l.Scope.Eq(other.Scope)
}

func (l *Literal) String() string {
	var b strings.Builder
	if l.Negated {
		b.WriteString("not ")
	}
	if l.Classical {
		b.WriteString("-")
	}
	switch {
	case l.IsForall():
		fmt.Fprintf(&b, "forall(%v, %v)", l.Args[0], l.Scope)
	case l.IsBuiltin() && infixBuiltins[l.Name]:
		fmt.Fprintf(&b, "%v %s %v", l.Args[0], l.Name, l.Args[1])
	case len(l.Args) == 0:
		b.WriteString(FormatAtom(l.Name))
	default:
		fmt.Fprintf(&b, "%s(%s)", FormatAtom(l.Name), formatTerms(l.Args))
	}
	return b.String()
}

// Clause is a rule, a fact or an integrity constraint.
//
// A clause with nil head is an integrity constraint: its body must never hold.
type Clause struct {
	Head       *Literal
	Body       []*Literal
	Provenance Provenance
}

// NewClause returns an original clause.
func NewClause(head *Literal, body ...*Literal) *Clause {
	return &Clause{Head: head, Body: body}
}

// IsConstraint returns whether the clause has no head.
func (c *Clause) IsConstraint() bool {
	return c.Head == nil
}

// Vars returns the clause's variables, head first.
func (c *Clause) Vars() []Var {
	var terms []Term
	if c.Head != nil {
		terms = c.Head.Terms()
	}
	for _, lit := range c.Body {
		terms = append(terms, lit.Terms()...)
	}
	return Vars(terms...)
}

func (c *Clause) String() string {
	var b strings.Builder
	if c.Head != nil {
		b.WriteString(c.Head.String())
	}
	if len(c.Body) == 0 {
		b.WriteString(".")
		return b.String()
	}
	if c.Head != nil {
		b.WriteString(" ")
	}
	b.WriteString(":-")
	for i, lit := range c.Body {
		b.WriteString("\n  ")
		b.WriteString(lit.String())
		if i < len(c.Body)-1 {
			b.WriteString(",")
		}
	}
	b.WriteString(".")
	return b.String()
}

// Program is a set of clauses with an optional query and directives.
type Program struct {
	Clauses []*Clause
	Query   []*Literal
	// Check is the goal proved after the query for a candidate model to be accepted.
	// It's set by program transformation, and nil if there's nothing to check.
	Check      *Literal
	Abducibles []*Literal
	// ModelCount is the number of models requested by a '#compute' directive, or -1.
	ModelCount int
}

func (p *Program) String() string {
	var b strings.Builder
	for _, abd := range p.Abducibles {
		fmt.Fprintf(&b, "#abducible %v.\n", abd)
	}
	for _, c := range p.Clauses {
		b.WriteString(c.String())
		b.WriteString("\n")
	}
	if len(p.Query) > 0 {
		lits := make([]string, len(p.Query))
		for i, lit := range p.Query {
			lits[i] = lit.String()
		}
		if p.ModelCount >= 0 {
			fmt.Fprintf(&b, "#compute %d { %s }.\n", p.ModelCount, strings.Join(lits, ", "))
		} else {
			fmt.Fprintf(&b, "?- %s.\n", strings.Join(lits, ", "))
		}
	}
	return b.String()
}
