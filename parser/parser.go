// Package parser reads programs written in the usual ASP text syntax.
//
// A program is a sequence of statements, each terminated by a period:
//
//	p(X) :- q(X), not r(X).    % rule
//	q(a).                       % fact
//	:- p(b).                    % integrity constraint
//	?- p(X).                    % query
//	#compute 2 { p(X) }.        % model count and query
//	#abducible r(X).            % abducible literal
//
// Body literals may be negated with 'not', and may be comparisons between terms with
// =, \=, <, >, =<, >= and is. A leading '-' in a literal denotes classical negation.
// Terms are integers, variables, atoms, compound terms, lists and arithmetic
// expressions over +, -, *, / and mod. Each '_' is a distinct anonymous variable.
package parser

import (
	"strconv"

	"github.com/alecthomas/participle/v2"

	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
)

var comparisons = map[string]bool{
	logic.Unify:    true,
	logic.NotUnify: true,
	logic.Lt:       true,
	logic.Gt:       true,
	logic.Le:       true,
	logic.Ge:       true,
	logic.Is:       true,
}

// Parse returns the program in text. The filename is used only in error messages.
func Parse(filename, text string) (*logic.Program, error) {
	ast, err := fileParser.ParseString(filename, text)
	if err != nil {
		return nil, syntaxError(err)
	}
	d := &decoder{}
	return d.program(ast)
}

// ParseQuery returns the goals of a query, with or without the final period.
func ParseQuery(text string) ([]*logic.Literal, error) {
	ast, err := queryParser.ParseString("", text)
	if err != nil {
		return nil, syntaxError(err)
	}
	d := &decoder{}
	return d.body(ast.Body)
}

func syntaxError(err error) error {
	if perr, ok := err.(participle.Error); ok {
		return errors.Errorf(errors.InvalidInput, "%v: %s", perr.Position(), perr.Message())
	}
	return errors.Wrap(errors.InvalidInput, err)
}

// decoder converts the syntax tree into logic values.
type decoder struct {
	anonymous int
}

func (d *decoder) program(ast *file) (*logic.Program, error) {
	p := &logic.Program{ModelCount: -1}
	var hasQuery, hasCompute bool
	setQuery := func(body []*logic.Literal, stmt *statement) error {
		if hasQuery && len(body) > 0 {
			return errors.Errorf(errors.InvalidInput, "%v: program has more than one query", stmt.Pos)
		}
		if len(body) > 0 {
			hasQuery = true
			p.Query = body
		}
		return nil
	}
	for _, stmt := range ast.Statements {
		switch {
		case stmt.Compute != nil:
			if hasCompute {
				return nil, errors.Errorf(errors.InvalidInput, "%v: repeated #compute directive", stmt.Pos)
			}
			hasCompute = true
			n, err := strconv.Atoi(stmt.Compute.Count)
			if err != nil {
				return nil, errors.Errorf(errors.InvalidInput, "%v: invalid model count %q", stmt.Pos, stmt.Compute.Count)
			}
			p.ModelCount = n
			body, err := d.body(stmt.Compute.Body)
			if err != nil {
				return nil, err
			}
			if err := setQuery(body, stmt); err != nil {
				return nil, err
			}
		case stmt.Abducible != nil:
			lit, err := d.literal(stmt.Abducible.Lit)
			if err != nil {
				return nil, err
			}
			p.Abducibles = append(p.Abducibles, lit)
		case stmt.Query != nil:
			body, err := d.body(stmt.Query.Body)
			if err != nil {
				return nil, err
			}
			if err := setQuery(body, stmt); err != nil {
				return nil, err
			}
		case stmt.Constraint != nil:
			body, err := d.body(stmt.Constraint.Body)
			if err != nil {
				return nil, err
			}
			p.Clauses = append(p.Clauses, logic.NewClause(nil, body...))
		case stmt.Rule != nil:
			head, err := d.literal(stmt.Rule.Head)
			if err != nil {
				return nil, err
			}
			body, err := d.body(stmt.Rule.Body)
			if err != nil {
				return nil, err
			}
			p.Clauses = append(p.Clauses, logic.NewClause(head, body...))
		}
	}
	if len(p.Clauses) == 0 && len(p.Query) == 0 && len(p.Abducibles) == 0 {
		return nil, errors.Errorf(errors.InvalidInput, "empty program")
	}
	return p, nil
}

func (d *decoder) body(lits []*bodyLit) ([]*logic.Literal, error) {
	var body []*logic.Literal
	for _, bl := range lits {
		lit, err := d.bodyLiteral(bl)
		if err != nil {
			return nil, err
		}
		body = append(body, lit)
	}
	return body, nil
}

func (d *decoder) bodyLiteral(bl *bodyLit) (*logic.Literal, error) {
	var lit *logic.Literal
	if bl.Op == "" {
		var err error
		if lit, err = d.literal(bl.Left); err != nil {
			return nil, err
		}
	} else {
		if !comparisons[bl.Op] {
			return nil, errors.Errorf(errors.InvalidInput, "%v: unknown operator %q", bl.Pos, bl.Op)
		}
		left, err := d.expr(bl.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.expr(bl.Right)
		if err != nil {
			return nil, err
		}
		lit = logic.NewLiteral(bl.Op, left, right)
	}
	if bl.Not {
		lit = lit.Complement()
	}
	return lit, nil
}

// literal converts an expression that must be an atom or compound, optionally
// preceded by '-' for classical negation.
func (d *decoder) literal(e *expr) (*logic.Literal, error) {
	if len(e.Right) > 0 || len(e.Left.Right) > 0 {
		return nil, errors.Errorf(errors.InvalidInput, "%v: expected literal, got arithmetic expression", e.Pos)
	}
	f := e.Left.Left
	c := f.Value.Comp
	if c == nil {
		return nil, errors.Errorf(errors.InvalidInput, "%v: expected literal", f.Value.Pos)
	}
	args, err := d.exprs(c.Args)
	if err != nil {
		return nil, err
	}
	lit := logic.NewLiteral(functor(c.Functor), args...)
	lit.Classical = f.Minus
	return lit, nil
}

func (d *decoder) exprs(es []*expr) ([]logic.Term, error) {
	var terms []logic.Term
	for _, e := range es {
		t, err := d.expr(e)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func (d *decoder) expr(e *expr) (logic.Term, error) {
	t, err := d.product(e.Left)
	if err != nil {
		return nil, err
	}
	for _, s := range e.Right {
		u, err := d.product(s.Value)
		if err != nil {
			return nil, err
		}
		t = logic.NewComp(s.Op, t, u)
	}
	return t, nil
}

func (d *decoder) product(p *product) (logic.Term, error) {
	t, err := d.factor(p.Left)
	if err != nil {
		return nil, err
	}
	for _, q := range p.Right {
		u, err := d.factor(q.Value)
		if err != nil {
			return nil, err
		}
		t = logic.NewComp(q.Op, t, u)
	}
	return t, nil
}

func (d *decoder) factor(f *factor) (logic.Term, error) {
	t, err := d.primary(f.Value)
	if err != nil {
		return nil, err
	}
	if !f.Minus {
		return t, nil
	}
	if i, ok := t.(logic.Int); ok && f.Value.Int != nil {
		return logic.Int{Value: -i.Value}, nil
	}
	return logic.NewComp("-", t), nil
}

func (d *decoder) primary(p *primary) (logic.Term, error) {
	switch {
	case p.Int != nil:
		i, err := strconv.Atoi(*p.Int)
		if err != nil {
			return nil, errors.Errorf(errors.InvalidInput, "%v: invalid integer %s", p.Pos, *p.Int)
		}
		return logic.Int{Value: i}, nil
	case p.Var != nil:
		x := logic.NewVar(*p.Var)
		if x.IsAnonymous() {
			d.anonymous++
			x = x.WithSuffix(d.anonymous)
		}
		return x, nil
	case p.List != nil:
		items, err := d.exprs(p.List.Items)
		if err != nil {
			return nil, err
		}
		if p.List.Tail == nil {
			return logic.NewList(items...), nil
		}
		if len(items) == 0 {
			return nil, errors.Errorf(errors.InvalidInput, "%v: list tail without elements", p.Pos)
		}
		tail, err := d.expr(p.List.Tail)
		if err != nil {
			return nil, err
		}
		return logic.NewIncompleteList(items, tail), nil
	case p.Group != nil:
		return d.expr(p.Group)
	case p.Comp != nil:
		name := functor(p.Comp.Functor)
		if !p.Comp.Open {
			return logic.Atom{Name: name}, nil
		}
		args, err := d.exprs(p.Comp.Args)
		if err != nil {
			return nil, err
		}
		return logic.NewComp(name, args...), nil
	}
	return nil, errors.Errorf(errors.InvalidInput, "%v: empty term", p.Pos)
}

func functor(text string) string {
	if len(text) > 0 && text[0] == '\'' {
		return logic.UnquoteAtom(text)
	}
	return text
}
