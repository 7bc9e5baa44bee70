package transform_test

import (
	"strings"
	"testing"

	"github.com/brunokim/sasp/dsl"
	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/test_helpers"
	"github.com/brunokim/sasp/transform"
)

var (
	atom       = dsl.Atom
	clause     = dsl.Clause
	constraint = dsl.Constraint
	forall     = dsl.Forall
	lit        = dsl.Lit
	neg        = dsl.Neg
	not        = dsl.Not
	program    = dsl.Program
	query      = dsl.Query
	var_       = dsl.Var
)

func clauseText(p *logic.Program) string {
	lines := make([]string, len(p.Clauses))
	for i, c := range p.Clauses {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

func TestCompile(t *testing.T) {
	x, y := var_("X"), var_("Y")
	abducible := program(nil)
	abducible.Abducibles = []*logic.Literal{lit("p", x)}
	tests := []struct {
		desc string
		prog *logic.Program
		want string
	}{
		{
			"duals with forall",
			program(nil,
				clause(lit("p", x), lit("q", x, y)),
				clause(lit("q", atom("a"), atom("b")))),
			`
            p(X) :-
              q(X, Y).
            q(a, b).
            not p(A_1) :-
              not p__1(A_1).
            not p__1(A_1) :-
              forall(Y, not p__1__b(A_1, Y)).
            not p__1__b(A_1, Y) :-
              not q(A_1, Y).
            not q(A_1, A_2) :-
              not q__1(A_1, A_2).
            not q__1(A_1, A_2) :-
              A_1 \= a.
            not q__1(A_1, A_2) :-
              A_1 = a,
              A_2 \= b.`,
		},
		{
			"repeated head var",
			program(nil, clause(lit("eq", x, x))),
			`
            eq(X, X).
            not eq(A_1, A_2) :-
              not eq__1(A_1, A_2).
            not eq__1(A_1, A_2) :-
              A_2 \= A_1.`,
		},
		{
			"odd loop",
			program(nil, clause(lit("p"), not(lit("p")))),
			`
            p :-
              not p.
            chk_1 :-
              not p.
            nmr_check :-
              not chk_1.
            not p :-
              not p__1.
            not p__1 :-
              p.
            not chk_1 :-
              not chk_1__1.
            not chk_1__1 :-
              p.
            not nmr_check :-
              not nmr_check__1.
            not nmr_check__1 :-
              chk_1.`,
		},
		{
			"abducible",
			abducible,
			`
            p(A_1) :-
              not p__abd(A_1).
            p__abd(A_1) :-
              not p(A_1).
            not p(A_1) :-
              not p__1(A_1).
            not p__1(A_1) :-
              p__abd(A_1).
            not p__abd(A_1) :-
              not p__abd__1(A_1).
            not p__abd__1(A_1) :-
              p(A_1).`,
		},
		{
			"undefined predicate",
			program(query(lit("q")), clause(lit("p"))),
			`
            p.
            not p :-
              not p__1.
            not q.`,
		},
	}
	for _, test := range tests {
		got, err := transform.Compile(test.prog)
		if err != nil {
			t.Errorf("%s: got err %v", test.desc, err)
			continue
		}
		want := test_helpers.Dedent(test.want)
		if text := clauseText(got); text != want {
			t.Errorf("%s: got\n%s\nwant\n%s", test.desc, text, want)
		}
	}
}

func TestCompile_Check(t *testing.T) {
	p := program(nil,
		clause(neg(lit("p")), lit("q")),
		clause(lit("q")),
		constraint(lit("q"), not(lit("r"))))
	got, err := transform.Compile(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.Check == nil || got.Check.String() != "nmr_check" || !got.Check.Aux {
		t.Fatalf("want aux nmr_check, got %v", got.Check)
	}
	text := clauseText(got)
	for _, want := range []string{
		"chk_1 :-\n  q,\n  not r.",
		"chk_2 :-\n  p,\n  -p.",
		"nmr_check :-\n  not chk_1,\n  not chk_2.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing clause:\n%s\nin\n%s", want, text)
		}
	}
	for _, c := range got.Clauses {
		if c.IsConstraint() {
			t.Errorf("constraint left in output: %v", c)
		}
	}
}

func TestCompile_Errors(t *testing.T) {
	x := var_("X")
	tests := []struct {
		desc string
		prog *logic.Program
	}{
		{"empty", program(nil)},
		{"builtin head", program(nil, clause(dsl.Eq(x, atom("a"))))},
		{"negated head", program(nil, clause(not(lit("p"))))},
		{"forall", program(nil, clause(lit("p"), forall(x, lit("q", x))))},
	}
	for _, test := range tests {
		_, err := transform.Compile(test.prog)
		if !errors.Is(err, errors.InvalidInput) {
			t.Errorf("%s: want InvalidInput, got %v", test.desc, err)
		}
	}
}
