package logic_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/test_helpers"
)

func TestLess(t *testing.T) {
	order := []logic.Term{
		var_("A"),
		svar("A", 1),
		svar("A", 9),
		var_("Z"),
		int_(-3),
		int_(1),
		int_(9),
		atom("[]"),
		atom("a"),
		atom("a1"),
		atom("z"),
		comp("f", atom("a")),
		comp("f", atom("z")),
		comp("g", atom("a")),
		ilist(atom("a"), var_("Tail")),
		list(atom("a")),
		comp("f", atom("a"), atom("b")),
	}
	for i := 0; i < len(order)-1; i++ {
		if !logic.Less(order[i], order[i+1]) {
			t.Errorf("%v >= %v", order[i], order[i+1])
		}
	}
}

func TestEq(t *testing.T) {
	tests := []struct {
		x, y logic.Term
		want bool
	}{
		{svar("A", 1), var_("A").WithSuffix(1), true},
		{svar("A", 1), var_("A"), false},
		{comp("f", var_("X"), int_(1)), comp("f", var_("X"), int_(1)), true},
		{comp("f", var_("X")), comp("f", var_("Y")), false},
		{int_(1), atom("1"), false},
	}
	for _, test := range tests {
		if got := logic.Eq(test.x, test.y); got != test.want {
			t.Errorf("Eq(%v, %v) = %t, want %t", test.x, test.y, got, test.want)
		}
	}
}

func TestVars(t *testing.T) {
	got := logic.Vars(
		comp("f", var_("X"), comp("g", var_("Y"), var_("X"))),
		svar("X", 2),
		atom("a"),
		var_("Y"))
	want := []logic.Var{var_("X"), var_("Y"), svar("X", 2)}
	if diff := cmp.Diff(want, got, test_helpers.IgnoreUnexported); diff != "" {
		t.Errorf("(-want, +got)%s", diff)
	}
	if !logic.IsGround(comp("f", atom("a"), list(int_(1)))) {
		t.Errorf("f(a, [1]) should be ground")
	}
	if logic.IsGround(comp("f", atom("a"), list(var_("X")))) {
		t.Errorf("f(a, [X]) should not be ground")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		term fmt.Stringer
		want string
	}{
		{atom("a"), "a"},
		{atom("Upper"), "'Upper'"},
		{atom("it's"), `'it\'s'`},
		{var_("A"), "A"},
		{svar("A", 1), "A_1"},
		{comp("f", var_("A"), var_("B")), "f(A, B)"},
		{comp("+", int_(1), var_("B")), "(1 + B)"},
		{list(), "[]"},
		{list(var_("A"), var_("B")), "[A, B]"},
		{ilist(var_("A"), var_("B"), var_("Tail")), "[A, B|Tail]"},
		{lit("p"), "p"},
		{not(lit("p", var_("X"))), "not p(X)"},
		{neg(lit("p", atom("a"))), "-p(a)"},
		{not(neg(lit("p"))), "not -p"},
		{neq(var_("X"), atom("a")), `X \= a`},
		{forall(var_("Y"), not(lit("q", var_("X"), var_("Y")))), "forall(Y, not q(X, Y))"},
		{clause(lit("add", int_(0), var_("X"), var_("X"))), `add(0, X, X).`},
		{
			clause(lit("p", var_("X")), lit("q", var_("X")), not(lit("r", var_("X")))),
			`
            p(X) :-
              q(X),
              not r(X).`,
		},
		{
			constraint(lit("p"), lit("q")),
			`
            :-
              p,
              q.`,
		},
	}
	for _, test := range tests {
		want := test_helpers.Dedent(test.want)
		got := test.term.String()
		if got != want {
			t.Errorf("%#v.String() = %q (!= %q)", test.term, got, want)
		}
	}
}

func TestLiteral_Key(t *testing.T) {
	p := lit("p", var_("X"))
	tests := []struct {
		lit  *logic.Literal
		want logic.Key
	}{
		{p, logic.Key{Name: "p", Arity: 1}},
		{not(p), logic.Key{Name: "p", Arity: 1, Negated: true}},
		{neg(p), logic.Key{Name: "p", Arity: 1, Classical: true}},
		{not(not(p)), logic.Key{Name: "p", Arity: 1}},
	}
	for _, test := range tests {
		if got := test.lit.Key(); got != test.want {
			t.Errorf("%v.Key() = %v, want %v", test.lit, got, test.want)
		}
	}
	if p.Negated {
		t.Errorf("Complement modified the original literal")
	}
}

func TestLiteral_Builtin(t *testing.T) {
	tests := []struct {
		lit  *logic.Literal
		want bool
	}{
		{lit("=", var_("X"), atom("a")), true},
		{lit("true"), true},
		{lit("true", atom("a")), false},
		{neg(lit("true")), false},
		{lit("p"), false},
		{forall(var_("X"), lit("p", var_("X"))), true},
	}
	for _, test := range tests {
		if got := test.lit.IsBuiltin(); got != test.want {
			t.Errorf("%v.IsBuiltin() = %t, want %t", test.lit, got, test.want)
		}
	}
}

func TestLiteral_Map(t *testing.T) {
	x, y := var_("X"), var_("Y")
	l := forall(y, lit("q", x, y))
	got := l.Map(func(t logic.Term) logic.Term {
		if t == logic.Term(x) {
			return atom("a")
		}
		return t
	})
	want := forall(y, lit("q", atom("a"), y))
	if !got.Eq(want) {
		t.Errorf("Map = %v, want %v", got, want)
	}
	if diff := cmp.Diff([]logic.Var{y, x}, l.Vars(), test_helpers.IgnoreUnexported); diff != "" {
		t.Errorf("(-want, +got)%s", diff)
	}
}
