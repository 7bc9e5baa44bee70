package unify_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/brunokim/sasp/dsl"
	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/store"
	"github.com/brunokim/sasp/test_helpers"
	"github.com/brunokim/sasp/unify"
)

var (
	atom  = dsl.Atom
	comp  = dsl.Comp
	int_  = dsl.Int
	list  = dsl.List
	ilist = dsl.IList
	terms = dsl.Terms
	var_  = dsl.Var
)

var u = unify.Unifier{OccursCheck: true}

func resolveAll(s *store.Store, xs ...logic.Var) []logic.Term {
	ts := make([]logic.Term, len(xs))
	for i, x := range xs {
		ts[i] = s.Resolve(x)
	}
	return ts
}

func TestUnify(t *testing.T) {
	x, y, z := var_("X"), var_("Y"), var_("Z")
	tests := []struct {
		a, b logic.Term
		want []logic.Term // resolved X, Y, Z
	}{
		{atom("a"), atom("a"), terms(x, y, z)},
		{x, x, terms(x, y, z)},
		{x, atom("a"), terms(atom("a"), y, z)},
		{comp("f", x, atom("b")), comp("f", atom("a"), y), terms(atom("a"), atom("b"), z)},
		{comp("f", x, y), comp("f", y, int_(1)), terms(int_(1), int_(1), z)},
		{list(x, y), ilist(atom("a"), z), terms(atom("a"), y, list(y))},
		{comp("f", x, comp("g", x)), comp("f", comp("h", y), z), terms(comp("h", y), y, comp("g", comp("h", y)))},
	}
	for _, test := range tests {
		for _, order := range [][2]logic.Term{{test.a, test.b}, {test.b, test.a}} {
			s, err := u.Unify(store.New(), order[0], order[1])
			if err != nil {
				t.Errorf("unify(%v, %v): got err %v", order[0], order[1], err)
				continue
			}
			got := resolveAll(s, x, y, z)
			if diff := cmp.Diff(test.want, got, test_helpers.IgnoreUnexported); diff != "" {
				t.Errorf("unify(%v, %v): (-want, +got)%s", order[0], order[1], diff)
			}
		}
	}
}

func TestUnify_Symmetric(t *testing.T) {
	x, y := var_("X"), var_("Y")
	s1, err1 := u.Unify(store.New(), x, y)
	s2, err2 := u.Unify(store.New(), y, x)
	if err1 != nil || err2 != nil {
		t.Fatalf("got errs %v, %v", err1, err2)
	}
	// Alias direction may change, but both must be in the same class.
	for _, s := range []*store.Store{s1, s2} {
		if s.Canonical(x) != s.Canonical(y) {
			t.Errorf("X and Y are not aliased")
		}
	}
}

func TestUnify_Errors(t *testing.T) {
	x, y := var_("X"), var_("Y")
	frozen := store.New().SetBindable(x, store.Frozen)
	constrained, _ := store.New().AddConstraint(x, atom("a"))
	different, _ := store.New().AddConstraint(x, y)
	tests := []struct {
		desc string
		s    *store.Store
		a, b logic.Term
		want errors.Kind
	}{
		{"atoms", store.New(), atom("a"), atom("b"), errors.UnificationFailure},
		{"int and atom", store.New(), int_(1), atom("1"), errors.UnificationFailure},
		{"arity", store.New(), comp("f", x), comp("f", x, y), errors.UnificationFailure},
		{"functor", store.New(), comp("f", x), comp("g", x), errors.UnificationFailure},
		{"occurs", store.New(), x, comp("f", x), errors.OccursCheckViolation},
		{"occurs deep", store.New(), comp("g", x, y), comp("g", y, list(x)), errors.OccursCheckViolation},
		{"frozen", frozen, x, atom("a"), errors.FrozenVariable},
		{"forbidden", constrained, comp("f", x), comp("f", atom("a")), errors.ConstraintViolation},
		{"different vars", different, x, y, errors.IncompatibleVariables},
	}
	for _, test := range tests {
		_, err := u.Unify(test.s, test.a, test.b)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: want %v, got %v", test.desc, test.want, err)
		}
	}
}

func TestUnify_NoOccursCheck(t *testing.T) {
	x := var_("X")
	s, err := unify.Unifier{}.Unify(store.New(), x, comp("f", x))
	if err != nil {
		t.Fatalf("got err %v", err)
	}
	// Unifying a cyclic term with itself terminates.
	if _, err := (unify.Unifier{}).Unify(s, x, comp("f", x)); err != nil {
		t.Errorf("got err %v", err)
	}
}

func TestUnify_ResidualConstraint(t *testing.T) {
	x, y, z := var_("X"), var_("Y"), var_("Z")
	// X ≠ f(Y), X = f(Z) leaves Z ≠ Y.
	s, err := store.New().AddConstraint(x, comp("f", y))
	if err != nil {
		t.Fatal(err)
	}
	s, err = u.Unify(s, x, comp("f", z))
	if err != nil {
		t.Fatalf("got err %v", err)
	}
	if got := s.Lookup(z).Constraints.Forbidden; len(got) != 1 || s.Canonical(got[0].(logic.Var)) != y {
		t.Errorf("want Z ≠ Y, got %v", got)
	}
	if _, err := u.Unify(s, z, y); !errors.Is(err, errors.IncompatibleVariables) {
		t.Errorf("want IncompatibleVariables, got %v", err)
	}
	if _, err := u.Unify(s, z, atom("a")); err != nil {
		t.Errorf("got err %v", err)
	}
}

func TestUnify_MergeConstraints(t *testing.T) {
	x, y := var_("X"), var_("Y")
	s := store.New()
	s, _ = s.AddConstraint(x, atom("a"))
	s, _ = s.AddConstraint(y, atom("b"))
	s, err := u.Unify(s, x, y)
	if err != nil {
		t.Fatalf("got err %v", err)
	}
	for _, val := range []logic.Term{atom("a"), atom("b")} {
		if _, err := u.Unify(s, y, val); !errors.Is(err, errors.ConstraintViolation) {
			t.Errorf("Y = %v: want ConstraintViolation, got %v", val, err)
		}
	}
	if _, err := u.Unify(s, x, atom("c")); err != nil {
		t.Errorf("X = c: got err %v", err)
	}
}

func TestDisunify(t *testing.T) {
	x, y := var_("X"), var_("Y")
	tests := []struct {
		desc string
		a, b logic.Term
		// Constraints on X and Y, per alternative.
		want [][2][]logic.Term
	}{
		{"not unifiable", atom("a"), atom("b"), [][2][]logic.Term{{nil, nil}}},
		{"single binding", x, atom("a"), [][2][]logic.Term{{terms(atom("a")), nil}}},
		{
			"two bindings",
			comp("f", x, y), comp("f", atom("a"), atom("b")),
			[][2][]logic.Term{
				{terms(atom("a")), nil},
				{nil, terms(atom("b"))},
			},
		},
	}
	for _, test := range tests {
		alts, err := u.Disunify(store.New(), test.a, test.b)
		if err != nil {
			t.Errorf("%s: got err %v", test.desc, err)
			continue
		}
		var got [][2][]logic.Term
		for _, s := range alts {
			got = append(got, [2][]logic.Term{
				s.Lookup(x).Constraints.Forbidden,
				s.Lookup(y).Constraints.Forbidden,
			})
		}
		if diff := cmp.Diff(test.want, got, test_helpers.IgnoreUnexported); diff != "" {
			t.Errorf("%s: (-want, +got)%s", test.desc, diff)
		}
	}
	if _, err := u.Disunify(store.New(), comp("f", x), comp("f", x)); !errors.Is(err, errors.ConstraintViolation) {
		t.Errorf("identical terms: want ConstraintViolation, got %v", err)
	}
}

func TestUnify_MutualDisequality(t *testing.T) {
	x, y := var_("X"), var_("Y")
	s, err := store.New().AddConstraint(x, y)
	if err != nil {
		t.Fatal(err)
	}
	// X ≠ Y, X = a leaves Y ≠ a.
	s, err = u.Unify(s, x, atom("a"))
	if err != nil {
		t.Fatalf("X = a: got err %v", err)
	}
	if _, err := u.Unify(s, y, atom("a")); !errors.Is(err, errors.ConstraintViolation) {
		t.Errorf("Y = a: want ConstraintViolation, got %v", err)
	}
	if _, err := u.Unify(s, y, atom("b")); err != nil {
		t.Errorf("Y = b: got err %v", err)
	}
	// Binding both sides through a compound checks each constraint once.
	s, _ = store.New().AddConstraint(x, y)
	if _, err := u.Unify(s, comp("f", x, y), comp("f", atom("a"), atom("a"))); !errors.Is(err, errors.ConstraintViolation) {
		t.Errorf("f(X, Y) = f(a, a): want ConstraintViolation, got %v", err)
	}
	if _, err := u.Unify(s, comp("f", x, y), comp("f", atom("a"), atom("b"))); err != nil {
		t.Errorf("f(X, Y) = f(a, b): got err %v", err)
	}
}
