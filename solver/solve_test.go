package solver_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/brunokim/sasp/dsl"
	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/resolve"
	"github.com/brunokim/sasp/solver"
)

var (
	atom = dsl.Atom
	lit  = dsl.Lit
	not  = dsl.Not
	var_ = dsl.Var
)

func bindings(models []*resolve.Model, x logic.Var) []string {
	var got []string
	for _, m := range models {
		got = append(got, m.Resolve(x).String())
	}
	sort.Strings(got)
	return got
}

func TestSolve(t *testing.T) {
	s, err := solver.NewFromText(`
        edge(a, b). edge(b, c).
        path(X, Y) :- edge(X, Y).
        path(X, Y) :- edge(X, Z), path(Z, Y).
        ?- path(a, Y).
    `)
	if err != nil {
		t.Fatalf("NewFromText: got err: %v", err)
	}
	models, err := s.Solve(context.Background(), 0)
	if err != nil {
		t.Fatalf("Solve: got err: %v", err)
	}
	want := []string{"b", "c"}
	if diff := cmp.Diff(want, bindings(models, var_("Y"))); diff != "" {
		t.Errorf("(-want, +got)%s", diff)
	}
	if stats := s.Stats(); stats.Models != 2 || stats.Steps == 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestSolve_Limit(t *testing.T) {
	s, err := solver.NewFromText(`
        p :- not q.
        q :- not p.
    `)
	if err != nil {
		t.Fatalf("NewFromText: got err: %v", err)
	}
	models, err := s.Solve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Solve: got err: %v", err)
	}
	if len(models) != 1 {
		t.Errorf("got %d models, want 1", len(models))
	}
	if _, err := s.Solve(context.Background(), -1); !errors.Is(err, errors.InvalidArgument) {
		t.Errorf("negative limit: want InvalidArgument, got %v", err)
	}
}

func TestQuery(t *testing.T) {
	s, err := solver.NewFromText(`
        color(red). color(green). color(blue).
        warm(red).
    `)
	if err != nil {
		t.Fatalf("NewFromText: got err: %v", err)
	}
	x := var_("X")
	results, cancel := s.Query(context.Background(), lit("color", x), not(lit("warm", x)))
	defer cancel()
	var models []*resolve.Model
	for result := range results {
		if result.Err != nil {
			t.Fatalf("got err: %v", result.Err)
		}
		models = append(models, result.Model)
	}
	want := []string{"blue", "green"}
	if diff := cmp.Diff(want, bindings(models, x)); diff != "" {
		t.Errorf("(-want, +got)%s", diff)
	}
}

func TestQuery_UndefinedPredicate(t *testing.T) {
	s, err := solver.NewFromText(`p.`)
	if err != nil {
		t.Fatalf("NewFromText: got err: %v", err)
	}
	results, cancel := s.Query(context.Background(), lit("p"), not(lit("r")))
	defer cancel()
	var n int
	for result := range results {
		if result.Err != nil {
			t.Fatalf("got err: %v", result.Err)
		}
		n++
	}
	if n != 1 {
		t.Errorf("got %d models, want 1", n)
	}
}

func TestQuery_Cancel(t *testing.T) {
	s, err := solver.NewFromText(`
        nat(0).
        nat(s(X)) :- nat(X).
    `)
	if err != nil {
		t.Fatalf("NewFromText: got err: %v", err)
	}
	results, cancel := s.Query(context.Background(), lit("nat", var_("X")))
	for i := 0; i < 3; i++ {
		result, ok := <-results
		if !ok || result.Err != nil {
			t.Fatalf("#%d: got %v, %v", i, result, ok)
		}
	}
	cancel()
	for range results {
	}
}

func TestQuery_Error(t *testing.T) {
	text := `
        p :- q(X).
        q(s(X)) :- q(X).
    `
	opts := solver.WithOptions(resolve.Options{OccursCheck: true, IterLimit: 100})

	s, err := solver.NewFromText(text, opts)
	if err != nil {
		t.Fatalf("NewFromText: got err: %v", err)
	}
	results, cancel := s.Query(context.Background(), lit("p"))
	defer cancel()
	var got []solver.Result
	for result := range results {
		got = append(got, result)
	}
	if len(got) != 1 || got[0].Err == nil {
		t.Errorf("want a single error result, got %v", got)
	}

	// The stream is closed even if nobody waits for the error.
	results, cancel = s.Query(context.Background(), lit("p"))
	cancel()
	for range results {
	}
}

func TestQuery_Abducible(t *testing.T) {
	s, err := solver.NewFromText(`
        #abducible q(X).
        p(X) :- q(X).
    `)
	if err != nil {
		t.Fatalf("NewFromText: got err: %v", err)
	}
	results, cancel := s.Query(context.Background(), lit("p", atom("b")))
	defer cancel()
	var got []string
	for result := range results {
		if result.Err != nil {
			t.Fatalf("got err: %v", result.Err)
		}
		got = append(got, result.Model.String())
	}
	want := []string{"{ p(b), q(b) }"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want, +got)%s", diff)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := solver.NewFromText(`p :- `); !errors.Is(err, errors.InvalidInput) {
		t.Errorf("syntax error: want InvalidInput, got %v", err)
	}
	p := dsl.Program(nil, dsl.Clause(dsl.Eq(var_("X"), atom("a"))))
	if _, err := solver.New(p); !errors.Is(err, errors.InvalidInput) {
		t.Errorf("builtin head: want InvalidInput, got %v", err)
	}
}

func TestWriteMetrics(t *testing.T) {
	s, err := solver.NewFromText(`p. ?- p.`)
	if err != nil {
		t.Fatalf("NewFromText: got err: %v", err)
	}
	if _, err := s.Solve(context.Background(), 0); err != nil {
		t.Fatalf("Solve: got err: %v", err)
	}
	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := s.WriteMetrics(path); err != nil {
		t.Fatalf("WriteMetrics: got err: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`sasp_queries_total{outcome="exhausted"} 1`,
		`sasp_search_events_total{event="model"} 1`,
		"sasp_search_duration_seconds_count",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics don't contain %q:\n%s", want, text)
		}
	}
}
