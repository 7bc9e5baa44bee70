// Package solver runs the whole pipeline from program text to stable models.
package solver

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/parser"
	"github.com/brunokim/sasp/resolve"
	"github.com/brunokim/sasp/transform"
)

// Solver finds models of a program for different queries.
type Solver struct {
	program  *logic.Program
	compiled *logic.Program
	opts     resolve.Options
	log      *slog.Logger
	metrics  *metrics

	mu    sync.Mutex
	stats resolve.Stats
}

// Option configures a Solver.
type Option func(*Solver)

// WithOptions sets the options of every resolver run by the solver.
func WithOptions(opts resolve.Options) Option {
	return func(s *Solver) {
		logger := s.opts.Logger
		s.opts = opts
		if opts.Logger == nil {
			s.opts.Logger = logger
		}
	}
}

// WithLogger sets the logger for the solver and its resolvers.
func WithLogger(log *slog.Logger) Option {
	return func(s *Solver) {
		s.opts.Logger = log
	}
}

// New returns a solver for p, which is transformed for search.
func New(p *logic.Program, options ...Option) (*Solver, error) {
	s := &Solver{
		program: p,
		opts:    resolve.Options{OccursCheck: true},
		metrics: newMetrics(),
	}
	for _, option := range options {
		option(s)
	}
	if s.opts.Logger == nil {
		s.opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.log = s.opts.Logger
	compiled, err := transform.Compile(p)
	if err != nil {
		return nil, err
	}
	s.compiled = compiled
	s.log.Info("program transformed",
		"clauses", len(p.Clauses),
		"compiled", len(compiled.Clauses),
		"check", compiled.Check != nil)
	return s, nil
}

// NewFromText parses text and returns a solver for it.
func NewFromText(text string, options ...Option) (*Solver, error) {
	p, err := parser.Parse("", text)
	if err != nil {
		return nil, err
	}
	return New(p, options...)
}

// Program returns the program as given.
func (s *Solver) Program() *logic.Program {
	return s.program
}

// Compiled returns the program with duals and consistency check.
func (s *Solver) Compiled() *logic.Program {
	return s.compiled
}

// Stats returns the statistics accumulated over all queries.
func (s *Solver) Stats() resolve.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// WriteMetrics writes the solver's metrics to path in Prometheus text format.
func (s *Solver) WriteMetrics(path string) error {
	return s.metrics.write(path)
}

// Result holds either a model or the error that ended the search.
type Result struct {
	Model *resolve.Model
	Err   error
}

// machine returns a resolver for the query, or the program's own query if empty.
func (s *Solver) machine(query []*logic.Literal) (*resolve.Machine, error) {
	p := s.compiled
	if len(query) > 0 {
		// Duals depend on the query predicates, so the program is compiled again.
		q := *s.program
		q.Query = query
		var err error
		if p, err = transform.Compile(&q); err != nil {
			return nil, err
		}
	}
	return resolve.New(p, s.opts)
}

// Query streams the models of the program under the given query. Calling the returned
// function stops the search and releases its resources.
//
// The stream is closed when the search is exhausted. Other errors are sent as the
// last result.
func (s *Solver) Query(ctx context.Context, query ...*logic.Literal) (<-chan Result, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stream := make(chan Result)
	go func() {
		defer close(stream)
		err := s.run(ctx, query, func(model *resolve.Model) bool {
			select {
			case stream <- Result{Model: model}:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil && ctx.Err() == nil {
			select {
			case stream <- Result{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return stream, cancel
}

// Solve returns up to limit models of the program's own query, or all of them if
// limit is 0.
func (s *Solver) Solve(ctx context.Context, limit int) ([]*resolve.Model, error) {
	if limit < 0 {
		return nil, errors.Errorf(errors.InvalidArgument, "negative model limit %d", limit)
	}
	var models []*resolve.Model
	err := s.run(ctx, nil, func(model *resolve.Model) bool {
		models = append(models, model)
		return limit == 0 || len(models) < limit
	})
	return models, err
}

// run calls yield for every model until it returns false or the search ends.
func (s *Solver) run(ctx context.Context, query []*logic.Literal, yield func(*resolve.Model) bool) error {
	m, err := s.machine(query)
	if err != nil {
		s.metrics.finish("error")
		return err
	}
	defer m.Close()
	defer func() {
		stats := m.Stats()
		s.metrics.add(stats)
		s.mu.Lock()
		s.stats = addStats(s.stats, stats)
		s.mu.Unlock()
	}()
	for {
		start := time.Now()
		model, err := m.Next(ctx)
		s.metrics.observe(start)
		switch {
		case err == resolve.ErrExhausted:
			s.metrics.finish("exhausted")
			s.log.Info("no more models", "models", m.Stats().Models)
			return nil
		case err != nil && ctx.Err() != nil:
			s.metrics.finish("canceled")
			return err
		case err != nil:
			s.metrics.finish("error")
			return err
		}
		if !yield(model) {
			s.metrics.finish("stopped")
			return nil
		}
	}
}

func addStats(a, b resolve.Stats) resolve.Stats {
	return resolve.Stats{
		Steps:       a.Steps + b.Steps,
		Backtracks:  a.Backtracks + b.Backtracks,
		Coinductive: a.Coinductive + b.Coinductive,
		Reuses:      a.Reuses + b.Reuses,
		Candidates:  a.Candidates + b.Candidates,
		Models:      a.Models + b.Models,
	}
}
