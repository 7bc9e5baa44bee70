package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/brunokim/sasp/config"
	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/parser"
	"github.com/brunokim/sasp/report"
	"github.com/brunokim/sasp/solver"
	"github.com/brunokim/sasp/transform"
)

type runner struct {
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	isTerminal func() bool
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func logLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// loadConfig returns the configuration file, if any, with flags applied over it.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return cfg, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("verbose") {
		cfg.Verbosity = f.verbosity
	}
	if changed("models") {
		cfg.Models = f.models
	}
	if changed("interactive") {
		cfg.Mode = config.Auto
		if f.interactive {
			cfg.Mode = config.Step
		}
	}
	if changed("justification") {
		cfg.Justification = f.justification
	}
	if changed("show-check") {
		cfg.HideCheck = !f.showCheck
	}
	if changed("abducibles") {
		cfg.Abducibles = f.abducibles
	}
	if changed("occurs-check") {
		cfg.OccursCheck = f.occursCheck
	}
	if changed("iter-limit") {
		cfg.IterLimit = f.iterLimit
	}
	if changed("negation-limit") {
		cfg.NegationLimit = f.negationLimit
	}
	if changed("debug-file") {
		cfg.DebugFile = f.debugFile
	}
	if changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	return cfg, cfg.Validate()
}

// loadProgram parses every file and joins them in a single program.
func loadProgram(paths []string) (*logic.Program, error) {
	joined := &logic.Program{ModelCount: -1}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.InvalidInput, err)
		}
		p, err := parser.Parse(path, string(data))
		if err != nil {
			return nil, err
		}
		if len(p.Query) > 0 {
			if len(joined.Query) > 0 {
				return nil, errors.Errorf(errors.InvalidInput, "%s: program has more than one query", path)
			}
			joined.Query = p.Query
		}
		if p.ModelCount >= 0 {
			joined.ModelCount = p.ModelCount
		}
		joined.Clauses = append(joined.Clauses, p.Clauses...)
		joined.Abducibles = append(joined.Abducibles, p.Abducibles...)
	}
	return joined, nil
}

func printDual(out io.Writer, paths []string) error {
	p, err := loadProgram(paths)
	if err != nil {
		return err
	}
	compiled, err := transform.Compile(p)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, compiled.String())
	return err
}

func (r *runner) run(cmd *cobra.Command, f flags, paths []string) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(r.errOut, &slog.HandlerOptions{Level: logLevel(cfg.Verbosity)}))
	p, err := loadProgram(paths)
	if err != nil {
		return err
	}
	// An explicit flag takes precedence over the program's #compute directive.
	if p.ModelCount >= 0 && !cmd.Flags().Changed("models") {
		cfg.Models = p.ModelCount
	}
	var query []*logic.Literal
	if f.query != "" {
		if query, err = parser.ParseQuery(f.query); err != nil {
			return err
		}
	}
	step := cfg.Mode == config.Step
	if step && !r.isTerminal() {
		log.Warn("stdin is not a terminal, printing models without confirmation")
		step = false
	}

	s, err := solver.New(p, solver.WithOptions(cfg.ResolveOptions()), solver.WithLogger(log))
	if err != nil {
		return err
	}
	opts := report.Options{Justification: cfg.Justification, HideCheck: cfg.HideCheck}
	if cfg.Abducibles {
		opts.Abducibles = p.Abducibles
	}
	printer := report.New(r.out, opts)
	if err := r.printModels(cmd.Context(), s, query, printer, cfg.Models, step); err != nil {
		return err
	}
	log.Info("search finished", "models", printer.Count(), slog.Any("stats", s.Stats()))
	if cfg.MetricsFile != "" {
		if err := s.WriteMetrics(cfg.MetricsFile); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) printModels(ctx context.Context, s *solver.Solver, query []*logic.Literal, printer *report.Printer, limit int, step bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var prompt *stepPrompt
	if step {
		var err error
		if prompt, err = newStepPrompt(r.in, r.out); err != nil {
			return err
		}
		defer prompt.close()
	}
	results, cancel := s.Query(ctx, query...)
	defer cancel()
	for result := range results {
		if result.Err != nil {
			return result.Err
		}
		if err := printer.Model(result.Model); err != nil {
			return err
		}
		if limit > 0 && printer.Count() >= limit {
			break
		}
		if prompt != nil && !prompt.next() {
			break
		}
	}
	return printer.Done()
}
