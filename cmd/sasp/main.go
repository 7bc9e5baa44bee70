// Command sasp computes stable models of answer set programs.
//
// Usage:
//
//	sasp [flags] FILE...
//	sasp dual FILE...
//
// The first form prints the models of the program in the files, answering its query if
// it has one. The second prints the program after transformation, with dual rules and
// the consistency check.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/brunokim/sasp/errors"
)

// flags holds command-line values, applied over the configuration only when set.
type flags struct {
	configFile    string
	verbosity     int
	models        int
	interactive   bool
	justification bool
	showCheck     bool
	abducibles    bool
	occursCheck   bool
	iterLimit     int
	negationLimit int
	debugFile     string
	metricsFile   string
	query         string
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var f flags
	rootCmd := &cobra.Command{
		Use:           "sasp [flags] FILE...",
		Short:         "Compute stable models of answer set programs",
		Args:          requireFiles,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &runner{in: in, out: out, errOut: errOut, isTerminal: stdinIsTerminal}
			return r.run(cmd, f, args)
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.InvalidArgument, err)
	})
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	fs := rootCmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "YAML file with run parameters")
	fs.CountVarP(&f.verbosity, "verbose", "v", "Log verbosity; repeat for more detail")
	fs.IntVarP(&f.models, "models", "s", 1, "Number of models to compute, or 0 for all")
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "Ask before computing each next model")
	fs.BoolVarP(&f.justification, "justification", "j", false, "Print the justification tree of each model")
	fs.BoolVar(&f.showCheck, "show-check", false, "Include the consistency check in justifications")
	fs.BoolVar(&f.abducibles, "abducibles", false, "Print the abducibles assumed by each model")
	fs.BoolVar(&f.occursCheck, "occurs-check", true, "Reject unifying a variable with a term containing it")
	fs.IntVar(&f.iterLimit, "iter-limit", 0, "Maximum number of resolver steps, or 0 for no limit")
	fs.IntVar(&f.negationLimit, "negation-limit", 64, "Maximum constraints added per negated goal without duals")
	fs.StringVar(&f.debugFile, "debug-file", "", "Write one JSON object per resolver step to this file")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write search metrics in Prometheus text format to this file")
	fs.StringVarP(&f.query, "query", "q", "", "Query to answer instead of the program's")

	rootCmd.AddCommand(newDualCmd(out))
	return rootCmd
}

func newDualCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "dual FILE...",
		Short: "Print the program with dual rules and consistency check",
		Args:  requireFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDual(out, args)
		},
	}
}

func requireFiles(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.Errorf(errors.InvalidArgument, "missing input file")
	}
	return nil
}

// exitCode returns 1 for errors in the input or arguments, and 2 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errors.InvalidInput), errors.Is(err, errors.InvalidArgument):
		return 1
	default:
		return 2
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sasp:", err)
	}
	stop()
	os.Exit(exitCode(err))
}
