package cmd

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nektos/coerce/pkg/common"
	"github.com/nektos/coerce/pkg/common/utils"
	"github.com/nektos/coerce/pkg/conformance"
)

func newConformCommand(input *Input) *cobra.Command {
	opts := &conformOptions{}
	cmd := &cobra.Command{
		Use:   "conform [DIR...]",
		Short: "Run YAML conformance suites (the built-in suites when no DIR is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dirs := make([]string, len(args))
			for i, dir := range args {
				dirs[i] = input.resolve(dir)
			}
			run := &conformRun{
				runner:  &conformance.Runner{Policy: input.policy.policy, Parallel: opts.parallel},
				printer: newPrinter(cmd.OutOrStdout(), input.noColor),
				verbose: opts.verbose,
			}
			return run.pipeline(ctx, dirs, opts.patterns)(ctx)
		},
	}
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", runtime.NumCPU(), "number of cases to run at once")
	cmd.Flags().BoolVar(&opts.verbose, "list", false, "also print passed and skipped cases")
	cmd.Flags().StringArrayVarP(&opts.patterns, "run", "r", []string{}, "only run cases whose file/name matches; a leading ! excludes")
	return cmd
}

type conformOptions struct {
	parallel int
	verbose  bool
	patterns []string
}

// conformRun carries cases and results between the steps of the pipeline
type conformRun struct {
	runner  *conformance.Runner
	printer *printer
	verbose bool

	tests   []conformance.LoadedTest
	results []conformance.TestResult
}

// pipeline loads every dir (the built-in suites when there are none), then
// selects, runs and reports. Empty sources and skipped cases are warnings.
func (c *conformRun) pipeline(ctx context.Context, dirs []string, patterns []string) common.Executor {
	filter, err := conformance.NewFilter(common.Logger(ctx), patterns...)
	if err != nil {
		return common.NewErrorExecutor(err)
	}

	var steps []common.Executor
	if len(dirs) == 0 {
		steps = append(steps, c.load("built-in suites", conformance.LoadBuiltin))
	}
	for _, dir := range dirs {
		dir := dir
		steps = append(steps, c.load(dir, func() ([]conformance.LoadedTest, error) {
			return conformance.LoadDir(dir)
		}))
	}
	steps = append(steps, c.selectTests(filter, patterns), c.run, c.report)
	return common.NewPipelineExecutor(steps...)
}

func (c *conformRun) load(source string, load func() ([]conformance.LoadedTest, error)) common.Executor {
	return func(ctx context.Context) error {
		loaded, err := load()
		if err != nil {
			return err
		}
		common.Logger(ctx).Debugf("Loaded %d conformance cases from %s", len(loaded), source)
		if len(loaded) == 0 {
			return common.Warningf("No conformance cases found in %s", source)
		}
		c.tests = append(c.tests, loaded...)
		return nil
	}
}

func (c *conformRun) selectTests(filter *conformance.Filter, patterns []string) common.Executor {
	return func(ctx context.Context) error {
		loaded := len(c.tests)
		c.tests = filter.Select(c.tests)
		common.Logger(ctx).Debugf("Selected %d conformance cases", len(c.tests))
		if loaded > 0 && len(c.tests) == 0 {
			return common.Warningf("No conformance cases match %s", strings.Join(patterns, " "))
		}
		return nil
	}
}

func (c *conformRun) run(ctx context.Context) error {
	results, err := c.runner.RunAll(ctx, c.tests)
	if err != nil {
		return err
	}
	c.results = results
	if skipped := conformance.ComputeStats(results).Skipped; skipped > 0 {
		return common.Warningf("%d conformance cases skipped", skipped)
	}
	return nil
}

func (c *conformRun) report(_ context.Context) error {
	p := c.printer
	if c.verbose {
		for _, r := range c.results {
			switch {
			case r.Skipped:
				fmt.Fprintf(p.out, "%s %s (%s)\n", p.paint(utils.Gray, "SKIP"), r.Test.ID(), r.SkipReason)
			case r.Passed:
				fmt.Fprintf(p.out, "%s %s\n", p.paint(utils.Green, "PASS"), r.Test.ID())
			}
		}
	}
	for _, line := range conformance.Failures(c.results) {
		fmt.Fprintf(p.out, "%s %s\n", p.paint(utils.Red, "FAIL"), line)
	}
	stats := conformance.ComputeStats(c.results)
	fmt.Fprintln(p.out, conformance.FormatStats(stats))
	if !stats.OK() {
		return fmt.Errorf("%d conformance cases failed", stats.Failed)
	}
	return nil
}
