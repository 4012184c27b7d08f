package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/nektos/coerce/pkg/common/logger"
)

var exitFunc = os.Exit

// Execute is the entry point to running the CLI
func Execute(ctx context.Context, version string) {
	input := new(Input)
	rootCmd := createRootCommand(ctx, input, version)
	rootCmd.SetArgs(append(defaultArgs(rcFiles()), os.Args[1:]...))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		exitFunc(1)
	}
}

func createRootCommand(ctx context.Context, input *Input, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coerce",
		Short: "Explore how a dynamic language converts and compares values",
		Long: "coerce evaluates JavaScript-style expressions and shows the conversions\n" +
			"behind them: ToNumber, ToString, ToPrimitive and the equality relations.",
		Args:              cobra.NoArgs,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger(input),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetContext(ctx)

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&input.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&input.jsonLogger, "json", false, "Output logs in json format")
	flags.Var(&input.policy, "bigint", "mixed bigint and number arithmetic: strict or lossy")
	flags.StringVar(&input.envFile, "env-file", "", "file with NAME=value variables bound as strings")
	flags.StringArrayVar(&input.vars, "var", []string{}, "variable bound as a string (e.g. --var port=8080); a bare NAME reads the environment or prompts")
	flags.StringVar(&input.historyFile, "history-file", "", "history database (default $XDG_CACHE_HOME/coerce/history.db)")
	flags.BoolVar(&input.noHistory, "no-history", false, "do not record evaluations")
	flags.BoolVar(&input.noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(
		newEvalCommand(input),
		newConvertCommand(input),
		newEqualsCommand(input),
		newConformCommand(input),
		newReplCommand(input),
		newServeCommand(input),
		newHistoryCommand(input),
	)
	return rootCmd
}

func setupLogger(input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		l := logger.New(logger.Options{
			Out:     cmd.ErrOrStderr(),
			JSON:    input.jsonLogger,
			Verbose: input.verbose,
			NoColor: input.noColor,
		})
		cmd.SetContext(logger.WithCommandLogger(cmd.Context(), l, cmd.Name()))
		return nil
	}
}
