package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nektos/coerce/pkg/common"
	"github.com/nektos/coerce/pkg/exprparser"
	"github.com/nektos/coerce/pkg/server"
)

func newServeCommand(input *Input) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluator over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			vars, err := input.Vars()
			if err != nil {
				return err
			}
			store, err := input.OpenHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			logger := common.Logger(ctx)
			h, err := server.StartHandler(listen, server.Options{
				Env:     &exprparser.EvaluationEnvironment{Vars: vars},
				Config:  exprparser.Config{Policy: input.policy.policy},
				History: store,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			defer h.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\n", h.URL())
			return h.Executor()(ctx)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "127.0.0.1:8420", "address to listen on")
	return cmd
}
