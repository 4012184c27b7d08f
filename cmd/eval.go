package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/common"
	"github.com/nektos/coerce/pkg/history"
	"github.com/nektos/coerce/pkg/server"
	"github.com/nektos/coerce/pkg/value"
)

func newEvalCommand(input *Input) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "eval EXPR...",
		Short: "Evaluate expressions and print their values",
		Example: `  coerce eval "[] + {}"
  coerce eval "'18' + { valueOf: function() { return 42 } }"
  coerce eval -- "-'5'" "-0"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			interpreter, err := input.Interpreter(ctx)
			if err != nil {
				return err
			}
			store, err := input.OpenHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			p := newPrinter(cmd.OutOrStdout(), input.noColor)
			failed := 0
			for _, expr := range args {
				v, err := interpreter.Evaluate(expr)
				record(ctx, store, history.SourceCLI, expr, v, err)
				if err != nil {
					failed++
				}
				switch {
				case asJSON:
					data, err := json.Marshal(server.NewResult(expr, v, err))
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
				case err != nil:
					p.error(err)
				default:
					p.value(v)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d expressions failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "output-json", false, "print one JSON result per expression")
	return cmd
}

// record appends an evaluation to store. A nil store records nothing.
func record(ctx context.Context, store *history.Store, source history.Source, expr string, v value.Value, err error) {
	if store == nil {
		return
	}
	entry := &history.Entry{Source: source, Expr: expr}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Result = coerce.Inspect(v)
		entry.Kind = v.Kind().String()
	}
	if err := store.Append(entry); err != nil {
		common.Logger(ctx).Warnf("Failed to record history: %v", err)
	}
}
