package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/history"
)

func newConvertCommand(input *Input) *cobra.Command {
	to := &targetValue{target: coerce.TargetNumber}
	hint := &hintValue{}
	cmd := &cobra.Command{
		Use:   "convert EXPR",
		Short: "Apply one abstract conversion to the value of EXPR",
		Example: `  coerce convert --to number "' 0x1F '"
  coerce convert --to primitive --hint string "({ valueOf: function() { return 1 }, toString: function() { return 'one' } })"`,
		Args: cobra.ExactArgs(1),
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

			expr := args[0]
			v, err := interpreter.Evaluate(expr)
			if err == nil {
				v, err = coerce.Convert(v, to.target, hint.hint)
			}
			record(ctx, store, history.SourceCLI, to.target.String()+"("+expr+")", v, err)

			p := newPrinter(cmd.OutOrStdout(), input.noColor)
			if err != nil {
				p.error(err)
				return err
			}
			p.value(v)
			return nil
		},
	}
	cmd.Flags().Var(to, "to", "conversion to apply")
	cmd.Flags().Var(hint, "hint", "preferred type for objects: default, number or string")
	return cmd
}
