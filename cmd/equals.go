package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nektos/coerce/pkg/coerce"
)

func newEqualsCommand(input *Input) *cobra.Command {
	return &cobra.Command{
		Use:     "equals LEFT RIGHT",
		Short:   "Compare two values with every equality relation",
		Example: `  coerce equals "NaN" "NaN"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			interpreter, err := input.Interpreter(cmd.Context())
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), input.noColor)

			left, err := interpreter.Evaluate(args[0])
			if err != nil {
				p.error(err)
				return err
			}
			right, err := interpreter.Evaluate(args[1])
			if err != nil {
				p.error(err)
				return err
			}
			abstract, err := coerce.AbstractEquals(left, right)
			if err != nil {
				p.error(err)
				return err
			}

			fmt.Fprintf(p.out, "%s  vs  %s\n", coerce.Inspect(left), coerce.Inspect(right))
			p.row("===", coerce.StrictEquals(left, right))
			p.row("==", abstract)
			p.row("Object.is", coerce.SameValue(left, right))
			p.row("SameValueZero", coerce.SameValueZero(left, right))
			return nil
		},
	}
}
