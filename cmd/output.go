package cmd

import (
	"fmt"
	"io"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/common/utils"
	"github.com/nektos/coerce/pkg/exprparser"
	"github.com/nektos/coerce/pkg/value"
)

type printer struct {
	out     io.Writer
	colored bool
}

func newPrinter(out io.Writer, noColor bool) *printer {
	return &printer{out: out, colored: !noColor && utils.CheckIfColorable(out)}
}

func kindColor(k value.Kind) int {
	switch k {
	case value.KindNumber, value.KindBigInt:
		return utils.Yellow
	case value.KindString:
		return utils.Green
	case value.KindBoolean:
		return utils.Magenta
	case value.KindUndefined, value.KindNull:
		return utils.Gray
	case value.KindAtom:
		return utils.Cyan
	}
	return 0
}

func (p *printer) paint(color int, s string) string {
	return utils.Paint(p.colored, color, s)
}

func (p *printer) value(v value.Value) {
	fmt.Fprintln(p.out, p.paint(kindColor(v.Kind()), coerce.Inspect(v)))
}

func (p *printer) error(err error) {
	fmt.Fprintf(p.out, "%s %v\n", p.paint(utils.Red, "Uncaught "+exprparser.ErrorName(err)+":"), err)
}

func (p *printer) row(label string, ok bool) {
	color := utils.Red
	if ok {
		color = utils.Green
	}
	fmt.Fprintf(p.out, "%-15s %s\n", label, p.paint(color, fmt.Sprint(ok)))
}
