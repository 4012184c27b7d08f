package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nektos/coerce/pkg/common"
	"github.com/nektos/coerce/pkg/exprparser"
	"github.com/nektos/coerce/pkg/history"
)

const replHelp = `.help            show this message
.builtins        list the built-in functions
.history [N]     show the last N evaluations (default 10)
.exit            leave the session
Anything else is evaluated as an expression.
`

// lineReader yields one input line at a time; io.EOF ends the session
type lineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	scanner *bufio.Scanner
}

func (s *scannerReader) ReadLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

type repl struct {
	interpreter exprparser.Interpreter
	store       *history.Store
	printer     *printer
	lines       lineReader
}

func newReplCommand(input *Input) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			r := &repl{interpreter: interpreter, store: store}

			fd := int(os.Stdin.Fd())
			if cmd.InOrStdin() == os.Stdin && term.IsTerminal(fd) {
				oldState, err := term.MakeRaw(fd)
				if err != nil {
					return err
				}
				defer func() {
					if err := term.Restore(fd, oldState); err != nil {
						common.Logger(ctx).Errorf("Failed to restore terminal: %v", err)
					}
				}()
				t := term.NewTerminal(struct {
					io.Reader
					io.Writer
				}{os.Stdin, cmd.OutOrStdout()}, "> ")
				names := completionNames(input)
				t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
					if key != '\t' {
						return "", 0, false
					}
					return complete(names, line, pos)
				}
				r.lines = t
				r.printer = newPrinter(t, input.noColor)
				r.printer.colored = !input.noColor
			} else {
				r.lines = &scannerReader{scanner: bufio.NewScanner(cmd.InOrStdin())}
				r.printer = newPrinter(cmd.OutOrStdout(), input.noColor)
			}
			return r.run(ctx)
		},
	}
}

// run reads and evaluates lines until EOF, .exit or ctx ends
func (r *repl) run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := r.lines.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if done := r.command(line); done {
				return nil
			}
			continue
		}
		v, err := r.interpreter.Evaluate(line)
		record(ctx, r.store, history.SourceREPL, line, v, err)
		if err != nil {
			r.printer.error(err)
			continue
		}
		r.printer.value(v)
	}
}

// command runs a dot-command and reports whether the session should end
func (r *repl) command(line string) bool {
	fields := strings.Fields(line)
	out := r.printer.out
	switch fields[0] {
	case ".exit", ".quit":
		return true
	case ".help":
		fmt.Fprint(out, replHelp)
	case ".builtins":
		fmt.Fprintln(out, strings.Join(exprparser.BuiltinNames(), " "))
	case ".history":
		if r.store == nil {
			fmt.Fprintln(out, "history is disabled")
			break
		}
		limit := 10
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				fmt.Fprintf(out, "invalid count %q\n", fields[1])
				break
			}
			limit = n
		}
		entries, err := r.store.Recent(limit)
		if err != nil {
			r.printer.error(err)
			break
		}
		// oldest first, like a shell
		for i := len(entries) - 1; i >= 0; i-- {
			fmt.Fprintln(out, formatEntry(entries[i]))
		}
	default:
		fmt.Fprintf(out, "unknown command %s, try .help\n", fields[0])
	}
	return false
}

func completionNames(input *Input) []string {
	names := exprparser.BuiltinNames()
	names = append(names, "undefined", "null", "true", "false", "NaN", "Infinity")
	if vars, err := input.Vars(); err == nil {
		for name := range vars {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || r == '.' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// complete extends the identifier ending at pos (in runes) to the longest
// prefix its candidates in names share
func complete(names []string, line string, pos int) (string, int, bool) {
	runes := []rune(line)
	if pos > len(runes) {
		return "", 0, false
	}
	start := pos
	for start > 0 && isIdentRune(runes[start-1]) {
		start--
	}
	prefix := string(runes[start:pos])
	if prefix == "" {
		return "", 0, false
	}

	var matches []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", 0, false
	}
	shared := matches[0]
	for _, m := range matches[1:] {
		for !strings.HasPrefix(m, shared) {
			shared = shared[:len(shared)-1]
		}
	}
	if len(shared) == len(prefix) {
		return "", 0, false
	}
	return string(runes[:start]) + shared + string(runes[pos:]), start + len([]rune(shared)), true
}

func formatEntry(e *history.Entry) string {
	if e.Error != "" {
		return fmt.Sprintf("%d  %s  => Uncaught %s", e.ID, e.Expr, e.Error)
	}
	return fmt.Sprintf("%d  %s  => %s", e.ID, e.Expr, e.Result)
}
