package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI foreground colours used for results
const (
	Red     = 31
	Green   = 32
	Yellow  = 33
	Blue    = 34
	Magenta = 35
	Cyan    = 36
	Gray    = 37
)

func CheckIfColorable(w io.Writer) bool {
	if !CheckIfTerminal(w) {
		return false
	}

	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	// https://bixense.com/clicolors/
	if f, ok := os.LookupEnv("CLICOLOR_FORCE"); ok && f != "0" {
		return true
	}

	if c, ok := os.LookupEnv("CLICOLOR"); ok {
		return c != "0"
	}

	if t, ok := os.LookupEnv("TERM"); ok {
		switch t {
		case "dumb", "unknown", "linux":
			return false
		}
	}

	return true
}

func CheckIfTerminal(w io.Writer) bool {
	switch v := w.(type) {
	case *os.File:
		return isatty.IsTerminal(v.Fd()) || isatty.IsCygwinTerminal(v.Fd())
	default:
		return false
	}
}

// Paint wraps s in the given colour when colored is set
func Paint(colored bool, color int, s string) string {
	if !colored || color == 0 {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, s)
}
