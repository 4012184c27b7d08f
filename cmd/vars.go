package cmd

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/nektos/coerce/pkg/value"
)

// promptValue asks for a variable on the terminal. Replaced in tests.
var promptValue = func(name string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no value for variable '%s' and stdin is not a terminal", name)
	}
	fmt.Fprintf(os.Stderr, "Provide value for '%s': ", name)
	val, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read value for '%s'", name)
	}
	return string(val), nil
}

// parseVars turns NAME=value pairs into a map. A bare NAME is taken from
// the environment, or prompted for.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		if name == "" {
			return nil, fmt.Errorf("invalid variable %q (expected NAME=value)", pair)
		}
		if _, dup := vars[name]; dup {
			log.Warnf("Variable %s is already defined, the last value wins", name)
		}
		if !ok {
			if env, found := os.LookupEnv(name); found && env != "" {
				val = env
			} else {
				var err error
				if val, err = promptValue(name); err != nil {
					return nil, err
				}
			}
		}
		vars[name] = val
	}
	return vars, nil
}

// loadVars reads envFile (when set) and the --var pairs. Pairs override
// values from the file. Every variable is bound as a string.
func loadVars(envFile string, pairs []string) (map[string]value.Value, error) {
	vars, err := parseVars(pairs)
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read env file %s", envFile)
		}
		if err := mergo.Merge(&vars, fileVars); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	values := make(map[string]value.Value, len(vars))
	for name, v := range vars {
		values[name] = value.String(v)
	}
	return values, nil
}
