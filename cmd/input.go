package cmd

import (
	"context"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/nektos/coerce/pkg/common"
	"github.com/nektos/coerce/pkg/exprparser"
	"github.com/nektos/coerce/pkg/history"
	"github.com/nektos/coerce/pkg/value"
)

// Input contains the input for the root command
type Input struct {
	verbose     bool
	jsonLogger  bool
	policy      bigIntPolicyValue
	envFile     string
	vars        []string
	historyFile string
	noHistory   bool
	noColor     bool

	loaded map[string]value.Value
}

func (i *Input) resolve(path string) string {
	if path == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		log.Fatal(err)
	}
	return abs
}

// HistoryPath returns the history database, or "" when history is off
func (i *Input) HistoryPath() string {
	if i.noHistory {
		return ""
	}
	if i.historyFile == "" {
		return history.DefaultPath()
	}
	return i.resolve(i.historyFile)
}

// EnvFile returns the path to the variables file
func (i *Input) EnvFile() string {
	return i.resolve(i.envFile)
}

// Vars returns the variables from --env-file and --var, loading them once
func (i *Input) Vars() (map[string]value.Value, error) {
	if i.loaded == nil {
		vars, err := loadVars(i.EnvFile(), i.vars)
		if err != nil {
			return nil, err
		}
		i.loaded = vars
	}
	return i.loaded, nil
}

// Interpreter builds an interpreter over the configured variables
func (i *Input) Interpreter(ctx context.Context) (exprparser.Interpreter, error) {
	vars, err := i.Vars()
	if err != nil {
		return nil, err
	}
	env := &exprparser.EvaluationEnvironment{Vars: vars}
	return exprparser.NewInterpreter(env, exprparser.Config{
		Policy: i.policy.policy,
		Logger: common.Logger(ctx),
	}), nil
}

// OpenHistory opens the history store. It returns nil without error when
// history is disabled.
func (i *Input) OpenHistory() (*history.Store, error) {
	path := i.HistoryPath()
	if path == "" {
		return nil, nil
	}
	return history.Open(path)
}
