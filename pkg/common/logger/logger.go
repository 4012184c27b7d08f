package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nektos/coerce/pkg/common"
	"github.com/nektos/coerce/pkg/common/utils"
)

// Options controls how New builds a logger
type Options struct {
	Out     io.Writer
	JSON    bool
	Verbose bool
	NoColor bool
}

// New creates a logger writing to opts.Out (stderr when nil)
func New(opts Options) *log.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var formatter log.Formatter
	if opts.JSON {
		formatter = &log.JSONFormatter{}
	} else {
		f := &lineFormatter{}
		if !opts.NoColor {
			f.colorable = utils.CheckIfColorable
		}
		formatter = f
	}

	logger := log.New()
	logger.SetFormatter(formatter)
	logger.SetOutput(out)
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// WithCommandLogger attaches a logger tagged with the running command
func WithCommandLogger(ctx context.Context, logger log.FieldLogger, command string) context.Context {
	return common.WithLogger(ctx, logger.WithField("cmd", command))
}

type lineFormatter struct {
	// colorable decides whether to paint for an output; nil never paints
	colorable func(io.Writer) bool
}

func (f *lineFormatter) Format(entry *log.Entry) ([]byte, error) {
	b := &bytes.Buffer{}
	colored := f.colorable != nil && entry.Logger != nil && f.colorable(entry.Logger.Out)

	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}
	_, _ = fmt.Fprintf(b, "%s %s", utils.Paint(colored, levelColor(entry.Level), level), strings.TrimSuffix(entry.Message, "\n"))

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(b, " %s=%v", utils.Paint(colored, utils.Gray, k), entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelColor(level log.Level) int {
	switch level {
	case log.DebugLevel, log.TraceLevel:
		return utils.Gray
	case log.WarnLevel:
		return utils.Yellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return utils.Red
	default:
		return utils.Blue
	}
}
