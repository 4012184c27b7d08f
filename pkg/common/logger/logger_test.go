package logger

import (
	"bytes"
	"context"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/nektos/coerce/pkg/common"
)

func TestNewTextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Options{Out: buf})
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.WithFields(log.Fields{"kind": "number", "expr": "1+1"}).Info("evaluated")
	logger.Debug("hidden")
	assert.Equal(t, "INFO evaluated expr=1+1 kind=number\n", buf.String())
}

func TestNewJSONLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Options{Out: buf, JSON: true, Verbose: true})
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	logger.Debug("parsed")
	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), `"msg":"parsed"`)
}

func TestWithCommandLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithCommandLogger(context.Background(), New(Options{Out: buf}), "eval")
	common.Logger(ctx).Warn("careful")
	assert.Equal(t, "WARN careful cmd=eval\n", buf.String())
}

func TestNoColor(t *testing.T) {
	colored := New(Options{Out: &bytes.Buffer{}}).Formatter.(*lineFormatter)
	assert.NotNil(t, colored.colorable)
	plain := New(Options{Out: &bytes.Buffer{}, NoColor: true}).Formatter.(*lineFormatter)
	assert.Nil(t, plain.colorable)

	entry := &log.Entry{Logger: log.New(), Level: log.WarnLevel, Message: "careful"}
	always := &lineFormatter{colorable: func(io.Writer) bool { return true }}
	out, err := always.Format(entry)
	assert.NoError(t, err)
	assert.Equal(t, "\x1b[33mWARN\x1b[0m careful\n", string(out))

	out, err = plain.Format(entry)
	assert.NoError(t, err)
	assert.Equal(t, "WARN careful\n", string(out))
}
