package common

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewPipelineExecutor(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()

	// empty
	emptyPipeline := NewPipelineExecutor()
	assert.Nil(emptyPipeline(ctx))

	// error case
	errorPipeline := NewErrorExecutor(fmt.Errorf("test error"))
	assert.NotNil(errorPipeline(ctx))

	// multiple success case
	runcount := 0
	successPipeline := NewPipelineExecutor(
		func(_ context.Context) error {
			runcount++
			return nil
		},
		func(_ context.Context) error {
			runcount++
			return nil
		})
	assert.Nil(successPipeline(ctx))
	assert.Equal(2, runcount)
}

func TestPipelineStopsAtError(t *testing.T) {
	ran := false
	err := NewPipelineExecutor(
		NewErrorExecutor(fmt.Errorf("boom")),
		func(_ context.Context) error {
			ran = true
			return nil
		},
	)(context.Background())
	assert.EqualError(t, err, "boom")
	assert.False(t, ran)
}

func TestPipelineContinuesAfterWarning(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New()
	logger.Out = buf
	ctx := WithLogger(context.Background(), logger)

	ran := false
	err := NewPipelineExecutor(
		NewErrorExecutor(Warningf("skipped %d", 1)),
		func(_ context.Context) error {
			ran = true
			return nil
		},
	)(ctx)
	assert.Nil(t, err)
	assert.True(t, ran)
	assert.Contains(t, buf.String(), "skipped 1")
}

func TestNewParallelExecutor(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()

	var mu sync.Mutex
	count := 0
	activeCount := 0
	maxCount := 0
	pipeline := NewPipelineExecutor(func(_ context.Context) error {
		mu.Lock()
		count++
		activeCount++
		if activeCount > maxCount {
			maxCount = activeCount
		}
		mu.Unlock()

		time.Sleep(100 * time.Millisecond)

		mu.Lock()
		activeCount--
		mu.Unlock()
		return nil
	})

	err := NewParallelExecutor(2, pipeline, pipeline, pipeline)(ctx)

	assert.Equal(3, count, "should run all 3 executors")
	assert.Equal(2, maxCount, "should run at most 2 executors in parallel")
	assert.Nil(err)

	// Reset to test running the executor with 0 parallelism
	count = 0
	activeCount = 0
	maxCount = 0

	errSingle := NewParallelExecutor(0, pipeline, pipeline, pipeline)(ctx)

	assert.Equal(3, count, "should run all 3 executors")
	assert.Equal(1, maxCount, "should run at most 1 executors in parallel")
	assert.Nil(errSingle)
}

func TestNewParallelExecutorCanceled(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var mu sync.Mutex
	count := 0
	errorPipeline := NewPipelineExecutor(func(_ context.Context) error {
		mu.Lock()
		count++
		mu.Unlock()
		return fmt.Errorf("fake error")
	})
	err := NewParallelExecutor(1, errorPipeline)(ctx)
	assert.Equal(1, count)
	assert.ErrorIs(err, context.Canceled)
}

func TestNewFieldExecutor(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New()
	logger.Out = buf
	logger.SetFormatter(&log.JSONFormatter{})
	ctx := WithLogger(context.Background(), logger)

	err := NewFieldExecutor("case", "nan-law", func(ctx context.Context) error {
		Logger(ctx).Info("running")
		return nil
	})(ctx)
	assert.Nil(t, err)
	assert.Contains(t, buf.String(), `"case":"nan-law"`)
}

func TestFinally(t *testing.T) {
	cleaned := false
	err := NewErrorExecutor(fmt.Errorf("boom")).Finally(func(_ context.Context) error {
		cleaned = true
		return nil
	})(context.Background())
	assert.EqualError(t, err, "boom")
	assert.True(t, cleaned)

	err = NewErrorExecutor(nil).Finally(NewErrorExecutor(fmt.Errorf("close")))(context.Background())
	assert.EqualError(t, err, "error occurred running finally: close (original error: <nil>)")
}
