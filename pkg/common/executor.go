package common

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Warning is an error that is logged but does not stop a pipeline
type Warning struct {
	Message string
}

func (w Warning) Error() string {
	return w.Message
}

// Warningf creates a warning
func Warningf(format string, args ...interface{}) Warning {
	return Warning{
		Message: fmt.Sprintf(format, args...),
	}
}

// Executor is a unit of work: one conformance case, one server lifecycle step
type Executor func(ctx context.Context) error

// NewPipelineExecutor chains executors, stopping at the first error
func NewPipelineExecutor(executors ...Executor) Executor {
	if len(executors) == 0 {
		return func(_ context.Context) error {
			return nil
		}
	}
	var rtn Executor
	for _, executor := range executors {
		if rtn == nil {
			rtn = executor
		} else {
			rtn = rtn.Then(executor)
		}
	}
	return rtn
}

// NewErrorExecutor creates a new executor that always errors out
func NewErrorExecutor(err error) Executor {
	return func(_ context.Context) error {
		return err
	}
}

// NewParallelExecutor runs executors on at most parallel workers. Every
// executor runs to completion; the first error is returned.
func NewParallelExecutor(parallel int, executors ...Executor) Executor {
	return func(ctx context.Context) error {
		work := make(chan Executor, len(executors))
		errs := make(chan error, len(executors))

		if 1 > parallel {
			log.Debugf("Parallel tasks (%d) below minimum, setting to 1", parallel)
			parallel = 1
		}

		for i := 0; i < parallel; i++ {
			go func(work <-chan Executor, errs chan<- error) {
				for executor := range work {
					errs <- executor(ctx)
				}
			}(work, errs)
		}

		for i := 0; i < len(executors); i++ {
			work <- executors[i]
		}
		close(work)

		var firstErr error
		for i := 0; i < len(executors); i++ {
			err := <-errs
			if firstErr == nil {
				firstErr = err
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		return firstErr
	}
}

// NewFieldExecutor runs exec with name=value attached to the context logger
func NewFieldExecutor(name string, value interface{}, exec Executor) Executor {
	return func(ctx context.Context) error {
		return exec(WithLogger(ctx, Logger(ctx).WithField(name, value)))
	}
}

// Then runs another executor if this executor succeeds
func (e Executor) Then(then Executor) Executor {
	return func(ctx context.Context) error {
		err := e(ctx)
		if err != nil {
			switch err.(type) {
			case Warning:
				Logger(ctx).Warning(err.Error())
			default:
				return err
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return then(ctx)
	}
}

// Finally adds an executor to run after other executor
func (e Executor) Finally(finally Executor) Executor {
	return func(ctx context.Context) error {
		err := e(ctx)
		err2 := finally(ctx)
		if err2 != nil {
			return fmt.Errorf("error occurred running finally: %v (original error: %v)", err2, err)
		}
		return err
	}
}
