// Package invoker provides the built-in command invokers.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"

	"cmdshell/pkg/shelltypes"
)

// ErrJobNotStarted is returned by Wait on a job that was never started.
var ErrJobNotStarted = errors.New("job not started")

// ExitPanic is the exit code reported for a command that panicked.
const ExitPanic = 1

// RunFunc is the body of a job.
type RunFunc func(ctx context.Context) (int, error)

// Job runs a command in its own goroutine once started.
type Job struct {
	name    string
	ctx     context.Context
	cancel  context.CancelFunc
	run     RunFunc
	once    sync.Once
	started atomic.Bool
	done    chan struct{}
	code    int
	err     error
}

var _ shelltypes.Job = (*Job)(nil)

// NewJob prepares run under a context derived from ctx. Nothing runs until Start.
func NewJob(ctx context.Context, name string, run RunFunc) *Job {
	jobCtx, cancel := context.WithCancel(ctx)
	return &Job{
		name:   name,
		ctx:    jobCtx,
		cancel: cancel,
		run:    run,
		done:   make(chan struct{}),
	}
}

// Start launches the job. Calls after the first are no-ops.
func (j *Job) Start() {
	j.once.Do(func() {
		j.started.Store(true)
		go func() {
			defer close(j.done)
			defer j.cancel()
			j.code, j.err = Guard(j.ctx, j.name, j.run)
		}()
	})
}

// Wait blocks until the job finishes.
func (j *Job) Wait() (int, error) {
	if !j.started.Load() {
		return -1, ErrJobNotStarted
	}
	<-j.done
	return j.code, j.err
}

// Cancel cancels the job's context. The command decides how fast it stops.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed when a started job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Guard calls run, turning a panic into an ExecutionError that carries the stack.
func Guard(ctx context.Context, name string, run RunFunc) (code int, err error) {
	var pc panics.Catcher
	pc.Try(func() {
		code, err = run(ctx)
	})
	if r := pc.Recovered(); r != nil {
		return ExitPanic, &shelltypes.ExecutionError{
			Command: name,
			Err:     fmt.Errorf("panic: %v", r.Value),
			Stack:   r.Stack,
		}
	}
	return code, err
}
