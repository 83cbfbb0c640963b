package invoker

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"cmdshell/internal/logger"
	"cmdshell/internal/strategy"
	"cmdshell/pkg/shelltypes"
)

// Invoker names.
const (
	DefaultName = "default"
	ThreadName  = "thread"
)

// Register adds the built-in invokers to reg.
func Register(reg *strategy.Registry[shelltypes.Invoker]) {
	reg.Register(DefaultName, func(sh shelltypes.Shell) (shelltypes.Invoker, error) {
		return NewDefault(sh), nil
	})
	reg.Register(ThreadName, func(sh shelltypes.Shell) (shelltypes.Invoker, error) {
		return NewThread(sh), nil
	})
}

type base struct {
	sh     shelltypes.Shell
	logger *log.Logger
}

// prepare resolves cl and returns the job body.
func (b *base) prepare(cl *shelltypes.CommandLine) (RunFunc, error) {
	if cl == nil || cl.Name == "" {
		return nil, errors.New("empty command line")
	}
	cmd, err := b.sh.Resolve(cl.Name)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) (int, error) {
		bound := *cl
		if bound.Stdin == nil {
			bound.Stdin = b.sh.InputStream(ctx)
		}
		if bound.Stdout == nil {
			bound.Stdout = b.sh.Out()
		}
		if bound.Stderr == nil {
			bound.Stderr = b.sh.Err()
		}

		b.logger.Debug("Executing command", "command", cl.Name, "args", cl.Args)
		code, err := cmd.Execute(ctx, b.sh, &bound)
		if err != nil {
			var execErr *shelltypes.ExecutionError
			if !errors.As(err, &execErr) {
				err = &shelltypes.ExecutionError{Command: cl.Name, Err: err}
			}
		}
		return code, err
	}, nil
}

func (b *base) InvokeAsynchronous(ctx context.Context, cl *shelltypes.CommandLine) (shelltypes.Job, error) {
	run, err := b.prepare(cl)
	if err != nil {
		return nil, err
	}
	return NewJob(ctx, cl.Name, run), nil
}

// Default runs commands synchronously in the calling goroutine.
type Default struct {
	base
}

// NewDefault creates the default invoker for sh.
func NewDefault(sh shelltypes.Shell) *Default {
	return &Default{base{sh: sh, logger: logger.NewStyledLogger("Invoker")}}
}

// Invoke runs cl to completion.
func (d *Default) Invoke(ctx context.Context, cl *shelltypes.CommandLine) (int, error) {
	run, err := d.prepare(cl)
	if err != nil {
		return -1, err
	}
	return Guard(ctx, cl.Name, run)
}

// Thread runs every command in its own goroutine as a Job and waits for it.
type Thread struct {
	base
}

// NewThread creates the thread invoker for sh.
func NewThread(sh shelltypes.Shell) *Thread {
	return &Thread{base{sh: sh, logger: logger.NewStyledLogger("Invoker")}}
}

// Invoke starts cl as a job and waits for its exit code.
func (t *Thread) Invoke(ctx context.Context, cl *shelltypes.CommandLine) (int, error) {
	job, err := t.InvokeAsynchronous(ctx, cl)
	if err != nil {
		return -1, err
	}
	job.Start()
	return job.Wait()
}
