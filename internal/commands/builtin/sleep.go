package builtin

import (
	"context"
	"strconv"
	"time"

	"cmdshell/pkg/shelltypes"
)

// SleepCommand pauses until a duration passes or the command is cancelled.
type SleepCommand struct{}

// Name returns the command name "sleep" for registration and lookup.
func (c *SleepCommand) Name() string {
	return "sleep"
}

// Description returns a brief description of what the sleep command does.
func (c *SleepCommand) Description() string {
	return "Wait for a duration"
}

// Usage returns the syntax for the sleep command.
func (c *SleepCommand) Usage() string {
	return "sleep seconds | sleep duration (e.g. 1.5, 200ms, 2m)"
}

// Execute blocks for the requested time. Cancellation returns 130.
func (c *SleepCommand) Execute(ctx context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	if len(cl.Args) != 1 {
		return usageError(c)
	}
	d, err := parseDuration(cl.Args[0])
	if err != nil {
		return usageError(c)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return 0, nil
	case <-ctx.Done():
		return 130, ctx.Err()
	}
}

// parseDuration accepts plain seconds as well as Go duration strings.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, strconv.ErrRange
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, strconv.ErrRange
	}
	return d, nil
}
