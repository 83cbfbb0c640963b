package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	"cmdshell/pkg/shelltypes"
)

// Redirecting understands a subset of POSIX shell syntax: lists separated by ; or
// newlines, && and ||, pipelines, ! negation, trailing & for background commands
// and the redirections <, >, >|, >>, &>, &>> and n>&m. Words are expanded like the
// shell does, except that command substitution is not supported.
type Redirecting struct{}

// NewRedirecting creates the redirecting interpreter.
func NewRedirecting() *Redirecting {
	return &Redirecting{}
}

// stdio holds per-statement stream overrides. nil means the shell's stream.
type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

type run struct {
	sh  shelltypes.Shell
	cfg *expand.Config
}

// Interpret parses line and runs each statement in order.
func (r *Redirecting) Interpret(ctx context.Context, sh shelltypes.Shell, line string) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return &shelltypes.ParseError{Line: line, Err: err}
	}
	if len(file.Stmts) == 0 {
		return nil
	}

	sh.AddCommandToHistory(strings.TrimSpace(line))

	rn := &run{
		sh:  sh,
		cfg: &expand.Config{Env: expand.ListEnviron(os.Environ()...)},
	}
	for _, stmt := range file.Stmts {
		if _, err := rn.stmt(ctx, stmt, stdio{in: sh.InputStream(ctx)}); err != nil {
			return err
		}
	}
	return nil
}

// ParsePartial accepts incomplete input such as an open quote or a trailing pipe
// and completes the word under the cursor.
func (r *Redirecting) ParsePartial(_ shelltypes.Shell, partial string) (shelltypes.Completable, error) {
	if _, err := syntax.NewParser().Parse(strings.NewReader(partial), ""); err != nil && !syntax.IsIncomplete(err) {
		return nil, &shelltypes.ParseError{Line: partial, Err: err}
	}
	return newWordCompletion(partial, true), nil
}

func (rn *run) stmt(ctx context.Context, stmt *syntax.Stmt, streams stdio) (int, error) {
	if stmt.Background {
		return rn.background(ctx, stmt, streams)
	}

	streams, closeFiles, err := rn.redirect(stmt.Redirs, streams)
	if err != nil {
		return 1, err
	}
	defer closeFiles()

	var code int
	switch cmd := stmt.Cmd.(type) {
	case nil:
		code = 0
	case *syntax.CallExpr:
		cl, err := rn.commandLine(cmd, streams)
		if err != nil {
			return 1, err
		}
		code, err = rn.sh.Invoke(ctx, cl)
		if err != nil {
			return code, err
		}
	case *syntax.BinaryCmd:
		code, err = rn.binary(ctx, cmd, streams)
		if err != nil {
			return code, err
		}
	default:
		return 1, fmt.Errorf("unsupported shell syntax: %T", cmd)
	}

	if stmt.Negated {
		if code == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return code, nil
}

func (rn *run) binary(ctx context.Context, cmd *syntax.BinaryCmd, streams stdio) (int, error) {
	switch cmd.Op {
	case syntax.AndStmt, syntax.OrStmt:
		code, err := rn.stmt(ctx, cmd.X, streams)
		if err != nil {
			return code, err
		}
		if (cmd.Op == syntax.AndStmt) == (code == 0) {
			return rn.stmt(ctx, cmd.Y, streams)
		}
		return code, nil
	case syntax.Pipe, syntax.PipeAll:
		return rn.pipeline(ctx, cmd, streams)
	}
	return 1, fmt.Errorf("unsupported operator %s", cmd.Op)
}

// pipeStage is one command of a pipeline and whether its stderr joins the pipe.
type pipeStage struct {
	stmt    *syntax.Stmt
	joinErr bool
}

func flattenPipe(stmt *syntax.Stmt, joinErr bool, stages []pipeStage) []pipeStage {
	if bin, ok := stmt.Cmd.(*syntax.BinaryCmd); ok && len(stmt.Redirs) == 0 && !stmt.Negated &&
		(bin.Op == syntax.Pipe || bin.Op == syntax.PipeAll) {
		stages = flattenPipe(bin.X, bin.Op == syntax.PipeAll, stages)
		return flattenPipe(bin.Y, joinErr, stages)
	}
	return append(stages, pipeStage{stmt: stmt, joinErr: joinErr})
}

// pipeline starts every stage but the last as an asynchronous job connected by
// pipes and runs the last stage in the caller.
func (rn *run) pipeline(ctx context.Context, cmd *syntax.BinaryCmd, streams stdio) (int, error) {
	stages := flattenPipe(cmd.X, cmd.Op == syntax.PipeAll, nil)
	stages = flattenPipe(cmd.Y, false, stages)

	type started struct {
		job   shelltypes.Job
		write *io.PipeWriter
		read  *io.PipeReader
		done  chan struct{}
		err   error
	}

	var jobs []*started
	abort := func() {
		for _, s := range jobs {
			s.job.Cancel()
			s.read.Close()
		}
		for _, s := range jobs {
			<-s.done
		}
	}

	in := streams.in
	for _, stage := range stages[:len(stages)-1] {
		pr, pw := io.Pipe()
		stageStreams := stdio{in: in, out: pw, err: streams.err}
		if stage.joinErr {
			stageStreams.err = pw
		}

		job, err := rn.asyncStmt(ctx, stage.stmt, stageStreams)
		if err != nil {
			pw.Close()
			pr.Close()
			abort()
			return 1, err
		}

		s := &started{job: job, write: pw, read: pr, done: make(chan struct{})}
		jobs = append(jobs, s)
		job.Start()
		go func() {
			defer close(s.done)
			_, s.err = s.job.Wait()
			s.write.Close()
		}()
		in = pr
	}

	last := stages[len(stages)-1]
	code, err := rn.stmt(ctx, last.stmt, stdio{in: in, out: streams.out, err: streams.err})

	// Unblock writers whose reader has gone away.
	for _, s := range jobs {
		s.read.Close()
	}
	var errs []error
	for _, s := range jobs {
		<-s.done
		if s.err != nil && !errors.Is(s.err, io.ErrClosedPipe) {
			errs = append(errs, s.err)
		}
	}
	if err != nil {
		return code, err
	}
	return code, errors.Join(errs...)
}

// asyncStmt prepares a simple command as an unstarted job. Redirections of the
// statement are opened now and closed when the job finishes.
func (rn *run) asyncStmt(ctx context.Context, stmt *syntax.Stmt, streams stdio) (shelltypes.Job, error) {
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok || stmt.Negated {
		return nil, fmt.Errorf("only simple commands can run in the background or before a pipe")
	}

	streams, closeFiles, err := rn.redirect(stmt.Redirs, streams)
	if err != nil {
		return nil, err
	}
	cl, err := rn.commandLine(call, streams)
	if err != nil {
		closeFiles()
		return nil, err
	}
	job, err := rn.sh.InvokeAsynchronous(ctx, cl)
	if err != nil {
		closeFiles()
		return nil, err
	}
	go func() {
		<-job.Done()
		closeFiles()
	}()
	return job, nil
}

// background starts stmt without waiting for it.
func (rn *run) background(ctx context.Context, stmt *syntax.Stmt, streams stdio) (int, error) {
	// A background job must not compete with the shell for console input.
	streams.in = strings.NewReader("")
	job, err := rn.asyncStmt(context.WithoutCancel(ctx), stmt, streams)
	if err != nil {
		return 1, err
	}
	job.Start()
	return 0, nil
}

func (rn *run) commandLine(call *syntax.CallExpr, streams stdio) (*shelltypes.CommandLine, error) {
	if len(call.Assigns) > 0 {
		return nil, errors.New("variable assignments are not supported")
	}
	fields, err := expand.Fields(rn.cfg, call.Args...)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	return &shelltypes.CommandLine{
		Name:   fields[0],
		Args:   fields[1:],
		Stdin:  streams.in,
		Stdout: streams.out,
		Stderr: streams.err,
	}, nil
}

// redirect applies redirs on top of streams. The returned function closes every
// file that was opened.
func (rn *run) redirect(redirs []*syntax.Redirect, streams stdio) (stdio, func(), error) {
	var files []*os.File
	closeFiles := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, rd := range redirs {
		target, err := expand.Literal(rn.cfg, rd.Word)
		if err != nil {
			closeFiles()
			return streams, func() {}, err
		}
		fd := ""
		if rd.N != nil {
			fd = rd.N.Value
		}

		switch rd.Op {
		case syntax.RdrIn:
			f, err := os.Open(rn.path(target))
			if err != nil {
				closeFiles()
				return streams, func() {}, err
			}
			files = append(files, f)
			streams.in = f
		case syntax.RdrOut, syntax.ClbOut, syntax.AppOut, syntax.RdrAll, syntax.AppAll:
			flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if rd.Op == syntax.AppOut || rd.Op == syntax.AppAll {
				flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
			}
			f, err := os.OpenFile(rn.path(target), flags, 0644)
			if err != nil {
				closeFiles()
				return streams, func() {}, err
			}
			files = append(files, f)
			switch {
			case rd.Op == syntax.RdrAll || rd.Op == syntax.AppAll:
				streams.out, streams.err = f, f
			case fd == "2":
				streams.err = f
			default:
				streams.out = f
			}
		case syntax.DplOut:
			out, errOut := streams.out, streams.err
			if out == nil {
				out = rn.sh.Out()
			}
			if errOut == nil {
				errOut = rn.sh.Err()
			}
			switch {
			case fd == "2" && target == "1":
				streams.err = out
			case (fd == "" || fd == "1") && target == "2":
				streams.out = errOut
			default:
				closeFiles()
				return streams, func() {}, fmt.Errorf("unsupported redirection %s%s%s", fd, rd.Op, target)
			}
		default:
			closeFiles()
			return streams, func() {}, fmt.Errorf("unsupported redirection %s", rd.Op)
		}
	}
	return streams, closeFiles, nil
}

func (rn *run) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(rn.sh.WorkingDir(), name)
}
