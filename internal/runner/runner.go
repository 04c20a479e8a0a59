// Package runner executes the external solver as a blocking subprocess with
// captured output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var (
	// ErrCancelled is returned when the run was stopped by its context or the
	// configured timeout.
	ErrCancelled = errors.New("solver run cancelled")
	// ErrExec is returned when the process could not start or exited non-zero.
	ErrExec = errors.New("solver execution failed")
)

// DefaultMaxOutput caps each captured stream.
const DefaultMaxOutput = 1 << 20

// Command is one solver invocation.
type Command struct {
	Binary string
	Args   []string
	Dir    string
	Env    []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Binary + " " + strings.Join(c.Args, " "))
}

// Result is what a finished run produced.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
	Truncated bool
}

// Combined joins stdout and stderr for diagnostics.
func (r *Result) Combined() string {
	switch {
	case r.Stderr == "":
		return r.Stdout
	case r.Stdout == "":
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Runner executes commands. A zero Timeout waits indefinitely.
type Runner struct {
	Timeout   time.Duration
	MaxOutput int64
	enc       encoding.Encoding
}

// New returns a runner that decodes output with the named encoding ("utf-8",
// "windows-1252", ...). An empty name means UTF-8.
func New(timeout time.Duration, outputEncoding string) (*Runner, error) {
	r := &Runner{Timeout: timeout, MaxOutput: DefaultMaxOutput}
	if outputEncoding != "" {
		enc, err := htmlindex.Get(outputEncoding)
		if err != nil {
			return nil, fmt.Errorf("output encoding %q: %w", outputEncoding, err)
		}
		r.enc = enc
	}
	return r, nil
}

// Run blocks until the command exits. A non-zero exit returns the Result with
// ErrExec; a timeout or cancelled ctx returns ErrCancelled.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("%w: no binary", ErrExec)
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	c.Dir = cmd.Dir
	// Children that inherit the output pipes must not hold Run open after a kill.
	c.WaitDelay = time.Second
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}

	limit := r.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}
	var stdout, stderr bytes.Buffer
	outW := &limitedWriter{w: &stdout, max: limit}
	errW := &limitedWriter{w: &stderr, max: limit}
	c.Stdout = outW
	c.Stderr = errW

	start := time.Now()
	err := c.Run()
	res := &Result{
		ExitCode:  -1,
		Stdout:    r.decode(stdout.Bytes()),
		Stderr:    r.decode(stderr.Bytes()),
		Duration:  time.Since(start),
		Truncated: outW.truncated || errW.truncated,
	}

	if err == nil {
		res.ExitCode = 0
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && r.Timeout > 0 {
			return res, fmt.Errorf("%w: timeout after %s", ErrCancelled, r.Timeout)
		}
		return res, fmt.Errorf("%w: %v", ErrCancelled, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, fmt.Errorf("%w: exit status %d", ErrExec, res.ExitCode)
	}
	return res, fmt.Errorf("%w: %v", ErrExec, err)
}

func (r *Runner) decode(b []byte) string {
	if r.enc == nil || len(b) == 0 {
		return string(b)
	}
	out, _, err := transform.Bytes(r.enc.NewDecoder(), b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// limitedWriter keeps the first max bytes and discards the rest.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	remaining := lw.max - lw.written
	if remaining <= 0 {
		lw.truncated = true
		return n, nil
	}
	if int64(n) > remaining {
		lw.truncated = true
		p = p[:remaining]
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	if err != nil {
		return written, err
	}
	return n, nil
}
