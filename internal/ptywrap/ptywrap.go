// Package ptywrap runs a child process under a pseudo-terminal so that its
// output can be redacted without the child noticing it is being piped.
package ptywrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// drainTimeout bounds how long output is read after the child exits. A
// grandchild that keeps the terminal open would otherwise block forever.
const drainTimeout = 2 * time.Second

// Options controls PTY execution behavior.
type Options struct {
	// RawMode puts the controlling terminal in raw mode while the child runs.
	RawMode bool
	// Input feeds the child's terminal. Defaults to os.Stdin.
	Input io.Reader
	// Output receives everything the child writes. It is closed on return
	// when it implements io.Closer, which flushes a redacting writer.
	Output io.Writer
}

// RunCommand starts cmd under a PTY, proxies IO and returns the child's exit
// code. Cancelling ctx kills the child.
func RunCommand(ctx context.Context, cmd *exec.Cmd, opts Options) (int, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return 1, fmt.Errorf("start pty: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	in := opts.Input
	if in == nil {
		in = os.Stdin
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	restore, err := maybeMakeRaw(opts.RawMode)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return 1, err
	}
	if restore != nil {
		defer restore()
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		_ = pty.InheritSize(os.Stdin, ptmx)
	}
	stopSignals := forwardSignals(cmd.Process, ptmx)
	defer stopSignals()

	go func() { _, _ = io.Copy(ptmx, in) }()
	copyDone := make(chan error, 1)
	go func() {
		_, err := io.Copy(out, ptmx)
		copyDone <- err
	}()

	stopKill := context.AfterFunc(ctx, func() { _ = cmd.Process.Kill() })
	defer stopKill()

	waitErr := cmd.Wait()
	select {
	case <-copyDone:
	case <-time.After(drainTimeout):
		_ = ptmx.Close()
		<-copyDone
	}
	if err := closeOutput(out); err != nil {
		return exitCode(waitErr), fmt.Errorf("flush output: %w", err)
	}
	if ctx.Err() != nil {
		return exitCode(waitErr), ctx.Err()
	}
	return exitCode(waitErr), nil
}

func closeOutput(out io.Writer) error {
	if closer, ok := out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func maybeMakeRaw(enable bool) (func(), error) {
	if !enable {
		return nil, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

func forwardSignals(proc *os.Process, ptmx *os.File) func() {
	if proc == nil {
		return func() {}
	}
	ch := make(chan os.Signal, 8)
	signal.Notify(ch, syscall.SIGWINCH, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for sig := range ch {
			switch sig {
			case syscall.SIGWINCH:
				_ = pty.InheritSize(os.Stdin, ptmx)
			default:
				_ = proc.Signal(sig)
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
		<-done
	}
}

// exitCode maps a Wait error to a shell-style status. Signals map to 128+n.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}
	return 1
}
