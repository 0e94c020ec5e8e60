package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// maxLineBytes bounds one scanned output line. The worker emits its whole
// result as a single JSON line, which can be large for long recordings.
const maxLineBytes = 32 * 1024 * 1024

// ExitError reports a worker process that exited non-zero, with both
// captured streams attached for diagnosis.
type ExitError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// TimeoutError reports a worker process that was killed after exceeding its
// hard timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("process killed after exceeding %s timeout", e.Timeout)
}

// Runner spawns a child process, streams its output and enforces a hard
// timeout. The timeout is the only cancellation primitive for an individual
// worker; a timed-out process is killed together with its process group.
type Runner struct {
	Timeout time.Duration
}

// Run executes name with args. Both stdout and stderr lines are passed to
// onData as they arrive (for progress scraping). On exit code 0 it returns
// the accumulated stdout and stderr; otherwise it returns an ExitError, a
// TimeoutError or the spawn failure. Stderr is returned even on success
// because the worker keeps its diagnostics there, and a malformed stdout is
// only diagnosable through them.
func (r *Runner) Run(ctx context.Context, name string, args []string, onData func(line string)) (string, string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	// Start the child in its own process group so a kill reaches any
	// grandchildren the interpreter spawns.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		return cmd.Process.Kill()
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", "", fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("failed to start %s: %w", name, err)
	}

	var stdoutBuf, stderrBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		collectLines(stdoutPipe, &stdoutBuf, onData)
	}()
	go func() {
		defer wg.Done()
		collectLines(stderrPipe, &stderrBuf, onData)
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	if waitErr == nil {
		return stdoutBuf.String(), stderrBuf.String(), nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", "", &TimeoutError{Timeout: r.Timeout}
	}
	if ctx.Err() != nil {
		return "", "", ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return "", "", &ExitError{
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdoutBuf.String(),
			Stderr:   stderrBuf.String(),
		}
	}
	return "", "", fmt.Errorf("process %s failed: %w", name, waitErr)
}

// collectLines streams lines from r into buf and the onData callback
func collectLines(r io.Reader, buf *strings.Builder, onData func(line string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		if onData != nil {
			onData(line)
		}
	}
}
