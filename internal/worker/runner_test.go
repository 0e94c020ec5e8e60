package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Success(t *testing.T) {
	r := &Runner{}
	var lines []string

	stdout, stderr, err := r.Run(context.Background(), "sh",
		[]string{"-c", "echo out-line; echo err-line >&2"},
		func(line string) { lines = append(lines, line) })

	require.NoError(t, err)
	assert.Equal(t, "out-line\n", stdout)
	assert.Equal(t, "err-line\n", stderr)
	// Both streams are forwarded to onData for progress scraping.
	assert.Contains(t, lines, "out-line")
	assert.Contains(t, lines, "err-line")
}

func TestRunner_NonZeroExit(t *testing.T) {
	r := &Runner{}

	_, _, err := r.Run(context.Background(), "sh",
		[]string{"-c", "echo partial; echo diagnostics >&2; exit 3"}, nil)

	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Contains(t, exitErr.Stdout, "partial")
	assert.Contains(t, exitErr.Stderr, "diagnostics")
}

func TestRunner_SpawnFailure(t *testing.T) {
	r := &Runner{}

	_, _, err := r.Run(context.Background(), "definitely-not-a-real-binary", nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
}

func TestRunner_TimeoutKillsProcess(t *testing.T) {
	r := &Runner{Timeout: 200 * time.Millisecond}
	start := time.Now()

	_, _, err := r.Run(context.Background(), "sh", []string{"-c", "sleep 30"}, nil)

	elapsed := time.Since(start)
	require.Error(t, err)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 200*time.Millisecond, timeoutErr.Timeout)
	assert.Less(t, elapsed, 5*time.Second, "the child must be killed promptly, not awaited")
}

func TestRunner_ContextCancellation(t *testing.T) {
	r := &Runner{}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	start := time.Now()

	_, _, err := r.Run(ctx, "sh", []string{"-c", "sleep 30"}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunner_NilOnData(t *testing.T) {
	r := &Runner{}

	stdout, _, err := r.Run(context.Background(), "sh", []string{"-c", "echo quiet"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "quiet\n", stdout)
}
