// Package chunker splits audio files into time-bounded chunks with ffmpeg
// so that large recordings can be transcribed in parallel.
package chunker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/voxlog/voxlog/internal/utils"

	"github.com/google/uuid"
)

// CommandExecutor interface for executing commands
type CommandExecutor interface {
	ExecuteCommand(ctx context.Context, name string, args []string) ([]byte, error)
	LookPath(file string) (string, error)
}

// RealCommandExecutor implements actual command execution
type RealCommandExecutor struct{}

func (e *RealCommandExecutor) ExecuteCommand(ctx context.Context, name string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

func (e *RealCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Chunk is one time-bounded slice of the input audio. Chunk files live in a
// per-request temp directory and must be removed with Cleanup once the
// request finishes, whether it succeeded or not.
type Chunk struct {
	Path     string
	Index    int
	Start    float64 // seconds into the source audio
	Duration float64 // nominal chunk length in seconds
}

// Config controls how the input is split
type Config struct {
	ChunkDuration time.Duration
}

// Chunker extracts chunks from an audio file via ffmpeg subprocesses
type Chunker struct {
	cmdExecutor CommandExecutor
	tempRoot    string
}

// New creates a chunker that shells out to the real ffmpeg/ffprobe binaries
func New() *Chunker {
	return &Chunker{
		cmdExecutor: &RealCommandExecutor{},
		tempRoot:    os.TempDir(),
	}
}

// NewWithExecutor creates a chunker with a custom command executor
func NewWithExecutor(executor CommandExecutor, tempRoot string) *Chunker {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	return &Chunker{
		cmdExecutor: executor,
		tempRoot:    tempRoot,
	}
}

// Split extracts [start, start+duration) ranges of the input into their own
// temp files, one ffmpeg invocation per chunk. Any ffmpeg failure or missing
// output file fails the whole request; a silent partial split would corrupt
// merge offsets downstream. Created files are removed before returning an
// error, so the caller only ever owns a complete chunk set.
func (c *Chunker) Split(ctx context.Context, audioPath string, cfg Config) ([]Chunk, error) {
	if cfg.ChunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %s", cfg.ChunkDuration)
	}
	if _, err := c.cmdExecutor.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	totalDuration, err := c.probeDuration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe audio duration: %w", err)
	}

	// Chunk files are uniquely named per request so concurrent requests
	// cannot collide.
	chunkDir := filepath.Join(c.tempRoot, "voxlog-chunks-"+uuid.NewString())
	if err := os.MkdirAll(chunkDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory: %w", err)
	}

	chunkSeconds := cfg.ChunkDuration.Seconds()
	ext := filepath.Ext(audioPath)
	if ext == "" {
		ext = ".wav"
	}

	var chunks []Chunk
	index := 0
	for start := 0.0; start < totalDuration; start += chunkSeconds {
		duration := chunkSeconds
		if start+duration > totalDuration {
			duration = totalDuration - start
		}

		chunkPath := filepath.Join(chunkDir, fmt.Sprintf("chunk_%03d%s", index, ext))
		args := []string{
			"-y",
			"-ss", strconv.FormatFloat(start, 'f', 3, 64),
			"-t", strconv.FormatFloat(duration, 'f', 3, 64),
			"-i", audioPath,
			"-c", "copy",
			chunkPath,
		}

		output, err := c.cmdExecutor.ExecuteCommand(ctx, "ffmpeg", args)
		if err != nil {
			c.Cleanup(chunks)
			c.removeDir(chunkDir)
			return nil, fmt.Errorf("ffmpeg failed on chunk %d: %s: %w", index, strings.TrimSpace(string(output)), err)
		}
		if _, statErr := os.Stat(chunkPath); statErr != nil {
			c.Cleanup(chunks)
			c.removeDir(chunkDir)
			return nil, fmt.Errorf("ffmpeg exited 0 but chunk %d is missing: %w", index, statErr)
		}

		chunks = append(chunks, Chunk{
			Path:     chunkPath,
			Index:    index,
			Start:    start,
			Duration: duration,
		})
		index++
	}

	if len(chunks) == 0 {
		c.removeDir(chunkDir)
		return nil, fmt.Errorf("audio file produced no chunks (duration %.2fs)", totalDuration)
	}

	utils.LogVerbose("Split %s into %d chunks of up to %s", filepath.Base(audioPath), len(chunks), cfg.ChunkDuration)
	return chunks, nil
}

// Cleanup deletes every chunk file and the per-request directory. It is safe
// to call with a partial or empty chunk list and must be called exactly once
// per Split, typically via defer.
func (c *Chunker) Cleanup(chunks []Chunk) {
	var dir string
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			utils.LogWarning("Failed to remove chunk file %s: %v", chunk.Path, err)
		}
		dir = filepath.Dir(chunk.Path)
	}
	if dir != "" {
		c.removeDir(dir)
	}
}

func (c *Chunker) removeDir(dir string) {
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		utils.LogWarning("Failed to remove chunk directory %s: %v", dir, err)
	}
}

// probeDuration asks ffprobe for the container duration in seconds
func (c *Chunker) probeDuration(ctx context.Context, audioPath string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		audioPath,
	}

	output, err := c.cmdExecutor.ExecuteCommand(ctx, "ffprobe", args)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %s: %w", strings.TrimSpace(string(output)), err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", strings.TrimSpace(string(output)), err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("audio has non-positive duration: %.3f", duration)
	}
	return duration, nil
}
