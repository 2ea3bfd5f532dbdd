// Package capture takes a photo with an external camera command.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/mark3labs/inspectr/internal/logger"
)

// DefaultTimeout bounds a capture when none is configured.
const DefaultTimeout = 30 * time.Second

// TermuxCommand is the default capture command on Android.
const TermuxCommand = "termux-camera-photo {{output}}"

// ErrNotConfigured is returned when no capture command is available.
var ErrNotConfigured = errors.New("no camera capture command configured")

// Camera runs a shell command that writes a photo to {{output}}.
type Camera struct {
	Command string
	Timeout time.Duration
	// Dir receives captured files. Empty uses the system temp dir.
	Dir string
}

// New returns a Camera for command, falling back to the platform default.
func New(command string, timeout time.Duration) *Camera {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand(runtime.GOOS)
	}
	return &Camera{Command: command, Timeout: timeout}
}

// DefaultCommand returns the capture command used when none is configured.
func DefaultCommand(goos string) string {
	if goos == "android" {
		return TermuxCommand
	}
	return ""
}

// Available reports whether a command is configured.
func (c *Camera) Available() bool {
	return c != nil && strings.TrimSpace(c.Command) != ""
}

// Capture runs the command and returns the path of the new photo. The caller
// owns the file.
func (c *Camera) Capture(ctx context.Context) (string, error) {
	if !c.Available() {
		return "", ErrNotConfigured
	}

	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	output := filepath.Join(dir, "inspectr-"+xid.New().String()+".jpg")
	command := expand(c.Command, map[string]string{
		"{{output}}": shellQuote(output),
		"{{dir}}":    shellQuote(dir),
	})
	logger.Debug("Running capture command: %s", command)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		discard(output)
		return "", ctx.Err()
	}
	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Capture command timed out after %s: %s", timeout, command)
		discard(output)
		return "", fmt.Errorf("camera capture timed out after %s", timeout)
	}
	if err != nil {
		discard(output)
		msg := strings.TrimSpace(stderr.String())
		logger.Warn("Capture command failed: %v %s", err, msg)
		if msg != "" {
			return "", fmt.Errorf("camera capture failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("camera capture failed: %w", err)
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		discard(output)
		return "", fmt.Errorf("camera capture produced no photo at %s", output)
	}
	logger.Debug("Captured %s (%d bytes)", output, info.Size())
	return output, nil
}

// discard removes a partial photo left by a failed command.
func discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove %s: %v", path, err)
	}
}

func expand(command string, vars map[string]string) string {
	for placeholder, value := range vars {
		command = strings.ReplaceAll(command, placeholder, value)
	}
	return command
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
