// Package launcher starts the generated viewer as an external Streamlit
// process.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrLauncherFailed wraps any failure to start or run the web-app runner
var ErrLauncherFailed = errors.New("failed to launch viewer")

// DefaultCommand is the web-app runner binary
const DefaultCommand = "streamlit"

// Launcher runs viewer scripts through an external web-app runner
type Launcher struct {
	command string
}

// New creates a launcher for the given runner command. An empty command
// falls back to streamlit.
func New(command string) *Launcher {
	if command == "" {
		command = DefaultCommand
	}
	return &Launcher{command: command}
}

// Command returns the configured runner command
func (l *Launcher) Command() string {
	return l.command
}

// Launch starts the runner on the given script and blocks until it exits.
// The runner inherits stdio so the user sees the Streamlit output and can
// stop it with Ctrl-C. No retry, no fallback rendering.
func (l *Launcher) Launch(ctx context.Context, scriptPath string) error {
	if _, err := os.Stat(scriptPath); err != nil {
		return fmt.Errorf("%w: script not found at %s", ErrLauncherFailed, scriptPath)
	}

	cmd := exec.CommandContext(ctx, l.command, "run", scriptPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s run %s: %v", ErrLauncherFailed, l.command, scriptPath, err)
	}

	return nil
}
