// Package infra implements infrastructure concerns (processes, launchd, pluginkit, filesystem).
package infra

import (
	"errors"
	"os"
	"os/exec"

	"github.com/scode/droponoff/internal/domain"
)

// CommandRunner abstracts command execution for testing
type CommandRunner interface {
	Run(name string, args ...string) error
	Output(name string, args ...string) ([]byte, error)
}

// RealCommandRunner executes real system commands
type RealCommandRunner struct{}

// Run executes a command and waits for it to complete
func (r *RealCommandRunner) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Output executes a command and returns its stdout.
// On a non-zero exit the captured stdout is still returned alongside the *exec.ExitError.
func (r *RealCommandRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// FileChecker abstracts file system checks for testing
type FileChecker interface {
	Exists(path string) bool
}

// RealFileChecker checks real filesystem
type RealFileChecker struct{}

// Exists checks if a file/directory exists
func (r *RealFileChecker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// isExitError reports whether the command ran but exited non-zero,
// as opposed to not running at all.
func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

func commandError(err error, name string, args ...string) error {
	return &domain.CommandError{Command: name, Args: args, Err: err}
}
