package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// ErrServiceMissing means neither LaunchAgent marker exists.
var ErrServiceMissing = errors.New("launch agent plist not found")

// DiscoveryError means a required path or environment fact is unavailable.
type DiscoveryError struct {
	What string
	Err  error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not determine %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("could not determine %s", e.What)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// CommandError means an underlying OS command failed.
type CommandError struct {
	Command string
	Args    []string
	Err     error
}

func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	return fmt.Sprintf("command %q failed: %v", cmdline, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// TimeoutError means a bounded poll wait exceeded its deadline.
type TimeoutError struct {
	Waiting   string // What the wait was for
	Timeout   time.Duration
	Remaining []string // Process names still running, if any
}

func (e *TimeoutError) Error() string {
	if len(e.Remaining) > 0 {
		return fmt.Sprintf("timeout after %s waiting for %s, %d still running: %s",
			e.Timeout, e.Waiting, len(e.Remaining), strings.Join(e.Remaining, ", "))
	}
	return fmt.Sprintf("timeout after %s waiting for %s", e.Timeout, e.Waiting)
}

// VerificationError means the retry combinator exhausted its attempts.
type VerificationError struct {
	Attempts int
	Err      error // Unsatisfied conditions from the last attempt (multierr)
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed after %d attempts: %s",
		e.Attempts, strings.Join(e.Unsatisfied(), "; "))
}

func (e *VerificationError) Unwrap() error { return e.Err }

// Unsatisfied lists every sub-condition that still did not hold.
func (e *VerificationError) Unsatisfied() []string {
	errs := multierr.Errors(e.Err)
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// PreconditionError means an operation refused to start. No action was taken.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}
