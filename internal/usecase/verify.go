package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/domain"
	"github.com/scode/droponoff/internal/wait"
)

// Check evaluates one snapshot. It returns nil when satisfied, otherwise one
// error per unsatisfied sub-condition combined with multierr.
type Check func(domain.SystemSnapshot) error

// VerifyWithRetry takes up to attempts fresh snapshots, delay apart, and returns
// as soon as check is satisfied. It only observes; it never mutates a subsystem.
func VerifyWithRetry(
	ctx context.Context,
	status domain.StatusProvider,
	check Check,
	attempts int,
	delay time.Duration,
	logger *zap.Logger,
) error {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var unsatisfied error
	for attempt := 1; attempt <= attempts; attempt++ {
		snap, err := status.Snapshot()
		if err != nil {
			return fmt.Errorf("failed to read status: %w", err)
		}

		unsatisfied = check(snap)
		if unsatisfied == nil {
			return nil
		}

		for _, cond := range multierr.Errors(unsatisfied) {
			logger.Warn("not converged",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.String("condition", cond.Error()))
		}

		if attempt < attempts {
			if err := wait.Sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	return &domain.VerificationError{Attempts: attempts, Err: unsatisfied}
}

// OffCheck holds when nothing runs, the agent is parked, and no extension is enabled.
func OffCheck(snap domain.SystemSnapshot) error {
	var err error

	if n := len(snap.Processes); n > 0 {
		err = multierr.Append(err, fmt.Errorf("%d process(es) still running: %s",
			n, strings.Join(domain.ProcessNames(snap.Processes), ", ")))
	}

	if snap.ServiceState != domain.ServiceDisabled {
		err = multierr.Append(err, fmt.Errorf("launch agent is %s, want %s",
			snap.ServiceState, domain.ServiceDisabled))
	}

	var enabled []string
	for _, ext := range snap.Extensions {
		if ext.Enabled {
			enabled = append(enabled, ext.Identifier)
		}
	}
	if len(enabled) > 0 {
		err = multierr.Append(err, fmt.Errorf("extensions still enabled: %s", strings.Join(enabled, ", ")))
	}

	return err
}

// OnCheck holds when something runs, the agent is active, and every extension
// not in exempt is enabled.
//
// Unlike OffCheck this skips the exempt identifiers: the legacy garcon
// extension does not reliably report enabled after being re-elected.
func OnCheck(exempt []string) Check {
	skip := make(map[string]bool, len(exempt))
	for _, id := range exempt {
		skip[id] = true
	}

	return func(snap domain.SystemSnapshot) error {
		var err error

		if len(snap.Processes) == 0 {
			err = multierr.Append(err, fmt.Errorf("no processes running yet"))
		}

		if snap.ServiceState != domain.ServiceEnabled {
			err = multierr.Append(err, fmt.Errorf("launch agent is %s, want %s",
				snap.ServiceState, domain.ServiceEnabled))
		}

		var disabled []string
		for _, ext := range snap.Extensions {
			if skip[ext.Identifier] {
				continue
			}
			// An unregistered extension is not enabled
			if !ext.Enabled {
				disabled = append(disabled, ext.Identifier)
			}
		}
		if len(disabled) > 0 {
			err = multierr.Append(err, fmt.Errorf("extensions still disabled: %s", strings.Join(disabled, ", ")))
		}

		return err
	}
}

// DeriveMode classifies a snapshot as ON, OFF, or PARTIAL.
func DeriveMode(snap domain.SystemSnapshot, exempt []string) domain.Mode {
	switch {
	case OffCheck(snap) == nil:
		return domain.ModeOff
	case OnCheck(exempt)(snap) == nil:
		return domain.ModeOn
	default:
		return domain.ModePartial
	}
}
