package infra

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/domain"
	"github.com/scode/droponoff/internal/profile"
	"github.com/scode/droponoff/internal/wait"
)

// RawProcess is an unfiltered process table entry.
type RawProcess struct {
	PID     int
	Name    string
	Cmdline string
}

// ProcessTable abstracts the OS process table for testing.
type ProcessTable interface {
	// Processes returns every process owned by uid.
	Processes(uid int) ([]RawProcess, error)

	// Terminate sends SIGTERM to pid.
	Terminate(pid int) error
}

// GopsutilProcessTable implements ProcessTable using gopsutil.
type GopsutilProcessTable struct{}

// Processes returns every process whose real uid is uid.
func (t *GopsutilProcessTable) Processes(uid int) ([]RawProcess, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	var found []RawProcess
	for _, p := range procs {
		uids, err := p.Uids()
		if err != nil || len(uids) == 0 || int(uids[0]) != uid {
			continue // Process may have exited, or belongs to someone else
		}

		name, err := p.Name()
		if err != nil {
			continue
		}
		cmdline, _ := p.Cmdline()

		found = append(found, RawProcess{PID: int(p.Pid), Name: name, Cmdline: cmdline})
	}

	return found, nil
}

// Terminate sends SIGTERM to pid.
func (t *GopsutilProcessTable) Terminate(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	return p.Terminate()
}

// ProcessMonitorImpl implements domain.ProcessMonitor.
type ProcessMonitorImpl struct {
	table        ProcessTable
	runner       CommandRunner
	appName      string
	pattern      string
	fpPattern    string
	uid          int
	selfPID      int
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewProcessMonitor creates a process monitor backed by the real process table.
func NewProcessMonitor(app profile.AppProfile, uid int, pollInterval time.Duration, logger *zap.Logger) *ProcessMonitorImpl {
	return NewProcessMonitorWithDeps(&GopsutilProcessTable{}, &RealCommandRunner{}, app, uid, pollInterval, logger)
}

// NewProcessMonitorWithDeps creates a monitor with injectable dependencies (for testing)
func NewProcessMonitorWithDeps(
	table ProcessTable,
	runner CommandRunner,
	app profile.AppProfile,
	uid int,
	pollInterval time.Duration,
	logger *zap.Logger,
) *ProcessMonitorImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessMonitorImpl{
		table:        table,
		runner:       runner,
		appName:      app.AppleScriptName(),
		pattern:      app.ProcessPattern(),
		fpPattern:    app.FileProviderPattern(),
		uid:          uid,
		selfPID:      os.Getpid(),
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// List returns the user's processes whose command line matches the application pattern.
// Matching is case-sensitive, like `pgrep -f`.
func (m *ProcessMonitorImpl) List() ([]domain.ProcessRecord, error) {
	raw, err := m.table.Processes(m.uid)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	found := make([]domain.ProcessRecord, 0)
	for _, p := range raw {
		if p.PID == m.selfPID {
			continue
		}
		if !m.matches(p, m.pattern) {
			continue
		}
		found = append(found, domain.ProcessRecord{
			PID:          p.PID,
			Name:         p.Name,
			FileProvider: m.matches(p, m.fpPattern),
		})
	}

	return found, nil
}

func (m *ProcessMonitorImpl) matches(p RawProcess, pattern string) bool {
	// Cmdline is empty when we lack permission to read process args
	return strings.Contains(p.Cmdline, pattern) || strings.Contains(p.Name, pattern)
}

// RequestQuit asks the application to quit via AppleScript.
func (m *ProcessMonitorImpl) RequestQuit() error {
	script := fmt.Sprintf(`tell application "%s" to quit`, m.appName)
	if err := m.runner.Run("osascript", "-e", script); err != nil {
		return commandError(err, "osascript", "-e", script)
	}
	return nil
}

// Terminate sends SIGTERM to each process. A process may exit between
// enumeration and signalling, so failures are only logged.
func (m *ProcessMonitorImpl) Terminate(procs []domain.ProcessRecord) {
	for _, p := range procs {
		if err := m.table.Terminate(p.PID); err != nil {
			m.logger.Debug("failed to terminate process",
				zap.Int("pid", p.PID),
				zap.String("name", p.Name),
				zap.Error(err))
			continue
		}
		m.logger.Info("terminated process",
			zap.Int("pid", p.PID),
			zap.String("name", p.Name))
	}
}

// Launch starts the application by identity using `open -a`.
func (m *ProcessMonitorImpl) Launch() error {
	if err := m.runner.Run("open", "-a", m.appName); err != nil {
		return commandError(err, "open", "-a", m.appName)
	}
	return nil
}

// WaitUntilEmpty polls until no process in the selected subset is running.
func (m *ProcessMonitorImpl) WaitUntilEmpty(ctx context.Context, sel domain.ProcessSelector, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		procs, err := m.List()
		if err != nil {
			return err
		}

		remaining := domain.SelectProcesses(procs, sel)
		if len(remaining) == 0 {
			return nil
		}

		if !time.Now().Before(deadline) {
			return &domain.TimeoutError{
				Waiting:   sel.String() + " processes to stop",
				Timeout:   timeout,
				Remaining: domain.ProcessNames(remaining),
			}
		}

		if err := wait.Sleep(ctx, m.pollInterval); err != nil {
			return err
		}
	}
}

// WaitUntilNonEmpty polls until at least one process is running.
func (m *ProcessMonitorImpl) WaitUntilNonEmpty(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		procs, err := m.List()
		if err != nil {
			return err
		}
		if len(procs) > 0 {
			return nil
		}

		if !time.Now().Before(deadline) {
			return &domain.TimeoutError{Waiting: m.appName + " to start", Timeout: timeout}
		}

		if err := wait.Sleep(ctx, m.pollInterval); err != nil {
			return err
		}
	}
}

// Ensure ProcessMonitorImpl implements domain.ProcessMonitor.
var _ domain.ProcessMonitor = (*ProcessMonitorImpl)(nil)
