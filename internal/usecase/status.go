package usecase

import (
	"fmt"
	"io"
	"time"

	"github.com/scode/droponoff/internal/domain"
	"github.com/scode/droponoff/internal/profile"
)

// StatusAggregator implements domain.StatusProvider by re-querying every subsystem.
type StatusAggregator struct {
	locator    domain.AppLocator
	processes  domain.ProcessMonitor
	service    domain.ServiceController
	extensions domain.ExtensionController
	now        func() time.Time
}

// NewStatusAggregator creates a new status aggregator.
func NewStatusAggregator(
	locator domain.AppLocator,
	processes domain.ProcessMonitor,
	service domain.ServiceController,
	extensions domain.ExtensionController,
) *StatusAggregator {
	return &StatusAggregator{
		locator:    locator,
		processes:  processes,
		service:    service,
		extensions: extensions,
		now:        time.Now,
	}
}

// Snapshot builds a fresh snapshot. Nothing is cached between calls.
func (s *StatusAggregator) Snapshot() (domain.SystemSnapshot, error) {
	appPath, _ := s.locator.Locate()

	procs, err := s.processes.List()
	if err != nil {
		return domain.SystemSnapshot{}, err
	}

	ids := s.extensions.Identifiers()
	exts := make([]domain.ExtensionRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.extensions.Query(id)
		if err != nil {
			return domain.SystemSnapshot{}, err
		}
		rec.Identifier = id
		if !rec.Found {
			rec.Enabled = false
		}
		exts = append(exts, rec)
	}

	return domain.SystemSnapshot{
		AppPath:      appPath,
		Processes:    procs,
		ServiceState: s.service.State(),
		Extensions:   exts,
		TakenAt:      s.now(),
	}, nil
}

// WriteStatusReport renders a snapshot for humans.
func WriteStatusReport(w io.Writer, app profile.AppProfile, snap domain.SystemSnapshot) {
	fmt.Fprintf(w, "\n=== %s Status ===\n", app.Name())

	if snap.HasApp() {
		fmt.Fprintf(w, "%s.app: %s\n", app.Name(), snap.AppPath)
	} else {
		fmt.Fprintf(w, "%s.app: NOT FOUND\n", app.Name())
	}

	fmt.Fprintln(w, "\nRunning processes:")
	if len(snap.Processes) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range snap.Processes {
		fmt.Fprintf(w, "  PID %d: %s\n", p.PID, p.Name)
	}

	la := string(snap.ServiceState)
	if snap.ServiceState == domain.ServiceMissing {
		la = "MISSING"
	}
	fmt.Fprintf(w, "\nLaunchAgent: %s\n", la)

	fmt.Fprintln(w, "\nExtensions:")
	for _, ext := range snap.Extensions {
		state := "disabled"
		switch {
		case !ext.Found:
			state = "not found"
		case ext.Enabled:
			state = "enabled"
		}
		fmt.Fprintf(w, "  %s: %s\n", ext.Identifier, state)
	}

	fmt.Fprintf(w, "\nMode: %s\n", DeriveMode(snap, app.OnCheckExemptions()))
	fmt.Fprintln(w, "=====================")
}

// Ensure StatusAggregator implements domain.StatusProvider.
var _ domain.StatusProvider = (*StatusAggregator)(nil)
