package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scode/droponoff/internal/config"
	"github.com/scode/droponoff/internal/domain"
	"github.com/scode/droponoff/internal/profile"
)

const (
	extFileProvider = "com.getdropbox.dropbox.fileprovider"
	extTransfer     = "com.getdropbox.dropbox.TransferExtension"
	extGarcon       = "com.getdropbox.dropbox.garcon"
)

var errBoom = errors.New("boom")

// fakeMachine simulates every subsystem at once. It implements all of the
// domain interfaces the use cases depend on and records the calls made.
type fakeMachine struct {
	appPath string
	procs   []domain.ProcessRecord
	service domain.ServiceState
	extIDs  []string
	exts    map[string]domain.ExtensionRecord

	// Behaviour knobs
	quitIgnored   bool            // Non-file-provider processes ignore quit requests
	stuckExts     map[string]bool // SetEnabled(true) silently does nothing
	errs          map[string]error
	snapshotErr   error
	launchedProcs []domain.ProcessRecord

	calls     []string
	snapshots int
}

func newFakeMachineOn() *fakeMachine {
	m := &fakeMachine{
		appPath:   "/Applications/Dropbox.app",
		service:   domain.ServiceEnabled,
		extIDs:    []string{extFileProvider, extTransfer, extGarcon},
		exts:      map[string]domain.ExtensionRecord{},
		stuckExts: map[string]bool{},
		errs:      map[string]error{},
		launchedProcs: []domain.ProcessRecord{
			{PID: 100, Name: "Dropbox"},
			{PID: 101, Name: "DropboxFileProvider", FileProvider: true},
		},
	}
	for _, id := range m.extIDs {
		m.exts[id] = domain.ExtensionRecord{Identifier: id, Enabled: true, Found: true}
	}
	m.procs = append([]domain.ProcessRecord(nil), m.launchedProcs...)
	return m
}

func newFakeMachineOff() *fakeMachine {
	m := newFakeMachineOn()
	m.procs = nil
	m.service = domain.ServiceDisabled
	for id, rec := range m.exts {
		rec.Enabled = false
		m.exts[id] = rec
	}
	return m
}

func (m *fakeMachine) record(call string) error {
	m.calls = append(m.calls, call)
	return m.errs[call]
}

// ProcessMonitor

func (m *fakeMachine) List() ([]domain.ProcessRecord, error) {
	if err := m.errs["List"]; err != nil {
		return nil, err
	}
	return append([]domain.ProcessRecord{}, m.procs...), nil
}

func (m *fakeMachine) RequestQuit() error {
	if err := m.record("RequestQuit"); err != nil {
		return err
	}
	if !m.quitIgnored {
		m.procs = domain.FileProviderProcesses(m.procs)
	}
	return nil
}

func (m *fakeMachine) Terminate(procs []domain.ProcessRecord) {
	m.calls = append(m.calls, fmt.Sprintf("Terminate(%d)", len(procs)))
	kill := map[int]bool{}
	for _, p := range procs {
		kill[p.PID] = true
	}
	var left []domain.ProcessRecord
	for _, p := range m.procs {
		if !kill[p.PID] {
			left = append(left, p)
		}
	}
	m.procs = left
}

func (m *fakeMachine) Launch() error {
	if err := m.record("Launch"); err != nil {
		return err
	}
	if len(m.procs) == 0 {
		m.procs = append([]domain.ProcessRecord(nil), m.launchedProcs...)
	}
	return nil
}

func (m *fakeMachine) WaitUntilEmpty(_ context.Context, sel domain.ProcessSelector, timeout time.Duration) error {
	m.calls = append(m.calls, "WaitUntilEmpty("+sel.String()+")")
	remaining := domain.SelectProcesses(m.procs, sel)
	if len(remaining) > 0 {
		return &domain.TimeoutError{Waiting: sel.String(), Timeout: timeout, Remaining: domain.ProcessNames(remaining)}
	}
	return nil
}

func (m *fakeMachine) WaitUntilNonEmpty(_ context.Context, timeout time.Duration) error {
	m.calls = append(m.calls, "WaitUntilNonEmpty")
	if len(m.procs) == 0 {
		return &domain.TimeoutError{Waiting: "start", Timeout: timeout}
	}
	return nil
}

// ServiceController

func (m *fakeMachine) State() domain.ServiceState {
	return m.service
}

func (m *fakeMachine) Unload() error {
	return m.record("Unload")
}

func (m *fakeMachine) Disable() error {
	if err := m.record("Disable"); err != nil {
		return err
	}
	switch m.service {
	case domain.ServiceMissing:
		return domain.ErrServiceMissing
	case domain.ServiceEnabled:
		m.service = domain.ServiceDisabled
	}
	return nil
}

func (m *fakeMachine) Enable() error {
	if err := m.record("Enable"); err != nil {
		return err
	}
	switch m.service {
	case domain.ServiceMissing:
		return domain.ErrServiceMissing
	case domain.ServiceDisabled:
		m.service = domain.ServiceEnabled
	}
	return nil
}

func (m *fakeMachine) Load() error {
	return m.record("Load")
}

// ExtensionController

func (m *fakeMachine) Identifiers() []string {
	return append([]string(nil), m.extIDs...)
}

func (m *fakeMachine) Query(id string) (domain.ExtensionRecord, error) {
	if err := m.errs["Query"]; err != nil {
		return domain.ExtensionRecord{}, err
	}
	rec, ok := m.exts[id]
	if !ok {
		return domain.ExtensionRecord{Identifier: id}, nil
	}
	return rec, nil
}

func (m *fakeMachine) SetEnabled(id string, enabled bool) error {
	rec := m.exts[id]
	if enabled && m.stuckExts[id] {
		return nil
	}
	rec.Enabled = enabled
	m.exts[id] = rec
	return nil
}

func (m *fakeMachine) ApplyToAll(enabled bool) error {
	if err := m.record(fmt.Sprintf("ApplyToAll(%t)", enabled)); err != nil {
		return err
	}
	for _, id := range m.extIDs {
		if rec, ok := m.exts[id]; ok && rec.Found {
			_ = m.SetEnabled(id, enabled)
		}
	}
	return nil
}

// FileBrowserRestarter

func (m *fakeMachine) Restart() error {
	return m.record("RestartFinder")
}

// AppLocator

func (m *fakeMachine) Locate() (string, bool) {
	return m.appPath, m.appPath != ""
}

// StatusProvider

func (m *fakeMachine) Snapshot() (domain.SystemSnapshot, error) {
	m.snapshots++
	if m.snapshotErr != nil {
		return domain.SystemSnapshot{}, m.snapshotErr
	}
	return NewStatusAggregator(m, m, m, m).Snapshot()
}

func testConfig() config.Config {
	return config.Config{
		PollInterval:   time.Millisecond,
		ProcessTimeout: 10 * time.Millisecond,
		VerifyAttempts: 3,
		VerifyDelay:    time.Millisecond,
	}
}

func newTestOrchestrator(m *fakeMachine) *Orchestrator {
	return NewOrchestrator(profile.NewDropboxProfileWithHome("/Users/test"), m, m, m, m, m, testConfig(), nil)
}
