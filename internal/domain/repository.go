package domain

import (
	"context"
	"time"
)

// ProcessMonitor enumerates and controls the target application's OS processes.
// Implementation: uses gopsutil for enumeration and signals.
type ProcessMonitor interface {
	// List returns the invoking user's processes matching the application.
	// No match is an empty slice, not an error.
	List() ([]ProcessRecord, error)

	// RequestQuit asks the application to quit (AppleScript). Best-effort.
	RequestQuit() error

	// Terminate sends SIGTERM to each process. Per-process failures are swallowed.
	Terminate(procs []ProcessRecord)

	// Launch asks the OS to start the application by identity.
	Launch() error

	// WaitUntilEmpty polls until the selected subset is empty or timeout elapses.
	WaitUntilEmpty(ctx context.Context, sel ProcessSelector, timeout time.Duration) error

	// WaitUntilNonEmpty polls until any process appears or timeout elapses.
	WaitUntilNonEmpty(ctx context.Context, timeout time.Duration) error
}

// ServiceController handles the application's LaunchAgent.
type ServiceController interface {
	// State reads marker presence. No side effects.
	State() ServiceState

	// Unload boots the agent out of launchd. Not-loaded is not an error.
	Unload() error

	// Disable parks the active marker (atomic rename). No-op when already disabled.
	Disable() error

	// Enable restores the active marker (atomic rename). No-op when already enabled.
	Enable() error

	// Load bootstraps the agent from the active marker.
	Load() error
}

// ExtensionController queries and toggles the application's OS extensions.
type ExtensionController interface {
	// Identifiers returns the fixed extension identifier set, in order.
	Identifiers() []string

	// Query returns the registry state of a single identifier.
	Query(id string) (ExtensionRecord, error)

	// SetEnabled enables or disables a registered identifier.
	SetEnabled(id string, enabled bool) error

	// ApplyToAll sets every registered identifier, skipping absent ones.
	ApplyToAll(enabled bool) error
}

// FileBrowserRestarter restarts the OS file browser so it drops file-provider bindings.
type FileBrowserRestarter interface {
	Restart() error
}

// AppLocator finds the application bundle on disk.
type AppLocator interface {
	// Locate returns the first existing candidate path, or false.
	Locate() (string, bool)
}

// StatusProvider builds fresh system snapshots.
type StatusProvider interface {
	Snapshot() (SystemSnapshot, error)
}
