// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - it imports no other internal package.
package domain

import "time"

// ProcessRecord is one OS process belonging to the target application.
// Records are produced fresh by every enumeration and never cached.
type ProcessRecord struct {
	PID          int
	Name         string
	FileProvider bool // Hosts the file-provider extension (ignores cooperative quit)
}

// ProcessSelector picks which subset of the application's processes a wait applies to.
type ProcessSelector int

const (
	SelectAll ProcessSelector = iota
	SelectNonFileProvider
)

func (s ProcessSelector) String() string {
	switch s {
	case SelectAll:
		return "all"
	case SelectNonFileProvider:
		return "non-file-provider"
	default:
		return "unknown"
	}
}

// SelectProcesses returns the records matching the selector.
func SelectProcesses(procs []ProcessRecord, sel ProcessSelector) []ProcessRecord {
	if sel == SelectNonFileProvider {
		return NonFileProviderProcesses(procs)
	}
	return procs
}

// FileProviderProcesses returns the file-provider subset.
func FileProviderProcesses(procs []ProcessRecord) []ProcessRecord {
	var out []ProcessRecord
	for _, p := range procs {
		if p.FileProvider {
			out = append(out, p)
		}
	}
	return out
}

// NonFileProviderProcesses returns the complement of FileProviderProcesses.
func NonFileProviderProcesses(procs []ProcessRecord) []ProcessRecord {
	var out []ProcessRecord
	for _, p := range procs {
		if !p.FileProvider {
			out = append(out, p)
		}
	}
	return out
}

// ProcessNames returns the names of procs, in order.
func ProcessNames(procs []ProcessRecord) []string {
	names := make([]string, len(procs))
	for i, p := range procs {
		names[i] = p.Name
	}
	return names
}

// ServiceState is the durable on/off state of the background service,
// encoded as which of the two marker files exists.
type ServiceState string

const (
	ServiceEnabled  ServiceState = "enabled"
	ServiceDisabled ServiceState = "disabled"
	ServiceMissing  ServiceState = "missing" // Neither marker exists: an installation problem, not a mode
)

func (s ServiceState) String() string {
	return string(s)
}

// ExtensionRecord is the registry state of one OS extension.
// Found=false means the identifier is not registered at all; Enabled is then always false.
type ExtensionRecord struct {
	Identifier string
	Enabled    bool
	Found      bool
}

// SystemSnapshot is an immutable point-in-time read of every subsystem.
type SystemSnapshot struct {
	AppPath      string // Empty when the application bundle was not found
	Processes    []ProcessRecord
	ServiceState ServiceState
	Extensions   []ExtensionRecord // Always the fixed identifier set, in fixed order
	TakenAt      time.Time
}

// HasApp reports whether the application bundle was located.
func (s SystemSnapshot) HasApp() bool {
	return s.AppPath != ""
}

// Mode is the aggregate mode derived from a snapshot. It is never persisted.
type Mode string

const (
	ModeOn      Mode = "ON"
	ModeOff     Mode = "OFF"
	ModePartial Mode = "PARTIAL"
)

// ScratchProgress is reported before each scratch file deletion.
type ScratchProgress struct {
	DeletedBytes int64 // Cumulative bytes deleted so far
	NextPath     string
	NextSize     int64
}

// ScratchResult summarizes a scratch cleanup run.
type ScratchResult struct {
	Root         string
	Directories  []string // scratch_files directories visited
	FilesDeleted int
	BytesFreed   int64
	Skipped      []string // Unexpected subdirectories left untouched
}

// FoundAny reports whether any scratch_files directory existed at all.
func (r ScratchResult) FoundAny() bool {
	return len(r.Directories) > 0
}
