// Package profile holds the static, per-application knowledge the orchestrator needs.
// Each supported app (Dropbox) has its own profile describing what to toggle.
package profile

// AppProfile defines everything droponoff knows about one application.
type AppProfile interface {
	// ID returns unique identifier (e.g., "dropbox").
	ID() string

	// Name returns human-readable name for display.
	Name() string

	// AppleScriptName is the application identity used by osascript and `open -a`.
	AppleScriptName() string

	// ProcessPattern matches every process of the application (command line, case-sensitive).
	ProcessPattern() string

	// FileProviderPattern matches the file-provider extension host processes.
	FileProviderPattern() string

	// ExtensionIDs returns the fixed pluginkit identifiers, in display order.
	ExtensionIDs() []string

	// OnCheckExemptions returns identifiers ignored when verifying ON.
	OnCheckExemptions() []string

	// LaunchAgentName returns the plist file name of the update agent.
	LaunchAgentName() string

	// AppCandidates returns install locations, first match wins.
	AppCandidates() []string

	// GroupContainer returns the group container holding the sync root mount.
	GroupContainer() string
}
