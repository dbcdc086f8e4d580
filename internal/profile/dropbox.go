package profile

import "path/filepath"

// DropboxProfile implements AppProfile for Dropbox on macOS.
type DropboxProfile struct {
	homeDir string
}

// NewDropboxProfileWithHome creates a Dropbox profile with a custom home directory.
func NewDropboxProfileWithHome(homeDir string) *DropboxProfile {
	return &DropboxProfile{homeDir: homeDir}
}

func (p *DropboxProfile) ID() string {
	return "dropbox"
}

func (p *DropboxProfile) Name() string {
	return "Dropbox"
}

func (p *DropboxProfile) AppleScriptName() string {
	return "Dropbox"
}

func (p *DropboxProfile) ProcessPattern() string {
	return "Dropbox"
}

// FileProviderPattern matches DropboxFileProvider.appex, which never exits on a quit request.
func (p *DropboxProfile) FileProviderPattern() string {
	return "DropboxFileProvider"
}

func (p *DropboxProfile) ExtensionIDs() []string {
	return []string{
		"com.getdropbox.dropbox.fileprovider",
		"com.getdropbox.dropbox.TransferExtension",
		"com.getdropbox.dropbox.garcon",
	}
}

// OnCheckExemptions excludes garcon, the legacy Finder integration,
// which does not reliably report enabled after being turned back on.
func (p *DropboxProfile) OnCheckExemptions() []string {
	return []string{"com.getdropbox.dropbox.garcon"}
}

func (p *DropboxProfile) LaunchAgentName() string {
	return "com.dropbox.DropboxMacUpdate.agent.plist"
}

func (p *DropboxProfile) AppCandidates() []string {
	return []string{
		"/Applications/Dropbox.app",
		filepath.Join(p.homeDir, "Applications/Dropbox.app"),
	}
}

// GroupContainer is "<team id>.com.getdropbox.dropbox.sync".
func (p *DropboxProfile) GroupContainer() string {
	return "G7HH3F8CAK.com.getdropbox.dropbox.sync"
}

// Ensure DropboxProfile implements AppProfile.
var _ AppProfile = (*DropboxProfile)(nil)
