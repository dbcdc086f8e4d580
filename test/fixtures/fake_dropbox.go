// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"os"
	"path/filepath"
)

// GroupContainer is the group container name used by the real client.
const GroupContainer = "G7HH3F8CAK.com.getdropbox.dropbox.sync"

// PlistName is the update agent's plist file name.
const PlistName = "com.dropbox.DropboxMacUpdate.agent.plist"

// FakeDropboxHome creates a home directory mimicking a Dropbox installation:
// the app bundle, the update agent plist, and a sync root mount with scratch files.
type FakeDropboxHome struct {
	HomeDir string
	SyncIDs []string
}

// NewFakeDropboxHome creates a new fake home generator with two sync roots.
func NewFakeDropboxHome(homeDir string) *FakeDropboxHome {
	return &FakeDropboxHome{
		HomeDir: homeDir,
		SyncIDs: []string{
			"0F4A3A4E-7C2B-4D38-9D5E-1A2B3C4D5E6F",
			"9B8C7D6E-5F4A-3B2C-1D0E-F1E2D3C4B5A6",
		},
	}
}

// Create creates the fake installation.
func (f *FakeDropboxHome) Create() error {
	if err := os.MkdirAll(filepath.Join(f.AppPath(), "Contents", "MacOS"), 0755); err != nil {
		return err
	}

	if err := os.MkdirAll(f.LaunchAgentsDir(), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(f.PlistPath(), []byte(plist), 0644); err != nil {
		return err
	}

	for _, id := range f.SyncIDs {
		scratch := filepath.Join(f.ScratchRoot(), id, "scratch_files")
		if err := os.MkdirAll(scratch, 0755); err != nil {
			return err
		}
		// Upload staging files of assorted sizes
		for name, size := range map[string]int{"upload-1": 1024, "upload-2": 4096} {
			if err := os.WriteFile(filepath.Join(scratch, name), make([]byte, size), 0644); err != nil {
				return err
			}
		}
	}

	return nil
}

// AddNestedScratchDir creates a subdirectory inside the first sync root's scratch
// directory, which the cleaner is expected to leave alone.
func (f *FakeDropboxHome) AddNestedScratchDir() (string, error) {
	nested := filepath.Join(f.ScratchRoot(), f.SyncIDs[0], "scratch_files", "nested")
	if err := os.MkdirAll(nested, 0755); err != nil {
		return "", err
	}
	return nested, os.WriteFile(filepath.Join(nested, "keep"), []byte("test"), 0644)
}

// AppPath returns ~/Applications/Dropbox.app.
func (f *FakeDropboxHome) AppPath() string {
	return filepath.Join(f.HomeDir, "Applications", "Dropbox.app")
}

// LaunchAgentsDir returns ~/Library/LaunchAgents.
func (f *FakeDropboxHome) LaunchAgentsDir() string {
	return filepath.Join(f.HomeDir, "Library", "LaunchAgents")
}

// PlistPath returns the active update agent plist path.
func (f *FakeDropboxHome) PlistPath() string {
	return filepath.Join(f.LaunchAgentsDir(), PlistName)
}

// ScratchRoot returns the sync root mount.
func (f *FakeDropboxHome) ScratchRoot() string {
	return filepath.Join(f.HomeDir, "Library", "Group Containers", GroupContainer, "root-mount")
}

// ScratchFiles returns every scratch file that Create wrote.
func (f *FakeDropboxHome) ScratchFiles() []string {
	var files []string
	for _, id := range f.SyncIDs {
		for _, name := range []string{"upload-1", "upload-2"} {
			files = append(files, filepath.Join(f.ScratchRoot(), id, "scratch_files", name))
		}
	}
	return files
}

// ScratchBytes is the total size of ScratchFiles.
func (f *FakeDropboxHome) ScratchBytes() int64 {
	return int64(len(f.SyncIDs)) * (1024 + 4096)
}

// Cleanup removes the fake installation.
func (f *FakeDropboxHome) Cleanup() error {
	for _, p := range []string{
		filepath.Join(f.HomeDir, "Applications"),
		filepath.Join(f.HomeDir, "Library"),
	} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}

const plist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>com.dropbox.DropboxMacUpdate.agent</string>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`
