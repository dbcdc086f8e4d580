package infra

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scode/droponoff/internal/domain"
)

// DataVolumeRoot is where the writable data volume is mounted on APFS-split systems.
const DataVolumeRoot = "/System/Volumes/Data"

// Paths holds the invoking user's identity and the directories derived from it.
type Paths struct {
	User       string
	UID        int
	Home       string
	DataVolume string // Usually DataVolumeRoot; overridable for tests
}

// DiscoverPaths resolves the invoking user. Under sudo this is SUDO_USER, not root,
// so that launchd targets and home-relative paths belong to the real user.
func DiscoverPaths() (*Paths, error) {
	u, err := lookupInvokingUser()
	if err != nil {
		return nil, &domain.DiscoveryError{What: "invoking user", Err: err}
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, &domain.DiscoveryError{What: "user id", Err: err}
	}

	home := u.HomeDir
	if os.Getenv("SUDO_USER") == "" {
		// Honor $HOME like the rest of the user's tooling does
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	if home == "" {
		return nil, &domain.DiscoveryError{What: "home directory"}
	}

	return &Paths{
		User:       u.Username,
		UID:        uid,
		Home:       home,
		DataVolume: DataVolumeRoot,
	}, nil
}

func lookupInvokingUser() (*user.User, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u, nil
		}
	}
	return user.Current()
}

// LaunchAgentsDir returns ~/Library/LaunchAgents.
func (p *Paths) LaunchAgentsDir() string {
	return filepath.Join(p.Home, "Library", "LaunchAgents")
}

// BaseHome prefers the data-volume view of the home directory when it exists
// (/System/Volumes/Data/Users/<name>), falling back to the plain home directory.
func (p *Paths) BaseHome(fc FileChecker) string {
	if p.DataVolume != "" {
		dataHome := filepath.Join(p.DataVolume, strings.TrimPrefix(p.Home, "/"))
		if fc.Exists(dataHome) {
			return dataHome
		}
	}
	return p.Home
}

// ScratchRoot returns the sync root mount inside the given group container.
func (p *Paths) ScratchRoot(fc FileChecker, groupContainer string) string {
	return filepath.Join(p.BaseHome(fc), "Library", "Group Containers", groupContainer, "root-mount")
}
