package profile

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultID is the profile used when none is requested.
const DefaultID = "dropbox"

// Registry holds all known application profiles.
type Registry struct {
	profiles map[string]AppProfile
}

// NewRegistry creates a registry with all default profiles for the given home directory.
func NewRegistry(homeDir string) *Registry {
	return NewRegistryWithProfiles(NewDropboxProfileWithHome(homeDir))
}

// NewRegistryWithProfiles creates a registry with custom profiles (for testing).
func NewRegistryWithProfiles(profiles ...AppProfile) *Registry {
	r := &Registry{
		profiles: make(map[string]AppProfile),
	}
	for _, p := range profiles {
		r.Register(p)
	}
	return r
}

// Register adds a profile to the registry.
func (r *Registry) Register(p AppProfile) {
	r.profiles[p.ID()] = p
}

// Get returns a profile by ID.
func (r *Registry) Get(id string) (AppProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("unknown application profile %q (known: %s)", id, strings.Join(r.List(), ", "))
	}
	return p, nil
}

// List returns all profile IDs, sorted.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
