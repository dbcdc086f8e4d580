package infra

import (
	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/domain"
)

// FinderRestarter implements domain.FileBrowserRestarter.
// Killing Finder makes launchd relaunch it, which drops any file-provider
// bindings the old instance held.
type FinderRestarter struct {
	runner CommandRunner
	logger *zap.Logger
}

// NewFinderRestarter creates a Finder restarter.
func NewFinderRestarter(logger *zap.Logger) *FinderRestarter {
	return NewFinderRestarterWithDeps(&RealCommandRunner{}, logger)
}

// NewFinderRestarterWithDeps creates a restarter with an injectable command runner (for testing)
func NewFinderRestarterWithDeps(runner CommandRunner, logger *zap.Logger) *FinderRestarter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinderRestarter{runner: runner, logger: logger}
}

// Restart kills Finder. Finder not running is fine.
func (f *FinderRestarter) Restart() error {
	if err := f.runner.Run("killall", "Finder"); err != nil {
		if isExitError(err) {
			f.logger.Debug("Finder was not running", zap.Error(err))
			return nil
		}
		return commandError(err, "killall", "Finder")
	}
	return nil
}

// Ensure FinderRestarter implements domain.FileBrowserRestarter.
var _ domain.FileBrowserRestarter = (*FinderRestarter)(nil)
