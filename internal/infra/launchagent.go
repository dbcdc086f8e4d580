package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/domain"
)

// DisabledSuffix is appended to the plist name to park it.
const DisabledSuffix = ".disabled"

// LaunchAgentController implements domain.ServiceController for a per-user LaunchAgent.
// The plist itself is the "active" marker; the same file renamed with
// DisabledSuffix is the "parked" marker. At most one of them exists.
type LaunchAgentController struct {
	runner     CommandRunner
	uid        int
	label      string
	activePath string
	parkedPath string
	logger     *zap.Logger
}

// NewLaunchAgentController creates a controller for plistName inside dir.
func NewLaunchAgentController(dir, plistName string, uid int, logger *zap.Logger) *LaunchAgentController {
	return NewLaunchAgentControllerWithDeps(&RealCommandRunner{}, dir, plistName, uid, logger)
}

// NewLaunchAgentControllerWithDeps creates a controller with an injectable command runner (for testing)
func NewLaunchAgentControllerWithDeps(runner CommandRunner, dir, plistName string, uid int, logger *zap.Logger) *LaunchAgentController {
	if logger == nil {
		logger = zap.NewNop()
	}
	activePath := filepath.Join(dir, plistName)
	return &LaunchAgentController{
		runner:     runner,
		uid:        uid,
		label:      strings.TrimSuffix(plistName, ".plist"),
		activePath: activePath,
		parkedPath: activePath + DisabledSuffix,
		logger:     logger,
	}
}

// ActivePath returns the enabled plist path.
func (c *LaunchAgentController) ActivePath() string {
	return c.activePath
}

// ParkedPath returns the disabled plist path.
func (c *LaunchAgentController) ParkedPath() string {
	return c.parkedPath
}

// State reads which marker exists.
func (c *LaunchAgentController) State() domain.ServiceState {
	switch {
	case fileExists(c.activePath):
		return domain.ServiceEnabled
	case fileExists(c.parkedPath):
		return domain.ServiceDisabled
	default:
		return domain.ServiceMissing
	}
}

// Unload boots the agent out of the user's GUI domain.
// launchctl exits non-zero when the agent is not loaded; that is not an error.
func (c *LaunchAgentController) Unload() error {
	target := fmt.Sprintf("gui/%d/%s", c.uid, c.label)
	if err := c.runner.Run("launchctl", "bootout", target); err != nil {
		if isExitError(err) {
			c.logger.Debug("launch agent was not loaded", zap.String("target", target), zap.Error(err))
			return nil
		}
		return commandError(err, "launchctl", "bootout", target)
	}
	c.logger.Info("unloaded launch agent", zap.String("target", target))
	return nil
}

// Disable parks the plist with a single rename.
func (c *LaunchAgentController) Disable() error {
	switch c.State() {
	case domain.ServiceDisabled:
		c.logger.Info("launch agent already disabled", zap.String("path", c.parkedPath))
		return nil
	case domain.ServiceMissing:
		return fmt.Errorf("cannot disable %s: %w", c.activePath, domain.ErrServiceMissing)
	}

	if err := os.Rename(c.activePath, c.parkedPath); err != nil {
		return fmt.Errorf("failed to rename launch agent plist: %w", err)
	}
	c.logger.Info("disabled launch agent",
		zap.String("from", c.activePath),
		zap.String("to", c.parkedPath))
	return nil
}

// Enable restores the plist with a single rename.
func (c *LaunchAgentController) Enable() error {
	switch c.State() {
	case domain.ServiceEnabled:
		c.logger.Info("launch agent already enabled", zap.String("path", c.activePath))
		return nil
	case domain.ServiceMissing:
		return fmt.Errorf("cannot enable: neither %s nor %s exists: %w",
			c.activePath, c.parkedPath, domain.ErrServiceMissing)
	}

	if err := os.Rename(c.parkedPath, c.activePath); err != nil {
		return fmt.Errorf("failed to rename launch agent plist: %w", err)
	}
	c.logger.Info("enabled launch agent",
		zap.String("from", c.parkedPath),
		zap.String("to", c.activePath))
	return nil
}

// Load bootstraps the agent from the active plist.
// launchctl exits non-zero when the agent is already bootstrapped, which keeps ON idempotent.
func (c *LaunchAgentController) Load() error {
	if !fileExists(c.activePath) {
		return fmt.Errorf("cannot load %s: %w", c.activePath, domain.ErrServiceMissing)
	}

	domainTarget := fmt.Sprintf("gui/%d", c.uid)
	if err := c.runner.Run("launchctl", "bootstrap", domainTarget, c.activePath); err != nil {
		if isExitError(err) {
			c.logger.Debug("launchctl bootstrap exited non-zero (already loaded?)",
				zap.String("path", c.activePath), zap.Error(err))
			return nil
		}
		return commandError(err, "launchctl", "bootstrap", domainTarget, c.activePath)
	}
	c.logger.Info("loaded launch agent", zap.String("path", c.activePath))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Ensure LaunchAgentController implements domain.ServiceController.
var _ domain.ServiceController = (*LaunchAgentController)(nil)
