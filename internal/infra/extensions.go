package infra

import (
	"strings"

	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/domain"
)

// PluginKitController implements domain.ExtensionController using pluginkit(8).
type PluginKitController struct {
	runner CommandRunner
	ids    []string
	logger *zap.Logger
}

// NewPluginKitController creates a controller for the given fixed identifier set.
func NewPluginKitController(ids []string, logger *zap.Logger) *PluginKitController {
	return NewPluginKitControllerWithDeps(&RealCommandRunner{}, ids, logger)
}

// NewPluginKitControllerWithDeps creates a controller with an injectable command runner (for testing)
func NewPluginKitControllerWithDeps(runner CommandRunner, ids []string, logger *zap.Logger) *PluginKitController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PluginKitController{
		runner: runner,
		ids:    append([]string(nil), ids...),
		logger: logger,
	}
}

// Identifiers returns the fixed identifier set, in order.
func (c *PluginKitController) Identifiers() []string {
	return append([]string(nil), c.ids...)
}

// Query runs `pluginkit -m -i <id>`. Each output line starts with "+" when the
// extension is elected (enabled) and "-" when ignored; no output means not registered.
// pluginkit's exit status is not meaningful here, only its output.
func (c *PluginKitController) Query(id string) (domain.ExtensionRecord, error) {
	out, err := c.runner.Output("pluginkit", "-m", "-i", id)
	if err != nil && !isExitError(err) {
		return domain.ExtensionRecord{}, commandError(err, "pluginkit", "-m", "-i", id)
	}

	listing := strings.TrimSpace(string(out))
	if listing == "" {
		return domain.ExtensionRecord{Identifier: id}, nil
	}

	return domain.ExtensionRecord{
		Identifier: id,
		Enabled:    strings.HasPrefix(listing, "+"),
		Found:      true,
	}, nil
}

// SetEnabled elects ("use") or ignores ("ignore") the extension.
func (c *PluginKitController) SetEnabled(id string, enabled bool) error {
	election := "ignore"
	if enabled {
		election = "use"
	}

	if err := c.runner.Run("pluginkit", "-e", election, "-i", id); err != nil {
		return commandError(err, "pluginkit", "-e", election, "-i", id)
	}

	if enabled {
		c.logger.Info("enabled extension", zap.String("id", id))
	} else {
		c.logger.Info("disabled extension", zap.String("id", id))
	}
	return nil
}

// ApplyToAll sets every registered identifier. Not every installation registers
// every extension, so absent ones are skipped.
func (c *PluginKitController) ApplyToAll(enabled bool) error {
	for _, id := range c.ids {
		rec, err := c.Query(id)
		if err != nil {
			return err
		}
		if !rec.Found {
			c.logger.Info("extension not found, skipping", zap.String("id", id))
			continue
		}
		if err := c.SetEnabled(id, enabled); err != nil {
			return err
		}
	}
	return nil
}

// Ensure PluginKitController implements domain.ExtensionController.
var _ domain.ExtensionController = (*PluginKitController)(nil)
