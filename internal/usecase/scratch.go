package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/domain"
)

// ScratchDirName is the per-sync-root directory holding transient working files.
const ScratchDirName = "scratch_files"

// ScratchCleaner deletes scratch files under the sync root mount.
// Running it while uploads are pending is likely to lose data, so it refuses
// to start while any application process is running.
type ScratchCleaner struct {
	status   domain.StatusProvider
	root     string
	progress func(domain.ScratchProgress)
	logger   *zap.Logger
}

// NewScratchCleaner creates a cleaner for the given root mount.
func NewScratchCleaner(status domain.StatusProvider, root string, logger *zap.Logger) *ScratchCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScratchCleaner{
		status:   status,
		root:     root,
		progress: func(domain.ScratchProgress) {},
		logger:   logger,
	}
}

// OnProgress registers a callback invoked before each deletion.
func (c *ScratchCleaner) OnProgress(fn func(domain.ScratchProgress)) {
	if fn != nil {
		c.progress = fn
	}
}

// Run checks that nothing is running, then cleans. The returned result is
// non-nil whenever cleaning started, including after a partial failure.
func (c *ScratchCleaner) Run() (*domain.ScratchResult, error) {
	snap, err := c.status.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	if n := len(snap.Processes); n > 0 {
		return nil, &domain.PreconditionError{Reason: fmt.Sprintf(
			"%d process(es) still running (%s); turn the application off first",
			n, strings.Join(domain.ProcessNames(snap.Processes), ", "))}
	}

	return c.clean()
}

func (c *ScratchCleaner) clean() (*domain.ScratchResult, error) {
	info, err := os.Stat(c.root)
	if err != nil {
		return nil, &domain.DiscoveryError{What: "sync root mount", Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.DiscoveryError{What: "sync root mount", Err: fmt.Errorf("%s is not a directory", c.root)}
	}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.root, err)
	}

	result := &domain.ScratchResult{Root: c.root}

	// <root-mount>/<UUID>/scratch_files/<file>
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		scratchDir := filepath.Join(c.root, entry.Name(), ScratchDirName)
		if st, err := os.Stat(scratchDir); err != nil || !st.IsDir() {
			continue
		}

		result.Directories = append(result.Directories, scratchDir)
		c.logger.Info("cleaning", zap.String("dir", scratchDir))

		if err := c.cleanDir(scratchDir, result); err != nil {
			return result, err
		}
	}

	if !result.FoundAny() {
		c.logger.Info("no scratch_files directories found", zap.String("root", c.root))
	}

	return result, nil
}

// cleanDir removes the immediate files and symlinks of dir. Subdirectories are
// not expected there and are left alone.
func (c *ScratchCleaner) cleanDir(dir string, result *domain.ScratchResult) error {
	children, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, child := range children {
		path := filepath.Join(dir, child.Name())
		mode := child.Type()

		if !mode.IsRegular() && mode&os.ModeSymlink == 0 {
			c.logger.Info("skipping unexpected entry", zap.String("path", path), zap.String("type", mode.String()))
			result.Skipped = append(result.Skipped, path)
			continue
		}

		info, err := child.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		c.progress(domain.ScratchProgress{
			DeletedBytes: result.BytesFreed,
			NextPath:     path,
			NextSize:     info.Size(),
		})

		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
		c.logger.Debug("deleted", zap.String("path", path), zap.Int64("bytes", info.Size()))

		result.FilesDeleted++
		result.BytesFreed += info.Size()
	}

	return nil
}
