// Package usecase contains application business logic.
package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/config"
	"github.com/scode/droponoff/internal/domain"
	"github.com/scode/droponoff/internal/profile"
)

// Orchestrator sequences the OFF and ON transitions across all subsystems.
// Steps run strictly in order because later steps depend on earlier ones having
// taken effect. There is no rollback: a failed transition leaves whatever state
// the completed steps produced.
type Orchestrator struct {
	app        profile.AppProfile
	processes  domain.ProcessMonitor
	service    domain.ServiceController
	extensions domain.ExtensionController
	finder     domain.FileBrowserRestarter
	status     domain.StatusProvider
	config     config.Config
	logger     *zap.Logger
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(
	app profile.AppProfile,
	processes domain.ProcessMonitor,
	service domain.ServiceController,
	extensions domain.ExtensionController,
	finder domain.FileBrowserRestarter,
	status domain.StatusProvider,
	cfg config.Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		app:        app,
		processes:  processes,
		service:    service,
		extensions: extensions,
		finder:     finder,
		status:     status,
		config:     cfg,
		logger:     logger,
	}
}

// Off disables the application completely. It does not wait for
// synchronization to finish.
func (o *Orchestrator) Off(ctx context.Context) error {
	o.logger.Info("disabling " + o.app.Name())

	o.step("requesting graceful quit")
	if err := o.processes.RequestQuit(); err != nil {
		o.logger.Warn("quit request failed, continuing", zap.Error(err))
	}

	o.step("disabling launch agent")
	if err := o.service.Unload(); err != nil {
		o.logger.Warn("unload failed, continuing", zap.Error(err))
	}
	if err := o.service.Disable(); err != nil {
		return fmt.Errorf("failed to disable launch agent: %w", err)
	}

	o.step("disabling extensions")
	if err := o.extensions.ApplyToAll(false); err != nil {
		return fmt.Errorf("failed to disable extensions: %w", err)
	}

	// Finder holds file-provider bindings open until it restarts
	o.step("restarting Finder")
	if err := o.finder.Restart(); err != nil {
		o.logger.Warn("Finder restart failed, continuing", zap.Error(err))
	}

	o.step("waiting for non-file-provider processes to stop")
	if err := o.processes.WaitUntilEmpty(ctx, domain.SelectNonFileProvider, o.config.ProcessTimeout); err != nil {
		return err
	}

	// File-provider hosts never exit on a quit request. SIGTERM is no worse
	// than the crash the system already has to tolerate.
	o.step("terminating file-provider processes")
	procs, err := o.processes.List()
	if err != nil {
		return err
	}
	o.processes.Terminate(domain.FileProviderProcesses(procs))

	o.step("waiting for all processes to stop")
	if err := o.processes.WaitUntilEmpty(ctx, domain.SelectAll, o.config.ProcessTimeout); err != nil {
		return err
	}

	o.step("checking status")
	if err := VerifyWithRetry(ctx, o.status, OffCheck, o.config.VerifyAttempts, o.config.VerifyDelay, o.logger); err != nil {
		return err
	}

	o.logger.Info(o.app.Name() + " is now OFF")
	return nil
}

// On restores the application to normal operation.
func (o *Orchestrator) On(ctx context.Context) error {
	o.logger.Info("enabling " + o.app.Name())

	o.step("restoring launch agent")
	if err := o.service.Enable(); err != nil {
		return fmt.Errorf("failed to enable launch agent: %w", err)
	}
	if err := o.service.Load(); err != nil {
		return fmt.Errorf("failed to load launch agent: %w", err)
	}

	o.step("enabling extensions")
	if err := o.extensions.ApplyToAll(true); err != nil {
		return fmt.Errorf("failed to enable extensions: %w", err)
	}

	o.step("launching " + o.app.Name())
	if err := o.processes.Launch(); err != nil {
		return err
	}

	o.step("waiting for " + o.app.Name() + " to start")
	if err := o.processes.WaitUntilNonEmpty(ctx, o.config.ProcessTimeout); err != nil {
		return err
	}

	o.step("checking status")
	check := OnCheck(o.app.OnCheckExemptions())
	if err := VerifyWithRetry(ctx, o.status, check, o.config.VerifyAttempts, o.config.VerifyDelay, o.logger); err != nil {
		return err
	}

	o.logger.Info(o.app.Name() + " is now ON")
	return nil
}

func (o *Orchestrator) step(msg string) {
	o.logger.Info("→ " + msg)
}
