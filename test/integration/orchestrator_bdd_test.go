//go:build integration

package integration

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/config"
	"github.com/scode/droponoff/internal/domain"
	"github.com/scode/droponoff/internal/infra"
	"github.com/scode/droponoff/internal/profile"
	"github.com/scode/droponoff/internal/usecase"
	"github.com/scode/droponoff/test/fixtures"
)

var _ = Describe("Orchestrator", func() {
	var (
		tmpDir       string
		home         *fixtures.FakeDropboxHome
		app          profile.AppProfile
		procs        *fakeProcesses
		exts         *fakeExtensions
		status       *usecase.StatusAggregator
		orchestrator *usecase.Orchestrator
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "droponoff-integration-*")
		Expect(err).NotTo(HaveOccurred())

		home = fixtures.NewFakeDropboxHome(tmpDir)
		Expect(home.Create()).To(Succeed())

		app = profile.NewDropboxProfileWithHome(tmpDir)
		procs = &fakeProcesses{running: runningDropbox()}
		exts = newFakeExtensions(app.ExtensionIDs())
		service := infra.NewLaunchAgentControllerWithDeps(&recordingRunner{}, home.LaunchAgentsDir(), app.LaunchAgentName(), 501, zap.NewNop())
		locator := infra.NewAppLocator(app.AppCandidates())

		cfg := config.Default()
		cfg.VerifyDelay = 0

		status = usecase.NewStatusAggregator(locator, procs, service, exts)
		orchestrator = usecase.NewOrchestrator(app, procs, service, exts, noopRestarter{}, status, cfg, zap.NewNop())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	mode := func() domain.Mode {
		snap, err := status.Snapshot()
		Expect(err).NotTo(HaveOccurred())
		return usecase.DeriveMode(snap, app.OnCheckExemptions())
	}

	It("should find the app bundle in the home directory", func() {
		snap, err := status.Snapshot()
		Expect(err).NotTo(HaveOccurred())
		if _, statErr := os.Stat("/Applications/Dropbox.app"); statErr != nil {
			Expect(snap.AppPath).To(Equal(home.AppPath()))
		}
	})

	It("should turn Dropbox off and back on", func() {
		ctx := context.Background()
		Expect(mode()).To(Equal(domain.ModeOn))

		Expect(orchestrator.Off(ctx)).To(Succeed())
		Expect(mode()).To(Equal(domain.ModeOff))
		Expect(home.PlistPath()).NotTo(BeAnExistingFile())

		Expect(orchestrator.On(ctx)).To(Succeed())
		Expect(mode()).To(Equal(domain.ModeOn))
		Expect(home.PlistPath()).To(BeAnExistingFile())
	})

	It("should be idempotent in both directions", func() {
		ctx := context.Background()

		Expect(orchestrator.Off(ctx)).To(Succeed())
		Expect(orchestrator.Off(ctx)).To(Succeed())
		Expect(mode()).To(Equal(domain.ModeOff))

		Expect(orchestrator.On(ctx)).To(Succeed())
		Expect(orchestrator.On(ctx)).To(Succeed())
		Expect(mode()).To(Equal(domain.ModeOn))
	})
})
