//go:build integration

package integration

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/scode/droponoff/internal/domain"
	"github.com/scode/droponoff/internal/infra"
	"github.com/scode/droponoff/test/fixtures"
)

var _ = Describe("LaunchAgent Controller", func() {
	var (
		tmpDir     string
		home       *fixtures.FakeDropboxHome
		runner     *recordingRunner
		controller *infra.LaunchAgentController
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "droponoff-integration-*")
		Expect(err).NotTo(HaveOccurred())

		home = fixtures.NewFakeDropboxHome(tmpDir)
		Expect(home.Create()).To(Succeed())

		runner = &recordingRunner{}
		controller = infra.NewLaunchAgentControllerWithDeps(runner, home.LaunchAgentsDir(), fixtures.PlistName, 501, zap.NewNop())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Disable", func() {
		It("should park the plist with a .disabled suffix", func() {
			Expect(controller.State()).To(Equal(domain.ServiceEnabled))

			Expect(controller.Disable()).To(Succeed())

			Expect(controller.State()).To(Equal(domain.ServiceDisabled))
			Expect(home.PlistPath()).NotTo(BeAnExistingFile())
			Expect(home.PlistPath() + infra.DisabledSuffix).To(BeAnExistingFile())
		})

		It("should be a no-op when already disabled", func() {
			Expect(controller.Disable()).To(Succeed())
			Expect(controller.Disable()).To(Succeed())
			Expect(controller.State()).To(Equal(domain.ServiceDisabled))
		})

		Context("when neither marker exists", func() {
			It("should report the service as missing", func() {
				Expect(os.Remove(home.PlistPath())).To(Succeed())

				Expect(controller.State()).To(Equal(domain.ServiceMissing))
				Expect(controller.Disable()).To(MatchError(domain.ErrServiceMissing))
				Expect(controller.Enable()).To(MatchError(domain.ErrServiceMissing))
			})
		})
	})

	Describe("Enable", func() {
		It("should restore the exact plist contents", func() {
			original, err := os.ReadFile(home.PlistPath())
			Expect(err).NotTo(HaveOccurred())

			Expect(controller.Disable()).To(Succeed())
			Expect(controller.Enable()).To(Succeed())

			Expect(controller.State()).To(Equal(domain.ServiceEnabled))
			restored, err := os.ReadFile(home.PlistPath())
			Expect(err).NotTo(HaveOccurred())
			Expect(restored).To(Equal(original))
		})
	})

	Describe("Unload and Load", func() {
		It("should target the user's GUI domain", func() {
			Expect(controller.Unload()).To(Succeed())
			Expect(controller.Load()).To(Succeed())

			Expect(runner.Calls()).To(Equal([]string{
				"launchctl bootout gui/501/com.dropbox.DropboxMacUpdate.agent",
				"launchctl bootstrap gui/501 " + home.PlistPath(),
			}))
		})

		It("should refuse to load a parked agent", func() {
			Expect(controller.Disable()).To(Succeed())

			Expect(controller.Load()).To(MatchError(domain.ErrServiceMissing))
			Expect(runner.Calls()).To(BeEmpty())
		})
	})
})
