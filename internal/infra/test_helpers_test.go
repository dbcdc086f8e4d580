package infra

import (
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// mockCommandRunner records invocations and returns canned results keyed by full command line.
type mockCommandRunner struct {
	calls     []string
	runErr    map[string]error
	output    map[string]string
	outputErr map[string]error
}

func newMockCommandRunner() *mockCommandRunner {
	return &mockCommandRunner{
		runErr:    make(map[string]error),
		output:    make(map[string]string),
		outputErr: make(map[string]error),
	}
}

func cmdline(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (m *mockCommandRunner) Run(name string, args ...string) error {
	line := cmdline(name, args...)
	m.calls = append(m.calls, line)
	return m.runErr[line]
}

func (m *mockCommandRunner) Output(name string, args ...string) ([]byte, error) {
	line := cmdline(name, args...)
	m.calls = append(m.calls, line)
	return []byte(m.output[line]), m.outputErr[line]
}

// mockFileChecker reports a fixed set of paths as existing.
type mockFileChecker struct {
	existing map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existing[path]
}

// mockProcessTable serves a scripted sequence of process tables, one per call.
// The last table repeats once the script is exhausted.
type mockProcessTable struct {
	mu           sync.Mutex
	tables       [][]RawProcess
	calls        int
	listErr      error
	terminated   []int
	terminateErr map[int]error
}

func (m *mockProcessTable) Processes(uid int) ([]RawProcess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.tables) == 0 {
		return nil, nil
	}
	idx := m.calls - 1
	if idx >= len(m.tables) {
		idx = len(m.tables) - 1
	}
	return m.tables[idx], nil
}

func (m *mockProcessTable) Terminate(pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.terminateErr[pid]; err != nil {
		return err
	}
	m.terminated = append(m.terminated, pid)
	return nil
}

// exitError produces a genuine *exec.ExitError, the error a command that ran but failed returns.
func exitError(t *testing.T) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit 1").Run()
	require.Error(t, err)
	require.True(t, isExitError(err))
	return err
}
