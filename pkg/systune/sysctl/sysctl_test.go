package sysctl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records external command invocations.
type fakeRunner struct {
	calls []string
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	return "", nil
}

// newTestClient builds a Client backed by a fake /proc/sys tree.
func newTestClient(t *testing.T, liveValues map[string]string) (*Client, *fakeRunner) {
	t.Helper()

	procRoot := filepath.Join(t.TempDir(), "proc-sys")
	for key, value := range liveValues {
		path := filepath.Join(procRoot, strings.ReplaceAll(key, ".", "/"))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(value+"\n"), 0o644))
	}

	runner := &fakeRunner{}
	return &Client{
		ProcRoot: procRoot,
		ConfPath: filepath.Join(t.TempDir(), "sysctl.conf"),
		Run:      runner.run,
	}, runner
}

func TestClient_ReadValue(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{"vm.swappiness": "60"})

	value, err := client.ReadValue("vm.swappiness")
	require.NoError(t, err)
	assert.Equal(t, "60", value)
}

func TestClient_ReadValue_MissingKey(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.ReadValue("vm.swappiness")
	assert.Error(t, err)
}

func TestClient_Ensure_AppliesWhenDifferent(t *testing.T) {
	client, runner := newTestClient(t, map[string]string{"vm.swappiness": "60"})

	changed, err := client.Ensure(context.Background(), "vm.swappiness", "10")
	require.NoError(t, err)
	assert.True(t, changed)

	// Persisted to the conf file.
	data, err := os.ReadFile(client.ConfPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vm.swappiness = 10")

	// Applied live.
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "sysctl -w vm.swappiness=10", runner.calls[0])
}

func TestClient_Ensure_SkipsWhenAlreadySet(t *testing.T) {
	client, runner := newTestClient(t, map[string]string{"vm.swappiness": "10"})

	changed, err := client.Ensure(context.Background(), "vm.swappiness", "10")
	require.NoError(t, err)
	assert.False(t, changed)

	// No conf file written, no live apply.
	_, err = os.Stat(client.ConfPath)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, runner.calls)
}

func TestClient_Ensure_Idempotent(t *testing.T) {
	client, runner := newTestClient(t, map[string]string{"vm.swappiness": "60"})

	changed, err := client.Ensure(context.Background(), "vm.swappiness", "10")
	require.NoError(t, err)
	assert.True(t, changed)

	// Simulate the live apply taking effect.
	livePath := filepath.Join(client.ProcRoot, "vm", "swappiness")
	require.NoError(t, os.WriteFile(livePath, []byte("10\n"), 0o644))

	changed, err = client.Ensure(context.Background(), "vm.swappiness", "10")
	require.NoError(t, err)
	assert.False(t, changed)

	// Exactly one assignment line and one live apply across both runs.
	data, err := os.ReadFile(client.ConfPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "vm.swappiness"))
	assert.Len(t, runner.calls, 1)
}

func TestClient_Reload(t *testing.T) {
	client, runner := newTestClient(t, nil)

	require.NoError(t, client.Reload(context.Background()))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "sysctl -p "+client.ConfPath, runner.calls[0])
}
