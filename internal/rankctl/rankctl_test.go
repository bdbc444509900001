package rankctl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSubcommands(t *testing.T) {
	cmd := NewRootCommand(&bytes.Buffer{})
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"monsters", "sectors", "industry-avg", "concepts", "all", "kline", "serve"} {
		assert.Contains(t, names, want)
	}
}

func TestKlineRequiresCode(t *testing.T) {
	_, err := execute(t, "kline")
	assert.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "monsters", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInvalidOverridesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: "+dir+"\n"), 0o644))

	_, err := execute(t, "monsters", "--config", path, "--start", "2024-05", "--end", "2024-01")
	assert.ErrorContains(t, err, "晚于")

	_, err = execute(t, "kline", "600519", "--config", path, "--provider", "yahoo")
	assert.ErrorContains(t, err, "未知的数据源")
}

func TestRunExitCode(t *testing.T) {
	assert.Equal(t, 1, Run([]string{"no-such-command"}))
	assert.Equal(t, 0, Run([]string{"--help"}))
}
