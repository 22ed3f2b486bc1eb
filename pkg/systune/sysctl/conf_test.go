package sysctl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConf_MissingFile(t *testing.T) {
	conf, err := ParseConf(filepath.Join(t.TempDir(), "nonexistent.conf"))
	require.NoError(t, err)
	assert.Equal(t, "", conf.String())
}

func TestConf_Get(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysctl.conf")
	content := "# comment\nvm.swappiness = 60\n\nnet.core.somaxconn=128\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	conf, err := ParseConf(path)
	require.NoError(t, err)

	value, ok := conf.Get("vm.swappiness")
	assert.True(t, ok)
	assert.Equal(t, "60", value)

	value, ok = conf.Get("net.core.somaxconn")
	assert.True(t, ok)
	assert.Equal(t, "128", value)

	_, ok = conf.Get("fs.file-max")
	assert.False(t, ok)
}

func TestConf_Get_LastAssignmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysctl.conf")
	require.NoError(t, os.WriteFile(path, []byte("vm.swappiness = 60\nvm.swappiness = 30\n"), 0o644))

	conf, err := ParseConf(path)
	require.NoError(t, err)

	value, ok := conf.Get("vm.swappiness")
	assert.True(t, ok)
	assert.Equal(t, "30", value)
}

func TestConf_Set(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		key         string
		value       string
		wantChanged bool
		wantLines   int // assignment lines for the key after Set
	}{
		{
			name:        "append to empty file",
			content:     "",
			key:         "vm.swappiness",
			value:       "10",
			wantChanged: true,
			wantLines:   1,
		},
		{
			name:        "replace existing value",
			content:     "vm.swappiness = 60\n",
			key:         "vm.swappiness",
			value:       "10",
			wantChanged: true,
			wantLines:   1,
		},
		{
			name:        "already at target",
			content:     "vm.swappiness = 10\n",
			key:         "vm.swappiness",
			value:       "10",
			wantChanged: false,
			wantLines:   1,
		},
		{
			name:        "duplicates collapse to one line",
			content:     "vm.swappiness = 60\nvm.swappiness = 30\n",
			key:         "vm.swappiness",
			value:       "10",
			wantChanged: true,
			wantLines:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sysctl.conf")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			conf, err := ParseConf(path)
			require.NoError(t, err)

			assert.Equal(t, tt.wantChanged, conf.Set(tt.key, tt.value))

			count := 0
			for _, line := range strings.Split(conf.String(), "\n") {
				if strings.HasPrefix(strings.TrimSpace(line), tt.key) {
					count++
				}
			}
			assert.Equal(t, tt.wantLines, count)

			value, ok := conf.Get(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestConf_Set_PreservesCommentsAndOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysctl.conf")
	content := "# tuning baseline\nfs.file-max = 100000\n\nvm.swappiness = 60\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	conf, err := ParseConf(path)
	require.NoError(t, err)

	conf.Set("vm.swappiness", "10")
	out := conf.String()

	assert.Contains(t, out, "# tuning baseline")
	assert.Contains(t, out, "fs.file-max = 100000")
	assert.Contains(t, out, "vm.swappiness = 10")
	assert.NotContains(t, out, "60")
}

func TestConf_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysctl.conf")
	require.NoError(t, os.WriteFile(path, []byte("vm.swappiness = 60\n"), 0o644))

	conf, err := ParseConf(path)
	require.NoError(t, err)
	conf.Set("vm.swappiness", "10")
	require.NoError(t, conf.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "vm.swappiness = 10\n", string(data))

	// No temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
