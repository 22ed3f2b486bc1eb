package hostinfo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskForPartition(t *testing.T) {
	tests := []struct {
		device string
		want   string
	}{
		{"/dev/sda1", "/dev/sda"},
		{"/dev/sda", "/dev/sda"},
		{"/dev/vda2", "/dev/vda"},
		{"/dev/nvme0n1p2", "/dev/nvme0n1"},
		{"/dev/nvme0n1", "/dev/nvme0n1"},
		{"/dev/mmcblk0p1", "/dev/mmcblk0"},
		{"/dev/mmcblk0", "/dev/mmcblk0"},
		{"/dev/mapper/vg0-root", "/dev/mapper/vg0-root"},
		{"UUID=abc-123", "UUID=abc-123"},
	}

	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			assert.Equal(t, tt.want, DiskForPartition(tt.device))
		})
	}
}

func TestPrimaryDisk(t *testing.T) {
	run := func(ctx context.Context, name string, args ...string) (string, error) {
		assert.Equal(t, "findmnt", name)
		assert.Equal(t, []string{"-no", "SOURCE", "/"}, args)
		return "/dev/nvme0n1p3", nil
	}

	disk, err := PrimaryDisk(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "/dev/nvme0n1", disk)
}

func TestPrimaryDisk_Error(t *testing.T) {
	run := func(ctx context.Context, name string, args ...string) (string, error) {
		return "", fmt.Errorf("exit status 1")
	}

	_, err := PrimaryDisk(context.Background(), run)
	assert.Error(t, err)
}

func TestReadMeminfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	content := `MemTotal:       16384000 kB
MemFree:         1024000 kB
MemAvailable:    8192000 kB
Buffers:          512000 kB
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	total, available, err := readMeminfo(path)
	require.NoError(t, err)
	assert.Equal(t, int64(16384000*1024), total)
	assert.Equal(t, int64(8192000*1024), available)
}

func TestReadMeminfo_MissingFile(t *testing.T) {
	_, _, err := readMeminfo(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
