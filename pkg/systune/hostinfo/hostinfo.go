// Package hostinfo detects host resources the tuning operations and the menu
// header report: kernel release, CPU cores, memory, and the primary disk
// backing the root filesystem.
package hostinfo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/jamesainslie/systune/pkg/systune/execx"
)

// Info contains detected host resources.
type Info struct {
	// KernelRelease is the running kernel version (uname -r).
	KernelRelease string

	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the available RAM in bytes, as estimated by the
	// kernel's MemAvailable.
	AvailableRAM int64
}

// Detect gathers host resources from uname and /proc/meminfo.
func Detect() (Info, error) {
	info := Info{CPUCores: runtime.NumCPU()}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return info, fmt.Errorf("uname: %w", err)
	}
	info.KernelRelease = unix.ByteSliceToString(uts.Release[:])

	total, available, err := readMeminfo("/proc/meminfo")
	if err != nil {
		return info, err
	}
	info.TotalRAM = total
	info.AvailableRAM = available

	return info, nil
}

// readMeminfo parses MemTotal and MemAvailable from a meminfo-format file.
// Values in the file are in kibibytes.
func readMeminfo(path string) (total, available int64, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening meminfo: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		value, parseErr := strconv.ParseInt(fields[1], 10, 64)
		if parseErr != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = value * 1024
		case "MemAvailable:":
			available = value * 1024
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("reading meminfo: %w", err)
	}
	return total, available, nil
}

// Partition naming schemes: nvme0n1p3 and mmcblk0p1 use a pN suffix on the
// whole-disk name; sda1/vda2/hdb3 append the number directly.
var (
	nvmePartition = regexp.MustCompile(`^(nvme\d+n\d+)p\d+$`)
	mmcPartition  = regexp.MustCompile(`^(mmcblk\d+)p\d+$`)
	diskPartition = regexp.MustCompile(`^([a-z]+)\d+$`)
)

// PrimaryDisk resolves the whole-disk device backing the root filesystem,
// e.g. /dev/sda for a /dev/sda2 root, /dev/nvme0n1 for /dev/nvme0n1p2.
func PrimaryDisk(ctx context.Context, run execx.Runner) (string, error) {
	source, err := run(ctx, "findmnt", "-no", "SOURCE", "/")
	if err != nil {
		return "", fmt.Errorf("resolving root device: %w", err)
	}
	return DiskForPartition(source), nil
}

// DiskForPartition strips partition numbering from a block device path.
// Devices that do not look like partitions (LVM mapper paths, whole disks)
// are returned unchanged.
func DiskForPartition(device string) string {
	name := strings.TrimPrefix(device, "/dev/")
	if name == device {
		return device
	}

	for _, re := range []*regexp.Regexp{nvmePartition, mmcPartition, diskPartition} {
		if m := re.FindStringSubmatch(name); m != nil {
			return "/dev/" + m[1]
		}
	}
	return device
}
