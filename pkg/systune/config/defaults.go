// Package config provides configuration management for systune.
package config

// Default configuration values for systune.
const (
	// DefaultSysctlConf is the system control parameters file.
	DefaultSysctlConf = "/etc/sysctl.conf"

	// DefaultFstab is the mount table file.
	DefaultFstab = "/etc/fstab"

	// DefaultGrub is the boot-loader configuration file.
	DefaultGrub = "/etc/default/grub"

	// DefaultBackupDir is the root directory for configuration snapshots.
	DefaultBackupDir = "/var/backups/systune"

	// DefaultSwappiness is the target vm.swappiness value.
	DefaultSwappiness = 10

	// DefaultHugePages is the target vm.nr_hugepages count.
	DefaultHugePages = 512

	// DefaultSomaxconn is the target net.core.somaxconn backlog.
	DefaultSomaxconn = 4096

	// DefaultFileMax is the target fs.file-max limit.
	DefaultFileMax = 2097152

	// DefaultReadAheadSectors is the target block device read-ahead in
	// 512-byte sectors.
	DefaultReadAheadSectors = 2048

	// DefaultGovernor is the target CPU frequency scaling governor.
	DefaultGovernor = "performance"

	// DefaultRetentionDays is how long run-history entries are kept.
	DefaultRetentionDays = 90
)

// DefaultMountOptions are the options added to the root filesystem's fstab
// record.
var DefaultMountOptions = []string{"noatime", "nodiratime"}

// DefaultPackages are the host utility packages the tuning operations need,
// by canonical name. Names that vary per distribution (cpupower) are mapped
// by the deps manager.
var DefaultPackages = []string{"util-linux", "numactl", "sysstat", "cpupower"}
