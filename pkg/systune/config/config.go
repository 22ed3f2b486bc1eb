package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	SummaryPath  string            `mapstructure:"summary_path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Rotation     RotationConfig    `mapstructure:"rotation"`
	Components   map[string]string `mapstructure:"components"`
}

// FilesConfig holds the paths of the managed host configuration files.
type FilesConfig struct {
	Sysctl string `mapstructure:"sysctl"`
	Fstab  string `mapstructure:"fstab"`
	Grub   string `mapstructure:"grub"`
}

// TargetsConfig holds the tuning target values. Every value can be overridden
// from the config file or SYSTUNE_* environment variables.
type TargetsConfig struct {
	Governor         string   `mapstructure:"governor"`
	Swappiness       int      `mapstructure:"swappiness"`
	HugePages        int      `mapstructure:"hugepages"`
	Somaxconn        int      `mapstructure:"somaxconn"`
	FileMax          int      `mapstructure:"file_max"`
	ReadAheadSectors int      `mapstructure:"read_ahead_sectors"`
	MountOptions     []string `mapstructure:"mount_options"`
}

// HistoryConfig configures run-history recording.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Files     FilesConfig   `mapstructure:"files"`
	BackupDir string        `mapstructure:"backup_dir"`
	Targets   TargetsConfig `mapstructure:"targets"`
	History   HistoryConfig `mapstructure:"history"`
	Logging   LoggingConfig `mapstructure:"logging"`
}

// ManagedFiles returns the fixed set of configuration files covered by
// backup snapshots, in a stable order.
func (c *Config) ManagedFiles() []string {
	return []string{c.Files.Grub, c.Files.Fstab, c.Files.Sysctl}
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - /etc/systune/config.yaml
//   - $XDG_CONFIG_HOME/systune/config.yaml
//   - $HOME/.config/systune/config.yaml
//
// Environment variables are prefixed with SYSTUNE_ (e.g., SYSTUNE_BACKUP_DIR).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/systune")
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "systune"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "systune"))
	}

	v.SetEnvPrefix("SYSTUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults registers all default values on a viper instance. Shared by
// Load and by the command layer's viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("files.sysctl", DefaultSysctlConf)
	v.SetDefault("files.fstab", DefaultFstab)
	v.SetDefault("files.grub", DefaultGrub)
	v.SetDefault("backup_dir", DefaultBackupDir)

	v.SetDefault("targets.governor", DefaultGovernor)
	v.SetDefault("targets.swappiness", DefaultSwappiness)
	v.SetDefault("targets.hugepages", DefaultHugePages)
	v.SetDefault("targets.somaxconn", DefaultSomaxconn)
	v.SetDefault("targets.file_max", DefaultFileMax)
	v.SetDefault("targets.read_ahead_sectors", DefaultReadAheadSectors)
	v.SetDefault("targets.mount_options", DefaultMountOptions)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", defaultHistoryDir())
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")         // empty means logging.DefaultLogPath
	v.SetDefault("logging.summary_path", "") // empty means logging.DefaultSummaryPath
	v.SetDefault("logging.console_level", "info")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.components", map[string]string{
		"tuning": "info",
		"backup": "info",
		"deps":   "info",
		"watch":  "info",
	})
}

// defaultHistoryDir returns where run-history entries are stored.
func defaultHistoryDir() string {
	if os.Geteuid() == 0 {
		return "/var/lib/systune/history"
	}
	if dir, err := xdg.StateFile("systune/history/.keep"); err == nil {
		return filepath.Dir(dir)
	}
	return filepath.Join(os.TempDir(), "systune-history")
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if os.Geteuid() == 0 {
		return "/etc/systune", nil
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "systune"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "systune"), nil
}
