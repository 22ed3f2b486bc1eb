package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/systune/pkg/systune/config"
	"github.com/jamesainslie/systune/pkg/systune/logging"
)

// errNotRoot is returned when a host-mutating command runs without
// elevated privileges.
var errNotRoot = errors.New("systune must be run as root")

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "systune",
		Short: "Apply Linux kernel and OS tuning to the local host",
		Long: `Systune applies a fixed set of kernel/OS tuning operations: CPU governor,
memory swappiness and hugepages, disk read-ahead and mount options, network
socket backlog, and file-descriptor limits. Configuration files are backed up
before changes and every edit is verified.

By default, systune launches an interactive numbered menu. Subcommands run
individual steps non-interactively.

Examples:
  systune                    # Interactive menu
  systune apply memory       # Apply one optimization category
  systune apply all          # Apply all five categories in order
  systune backup create      # Snapshot the managed config files
  systune history            # View past tuning runs`,
		Args: cobra.NoArgs,
		RunE: runMenu,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: /etc/systune/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/systune")
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "systune"))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "systune"))
		}
	}

	viper.SetEnvPrefix("SYSTUNE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig unmarshals the effective configuration.
func loadConfig() (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setupLogging initializes the logging system from the configuration.
func setupLogging(cfg *config.Config) error {
	level := cfg.Logging.Level
	if getVerbose() {
		level = "debug"
	}
	consoleLevel := cfg.Logging.ConsoleLevel
	if getQuiet() {
		consoleLevel = "error"
	}

	maxSize, err := humanize.ParseBytes(cfg.Logging.Rotation.MaxSize)
	if err != nil {
		maxSize = 0 // fall back to the rotation default
	}

	return logging.Init(logging.Config{
		Level:        level,
		Path:         cfg.Logging.Path,
		SummaryPath:  cfg.Logging.SummaryPath,
		ConsoleLevel: consoleLevel,
		Components:   cfg.Logging.Components,
		Rotation: logging.RotationConfig{
			MaxSize:    int64(maxSize),
			MaxAge:     cfg.Logging.Rotation.MaxAge,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
		},
	})
}

// requireRoot refuses to mutate the host without elevated privileges.
func requireRoot() error {
	if os.Geteuid() != 0 {
		return errNotRoot
	}
	return nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
