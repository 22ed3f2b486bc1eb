package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow prints the effective configuration: managed files, backup
// location, tuning targets, and log paths.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if file := viper.ConfigFileUsed(); file != "" {
		printInfo("Config file:   %s", file)
	} else {
		printInfo("Config file:   (defaults)")
	}

	printInfo("Sysctl conf:   %s", cfg.Files.Sysctl)
	printInfo("Mount table:   %s", cfg.Files.Fstab)
	printInfo("Boot loader:   %s", cfg.Files.Grub)
	printInfo("Backup dir:    %s", cfg.BackupDir)
	printInfo("History dir:   %s", cfg.History.Path)
	printInfo("")
	printInfo("Targets:")
	printInfo("  governor:           %s", cfg.Targets.Governor)
	printInfo("  swappiness:         %d", cfg.Targets.Swappiness)
	printInfo("  hugepages:          %d", cfg.Targets.HugePages)
	printInfo("  somaxconn:          %d", cfg.Targets.Somaxconn)
	printInfo("  file-max:           %d", cfg.Targets.FileMax)
	printInfo("  read-ahead sectors: %d", cfg.Targets.ReadAheadSectors)
	printInfo("  mount options:      %s", strings.Join(cfg.Targets.MountOptions, ","))
	return nil
}
