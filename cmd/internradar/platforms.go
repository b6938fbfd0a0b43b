package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the platforms and keywords in effect",
	Long:  "Reads the config (file, .env and environment) and prints which platforms are polled and with which keywords.",
	RunE:  runPlatforms,
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	status := func(enabled bool) string {
		if enabled {
			return "enabled"
		}
		return "disabled"
	}

	fmt.Printf("%-15s %-10s %s\n", "Platform", "Status", "Scope")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("%-15s %-10s %d page(s)\n", "AICTE", status(cfg.Platforms.AICTE.Enabled), cfg.Platforms.AICTE.Pages)
	fmt.Printf("%-15s %-10s %d keyword search(es)\n", "Internshala", status(cfg.Platforms.Internshala.Enabled), min(cfg.Platforms.Internshala.MaxSearches, max(len(cfg.Keywords), 1)))

	fmt.Printf("\nKeywords (%d): %s\n", len(cfg.Keywords), strings.Join(cfg.Keywords, ", "))
	fmt.Printf("Check interval: %s   Time zone: %s\n", cfg.CheckInterval, cfg.Timezone)
	return nil
}
