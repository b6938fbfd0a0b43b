package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/amishk599/internradar/internal/store"
)

var seenLimit int

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Inspect the seen-postings store",
	Long:  "Loads the configured seen store and prints its size and the most recent posting IDs.",
	RunE:  runSeen,
}

func init() {
	seenCmd.Flags().IntVarP(&seenLimit, "limit", "n", 10, "number of recent IDs to print")
	rootCmd.AddCommand(seenCmd)
}

func runSeen(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seen, backend, err := openSeenSet(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	fmt.Printf("Store:    %s", backend.Name())
	if cfg.Store.Type == "file" {
		path := cfg.Store.Path
		if path == "" {
			path = store.DefaultFilePath
		}
		if info, err := os.Stat(path); err == nil {
			fmt.Printf(" (%s, %s, updated %s)", path, humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
		}
	}
	fmt.Println()
	fmt.Printf("Entries:  %s of %s\n", humanize.Comma(int64(seen.Len())), humanize.Comma(int64(cfg.Store.MaxEntries)))

	ids := seen.IDs()
	if len(ids) == 0 || seenLimit <= 0 {
		return nil
	}
	fmt.Println("\nMost recent:")
	for i := len(ids) - 1; i >= 0 && i >= len(ids)-seenLimit; i-- {
		fmt.Printf("  %s\n", ids[i])
	}
	return nil
}
