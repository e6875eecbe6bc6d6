package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dolthub/release-notes-generator/internal/cache"
	"github.com/dolthub/release-notes-generator/internal/config"
)

var forceFlag bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the HTTP response cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cached-response counts and age",
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the response cache",
	Long:  `Delete the cached GitHub responses. Re-runs will refetch everything.`,
	RunE:  runCacheClear,
}

func init() {
	cacheClearCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Skip confirmation prompt")
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath, "", "", nil)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.CachePath == "" {
		fmt.Println("Response cache is disabled.")
		return nil
	}

	if _, err := os.Stat(cfg.CachePath); os.IsNotExist(err) {
		fmt.Println("No cache file yet.")
		return nil
	}

	responses, err := cache.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("opening response cache: %w", err)
	}
	defer responses.Close()

	count, oldest, err := responses.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Path:      %s\n", responses.Path())
	fmt.Printf("Responses: %d\n", count)
	if count > 0 {
		fmt.Printf("Oldest:    %s (%s ago)\n",
			oldest.Format(time.RFC3339), time.Since(oldest).Round(time.Second))
	}

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath, "", "", nil)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.CachePath == "" {
		fmt.Println("Response cache is disabled. Nothing to clear.")
		return nil
	}

	if _, err := os.Stat(cfg.CachePath); os.IsNotExist(err) {
		fmt.Println("Cache does not exist. Nothing to clear.")
		return nil
	}

	if !forceFlag {
		fmt.Printf("This will delete: %s\n", cfg.CachePath)
		fmt.Print("Are you sure? [y/N] ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := os.Remove(cfg.CachePath); err != nil {
		return fmt.Errorf("deleting cache: %w", err)
	}

	fmt.Printf("Deleted: %s\n", cfg.CachePath)
	return nil
}
