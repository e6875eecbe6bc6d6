package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dolthub/release-notes-generator/internal/cache"
	"github.com/dolthub/release-notes-generator/internal/config"
	"github.com/dolthub/release-notes-generator/internal/github"
	"github.com/dolthub/release-notes-generator/internal/logging"
	"github.com/dolthub/release-notes-generator/internal/notes"
	"github.com/dolthub/release-notes-generator/internal/report"
)

var (
	dependencies []string
	token        string
	configPath   string
	workspace    string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "release-notes <owner/repo> [tag]",
	Short: "Generate markdown release notes from GitHub metadata",
	Long: `release-notes aggregates the pull requests merged and issues closed
between two releases of a GitHub repository into a markdown document.

With a tag argument the window runs from the previous release to that
release; without one, from the latest release to HEAD. Dependencies whose
pinned version moved across the window contribute their own PRs and issues.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGenerate,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.config/release-notes/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug-level trace on stderr")
	rootCmd.Flags().StringSliceVar(&dependencies, "dependency", nil, "Dependency repo (owner/repo) to diff and include (repeatable)")
	rootCmd.Flags().StringVar(&token, "token", "", "GitHub API token (default config file, then GITHUB_TOKEN)")
	rootCmd.Flags().StringVar(&workspace, "workspace", "", "Directory holding local clones (default ~/.cache/release-notes/repos)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logging.Setup(verbose)

	cfg, err := config.Load(configPath, token, workspace, dependencies)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var responses *cache.Cache
	if cfg.CachePath != "" {
		responses, err = cache.Open(cfg.CachePath)
		if err != nil {
			return fmt.Errorf("opening response cache: %w", err)
		}
		defer responses.Close()
	}

	repo := args[0]
	tag := ""
	if len(args) == 2 {
		tag = args[1]
	}

	generator := &notes.Generator{
		Fetcher:      github.New(cfg.Token, responses),
		Clone:        notes.CloneRepo,
		Workspace:    cfg.Workspace,
		Dependencies: cfg.Dependencies,
	}

	result, err := generator.Generate(cmd.Context(), repo, tag)
	if err != nil {
		return fmt.Errorf("generating release notes: %w", err)
	}

	return report.Write(os.Stdout, result)
}
