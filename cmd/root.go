package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/llm-studio/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	configPath  string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// selectionKey holds the CLI's chat selection between invocations. It sits
// beside the studio entries and is ignored by the state loader.
const selectionKey = "cli.currentChat"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "llm-studio",
	Short: "Chat with local language models",
	Long: `A command line front end for a local LLM studio.

It keeps your chats, the model catalog and your settings in a local
SQLite database and simulates model downloads and replies.

Quick Start:
  llm-studio models list                 # Browse the catalog
  llm-studio models install phi-3-mini   # Download a model
  llm-studio send "Hello there"          # Start a chat
  llm-studio chats list                  # See your conversations
  llm-studio export --format md          # Export chats as Markdown

Configuration is read from ~/.llm-studio/config.yaml (or config.toml).`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom database location (overrides database_path from the config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.llm-studio/config.yaml or config.toml)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the config file and applies the --storage override
func loadConfig() (internal.Config, error) {
	path := configPath
	if path == "" {
		dir, err := internal.DefaultDataDir()
		if err != nil {
			return internal.Config{}, fmt.Errorf("failed to locate data directory: %w", err)
		}
		path = internal.FindConfigFile(dir)
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return internal.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if storagePath != "" {
		cfg.DatabasePath = storagePath
	}
	internal.LogDebug("Using database %s", cfg.DatabasePath)
	return cfg, nil
}

// withStudio opens the studio for the duration of fn. The chat selection
// is restored before fn runs and saved after it, so commands like
// "chats select" carry over to the next invocation.
func withStudio(cmd *cobra.Command, fn func(ctx context.Context, s *internal.Studio) error) (err error) {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	storage, err := internal.OpenStorage(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	studio, err := internal.Open(ctx, storage, internal.OptionsFromConfig(cfg))
	if err != nil {
		_ = storage.Close()
		return fmt.Errorf("failed to open studio: %w", err)
	}
	defer func() {
		// Close outlives an interrupted command context
		closeCtx := context.WithoutCancel(ctx)
		if saveErr := saveSelection(closeCtx, storage, studio); saveErr != nil {
			internal.LogWarn("Failed to save chat selection: %v", saveErr)
		}
		if closeErr := studio.Close(closeCtx); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close studio: %w", closeErr))
		}
	}()

	restoreSelection(ctx, storage, studio)
	return fn(ctx, studio)
}

func restoreSelection(ctx context.Context, storage *internal.Storage, studio *internal.Studio) {
	id, ok, err := storage.Get(ctx, selectionKey)
	if err != nil {
		internal.LogWarn("Failed to read chat selection: %v", err)
		return
	}
	if !ok || id == "" {
		return
	}
	if err := studio.Chats.SelectChat(id); err != nil {
		internal.LogDebug("Dropping stale chat selection %s", id)
	}
}

func saveSelection(ctx context.Context, storage *internal.Storage, studio *internal.Studio) error {
	return storage.Set(ctx, selectionKey, studio.Store.State().CurrentChatID)
}
