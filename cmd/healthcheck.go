package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/llm-studio/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check the studio database without changing it",
	Long: `Check the health of the studio database by verifying:
  • Configuration loading
  • Database file presence and access
  • Each persisted entry (chats, models, settings, currentModel)

Entries that are missing or unreadable are reported; the next command
that opens the studio replaces them with seed data.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, sectionStyle.Render("🔍 LLM Studio Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Configuration is invalid:"), err)
			return err
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if verbose {
			fmt.Fprintf(out, "   Database: %s\n", cfg.DatabasePath)
			fmt.Fprintf(out, "   Tick interval: %s, step %d%%\n", cfg.TickInterval, cfg.ProgressStep)
			fmt.Fprintf(out, "   Response latency: %s\n", cfg.ResponseLatency)
		}
		fmt.Fprintln(out)

		// Step 2: Database file
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking database file..."))
		if _, err := os.Stat(cfg.DatabasePath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, warningStyle.Render("⚠️  Database not created yet"))
				fmt.Fprintln(out, "   It is created and seeded on the first run of any other command.")
				return nil
			}
			fmt.Fprintln(out, errorStyle.Render("❌ Cannot access database:"), err)
			return &internal.StorageError{Path: cfg.DatabasePath, Op: "stat", Err: err}
		}
		fmt.Fprintln(out, successStyle.Render("✅ Database file found"))
		fmt.Fprintln(out)

		// Step 3: Open read-only
		fmt.Fprintln(out, infoStyle.Render("Step 3: Reading entries..."))
		db, err := internal.OpenDatabaseReadOnly(ctx, cfg.DatabasePath)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open database:"), err)
			return &internal.StorageError{Path: cfg.DatabasePath, Op: "open", Err: err}
		}
		defer db.Close()

		pairs, err := internal.QueryKV(ctx, db, "%")
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to read entries:"), err)
			return &internal.StorageError{Path: cfg.DatabasePath, Op: "get", Err: err}
		}
		entries := make(map[string]string, len(pairs))
		for _, pair := range pairs {
			entries[pair.Key] = pair.Value
		}

		// Step 4: Validate each entry
		problems := 0
		for _, key := range internal.PersistedKeys {
			raw, ok := entries[key]
			if !ok {
				problems++
				fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %s: missing, seed data will be used", key)))
				continue
			}
			if err := internal.CheckEntry(key, raw); err != nil {
				problems++
				fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %s: corrupt, seed data will be used", key)))
				if verbose {
					fmt.Fprintf(out, "   %v\n", err)
				}
				continue
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s: valid", key)))
			if verbose {
				fmt.Fprintf(out, "   %d bytes\n", len(raw))
			}
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if problems == 0 {
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			return nil
		}
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %d of %d entries will fall back to seed data", problems, len(internal.PersistedKeys))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
