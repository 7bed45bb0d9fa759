package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/llm-studio/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat  string
	inspectPreview int
)

// entrySummary describes one row of the key-value table
type entrySummary struct {
	Key     string `json:"key"`
	Bytes   int    `json:"bytes"`
	Status  string `json:"status"`
	Preview string `json:"preview,omitempty"`
}

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect the raw entries of a studio database",
	Long: `Inspect the raw key-value entries stored in a studio database.

For each key this shows its size, whether the studio can decode it and
a preview of the stored JSON. The database is opened read-only.

Examples:
  llm-studio inspect                               # Inspect the configured database
  llm-studio inspect /path/to/studio.db            # Inspect a specific database
  llm-studio inspect --format json --preview 200   # JSON output with longer previews`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var dbPath string
		if len(args) > 0 {
			dbPath = args[0]
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dbPath = cfg.DatabasePath
		}
		if inspectFormat != "text" && inspectFormat != "json" {
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}

		if _, err := os.Stat(dbPath); err != nil {
			return &internal.StorageError{Path: dbPath, Op: "stat", Err: err}
		}

		ctx := cmd.Context()
		db, err := internal.OpenDatabaseReadOnly(ctx, dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		storage := internal.NewStorage(db, dbPath)
		defer func() { _ = storage.Close() }()

		keys, err := storage.Keys(ctx)
		if err != nil {
			return fmt.Errorf("failed to list keys: %w", err)
		}

		summaries := make([]entrySummary, 0, len(keys))
		for _, key := range keys {
			value, ok, err := storage.Get(ctx, key)
			if err != nil {
				return err
			}
			summaries = append(summaries, summarizeEntry(key, value, ok, inspectPreview))
		}

		if inspectFormat == "json" {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(summaries)
		}
		displayEntries(cmd.OutOrStdout(), dbPath, summaries)
		return nil
	},
}

func summarizeEntry(key, value string, present bool, preview int) entrySummary {
	s := entrySummary{Key: key, Bytes: len(value), Status: "other"}

	switch {
	case !present:
		s.Status = "null"
	case isPersistedKey(key):
		s.Status = "valid"
		if err := internal.CheckEntry(key, value); err != nil {
			s.Status = "corrupt"
		}
	}

	if preview > 0 {
		runes := []rune(strings.Join(strings.Fields(value), " "))
		if len(runes) > preview {
			s.Preview = string(runes[:preview]) + "..."
		} else {
			s.Preview = string(runes)
		}
	}
	return s
}

func isPersistedKey(key string) bool {
	for _, k := range internal.PersistedKeys {
		if k == key {
			return true
		}
	}
	return false
}

func displayEntries(w io.Writer, dbPath string, entries []entrySummary) {
	fmt.Fprintf(w, "📋 Database: %s\n", dbPath)
	if len(entries) == 0 {
		fmt.Fprintln(w, "⚠️  No entries found")
		return
	}
	fmt.Fprintf(w, "📊 Found %d entr(ies) in %s\n\n", len(entries), internal.TableName)

	for _, e := range entries {
		status := e.Status
		switch e.Status {
		case "valid":
			status = successStyle.Render(status)
		case "corrupt", "null":
			status = errorStyle.Render(status)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", titleStyle.Render(e.Key), dateStyle.Render(humanize.Bytes(uint64(e.Bytes))), status)
		if e.Preview != "" {
			fmt.Fprintf(w, "   %s\n", idStyle.Render(e.Preview))
		}
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectPreview, "preview", 80, "Characters of each value to preview (0 to hide)")
}
