package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/llm-studio/internal"
	"github.com/iksnae/llm-studio/internal/export"
	"github.com/spf13/cobra"
)

var (
	format       string
	outputDir    string
	exportChatID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export chats to files",
	Long: `Export chats to various formats (jsonl, md, yaml, json), one file per chat.

You can export every chat or a single chat by ID.
Use 'llm-studio chats list' to see available chat IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create exporter first so a bad format fails before touching storage
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			chats := s.Chats.Chats()

			// Filter by chat ID if specified
			if exportChatID != "" {
				chat, ok := s.Chats.Chat(exportChatID)
				if !ok {
					return fmt.Errorf("%w: %s (use 'llm-studio chats list' to see available chats)", internal.ErrChatNotFound, exportChatID)
				}
				chats = []internal.Chat{chat}
			}

			if len(chats) == 0 {
				internal.PrintInfo("No chats to export")
				return nil
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			exported := 0
			err := internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d chat(s) to %s", len(chats), outputDir), func() error {
				for i := range chats {
					path, err := exportChat(exporter, &chats[i], outputDir)
					if err != nil {
						internal.LogError("%v", &internal.ExportError{Format: format, Path: path, Err: err})
						continue
					}
					exported++
				}
				return nil
			})
			if err != nil {
				return err
			}
			if exported == 0 {
				return &internal.ExportError{Format: format, Path: outputDir, Err: fmt.Errorf("no chat could be exported")}
			}

			internal.PrintSuccess(fmt.Sprintf("Export complete: %d chat(s) exported to %s", exported, outputDir))
			return nil
		})
	},
}

func exportChat(exporter export.Exporter, chat *internal.Chat, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("chat_%s.%s", chat.ID, exporter.Extension()))

	file, err := os.Create(path)
	if err != nil {
		return path, err
	}
	if err := exporter.Export(chat, file); err != nil {
		_ = file.Close()
		return path, err
	}
	return path, file.Close()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&exportChatID, "chat", "", "Export a single chat by ID")
}
