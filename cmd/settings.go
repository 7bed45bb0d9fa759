package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/iksnae/llm-studio/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			return printSettings(cmd.OutOrStdout(), s.Settings.Settings())
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Change one or more settings",
	Long: `Change settings with key=value pairs. Keys use the persisted names:

  theme, language, defaultModel, maxRamUsage, preferSmaller,
  gpuAcceleration, storageUsed, storageAvailable, anonymousStats

Example:
  llm-studio settings set theme=dark maxRamUsage=60`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := internal.ParseSettingsPatch(args)
		if err != nil {
			return err
		}

		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			if err := s.Settings.UpdateSettings(patch); err != nil {
				return fmt.Errorf("failed to update settings: %w", err)
			}
			return printSettings(cmd.OutOrStdout(), s.Settings.Settings())
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}

func printSettings(w io.Writer, settings internal.Settings) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return encoder.Close()
}
