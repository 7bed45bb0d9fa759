package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/llm-studio/internal"
	"github.com/spf13/cobra"
)

var (
	modelSearch  string
	modelSize    string
	modelType    string
	installForce bool
)

var (
	installedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	defaultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	heavyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Browse, install and remove local models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the model catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := internal.ModelFilter{
			Query: modelSearch,
			Size:  internal.ModelSize(strings.ToLower(modelSize)),
			Type:  internal.ModelType(strings.ToLower(modelType)),
		}

		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("🖥  Your device"))
			fmt.Fprintf(out, "   RAM %s · VRAM %s\n", internal.Device.RAM, internal.Device.VRAM)
			fmt.Fprintf(out, "   %s\n\n", idStyle.Render(internal.Device.Recommendation))

			current, _ := s.Models.CurrentModel()
			displayModels(out, internal.FilterModels(s.Models.Models(), filter), current.ID)
			return nil
		})
	},
}

var modelsInstallCmd = &cobra.Command{
	Use:   "install <model-id>",
	Short: "Download a model",
	Long: `Download a model and wait for the download to finish.

Models rated "heavy" or "incompatible" for this device are refused
unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			model, ok := s.Models.Model(id)
			if !ok {
				return fmt.Errorf("%w: %s (use 'llm-studio models list' to see the catalog)", internal.ErrModelNotFound, id)
			}
			if model.Installed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already installed\n", model.Name)
				return nil
			}
			if !model.Installable() && !installForce {
				return fmt.Errorf("%s is rated %q on this device (%s); use --force to install anyway",
					model.Name, model.Compatibility, model.Compatibility.Label())
			}

			if err := s.Models.InstallModel(id); err != nil {
				return err
			}

			showBar := internal.IsTerminal()
			errOut := cmd.ErrOrStderr()
			name := model.ShortName()
			model, err := s.AwaitInstall(ctx, id, func(m internal.Model) {
				if showBar && !m.Installed {
					fmt.Fprintf(errOut, "\r%s %s", name, internal.RenderProgressBar(m.DownloadProgress, 30))
				}
			})
			if showBar {
				fmt.Fprintln(errOut)
			}
			if err != nil {
				return fmt.Errorf("download of %s interrupted: %w", id, err)
			}
			if !model.Installed {
				return fmt.Errorf("download of %s was cancelled", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %s (%s)\n", model.Name, model.DownloadSize)
			return nil
		})
	},
}

var modelsUninstallCmd = &cobra.Command{
	Use:   "uninstall <model-id>",
	Short: "Remove a downloaded model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			if err := s.Models.UninstallModel(args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uninstalled %s\n", args[0])
			if current, ok := s.Models.CurrentModel(); ok {
				fmt.Fprintf(out, "Default model: %s\n", current.Name)
			} else {
				fmt.Fprintln(out, "No default model set")
			}
			return nil
		})
	},
}

var modelsDefaultCmd = &cobra.Command{
	Use:   "default [model-id]",
	Short: "Show or set the default model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			if len(args) == 1 {
				if err := s.Models.SetDefaultModel(args[0]); err != nil {
					return err
				}
			}
			current, ok := s.Models.CurrentModel()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No default model set")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default model: %s (%s)\n", current.Name, current.ID)
			return nil
		})
	},
}

var modelsClearCmd = &cobra.Command{
	Use:   "clear-unused",
	Short: "Uninstall every model except the default",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			removed := s.Models.ClearUnusedModels()
			if len(removed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clear")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", strings.Join(removed, ", "))
			return nil
		})
	},
}

var modelsStorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Show disk space used by installed models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			out := cmd.OutOrStdout()
			_, used := s.Models.StorageUsage()
			settings := s.Settings.Settings()
			fmt.Fprintln(out, headerStyle.Render("💾 Storage"))
			fmt.Fprintf(out, "   Models: %s\n", countStyle.Render(used))
			fmt.Fprintf(out, "   Available: %s\n", settings.StorageAvailable)
			for _, m := range s.Models.InstalledModels() {
				fmt.Fprintf(out, "   • %s %s\n", m.Name, dateStyle.Render(m.DownloadSize))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd, modelsInstallCmd, modelsUninstallCmd, modelsDefaultCmd, modelsClearCmd, modelsStorageCmd)

	modelsListCmd.Flags().StringVarP(&modelSearch, "search", "s", "", "Filter by name or tag")
	modelsListCmd.Flags().StringVar(&modelSize, "size", "", "Filter by size (small, medium, large)")
	modelsListCmd.Flags().StringVar(&modelType, "type", "", "Filter by type (chat, coding)")
	modelsInstallCmd.Flags().BoolVar(&installForce, "force", false, "Install even if the model is too heavy for this device")
}

func displayModels(w io.Writer, models []internal.Model, defaultID string) {
	if len(models) == 0 {
		fmt.Fprintln(w, headerStyle.Render("📦 No models match"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📦 %d model(s)", len(models))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Download")+"\t"+titleStyle.Render("RAM")+"\t"+titleStyle.Render("Fit")+"\t"+titleStyle.Render("Status")+"\t")

	for _, m := range models {
		fit := m.Compatibility.Label()
		if !m.Installable() {
			fit = heavyStyle.Render(fit)
		}

		status := ""
		switch {
		case m.Installed && m.ID == defaultID:
			status = defaultStyle.Render("default")
		case m.Installed:
			status = installedStyle.Render("installed")
		case m.DownloadProgress > 0:
			status = fmt.Sprintf("%d%%", m.DownloadProgress)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(m.ID), m.Name, m.DownloadSize, m.RAMNeeded, fit, status)
	}
	_ = tw.Flush()

	if len(models) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, idStyle.Render("💡 Tip: install with `llm-studio models install <id>`"))
	}
}
