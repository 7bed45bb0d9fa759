package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/iksnae/llm-studio/internal"
	"github.com/spf13/cobra"
)

var sendChatID string

// sendCmd is the chat input box
var sendCmd = &cobra.Command{
	Use:   "send <message...>",
	Short: "Send a message and wait for the reply",
	Long: `Send a message to the selected chat and print the assistant's reply.

Without a selected chat (and without --chat) a new chat is created and
selected. The chat title is taken from the first message.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			var (
				chat internal.Chat
				err  error
			)
			if sendChatID != "" {
				chat, err = s.SendTo(sendChatID, text)
			} else {
				chat, err = s.Send(text)
			}
			if err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}

			modelName := "the model"
			if m, ok := s.Models.CurrentModel(); ok {
				modelName = m.ShortName()
			}

			err = internal.ShowProgress(ctx, fmt.Sprintf("Waiting for %s", modelName), func() error {
				chat, err = s.AwaitReply(ctx, chat.ID)
				return err
			})
			if err != nil {
				return fmt.Errorf("no reply: %w", err)
			}

			reply, ok := chat.LastMessage()
			if !ok || reply.Role != internal.RoleAssistant {
				return fmt.Errorf("no reply in chat %s", chat.ID)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, idStyle.Render(chat.ID+" · "+chat.Title))
			displayMessage(out, reply)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendChatID, "chat", "", "Send to this chat and select it")
}
