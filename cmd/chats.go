package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/llm-studio/internal"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)
)

// errNoChatSelected is returned when a command needs the current chat
var errNoChatSelected = errors.New("no chat selected (use 'llm-studio chats select <id>')")

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Manage chat sessions",
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			current, _ := s.Chats.CurrentChat()
			displayChats(cmd.OutOrStdout(), s.Chats.Chats(), current.ID)
			return nil
		})
	},
}

var chatsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new chat and select it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			chat := s.Chats.CreateChat()
			fmt.Fprintf(cmd.OutOrStdout(), "Created chat %s\n", chat.ID)
			return nil
		})
	},
}

var chatsShowCmd = &cobra.Command{
	Use:   "show [chat-id]",
	Short: "Show the messages of a chat (default: the selected chat)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			chat, err := resolveChat(s, args)
			if err != nil {
				return err
			}
			displayChat(cmd.OutOrStdout(), chat)
			return nil
		})
	},
}

var chatsSelectCmd = &cobra.Command{
	Use:   "select <chat-id>",
	Short: "Select the chat that send writes to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			if err := s.Chats.SelectChat(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected chat %s\n", args[0])
			return nil
		})
	},
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd, func(ctx context.Context, s *internal.Studio) error {
			if err := s.Chats.DeleteChat(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted chat %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(chatsCmd)
	chatsCmd.AddCommand(chatsListCmd, chatsNewCmd, chatsShowCmd, chatsSelectCmd, chatsDeleteCmd)
}

// resolveChat returns the chat named by args, or the selected chat
func resolveChat(s *internal.Studio, args []string) (internal.Chat, error) {
	if len(args) == 0 {
		chat, ok := s.Chats.CurrentChat()
		if !ok {
			return internal.Chat{}, errNoChatSelected
		}
		return chat, nil
	}
	chat, ok := s.Chats.Chat(args[0])
	if !ok {
		return internal.Chat{}, fmt.Errorf("%w: %s (use 'llm-studio chats list' to see available chats)", internal.ErrChatNotFound, args[0])
	}
	return chat, nil
}

func displayChats(w io.Writer, chats []internal.Chat, currentID string) {
	if len(chats) == 0 {
		fmt.Fprintln(w, headerStyle.Render("💬 No chats yet"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("💬 %d chat(s)", len(chats))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t")

	for _, chat := range chats {
		marker := " "
		if chat.ID == currentID {
			marker = "*"
		}
		title := runewidth.Truncate(chat.Title, 50, "...")
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			marker,
			idStyle.Render(chat.ID),
			title,
			countStyle.Render(strconv.Itoa(len(chat.Messages))),
			dateStyle.Render(humanize.Time(chat.Timestamp)),
		)
	}
	_ = tw.Flush()
}

func displayChat(w io.Writer, chat internal.Chat) {
	fmt.Fprintln(w, headerStyle.Render(chat.Title))
	fmt.Fprintln(w, dateStyle.Render(fmt.Sprintf("%s · %d message(s) · updated %s",
		chat.ID, len(chat.Messages), humanize.Time(chat.Timestamp))))
	fmt.Fprintln(w)

	if len(chat.Messages) == 0 {
		fmt.Fprintln(w, idStyle.Render("No messages yet. Use 'llm-studio send' to start."))
		return
	}
	for _, msg := range chat.Messages {
		displayMessage(w, msg)
	}
}

func displayMessage(w io.Writer, msg internal.Message) {
	speaker := userMessageStyle.Render("You")
	if msg.Role == internal.RoleAssistant {
		speaker = assistantMessageStyle.Render("Assistant")
	}
	fmt.Fprintf(w, "%s %s\n", speaker, dateStyle.Render(msg.Timestamp.Format("15:04")))
	if !internal.IsTerminal() {
		fmt.Fprintln(w, messageContentStyle.Render(strings.TrimSpace(msg.Content)))
		return
	}
	if msg.Role == internal.RoleAssistant {
		fmt.Fprint(w, renderMarkdown(msg.Content))
		return
	}
	fmt.Fprintln(w, messageContentStyle.Render(wrapText(msg.Content)))
}
