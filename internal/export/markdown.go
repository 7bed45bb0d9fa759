package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/llm-studio/internal"
)

// MarkdownExporter exports chats in Markdown format
type MarkdownExporter struct{}

// Export exports a chat to Markdown format. Assistant replies are already
// markdown and are written as-is; user text is escaped.
func (e *MarkdownExporter) Export(chat *internal.Chat, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", chat.Title)

	_, _ = fmt.Fprintf(w, "**Chat:** %s  \n", chat.ID)
	if !chat.Timestamp.IsZero() {
		_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", chat.Timestamp.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(chat.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range chat.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}

		content := msg.Content
		if msg.Role == internal.RoleUser {
			content = escapeMarkdown(content)
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", speaker(msg.Role), timestamp, content)

		if i < len(chat.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func speaker(role internal.Role) string {
	if role == internal.RoleUser {
		return "You"
	}
	return "Assistant"
}

// escapeMarkdown escapes markdown emphasis outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
