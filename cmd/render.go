package cmd

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/iksnae/llm-studio/internal"
)

const wrapWidth = 80

var (
	markdownOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// renderMarkdown renders an assistant reply for the terminal. It returns
// the content unchanged if the renderer cannot be built or fails.
func renderMarkdown(content string) string {
	markdownOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			internal.LogDebug("Markdown rendering disabled: %v", err)
			return
		}
		markdownRenderer = r
	})
	if markdownRenderer == nil {
		return content + "\n"
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}

// wrapText wraps plain text to fit inside the message padding
func wrapText(content string) string {
	return wordwrap.String(strings.TrimSpace(content), wrapWidth-4)
}
