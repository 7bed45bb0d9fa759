package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/llm-studio/internal"
)

func TestNewExporter_ExportsChat(t *testing.T) {
	chat := internal.CreateTestChat("chat-7")

	tests := []struct {
		format  string
		wantExt string
		want    []string
		lines   int
	}{
		{
			format:  "jsonl",
			wantExt: "jsonl",
			want:    []string{`"role":"user"`, `"role":"assistant"`, `"content":"I'm doing well, thank you!"`},
			lines:   2,
		},
		{
			format:  "md",
			wantExt: "md",
			want:    []string{"# Hello, how are you?", "**Chat:** chat-7", "**Messages:** 2", "**You:**", "**Assistant:**"},
		},
		{
			format:  "markdown",
			wantExt: "md",
			want:    []string{"# Hello, how are you?", "**Assistant:**"},
		},
		{
			format:  "yaml",
			wantExt: "yaml",
			want:    []string{"id: chat-7", "messages:", "role: user", "role: assistant"},
		},
		{
			format:  "json",
			wantExt: "json",
			want:    []string{`"id": "chat-7"`, `"title": "Hello, how are you?"`, `"role": "assistant"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if err != nil {
				t.Fatalf("NewExporter(%q) error = %v", tt.format, err)
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}

			var buf bytes.Buffer
			if err := exporter.Export(chat, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("%s output missing %q:\n%s", tt.format, want, out)
				}
			}
			if tt.lines > 0 {
				if got := strings.Count(out, "\n"); got != tt.lines {
					t.Errorf("%s output has %d lines, want %d", tt.format, got, tt.lines)
				}
			}
		})
	}
}

func TestNewExporter_EmptyChat(t *testing.T) {
	chat := internal.CreateTestChatWithMessages("chat-empty", nil)

	for _, format := range []string{"jsonl", "md", "yaml", "json"} {
		exporter, err := NewExporter(format)
		if err != nil {
			t.Fatalf("NewExporter(%q) error = %v", format, err)
		}
		var buf bytes.Buffer
		if err := exporter.Export(chat, &buf); err != nil {
			t.Errorf("%s: Export() of an empty chat error = %v", format, err)
		}
		if format == "jsonl" && buf.Len() != 0 {
			t.Errorf("jsonl export of an empty chat = %q, want no lines", buf.String())
		}
	}
}

func TestNewExporter_Unsupported(t *testing.T) {
	for _, format := range []string{"xml", "", "JSON"} {
		exporter, err := NewExporter(format)
		if err == nil {
			t.Errorf("NewExporter(%q) succeeded with %T, want error", format, exporter)
		}
		if exporter != nil {
			t.Errorf("NewExporter(%q) returned %T, want nil", format, exporter)
		}
	}
}
