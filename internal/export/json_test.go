package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/llm-studio/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		chat    *internal.Chat
		wantErr bool
	}{
		{
			name:    "basic chat",
			chat:    internal.CreateTestChat("chat-1"),
			wantErr: false,
		},
		{
			name:    "empty chat",
			chat:    internal.CreateTestChatWithMessages("chat-2", []internal.Message{}),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			err := exporter.Export(tt.chat, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("JSONExporter.Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				output := buf.String()
				var chat internal.Chat
				if err := json.Unmarshal([]byte(output), &chat); err != nil {
					t.Errorf("Output is not valid JSON: %v\nOutput: %s", err, output)
					return
				}

				if chat.ID != tt.chat.ID {
					t.Errorf("decoded ID = %q, want %q", chat.ID, tt.chat.ID)
				}
				if len(chat.Messages) != len(tt.chat.Messages) {
					t.Errorf("decoded %d messages, want %d", len(chat.Messages), len(tt.chat.Messages))
				}

				if !strings.Contains(output, "  ") {
					t.Errorf("Output should be pretty-printed with indentation")
				}
			}
		})
	}
}

func TestJSONExporter_PersistedFieldNames(t *testing.T) {
	var buf bytes.Buffer
	chat := internal.CreateTestChatWithMessages("chat-3", []internal.Message{
		{ID: "msg-1", Role: internal.RoleUser, Content: "Hi", Timestamp: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	if err := (&JSONExporter{}).Export(chat, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	for _, want := range []string{`"id": "chat-3"`, `"title": "Hi"`, `"role": "user"`, `"timestamp": "2023-01-01T00:00:00Z"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Output should contain %s, got:\n%s", want, buf.String())
		}
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
