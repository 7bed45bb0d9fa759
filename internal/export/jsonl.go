package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/llm-studio/internal"
)

// JSONLExporter exports chats in JSONL format (one message per line)
type JSONLExporter struct{}

// Export writes one {role, content, timestamp} object per message
func (e *JSONLExporter) Export(chat *internal.Chat, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range chat.Messages {
		obj := map[string]interface{}{
			"role":    msg.Role,
			"content": msg.Content,
		}

		if !msg.Timestamp.IsZero() {
			obj["timestamp"] = msg.Timestamp.Format(time.RFC3339)
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
