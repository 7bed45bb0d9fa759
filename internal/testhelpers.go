package internal

import (
	"time"
)

// testTime is a fixed instant so fixtures render deterministically
var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// CreateTestChat creates a chat with one user and one assistant message
func CreateTestChat(id string) *Chat {
	return &Chat{
		ID:        id,
		Title:     "Hello, how are you?",
		Timestamp: testTime.Add(time.Minute),
		Messages: []Message{
			{
				ID:        id + "-msg-1",
				Role:      RoleUser,
				Content:   "Hello, how are you?",
				Timestamp: testTime,
			},
			{
				ID:        id + "-msg-2",
				Role:      RoleAssistant,
				Content:   "I'm doing well, thank you!",
				Timestamp: testTime.Add(time.Minute),
			},
		},
	}
}

// CreateTestChatWithMessages creates a chat holding messages
func CreateTestChatWithMessages(id string, messages []Message) *Chat {
	chat := &Chat{
		ID:        id,
		Title:     DefaultChatTitle,
		Timestamp: testTime,
		Messages:  messages,
	}
	for _, msg := range messages {
		if msg.Role == RoleUser {
			chat.Title = DeriveTitle(msg.Content)
			break
		}
	}
	if last, ok := chat.LastMessage(); ok && !last.Timestamp.IsZero() {
		chat.Timestamp = last.Timestamp
	}
	return chat
}
