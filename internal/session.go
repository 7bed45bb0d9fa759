package internal

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultChatTitle is the title of a chat until its first user message arrives
const DefaultChatTitle = "New Chat"

// maxTitleLength is measured in runes
const maxTitleLength = 50

// Message is a single chat message. Messages are never modified once appended.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Chat is a conversation session
type Chat struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Messages  []Message `json:"messages" yaml:"messages"`
}

// NewUserMessage creates a user message stamped with now
func NewUserMessage(content string, now time.Time) Message {
	return newMessage(RoleUser, content, now)
}

// NewAssistantMessage creates an assistant message stamped with now
func NewAssistantMessage(content string, now time.Time) Message {
	return newMessage(RoleAssistant, content, now)
}

func newMessage(role Role, content string, now time.Time) Message {
	return Message{
		ID:        "msg-" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
}

func newChat(now time.Time) Chat {
	return Chat{
		ID:        "chat-" + uuid.NewString(),
		Title:     DefaultChatTitle,
		Timestamp: now,
		Messages:  []Message{},
	}
}

// DeriveTitle returns the title a chat gets from its first user message
func DeriveTitle(content string) string {
	return truncate(content, maxTitleLength)
}

// truncate cuts s to n runes, appending "..." when anything was cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// LastMessage returns the most recent message, if any
func (c Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// withMessage returns a copy of chats where chats[i] has msg appended.
// The chat timestamp follows the message and the title is derived when
// msg is the first message and comes from the user.
func withMessage(chats []Chat, i int, msg Message) []Chat {
	chat := chats[i]

	messages := make([]Message, len(chat.Messages), len(chat.Messages)+1)
	copy(messages, chat.Messages)
	messages = append(messages, msg)

	if len(chat.Messages) == 0 && msg.Role == RoleUser {
		chat.Title = DeriveTitle(msg.Content)
	}
	chat.Messages = messages
	chat.Timestamp = msg.Timestamp

	out := make([]Chat, len(chats))
	copy(out, chats)
	out[i] = chat
	return out
}

func indexOfChat(chats []Chat, id string) int {
	for i, chat := range chats {
		if chat.ID == id {
			return i
		}
	}
	return -1
}
