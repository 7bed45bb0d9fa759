package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/llm-studio/internal"
)

func TestSend_CreatesChatAndPrintsReply(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "send", "How", "do", "I", "bake", "bread?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out, "How do I bake bread?") {
		t.Errorf("chat title missing from output:\n%s", out)
	}
	if !strings.Contains(out, "Assistant") {
		t.Errorf("reply missing from output:\n%s", out)
	}

	out, err = env.run(t, "chats", "show")
	if err != nil {
		t.Fatalf("chats show: %v", err)
	}
	if !strings.Contains(out, "2 message(s)") {
		t.Errorf("the new chat should hold the message and its reply:\n%s", out)
	}
}

func TestSend_ToSelectedChat(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "chats", "select", "chat-2"); err != nil {
		t.Fatalf("chats select: %v", err)
	}
	if _, err := env.run(t, "send", "and entanglement?"); err != nil {
		t.Fatalf("send: %v", err)
	}

	out, err := env.run(t, "chats", "list")
	if err != nil {
		t.Fatalf("chats list: %v", err)
	}
	if !strings.Contains(out, "3 chat(s)") {
		t.Errorf("send to the selected chat must not create a chat:\n%s", out)
	}

	out, err = env.run(t, "chats", "show", "chat-2")
	if err != nil {
		t.Fatalf("chats show: %v", err)
	}
	if !strings.Contains(out, "and entanglement?") {
		t.Errorf("message not appended to chat-2:\n%s", out)
	}
}

func TestSend_ChatFlag(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "send", "--chat", "chat-3", "with frosting?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out, "chat-3") {
		t.Errorf("reply should name chat-3:\n%s", out)
	}

	if _, err := env.run(t, "send", "--chat", "chat-404", "hello"); !errors.Is(err, internal.ErrChatNotFound) {
		t.Errorf("send to unknown chat: error = %v, want ErrChatNotFound", err)
	}
}

func TestSend_RejectsBlankMessage(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "send", "   "); !errors.Is(err, internal.ErrEmptyMessage) {
		t.Errorf("error = %v, want ErrEmptyMessage", err)
	}

	out, err := env.run(t, "chats", "list")
	if err != nil {
		t.Fatalf("chats list: %v", err)
	}
	if !strings.Contains(out, "3 chat(s)") {
		t.Errorf("a blank send must not create a chat:\n%s", out)
	}
}

func TestSend_RequiresText(t *testing.T) {
	if _, err := executeCommand("send"); err == nil {
		t.Error("send without a message should fail")
	}
}
