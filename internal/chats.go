package internal

import (
	"github.com/iksnae/llm-studio/internal/clock"
)

// ChatManager owns chat creation, deletion, selection and message appends
type ChatManager struct {
	store *Store
	clock clock.Clock
}

// NewChatManager creates a ChatManager over store
func NewChatManager(store *Store, clk clock.Clock) *ChatManager {
	return &ChatManager{store: store, clock: clk}
}

// Chats returns the chat list, newest first
func (m *ChatManager) Chats() []Chat {
	return m.store.State().Chats
}

// Chat resolves a chat by id
func (m *ChatManager) Chat(id string) (Chat, bool) {
	return m.store.State().Chat(id)
}

// CurrentChat resolves the selected chat. It reports false when nothing is
// selected or the selection no longer exists.
func (m *ChatManager) CurrentChat() (Chat, bool) {
	return m.store.State().CurrentChat()
}

// CreateChat inserts an empty chat at the head of the list and selects it
func (m *ChatManager) CreateChat() Chat {
	chat := newChat(m.clock.Now())
	m.store.update(func(s State) (State, Change) {
		chats := make([]Chat, 0, len(s.Chats)+1)
		chats = append(chats, chat)
		s.Chats = append(chats, s.Chats...)
		s.CurrentChatID = chat.ID
		return s, ChangeChats | ChangeCurrentChat
	})
	LogDebug("Created chat %s", chat.ID)
	return chat
}

// AddMessage appends msg to the chat
func (m *ChatManager) AddMessage(chatID string, msg Message) error {
	found := false
	m.store.update(func(s State) (State, Change) {
		i := indexOfChat(s.Chats, chatID)
		if i < 0 {
			return s, 0
		}
		found = true
		s.Chats = withMessage(s.Chats, i, msg)
		return s, ChangeChats
	})
	if !found {
		LogWarn("Dropped message %s: chat %s does not exist", msg.ID, chatID)
		return chatNotFound(chatID)
	}
	return nil
}

// DeleteChat removes the chat, clearing the selection if it pointed there
func (m *ChatManager) DeleteChat(chatID string) error {
	changed := m.store.update(func(s State) (State, Change) {
		i := indexOfChat(s.Chats, chatID)
		if i < 0 {
			return s, 0
		}
		chats := make([]Chat, 0, len(s.Chats)-1)
		chats = append(chats, s.Chats[:i]...)
		s.Chats = append(chats, s.Chats[i+1:]...)

		change := ChangeChats
		if s.CurrentChatID == chatID {
			s.CurrentChatID = ""
			change |= ChangeCurrentChat
		}
		return s, change
	})
	if changed == 0 {
		LogWarn("Cannot delete chat %s: not found", chatID)
		return chatNotFound(chatID)
	}
	LogDebug("Deleted chat %s", chatID)
	return nil
}

// SelectChat makes chatID the current chat
func (m *ChatManager) SelectChat(chatID string) error {
	found := false
	m.store.update(func(s State) (State, Change) {
		if indexOfChat(s.Chats, chatID) < 0 {
			return s, 0
		}
		found = true
		if s.CurrentChatID == chatID {
			return s, 0
		}
		s.CurrentChatID = chatID
		return s, ChangeCurrentChat
	})
	if !found {
		LogWarn("Cannot select chat %s: not found", chatID)
		return chatNotFound(chatID)
	}
	return nil
}
