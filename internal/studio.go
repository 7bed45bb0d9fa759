package internal

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/iksnae/llm-studio/internal/clock"
)

// Options tune a Studio. Zero values select the defaults.
type Options struct {
	Clock           clock.Clock
	Rand            *rand.Rand
	TickInterval    time.Duration
	ProgressStep    int
	ResponseLatency time.Duration
}

// OptionsFromConfig builds Options from a loaded Config
func OptionsFromConfig(cfg Config) Options {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return Options{
		Rand:            rand.New(rand.NewSource(seed)),
		TickInterval:    cfg.TickInterval,
		ProgressStep:    cfg.ProgressStep,
		ResponseLatency: cfg.ResponseLatency,
	}
}

// Studio wires the store, its managers and persistence together
type Studio struct {
	Store     *Store
	Chats     *ChatManager
	Models    *ModelManager
	Responder *Responder
	Settings  *SettingsManager

	// Report records which persisted entries fell back to seed data
	Report LoadReport

	kv          KV
	persistence *Persistence
	detach      func()
	clock       clock.Clock
}

// Open restores state from kv and starts persisting changes back to it.
// Missing or corrupt entries are replaced by seed data immediately; entries
// that could not be read are left alone. The Studio owns kv and closes it
// in Close.
func Open(ctx context.Context, kv KV, opts Options) (*Studio, error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	persistence := NewPersistence(kv)
	state, report := persistence.Load(ctx, clk.Now())

	if seeded := report.Seeded(); len(seeded) > 0 {
		LogInfo("Seeding %s", strings.Join(seeded, ", "))
		if err := persistence.write(ctx, state, changeForKeys(seeded)); err != nil {
			return nil, fmt.Errorf("failed to write seed data: %w", err)
		}
	}

	store := NewStore(state)
	s := &Studio{
		Store:       store,
		Chats:       NewChatManager(store, clk),
		Models:      NewModelManager(store, clk, opts.TickInterval, opts.ProgressStep),
		Responder:   NewResponder(store, clk, opts.ResponseLatency, opts.Rand),
		Settings:    NewSettingsManager(store),
		Report:      report,
		kv:          kv,
		persistence: persistence,
		clock:       clk,
	}
	s.detach = persistence.Attach(store)
	return s, nil
}

// Send is the chat input: it trims text, targets the current chat (or a
// new one when none is selected), appends the user message and schedules
// the reply. It returns the chat as it was right after the user message.
func (s *Studio) Send(text string) (Chat, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Chat{}, ErrEmptyMessage
	}

	chat, ok := s.Chats.CurrentChat()
	if !ok {
		chat = s.Chats.CreateChat()
	}
	return s.sendTo(chat.ID, text)
}

// SendTo selects chatID and sends text to it
func (s *Studio) SendTo(chatID, text string) (Chat, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Chat{}, ErrEmptyMessage
	}
	if err := s.Chats.SelectChat(chatID); err != nil {
		return Chat{}, err
	}
	return s.sendTo(chatID, text)
}

func (s *Studio) sendTo(chatID, text string) (Chat, error) {
	if err := s.Responder.reserve(chatID); err != nil {
		return Chat{}, err
	}
	if err := s.Chats.AddMessage(chatID, NewUserMessage(text, s.clock.Now())); err != nil {
		s.Responder.release(chatID)
		return Chat{}, err
	}
	chat, _ := s.Chats.Chat(chatID)
	s.Responder.start(chatID, text)
	return chat, nil
}

// AwaitReply blocks until chatID has no pending reply and returns the
// chat. It fails if the chat is deleted while waiting.
func (s *Studio) AwaitReply(ctx context.Context, chatID string) (Chat, error) {
	st, err := s.Store.WaitFor(ctx, func(st State) bool {
		_, exists := st.Chat(chatID)
		return !exists || !s.Responder.Pending(chatID)
	})
	if err != nil {
		return Chat{}, err
	}
	chat, ok := st.Chat(chatID)
	if !ok {
		return Chat{}, chatNotFound(chatID)
	}
	return chat, nil
}

// AwaitInstall blocks until the download of id finishes or is cancelled
// and returns the model.
func (s *Studio) AwaitInstall(ctx context.Context, id string, progress func(Model)) (Model, error) {
	if progress != nil {
		unsubscribe := s.Store.Subscribe(func(prev, next State, changed Change) {
			if !changed.Has(ChangeModels) {
				return
			}
			before, _ := prev.Model(id)
			after, ok := next.Model(id)
			if ok && (after.DownloadProgress != before.DownloadProgress || after.Installed != before.Installed) {
				progress(after)
			}
		})
		defer unsubscribe()
	}

	st, err := s.Store.WaitFor(ctx, func(st State) bool {
		m, ok := st.Model(id)
		return !ok || m.Installed || !s.Models.Installing(id)
	})
	if err != nil {
		return Model{}, err
	}
	m, ok := st.Model(id)
	if !ok {
		return Model{}, modelNotFound(id)
	}
	return m, nil
}

// Close stops background work, flushes the final state and closes the KV
func (s *Studio) Close(ctx context.Context) error {
	s.Models.Shutdown()
	s.Responder.Shutdown()
	s.detach()

	flushErr := s.persistence.Flush(ctx, s.Store.State())
	if err := s.kv.Close(); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	return flushErr
}

func changeForKeys(keys []string) Change {
	var c Change
	for _, key := range keys {
		switch key {
		case KeyChats:
			c |= ChangeChats
		case KeyModels:
			c |= ChangeModels
		case KeySettings:
			c |= ChangeSettings
		case KeyCurrentModel:
			c |= ChangeCurrentModel
		}
	}
	return c
}
