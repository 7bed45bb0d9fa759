package internal

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/llm-studio/internal/clock"
	"github.com/iksnae/llm-studio/testutil"
)

func openTestStudio(t *testing.T, kv KV) (*Studio, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(testTime)
	s, err := Open(context.Background(), kv, Options{
		Clock: clk,
		Rand:  rand.New(rand.NewSource(testSeed)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, clk
}

func TestOpen_SeedsFreshStore(t *testing.T) {
	kv := newMemoryKV(nil)
	s, _ := openTestStudio(t, kv)

	assert.Equal(t, PersistedKeys, s.Report.Seeded())
	assert.ElementsMatch(t, PersistedKeys, kv.takeWrites(), "seed values are written immediately")
	assert.Len(t, s.Chats.Chats(), 3)
	assert.Len(t, s.Models.Models(), 6)
	assert.Equal(t, DefaultSettings(), s.Settings.Settings())
}

func TestOpen_RepairsDanglingDefaultModel(t *testing.T) {
	kv := newMemoryKV(map[string]string{KeyCurrentModel: `"ghost"`})
	s, _ := openTestStudio(t, kv)

	current, ok := s.Models.CurrentModel()
	require.True(t, ok)
	assert.Equal(t, DefaultModelID, current.ID)
	raw, _ := kv.value(KeyCurrentModel)
	assert.Equal(t, `"llama-3-8b"`, raw)
}

func TestOpen_ReadFailureKeepsStoredData(t *testing.T) {
	stored := `[{"id":"chat-9","title":"Keep me","timestamp":"2024-03-01T12:00:00Z","messages":[]}]`
	kv := newMemoryKV(map[string]string{KeyChats: stored})
	kv.failGet = errors.New("database is locked")

	s, err := Open(context.Background(), kv, Options{Clock: clock.NewFake(testTime)})
	require.NoError(t, err)
	assert.Equal(t, EntryUnreadable, s.Report[KeyChats])
	assert.Empty(t, kv.takeWrites())

	require.NoError(t, s.Close(context.Background()))
	raw, _ := kv.value(KeyChats)
	assert.Equal(t, stored, raw)
}

func TestStudio_SendCreatesChatWhenNoneSelected(t *testing.T) {
	s, clk := openTestStudio(t, newMemoryKV(nil))

	chat, err := s.Send("  How do I bake bread?  ")
	require.NoError(t, err)

	assert.Equal(t, "How do I bake bread?", chat.Title)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "How do I bake bread?", chat.Messages[0].Content)
	assert.Len(t, s.Chats.Chats(), 4)
	current, ok := s.Chats.CurrentChat()
	require.True(t, ok)
	assert.Equal(t, chat.ID, current.ID)
	assert.True(t, s.Responder.Pending(chat.ID))

	clk.Advance(DefaultResponseLatency)
	chat, _ = s.Chats.Chat(chat.ID)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, RoleAssistant, chat.Messages[1].Role)
}

func TestStudio_SendUsesCurrentChat(t *testing.T) {
	s, _ := openTestStudio(t, newMemoryKV(nil))
	require.NoError(t, s.Chats.SelectChat("chat-2"))

	chat, err := s.Send("follow up")
	require.NoError(t, err)

	assert.Equal(t, "chat-2", chat.ID)
	assert.Equal(t, "Explain quantum computing", chat.Title)
	assert.Len(t, s.Chats.Chats(), 3)
}

func TestStudio_SendRejectsEmpty(t *testing.T) {
	s, _ := openTestStudio(t, newMemoryKV(nil))

	_, err := s.Send(" \n\t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, s.Chats.Chats(), 3, "an empty send must not create a chat")
}

func TestStudio_SendRejectsWhilePending(t *testing.T) {
	s, clk := openTestStudio(t, newMemoryKV(nil))

	chat, err := s.Send("first")
	require.NoError(t, err)

	_, err = s.Send("second")
	assert.ErrorIs(t, err, ErrGenerationPending)

	got, _ := s.Chats.Chat(chat.ID)
	assert.Len(t, got.Messages, 1, "the rejected message is not appended")

	clk.Advance(DefaultResponseLatency)
	got, _ = s.Chats.Chat(chat.ID)
	assert.Len(t, got.Messages, 2)

	_, err = s.Send("second")
	assert.NoError(t, err)
}

func TestStudio_SendTo(t *testing.T) {
	s, _ := openTestStudio(t, newMemoryKV(nil))

	chat, err := s.SendTo("chat-3", "with frosting?")
	require.NoError(t, err)
	assert.Equal(t, "chat-3", chat.ID)
	assert.Equal(t, "chat-3", s.Store.State().CurrentChatID)

	_, err = s.SendTo("chat-404", "hello")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestStudio_DeleteDuringGeneration(t *testing.T) {
	s, clk := openTestStudio(t, newMemoryKV(nil))

	chat, err := s.Send("doomed")
	require.NoError(t, err)
	require.NoError(t, s.Chats.DeleteChat(chat.ID))

	clk.Advance(DefaultResponseLatency)
	_, ok := s.Chats.Chat(chat.ID)
	assert.False(t, ok, "a reply must not resurrect a deleted chat")
	assert.Len(t, s.Chats.Chats(), 3)
}

func TestStudio_AwaitReply(t *testing.T) {
	s, clk := openTestStudio(t, newMemoryKV(nil))
	chat, err := s.Send("are you there?")
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		clk.Advance(DefaultResponseLatency)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := s.AwaitReply(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleAssistant, got.Messages[1].Role)
}

func TestStudio_AwaitInstall(t *testing.T) {
	s, clk := openTestStudio(t, newMemoryKV(nil))
	require.NoError(t, s.Models.InstallModel("phi-3-mini"))

	go func() {
		time.Sleep(50 * time.Millisecond)
		clk.Advance(10 * DefaultTickInterval)
	}()

	var seen []int
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m, err := s.AwaitInstall(ctx, "phi-3-mini", func(m Model) {
		seen = append(seen, m.DownloadProgress)
	})
	require.NoError(t, err)

	assert.True(t, m.Installed)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 0}, seen)
}

func TestStudio_ReopenRestoresState(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(testutil.CreateTempDir(t), "studio.db")

	storage, err := OpenStorage(ctx, dbPath)
	require.NoError(t, err)
	clk := clock.NewFake(testTime)
	s, err := Open(ctx, storage, Options{Clock: clk})
	require.NoError(t, err)

	chat, err := s.Send("remember this")
	require.NoError(t, err)
	clk.Advance(DefaultResponseLatency)
	require.NoError(t, s.Models.SetDefaultModel("mistral-7b"))
	require.NoError(t, s.Close(ctx))

	storage, err = OpenStorage(ctx, dbPath)
	require.NoError(t, err)
	reopened, err := Open(ctx, storage, Options{Clock: clock.NewFake(testTime)})
	require.NoError(t, err)
	defer reopened.Close(ctx)

	assert.Empty(t, reopened.Report.Seeded())
	got, ok := reopened.Chats.Chat(chat.ID)
	require.True(t, ok)
	assert.Equal(t, "remember this", got.Title)
	assert.Len(t, got.Messages, 2)
	current, ok := reopened.Models.CurrentModel()
	require.True(t, ok)
	assert.Equal(t, "mistral-7b", current.ID)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 5
	cfg.TickInterval = time.Millisecond

	a := OptionsFromConfig(cfg)
	b := OptionsFromConfig(cfg)

	assert.Equal(t, time.Millisecond, a.TickInterval)
	assert.Equal(t, a.Rand.Int63(), b.Rand.Int63(), "the same seed gives the same sequence")
}
