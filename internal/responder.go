package internal

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/iksnae/llm-studio/internal/clock"
)

// DefaultResponseLatency is how long a simulated reply takes
const DefaultResponseLatency = time.Second

// generation is one pending reply. timer is nil between reserve and start.
type generation struct {
	timer clock.Timer
}

// Responder produces delayed synthetic assistant replies, at most one
// pending per chat.
type Responder struct {
	store   *Store
	clock   clock.Clock
	latency time.Duration

	mu      sync.Mutex
	rng     *rand.Rand
	pending map[string]*generation

	unsubscribe func()
}

// NewResponder creates a Responder. rng picks the reply template; pass a
// seeded source for reproducible output.
func NewResponder(store *Store, clk clock.Clock, latency time.Duration, rng *rand.Rand) *Responder {
	if latency <= 0 {
		latency = DefaultResponseLatency
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r := &Responder{
		store:   store,
		clock:   clk,
		latency: latency,
		rng:     rng,
		pending: make(map[string]*generation),
	}
	r.unsubscribe = store.Subscribe(r.onChange)
	return r
}

// Pending reports whether a reply is outstanding for chatID
func (r *Responder) Pending(chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[chatID]
	return ok
}

// Generate schedules a reply to userText in chatID
func (r *Responder) Generate(chatID, userText string) error {
	if err := r.reserve(chatID); err != nil {
		return err
	}
	r.start(chatID, userText)
	return nil
}

// Cancel drops the pending reply for chatID, if any
func (r *Responder) Cancel(chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked(chatID)
}

// Shutdown cancels every pending reply and stops watching the store
func (r *Responder) Shutdown() {
	r.unsubscribe()
	r.mu.Lock()
	defer r.mu.Unlock()
	for chatID := range r.pending {
		r.cancelLocked(chatID)
	}
}

// reserve claims the chat's generation slot without scheduling anything,
// so a caller can reject a send before touching the chat.
func (r *Responder) reserve(chatID string) error {
	if _, ok := r.store.State().Chat(chatID); !ok {
		return chatNotFound(chatID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.pending[chatID]; busy {
		LogWarn("Rejected send to chat %s: reply still pending", chatID)
		return ErrGenerationPending
	}
	r.pending[chatID] = &generation{}
	return nil
}

// release gives back a slot claimed by reserve that was never started
func (r *Responder) release(chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.pending[chatID]; ok && g.timer == nil {
		delete(r.pending, chatID)
	}
}

// start schedules the reply for a reserved slot. If the slot was cancelled
// in between (the chat was deleted) nothing is scheduled.
func (r *Responder) start(chatID, userText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.pending[chatID]
	if !ok || g.timer != nil {
		return
	}
	g.timer = r.clock.AfterFunc(r.latency, func() { r.complete(chatID, g, userText) })
	LogDebug("Scheduled reply for chat %s in %s", chatID, r.latency)
}

func (r *Responder) complete(chatID string, g *generation, userText string) {
	r.store.update(func(s State) (State, Change) {
		r.mu.Lock()
		live := r.pending[chatID] == g
		if live {
			delete(r.pending, chatID)
		}
		var content string
		if live {
			content = r.compose(userText, s)
		}
		r.mu.Unlock()

		if !live {
			return s, 0
		}
		i := indexOfChat(s.Chats, chatID)
		if i < 0 {
			LogDebug("Discarded reply for deleted chat %s", chatID)
			return s, 0
		}
		s.Chats = withMessage(s.Chats, i, NewAssistantMessage(content, r.clock.Now()))
		return s, ChangeChats
	})
}

// onChange cancels replies whose chat has been deleted
func (r *Responder) onChange(_, next State, changed Change) {
	if !changed.Has(ChangeChats) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for chatID := range r.pending {
		if indexOfChat(next.Chats, chatID) < 0 {
			r.cancelLocked(chatID)
		}
	}
}

func (r *Responder) cancelLocked(chatID string) {
	g, ok := r.pending[chatID]
	if !ok {
		return
	}
	if g.timer != nil {
		g.timer.Stop()
	}
	delete(r.pending, chatID)
	LogDebug("Cancelled reply for chat %s", chatID)
}

// compose picks a reply body. Caller holds r.mu.
func (r *Responder) compose(userText string, s State) string {
	templates := responseTemplates(userText, s)
	return templates[r.rng.Intn(len(templates))]
}

func responseTemplates(userText string, s State) []string {
	modelName := "current model"
	ramNeeded := "6 GB"
	if model, ok := s.CurrentModelData(); ok {
		modelName = model.Name
		ramNeeded = model.RAMNeeded
	}

	return []string{
		fmt.Sprintf("I understand your question about \"%s...\". Based on the %s, here's my response:\n\n"+
			"This is a simulated response running locally on your device. The actual LLM integration "+
			"would provide real-time responses based on your hardware capabilities.\n\n"+
			"**Key Points:**\n"+
			"- Processing happens entirely on your machine\n"+
			"- No data sent to external servers\n"+
			"- Response quality depends on model size and your hardware\n\n"+
			"Is there anything specific you'd like me to elaborate on?",
			firstRunes(userText, 30), modelName),
		fmt.Sprintf("That's an interesting question! Let me break this down for you:\n\n"+
			"1. **First consideration**: The topic you're asking about requires careful analysis\n"+
			"2. **Second point**: Local models provide privacy-first responses\n"+
			"3. **Third aspect**: Your %s RAM setup handles this well\n\n"+
			"Would you like me to dive deeper into any of these points?",
			ramNeeded),
		"Based on your query, here's what I can tell you:\n\n" +
			"```\nExample code or explanation\nwould appear here formatted\nappropriately for your question\n```\n\n" +
			"This demonstrates how code blocks are rendered. The response quality and speed depend on " +
			"your local model configuration.\n\n" +
			"**Note**: All processing is done locally for maximum privacy!",
	}
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
