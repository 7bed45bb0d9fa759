package internal

import (
	"context"
	"sync"
)

// Change is a set of state field groups touched by one mutation
type Change uint8

const (
	ChangeChats Change = 1 << iota
	ChangeCurrentChat
	ChangeModels
	ChangeCurrentModel
	ChangeSettings
)

// Has reports whether any group in other is part of c
func (c Change) Has(other Change) bool {
	return c&other != 0
}

// State is an immutable snapshot of the studio. Slices in a published
// snapshot are never written to again; mutations build new ones.
type State struct {
	Chats         []Chat
	CurrentChatID string // empty when no chat is selected
	Models        []Model
	CurrentModel  string // empty when no default model is set
	Settings      Settings
}

// Chat resolves id against the chat list
func (s State) Chat(id string) (Chat, bool) {
	if i := indexOfChat(s.Chats, id); i >= 0 {
		return s.Chats[i], true
	}
	return Chat{}, false
}

// CurrentChat resolves the current chat selection
func (s State) CurrentChat() (Chat, bool) {
	if s.CurrentChatID == "" {
		return Chat{}, false
	}
	return s.Chat(s.CurrentChatID)
}

// Model resolves id against the catalog
func (s State) Model(id string) (Model, bool) {
	if i := indexOfModel(s.Models, id); i >= 0 {
		return s.Models[i], true
	}
	return Model{}, false
}

// CurrentModelData resolves the default model selection
func (s State) CurrentModelData() (Model, bool) {
	if s.CurrentModel == "" {
		return Model{}, false
	}
	return s.Model(s.CurrentModel)
}

// InstalledModels lists installed models in catalog order
func (s State) InstalledModels() []Model {
	var out []Model
	for _, m := range s.Models {
		if m.Installed {
			out = append(out, m)
		}
	}
	return out
}

// Listener is notified after a mutation commits. Listeners run one at a
// time in commit order and must not call back into the Store.
type Listener func(prev, next State, changed Change)

type subscription struct {
	id int
	fn Listener
}

// Store holds the canonical state. All mutations are serialized.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []subscription
	nextID    int

	notifyMu sync.Mutex
}

// NewStore creates a store holding initial
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// update applies fn to the current state. fn returns the next state and
// the groups it changed; a zero Change discards the result and notifies
// no one. Listeners are invoked after the new state is visible.
func (s *Store) update(fn func(State) (State, Change)) Change {
	s.mu.Lock()
	prev := s.state
	next, changed := fn(prev)
	if changed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.state = next
	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)

	// Taking notifyMu before releasing mu keeps notifications in commit order.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, sub := range listeners {
		sub.fn(prev, next, changed)
	}
	return changed
}

// WaitFor blocks until cond holds for the current state or a later one.
func (s *Store) WaitFor(ctx context.Context, cond func(State) bool) (State, error) {
	matched := make(chan State, 1)
	unsubscribe := s.Subscribe(func(_, next State, _ Change) {
		if cond(next) {
			select {
			case matched <- next:
			default:
			}
		}
	})
	defer unsubscribe()

	if st := s.State(); cond(st) {
		return st, nil
	}

	select {
	case st := <-matched:
		return st, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}
