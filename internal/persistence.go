package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Persisted keys
const (
	KeyChats        = "chats"
	KeyModels       = "models"
	KeySettings     = "settings"
	KeyCurrentModel = "currentModel"
)

// PersistedKeys lists every key in load order
var PersistedKeys = []string{KeyChats, KeyModels, KeySettings, KeyCurrentModel}

// KV is a durable string key-value store
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// EntryStatus describes how a persisted entry was restored
type EntryStatus string

const (
	EntryLoaded     EntryStatus = "loaded"
	EntryMissing    EntryStatus = "missing"    // seed value used
	EntryCorrupt    EntryStatus = "corrupt"    // seed value used
	EntryUnreadable EntryStatus = "unreadable" // seed value used, stored value left alone
)

// LoadReport maps each persisted key to how it was restored
type LoadReport map[string]EntryStatus

// Seeded lists the keys whose stored value should be replaced by seed
// data, in load order. Unreadable keys are not included.
func (r LoadReport) Seeded() []string {
	var keys []string
	for _, key := range PersistedKeys {
		if r[key] == EntryMissing || r[key] == EntryCorrupt {
			keys = append(keys, key)
		}
	}
	return keys
}

// Persistence loads state from a KV and writes changes back to it
type Persistence struct {
	kv KV

	mu sync.Mutex
	// unread holds keys that could not be read at load. They are only
	// written once the state behind them changes.
	unread Change
}

// NewPersistence creates a Persistence over kv
func NewPersistence(kv KV) *Persistence {
	return &Persistence{kv: kv}
}

// Load restores the persisted state. A missing or undecodable entry is
// replaced by its seed value; Load itself never fails.
func (p *Persistence) Load(ctx context.Context, now time.Time) (State, LoadReport) {
	state := SeedState(now)
	report := make(LoadReport, len(PersistedKeys))

	report[KeyChats] = p.loadEntry(ctx, KeyChats, func(raw string) error {
		chats, err := decodeChats(raw)
		if err == nil {
			state.Chats = chats
		}
		return err
	})
	report[KeyModels] = p.loadEntry(ctx, KeyModels, func(raw string) error {
		models, err := decodeModels(raw)
		if err == nil {
			state.Models = models
		}
		return err
	})
	report[KeySettings] = p.loadEntry(ctx, KeySettings, func(raw string) error {
		settings, err := decodeSettings(raw)
		if err == nil {
			state.Settings = settings
		}
		return err
	})
	report[KeyCurrentModel] = p.loadEntry(ctx, KeyCurrentModel, func(raw string) error {
		var id string
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			return err
		}
		if id != "" {
			state.CurrentModel = id
		}
		return nil
	})

	if _, ok := state.Model(state.CurrentModel); !ok {
		fallback := DefaultModelID
		if indexOfModel(state.Models, fallback) < 0 {
			fallback = fallbackDefault(state.Models, "")
		}
		LogWarn("Stored default model %q is not in the catalog, using %q", state.CurrentModel, fallback)
		state.CurrentModel = fallback
		if report[KeyCurrentModel] == EntryLoaded {
			report[KeyCurrentModel] = EntryCorrupt
		}
	}

	var unread []string
	for _, key := range PersistedKeys {
		if report[key] == EntryUnreadable {
			unread = append(unread, key)
		}
	}
	p.mu.Lock()
	p.unread = changeForKeys(unread)
	p.mu.Unlock()

	return state, report
}

func (p *Persistence) loadEntry(ctx context.Context, key string, decode func(string) error) EntryStatus {
	raw, ok, err := p.kv.Get(ctx, key)
	if err != nil {
		LogWarn("Failed to read %s, using defaults: %v", key, err)
		return EntryUnreadable
	}
	if !ok {
		LogDebug("No stored %s, using defaults", key)
		return EntryMissing
	}
	if err := decode(raw); err != nil {
		LogWarn("Stored %s is corrupt, using defaults: %v", key, &ParseError{Source: TableName, Key: key, Err: err})
		return EntryCorrupt
	}
	return EntryLoaded
}

// CheckEntry decodes a raw stored value the same way Load does and
// returns the decode error, if any
func CheckEntry(key, raw string) error {
	var err error
	switch key {
	case KeyChats:
		_, err = decodeChats(raw)
	case KeyModels:
		_, err = decodeModels(raw)
	case KeySettings:
		_, err = decodeSettings(raw)
	case KeyCurrentModel:
		var id string
		err = json.Unmarshal([]byte(raw), &id)
	default:
		err = fmt.Errorf("unknown key")
	}
	if err != nil {
		return &ParseError{Source: TableName, Key: key, Err: err}
	}
	return nil
}

func decodeChats(raw string) ([]Chat, error) {
	var chats []Chat
	if err := json.Unmarshal([]byte(raw), &chats); err != nil {
		return nil, err
	}
	if chats == nil {
		return nil, errors.New("chat list is null")
	}
	for i := range chats {
		if chats[i].ID == "" {
			return nil, fmt.Errorf("chat %d has no id", i)
		}
		if chats[i].Messages == nil {
			chats[i].Messages = []Message{}
		}
	}
	return chats, nil
}

// decodeModels also normalizes: tags are deduplicated and a download
// interrupted by a restart starts over.
func decodeModels(raw string) ([]Model, error) {
	var models []Model
	if err := json.Unmarshal([]byte(raw), &models); err != nil {
		return nil, err
	}
	if models == nil {
		return nil, errors.New("model list is null")
	}
	for i := range models {
		if models[i].ID == "" {
			return nil, fmt.Errorf("model %d has no id", i)
		}
		models[i].Tags = NormalizeTags(models[i].Tags)
		if !models[i].Installed && models[i].DownloadProgress != 0 {
			LogInfo("Resetting interrupted download of %s", models[i].ID)
		}
		models[i].DownloadProgress = 0
	}
	return models, nil
}

// decodeSettings starts from the defaults so entries written by older
// versions pick up fields they lack
func decodeSettings(raw string) (Settings, error) {
	if raw == "null" {
		return Settings{}, errors.New("settings are null")
	}
	settings := DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Attach persists every committed change to the store. Only the changed
// keys are written. Write failures are logged and dropped.
func (p *Persistence) Attach(store *Store) (detach func()) {
	return store.Subscribe(func(_, next State, changed Change) {
		p.mu.Lock()
		p.unread &^= changed
		p.mu.Unlock()
		if err := p.write(context.Background(), next, changed); err != nil {
			LogError("Failed to persist state: %v", err)
		}
	})
}

// Flush writes every key except those that could not be read at load and
// have not changed since
func (p *Persistence) Flush(ctx context.Context, state State) error {
	p.mu.Lock()
	skip := p.unread
	p.mu.Unlock()
	return p.write(ctx, state, (ChangeChats|ChangeModels|ChangeSettings|ChangeCurrentModel)&^skip)
}

func (p *Persistence) write(ctx context.Context, state State, changed Change) error {
	var errs []error
	if changed.Has(ChangeChats) {
		chats := state.Chats
		if chats == nil {
			chats = []Chat{}
		}
		errs = append(errs, p.set(ctx, KeyChats, chats))
	}
	if changed.Has(ChangeModels) {
		models := state.Models
		if models == nil {
			models = []Model{}
		}
		errs = append(errs, p.set(ctx, KeyModels, models))
	}
	if changed.Has(ChangeSettings) {
		errs = append(errs, p.set(ctx, KeySettings, state.Settings))
	}
	if changed.Has(ChangeCurrentModel) {
		errs = append(errs, p.set(ctx, KeyCurrentModel, state.CurrentModel))
	}
	return errors.Join(errs...)
}

func (p *Persistence) set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := p.kv.Set(ctx, key, string(data)); err != nil {
		return err
	}
	LogDebug("Persisted %s (%d bytes)", key, len(data))
	return nil
}
