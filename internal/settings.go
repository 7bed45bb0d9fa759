package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"dario.cat/mergo"
)

// Settings are the user preferences
type Settings struct {
	Theme            string `json:"theme" yaml:"theme"`
	Language         string `json:"language" yaml:"language"`
	DefaultModel     string `json:"defaultModel" yaml:"defaultModel"`
	MaxRAMUsage      int    `json:"maxRamUsage" yaml:"maxRamUsage"`
	PreferSmaller    bool   `json:"preferSmaller" yaml:"preferSmaller"`
	GPUAcceleration  bool   `json:"gpuAcceleration" yaml:"gpuAcceleration"`
	StorageUsed      string `json:"storageUsed" yaml:"storageUsed"`
	StorageAvailable string `json:"storageAvailable" yaml:"storageAvailable"`
	AnonymousStats   bool   `json:"anonymousStats" yaml:"anonymousStats"`
}

// SettingsPatch is a partial settings update; nil fields are left alone
type SettingsPatch struct {
	Theme            *string `json:"theme,omitempty"`
	Language         *string `json:"language,omitempty"`
	DefaultModel     *string `json:"defaultModel,omitempty"`
	MaxRAMUsage      *int    `json:"maxRamUsage,omitempty"`
	PreferSmaller    *bool   `json:"preferSmaller,omitempty"`
	GPUAcceleration  *bool   `json:"gpuAcceleration,omitempty"`
	StorageUsed      *string `json:"storageUsed,omitempty"`
	StorageAvailable *string `json:"storageAvailable,omitempty"`
	AnonymousStats   *bool   `json:"anonymousStats,omitempty"`
}

// SettingsManager applies partial settings updates
type SettingsManager struct {
	store *Store
}

// NewSettingsManager creates a SettingsManager over store
func NewSettingsManager(store *Store) *SettingsManager {
	return &SettingsManager{store: store}
}

// Settings returns the current settings
func (m *SettingsManager) Settings() Settings {
	return m.store.State().Settings
}

// UpdateSettings shallow-merges patch into the current settings. Values
// are not range checked; that is the caller's concern.
func (m *SettingsManager) UpdateSettings(patch SettingsPatch) error {
	var err error
	m.store.update(func(s State) (State, Change) {
		merged, mergeErr := MergeSettings(s.Settings, patch)
		if mergeErr != nil {
			err = mergeErr
			return s, 0
		}
		if merged == s.Settings {
			return s, 0
		}
		s.Settings = merged
		return s, ChangeSettings
	})
	if err != nil {
		LogWarn("Rejected settings update: %v", err)
		return err
	}
	return nil
}

// MergeSettings overlays the fields present in patch onto base
func MergeSettings(base Settings, patch SettingsPatch) (Settings, error) {
	dst, err := toFieldMap(base)
	if err != nil {
		return base, err
	}
	src, err := toFieldMap(patch)
	if err != nil {
		return base, err
	}

	// Map merging with override copies zero values too, so a patch can
	// switch a flag off.
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return base, fmt.Errorf("failed to merge settings: %w", err)
	}

	data, err := json.Marshal(dst)
	if err != nil {
		return base, fmt.Errorf("failed to encode settings: %w", err)
	}
	var merged Settings
	if err := json.Unmarshal(data, &merged); err != nil {
		return base, &ParseError{Source: "settings", Key: "merge", Err: err}
	}
	return merged, nil
}

func toFieldMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	fields := make(map[string]interface{})
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return fields, nil
}

// ParseSettingsPatch builds a patch from key=value pairs using the JSON
// field names, e.g. "theme=dark" or "maxRamUsage=60".
func ParseSettingsPatch(pairs []string) (SettingsPatch, error) {
	var patch SettingsPatch
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return SettingsPatch{}, &ParseError{Source: "settings", Key: pair, Err: fmt.Errorf("expected key=value")}
		}
		if err := applyPatchField(&patch, key, strings.TrimSpace(value)); err != nil {
			return SettingsPatch{}, err
		}
	}
	return patch, nil
}

// applyPatchField decodes value as JSON when it is valid JSON for the
// field and as a plain string otherwise.
func applyPatchField(patch *SettingsPatch, key, value string) error {
	keyJSON, _ := json.Marshal(key)
	valueJSON, _ := json.Marshal(value)

	candidates := [][]byte{
		[]byte(fmt.Sprintf("{%s:%s}", keyJSON, value)),
		[]byte(fmt.Sprintf("{%s:%s}", keyJSON, valueJSON)),
	}

	var lastErr error
	for _, doc := range candidates {
		dec := json.NewDecoder(bytes.NewReader(doc))
		dec.DisallowUnknownFields()
		var field SettingsPatch
		if err := dec.Decode(&field); err != nil {
			lastErr = err
			continue
		}
		// Decoding into the existing patch only sets the field named in doc.
		return json.Unmarshal(doc, patch)
	}
	return &ParseError{Source: "settings", Key: key, Err: lastErr}
}
