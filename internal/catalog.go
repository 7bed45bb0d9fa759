package internal

import (
	"strings"

	"github.com/scylladb/go-set/strset"
)

// Compatibility is a static rating of how well a model suits the device
type Compatibility string

const (
	CompatibilityGreat        Compatibility = "great"
	CompatibilityGood         Compatibility = "good"
	CompatibilityHeavy        Compatibility = "heavy"
	CompatibilityIncompatible Compatibility = "incompatible"
)

// Label is the short description shown next to the rating
func (c Compatibility) Label() string {
	switch c {
	case CompatibilityGreat:
		return "Runs great"
	case CompatibilityGood:
		return "Should work well"
	case CompatibilityHeavy:
		return "Might be slow"
	default:
		return "Too big for device"
	}
}

// ModelType is the intended use of a model
type ModelType string

const (
	ModelTypeChat   ModelType = "chat"
	ModelTypeCoding ModelType = "coding"
)

// ModelSize is a coarse size bucket
type ModelSize string

const (
	ModelSizeSmall  ModelSize = "small"
	ModelSizeMedium ModelSize = "medium"
	ModelSizeLarge  ModelSize = "large"
)

// FilterAll disables a size or type filter
const FilterAll = "all"

// Model is a catalog entry for an installable local model
type Model struct {
	ID               string        `json:"id" yaml:"id"`
	Name             string        `json:"name" yaml:"name"`
	Source           string        `json:"source" yaml:"source"`
	Tags             []string      `json:"tags" yaml:"tags"`
	DownloadSize     string        `json:"downloadSize" yaml:"downloadSize"`
	RAMNeeded        string        `json:"ramNeeded" yaml:"ramNeeded"`
	Compatibility    Compatibility `json:"compatibility" yaml:"compatibility"`
	Installed        bool          `json:"installed" yaml:"installed"`
	DownloadProgress int           `json:"downloadProgress" yaml:"downloadProgress"`
	Type             ModelType     `json:"type" yaml:"type"`
	Size             ModelSize     `json:"size" yaml:"size"`
}

// Installable reports whether the UI should offer the install action.
// The lifecycle manager itself never consults this.
func (m Model) Installable() bool {
	return m.Compatibility == CompatibilityGreat || m.Compatibility == CompatibilityGood
}

// ShortName is the first three words of the name, as shown in model pickers
func (m Model) ShortName() string {
	words := strings.Fields(m.Name)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

// DeviceInfo is the static description of the host shown on the models page
type DeviceInfo struct {
	RAM            string `json:"ram"`
	VRAM           string `json:"vram"`
	Recommendation string `json:"recommendation"`
}

// ModelFilter selects models from the catalog
type ModelFilter struct {
	Query string    // case-insensitive substring of name or any tag
	Size  ModelSize // exact match; empty or "all" matches everything
	Type  ModelType // exact match; empty or "all" matches everything
}

// Matches reports whether m passes every part of the filter
func (f ModelFilter) Matches(m Model) bool {
	if f.Size != "" && f.Size != FilterAll && m.Size != f.Size {
		return false
	}
	if f.Type != "" && f.Type != FilterAll && m.Type != f.Type {
		return false
	}
	if f.Query == "" {
		return true
	}

	query := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(m.Name), query) {
		return true
	}
	for _, tag := range m.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// FilterModels returns the models matching f, in catalog order
func FilterModels(models []Model, f ModelFilter) []Model {
	out := make([]Model, 0, len(models))
	for _, m := range models {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// NormalizeTags collapses duplicate tags, keeping the first occurrence
func NormalizeTags(tags []string) []string {
	seen := strset.NewWithSize(len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if seen.Has(tag) {
			continue
		}
		seen.Add(tag)
		out = append(out, tag)
	}
	return out
}

func indexOfModel(models []Model, id string) int {
	for i, m := range models {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// withModel returns a copy of models with models[i] replaced by m
func withModel(models []Model, i int, m Model) []Model {
	out := make([]Model, len(models))
	copy(out, models)
	out[i] = m
	return out
}
