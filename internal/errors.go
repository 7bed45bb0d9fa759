package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every NotFoundError
	ErrNotFound = errors.New("not found")
	// ErrChatNotFound is returned for unknown chat ids
	ErrChatNotFound = &NotFoundError{Kind: "chat"}
	// ErrModelNotFound is returned for unknown model ids
	ErrModelNotFound = &NotFoundError{Kind: "model"}

	// ErrEmptyMessage rejects a send with no content
	ErrEmptyMessage = errors.New("message is empty")
	// ErrGenerationPending rejects a send while the chat still awaits a reply
	ErrGenerationPending = errors.New("a response is already being generated for this chat")
)

// NotFoundError reports a chat or model id that does not resolve
type NotFoundError struct {
	Kind string // "chat", "model"
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Is matches ErrNotFound and any NotFoundError of the same kind, so
// errors.Is(err, ErrChatNotFound) holds whatever the id.
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	t, ok := target.(*NotFoundError)
	return ok && t.Kind == e.Kind
}

func chatNotFound(id string) error {
	return &NotFoundError{Kind: "chat", ID: id}
}

func modelNotFound(id string) error {
	return &NotFoundError{Kind: "model", ID: id}
}

// StorageError represents errors reading or writing the key-value store
type StorageError struct {
	Path string
	Op   string // "open", "get", "set", "migrate"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents a stored entry or user input that could not be decoded
type ParseError struct {
	Source string // "studioKV", "settings", "config"
	Key    string // storage key, settings field or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
