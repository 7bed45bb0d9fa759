package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/llm-studio/internal"
	"github.com/iksnae/llm-studio/testutil"
)

func TestInspectCommand(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateSQLiteFixture(t, env.dbPath, map[string]string{
		internal.KeyChats:    "[]",
		internal.KeySettings: "null",
		"extra":              "hello",
	})

	out, err := env.run(t, "inspect", env.dbPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"3 entr(ies)", "chats", "valid", "settings", "corrupt", "extra"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCommand_JSON(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateSQLiteFixture(t, env.dbPath, map[string]string{
		internal.KeyCurrentModel: `"gemma-7b"`,
	})

	out, err := env.run(t, "inspect", "--format", "json", "--preview", "4")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	var entries []entrySummary
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.Key != internal.KeyCurrentModel || got.Status != "valid" || got.Bytes != 10 || got.Preview != `"gem...` {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestInspectCommand_Errors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "inspect"); err == nil {
		t.Error("inspect of a missing database should fail")
	}
	if _, err := env.run(t, "inspect", "--format", "xml", env.dbPath); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestSummarizeEntry(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		present bool
		want    entrySummary
	}{
		{
			name:    "valid entry",
			key:     internal.KeyChats,
			value:   "[]",
			present: true,
			want:    entrySummary{Key: internal.KeyChats, Bytes: 2, Status: "valid", Preview: "[]"},
		},
		{
			name:    "whitespace collapsed in preview",
			key:     "note",
			value:   "a\n\n  b",
			present: true,
			want:    entrySummary{Key: "note", Bytes: 6, Status: "other", Preview: "a b"},
		},
		{
			name: "null value",
			key:  internal.KeyModels,
			want: entrySummary{Key: internal.KeyModels, Status: "null"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizeEntry(tt.key, tt.value, tt.present, 80)
			if got != tt.want {
				t.Errorf("summarizeEntry() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
