package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/llm-studio/internal"
)

func TestModelsList(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "full catalog",
			args: []string{"models", "list"},
			want: []string{"6 model(s)", "llama-3-8b", "llama-70b", "default", "installed", "16 GB"},
		},
		{
			name:    "search",
			args:    []string{"models", "list", "--search", "code"},
			want:    []string{"1 model(s)", "codellama-13b"},
			notWant: []string{"gemma-7b"},
		},
		{
			name:    "size and type",
			args:    []string{"models", "list", "--size", "small", "--type", "chat"},
			want:    []string{"phi-3-mini"},
			notWant: []string{"mistral-7b"},
		},
		{
			name: "no match",
			args: []string{"models", "list", "--search", "vision"},
			want: []string{"No models match"},
		},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, tt.args...)
			if err != nil {
				t.Fatalf("models list: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(out, notWant) {
					t.Errorf("output should not contain %q:\n%s", notWant, out)
				}
			}
		})
	}
}

func TestModelsInstall(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "models", "install", "phi-3-mini")
	if err != nil {
		t.Fatalf("models install: %v", err)
	}
	if !strings.Contains(out, "Installed Phi-3 Mini 4K Instruct") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = env.run(t, "models", "install", "phi-3-mini")
	if err != nil {
		t.Fatalf("second install: %v", err)
	}
	if !strings.Contains(out, "already installed") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = env.run(t, "models", "storage")
	if err != nil {
		t.Fatalf("models storage: %v", err)
	}
	if !strings.Contains(out, "Phi-3 Mini 4K Instruct") {
		t.Errorf("installed model missing from storage report:\n%s", out)
	}
}

func TestModelsInstall_HeavyNeedsForce(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "models", "install", "llama-70b")
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("install of a heavy model without --force: error = %v", err)
	}

	if _, err := env.run(t, "models", "install", "--force", "llama-70b"); err != nil {
		t.Fatalf("forced install: %v", err)
	}
}

func TestModelsInstall_Unknown(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "models", "install", "gpt-9"); !errors.Is(err, internal.ErrModelNotFound) {
		t.Errorf("error = %v, want ErrModelNotFound", err)
	}
}

func TestModelsUninstallDefault(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "models", "uninstall", "llama-3-8b")
	if err != nil {
		t.Fatalf("models uninstall: %v", err)
	}
	if !strings.Contains(out, "Default model: Mistral 7B Instruct v0.2") {
		t.Errorf("default should move to the next installed model:\n%s", out)
	}

	out, err = env.run(t, "models", "uninstall", "mistral-7b")
	if err != nil {
		t.Fatalf("models uninstall: %v", err)
	}
	if !strings.Contains(out, "No default model set") {
		t.Errorf("no installed model should leave no default:\n%s", out)
	}
}

func TestModelsDefault(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "models", "default")
	if err != nil {
		t.Fatalf("models default: %v", err)
	}
	if !strings.Contains(out, "llama-3-8b") {
		t.Errorf("unexpected default: %q", out)
	}

	if _, err := env.run(t, "models", "default", "mistral-7b"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	out, err = env.run(t, "models", "default")
	if err != nil {
		t.Fatalf("models default: %v", err)
	}
	if !strings.Contains(out, "mistral-7b") {
		t.Errorf("default not persisted: %q", out)
	}

	if _, err := env.run(t, "models", "default", "gpt-9"); !errors.Is(err, internal.ErrModelNotFound) {
		t.Errorf("error = %v, want ErrModelNotFound", err)
	}
}

func TestModelsClearUnused(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "models", "clear-unused")
	if err != nil {
		t.Fatalf("models clear-unused: %v", err)
	}
	if !strings.Contains(out, "Removed mistral-7b") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = env.run(t, "models", "clear-unused")
	if err != nil {
		t.Fatalf("models clear-unused: %v", err)
	}
	if !strings.Contains(out, "Nothing to clear") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestModelsStorage(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "models", "storage")
	if err != nil {
		t.Fatalf("models storage: %v", err)
	}
	for _, want := range []string{"8.3 GB", "245 GB", "Llama 3 8B Instruct Q4_0", "Mistral 7B Instruct v0.2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
