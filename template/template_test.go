package template

import (
	"testing"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		template string
		store    map[string]any
		expected string
		wantErr  bool
	}{
		{
			name:     "snapshot command expansion",
			template: "render --width {{width}} --height {{height}} -o {{output}} < {{html}}",
			store: map[string]any{
				"html":   "/tmp/slide.html",
				"output": "/tmp/slide.png",
				"width":  1024,
				"height": 576,
			},
			expected: "render --width 1024 --height 576 -o /tmp/slide.png < /tmp/slide.html",
		},
		{
			name:     "no placeholders",
			template: "chromium --headless",
			store:    map[string]any{"html": "x"},
			expected: "chromium --headless",
		},
		{
			name:     "whitespace inside braces",
			template: "{{ output }}",
			store:    map[string]any{"output": "/tmp/out.png"},
			expected: "/tmp/out.png",
		},
		{
			name:     "ternary fallback",
			template: `{{theme == "" ? "default" : theme}}`,
			store:    map[string]any{"theme": ""},
			expected: "default",
		},
		{
			name:     "arithmetic",
			template: "{{width * 2}}",
			store:    map[string]any{"width": 512},
			expected: "1024",
		},
		{
			name:     "comparison result",
			template: "{{page > 10}}",
			store:    map[string]any{"page": 3},
			expected: "false",
		},
		{
			name:     "nested map access",
			template: "{{env.HOME}}",
			store:    map[string]any{"env": map[string]string{"HOME": "/home/user"}},
			expected: "/home/user",
		},
		{
			name:     "undeclared variable",
			template: "{{missing}}",
			store:    map[string]any{"html": "x"},
			wantErr:  true,
		},
		{
			name:     "malformed expression",
			template: "{{width == }}",
			store:    map[string]any{"width": 1},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.template, tt.store)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.expected {
				t.Errorf("Expand() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCreateCELEnv(t *testing.T) {
	store := map[string]any{
		"title": "deck",
		"page":  1,
		"skip":  false,
		"env":   map[string]string{"HOME": "/home/user"},
	}
	env, err := createCELEnv(store)
	if err != nil {
		t.Fatalf("createCELEnv() error = %v", err)
	}
	if _, issues := env.Compile(`title + " " + env.HOME`); issues != nil && issues.Err() != nil {
		t.Errorf("failed to compile expression: %v", issues.Err())
	}
}
