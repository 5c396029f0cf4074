package sanitize

import (
	"strings"
	"testing"
)

func TestText_RemovesAllHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "script tag",
			input:    `Salsa <script>alert('xss')</script>Night`,
			expected: `Salsa Night`,
		},
		{
			name:     "inline event handler",
			input:    `<div onclick="alert('xss')">Bachata Social</div>`,
			expected: `Bachata Social`,
		},
		{
			name:     "mixed tags",
			input:    `<b>Studio</b> <i>Loft</i>`,
			expected: `Studio Loft`,
		},
		{
			name:     "ampersand kept",
			input:    `Salsa & Bachata`,
			expected: `Salsa & Bachata`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    `  NYC  `,
			expected: `NYC`,
		},
		{
			name:     "image tag with onerror",
			input:    `<img src=x onerror="alert('xss')">`,
			expected: ``,
		},
		{
			name:     "empty string",
			input:    ``,
			expected: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHTML_AllowsSafeFormatting(t *testing.T) {
	got := HTML(`<p>Bring <b>comfy shoes</b></p><script>alert(1)</script>`)
	if !strings.Contains(got, "<b>comfy shoes</b>") {
		t.Errorf("expected bold tag to survive, got %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("expected script to be removed, got %q", got)
	}
}

func TestHTML_RemovesEventHandlers(t *testing.T) {
	got := HTML(`<a href="https://example.com" onclick="steal()">tickets</a>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("expected onclick to be removed, got %q", got)
	}
	if !strings.Contains(got, "tickets") {
		t.Errorf("expected link text to survive, got %q", got)
	}
}

func TestOptional(t *testing.T) {
	if OptionalHTML(nil) != nil {
		t.Fatal("nil input should stay nil")
	}
	blank := `<script>x</script>`
	if OptionalHTML(&blank) != nil {
		t.Fatal("value that sanitizes to empty should become nil")
	}
	name := ` <b>Ana</b> `
	got := OptionalText(&name)
	if got == nil || *got != "Ana" {
		t.Fatalf("OptionalText = %v, want Ana", got)
	}
}
