package markdown

import (
	"strings"
	"testing"
)

func TestRenderHeading(t *testing.T) {
	r := NewRenderer()
	html, err := r.Render("# Bonjour")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "Bonjour") {
		t.Errorf("expected h1 with text, got %q", html)
	}
}

func TestRenderGFMTable(t *testing.T) {
	r := NewRenderer()
	html, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("expected a table, got %q", html)
	}
}

func TestRenderCodeFence(t *testing.T) {
	r := NewRenderer()
	html, err := r.Render("```go\nfmt.Println(\"hi\")\n```")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "<pre") {
		t.Errorf("expected highlighted pre block, got %q", html)
	}
}
