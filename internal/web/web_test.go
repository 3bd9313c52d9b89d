package web

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGameErrorEscapesMessage(t *testing.T) {
	var buf bytes.Buffer
	data := NewGameErrorData("<B>")
	if err := GameError(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	if strings.Contains(html, "<B>") {
		t.Fatalf("expected code to be escaped, got %s", html)
	}
	if !strings.Contains(html, "does not exist or is no longer active") {
		t.Fatalf("expected error message, got %s", html)
	}
	if !strings.Contains(html, `href="/"`) {
		t.Fatalf("expected back link, got %s", html)
	}
}

func TestEscapeURLRejectsExternalTargets(t *testing.T) {
	if got := escapeURL("https://example.com"); got != "/" {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := escapeURL("/games/ABC123"); got != "/games/ABC123" {
		t.Fatalf("expected path kept, got %s", got)
	}
}
