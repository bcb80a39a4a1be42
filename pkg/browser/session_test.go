package browser

import (
	"strings"
	"testing"
)

func TestNewSessionID(t *testing.T) {
	tests := []struct {
		name       string
		adapter    string
		wantPrefix string
	}{
		{"plain adapter", "browserd", "browserd-"},
		{"spaces collapse", "web cli", "web-cli-"},
		{"specials sanitized", "ad@pter!", "ad-pter-"},
		{"empty falls back", "", "session-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := NewSessionID(tt.adapter)
			if !strings.HasPrefix(id, tt.wantPrefix) {
				t.Errorf("NewSessionID(%q) = %q, want prefix %q", tt.adapter, id, tt.wantPrefix)
			}
			if id != strings.ToLower(id) {
				t.Errorf("session ID should be lowercase: %q", id)
			}
		})
	}
}

func TestNewSessionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID("browserd")
		if seen[id] {
			t.Fatalf("duplicate session ID: %s", id)
		}
		seen[id] = true
	}
}

func TestNewSession(t *testing.T) {
	opts := SessionOptions{Headless: true, Port: 9000}
	session := NewSession("browserd", opts)

	if session.Adapter != "browserd" {
		t.Errorf("Adapter = %q, want browserd", session.Adapter)
	}
	if !session.Active() {
		t.Error("new session should be active")
	}
	if session.Ended() {
		t.Error("new session should not be ended")
	}
	if session.Connection == nil {
		t.Error("connection map should be initialized")
	}
	if session.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if session.Options.Port != 9000 {
		t.Errorf("Options.Port = %d, want 9000", session.Options.Port)
	}
}

func TestWithConnectionDoesNotMutateReceiver(t *testing.T) {
	original := NewSession("webcli", SessionOptions{})
	updated := original.WithConnection(ConnProfile, "work")

	if _, ok := original.Connection[ConnProfile]; ok {
		t.Error("original session was mutated")
	}
	if updated.Connection[ConnProfile] != "work" {
		t.Error("updated session missing connection value")
	}
	if updated.ID != original.ID {
		t.Error("connection change must not alter identity")
	}
}

func TestWithConnectionFromNilMap(t *testing.T) {
	var session Session
	updated := session.WithConnection(ConnBaseURL, "http://127.0.0.1:8377")
	if updated.Connection[ConnBaseURL] != "http://127.0.0.1:8377" {
		t.Error("connection value not set on zero session")
	}
}

func TestWithCurrentURL(t *testing.T) {
	session := NewSession("webcli", SessionOptions{})
	if _, ok := session.CurrentURL(); ok {
		t.Error("fresh session should have no current URL")
	}

	navigated := session.WithCurrentURL("https://example.com/a")
	url, ok := navigated.CurrentURL()
	if !ok || url != "https://example.com/a" {
		t.Errorf("CurrentURL = %q, %v", url, ok)
	}
	if _, ok := session.CurrentURL(); ok {
		t.Error("original session gained a current URL")
	}

	again := navigated.WithCurrentURL("https://example.com/b")
	if url, _ := again.CurrentURL(); url != "https://example.com/b" {
		t.Errorf("CurrentURL after second navigation = %q", url)
	}
	if url, _ := navigated.CurrentURL(); url != "https://example.com/a" {
		t.Error("intermediate session value changed")
	}
}

func TestWithState(t *testing.T) {
	session := NewSession("browserd", SessionOptions{})
	ended := session.WithState(SessionStateEnded)

	if !ended.Ended() {
		t.Error("WithState(ended) should report Ended")
	}
	if session.Ended() {
		t.Error("original session state changed")
	}
}

func TestDefaultSessionOptions(t *testing.T) {
	opts := DefaultSessionOptions()
	if !opts.Headless {
		t.Error("default options should be headless")
	}
}
