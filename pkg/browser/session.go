package browser

import (
	cryptorand "crypto/rand"
	"fmt"
	"maps"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var sessionIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9\-]`)
var ulidEntropy = ulid.Monotonic(cryptorand.Reader, 0)

// NewSessionID returns a unique session ID prefixed with the adapter name.
func NewSessionID(adapter string) string {
	base := strings.TrimSpace(adapter)
	base = strings.ToLower(strings.ReplaceAll(base, " ", "-"))
	base = sessionIDSanitizer.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "session"
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
	return fmt.Sprintf("%s-%s", base, strings.ToLower(id))
}

// NewSession creates an active session owned by the named adapter.
func NewSession(adapter string, opts SessionOptions) Session {
	return Session{
		ID:         NewSessionID(adapter),
		Adapter:    adapter,
		Connection: map[string]string{},
		CreatedAt:  time.Now(),
		Options:    opts,
		State:      SessionStateActive,
	}
}

// Active reports whether operations other than StartSession and EndSession
// are valid on this session.
func (s Session) Active() bool {
	return s.State == SessionStateActive
}

// Ended reports whether the session has been ended.
func (s Session) Ended() bool {
	return s.State == SessionStateEnded
}

// CurrentURL returns the session's last navigated URL, if any.
func (s Session) CurrentURL() (string, bool) {
	url, ok := s.Connection[ConnCurrentURL]
	if !ok || url == "" {
		return "", false
	}
	return url, true
}

// WithConnection returns a copy of the session with one connection key set.
// The receiver is never modified.
func (s Session) WithConnection(key, value string) Session {
	next := s
	next.Connection = maps.Clone(s.Connection)
	if next.Connection == nil {
		next.Connection = map[string]string{}
	}
	next.Connection[key] = value
	return next
}

// WithCurrentURL returns a copy of the session whose current URL is set.
func (s Session) WithCurrentURL(url string) Session {
	return s.WithConnection(ConnCurrentURL, url)
}

// WithState returns a copy of the session in the given lifecycle state.
func (s Session) WithState(state SessionState) Session {
	next := s
	next.State = state
	return next
}
