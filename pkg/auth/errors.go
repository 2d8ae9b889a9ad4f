package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrLoginRequired means no usable premium access token exists. The
// caller must run the login flow before retrying.
var ErrLoginRequired = errors.New("premium login required (missing access token)")

// ErrNoValidProfile means the provider's launcher data contained no
// profile with a usable username and uuid.
var ErrNoValidProfile = errors.New("get-launcher-data returned no valid profile username/uuid")

// ProviderError is a non-2xx response from an identity provider. Body is
// already truncated to a diagnostic snippet.
type ProviderError struct {
	Op     string
	Status int
	Body   string
}

// Error formats the failure for direct presentation to the user.
func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed (HTTP %d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s failed (HTTP %d): %s", e.Op, e.Status, e.Body)
}

// staleProfileMarker is the provider's wording when a session is
// requested for a profile uuid no longer linked to the account. The
// provider documents no error code for this case, so the match is on the
// message text.
const staleProfileMarker = "invalid game account for user"

// IsStaleProfile reports whether err signals that the cached profile is
// stale relative to the provider's current account linkage. This is the
// only error the session negotiator retries on, and only once.
func IsStaleProfile(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), staleProfileMarker)
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// snippet truncates s for inclusion in error messages and debug logs.
func snippet(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "…"
}
