package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var NowFunc = time.Now // mockable

// Now returns the current time in UTC.
func Now() time.Time {
	return NowFunc().UTC()
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NewID generates a random unique id with the given prefix, eg. "course-<uuid>".
func NewID(prefix string) string {
	return prefix + uuid.New().String()
}

// IsEphemeralURL reports whether url is a session-scoped object handle (eg. a browser blob URL)
// that does not survive beyond the session that created it and must never be persisted.
func IsEphemeralURL(url string) bool {
	return strings.HasPrefix(strings.TrimSpace(url), "blob:")
}
