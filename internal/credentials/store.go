// Package credentials owns the token slots shared by the client library and
// the gateway. A Store is a set of named, atomically-updated string slots;
// an unavailable backing medium degrades to misses and no-ops, never errors.
package credentials

import "time"

// Slot names used across the console.
const (
	// SessionToken is the http-only, server-side session cookie.
	SessionToken = "token"
	// AccessToken is the client-readable bearer credential.
	AccessToken = "access_token"
	// RefreshToken is the longer-lived credential exchanged for a new
	// access token.
	RefreshToken = "refresh_token"
)

// KnownSlots lists every credential-bearing key ClearAll must cover.
var KnownSlots = []string{SessionToken, AccessToken, RefreshToken}

// Options carry the persistence attributes of a slot. Stores that have no
// notion of scope or lifetime (memory, file) ignore the fields they cannot
// honor.
type Options struct {
	Path           string
	MaxAge         time.Duration
	HTTPOnly       bool
	Secure         bool
	SameSiteStrict bool
	Domain         string
}

// Store reads and writes credential slots. Get after Set on the same store
// observes the new value; Set and Get never yield torn values.
type Store interface {
	Get(name string) (string, bool)
	Set(name, value string, opts Options)
	Clear(name string)
	// ClearAll clears every known slot, including variants scoped to a
	// parent domain, so a logout covers all subdomains.
	ClearAll()
}
