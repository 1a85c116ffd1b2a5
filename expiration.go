package pagecookie

import (
	"math"
	"time"
)

type expirationKind uint8

const (
	expirationSession expirationKind = iota
	expirationDefault
	expirationAbsolute
)

// Expiration selects how Set computes a cookie's expiry. The zero value is
// a session cookie.
type Expiration struct {
	kind expirationKind
	unix int64
}

// DefaultExpiration expires the cookie after the configured DefaultTTL.
func DefaultExpiration() Expiration {
	return Expiration{kind: expirationDefault}
}

// SessionExpiration sets no expiry; the client drops the cookie when its
// session ends.
func SessionExpiration() Expiration {
	return Expiration{kind: expirationSession}
}

// ExpiresAt expires the cookie at the given Unix timestamp, used verbatim.
// A timestamp of zero or less yields a session cookie.
func ExpiresAt(unix int64) Expiration {
	if unix <= 0 {
		return SessionExpiration()
	}
	return Expiration{kind: expirationAbsolute, unix: unix}
}

// ExpirationFrom converts a loosely typed value: true selects the default
// TTL, false a session cookie, and any positive integer an absolute Unix
// timestamp. Every other value, including zero, negative, and out-of-range
// integers, falls back to a session cookie.
//
// Parameters:
//   - v: The value to convert.
//
// Returns:
//   - Expiration: The resulting expiration.
func ExpirationFrom(v any) Expiration {
	switch x := v.(type) {
	case Expiration:
		return x
	case bool:
		if x {
			return DefaultExpiration()
		}
		return SessionExpiration()
	case int:
		return ExpiresAt(int64(x))
	case int8:
		return ExpiresAt(int64(x))
	case int16:
		return ExpiresAt(int64(x))
	case int32:
		return ExpiresAt(int64(x))
	case int64:
		return ExpiresAt(x)
	case uint:
		return expiresAtUnsigned(uint64(x))
	case uint8:
		return ExpiresAt(int64(x))
	case uint16:
		return ExpiresAt(int64(x))
	case uint32:
		return ExpiresAt(int64(x))
	case uint64:
		return expiresAtUnsigned(x)
	default:
		return SessionExpiration()
	}
}

// expiresAtUnsigned falls back to a session cookie when x does not fit in
// an int64.
func expiresAtUnsigned(x uint64) Expiration {
	if x > math.MaxInt64 {
		return SessionExpiration()
	}
	return ExpiresAt(int64(x))
}

// IsSession reports whether the expiration produces a session cookie.
func (e Expiration) IsSession() bool {
	return e.kind == expirationSession
}

// Resolve returns the absolute expiry relative to now, and false for a
// session cookie.
//
// Parameters:
//   - now: The reference time.
//   - ttl: The default TTL.
//
// Returns:
//   - time.Time: The absolute expiry.
//   - bool: Whether an expiry applies.
func (e Expiration) Resolve(now time.Time, ttl time.Duration) (time.Time, bool) {
	switch e.kind {
	case expirationDefault:
		return time.Unix(now.Unix()+int64(durToSec(ttl)), 0), true
	case expirationAbsolute:
		return time.Unix(e.unix, 0), true
	default:
		return time.Time{}, false
	}
}
