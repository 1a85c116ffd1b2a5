package pagecookie

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is the lifetime used for DefaultExpiration: 31 days.
const DefaultTTL = 2678400 * time.Second

const (
	sameSiteNone   = "none"
	sameSiteLax    = "lax"
	sameSiteStrict = "strict"
)

// Environment keys read by ConfigFromEnv.
const (
	EnvPath     = "PAGECOOKIE_PATH"
	EnvDomain   = "PAGECOOKIE_DOMAIN"
	EnvTTL      = "PAGECOOKIE_TTL"
	EnvSecure   = "PAGECOOKIE_SECURE"
	EnvHTTPOnly = "PAGECOOKIE_HTTPONLY"
	EnvSameSite = "PAGECOOKIE_SAMESITE"
)

var (
	// ErrSameSiteNoneNeedsSecure is returned when SameSite=None is
	// configured without Secure.
	ErrSameSiteNoneNeedsSecure = errors.New(
		"pagecookie: SameSite=None cookies must be secure",
	)
	// ErrInvalidConfig wraps every other configuration problem.
	ErrInvalidConfig = errors.New("pagecookie: invalid config")
)

// Config holds the site-wide cookie attributes shared by every accessor.
// By default, it uses:
//   - Path:       "/"
//   - Domain:     "" (host-only)
//   - DefaultTTL: 31 days
//   - Secure:     false
//   - HTTPOnly:   false
//   - SameSite:   Lax
type Config struct {
	Path       string
	Domain     string
	DefaultTTL time.Duration
	Secure     bool
	HTTPOnly   bool
	SameSite   http.SameSite
}

// DefaultConfig returns the default Config.
//
// Returns:
//   - Config: The default Config.
func DefaultConfig() Config {
	return Config{
		Path:       "/",
		DefaultTTL: DefaultTTL,
		SameSite:   http.SameSiteLaxMode,
	}
}

// Validate reports whether the configuration can produce valid cookies.
//
// Returns:
//   - error: ErrSameSiteNoneNeedsSecure or an ErrInvalidConfig wrap.
func (c Config) Validate() error {
	if c.SameSite == http.SameSiteNoneMode && !c.Secure {
		return ErrSameSiteNoneNeedsSecure
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrInvalidConfig, c.Path)
	}
	if durToSec(c.DefaultTTL) <= 0 {
		return fmt.Errorf("%w: default TTL must be at least one second", ErrInvalidConfig)
	}
	return nil
}

// ConfigFromEnv builds a Config from DefaultConfig, overriding each field
// whose environment key is present. lookup is usually os.LookupEnv.
//
// Parameters:
//   - lookup: The environment lookup function.
//
// Returns:
//   - Config: The resulting config.
//   - error: The error if a value cannot be parsed or the config is invalid.
func ConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	if v, ok := lookup(EnvPath); ok {
		cfg.Path = v
	}
	if v, ok := lookup(EnvDomain); ok {
		cfg.Domain = v
	}
	if v, ok := lookup(EnvTTL); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvTTL, err)
		}
		cfg.DefaultTTL = ttl
	}
	if v, ok := lookup(EnvSecure); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvSecure, err)
		}
		cfg.Secure = b
	}
	if v, ok := lookup(EnvHTTPOnly); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvHTTPOnly, err)
		}
		cfg.HTTPOnly = b
	}
	if v, ok := lookup(EnvSameSite); ok {
		ss, err := StringToSameSite(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvSameSite, err)
		}
		cfg.SameSite = ss
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StringToSameSite converts a string to http.SameSite. It returns an error
// if the provided string is invalid.
//
// Parameters:
//   - s: The string to convert.
//
// Returns:
//   - http.SameSite: The http.SameSite value.
//   - error: The error if any.
func StringToSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case sameSiteNone:
		return http.SameSiteNoneMode, nil
	case sameSiteLax:
		return http.SameSiteLaxMode, nil
	case sameSiteStrict:
		return http.SameSiteStrictMode, nil
	default:
		return 0, fmt.Errorf("invalid SameSite value: %q", s)
	}
}

// MustStringToSameSite converts a string to http.SameSite and panics
// if the string is invalid.
//
// Parameters:
//   - s: The string to convert.
//
// Returns:
//   - http.SameSite: The http.SameSite value.
func MustStringToSameSite(s string) http.SameSite {
	ss, err := StringToSameSite(s)
	if err != nil {
		panic(err)
	}
	return ss
}

// SameSiteToString converts an http.SameSite value to its string
// representation. Returns an error if the value is not recognized.
//
// Parameters:
//   - s: The http.SameSite value.
//
// Returns:
//   - string: The string representation of the http.SameSite value.
//   - error: The error if any.
func SameSiteToString(s http.SameSite) (string, error) {
	switch s {
	case http.SameSiteNoneMode:
		return sameSiteNone, nil
	case http.SameSiteLaxMode:
		return sameSiteLax, nil
	case http.SameSiteStrictMode:
		return sameSiteStrict, nil
	default:
		return "", fmt.Errorf("invalid SameSite value: %v", s)
	}
}

// durToSec converts a duration to whole seconds, clamping to the int range.
func durToSec(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	const max = int(^uint(0) >> 1)
	secs := int64(d / time.Second)
	if secs > int64(max) {
		return max
	}
	return int(secs)
}
