package pagecookie

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// Result is the outcome of Accessor.Set.
type Result int

const (
	// ResultInvalidKey means the key was empty; nothing happened.
	ResultInvalidKey Result = iota
	// ResultSuppressed means policy prevented the write: empty value,
	// administrative request, or not a content page.
	ResultSuppressed
	// ResultWritten means the Set-Cookie header was added.
	ResultWritten
	// ResultFailed means the write was attempted and rejected; the
	// accompanying error says why.
	ResultFailed
)

// String returns the lower-case name of the result.
func (r Result) String() string {
	switch r {
	case ResultInvalidKey:
		return "invalid-key"
	case ResultSuppressed:
		return "suppressed"
	case ResultWritten:
		return "written"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Accessor reads, writes and clears cookies for a single request.
// By default, it uses:
//   - Config:     DefaultConfig()
//   - Classifier: DefaultClassifier()
//   - Sanitizer:  TextSanitizer
//   - Logger:     logrus standard logger
//   - Clock:      time.Now
//
// An Accessor is not safe for concurrent use; create one per request.
type Accessor struct {
	writer     CookieWriter
	req        *http.Request
	cfg        Config
	classifier PageClassifier
	sanitizer  Sanitizer
	logger     log.FieldLogger
	now        func() time.Time
	// incoming is shared between copies made by the With methods so that
	// Clear on one copy is visible to the others.
	incoming *incomingView
}

type incomingView struct {
	values map[string]string
}

// NewAccessor creates an Accessor bound to the given response and request.
//
// Parameters:
//   - w: The http.ResponseWriter to write cookies to.
//   - r: The http.Request to read cookies from.
//
// Returns:
//   - *Accessor: The new Accessor.
func NewAccessor(w http.ResponseWriter, r *http.Request) *Accessor {
	return &Accessor{
		writer:     NewDefaultCookieWriter(w),
		req:        r,
		cfg:        DefaultConfig(),
		classifier: DefaultClassifier(),
		sanitizer:  TextSanitizer{},
		logger:     log.StandardLogger(),
		now:        time.Now,
		incoming:   &incomingView{},
	}
}

// WithConfig sets the cookie attributes and returns a new Accessor.
//
// Parameters:
//   - cfg: The Config to use.
//
// Returns:
//   - *Accessor: The new Accessor.
func (a *Accessor) WithConfig(cfg Config) *Accessor {
	new := *a
	new.cfg = cfg
	return &new
}

// WithClassifier sets the page classifier and returns a new Accessor.
//
// Parameters:
//   - c: The PageClassifier to use.
//
// Returns:
//   - *Accessor: The new Accessor.
func (a *Accessor) WithClassifier(c PageClassifier) *Accessor {
	new := *a
	new.classifier = c
	return &new
}

// WithSanitizer sets the sanitizer applied by Get and returns a new
// Accessor.
//
// Parameters:
//   - s: The Sanitizer to use.
//
// Returns:
//   - *Accessor: The new Accessor.
func (a *Accessor) WithSanitizer(s Sanitizer) *Accessor {
	new := *a
	new.sanitizer = s
	return &new
}

// WithLogger sets the logger and returns a new Accessor.
//
// Parameters:
//   - l: The logger to use.
//
// Returns:
//   - *Accessor: The new Accessor.
func (a *Accessor) WithLogger(l log.FieldLogger) *Accessor {
	new := *a
	new.logger = l
	return &new
}

// WithClock sets the time source and returns a new Accessor.
//
// Parameters:
//   - now: The function returning the current time.
//
// Returns:
//   - *Accessor: The new Accessor.
func (a *Accessor) WithClock(now func() time.Time) *Accessor {
	new := *a
	new.now = now
	return &new
}

// WithWriter replaces the cookie writer and returns a new Accessor.
//
// Parameters:
//   - w: The CookieWriter to use.
//
// Returns:
//   - *Accessor: The new Accessor.
func (a *Accessor) WithWriter(w CookieWriter) *Accessor {
	new := *a
	new.writer = w
	return &new
}

// Get returns the sanitized value of the named request cookie. It returns
// false for an empty key, an absent cookie, or one removed by Clear.
//
// Parameters:
//   - key: The name of the cookie.
//
// Returns:
//   - string: The sanitized value.
//   - bool: Whether the cookie is present.
func (a *Accessor) Get(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	raw, ok := a.view()[key]
	if !ok {
		return "", false
	}
	return a.sanitizer.Sanitize(stripSlashes(decodeValue(raw))), true
}

// Set writes the cookie when value is non-empty and the request is a
// content page outside the administrative area.
//
// Parameters:
//   - key: The name of the cookie.
//   - value: The value of the cookie.
//   - exp: The expiration policy.
//
// Returns:
//   - Result: What happened.
//   - error: The write error when Result is ResultFailed.
func (a *Accessor) Set(key, value string, exp Expiration) (Result, error) {
	if key == "" {
		return ResultInvalidKey, nil
	}
	if reason := a.suppressReason(value); reason != "" {
		a.logger.WithFields(log.Fields{
			"cookie": key,
			"reason": reason,
		}).Debug("cookie write suppressed")
		return ResultSuppressed, nil
	}

	now := a.now()
	cookie := a.newCookie(key, encodeValue(value))
	if expires, ok := exp.Resolve(now, a.cfg.DefaultTTL); ok {
		cookie.Expires = expires.UTC()
		if remaining := expires.Unix() - now.Unix(); remaining > 0 {
			cookie.MaxAge = int(remaining)
		} else {
			cookie.MaxAge = -1
		}
	}
	if err := a.writer.WriteCookie(cookie); err != nil {
		a.logger.WithError(err).WithField("cookie", key).Warn("cookie write failed")
		return ResultFailed, err
	}
	return ResultWritten, nil
}

// Clear expires the cookie on the client and removes it from the request
// view. It returns false only for an empty key; a failed write is reported
// through the error while the cookie is still removed from the view.
//
// Parameters:
//   - key: The name of the cookie.
//
// Returns:
//   - bool: False for an empty key, true otherwise.
//   - error: The write error, if any.
func (a *Accessor) Clear(key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	cookie := a.newCookie(key, "")
	cookie.Expires = time.Unix(a.now().Unix()-int64(durToSec(a.cfg.DefaultTTL)), 0).UTC()
	cookie.MaxAge = -1
	err := a.writer.WriteCookie(cookie)
	if err != nil {
		a.logger.WithError(err).WithField("cookie", key).Warn("cookie clear failed")
	}
	delete(a.view(), key)
	return true, err
}

// Named returns a handle bound to a single cookie name.
//
// Parameters:
//   - key: The name of the cookie.
//
// Returns:
//   - *Named: The new handle.
func (a *Accessor) Named(key string) *Named {
	return &Named{accessor: a, key: key}
}

func (a *Accessor) newCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     a.cfg.Path,
		Domain:   a.cfg.Domain,
		Secure:   a.cfg.Secure,
		HttpOnly: a.cfg.HTTPOnly,
		SameSite: a.cfg.SameSite,
	}
}

func (a *Accessor) suppressReason(value string) string {
	switch {
	case value == "":
		return "empty value"
	case a.classifier == nil:
		return "no page classifier"
	case a.classifier.IsAdmin(a.req):
		return "admin request"
	case !a.classifier.IsContentPage(a.req):
		return "not a content page"
	default:
		return ""
	}
}

// view returns the request cookies, snapshotting them on first use. The
// first cookie wins for duplicate names, as with http.Request.Cookie.
func (a *Accessor) view() map[string]string {
	if a.incoming.values != nil {
		return a.incoming.values
	}
	values := make(map[string]string)
	if a.req != nil {
		for _, c := range a.req.Cookies() {
			if _, seen := values[c.Name]; !seen {
				values[c.Name] = c.Value
			}
		}
	}
	a.incoming.values = values
	return values
}

func encodeValue(v string) string {
	return url.QueryEscape(v)
}

// decodeValue reverses encodeValue, keeping raw values that were not
// written by this package.
func decodeValue(v string) string {
	d, err := url.QueryUnescape(v)
	if err != nil {
		return v
	}
	return d
}

// Named wraps an Accessor to manage a cookie with a fixed name.
type Named struct {
	accessor *Accessor
	key      string
}

// Name returns the cookie name.
func (n *Named) Name() string {
	return n.key
}

// Get returns the sanitized cookie value.
func (n *Named) Get() (string, bool) {
	return n.accessor.Get(n.key)
}

// Set writes the cookie with the given value and expiration.
//
// Parameters:
//   - value: The value of the cookie.
//   - exp: The expiration policy.
//
// Returns:
//   - Result: What happened.
//   - error: The write error when Result is ResultFailed.
func (n *Named) Set(value string, exp Expiration) (Result, error) {
	return n.accessor.Set(n.key, value, exp)
}

// Clear expires the cookie.
//
// Returns:
//   - bool: Always true for a non-empty name.
//   - error: The write error, if any.
func (n *Named) Clear() (bool, error) {
	return n.accessor.Clear(n.key)
}
