package pagecookie

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrHeadersWritten is returned when a cookie is written after the
	// response headers were already sent.
	ErrHeadersWritten = errors.New("pagecookie: response headers already written")
	// ErrInvalidCookie is returned when the cookie cannot be serialized.
	ErrInvalidCookie = errors.New("pagecookie: invalid cookie")
)

// CookieWriter is an interface to write cookies to an HTTP response.
type CookieWriter interface {
	WriteCookie(cookie *http.Cookie) error
}

// headerWriteReporter is implemented by response writers that know whether
// the header has been committed, such as *TrackingWriter.
type headerWriteReporter interface {
	HeaderWritten() bool
}

// DefaultCookieWriter implements CookieWriter using http.SetCookie.
type DefaultCookieWriter struct {
	writer http.ResponseWriter
}

// NewDefaultCookieWriter returns a new DefaultCookieWriter.
//
// Parameters:
//   - w: The http.ResponseWriter to write cookies to.
//
// Returns:
//   - *DefaultCookieWriter: The new DefaultCookieWriter.
func NewDefaultCookieWriter(w http.ResponseWriter) *DefaultCookieWriter {
	return &DefaultCookieWriter{writer: w}
}

// WriteCookie validates the cookie and adds a Set-Cookie header. It fails
// with ErrHeadersWritten when the wrapped writer reports a committed header;
// plain http.ResponseWriter values cannot report it, so wrap them with
// Middleware to get that check.
//
// Parameters:
//   - cookie: The cookie to write.
//
// Returns:
//   - error: ErrInvalidCookie, ErrHeadersWritten, or nil.
func (w *DefaultCookieWriter) WriteCookie(cookie *http.Cookie) error {
	if err := cookie.Valid(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCookie, err)
	}
	if hw, ok := w.writer.(headerWriteReporter); ok && hw.HeaderWritten() {
		return fmt.Errorf("%w: cookie %q", ErrHeadersWritten, cookie.Name)
	}
	http.SetCookie(w.writer, cookie)
	return nil
}

// TrackingWriter wraps an http.ResponseWriter and records when the
// response header is committed. Flush and Hijack are forwarded through
// http.ResponseController, so they reach optional interfaces of any writer
// further down the Unwrap chain; when the chain lacks them, Flush is a
// no-op and Hijack returns http.ErrNotSupported.
type TrackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

// NewTrackingWriter wraps w. Wrapping a *TrackingWriter returns it as is.
//
// Parameters:
//   - w: The http.ResponseWriter to wrap.
//
// Returns:
//   - *TrackingWriter: The tracking writer.
func NewTrackingWriter(w http.ResponseWriter) *TrackingWriter {
	if tw, ok := w.(*TrackingWriter); ok {
		return tw
	}
	return &TrackingWriter{ResponseWriter: w}
}

// HeaderWritten reports whether the header has been sent.
func (w *TrackingWriter) HeaderWritten() bool {
	return w.wroteHeader
}

// WriteHeader implements http.ResponseWriter.
func (w *TrackingWriter) WriteHeader(code int) {
	// 1xx responses do not commit the final header.
	if code >= 200 || code == http.StatusSwitchingProtocols {
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write implements http.ResponseWriter.
func (w *TrackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher. The header counts as committed only when
// the wrapped writer actually flushed.
func (w *TrackingWriter) Flush() {
	_ = w.FlushError()
}

// FlushError flushes the wrapped writer, as used by
// http.ResponseController.
//
// Returns:
//   - error: http.ErrNotSupported when no writer in the chain can flush.
func (w *TrackingWriter) FlushError() error {
	err := http.NewResponseController(w.ResponseWriter).Flush()
	if err == nil {
		w.wroteHeader = true
	}
	return err
}

// Hijack implements http.Hijacker. After a successful hijack the
// connection belongs to the caller and no more cookies can be written.
//
// Returns:
//   - net.Conn: The hijacked connection.
//   - *bufio.ReadWriter: The buffered reader/writer over the connection.
//   - error: http.ErrNotSupported when no writer in the chain can hijack.
func (w *TrackingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, rw, err := http.NewResponseController(w.ResponseWriter).Hijack()
	if err == nil {
		w.wroteHeader = true
	}
	return conn, rw, err
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (w *TrackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Middleware wraps every response in a TrackingWriter so accessors created
// by next report ErrHeadersWritten instead of silently dropping cookies.
// Handlers downstream still see http.Flusher and http.Hijacker.
//
// Parameters:
//   - next: The handler to wrap.
//
// Returns:
//   - http.Handler: The wrapping handler.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(NewTrackingWriter(w), r)
	})
}
