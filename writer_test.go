package pagecookie

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultCookieWriter_PlainWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewDefaultCookieWriter(rec)
	if err := w.WriteCookie(&http.Cookie{Name: "a", Value: "b"}); err != nil {
		t.Fatalf("WriteCookie: %v", err)
	}
	if c := getCookieByName(t, rec, "a"); c == nil || c.Value != "b" {
		t.Fatalf("cookie not written")
	}
	if err := w.WriteCookie(&http.Cookie{Name: "bad;name", Value: "b"}); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("expected ErrInvalidCookie, got %v", err)
	}
}

func TestTrackingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := NewTrackingWriter(rec)
	if NewTrackingWriter(tw) != tw {
		t.Fatalf("wrapping twice should reuse the writer")
	}
	if tw.Unwrap() != rec {
		t.Fatalf("Unwrap should return the recorder")
	}

	tw.WriteHeader(http.StatusContinue)
	if tw.HeaderWritten() {
		t.Fatalf("1xx must not commit the header")
	}
	tw.Flush()
	if !tw.HeaderWritten() || !rec.Flushed {
		t.Fatalf("Flush should commit the header")
	}
	err := NewDefaultCookieWriter(tw).WriteCookie(&http.Cookie{Name: "late", Value: "v"})
	if !errors.Is(err, ErrHeadersWritten) {
		t.Fatalf("expected ErrHeadersWritten, got %v", err)
	}
}

func TestMiddleware_DetectsLateWrites(t *testing.T) {
	var setErr, lateErr error
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := NewAccessor(w, r).WithLogger(quietLogger()).
			WithClock(func() time.Time { return fixedNow })
		_, setErr = a.Set("early", "1", DefaultExpiration())
		_, _ = w.Write([]byte("hello"))
		_, lateErr = a.Set("late", "2", DefaultExpiration())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/x", nil))

	if setErr != nil {
		t.Fatalf("early Set: %v", setErr)
	}
	if !errors.Is(lateErr, ErrHeadersWritten) {
		t.Fatalf("expected ErrHeadersWritten, got %v", lateErr)
	}
	if getCookieByName(t, rec, "early") == nil {
		t.Fatalf("early cookie missing")
	}
	if getCookieByName(t, rec, "late") != nil {
		t.Fatalf("late cookie must not be written")
	}
}

// hijackRecorder is a recorder whose connection can be taken over.
type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	server, client := net.Pipe()
	_ = client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}

// bareWriter exposes only the http.ResponseWriter methods.
type bareWriter struct {
	http.ResponseWriter
}

func TestMiddleware_ForwardsHijack(t *testing.T) {
	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	var (
		isHijacker bool
		hijackErr  error
		cookieErr  error
	)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		isHijacker = ok
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		hijackErr = err
		if conn != nil {
			_ = conn.Close()
		}
		cookieErr = NewDefaultCookieWriter(w).WriteCookie(&http.Cookie{Name: "k", Value: "v"})
	}))
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if !isHijacker {
		t.Fatalf("downstream handler should see http.Hijacker")
	}
	if hijackErr != nil || !rec.hijacked {
		t.Fatalf("hijack not forwarded: err=%v hijacked=%v", hijackErr, rec.hijacked)
	}
	if !errors.Is(cookieErr, ErrHeadersWritten) {
		t.Fatalf("expected ErrHeadersWritten after hijack, got %v", cookieErr)
	}
}

func TestTrackingWriter_UnsupportedHijackAndFlush(t *testing.T) {
	tw := NewTrackingWriter(bareWriter{httptest.NewRecorder()})

	if _, _, err := tw.Hijack(); !errors.Is(err, http.ErrNotSupported) {
		t.Fatalf("expected http.ErrNotSupported, got %v", err)
	}
	if err := tw.FlushError(); !errors.Is(err, http.ErrNotSupported) {
		t.Fatalf("expected http.ErrNotSupported from FlushError, got %v", err)
	}
	tw.Flush()
	if tw.HeaderWritten() {
		t.Fatalf("unsupported Flush and Hijack must not commit the header")
	}
	if err := NewDefaultCookieWriter(tw).WriteCookie(&http.Cookie{Name: "k", Value: "v"}); err != nil {
		t.Fatalf("cookie write should still succeed: %v", err)
	}
}
