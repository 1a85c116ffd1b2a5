package pagecookie

import (
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sanitizer cleans a cookie value before Get returns it.
type Sanitizer interface {
	Sanitize(s string) string
}

// SanitizeFunc adapts a plain function to Sanitizer.
type SanitizeFunc func(s string) string

// Sanitize calls f(s).
func (f SanitizeFunc) Sanitize(s string) string {
	return f(s)
}

var percentOctet = regexp.MustCompile(`%[a-fA-F0-9]{2}`)

// TextSanitizer reduces a value to single-line plain text: markup is
// stripped (script and style bodies included), whitespace runs collapse to
// one space, control characters and percent-encoded octets are removed.
// Invalid UTF-8 yields an empty string.
type TextSanitizer struct{}

// Sanitize implements Sanitizer.
func (TextSanitizer) Sanitize(s string) string {
	if !utf8.ValidString(s) {
		return ""
	}
	s = stripTags(s)
	s = strings.Join(strings.Fields(s), " ")
	cleaned, _, err := transform.String(
		transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cc))),
		s,
	)
	if err != nil {
		return ""
	}
	// Removing one octet can expose another, e.g. "%%4141".
	for {
		next := percentOctet.ReplaceAllString(cleaned, "")
		if next == cleaned {
			break
		}
		cleaned = next
	}
	return strings.TrimSpace(strings.Join(strings.Fields(cleaned), " "))
}

// stripTags returns the text content of s with every tag removed.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var (
		b    strings.Builder
		skip atom.Atom
	)
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String()
			}
			return ""
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); a == atom.Script || a == atom.Style {
				skip = a
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skip != 0 && atom.Lookup(name) == skip {
				skip = 0
			}
		}
	}
}

// stripSlashes removes one level of backslash escaping: "\x" becomes "x"
// and "\\" becomes "\".
func stripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			if i == len(s) {
				break
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
