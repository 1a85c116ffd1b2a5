package pagecookie

import "testing"

func TestTextSanitizer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "<b>bold</b> text", want: "bold text"},
		{in: "<script>alert(1)</script>hello", want: "hello"},
		{in: "<style>p{color:red}</style><p>x</p>", want: "x"},
		{in: "line\nbreak\ttab", want: "line break tab"},
		{in: "a\x00b\x07c", want: "abc"},
		{in: "100%41off", want: "100off"},
		{in: "%%4141", want: ""},
		{in: "&amp; co", want: "& co"},
		{in: "  padded  ", want: "padded"},
		{in: "\xff\xfe", want: ""},
	}
	s := TextSanitizer{}
	for _, tt := range tests {
		if got := s.Sanitize(tt.in); got != tt.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFunc(t *testing.T) {
	var s Sanitizer = SanitizeFunc(func(v string) string { return "[" + v + "]" })
	if got := s.Sanitize("x"); got != "[x]" {
		t.Fatalf("got %q", got)
	}
}

func TestStripSlashes(t *testing.T) {
	tests := map[string]string{
		`plain`:      `plain`,
		`O\'Reilly`:  `O'Reilly`,
		`a\\b`:       `a\b`,
		`say \"hi\"`: `say "hi"`,
		`trailing\`:  `trailing`,
	}
	for in, want := range tests {
		if got := stripSlashes(in); got != want {
			t.Fatalf("stripSlashes(%q) = %q, want %q", in, got, want)
		}
	}
}
