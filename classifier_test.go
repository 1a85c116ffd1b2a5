package pagecookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPathClassifier(t *testing.T) {
	c := PathClassifier{
		AdminPrefixes:   []string{"/admin", "/wp-admin/"},
		ContentPrefixes: []string{"/pages"},
	}
	tests := []struct {
		method  string
		path    string
		admin   bool
		content bool
	}{
		{method: http.MethodGet, path: "/pages/about", content: true},
		{method: http.MethodHead, path: "/pages", content: true},
		{method: http.MethodPost, path: "/pages/about"},
		{method: http.MethodGet, path: "/blog"},
		{method: http.MethodGet, path: "/admin", admin: true},
		{method: http.MethodGet, path: "/admin/users", admin: true},
		{method: http.MethodGet, path: "/wp-admin/edit", admin: true},
		{method: http.MethodGet, path: "/administrator"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, tt.path, nil)
		if got := c.IsAdmin(r); got != tt.admin {
			t.Fatalf("%s %s: IsAdmin = %v", tt.method, tt.path, got)
		}
		if got := c.IsContentPage(r); got != tt.content {
			t.Fatalf("%s %s: IsContentPage = %v", tt.method, tt.path, got)
		}
	}
}

func TestDefaultClassifier(t *testing.T) {
	c := DefaultClassifier()
	if !c.IsContentPage(httptest.NewRequest(http.MethodGet, "/anything", nil)) {
		t.Fatalf("non-admin GET should be a content page")
	}
	if c.IsContentPage(httptest.NewRequest(http.MethodGet, "/admin/x", nil)) {
		t.Fatalf("admin page is not a content page")
	}
	if c.IsAdmin(nil) || c.IsContentPage(nil) {
		t.Fatalf("nil request should classify as neither")
	}
}

func TestClassifierFuncs_NilFuncs(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	var c ClassifierFuncs
	if c.IsAdmin(r) || c.IsContentPage(r) {
		t.Fatalf("nil funcs should report false")
	}
}
