package pagecookie

import (
	"net/http"
	"strings"
)

// PageClassifier decides whether a request may receive cookies.
type PageClassifier interface {
	// IsAdmin reports whether r is handled by the administrative area.
	IsAdmin(r *http.Request) bool
	// IsContentPage reports whether r renders a single content page.
	IsContentPage(r *http.Request) bool
}

// ClassifierFuncs adapts two functions to PageClassifier. A nil Admin never
// reports admin and a nil ContentPage never reports a content page.
type ClassifierFuncs struct {
	Admin       func(r *http.Request) bool
	ContentPage func(r *http.Request) bool
}

// IsAdmin implements PageClassifier.
func (c ClassifierFuncs) IsAdmin(r *http.Request) bool {
	return c.Admin != nil && c.Admin(r)
}

// IsContentPage implements PageClassifier.
func (c ClassifierFuncs) IsContentPage(r *http.Request) bool {
	return c.ContentPage != nil && c.ContentPage(r)
}

// PathClassifier classifies requests by URL path prefix. A request is a
// content page when it is a GET or HEAD outside every admin prefix and,
// if ContentPrefixes is set, inside one of them.
type PathClassifier struct {
	AdminPrefixes   []string
	ContentPrefixes []string
}

// DefaultClassifier treats /admin as the administrative area and every
// other GET or HEAD request as a content page.
func DefaultClassifier() PathClassifier {
	return PathClassifier{AdminPrefixes: []string{"/admin"}}
}

// IsAdmin implements PageClassifier.
func (c PathClassifier) IsAdmin(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}
	return hasPathPrefix(r.URL.Path, c.AdminPrefixes)
}

// IsContentPage implements PageClassifier.
func (c PathClassifier) IsContentPage(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}
	// An empty method means GET.
	if r.Method != "" && r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	if c.IsAdmin(r) {
		return false
	}
	if len(c.ContentPrefixes) == 0 {
		return true
	}
	return hasPathPrefix(r.URL.Path, c.ContentPrefixes)
}

// hasPathPrefix matches whole path segments, so "/admin" matches
// "/admin" and "/admin/x" but not "/administrator".
func hasPathPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			return true
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
