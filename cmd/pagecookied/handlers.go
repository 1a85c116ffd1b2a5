package main

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/aatuh/pagecookie"
)

const lastPageCookie = "last_page"

type server struct {
	cfg        pagecookie.Config
	classifier pagecookie.PageClassifier
	logger     log.FieldLogger
}

func newHandler(cfg pagecookie.Config, logger log.FieldLogger) http.Handler {
	s := &server{
		cfg: cfg,
		classifier: pagecookie.PathClassifier{
			AdminPrefixes:   []string{"/admin"},
			ContentPrefixes: []string{"/pages"},
		},
		logger: logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /pages/{slug}", s.page)
	mux.HandleFunc("GET /admin/{slug}", s.page)
	mux.HandleFunc("/forget", s.forget)
	return pagecookie.Middleware(mux)
}

func (s *server) accessor(w http.ResponseWriter, r *http.Request) *pagecookie.Accessor {
	return pagecookie.NewAccessor(w, r).
		WithConfig(s.cfg).
		WithClassifier(s.classifier).
		WithLogger(s.logger)
}

// page remembers the last visited page. Admin pages go through the same
// code path and are refused by the classifier.
func (s *server) page(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	last := s.accessor(w, r).Named(lastPageCookie)

	previous, ok := last.Get()
	if !ok {
		previous = "(none)"
	}
	res, err := last.Set(slug, pagecookie.DefaultExpiration())
	if err != nil {
		s.logger.WithError(err).Error("remember page")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	s.logger.WithFields(log.Fields{
		"path":   r.URL.Path,
		"result": res.String(),
	}).Info("page served")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "page: %s\nprevious: %s\ncookie: %s\n", slug, previous, res)
}

func (s *server) forget(w http.ResponseWriter, r *http.Request) {
	if _, err := s.accessor(w, r).Named(lastPageCookie).Clear(); err != nil {
		s.logger.WithError(err).Error("forget page")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "cleared")
}
