// Package server renders shared state strings over HTTP.
//
// Routes:
//
//	GET /healthz             liveness
//	GET /scene.svg?state=..  whole scene as SVG
//	GET /scene.png?state=..  whole scene as PNG
//	GET /tree/{state}.svg    one tree as SVG
//
// Decoded values are clamped to the attribute table before drawing, the
// same way a scene clamps a restored state.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/export"
	"github.com/san-kum/arbor/internal/fragment"
	"github.com/san-kum/arbor/internal/viz"
)

// MaxTrees bounds the number of trees one request may draw.
const MaxTrees = 25

var ErrTooManyTrees = errors.New("server: too many trees")

type Options struct {
	Table  attr.Table
	Layout export.Options
	Logger *log.Logger
}

type Server struct {
	table  attr.Table
	layout export.Options
	logger *log.Logger
	router chi.Router
}

func New(opts Options) *Server {
	if opts.Table == (attr.Table{}) {
		opts.Table = attr.DefaultTable()
	}
	if opts.Layout.Columns == 0 {
		opts.Layout = export.DefaultOptions()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{table: opts.Table, layout: opts.Layout, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/scene.svg", s.handleSceneSVG)
	r.Get("/scene.png", s.handleScenePNG)
	r.Get("/tree/{file}", s.handleTreeSVG)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleSceneSVG(w http.ResponseWriter, r *http.Request) {
	trees, opts, ok := s.parse(w, r, r.URL.Query().Get("state"))
	if !ok {
		return
	}
	out, err := export.SceneSVG(trees, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(out))
}

func (s *Server) handleScenePNG(w http.ResponseWriter, r *http.Request) {
	trees, opts, ok := s.parse(w, r, r.URL.Query().Get("state"))
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := export.WritePNG(r.Context(), w, trees, opts); err != nil {
		s.logger.Warn("png render failed", "err", err)
	}
}

func (s *Server) handleTreeSVG(w http.ResponseWriter, r *http.Request) {
	// chi ends a param at the first '.', and states are full of them
	state, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".svg")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if strings.Contains(state, fragment.TreeSep) {
		http.Error(w, "one tree per request", http.StatusBadRequest)
		return
	}
	trees, opts, ok := s.parse(w, r, state)
	if !ok {
		return
	}
	opts.Columns = 1
	opts.Root = -1
	out, err := export.SceneSVG(trees, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(out))
}

// parse decodes and clamps a state string and applies the optional
// root, columns and theme query parameters. On failure it writes the
// error response itself.
func (s *Server) parse(w http.ResponseWriter, r *http.Request, state string) ([]attr.Values, export.Options, bool) {
	opts := s.layout
	trees, err := fragment.DecodeAll(state)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, opts, false
	}
	if len(trees) > MaxTrees {
		http.Error(w, ErrTooManyTrees.Error(), http.StatusBadRequest)
		return nil, opts, false
	}
	for i, v := range trees {
		trees[i] = s.table.Clamp(v)
	}

	q := r.URL.Query()
	if v := q.Get("root"); v != "" {
		root, err := strconv.Atoi(v)
		if err != nil || root < 0 || root >= len(trees) {
			http.Error(w, "bad root", http.StatusBadRequest)
			return nil, opts, false
		}
		opts.Root = root
	}
	if v := q.Get("columns"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c < 1 {
			http.Error(w, "bad columns", http.StatusBadRequest)
			return nil, opts, false
		}
		opts.Columns = c
	}
	if v := q.Get("theme"); v != "" {
		opts.Theme = viz.GetTheme(v)
	}
	return trees, opts, true
}
