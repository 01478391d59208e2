package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/faktajouren/internal/browse"
	"github.com/TobiSchelling/faktajouren/internal/database"
	"github.com/TobiSchelling/faktajouren/internal/preview"
	"github.com/TobiSchelling/faktajouren/internal/visual"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

const storageErrorMessage = "Databasen är inte tillgänglig just nu. Inga resultat kan visas."

// Options configure a Server.
type Options struct {
	ChartColumn database.Column
	ChartLimit  int
	// Previewer enables /preview when non-nil.
	Previewer Previewer
	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	Burst             int
}

// Previewer fetches a readable excerpt for a link.
type Previewer interface {
	Fetch(ctx context.Context, url string) (*preview.Preview, error)
}

// Server is the HTTP front-end over the faktajouren table.
type Server struct {
	browser *browse.Browser
	opts    Options
	pages   map[string]*template.Template
	mux     *http.ServeMux
	root    *http.ServeMux
	metrics *metrics
	limiter *limiter
}

// New creates a new Server.
func New(b *browse.Browser, opts Options) (*Server, error) {
	if opts.ChartColumn == "" {
		opts.ChartColumn = database.Begrepp
	}
	if opts.ChartLimit <= 0 {
		opts.ChartLimit = visual.DefaultChartLimit
	}

	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"humanize": func(n int) string { return humanize.Comma(int64(n)) },
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so {{define "content"}} does not collide.
	pageNames := []string{"index.html", "keywords.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		browser: b,
		opts:    opts,
		pages:   pages,
		mux:     http.NewServeMux(),
		root:    http.NewServeMux(),
		metrics: newMetrics(),
		limiter: newLimiter(opts.RequestsPerSecond, opts.Burst),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.root
}

func (s *Server) routes() {
	// Health checks and metric scrapes bypass the rate limiter.
	s.root.Handle("/healthz", s.instrument("healthz", s.handleHealth))
	s.root.Handle("/metrics", s.metrics.handler())
	s.root.Handle("/", s.limiter.middleware(s.mux))

	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.handle("/", "index", s.handleIndex)
	s.handle("/keywords", "keywords", s.handleKeywords)
	s.handle("/api/articles", "api_articles", s.handleAPIArticles)
	s.handle("/api/tags/", "api_tags", s.handleAPITags)
	s.handle("/preview", "preview", s.handlePreview)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	filter := filterFromQuery(r)
	data := map[string]any{
		"Fields":         fields(filter, nil),
		"PreviewEnabled": s.opts.Previewer != nil,
		"Count":          0,
	}

	start := time.Now()
	res, err := s.browser.Search(r.Context(), filter)
	s.metrics.searchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.renderError(w, "index.html", err, data)
		return
	}
	options, err := s.browser.Options(r.Context())
	if err != nil {
		s.renderError(w, "index.html", err, data)
		return
	}

	data["Fields"] = fields(filter, options)
	data["Articles"] = res.Articles
	data["Clouds"] = res.Clouds
	data["Count"] = len(res.Articles)
	s.render(w, "index.html", http.StatusOK, data)
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	column := s.opts.ChartColumn
	if name := r.URL.Query().Get("column"); name != "" {
		c, err := database.ParseColumn(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		column = c
	}
	limit := s.opts.ChartLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	data := map[string]any{
		"Columns": database.Filterable,
		"Column":  column,
		"Limit":   limit,
	}
	chart, err := s.browser.Chart(r.Context(), column, limit)
	if err != nil {
		s.renderError(w, "keywords.html", err, data)
		return
	}
	data["Chart"] = chart
	s.render(w, "keywords.html", http.StatusOK, data)
}

func (s *Server) handleAPIArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	res, err := s.browser.Search(r.Context(), filterFromQuery(r))
	s.metrics.searchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.writeJSONError(w, err)
		return
	}
	articles := res.Articles
	if articles == nil {
		articles = []database.Article{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(articles),
		"articles": articles,
	})
}

func (s *Server) handleAPITags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/tags/")
	column, err := database.ParseColumn(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	freq, err := s.browser.Tags(r.Context(), column)
	if err != nil {
		s.writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"column": column,
		"total":  freq.Total(),
		"tags":   freq.Entries(),
		"top":    freq.Top(limit),
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.opts.Previewer == nil {
		http.NotFound(w, r)
		return
	}

	link := r.URL.Query().Get("url")
	if link == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing url"})
		return
	}
	known, err := s.browser.HasLink(r.Context(), link)
	if err != nil {
		s.writeJSONError(w, err)
		return
	}
	if !known {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "link not found in any article"})
		return
	}

	p, err := s.opts.Previewer.Fetch(r.Context(), link)
	if err != nil {
		log.Printf("Preview failed for %s: %v", link, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// filterFromQuery reads one pattern per filterable column from the query string.
func filterFromQuery(r *http.Request) database.Filter {
	q := r.URL.Query()
	f := make(database.Filter, len(database.Filterable))
	for _, c := range database.Filterable {
		if v := q.Get(c.Param()); v != "" {
			f[c] = v
		}
	}
	return f
}

type field struct {
	Param   string
	Label   string
	Value   string
	Options []string
}

func fields(f database.Filter, options map[database.Column][]string) []field {
	out := make([]field, 0, len(database.Filterable))
	for _, c := range database.Filterable {
		out = append(out, field{
			Param:   c.Param(),
			Label:   c.Label(),
			Value:   f[c],
			Options: options[c],
		})
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, name string, status int, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError shows the page with no results and an error banner.
func (s *Server) renderError(w http.ResponseWriter, name string, err error, data map[string]any) {
	status, msg := errorStatus(err)
	s.metrics.countError(status)
	log.Printf("Rendering %s without results: %v", name, err)
	data["Error"] = msg
	s.render(w, name, status, data)
}

func (s *Server) writeJSONError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	s.metrics.countError(status)
	log.Printf("API error: %v", err)
	writeJSON(w, status, map[string]string{"error": msg})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, database.ErrStorageUnavailable), errors.Is(err, database.ErrSchema):
		return http.StatusServiceUnavailable, storageErrorMessage
	case errors.Is(err, database.ErrUnknownColumn):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on host:port.
func Serve(b *browse.Browser, opts Options, host string, port int) error {
	srv, err := New(b, opts)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
