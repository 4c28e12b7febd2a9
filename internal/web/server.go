// Package web serves pages over HTTP: a JSON page index, an HTML view per
// page rendered through the virtual table, and a refresh endpoint.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/page"
	"github.com/pable/go-match-stats/internal/store"
)

//go:embed templates/view.html
var templateFS embed.FS

var viewTemplate = template.Must(template.ParseFS(templateFS, "templates/view.html"))

// entry serializes access to one page.
type entry struct {
	mu         sync.Mutex
	page       *page.Page
	refreshing atomic.Bool
}

// Server exposes a set of loaded pages.
type Server struct {
	pages     map[string]*entry
	order     []string
	viewport  int
	rowHeight int
	log       *slog.Logger
}

// NewServer returns a server for pages. viewport is the default container
// height in pixels for view requests without a height parameter.
func NewServer(pages []*page.Page, viewport, rowHeight int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		pages:     make(map[string]*entry, len(pages)),
		viewport:  viewport,
		rowHeight: rowHeight,
		log:       log,
	}
	for _, p := range pages {
		s.pages[p.Name] = &entry{page: p}
		s.order = append(s.order, p.Name)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/pages", s.handlePages)
	r.Route("/pages/{page}", func(r chi.Router) {
		r.Get("/view/{view}", s.handleView)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

type pageInfo struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Session string   `json:"session"`
	Views   []string `json:"views"`
	Filters []string `json:"filters"`
}

func (s *Server) handlePages(w http.ResponseWriter, _ *http.Request) {
	out := make([]pageInfo, 0, len(s.order))
	for _, name := range s.order {
		e := s.pages[name]
		e.mu.Lock()
		info := pageInfo{
			Name:    e.page.Name,
			Title:   e.page.Title,
			Session: e.page.ID,
			Views:   e.page.AvailableViews(),
		}
		for _, c := range e.page.Clauses() {
			info.Filters = append(info.Filters, c.Key)
		}
		e.mu.Unlock()
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

type viewData struct {
	Page      string
	Title     string
	View      string
	Views     []string
	Header    []string
	Footer    model.Row
	Rows      []model.Row
	TopPad    int
	BottomPad int
	Total     int
	Start     int
	End       int
	ScrollTop int
	RowHeight int
}

// queryControls reads page controls from the query string.
type queryControls map[string][]string

func (q queryControls) ControlValue(key string) string {
	if v := q[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	e, ok := s.pages[chi.URLParam(r, "page")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown page"})
		return
	}
	view := chi.URLParam(r, "view")
	q := r.URL.Query()
	height := intParam(q.Get("height"), s.viewport)
	scroll := intParam(q.Get("scroll"), 0)

	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.page
	p.Apply(queryControls(q))
	c := NewContainer(height)
	tbl, err := p.Render(r.Context(), view, c)
	if errors.Is(err, page.ErrUnknownView) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if scroll > 0 {
		p.Scroll(scroll)
	}
	win := p.Table().Window()

	data := viewData{
		Page:      p.Name,
		Title:     p.Title,
		View:      view,
		Views:     p.AvailableViews(),
		Header:    tbl.Header,
		Footer:    tbl.Footer,
		Rows:      c.Rows,
		TopPad:    c.TopPad,
		BottomPad: c.BottomPad,
		Total:     tbl.Len(),
		Start:     win.Start,
		End:       win.End,
		ScrollTop: c.ScrollTop(),
		RowHeight: s.rowHeight,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viewTemplate.Execute(w, data); err != nil {
		s.log.Error("render view", "page", p.Name, "view", view, "err", err)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	e, ok := s.pages[chi.URLParam(r, "page")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown page"})
		return
	}
	if !e.refreshing.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": store.ErrRefreshInProgress.Error()})
		return
	}
	defer e.refreshing.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.page.Refresh(r.Context())
	switch {
	case errors.Is(err, store.ErrRefreshInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		s.log.Warn("refresh failed", "page", e.page.Name, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "matches": len(e.page.Filtered())})
	}
}

func intParam(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
