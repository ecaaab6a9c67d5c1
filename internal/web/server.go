// Package web serves the board in a browser. Cards are dragged with native HTML
// drag and drop; datastar carries the gesture to the server and patches the board
// back into every open page over server-sent events.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/boardsync"
	"kanban-cli/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/starfederation/datastar-go/datastar"
)

const DefaultDatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// syncTimeout bounds one remote round trip started by a request. It outlives the
// request so a closed tab does not abandon a move halfway.
const syncTimeout = 30 * time.Second

// WorklogSource is the part of the API client the card detail reads from.
type WorklogSource interface {
	ListWorklogs(ctx context.Context, cardID int64) ([]model.WorklogEntry, error)
}

type ServerConfig struct {
	Addr        string
	Engine      *boardsync.Engine
	Worklogs    WorklogSource
	Log         logrus.FieldLogger
	DatastarURL string
	// ReadOnly serves the board without drag, reload or delete.
	ReadOnly bool
}

// Server owns the engine on behalf of all requests. mu is the engine's owning
// thread: every read or write of the store happens under it, and remote work
// runs outside it.
type Server struct {
	cfg  ServerConfig
	log  logrus.FieldLogger
	hub  *boardHub
	tmpl *template.Template
	now  func() time.Time

	mu sync.Mutex
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("web: missing engine")
	}
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.DatastarURL = strings.TrimSpace(cfg.DatastarURL)
	if cfg.DatastarURL == "" {
		cfg.DatastarURL = DefaultDatastarURL
	}
	l := cfg.Log
	if l == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		l = discard
	}
	return &Server{
		cfg:  cfg,
		log:  l.WithField("component", "web"),
		hub:  newBoardHub(),
		tmpl: pageTemplates,
		now:  time.Now,
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleBoard)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /cards/{cardId}", s.handleCard)
	mux.HandleFunc("POST /drop", s.handleDrop)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("DELETE /cards/{cardId}", s.handleDelete)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := parseFilter(q)

	s.mu.Lock()
	st := s.cfg.Engine.Store()
	data := pageData{
		BoardID:     st.BoardID(),
		Query:       f.Query,
		Labels:      labelOptions(board.Labels(st), q.Get("label")),
		Owners:      ownerOptions(board.Responsibles(st), q.Get("owner")),
		EventsURL:   eventsURL(q),
		DatastarURL: s.cfg.DatastarURL,
		ReadOnly:    s.cfg.ReadOnly,
		Board:       s.boardData(f),
	}
	s.mu.Unlock()

	var b bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&b, "page", data); err != nil {
		s.log.WithError(err).Error("render page")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = b.WriteTo(w)
}

// handleEvents streams the board, filtered by the page's query, whenever it changes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r.URL.Query())
	sse := datastar.NewSSE(w, r)

	ch, cancel := s.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	patch := func() {
		html, err := s.renderBoard(f)
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return
		}
		_ = sse.PatchElements(html, datastar.WithSelector("#board"), datastar.WithMode(datastar.ElementPatchModeOuter))
	}

	patch()
	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			patch()
		}
	}
}

type dropSignals struct {
	Dragging int64  `json:"dragging"`
	Over     string `json:"over"`
}

// handleDrop completes one browser drag gesture: the dragged card and the last
// target it hovered arrive together as signals.
func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	if !s.writable(w) {
		return
	}
	var sig dropSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, "invalid signals: "+err.Error(), http.StatusBadRequest)
		return
	}
	sse := datastar.NewSSE(w, r)
	_ = sse.MarshalAndPatchSignals(map[string]any{"dragging": 0, "over": ""})
	if sig.Dragging <= 0 {
		s.flash(sse, "Nothing moved", nil)
		return
	}

	p, err := s.move(r.Context(), sig.Dragging, sig.Over)
	if err != nil {
		s.flash(sse, "", err)
		return
	}
	s.flash(sse, s.dropMessage(p), nil)
}

func (s *Server) move(ctx context.Context, cardID int64, target string) (board.Placement, error) {
	s.mu.Lock()
	p, pending, err := s.cfg.Engine.MoveCard(cardID, target)
	s.mu.Unlock()
	if err != nil {
		return p, err
	}
	s.log.WithFields(logrus.Fields{
		"cardId": cardID,
		"target": target,
		"kind":   p.Kind.String(),
	}).Debug("drop")
	s.hub.broadcast()
	return p, s.run(ctx, pending)
}

// run executes pending off the lock and applies its Result under it.
func (s *Server) run(ctx context.Context, pending boardsync.Pending) error {
	if pending == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), syncTimeout)
	defer cancel()
	res := pending(ctx)

	s.mu.Lock()
	err := s.cfg.Engine.Apply(res)
	s.mu.Unlock()
	s.hub.broadcast()
	return err
}

func (s *Server) dropMessage(p board.Placement) string {
	switch p.Kind {
	case board.PlaceMove:
		name := "list " + strconv.FormatInt(p.ToListID, 10)
		s.mu.Lock()
		if l, ok := s.cfg.Engine.Store().List(p.ToListID); ok {
			name = l.Name
		}
		s.mu.Unlock()
		return fmt.Sprintf("Moved #%d → %s", p.CardID, name)
	case board.PlaceReorder:
		return fmt.Sprintf("Reordered #%d (not saved; lost on reload)", p.CardID)
	default:
		return "Nothing moved"
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.writable(w) {
		return
	}
	sse := datastar.NewSSE(w, r)
	s.mu.Lock()
	pending := s.cfg.Engine.Refresh()
	s.mu.Unlock()
	if err := s.run(r.Context(), pending); err != nil {
		s.flash(sse, "", err)
		return
	}
	s.flash(sse, "Reloaded", nil)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.writable(w) {
		return
	}
	id, err := pathID(r, "cardId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	_, ok := s.cfg.Engine.Store().Card(id)
	pending := s.cfg.Engine.Delete(id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, boardsync.ErrUnknownCard.Error(), http.StatusNotFound)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := s.run(r.Context(), pending); err != nil {
		s.flash(sse, "", err)
		return
	}
	_ = sse.PatchElements(`<aside id="detail"></aside>`, datastar.WithSelector("#detail"), datastar.WithMode(datastar.ElementPatchModeOuter))
	s.flash(sse, fmt.Sprintf("Deleted #%d", id), nil)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	c, ok := s.cfg.Engine.Store().Card(id)
	listName := ""
	if l, found := s.cfg.Engine.Store().List(c.ListID); found {
		listName = l.Name
	}
	s.mu.Unlock()
	if !ok {
		http.Error(w, boardsync.ErrUnknownCard.Error(), http.StatusNotFound)
		return
	}

	var entries []model.WorklogEntry
	var wlErr error
	if s.cfg.Worklogs != nil {
		entries, wlErr = s.cfg.Worklogs.ListWorklogs(r.Context(), id)
		if wlErr != nil {
			s.log.WithError(wlErr).WithField("cardId", id).Warn("worklogs")
		}
	}

	data := newDetailData(c, listName, entries, wlErr, s.now())
	data.ReadOnly = s.cfg.ReadOnly
	var b bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&b, "detail", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sse := datastar.NewSSE(w, r)
	_ = sse.PatchElements(b.String(), datastar.WithSelector("#detail"), datastar.WithMode(datastar.ElementPatchModeOuter))
}

func (s *Server) writable(w http.ResponseWriter) bool {
	if s.cfg.ReadOnly {
		http.Error(w, "board is read-only", http.StatusForbidden)
		return false
	}
	return true
}

func (s *Server) flash(sse *datastar.ServerSentEventGenerator, text string, err error) {
	if err != nil {
		text = err.Error()
		s.log.WithError(err).Warn("web")
	}
	var b bytes.Buffer
	if terr := s.tmpl.ExecuteTemplate(&b, "flash", flashData{Text: text, Err: err != nil}); terr != nil {
		return
	}
	_ = sse.PatchElements(b.String(), datastar.WithSelector("#flash"), datastar.WithMode(datastar.ElementPatchModeOuter))
}

func (s *Server) renderBoard(f board.Filter) (string, error) {
	s.mu.Lock()
	data := s.boardData(f)
	s.mu.Unlock()

	var b bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&b, "board", data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// boardData must be called with mu held.
func (s *Server) boardData(f board.Filter) boardData {
	return newBoardData(s.cfg.Engine.View(f), s.cfg.ReadOnly, s.now())
}

// parseFilter reads q, label and owner. owner=0 selects unassigned cards;
// malformed ids are ignored.
func parseFilter(q url.Values) board.Filter {
	f := board.Filter{Query: strings.TrimSpace(q.Get("q"))}
	if id, err := strconv.ParseInt(strings.TrimSpace(q.Get("label")), 10, 64); err == nil && id > 0 {
		f.LabelID = &id
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(q.Get("owner")), 10, 64); err == nil && id >= 0 {
		f.ResponsibleID = &id
	}
	return f
}

func eventsURL(q url.Values) string {
	keep := url.Values{}
	for _, k := range []string{"q", "label", "owner"} {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			keep.Set(k, v)
		}
	}
	if len(keep) == 0 {
		return "/events"
	}
	return "/events?" + keep.Encode()
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid card id: %q", raw)
	}
	return id, nil
}
