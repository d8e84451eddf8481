package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gto-rangeviewer/server/aggregate"
	"gto-rangeviewer/server/equity"
	"gto-rangeviewer/server/hands"
	"gto-rangeviewer/server/navigator"
	"gto-rangeviewer/server/palette"
	"gto-rangeviewer/server/render"
	"gto-rangeviewer/server/store"
	"gto-rangeviewer/server/strategy"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
)

type api struct {
	nav       *navigator.Controller
	db        *store.DB // nil when no DATABASE_URL
	log       *slog.Logger
	maxImport int64
}

func Router(nav *navigator.Controller, db *store.DB, log *slog.Logger, maxImport int64) http.Handler {
	a := &api{nav: nav, db: db, log: log, maxImport: maxImport}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))

	// Health
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		archive := "disabled"
		if a.db != nil {
			archive = "ok"
			if err := a.db.Ping(r.Context()); err != nil {
				a.log.Warn("archive ping", "err", err)
				archive = "unreachable"
			}
		}
		writeJSON(w, map[string]any{
			"ok":      true,
			"phase":   a.nav.State().Phase(),
			"archive": archive,
		})
	})

	// Import + archive
	r.Post("/api/import", a.handleImport)
	r.Get("/api/exports", a.handleListExports)
	r.Post("/api/exports/{id}/load", a.handleLoadExport)

	// Navigation
	r.Post("/api/stack", a.handleStack)
	r.Post("/api/root", a.handleRoot)
	r.Post("/api/action", a.handleAction)
	r.Post("/api/rewind", a.handleRewind)
	r.Post("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		a.dispatch(w, navigator.Reset{})
	})

	// Views
	r.Get("/api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, a.view(a.nav.State()))
	})
	r.Get("/api/grid", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, render.Grid(a.nav.State()))
	})
	r.Get("/api/hand/{hand}", a.handleHand)
	r.Get("/api/grid.svg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := render.SVG(w, a.nav.State()); err != nil {
			a.log.Error("render svg", "err", err)
		}
	})

	return r
}

/* -----------------------------
   View models
------------------------------*/

type actionView struct {
	Code   string              `json:"code"`
	Kind   strategy.ActionKind `json:"kind"`
	Amount float64             `json:"amount"`
	Node   int                 `json:"node"`
	Label  string              `json:"label"`
}

type nodeView struct {
	ID         int               `json:"id"`
	Player     strategy.Position `json:"player"`
	Street     int               `json:"street"`
	Actions    []actionView      `json:"actions"`
	RaiseSizes []float64         `json:"raise_sizes"`
}

type stateView struct {
	Phase       navigator.Phase         `json:"phase"`
	ExportID    int64                   `json:"export_id,omitempty"`
	BigBlind    float64                 `json:"big_blind"`
	Settings    strategy.Settings       `json:"settings"`
	Stacks      []int                   `json:"stacks"`
	StackBB     *int                    `json:"stack_bb"`
	Roots       []strategy.Position     `json:"roots"`
	Node        *nodeView               `json:"node"`
	History     []navigator.Step        `json:"history"`
	Breadcrumbs []navigator.Breadcrumb  `json:"breadcrumbs"`
	Legend      []palette.LegendEntry   `json:"legend"`
	Summary     []aggregate.ActionShare `json:"summary"`
}

func (a *api) view(s navigator.State) stateView {
	v := stateView{
		Phase:       s.Phase(),
		ExportID:    s.ArchiveID(),
		BigBlind:    s.BigBlind(),
		Settings:    s.Settings(),
		Stacks:      s.Stacks(),
		Roots:       s.Graph().Roots(),
		History:     s.History(),
		Breadcrumbs: s.Breadcrumbs(),
		Legend:      s.Palette().Legend(s.BigBlind()),
		Summary:     s.Summary(),
	}
	if bb, ok := s.Stack(); ok {
		v.StackBB = &bb
	}
	if n := s.Current(); n != nil {
		nv := &nodeView{
			ID:         n.ID,
			Player:     n.Player,
			Street:     n.Street,
			Actions:    make([]actionView, len(n.Actions)),
			RaiseSizes: n.RaiseAmounts(),
		}
		for i, act := range n.Actions {
			nv.Actions[i] = actionView{
				Code:   act.Kind().Code(),
				Kind:   act.Kind(),
				Amount: act.Amount(),
				Node:   act.Target(),
				Label:  act.Label(s.BigBlind()),
			}
		}
		v.Node = nv
	}
	return v
}

/* -----------------------------
   Handlers
------------------------------*/

func (a *api) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxImport))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("payload exceeds %d bytes", tooBig.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	exp, err := strategy.DecodeBytes(raw)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var id int64
	if a.db != nil {
		meta, err := a.db.SaveExport(r.Context(), store.Describe(r.URL.Query().Get("name"), raw, exp), raw)
		if err != nil {
			// the import still goes through without the archive
			a.log.Warn("archive export", "err", err)
		} else {
			id = meta.ID
		}
	}
	s, _ := a.nav.Dispatch(navigator.Import{Export: exp, ArchiveID: id})
	writeJSON(w, a.view(s))
}

func (a *api) handleListExports(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		jsonError(w, "export archive disabled", http.StatusServiceUnavailable)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := a.db.ListExports(r.Context(), limit)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (a *api) handleLoadExport(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		jsonError(w, "export archive disabled", http.StatusServiceUnavailable)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "bad export id", http.StatusBadRequest)
		return
	}
	exp, _, err := a.db.LoadExport(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s, _ := a.nav.Dispatch(navigator.Import{Export: exp, ArchiveID: id})
	writeJSON(w, a.view(s))
}

func (a *api) handleStack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StackBB int `json:"stack_bb"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	a.dispatch(w, navigator.SelectStack{StackBB: body.StackBB})
}

func (a *api) handleRoot(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Position strategy.Position `json:"position"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if !body.Position.Valid() {
		jsonError(w, "unknown position", http.StatusBadRequest)
		return
	}
	s, changed := a.dispatch(w, navigator.LoadRoot{Position: body.Position})
	if changed && a.db != nil {
		if id := s.ArchiveID(); id > 0 {
			stack, _ := s.Stack()
			if err := a.db.RecordView(r.Context(), id, body.Position, stack); err != nil {
				a.log.Warn("record view", "export", id, "err", err)
			}
		}
	}
}

func (a *api) handleAction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind   string  `json:"kind"`
		Amount float64 `json:"amount"`
		Node   int     `json:"node"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	kind, err := strategy.ParseKind(body.Kind)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.dispatch(w, navigator.Choose{Kind: kind, Amount: body.Amount, Target: body.Node})
}

func (a *api) handleRewind(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index int `json:"index"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	a.dispatch(w, navigator.Rewind{Index: body.Index})
}

type handView struct {
	Hand     hands.ID             `json:"hand"`
	Kind     string               `json:"kind"`
	Combos   int                  `json:"combos"`
	Cell     aggregate.Cell       `json:"cell"`
	Dominant *aggregate.Dominant  `json:"dominant"`
	Actions  []aggregate.Weighted `json:"actions"`
	Bands    []palette.Band       `json:"bands"`
	CSS      string               `json:"css"`
	Equity   *equity.Result       `json:"equity,omitempty"`
}

const maxEquitySamples = 200000

// handleHand takes a class ("AKs") or two hole cards ("AsKd"). ?equity=N adds
// an N-sample all-in equity estimate against a random hand.
func (a *api) handleHand(w http.ResponseWriter, r *http.Request) {
	id := hands.ID(chi.URLParam(r, "hand"))
	if !id.Valid() {
		parsed, err := hands.FromHoleCards(string(id))
		if err != nil {
			jsonError(w, "unknown hand "+strconv.Quote(string(id)), http.StatusBadRequest)
			return
		}
		id = parsed
	}
	s := a.nav.State()
	c, _ := s.Cell(id)
	bands := s.Gradient(id)
	v := handView{
		Hand:    id,
		Kind:    id.Kind().String(),
		Combos:  hands.ComboCount(id),
		Cell:    c,
		Actions: c.Prioritized(),
		Bands:   bands,
		CSS:     palette.CSS(bands),
	}
	if d, ok := aggregate.DominantAction(c.Data); ok {
		v.Dominant = &d
	}
	if n, _ := strconv.Atoi(r.URL.Query().Get("equity")); n > 0 {
		res, err := equity.Estimate(r.Context(), id, min(n, maxEquitySamples), 1)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		v.Equity = &res
	}
	writeJSON(w, v)
}

// dispatch applies cmd and answers with the resulting state; a no-op answers
// 409 with the unchanged state.
func (a *api) dispatch(w http.ResponseWriter, cmd navigator.Command) (navigator.State, bool) {
	s, changed := a.nav.Dispatch(cmd)
	if !changed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "no data for " + cmd.String(), "state": a.view(s)})
		return s, false
	}
	writeJSON(w, a.view(s))
	return s, true
}

/* -----------------------------
   Helpers
------------------------------*/

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		jsonError(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// RequestLogger logs incoming requests.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
