package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"squadsim/internal/archive"
	"squadsim/internal/combat"
	"squadsim/internal/config"
	"squadsim/internal/roster"
	"squadsim/internal/util"
)

type Server struct {
	catalog  *roster.Catalog
	battle   config.BattleConfig
	store    archive.Repository
	log      *zap.Logger
	now      func() time.Time
	upgrader websocket.Upgrader
}

// New wires the HTTP front. store may be nil, in which case battles are not archived.
func New(cat *roster.Catalog, battle config.BattleConfig, store archive.Repository, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		catalog:  cat,
		battle:   battle,
		store:    store,
		log:      log,
		now:      time.Now,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/squads", s.listSquads).Methods(http.MethodGet)
	api.HandleFunc("/battles", s.runBattle).Methods(http.MethodPost)
	api.HandleFunc("/battles", s.listBattles).Methods(http.MethodGet)
	api.HandleFunc("/battles/{id}", s.getBattle).Methods(http.MethodGet)

	r.HandleFunc("/ws/battles", s.streamBattle).Methods(http.MethodGet)
	return r
}

type BattleRequest struct {
	Attacking string `json:"attacking"`
	Defending string `json:"defending"`
	Seed      *int64 `json:"seed,omitempty"`
	MaxRounds int    `json:"max_rounds,omitempty"`
}

type BattleResponse struct {
	Result *combat.BattleResult `json:"result"`
	Log    []combat.LogEntry    `json:"log"`
}

type squadSummary struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Units []string `json:"units"`
}

func (s *Server) listSquads(w http.ResponseWriter, r *http.Request) {
	out := []squadSummary{}
	for _, sd := range s.catalog.SquadDefs() {
		sum := squadSummary{ID: sd.ID, Name: sd.Name, Units: []string{}}
		for _, u := range sd.Units {
			sum.Units = append(sum.Units, u.ID)
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) runBattle(w http.ResponseWriter, r *http.Request) {
	var req BattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	e, err := s.prepare(req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	res, err := e.ExecuteBattle()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.archive(r.Context(), req, e)
	writeJSON(w, http.StatusOK, BattleResponse{Result: res, Log: e.Log()})
}

func (s *Server) listBattles(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("battle archive is disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) getBattle(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("battle archive is disabled"))
		return
	}
	rep, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// prepare builds fresh squads and an engine for one request.
func (s *Server) prepare(req BattleRequest) (*combat.Engine, error) {
	if req.Attacking == "" || req.Defending == "" {
		return nil, badRequest("attacking and defending squads are required")
	}
	if req.Attacking == req.Defending {
		return nil, badRequest("a squad cannot fight itself")
	}
	if req.MaxRounds < 0 {
		return nil, badRequest("max_rounds must be positive")
	}
	att, err := s.catalog.BuildSquad(req.Attacking)
	if err != nil {
		return nil, err
	}
	def, err := s.catalog.BuildSquad(req.Defending)
	if err != nil {
		return nil, err
	}
	seed := s.battle.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if seed == 0 {
		seed = s.now().UnixNano()
	}
	cfg := combat.Config{MaxRounds: s.battle.MaxRounds, AllowRetreat: s.battle.Retreat()}
	if req.MaxRounds > 0 {
		cfg.MaxRounds = req.MaxRounds
	}
	return combat.NewEngine(att, def, s.catalog.Races, util.NewSource(seed), cfg,
		combat.WithLogger(s.log), combat.WithClock(s.now))
}

func (s *Server) archive(ctx context.Context, req BattleRequest, e *combat.Engine) {
	if s.store == nil || e.Result() == nil {
		return
	}
	rep, err := archive.NewReport(req.Attacking, req.Defending, e.Result(), e.Log(), s.now())
	if err == nil {
		err = s.store.Create(ctx, rep)
	}
	if err != nil {
		s.log.Warn("archive battle", zap.String("battle", e.ID()), zap.Error(err))
	}
}

type requestError struct{ msg string }

func (e requestError) Error() string { return e.msg }

func badRequest(msg string) error { return requestError{msg: msg} }

func statusFor(err error) int {
	var re requestError
	switch {
	case errors.As(err, &re):
		return http.StatusBadRequest
	case errors.Is(err, roster.ErrUnknownSquad), errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, combat.ErrInvalidCombatState):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer cannot be hijacked")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("http",
			zap.String("method", r.Method), zap.String("path", r.URL.Path),
			zap.Int("status", rec.status), zap.Duration("took", time.Since(start)))
	})
}
