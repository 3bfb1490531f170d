package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"squadsim/internal/combat"
)

const maxStreamDelay = 10 * time.Second

type wsMsg struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// streamBattle replays a battle phase by phase over a websocket, pacing
// each phase by delay_ms. Closing the socket stops the replay.
func (s *Server) streamBattle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := BattleRequest{Attacking: q.Get("attacking"), Defending: q.Get("defending")}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.Seed = &seed
	}
	req.MaxRounds, _ = strconv.Atoi(q.Get("max_rounds"))
	delay := s.battle.StepDelay()
	if v := q.Get("delay_ms"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			writeError(w, http.StatusBadRequest, badRequest("delay_ms must be a non-negative integer"))
			return
		}
		delay = time.Duration(ms) * time.Millisecond
	}
	delay = min(delay, maxStreamDelay)

	e, err := s.prepare(req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	_ = conn.WriteJSON(wsMsg{Type: "battle", Data: e.State()})
	res, err := combat.Autoplay(ctx, e, delay, func(le combat.LogEntry) {
		if werr := conn.WriteJSON(wsMsg{Type: "entry", Data: le}); werr != nil {
			cancel()
		}
	})
	if err != nil {
		s.log.Info("ws stream stopped", zap.String("battle", e.ID()), zap.Error(err))
		_ = conn.WriteJSON(wsMsg{Type: "error", Error: err.Error()})
		return
	}
	s.archive(ctx, req, e)
	_ = conn.WriteJSON(wsMsg{Type: "result", Data: res})
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle complete"))
}
