package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/icebound/game/config"
	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
	"github.com/wricardo/icebound/game/session"
	"github.com/wricardo/icebound/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	log     logrus.FieldLogger
}

// ServerOpt customises a Server
type ServerOpt func(*Server)

// WithLogger sets the request logger
func WithLogger(l logrus.FieldLogger) ServerOpt {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server. hub may be nil, in which case changes
// are not pushed to watchers and /ws is unavailable.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...ServerOpt) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Round operations
	api.HandleFunc("/sessions/{id}/snapshot", s.handleSnapshot).Methods("GET")
	api.HandleFunc("/sessions/{id}/command", s.handleCommand).Methods("POST")
	api.HandleFunc("/sessions/{id}/advance", s.handleAdvance).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/sessions/{id}/cell", s.handleDescribeCell).Methods("GET")

	// Levels
	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels/{id}", s.handleGetLevel).Methods("GET")
	api.HandleFunc("/levels/{id}", s.handleSaveLevel).Methods("PUT")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError picks the status code for a service error
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, config.ErrLevelNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCommand),
		errors.Is(err, service.ErrInvalidAdvance),
		errors.Is(err, config.ErrInvalidLevel),
		errors.Is(err, session.ErrInvalidSessionID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// publish pushes a snapshot and any events to websocket watchers
func (s *Server) publish(sessionID string, snap *engine.Snapshot, events []service.GameEvent) {
	if s.hub == nil || snap == nil {
		return
	}
	s.hub.BroadcastToSession(sessionID, snap)
	s.hub.BroadcastEvents(sessionID, events)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Session Handlers

type createSessionRequest struct {
	LevelID            string `json:"level_id,omitempty"`
	Realtime           bool   `json:"realtime,omitempty"`
	Autopilot          bool   `json:"autopilot,omitempty"`
	AdversaryAutopilot bool   `json:"adversary_autopilot,omitempty"`
	Seed               int64  `json:"seed,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := s.service.CreateSession(r.Context(), req.LevelID, service.SessionOptions{
		Realtime:           req.Realtime,
		Autopilot:          req.Autopilot,
		AdversaryAutopilot: req.AdversaryAutopilot,
		Seed:               req.Seed,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Round Handlers

// handleSnapshot returns the snapshot as JSON, or as the rendered grid when
// format=text
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "%s | %s | score %d\n", snap.LevelName, snap.Remaining, snap.TotalScore)
		for _, row := range snap.Rows() {
			fmt.Fprintln(w, row)
		}
		if snap.Message != "" {
			fmt.Fprintln(w, snap.Message)
		}
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Command string `json:"command"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Command == "" {
		respondError(w, http.StatusBadRequest, "command is required")
		return
	}

	resp, err := s.service.Command(r.Context(), sessionID, req.Command)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"session":  sessionID,
		"command":  resp.Result.Command,
		"accepted": resp.Result.Accepted,
		"events":   len(resp.Events),
	}).Debug("command applied")

	s.publish(sessionID, resp.Snapshot, resp.Events)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		ElapsedMS int64 `json:"elapsed_ms"`
		Ticks     int   `json:"ticks,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Advance(r.Context(), sessionID, req.ElapsedMS, req.Ticks)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"session":   sessionID,
		"ticks":     result.TicksRun,
		"requested": result.TicksRequested,
		"stopped":   result.StoppedReason,
	}).Debug("round advanced")

	s.publish(sessionID, result.Snapshot, result.Events)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	resp, err := s.service.Command(r.Context(), sessionID, string(engine.CmdRestart))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publish(sessionID, resp.Snapshot, resp.Events)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Round restarted",
		"snapshot": resp.Snapshot,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetCommandHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleDescribeCell(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	x, errX := strconv.Atoi(query.Get("x"))
	y, errY := strconv.Atoi(query.Get("y"))
	if errX != nil || errY != nil {
		respondError(w, http.StatusBadRequest, "x and y must be integers")
		return
	}

	cell, err := s.service.DescribeCell(r.Context(), mux.Vars(r)["id"], engine.Position{X: x, Y: y})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cell)
}

// Level Handlers

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.service.ListLevels(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if levels == nil {
		levels = []*service.LevelInfo{}
	}
	respondJSON(w, http.StatusOK, levels)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	level, err := s.service.LoadLevel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, level)
}

func (s *Server) handleSaveLevel(w http.ResponseWriter, r *http.Request) {
	levelID := strings.ToLower(mux.Vars(r)["id"])

	var level engine.LevelConfig
	if err := json.NewDecoder(r.Body).Decode(&level); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.SaveLevel(r.Context(), levelID, &level); err != nil {
		respondServiceError(w, err)
		return
	}

	s.log.WithField("level", levelID).Info("level saved")
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Level saved successfully",
		"level_id": levelID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket unavailable", http.StatusServiceUnavailable)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	s.hub.ServeWS(w, r, sessionID)
}
