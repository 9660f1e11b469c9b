// Package api provides the HTTP API server for PulseMind.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mobigaurav/pulsemind/internal/bridge"
	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/logging"
	"github.com/mobigaurav/pulsemind/internal/readings"
	"github.com/mobigaurav/pulsemind/internal/scheduler"
	"github.com/mobigaurav/pulsemind/internal/score"
	"github.com/mobigaurav/pulsemind/internal/storage"
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	wsHub      *WebSocketHub
	log        *logging.Logger

	aggregator   *readings.Aggregator
	scoreService *score.Service
	scoreStore   *storage.ScoreStore
	journalStore *storage.JournalStore

	// Optional components; nil-guarded
	bridgeHub *bridge.Hub
	sched     *scheduler.Scheduler
}

// Config for the server
type Config struct {
	Host         string
	Port         int
	Aggregator   *readings.Aggregator
	ScoreService *score.Service
	ScoreStore   *storage.ScoreStore
	JournalStore *storage.JournalStore
	BridgeHub    *bridge.Hub
	Scheduler    *scheduler.Scheduler
}

// New creates a new API server
func New(cfg Config) *Server {
	s := &Server{
		wsHub:        NewWebSocketHub(),
		log:          logging.WithComponent("api"),
		aggregator:   cfg.Aggregator,
		scoreService: cfg.ScoreService,
		scoreStore:   cfg.ScoreStore,
		journalStore: cfg.JournalStore,
		bridgeHub:    cfg.BridgeHub,
		sched:        cfg.Scheduler,
	}

	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Score
		r.Get("/score", s.handleGetScore)
		r.Get("/score/today", s.handleGetScoreToday)
		r.Get("/trends", s.handleGetTrends)

		// Readings
		r.Get("/readings", s.handleGetReadings)
		r.Post("/readings", s.handleUpdateReading)

		// Journal
		r.Post("/journal", s.handleCreateJournalEntry)
		r.Get("/journal", s.handleListJournalEntries)
		r.Get("/journal/moods", s.handleGetMoodCounts)
		r.Get("/journal/{entryID}", s.handleGetJournalEntry)
		r.Delete("/journal/{entryID}", s.handleDeleteJournalEntry)

		// Stats
		r.Get("/stats", s.handleGetStats)

		// Bulk reset
		r.Delete("/data", s.handleDeleteData)
	})

	// WebSocket
	r.Get("/ws", s.handleWebSocket)

	// Health
	r.Get("/health", s.handleHealth)

	s.router = r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.log.Info("API server listening on http://%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Broadcast sends a message to all WebSocket clients
func (s *Server) Broadcast(msgType string, data interface{}) {
	s.wsHub.Broadcast(WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// --- Handlers ---

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	value := s.scoreService.CurrentScore()

	// The sentinel means "no score to display", never zero
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"score":     value,
		"available": value != core.ScoreInsufficient,
	})
}

func (s *Server) handleGetScoreToday(w http.ResponseWriter, r *http.Request) {
	record, err := s.scoreStore.GetForDay(time.Now())
	if errors.Is(err, core.ErrRecordNotFound) {
		s.respondError(w, http.StatusNotFound, "no score recorded today")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetTrends(w http.ResponseWriter, r *http.Request) {
	var (
		records []*core.DailyScore
		err     error
	)

	if raw := r.URL.Query().Get("days"); raw != "" {
		days, convErr := strconv.Atoi(raw)
		if convErr != nil || days <= 0 {
			s.respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		records, err = s.scoreStore.GetSince(days)
	} else {
		records, err = s.scoreStore.GetAll()
	}

	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Ascending by day; charts consume this directly
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"scores": records,
		"count":  len(records),
	})
}

func (s *Server) handleGetReadings(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.aggregator.Snapshot())
}

func (s *Server) handleUpdateReading(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Channel string   `json:"channel"`
		Value   *float64 `json:"value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ch := core.Channel(input.Channel)
	if err := s.aggregator.Update(ch, input.Value); err != nil {
		if errors.Is(err, core.ErrUnknownChannel) {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown channel: %s", input.Channel))
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Broadcast(EventReadingUpdated, map[string]interface{}{
		"channel": ch,
		"value":   input.Value,
	})

	s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleCreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text string `json:"text"`
		Mood string `json:"mood"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	entry := core.NewJournalEntry(input.Text, input.Mood)
	if err := s.journalStore.Create(entry); err != nil {
		if errors.Is(err, core.ErrEmptyEntry) {
			s.respondError(w, http.StatusBadRequest, "entry needs text or a mood")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Broadcast(EventJournalCreated, entry)
	s.respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListJournalEntries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.journalStore.GetRecent(limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleGetJournalEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	entry, err := s.journalStore.GetByID(entryID)
	if errors.Is(err, core.ErrEntryNotFound) {
		s.respondError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteJournalEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	err := s.journalStore.Delete(entryID)
	if errors.Is(err, core.ErrEntryNotFound) {
		s.respondError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetMoodCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.journalStore.MoodCounts()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"moods": counts,
	})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	scoreCount, _ := s.scoreStore.Count()
	entryCount, _ := s.journalStore.Count()

	result := map[string]interface{}{
		"current_score": s.scoreService.CurrentScore(),
		"score_days":    scoreCount,
		"journal_count": entryCount,
		"ws_clients":    s.wsHub.ClientCount(),
	}

	if s.bridgeHub != nil {
		result["bridge_peers"] = s.bridgeHub.PeerCount()
	}
	if s.sched != nil {
		result["scheduler"] = s.sched.GetStats()
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	if err := s.scoreStore.DeleteAll(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.journalStore.DeleteAll(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info("all scores and journal entries deleted")
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
