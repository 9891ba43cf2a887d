// Package api serves the scraped events over a small read API and triggers
// runs: the latest artifact on GET, a guarded manual scrape on POST, and a
// daily scheduled run.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/partyfinder/scraper/internal/event"
	"github.com/partyfinder/scraper/internal/filter"
	"github.com/partyfinder/scraper/internal/logger"
	"github.com/partyfinder/scraper/internal/store"
)

// Runner executes one scrape-and-publish cycle. The CLI and the server share
// the same implementation.
type Runner interface {
	RunOnce(ctx context.Context) (store.RunInfo, error)
}

// Server exposes the read API over the local artifact store.
type Server struct {
	artifacts *store.Artifacts
	runner    Runner
	log       *logger.Logger

	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	lastCount int
	lastError string

	httpServer *http.Server
}

// NewServer wires the API over the artifact store. A nil runner disables the
// manual trigger endpoint.
func NewServer(artifacts *store.Artifacts, runner Runner, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	s := &Server{artifacts: artifacts, runner: runner, log: log}

	if info, err := artifacts.LoadRecords(); err == nil && !info.ScrapedAt.IsZero() {
		s.lastRun = info.ScrapedAt
		s.lastCount = len(info.Records)
	}
	return s
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events", s.handleEvents).Methods("GET")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/scrape", s.handleScrape).Methods("POST")

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}).Handler(router)
}

// ListenAndServe runs the API until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() { errs <- s.httpServer.ListenAndServe() }()

	s.log.Info("api listening", logger.Fields{"addr": addr})
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	info, err := s.artifacts.LoadRecords()
	if err != nil {
		s.log.Error("loading records", nil, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load events"})
		return
	}

	records := filterFromQuery(r).Apply(info.Records)
	if records == nil {
		records = []event.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events":    records,
		"scrapedAt": info.ScrapedAt,
		"count":     len(records),
	})
}

func filterFromQuery(r *http.Request) *filter.Filter {
	q := r.URL.Query()
	maxPrice, _ := strconv.ParseFloat(q.Get("maxPrice"), 64)
	return &filter.Filter{
		DateFrom:     q.Get("from"),
		DateTo:       q.Get("to"),
		Venue:        q.Get("venue"),
		Tag:          q.Get("tag"),
		MaxPrice:     maxPrice,
		WeekendsOnly: q.Get("weekends") == "true",
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"running":   s.running,
		"lastRun":   s.lastRun,
		"lastCount": s.lastCount,
		"lastError": s.lastError,
	})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "scraping is not enabled"})
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a scrape is already in progress"})
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.runScrape(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) runScrape(ctx context.Context) {
	info, err := s.runner.RunOnce(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastRun = time.Now()
	if err != nil {
		s.lastError = err.Error()
		s.log.Error("scheduled scrape failed", nil, err)
		return
	}
	s.lastError = ""
	s.lastCount = len(info.Records)
}

// ScheduleDaily triggers one run every day at the given local time, until
// the context is canceled. A run already in progress skips the slot.
func (s *Server) ScheduleDaily(ctx context.Context, hour, minute int) {
	for {
		next := nextRunTime(time.Now(), hour, minute)
		s.log.Info("next scheduled scrape", logger.Fields{"at": next.Format(time.RFC3339)})

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		s.mu.Lock()
		busy := s.running
		if !busy {
			s.running = true
		}
		s.mu.Unlock()
		if busy {
			s.log.Warn("skipping scheduled scrape, run in progress", nil)
			continue
		}
		s.runScrape(ctx)
	}
}

func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
