// Package server is the HTTP surface: market browsing, sportsbook odds,
// game stats, AI summaries, predictions, and the live WebSocket feed.
// Handlers read from the collector-warmed caches first and fall back to
// live upstream fetches; upstream trouble on sub-resources degrades to
// null fields instead of failing the whole response.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/calebrosario/pregame/internal/cache"
	"github.com/calebrosario/pregame/internal/espn"
	"github.com/calebrosario/pregame/internal/kalshi"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/oddsfeed"
	"github.com/calebrosario/pregame/internal/sports"
	"github.com/calebrosario/pregame/internal/storage"
	"github.com/calebrosario/pregame/internal/summary"
	"github.com/calebrosario/pregame/internal/websocket"
)

// Config carries the server's collaborators. Nil optional fields disable
// the feature they back: a nil odds client turns the odds endpoint into an
// "unavailable" answer, a nil cache means every request fetches live.
type Config struct {
	Kalshi       *kalshi.Client
	Markets      cache.MarketCache
	Odds         *oddsfeed.Client
	OddsCache    cache.OddsCache
	ESPN         *espn.Client
	Summaries    *summary.Service
	SummaryCache cache.SummaryCache
	Store        storage.Store
	Hub          *websocket.Hub

	CORSOrigins []string

	// OddsMaxAge bounds how old a cached odds record may be before the
	// handler refetches. Zero means 5 minutes.
	OddsMaxAge time.Duration
}

// Server owns the HTTP handlers.
type Server struct {
	kalshi       *kalshi.Client
	markets      cache.MarketCache
	oddsClient   *oddsfeed.Client
	oddsCache    cache.OddsCache
	espn         *espn.Client
	summaries    *summary.Service
	summaryCache cache.SummaryCache
	store        storage.Store
	hub          *websocket.Hub

	corsOrigins []string
	oddsMaxAge  time.Duration
}

// New builds a server from its collaborators.
func New(cfg Config) *Server {
	maxAge := cfg.OddsMaxAge
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		kalshi:       cfg.Kalshi,
		markets:      cfg.Markets,
		oddsClient:   cfg.Odds,
		oddsCache:    cfg.OddsCache,
		espn:         cfg.ESPN,
		summaries:    cfg.Summaries,
		summaryCache: cfg.SummaryCache,
		store:        cfg.Store,
		hub:          cfg.Hub,
		corsOrigins:  origins,
		oddsMaxAge:   maxAge,
	}
}

// Router assembles the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sports", s.handleSports)
		r.Get("/stats", s.handlePlatformStats)

		r.Route("/sports/{sport}", func(r chi.Router) {
			r.Get("/markets", s.handleMarkets)

			r.Route("/events/{eventTicker}", func(r chi.Router) {
				r.Get("/", s.handleEventDetail)
				r.Get("/odds", s.handleEventOdds)
				r.Get("/stats", s.handleEventStats)
				r.Get("/summary", s.handleEventSummary)
				r.Get("/consensus", s.handleEventConsensus)
			})
		})

		r.Post("/predictions", s.handleCreatePrediction)
		r.Get("/predictions/{sessionID}", s.handleSessionPredictions)
	})

	if s.hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWs(s.hub, w, r)
		})
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":    "healthy",
		"service":   "pregame-api",
		"timestamp": time.Now().UTC(),
	}
	if s.hub != nil {
		resp["websocket_clients"] = s.hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, resp)
}

// sportConfig resolves the {sport} URL parameter, answering 404 itself on
// an unknown sport.
func (s *Server) sportConfig(w http.ResponseWriter, r *http.Request) (*sports.Config, bool) {
	name := chi.URLParam(r, "sport")
	sport, err := sports.ParseSport(name)
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown sport: "+name, nil)
		return nil, false
	}
	cfg, err := sports.ForSport(sport)
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown sport: "+name, nil)
		return nil, false
	}
	return cfg, true
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Infof("[server] %s %s %d %dB %s", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start).Round(time.Millisecond))
	})
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Errorf("[server] encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Warnf("[server] %s: %v", message, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Errorf("[server] encode error response: %v", err)
	}
}
