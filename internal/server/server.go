package server

import (
	"log"
	"net/http"
	"time"

	"server_kagero/internal/auth"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/lookup"
	"server_kagero/internal/utils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	sessionTTL             = 12 * time.Hour
	sessionCleanupInterval = 10 * time.Minute
)

// Server wires the config store, session engine, lookup capabilities and
// rate limiter behind the HTTP surface.
type Server struct {
	cfg        *config.MainConfig
	store      *config.Store
	sessions   *auth.SessionEngine
	geo        lookup.GeoResolver
	detector   lookup.BotDetector
	limiter    *dataType.Counter
	rateLimit  int64
	rateWindow int64
}

func NewServer(cfg *config.MainConfig, store *config.Store, sessions *auth.SessionEngine, geo lookup.GeoResolver, detector lookup.BotDetector) *Server {
	limit, window, err := utils.ParseRate(cfg.APIRateLimit)
	if err != nil {
		log.Printf("invalid api_rate_limit %q, falling back to 100/15m: %v", cfg.APIRateLimit, err)
		limit, window = 100, 900
	}
	return &Server{
		cfg:        cfg,
		store:      store,
		sessions:   sessions,
		geo:        geo,
		detector:   detector,
		limiter:    dataType.NewCounter(64, window),
		rateLimit:  limit,
		rateWindow: window,
	}
}

// Router builds the HTTP surface.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/config", s.handlePublicConfig).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/themes", s.handleThemes).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bot-detect", s.handleBotDetect).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/geoip/{ip}", s.handleGeoIP).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/admin/login", s.handleAdminLogin).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/admin/config", s.handleAdminConfigGet).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/admin/config", s.handleAdminConfigPost).Methods(http.MethodPost)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleGate).Methods(http.MethodGet)

	return r
}

// StartServer starts the HTTP server
func StartServer(cfg *config.MainConfig, store *config.Store) error {
	var geo lookup.GeoResolver
	if cfg.GeoIPDatabase != "" {
		mmdb, err := lookup.OpenMMDBGeoResolver(cfg.GeoIPDatabase)
		if err != nil {
			log.Printf("failed to open geoip database %s, using upstream lookups: %v", cfg.GeoIPDatabase, err)
			geo = lookup.NewHTTPGeoResolver(cfg.GeoIPEndpoint)
		} else {
			geo = mmdb
		}
	} else {
		geo = lookup.NewHTTPGeoResolver(cfg.GeoIPEndpoint)
	}

	detector := lookup.NewHTTPBotDetector(cfg.BotDetectEndpoint)
	sessions := auth.NewSessionEngine(sessionTTL, sessionCleanupInterval)
	defer sessions.Stop()

	s := NewServer(cfg, store, sessions, geo, detector)

	stopCh := make(chan struct{})
	defer close(stopCh)
	go dataType.StartCounterGC(s.limiter, time.Minute, stopCh)

	log.Printf("HTTP Server listening on :%s ...", cfg.Port)
	return http.ListenAndServe(":"+cfg.Port, s.Router())
}
