package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"

	"server_kagero/internal/action"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code action.Code) {
	writeJSON(w, status, map[string]string{"error": string(code)})
}

// clientIP resolves the connecting IP, preferring the configured proxy
// headers over the socket address.
func (s *Server) clientIP(r *http.Request) string {
	for _, headerName := range s.cfg.ConnectingIPHeaders {
		if ipVal := r.Header.Get(headerName); ipVal != "" {
			if strings.Contains(ipVal, ",") {
				parts := strings.Split(ipVal, ",")
				return strings.TrimSpace(parts[0])
			}
			return ipVal
		}
	}

	ipStr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ipStr
}

// corsMiddleware applies the domain allow-list to cross-origin callers.
// Requests without an Origin header are same-origin and pass through.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		appCfg := s.store.Current()
		parsed, err := url.Parse(origin)
		if err != nil || appCfg == nil || !appCfg.OriginAllowed(parsed.Hostname()) {
			writeJSONError(w, http.StatusForbidden, action.CodeDomainBlocked)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Add("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware enforces the fixed request window per client on the
// public API. Admin paths are exempt.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/admin") {
			next.ServeHTTP(w, r)
			return
		}

		key := s.clientIP(r)
		s.limiter.Add(key, 1)
		if s.limiter.Query(key, s.rateWindow) > s.rateLimit {
			rateLimitedCounter.Inc()
			writeJSONError(w, http.StatusTooManyRequests, action.CodeRateLimit)
			return
		}
		next.ServeHTTP(w, r)
	})
}
