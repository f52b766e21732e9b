package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"server_kagero/internal/action"
	"server_kagero/internal/config"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// requireAdmin validates the bearer token against the session engine. A
// token authorizes only if login issued it and it has not expired.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.sessions.Validate(bearerToken(r)) {
		return true
	}
	writeJSONError(w, http.StatusUnauthorized, action.CodeUnknown)
	return false
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusUnauthorized, action.CodeInvalidPass)
		return
	}

	appCfg := s.store.Current()
	if appCfg == nil || req.Password == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(appCfg.AdminPassword)) != 1 {
		writeJSONError(w, http.StatusUnauthorized, action.CodeInvalidPass)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   s.sessions.Issue(),
	})
}

func (s *Server) handleAdminConfigGet(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	appCfg := s.store.Current()
	if appCfg == nil {
		writeJSONError(w, http.StatusInternalServerError, action.CodeConfigLoad)
		return
	}
	writeJSON(w, http.StatusOK, appCfg)
}

func (s *Server) handleAdminConfigPost(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var incoming config.AppConfig
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := incoming.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	applied := s.store.Update(&incoming)
	configWriteCounter.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"lastUpdated": applied.LastUpdated,
	})
}
