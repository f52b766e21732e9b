package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"server_kagero/internal/action"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/lookup"
	"server_kagero/internal/utils"

	"github.com/gorilla/mux"
)

func (s *Server) handlePublicConfig(w http.ResponseWriter, r *http.Request) {
	appCfg := s.store.Current()
	if appCfg == nil {
		writeJSONError(w, http.StatusInternalServerError, action.CodeConfigLoad)
		return
	}
	writeJSON(w, http.StatusOK, appCfg.Public())
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.Themes())
}

func (s *Server) handleBotDetect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IP        string `json:"ip"`
		UserAgent string `json:"user_agent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, action.CodeBotDetect)
		return
	}

	result, err := s.detector.Detect(r.Context(), req.IP, req.UserAgent)
	if err != nil {
		utils.LogError(dataType.VisitorRequest{RemoteIP: req.IP, UserAgent: req.UserAgent},
			fmt.Sprintf("bot detector unreachable: %v", err), "handleBotDetect")
		result = dataType.BotResult{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGeoIP(w http.ResponseWriter, r *http.Request) {
	ip := mux.Vars(r)["ip"]
	result, err := s.geo.Country(r.Context(), ip)
	if err != nil {
		utils.LogError(dataType.VisitorRequest{RemoteIP: ip},
			fmt.Sprintf("geoip lookup failed: %v", err), "handleGeoIP")
		result = lookup.DefaultGeoResult(ip)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"code":    http.StatusOK,
		"version": dataType.ServerKageroVersion,
	})
}
