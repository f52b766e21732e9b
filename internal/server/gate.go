package server

import (
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"server_kagero/internal/action"
	"server_kagero/internal/check"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/lookup"
	"server_kagero/internal/utils"

	"github.com/google/uuid"
)

var blockedPageTpl = template.Must(template.New("blocked").Parse(blockedPageHTML))

const blockedPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Access Denied</title>
<style>
body { margin: 0; font-family: -apple-system, "Segoe UI", sans-serif; background: {{.Theme.Background}}; color: {{.Theme.Text}}; display: flex; align-items: center; justify-content: center; min-height: 100vh; }
.card { max-width: 28rem; padding: 2.5rem; text-align: center; }
.card h1 { color: {{.Theme.Primary}}; margin-bottom: 0.5rem; }
.card .code { color: {{.Theme.Accent}}; font-family: monospace; }
.card footer { margin-top: 2rem; font-size: 0.8rem; opacity: 0.7; }
</style>
</head>
<body>
<div class="card">
<h1>Access Denied</h1>
<p>{{.Reason}}</p>
<p class="code">{{.Code}}</p>
<footer>{{.EdgeTag}} &middot; {{.ConnectIP}} &middot; {{.Date}}</footer>
</div>
</body>
</html>
`

// handleGate evaluates the visitor and either forwards to the configured
// destination or renders the themed blocked page.
func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	appCfg := s.store.Current()
	visitID := uuid.NewString()

	reqData := dataType.VisitorRequest{
		RemoteIP:  s.clientIP(r),
		UserAgent: r.UserAgent(),
		Host:      hostOnly(r.Host),
		Query:     r.URL.RawQuery,
	}

	if appCfg == nil {
		decisionCounter.WithLabelValues(string(action.CodeConfigLoad)).Inc()
		s.renderBlockedPage(w, config.DefaultAppConfig(), reqData, action.Outcome{
			Blocked: true,
			Code:    action.CodeConfigLoad,
			Reason:  action.CodeConfigLoad.Message(),
		})
		return
	}

	geo, err := s.geo.Country(r.Context(), reqData.RemoteIP)
	if err != nil {
		utils.LogError(reqData, fmt.Sprintf("geoip lookup failed: %v", err), "handleGate")
		geo = lookup.DefaultGeoResult(reqData.RemoteIP)
	}
	reqData.Country = geo.Country

	outcome := check.Evaluate(r.Context(), reqData, appCfg, s.detector)
	decisionCounter.WithLabelValues(decisionLabel(outcome.Blocked, string(outcome.Code))).Inc()

	uaSummary := utils.DescribeUA(reqData.UserAgent)
	if !outcome.Blocked {
		utils.LogInfo(reqData, fmt.Sprintf("visit=%s allowed %s", visitID, uaSummary), "handleGate")
		http.Redirect(w, r, forwardURL(appCfg.FinalURL, reqData.Query), http.StatusFound)
		return
	}

	utils.LogInfo(reqData, fmt.Sprintf("visit=%s blocked code=%s %s", visitID, outcome.Code, uaSummary), "handleGate")
	s.renderBlockedPage(w, appCfg, reqData, outcome)
}

// forwardURL carries the visitor's query string over to the destination.
func forwardURL(target, query string) string {
	if query == "" {
		return target
	}
	if strings.Contains(target, "?") {
		return target + "&" + query
	}
	return target + "?" + query
}

func hostOnly(hostport string) string {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}
	return host
}

func (s *Server) renderBlockedPage(w http.ResponseWriter, appCfg *config.AppConfig, reqData dataType.VisitorRequest, outcome action.Outcome) {
	data := struct {
		Code      action.Code
		Reason    string
		Theme     dataType.Theme
		EdgeTag   string
		ConnectIP string
		Date      string
	}{
		Code:      outcome.Code,
		Reason:    outcome.Reason,
		Theme:     config.LookupTheme(appCfg.Theme),
		EdgeTag:   s.cfg.NodeName,
		ConnectIP: reqData.RemoteIP,
		Date:      time.Now().Format("2006-01-02 15:04:05"),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	if err := blockedPageTpl.Execute(w, data); err != nil {
		utils.LogError(reqData, fmt.Sprintf("Error executing template: %v", err), "renderBlockedPage")
	}
}
