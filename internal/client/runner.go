package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"server_kagero/internal/action"
	"server_kagero/internal/check"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/lookup"
	"server_kagero/internal/utils"
)

// Runner is the polling agent: it periodically fetches the published
// configuration, gathers visitor facts through the lookup capabilities and
// runs the evaluation, delivering each outcome to OnOutcome.
//
// Ticks never overlap: a tick arriving while the previous cycle is still
// running is skipped.
type Runner struct {
	ConfigURL string
	Host      string
	UserAgent string
	Interval  time.Duration

	SelfIP    lookup.SelfIPResolver
	Geo       lookup.GeoResolver
	Detector  lookup.BotDetector
	OnOutcome func(action.Outcome)

	Client *http.Client

	cached  atomic.Pointer[config.AppConfig]
	running atomic.Bool
}

func (r *Runner) httpClient() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Run executes one cycle immediately, then one per tick until the context
// is canceled. A started cycle always runs to completion.
func (r *Runner) Run(ctx context.Context) {
	r.Tick(ctx)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs a single evaluation cycle unless one is already in flight.
// Returns false when the tick was skipped.
func (r *Runner) Tick(ctx context.Context) bool {
	if !r.running.CompareAndSwap(false, true) {
		return false
	}
	defer r.running.Store(false)

	r.cycle(ctx)
	return true
}

func (r *Runner) cycle(ctx context.Context) {
	cfg := r.fetchConfig(ctx)
	if cfg == nil {
		r.deliver(action.Outcome{
			Blocked: true,
			Code:    action.CodeConfigLoad,
			Reason:  action.CodeConfigLoad.Message(),
		})
		return
	}

	reqData := dataType.VisitorRequest{
		RemoteIP:  lookup.FallbackIP,
		Country:   lookup.DefaultCountry,
		UserAgent: r.UserAgent,
		Host:      r.Host,
	}

	if r.SelfIP != nil {
		ip, err := r.SelfIP.Resolve(ctx)
		if err != nil {
			utils.LogError(reqData, fmt.Sprintf("self IP lookup failed: %v", err), "Runner.cycle")
		}
		reqData.RemoteIP = ip
	}

	if r.Geo != nil {
		geo, err := r.Geo.Country(ctx, reqData.RemoteIP)
		if err != nil {
			utils.LogError(reqData, fmt.Sprintf("geoip lookup failed: %v", err), "Runner.cycle")
		}
		reqData.Country = geo.Country
	}

	r.deliver(check.Evaluate(ctx, reqData, cfg, r.Detector))
}

func (r *Runner) deliver(outcome action.Outcome) {
	if r.OnOutcome != nil {
		r.OnOutcome(outcome)
	}
}

// fetchConfig returns the freshly fetched configuration, the cached one on
// fetch failure, or nil when neither exists.
func (r *Runner) fetchConfig(ctx context.Context) *config.AppConfig {
	cfg, err := r.fetchRemote(ctx)
	if err != nil {
		utils.LogError(dataType.VisitorRequest{Host: r.Host},
			fmt.Sprintf("config fetch failed: %v", err), "Runner.fetchConfig")
		return r.cached.Load()
	}
	r.cached.Store(cfg)
	return cfg
}

func (r *Runner) fetchRemote(ctx context.Context) (*config.AppConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ConfigURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("config endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return config.ParseAppConfig(body)
}
