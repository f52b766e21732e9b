package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"server_kagero/internal/dataType"
	"server_kagero/internal/utils"
)

// BotDetector produces a bot score with detail flags for one visitor.
// Single attempt; callers fall back to the zero BotResult on error.
type BotDetector interface {
	Detect(ctx context.Context, ip, userAgent string) (dataType.BotResult, error)
}

// LocalBotResult flags robot user agents without an upstream detector.
func LocalBotResult(userAgent string) dataType.BotResult {
	if utils.IsBotUA(userAgent) {
		return dataType.BotResult{
			Score:   0.95,
			Details: dataType.BotDetails{IsBotUserAgent: true},
		}
	}
	return dataType.BotResult{}
}

// HTTPBotDetector posts {ip, user_agent} to an upstream detector and merges
// the local user-agent pass into the returned details. With no endpoint
// configured it degrades to the local pass alone.
type HTTPBotDetector struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPBotDetector(endpoint string) *HTTPBotDetector {
	return &HTTPBotDetector{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *HTTPBotDetector) Detect(ctx context.Context, ip, userAgent string) (dataType.BotResult, error) {
	if d.Endpoint == "" {
		return LocalBotResult(userAgent), nil
	}

	payload, err := json.Marshal(map[string]string{
		"ip":         ip,
		"user_agent": userAgent,
	})
	if err != nil {
		return dataType.BotResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return dataType.BotResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return dataType.BotResult{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return dataType.BotResult{}, fmt.Errorf("bot detector returned %d", resp.StatusCode)
	}

	var result dataType.BotResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return dataType.BotResult{}, err
	}
	if utils.IsBotUA(userAgent) {
		result.Details.IsBotUserAgent = true
	}
	return result, nil
}
