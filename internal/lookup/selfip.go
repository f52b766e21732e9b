package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FallbackIP is used when the visitor's public IP cannot be resolved.
const FallbackIP = "127.0.0.1"

// SelfIPResolver resolves the caller's public IP.
type SelfIPResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// HTTPSelfIPResolver queries an ipify-style {"ip": "..."} endpoint.
type HTTPSelfIPResolver struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPSelfIPResolver(endpoint string) *HTTPSelfIPResolver {
	return &HTTPSelfIPResolver{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *HTTPSelfIPResolver) Resolve(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Endpoint, nil)
	if err != nil {
		return FallbackIP, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return FallbackIP, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return FallbackIP, fmt.Errorf("ip lookup returned %d", resp.StatusCode)
	}

	var payload struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return FallbackIP, err
	}
	if payload.IP == "" {
		return FallbackIP, fmt.Errorf("ip lookup returned empty result")
	}
	return payload.IP, nil
}
