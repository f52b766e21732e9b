package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"server_kagero/internal/dataType"

	"github.com/oschwald/geoip2-golang"
)

// DefaultCountry is the safe fallback when no lookup succeeds.
const DefaultCountry = "Unknown"

// GeoResolver resolves the country for an IP. Implementations do a single
// attempt; callers fall back to DefaultGeoResult on error.
type GeoResolver interface {
	Country(ctx context.Context, ip string) (dataType.GeoResult, error)
}

func DefaultGeoResult(ip string) dataType.GeoResult {
	return dataType.GeoResult{Country: DefaultCountry, IP: ip}
}

// HTTPGeoResolver queries an ip-api style JSON endpoint.
type HTTPGeoResolver struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPGeoResolver(endpoint string) *HTTPGeoResolver {
	return &HTTPGeoResolver{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (g *HTTPGeoResolver) Country(ctx context.Context, ip string) (dataType.GeoResult, error) {
	reqURL := strings.TrimRight(g.Endpoint, "/") + "/" + ip
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return DefaultGeoResult(ip), err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return DefaultGeoResult(ip), err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return DefaultGeoResult(ip), fmt.Errorf("geoip upstream returned %d", resp.StatusCode)
	}

	var payload struct {
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return DefaultGeoResult(ip), err
	}
	if payload.Country == "" {
		return DefaultGeoResult(ip), fmt.Errorf("geoip upstream returned no country for %s", ip)
	}
	return dataType.GeoResult{Country: payload.Country, IP: ip}, nil
}

// MMDBGeoResolver reads a local MaxMind country database.
type MMDBGeoResolver struct {
	db *geoip2.Reader
}

func OpenMMDBGeoResolver(path string) (*MMDBGeoResolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MMDBGeoResolver{db: db}, nil
}

func (m *MMDBGeoResolver) Country(ctx context.Context, ip string) (dataType.GeoResult, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return DefaultGeoResult(ip), fmt.Errorf("invalid IP %q", ip)
	}
	record, err := m.db.Country(parsed)
	if err != nil {
		return DefaultGeoResult(ip), err
	}
	name := record.Country.Names["en"]
	if name == "" {
		return DefaultGeoResult(ip), fmt.Errorf("no country record for %s", ip)
	}
	return dataType.GeoResult{Country: name, IP: ip}, nil
}

func (m *MMDBGeoResolver) Close() error {
	return m.db.Close()
}
