package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"server_kagero/internal/dataType"

	"github.com/go-playground/validator/v10"
)

const (
	// AdminPasswordEnv always overrides the persisted secret at load time.
	AdminPasswordEnv     = "KAGERO_ADMIN_PASSWORD"
	defaultAdminPassword = "kagero-admin"

	// DefaultMinScore applies when blockingCriteria.minScore is absent.
	DefaultMinScore = 0.7
)

type BlockingCriteria struct {
	MinScore               float64 `json:"minScore" validate:"gte=0,lte=1"`
	BlockBotUA             bool    `json:"blockBotUA"`
	BlockScraperISP        bool    `json:"blockScraperISP"`
	BlockIPAbuser          bool    `json:"blockIPAbuser"`
	BlockSuspiciousTraffic bool    `json:"blockSuspiciousTraffic"`
	BlockDataCenterASN     bool    `json:"blockDataCenterASN"`
}

// AppConfig is the single mutable configuration record. It is replaced
// wholesale on every admin write; readers hold a snapshot pointer.
type AppConfig struct {
	BotDetectionEnabled bool             `json:"botDetectionEnabled"`
	BlockingCriteria    BlockingCriteria `json:"blockingCriteria"`
	AllowedDomains      []string         `json:"allowedDomains"`
	AllowAllDomains     bool             `json:"allowAllDomains"`
	AllowedCountries    []string         `json:"allowedCountries"`
	BlockedCountries    []string         `json:"blockedCountries"`
	IPBlacklist         []string         `json:"ipBlacklist"`
	FinalURL            string           `json:"finalUrl" validate:"omitempty,url"`
	Theme               string           `json:"theme"`
	AdminPassword       string           `json:"adminPassword,omitempty"`
	LastUpdated         string           `json:"lastUpdated"`

	blacklist        *dataType.TrieNode
	domains          *dataType.DomainRuleList
	allowedCountries map[string]struct{}
	blockedCountries map[string]struct{}
}

// PublicConfig is the redacted projection served to anonymous callers. It
// is a fixed field allow-list; the admin secret has no field here.
type PublicConfig struct {
	BotDetectionEnabled bool             `json:"botDetectionEnabled"`
	BlockingCriteria    BlockingCriteria `json:"blockingCriteria"`
	AllowedDomains      []string         `json:"allowedDomains"`
	AllowAllDomains     bool             `json:"allowAllDomains"`
	AllowedCountries    []string         `json:"allowedCountries"`
	BlockedCountries    []string         `json:"blockedCountries"`
	IPBlacklist         []string         `json:"ipBlacklist"`
	FinalURL            string           `json:"finalUrl"`
	Theme               string           `json:"theme"`
	LastUpdated         string           `json:"lastUpdated"`
}

var validate = validator.New()

// Validate checks an incoming admin write before it replaces the record.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Theme != "" {
		if _, ok := Palette[c.Theme]; !ok {
			return fmt.Errorf("unknown theme %q", c.Theme)
		}
	}
	return nil
}

// Compile builds the lookup structures. Must run before the record is
// published to readers.
func (c *AppConfig) Compile() {
	c.blacklist = &dataType.TrieNode{}
	for _, entry := range c.IPBlacklist {
		c.blacklist.InsertString(entry)
	}

	c.domains = &dataType.DomainRuleList{}
	for _, d := range c.AllowedDomains {
		if d == "" {
			continue
		}
		c.domains.Append(&dataType.DomainRule{Pattern: d})
	}

	c.allowedCountries = make(map[string]struct{}, len(c.AllowedCountries))
	for _, country := range c.AllowedCountries {
		c.allowedCountries[country] = struct{}{}
	}
	c.blockedCountries = make(map[string]struct{}, len(c.BlockedCountries))
	for _, country := range c.BlockedCountries {
		c.blockedCountries[country] = struct{}{}
	}
}

// BlacklistContains reports whether the IP matches an ipBlacklist entry.
func (c *AppConfig) BlacklistContains(ip string) bool {
	return c.blacklist != nil && c.blacklist.SearchString(ip)
}

// DomainAllowed applies the domain gate: pass when all domains are allowed,
// the allow-list is empty, or the hostname contains a listed domain.
func (c *AppConfig) DomainAllowed(hostname string) bool {
	if c.AllowAllDomains {
		return true
	}
	if c.domains.Empty() {
		return true
	}
	return c.domains.Match(hostname)
}

// OriginAllowed applies the CORS boundary: exact match or subdomain of a
// listed entry.
func (c *AppConfig) OriginAllowed(hostname string) bool {
	if c.AllowAllDomains {
		return true
	}
	if c.domains.Empty() {
		return false
	}
	return c.domains.MatchOrigin(hostname)
}

func (c *AppConfig) CountryBlocked(country string) bool {
	_, ok := c.blockedCountries[country]
	return ok
}

// CountryAllowed reports whether the allow-list admits the country. An
// empty allow-list admits everyone.
func (c *AppConfig) CountryAllowed(country string) bool {
	if len(c.allowedCountries) == 0 {
		return true
	}
	_, ok := c.allowedCountries[country]
	return ok
}

// EffectiveMinScore returns minScore, defaulting when unset.
func (c *AppConfig) EffectiveMinScore() float64 {
	if c.BlockingCriteria.MinScore <= 0 {
		return DefaultMinScore
	}
	return c.BlockingCriteria.MinScore
}

// Clone returns a deep copy without compiled lookups.
func (c *AppConfig) Clone() *AppConfig {
	next := &AppConfig{
		BotDetectionEnabled: c.BotDetectionEnabled,
		BlockingCriteria:    c.BlockingCriteria,
		AllowedDomains:      append([]string(nil), c.AllowedDomains...),
		AllowAllDomains:     c.AllowAllDomains,
		AllowedCountries:    append([]string(nil), c.AllowedCountries...),
		BlockedCountries:    append([]string(nil), c.BlockedCountries...),
		IPBlacklist:         append([]string(nil), c.IPBlacklist...),
		FinalURL:            c.FinalURL,
		Theme:               c.Theme,
		AdminPassword:       c.AdminPassword,
		LastUpdated:         c.LastUpdated,
	}
	return next
}

// Public returns the redacted projection.
func (c *AppConfig) Public() PublicConfig {
	return PublicConfig{
		BotDetectionEnabled: c.BotDetectionEnabled,
		BlockingCriteria:    c.BlockingCriteria,
		AllowedDomains:      append([]string(nil), c.AllowedDomains...),
		AllowAllDomains:     c.AllowAllDomains,
		AllowedCountries:    append([]string(nil), c.AllowedCountries...),
		BlockedCountries:    append([]string(nil), c.BlockedCountries...),
		IPBlacklist:         append([]string(nil), c.IPBlacklist...),
		FinalURL:            c.FinalURL,
		Theme:               c.Theme,
		LastUpdated:         c.LastUpdated,
	}
}

// DefaultAppConfig is the record created when no persisted state exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		BotDetectionEnabled: true,
		BlockingCriteria: BlockingCriteria{
			MinScore:           DefaultMinScore,
			BlockBotUA:         true,
			BlockScraperISP:    true,
			BlockIPAbuser:      true,
			BlockDataCenterASN: true,
		},
		AllowAllDomains: true,
		FinalURL:        "https://example.com/",
		Theme:           "default",
		LastUpdated:     time.Now().UTC().Format(time.RFC3339),
	}
}

// ParseAppConfig unmarshals a configuration document and compiles its
// lookups. Used by the polling agent on fetched config bodies.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Compile()
	return &cfg, nil
}

// Store owns the single mutable record behind an atomic pointer swap.
// Readers may observe the old or new record during a write, never a
// partially written one.
type Store struct {
	path string
	cur  atomic.Pointer[AppConfig]
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted record, creating the hardcoded default when the
// file is absent. The environment-sourced admin password is re-applied on
// every load. Load never leaves the store empty: on any failure the default
// record becomes authoritative and the error is returned for logging only.
func (s *Store) Load() error {
	var cfg *AppConfig
	var loadErr error

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		cfg, loadErr = ParseAppConfig(data)
		if loadErr != nil {
			cfg = DefaultAppConfig()
		}
	case os.IsNotExist(err):
		cfg = DefaultAppConfig()
		s.persist(cfg)
	default:
		cfg = DefaultAppConfig()
		loadErr = err
	}

	s.applyEnvPassword(cfg)
	cfg.Compile()
	s.cur.Store(cfg)
	return loadErr
}

func (s *Store) applyEnvPassword(cfg *AppConfig) {
	if v := os.Getenv(AdminPasswordEnv); v != "" {
		cfg.AdminPassword = v
		return
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = defaultAdminPassword
	}
}

// Current returns the live snapshot.
func (s *Store) Current() *AppConfig {
	return s.cur.Load()
}

// Update replaces the record wholesale. The previous admin password is
// preserved unless the write supplies one; lastUpdated is always stamped.
// Persistence is best-effort: the in-memory record is authoritative.
func (s *Store) Update(next *AppConfig) *AppConfig {
	applied := next.Clone()
	if applied.AdminPassword == "" {
		if prev := s.cur.Load(); prev != nil {
			applied.AdminPassword = prev.AdminPassword
		}
	}
	applied.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	applied.Compile()
	s.cur.Store(applied)
	s.persist(applied)
	return applied
}

func (s *Store) persist(cfg *AppConfig) {
	if s.path == "" {
		return
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Printf("failed to encode config for %s: %v", s.path, err)
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		log.Printf("failed to persist config to %s: %v", s.path, err)
	}
}
