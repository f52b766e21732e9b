package check

import (
	"context"
	"errors"
	"testing"

	"server_kagero/internal/action"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
)

type stubDetector struct {
	result dataType.BotResult
	err    error
	calls  int
}

func (d *stubDetector) Detect(ctx context.Context, ip, userAgent string) (dataType.BotResult, error) {
	d.calls++
	return d.result, d.err
}

func testConfig(mutate func(*config.AppConfig)) *config.AppConfig {
	cfg := config.DefaultAppConfig()
	cfg.BotDetectionEnabled = false
	if mutate != nil {
		mutate(cfg)
	}
	cfg.Compile()
	return cfg
}

func visitor() dataType.VisitorRequest {
	return dataType.VisitorRequest{
		RemoteIP:  "203.0.113.9",
		Country:   "Germany",
		UserAgent: "Mozilla/5.0",
		Host:      "landing.example.com",
	}
}

func TestEvaluate_AllowsByDefault(t *testing.T) {
	outcome := Evaluate(context.Background(), visitor(), testConfig(nil), nil)
	if outcome.Blocked {
		t.Errorf("Expected default config to allow, got blocked with %s", outcome.Code)
	}
	if outcome.Code != "" || outcome.Reason != "" {
		t.Errorf("Expected empty code and reason when allowed, got %q %q", outcome.Code, outcome.Reason)
	}
}

func TestEvaluate_DomainGate(t *testing.T) {
	cfg := testConfig(func(c *config.AppConfig) {
		c.AllowAllDomains = false
		c.AllowedDomains = []string{"example.com"}
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, nil)
	if outcome.Blocked {
		t.Errorf("Hostname containing a listed domain should pass, got %s", outcome.Code)
	}

	reqData := visitor()
	reqData.Host = "evil.test"
	outcome = Evaluate(context.Background(), reqData, cfg, nil)
	if !outcome.Blocked || outcome.Code != action.CodeDomainBlocked {
		t.Errorf("Expected ERR-DOMAIN-BLOCKED, got blocked=%v code=%s", outcome.Blocked, outcome.Code)
	}
}

func TestEvaluate_DomainGateBeforeOtherRules(t *testing.T) {
	cfg := testConfig(func(c *config.AppConfig) {
		c.AllowAllDomains = false
		c.AllowedDomains = []string{"example.com"}
		c.IPBlacklist = []string{"203.0.113.9"}
		c.BlockedCountries = []string{"Germany"}
	})

	reqData := visitor()
	reqData.Host = "evil.test"
	outcome := Evaluate(context.Background(), reqData, cfg, nil)
	if outcome.Code != action.CodeDomainBlocked {
		t.Errorf("Domain gate must be checked first, got %s", outcome.Code)
	}
}

func TestEvaluate_IPBlacklist(t *testing.T) {
	detector := &stubDetector{result: dataType.BotResult{Score: 0.99}}
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
		c.IPBlacklist = []string{"203.0.113.9"}
		c.BlockedCountries = []string{"Germany"}
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, detector)
	if outcome.Code != action.CodeIPBlacklist {
		t.Errorf("Expected ERR-IP-BLACKLIST regardless of country or bot score, got %s", outcome.Code)
	}
	if detector.calls != 0 {
		t.Errorf("Detector must not be called once the blacklist matched, got %d calls", detector.calls)
	}
}

func TestEvaluate_IPBlacklistCIDR(t *testing.T) {
	cfg := testConfig(func(c *config.AppConfig) {
		c.IPBlacklist = []string{"203.0.113.0/24"}
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, nil)
	if outcome.Code != action.CodeIPBlacklist {
		t.Errorf("Expected CIDR blacklist entry to match, got %s", outcome.Code)
	}
}

func TestEvaluate_IPBlacklistIPv6(t *testing.T) {
	cfg := testConfig(func(c *config.AppConfig) {
		c.IPBlacklist = []string{"2001:db8::9"}
	})

	reqData := visitor()
	reqData.RemoteIP = "2001:db8::9"
	outcome := Evaluate(context.Background(), reqData, cfg, nil)
	if !outcome.Blocked || outcome.Code != action.CodeIPBlacklist {
		t.Errorf("IPv6 blacklist entry must block its address, got blocked=%v code=%s", outcome.Blocked, outcome.Code)
	}

	reqData.RemoteIP = "2001:db8::a"
	outcome = Evaluate(context.Background(), reqData, cfg, nil)
	if outcome.Blocked {
		t.Errorf("Unlisted IPv6 address should pass, got %s", outcome.Code)
	}
}

func TestEvaluate_CountryBlockList(t *testing.T) {
	cfg := testConfig(func(c *config.AppConfig) {
		c.BlockedCountries = []string{"Germany"}
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, nil)
	if outcome.Code != action.CodeCountryBlock {
		t.Errorf("Expected ERR-COUNTRY-BLOCK, got %s", outcome.Code)
	}
}

func TestEvaluate_CountryAllowList(t *testing.T) {
	cfg := testConfig(func(c *config.AppConfig) {
		c.AllowedCountries = []string{"France", "Spain"}
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, nil)
	if outcome.Code != action.CodeCountryBlock {
		t.Errorf("Country absent from a non-empty allow-list must block, got %s", outcome.Code)
	}

	reqData := visitor()
	reqData.Country = "France"
	outcome = Evaluate(context.Background(), reqData, cfg, nil)
	if outcome.Blocked {
		t.Errorf("Listed country should pass, got %s", outcome.Code)
	}
}

func TestEvaluate_BotHighScore(t *testing.T) {
	detector := &stubDetector{result: dataType.BotResult{Score: 0.9}}
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
		c.BlockingCriteria = config.BlockingCriteria{} // minScore absent, defaults to 0.7
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, detector)
	if outcome.Code != action.CodeBotHigh {
		t.Errorf("Score 0.9 over default threshold must return ERR-BOT-HIGH, got %s", outcome.Code)
	}
	if outcome.Reason == "" {
		t.Errorf("Blocked outcome must carry the fixed reason string")
	}
}

func TestEvaluate_BotScoreBelowThreshold(t *testing.T) {
	detector := &stubDetector{result: dataType.BotResult{Score: 0.5}}
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, detector)
	if outcome.Blocked {
		t.Errorf("Score under threshold should pass, got %s", outcome.Code)
	}
}

func TestEvaluate_BotExplicitMinScore(t *testing.T) {
	detector := &stubDetector{result: dataType.BotResult{Score: 0.6}}
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
		c.BlockingCriteria.MinScore = 0.5
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, detector)
	if outcome.Code != action.CodeBotHigh {
		t.Errorf("Score 0.6 over explicit 0.5 threshold must block, got %s", outcome.Code)
	}
}

func TestEvaluate_BotSecondaryPrecedence(t *testing.T) {
	detector := &stubDetector{result: dataType.BotResult{
		Details: dataType.BotDetails{IsBotUserAgent: true, IsDataCenterASN: true},
	}}
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
		c.BlockingCriteria.BlockBotUA = true
		c.BlockingCriteria.BlockDataCenterASN = true
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, detector)
	if outcome.Code != action.CodeUABot {
		t.Errorf("UA bot precedes data center ASN in the secondary order, got %s", outcome.Code)
	}
}

func TestEvaluate_BotCriteriaDisabledFlagIgnored(t *testing.T) {
	detector := &stubDetector{result: dataType.BotResult{
		Details: dataType.BotDetails{IsScraperISP: true},
	}}
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
		c.BlockingCriteria.BlockScraperISP = false
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, detector)
	if outcome.Blocked {
		t.Errorf("Disabled criterion must not fire, got %s", outcome.Code)
	}
}

func TestEvaluate_BotDetectionDisabled(t *testing.T) {
	detector := &stubDetector{result: dataType.BotResult{Score: 1.0}}
	cfg := testConfig(nil)

	outcome := Evaluate(context.Background(), visitor(), cfg, detector)
	if outcome.Blocked {
		t.Errorf("Bot detection disabled must skip the bot step, got %s", outcome.Code)
	}
	if detector.calls != 0 {
		t.Errorf("Detector must not be called when detection is disabled, got %d calls", detector.calls)
	}
}

func TestEvaluate_DetectorFailureDegrades(t *testing.T) {
	detector := &stubDetector{err: errors.New("upstream down")}
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
	})

	outcome := Evaluate(context.Background(), visitor(), cfg, detector)
	if outcome.Blocked {
		t.Errorf("Detector failure must degrade to the zero result, got blocked with %s", outcome.Code)
	}
}

func TestBotCriteria_SecondaryOrder(t *testing.T) {
	cases := []struct {
		name    string
		details dataType.BotDetails
		want    action.Code
	}{
		{"scraper over abuser", dataType.BotDetails{IsScraperISP: true, IsIPAbuser: true}, action.CodeISPScraper},
		{"abuser over suspicious", dataType.BotDetails{IsIPAbuser: true, IsSuspiciousTraffic: true}, action.CodeIPAbuser},
		{"suspicious over datacenter", dataType.BotDetails{IsSuspiciousTraffic: true, IsDataCenterASN: true}, action.CodeTrafficSuspicious},
		{"datacenter alone", dataType.BotDetails{IsDataCenterASN: true}, action.CodeASNDataCenter},
	}

	for _, tc := range cases {
		cfg := testConfig(func(c *config.AppConfig) {
			c.BotDetectionEnabled = true
			c.BlockingCriteria = config.BlockingCriteria{
				BlockBotUA:             true,
				BlockScraperISP:        true,
				BlockIPAbuser:          true,
				BlockSuspiciousTraffic: true,
				BlockDataCenterASN:     true,
			}
		})
		decision := action.NewDecision()
		BotCriteria(visitor(), cfg, dataType.BotResult{Details: tc.details}, decision)
		if !decision.Blocked || decision.Code != tc.want {
			t.Errorf("%s: expected %s, got blocked=%v code=%s", tc.name, tc.want, decision.Blocked, decision.Code)
		}
	}
}

func TestBotCriteria_RechecksBlacklistAndCountry(t *testing.T) {
	// Inside the bot branch the blacklist and country rules are re-checked
	// first, so their codes still win over the bot sub-codes.
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
		c.BlockingCriteria.BlockBotUA = true
		c.IPBlacklist = []string{"203.0.113.9"}
	})
	decision := action.NewDecision()
	BotCriteria(visitor(), cfg, dataType.BotResult{Details: dataType.BotDetails{IsBotUserAgent: true}}, decision)
	if decision.Code != action.CodeIPBlacklist {
		t.Errorf("Blacklist must win inside the bot branch, got %s", decision.Code)
	}

	cfg = testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
		c.BlockingCriteria.BlockBotUA = true
		c.BlockedCountries = []string{"Germany"}
	})
	decision = action.NewDecision()
	BotCriteria(visitor(), cfg, dataType.BotResult{Details: dataType.BotDetails{IsBotUserAgent: true}}, decision)
	if decision.Code != action.CodeCountryBlock {
		t.Errorf("Country block must win inside the bot branch, got %s", decision.Code)
	}
}

func TestBotCriteria_UnknownFallback(t *testing.T) {
	// A firing score with no matching sub-code cannot normally happen, but
	// the fallback must stay within the fixed enumeration.
	cfg := testConfig(func(c *config.AppConfig) {
		c.BotDetectionEnabled = true
	})
	got := pickBlockCode(visitor(), cfg, dataType.BotResult{})
	if got != action.CodeUnknown {
		t.Errorf("Expected ERR-UNKNOWN fallback, got %s", got)
	}
}
