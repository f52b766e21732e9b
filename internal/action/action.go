package action

// State tracks whether the evaluation pipeline should keep running.
type State int

const (
	Continue State = iota // next check may run
	Done                  // a check produced a final outcome
)

// Code identifies the single cause of a blocked evaluation.
type Code string

const (
	CodeBotHigh           Code = "ERR-BOT-HIGH"
	CodeCountryBlock      Code = "ERR-COUNTRY-BLOCK"
	CodeIPBlacklist       Code = "ERR-IP-BLACKLIST"
	CodeISPScraper        Code = "ERR-ISP-SCRAPER"
	CodeASNDataCenter     Code = "ERR-ASN-DATACENTER"
	CodeTrafficSuspicious Code = "ERR-TRAFFIC-SUSPICIOUS"
	CodeUABot             Code = "ERR-UA-BOT"
	CodeIPAbuser          Code = "ERR-IP-ABUSER"
	CodeDomainBlocked     Code = "ERR-DOMAIN-BLOCKED"
	CodeRateLimit         Code = "ERR-RATE-LIMIT"
	CodeConfigLoad        Code = "ERR-CONFIG-LOAD"
	CodeBotDetect         Code = "ERR-BOT-DETECT"
	CodeGeoIP             Code = "ERR-GEOIP"
	CodeInvalidPass       Code = "ERR-INVALID-PASS"
	CodeUnknown           Code = "ERR-UNKNOWN"
)

var codeMessages = map[Code]string{
	CodeBotHigh:           "Automated traffic score above threshold",
	CodeCountryBlock:      "Country not permitted",
	CodeIPBlacklist:       "IP address is blacklisted",
	CodeISPScraper:        "Scraper hosting provider detected",
	CodeASNDataCenter:     "Data center network detected",
	CodeTrafficSuspicious: "Suspicious traffic pattern detected",
	CodeUABot:             "Bot user agent detected",
	CodeIPAbuser:          "IP address flagged for abuse",
	CodeDomainBlocked:     "Domain not allowed",
	CodeRateLimit:         "Too many requests",
	CodeConfigLoad:        "Configuration could not be loaded",
	CodeBotDetect:         "Bot detection unavailable",
	CodeGeoIP:             "Geo lookup unavailable",
	CodeInvalidPass:       "Invalid password",
	CodeUnknown:           "Access denied",
}

// Message returns the fixed human-readable string for a code.
func (c Code) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return codeMessages[CodeUnknown]
}

// Decision saves the result of the evaluation
type Decision struct {
	State   State
	Blocked bool
	Code    Code
}

func NewDecision() *Decision {
	return &Decision{State: Continue}
}

// Block finalizes the decision with the given cause. The first block wins;
// later calls are ignored.
func (d *Decision) Block(c Code) {
	if d.State == Done {
		return
	}
	d.State = Done
	d.Blocked = true
	d.Code = c
}

// Allow finalizes the decision as not blocked.
func (d *Decision) Allow() {
	if d.State == Done {
		return
	}
	d.State = Done
	d.Blocked = false
}

// Outcome is the wire form of a finished decision.
type Outcome struct {
	Blocked bool   `json:"blocked"`
	Code    Code   `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func (d *Decision) Outcome() Outcome {
	if !d.Blocked {
		return Outcome{Blocked: false}
	}
	return Outcome{
		Blocked: true,
		Code:    d.Code,
		Reason:  d.Code.Message(),
	}
}
