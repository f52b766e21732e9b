package dataType

const ServerKageroVersion = "0.3.1"

// VisitorRequest carries the facts gathered about one visitor, one per
// evaluation cycle.
type VisitorRequest struct {
	RemoteIP  string
	Country   string
	UserAgent string
	Host      string
	Query     string
}

// BotDetails are the per-signal flags reported by the bot detector.
type BotDetails struct {
	IsBotUserAgent      bool `json:"isBotUserAgent"`
	IsScraperISP        bool `json:"isScraperISP"`
	IsIPAbuser          bool `json:"isIPAbuser"`
	IsSuspiciousTraffic bool `json:"isSuspiciousTraffic"`
	IsDataCenterASN     bool `json:"isDataCenterASN"`
}

// BotResult is the detector outcome for one evaluation. The zero value is
// the safe default used when the detector is unreachable.
type BotResult struct {
	Score   float64    `json:"score"`
	Details BotDetails `json:"details"`
}

// GeoResult is the outcome of a country lookup for an IP.
type GeoResult struct {
	Country string `json:"country"`
	IP      string `json:"ip"`
}

// Theme is one entry of the fixed blocked-page palette.
type Theme struct {
	Name       string `json:"name"`
	Primary    string `json:"primary"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}
