package check

import (
	"server_kagero/internal/action"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
)

// BotCriteria evaluates each enabled criterion against the detector result.
// Any firing criterion blocks; the cause is picked by pickBlockCode.
func BotCriteria(reqData dataType.VisitorRequest, cfg *config.AppConfig, result dataType.BotResult, decision *action.Decision) {
	if !cfg.BotDetectionEnabled {
		return
	}
	crit := cfg.BlockingCriteria
	det := result.Details

	fired := (crit.BlockBotUA && det.IsBotUserAgent) ||
		(crit.BlockScraperISP && det.IsScraperISP) ||
		(crit.BlockIPAbuser && det.IsIPAbuser) ||
		(crit.BlockSuspiciousTraffic && det.IsSuspiciousTraffic) ||
		(crit.BlockDataCenterASN && det.IsDataCenterASN) ||
		result.Score >= cfg.EffectiveMinScore()
	if !fired {
		return
	}

	decision.Block(pickBlockCode(reqData, cfg, result))
}

// pickBlockCode selects the single reported cause. The blacklist and
// country rules are re-checked first, so those codes still win inside the
// bot branch; the remaining order is fixed: UA bot, scraper ISP, IP abuser,
// suspicious traffic, data center ASN, high score.
func pickBlockCode(reqData dataType.VisitorRequest, cfg *config.AppConfig, result dataType.BotResult) action.Code {
	crit := cfg.BlockingCriteria
	det := result.Details

	switch {
	case cfg.BlacklistContains(reqData.RemoteIP):
		return action.CodeIPBlacklist
	case cfg.CountryBlocked(reqData.Country):
		return action.CodeCountryBlock
	case !cfg.CountryAllowed(reqData.Country):
		return action.CodeCountryBlock
	case crit.BlockBotUA && det.IsBotUserAgent:
		return action.CodeUABot
	case crit.BlockScraperISP && det.IsScraperISP:
		return action.CodeISPScraper
	case crit.BlockIPAbuser && det.IsIPAbuser:
		return action.CodeIPAbuser
	case crit.BlockSuspiciousTraffic && det.IsSuspiciousTraffic:
		return action.CodeTrafficSuspicious
	case crit.BlockDataCenterASN && det.IsDataCenterASN:
		return action.CodeASNDataCenter
	case result.Score >= cfg.EffectiveMinScore():
		return action.CodeBotHigh
	default:
		return action.CodeUnknown
	}
}
