package check

import (
	"server_kagero/internal/action"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/utils"
)

// CountryBlockList blocks countries on the block-list. Checked before the
// allow-list.
func CountryBlockList(reqData dataType.VisitorRequest, cfg *config.AppConfig, decision *action.Decision) {
	if !cfg.CountryBlocked(reqData.Country) {
		return
	}
	utils.LogInfo(reqData, "", "CountryBlockList")
	decision.Block(action.CodeCountryBlock)
}

// CountryAllowList blocks countries absent from a non-empty allow-list.
func CountryAllowList(reqData dataType.VisitorRequest, cfg *config.AppConfig, decision *action.Decision) {
	if cfg.CountryAllowed(reqData.Country) {
		return
	}
	utils.LogInfo(reqData, "", "CountryAllowList")
	decision.Block(action.CodeCountryBlock)
}
