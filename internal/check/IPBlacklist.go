package check

import (
	"server_kagero/internal/action"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/utils"
)

func IPBlacklist(reqData dataType.VisitorRequest, cfg *config.AppConfig, decision *action.Decision) {
	if !cfg.BlacklistContains(reqData.RemoteIP) {
		return
	}
	utils.LogInfo(reqData, "", "IPBlacklist")
	decision.Block(action.CodeIPBlacklist)
}
