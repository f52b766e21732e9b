package check

import (
	"server_kagero/internal/action"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/utils"
)

// DomainAllowList gates on the current hostname. The gate is open when all
// domains are allowed or the allow-list is empty.
func DomainAllowList(reqData dataType.VisitorRequest, cfg *config.AppConfig, decision *action.Decision) {
	if cfg.DomainAllowed(reqData.Host) {
		return
	}
	utils.LogInfo(reqData, "", "DomainAllowList")
	decision.Block(action.CodeDomainBlocked)
}
