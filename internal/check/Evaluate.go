package check

import (
	"context"
	"fmt"

	"server_kagero/internal/action"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/lookup"
	"server_kagero/internal/utils"
)

type CheckFunc func(dataType.VisitorRequest, *config.AppConfig, *action.Decision)

// Evaluate runs the decision table: domain gate, IP blacklist, country
// block-list, country allow-list, then bot criteria. First match wins. The
// bot result is fetched only when the pipeline reaches the bot step with
// detection enabled; a fetch failure degrades to the zero result, so
// evaluation is never fatal.
func Evaluate(ctx context.Context, reqData dataType.VisitorRequest, cfg *config.AppConfig, detector lookup.BotDetector) action.Outcome {
	decision := action.NewDecision()

	checkFuncs := make([]CheckFunc, 0)
	checkFuncs = append(checkFuncs, DomainAllowList)
	checkFuncs = append(checkFuncs, IPBlacklist)
	checkFuncs = append(checkFuncs, CountryBlockList)
	checkFuncs = append(checkFuncs, CountryAllowList)

	for _, checkFunc := range checkFuncs {
		checkFunc(reqData, cfg, decision)
		if decision.State == action.Done {
			break
		}
	}

	if decision.State != action.Done && cfg.BotDetectionEnabled {
		var result dataType.BotResult
		if detector != nil {
			var err error
			result, err = detector.Detect(ctx, reqData.RemoteIP, reqData.UserAgent)
			if err != nil {
				utils.LogError(reqData, fmt.Sprintf("bot detection failed: %v", err), "Evaluate")
				result = dataType.BotResult{}
			}
		}
		BotCriteria(reqData, cfg, result, decision)
	}

	if decision.State != action.Done {
		decision.Allow()
	}
	return decision.Outcome()
}
