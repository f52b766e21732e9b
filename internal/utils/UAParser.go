package utils

import (
	"fmt"

	"github.com/medama-io/go-useragent"
)

var uaParser = useragent.NewParser()

// IsBotUA reports whether the user agent string identifies a known robot.
func IsBotUA(inputUA string) bool {
	if inputUA == "" {
		return false
	}
	return uaParser.Parse(inputUA).IsBot()
}

// DescribeUA renders a short UA summary for log lines.
func DescribeUA(inputUA string) string {
	agent := uaParser.Parse(inputUA)
	return fmt.Sprintf("Browser:%v,OS:%v,Bot:%v", agent.Browser(), agent.OS(), agent.IsBot())
}
