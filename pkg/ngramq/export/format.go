package export

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// CurrencySymbol prefixes cost and CPA values.
var CurrencySymbol = "£"

// FormatMetric renders value the way the named column is displayed:
// currency for cost columns, a percent sign for rates, grouped integers for
// counts and three decimals for waste scores.
func FormatMetric(value float64, metric string) string {
	switch metric {
	case "total_cost", "cpa":
		return CurrencySymbol + money(value)
	case "ctr", "cvr":
		return fmt.Sprintf("%.2f%%", value)
	case "total_clicks", "total_conversions", "total_impressions", "query_count":
		return humanize.Comma(int64(math.Trunc(value)))
	case "waste_score":
		return fmt.Sprintf("%.3f", value)
	default:
		return fmt.Sprintf("%.2f", value)
	}
}

func money(v float64) string {
	if v < 0 {
		return "-" + humanize.FormatFloat("#,###.##", -v)
	}
	return humanize.FormatFloat("#,###.##", v)
}
