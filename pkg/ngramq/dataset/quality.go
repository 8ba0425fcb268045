package dataset

// QualityReport summarizes a validated table before analysis.
type QualityReport struct {
	TotalRows           int     `json:"total_rows"`
	RowsWithConversions int     `json:"rows_with_conversions"`
	ConversionRatePct   float64 `json:"conversion_rate_pct"`
	TotalClicks         int64   `json:"total_clicks"`
	TotalCost           float64 `json:"total_cost"`
	TotalConversions    int64   `json:"total_conversions"`
	TotalImpressions    int64   `json:"total_impressions"`
	AvgCPA              float64 `json:"avg_cpa"`
	ZeroClickRows       int     `json:"zero_click_rows"`
	ZeroCostRows        int     `json:"zero_cost_rows"`
}

// Quality computes dataset-level totals. Ratios are 0 when their
// denominator is 0.
func Quality(t Table) QualityReport {
	var q QualityReport
	q.TotalRows = len(t.Records)
	for _, r := range t.Records {
		q.TotalClicks += r.Clicks
		q.TotalCost += r.Cost
		q.TotalConversions += r.Conversions
		q.TotalImpressions += r.EffectiveImpressions()
		if r.Conversions > 0 {
			q.RowsWithConversions++
		}
		if r.Clicks == 0 {
			q.ZeroClickRows++
		}
		if r.Cost == 0 {
			q.ZeroCostRows++
		}
	}
	if q.TotalRows > 0 {
		q.ConversionRatePct = float64(q.RowsWithConversions) / float64(q.TotalRows) * 100
	}
	if q.TotalConversions > 0 {
		q.AvgCPA = q.TotalCost / float64(q.TotalConversions)
	}
	return q
}
