package waste

import "github.com/samber/lo"

// Savings estimates what excluding the flagged n-grams would save.
type Savings struct {
	WastedCost        float64 `json:"total_wasted_cost"`
	WastedClicks      int64   `json:"total_wasted_clicks"`
	WastedConversions int64   `json:"wasted_conversions"`
	AvgWasteCPA       float64 `json:"avg_waste_cpa"`
	// SavingsPct is WastedCost relative to the whole dataset's cost. N-grams
	// of one query overlap, so the figure is an upper bound.
	SavingsPct float64 `json:"potential_savings_pct"`
}

// PotentialSavings sums the flagged rows. datasetCost is the total cost of
// the analysed table; a zero datasetCost leaves SavingsPct at 0.
func PotentialSavings(wasters []WasteResult, datasetCost float64) Savings {
	if len(wasters) == 0 {
		return Savings{}
	}
	var s Savings
	for _, w := range wasters {
		s.WastedCost += w.TotalCost
		s.WastedClicks += w.TotalClicks
		s.WastedConversions += w.TotalConversions
	}
	s.AvgWasteCPA = lo.Reduce(wasters, func(acc float64, w WasteResult, _ int) float64 { return acc + w.CPA }, 0) / float64(len(wasters))
	if datasetCost > 0 {
		s.SavingsPct = s.WastedCost / datasetCost * 100
	}
	return s
}
