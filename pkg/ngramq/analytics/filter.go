package analytics

// Filter narrows a result set for display. Zero fields are inactive.
type Filter struct {
	MinCost   float64 `yaml:"min_cost" json:"min_cost" validate:"min=0"`
	MinClicks int64   `yaml:"min_clicks" json:"min_clicks" validate:"min=0"`
	MaxCPA    float64 `yaml:"max_cpa" json:"max_cpa" validate:"min=0"`
	MinCVR    float64 `yaml:"min_cvr" json:"min_cvr" validate:"min=0,max=100"`
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return f.MinCost > 0 || f.MinClicks > 0 || f.MaxCPA > 0 || f.MinCVR > 0
}

// Apply returns copies of the rows matching every active criterion, in
// input order. The result never shares memory with rows.
func (f Filter) Apply(rows []NgramAggregate) []NgramAggregate {
	out := make([]NgramAggregate, 0, len(rows))
	for _, r := range rows {
		if f.MinCost > 0 && r.TotalCost < f.MinCost {
			continue
		}
		if f.MinClicks > 0 && r.TotalClicks < f.MinClicks {
			continue
		}
		if f.MaxCPA > 0 && r.CPA > f.MaxCPA {
			continue
		}
		if f.MinCVR > 0 && r.CVR < f.MinCVR {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}
