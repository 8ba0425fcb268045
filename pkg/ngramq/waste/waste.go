package waste

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

// Defaults used when no thresholds are configured.
const (
	DefaultCostPercentile = 75
	DefaultCVRPercentile  = 25
	DefaultMinWasteScore  = 0.5
	DefaultMaxNegatives   = 100
)

// WasteResult is an aggregate row flagged as a money waster.
type WasteResult struct {
	analytics.NgramAggregate
	WasteScore float64 `json:"waste_score"`
}

// Detection is the outcome of one waste detection run.
type Detection struct {
	CostThreshold float64       `json:"cost_threshold"`
	CVRThreshold  float64       `json:"cvr_threshold"`
	Wasters       []WasteResult `json:"wasters"`
}

func checkPercentile(field string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return internalerr.NewInputValueError(field, p, "must be within [0, 100]")
	}
	return nil
}

// Detect computes the cost and CVR thresholds over rows and keeps the rows
// with total_cost >= cost threshold and cvr <= CVR threshold.
//
// waste_score = total_cost/max(total_cost of kept rows) * (1 - cvr/100).
// The normalizing maximum is taken over the kept rows only, so scores from
// runs with different thresholds are not comparable.
func Detect(rows []analytics.NgramAggregate, costPercentile, cvrPercentile float64) (Detection, error) {
	if err := checkPercentile("cost percentile", costPercentile); err != nil {
		return Detection{}, err
	}
	if err := checkPercentile("cvr percentile", cvrPercentile); err != nil {
		return Detection{}, err
	}
	if len(rows) == 0 {
		log.Warn().Msg("no n-grams provided to money waster detection")
		return Detection{Wasters: []WasteResult{}}, nil
	}

	d := Detection{
		CostThreshold: Percentile(lo.Map(rows, func(r analytics.NgramAggregate, _ int) float64 { return r.TotalCost }), costPercentile),
		CVRThreshold:  Percentile(lo.Map(rows, func(r analytics.NgramAggregate, _ int) float64 { return r.CVR }), cvrPercentile),
	}
	log.Debug().
		Float64("cost_threshold", d.CostThreshold).
		Float64("cvr_threshold", d.CVRThreshold).
		Msg("waste thresholds")

	kept := lo.Filter(rows, func(r analytics.NgramAggregate, _ int) bool {
		return r.TotalCost >= d.CostThreshold && r.CVR <= d.CVRThreshold
	})
	if len(kept) == 0 {
		log.Info().Msg("no money wasters found with current thresholds")
		d.Wasters = []WasteResult{}
		return d, nil
	}

	maxCost := lo.MaxBy(kept, func(a, b analytics.NgramAggregate) bool { return a.TotalCost > b.TotalCost }).TotalCost
	d.Wasters = lo.Map(kept, func(r analytics.NgramAggregate, _ int) WasteResult {
		return WasteResult{NgramAggregate: r, WasteScore: score(r, maxCost)}
	})
	sortByScore(d.Wasters)

	log.Info().Int("wasters", len(d.Wasters)).Msg("money waster detection complete")
	return d, nil
}

// IdentifyMoneyWasters returns only the flagged rows of Detect, highest
// waste score first.
func IdentifyMoneyWasters(rows []analytics.NgramAggregate, costPercentile, cvrPercentile float64) ([]WasteResult, error) {
	d, err := Detect(rows, costPercentile, cvrPercentile)
	if err != nil {
		return nil, err
	}
	return d.Wasters, nil
}

func score(r analytics.NgramAggregate, maxCost float64) float64 {
	if maxCost <= 0 {
		return 0
	}
	inefficiency := 1 - r.CVR/100
	inefficiency = math.Max(0, math.Min(1, inefficiency))
	return r.TotalCost / maxCost * inefficiency
}

func sortByScore(rows []WasteResult) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].WasteScore > rows[j].WasteScore })
}

// GenerateNegativeKeywords returns up to maxResults n-grams whose waste
// score is at least minScore, highest score first.
func GenerateNegativeKeywords(wasters []WasteResult, minScore float64, maxResults int) ([]string, error) {
	if math.IsNaN(minScore) || minScore < 0 || minScore > 1 {
		return nil, internalerr.NewInputValueError("min waste score", minScore, "must be within [0, 1]")
	}
	if maxResults < 1 {
		return nil, internalerr.NewInputValueError("max results", maxResults, "must be >= 1")
	}
	if len(wasters) == 0 {
		return []string{}, nil
	}

	sorted := append([]WasteResult(nil), wasters...)
	sortByScore(sorted)

	out := make([]string, 0, lo.Min([]int{maxResults, len(sorted)}))
	for _, w := range sorted {
		if len(out) == maxResults {
			break
		}
		if w.WasteScore >= minScore {
			out = append(out, w.Ngram)
		}
	}

	log.Info().Int("negatives", len(out)).Float64("min_waste_score", minScore).Msg("generated negative keyword suggestions")
	return out, nil
}
