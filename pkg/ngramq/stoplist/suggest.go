package stoplist

import (
	"math"
	"sort"
)

// Stats describes how one token behaves across a query set.
type Stats struct {
	Token string
	// DF is the number of queries containing the token.
	DF        int64
	DFPercent float64
	// CVRDeviation is |token CVR - overall CVR| / overall CVR, or the
	// absolute difference in points when the overall CVR is 0.
	CVRDeviation float64
}

// Reason explains why a token was suggested.
type Reason struct {
	HighDF       bool
	FlatCVR      bool
	DFPercent    float64
	CVRDeviation float64
}

// Candidate is a suggested stop word.
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64
}

// Thresholds decide which tokens become candidates.
type Thresholds struct {
	// DFPercent is the share of queries a token must exceed.
	DFPercent float64
	// MaxCVRDeviation is the largest relative CVR difference that still
	// counts as not telling queries apart.
	MaxCVRDeviation float64
}

// DefaultThresholds flag tokens in more than 30% of queries whose CVR is
// within 20% of the overall rate.
func DefaultThresholds() Thresholds {
	return Thresholds{DFPercent: 30, MaxCVRDeviation: 0.2}
}

// Suggest returns tokens that occur in many queries without changing how
// those queries convert, highest score first. Tokens already in s are
// skipped. Zero threshold fields take their DefaultThresholds value.
func (s Set) Suggest(stats []Stats, th Thresholds) []Candidate {
	defaults := DefaultThresholds()
	if th.DFPercent == 0 {
		th.DFPercent = defaults.DFPercent
	}
	if th.MaxCVRDeviation == 0 {
		th.MaxCVRDeviation = defaults.MaxCVRDeviation
	}

	var out []Candidate
	for _, st := range stats {
		if s.Contains(st.Token) {
			continue
		}
		reason := Reason{
			HighDF:       st.DFPercent > th.DFPercent,
			FlatCVR:      st.CVRDeviation <= th.MaxCVRDeviation,
			DFPercent:    st.DFPercent,
			CVRDeviation: st.CVRDeviation,
		}
		if !reason.HighDF || !reason.FlatCVR {
			continue
		}
		score := (st.DFPercent/100 + (1 - math.Min(st.CVRDeviation, 1))) / 2
		out = append(out, Candidate{Token: st.Token, Reason: reason, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Token < out[j].Token
	})
	return out
}
