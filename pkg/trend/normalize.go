package trend

import (
	"math"
	"sort"
	"strings"

	"github.com/elonfeng/skilltrends/pkg/skill"
)

// Demand is mapped into [MinDemand, MinDemand+DemandSpan] so the weakest
// skill still renders as a visible bar.
const (
	MinDemand  = 40
	DemandSpan = 60
)

// Score is a keyword's raw interest before normalization.
type Score struct {
	Name string
	Raw  float64
}

// Mean returns the arithmetic mean of series, or 0 for an empty series.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// ShortName turns a keyword phrase into its display name, the first word.
func ShortName(keyword string) string {
	fields := strings.Fields(keyword)
	if len(fields) == 0 {
		return keyword
	}
	return fields[0]
}

// Normalize rescales raw scores linearly into [40,100]:
//
//	demand = round((raw - min) / range * 60 + 40)
//
// range is max-min, or 1 when every score is equal, in which case every
// demand comes out as 40. Rounding is half-to-even.
func Normalize(scores []Score) []skill.Skill {
	if len(scores) == 0 {
		return nil
	}

	lo, hi := scores[0].Raw, scores[0].Raw
	for _, s := range scores[1:] {
		lo = math.Min(lo, s.Raw)
		hi = math.Max(hi, s.Raw)
	}
	span := hi - lo
	if hi == lo {
		span = 1
	}

	out := make([]skill.Skill, len(scores))
	for i, s := range scores {
		normalized := (s.Raw-lo)/span*DemandSpan + MinDemand
		out[i] = skill.Skill{Name: s.Name, Demand: int(math.RoundToEven(normalized))}
	}
	return out
}

// Rank sorts skills by demand descending, keeping input order among ties,
// and returns at most n of them. n <= 0 keeps everything.
func Rank(skills []skill.Skill, n int) []skill.Skill {
	ranked := append([]skill.Skill(nil), skills...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Demand > ranked[j].Demand
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
