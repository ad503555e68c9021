package projection

import (
	"fmt"
	"math"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
)

// HitRateLinear returns basis/line as a percentage rounded to one decimal.
// A non-positive line yields 0 instead of dividing.
func HitRateLinear(basis, line float64) float64 {
	if line <= 0 || math.IsNaN(line) || math.IsNaN(basis) || math.IsInf(basis, 0) {
		return 0
	}
	rate := basis / line * 100
	if math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0
	}
	return Round1(rate)
}

// HitRatePoisson returns P(X >= 1) for X ~ Poisson(lambda) as a percentage in
// [0, 100], rounded to one decimal. Negative or NaN lambda is treated as 0.
func HitRatePoisson(lambda float64) float64 {
	if math.IsNaN(lambda) || lambda <= 0 {
		return 0
	}
	rate := (1 - math.Exp(-lambda)) * 100
	return Round1(math.Max(0, math.Min(100, rate)))
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// HitRateQuery is the user's line, basis and statistic for one evaluation.
type HitRateQuery struct {
	Line      float64
	Basis     Basis
	Statistic Statistic
}

// HitRate is an evaluated query. Input names the value the rate was computed from.
type HitRate struct {
	Rate         float64
	Distribution Distribution
	Input        float64
	InputSource  string
}

// Evaluate derives the hit rate for one record. Linear statistics divide the basis
// average by the line; Poisson statistics use the model projection as the mean.
func (q HitRateQuery) Evaluate(r gamelog.Record, projected float64) (HitRate, error) {
	switch q.Statistic.Distribution() {
	case DistributionPoisson:
		lambda := math.Max(0, projected)
		return HitRate{
			Rate:         HitRatePoisson(lambda),
			Distribution: DistributionPoisson,
			Input:        lambda,
			InputSource:  "projection",
		}, nil
	default:
		basis, err := BasisValue(r, q.Basis)
		if err != nil {
			return HitRate{}, err
		}
		return HitRate{
			Rate:         HitRateLinear(basis, q.Line),
			Distribution: DistributionLinear,
			Input:        basis,
			InputSource:  string(q.Basis),
		}, nil
	}
}

func BasisValue(r gamelog.Record, basis Basis) (float64, error) {
	var v *float64
	switch basis {
	case BasisSeason, "":
		v = r.SeasonAvg
	case BasisL5:
		v = r.L5Avg
	case BasisL10:
		v = r.L10Avg
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBasis, basis)
	}
	if v == nil {
		return 0, fmt.Errorf("%w: player=%q date=%s missing basis=%s", ErrIncompleteRecord, r.Name, r.DateKey(), basis)
	}
	return *v, nil
}
