package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIncompleteRecord  = errors.New("incomplete record")
	ErrUnknownStatistic  = errors.New("unknown statistic")
	ErrUnknownBasis      = errors.New("unknown hit rate basis")
	ErrModelNotAvailable = errors.New("model not available")
)

// Statistic selects which model projects a player.
type Statistic string

const (
	StatisticShots Statistic = "shots"
	StatisticGoals Statistic = "goals"
)

// Distribution decides how a projection turns into a hit rate.
type Distribution string

const (
	DistributionLinear  Distribution = "linear"
	DistributionPoisson Distribution = "poisson"
)

func ParseStatistic(raw string) (Statistic, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "shots", "sog", "shots_on_goal", "shots on goal":
		return StatisticShots, nil
	case "goals", "goal":
		return StatisticGoals, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatistic, raw)
	}
}

func (s Statistic) Distribution() Distribution {
	if s == StatisticGoals {
		return DistributionPoisson
	}
	return DistributionLinear
}

func (s Statistic) Label() string {
	switch s {
	case StatisticGoals:
		return "Goals"
	default:
		return "Shots on Goal"
	}
}

// Basis is the rolling-average field used as the linear hit-rate numerator.
type Basis string

const (
	BasisSeason Basis = "season"
	BasisL5     Basis = "l5"
	BasisL10    Basis = "l10"
)

func ParseBasis(raw string) (Basis, error) {
	switch strings.ToLower(strings.Join(strings.Fields(raw), "")) {
	case "", "season", "seasonavg":
		return BasisSeason, nil
	case "l5", "l5avg":
		return BasisL5, nil
	case "l10", "l10avg":
		return BasisL10, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBasis, raw)
	}
}

// Predictor maps feature vectors to point projections. Implementations must be
// deterministic and return exactly one value per input vector.
type Predictor interface {
	Predict(ctx context.Context, features []FeatureVector) ([]float64, error)
}

// Models holds the two interchangeable predictors.
type Models struct {
	Shots Predictor
	Goals Predictor
}

func (m Models) For(stat Statistic) (Predictor, error) {
	var p Predictor
	switch stat {
	case StatisticShots:
		p = m.Shots
	case StatisticGoals:
		p = m.Goals
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatistic, stat)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: statistic=%s", ErrModelNotAvailable, stat)
	}

	return p, nil
}
