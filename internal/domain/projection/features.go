package projection

import (
	"fmt"
	"math"
	"strings"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
)

// FeatureNames is the column order every model artifact is fitted on.
var FeatureNames = [3]string{"L5 Avg", "L10 Avg", "TOI_min"}

// FeatureVector is [L5 avg, L10 avg, TOI minutes].
type FeatureVector [3]float64

func AssembleFeatures(r gamelog.Record) (FeatureVector, error) {
	values := [3]*float64{r.L5Avg, r.L10Avg, r.TOIMinutes}

	var missing []string
	var out FeatureVector
	for i, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			missing = append(missing, FeatureNames[i])
			continue
		}
		out[i] = *v
	}
	if len(missing) > 0 {
		return FeatureVector{}, fmt.Errorf("%w: player=%q date=%s missing=%s",
			ErrIncompleteRecord, r.Name, r.DateKey(), strings.Join(missing, ","))
	}

	return out, nil
}

// AssembleMatrix drops incomplete records and returns the kept rows with their
// vectors, both in source order.
func AssembleMatrix(records []gamelog.Record) ([]gamelog.Record, []FeatureVector) {
	rows := make([]gamelog.Record, 0, len(records))
	matrix := make([]FeatureVector, 0, len(records))
	for _, r := range records {
		fv, err := AssembleFeatures(r)
		if err != nil {
			continue
		}
		rows = append(rows, r)
		matrix = append(matrix, fv)
	}

	return rows, matrix
}
