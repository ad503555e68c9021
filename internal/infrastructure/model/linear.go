package model

import (
	"context"
	"math"
	"os"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prop-projection/internal/domain/projection"
)

var ErrInvalidArtifact = crerr.New("invalid model artifact")

// Artifact is the exported form of a fitted linear estimator.
type Artifact struct {
	Statistic    string    `json:"statistic" validate:"required,oneof=shots goals"`
	Features     []string  `json:"features" validate:"len=3,dive,required"`
	Coefficients []float64 `json:"coefficients" validate:"len=3"`
	Intercept    float64   `json:"intercept"`
	Meta         *Metadata `json:"meta,omitempty"`
}

type Metadata struct {
	TrainedOn string `json:"trained_on,omitempty"`
	Rows      int    `json:"rows,omitempty" validate:"gte=0"`
}

// Linear evaluates intercept + coefficients . features, floored at zero.
type Linear struct {
	statistic    projection.Statistic
	coefficients projection.FeatureVector
	intercept    float64
}

var artifactValidator = validator.New()

func LoadLinear(path string, want projection.Statistic) (*Linear, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "read model artifact %s", path)
	}

	model, err := DecodeLinear(body, want)
	if err != nil {
		return nil, crerr.Wrapf(err, "load model artifact %s", path)
	}
	return model, nil
}

func DecodeLinear(body []byte, want projection.Statistic) (*Linear, error) {
	var artifact Artifact
	if err := sonic.Unmarshal(body, &artifact); err != nil {
		return nil, crerr.WithSecondaryError(crerr.Wrap(ErrInvalidArtifact, "decode artifact"), err)
	}
	if err := artifactValidator.Struct(artifact); err != nil {
		return nil, crerr.Wrapf(ErrInvalidArtifact, "validate artifact: %v", err)
	}

	stat, err := projection.ParseStatistic(artifact.Statistic)
	if err != nil || stat != want {
		return nil, crerr.Wrapf(ErrInvalidArtifact, "artifact is for %q, expected %q", artifact.Statistic, want)
	}
	for i, name := range artifact.Features {
		if name != projection.FeatureNames[i] {
			return nil, crerr.Wrapf(ErrInvalidArtifact, "feature %d is %q, expected %q", i, name, projection.FeatureNames[i])
		}
	}

	out := &Linear{statistic: stat, intercept: artifact.Intercept}
	for i, c := range artifact.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, crerr.Wrapf(ErrInvalidArtifact, "coefficient %d is not finite", i)
		}
		out.coefficients[i] = c
	}
	if math.IsNaN(out.intercept) || math.IsInf(out.intercept, 0) {
		return nil, crerr.Wrap(ErrInvalidArtifact, "intercept is not finite")
	}

	return out, nil
}

func (m *Linear) Statistic() projection.Statistic {
	return m.statistic
}

func (m *Linear) Predict(ctx context.Context, features []projection.FeatureVector) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]float64, len(features))
	for i, fv := range features {
		v := m.intercept
		for j := range fv {
			v += m.coefficients[j] * fv[j]
		}
		out[i] = math.Max(0, v)
	}
	return out, nil
}
