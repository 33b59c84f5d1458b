package molecule

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// SimilarityCalculator defines the interface for calculating similarity
// between fingerprints.
type SimilarityCalculator interface {
	Calculate(fp1, fp2 *Fingerprint) (float64, error)
	Metric() mtypes.SimilarityMetric
}

// NewSimilarityCalculator returns the calculator for metric.
func NewSimilarityCalculator(metric mtypes.SimilarityMetric) (SimilarityCalculator, error) {
	switch metric {
	case mtypes.MetricTanimoto, "":
		return &TanimotoCalculator{}, nil
	case mtypes.MetricDice:
		return &DiceCalculator{}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeSimilarityMetricUnsupported, "unsupported similarity metric %q", metric)
	}
}

// overlap returns the popcounts of a AND b, a and b.
func overlap(fp1, fp2 *Fingerprint) (both, onA, onB int, err error) {
	if !fp1.compatible(fp2) {
		return 0, 0, 0, errors.New(errors.ErrCodeSimilaritySearchFailed, "fingerprints must have same type and length").
			WithDetail(fmt.Sprintf("a=%s/%d b=%s/%d", typeOf(fp1), lengthOf(fp1), typeOf(fp2), lengthOf(fp2)))
	}
	for i := range fp1.Bits {
		both += bits.OnesCount8(fp1.Bits[i] & fp2.Bits[i])
	}
	return both, fp1.NumOnBits, fp2.NumOnBits, nil
}

func typeOf(fp *Fingerprint) mtypes.FingerprintType {
	if fp == nil {
		return "nil"
	}
	return fp.Type
}

func lengthOf(fp *Fingerprint) int {
	if fp == nil {
		return 0
	}
	return fp.Length
}

// TanimotoCalculator implements Tanimoto similarity (Jaccard index).
type TanimotoCalculator struct{}

// Calculate computes |A∩B| / |A∪B|.  Two empty fingerprints are identical.
func (c *TanimotoCalculator) Calculate(fp1, fp2 *Fingerprint) (float64, error) {
	both, a, b, err := overlap(fp1, fp2)
	if err != nil {
		return 0, err
	}
	union := a + b - both
	if union == 0 {
		return 1.0, nil
	}
	return float64(both) / float64(union), nil
}

// Metric returns MetricTanimoto.
func (c *TanimotoCalculator) Metric() mtypes.SimilarityMetric { return mtypes.MetricTanimoto }

// DiceCalculator implements Dice similarity.
type DiceCalculator struct{}

// Calculate computes 2|A∩B| / (|A|+|B|).
func (c *DiceCalculator) Calculate(fp1, fp2 *Fingerprint) (float64, error) {
	both, a, b, err := overlap(fp1, fp2)
	if err != nil {
		return 0, err
	}
	if a+b == 0 {
		return 1.0, nil
	}
	return 2 * float64(both) / float64(a+b), nil
}

// Metric returns MetricDice.
func (c *DiceCalculator) Metric() mtypes.SimilarityMetric { return mtypes.MetricDice }

// Truncate3 cuts a score to three decimals without rounding and clamps it to
// [0, 1].  A small epsilon absorbs binary representation error so that an
// exact 0.5 or 0.969 survives.
func Truncate3(score float64) float64 {
	t := math.Floor(score*1000+1e-9) / 1000
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
