package molecule

import (
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// Toolkit is the chemistry capability a Set depends on.
type Toolkit interface {
	// Canonicalize parses a structure and returns its canonical SMILES.  A
	// parse failure is the only validity check a structure receives.
	Canonicalize(smiles string) (string, error)

	// Fingerprint computes the fingerprint of a canonical structure.
	Fingerprint(canonical string) (*Fingerprint, error)

	// Similarity compares two fingerprints, returning a score in [0, 1]
	// truncated to three decimals.
	Similarity(a, b *Fingerprint) (float64, error)
}

// Canonicalize parses smiles and writes it back in canonical form.
func Canonicalize(smiles string) (string, error) {
	g, err := ParseSMILES(smiles)
	if err != nil {
		return "", err
	}
	return WriteSMILES(g), nil
}

// ChemToolkit is the built-in Toolkit.
type ChemToolkit struct {
	fingerprint FingerprintOptions
	calculator  SimilarityCalculator
}

// NewToolkit validates the fingerprint options and metric and returns a
// toolkit using them.
func NewToolkit(fp FingerprintOptions, metric mtypes.SimilarityMetric) (*ChemToolkit, error) {
	if err := fp.Validate(); err != nil {
		return nil, err
	}
	calc, err := NewSimilarityCalculator(metric)
	if err != nil {
		return nil, err
	}
	return &ChemToolkit{fingerprint: fp, calculator: calc}, nil
}

// DefaultToolkit uses the default topological fingerprint with Tanimoto.
func DefaultToolkit() *ChemToolkit {
	return &ChemToolkit{fingerprint: DefaultFingerprintOptions(), calculator: &TanimotoCalculator{}}
}

func (t *ChemToolkit) Canonicalize(smiles string) (string, error) {
	return Canonicalize(smiles)
}

func (t *ChemToolkit) Fingerprint(canonical string) (*Fingerprint, error) {
	g, err := ParseSMILES(canonical)
	if err != nil {
		return nil, err
	}
	return GenerateFingerprint(g, t.fingerprint)
}

func (t *ChemToolkit) Similarity(a, b *Fingerprint) (float64, error) {
	score, err := t.calculator.Calculate(a, b)
	if err != nil {
		return 0, err
	}
	return Truncate3(score), nil
}

// FingerprintOptions returns the options fingerprints are generated with.
func (t *ChemToolkit) FingerprintOptions() FingerprintOptions { return t.fingerprint }

// Metric returns the similarity coefficient in use.
func (t *ChemToolkit) Metric() mtypes.SimilarityMetric { return t.calculator.Metric() }
