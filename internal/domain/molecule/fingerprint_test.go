package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

func mustGraph(t *testing.T, smiles string) *Graph {
	t.Helper()
	g, err := ParseSMILES(smiles)
	require.NoError(t, err, smiles)
	return g
}

func TestFingerprint_BitOperations(t *testing.T) {
	fp := newEmptyFingerprint(mtypes.FPTopological, 64)
	assert.Len(t, fp.Bits, 8)
	assert.False(t, fp.GetBit(10))

	fp.SetBit(10)
	fp.SetBit(10)
	fp.SetBit(63)
	fp.SetBit(64) // out of range, ignored
	fp.SetBit(-1)

	assert.True(t, fp.GetBit(10))
	assert.True(t, fp.GetBit(63))
	assert.False(t, fp.GetBit(64))
	assert.Equal(t, 2, fp.NumOnBits)
	assert.Equal(t, []int{10, 63}, fp.OnBits())
}

func TestNewFingerprint_CountsBits(t *testing.T) {
	fp := NewFingerprint(mtypes.FPMorgan, []byte{0xFF, 0x01}, 16)
	assert.Equal(t, 9, fp.NumOnBits)
	assert.True(t, fp.GetBit(8))
	assert.False(t, fp.GetBit(9))
}

func TestFingerprintOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultFingerprintOptions().Validate())

	tests := []struct {
		name   string
		mutate func(*FingerprintOptions)
		code   errors.ErrorCode
	}{
		{"unknown type", func(o *FingerprintOptions) { o.Type = "maccs" }, errors.ErrCodeFingerprintTypeUnsupported},
		{"too short", func(o *FingerprintOptions) { o.Bits = 32 }, errors.CodeInvalidParam},
		{"not byte aligned", func(o *FingerprintOptions) { o.Bits = 1001 }, errors.CodeInvalidParam},
		{"inverted paths", func(o *FingerprintOptions) { o.MinPath, o.MaxPath = 5, 2 }, errors.CodeInvalidParam},
		{"zero bits per hash", func(o *FingerprintOptions) { o.BitsPerHash = 0 }, errors.CodeInvalidParam},
		{"negative radius", func(o *FingerprintOptions) { o.Type, o.Radius = mtypes.FPMorgan, -1 }, errors.CodeInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultFingerprintOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code))
		})
	}
}

func TestGenerateFingerprint_Topological(t *testing.T) {
	opts := DefaultFingerprintOptions()

	fp, err := GenerateFingerprint(mustGraph(t, "CC(=O)Oc1ccccc1C(=O)O"), opts)
	require.NoError(t, err)
	assert.Equal(t, mtypes.FPTopological, fp.Type)
	assert.Equal(t, 2048, fp.Length)
	assert.Len(t, fp.Bits, 256)
	assert.Greater(t, fp.NumOnBits, 20)

	single, err := GenerateFingerprint(mustGraph(t, "C"), opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, single.NumOnBits, 1)
	assert.LessOrEqual(t, single.NumOnBits, opts.BitsPerHash)
}

func TestGenerateFingerprint_IndependentOfSpelling(t *testing.T) {
	for _, fpType := range []mtypes.FingerprintType{mtypes.FPTopological, mtypes.FPMorgan} {
		opts := DefaultFingerprintOptions()
		opts.Type = fpType
		a, err := GenerateFingerprint(mustGraph(t, "C1=CC=CN=C1"), opts)
		require.NoError(t, err)
		b, err := GenerateFingerprint(mustGraph(t, "n1ccccc1"), opts)
		require.NoError(t, err)
		assert.Equal(t, a.Bits, b.Bits, fpType)
	}
}

func TestGenerateFingerprint_Morgan(t *testing.T) {
	opts := DefaultFingerprintOptions()
	opts.Type = mtypes.FPMorgan

	fp, err := GenerateFingerprint(mustGraph(t, "CCO"), opts)
	require.NoError(t, err)
	assert.Equal(t, mtypes.FPMorgan, fp.Type)
	// three atoms at three radii
	assert.LessOrEqual(t, fp.NumOnBits, 9)
	assert.Greater(t, fp.NumOnBits, 3)

	opts.Radius = 0
	fp0, err := GenerateFingerprint(mustGraph(t, "CCO"), opts)
	require.NoError(t, err)
	assert.LessOrEqual(t, fp0.NumOnBits, 3)
}

func TestGenerateFingerprint_Errors(t *testing.T) {
	_, err := GenerateFingerprint(&Graph{}, DefaultFingerprintOptions())
	assert.True(t, errors.IsCode(err, errors.ErrCodeFingerprintGenerationFailed))

	opts := DefaultFingerprintOptions()
	opts.Type = "atom_pair"
	_, err = GenerateFingerprint(mustGraph(t, "CC"), opts)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFingerprintTypeUnsupported))
}

func TestPathSequence_DirectionIndependent(t *testing.T) {
	g := mustGraph(t, "CCO")
	fwd := pathSequence(g, []int{0, 1, 2}, []int{0, 1})
	rev := pathSequence(g, []int{2, 1, 0}, []int{1, 0})
	assert.Equal(t, fwd, rev)
}
