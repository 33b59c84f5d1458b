package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsim/pkg/errors"
)

func mustCanonical(t *testing.T, smiles string) string {
	t.Helper()
	out, err := Canonicalize(smiles)
	require.NoError(t, err, smiles)
	return out
}

func TestCanonicalize_KnownForms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"C", "C"},
		{"OCC", "CCO"},
		{"CCO", "CCO"},
		{"OC(C)=O", "CC(=O)O"},
		{"c1ccccc1", "c1ccccc1"},
		{"C1=CC=CC=C1", "c1ccccc1"},
		{"C1=CC=CN=C1", "c1ccncc1"},
		{"n1ccccc1", "c1ccncc1"},
		{"[H]C([H])([H])[H]", "C"},
		{"[CH4]", "C"},
		{"[CH3]", "[CH3]"},
		{"[13CH4]", "[13CH4]"},
		{"[NH4+]", "[NH4+]"},
		{"[Cl-].[Na+]", "[Na+].[Cl-]"},
		{"F/C=C/F", "FC=CF"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, mustCanonical(t, tt.in))
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"CC(=O)Oc1ccccc1C(=O)O",
		"CC(C)Cc1ccc(cc1)C(C)C(=O)O",
		"Cn1cnc2c1c(=O)n(C)c(=O)n2C",
		"CN1CCC[C@H]1c1cccnc1",
		"CC(C)NCC(O)COc1cccc2ccccc12",
		"O=c1cccc[nH]1",
		"c1ccc2[nH]ccc2c1",
		"c1ccsc1",
		"C1CC2CCC1C2",
		"c1ccc(cc1)-c1ccccc1",
		"[O-][N+](=O)c1ccccc1",
		"C1CCCCCCCCCC1",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once := mustCanonical(t, in)
			assert.Equal(t, once, mustCanonical(t, once))
		})
	}
}

func TestCanonicalize_EquivalentSpellings(t *testing.T) {
	groups := [][]string{
		{"C1=CC=CN=C1", "c1cccnc1", "n1ccccc1", "c1ncccc1"},
		{"c1ccc2ccccc2c1", "C1=CC=C2C=CC=CC2=C1", "c1cccc2c1cccc2"},
		{"c1ccccc1-c1ccccc1", "c1ccc(cc1)-c1ccccc1"},
		{"CC(=O)O", "OC(C)=O", "C(C)(O)=O", "[CH3]C(=O)[OH]"},
		{"c1cc[nH]c1", "[nH]1cccc1", "C1=CNC=C1"},
		{"CN1CCC[C@H]1c1cccnc1", "CN1CCC[C@@H]1c1cccnc1", "c1ncccc1C1CCCN1C"},
		{"CCO.O", "O.OCC"},
	}
	for _, group := range groups {
		want := mustCanonical(t, group[0])
		for _, in := range group[1:] {
			assert.Equal(t, want, mustCanonical(t, in), "%s vs %s", group[0], in)
		}
	}
}

func TestCanonicalize_Rejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"n1cccc1",
		"C1CC",
		"C(C",
		"CC)",
		"C()C",
		"CC=",
		"C==C",
		"X",
		"C.",
		".C",
		"[C",
		"[Xx]",
		"C(C)(C)(C)(C)C",
		"[NH5]",
		"cc",
		"c1cccc1",
		"C11",
		"C12CC12",
		"C1CC=1C-1",
		"C%1CC",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Canonicalize(in)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeMoleculeInvalidSMILES), err.Error())
		})
	}
}

func TestParseSMILES_HydrogensAndAromaticity(t *testing.T) {
	g, err := ParseSMILES("c1cc[nH]c1")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 5)
	for i, a := range g.Atoms {
		assert.True(t, a.Aromatic, "atom %d", i)
		assert.Equal(t, 1, a.HCount, "atom %d", i)
	}
	for _, b := range g.Bonds {
		assert.True(t, b.Aromatic)
	}

	g, err = ParseSMILES("C1=CCC=C1")
	require.NoError(t, err)
	for _, a := range g.Atoms {
		assert.False(t, a.Aromatic)
	}
}

func TestParseSMILES_FoldsExplicitHydrogens(t *testing.T) {
	g, err := ParseSMILES("[H]O[H]")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 1)
	assert.Equal(t, 2, g.Atoms[0].HCount)

	g, err = ParseSMILES("[H][H]")
	require.NoError(t, err)
	assert.Len(t, g.Atoms, 2)
}

func TestParseSMILES_RingBondFlags(t *testing.T) {
	g, err := ParseSMILES("C1CC1CC")
	require.NoError(t, err)
	ring := 0
	for _, b := range g.Bonds {
		if b.ring {
			ring++
		}
	}
	assert.Equal(t, 3, ring)
	assert.True(t, g.InRing(0))
	assert.False(t, g.InRing(4))
}

func TestParseSMILES_Charges(t *testing.T) {
	tests := []struct {
		in     string
		charge int
	}{
		{"[O-]", -1},
		{"[Fe+3]", 3},
		{"[Fe+++]", 3},
		{"[O--]", -2},
		{"[NH4+]", 1},
	}
	for _, tt := range tests {
		g, err := ParseSMILES(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.charge, g.Atoms[0].Charge, tt.in)
	}
}

func TestCanonicalRanks_Distinct(t *testing.T) {
	g, err := ParseSMILES("CC(C)(C)C")
	require.NoError(t, err)
	ranks := CanonicalRanks(g)
	seen := map[int]bool{}
	for _, r := range ranks {
		assert.False(t, seen[r])
		seen[r] = true
	}
	// the quaternary carbon has the highest degree
	for i := range g.Atoms {
		if i != 1 {
			assert.Less(t, ranks[i], ranks[1])
		}
	}
}

func TestRingLabel(t *testing.T) {
	assert.Equal(t, "1", ringLabel(1))
	assert.Equal(t, "9", ringLabel(9))
	assert.Equal(t, "%10", ringLabel(10))
	assert.Equal(t, "%42", ringLabel(42))
}

func TestCanonicalize_PercentRingNumbers(t *testing.T) {
	assert.Equal(t, mustCanonical(t, "C1CC1"), mustCanonical(t, "C%10CC%10"))
	assert.Equal(t, mustCanonical(t, "c1ccccc1"), mustCanonical(t, "c%99ccccc%99"))
}
