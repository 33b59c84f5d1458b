package molecule

import (
	"fmt"

	"github.com/turtacn/chemsim/pkg/errors"
)

// kekulizeBudget bounds the matching search so that pathological inputs fail
// instead of hanging.
const kekulizeBudget = 1 << 20

// sanitize turns a freshly parsed graph into its normalized form.  The
// returned graph may be a different value when hydrogen atoms were folded.
func sanitize(g *Graph) (*Graph, error) {
	g.markRingBonds()

	for i := range g.Atoms {
		if g.Atoms[i].Aromatic && !g.InRing(i) {
			return nil, errors.Newf(errors.CodeMoleculeInvalidSMILES,
				"non-ring atom %d marked aromatic", i)
		}
	}
	// Aromatic bonds only survive inside rings between aromatic atoms; a
	// bond such as the biphenyl link is a plain single bond.
	for i := range g.Bonds {
		b := &g.Bonds[i]
		if b.Order != BondAromatic {
			continue
		}
		if !b.ring || !g.Atoms[b.Begin].Aromatic || !g.Atoms[b.End].Aromatic {
			b.Order = BondSingle
		}
	}

	if err := kekulize(g); err != nil {
		return nil, err
	}
	if err := assignHydrogens(g); err != nil {
		return nil, err
	}
	g = foldHydrogens(g)
	perceiveAromaticity(g)
	return g, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Kekulization
// ─────────────────────────────────────────────────────────────────────────────

// needsPiBond reports whether an aromatic atom must take one double bond
// from its aromatic bonds to reach its default valence.  Aromatic bonds count
// as single here.
func needsPiBond(g *Graph, i int) bool {
	a := &g.Atoms[i]
	valences := allowedValences(a.Number, a.Charge)
	if valences == nil {
		return false
	}
	used := g.bondValence(i) + a.HCount
	target, ok := targetValence(valences, used)
	return ok && target-used >= 1
}

// kekulize assigns alternating single and double bonds to every aromatic
// bond by finding a perfect matching over the aromatic atoms that need a
// double bond.
func kekulize(g *Graph) error {
	n := len(g.Atoms)
	needs := make([]bool, n)
	pending := false
	for i := range g.Atoms {
		if g.Atoms[i].Aromatic && needsPiBond(g, i) {
			needs[i] = true
			pending = true
		}
	}

	matched := make([]int, n)
	for i := range matched {
		matched[i] = -1
	}

	if pending {
		steps := 0
		var solve func() bool
		solve = func() bool {
			steps++
			if steps > kekulizeBudget {
				return false
			}
			best, bestCount := -1, 0
			for i := 0; i < n; i++ {
				if !needs[i] || matched[i] >= 0 {
					continue
				}
				count := 0
				for _, bi := range g.Atoms[i].bonds {
					w := g.Bonds[bi].Other(i)
					if g.Bonds[bi].Order == BondAromatic && needs[w] && matched[w] < 0 {
						count++
					}
				}
				if count == 0 {
					return false
				}
				if best < 0 || count < bestCount {
					best, bestCount = i, count
				}
			}
			if best < 0 {
				return true
			}
			for _, bi := range g.Atoms[best].bonds {
				w := g.Bonds[bi].Other(best)
				if g.Bonds[bi].Order != BondAromatic || !needs[w] || matched[w] >= 0 {
					continue
				}
				matched[best], matched[w] = bi, bi
				if solve() {
					return true
				}
				matched[best], matched[w] = -1, -1
			}
			return false
		}
		if !solve() {
			return errors.New(errors.CodeMoleculeInvalidSMILES, "can't kekulize aromatic system")
		}
	}

	for bi := range g.Bonds {
		b := &g.Bonds[bi]
		if b.Order != BondAromatic {
			continue
		}
		if matched[b.Begin] == bi {
			b.Order = BondDouble
		} else {
			b.Order = BondSingle
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Hydrogens and valence
// ─────────────────────────────────────────────────────────────────────────────

// assignHydrogens derives implicit hydrogen counts for organic-subset atoms
// and rejects atoms whose valence exceeds what their element allows.
func assignHydrogens(g *Graph) error {
	for i := range g.Atoms {
		a := &g.Atoms[i]
		valences := allowedValences(a.Number, a.Charge)
		used := g.bondValence(i)
		if a.Bracket {
			if valences != nil && used+a.HCount > valences[len(valences)-1] {
				return valenceError(a, i, used+a.HCount)
			}
			continue
		}
		if valences == nil {
			a.HCount = 0
			continue
		}
		target, ok := targetValence(valences, used)
		if !ok {
			return valenceError(a, i, used)
		}
		a.HCount = target - used
	}
	return nil
}

func valenceError(a *Atom, idx, valence int) error {
	return errors.New(errors.CodeMoleculeInvalidSMILES, "valence exceeds the permitted maximum").
		WithDetail(fmt.Sprintf("atom=%d element=%s valence=%d", idx, a.Symbol, valence))
}

// foldHydrogens removes plain hydrogen atoms bonded to a heavy atom and adds
// them to that atom's hydrogen count.
func foldHydrogens(g *Graph) *Graph {
	remove := make([]bool, len(g.Atoms))
	folded := false
	for i := range g.Atoms {
		a := &g.Atoms[i]
		if a.Number != 1 || a.Isotope != 0 || a.Charge != 0 || a.HCount != 0 || len(a.bonds) != 1 {
			continue
		}
		b := &g.Bonds[a.bonds[0]]
		heavy := b.Other(i)
		if b.Order != BondSingle || g.Atoms[heavy].Number == 1 {
			continue
		}
		remove[i] = true
		g.Atoms[heavy].HCount++
		folded = true
	}
	if !folded {
		return g
	}

	out := &Graph{}
	remap := make([]int, len(g.Atoms))
	for i, a := range g.Atoms {
		if remove[i] {
			remap[i] = -1
			continue
		}
		a.bonds = nil
		remap[i] = out.addAtom(a)
	}
	for _, b := range g.Bonds {
		if remap[b.Begin] < 0 || remap[b.End] < 0 {
			continue
		}
		idx := out.addBond(remap[b.Begin], remap[b.End], b.Order, b.implicit)
		out.Bonds[idx].ring = b.ring
	}
	return out
}
