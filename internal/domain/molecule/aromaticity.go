package molecule

// ─────────────────────────────────────────────────────────────────────────────
// Ring enumeration and aromaticity perception
// ─────────────────────────────────────────────────────────────────────────────

const (
	// maxRingSize bounds the individual rings examined for aromaticity.
	maxRingSize = 8

	// maxRings caps enumeration on dense polycyclic cages.
	maxRings = 4096
)

type ring struct {
	atoms    []int
	bonds    []int
	members  map[int]struct{}
	aromatic bool
}

func newRing(atoms, bonds []int) *ring {
	r := &ring{atoms: atoms, bonds: bonds, members: make(map[int]struct{}, len(atoms))}
	for _, a := range atoms {
		r.members[a] = struct{}{}
	}
	return r
}

func (r *ring) has(atom int) bool {
	_, ok := r.members[atom]
	return ok
}

// smallRings enumerates every simple cycle of at most maxRingSize atoms.
// Each cycle is reported once, rooted at its lowest atom index.
func smallRings(g *Graph) []*ring {
	n := len(g.Atoms)
	var out []*ring
	onPath := make([]bool, n)
	pathAtoms := make([]int, 0, maxRingSize)
	pathBonds := make([]int, 0, maxRingSize)

	var walk func(start, at int)
	walk = func(start, at int) {
		if len(out) >= maxRings {
			return
		}
		for _, bi := range g.Atoms[at].bonds {
			b := &g.Bonds[bi]
			if !b.ring {
				continue
			}
			w := b.Other(at)
			if w == start && len(pathAtoms) >= 3 && pathAtoms[1] < pathAtoms[len(pathAtoms)-1] {
				atoms := append([]int(nil), pathAtoms...)
				bonds := append(append([]int(nil), pathBonds...), bi)
				out = append(out, newRing(atoms, bonds))
				continue
			}
			if w <= start || onPath[w] || len(pathAtoms) >= maxRingSize {
				continue
			}
			onPath[w] = true
			pathAtoms = append(pathAtoms, w)
			pathBonds = append(pathBonds, bi)
			walk(start, w)
			pathAtoms = pathAtoms[:len(pathAtoms)-1]
			pathBonds = pathBonds[:len(pathBonds)-1]
			onPath[w] = false
		}
	}

	for s := 0; s < n; s++ {
		if !g.InRing(s) {
			continue
		}
		onPath[s] = true
		pathAtoms = append(pathAtoms[:0], s)
		pathBonds = pathBonds[:0]
		walk(s, s)
		onPath[s] = false
	}
	return out
}

// envelope returns the perimeter of two rings fused along a shared path, or
// nil when their symmetric difference is not a single cycle.
func envelope(g *Graph, a, b *ring) *ring {
	count := make(map[int]int, len(a.bonds)+len(b.bonds))
	for _, bi := range a.bonds {
		count[bi]++
	}
	shared := 0
	for _, bi := range b.bonds {
		count[bi]++
		if count[bi] == 2 {
			shared++
		}
	}
	if shared == 0 {
		return nil
	}

	degree := make(map[int]int)
	var bonds []int
	for bi, c := range count {
		if c != 1 {
			continue
		}
		bonds = append(bonds, bi)
		degree[g.Bonds[bi].Begin]++
		degree[g.Bonds[bi].End]++
	}
	for _, d := range degree {
		if d != 2 {
			return nil
		}
	}

	// Walk the perimeter to confirm it is one connected cycle.
	adj := make(map[int][]int, len(degree))
	for _, bi := range bonds {
		bd := g.Bonds[bi]
		adj[bd.Begin] = append(adj[bd.Begin], bd.End)
		adj[bd.End] = append(adj[bd.End], bd.Begin)
	}
	start := -1
	for atom := range degree {
		if start < 0 || atom < start {
			start = atom
		}
	}
	atoms := []int{start}
	prev, cur := -1, start
	for {
		next := adj[cur][0]
		if next == prev {
			next = adj[cur][1]
		}
		if next == start {
			break
		}
		atoms = append(atoms, next)
		prev, cur = cur, next
		if len(atoms) > len(degree) {
			return nil
		}
	}
	if len(atoms) != len(degree) {
		return nil
	}
	return newRing(atoms, bonds)
}

// perceiveAromaticity clears any aromatic flags and marks atoms and bonds
// of every ring, or fused ring pair perimeter, that is Hückel aromatic.
// Evaluation repeats until stable so that a ring whose atoms carry double
// bonds into an already aromatic neighbour ring can also qualify.
func perceiveAromaticity(g *Graph) {
	g.markRingBonds()
	for i := range g.Atoms {
		g.Atoms[i].Aromatic = false
	}
	for i := range g.Bonds {
		g.Bonds[i].Aromatic = false
	}

	rings := smallRings(g)
	candidates := append([]*ring(nil), rings...)
pairs:
	for i := 0; i < len(rings); i++ {
		for j := i + 1; j < len(rings); j++ {
			if len(candidates) >= maxRings {
				break pairs
			}
			if env := envelope(g, rings[i], rings[j]); env != nil {
				candidates = append(candidates, env)
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, r := range candidates {
			if r.aromatic || !huckel(g, r) {
				continue
			}
			r.aromatic = true
			changed = true
			for _, a := range r.atoms {
				g.Atoms[a].Aromatic = true
			}
		}
	}

	// A ring bond is aromatic when both ends share an aromatic ring, which
	// also covers the fusion bond of a perimeter such as azulene.
	for bi := range g.Bonds {
		b := &g.Bonds[bi]
		if !b.ring || !g.Atoms[b.Begin].Aromatic || !g.Atoms[b.End].Aromatic {
			continue
		}
		for _, r := range candidates {
			if r.aromatic && r.has(b.Begin) && r.has(b.End) {
				b.Aromatic = true
				break
			}
		}
	}
}

// huckel reports whether the ring holds 4n+2 π electrons with every atom
// able to contribute.
func huckel(g *Graph, r *ring) bool {
	total := 0
	for _, a := range r.atoms {
		e, ok := piElectrons(g, a, r)
		if !ok {
			return false
		}
		total += e
	}
	return total >= 2 && (total-2)%4 == 0
}

// piElectrons returns the number of π electrons atom i donates to ring r.
func piElectrons(g *Graph, i int, r *ring) (int, bool) {
	a := &g.Atoms[i]
	switch a.Number {
	case 5, 6, 7, 8, 15, 16, 33, 34, 52:
	default:
		return 0, false
	}

	doubles, partner := 0, -1
	for _, bi := range a.bonds {
		switch g.Bonds[bi].Order {
		case BondDouble:
			doubles++
			partner = g.Bonds[bi].Other(i)
		case BondTriple, BondQuadruple:
			return 0, false
		}
	}
	if doubles > 1 {
		return 0, false
	}
	if doubles == 1 {
		switch {
		case r.has(partner), g.Atoms[partner].Aromatic:
			return 1, true
		case isElectronegative(g.Atoms[partner].Number):
			// exocyclic C=O, C=N, C=S as in pyridones
			return 0, true
		default:
			return 0, false
		}
	}

	connections := len(a.bonds) + a.HCount
	switch a.Number {
	case 7, 15, 33:
		if a.Charge == 0 && connections == 3 || a.Charge == -1 && connections == 2 {
			return 2, true
		}
	case 8, 16, 34, 52:
		if a.Charge == 0 && connections == 2 {
			return 2, true
		}
	case 6:
		if a.Charge == -1 && connections == 3 {
			return 2, true
		}
		if a.Charge == 1 && connections == 3 {
			return 0, true
		}
	case 5:
		if a.Charge == 0 && connections == 3 {
			return 0, true
		}
	}
	return 0, false
}

func isElectronegative(number int) bool {
	switch number {
	case 7, 8, 16, 34:
		return true
	}
	return false
}
