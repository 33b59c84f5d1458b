package molecule

import "sort"

// BondOrder is the multiplicity of a bond.  BondAromatic is only used between
// parsing and kekulization and in the perceived aromatic form.
type BondOrder int

const (
	BondSingle    BondOrder = 1
	BondDouble    BondOrder = 2
	BondTriple    BondOrder = 3
	BondQuadruple BondOrder = 4
	BondAromatic  BondOrder = 5
)

// valence is the contribution of the bond to the valence of each end.  An
// aromatic bond counts as one until it is kekulized.
func (o BondOrder) valence() int {
	if o == BondAromatic {
		return 1
	}
	return int(o)
}

// Atom is a node of the molecular graph.
type Atom struct {
	Number   int
	Symbol   string
	Isotope  int
	Charge   int
	Aromatic bool

	// HCount is the number of attached hydrogens.  For bracket atoms it is
	// read from the input; for organic-subset atoms it is derived from the
	// default valence once bond orders are known.
	HCount  int
	Bracket bool

	bonds []int
}

// Bond is an edge of the molecular graph.
type Bond struct {
	Begin, End int
	Order      BondOrder

	// Aromatic is set by aromaticity perception on bonds that lie in an
	// aromatic ring.  Order keeps the Kekulé multiplicity.
	Aromatic bool

	// implicit records that no bond symbol was written in the input.
	implicit bool
	ring     bool
}

// Other returns the atom at the opposite end of the bond.
func (b *Bond) Other(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

// Graph is a molecular graph with hydrogens folded into their heavy atoms.
type Graph struct {
	Atoms []Atom
	Bonds []Bond
}

func (g *Graph) addAtom(a Atom) int {
	g.Atoms = append(g.Atoms, a)
	return len(g.Atoms) - 1
}

func (g *Graph) addBond(begin, end int, order BondOrder, implicit bool) int {
	g.Bonds = append(g.Bonds, Bond{Begin: begin, End: end, Order: order, implicit: implicit})
	idx := len(g.Bonds) - 1
	g.Atoms[begin].bonds = append(g.Atoms[begin].bonds, idx)
	g.Atoms[end].bonds = append(g.Atoms[end].bonds, idx)
	return idx
}

// bondBetween returns the index of the bond joining a and b, or -1.
func (g *Graph) bondBetween(a, b int) int {
	for _, bi := range g.Atoms[a].bonds {
		if g.Bonds[bi].Other(a) == b {
			return bi
		}
	}
	return -1
}

// Degree is the number of explicit neighbours of atom i.
func (g *Graph) Degree(i int) int {
	return len(g.Atoms[i].bonds)
}

// Neighbors returns the indices of the atoms bonded to atom i.
func (g *Graph) Neighbors(i int) []int {
	out := make([]int, 0, len(g.Atoms[i].bonds))
	for _, bi := range g.Atoms[i].bonds {
		out = append(out, g.Bonds[bi].Other(i))
	}
	return out
}

// bondValence sums the valence contributions of every bond at atom i.
func (g *Graph) bondValence(i int) int {
	sum := 0
	for _, bi := range g.Atoms[i].bonds {
		sum += g.Bonds[bi].Order.valence()
	}
	return sum
}

// InRing reports whether atom i lies on a cycle.
func (g *Graph) InRing(i int) bool {
	for _, bi := range g.Atoms[i].bonds {
		if g.Bonds[bi].ring {
			return true
		}
	}
	return false
}

// markRingBonds flags every bond that lies on a cycle, i.e. every bond that
// is not a bridge, using Tarjan's low-link numbering.
func (g *Graph) markRingBonds() {
	n := len(g.Atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	for i := range g.Bonds {
		g.Bonds[i].ring = true
	}

	type frame struct {
		atom, parentBond, next int
	}
	timer := 0
	for root := 0; root < n; root++ {
		if disc[root] != -1 {
			continue
		}
		disc[root], low[root] = timer, timer
		timer++
		stack := []frame{{atom: root, parentBond: -1}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			a := top.atom
			if top.next < len(g.Atoms[a].bonds) {
				bi := g.Atoms[a].bonds[top.next]
				top.next++
				if bi == top.parentBond {
					continue
				}
				w := g.Bonds[bi].Other(a)
				if disc[w] == -1 {
					disc[w], low[w] = timer, timer
					timer++
					stack = append(stack, frame{atom: w, parentBond: bi})
				} else if disc[w] < low[a] {
					low[a] = disc[w]
				}
				continue
			}
			parentBond := top.parentBond
			stack = stack[:len(stack)-1]
			if parentBond >= 0 {
				p := g.Bonds[parentBond].Other(a)
				if low[a] < low[p] {
					low[p] = low[a]
				}
				if low[a] > disc[p] {
					g.Bonds[parentBond].ring = false
				}
			}
		}
	}
}

// components returns the connected components as sorted atom index lists,
// ordered by their smallest atom index.
func (g *Graph) components() [][]int {
	seen := make([]bool, len(g.Atoms))
	var out [][]int
	for start := range g.Atoms {
		if seen[start] {
			continue
		}
		comp := []int{start}
		seen[start] = true
		for q := 0; q < len(comp); q++ {
			for _, w := range g.Neighbors(comp[q]) {
				if !seen[w] {
					seen[w] = true
					comp = append(comp, w)
				}
			}
		}
		sort.Ints(comp)
		out = append(out, comp)
	}
	return out
}
