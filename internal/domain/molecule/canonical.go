package molecule

import (
	"sort"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Canonical ranking
// ─────────────────────────────────────────────────────────────────────────────

// bondCode distinguishes bond types for ranking and fingerprinting.
func bondCode(b *Bond) int {
	if b.Aromatic {
		return int(BondAromatic)
	}
	return int(b.Order)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CanonicalRanks assigns every atom a distinct rank that depends only on the
// graph and not on input order.  Atoms are first ordered by a local invariant
// (degree, element, isotope, charge, hydrogens, aromaticity, ring membership),
// the partition is refined by neighbour ranks until stable, and remaining ties
// are broken one atom at a time.
func CanonicalRanks(g *Graph) []int {
	n := len(g.Atoms)
	invariants := make([][]int, n)
	for i := range g.Atoms {
		a := &g.Atoms[i]
		invariants[i] = []int{
			g.Degree(i), a.Number, a.Isotope, a.Charge, a.HCount,
			boolInt(a.Aromatic), boolInt(g.InRing(i)),
		}
	}
	ranks := denseRanks(n, func(i, j int) int { return compareInts(invariants[i], invariants[j]) })
	ranks = refineRanks(g, ranks)

	for {
		tied := lowestTiedRank(ranks)
		if tied < 0 {
			return ranks
		}
		chosen := -1
		for i, r := range ranks {
			if r == tied {
				chosen = i
				break
			}
		}
		for i := range ranks {
			ranks[i] *= 2
		}
		ranks[chosen]--
		ranks = refineRanks(g, ranks)
	}
}

func refineRanks(g *Graph, ranks []int) []int {
	n := len(ranks)
	classes := countClasses(ranks)
	for {
		keys := make([][]int, n)
		for i := range g.Atoms {
			nbrs := make([]int, 0, len(g.Atoms[i].bonds))
			for _, bi := range g.Atoms[i].bonds {
				b := &g.Bonds[bi]
				nbrs = append(nbrs, ranks[b.Other(i)]*8+bondCode(b))
			}
			sort.Ints(nbrs)
			keys[i] = append([]int{ranks[i]}, nbrs...)
		}
		next := denseRanks(n, func(i, j int) int { return compareInts(keys[i], keys[j]) })
		nextClasses := countClasses(next)
		ranks = next
		if nextClasses == classes {
			return ranks
		}
		classes = nextClasses
	}
}

// denseRanks sorts 0..n-1 by cmp and numbers equal runs 0, 1, 2, ...
func denseRanks(n int, cmp func(i, j int) int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return cmp(order[x], order[y]) < 0 })
	ranks := make([]int, n)
	rank := 0
	for k, idx := range order {
		if k > 0 && cmp(order[k-1], idx) != 0 {
			rank++
		}
		ranks[idx] = rank
	}
	return ranks
}

func compareInts(a, b []int) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			if a[k] < b[k] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func countClasses(ranks []int) int {
	seen := make(map[int]struct{}, len(ranks))
	for _, r := range ranks {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func lowestTiedRank(ranks []int) int {
	counts := make(map[int]int, len(ranks))
	for _, r := range ranks {
		counts[r]++
	}
	tied := -1
	for r, c := range counts {
		if c > 1 && (tied < 0 || r < tied) {
			tied = r
		}
	}
	return tied
}

// ─────────────────────────────────────────────────────────────────────────────
// SMILES writer
// ─────────────────────────────────────────────────────────────────────────────

// WriteSMILES renders g as canonical SMILES.  Each component is written by a
// depth-first walk from its lowest-ranked atom with neighbours taken in rank
// order; components are joined with '.' in order of their lowest rank.
func WriteSMILES(g *Graph) string {
	ranks := CanonicalRanks(g)
	w := &smilesWriter{
		g:         g,
		ranks:     ranks,
		visited:   make([]bool, len(g.Atoms)),
		usedBond:  make([]bool, len(g.Bonds)),
		children:  make([][]treeEdge, len(g.Atoms)),
		ringOpen:  make([][]int, len(g.Atoms)),
		ringClose: make([][]int, len(g.Atoms)),
		digitOf:   make(map[int]int),
		digitUsed: make(map[int]bool),
	}

	byRank := make([]int, len(g.Atoms))
	for i := range byRank {
		byRank[i] = i
	}
	sort.Slice(byRank, func(x, y int) bool { return ranks[byRank[x]] < ranks[byRank[y]] })

	var parts []string
	for _, start := range byRank {
		if w.visited[start] {
			continue
		}
		w.build(start, -1)
		var sb strings.Builder
		w.emit(&sb, start, -1)
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, ".")
}

type treeEdge struct {
	atom, bond int
}

type smilesWriter struct {
	g         *Graph
	ranks     []int
	visited   []bool
	usedBond  []bool
	children  [][]treeEdge
	ringOpen  [][]int
	ringClose [][]int
	digitOf   map[int]int
	digitUsed map[int]bool
}

// sortedBonds returns the bonds of atom v ordered by the rank of the atom at
// the other end.
func (w *smilesWriter) sortedBonds(v int) []int {
	bonds := append([]int(nil), w.g.Atoms[v].bonds...)
	sort.Slice(bonds, func(x, y int) bool {
		return w.ranks[w.g.Bonds[bonds[x]].Other(v)] < w.ranks[w.g.Bonds[bonds[y]].Other(v)]
	})
	return bonds
}

// build lays out the spanning tree and ring closures of one component.
func (w *smilesWriter) build(v, parentBond int) {
	w.visited[v] = true
	for _, bi := range w.sortedBonds(v) {
		if bi == parentBond || w.usedBond[bi] {
			continue
		}
		u := w.g.Bonds[bi].Other(v)
		w.usedBond[bi] = true
		if w.visited[u] {
			w.ringOpen[u] = append(w.ringOpen[u], bi)
			w.ringClose[v] = append(w.ringClose[v], bi)
			continue
		}
		w.children[v] = append(w.children[v], treeEdge{atom: u, bond: bi})
		w.build(u, bi)
	}
}

func (w *smilesWriter) emit(sb *strings.Builder, v, parentBond int) {
	if parentBond >= 0 {
		sb.WriteString(w.bondSymbol(parentBond))
	}
	sb.WriteString(atomSymbol(w.g, v))

	var released []int
	for _, bi := range w.ringClose[v] {
		d := w.digitOf[bi]
		sb.WriteString(ringLabel(d))
		released = append(released, d)
	}
	for _, bi := range w.ringOpen[v] {
		d := w.freeDigit()
		w.digitUsed[d] = true
		w.digitOf[bi] = d
		sb.WriteString(w.bondSymbol(bi))
		sb.WriteString(ringLabel(d))
	}
	for _, d := range released {
		delete(w.digitUsed, d)
	}

	kids := w.children[v]
	for k, c := range kids {
		if k < len(kids)-1 {
			sb.WriteByte('(')
			w.emit(sb, c.atom, c.bond)
			sb.WriteByte(')')
			continue
		}
		w.emit(sb, c.atom, c.bond)
	}
}

func (w *smilesWriter) freeDigit() int {
	for d := 1; ; d++ {
		if !w.digitUsed[d] {
			return d
		}
	}
}

func ringLabel(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return "%" + strconv.Itoa(d)
}

func (w *smilesWriter) bondSymbol(bi int) string {
	b := &w.g.Bonds[bi]
	if b.Aromatic {
		return ""
	}
	switch b.Order {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	}
	if w.g.Atoms[b.Begin].Aromatic && w.g.Atoms[b.End].Aromatic {
		return "-"
	}
	return ""
}

// impliedHydrogens returns the hydrogen count a reader would assign to atom
// i if it were written without brackets, or -1 if that is impossible.
func impliedHydrogens(g *Graph, i int) int {
	a := &g.Atoms[i]
	valences := allowedValences(a.Number, 0)
	if valences == nil {
		return -1
	}
	used := 0
	for _, bi := range a.bonds {
		b := &g.Bonds[bi]
		if b.Aromatic {
			used++
		} else {
			used += int(b.Order)
		}
	}
	if a.Aromatic {
		if target, ok := targetValence(valences, used); ok && target-used >= 1 {
			used++
		}
	}
	target, ok := targetValence(valences, used)
	if !ok {
		return -1
	}
	return target - used
}

func atomSymbol(g *Graph, i int) string {
	a := &g.Atoms[i]
	symbol := a.Symbol
	if a.Aromatic {
		symbol = strings.ToLower(symbol)
	}

	e, _ := lookupElement(a.Symbol)
	if e != nil && e.Organic && a.Isotope == 0 && a.Charge == 0 && a.HCount == impliedHydrogens(g, i) {
		return symbol
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(symbol)
	if a.HCount > 0 {
		sb.WriteByte('H')
		if a.HCount > 1 {
			sb.WriteString(strconv.Itoa(a.HCount))
		}
	}
	switch {
	case a.Charge > 0:
		sb.WriteByte('+')
		if a.Charge > 1 {
			sb.WriteString(strconv.Itoa(a.Charge))
		}
	case a.Charge < 0:
		sb.WriteByte('-')
		if a.Charge < -1 {
			sb.WriteString(strconv.Itoa(-a.Charge))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
