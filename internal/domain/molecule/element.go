package molecule

// element describes the properties of a chemical element that the SMILES
// reader and writer rely on.
type element struct {
	Symbol string
	Number int

	// Valences lists the allowed total valences in increasing order.  An empty
	// list means the element is not valence-checked (metals, noble gases).
	Valences []int

	// Organic marks members of the SMILES organic subset, which may be written
	// without brackets.
	Organic bool

	// Aromatic marks elements that may carry a lowercase aromatic symbol.
	Aromatic bool
}

var elements = []element{
	{Symbol: "*", Number: 0},
	{Symbol: "H", Number: 1, Valences: []int{1}},
	{Symbol: "He", Number: 2},
	{Symbol: "Li", Number: 3, Valences: []int{1}},
	{Symbol: "Be", Number: 4, Valences: []int{2}},
	{Symbol: "B", Number: 5, Valences: []int{3}, Organic: true, Aromatic: true},
	{Symbol: "C", Number: 6, Valences: []int{4}, Organic: true, Aromatic: true},
	{Symbol: "N", Number: 7, Valences: []int{3}, Organic: true, Aromatic: true},
	{Symbol: "O", Number: 8, Valences: []int{2}, Organic: true, Aromatic: true},
	{Symbol: "F", Number: 9, Valences: []int{1}, Organic: true},
	{Symbol: "Ne", Number: 10},
	{Symbol: "Na", Number: 11, Valences: []int{1}},
	{Symbol: "Mg", Number: 12, Valences: []int{2}},
	{Symbol: "Al", Number: 13, Valences: []int{3}},
	{Symbol: "Si", Number: 14, Valences: []int{4}},
	{Symbol: "P", Number: 15, Valences: []int{3, 5, 7}, Organic: true, Aromatic: true},
	{Symbol: "S", Number: 16, Valences: []int{2, 4, 6}, Organic: true, Aromatic: true},
	{Symbol: "Cl", Number: 17, Valences: []int{1}, Organic: true},
	{Symbol: "Ar", Number: 18},
	{Symbol: "K", Number: 19, Valences: []int{1}},
	{Symbol: "Ca", Number: 20, Valences: []int{2}},
	{Symbol: "Sc", Number: 21},
	{Symbol: "Ti", Number: 22},
	{Symbol: "V", Number: 23},
	{Symbol: "Cr", Number: 24},
	{Symbol: "Mn", Number: 25},
	{Symbol: "Fe", Number: 26},
	{Symbol: "Co", Number: 27},
	{Symbol: "Ni", Number: 28},
	{Symbol: "Cu", Number: 29},
	{Symbol: "Zn", Number: 30},
	{Symbol: "Ga", Number: 31, Valences: []int{3}},
	{Symbol: "Ge", Number: 32, Valences: []int{4}},
	{Symbol: "As", Number: 33, Valences: []int{3, 5, 7}, Aromatic: true},
	{Symbol: "Se", Number: 34, Valences: []int{2, 4, 6}, Aromatic: true},
	{Symbol: "Br", Number: 35, Valences: []int{1}, Organic: true},
	{Symbol: "Kr", Number: 36},
	{Symbol: "Rb", Number: 37, Valences: []int{1}},
	{Symbol: "Sr", Number: 38, Valences: []int{2}},
	{Symbol: "Y", Number: 39},
	{Symbol: "Zr", Number: 40},
	{Symbol: "Nb", Number: 41},
	{Symbol: "Mo", Number: 42},
	{Symbol: "Tc", Number: 43},
	{Symbol: "Ru", Number: 44},
	{Symbol: "Rh", Number: 45},
	{Symbol: "Pd", Number: 46},
	{Symbol: "Ag", Number: 47},
	{Symbol: "Cd", Number: 48},
	{Symbol: "In", Number: 49, Valences: []int{3}},
	{Symbol: "Sn", Number: 50, Valences: []int{2, 4}},
	{Symbol: "Sb", Number: 51, Valences: []int{3, 5}},
	{Symbol: "Te", Number: 52, Valences: []int{2, 4, 6}, Aromatic: true},
	{Symbol: "I", Number: 53, Valences: []int{1, 3, 5}, Organic: true},
	{Symbol: "Xe", Number: 54},
	{Symbol: "Cs", Number: 55, Valences: []int{1}},
	{Symbol: "Ba", Number: 56, Valences: []int{2}},
	{Symbol: "La", Number: 57},
	{Symbol: "Ce", Number: 58},
	{Symbol: "Gd", Number: 64},
	{Symbol: "Hf", Number: 72},
	{Symbol: "Ta", Number: 73},
	{Symbol: "W", Number: 74},
	{Symbol: "Re", Number: 75},
	{Symbol: "Os", Number: 76},
	{Symbol: "Ir", Number: 77},
	{Symbol: "Pt", Number: 78},
	{Symbol: "Au", Number: 79},
	{Symbol: "Hg", Number: 80},
	{Symbol: "Tl", Number: 81},
	{Symbol: "Pb", Number: 82, Valences: []int{2, 4}},
	{Symbol: "Bi", Number: 83, Valences: []int{3, 5}},
	{Symbol: "Po", Number: 84},
	{Symbol: "At", Number: 85},
	{Symbol: "Rn", Number: 86},
	{Symbol: "Ra", Number: 88},
	{Symbol: "U", Number: 92},
}

var (
	elementsBySymbol = make(map[string]*element, len(elements))
	elementsByNumber = make(map[int]*element, len(elements))
)

func init() {
	for i := range elements {
		e := &elements[i]
		elementsBySymbol[e.Symbol] = e
		elementsByNumber[e.Number] = e
	}
}

func lookupElement(symbol string) (*element, bool) {
	e, ok := elementsBySymbol[symbol]
	return e, ok
}

// allowedValences returns the valences of an atom after shifting by its
// formal charge: a charged atom takes the valences of the isoelectronic
// neutral element (N+ behaves like C, O- like F).  A nil result disables the
// valence check.
func allowedValences(number, charge int) []int {
	if number <= 0 {
		return nil
	}
	shifted := number - charge
	if shifted <= 0 {
		return nil
	}
	e, ok := elementsByNumber[shifted]
	if !ok || len(e.Valences) == 0 {
		return nil
	}
	return e.Valences
}

// targetValence returns the smallest allowed valence that is at least used.
// ok is false when used exceeds every allowed valence.
func targetValence(valences []int, used int) (int, bool) {
	for _, v := range valences {
		if v >= used {
			return v, true
		}
	}
	return 0, false
}
