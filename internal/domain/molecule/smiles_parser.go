package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/chemsim/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// SMILES reader
// ─────────────────────────────────────────────────────────────────────────────

// ParseSMILES reads a SMILES string into a sanitized molecular graph: the
// input is syntax-checked, aromatic systems are kekulized, valences are
// checked, implicit hydrogens are assigned, explicit hydrogen atoms are folded
// into their heavy atoms and aromaticity is perceived afresh.  Stereo marks
// are accepted and discarded.
//
// Any failure yields an AppError with code MOL_001.
func ParseSMILES(smiles string) (*Graph, error) {
	p := &smilesParser{
		input: smiles,
		g:     &Graph{},
		prev:  -1,
		rings: make(map[int]ringOpening),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	g, err := sanitize(p.g)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMoleculeInvalidSMILES, "invalid SMILES").
			WithDetail(fmt.Sprintf("smiles=%q", smiles))
	}
	return g, nil
}

type ringOpening struct {
	atom     int
	order    BondOrder
	explicit bool
}

type smilesParser struct {
	input string
	pos   int
	g     *Graph

	prev        int
	pending     BondOrder
	havePending bool
	branches    []int
	rings       map[int]ringOpening

	// lastBranchOpen is true right after '(' so that "()" can be rejected.
	lastBranchOpen bool
	afterDot       bool
}

func (p *smilesParser) fail(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeMoleculeInvalidSMILES, format, args...).
		WithDetail(fmt.Sprintf("smiles=%q position=%d", p.input, p.pos))
}

func (p *smilesParser) parse() error {
	if strings.TrimSpace(p.input) == "" {
		return p.fail("empty SMILES")
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch without a preceding atom")
			}
			if p.havePending {
				return p.fail("bond symbol before branch")
			}
			p.branches = append(p.branches, p.prev)
			p.lastBranchOpen = true
			p.pos++
			continue
		case c == ')':
			if len(p.branches) == 0 {
				return p.fail("unmatched ')'")
			}
			if p.lastBranchOpen {
				return p.fail("empty branch")
			}
			if p.havePending {
				return p.fail("dangling bond at end of branch")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case c == '.':
			if p.prev < 0 || p.havePending {
				return p.fail("misplaced '.'")
			}
			p.prev = -1
			p.afterDot = true
			p.pos++
		case isBondSymbol(c):
			if p.prev < 0 {
				return p.fail("bond %q without a preceding atom", c)
			}
			if p.havePending {
				return p.fail("consecutive bond symbols")
			}
			p.pending = bondOrderFor(c)
			p.havePending = true
			p.pos++
		case c >= '0' && c <= '9' || c == '%':
			if p.prev < 0 {
				return p.fail("ring closure without a preceding atom")
			}
			num, err := p.readRingNumber()
			if err != nil {
				return err
			}
			if err := p.ringBond(num); err != nil {
				return err
			}
		case c == '[':
			a, err := p.readBracketAtom()
			if err != nil {
				return err
			}
			p.attach(a)
		default:
			a, err := p.readOrganicAtom()
			if err != nil {
				return err
			}
			p.attach(a)
		}
		p.lastBranchOpen = false
	}

	switch {
	case p.havePending:
		return p.fail("dangling bond at end of input")
	case len(p.branches) > 0:
		return p.fail("unclosed branch")
	case len(p.rings) > 0:
		for num := range p.rings {
			return p.fail("unclosed ring bond %d", num)
		}
	case p.afterDot:
		return p.fail("missing component after '.'")
	case len(p.g.Atoms) == 0:
		return p.fail("no atoms")
	}
	return nil
}

func isBondSymbol(c byte) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondOrderFor(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

// implicitOrder is the order of a bond written without a symbol.
func (p *smilesParser) implicitOrder(a, b int) BondOrder {
	if p.g.Atoms[a].Aromatic && p.g.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *smilesParser) attach(a Atom) {
	idx := p.g.addAtom(a)
	if p.prev >= 0 {
		if p.havePending {
			p.g.addBond(p.prev, idx, p.pending, false)
		} else {
			p.g.addBond(p.prev, idx, p.implicitOrder(p.prev, idx), true)
		}
	}
	p.prev = idx
	p.havePending = false
	p.afterDot = false
}

func (p *smilesParser) readRingNumber() (int, error) {
	if p.input[p.pos] != '%' {
		n := int(p.input[p.pos] - '0')
		p.pos++
		return n, nil
	}
	if p.pos+2 >= len(p.input) || !isDigit(p.input[p.pos+1]) || !isDigit(p.input[p.pos+2]) {
		return 0, p.fail("'%%' must be followed by two digits")
	}
	n := int(p.input[p.pos+1]-'0')*10 + int(p.input[p.pos+2]-'0')
	p.pos += 3
	return n, nil
}

func (p *smilesParser) ringBond(num int) error {
	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringOpening{atom: p.prev, order: p.pending, explicit: p.havePending}
		p.havePending = false
		return nil
	}
	delete(p.rings, num)

	if open.atom == p.prev {
		return p.fail("ring bond %d closes on its own atom", num)
	}
	if p.g.bondBetween(open.atom, p.prev) >= 0 {
		return p.fail("ring bond %d duplicates an existing bond", num)
	}
	order, implicit := BondSingle, false
	switch {
	case p.havePending && open.explicit:
		if p.pending != open.order {
			return p.fail("conflicting bond orders for ring bond %d", num)
		}
		order = p.pending
	case p.havePending:
		order = p.pending
	case open.explicit:
		order = open.order
	default:
		order, implicit = p.implicitOrder(open.atom, p.prev), true
	}
	p.g.addBond(open.atom, p.prev, order, implicit)
	p.havePending = false
	return nil
}

func (p *smilesParser) readOrganicAtom() (Atom, error) {
	c := p.input[p.pos]
	symbol := string(c)
	aromatic := false
	switch c {
	case 'B', 'C':
		if p.pos+1 < len(p.input) {
			two := p.input[p.pos : p.pos+2]
			if two == "Br" || two == "Cl" {
				symbol = two
			}
		}
	case 'N', 'O', 'P', 'S', 'F', 'I', '*':
	case 'b', 'c', 'n', 'o', 'p', 's':
		symbol = strings.ToUpper(symbol)
		aromatic = true
	default:
		return Atom{}, p.fail("unexpected character %q", c)
	}
	e, _ := lookupElement(symbol)
	if symbol == "Br" || symbol == "Cl" {
		p.pos += 2
	} else {
		p.pos++
	}
	return Atom{Number: e.Number, Symbol: e.Symbol, Aromatic: aromatic}, nil
}

func (p *smilesParser) readBracketAtom() (Atom, error) {
	start := p.pos
	p.pos++ // '['
	a := Atom{Bracket: true}

	a.Isotope = p.readInt()

	if err := p.readBracketSymbol(&a); err != nil {
		return Atom{}, err
	}
	p.skipChirality()

	if p.peek() == 'H' {
		p.pos++
		a.HCount = 1
		if isDigit(p.peek()) {
			a.HCount = p.readInt()
		}
	}

	switch sign := p.peek(); sign {
	case '+', '-':
		p.pos++
		magnitude := 1
		if isDigit(p.peek()) {
			magnitude = p.readInt()
		} else {
			for p.peek() == sign {
				magnitude++
				p.pos++
			}
		}
		if sign == '-' {
			magnitude = -magnitude
		}
		a.Charge = magnitude
	}

	if p.peek() == ':' {
		p.pos++
		if !isDigit(p.peek()) {
			return Atom{}, p.fail("atom class must be numeric")
		}
		_ = p.readInt() // atom classes are not retained
	}

	if p.peek() != ']' {
		p.pos = start
		return Atom{}, p.fail("unterminated bracket atom")
	}
	p.pos++
	return a, nil
}

func (p *smilesParser) readBracketSymbol(a *Atom) error {
	rest := p.input[p.pos:]
	if rest == "" {
		return p.fail("unterminated bracket atom")
	}
	if rest[0] == '*' {
		a.Symbol, a.Number = "*", 0
		p.pos++
		return nil
	}

	// Aromatic symbols: two-letter forms first.
	for _, sym := range []string{"se", "as", "te", "b", "c", "n", "o", "p", "s"} {
		if strings.HasPrefix(rest, sym) {
			e, _ := lookupElement(strings.ToUpper(sym[:1]) + sym[1:])
			a.Symbol, a.Number, a.Aromatic = e.Symbol, e.Number, true
			p.pos += len(sym)
			return nil
		}
	}

	if rest[0] < 'A' || rest[0] > 'Z' {
		return p.fail("invalid element symbol in bracket atom")
	}
	if len(rest) > 1 && rest[1] >= 'a' && rest[1] <= 'z' {
		if e, ok := lookupElement(rest[:2]); ok {
			a.Symbol, a.Number = e.Symbol, e.Number
			p.pos += 2
			return nil
		}
	}
	e, ok := lookupElement(rest[:1])
	if !ok {
		return p.fail("unknown element %q", rest[:1])
	}
	a.Symbol, a.Number = e.Symbol, e.Number
	p.pos++
	return nil
}

// skipChirality consumes @, @@ and the extended @TH1/@AL2/@SP3/@TB5/@OH12
// forms.
func (p *smilesParser) skipChirality() {
	if p.peek() != '@' {
		return
	}
	p.pos++
	if p.peek() == '@' {
		p.pos++
		return
	}
	if p.pos+1 < len(p.input) {
		switch p.input[p.pos : p.pos+2] {
		case "TH", "AL", "SP", "TB", "OH":
			p.pos += 2
			_ = p.readInt()
		}
	}
}

func (p *smilesParser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *smilesParser) readInt() int {
	n := 0
	for isDigit(p.peek()) {
		n = n*10 + int(p.input[p.pos]-'0')
		p.pos++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
