package molecule

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fingerprint Structure
// ─────────────────────────────────────────────────────────────────────────────

// Fingerprint represents a molecular fingerprint as a bit vector.  The Bits
// field stores the packed bit array as bytes, where bit i is stored in byte
// i/8 at bit position i%8.
type Fingerprint struct {
	// Type identifies which fingerprint algorithm was used.
	Type mtypes.FingerprintType `json:"type"`

	// Bits is the packed bit vector representation.
	Bits []byte `json:"bits"`

	// Length is the total number of bits in the fingerprint.
	Length int `json:"length"`

	// NumOnBits is the count of set bits (popcount).
	NumOnBits int `json:"num_on_bits"`
}

// NewFingerprint constructs a Fingerprint from raw bit data.
func NewFingerprint(fpType mtypes.FingerprintType, data []byte, length int) *Fingerprint {
	onBits := 0
	for _, b := range data {
		onBits += bits.OnesCount8(b)
	}
	return &Fingerprint{
		Type:      fpType,
		Bits:      data,
		Length:    length,
		NumOnBits: onBits,
	}
}

func newEmptyFingerprint(fpType mtypes.FingerprintType, length int) *Fingerprint {
	return &Fingerprint{Type: fpType, Bits: make([]byte, (length+7)/8), Length: length}
}

// GetBit returns true if the bit at the given index is set.
func (fp *Fingerprint) GetBit(index int) bool {
	if index < 0 || index >= fp.Length {
		return false
	}
	return fp.Bits[index/8]&(1<<uint(index%8)) != 0
}

// SetBit sets the bit at the given index to 1.
func (fp *Fingerprint) SetBit(index int) {
	if index < 0 || index >= fp.Length {
		return
	}
	old := fp.Bits[index/8]
	fp.Bits[index/8] |= 1 << uint(index%8)
	if old != fp.Bits[index/8] {
		fp.NumOnBits++
	}
}

// OnBits returns the indices of the set bits in ascending order.
func (fp *Fingerprint) OnBits() []int {
	out := make([]int, 0, fp.NumOnBits)
	for i := 0; i < fp.Length; i++ {
		if fp.GetBit(i) {
			out = append(out, i)
		}
	}
	return out
}

// compatible reports whether two fingerprints can be compared bit for bit.
func (fp *Fingerprint) compatible(other *Fingerprint) bool {
	return fp != nil && other != nil && fp.Type == other.Type && fp.Length == other.Length
}

// ─────────────────────────────────────────────────────────────────────────────
// Options
// ─────────────────────────────────────────────────────────────────────────────

// FingerprintOptions selects the algorithm and its parameters.
type FingerprintOptions struct {
	Type mtypes.FingerprintType

	// Bits is the fingerprint length; a multiple of 8.
	Bits int

	// MinPath and MaxPath bound the number of bonds in topological paths.
	MinPath int
	MaxPath int

	// BitsPerHash is the number of bits set for each topological path.
	BitsPerHash int

	// Radius is the Morgan neighbourhood radius.
	Radius int
}

// DefaultFingerprintOptions returns the 2048-bit topological fingerprint with
// paths of 1 to 7 bonds and two bits per path.
func DefaultFingerprintOptions() FingerprintOptions {
	return FingerprintOptions{
		Type:        mtypes.FPTopological,
		Bits:        2048,
		MinPath:     1,
		MaxPath:     7,
		BitsPerHash: 2,
		Radius:      2,
	}
}

// Validate rejects options that cannot produce a fingerprint.
func (o FingerprintOptions) Validate() error {
	if !o.Type.IsValid() {
		return errors.Newf(errors.ErrCodeFingerprintTypeUnsupported, "unsupported fingerprint type %q", o.Type)
	}
	if o.Bits < 64 || o.Bits%8 != 0 {
		return errors.InvalidParam("fingerprint length must be a multiple of 8 and at least 64").
			WithDetail(fmt.Sprintf("bits=%d", o.Bits))
	}
	switch o.Type {
	case mtypes.FPTopological:
		if o.MinPath < 1 || o.MaxPath < o.MinPath {
			return errors.InvalidParam("invalid path length range").
				WithDetail(fmt.Sprintf("min=%d max=%d", o.MinPath, o.MaxPath))
		}
		if o.BitsPerHash < 1 {
			return errors.InvalidParam("bits per hash must be positive")
		}
	case mtypes.FPMorgan:
		if o.Radius < 0 {
			return errors.InvalidParam("morgan radius must not be negative")
		}
	}
	return nil
}

// GenerateFingerprint computes the fingerprint of a sanitized graph.
func GenerateFingerprint(g *Graph, opts FingerprintOptions) (*Fingerprint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if g == nil || len(g.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeFingerprintGenerationFailed, "empty molecule")
	}
	switch opts.Type {
	case mtypes.FPMorgan:
		return morganFingerprint(g, opts), nil
	default:
		return topologicalFingerprint(g, opts), nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Topological (path) fingerprint
// ─────────────────────────────────────────────────────────────────────────────

func atomCode(a *Atom) uint64 {
	code := uint64(a.Number) << 1
	if a.Aromatic {
		code |= 1
	}
	return code
}

// topologicalFingerprint hashes every simple path of MinPath to MaxPath bonds,
// plus every atom on its own, into BitsPerHash bits each.
func topologicalFingerprint(g *Graph, opts FingerprintOptions) *Fingerprint {
	fp := newEmptyFingerprint(mtypes.FPTopological, opts.Bits)

	emit := func(seq []uint64) {
		h := hashSequence(seq)
		for k := 0; k < opts.BitsPerHash; k++ {
			fp.SetBit(int(saltedHash(h, k) % uint64(opts.Bits)))
		}
	}

	for i := range g.Atoms {
		emit([]uint64{atomCode(&g.Atoms[i])})
	}

	onPath := make([]bool, len(g.Atoms))
	pathAtoms := make([]int, 0, opts.MaxPath+1)
	pathBonds := make([]int, 0, opts.MaxPath)

	var walk func(at int)
	walk = func(at int) {
		n := len(pathBonds)
		// Each path is reached from both ends; only emit it from the lower one.
		if n >= opts.MinPath && pathAtoms[0] < pathAtoms[len(pathAtoms)-1] {
			emit(pathSequence(g, pathAtoms, pathBonds))
		}
		if n == opts.MaxPath {
			return
		}
		for _, bi := range g.Atoms[at].bonds {
			w := g.Bonds[bi].Other(at)
			if onPath[w] {
				continue
			}
			onPath[w] = true
			pathAtoms = append(pathAtoms, w)
			pathBonds = append(pathBonds, bi)
			walk(w)
			pathAtoms = pathAtoms[:len(pathAtoms)-1]
			pathBonds = pathBonds[:len(pathBonds)-1]
			onPath[w] = false
		}
	}

	for s := range g.Atoms {
		onPath[s] = true
		pathAtoms = append(pathAtoms[:0], s)
		pathBonds = pathBonds[:0]
		walk(s)
		onPath[s] = false
	}
	return fp
}

// pathSequence encodes a path as alternating atom and bond codes, read in
// whichever direction sorts first so that both traversals hash alike.
func pathSequence(g *Graph, atoms, bonds []int) []uint64 {
	fwd := make([]uint64, 0, len(atoms)+len(bonds))
	for k, a := range atoms {
		fwd = append(fwd, atomCode(&g.Atoms[a]))
		if k < len(bonds) {
			fwd = append(fwd, uint64(bondCode(&g.Bonds[bonds[k]])))
		}
	}
	rev := make([]uint64, len(fwd))
	for k := range fwd {
		rev[k] = fwd[len(fwd)-1-k]
	}
	for k := range fwd {
		if fwd[k] != rev[k] {
			if rev[k] < fwd[k] {
				return rev
			}
			break
		}
	}
	return fwd
}

// ─────────────────────────────────────────────────────────────────────────────
// Morgan (circular) fingerprint
// ─────────────────────────────────────────────────────────────────────────────

// morganFingerprint sets one bit per atom environment for every radius from
// zero to opts.Radius.  Each environment identifier combines the previous
// identifier of the centre with the bond codes and identifiers of its
// neighbours.
func morganFingerprint(g *Graph, opts FingerprintOptions) *Fingerprint {
	fp := newEmptyFingerprint(mtypes.FPMorgan, opts.Bits)

	ids := make([]uint64, len(g.Atoms))
	for i := range g.Atoms {
		a := &g.Atoms[i]
		ids[i] = hashSequence([]uint64{
			uint64(g.Degree(i)), uint64(a.Number), uint64(a.HCount),
			uint64(int64(a.Charge)), uint64(a.Isotope),
			uint64(boolInt(g.InRing(i))), uint64(boolInt(a.Aromatic)),
		})
		fp.SetBit(int(ids[i] % uint64(opts.Bits)))
	}

	for r := 1; r <= opts.Radius; r++ {
		next := make([]uint64, len(ids))
		for i := range g.Atoms {
			nbrs := make([][2]uint64, 0, len(g.Atoms[i].bonds))
			for _, bi := range g.Atoms[i].bonds {
				b := &g.Bonds[bi]
				nbrs = append(nbrs, [2]uint64{uint64(bondCode(b)), ids[b.Other(i)]})
			}
			sort.Slice(nbrs, func(x, y int) bool {
				if nbrs[x][0] != nbrs[y][0] {
					return nbrs[x][0] < nbrs[y][0]
				}
				return nbrs[x][1] < nbrs[y][1]
			})
			seq := make([]uint64, 0, 2+2*len(nbrs))
			seq = append(seq, uint64(r), ids[i])
			for _, nb := range nbrs {
				seq = append(seq, nb[0], nb[1])
			}
			next[i] = hashSequence(seq)
			fp.SetBit(int(next[i] % uint64(opts.Bits)))
		}
		ids = next
	}
	return fp
}

// ─────────────────────────────────────────────────────────────────────────────
// Hashing
// ─────────────────────────────────────────────────────────────────────────────

func hashSequence(seq []uint64) uint64 {
	buf := make([]byte, 8*len(seq))
	for k, v := range seq {
		binary.LittleEndian.PutUint64(buf[8*k:], v)
	}
	return xxhash.Sum64(buf)
}

// saltedHash derives the k-th independent hash of a path from its base hash.
func saltedHash(h uint64, k int) uint64 {
	if k == 0 {
		return h
	}
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], h)
	buf[8] = byte(k)
	return xxhash.Sum64(buf[:])
}
