package molecule

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsim/pkg/errors"
)

// maxLineBytes bounds a single line of a structure file.
const maxLineBytes = 1 << 20

// Set is an ordered collection of molecules.  Insertion order is preserved
// and names need not be unique.  A Set is not safe for concurrent writes;
// once built it may be read from any number of goroutines.
type Set struct {
	toolkit   Toolkit
	logger    logging.Logger
	molecules []*Molecule

	// counter numbers auto-named molecules.  It only advances when an
	// unnamed structure is accepted.
	counter int
}

// Option configures a Set.
type Option func(*Set)

// WithToolkit replaces the default toolkit.
func WithToolkit(tk Toolkit) Option {
	return func(s *Set) {
		if tk != nil {
			s.toolkit = tk
		}
	}
}

// WithLogger sets the logger used for load and lookup diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(s *Set) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSet returns an empty set.
func NewSet(opts ...Option) *Set {
	s := &Set{
		toolkit: DefaultToolkit(),
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Toolkit returns the toolkit the set canonicalizes and compares with.
func (s *Set) Toolkit() Toolkit { return s.toolkit }

// ─────────────────────────────────────────────────────────────────────────────
// Insertion
// ─────────────────────────────────────────────────────────────────────────────

// Add canonicalizes and fingerprints each entry in order and appends those
// that succeed.  Entries that fail are left out and returned; the slice is
// empty when everything was accepted.
func (s *Set) Add(entries ...Entry) []AddFailure {
	var failures []AddFailure
	for _, e := range entries {
		mol, err := s.prepare(e)
		if err != nil {
			name := e.Name
			if name == "" {
				name = UndefinedName
			}
			s.logger.Warn("structure rejected",
				logging.String("structure", e.Structure),
				logging.String("name", name),
				logging.Err(err))
			failures = append(failures, AddFailure{Structure: e.Structure, Name: name, Err: err})
			continue
		}
		if mol.Name == "" {
			mol.Name = fmt.Sprintf(autoNameFormat, s.counter)
			s.counter++
		}
		s.molecules = append(s.molecules, mol)
	}
	return failures
}

func (s *Set) prepare(e Entry) (*Molecule, error) {
	canonical, err := s.toolkit.Canonicalize(e.Structure)
	if err != nil {
		return nil, err
	}
	fp, err := s.toolkit.Fingerprint(canonical)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFingerprintGenerationFailed, "fingerprint generation failed")
	}
	return &Molecule{Name: e.Name, CanonicalSMILES: canonical, Fingerprint: fp}, nil
}

// AddStructure adds one unnamed structure.
func (s *Set) AddStructure(structure string) []AddFailure {
	return s.Add(Entry{Structure: structure})
}

// AddNamed adds one named structure.
func (s *Set) AddNamed(structure, name string) []AddFailure {
	return s.Add(Entry{Structure: structure, Name: name})
}

// AddStructures adds unnamed structures in order.
func (s *Set) AddStructures(structures ...string) []AddFailure {
	entries := make([]Entry, len(structures))
	for i, st := range structures {
		entries[i] = Entry{Structure: st}
	}
	return s.Add(entries...)
}

// AddFromFile loads a structure file, one "<structure> [<name>]" per line.
// A missing file is logged and reported as a not-found error, leaving the
// set unchanged.
func (s *Set) AddFromFile(path string) ([]AddFailure, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Error("structure file not found", logging.String("path", path))
			return nil, errors.NotFound("structure file not found").WithDetail("path=" + path)
		}
		s.logger.Error("failed to open structure file", logging.String("path", path), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "failed to open structure file").
			WithDetail("path=" + path)
	}
	defer f.Close()

	failures, err := s.AddFromReader(f)
	if err != nil {
		return failures, errors.Wrap(err, errors.CodeUnknown, "failed to read structure file").WithDetail("path=" + path)
	}
	s.logger.Info("structure file loaded",
		logging.String("path", path),
		logging.Int("molecules", s.Len()),
		logging.Int("failures", len(failures)))
	return failures, nil
}

// AddFromReader reads structure lines from r.  Blank lines are skipped.
// Entries are only added once the whole input has been read.
func (s *Set) AddFromReader(r io.Reader) ([]AddFailure, error) {
	entries, err := ReadEntries(r)
	if err != nil {
		return nil, err
	}
	return s.Add(entries...), nil
}

// ReadEntries parses structure lines.  Each line holds a structure and an
// optional name separated by a single space.
func ReadEntries(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	var entries []Entry
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, " ")
		e := Entry{Structure: fields[0]}
		if len(fields) > 1 {
			e.Name = fields[1]
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDataSourceParseError, "failed to read structure lines")
	}
	return entries, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Access
// ─────────────────────────────────────────────────────────────────────────────

// Len returns the number of molecules in the set.
func (s *Set) Len() int { return len(s.molecules) }

// Get returns the molecule at index.  Negative indices count from the end.
// An index out of range is logged and reported as (nil, false).
func (s *Set) Get(index int) (*Molecule, bool) {
	i := index
	if i < 0 {
		i += len(s.molecules)
	}
	if i < 0 || i >= len(s.molecules) {
		s.logger.Error("molecule index out of range",
			logging.Int("index", index),
			logging.Int("size", len(s.molecules)))
		return nil, false
	}
	return s.molecules[i], true
}

// Molecules returns the molecules in insertion order.  The slice must not be
// modified.
func (s *Set) Molecules() []*Molecule { return s.molecules }

// AllPairs returns (canonical structure, name) for every molecule in
// insertion order.
func (s *Set) AllPairs() []Entry {
	out := make([]Entry, len(s.molecules))
	for i, m := range s.molecules {
		out[i] = Entry{Structure: m.CanonicalSMILES, Name: m.Name}
	}
	return out
}
