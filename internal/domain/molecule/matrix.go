package molecule

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// Matrix holds pairwise similarities indexed by position.  Row and column
// labels are molecule names and may repeat.
type Matrix struct {
	RowNames []string
	ColNames []string
	Values   [][]float64
}

// At returns the similarity of row i and column j.
func (m *Matrix) At(i, j int) float64 { return m.Values[i][j] }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return len(m.Values) }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return len(m.ColNames) }

// BestMatch is the nearest neighbour of one query molecule.  Found is false
// when there was nothing to compare against.
type BestMatch struct {
	Query string
	Match string
	Score float64
	Found bool
}

// String renders "<query> <match> <score>", or "<query> None None" when no
// match exists.
func (b BestMatch) String() string {
	return b.Row().String()
}

// Row converts the match into its report form.
func (b BestMatch) Row() mtypes.SimilarityRow {
	row := mtypes.SimilarityRow{Query: b.Query}
	if b.Found {
		match, score := b.Match, b.Score
		row.Match, row.Score = &match, &score
	}
	return row
}

// MatrixOption tunes matrix construction.
type MatrixOption func(*matrixConfig)

type matrixConfig struct {
	workers int
}

// WithWorkers splits row computation across n goroutines.  Values below 2
// compute sequentially.  The result does not depend on n.
func WithWorkers(n int) MatrixOption {
	return func(c *matrixConfig) { c.workers = n }
}

func newMatrixConfig(opts []MatrixOption) matrixConfig {
	cfg := matrixConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	return cfg
}

func names(s *Set) []string {
	out := make([]string, s.Len())
	for i, m := range s.molecules {
		out[i] = m.Name
	}
	return out
}

// forEachRow calls fn for rows 0..n-1, in parallel when configured.  Every
// row is written by exactly one call.
func forEachRow(ctx context.Context, n int, cfg matrixConfig, fn func(i int) error) error {
	if cfg.workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	return g.Wait()
}

func similarityError(err error, a, b *Molecule) error {
	return errors.Wrap(err, errors.ErrCodeSimilaritySearchFailed, "similarity computation failed").
		WithDetail(fmt.Sprintf("a=%s b=%s", a.Name, b.Name))
}

// ─────────────────────────────────────────────────────────────────────────────
// Intra-set similarity
// ─────────────────────────────────────────────────────────────────────────────

// IntraSimilarityMatrix computes the N×N similarity matrix of s.  The
// diagonal is 1.0; the upper triangle is computed and mirrored.
func IntraSimilarityMatrix(ctx context.Context, s *Set, opts ...MatrixOption) (*Matrix, error) {
	cfg := newMatrixConfig(opts)
	n := s.Len()
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1.0
	}

	err := forEachRow(ctx, n, cfg, func(i int) error {
		for j := i + 1; j < n; j++ {
			score, err := s.toolkit.Similarity(s.molecules[i].Fingerprint, s.molecules[j].Fingerprint)
			if err != nil {
				return similarityError(err, s.molecules[i], s.molecules[j])
			}
			values[i][j] = score
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			values[j][i] = values[i][j]
		}
	}
	nm := names(s)
	return &Matrix{RowNames: nm, ColNames: nm, Values: values}, nil
}

// IntraSimilarities returns, for every molecule of s, the most similar other
// molecule.  Ties go to the earliest in insertion order.  A set with fewer
// than two molecules yields no rows.
func IntraSimilarities(ctx context.Context, s *Set, opts ...MatrixOption) ([]BestMatch, error) {
	if s.Len() <= 1 {
		return []BestMatch{}, nil
	}
	m, err := IntraSimilarityMatrix(ctx, s, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]BestMatch, m.Rows())
	for i := range out {
		best := BestMatch{Query: m.RowNames[i]}
		for j := 0; j < m.Cols(); j++ {
			if j == i {
				continue
			}
			if !best.Found || m.At(i, j) > best.Score {
				best.Match, best.Score, best.Found = m.ColNames[j], m.At(i, j), true
			}
		}
		out[i] = best
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Inter-set similarity
// ─────────────────────────────────────────────────────────────────────────────

// InterSimilarityMatrix computes the |A|×|B| similarity matrix between the
// query set a and the reference set b.
func InterSimilarityMatrix(ctx context.Context, a, b *Set, opts ...MatrixOption) (*Matrix, error) {
	cfg := newMatrixConfig(opts)
	values := make([][]float64, a.Len())
	for i := range values {
		values[i] = make([]float64, b.Len())
	}
	err := forEachRow(ctx, a.Len(), cfg, func(i int) error {
		for j, ref := range b.molecules {
			score, err := a.toolkit.Similarity(a.molecules[i].Fingerprint, ref.Fingerprint)
			if err != nil {
				return similarityError(err, a.molecules[i], ref)
			}
			values[i][j] = score
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Matrix{RowNames: names(a), ColNames: names(b), Values: values}, nil
}

// InterSimilarities returns, for every molecule of a, the most similar
// molecule of b.  Ties go to the earliest in b.  When b is empty every query
// gets a row without a match.
func InterSimilarities(ctx context.Context, a, b *Set, opts ...MatrixOption) ([]BestMatch, error) {
	m, err := InterSimilarityMatrix(ctx, a, b, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]BestMatch, m.Rows())
	for i := range out {
		best := BestMatch{Query: m.RowNames[i]}
		for j := 0; j < m.Cols(); j++ {
			if !best.Found || m.At(i, j) > best.Score {
				best.Match, best.Score, best.Found = m.ColNames[j], m.At(i, j), true
			}
		}
		out[i] = best
	}
	return out, nil
}
