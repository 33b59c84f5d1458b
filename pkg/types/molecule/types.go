// Package molecule defines the molecule-similarity Data Transfer Objects and
// enumerations shared by every layer of chemsim.  No domain logic lives here,
// only plain data types that are safe to import from any layer without
// creating circular dependencies.
package molecule

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// FingerprintType — molecular fingerprint algorithm identifier
// ─────────────────────────────────────────────────────────────────────────────

// FingerprintType identifies which fingerprint algorithm was used to generate
// a bit vector for a molecule.
type FingerprintType string

const (
	// FPTopological is the Daylight-style linear path fingerprint.
	FPTopological FingerprintType = "topological"

	// FPMorgan is the circular Morgan / ECFP fingerprint (radius 2 → ECFP4).
	FPMorgan FingerprintType = "morgan"
)

// IsValid reports whether t names a supported algorithm.
func (t FingerprintType) IsValid() bool {
	return t == FPTopological || t == FPMorgan
}

func (t FingerprintType) String() string { return string(t) }

// ─────────────────────────────────────────────────────────────────────────────
// SimilarityMetric
// ─────────────────────────────────────────────────────────────────────────────

// SimilarityMetric selects the coefficient used to compare two fingerprints.
type SimilarityMetric string

const (
	MetricTanimoto SimilarityMetric = "tanimoto"
	MetricDice     SimilarityMetric = "dice"
)

// IsValid reports whether m names a supported metric.
func (m SimilarityMetric) IsValid() bool {
	return m == MetricTanimoto || m == MetricDice
}

func (m SimilarityMetric) String() string { return string(m) }

// ─────────────────────────────────────────────────────────────────────────────
// Report
// ─────────────────────────────────────────────────────────────────────────────

// ReportMode distinguishes a report computed within one set from one computed
// between a query set and a reference set.
type ReportMode string

const (
	ModeIntra ReportMode = "intra"
	ModeInter ReportMode = "inter"
)

// ReportHeader is the first line of a text report.
const ReportHeader = "mol1 mol2 similarity"

// NoMatch is written in place of the match name and score when the
// reference set was empty.
const NoMatch = "None"

// SimilarityRow is one line of a report: a query molecule, its nearest
// neighbour and their similarity.  Match and Score are nil when there was
// nothing to compare against.
type SimilarityRow struct {
	Query string   `json:"query"`
	Match *string  `json:"match"`
	Score *float64 `json:"score"`
}

// String renders the row as "<query> <match> <score>".
func (r SimilarityRow) String() string {
	if r.Match == nil || r.Score == nil {
		return r.Query + " " + NoMatch + " " + NoMatch
	}
	return r.Query + " " + *r.Match + " " + FormatScore(*r.Score)
}

// FailureDTO describes an input line that could not be loaded.
type FailureDTO struct {
	Source    string `json:"source,omitempty"`
	Structure string `json:"structure"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

// SimilarityReport is the result of one similarity run.
type SimilarityReport struct {
	RunID        string           `json:"run_id,omitempty"`
	Mode         ReportMode       `json:"mode"`
	Fingerprint  FingerprintType  `json:"fingerprint"`
	Metric       SimilarityMetric `json:"metric"`
	QueryURI     string           `json:"query_uri"`
	ReferenceURI string           `json:"reference_uri,omitempty"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Rows         []SimilarityRow  `json:"rows"`
	Failures     []FailureDTO     `json:"failures,omitempty"`
}

// WriteText writes the space-separated report.  The header is only written
// when there is at least one row.
func (r *SimilarityReport) WriteText(w io.Writer) error {
	if len(r.Rows) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(ReportHeader)
	sb.WriteByte('\n')
	for _, row := range r.Rows {
		sb.WriteString(row.String())
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes the report as indented JSON.
func (r *SimilarityReport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// FormatScore renders a similarity in its shortest decimal form, always with
// a fractional part: 1 → "1.0", 0.969 → "0.969".
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

//Personal.AI order the ending
