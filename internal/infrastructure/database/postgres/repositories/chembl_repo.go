package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/chemsim/internal/domain/molecule"
	"github.com/turtacn/chemsim/internal/infrastructure/database/postgres"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsim/pkg/errors"
)

// lookupBatchSize caps the number of placeholders in one IN list.
const lookupBatchSize = 500

const structureQuery = `
	SELECT md.chembl_id, cs.canonical_smiles
	FROM molecule_dictionary md
	JOIN compound_structures cs ON md.molregno = cs.molregno
	WHERE md.chembl_id IN (%s) AND cs.canonical_smiles IS NOT NULL`

// StructureRepository resolves ChEMBL identifiers to structures.
type StructureRepository interface {
	// FindStructures returns one entry per resolved id, named by the id, in
	// the order the ids were requested.  Ids absent from the mirror are
	// returned in missing, also in request order.
	FindStructures(ctx context.Context, ids []string) (entries []molecule.Entry, missing []string, err error)
}

type chemblRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

func NewChEMBLRepo(conn *postgres.Connection, log logging.Logger) StructureRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &chemblRepo{conn: conn, log: log}
}

// NormalizeIDs upper-cases and trims ids and drops blanks and repeats,
// keeping the first occurrence.
func NormalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r *chemblRepo) FindStructures(ctx context.Context, ids []string) ([]molecule.Entry, []string, error) {
	ids = NormalizeIDs(ids)
	if len(ids) == 0 {
		return []molecule.Entry{}, []string{}, nil
	}

	if timeout := r.conn.QueryTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	found := make(map[string]string, len(ids))
	for start := 0; start < len(ids); start += lookupBatchSize {
		end := start + lookupBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := r.lookup(ctx, ids[start:end], found); err != nil {
			return nil, nil, err
		}
	}

	entries := make([]molecule.Entry, 0, len(found))
	missing := make([]string, 0)
	for _, id := range ids {
		smiles, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		entries = append(entries, molecule.Entry{Structure: smiles, Name: id})
	}

	r.log.Info("ChEMBL structures resolved",
		logging.Int("requested", len(ids)),
		logging.Int("found", len(entries)),
		logging.Int("missing", len(missing)))
	return entries, missing, nil
}

func (r *chemblRepo) lookup(ctx context.Context, ids []string, found map[string]string) error {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(structureQuery, strings.Join(placeholders, ", "))

	rows, err := r.conn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query ChEMBL structures")
	}
	defer rows.Close()

	for rows.Next() {
		var id, smiles string
		if err := rows.Scan(&id, &smiles); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan ChEMBL structure")
		}
		found[id] = smiles
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read ChEMBL structures")
	}
	return nil
}

//Personal.AI order the ending
