package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akash-acog/sol/internal/domain/solvent"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	"github.com/akash-acog/sol/pkg/errors"
)

// LoadSolventRegistry builds the in-memory solvent registry from the
// database. When the solvents table is empty the built-in catalogue is used
// instead, so a fresh deployment works without seeding.
func LoadSolventRegistry(ctx context.Context, pool *pgxpool.Pool, log logging.Logger) (solvent.Registry, error) {
	return loadSolventRegistry(ctx, pool, log)
}

func loadSolventRegistry(ctx context.Context, db querier, log logging.Logger) (solvent.Registry, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("solvent-repo")

	rows, err := db.Query(ctx, `SELECT name, smiles, dielectric FROM solvents`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query solvents")
	}
	defer rows.Close()

	var solvents []solvent.Solvent
	for rows.Next() {
		var s solvent.Solvent
		if err := rows.Scan(&s.Name, &s.SMILES, &s.Dielectric); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan solvent row")
		}
		solvents = append(solvents, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read solvent rows")
	}

	if len(solvents) == 0 {
		log.Info("solvents table empty, using built-in catalogue")
		return solvent.NewRegistry(), nil
	}

	log.Info("solvent catalogue loaded", logging.Int("count", len(solvents)))
	return solvent.NewRegistryWith(solvents), nil
}
