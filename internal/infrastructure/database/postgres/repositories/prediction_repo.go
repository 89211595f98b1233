package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	"github.com/akash-acog/sol/pkg/errors"
	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

// PredictionRepository persists completed predictions. It satisfies the
// prediction service's History interface.
type PredictionRepository struct {
	db     querier
	logger logging.Logger
}

// NewPredictionRepository constructs a ready-to-use repository.
func NewPredictionRepository(pool *pgxpool.Pool, log logging.Logger) *PredictionRepository {
	return newPredictionRepository(pool, log)
}

func newPredictionRepository(db querier, log logging.Logger) *PredictionRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &PredictionRepository{db: db, logger: log.Named("prediction-repo")}
}

var predictionColumns = []string{
	"id", "solute_smiles", "solvent_smiles", "temperature_k",
	"predicted_logs", "model_version", "created_at",
}

// SavePredictions bulk-inserts a batch via the COPY protocol. One round-trip
// regardless of batch size.
func (r *PredictionRepository) SavePredictions(ctx context.Context, events []ptypes.Event) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([][]any, len(events))
	for i, ev := range events {
		rows[i] = []any{
			ev.ID, ev.SoluteSMILES, ev.SolventSMILES, ev.TemperatureK,
			ev.PredictedLogS, ev.ModelVersion,
			time.UnixMilli(ev.UnixMillis).UTC(),
		}
	}

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"predictions"}, predictionColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert predictions")
	}
	r.logger.Debug("predictions saved", logging.Int64("count", n))
	return nil
}

// ListBySolute returns the most recent predictions for one solute, newest
// first.
func (r *PredictionRepository) ListBySolute(ctx context.Context, soluteSMILES string, limit int) ([]ptypes.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, solute_smiles, solvent_smiles, temperature_k,
		       predicted_logs, model_version, created_at
		FROM predictions
		WHERE solute_smiles = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		soluteSMILES, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query predictions")
	}
	defer rows.Close()

	var events []ptypes.Event
	for rows.Next() {
		var ev ptypes.Event
		var createdAt time.Time
		if err := rows.Scan(&ev.ID, &ev.SoluteSMILES, &ev.SolventSMILES, &ev.TemperatureK,
			&ev.PredictedLogS, &ev.ModelVersion, &createdAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan prediction row")
		}
		ev.UnixMillis = createdAt.UnixMilli()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read prediction rows")
	}
	return events, nil
}

// Count returns the total number of stored predictions.
func (r *PredictionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM predictions`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count predictions")
	}
	return n, nil
}
