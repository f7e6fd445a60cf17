package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warungops/warungops/internal/models"
)

type ParseLogRepository struct {
	pool *pgxpool.Pool
}

func NewParseLogRepository(pool *pgxpool.Pool) *ParseLogRepository {
	return &ParseLogRepository{pool: pool}
}

// Append inserts one row into the append-only parse log. There is no update
// path; quality reporting reads these rows as written.
func (r *ParseLogRepository) Append(ctx context.Context, entry *models.VoiceParseLog) error {
	var result []byte
	if entry.Result != nil {
		var err error
		result, err = json.Marshal(entry.Result)
		if err != nil {
			return err
		}
	}
	query := `
        INSERT INTO voice_parse_logs (
            id, store_id, outlet_id, transcript, result,
            confidence, path, succeeded, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.StoreID,
		entry.OutletID,
		entry.Transcript,
		result,
		entry.Confidence,
		entry.Path,
		entry.Succeeded,
		entry.CreatedAt,
	)
	return err
}
