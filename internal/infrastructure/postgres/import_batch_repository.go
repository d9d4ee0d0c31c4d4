package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

var _ repository.ImportBatchRepository = (*ImportBatchRepo)(nil)

// ImportBatchRepo implementación de ImportBatchRepository sobre PostgreSQL.
// Los totales van como columnas planas: se filtra y agrega por SQL, no
// reconstruyendo JSON.
type ImportBatchRepo struct {
	q Querier
}

// NewImportBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewImportBatchRepository(q Querier) *ImportBatchRepo {
	return &ImportBatchRepo{q: q}
}

const batchColumns = `id, kind, actor, vendor, source,
	inserted, skipped_existing, skipped_duplicate_in_file, boxes_created, boxes_reused,
	committed, already_out, not_found, blocked_not_in_anymore, created_at`

// Create inserta el lote con sus totales.
func (r *ImportBatchRepo) Create(b *entity.ImportBatch) error {
	query := `
		INSERT INTO import_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	t := b.Totals
	_, err := r.q.Exec(context.Background(), query,
		b.ID, b.Kind, b.Actor, b.Vendor, b.Source,
		t.Inserted, t.SkippedExisting, t.SkippedDuplicateInFile, t.BoxesCreated, t.BoxesReused,
		t.Committed, t.AlreadyOut, t.NotFound, t.BlockedNotInAnymore, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("create import batch: %w", err)
	}
	return nil
}

// GetByID busca un lote por id; (nil, nil) si no existe.
func (r *ImportBatchRepo) GetByID(id string) (*entity.ImportBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM import_batches WHERE id = $1`
	var b entity.ImportBatch
	if err := r.scan(r.q.QueryRow(context.Background(), query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get import batch: %w", err)
	}
	return &b, nil
}

// ListRecent lotes más recientes, opcionalmente filtrados por clase.
func (r *ImportBatchRepo) ListRecent(kind string, limit, offset int) ([]*entity.ImportBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM import_batches
		WHERE ($1 = '' OR kind = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	defer rows.Close()

	var out []*entity.ImportBatch
	for rows.Next() {
		var b entity.ImportBatch
		if err := r.scan(rows, &b); err != nil {
			return nil, fmt.Errorf("scan import batch: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *ImportBatchRepo) scan(row pgx.Row, b *entity.ImportBatch) error {
	t := &b.Totals
	return row.Scan(
		&b.ID, &b.Kind, &b.Actor, &b.Vendor, &b.Source,
		&t.Inserted, &t.SkippedExisting, &t.SkippedDuplicateInFile, &t.BoxesCreated, &t.BoxesReused,
		&t.Committed, &t.AlreadyOut, &t.NotFound, &t.BlockedNotInAnymore, &b.CreatedAt,
	)
}
