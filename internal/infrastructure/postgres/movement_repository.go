package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo auditoría append-only sobre PostgreSQL. Un solo esquema
// canónico: movements.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, type, item_serial, box_id, batch_id, actor, created_at`

// InsertBatch inserta los movimientos de una operación.
func (r *MovementRepo) InsertBatch(movs []*entity.Movement) error {
	query := `
		INSERT INTO movements (id, type, item_serial, box_id, batch_id, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, m := range movs {
		_, err := r.q.Exec(context.Background(), query,
			m.ID, m.Type, m.ItemSerial, m.BoxID, m.BatchID, m.Actor, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert movement %s: %w", m.ItemSerial, err)
		}
	}
	return nil
}

// ListByBatch movimientos de un lote.
func (r *MovementRepo) ListByBatch(batchID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE batch_id = $1 ORDER BY created_at, item_serial`
	return r.many(query, batchID)
}

// ListBySerial historial de un serial.
func (r *MovementRepo) ListBySerial(serial string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE item_serial = $1 ORDER BY created_at`
	return r.many(query, serial)
}

func (r *MovementRepo) many(query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.Type, &m.ItemSerial, &m.BoxID, &m.BatchID, &m.Actor, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
