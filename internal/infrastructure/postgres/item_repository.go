package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, serial, device_id, box_id, status, created_at, updated_at`

// InsertBatch inserta los ítems con estado IN. La constraint única sobre
// serial es la última línea de defensa del invariante de unicidad: si otra
// tx concurrente ganó el mismo serial, toda la operación vuelve atrás.
func (r *ItemRepo) InsertBatch(items []*entity.Item) error {
	query := `
		INSERT INTO items (id, serial, device_id, box_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range items {
		_, err := r.q.Exec(context.Background(), query,
			it.ID, it.Serial, it.DeviceID, it.BoxID, it.Status, it.CreatedAt, it.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("serial %s ya registrado: %w", it.Serial, domain.ErrConflict)
			}
			return fmt.Errorf("insert item %s: %w", it.Serial, err)
		}
	}
	return nil
}

// Locate devuelve la ubicación (caja y estado) de cada serial que exista.
func (r *ItemRepo) Locate(serials []string) ([]repository.ItemLocation, error) {
	if len(serials) == 0 {
		return nil, nil
	}
	query := `
		SELECT i.serial, i.box_id, b.box_code, i.status
		FROM items i JOIN boxes b ON b.id = i.box_id
		WHERE i.serial = ANY($1)`
	rows, err := r.q.Query(context.Background(), query, serials)
	if err != nil {
		return nil, fmt.Errorf("locate serials: %w", err)
	}
	defer rows.Close()

	var out []repository.ItemLocation
	for rows.Next() {
		var loc repository.ItemLocation
		if err := rows.Scan(&loc.Serial, &loc.BoxID, &loc.BoxCode, &loc.Status); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// FindBySerials busca los ítems de los seriales dados (los inexistentes
// simplemente no vienen).
func (r *ItemRepo) FindBySerials(serials []string) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE serial = ANY($1)`
	return r.many(query, serials)
}

// FindBySerialsForUpdate re-lee los ítems con bloqueo de fila
// (SELECT FOR UPDATE): la re-verificación obligatoria del commit de salida.
func (r *ItemRepo) FindBySerialsForUpdate(serials []string) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE serial = ANY($1) FOR UPDATE`
	return r.many(query, serials)
}

// ListByBox lista los ítems de una caja.
func (r *ItemRepo) ListByBox(boxID string) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE box_id = $1 ORDER BY serial`
	return r.many(query, boxID)
}

// ListINSerialsByBoxForUpdate lista los ítems IN de una caja con bloqueo de fila.
func (r *ItemRepo) ListINSerialsByBoxForUpdate(boxID string) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE box_id = $1 AND status = 'IN' ORDER BY serial FOR UPDATE`
	return r.many(query, boxID)
}

func (r *ItemRepo) many(query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ID, &it.Serial, &it.DeviceID, &it.BoxID, &it.Status, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// MarkOUT transiciona a OUT los ítems que sigan IN (update condicional) y
// devuelve cuántas filas cambiaron de verdad.
func (r *ItemRepo) MarkOUT(serials []string, now time.Time) (int, error) {
	if len(serials) == 0 {
		return 0, nil
	}
	query := `UPDATE items SET status = 'OUT', updated_at = $2 WHERE serial = ANY($1) AND status = 'IN'`
	tag, err := r.q.Exec(context.Background(), query, serials, now)
	if err != nil {
		return 0, fmt.Errorf("mark items out: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
