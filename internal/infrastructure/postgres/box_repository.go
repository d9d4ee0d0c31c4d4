package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

var _ repository.BoxRepository = (*BoxRepo)(nil)

// BoxRepo implementación de BoxRepository sobre PostgreSQL (usable con pool o tx).
type BoxRepo struct {
	q Querier
}

// NewBoxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBoxRepository(q Querier) *BoxRepo {
	return &BoxRepo{q: q}
}

const boxColumns = `id, device_id, box_code, location, status, created_at, updated_at`

// Create inserta la caja.
func (r *BoxRepo) Create(box *entity.Box) error {
	query := `
		INSERT INTO boxes (id, device_id, box_code, location, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		box.ID, box.DeviceID, box.BoxCode, box.Location, box.Status, box.CreatedAt, box.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create box: %w", err)
	}
	return nil
}

// GetByID busca una caja por id; (nil, nil) si no existe.
func (r *BoxRepo) GetByID(id string) (*entity.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes WHERE id = $1`
	return r.one(query, id)
}

// GetByDeviceAndCode busca la caja de un par (device, box_code); (nil, nil) si no existe.
func (r *BoxRepo) GetByDeviceAndCode(deviceID, boxCode string) (*entity.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes WHERE device_id = $1 AND box_code = $2`
	return r.one(query, deviceID, boxCode)
}

// GetByCode busca por box_code; si deviceID no es vacío restringe al
// dispositivo. Con varias cajas del mismo código se queda con la más
// reciente que siga IN.
func (r *BoxRepo) GetByCode(boxCode, deviceID string) (*entity.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes
		WHERE box_code = $1 AND ($2 = '' OR device_id = $2)
		ORDER BY (status = 'IN') DESC, created_at DESC
		LIMIT 1`
	return r.one(query, boxCode, deviceID)
}

func (r *BoxRepo) one(query string, args ...any) (*entity.Box, error) {
	var b entity.Box
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&b.ID, &b.DeviceID, &b.BoxCode, &b.Location, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get box: %w", err)
	}
	return &b, nil
}

// UpdateLocation actualiza la ubicación física.
func (r *BoxRepo) UpdateLocation(id, location string) error {
	query := `UPDATE boxes SET location = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, location)
	if err != nil {
		return fmt.Errorf("update box location: %w", err)
	}
	return nil
}

// RecomputeStatus deriva y persiste el estado de la caja en un solo UPDATE
// condicional: IN si queda al menos un ítem IN, OUT si no. Ejecutado en la
// misma tx que mutó los ítems, mantiene el invariante sin ventana de carrera.
func (r *BoxRepo) RecomputeStatus(id string) (string, error) {
	query := `
		UPDATE boxes SET
			status = CASE WHEN EXISTS (
				SELECT 1 FROM items WHERE items.box_id = boxes.id AND items.status = 'IN'
			) THEN 'IN' ELSE 'OUT' END,
			updated_at = now()
		WHERE id = $1
		RETURNING status`
	var status string
	if err := r.q.QueryRow(context.Background(), query, id).Scan(&status); err != nil {
		return "", fmt.Errorf("recompute box status: %w", err)
	}
	return status, nil
}

// List lista cajas con filtros opcionales por dispositivo y estado.
func (r *BoxRepo) List(deviceID, status string, limit, offset int) ([]*entity.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes
		WHERE ($1 = '' OR device_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, deviceID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Box
	for rows.Next() {
		var b entity.Box
		if err := rows.Scan(&b.ID, &b.DeviceID, &b.BoxCode, &b.Location, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
