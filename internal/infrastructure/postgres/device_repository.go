package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

var _ repository.DeviceRepository = (*DeviceRepo)(nil)

// DeviceRepo lectura del catálogo de dispositivos sobre PostgreSQL. El
// catálogo lo escribe otro sistema; aquí no hay Create ni Update.
type DeviceRepo struct {
	q Querier
}

// NewDeviceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeviceRepository(q Querier) *DeviceRepo {
	return &DeviceRepo{q: q}
}

const deviceColumns = `id, canonical_name, display_name, active, units_per_serial`

// ListActive devuelve el snapshot de entradas activas del catálogo.
func (r *DeviceRepo) ListActive() ([]entity.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE active ORDER BY display_name`
	return r.list(query)
}

// List devuelve el catálogo completo.
func (r *DeviceRepo) List() ([]entity.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY display_name`
	return r.list(query)
}

func (r *DeviceRepo) list(query string) ([]entity.Device, error) {
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var out []entity.Device
	for rows.Next() {
		var d entity.Device
		if err := rows.Scan(&d.ID, &d.CanonicalName, &d.DisplayName, &d.Active, &d.UnitsPerSerial); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByDisplayName busca por nombre visible exacto; (nil, nil) si no existe.
func (r *DeviceRepo) GetByDisplayName(displayName string) (*entity.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE display_name = $1`
	var d entity.Device
	err := r.q.QueryRow(context.Background(), query, displayName).Scan(
		&d.ID, &d.CanonicalName, &d.DisplayName, &d.Active, &d.UnitsPerSerial,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device by display name: %w", err)
	}
	return &d, nil
}
