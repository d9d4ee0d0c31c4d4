package repository

import "github.com/jhoicas/Seriales-api/internal/domain/entity"

// DeviceRepository puerto de lectura del catálogo de dispositivos. El
// catálogo lo mantiene otro sistema; este núcleo solo lo consulta, tanto
// para resolver nombres en el parse como para re-validar en la confirmación.
type DeviceRepository interface {
	// ListActive devuelve el snapshot de entradas activas del catálogo.
	ListActive() ([]entity.Device, error)
	List() ([]entity.Device, error)
	// GetByDisplayName busca por nombre visible exacto; (nil, nil) si no existe.
	GetByDisplayName(displayName string) (*entity.Device, error)
}
