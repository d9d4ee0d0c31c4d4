package repository

import "github.com/jhoicas/Seriales-api/internal/domain/entity"

// BoxRepository puerto de persistencia para cajas.
type BoxRepository interface {
	Create(box *entity.Box) error
	GetByID(id string) (*entity.Box, error)
	// GetByDeviceAndCode busca la caja de un par (device, box_code); (nil, nil) si no existe.
	GetByDeviceAndCode(deviceID, boxCode string) (*entity.Box, error)
	// GetByCode busca por box_code; si device no es vacío restringe al dispositivo.
	GetByCode(boxCode, deviceID string) (*entity.Box, error)
	UpdateLocation(id, location string) error
	// RecomputeStatus deriva y persiste el estado de la caja a partir de sus
	// ítems (IN si queda al menos un ítem IN) y devuelve el estado resultante.
	// Debe ejecutarse dentro de la misma transacción que mutó los ítems.
	RecomputeStatus(id string) (string, error)
	List(deviceID, status string, limit, offset int) ([]*entity.Box, error)
}
