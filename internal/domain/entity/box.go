package entity

import "time"

// Estados de caja. El estado es derivado: una caja está IN mientras tenga
// al menos un ítem IN, y pasa a OUT cuando se vacía. Nunca lo fija el usuario.
const (
	BoxStatusIN  = "IN"
	BoxStatusOUT = "OUT"
)

// Box caja física que agrupa seriales de un mismo dispositivo.
// Se crea en la primera importación de un par (device, box_code) y se
// reutiliza en las siguientes.
type Box struct {
	ID        string
	DeviceID  string
	BoxCode   string
	Location  string
	Status    string // IN | OUT (derivado del estado de sus ítems)
	CreatedAt time.Time
	UpdatedAt time.Time
}
