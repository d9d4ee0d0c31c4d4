package entity

import "time"

// Estados de ítem. IN → OUT es terminal: este núcleo no tiene re-ingreso.
const (
	ItemStatusIN  = "IN"
	ItemStatusOUT = "OUT"
)

// Item una unidad física serializada (IMEI). El serial es único en todo el
// ledger: un serial se crea una sola vez, con estado IN, y sale una sola vez.
type Item struct {
	ID        string
	Serial    string
	DeviceID  string
	BoxID     string
	Status    string // IN | OUT
	CreatedAt time.Time
	UpdatedAt time.Time
}
