package entity

import "time"

// Tipos de movimiento del ledger.
const (
	MovementTypeIN  = "IN"  // entrada: creación del ítem vía importación
	MovementTypeOUT = "OUT" // salida: el ítem abandona stock
)

// Movement registro de auditoría append-only: exactamente una fila por cada
// transición de estado de un ítem (creación IN o salida OUT).
type Movement struct {
	ID         string
	Type       string // IN | OUT
	ItemSerial string
	BoxID      string
	BatchID    string // ImportBatch que agrupa la operación
	Actor      string
	CreatedAt  time.Time
}
