package entity

import "time"

// Clases de lote: una confirmación de entrada o un commit de salida.
const (
	BatchKindInbound  = "inbound"
	BatchKindOutbound = "outbound"
)

// BatchTotals contadores del resultado de una operación. Los campos que no
// aplican a la clase de lote quedan en cero.
type BatchTotals struct {
	Inserted               int `json:"inserted"`
	SkippedExisting        int `json:"skipped_existing"`
	SkippedDuplicateInFile int `json:"skipped_duplicate_in_file"`
	BoxesCreated           int `json:"boxes_created"`
	BoxesReused            int `json:"boxes_reused"`
	Committed              int `json:"committed"`
	AlreadyOut             int `json:"already_out"`
	NotFound               int `json:"not_found"`
	BlockedNotInAnymore    int `json:"blocked_not_in_anymore"`
}

// ImportBatch una fila por cada confirmación de entrada o commit de salida;
// agrupa sus Movements y resume los totales de la operación.
type ImportBatch struct {
	ID        string
	Kind      string // inbound | outbound
	Actor     string
	Vendor    string // proveedor del archivo; vacío en salidas
	Source    string // origen: nombre de archivo, "manual", "scan", ...
	Totals    BatchTotals
	CreatedAt time.Time
}
