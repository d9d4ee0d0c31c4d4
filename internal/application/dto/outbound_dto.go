package dto

// ScanRequest payload del escáner para preview o commit de salida. El texto
// puede ser un serial suelto, pares CLAVE:VALOR (BOX/DEV/MASTER/QTY/IMEI)
// unidos por "|", o texto libre con varios seriales embebidos.
type ScanRequest struct {
	Scan string `json:"scan" validate:"required"`
}
