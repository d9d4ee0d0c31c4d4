package dto

import "github.com/jhoicas/Seriales-api/internal/domain/entity"

// ParseRequest petición de parse de una hoja de proveedor. Rows es la hoja
// como grilla de celdas: el colaborador que lee el xlsx entrega texto plano.
type ParseRequest struct {
	Vendor string     `json:"vendor" validate:"required"`
	Source string     `json:"source"` // nombre del archivo original
	Rows   [][]string `json:"rows" validate:"required,min=1"`
}

// ParsedLabelDTO una etiqueta del resultado del parse.
type ParsedLabelDTO struct {
	Device  string   `json:"device"`
	BoxCode string   `json:"box_code"`
	Serials []string `json:"serials"`
	Qty     int      `json:"qty"`
}

// ParseResponse resultado de un parse exitoso.
type ParseResponse struct {
	Vendor string           `json:"vendor"`
	Labels []ParsedLabelDTO `json:"labels"`
	Total  int              `json:"total_serials"`
}

// LabelInput etiqueta a confirmar (normalmente la salida del parse, que la
// UI deja revisar antes de confirmar).
type LabelInput struct {
	Device  string   `json:"device" validate:"required"`
	BoxCode string   `json:"box_code" validate:"required"`
	Serials []string `json:"serials" validate:"required,min=1"`
}

// ConfirmRequest confirmación de una importación de proveedor.
type ConfirmRequest struct {
	Vendor   string       `json:"vendor" validate:"required"`
	Source   string       `json:"source"`
	Location string       `json:"location"`
	Labels   []LabelInput `json:"labels" validate:"required,min=1,dive"`
}

// ManualEntryRequest entrada manual de una sola caja (política estricta de
// duplicados: cualquier serial ya registrado rechaza la petición completa).
type ManualEntryRequest struct {
	Device   string   `json:"device" validate:"required"`
	BoxCode  string   `json:"box_code" validate:"required"`
	Location string   `json:"location"`
	Serials  []string `json:"serials" validate:"required,min=1"`
}

// BatchResponse resultado de una confirmación: el lote y sus totales.
type BatchResponse struct {
	BatchID string             `json:"batch_id"`
	Kind    string             `json:"kind"`
	Totals  entity.BatchTotals `json:"totals"`
}
