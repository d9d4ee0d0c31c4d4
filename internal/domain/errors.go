package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrNoLayout        = errors.New("no se encontró un encabezado reconocible en la hoja")
	ErrNothingToCommit = errors.New("ningún serial sigue en stock; nada que confirmar")
	ErrEmptyScan       = errors.New("el escaneo no contiene seriales ni caja reconocibles")
)

// UnresolvedDevicesError indica que uno o más nombres de dispositivo del
// archivo del proveedor no pudieron resolverse contra el catálogo. El parse
// completo se rechaza: el caller debe registrar los nombres en el catálogo
// y reintentar.
type UnresolvedDevicesError struct {
	Devices []string // nombres crudos, deduplicados, en orden de aparición
}

func (e *UnresolvedDevicesError) Error() string {
	return fmt.Sprintf("dispositivos no resueltos en el catálogo: %s", strings.Join(e.Devices, ", "))
}

// SerialConflict describe un serial duplicado y dónde está registrado hoy.
type SerialConflict struct {
	Serial  string `json:"serial"`
	BoxCode string `json:"box_code"` // caja actual del serial existente; vacío si el duplicado es dentro del mismo archivo
}

// DuplicateSerialsError se usa en la política estricta (entrada manual):
// cualquier serial ya registrado bloquea la petición completa y se reportan
// todos los conflictos, no solo el primero.
type DuplicateSerialsError struct {
	Conflicts []SerialConflict
}

func (e *DuplicateSerialsError) Error() string {
	return fmt.Sprintf("%d seriales ya registrados", len(e.Conflicts))
}
