package repository

import (
	"time"

	"github.com/jhoicas/Seriales-api/internal/domain/entity"
)

// ItemLocation ubicación actual de un serial ya registrado (para reportar
// conflictos de duplicado con su caja).
type ItemLocation struct {
	Serial  string
	BoxID   string
	BoxCode string
	Status  string
}

// ItemRepository puerto de persistencia para ítems serializados.
type ItemRepository interface {
	// InsertBatch inserta los ítems con estado IN. La constraint única sobre
	// serial es la última línea de defensa del invariante de unicidad.
	InsertBatch(items []*entity.Item) error
	// Locate devuelve la ubicación de cada serial que ya exista en el ledger.
	Locate(serials []string) ([]ItemLocation, error)
	FindBySerials(serials []string) ([]*entity.Item, error)
	// FindBySerialsForUpdate re-lee los ítems con bloqueo de fila
	// (SELECT FOR UPDATE); es la re-verificación obligatoria del commit.
	FindBySerialsForUpdate(serials []string) ([]*entity.Item, error)
	ListByBox(boxID string) ([]*entity.Item, error)
	// ListINSerialsByBox devuelve los seriales IN de una caja con bloqueo de fila.
	ListINSerialsByBoxForUpdate(boxID string) ([]*entity.Item, error)
	// MarkOUT transiciona a OUT los ítems indicados; devuelve cuántas filas
	// seguían IN y fueron efectivamente actualizadas (update condicional).
	MarkOUT(serials []string, now time.Time) (int, error)
}
