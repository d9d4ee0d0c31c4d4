package repository

import "github.com/jhoicas/Seriales-api/internal/domain/entity"

// ImportBatchRepository puerto para los lotes (una fila por confirmación de
// entrada o commit de salida).
type ImportBatchRepository interface {
	Create(batch *entity.ImportBatch) error
	GetByID(id string) (*entity.ImportBatch, error)
	ListRecent(kind string, limit, offset int) ([]*entity.ImportBatch, error)
}
