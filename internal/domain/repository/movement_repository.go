package repository

import "github.com/jhoicas/Seriales-api/internal/domain/entity"

// MovementRepository puerto para el registro de auditoría append-only.
// No hay Update ni Delete: un movimiento jamás se corrige, se compensa.
type MovementRepository interface {
	InsertBatch(movs []*entity.Movement) error
	ListByBatch(batchID string) ([]*entity.Movement, error)
	ListBySerial(serial string) ([]*entity.Movement, error)
}
