package outbound

import (
	"context"

	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. El commit de salida re-verifica el estado
// bajo bloqueo de fila y muta ítems, cajas y auditoría atómicamente.
type TxRunner interface {
	RunOutbound(ctx context.Context, fn func(
		boxRepo repository.BoxRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		batchRepo repository.ImportBatchRepository,
	) error) error
}
