package inbound

import (
	"context"

	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Toda confirmación de entrada es atómica:
// o se aplica completa o no toca el ledger.
type TxRunner interface {
	RunInbound(ctx context.Context, fn func(
		deviceRepo repository.DeviceRepository,
		boxRepo repository.BoxRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		batchRepo repository.ImportBatchRepository,
	) error) error
}
