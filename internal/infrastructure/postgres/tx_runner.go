package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Seriales-api/internal/application/inbound"
	"github.com/jhoicas/Seriales-api/internal/application/outbound"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

// Ensure TxRunner implements inbound.TxRunner and outbound.TxRunner.
var _ inbound.TxRunner = (*TxRunner)(nil)
var _ outbound.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Cada
// conciliación de entrada o commit de salida corre completa en una tx:
// junto con la constraint única de items.serial y el update condicional del
// estado de caja, cierra la ventana check-then-act de operaciones
// concurrentes sobre los mismos seriales o cajas.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInbound inicia una transacción con los repos de una conciliación de
// entrada y hace Commit o Rollback.
func (r *TxRunner) RunInbound(ctx context.Context, fn func(
	deviceRepo repository.DeviceRepository,
	boxRepo repository.BoxRepository,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	batchRepo repository.ImportBatchRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewDeviceRepository(tx),
		NewBoxRepository(tx),
		NewItemRepository(tx),
		NewMovementRepository(tx),
		NewImportBatchRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOutbound inicia una transacción con los repos de un commit de salida y
// hace Commit o Rollback.
func (r *TxRunner) RunOutbound(ctx context.Context, fn func(
	boxRepo repository.BoxRepository,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	batchRepo repository.ImportBatchRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewBoxRepository(tx),
		NewItemRepository(tx),
		NewMovementRepository(tx),
		NewImportBatchRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
