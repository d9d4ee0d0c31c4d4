package inbound

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
	"github.com/jhoicas/Seriales-api/pkg/logger"
)

// Políticas de duplicado. La importación masiva de proveedor salta los
// duplicados y los cuenta; la entrada manual de una caja los trata como
// error fatal y reporta cada conflicto con su ubicación. La asimetría es
// política de negocio explícita, no un accidente.
const (
	DuplicatePolicySkip   = "skip"
	DuplicatePolicyReject = "reject"
)

// ConfirmInput entrada de una confirmación: las etiquetas ya parseadas, la
// identidad del actor y el origen.
type ConfirmInput struct {
	Labels   []Label
	Actor    string
	Vendor   string
	Source   string // nombre de archivo, "manual", ...
	Location string // ubicación física para cajas nuevas o movidas
	Policy   string // DuplicatePolicySkip | DuplicatePolicyReject
}

// Label etiqueta a conciliar: dispositivo resuelto, caja y seriales.
type Label struct {
	Device  string
	BoxCode string
	Serials []string
}

// Reconciler concilia etiquetas parseadas contra el ledger: re-valida
// dispositivos, deduplica seriales (archivo y BD), crea o reutiliza cajas,
// inserta ítems IN y deja el rastro de auditoría. Todo dentro de una
// transacción.
type Reconciler struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReconciler construye el conciliador.
func NewReconciler(txRunner TxRunner, log *logger.Logger) *Reconciler {
	return &Reconciler{txRunner: txRunner, log: log}
}

// Confirm ejecuta la conciliación completa. Devuelve el lote con sus totales
// o un error sin haber mutado nada:
//   - *domain.UnresolvedDevicesError si algún dispositivo ya no resuelve
//     contra el catálogo actual (pudo cambiar desde el parse).
//   - *domain.DuplicateSerialsError con política reject y algún duplicado.
func (uc *Reconciler) Confirm(ctx context.Context, input ConfirmInput) (*entity.ImportBatch, error) {
	if len(input.Labels) == 0 || input.Actor == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Policy != DuplicatePolicySkip && input.Policy != DuplicatePolicyReject {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	batch := &entity.ImportBatch{
		ID:        uuid.New().String(),
		Kind:      entity.BatchKindInbound,
		Actor:     input.Actor,
		Vendor:    input.Vendor,
		Source:    input.Source,
		CreatedAt: now,
	}

	err := uc.txRunner.RunInbound(ctx, func(
		deviceRepo repository.DeviceRepository,
		boxRepo repository.BoxRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		batchRepo repository.ImportBatchRepository,
	) error {
		// 1. Re-validar dispositivos contra el catálogo vigente. El catálogo
		// pudo cambiar entre el parse y esta confirmación.
		devices, err := revalidateDevices(deviceRepo, input.Labels)
		if err != nil {
			return err
		}

		// 2. Estado de deduplicación: seriales ya en el ledger + vistos en
		// este mismo archivo. Es un valor que avanza etiqueta a etiqueta,
		// no estado ambiente.
		dedup, err := newDedupState(itemRepo, input.Labels)
		if err != nil {
			return err
		}
		if input.Policy == DuplicatePolicyReject {
			if conflicts := dedup.allConflicts(input.Labels); len(conflicts) > 0 {
				return &domain.DuplicateSerialsError{Conflicts: conflicts}
			}
		}

		// 3 y 4. Por etiqueta: caja (reusar o crear), ítems IN, movimientos.
		var movs []*entity.Movement
		for _, label := range input.Labels {
			insertable := dedup.take(label.Serials, &batch.Totals)
			if len(insertable) == 0 {
				continue
			}
			device := devices[label.Device]
			box, err := resolveBox(boxRepo, device.ID, label.BoxCode, input.Location, now, &batch.Totals)
			if err != nil {
				return err
			}

			items := make([]*entity.Item, 0, len(insertable))
			for _, s := range insertable {
				items = append(items, &entity.Item{
					ID:        uuid.New().String(),
					Serial:    s,
					DeviceID:  device.ID,
					BoxID:     box.ID,
					Status:    entity.ItemStatusIN,
					CreatedAt: now,
					UpdatedAt: now,
				})
				movs = append(movs, &entity.Movement{
					ID:         uuid.New().String(),
					Type:       entity.MovementTypeIN,
					ItemSerial: s,
					BoxID:      box.ID,
					BatchID:    batch.ID,
					Actor:      input.Actor,
					CreatedAt:  now,
				})
			}
			if err := itemRepo.InsertBatch(items); err != nil {
				return fmt.Errorf("insertar ítems de la caja %s: %w", label.BoxCode, err)
			}
			if _, err := boxRepo.RecomputeStatus(box.ID); err != nil {
				return fmt.Errorf("recalcular estado de la caja %s: %w", label.BoxCode, err)
			}
			batch.Totals.Inserted += len(items)
		}

		if batch.Totals.Inserted == 0 && input.Policy == DuplicatePolicyReject {
			return domain.ErrNothingToCommit
		}
		if err := movRepo.InsertBatch(movs); err != nil {
			return fmt.Errorf("insertar movimientos: %w", err)
		}
		return batchRepo.Create(batch)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("batch_id", batch.ID).
		Str("actor", input.Actor).
		Str("vendor", input.Vendor).
		Int("inserted", batch.Totals.Inserted).
		Int("skipped_existing", batch.Totals.SkippedExisting).
		Int("skipped_duplicate_in_file", batch.Totals.SkippedDuplicateInFile).
		Msg("entrada confirmada")
	return batch, nil
}

// revalidateDevices consulta cada dispositivo por nombre visible y exige que
// exista y esté activo. Cualquier fallo bloquea la importación completa con
// la lista entera de nombres no resueltos.
func revalidateDevices(deviceRepo repository.DeviceRepository, labels []Label) (map[string]*entity.Device, error) {
	devices := make(map[string]*entity.Device)
	var unresolved []string
	for _, label := range labels {
		if _, ok := devices[label.Device]; ok {
			continue
		}
		d, err := deviceRepo.GetByDisplayName(label.Device)
		if err != nil {
			return nil, fmt.Errorf("consultar dispositivo %s: %w", label.Device, err)
		}
		if d == nil || !d.Active {
			unresolved = append(unresolved, label.Device)
			continue
		}
		devices[label.Device] = d
	}
	if len(unresolved) > 0 {
		return nil, &domain.UnresolvedDevicesError{Devices: unresolved}
	}
	return devices, nil
}

// resolveBox reutiliza la caja existente del par (device, box_code) o la
// crea con estado IN. Si la caja existía con otra ubicación, se actualiza.
func resolveBox(boxRepo repository.BoxRepository, deviceID, boxCode, location string, now time.Time, totals *entity.BatchTotals) (*entity.Box, error) {
	box, err := boxRepo.GetByDeviceAndCode(deviceID, boxCode)
	if err != nil {
		return nil, fmt.Errorf("buscar caja %s: %w", boxCode, err)
	}
	if box != nil {
		if location != "" && box.Location != location {
			if err := boxRepo.UpdateLocation(box.ID, location); err != nil {
				return nil, fmt.Errorf("actualizar ubicación de la caja %s: %w", boxCode, err)
			}
			box.Location = location
		}
		totals.BoxesReused++
		return box, nil
	}
	box = &entity.Box{
		ID:        uuid.New().String(),
		DeviceID:  deviceID,
		BoxCode:   boxCode,
		Location:  location,
		Status:    entity.BoxStatusIN,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := boxRepo.Create(box); err != nil {
		return nil, fmt.Errorf("crear caja %s: %w", boxCode, err)
	}
	totals.BoxesCreated++
	return box, nil
}
