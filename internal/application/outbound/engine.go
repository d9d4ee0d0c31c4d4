package outbound

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
	"github.com/jhoicas/Seriales-api/internal/domain/resolver"
	"github.com/jhoicas/Seriales-api/pkg/logger"
)

// Engine motor de salidas: resuelve el payload del escáner a un conjunto de
// ítems y ofrece un preview de solo lectura y un commit transaccional que
// re-verifica el estado bajo bloqueo antes de mutar.
type Engine struct {
	txRunner   TxRunner
	deviceRepo repository.DeviceRepository
	boxRepo    repository.BoxRepository
	itemRepo   repository.ItemRepository
	log        *logger.Logger
}

// NewEngine construye el motor. Los repositorios sueltos (atados al pool) se
// usan solo para el preview; el commit recibe los suyos dentro de la tx.
func NewEngine(
	txRunner TxRunner,
	deviceRepo repository.DeviceRepository,
	boxRepo repository.BoxRepository,
	itemRepo repository.ItemRepository,
	log *logger.Logger,
) *Engine {
	return &Engine{
		txRunner:   txRunner,
		deviceRepo: deviceRepo,
		boxRepo:    boxRepo,
		itemRepo:   itemRepo,
		log:        log,
	}
}

// BoxBreakdown desglose por caja afectada.
type BoxBreakdown struct {
	BoxID         string `json:"box_id"`
	BoxCode       string `json:"box_code"`
	CurrentIN     int    `json:"current_in"`
	WillRemove    int    `json:"will_remove"`
	WillRemain    int    `json:"will_remain"`
	WillBeEmptied bool   `json:"will_be_emptied"`
}

// Report resultado de un preview o un commit.
type Report struct {
	Mode           string         `json:"mode"` // serial | box | bulk
	BatchID        string         `json:"batch_id,omitempty"`
	ImeiFound      int            `json:"imei_found"`
	ImeiMissing    int            `json:"imei_missing"`
	AlreadyOut     int            `json:"already_out"`
	Committed      int            `json:"committed"`
	Blocked        int            `json:"blocked_not_in_anymore"`
	MissingSerials []string       `json:"missing_serials,omitempty"`
	Boxes          []BoxBreakdown `json:"boxes"`
}

// targets resultado de resolver un escaneo contra el ledger.
type targets struct {
	mode       string
	candidates []*entity.Item // ítems IN al momento de resolver
	alreadyOut []*entity.Item
	missing    []string
	boxOrder   []string
	boxes      map[string]*entity.Box
}

// Preview calcula, sin mutar, qué haría el commit con este payload.
func (e *Engine) Preview(ctx context.Context, payload string) (*Report, error) {
	sc, err := ParseScan(payload)
	if err != nil {
		return nil, err
	}
	tg, err := e.resolveTargets(sc, e.deviceRepo, e.boxRepo, e.itemRepo)
	if err != nil {
		return nil, err
	}
	report := tg.report()
	report.Boxes, err = e.breakdown(tg, e.itemRepo)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Commit re-resuelve el payload dentro de una transacción, re-lee los ítems
// candidatos con bloqueo de fila (el estado pudo cambiar desde el preview),
// transiciona a OUT los que sigan IN, recalcula el estado de cada caja
// afectada y deja el lote y los movimientos de auditoría. Si ningún ítem
// sigue IN el commit se rechaza completo con ErrNothingToCommit.
func (e *Engine) Commit(ctx context.Context, payload, actor string) (*Report, error) {
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}
	sc, err := ParseScan(payload)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var report *Report
	err = e.txRunner.RunOutbound(ctx, func(
		boxRepo repository.BoxRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		batchRepo repository.ImportBatchRepository,
	) error {
		tg, err := e.resolveTargets(sc, e.deviceRepo, boxRepo, itemRepo)
		if err != nil {
			return err
		}
		report = tg.report()
		if report.Boxes, err = e.breakdown(tg, itemRepo); err != nil {
			return err
		}

		// Re-verificación obligatoria: bloquear los candidatos y separar los
		// que otro commit ya sacó (carrera perdida, no fatal por ítem). En
		// modo caja el candado se toma por la caja entera en una sola consulta.
		var locked []*entity.Item
		if tg.mode == ModeBox && len(tg.boxOrder) == 1 {
			locked, err = itemRepo.ListINSerialsByBoxForUpdate(tg.boxOrder[0])
			if err != nil {
				return fmt.Errorf("bloquear ítems de la caja: %w", err)
			}
		} else {
			serials := make([]string, 0, len(tg.candidates))
			for _, it := range tg.candidates {
				serials = append(serials, it.Serial)
			}
			locked, err = itemRepo.FindBySerialsForUpdate(serials)
			if err != nil {
				return fmt.Errorf("bloquear ítems: %w", err)
			}
		}
		lockedBySerial := make(map[string]*entity.Item, len(locked))
		for _, it := range locked {
			lockedBySerial[it.Serial] = it
		}
		var stillIN []*entity.Item
		for _, cand := range tg.candidates {
			if it, ok := lockedBySerial[cand.Serial]; ok && it.Status == entity.ItemStatusIN {
				stillIN = append(stillIN, it)
			} else {
				report.Blocked++
			}
		}
		if len(stillIN) == 0 {
			return domain.ErrNothingToCommit
		}

		stillSerials := make([]string, 0, len(stillIN))
		for _, it := range stillIN {
			stillSerials = append(stillSerials, it.Serial)
		}
		updated, err := itemRepo.MarkOUT(stillSerials, now)
		if err != nil {
			return fmt.Errorf("marcar salida: %w", err)
		}
		if updated != len(stillIN) {
			return fmt.Errorf("salida inconsistente: %d bloqueados, %d actualizados: %w",
				len(stillIN), updated, domain.ErrConflict)
		}
		report.Committed = updated

		batch := &entity.ImportBatch{
			ID:        uuid.New().String(),
			Kind:      entity.BatchKindOutbound,
			Actor:     actor,
			Source:    "scan",
			CreatedAt: now,
			Totals: entity.BatchTotals{
				Committed:           report.Committed,
				AlreadyOut:          report.AlreadyOut,
				NotFound:            report.ImeiMissing,
				BlockedNotInAnymore: report.Blocked,
			},
		}
		report.BatchID = batch.ID

		movs := make([]*entity.Movement, 0, len(stillIN))
		affected := make(map[string]struct{})
		for _, it := range stillIN {
			movs = append(movs, &entity.Movement{
				ID:         uuid.New().String(),
				Type:       entity.MovementTypeOUT,
				ItemSerial: it.Serial,
				BoxID:      it.BoxID,
				BatchID:    batch.ID,
				Actor:      actor,
				CreatedAt:  now,
			})
			affected[it.BoxID] = struct{}{}
		}
		if err := movRepo.InsertBatch(movs); err != nil {
			return fmt.Errorf("insertar movimientos: %w", err)
		}
		for boxID := range affected {
			if _, err := boxRepo.RecomputeStatus(boxID); err != nil {
				return fmt.Errorf("recalcular estado de caja: %w", err)
			}
		}
		return batchRepo.Create(batch)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("batch_id", report.BatchID).
		Str("actor", actor).
		Str("mode", report.Mode).
		Int("committed", report.Committed).
		Int("blocked", report.Blocked).
		Msg("salida confirmada")
	return report, nil
}

// resolveTargets lleva el escaneo a ítems concretos según el modo.
func (e *Engine) resolveTargets(
	sc *Scan,
	deviceRepo repository.DeviceRepository,
	boxRepo repository.BoxRepository,
	itemRepo repository.ItemRepository,
) (*targets, error) {
	tg := &targets{mode: sc.Mode, boxes: make(map[string]*entity.Box)}

	var serials []string
	switch sc.Mode {
	case ModeSerial:
		serials = []string{sc.Serial}
	case ModeBulk:
		serials = sc.Serials
	case ModeBox:
		box, err := e.resolveBox(sc, deviceRepo, boxRepo)
		if err != nil {
			return nil, err
		}
		items, err := itemRepo.ListByBox(box.ID)
		if err != nil {
			return nil, fmt.Errorf("listar ítems de la caja %s: %w", box.BoxCode, err)
		}
		tg.addBox(box)
		for _, it := range items {
			if it.Status == entity.ItemStatusIN {
				tg.candidates = append(tg.candidates, it)
			}
		}
		return tg, nil
	default:
		return nil, domain.ErrEmptyScan
	}

	items, err := itemRepo.FindBySerials(serials)
	if err != nil {
		return nil, fmt.Errorf("buscar seriales: %w", err)
	}
	found := make(map[string]*entity.Item, len(items))
	for _, it := range items {
		found[it.Serial] = it
	}
	for _, s := range serials {
		it, ok := found[s]
		if !ok {
			tg.missing = append(tg.missing, s)
			continue
		}
		if it.Status == entity.ItemStatusIN {
			tg.candidates = append(tg.candidates, it)
		} else {
			tg.alreadyOut = append(tg.alreadyOut, it)
		}
	}
	for _, it := range items {
		if _, ok := tg.boxes[it.BoxID]; !ok {
			box, err := boxRepo.GetByID(it.BoxID)
			if err != nil {
				return nil, fmt.Errorf("buscar caja del serial %s: %w", it.Serial, err)
			}
			if box != nil {
				tg.addBox(box)
			}
		}
	}
	return tg, nil
}

// resolveBox busca la caja del modo box, restringida al dispositivo del
// payload si este resuelve contra el catálogo.
func (e *Engine) resolveBox(sc *Scan, deviceRepo repository.DeviceRepository, boxRepo repository.BoxRepository) (*entity.Box, error) {
	deviceID := ""
	if sc.Device != "" {
		catalog, err := deviceRepo.ListActive()
		if err != nil {
			return nil, fmt.Errorf("cargar catálogo: %w", err)
		}
		if display, ok := resolver.Resolve(sc.Device, catalog); ok {
			d, err := deviceRepo.GetByDisplayName(display)
			if err != nil {
				return nil, fmt.Errorf("consultar dispositivo %s: %w", display, err)
			}
			if d != nil {
				deviceID = d.ID
			}
		}
	}
	box, err := boxRepo.GetByCode(sc.BoxCode, deviceID)
	if err != nil {
		return nil, fmt.Errorf("buscar caja %s: %w", sc.BoxCode, err)
	}
	if box == nil {
		return nil, domain.ErrNotFound
	}
	return box, nil
}

func (tg *targets) addBox(box *entity.Box) {
	if _, ok := tg.boxes[box.ID]; !ok {
		tg.boxes[box.ID] = box
		tg.boxOrder = append(tg.boxOrder, box.ID)
	}
}

func (tg *targets) report() *Report {
	return &Report{
		Mode:           tg.mode,
		ImeiFound:      len(tg.candidates) + len(tg.alreadyOut),
		ImeiMissing:    len(tg.missing),
		AlreadyOut:     len(tg.alreadyOut),
		MissingSerials: tg.missing,
	}
}

// breakdown construye el desglose por caja: cuántos ítems IN tiene hoy,
// cuántos se llevaría este escaneo y si la caja quedaría vacía.
func (e *Engine) breakdown(tg *targets, itemRepo repository.ItemRepository) ([]BoxBreakdown, error) {
	removeByBox := make(map[string]int)
	for _, it := range tg.candidates {
		removeByBox[it.BoxID]++
	}
	out := make([]BoxBreakdown, 0, len(tg.boxOrder))
	for _, boxID := range tg.boxOrder {
		box := tg.boxes[boxID]
		items, err := itemRepo.ListByBox(boxID)
		if err != nil {
			return nil, fmt.Errorf("listar ítems de la caja %s: %w", box.BoxCode, err)
		}
		currentIN := 0
		for _, it := range items {
			if it.Status == entity.ItemStatusIN {
				currentIN++
			}
		}
		remove := removeByBox[boxID]
		out = append(out, BoxBreakdown{
			BoxID:         boxID,
			BoxCode:       box.BoxCode,
			CurrentIN:     currentIN,
			WillRemove:    remove,
			WillRemain:    currentIN - remove,
			WillBeEmptied: currentIN-remove == 0 && remove > 0,
		})
	}
	return out, nil
}
