package outbound_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/Seriales-api/internal/application/outbound"
	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
	"github.com/jhoicas/Seriales-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(l *memLedger) *outbound.Engine {
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return outbound.NewEngine(&memTxRunner{ledger: l}, &memDeviceRepo{l}, &memBoxRepo{l}, &memItemRepo{l: l}, log)
}

func TestPreview_SerialSuelto(t *testing.T) {
	l := newMemLedger()
	dev := l.addDevice("FMC920", true)
	box := l.addBox(dev.ID, "031", entity.BoxStatusIN)
	l.addItem("356307042441013", dev.ID, box.ID, entity.ItemStatusIN)
	l.addItem("356307042441021", dev.ID, box.ID, entity.ItemStatusIN)

	rep, err := newEngine(l).Preview(context.Background(), "356307042441013")
	require.NoError(t, err)

	assert.Equal(t, outbound.ModeSerial, rep.Mode)
	assert.Equal(t, 1, rep.ImeiFound)
	assert.Equal(t, 0, rep.ImeiMissing)
	require.Len(t, rep.Boxes, 1)
	assert.Equal(t, 2, rep.Boxes[0].CurrentIN)
	assert.Equal(t, 1, rep.Boxes[0].WillRemove)
	assert.Equal(t, 1, rep.Boxes[0].WillRemain)
	assert.False(t, rep.Boxes[0].WillBeEmptied, "queda un ítem: la caja no se vacía")

	assert.Equal(t, entity.ItemStatusIN, l.items["356307042441013"].Status,
		"el preview jamás muta el ledger")
	assert.Empty(t, l.movs)
	assert.Empty(t, l.batches)
}

// TestPreview_CajaCompleta: el payload estructurado de caja selecciona todos
// los ítems IN de la caja y anticipa que quedará vacía.
func TestPreview_CajaCompleta(t *testing.T) {
	l := newMemLedger()
	dev := l.addDevice("FMC920", true)
	box := l.addBox(dev.ID, "041-2", entity.BoxStatusIN)
	for i := 1; i <= 3; i++ {
		l.addItem(fmt.Sprintf("3563070424410%02d", i), dev.ID, box.ID, entity.ItemStatusIN)
	}
	l.addItem("356307042441099", dev.ID, box.ID, entity.ItemStatusOUT)

	rep, err := newEngine(l).Preview(context.Background(), "BOX:041-2|DEV:FMC920|QTY:3")
	require.NoError(t, err)

	assert.Equal(t, outbound.ModeBox, rep.Mode)
	assert.Equal(t, 3, rep.ImeiFound, "solo los ítems IN de la caja son candidatos")
	require.Len(t, rep.Boxes, 1)
	assert.Equal(t, "041-2", rep.Boxes[0].BoxCode)
	assert.Equal(t, 3, rep.Boxes[0].WillRemove)
	assert.True(t, rep.Boxes[0].WillBeEmptied)
}

func TestPreview_CajaInexistente(t *testing.T) {
	l := newMemLedger()
	l.addDevice("FMC920", true)
	_, err := newEngine(l).Preview(context.Background(), "BOX:999|DEV:FMC920")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestPreview_BulkConFaltantes: tres seriales escaneados, dos en cajas
// distintas y uno que nunca se importó.
func TestPreview_BulkConFaltantes(t *testing.T) {
	l := newMemLedger()
	dev := l.addDevice("FMC920", true)
	b1 := l.addBox(dev.ID, "031", entity.BoxStatusIN)
	b2 := l.addBox(dev.ID, "032", entity.BoxStatusIN)
	l.addItem("356307042441013", dev.ID, b1.ID, entity.ItemStatusIN)
	l.addItem("356307042441021", dev.ID, b2.ID, entity.ItemStatusIN)

	rep, err := newEngine(l).Preview(context.Background(),
		"356307042441013 356307042441021 356307042441099")
	require.NoError(t, err)

	assert.Equal(t, outbound.ModeBulk, rep.Mode)
	assert.Equal(t, 2, rep.ImeiFound)
	assert.Equal(t, 1, rep.ImeiMissing)
	assert.Equal(t, []string{"356307042441099"}, rep.MissingSerials)
	assert.Len(t, rep.Boxes, 2, "cada caja afectada aparece en el desglose")
}

// ── Commit ────────────────────────────────────────────────────────────────────

func TestCommit_SerialSale(t *testing.T) {
	l := newMemLedger()
	dev := l.addDevice("FMC920", true)
	box := l.addBox(dev.ID, "031", entity.BoxStatusIN)
	l.addItem("356307042441013", dev.ID, box.ID, entity.ItemStatusIN)

	rep, err := newEngine(l).Commit(context.Background(), "356307042441013", "bodeguero1")
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Committed)
	assert.NotEmpty(t, rep.BatchID)
	assert.Equal(t, entity.ItemStatusOUT, l.items["356307042441013"].Status)
	assert.Equal(t, entity.BoxStatusOUT, box.Status, "sin ítems IN la caja queda OUT")

	require.Len(t, l.movs, 1)
	assert.Equal(t, entity.MovementTypeOUT, l.movs[0].Type)
	assert.Equal(t, "bodeguero1", l.movs[0].Actor)
	assert.Equal(t, rep.BatchID, l.movs[0].BatchID)

	require.Len(t, l.batches, 1)
	assert.Equal(t, entity.BatchKindOutbound, l.batches[0].Kind)
	assert.Equal(t, 1, l.batches[0].Totals.Committed)
}

// TestCommit_CarreraPerdidaPorItem: entre la resolución y el bloqueo de fila
// otro commit sacó uno de los ítems. El perdedor no es fatal: el resto sale y
// el ítem ya ajeno se cuenta como bloqueado.
func TestCommit_CarreraPerdidaPorItem(t *testing.T) {
	l := newMemLedger()
	dev := l.addDevice("FMC920", true)
	box := l.addBox(dev.ID, "031", entity.BoxStatusIN)
	l.addItem("356307042441001", dev.ID, box.ID, entity.ItemStatusIN)
	l.addItem("356307042441002", dev.ID, box.ID, entity.ItemStatusIN)
	l.addItem("356307042441003", dev.ID, box.ID, entity.ItemStatusIN)

	// Simula el commit concurrente: justo antes de obtener los bloqueos de
	// fila, otro proceso ya sacó el segundo serial.
	l.onLock = func() {
		l.items["356307042441002"].Status = entity.ItemStatusOUT
	}

	rep, err := newEngine(l).Commit(context.Background(),
		"356307042441001 356307042441002 356307042441003", "bodeguero1")
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Committed)
	assert.Equal(t, 1, rep.Blocked)
	assert.Len(t, l.movs, 2, "el ítem perdido en la carrera no deja movimiento de este lote")
	require.Len(t, l.batches, 1)
	assert.Equal(t, 1, l.batches[0].Totals.BlockedNotInAnymore)
}

func TestCommit_TodoYaAfuera(t *testing.T) {
	l := newMemLedger()
	dev := l.addDevice("FMC920", true)
	box := l.addBox(dev.ID, "031", entity.BoxStatusOUT)
	l.addItem("356307042441013", dev.ID, box.ID, entity.ItemStatusOUT)

	_, err := newEngine(l).Commit(context.Background(), "356307042441013", "bodeguero1")
	assert.ErrorIs(t, err, domain.ErrNothingToCommit)
	assert.Empty(t, l.movs)
	assert.Empty(t, l.batches)
}

func TestCommit_SinActor(t *testing.T) {
	l := newMemLedger()
	_, err := newEngine(l).Commit(context.Background(), "356307042441013", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestCommit_CajaConCarreraPerdida: en modo caja el candado se toma por la
// caja entera; un ítem que otro commit sacó entre la resolución y el bloqueo
// se cuenta como bloqueado y el resto sale igual.
func TestCommit_CajaConCarreraPerdida(t *testing.T) {
	l := newMemLedger()
	dev := l.addDevice("FMC920", true)
	box := l.addBox(dev.ID, "041-2", entity.BoxStatusIN)
	l.addItem("356307042441013", dev.ID, box.ID, entity.ItemStatusIN)
	l.addItem("356307042441021", dev.ID, box.ID, entity.ItemStatusIN)

	l.onLock = func() {
		l.items["356307042441021"].Status = entity.ItemStatusOUT
	}

	rep, err := newEngine(l).Commit(context.Background(), "BOX:041-2|DEV:FMC920", "bodeguero1")
	require.NoError(t, err)

	assert.Equal(t, outbound.ModeBox, rep.Mode)
	assert.Equal(t, 1, rep.Committed)
	assert.Equal(t, 1, rep.Blocked)
	assert.Len(t, l.movs, 1)
	require.Len(t, l.batches, 1)
	assert.Equal(t, 1, l.batches[0].Totals.BlockedNotInAnymore)
}

// TestCommit_CajaCompletaVaciaLaCaja: el ciclo completo de una caja: entra
// con ítems IN, sale entera y queda OUT.
func TestCommit_CajaCompletaVaciaLaCaja(t *testing.T) {
	l := newMemLedger()
	dev := l.addDevice("FMC920", true)
	box := l.addBox(dev.ID, "041-2", entity.BoxStatusIN)
	l.addItem("356307042441013", dev.ID, box.ID, entity.ItemStatusIN)
	l.addItem("356307042441021", dev.ID, box.ID, entity.ItemStatusIN)

	rep, err := newEngine(l).Commit(context.Background(), "BOX:041-2|DEV:FMC920", "bodeguero1")
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Committed)
	assert.Equal(t, entity.BoxStatusOUT, box.Status)
	for _, it := range l.items {
		assert.Equal(t, entity.ItemStatusOUT, it.Status)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger en memoria con gancho de bloqueo para simular carreras.
// ──────────────────────────────────────────────────────────────────────────────

type memLedger struct {
	devices []*entity.Device
	boxes   map[string]*entity.Box
	items   map[string]*entity.Item
	movs    []*entity.Movement
	batches []*entity.ImportBatch
	seq     int
	onLock  func() // se invoca antes de devolver los ítems "bloqueados"
}

func newMemLedger() *memLedger {
	return &memLedger{
		boxes: make(map[string]*entity.Box),
		items: make(map[string]*entity.Item),
	}
}

func (l *memLedger) nextID(prefix string) string {
	l.seq++
	return fmt.Sprintf("%s-%d", prefix, l.seq)
}

func (l *memLedger) addDevice(name string, active bool) *entity.Device {
	d := &entity.Device{ID: l.nextID("dev"), CanonicalName: name, DisplayName: name, Active: active, UnitsPerSerial: 1}
	l.devices = append(l.devices, d)
	return d
}

func (l *memLedger) addBox(deviceID, code, status string) *entity.Box {
	b := &entity.Box{ID: l.nextID("box"), DeviceID: deviceID, BoxCode: code, Status: status}
	l.boxes[b.ID] = b
	return b
}

func (l *memLedger) addItem(serial, deviceID, boxID, status string) *entity.Item {
	it := &entity.Item{ID: l.nextID("item"), Serial: serial, DeviceID: deviceID, BoxID: boxID, Status: status}
	l.items[serial] = it
	return it
}

type memTxRunner struct{ ledger *memLedger }

func (r *memTxRunner) RunOutbound(_ context.Context, fn func(
	repository.BoxRepository,
	repository.ItemRepository,
	repository.MovementRepository,
	repository.ImportBatchRepository,
) error) error {
	l := r.ledger
	return fn(&memBoxRepo{l}, &memItemRepo{l: l}, &memMovRepo{l}, &memBatchRepo{l})
}

type memDeviceRepo struct{ l *memLedger }

func (r *memDeviceRepo) ListActive() ([]entity.Device, error) {
	var out []entity.Device
	for _, d := range r.l.devices {
		if d.Active {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memDeviceRepo) List() ([]entity.Device, error) {
	out := make([]entity.Device, 0, len(r.l.devices))
	for _, d := range r.l.devices {
		out = append(out, *d)
	}
	return out, nil
}

func (r *memDeviceRepo) GetByDisplayName(name string) (*entity.Device, error) {
	for _, d := range r.l.devices {
		if d.DisplayName == name {
			return d, nil
		}
	}
	return nil, nil
}

type memBoxRepo struct{ l *memLedger }

func (r *memBoxRepo) Create(box *entity.Box) error {
	r.l.boxes[box.ID] = box
	return nil
}

func (r *memBoxRepo) GetByID(id string) (*entity.Box, error) {
	return r.l.boxes[id], nil
}

func (r *memBoxRepo) GetByDeviceAndCode(deviceID, boxCode string) (*entity.Box, error) {
	for _, b := range r.l.boxes {
		if b.DeviceID == deviceID && b.BoxCode == boxCode {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBoxRepo) GetByCode(boxCode, deviceID string) (*entity.Box, error) {
	for _, b := range r.l.boxes {
		if b.BoxCode == boxCode && (deviceID == "" || b.DeviceID == deviceID) {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBoxRepo) UpdateLocation(id, location string) error {
	if b, ok := r.l.boxes[id]; ok {
		b.Location = location
	}
	return nil
}

func (r *memBoxRepo) RecomputeStatus(id string) (string, error) {
	status := entity.BoxStatusOUT
	for _, it := range r.l.items {
		if it.BoxID == id && it.Status == entity.ItemStatusIN {
			status = entity.BoxStatusIN
			break
		}
	}
	if b, ok := r.l.boxes[id]; ok {
		b.Status = status
	}
	return status, nil
}

func (r *memBoxRepo) List(deviceID, status string, limit, offset int) ([]*entity.Box, error) {
	var out []*entity.Box
	for _, b := range r.l.boxes {
		if (deviceID == "" || b.DeviceID == deviceID) && (status == "" || b.Status == status) {
			out = append(out, b)
		}
	}
	return out, nil
}

type memItemRepo struct{ l *memLedger }

func (r *memItemRepo) InsertBatch(items []*entity.Item) error {
	for _, it := range items {
		if _, dup := r.l.items[it.Serial]; dup {
			return fmt.Errorf("serial %s duplicado: %w", it.Serial, domain.ErrConflict)
		}
	}
	for _, it := range items {
		r.l.items[it.Serial] = it
	}
	return nil
}

func (r *memItemRepo) Locate(serials []string) ([]repository.ItemLocation, error) {
	var out []repository.ItemLocation
	for _, s := range serials {
		if it, ok := r.l.items[s]; ok {
			loc := repository.ItemLocation{Serial: s, BoxID: it.BoxID, Status: it.Status}
			if b, okBox := r.l.boxes[it.BoxID]; okBox {
				loc.BoxCode = b.BoxCode
			}
			out = append(out, loc)
		}
	}
	return out, nil
}

func (r *memItemRepo) FindBySerials(serials []string) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, s := range serials {
		if it, ok := r.l.items[s]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memItemRepo) FindBySerialsForUpdate(serials []string) ([]*entity.Item, error) {
	if r.l.onLock != nil {
		r.l.onLock()
	}
	return r.FindBySerials(serials)
}

func (r *memItemRepo) ListByBox(boxID string) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.l.items {
		if it.BoxID == boxID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memItemRepo) ListINSerialsByBoxForUpdate(boxID string) ([]*entity.Item, error) {
	if r.l.onLock != nil {
		r.l.onLock()
	}
	var out []*entity.Item
	for _, it := range r.l.items {
		if it.BoxID == boxID && it.Status == entity.ItemStatusIN {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memItemRepo) MarkOUT(serials []string, now time.Time) (int, error) {
	n := 0
	for _, s := range serials {
		if it, ok := r.l.items[s]; ok && it.Status == entity.ItemStatusIN {
			it.Status = entity.ItemStatusOUT
			it.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

type memMovRepo struct{ l *memLedger }

func (r *memMovRepo) InsertBatch(movs []*entity.Movement) error {
	r.l.movs = append(r.l.movs, movs...)
	return nil
}

func (r *memMovRepo) ListByBatch(batchID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.l.movs {
		if m.BatchID == batchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovRepo) ListBySerial(serial string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.l.movs {
		if m.ItemSerial == serial {
			out = append(out, m)
		}
	}
	return out, nil
}

type memBatchRepo struct{ l *memLedger }

func (r *memBatchRepo) Create(b *entity.ImportBatch) error {
	r.l.batches = append(r.l.batches, b)
	return nil
}

func (r *memBatchRepo) GetByID(id string) (*entity.ImportBatch, error) {
	for _, b := range r.l.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBatchRepo) ListRecent(kind string, limit, offset int) ([]*entity.ImportBatch, error) {
	var out []*entity.ImportBatch
	for _, b := range r.l.batches {
		if kind == "" || b.Kind == kind {
			out = append(out, b)
		}
	}
	return out, nil
}
