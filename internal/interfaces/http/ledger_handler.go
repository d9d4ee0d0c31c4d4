package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Seriales-api/internal/application/dto"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
	"github.com/jhoicas/Seriales-api/internal/domain/serial"
)

// LedgerHandler vistas de solo lectura del ledger para la UI: catálogo,
// cajas, ítems de una caja y lotes recientes.
type LedgerHandler struct {
	deviceRepo repository.DeviceRepository
	boxRepo    repository.BoxRepository
	itemRepo   repository.ItemRepository
	batchRepo  repository.ImportBatchRepository
	movRepo    repository.MovementRepository
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(
	deviceRepo repository.DeviceRepository,
	boxRepo repository.BoxRepository,
	itemRepo repository.ItemRepository,
	batchRepo repository.ImportBatchRepository,
	movRepo repository.MovementRepository,
) *LedgerHandler {
	return &LedgerHandler{
		deviceRepo: deviceRepo,
		boxRepo:    boxRepo,
		itemRepo:   itemRepo,
		batchRepo:  batchRepo,
		movRepo:    movRepo,
	}
}

// ListDevices godoc
// @Summary      Catálogo de dispositivos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/devices [get]
func (h *LedgerHandler) ListDevices(c *fiber.Ctx) error {
	devices, err := h.deviceRepo.List()
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(devices), "devices": devices})
}

// ListBoxes godoc
// @Summary      Listar cajas
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        device_id  query  string  false  "filtrar por dispositivo"
// @Param        status     query  string  false  "IN u OUT"
// @Success      200  {object}  map[string]any
// @Router       /api/boxes [get]
func (h *LedgerHandler) ListBoxes(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	boxes, err := h.boxRepo.List(c.Query("device_id"), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(boxes), "boxes": boxes})
}

// ListBoxItems godoc
// @Summary      Ítems de una caja
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la caja"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boxes/{id}/items [get]
func (h *LedgerHandler) ListBoxItems(c *fiber.Ctx) error {
	box, err := h.boxRepo.GetByID(c.Params("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	if box == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "caja no encontrada"})
	}
	items, err := h.itemRepo.ListByBox(box.ID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"box": box, "total": len(items), "items": items})
}

// ListBatches godoc
// @Summary      Lotes recientes (entradas y salidas)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        kind  query  string  false  "inbound u outbound"
// @Success      200  {object}  map[string]any
// @Router       /api/batches [get]
func (h *LedgerHandler) ListBatches(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	batches, err := h.batchRepo.ListRecent(c.Query("kind"), page.Limit, page.Offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(batches), "batches": batches})
}

// SerialHistory godoc
// @Summary      Historial de movimientos de un serial
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        serial  path  string  true  "serial del ítem"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{serial}/movements [get]
func (h *LedgerHandler) SerialHistory(c *fiber.Ctx) error {
	s, ok := serial.Clean(c.Params("serial"), false)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "serial inválido"})
	}
	items, err := h.itemRepo.FindBySerials([]string{s})
	if err != nil {
		return writeDomainError(c, err)
	}
	if len(items) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "serial no registrado"})
	}
	movs, err := h.movRepo.ListBySerial(s)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"item": items[0], "total": len(movs), "movements": movs})
}

// ListBatchMovements godoc
// @Summary      Movimientos de un lote
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del lote"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/movements [get]
func (h *LedgerHandler) ListBatchMovements(c *fiber.Ctx) error {
	batch, err := h.batchRepo.GetByID(c.Params("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	if batch == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
	}
	movs, err := h.movRepo.ListByBatch(batch.ID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"batch": batch, "total": len(movs), "movements": movs})
}
