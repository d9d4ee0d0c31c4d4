package http

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Seriales-api/internal/application/dto"
	"github.com/jhoicas/Seriales-api/internal/application/inbound"
	"github.com/jhoicas/Seriales-api/internal/application/parser"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
	"github.com/jhoicas/Seriales-api/internal/domain/serial"
)

// InboundHandler maneja el parse de hojas de proveedor y la confirmación de
// entradas (protegido).
type InboundHandler struct {
	registry   *parser.Registry
	deviceRepo repository.DeviceRepository
	reconciler *inbound.Reconciler
}

// NewInboundHandler construye el handler.
func NewInboundHandler(registry *parser.Registry, deviceRepo repository.DeviceRepository, reconciler *inbound.Reconciler) *InboundHandler {
	return &InboundHandler{registry: registry, deviceRepo: deviceRepo, reconciler: reconciler}
}

// Parse godoc
// @Summary      Parsear hoja de proveedor a etiquetas
// @Description  El cuerpo JSON trae la hoja como grilla de celdas. También se
// @Description  acepta text/csv (vendor por query param) para el proveedor de
// @Description  columnas explícitas.
// @Tags         inbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ParseRequest  true  "vendor y la hoja como grilla de celdas"
// @Success      200   {object}  dto.ParseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse  "NO_LAYOUT o UNRESOLVED_DEVICES"
// @Router       /api/inbound/parse [post]
func (h *InboundHandler) Parse(c *fiber.Ctx) error {
	var in dto.ParseRequest
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), "text/csv") {
		rows, err := csv.NewReader(bytes.NewReader(c.Body())).ReadAll()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "CSV inválido"})
		}
		in = dto.ParseRequest{Vendor: c.Query("vendor"), Source: c.Query("source"), Rows: rows}
	} else if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	adapter, err := h.registry.Get(in.Vendor)
	if err != nil {
		return writeDomainError(c, err)
	}
	catalog, err := h.deviceRepo.ListActive()
	if err != nil {
		return writeDomainError(c, err)
	}
	labels, err := adapter.Parse(parser.Grid(in.Rows), catalog)
	if err != nil {
		return writeDomainError(c, err)
	}

	resp := dto.ParseResponse{Vendor: in.Vendor, Labels: make([]dto.ParsedLabelDTO, 0, len(labels))}
	for _, l := range labels {
		resp.Labels = append(resp.Labels, dto.ParsedLabelDTO(l))
		resp.Total += len(l.Serials)
	}
	return c.JSON(resp)
}

// Confirm godoc
// @Summary      Confirmar importación de proveedor
// @Description  Concilia las etiquetas contra el ledger. Los seriales ya
// @Description  registrados o repetidos en el archivo se saltan y se cuentan.
// @Tags         inbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfirmRequest  true  "etiquetas a confirmar"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse  "UNRESOLVED_DEVICES"
// @Router       /api/inbound/confirm [post]
func (h *InboundHandler) Confirm(c *fiber.Ctx) error {
	actor := GetActor(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ConfirmRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	labels, invalid := buildLabels(in.Labels)
	if len(invalid) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_SERIALS", Message: "seriales con formato inválido",
			Detail: fiber.Map{"serials": invalid},
		})
	}

	batch, err := h.reconciler.Confirm(c.Context(), inbound.ConfirmInput{
		Labels:   labels,
		Actor:    actor,
		Vendor:   in.Vendor,
		Source:   in.Source,
		Location: in.Location,
		Policy:   inbound.DuplicatePolicySkip,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BatchResponse{BatchID: batch.ID, Kind: batch.Kind, Totals: batch.Totals})
}

// Manual godoc
// @Summary      Entrada manual de una caja
// @Description  Política estricta: cualquier serial duplicado (en el ledger
// @Description  o repetido en la petición) rechaza la petición completa y se
// @Description  reportan todos los conflictos con su caja actual.
// @Tags         inbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ManualEntryRequest  true  "device, box_code, serials"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "DUPLICATE_SERIALS"
// @Failure      422   {object}  dto.ErrorResponse  "UNRESOLVED_DEVICES"
// @Router       /api/inbound/manual [post]
func (h *InboundHandler) Manual(c *fiber.Ctx) error {
	actor := GetActor(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ManualEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	labels, invalid := buildLabels([]dto.LabelInput{{Device: in.Device, BoxCode: in.BoxCode, Serials: in.Serials}})
	if len(invalid) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_SERIALS", Message: "seriales con formato inválido",
			Detail: fiber.Map{"serials": invalid},
		})
	}

	batch, err := h.reconciler.Confirm(c.Context(), inbound.ConfirmInput{
		Labels:   labels,
		Actor:    actor,
		Source:   "manual",
		Location: in.Location,
		Policy:   inbound.DuplicatePolicyReject,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BatchResponse{BatchID: batch.ID, Kind: batch.Kind, Totals: batch.Totals})
}

// Vendors godoc
// @Summary      Proveedores registrados
// @Tags         inbound
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string][]string
// @Router       /api/inbound/vendors [get]
func (h *InboundHandler) Vendors(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"vendors": h.registry.Vendors()})
}

// buildLabels normaliza los seriales de las etiquetas y separa los que no
// tienen forma de serial (14–17 dígitos).
func buildLabels(inputs []dto.LabelInput) ([]inbound.Label, []string) {
	labels := make([]inbound.Label, 0, len(inputs))
	var invalid []string
	for _, in := range inputs {
		l := inbound.Label{Device: in.Device, BoxCode: in.BoxCode}
		for _, raw := range in.Serials {
			s, ok := serial.Clean(raw, false)
			if !ok {
				invalid = append(invalid, raw)
				continue
			}
			l.Serials = append(l.Serials, s)
		}
		labels = append(labels, l)
	}
	return labels, invalid
}
