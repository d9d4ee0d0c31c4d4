package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Seriales-api/internal/application/dto"
	"github.com/jhoicas/Seriales-api/internal/application/outbound"
)

// OutboundHandler maneja el preview y el commit de salidas (protegido).
type OutboundHandler struct {
	engine *outbound.Engine
}

// NewOutboundHandler construye el handler.
func NewOutboundHandler(engine *outbound.Engine) *OutboundHandler {
	return &OutboundHandler{engine: engine}
}

// Preview godoc
// @Summary      Previsualizar una salida
// @Description  Resuelve el escaneo (serial, caja o lista) y reporta, sin
// @Description  mutar nada, cuántos seriales están IN, ya OUT o no existen,
// @Description  con desglose por caja afectada.
// @Tags         outbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "texto del escáner"
// @Success      200   {object}  outbound.Report
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/outbound/preview [post]
func (h *OutboundHandler) Preview(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	report, err := h.engine.Preview(c.Context(), in.Scan)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(report)
}

// Commit godoc
// @Summary      Confirmar una salida
// @Description  Re-verifica el estado bajo bloqueo (pudo cambiar desde el
// @Description  preview), transiciona a OUT los ítems que sigan IN y deja el
// @Description  lote de auditoría. Sin ítems IN restantes, la salida se
// @Description  rechaza completa.
// @Tags         outbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "texto del escáner"
// @Success      201   {object}  outbound.Report
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "NOTHING_TO_COMMIT"
// @Router       /api/outbound/commit [post]
func (h *OutboundHandler) Commit(c *fiber.Ctx) error {
	actor := GetActor(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	report, err := h.engine.Commit(c.Context(), in.Scan, actor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
