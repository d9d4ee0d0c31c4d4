package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Seriales-api/internal/application/dto"
	"github.com/jhoicas/Seriales-api/internal/domain"
)

// writeDomainError mapea los errores del dominio a respuestas HTTP. Los
// fallos esperados llevan detalle estructurado suficiente para que el caller
// corrija y reintente; nunca un error genérico pelado.
func writeDomainError(c *fiber.Ctx, err error) error {
	var unresolved *domain.UnresolvedDevicesError
	if errors.As(err, &unresolved) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "UNRESOLVED_DEVICES",
			Message: "dispositivos no resueltos; regístrelos en el catálogo y reintente",
			Detail:  fiber.Map{"devices": unresolved.Devices},
		})
	}
	var duplicates *domain.DuplicateSerialsError
	if errors.As(err, &duplicates) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "DUPLICATE_SERIALS",
			Message: "seriales ya registrados; la petición se rechaza completa",
			Detail:  fiber.Map{"conflicts": duplicates.Conflicts},
		})
	}
	switch {
	case errors.Is(err, domain.ErrNoLayout):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NO_LAYOUT", Message: "la hoja no tiene un encabezado reconocible"})
	case errors.Is(err, domain.ErrNothingToCommit):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOTHING_TO_COMMIT", Message: "ningún serial sigue en stock"})
	case errors.Is(err, domain.ErrEmptyScan):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_SCAN", Message: "el escaneo no contiene seriales ni caja reconocibles"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
