package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Seriales-api/internal/application/inbound"
	"github.com/jhoicas/Seriales-api/internal/application/outbound"
	"github.com/jhoicas/Seriales-api/internal/application/parser"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Registry   *parser.Registry
	Reconciler *inbound.Reconciler
	Outbound   *outbound.Engine
	DeviceRepo repository.DeviceRepository
	BoxRepo    repository.BoxRepository
	ItemRepo   repository.ItemRepository
	BatchRepo  repository.ImportBatchRepository
	MovRepo    repository.MovementRepository
	JWTSecret  string
}

// Router registra las rutas de la API. Todo va protegido con Bearer Token:
// la identidad del actor es obligatoria para la auditoría.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Entradas
	inboundHandler := NewInboundHandler(deps.Registry, deps.DeviceRepo, deps.Reconciler)
	inboundGroup := api.Group("/inbound")
	inboundGroup.Get("/vendors", inboundHandler.Vendors)
	inboundGroup.Post("/parse", inboundHandler.Parse)
	inboundGroup.Post("/confirm", inboundHandler.Confirm)
	inboundGroup.Post("/manual", inboundHandler.Manual)

	// Salidas
	outboundHandler := NewOutboundHandler(deps.Outbound)
	outboundGroup := api.Group("/outbound")
	outboundGroup.Post("/preview", outboundHandler.Preview)
	outboundGroup.Post("/commit", outboundHandler.Commit)

	// Vistas del ledger (solo lectura)
	ledgerHandler := NewLedgerHandler(deps.DeviceRepo, deps.BoxRepo, deps.ItemRepo, deps.BatchRepo, deps.MovRepo)
	api.Get("/devices", ledgerHandler.ListDevices)
	api.Get("/boxes", ledgerHandler.ListBoxes)
	api.Get("/boxes/:id/items", ledgerHandler.ListBoxItems)
	api.Get("/items/:serial/movements", ledgerHandler.SerialHistory)
	api.Get("/batches", ledgerHandler.ListBatches)
	api.Get("/batches/:id/movements", ledgerHandler.ListBatchMovements)
}
