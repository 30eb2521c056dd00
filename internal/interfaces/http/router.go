package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SaleUC           *inventory.SaleUseCase
	ShipmentUC       *inventory.ShipmentUseCase
	BulkShipmentUC   *inventory.BulkShipmentUseCase
	StockUC          *inventory.StockUseCase
	JWTSecret        string
	MaxUploadBytes   int64
	UploadsPerMinute int
	LimiterStorage   fiber.Storage // nil = memoria local
	Log              *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	saleHandler := NewSaleHandler(deps.SaleUC, log)
	shipmentHandler := NewShipmentHandler(deps.ShipmentUC, deps.BulkShipmentUC, deps.MaxUploadBytes, log)
	stockHandler := NewStockHandler(deps.StockUC, log)

	stores := api.Group("/store-assignments/:id")
	stores.Post("/sales", saleHandler.Create)
	stores.Get("/sales", saleHandler.List)
	stores.Post("/shipments/bulk", UploadLimiter(deps.UploadsPerMinute, deps.LimiterStorage), shipmentHandler.Bulk)
	stores.Post("/shipments", shipmentHandler.Create)
	stores.Get("/shipments", shipmentHandler.List)
	stores.Get("/stock", stockHandler.List)
	stores.Get("/stock/entry", stockHandler.GetEntry)
	stores.Post("/stock", RequireRole(entity.RoleAdmin, entity.RoleSupervisor), stockHandler.Initialize)

	sales := api.Group("/sales")
	sales.Get("/:id", saleHandler.GetByID)
	sales.Patch("/:id", saleHandler.Update)
	sales.Delete("/:id", saleHandler.Delete)

	shipments := api.Group("/shipments")
	shipments.Get("/:id", shipmentHandler.GetByID)
	shipments.Patch("/:id", shipmentHandler.Update)
	shipments.Delete("/:id", shipmentHandler.Delete)
}
