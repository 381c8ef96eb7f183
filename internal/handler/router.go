package handler

import (
	"context"

	"go-stock-opname/internal/middleware"
	"go-stock-opname/internal/service"
	"go-stock-opname/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RouterDeps are the services behind the REST API.
type RouterDeps struct {
	Inventory service.InventoryService
	Dashboard service.DashboardService
	Exports   service.ExportService
	Signer    *jwt.Signer
	Ping      func(ctx context.Context) error
	Log       zerolog.Logger
}

// Router registers the /api/v1 routes and /healthz on app.
func Router(app *fiber.App, deps RouterDeps) {
	invHandler := NewInventoryHandler(deps.Inventory, deps.Log)
	dashHandler := NewDashboardHandler(deps.Dashboard, deps.Log)
	exportHandler := NewExportHandler(deps.Exports, deps.Log)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if deps.Ping != nil {
			if err := deps.Ping(c.UserContext()); err != nil {
				return respondError(c, deps.Log, err)
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Dashboard
	api.Get("/dashboard/stats", dashHandler.GetDashboardStats)

	// Stock items
	items := api.Group("/items")
	items.Get("/", invHandler.GetItems)
	items.Get("/:id", invHandler.GetItem)
	items.Post("/", invHandler.CreateItem)
	items.Put("/:id", invHandler.UpdateItem)
	items.Delete("/:id", invHandler.DeleteItem)

	// Exports; download is registered before /:name
	exports := api.Group("/exports")
	exports.Get("/download", middleware.RequireShareToken(deps.Signer), exportHandler.Download)
	exports.Get("/", exportHandler.ListExports)
	exports.Post("/", exportHandler.Export)
	exports.Post("/share", exportHandler.ExportAndShare)
	exports.Delete("/:name", exportHandler.DeleteExport)
}
