package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-stock-opname/internal/handler"
	"go-stock-opname/internal/middleware"
	"go-stock-opname/internal/model"
	"go-stock-opname/internal/repository"
	"go-stock-opname/internal/service"
	"go-stock-opname/internal/ws"
	"go-stock-opname/pkg/config"
	"go-stock-opname/pkg/database"
	"go-stock-opname/pkg/jwt"
	"go-stock-opname/pkg/logger"
	"go-stock-opname/pkg/metrics"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Options{Service: "stock-opname-api"})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Options{
		Service: "stock-opname-api",
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.Open(cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := db.Migrate(ctx, &model.StockItem{}); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	// 4. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	stockMetrics := metrics.NewStockMetrics(reg)

	// 5. Dependency Injection (Wiring Layers)
	itemRepo := repository.NewStockItemRepo(db)
	signer := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer)
	sharer := service.NewLinkSharer(signer, cfg.Export.PublicBaseURL, cfg.Export.ShareLinkTTL, wsHub)

	invService := service.NewInventoryService(itemRepo, wsHub, stockMetrics, log)
	dashService := service.NewDashboardService(itemRepo)
	exportService := service.NewExportService(itemRepo, afero.NewOsFs(), cfg.Export.Dir, sharer, log,
		service.WithExportMetrics(stockMetrics),
	)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:               "Stock Opname v1.0",
		DisableStartupMessage: !cfg.App.IsDev(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(log))

	// 7. Routes
	handler.Router(app, handler.RouterDeps{
		Inventory: invService,
		Dashboard: dashService,
		Exports:   exportService,
		Signer:    signer,
		Ping:      db.Ping,
		Log:       log,
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		select {
		case wsHub.Register <- c:
		case <-ctx.Done():
			return
		}
		defer func() {
			select {
			case wsHub.Unregister <- c:
			case <-ctx.Done():
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()
	log.Info().Str("port", cfg.App.Port).Str("export_dir", cfg.Export.Dir).Msg("stock opname api started")

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("close database")
	}

	log.Info().Msg("server exited")
}
