package handler

import (
	"go-stock-opname/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type DashboardHandler struct {
	service service.DashboardService
	log     zerolog.Logger
}

func NewDashboardHandler(s service.DashboardService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, log: log}
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(stats)
}
