package handler

import (
	"go-stock-opname/internal/model"
	"go-stock-opname/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type InventoryHandler struct {
	service service.InventoryService
	log     zerolog.Logger
}

func NewInventoryHandler(s service.InventoryService, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{service: s, log: log}
}

// GetItems lists every item, or only matches when ?q= is set.
func (h *InventoryHandler) GetItems(c *fiber.Ctx) error {
	items, err := h.service.SearchItems(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toItemResponses(items))
}

func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "ID barang tidak valid")
	}

	item, err := h.service.GetItem(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toItemResponse(*item))
}

func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var in model.StockItemInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	item, err := h.service.AddItem(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Barang berhasil ditambahkan",
		"data":    toItemResponse(*item),
	})
}

func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "ID barang tidak valid")
	}

	var in model.StockItemInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	item, err := h.service.UpdateItem(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Barang berhasil diperbarui",
		"data":    toItemResponse(*item),
	})
}

func (h *InventoryHandler) DeleteItem(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "ID barang tidak valid")
	}

	if err := h.service.DeleteItem(c.UserContext(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Barang berhasil dihapus"})
}
