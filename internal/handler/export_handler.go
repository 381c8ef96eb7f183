package handler

import (
	"fmt"

	"go-stock-opname/internal/middleware"
	"go-stock-opname/internal/service"
	"go-stock-opname/pkg/apperror"
	"go-stock-opname/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type ExportHandler struct {
	service service.ExportService
	log     zerolog.Logger
}

func NewExportHandler(s service.ExportService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{service: s, log: log}
}

func (h *ExportHandler) Export(c *fiber.Ctx) error {
	res, err := h.service.ExportToCSV(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Berhasil mengekspor %d data ke CSV", res.RecordCount),
		"data":    res,
	})
}

// ExportAndShare keeps the artifact when sharing fails and reports it with the error.
func (h *ExportHandler) ExportAndShare(c *fiber.Ctx) error {
	res, err := h.service.ExportAndShare(c.UserContext())
	if err != nil {
		if res == nil {
			return respondError(c, h.log, err)
		}
		kind := apperror.KindOf(err)
		meta := apperror.MetadataFor(kind)
		logger.FromContext(c.UserContext(), h.log).Error().Err(err).Str("file", res.FileName).Msg("export shared partially")
		return c.Status(meta.HTTPStatus).JSON(fiber.Map{
			"code":  string(kind),
			"error": "File berhasil diekspor tetapi gagal dibagikan",
			"data":  res.ExportResult,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": res.Message,
		"data":    res,
	})
}

func (h *ExportHandler) ListExports(c *fiber.Ctx) error {
	files, err := h.service.ListExportedFiles(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(files)
}

func (h *ExportHandler) DeleteExport(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := h.service.DeleteExportedFile(c.UserContext(), h.service.PathFor(name)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "File export berhasil dihapus"})
}

// Download serves the artifact named by a validated share token.
func (h *ExportHandler) Download(c *fiber.Ctx) error {
	name, _ := c.Locals(middleware.LocalFileName).(string)
	if name == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "UNAUTHORIZED", Error: "Token tidak valid"})
	}

	data, err := h.service.ReadExportedFile(c.UserContext(), name)
	if err != nil {
		return respondError(c, h.log, err)
	}

	c.Attachment(name)
	c.Set(fiber.HeaderContentType, service.CSVMimeType+"; charset=utf-8")
	return c.Send(data)
}
