package handler

import (
	"strconv"

	"go-stock-opname/internal/model"
	"go-stock-opname/pkg/apperror"
	"go-stock-opname/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type ErrorResponse struct {
	Code    string      `json:"code"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// respondError maps err onto the status and public message of its kind.
// Internal messages are logged, never returned.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	kind := apperror.KindOf(err)
	meta := apperror.MetadataFor(kind)

	body := ErrorResponse{Code: string(kind), Error: meta.PublicMessage}
	if appErr, ok := apperror.As(err); ok && meta.ShowDetails {
		body.Details = appErr.Details()
	}

	l := logger.FromContext(c.UserContext(), log)
	if meta.HTTPStatus >= fiber.StatusInternalServerError {
		l.Error().Err(err).Str("kind", string(kind)).Str("path", c.Path()).Msg("request failed")
	} else {
		l.Debug().Err(err).Str("kind", string(kind)).Str("path", c.Path()).Msg("request rejected")
	}

	return c.Status(meta.HTTPStatus).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Code:  string(apperror.KindValidation),
		Error: message,
	})
}

// parseID reads a positive numeric :id route param.
func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ItemResponse adds derived fields to a stock item.
type ItemResponse struct {
	model.StockItem
	IsLowStock bool `json:"is_low_stock"`
}

func toItemResponse(item model.StockItem) ItemResponse {
	return ItemResponse{StockItem: item, IsLowStock: item.IsLowStock()}
}

func toItemResponses(items []model.StockItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}
