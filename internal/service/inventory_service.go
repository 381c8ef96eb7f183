package service

import (
	"context"
	"fmt"
	"strings"

	"go-stock-opname/internal/model"
	"go-stock-opname/internal/repository"
	"go-stock-opname/pkg/logger"
	"go-stock-opname/pkg/metrics"

	"github.com/rs/zerolog"
)

// Notifier pushes live events to connected clients (see ws.Hub).
type Notifier interface {
	Publish(eventType, action string, data interface{}, message string)
}

type InventoryService interface {
	AddItem(ctx context.Context, in model.StockItemInput) (*model.StockItem, error)
	GetAllItems(ctx context.Context) ([]model.StockItem, error)
	GetItem(ctx context.Context, id uint) (*model.StockItem, error)
	SearchItems(ctx context.Context, term string) ([]model.StockItem, error)
	UpdateItem(ctx context.Context, id uint, in model.StockItemInput) (*model.StockItem, error)
	DeleteItem(ctx context.Context, id uint) error
}

type inventoryService struct {
	repo     repository.StockItemRepository
	notifier Notifier
	metrics  *metrics.StockMetrics
	log      zerolog.Logger
}

func NewInventoryService(repo repository.StockItemRepository, notifier Notifier, m *metrics.StockMetrics, log zerolog.Logger) InventoryService {
	return &inventoryService{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

func (s *inventoryService) AddItem(ctx context.Context, in model.StockItemInput) (item *model.StockItem, err error) {
	defer func() { s.metrics.ObserveItemOp("add", err) }()

	// 1. Validasi di boundary, bukan di dalam store
	item, err = model.NewStockItem(in)
	if err != nil {
		return nil, err
	}

	// 2. Simpan; duplikasi kode ditolak oleh unique index
	if _, err = s.repo.Create(ctx, item); err != nil {
		logger.FromContext(ctx, s.log).Error().Err(err).Str("item_code", item.ItemCode).Msg("add stock item failed")
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info().Uint("id", item.ID).Str("item_code", item.ItemCode).Msg("stock item added")
	s.broadcast("item_created", item, fmt.Sprintf("Barang '%s' ditambahkan", item.ItemName))
	return item, nil
}

func (s *inventoryService) GetAllItems(ctx context.Context) ([]model.StockItem, error) {
	return s.repo.FindAll(ctx)
}

func (s *inventoryService) GetItem(ctx context.Context, id uint) (*model.StockItem, error) {
	return s.repo.FindByID(ctx, id)
}

// SearchItems falls back to the full list for a blank term.
func (s *inventoryService) SearchItems(ctx context.Context, term string) ([]model.StockItem, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.repo.FindAll(ctx)
	}
	return s.repo.Search(ctx, term)
}

func (s *inventoryService) UpdateItem(ctx context.Context, id uint, in model.StockItemInput) (item *model.StockItem, err error) {
	defer func() { s.metrics.ObserveItemOp("update", err) }()

	item, err = model.NewStockItem(in)
	if err != nil {
		return nil, err
	}

	if err = s.repo.Update(ctx, id, item); err != nil {
		logger.FromContext(ctx, s.log).Error().Err(err).Uint("id", id).Msg("update stock item failed")
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info().Uint("id", id).Msg("stock item updated")
	s.broadcast("item_updated", item, fmt.Sprintf("Barang '%s' diperbarui", item.ItemName))
	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id uint) (err error) {
	defer func() { s.metrics.ObserveItemOp("delete", err) }()

	if err = s.repo.Delete(ctx, id); err != nil {
		logger.FromContext(ctx, s.log).Error().Err(err).Uint("id", id).Msg("delete stock item failed")
		return err
	}

	logger.FromContext(ctx, s.log).Info().Uint("id", id).Msg("stock item deleted")
	s.broadcast("item_deleted", map[string]interface{}{"id": id}, "Barang berhasil dihapus")
	return nil
}

func (s *inventoryService) broadcast(action string, data interface{}, message string) {
	if s.notifier == nil {
		return
	}
	if item, ok := data.(*model.StockItem); ok {
		data = map[string]interface{}{
			"id":             item.ID,
			"item_code":      item.ItemCode,
			"item_name":      item.ItemName,
			"stock_quantity": item.StockQuantity,
			"min_stock":      item.MinStock,
			"is_low_stock":   item.IsLowStock(),
		}
	}
	s.notifier.Publish("stock_update", action, data, message)
}
