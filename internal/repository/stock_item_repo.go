package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-stock-opname/internal/model"
	"go-stock-opname/pkg/apperror"
	"go-stock-opname/pkg/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockItemRepository interface {
	Create(ctx context.Context, item *model.StockItem) (uint, error)
	FindAll(ctx context.Context) ([]model.StockItem, error)
	FindByID(ctx context.Context, id uint) (*model.StockItem, error)
	Search(ctx context.Context, term string) ([]model.StockItem, error)
	Update(ctx context.Context, id uint, item *model.StockItem) error
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*DashboardStats, error)
}

// DashboardStats untuk ringkasan di halaman utama
type DashboardStats struct {
	TotalItems     int64           `json:"total_items"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type stockItemRepo struct {
	client *database.Client
	now    func() time.Time
}

func NewStockItemRepo(client *database.Client) StockItemRepository {
	return &stockItemRepo{client: client, now: time.Now}
}

// NewStockItemRepoWithClock is NewStockItemRepo with a custom time source for last_updated.
func NewStockItemRepoWithClock(client *database.Client, now func() time.Time) StockItemRepository {
	return &stockItemRepo{client: client, now: now}
}

func (r *stockItemRepo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func (r *stockItemRepo) Create(ctx context.Context, item *model.StockItem) (uint, error) {
	db, err := r.client.DB(ctx)
	if err != nil {
		return 0, err
	}

	item.ID = 0
	item.LastUpdated = r.timestamp()
	if err := db.Create(item).Error; err != nil {
		return 0, r.translateError(err, "create stock item")
	}
	return item.ID, nil
}

func (r *stockItemRepo) FindAll(ctx context.Context) ([]model.StockItem, error) {
	db, err := r.client.DB(ctx)
	if err != nil {
		return nil, err
	}

	items := []model.StockItem{}
	if err := db.Order("item_name ASC, id ASC").Find(&items).Error; err != nil {
		return nil, r.translateError(err, "list stock items")
	}
	return items, nil
}

func (r *stockItemRepo) FindByID(ctx context.Context, id uint) (*model.StockItem, error) {
	db, err := r.client.DB(ctx)
	if err != nil {
		return nil, err
	}

	var item model.StockItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindNotFound, "stock item %d not found", id)
		}
		return nil, r.translateError(err, "get stock item")
	}
	return &item, nil
}

// Search matches term case-insensitively against name, code and category.
func (r *stockItemRepo) Search(ctx context.Context, term string) ([]model.StockItem, error) {
	db, err := r.client.DB(ctx)
	if err != nil {
		return nil, err
	}

	// both sides fold through the same LOWER so non-ASCII text still matches itself
	pattern := "%" + escapeLike(term) + "%"
	items := []model.StockItem{}
	err = db.
		Where(`LOWER(item_name) LIKE LOWER(?) ESCAPE '\' OR LOWER(item_code) LIKE LOWER(?) ESCAPE '\' OR LOWER(COALESCE(category, '')) LIKE LOWER(?) ESCAPE '\'`,
			pattern, pattern, pattern).
		Order("item_name ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, r.translateError(err, "search stock items")
	}
	return items, nil
}

// Update overwrites every mutable column of the row and refreshes last_updated.
func (r *stockItemRepo) Update(ctx context.Context, id uint, item *model.StockItem) error {
	db, err := r.client.DB(ctx)
	if err != nil {
		return err
	}

	item.ID = id
	item.LastUpdated = r.timestamp()
	result := db.Model(&model.StockItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"item_code":      item.ItemCode,
			"item_name":      item.ItemName,
			"category":       item.Category,
			"unit":           item.Unit,
			"stock_quantity": item.StockQuantity,
			"min_stock":      item.MinStock,
			"price":          item.Price,
			"location":       item.Location,
			"notes":          item.Notes,
			"last_updated":   item.LastUpdated,
		})
	if result.Error != nil {
		return r.translateError(result.Error, "update stock item")
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindNotFound, "stock item %d not found", id)
	}
	return nil
}

// Delete removes the row permanently; a missing id is NOT_FOUND.
func (r *stockItemRepo) Delete(ctx context.Context, id uint) error {
	db, err := r.client.DB(ctx)
	if err != nil {
		return err
	}

	result := db.Delete(&model.StockItem{}, "id = ?", id)
	if result.Error != nil {
		return r.translateError(result.Error, "delete stock item")
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindNotFound, "stock item %d not found", id)
	}
	return nil
}

func (r *stockItemRepo) Stats(ctx context.Context) (*DashboardStats, error) {
	db, err := r.client.DB(ctx)
	if err != nil {
		return nil, err
	}

	var stats DashboardStats

	if err := db.Model(&model.StockItem{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, r.translateError(err, "count stock items")
	}

	// Stok rendah: stok <= stok minimum
	if err := db.Model(&model.StockItem{}).
		Where("stock_quantity <= min_stock").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, r.translateError(err, "count low stock items")
	}

	valuation, err := r.valuation(db)
	if err != nil {
		return nil, err
	}
	stats.TotalValuation = valuation

	return &stats, nil
}

// valuation sums stock_quantity * price in decimal. sqlite keeps decimal
// columns as REAL, so summing in SQL would drift.
func (r *stockItemRepo) valuation(db *gorm.DB) (decimal.Decimal, error) {
	rows, err := db.Model(&model.StockItem{}).Select("stock_quantity, price").Rows()
	if err != nil {
		return decimal.Zero, r.translateError(err, "sum stock valuation")
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var qty int64
		var price decimal.Decimal
		if err := rows.Scan(&qty, &price); err != nil {
			return decimal.Zero, r.translateError(err, "sum stock valuation")
		}
		total = total.Add(price.Mul(decimal.NewFromInt(qty)))
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, r.translateError(err, "sum stock valuation")
	}
	return total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// translateError maps driver failures onto apperror kinds. A query racing
// Close fails inside database/sql, so the client's closed flag decides.
func (r *stockItemRepo) translateError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return apperror.Wrap(apperror.KindConstraint, err, "item_code already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.Wrap(apperror.KindNotFound, err, op)
	case errors.Is(err, sql.ErrConnDone), r.client.Closed():
		return apperror.Wrap(apperror.KindStoreClosed, err, op)
	default:
		return apperror.Wrap(apperror.KindIO, err, op)
	}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
