package model

import (
	"strings"
	"time"

	"go-stock-opname/pkg/validator"

	"github.com/shopspring/decimal"
)

const DefaultUnit = "pcs"

// StockItem adalah satu baris barang (SKU) yang dicatat saat stok opname.
type StockItem struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemCode      string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"item_code"`
	ItemName      string          `gorm:"type:varchar(255);not null;index" json:"item_name"`
	Category      string          `gorm:"type:varchar(100)" json:"category"`
	Unit          string          `gorm:"type:varchar(20)" json:"unit"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	MinStock      int             `gorm:"not null;default:0" json:"min_stock"`
	Price         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"price"`
	Location      string          `gorm:"type:varchar(100)" json:"location"`
	LastUpdated   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_updated"`
	Notes         string          `gorm:"type:text" json:"notes"`
}

func (StockItem) TableName() string {
	return "stock_items"
}

// IsLowStock reports stock at or below the minimum threshold.
func (s StockItem) IsLowStock() bool {
	return s.StockQuantity <= s.MinStock
}

// StockItemInput is the mutable field set accepted from callers.
type StockItemInput struct {
	ItemCode      string          `json:"item_code" validate:"notblank"`
	ItemName      string          `json:"item_name" validate:"notblank"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	StockQuantity int             `json:"stock_quantity"`
	MinStock      int             `json:"min_stock"`
	Price         decimal.Decimal `json:"price"`
	Location      string          `json:"location"`
	Notes         string          `json:"notes"`
}

// NewStockItem validates in and returns a record with defaults applied.
// The id and last_updated are left for the store to assign.
func NewStockItem(in StockItemInput) (*StockItem, error) {
	in = in.normalize()
	if err := validator.Check(in); err != nil {
		return nil, err
	}
	return &StockItem{
		ItemCode:      in.ItemCode,
		ItemName:      in.ItemName,
		Category:      in.Category,
		Unit:          in.Unit,
		StockQuantity: in.StockQuantity,
		MinStock:      in.MinStock,
		Price:         in.Price,
		Location:      in.Location,
		Notes:         in.Notes,
	}, nil
}

func (in StockItemInput) normalize() StockItemInput {
	in.ItemCode = strings.TrimSpace(in.ItemCode)
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.Category = strings.TrimSpace(in.Category)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Unit == "" {
		in.Unit = DefaultUnit
	}
	in.Location = strings.TrimSpace(in.Location)
	return in
}
