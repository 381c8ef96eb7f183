package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"go-stock-opname/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVFormat(t *testing.T) {
	updated := time.Date(2026, 10, 18, 8, 15, 30, 0, time.UTC)
	items := []model.StockItem{
		{
			ID:            1,
			ItemCode:      "BRG-001",
			ItemName:      `Widget "A"`,
			Category:      "Alat, Tulis",
			Unit:          "pcs",
			StockQuantity: 3,
			MinStock:      5,
			Price:         decimal.RequireFromString("15000.50"),
			Location:      "Rak 1",
			LastUpdated:   updated,
			Notes:         "baris\nbaru",
		},
		{ID: 2, ItemCode: "BRG-002", ItemName: "Pulpen"},
	}

	var buf bytes.Buffer
	rows, err := WriteCSV(&buf, items, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	want := strings.Join([]string{
		"ID,Kode Barang,Nama Barang,Kategori,Satuan,Stok,Stok Minimum,Harga,Lokasi,Terakhir Update,Catatan",
		`1,"BRG-001","Widget ""A""","Alat, Tulis","pcs",3,5,15000.5,"Rak 1","2026-10-18 08:15:30","baris` + "\n" + `baru"`,
		`2,"BRG-002","Pulpen","","",0,0,0,"","",""`,
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVHeaderOnlyForNoItems(t *testing.T) {
	var buf bytes.Buffer
	rows, err := WriteCSV(&buf, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
	assert.Equal(t, strings.Join(CSVHeaders, ","), buf.String())
}

func TestWriteCSVUsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	items := []model.StockItem{{ID: 1, ItemCode: "A", ItemName: "A", LastUpdated: time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)}}

	var buf bytes.Buffer
	_, err := WriteCSV(&buf, items, jakarta)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"2026-01-02 03:00:00"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSVPropagatesWriteError(t *testing.T) {
	_, err := WriteCSV(failingWriter{}, []model.StockItem{{ID: 1}}, time.UTC)
	assert.Error(t, err)
}
