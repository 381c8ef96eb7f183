package service

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"go-stock-opname/internal/model"
)

// CSVHeaders is the column order of every export artifact.
var CSVHeaders = []string{
	"ID",
	"Kode Barang",
	"Nama Barang",
	"Kategori",
	"Satuan",
	"Stok",
	"Stok Minimum",
	"Harga",
	"Lokasi",
	"Terakhir Update",
	"Catatan",
}

const csvTimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes the header and one row per item, rows separated by "\n".
// String columns are always quoted with inner quotes doubled; numeric
// columns are bare. It returns the number of item rows written.
func WriteCSV(w io.Writer, items []model.StockItem, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.Local
	}
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(CSVHeaders, ",")); err != nil {
		return 0, err
	}

	rows := 0
	fields := make([]string, len(CSVHeaders))
	for _, item := range items {
		fields[0] = strconv.FormatUint(uint64(item.ID), 10)
		fields[1] = quoteCSV(item.ItemCode)
		fields[2] = quoteCSV(item.ItemName)
		fields[3] = quoteCSV(item.Category)
		fields[4] = quoteCSV(item.Unit)
		fields[5] = strconv.Itoa(item.StockQuantity)
		fields[6] = strconv.Itoa(item.MinStock)
		fields[7] = item.Price.String()
		fields[8] = quoteCSV(item.Location)
		fields[9] = quoteCSV(formatCSVTime(item.LastUpdated, loc))
		fields[10] = quoteCSV(item.Notes)

		if err := bw.WriteByte('\n'); err != nil {
			return rows, err
		}
		if _, err := bw.WriteString(strings.Join(fields, ",")); err != nil {
			return rows, err
		}
		rows++
	}

	if err := bw.Flush(); err != nil {
		return rows, err
	}
	return rows, nil
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatCSVTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(csvTimeLayout)
}
