package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StockMetrics records store and export pipeline activity. A nil *StockMetrics
// is valid and records nothing.
type StockMetrics struct {
	itemOps        *prometheus.CounterVec
	exports        *prometheus.CounterVec
	exportDuration prometheus.Histogram
	exportedRows   prometheus.Counter
}

// NewStockMetrics registers the collectors on reg.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	itemOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_item_operations_total",
		Help: "Stock item store operations by operation and result.",
	}, []string{"op", "result"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_exports_total",
		Help: "CSV export attempts by result.",
	}, []string{"result"})
	exportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_export_duration_seconds",
		Help:    "Duration of CSV exports in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	exportedRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_exported_rows_total",
		Help: "Rows written to CSV exports.",
	})
	reg.MustRegister(itemOps, exports, exportDuration, exportedRows)
	return &StockMetrics{
		itemOps:        itemOps,
		exports:        exports,
		exportDuration: exportDuration,
		exportedRows:   exportedRows,
	}
}

func (m *StockMetrics) ObserveItemOp(op string, err error) {
	if m == nil || m.itemOps == nil {
		return
	}
	m.itemOps.WithLabelValues(normalizeLabel(op), resultLabel(err)).Inc()
}

func (m *StockMetrics) ObserveExport(duration time.Duration, rows int, err error) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(resultLabel(err)).Inc()
	m.exportDuration.Observe(duration.Seconds())
	if err == nil && rows > 0 {
		m.exportedRows.Add(float64(rows))
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
