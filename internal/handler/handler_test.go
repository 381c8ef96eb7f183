package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-stock-opname/internal/handler"
	"go-stock-opname/internal/middleware"
	"go-stock-opname/internal/model"
	"go-stock-opname/internal/repository"
	"go-stock-opname/internal/service"
	"go-stock-opname/pkg/config"
	"go-stock-opname/pkg/database"
	"go-stock-opname/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testExportDir = "/exports"

type testApp struct {
	app    *fiber.App
	client *database.Client
	fs     afero.Fs
}

func buildTestApp(t *testing.T) *testApp {
	t.Helper()
	log := zerolog.Nop()

	client, err := database.Open(config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "StockOpname.db"),
		MaxOpenConns: 1,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Migrate(context.Background(), &model.StockItem{}))

	repo := repository.NewStockItemRepo(client)
	fs := afero.NewMemMapFs()
	signer := jwt.NewSigner("handler-test-secret", "stock-opname-test")
	sharer := service.NewLinkSharer(signer, "http://localhost:3000", time.Hour, nil)

	app := fiber.New()
	app.Use(middleware.RequestLogger(log))
	handler.Router(app, handler.RouterDeps{
		Inventory: service.NewInventoryService(repo, nil, nil, log),
		Dashboard: service.NewDashboardService(repo),
		Exports:   service.NewExportService(repo, fs, testExportDir, sharer, log),
		Signer:    signer,
		Ping:      client.Ping,
		Log:       log,
	})
	return &testApp{app: app, client: client, fs: fs}
}

func (a *testApp) do(t *testing.T, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

func TestItemCRUDFlow(t *testing.T) {
	a := buildTestApp(t)

	resp, body := a.do(t, http.MethodPost, "/api/v1/items",
		`{"item_code":"BRG-01","item_name":"Kertas A4","category":"ATK","stock_quantity":2,"min_stock":5,"price":"45000.00"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	var created struct {
		Data struct {
			ID         uint   `json:"id"`
			Unit       string `json:"unit"`
			IsLowStock bool   `json:"is_low_stock"`
		} `json:"data"`
	}
	decode(t, body, &created)
	assert.NotZero(t, created.Data.ID)
	assert.Equal(t, "pcs", created.Data.Unit)
	assert.True(t, created.Data.IsLowStock)

	id := created.Data.ID
	itemURL := "/api/v1/items/" + jsonNumber(id)

	resp, body = a.do(t, http.MethodGet, itemURL, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	resp, body = a.do(t, http.MethodPut, itemURL,
		`{"item_code":"BRG-01","item_name":"Kertas A4 80gr","stock_quantity":20,"min_stock":5}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	resp, body = a.do(t, http.MethodGet, "/api/v1/items?q=80GR", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var items []map[string]interface{}
	decode(t, body, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Kertas A4 80gr", items[0]["item_name"])
	assert.Equal(t, false, items[0]["is_low_stock"])

	resp, _ = a.do(t, http.MethodDelete, itemURL, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = a.do(t, http.MethodDelete, itemURL, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var errBody handler.ErrorResponse
	decode(t, body, &errBody)
	assert.Equal(t, "NOT_FOUND", errBody.Code)
	assert.Equal(t, "Data tidak ditemukan", errBody.Error)
}

func TestCreateItemErrors(t *testing.T) {
	a := buildTestApp(t)

	resp, body := a.do(t, http.MethodPost, "/api/v1/items", `{"item_code":"","item_name":"x"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var errBody handler.ErrorResponse
	decode(t, body, &errBody)
	assert.Equal(t, "VALIDATION_ERROR", errBody.Code)
	assert.NotNil(t, errBody.Details)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/items", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/items", `{"item_code":"D","item_name":"Satu"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, body = a.do(t, http.MethodPost, "/api/v1/items", `{"item_code":"D","item_name":"Dua"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	decode(t, body, &errBody)
	assert.Equal(t, "CONSTRAINT_VIOLATION", errBody.Code)

	resp, _ = a.do(t, http.MethodGet, "/api/v1/items/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDashboardStatsEndpoint(t *testing.T) {
	a := buildTestApp(t)

	a.do(t, http.MethodPost, "/api/v1/items", `{"item_code":"A","item_name":"A","stock_quantity":4,"min_stock":1,"price":"2.5"}`)

	resp, body := a.do(t, http.MethodGet, "/api/v1/dashboard/stats", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats struct {
		TotalItems     int64  `json:"total_items"`
		LowStockCount  int64  `json:"low_stock_count"`
		TotalValuation string `json:"total_valuation"`
	}
	decode(t, body, &stats)
	assert.Equal(t, int64(1), stats.TotalItems)
	assert.Equal(t, int64(0), stats.LowStockCount)
	assert.Equal(t, "10", stats.TotalValuation)
}

func TestExportEndpoints(t *testing.T) {
	a := buildTestApp(t)

	resp, body := a.do(t, http.MethodPost, "/api/v1/exports", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, string(body))

	a.do(t, http.MethodPost, "/api/v1/items", `{"item_code":"X-1","item_name":"Barang \"Khusus\""}`)

	resp, body = a.do(t, http.MethodPost, "/api/v1/exports/share", "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	var shared struct {
		Message string `json:"message"`
		Data    struct {
			FileName    string `json:"file_name"`
			RecordCount int    `json:"record_count"`
			Share       struct {
				Status string `json:"status"`
				URL    string `json:"url"`
			} `json:"share"`
		} `json:"data"`
	}
	decode(t, body, &shared)
	assert.Equal(t, "Berhasil mengekspor 1 data ke CSV", shared.Message)
	assert.Equal(t, 1, shared.Data.RecordCount)
	assert.Equal(t, "completed", shared.Data.Share.Status)

	resp, body = a.do(t, http.MethodGet, "/api/v1/exports", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var files []map[string]interface{}
	decode(t, body, &files)
	require.Len(t, files, 1)
	assert.Equal(t, shared.Data.FileName, files[0]["name"])

	// download via the share link
	link, err := url.Parse(shared.Data.Share.URL)
	require.NoError(t, err)
	resp, body = a.do(t, http.MethodGet, link.RequestURI(), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/csv"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), shared.Data.FileName)
	assert.Contains(t, string(body), `"Barang ""Khusus"""`)

	resp, _ = a.do(t, http.MethodGet, "/api/v1/exports/download?token=bogus", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp, _ = a.do(t, http.MethodGet, "/api/v1/exports/download", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, "/api/v1/exports/notes.txt", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, "/api/v1/exports/"+shared.Data.FileName, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = a.do(t, http.MethodDelete, "/api/v1/exports/"+shared.Data.FileName, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealthzReportsClosedStore(t *testing.T) {
	a := buildTestApp(t)

	resp, _ := a.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, a.client.Close())
	resp, body := a.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode, string(body))

	resp, _ = a.do(t, http.MethodGet, "/api/v1/items", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
