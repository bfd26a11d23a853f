package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"intake-app/config"
	"intake-app/database/dbtest"
	"intake-app/middleware"
	"intake-app/migration"
	"intake-app/types"
	"intake-app/wms/activity"
	"intake-app/wms/master/supplier"
	"intake-app/wms/quality"
	"intake-app/wms/report"
	"intake-app/wms/shipment"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, *activity.MemorySink) {
	t.Helper()
	config.MAIN_ROUTES = "/api/v1"
	config.AuthEnabled = false
	config.StockTakeHistoryLimit = 10
	config.QCDedupeByPallet = true
	config.StrictTransitions = false
	config.DelayResumable = true

	db := dbtest.Open(t, migration.Models()...)
	require.NoError(t, supplier.SeedSupplier(db))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sink := activity.NewMemorySink()

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	Setup(app, Deps{
		DB:       db,
		Log:      logger,
		Activity: sink,
		Store:    activity.NewGormStore(db),
		Locker:   shipment.NewKeyedMutex(),
		Diagnoser: quality.DiagnoserFunc(func(_ context.Context, req quality.Request) (quality.Assessment, error) {
			return quality.Assessment{Product: req.Product, Score: 75, Edible: true}, nil
		}),
		Grading: config.DefaultGradingConfig(),
	})
	return app, sink
}

func call(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSetup_IntakeOverHTTP(t *testing.T) {
	app, sink := newApp(t)

	resp := call(t, app, "GET", "/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = call(t, app, "POST", "/api/v1/intake/check-in",
		`{"supplier_code":"SUP-KIS02","product":"Avocado","varieties":["Hass"]}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			Shipment struct {
				ID types.SnowflakeID `json:"id"`
			} `json:"shipment"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	id := created.Data.Shipment.ID.String()

	resp = call(t, app, "POST", "/api/v1/intake/"+id+"/run", `{
		"entries": [{"gross_weight_kg": 900, "tare_weight_kg": 100, "crates": 30, "varieties": ["Hass"]}],
		"quality": [{"pallet_id": "P-1"}],
		"pallets": [{"pallet_id": "P-1", "total_weight_kg": 40,
			"cells": [{"variety": "Hass", "pack_size": "4kg", "class": 1, "size_code": 18, "boxes": 10}]}]
	}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = call(t, app, "GET", "/api/v1/shipments/"+id, "")
	var got struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, string(shipment.PreparingForDispatch), got.Data.Status)

	resp = call(t, app, "GET", "/api/v1/grn/"+id+"/export", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, report.ContentType, resp.Header.Get("Content-Type"))

	resp = call(t, app, "PUT", "/api/v1/shipments/"+id+"/status", `{"status":"ready_for_dispatch"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = call(t, app, "PUT", "/api/v1/shipments/"+id+"/status", `{"status":"Ready_for_Dispatch"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Contains(t, sink.Actions(), "intake.reconciliation")

	resp = call(t, app, "GET", "/api/v1/activity?limit=5", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSetup_RequiresTokenWhenAuthEnabled(t *testing.T) {
	app, _ := newApp(t)
	config.AuthEnabled = true
	t.Cleanup(func() { config.AuthEnabled = false })

	resp := call(t, app, "GET", "/api/v1/suppliers", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp = call(t, app, "GET", "/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
