package report

import (
	"context"
	"fmt"

	"intake-app/types"
	"intake-app/wms/grading"
	"intake-app/wms/grn"
	"intake-app/wms/stocktake"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type GRNSource interface {
	ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]grn.GRNLine, error)
}

type CountingSource interface {
	Get(ctx context.Context, id types.SnowflakeID) (*grading.RecordView, error)
}

type StockTakeSource interface {
	Get(ctx context.Context, id types.SnowflakeID) (*stocktake.Record, error)
}

type ReportHandler struct {
	grn       GRNSource
	counting  CountingSource
	stockTake StockTakeSource
	log       *logrus.Logger
}

func NewReportHandler(g GRNSource, c CountingSource, s StockTakeSource, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{grn: g, counting: c, stockTake: s, log: logger}
}

func (h *ReportHandler) send(ctx *fiber.Ctx, f *excelize.File, filename string) error {
	defer f.Close()

	ctx.Set("Content-Type", ContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		h.log.WithError(err).WithField("file", filename).Error("failed to write workbook")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate Excel")
	}
	return nil
}

func (h *ReportHandler) ExportGRN(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("shipmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid shipment ID")
	}
	lines, err := h.grn.ListByShipment(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "No GRN for shipment")
	}
	f, err := GRNWorkbook(lines)
	if err != nil {
		return err
	}
	return h.send(ctx, f, fmt.Sprintf("grn-%s.xlsx", id))
}

func (h *ReportHandler) ExportCounting(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	view, err := h.counting.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	f, err := CountingWorkbook(view)
	if err != nil {
		return err
	}
	return h.send(ctx, f, fmt.Sprintf("counting-%s.xlsx", view.Record.PalletID))
}

func (h *ReportHandler) ExportStockTake(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	rec, err := h.stockTake.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	f, err := StockTakeWorkbook(rec)
	if err != nil {
		return err
	}
	return h.send(ctx, f, fmt.Sprintf("stock-take-%s.xlsx", id))
}

func (h *ReportHandler) SetupRoutes(api fiber.Router) {
	api.Get("/grn/:shipmentId/export", h.ExportGRN)
	api.Get("/counting-records/:id/export", h.ExportCounting)
	api.Get("/stock-take/:id/export", h.ExportStockTake)
}
