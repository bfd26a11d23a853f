package routes

import (
	"intake-app/config"
	"intake-app/database"
	"intake-app/middleware"
	"intake-app/wms/activity"
	"intake-app/wms/grading"
	"intake-app/wms/grn"
	"intake-app/wms/intake"
	"intake-app/wms/labor"
	"intake-app/wms/master/supplier"
	"intake-app/wms/quality"
	"intake-app/wms/report"
	"intake-app/wms/shipment"
	"intake-app/wms/stocktake"
	"intake-app/wms/weighbridge"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type routeSetter interface {
	SetupRoutes(api fiber.Router)
}

// Deps are the process-wide collaborators the handlers are built from.
type Deps struct {
	DB        *gorm.DB
	Log       *logrus.Logger
	Activity  activity.Sink
	Store     activity.Store
	Locker    shipment.Locker
	Diagnoser quality.Diagnoser
	Grading   config.GradingConfig
}

// Setup builds every service over d and mounts the handlers under
// MAIN_ROUTES behind AuthMiddleware.
func Setup(app *fiber.App, d Deps) {
	log := d.Log
	sink := d.Activity

	suppliers := supplier.NewSupplierRepository(d.DB)
	machine := shipment.Machine{Strict: config.StrictTransitions, DelayResumable: config.DelayResumable}
	shipments := shipment.NewService(shipment.NewShipmentRepository(d.DB), d.Locker, machine, sink, log)
	weighing := weighbridge.NewService(weighbridge.NewWeightEntryRepository(d.DB), sink, log)
	qc := quality.NewService(quality.NewQualityRepository(d.DB), d.Diagnoser, config.QCDedupeByPallet, sink, log)
	counting := grading.NewService(grading.NewCountingRepository(d.DB), d.Grading, sink, log)
	receipts := grn.NewService(grn.NewGRNRepository(d.DB), sink, log)
	stockTakes := stocktake.NewService(stocktake.NewGormHistory(d.DB), config.StockTakeHistoryLimit, sink, log)

	orchestrator := intake.NewOrchestrator(intake.Deps{
		Runs:      intake.NewIntakeRunRepository(d.DB),
		Suppliers: suppliers,
		Shipments: shipments,
		Weighing:  weighing,
		Quality:   qc,
		Grading:   counting,
		GRN:       receipts,
		Activity:  sink,
		Locker:    d.Locker,
		Log:       log,
	})

	handlers := []routeSetter{
		database.NewConfigurationHandler(d.DB),
		supplier.NewSupplierHandler(suppliers),
		shipment.NewShipmentHandler(shipments),
		weighbridge.NewWeighbridgeHandler(weighing),
		quality.NewQualityHandler(qc),
		grading.NewGradingHandler(counting),
		grn.NewGRNHandler(receipts),
		stocktake.NewStockTakeHandler(stockTakes),
		labor.NewLaborHandler(labor.NewEstimator(config.LaborHourlyWageKES)),
		intake.NewIntakeHandler(orchestrator),
		report.NewReportHandler(receipts, counting, stockTakes, log),
		activity.NewActivityHandler(d.Store),
	}

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"success": true, "message": "ok"})
	})

	api := app.Group(config.MAIN_ROUTES, middleware.AuthMiddleware)
	for _, h := range handlers {
		h.SetupRoutes(api)
	}
}
