package migration

import (
	"intake-app/wms/activity"
	"intake-app/wms/grading"
	"intake-app/wms/grn"
	"intake-app/wms/intake"
	"intake-app/wms/master/supplier"
	"intake-app/wms/quality"
	"intake-app/wms/shipment"
	"intake-app/wms/stocktake"
	"intake-app/wms/weighbridge"

	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&supplier.Supplier{},
		&shipment.Shipment{},
		&shipment.StatusChange{},
		&weighbridge.WeightEntry{},
		&quality.QualityCheck{},
		&grading.CountingRecord{},
		&grading.CountingCell{},
		&grn.GRNLine{},
		&stocktake.Record{},
		&stocktake.Line{},
		&intake.IntakeRun{},
		&activity.ActivityLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
