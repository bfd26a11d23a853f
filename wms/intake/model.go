// Package intake sequences a shipment through check-in, weighing, quality
// check, grading and reconciliation, advancing its status as stages finish.
package intake

import (
	"context"
	"time"

	"intake-app/apperror"
	"intake-app/types"

	"gorm.io/gorm"
)

type Stage string

const (
	StageCheckIn   Stage = "check_in"
	StageWeigh     Stage = "weigh"
	StageQuality   Stage = "quality_check"
	StageGrade     Stage = "grade"
	StageReconcile Stage = "reconcile"
)

// Stages is the fixed order; each stage needs all earlier ones done.
var Stages = []Stage{StageCheckIn, StageWeigh, StageQuality, StageGrade, StageReconcile}

type StageStatus string

const (
	Pending StageStatus = "pending"
	Done    StageStatus = "done"
	Failed  StageStatus = "failed"
	// Paused means an external collaborator was unavailable; retrying may succeed.
	Paused StageStatus = "paused"
)

type IntakeRun struct {
	ID         types.SnowflakeID `json:"id" gorm:"primaryKey"`
	RunKey     string            `json:"run_key" gorm:"size:36;uniqueIndex"`
	ShipmentID types.SnowflakeID `json:"shipment_id" gorm:"uniqueIndex"`

	CheckIn   StageStatus `json:"check_in" gorm:"size:10"`
	Weigh     StageStatus `json:"weigh" gorm:"size:10"`
	Quality   StageStatus `json:"quality_check" gorm:"size:10"`
	Grade     StageStatus `json:"grade" gorm:"size:10"`
	Reconcile StageStatus `json:"reconcile" gorm:"size:10"`

	FailedStage Stage  `json:"failed_stage,omitempty" gorm:"size:20"`
	LastError   string `json:"last_error,omitempty"`

	QualityOverall   string  `json:"quality_overall,omitempty" gorm:"size:20"`
	AcceptedWeightKg float64 `json:"accepted_weight_kg"`
	GradedBoxes      int     `json:"graded_boxes"`
	GradedWeightKg   float64 `json:"graded_weight_kg"`
	TotalNetKg       float64 `json:"total_net_kg"`
	TotalDeclaredKg  float64 `json:"total_declared_kg"`
	DiscrepancyRate  float64 `json:"discrepancy_rate"`

	CreatedBy string    `json:"created_by" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *IntakeRun) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == 0 {
		r.ID = types.NewSnowflakeID()
	}
	return
}

func (r *IntakeRun) Status(s Stage) StageStatus {
	switch s {
	case StageCheckIn:
		return r.CheckIn
	case StageWeigh:
		return r.Weigh
	case StageQuality:
		return r.Quality
	case StageGrade:
		return r.Grade
	case StageReconcile:
		return r.Reconcile
	}
	return ""
}

func (r *IntakeRun) set(s Stage, st StageStatus) {
	switch s {
	case StageCheckIn:
		r.CheckIn = st
	case StageWeigh:
		r.Weigh = st
	case StageQuality:
		r.Quality = st
	case StageGrade:
		r.Grade = st
	case StageReconcile:
		r.Reconcile = st
	}
}

// Complete reports whether every stage is done.
func (r *IntakeRun) Complete() bool {
	for _, s := range Stages {
		if r.Status(s) != Done {
			return false
		}
	}
	return true
}

type RunRepository interface {
	Create(ctx context.Context, run *IntakeRun) error
	GetByShipment(ctx context.Context, shipmentID types.SnowflakeID) (*IntakeRun, error)
	Save(ctx context.Context, run *IntakeRun) error
}

type IntakeRunRepository struct {
	db *gorm.DB
}

func NewIntakeRunRepository(db *gorm.DB) *IntakeRunRepository {
	return &IntakeRunRepository{db: db}
}

func (r *IntakeRunRepository) Create(ctx context.Context, run *IntakeRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *IntakeRunRepository) GetByShipment(ctx context.Context, shipmentID types.SnowflakeID) (*IntakeRun, error) {
	var run IntakeRun
	if err := r.db.WithContext(ctx).First(&run, "shipment_id = ?", shipmentID).Error; err != nil {
		return nil, apperror.FromDB(err, "shipment_id", "no intake run for shipment")
	}
	return &run, nil
}

func (r *IntakeRunRepository) Save(ctx context.Context, run *IntakeRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}
