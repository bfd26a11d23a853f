package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"intake-app/apperror"
	"intake-app/types"
	"intake-app/wms/activity"
	"intake-app/wms/grading"
	"intake-app/wms/grn"
	"intake-app/wms/master/supplier"
	"intake-app/wms/quality"
	"intake-app/wms/shipment"
	"intake-app/wms/weighbridge"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Shipments interface {
	Create(ctx context.Context, in shipment.CreateInput) (*shipment.Shipment, error)
	Get(ctx context.Context, id types.SnowflakeID) (*shipment.Shipment, error)
	SetStatus(ctx context.Context, id types.SnowflakeID, status, actor string) (*shipment.Shipment, error)
}

type Weighing interface {
	RecordBatch(ctx context.Context, ins []weighbridge.EntryInput) ([]*weighbridge.WeightEntry, error)
	ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]weighbridge.WeightEntry, error)
}

type QualityChecks interface {
	Check(ctx context.Context, in quality.CheckInput) (*quality.QualityCheck, bool, error)
}

type Grading interface {
	Submit(ctx context.Context, in grading.SubmitInput) (*grading.RecordView, error)
	FindActiveByPallet(ctx context.Context, shipmentID types.SnowflakeID, palletID string) (*grading.RecordView, error)
}

type GRN interface {
	Generate(ctx context.Context, shipmentID types.SnowflakeID, declared []string,
		entries []weighbridge.WeightEntry, operator string) ([]grn.GRNLine, error)
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Runs      RunRepository
	Suppliers supplier.Directory
	Shipments Shipments
	Weighing  Weighing
	Quality   QualityChecks
	Grading   Grading
	GRN       GRN
	Activity  activity.Sink
	// Locker serialises the stages of one shipment. Defaults to an
	// in-process shipment.KeyedMutex.
	Locker shipment.Locker
	Log    *logrus.Logger
	// GradeWorkers bounds concurrent pallet submissions. Defaults to 4.
	GradeWorkers int
}

type Orchestrator struct {
	Deps
}

func NewOrchestrator(d Deps) *Orchestrator {
	if d.GradeWorkers <= 0 {
		d.GradeWorkers = 4
	}
	if d.Activity == nil {
		d.Activity = activity.Nop{}
	}
	if d.Locker == nil {
		d.Locker = shipment.NewKeyedMutex()
	}
	return &Orchestrator{Deps: d}
}

type CheckInInput struct {
	Reference        string   `json:"reference"`
	SupplierCode     string   `json:"supplier_code"`
	Product          string   `json:"product"`
	Varieties        []string `json:"varieties"`
	DeclaredWeightKg *float64 `json:"declared_weight_kg"`
	Operator         string   `json:"-"`
}

// CheckIn registers the shipment in Awaiting_QC and opens its run.
func (o *Orchestrator) CheckIn(ctx context.Context, in CheckInInput) (*IntakeRun, *shipment.Shipment, error) {
	if strings.TrimSpace(in.SupplierCode) == "" {
		return nil, nil, apperror.Validation("supplier_code", "supplier code is required")
	}
	if _, err := o.Suppliers.Lookup(ctx, in.SupplierCode); err != nil {
		return nil, nil, err
	}

	sh, err := o.Shipments.Create(ctx, shipment.CreateInput{
		Reference:        in.Reference,
		SupplierCode:     strings.TrimSpace(in.SupplierCode),
		Product:          in.Product,
		Varieties:        in.Varieties,
		DeclaredWeightKg: in.DeclaredWeightKg,
		Operator:         in.Operator,
	})
	if err != nil {
		return nil, nil, err
	}

	run := &IntakeRun{
		RunKey:     uuid.NewString(),
		ShipmentID: sh.ID,
		CheckIn:    Done,
		Weigh:      Pending,
		Quality:    Pending,
		Grade:      Pending,
		Reconcile:  Pending,
		CreatedBy:  in.Operator,
	}
	if err := o.Runs.Create(ctx, run); err != nil {
		return nil, sh, err
	}

	o.Log.WithFields(logrus.Fields{"shipment": sh.ID.String(), "run": run.RunKey}).Info("intake run opened")
	o.Activity.Emit(activity.New(in.Operator, "intake.check_in", string(Done), sh.ID.String(), run.RunKey))
	return run, sh, nil
}

func (o *Orchestrator) Get(ctx context.Context, shipmentID types.SnowflakeID) (*IntakeRun, error) {
	return o.Runs.GetByShipment(ctx, shipmentID)
}

// Weigh records the gate-scale entries of the shipment. The whole batch is
// validated first and then stored in one transaction, so a failed attempt
// leaves no entries for a retry to duplicate.
func (o *Orchestrator) Weigh(ctx context.Context, shipmentID types.SnowflakeID, entries []weighbridge.EntryInput, operator string) (*IntakeRun, error) {
	return o.stage(ctx, shipmentID, StageWeigh, operator, func(run *IntakeRun, sh *shipment.Shipment) error {
		if len(entries) == 0 {
			return apperror.Validation("entries", "at least one weight entry is required")
		}
		sources := make([]grn.Source, 0, len(entries))
		for i := range entries {
			entries[i].ShipmentID = sh.ID
			entries[i].SupplierCode = sh.SupplierCode
			entries[i].Operator = operator
			e, err := weighbridge.NewWeightEntry(entries[i])
			if err != nil {
				return prefix(err, fmt.Sprintf("entries[%d]", i))
			}
			sources = append(sources, grn.Source{Varieties: e.VarietyList()})
		}
		if err := grn.CheckDeclared(sh.Varieties(), sources); err != nil {
			return err
		}

		_, err := o.Weighing.RecordBatch(ctx, entries)
		return err
	})
}

// QualityCheck assesses every pallet and moves the shipment to Processing
// when none was rejected. A pallet without a net weight of its own takes the
// shipment's total net weight when it is the only pallet.
func (o *Orchestrator) QualityCheck(ctx context.Context, shipmentID types.SnowflakeID, pallets []quality.CheckInput, operator string) (*IntakeRun, error) {
	return o.stage(ctx, shipmentID, StageQuality, operator, func(run *IntakeRun, sh *shipment.Shipment) error {
		if len(pallets) == 0 {
			return apperror.Validation("pallets", "at least one pallet is required")
		}
		entries, err := o.Weighing.ListByShipment(ctx, sh.ID)
		if err != nil {
			return err
		}
		net := weighbridge.Summarize(entries).TotalNetKg

		var accepted float64
		overall := quality.Approved
		for i := range pallets {
			in := pallets[i]
			in.ShipmentID = sh.ID
			in.Operator = operator
			if in.Product == "" {
				in.Product = sh.Product
			}
			if in.NetWeightKg == 0 && len(pallets) == 1 {
				in.NetWeightKg = net
			}

			qc, _, err := o.Quality.Check(ctx, in)
			if err != nil {
				return err
			}
			accepted += qc.AcceptedWeightKg
			switch {
			case qc.Overall == quality.Rejected:
				overall = quality.Rejected
			case qc.Overall == quality.ConditionalApproval && overall == quality.Approved:
				overall = quality.ConditionalApproval
			}
		}

		run.QualityOverall = string(overall)
		run.AcceptedWeightKg = accepted
		if !overall.Passed() {
			return apperror.Conflict("pallets", "shipment was rejected at quality check")
		}
		return o.advance(ctx, sh, shipment.Processing, operator)
	})
}

// Grade stores one counting record per pallet, reusing a pallet's active
// record when it already has one, then regenerates the GRN and moves the
// shipment to Receiving.
func (o *Orchestrator) Grade(ctx context.Context, shipmentID types.SnowflakeID, pallets []grading.SubmitInput, operator string) (*IntakeRun, error) {
	return o.stage(ctx, shipmentID, StageGrade, operator, func(run *IntakeRun, sh *shipment.Shipment) error {
		if len(pallets) == 0 {
			return apperror.Validation("pallets", "at least one pallet is required")
		}
		seen := make(map[string]bool, len(pallets))
		for i, p := range pallets {
			if seen[p.PalletID] {
				return apperror.Validation(fmt.Sprintf("pallets[%d].pallet_id", i), "pallet listed twice")
			}
			seen[p.PalletID] = true
		}

		views := make([]*grading.RecordView, len(pallets))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.GradeWorkers)
		for i := range pallets {
			g.Go(func() error {
				in := pallets[i]
				in.ShipmentID = sh.ID
				in.SupplierCode = sh.SupplierCode
				in.Operator = operator

				existing, err := o.Grading.FindActiveByPallet(gctx, sh.ID, in.PalletID)
				if err == nil {
					views[i] = existing
					return nil
				}
				if !apperror.Is(err, apperror.KindNotFound) {
					return err
				}
				v, err := o.Grading.Submit(gctx, in)
				if err != nil {
					return prefix(err, fmt.Sprintf("pallets[%d]", i))
				}
				views[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		run.GradedBoxes, run.GradedWeightKg = 0, 0
		for _, v := range views {
			run.GradedBoxes += v.Summary.TotalBoxes
			run.GradedWeightKg += v.Summary.TotalWeightKg
		}

		entries, err := o.Weighing.ListByShipment(ctx, sh.ID)
		if err != nil {
			return err
		}
		if _, err := o.GRN.Generate(ctx, sh.ID, sh.Varieties(), entries, operator); err != nil {
			return err
		}
		return o.advance(ctx, sh, shipment.Receiving, operator)
	})
}

// Reconcile compares declared and measured weight for the shipment and moves
// it to Preparing_for_Dispatch.
func (o *Orchestrator) Reconcile(ctx context.Context, shipmentID types.SnowflakeID, operator string) (*IntakeRun, error) {
	return o.stage(ctx, shipmentID, StageReconcile, operator, func(run *IntakeRun, sh *shipment.Shipment) error {
		entries, err := o.Weighing.ListByShipment(ctx, sh.ID)
		if err != nil {
			return err
		}
		r := weighbridge.Summarize(entries)
		run.TotalNetKg = r.TotalNetKg
		run.TotalDeclaredKg = r.TotalDeclaredKg
		run.DiscrepancyRate = r.DiscrepancyRate

		o.Activity.Emit(activity.New(operator, "intake.reconciliation", "ok", sh.ID.String(),
			fmt.Sprintf("declared %.2f kg, net %.2f kg, discrepancy %.2f%%", r.TotalDeclaredKg, r.TotalNetKg, r.DiscrepancyRate)))
		return o.advance(ctx, sh, shipment.PreparingForDispatch, operator)
	})
}

type RunInput struct {
	Entries  []weighbridge.EntryInput `json:"entries"`
	Quality  []quality.CheckInput     `json:"quality"`
	Pallets  []grading.SubmitInput    `json:"pallets"`
	Operator string                   `json:"-"`
}

// Run executes the remaining stages in order and stops at the first failure.
// Stages already done are skipped, so Run can be retried after a pause.
func (o *Orchestrator) Run(ctx context.Context, shipmentID types.SnowflakeID, in RunInput) (*IntakeRun, error) {
	steps := []struct {
		stage Stage
		exec  func() (*IntakeRun, error)
	}{
		{StageWeigh, func() (*IntakeRun, error) { return o.Weigh(ctx, shipmentID, in.Entries, in.Operator) }},
		{StageQuality, func() (*IntakeRun, error) { return o.QualityCheck(ctx, shipmentID, in.Quality, in.Operator) }},
		{StageGrade, func() (*IntakeRun, error) { return o.Grade(ctx, shipmentID, in.Pallets, in.Operator) }},
		{StageReconcile, func() (*IntakeRun, error) { return o.Reconcile(ctx, shipmentID, in.Operator) }},
	}

	run, err := o.Runs.GetByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		if run.Status(step.stage) == Done {
			continue
		}
		if run, err = step.exec(); err != nil {
			return run, err
		}
	}
	return run, nil
}

// stage runs exec when stage is not yet done and every earlier stage is.
// Outcomes are recorded on the run; records exec stored before failing stay.
// Stages other than the quality check hold the run lock of the shipment, so
// concurrent calls for one shipment execute them once. The quality check
// waits on the diagnosis service and relies on pallet dedupe instead.
func (o *Orchestrator) stage(ctx context.Context, shipmentID types.SnowflakeID, stage Stage, operator string,
	exec func(run *IntakeRun, sh *shipment.Shipment) error) (*IntakeRun, error) {

	if stage != StageQuality {
		unlock, err := o.Locker.Lock(ctx, "intake:"+shipmentID.String())
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	run, err := o.Runs.GetByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if run.Status(stage) == Done {
		return run, nil
	}
	for _, prev := range Stages {
		if prev == stage {
			break
		}
		if run.Status(prev) != Done {
			return run, apperror.Conflict("stage", fmt.Sprintf("%s must be done before %s", prev, stage))
		}
	}

	sh, err := o.Shipments.Get(ctx, shipmentID)
	if err != nil {
		return run, err
	}

	logger := o.Log.WithFields(logrus.Fields{"shipment": shipmentID.String(), "stage": stage})
	execErr := exec(run, sh)

	status := Done
	run.FailedStage, run.LastError = "", ""
	if execErr != nil {
		status = Failed
		if apperror.Is(execErr, apperror.KindUnavailable) {
			status = Paused
		}
		run.FailedStage, run.LastError = stage, execErr.Error()
	}
	run.set(stage, status)

	// the outcome is recorded even when the caller has gone away
	if err := o.Runs.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.WithError(err).Error("failed to save intake run")
		return run, errors.Join(execErr, err)
	}

	if execErr != nil {
		logger.WithError(execErr).WithField("status", status).Warn("intake stage did not complete")
	} else {
		logger.Info("intake stage done")
	}
	o.Activity.Emit(activity.New(operator, "intake."+string(stage), string(status), shipmentID.String(), run.LastError))
	return run, execErr
}

// advance moves the shipment to target unless it is already there or past it.
func (o *Orchestrator) advance(ctx context.Context, sh *shipment.Shipment, target shipment.Status, operator string) error {
	if sh.Status != shipment.Delayed && sh.Status.Rank() >= target.Rank() {
		return nil
	}
	_, err := o.Shipments.SetStatus(ctx, sh.ID, string(target), operator)
	return err
}

// prefix qualifies the field of a validation or inconsistency error with
// the position of the offending item.
func prefix(err error, at string) error {
	var e *apperror.Error
	if !errors.As(err, &e) || e.Field == "" {
		return err
	}
	c := *e
	c.Field = at + "." + e.Field
	return &c
}
