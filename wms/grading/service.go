package grading

import (
	"context"
	"fmt"
	"slices"
	"time"

	"intake-app/apperror"
	"intake-app/config"
	"intake-app/types"
	"intake-app/wms/activity"

	"github.com/sirupsen/logrus"
)

type SubmitInput struct {
	ShipmentID    types.SnowflakeID `json:"shipment_id"`
	SupplierCode  string            `json:"supplier_code" validate:"required"`
	PalletID      string            `json:"pallet_id" validate:"required"`
	TotalWeightKg float64           `json:"total_weight_kg" validate:"gte=0"`
	Cells         []Cell            `json:"cells"`
	Operator      string            `json:"-"`
}

// RecordView pairs a stored record with totals recomputed from its cells.
type RecordView struct {
	Record  *CountingRecord `json:"record"`
	Summary Summary         `json:"summary"`
}

type Service struct {
	repo     Repository
	ref      config.GradingConfig
	activity activity.Sink
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(repo Repository, ref config.GradingConfig, sink activity.Sink, logger *logrus.Logger) *Service {
	return &Service{repo: repo, ref: ref, activity: sink, log: logger, now: time.Now}
}

func (s *Service) UnitWeights() UnitWeights {
	return UnitWeights(s.ref.UnitWeights)
}

// Summarize validates cells against the reference data and aggregates them.
func (s *Service) Summarize(cells []Cell) (Summary, error) {
	m, err := s.matrix(cells)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(m, s.UnitWeights())
}

func (s *Service) matrix(cells []Cell) (Matrix, error) {
	for i, c := range cells {
		if len(s.ref.Varieties) > 0 && !slices.Contains(s.ref.Varieties, c.Variety) {
			return nil, apperror.Validationf(fmt.Sprintf("cells[%d].variety", i), "unknown variety %q", c.Variety)
		}
		if len(s.ref.Classes) > 0 && !slices.Contains(s.ref.Classes, c.Class) {
			return nil, apperror.Validationf(fmt.Sprintf("cells[%d].class", i), "unknown class %d", c.Class)
		}
		if len(s.ref.SizeCodes) > 0 && !slices.Contains(s.ref.SizeCodes, c.SizeCode) {
			return nil, apperror.Validationf(fmt.Sprintf("cells[%d].size_code", i), "unknown size code %d", c.SizeCode)
		}
	}
	return MatrixFromCells(cells)
}

func (s *Service) build(in SubmitInput) (*CountingRecord, Summary, error) {
	if err := apperror.ValidateStruct(in); err != nil {
		return nil, Summary{}, err
	}
	m, err := s.matrix(in.Cells)
	if err != nil {
		return nil, Summary{}, err
	}
	summary, err := Summarize(m, s.UnitWeights())
	if err != nil {
		return nil, Summary{}, err
	}
	rec := &CountingRecord{
		ShipmentID:    in.ShipmentID,
		SupplierCode:  in.SupplierCode,
		PalletID:      in.PalletID,
		TotalWeightKg: in.TotalWeightKg,
		SubmittedBy:   in.Operator,
		SubmittedAt:   s.now(),
		Cells:         cellsFromMatrix(m),
	}
	return rec, summary, nil
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*RecordView, error) {
	rec, summary, err := s.build(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"pallet":   rec.PalletID,
		"supplier": rec.SupplierCode,
		"boxes":    summary.TotalBoxes,
	}).Info("counting record submitted")
	s.activity.Emit(activity.New(in.Operator, "grading.submit", "ok", rec.PalletID,
		fmt.Sprintf("%d boxes, %.2f kg", summary.TotalBoxes, summary.TotalWeightKg)))

	return &RecordView{Record: rec, Summary: summary}, nil
}

// Correct stores a replacement for a submitted record; the original stays
// readable and is flagged superseded.
func (s *Service) Correct(ctx context.Context, originalID types.SnowflakeID, in SubmitInput) (*RecordView, error) {
	original, err := s.repo.Get(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original.Superseded {
		return nil, apperror.Conflict("id", "counting record already superseded")
	}
	in.ShipmentID = original.ShipmentID
	if in.PalletID == "" {
		in.PalletID = original.PalletID
	}
	if in.SupplierCode == "" {
		in.SupplierCode = original.SupplierCode
	}

	rec, summary, err := s.build(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Supersede(ctx, originalID, rec); err != nil {
		return nil, err
	}

	s.activity.Emit(activity.New(in.Operator, "grading.correct", "ok", rec.PalletID,
		fmt.Sprintf("supersedes %s", originalID)))
	return &RecordView{Record: rec, Summary: summary}, nil
}

func (s *Service) Get(ctx context.Context, id types.SnowflakeID) (*RecordView, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(rec)
}

func (s *Service) FindActiveByPallet(ctx context.Context, shipmentID types.SnowflakeID, palletID string) (*RecordView, error) {
	rec, err := s.repo.FindActiveByPallet(ctx, shipmentID, palletID)
	if err != nil {
		return nil, err
	}
	return s.view(rec)
}

func (s *Service) ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]RecordView, error) {
	recs, err := s.repo.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	views := make([]RecordView, 0, len(recs))
	for i := range recs {
		v, err := s.view(&recs[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *Service) view(rec *CountingRecord) (*RecordView, error) {
	summary, err := Summarize(rec.Matrix(), s.UnitWeights())
	if err != nil {
		return nil, err
	}
	return &RecordView{Record: rec, Summary: summary}, nil
}
