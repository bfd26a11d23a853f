package quality

import (
	"context"
	"fmt"
	"strings"

	"intake-app/apperror"
	"intake-app/types"
	"intake-app/wms/activity"

	"github.com/sirupsen/logrus"
)

type Service struct {
	repo          Repository
	diagnoser     Diagnoser
	dedupePallets bool
	activity      activity.Sink
	log           *logrus.Logger
}

// NewService builds the quality service. With dedupePallets set, a second
// check of the same pallet returns the stored result instead of a new one.
func NewService(repo Repository, diagnoser Diagnoser, dedupePallets bool, sink activity.Sink, logger *logrus.Logger) *Service {
	return &Service{
		repo:          repo,
		diagnoser:     diagnoser,
		dedupePallets: dedupePallets,
		activity:      sink,
		log:           logger,
	}
}

// Check assesses one pallet and stores the result. The second return value
// is false when an earlier check of the pallet was returned instead.
func (s *Service) Check(ctx context.Context, in CheckInput) (*QualityCheck, bool, error) {
	in.PalletID = strings.TrimSpace(in.PalletID)
	if err := apperror.ValidateStruct(in); err != nil {
		return nil, false, err
	}
	logger := s.log.WithFields(logrus.Fields{"shipment": in.ShipmentID.String(), "pallet": in.PalletID})

	if s.dedupePallets {
		existing, err := s.repo.FindByPallet(ctx, in.ShipmentID, in.PalletID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			logger.Info("pallet already checked; returning stored result")
			return existing, false, nil
		}
	}

	var a Assessment
	if in.Manual != nil {
		if in.Manual.Score < 0 || in.Manual.Score > 100 {
			return nil, false, apperror.Validationf("manual_assessment.score", "score %.1f is outside 0-100", in.Manual.Score)
		}
		a = *in.Manual
	} else {
		var err error
		a, err = s.diagnoser.Diagnose(ctx, Request{Product: in.Product, ImageRef: in.ImageRef, Notes: in.Notes})
		if err != nil {
			if !apperror.Is(err, apperror.KindUnavailable) {
				err = apperror.Unavailable("quality check unavailable", err)
			}
			logger.WithError(err).Warn("quality diagnosis failed")
			s.activity.Emit(activity.New(in.Operator, "quality.check", "unavailable", in.ShipmentID.String(), in.PalletID))
			return nil, false, err
		}
	}

	r, err := Evaluate(in, a)
	if err != nil {
		s.activity.Emit(activity.New(in.Operator, "quality.check", "rejected", in.ShipmentID.String(), err.Error()))
		return nil, false, err
	}

	qc := &QualityCheck{
		ShipmentID:       in.ShipmentID,
		PalletID:         in.PalletID,
		Product:          firstNonEmpty(in.Product, a.Product),
		DeclaredWeightKg: in.DeclaredWeightKg,
		NetWeightKg:      in.NetWeightKg,
		RejectedWeightKg: r.RejectedWeightKg,
		AcceptedWeightKg: r.AcceptedWeightKg,
		Packaging:        r.Packaging,
		Freshness:        r.Freshness,
		Seals:            r.Seals,
		Overall:          r.Overall,
		Score:            a.Score,
		Edible:           a.Edible,
		Confidence:       a.Confidence,
		Ripeness:         a.Ripeness,
		Damage:           a.Damage,
		Manual:           in.Manual != nil,
		Notes:            in.Notes,
		CheckedBy:        in.Operator,
	}
	if err := s.repo.Create(ctx, qc); err != nil {
		return nil, false, err
	}

	logger.WithFields(logrus.Fields{"overall": qc.Overall, "accepted_kg": qc.AcceptedWeightKg}).Info("quality check recorded")
	s.activity.Emit(activity.New(in.Operator, "quality.check", string(qc.Overall), in.ShipmentID.String(),
		fmt.Sprintf("pallet %s: accepted %.2f kg, rejected %.2f kg", qc.PalletID, qc.AcceptedWeightKg, qc.RejectedWeightKg)))
	return qc, true, nil
}

func (s *Service) Get(ctx context.Context, id types.SnowflakeID) (*QualityCheck, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]QualityCheck, error) {
	return s.repo.ListByShipment(ctx, shipmentID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
