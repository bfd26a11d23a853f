package grn

import (
	"context"
	"fmt"

	"intake-app/types"
	"intake-app/wms/activity"
	"intake-app/wms/weighbridge"

	"github.com/sirupsen/logrus"
)

type Service struct {
	repo     Repository
	activity activity.Sink
	log      *logrus.Logger
}

func NewService(repo Repository, sink activity.Sink, logger *logrus.Logger) *Service {
	return &Service{repo: repo, activity: sink, log: logger}
}

// Generate apportions the shipment's weight entries and stores the result,
// replacing any earlier GRN of the shipment. entries are only read.
func (s *Service) Generate(ctx context.Context, shipmentID types.SnowflakeID, declared []string,
	entries []weighbridge.WeightEntry, operator string) ([]GRNLine, error) {

	sources := SourcesFromEntries(entries)
	if err := CheckDeclared(declared, sources); err != nil {
		return nil, err
	}
	lines := Apportion(sources)
	if err := CheckBalance(lines, sources); err != nil {
		return nil, err
	}

	rows := make([]GRNLine, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, GRNLine{
			ShipmentID: shipmentID,
			Variety:    l.Variety,
			WeightKg:   l.WeightKg,
			Crates:     l.Crates,
			SourceAt:   l.SourceAt,
			CreatedBy:  operator,
		})
	}
	if err := s.repo.Replace(ctx, shipmentID, rows); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"shipment": shipmentID.String(),
		"lines":    len(rows),
	}).Info("goods received note generated")
	s.activity.Emit(activity.New(operator, "grn.generate", "ok", shipmentID.String(),
		fmt.Sprintf("%d lines from %d entries", len(rows), len(sources))))
	return rows, nil
}

func (s *Service) ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]GRNLine, error) {
	return s.repo.ListByShipment(ctx, shipmentID)
}
