package weighbridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"intake-app/apperror"
	"intake-app/types"
	"intake-app/wms/activity"

	"github.com/sirupsen/logrus"
)

type Service struct {
	repo     Repository
	activity activity.Sink
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(repo Repository, sink activity.Sink, logger *logrus.Logger) *Service {
	return &Service{repo: repo, activity: sink, log: logger, now: time.Now}
}

func (s *Service) Record(ctx context.Context, in EntryInput) (*WeightEntry, error) {
	entry, err := NewWeightEntry(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"supplier": entry.SupplierCode,
		"shipment": entry.ShipmentID.String(),
		"net_kg":   entry.NetWeightKg,
	}).Info("weight entry recorded")
	s.activity.Emit(activity.New(in.Operator, "weighbridge.record", "ok", entry.ID.String(),
		fmt.Sprintf("net %.2f kg, %d crates", entry.NetWeightKg, entry.Crates)))
	return entry, nil
}

// RecordBatch validates every input and then stores the entries in one
// transaction, so a failed batch leaves nothing behind.
func (s *Service) RecordBatch(ctx context.Context, ins []EntryInput) ([]*WeightEntry, error) {
	entries := make([]*WeightEntry, 0, len(ins))
	for i, in := range ins {
		entry, err := NewWeightEntry(in)
		if err != nil {
			return nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		entries = append(entries, entry)
	}
	if err := s.repo.CreateBatch(ctx, entries); err != nil {
		return nil, err
	}

	var net float64
	for i, e := range entries {
		net += e.NetWeightKg
		s.activity.Emit(activity.New(ins[i].Operator, "weighbridge.record", "ok", e.ID.String(),
			fmt.Sprintf("net %.2f kg, %d crates", e.NetWeightKg, e.Crates)))
	}
	s.log.WithFields(logrus.Fields{"entries": len(entries), "net_kg": net}).Info("weight entries recorded")
	return entries, nil
}

func (s *Service) Get(ctx context.Context, id types.SnowflakeID) (*WeightEntry, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Annotate(ctx context.Context, id types.SnowflakeID, note, operator string) (*WeightEntry, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperror.Validation("note", "annotation must not be empty")
	}
	stamped := fmt.Sprintf("[%s %s] %s", s.now().Format(time.RFC3339), operator, note)
	entry, err := s.repo.Annotate(ctx, id, stamped)
	if err != nil {
		return nil, err
	}
	s.activity.Emit(activity.New(operator, "weighbridge.annotate", "ok", id.String(), note))
	return entry, nil
}

// Supersede records a corrected measurement that replaces entry id.
func (s *Service) Supersede(ctx context.Context, id types.SnowflakeID, in EntryInput) (*WeightEntry, error) {
	original, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ShipmentID == 0 {
		in.ShipmentID = original.ShipmentID
	}
	replacement, err := NewWeightEntry(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Supersede(ctx, id, replacement); err != nil {
		return nil, err
	}
	s.activity.Emit(activity.New(in.Operator, "weighbridge.supersede", "ok", replacement.ID.String(),
		"supersedes "+id.String()))
	return replacement, nil
}

func (s *Service) ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]WeightEntry, error) {
	return s.repo.ListByShipment(ctx, shipmentID)
}

// Reconcile loads the entries of w and reconciles them.
func (s *Service) Reconcile(ctx context.Context, w Window, operator string) (Reconciliation, error) {
	if !w.From.Before(w.To) {
		return Reconciliation{}, apperror.Validation("window", "from must be before to")
	}
	entries, err := s.repo.ListInWindow(ctx, w)
	if err != nil {
		return Reconciliation{}, err
	}
	r := Reconcile(entries, w)
	s.activity.Emit(activity.New(operator, "weighbridge.reconcile", "ok",
		w.From.Format(time.RFC3339)+"/"+w.To.Format(time.RFC3339),
		fmt.Sprintf("%d entries, discrepancy %.2f%%", r.Count, r.DiscrepancyRate)))
	return r, nil
}

// ResolveWindow turns the named windows "today" and "last_hour" or an
// explicit RFC3339 from/to pair into a Window.
func (s *Service) ResolveWindow(name, from, to string) (Window, error) {
	now := s.now()
	switch name {
	case "today":
		return Today(now), nil
	case "last_hour":
		return LastHour(now), nil
	case "":
	default:
		return Window{}, apperror.Validationf("window", "unknown window %q", name)
	}
	if from == "" || to == "" {
		return Today(now), nil
	}
	f, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return Window{}, apperror.Validation("from", "must be RFC3339")
	}
	t, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return Window{}, apperror.Validation("to", "must be RFC3339")
	}
	return Window{From: f, To: t}, nil
}
