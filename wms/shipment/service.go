package shipment

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

type CreateInput struct {
	Reference        string   `json:"reference"`
	SupplierCode     string   `json:"supplier_code" validate:"required"`
	Product          string   `json:"product" validate:"required"`
	Varieties        []string `json:"varieties"`
	DeclaredWeightKg *float64 `json:"declared_weight_kg" validate:"omitempty,gte=0"`
	Operator         string   `json:"-"`
}

type Service struct {
	repo     Repository
	locker   Locker
	machine  Machine
	activity activity.Sink
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(repo Repository, locker Locker, machine Machine, sink activity.Sink, logger *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		locker:   locker,
		machine:  machine,
		activity: sink,
		log:      logger,
		now:      time.Now,
	}
}

func (s *Service) Machine() Machine { return s.machine }

// Create registers a shipment in Awaiting_QC.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Shipment, error) {
	if err := apperror.ValidateStruct(in); err != nil {
		return nil, err
	}
	varieties := make([]string, 0, len(in.Varieties))
	for _, v := range in.Varieties {
		v = strings.TrimSpace(v)
		if strings.Contains(v, ",") {
			return nil, apperror.Validation("varieties", "variety names cannot contain commas")
		}
		if v != "" {
			varieties = append(varieties, v)
		}
	}

	at := s.now().UTC()
	sh := &Shipment{
		Reference:         strings.TrimSpace(in.Reference),
		SupplierCode:      in.SupplierCode,
		Product:           in.Product,
		DeclaredVarieties: strings.Join(varieties, ","),
		DeclaredWeightKg:  in.DeclaredWeightKg,
		Status:            AwaitingQC,
		CreatedBy:         in.Operator,
		UpdatedBy:         in.Operator,
	}
	sh.ID = types.NewSnowflakeID()
	if sh.Reference == "" {
		sh.Reference = "SHP-" + sh.ID.String()
	}
	sh.stamp(AwaitingQC, at)

	first := &StatusChange{To: AwaitingQC, Actor: in.Operator, At: at}
	if err := s.repo.Create(ctx, sh, first); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"shipment": sh.ID.String(), "supplier": sh.SupplierCode}).Info("shipment checked in")
	s.activity.Emit(activity.New(in.Operator, "shipment.create", string(AwaitingQC), sh.ID.String(), sh.Reference))
	return sh, nil
}

func (s *Service) Get(ctx context.Context, id types.SnowflakeID) (*Shipment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, limit int) ([]Shipment, error) {
	var st Status
	if status != "" {
		var err error
		if st, err = ParseStatus(status); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, st, limit)
}

func (s *Service) History(ctx context.Context, id types.SnowflakeID) ([]StatusChange, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

// SetStatus moves the shipment to status if the machine allows it.
func (s *Service) SetStatus(ctx context.Context, id types.SnowflakeID, status, actor string) (*Shipment, error) {
	to, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	sh, from, err := s.transition(ctx, id, to, actor, "", false)
	if err != nil {
		s.activity.Emit(activity.New(actor, "shipment.status", "rejected", id.String(), fmt.Sprintf("-> %s: %v", to, err)))
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"shipment": id.String(),
		"from":     from,
		"to":       to,
	}).Info("shipment status changed")
	s.activity.Emit(activity.New(actor, "shipment.status", string(to), id.String(), fmt.Sprintf("%s -> %s", from, to)))
	return sh, nil
}

// Override sets any legal status, bypassing the machine. In strict mode it is
// the only way to move a shipment backwards or out of Delivered, and in both
// modes the only way out of an absorbing Delayed.
func (s *Service) Override(ctx context.Context, id types.SnowflakeID, status, reason, actor string) (*Shipment, error) {
	to, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("reason", "an override needs a reason")
	}

	sh, from, err := s.transition(ctx, id, to, actor, reason, true)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"shipment": id.String(),
		"from":     from,
		"to":       to,
		"actor":    actor,
		"reason":   reason,
	}).Warn("shipment status overridden")
	s.activity.Emit(activity.New(actor, "shipment.override", string(to), id.String(),
		fmt.Sprintf("%s -> %s: %s", from, to, reason)))
	return sh, nil
}

// transition holds the shipment lock only for the read-check-write cycle.
func (s *Service) transition(ctx context.Context, id types.SnowflakeID, to Status, actor, reason string, override bool) (*Shipment, Status, error) {
	unlock, err := s.locker.Lock(ctx, id.String())
	if err != nil {
		return nil, "", err
	}
	defer unlock()

	sh, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	from := sh.Status

	if override {
		if from == to {
			return nil, from, apperror.Conflict("status", fmt.Sprintf("shipment is already %s", from))
		}
	} else if err := s.machine.Check(from, sh.PreDelayStatus, to); err != nil {
		return nil, from, err
	}

	at := s.now().UTC()
	sh.PreDelayStatus = Apply(from, sh.PreDelayStatus, to)
	sh.Status = to
	sh.UpdatedBy = actor
	sh.stamp(to, at)

	change := &StatusChange{
		ShipmentID: id,
		From:       from,
		To:         to,
		Override:   override,
		Reason:     reason,
		Actor:      actor,
		At:         at,
	}
	if err := s.repo.SaveStatus(ctx, sh, change); err != nil {
		return nil, from, err
	}
	return sh, from, nil
}
