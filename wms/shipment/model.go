package shipment

import (
	"strings"
	"time"

	"intake-app/types"

	"gorm.io/gorm"
)

type Shipment struct {
	ID                types.SnowflakeID `json:"id" gorm:"primaryKey"`
	Reference         string            `json:"reference" gorm:"size:50;uniqueIndex"`
	SupplierCode      string            `json:"supplier_code" gorm:"size:50;index"`
	Product           string            `json:"product" gorm:"size:100"`
	DeclaredVarieties string            `json:"-" gorm:"size:255"`
	DeclaredWeightKg  *float64          `json:"declared_weight_kg" gorm:"default:null"`
	Status            Status            `json:"status" gorm:"size:30;index"`
	PreDelayStatus    Status            `json:"pre_delay_status,omitempty" gorm:"size:30"`
	StatusUpdatedAt   time.Time         `json:"status_updated_at"`

	AwaitingQCAt           *time.Time `json:"awaiting_qc_at"`
	ProcessingAt           *time.Time `json:"processing_at"`
	ReceivingAt            *time.Time `json:"receiving_at"`
	PreparingForDispatchAt *time.Time `json:"preparing_for_dispatch_at"`
	ReadyForDispatchAt     *time.Time `json:"ready_for_dispatch_at"`
	InTransitAt            *time.Time `json:"in_transit_at"`
	DeliveredAt            *time.Time `json:"delivered_at"`
	DelayedAt              *time.Time `json:"delayed_at"`

	CreatedBy string    `json:"created_by" gorm:"size:100"`
	UpdatedBy string    `json:"updated_by" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Shipment) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == 0 {
		s.ID = types.NewSnowflakeID()
	}
	return
}

func (s Shipment) Varieties() []string {
	if s.DeclaredVarieties == "" {
		return nil
	}
	return strings.Split(s.DeclaredVarieties, ",")
}

// stamp records when the shipment entered status.
func (s *Shipment) stamp(status Status, at time.Time) {
	s.StatusUpdatedAt = at
	t := at
	switch status {
	case AwaitingQC:
		s.AwaitingQCAt = &t
	case Processing:
		s.ProcessingAt = &t
	case Receiving:
		s.ReceivingAt = &t
	case PreparingForDispatch:
		s.PreparingForDispatchAt = &t
	case ReadyForDispatch:
		s.ReadyForDispatchAt = &t
	case InTransit:
		s.InTransitAt = &t
	case Delivered:
		s.DeliveredAt = &t
	case Delayed:
		s.DelayedAt = &t
	}
}

// StatusChange is the audit row written for every status change.
type StatusChange struct {
	ID         types.SnowflakeID `json:"id" gorm:"primaryKey"`
	ShipmentID types.SnowflakeID `json:"shipment_id" gorm:"index"`
	From       Status            `json:"from" gorm:"column:from_status;size:30"`
	To         Status            `json:"to" gorm:"column:to_status;size:30"`
	Override   bool              `json:"override"`
	Reason     string            `json:"reason"`
	Actor      string            `json:"actor" gorm:"size:100"`
	At         time.Time         `json:"at"`
}

func (c *StatusChange) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == 0 {
		c.ID = types.NewSnowflakeID()
	}
	return
}
