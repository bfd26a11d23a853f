package activity

import (
	"time"

	"intake-app/types"

	"gorm.io/gorm"
)

// ActivityLog is the persisted form of an Event.
type ActivityLog struct {
	ID         types.SnowflakeID `json:"id" gorm:"primaryKey"`
	EventID    string            `json:"event_id" gorm:"size:36;uniqueIndex"`
	Actor      string            `json:"actor" gorm:"size:100"`
	Action     string            `json:"action" gorm:"size:100;index"`
	Status     string            `json:"status" gorm:"size:50"`
	Reference  string            `json:"reference" gorm:"size:100;index"`
	Detail     string            `json:"detail"`
	OccurredAt time.Time         `json:"occurred_at" gorm:"index"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == 0 {
		a.ID = types.NewSnowflakeID()
	}
	return
}

func fromEvent(e Event) ActivityLog {
	return ActivityLog{
		EventID:    e.ID.String(),
		Actor:      e.Actor,
		Action:     e.Action,
		Status:     e.Status,
		Reference:  e.Reference,
		Detail:     e.Detail,
		OccurredAt: e.At,
	}
}
