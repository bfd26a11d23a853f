package stocktake

import (
	"time"

	"intake-app/types"

	"gorm.io/gorm"
)

// Record is one submitted stock-take batch. The summary columns are written
// once together with the lines and never updated.
type Record struct {
	ID              types.SnowflakeID `json:"id" gorm:"primaryKey"`
	Operator        string            `json:"operator" gorm:"size:100"`
	Location        string            `json:"location" gorm:"size:50"`
	TakenAt         time.Time         `json:"taken_at"`
	TotalItems      int               `json:"total_items"`
	ExactMatches    int               `json:"exact_matches"`
	Variances       int               `json:"variances"`
	AverageVariance float64           `json:"average_variance"`
	Lines           []Line            `json:"lines" gorm:"foreignKey:RecordID"`
	CreatedAt       time.Time         `json:"created_at"`
}

type Line struct {
	ID       types.SnowflakeID `json:"id" gorm:"primaryKey"`
	RecordID types.SnowflakeID `json:"record_id" gorm:"index"`
	Seq      int               `json:"seq"`
	ItemID   string            `json:"item_id" gorm:"size:100"`
	Expected float64           `json:"expected"`
	Counted  float64           `json:"counted"`
	Variance float64           `json:"variance"`
}

func (Record) TableName() string { return "stock_take_records" }
func (Line) TableName() string   { return "stock_take_lines" }

func (r *Record) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == 0 {
		r.ID = types.NewSnowflakeID()
	}
	return
}

func (l *Line) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == 0 {
		l.ID = types.NewSnowflakeID()
	}
	return
}

func (r Record) Summary() Summary {
	return Summary{
		TotalItems:      r.TotalItems,
		ExactMatches:    r.ExactMatches,
		Variances:       r.Variances,
		AverageVariance: r.AverageVariance,
	}
}

// Inputs returns the batch lines in submission order.
func (r Record) Inputs() []LineInput {
	in := make([]LineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		in = append(in, LineInput{ItemID: l.ItemID, Expected: l.Expected, Counted: l.Counted})
	}
	return in
}

func newRecord(operator, location string, at time.Time, lines []LineInput, s Summary) *Record {
	r := &Record{
		Operator:        operator,
		Location:        location,
		TakenAt:         at,
		TotalItems:      s.TotalItems,
		ExactMatches:    s.ExactMatches,
		Variances:       s.Variances,
		AverageVariance: s.AverageVariance,
		Lines:           make([]Line, 0, len(lines)),
	}
	for i, l := range lines {
		r.Lines = append(r.Lines, Line{
			Seq:      i,
			ItemID:   l.ItemID,
			Expected: l.Expected,
			Counted:  l.Counted,
			Variance: l.Variance(),
		})
	}
	return r
}
