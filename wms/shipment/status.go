// Package shipment owns the lifecycle of a received shipment: a fixed set of
// statuses, the transitions between them and the per-shipment write lock.
package shipment

import (
	"fmt"
	"slices"

	"intake-app/apperror"
)

type Status string

const (
	AwaitingQC           Status = "Awaiting_QC"
	Processing           Status = "Processing"
	Receiving            Status = "Receiving"
	PreparingForDispatch Status = "Preparing_for_Dispatch"
	ReadyForDispatch     Status = "Ready_for_Dispatch"
	InTransit            Status = "In_Transit"
	Delivered            Status = "Delivered"
	Delayed              Status = "Delayed"
)

// HappyPath lists the regular statuses in lifecycle order.
var HappyPath = []Status{
	AwaitingQC,
	Processing,
	Receiving,
	PreparingForDispatch,
	ReadyForDispatch,
	InTransit,
	Delivered,
}

// All is every legal status value.
var All = append(slices.Clone(HappyPath), Delayed)

// ParseStatus accepts exactly one of the enumerated values. No case or
// whitespace folding is applied.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !slices.Contains(All, st) {
		return "", apperror.Validation("status", fmt.Sprintf("%q is not a shipment status", s))
	}
	return st, nil
}

// Rank is the position of s on the happy path, or -1 for Delayed.
func (s Status) Rank() int {
	return slices.Index(HappyPath, s)
}

func (s Status) Terminal() bool {
	return s == Delivered
}

func (s Status) String() string {
	return string(s)
}
