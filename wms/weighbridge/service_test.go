package weighbridge

import (
	"context"
	"io"
	"testing"
	"time"

	"intake-app/apperror"
	"intake-app/database/dbtest"
	"intake-app/wms/activity"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *WeightEntryRepository, *activity.MemorySink) {
	t.Helper()
	db := dbtest.Open(t, &WeightEntry{})
	repo := NewWeightEntryRepository(db)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sink := activity.NewMemorySink()
	svc := NewService(repo, sink, logger)
	svc.now = func() time.Time { return *at("2026-03-02T14:30:00Z") }
	return svc, repo, sink
}

func TestRepository_ListInWindowMatchesReconcile(t *testing.T) {
	_, repo, _ := newTestService(t)
	ctx := context.Background()

	rows := []*WeightEntry{
		{SupplierCode: "S1", DeclaredWeightKg: kg(1000), NetWeightKg: 950, CapturedAt: at("2026-03-02T08:00:00Z"), CreatedAt: *at("2026-03-02T08:00:05Z")},
		{SupplierCode: "S1", NetWeightKg: 500, CreatedAt: *at("2026-03-02T09:00:00Z")},
		{SupplierCode: "S2", DeclaredWeightKg: kg(10), NetWeightKg: 10, CapturedAt: at("2026-03-01T22:00:00Z"), CreatedAt: *at("2026-03-02T07:00:00Z")},
		{SupplierCode: "S3", DeclaredWeightKg: kg(10), NetWeightKg: 10, CreatedAt: *at("2026-03-03T07:00:00Z")},
	}
	for _, r := range rows {
		require.NoError(t, repo.Create(ctx, r))
	}

	entries, err := repo.ListInWindow(ctx, day)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	r := Reconcile(entries, day)
	assert.Equal(t, 2, r.Count)
	assert.Equal(t, 3.33, r.DiscrepancyRate)
}

func TestService_RecordAnnotateSupersede(t *testing.T) {
	svc, _, sink := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Record(ctx, EntryInput{
		ShipmentID:       55,
		SupplierCode:     "SUP01",
		DeclaredWeightKg: kg(1000),
		GrossWeightKg:    1250,
		TareWeightKg:     300,
		Crates:           42,
		Varieties:        []string{"Hass"},
		Operator:         "gate",
	})
	require.NoError(t, err)

	annotated, err := svc.Annotate(ctx, entry.ID, "tare re-checked", "supervisor")
	require.NoError(t, err)
	assert.Contains(t, annotated.Annotation, "tare re-checked")
	assert.Equal(t, 950.0, annotated.NetWeightKg)

	_, err = svc.Annotate(ctx, entry.ID, "   ", "supervisor")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	fixed, err := svc.Supersede(ctx, entry.ID, EntryInput{
		SupplierCode:     "SUP01",
		DeclaredWeightKg: kg(1000),
		GrossWeightKg:    1250,
		TareWeightKg:     280,
		Crates:           42,
		Operator:         "supervisor",
	})
	require.NoError(t, err)
	assert.Equal(t, 970.0, fixed.NetWeightKg)
	assert.Equal(t, entry.ShipmentID, fixed.ShipmentID)

	list, err := svc.ListByShipment(ctx, 55)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fixed.ID, list[0].ID)

	_, err = svc.Supersede(ctx, entry.ID, EntryInput{SupplierCode: "SUP01"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	assert.Equal(t, []string{"weighbridge.record", "weighbridge.annotate", "weighbridge.supersede"}, sink.Actions())
}

func TestService_ResolveWindow(t *testing.T) {
	svc, _, _ := newTestService(t)

	w, err := svc.ResolveWindow("today", "", "")
	require.NoError(t, err)
	assert.Equal(t, day, w)

	w, err = svc.ResolveWindow("", "2026-03-01T00:00:00Z", "2026-03-01T06:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, w.To.Sub(w.From))

	_, err = svc.ResolveWindow("fortnight", "", "")
	assert.Equal(t, "window", apperror.FieldOf(err))

	_, err = svc.ResolveWindow("", "yesterday", "2026-03-01T06:00:00Z")
	assert.Equal(t, "from", apperror.FieldOf(err))

	_, err = svc.Reconcile(context.Background(), Window{From: day.To, To: day.From}, "op")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestNewWeightEntry_ZeroCaptureTimeFallsBackToCreation(t *testing.T) {
	_, repo, _ := newTestService(t)
	ctx := context.Background()

	entry, err := NewWeightEntry(EntryInput{
		SupplierCode: "SUP01",
		NetWeightKg:  kg(400),
		CapturedAt:   &time.Time{},
	})
	require.NoError(t, err)
	assert.Nil(t, entry.CapturedAt)

	entry.CreatedAt = *at("2026-03-02T10:00:00Z")
	require.NoError(t, repo.Create(ctx, entry))
	assert.Equal(t, 1, Reconcile([]WeightEntry{*entry}, day).Count)

	listed, err := repo.ListInWindow(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 1, Reconcile(listed, day).Count)
}

func TestService_RecordBatchIsAllOrNothing(t *testing.T) {
	svc, _, sink := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordBatch(ctx, []EntryInput{
		{ShipmentID: 9, SupplierCode: "SUP01", NetWeightKg: kg(300)},
		{ShipmentID: 9, SupplierCode: "SUP01", GrossWeightKg: 100, TareWeightKg: 200},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, "net_weight_kg", apperror.FieldOf(err))

	list, err := svc.ListByShipment(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, list)

	stored, err := svc.RecordBatch(ctx, []EntryInput{
		{ShipmentID: 9, SupplierCode: "SUP01", NetWeightKg: kg(300)},
		{ShipmentID: 9, SupplierCode: "SUP01", GrossWeightKg: 700, TareWeightKg: 200},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)

	list, err = svc.ListByShipment(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, []string{"weighbridge.record", "weighbridge.record"}, sink.Actions())
}
