package stocktake

import (
	"context"
	"fmt"
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

func batch(n int) []LineInput {
	lines := make([]LineInput, n)
	for i := range lines {
		lines[i] = LineInput{ItemID: fmt.Sprintf("ITEM-%02d", i), Expected: 10, Counted: float64(10 + i%2)}
	}
	return lines
}

func histories(t *testing.T) map[string]History {
	return map[string]History{
		"gorm":   NewGormHistory(dbtest.Open(t, &Record{}, &Line{})),
		"memory": NewMemoryHistory(),
	}
}

func TestHistory_EvictsOldestBeyondLimit(t *testing.T) {
	for name, h := range histories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var ids []string
			for i := 0; i < 5; i++ {
				s, err := Summarize(batch(i + 1))
				require.NoError(t, err)
				r := newRecord("op", "cold-room-1", time.Now().UTC(), batch(i+1), s)
				require.NoError(t, h.Create(ctx, r, 3))
				ids = append(ids, r.ID.String())
			}

			recent, err := h.ListRecent(ctx, 10)
			require.NoError(t, err)
			require.Len(t, recent, 3)
			assert.Equal(t, ids[4], recent[0].ID.String())
			assert.Equal(t, ids[2], recent[2].ID.String())

			recent, err = h.ListRecent(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, recent, 2)

			_, err = h.Get(ctx, recent[0].ID)
			require.NoError(t, err)
		})
	}
}

func TestGormHistory_EvictionRemovesLines(t *testing.T) {
	db := dbtest.Open(t, &Record{}, &Line{})
	h := NewGormHistory(db)
	ctx := context.Background()

	first := newRecord("op", "", time.Now().UTC(), batch(4), Summary{TotalItems: 4})
	require.NoError(t, h.Create(ctx, first, 1))
	second := newRecord("op", "", time.Now().UTC(), batch(2), Summary{TotalItems: 2})
	require.NoError(t, h.Create(ctx, second, 1))

	var lines int64
	require.NoError(t, db.Model(&Line{}).Count(&lines).Error)
	assert.Equal(t, int64(2), lines)

	_, err := h.Get(ctx, first.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	got, err := h.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "ITEM-00", got.Lines[0].ItemID)
	assert.Equal(t, batch(2), got.Inputs())
}

func TestService_SubmitIsAllOrNothing(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sink := activity.NewMemorySink()
	h := NewMemoryHistory()
	svc := NewService(h, 2, sink, logger)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{Lines: []LineInput{{ItemID: "A"}, {ItemID: "A"}}, Operator: "op"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = svc.Submit(ctx, SubmitInput{Operator: "op"})
	assert.Equal(t, "lines", apperror.FieldOf(err))

	recent, err := svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recent)

	rec, err := svc.Submit(ctx, SubmitInput{Lines: batch(5), Operator: "op"})
	require.NoError(t, err)
	assert.Equal(t, Summary{TotalItems: 5, ExactMatches: 3, Variances: 2, AverageVariance: 1}, rec.Summary())
	assert.Equal(t, []string{"stocktake.submit"}, sink.Actions())

	for i := 0; i < 3; i++ {
		_, err = svc.Submit(ctx, SubmitInput{Lines: batch(1), Operator: "op"})
		require.NoError(t, err)
	}
	recent, err = svc.ListRecent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
