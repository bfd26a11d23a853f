package stocktake

import (
	"context"
	"fmt"
	"time"

	"intake-app/types"
	"intake-app/wms/activity"

	"github.com/sirupsen/logrus"
)

type SubmitInput struct {
	Location string      `json:"location"`
	Lines    []LineInput `json:"lines"`
	Operator string      `json:"-"`
}

type Service struct {
	history  History
	limit    int
	activity activity.Sink
	log      *logrus.Logger
	now      func() time.Time
}

// NewService keeps at most limit batches in history.
func NewService(history History, limit int, sink activity.Sink, logger *logrus.Logger) *Service {
	return &Service{
		history:  history,
		limit:    limit,
		activity: sink,
		log:      logger,
		now:      time.Now,
	}
}

// Submit records the batch as one unit. A rejected batch stores nothing.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Record, error) {
	summary, err := Summarize(in.Lines)
	if err != nil {
		return nil, err
	}

	record := newRecord(in.Operator, in.Location, s.now().UTC(), in.Lines, summary)
	if err := s.history.Create(ctx, record, s.limit); err != nil {
		s.log.WithError(err).WithField("operator", in.Operator).Error("failed to store stock take")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"stock_take": record.ID.String(),
		"items":      summary.TotalItems,
		"variances":  summary.Variances,
	}).Info("stock take recorded")
	s.activity.Emit(activity.New(in.Operator, "stocktake.submit", "ok", record.ID.String(),
		fmt.Sprintf("%d items, %d variances, avg %.2f", summary.TotalItems, summary.Variances, summary.AverageVariance)))
	return record, nil
}

// ListRecent returns up to k batches, newest first.
func (s *Service) ListRecent(ctx context.Context, k int) ([]Record, error) {
	if k <= 0 || (s.limit > 0 && k > s.limit) {
		k = s.limit
	}
	return s.history.ListRecent(ctx, k)
}

func (s *Service) Get(ctx context.Context, id types.SnowflakeID) (*Record, error) {
	return s.history.Get(ctx, id)
}
