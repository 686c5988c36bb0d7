package preview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/protodoc/protodoc/internal/logfields"
)

// Refresher periodically re-syncs the source repository and rebuilds the
// page on a fixed interval.
type Refresher struct {
	scheduler gocron.Scheduler
}

// NewRefresher schedules refresh on the given interval.
func NewRefresher(interval time.Duration, refresh func(ctx context.Context) error) (*Refresher, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			slog.Info("Scheduled repository refresh")
			if err := refresh(ctx); err != nil {
				slog.Error("Scheduled refresh failed", logfields.Error(err))
			}
		}),
		gocron.WithName("repository-refresh"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh job: %w", err)
	}

	return &Refresher{scheduler: s}, nil
}

// Start begins the schedule.
func (r *Refresher) Start() { r.scheduler.Start() }

// Stop shuts the scheduler down.
func (r *Refresher) Stop() error { return r.scheduler.Shutdown() }
