package principal

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/freebsdly/ops-console/pkg/async"
	"github.com/freebsdly/ops-console/pkg/observability"
)

// refreshWorkers bounds concurrent backend fetches during a refresh sweep.
const refreshWorkers = 4

// Refresher periodically re-fetches snapshots for every cached user so
// permission changes made in the backend propagate without a logout.
type Refresher struct {
	provider *CachingProvider
	logger   *observability.Logger
	cron     *cron.Cron
	timeout  time.Duration
}

// NewRefresher builds a refresher over the given provider. schedule is a
// cron expression; "@every 5m" is a typical choice.
func NewRefresher(provider *CachingProvider, logger *observability.Logger, schedule string, timeout time.Duration) (*Refresher, error) {
	r := &Refresher{
		provider: provider,
		logger:   logger,
		cron:     cron.New(),
		timeout:  timeout,
	}
	if _, err := r.cron.AddFunc(schedule, r.refreshAll); err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins the refresh schedule.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// refreshAll reloads every cached user's snapshot. A failed reload keeps the
// previous snapshot in place; stale data beats an empty principal here since
// denial semantics are handled by the guard's remote authority anyway.
func (r *Refresher) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	users := r.provider.CachedUsers()
	errs := async.Batch(ctx, users, refreshWorkers, "principal refresh", r.timeout, r.logger,
		func(ctx context.Context, userID string) error {
			if _, err := r.provider.Refresh(ctx, userID); err != nil {
				r.logger.WithError(err).WithField("user_id", userID).
					Warn("periodic principal refresh failed, keeping previous snapshot")
			}
			return nil
		})
	for _, err := range errs {
		r.logger.WithError(err).Warn("principal refresh worker failed")
	}
}
