package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJanitorSchedule runs the idle sweep every ten minutes
const DefaultJanitorSchedule = "@every 10m"

// Janitor periodically expires sessions idle for longer than MaxIdle
type Janitor struct {
	manager *Manager
	maxIdle time.Duration
	cron    *cron.Cron
}

// NewJanitor schedules CleanupExpiredSessions on a cron schedule such as
// "@every 10m" or "*/5 * * * *". The janitor is idle until Start.
func NewJanitor(m *Manager, schedule string, maxIdle time.Duration) (*Janitor, error) {
	if maxIdle <= 0 {
		return nil, fmt.Errorf("max idle must be positive, got %s", maxIdle)
	}
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}

	j := &Janitor{
		manager: m,
		maxIdle: maxIdle,
		cron:    cron.New(),
	}
	if _, err := j.cron.AddFunc(schedule, j.Sweep); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Sweep expires idle sessions once
func (j *Janitor) Sweep() {
	removed := j.manager.CleanupExpiredSessions(j.maxIdle)
	if removed > 0 {
		j.manager.logger.Info().Int("removed", removed).Dur("max_idle", j.maxIdle).Msg("expired idle sessions")
	}
}

// Run starts the schedule and blocks until ctx is cancelled. Running sweeps
// finish before Run returns.
func (j *Janitor) Run(ctx context.Context) {
	j.cron.Start()
	<-ctx.Done()
	<-j.cron.Stop().Done()
}
