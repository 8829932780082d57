package metrics

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SnapshotFunc collects one component's current stats as structured log fields.
type SnapshotFunc func() map[string]interface{}

// Reporter periodically logs component snapshots on cron schedules.
// It complements the Prometheus registry for deployments that scrape nothing
// and want stats in the log stream instead.
type Reporter struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewReporter creates a reporter logging through the given logger.
// Schedules use the standard 5-field cron format plus the @every descriptors.
func NewReporter(logger zerolog.Logger) *Reporter {
	return &Reporter{
		cron:   cron.New(),
		logger: logger,
	}
}

// Report registers collect to run on the given schedule. The collected fields
// are emitted as a single structured "stats" event tagged with the component
// name.
func (r *Reporter) Report(schedule, component string, collect SnapshotFunc) error {
	_, err := r.cron.AddFunc(schedule, func() {
		event := r.logger.Info().Str("component", component)
		for key, value := range collect() {
			event = event.Interface(key, value)
		}
		event.Msg("stats")
	})
	if err != nil {
		return fmt.Errorf("schedule %q for %s: %w", schedule, component, err)
	}
	return nil
}

// Start begins running scheduled reports in their own goroutine.
func (r *Reporter) Start() {
	r.cron.Start()
}

// Stop stops scheduling. The returned context is done once any in-flight
// report has finished.
func (r *Reporter) Stop() context.Context {
	return r.cron.Stop()
}
