package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultRecomputeSchedule runs the recompute every minute so waiting
// orders escalate as they age.
const DefaultRecomputeSchedule = "* * * * *"

// PriorityRecomputeJob manages the scheduled re-evaluation of order
// priorities.
type PriorityRecomputeJob struct {
	handler  commands.RecomputeOrderPrioritiesCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewPriorityRecomputeJob creates a new job for priority recomputation.
// Uses RecomputeOrderPrioritiesCommandHandler to refresh every open order
// on the given cron schedule; an empty schedule falls back to the default.
func NewPriorityRecomputeJob(
	handler commands.RecomputeOrderPrioritiesCommandHandler,
	schedule string,
	logger *slog.Logger,
) *PriorityRecomputeJob {
	if schedule == "" {
		schedule = DefaultRecomputeSchedule
	}
	return &PriorityRecomputeJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "priority_recompute_job"),
	}
}

// Start begins the priority recompute job on its schedule.
func (j *PriorityRecomputeJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		cmd := commands.NewRecomputeOrderPrioritiesCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Priority recompute job failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Priority recompute job started", "schedule", j.schedule)
	return nil
}

// Stop stops the priority recompute job.
func (j *PriorityRecomputeJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Priority recompute job stopped")
}
