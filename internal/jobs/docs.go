// Package jobs provides scheduled background tasks for the fulfillment system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for order prioritization.
//
// # Available Jobs
//
// 1. PriorityRecomputeJob - Periodically re-evaluates the priority of every
// open order, feeding order age into the scorer so waiting orders escalate
// over time.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(recomputeHandler, schedule, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The recompute schedule is a standard five-field cron expression, taken
// from configuration and defaulting to "* * * * *" (once per minute).
// Age-based escalation moves in whole-day increments, so a tighter schedule
// would only add database load.
//
// # Error Handling
//
// - Individual orders that lose an optimistic-concurrency race are skipped
// inside the handler; the next run picks them up.
// - Any other failure is logged and the run is abandoned; the schedule is
// not interrupted.
package jobs
