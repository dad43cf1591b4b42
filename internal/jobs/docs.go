// Package jobs provides scheduled background tasks for the platform.
//
// Jobs are cron-based, built on github.com/robfig/cron/v3, and managed
// through JobManager:
//
//	jobManager := jobs.NewJobManager(uowFactory, dispatchHandler, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// DispatchSweepJob runs every thirty seconds and retries partner assignment
// for paid orders that are still unassigned. It treats "no partner
// available" as a normal outcome and stays quiet about it; everything else
// is logged.
package jobs
