package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/services"
)

// DispatchSweepJob retries partner assignment for paid orders that are still
// unassigned. Dispatch runs inline when a payment settles, but it can come
// up empty when no partner is free; the sweep picks those orders up once a
// partner becomes available again.
type DispatchSweepJob struct {
	uowFactory commands.OrderUoWFactory
	dispatcher commands.OrderDispatcher
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewDispatchSweepJob creates a job that re-dispatches stranded orders.
func NewDispatchSweepJob(
	uowFactory commands.OrderUoWFactory,
	dispatcher commands.OrderDispatcher,
	logger *slog.Logger,
) *DispatchSweepJob {
	return &DispatchSweepJob{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "dispatch_sweep_job"),
	}
}

// Start begins the sweep, running every thirty seconds.
func (j *DispatchSweepJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", j.sweep)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Dispatch sweep job started (running every 30 seconds)")
	return nil
}

// Stop stops the sweep job.
func (j *DispatchSweepJob) Stop() {
	j.cron.Stop()
	j.logger.Info("Dispatch sweep job stopped")
}

func (j *DispatchSweepJob) sweep() {
	ctx := context.Background()

	stranded, err := j.uowFactory.Create().OrderRepository().GetUnassignedPaid(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list unassigned paid orders", "error", err)
		return
	}

	for _, aggregate := range stranded {
		cmd, err := commands.NewDispatchOrderCommand(aggregate.ID())
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to build dispatch command",
				"order_id", aggregate.ID().String(), "error", err)
			continue
		}

		if _, err := j.dispatcher.Handle(ctx, cmd); err != nil {
			// No free partner is the normal case here; the next sweep
			// will try again.
			if !errors.Is(err, services.ErrNoPartnerAvailable) {
				j.logger.ErrorContext(ctx, "Dispatch sweep failed for order",
					"order_id", aggregate.ID().String(), "error", err)
			}
		}
	}
}
