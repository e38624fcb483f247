package background

import (
	"context"
	"log"
	"time"

	"crately/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler owns the background job lifecycle.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	stockAlerts   *jobs.StockAlertService
	inviteSweeper *jobs.InviteSweeper
}

// NewJobScheduler creates a scheduler with all jobs registered but not yet
// running.
func NewJobScheduler(stockAlerts *jobs.StockAlertService, inviteSweeper *jobs.InviteSweeper) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		stockAlerts:   stockAlerts,
		inviteSweeper: inviteSweeper,
	}
	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler.
func (js *JobScheduler) Start() {
	log.Println("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler.
func (js *JobScheduler) Stop() error {
	log.Println("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.stockAlerts.ScheduledLowStockCheck, context.Background()),
		gocron.WithName("low-stock-scan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		log.Printf("Failed to create low-stock job: %v", err)
	}

	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.inviteSweeper.SweepExpiredInvites, context.Background()),
		gocron.WithName("invite-sweep"),
	); err != nil {
		log.Printf("Failed to create invite sweep job: %v", err)
	}
}
