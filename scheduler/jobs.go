package scheduler

import (
	"context"
	"log"
	"time"

	"crypto_tracker_backend/config"

	"github.com/go-co-op/gocron"
)

// CycleRunner is the orchestrator entry point both triggers invoke
type CycleRunner interface {
	RunCycle(ctx context.Context)
}

// Scheduler manages the scheduled refresh jobs
type Scheduler struct {
	cron          *gocron.Scheduler
	refresh       CycleRunner
	dailyAt       string
	intervalHours int
}

// NewScheduler creates a new scheduler instance. The calendar trigger fires
// in the configured timezone; an unknown timezone falls back to UTC.
func NewScheduler(refresh CycleRunner, cfg *config.Config) *Scheduler {
	location, err := time.LoadLocation(cfg.ScheduleTimezone)
	if err != nil {
		log.Printf("Unknown timezone %q, falling back to UTC: %v", cfg.ScheduleTimezone, err)
		location = time.UTC
	}

	return &Scheduler{
		cron:          gocron.NewScheduler(location),
		refresh:       refresh,
		dailyAt:       cfg.DailyUpdateTime,
		intervalHours: cfg.UpdateIntervalHours,
	}
}

// Start starts all scheduled jobs and runs an initial refresh so the store
// has fresh data right after boot
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	// Full refresh daily at the configured local time
	if _, err := s.cron.Every(1).Day().At(s.dailyAt).Do(func() {
		s.runCycle()
	}); err != nil {
		log.Printf("Failed to schedule daily refresh at %q: %v", s.dailyAt, err)
	}

	// Backup refresh every N hours in case the daily trigger was missed
	if _, err := s.cron.Every(s.intervalHours).Hours().Do(func() {
		s.runCycle()
	}); err != nil {
		log.Printf("Failed to schedule backup refresh every %dh: %v", s.intervalHours, err)
	}

	s.cron.StartAsync()
	log.Printf("Scheduler started: daily at %s, backup every %dh", s.dailyAt, s.intervalHours)

	go s.runCycle()
}

// Stop stops the scheduler. No further triggers fire after it returns; a
// cycle already in progress is allowed to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runCycle() {
	start := time.Now()
	log.Printf("Running scheduled database update at %s", start.Format("2006-01-02 15:04:05"))
	s.refresh.RunCycle(context.Background())
	log.Printf("Scheduled database update finished at %s", time.Now().Format("2006-01-02 15:04:05"))
}
