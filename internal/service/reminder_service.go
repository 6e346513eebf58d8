package service

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
)

// ReminderService runs a scheduled console digest of entries whose target
// date has arrived. It is read-only: entries only change state through
// user-triggered operations, never from this job.
type ReminderService struct {
	entryService *EntryService
	cron         *cron.Cron
}

// NewReminderService creates a new ReminderService.
func NewReminderService(entryService *EntryService) *ReminderService {
	return &ReminderService{
		entryService: entryService,
	}
}

// Start schedules the digest with the given cron expression. An empty
// expression or "off" disables the job.
func (s *ReminderService) Start(schedule string) error {
	if schedule == "" || schedule == "off" {
		log.Println("Reminder digest disabled")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, s.LogDueEntries); err != nil {
		return err
	}
	s.cron.Start()

	log.Printf("Reminder digest scheduled: %s", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running digest to finish.
func (s *ReminderService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// LogDueEntries logs every non-completed entry whose repurchase window has
// opened. Also called directly by tests and at startup.
func (s *ReminderService) LogDueEntries() {
	entries, err := s.entryService.List(model.FilterReady)
	if err != nil {
		log.Printf("Reminder digest failed: %v", err)
		return
	}

	if len(entries) == 0 {
		return
	}

	log.Printf("Reminder: %d entries ready for repurchase", len(entries))
	for _, e := range entries {
		log.Printf("  account %s (%s) target %s, %d days past",
			e.Account, e.Tickers, e.TargetDate.Format("2006-01-02"), -e.DaysRemaining)
	}
}
