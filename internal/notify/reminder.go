// Package notify schedules the daily meal reminders. Delivery is behind
// the Notifier interface; actually raising an OS notification is platform
// glue outside this service, so the default notifier just logs.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/SDhanushDev/fet/internal/core"
)

// Notifier delivers one reminder.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}

// LogNotifier writes reminders to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, title, body string) {
	slog.InfoContext(ctx, "Meal reminder", "title", title, "body", body)
}

type reminder struct {
	title string
	body  string
	time  func(core.NotificationSettings) string
}

// The three fixed reminders and where their firing time comes from.
var reminders = []reminder{
	{"Tiffin Time!", "Did you have your tiffin today?", func(s core.NotificationSettings) string { return s.TiffinTime }},
	{"Lunch Time!", "Time to log your lunch!", func(s core.NotificationSettings) string { return s.LunchTime }},
	{"Dinner Time!", "Don't forget to log your dinner!", func(s core.NotificationSettings) string { return s.DinnerTime }},
}

// Scheduler arranges the recurring reminders with cron. Safe for
// concurrent use; settings saved through the API reschedule per request.
type Scheduler struct {
	cron     *cron.Cron
	notifier Notifier

	mu      sync.Mutex
	entries []cron.EntryID
}

func NewScheduler(notifier Notifier) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Scheduler{cron: cron.New(), notifier: notifier}
}

// Schedule replaces all reminder entries with ones matching the settings.
// Disabled settings clear the schedule.
func (s *Scheduler) Schedule(ctx context.Context, settings core.NotificationSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = s.entries[:0]

	if !settings.Enabled {
		slog.InfoContext(ctx, "Meal reminders disabled")
		return nil
	}

	for _, r := range reminders {
		r := r
		spec, err := cronSpec(r.time(settings))
		if err != nil {
			return err
		}
		id, err := s.cron.AddFunc(spec, func() {
			s.notifier.Notify(context.Background(), r.title, r.body)
		})
		if err != nil {
			return fmt.Errorf("schedule reminder %q: %w", r.title, err)
		}
		s.entries = append(s.entries, id)

		slog.InfoContext(ctx, "Reminder scheduled", "title", r.title, "spec", spec)
	}
	return nil
}

// Entries reports how many reminders are currently scheduled.
func (s *Scheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running reminder to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronSpec converts an HH:MM time of day into a daily cron expression.
func cronSpec(tod string) (string, error) {
	if err := core.ValidateTimeOfDay(tod); err != nil {
		return "", err
	}
	parts := strings.SplitN(tod, ":", 2)
	return fmt.Sprintf("%s %s * * *", parts[1], parts[0]), nil
}
