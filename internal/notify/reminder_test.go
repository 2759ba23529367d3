package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/SDhanushDev/fet/internal/core"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *recordingNotifier) Notify(_ context.Context, title, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
}

func TestCronSpec(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:30", "30 09 * * *", true},
		{"14:00", "00 14 * * *", true},
		{"21:05", "05 21 * * *", true},
		{"24:00", "", false},
		{"noon", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := cronSpec(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q: got %q (err=%v), want %q", tc.in, got, err, tc.want)
			}
		} else if err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestScheduleEnabled(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})
	if err := s.Schedule(context.Background(), core.DefaultNotificationSettings()); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if s.Entries() != 3 {
		t.Fatalf("expected 3 reminders, got %d", s.Entries())
	}
}

func TestScheduleDisabledClears(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})
	if err := s.Schedule(context.Background(), core.DefaultNotificationSettings()); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	off := core.DefaultNotificationSettings()
	off.Enabled = false
	if err := s.Schedule(context.Background(), off); err != nil {
		t.Fatalf("Schedule disabled: %v", err)
	}
	if s.Entries() != 0 {
		t.Fatalf("disabled settings must clear the schedule, got %d entries", s.Entries())
	}
}

func TestScheduleReplacesEntries(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})
	settings := core.DefaultNotificationSettings()
	if err := s.Schedule(context.Background(), settings); err != nil {
		t.Fatalf("first Schedule: %v", err)
	}
	settings.LunchTime = "13:15"
	if err := s.Schedule(context.Background(), settings); err != nil {
		t.Fatalf("second Schedule: %v", err)
	}
	if s.Entries() != 3 {
		t.Fatalf("rescheduling must replace, not accumulate: got %d", s.Entries())
	}
}

func TestScheduleConcurrent(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})
	settings := core.DefaultNotificationSettings()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Schedule(context.Background(), settings); err != nil {
				t.Errorf("Schedule: %v", err)
			}
		}()
	}
	wg.Wait()

	if s.Entries() != 3 {
		t.Fatalf("concurrent rescheduling must still end at 3 entries, got %d", s.Entries())
	}
	if got := len(s.cron.Entries()); got != 3 {
		t.Fatalf("cron must hold exactly 3 entries, got %d", got)
	}
}

func TestScheduleInvalidTime(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})
	bad := core.NotificationSettings{TiffinTime: "09:30", LunchTime: "99:99", DinnerTime: "21:00", Enabled: true}
	if err := s.Schedule(context.Background(), bad); err == nil {
		t.Fatalf("expected error for invalid time")
	}
}

func TestDefaultNotifier(t *testing.T) {
	s := NewScheduler(nil)
	if s.notifier == nil {
		t.Fatalf("nil notifier must fall back to LogNotifier")
	}
}
