package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/SDhanushDev/fet/internal/amqp"
	"github.com/SDhanushDev/fet/internal/core"
	"github.com/SDhanushDev/fet/internal/storage"
)

func newTestService(store storage.Store) *Service {
	s := New(store, nil)
	s.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	n := 0
	s.newID = func() string { n++; return fmt.Sprintf("id-%d", n) }
	return s
}

func TestTopUp(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())

	w, err := s.TopUp(ctx, 500)
	if err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if w.CurrentBalance != 500 || w.TopupAmount != 500 {
		t.Fatalf("unexpected wallet: %+v", w)
	}

	stored, err := s.Wallet(ctx)
	if err != nil || stored == nil {
		t.Fatalf("Wallet: %+v, %v", stored, err)
	}
	if stored.CurrentBalance != 500 {
		t.Fatalf("wallet not persisted: %+v", stored)
	}
}

func TestTopUpResetsBalance(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())

	if _, err := s.TopUp(ctx, 500); err != nil {
		t.Fatalf("first top-up: %v", err)
	}
	w, err := s.TopUp(ctx, 300)
	if err != nil {
		t.Fatalf("second top-up: %v", err)
	}
	if w.CurrentBalance != 300 {
		t.Fatalf("top-up must reset, not add: got %v, want 300", w.CurrentBalance)
	}
}

func TestTopUpInvalidAmount(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())

	for _, bad := range []float64{0, -50} {
		if _, err := s.TopUp(ctx, bad); !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", bad, err)
		}
	}
	if w, _ := s.Wallet(ctx); w != nil {
		t.Fatalf("failed top-up must not create a wallet: %+v", w)
	}
}

func TestCommitDailyLogWithoutWallet(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())

	_, _, err := s.CommitDailyLog(ctx, "2024-01-15", core.MealSelection{Lunch: true})
	if !errors.Is(err, core.ErrWalletNotInitialized) {
		t.Fatalf("expected ErrWalletNotInitialized, got %v", err)
	}
}

func TestCommitDailyLogEndToEnd(t *testing.T) {
	// Balance 1000, prices {0,45,40}: Lunch+Dinner on day one spends 85,
	// a free tiffin on day two spends nothing.
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := newTestService(store)

	if _, err := s.TopUp(ctx, 1000); err != nil {
		t.Fatalf("TopUp: %v", err)
	}

	log1, w, err := s.CommitDailyLog(ctx, "2024-01-01", core.MealSelection{Lunch: true, Dinner: true})
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if log1.AmountSpent != 85 || w.CurrentBalance != 915 {
		t.Fatalf("first commit: %+v, balance %v", log1, w.CurrentBalance)
	}

	log2, w, err := s.CommitDailyLog(ctx, "2024-01-02", core.MealSelection{Tiffin: true})
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if log2.AmountSpent != 0 || w.CurrentBalance != 915 {
		t.Fatalf("free tiffin must not change the balance: %+v, balance %v", log2, w.CurrentBalance)
	}

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalSpent != 85 || sum.DaysActive != 2 || sum.AverageDaily != 42.5 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestCommitDailyLogUpsertRefunds(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := newTestService(store)
	_ = store.SaveMealPrices(ctx, core.MealPrices{Tiffin: 10, Lunch: 20, Dinner: 15})

	if _, err := s.TopUp(ctx, 100); err != nil {
		t.Fatalf("TopUp: %v", err)
	}

	first, w, err := s.CommitDailyLog(ctx, "2024-01-15", core.MealSelection{Tiffin: true, Lunch: true})
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if w.CurrentBalance != 70 {
		t.Fatalf("after first commit: %v", w.CurrentBalance)
	}

	second, w, err := s.CommitDailyLog(ctx, "2024-01-15", core.MealSelection{Dinner: true})
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if w.CurrentBalance != 85 {
		t.Fatalf("re-log must refund previous spend: got %v, want 85", w.CurrentBalance)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert must keep the log id: %q vs %q", second.ID, first.ID)
	}

	logs, err := s.Logs(ctx)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("collection must hold one entry per date, got %d", len(logs))
	}
}

func TestCommitDailyLogInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := newTestService(store)

	if _, err := s.TopUp(ctx, 40); err != nil {
		t.Fatalf("TopUp: %v", err)
	}

	_, _, err := s.CommitDailyLog(ctx, "2024-01-15", core.MealSelection{Lunch: true})
	if !errors.Is(err, core.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// No partial write: wallet and log collection unchanged.
	w, _ := s.Wallet(ctx)
	if w.CurrentBalance != 40 {
		t.Fatalf("wallet must be untouched: %+v", w)
	}
	logs, _ := s.Logs(ctx)
	if len(logs) != 0 {
		t.Fatalf("log collection must be untouched: %+v", logs)
	}
}

func TestCommitDailyLogBadDate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())
	if _, err := s.TopUp(ctx, 100); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	_, _, err := s.CommitDailyLog(ctx, "15-01-2024", core.MealSelection{})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestLogsSortedDateDescending(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())
	if _, err := s.TopUp(ctx, 1000); err != nil {
		t.Fatalf("TopUp: %v", err)
	}

	for _, date := range []string{"2024-01-02", "2024-01-10", "2024-01-05"} {
		if _, _, err := s.CommitDailyLog(ctx, date, core.MealSelection{Dinner: true}); err != nil {
			t.Fatalf("commit %s: %v", date, err)
		}
	}

	logs, err := s.Logs(ctx)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	want := []string{"2024-01-10", "2024-01-05", "2024-01-02"}
	for i, w := range want {
		if logs[i].Date != w {
			t.Fatalf("position %d: got %s, want %s", i, logs[i].Date, w)
		}
	}
}

func TestUpdatePricesDoesNotRewriteHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())
	if _, err := s.TopUp(ctx, 1000); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if _, _, err := s.CommitDailyLog(ctx, "2024-01-01", core.MealSelection{Lunch: true}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := s.UpdatePrices(ctx, core.MealPrices{Tiffin: 0, Lunch: 60, Dinner: 40}); err != nil {
		t.Fatalf("UpdatePrices: %v", err)
	}

	logs, _ := s.Logs(ctx)
	if logs[0].AmountSpent != 45 {
		t.Fatalf("historical amountSpent must stay frozen: %v", logs[0].AmountSpent)
	}
	sum, _ := s.Summary(ctx)
	if sum.TotalSpent != 45 || sum.LunchSpent != 60 {
		t.Fatalf("summary must mix frozen total with live splits: %+v", sum)
	}
}

func TestUpdatePricesRejectsNegative(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())
	if err := s.UpdatePrices(ctx, core.MealPrices{Lunch: -5}); !errors.Is(err, core.ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
}

func TestSaveSettingsValidates(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())
	bad := core.NotificationSettings{TiffinTime: "09:30", LunchTime: "bad", DinnerTime: "21:00"}
	if err := s.SaveSettings(ctx, bad); !errors.Is(err, core.ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())
	if _, err := s.TopUp(ctx, 1000); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if _, _, err := s.CommitDailyLog(ctx, "2024-01-01", core.MealSelection{Lunch: true, Dinner: true}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	doc, err := s.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if doc == "" {
		t.Fatalf("empty document")
	}
	for _, want := range []string{"Date,Tiffin,Lunch,Dinner,Amount Spent,Wallet Balance", "2024-01-01,No,Yes,Yes,₹85,₹915", "--- SUMMARY ---", "--- CURRENT MEAL PRICES ---"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newTestService(storage.NewMemoryStore())
	if _, err := s.TopUp(ctx, 1000); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if w, _ := s.Wallet(ctx); w != nil {
		t.Fatalf("wallet must be gone after reset: %+v", w)
	}
}

type recordingPublisher struct {
	msgs []*amqp.LedgerEventMessage
	err  error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, msg *amqp.LedgerEventMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestEventsPublished(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := New(storage.NewMemoryStore(), pub)
	s.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "id" }

	if _, err := s.TopUp(ctx, 1000); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if _, _, err := s.CommitDailyLog(ctx, "2024-01-15", core.MealSelection{Dinner: true}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if len(pub.msgs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.msgs))
	}
	if pub.msgs[0].Kind != amqp.KindWalletTopUp || pub.msgs[1].Kind != amqp.KindLogCommitted {
		t.Fatalf("unexpected kinds: %s %s", pub.msgs[0].Kind, pub.msgs[1].Kind)
	}
}

func TestPublishFailureDoesNotFailCommit(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := New(storage.NewMemoryStore(), pub)
	s.now = time.Now
	s.newID = func() string { return "id" }

	if _, err := s.TopUp(ctx, 100); err != nil {
		t.Fatalf("top-up must survive publish failure: %v", err)
	}
	if _, _, err := s.CommitDailyLog(ctx, "2024-01-15", core.MealSelection{}); err != nil {
		t.Fatalf("commit must survive publish failure: %v", err)
	}
}
