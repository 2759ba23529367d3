package storage

import (
	"context"
	"testing"
	"time"

	"github.com/SDhanushDev/fet/internal/core"
)

func TestMemoryStoreDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	w, err := s.GetWallet(ctx)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if w != nil {
		t.Fatalf("uninitialized wallet must be nil, got %+v", w)
	}

	logs, err := s.GetMealLogs(ctx)
	if err != nil {
		t.Fatalf("GetMealLogs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected empty collection, got %d", len(logs))
	}

	p, err := s.GetMealPrices(ctx)
	if err != nil {
		t.Fatalf("GetMealPrices: %v", err)
	}
	if p != core.DefaultMealPrices() {
		t.Fatalf("expected default prices, got %+v", p)
	}

	plan, err := s.GetRegularMealPlan(ctx)
	if err != nil {
		t.Fatalf("GetRegularMealPlan: %v", err)
	}
	if plan != core.DefaultRegularMealPlan() {
		t.Fatalf("expected default plan, got %+v", plan)
	}

	n, err := s.GetNotificationSettings(ctx)
	if err != nil {
		t.Fatalf("GetNotificationSettings: %v", err)
	}
	if n != core.DefaultNotificationSettings() {
		t.Fatalf("expected default settings, got %+v", n)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	wallet := core.Wallet{TopupDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), TopupAmount: 1000, CurrentBalance: 915}
	if err := s.SaveWallet(ctx, wallet); err != nil {
		t.Fatalf("SaveWallet: %v", err)
	}
	got, err := s.GetWallet(ctx)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if got == nil || got.CurrentBalance != 915 || got.TopupAmount != 1000 {
		t.Fatalf("wallet round trip: %+v", got)
	}

	logs := []core.MealLog{
		{ID: "1", Date: "2024-01-01", HadLunch: true, HadDinner: true, AmountSpent: 85, WalletBalanceAfter: 915},
	}
	if err := s.SaveMealLogs(ctx, logs); err != nil {
		t.Fatalf("SaveMealLogs: %v", err)
	}
	gotLogs, err := s.GetMealLogs(ctx)
	if err != nil {
		t.Fatalf("GetMealLogs: %v", err)
	}
	if len(gotLogs) != 1 || gotLogs[0] != logs[0] {
		t.Fatalf("log round trip: %+v", gotLogs)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.SaveWallet(ctx, core.Wallet{CurrentBalance: 100})
	_ = s.SaveMealLogs(ctx, []core.MealLog{{ID: "1", Date: "2024-01-01"}})
	_ = s.SaveMealPrices(ctx, core.MealPrices{Lunch: 99})

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	w, _ := s.GetWallet(ctx)
	if w != nil {
		t.Fatalf("wallet should be gone after reset: %+v", w)
	}
	logs, _ := s.GetMealLogs(ctx)
	if len(logs) != 0 {
		t.Fatalf("logs should be gone after reset: %+v", logs)
	}
	p, _ := s.GetMealPrices(ctx)
	if p != core.DefaultMealPrices() {
		t.Fatalf("prices should fall back to defaults after reset: %+v", p)
	}
}
