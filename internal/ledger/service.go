// Package ledger orchestrates the wallet and the meal-log collection as
// one consistency unit over the persistence port.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SDhanushDev/fet/internal/amqp"
	"github.com/SDhanushDev/fet/internal/core"
	"github.com/SDhanushDev/fet/internal/export"
	"github.com/SDhanushDev/fet/internal/storage"
)

// EventPublisher announces committed ledger mutations to interested
// consumers (the backup worker). Optional.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// Service owns every balance-mutating operation. A single mutex serializes
// them: the app has exactly one interactive writer, and the underlying
// store has no transaction primitive, so the commit sequence (log write,
// then wallet write) must not interleave with another commit or top-up.
type Service struct {
	store  storage.Store
	events EventPublisher

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func New(store storage.Store, events EventPublisher) *Service {
	return &Service{
		store:  store,
		events: events,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// TopUp replaces the wallet wholesale: the balance resets to amount rather
// than adding to what was left. Fails with core.ErrInvalidAmount for
// non-positive amounts.
func (s *Service) TopUp(ctx context.Context, amount float64) (core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, err := core.NewWallet(amount, s.now())
	if err != nil {
		return core.Wallet{}, err
	}
	if err := s.store.SaveWallet(ctx, wallet); err != nil {
		return core.Wallet{}, fmt.Errorf("save wallet: %w", err)
	}

	slog.InfoContext(ctx, "Wallet topped up",
		"topup_amount", wallet.TopupAmount,
		"balance", wallet.CurrentBalance)

	s.publish(ctx, amqp.NewTopUpMessage(wallet))
	return wallet, nil
}

// CommitDailyLog computes and persists the financial effect of a day's
// meal selections. Re-logging an already-logged date refunds that day's
// previous spend before applying the new total. The log collection is
// written first and the wallet second; a failure at either step surfaces
// to the caller with no retry.
func (s *Service) CommitDailyLog(ctx context.Context, date string, sel core.MealSelection) (core.MealLog, core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, err := s.store.GetWallet(ctx)
	if err != nil {
		return core.MealLog{}, core.Wallet{}, fmt.Errorf("read wallet: %w", err)
	}
	if wallet == nil {
		return core.MealLog{}, core.Wallet{}, core.ErrWalletNotInitialized
	}

	prices, err := s.store.GetMealPrices(ctx)
	if err != nil {
		return core.MealLog{}, core.Wallet{}, fmt.Errorf("read prices: %w", err)
	}
	logs, err := s.store.GetMealLogs(ctx)
	if err != nil {
		return core.MealLog{}, core.Wallet{}, fmt.Errorf("read logs: %w", err)
	}

	existing := core.FindLogByDate(logs, date)
	log, updated, err := core.ApplyDailyLog(*wallet, existing, date, sel, prices, s.newID())
	if err != nil {
		return core.MealLog{}, core.Wallet{}, err
	}

	logs = core.UpsertLogByDate(logs, log)
	if err := s.store.SaveMealLogs(ctx, logs); err != nil {
		return core.MealLog{}, core.Wallet{}, fmt.Errorf("save logs: %w", err)
	}
	if err := s.store.SaveWallet(ctx, updated); err != nil {
		return core.MealLog{}, core.Wallet{}, fmt.Errorf("save wallet: %w", err)
	}

	slog.InfoContext(ctx, "Daily log committed",
		"date", log.Date,
		"amount_spent", log.AmountSpent,
		"balance", updated.CurrentBalance,
		"replaced", existing != nil)

	s.publish(ctx, amqp.NewLogCommittedMessage(log))
	return log, updated, nil
}

// CommitToday logs selections against the current date.
func (s *Service) CommitToday(ctx context.Context, sel core.MealSelection) (core.MealLog, core.Wallet, error) {
	return s.CommitDailyLog(ctx, core.FormatDate(s.now()), sel)
}

// Wallet returns the current wallet, or nil before the first top-up.
func (s *Service) Wallet(ctx context.Context) (*core.Wallet, error) {
	return s.store.GetWallet(ctx)
}

// Logs returns the full collection sorted newest first.
func (s *Service) Logs(ctx context.Context) ([]core.MealLog, error) {
	logs, err := s.store.GetMealLogs(ctx)
	if err != nil {
		return nil, err
	}
	core.SortLogsByDateDesc(logs)
	return logs, nil
}

// LogForDate returns the entry for a date, or nil when the date is unlogged.
func (s *Service) LogForDate(ctx context.Context, date string) (*core.MealLog, error) {
	if err := core.ValidateDate(date); err != nil {
		return nil, err
	}
	logs, err := s.store.GetMealLogs(ctx)
	if err != nil {
		return nil, err
	}
	return core.FindLogByDate(logs, date), nil
}

// TodayLog returns the entry for the current date, or nil.
func (s *Service) TodayLog(ctx context.Context) (*core.MealLog, error) {
	return s.LogForDate(ctx, core.FormatDate(s.now()))
}

// Summary aggregates the full collection against the current price table.
func (s *Service) Summary(ctx context.Context) (core.SpendingSummary, error) {
	logs, err := s.store.GetMealLogs(ctx)
	if err != nil {
		return core.SpendingSummary{}, err
	}
	prices, err := s.store.GetMealPrices(ctx)
	if err != nil {
		return core.SpendingSummary{}, err
	}
	return core.CalculateSummary(logs, prices), nil
}

func (s *Service) Prices(ctx context.Context) (core.MealPrices, error) {
	return s.store.GetMealPrices(ctx)
}

// UpdatePrices replaces the price table. Historical logs keep the
// amountSpent frozen at their save time.
func (s *Service) UpdatePrices(ctx context.Context, p core.MealPrices) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.store.SaveMealPrices(ctx, p)
}

func (s *Service) Plan(ctx context.Context) (core.RegularMealPlan, error) {
	return s.store.GetRegularMealPlan(ctx)
}

func (s *Service) SavePlan(ctx context.Context, plan core.RegularMealPlan) error {
	return s.store.SaveRegularMealPlan(ctx, plan)
}

func (s *Service) Settings(ctx context.Context) (core.NotificationSettings, error) {
	return s.store.GetNotificationSettings(ctx)
}

func (s *Service) SaveSettings(ctx context.Context, n core.NotificationSettings) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return s.store.SaveNotificationSettings(ctx, n)
}

// ExportCSV renders the whole ledger as the shareable CSV document.
func (s *Service) ExportCSV(ctx context.Context) (string, error) {
	logs, err := s.Logs(ctx)
	if err != nil {
		return "", err
	}
	prices, err := s.store.GetMealPrices(ctx)
	if err != nil {
		return "", err
	}
	return export.CSV(logs, prices, core.CalculateSummary(logs, prices)), nil
}

// Reset clears every record, returning the app to first-run state.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Reset(ctx)
}

func (s *Service) Close() error {
	return s.store.Close()
}

// publish forwards an event when a publisher is configured. Event delivery
// never fails the ledger operation that produced it.
func (s *Service) publish(ctx context.Context, msg *amqp.LedgerEventMessage) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"error", err,
			"kind", msg.Kind)
	}
}
