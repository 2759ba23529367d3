// Package storage persists the five ledger records behind a small
// key-value port. Each record (and the whole meal-log collection) is one
// opaque JSON value under a fixed key; the store has no query capability,
// so upsert-by-date matching is the ledger service's job.
package storage

import (
	"context"

	"github.com/SDhanushDev/fet/internal/core"
)

// Record keys. These double as the wire-level storage keys, so they must
// stay byte-compatible with existing installations.
const (
	KeyWallet               = "wallet"
	KeyMealLogs             = "mealLogs"
	KeyMealPrices           = "mealPrices"
	KeyRegularMealPlan      = "regularMealPlan"
	KeyNotificationSettings = "notificationSettings"
)

// RecordKeys lists every key the store owns, in the order Reset clears them.
var RecordKeys = []string{KeyWallet, KeyMealLogs, KeyMealPrices, KeyRegularMealPlan, KeyNotificationSettings}

// Store is the persistence port the ledger depends on.
//
// GetWallet reports an uninitialized wallet as (nil, nil); the other
// getters fall back to their documented defaults when nothing was saved
// yet (empty collection for logs).
type Store interface {
	GetWallet(ctx context.Context) (*core.Wallet, error)
	SaveWallet(ctx context.Context, w core.Wallet) error

	GetMealLogs(ctx context.Context) ([]core.MealLog, error)
	SaveMealLogs(ctx context.Context, logs []core.MealLog) error

	GetMealPrices(ctx context.Context) (core.MealPrices, error)
	SaveMealPrices(ctx context.Context, p core.MealPrices) error

	GetRegularMealPlan(ctx context.Context) (core.RegularMealPlan, error)
	SaveRegularMealPlan(ctx context.Context, plan core.RegularMealPlan) error

	GetNotificationSettings(ctx context.Context) (core.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, s core.NotificationSettings) error

	// Reset deletes every record, returning the store to first-run state.
	Reset(ctx context.Context) error

	Close() error
}
