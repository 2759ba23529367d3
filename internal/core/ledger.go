// Package core holds the wallet and meal-log domain model. Everything in
// this package is pure: the ledger arithmetic takes records in and returns
// records out, leaving persistence to the callers.
package core

import (
	"sort"
	"time"
)

// DailyTotal sums the prices of the selected meals. No selections cost nothing.
func DailyTotal(sel MealSelection, prices MealPrices) float64 {
	var total float64
	if sel.Tiffin {
		total += prices.Tiffin
	}
	if sel.Lunch {
		total += prices.Lunch
	}
	if sel.Dinner {
		total += prices.Dinner
	}
	return total
}

// NewWallet builds the wallet produced by a top-up. A top-up replaces the
// wallet wholesale: the balance resets to the funded amount instead of
// adding to whatever was left (monthly allowance model).
func NewWallet(amount float64, now time.Time) (Wallet, error) {
	if amount <= 0 {
		return Wallet{}, ErrInvalidAmount
	}
	return Wallet{TopupDate: now, TopupAmount: amount, CurrentBalance: amount}, nil
}

// ApplyDailyLog computes the financial effect of saving a day's meal
// selections. When the date was already logged, the previous amount is
// refunded first because the log is replaced, not added. Returns the
// upserted log and the updated wallet; neither input is mutated.
//
// Fails with ErrInsufficientBalance when the resulting balance would go
// negative, in which case the caller must leave both records untouched.
func ApplyDailyLog(w Wallet, existing *MealLog, date string, sel MealSelection, prices MealPrices, id string) (MealLog, Wallet, error) {
	if err := ValidateDate(date); err != nil {
		return MealLog{}, Wallet{}, err
	}

	total := DailyTotal(sel, prices)
	var previousSpend float64
	if existing != nil {
		previousSpend = existing.AmountSpent
		id = existing.ID
	}

	newBalance := w.CurrentBalance - total + previousSpend
	if newBalance < 0 {
		return MealLog{}, Wallet{}, ErrInsufficientBalance
	}

	log := MealLog{
		ID:                 id,
		Date:               date,
		HadTiffin:          sel.Tiffin,
		HadLunch:           sel.Lunch,
		HadDinner:          sel.Dinner,
		AmountSpent:        total,
		WalletBalanceAfter: newBalance,
	}
	w.CurrentBalance = newBalance
	return log, w, nil
}

// SortLogsByDateDesc orders logs newest first, the order every listing
// surface presents them in. YYYY-MM-DD strings compare correctly as text.
func SortLogsByDateDesc(logs []MealLog) {
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date > logs[j].Date
	})
}

// UpsertLogByDate replaces the entry sharing the log's date or appends a
// new one, never producing duplicate dates.
func UpsertLogByDate(logs []MealLog, log MealLog) []MealLog {
	for i := range logs {
		if logs[i].Date == log.Date {
			logs[i] = log
			return logs
		}
	}
	return append(logs, log)
}

// FindLogByDate returns the entry for the given date, or nil.
func FindLogByDate(logs []MealLog, date string) *MealLog {
	for i := range logs {
		if logs[i].Date == date {
			return &logs[i]
		}
	}
	return nil
}
