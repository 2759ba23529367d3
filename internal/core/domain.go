package core

import (
	"errors"
	"time"
)

// DateLayout is the calendar-date format used as the natural key for meal
// logs. All dates in storage and over the wire use this layout.
const DateLayout = "2006-01-02"

type (
	// Wallet is the single prepaid balance record. It is replaced wholesale
	// on every top-up; no top-up history is kept beyond the most recent.
	Wallet struct {
		TopupDate      time.Time `json:"topupDate"`
		TopupAmount    float64   `json:"topupAmount"`
		CurrentBalance float64   `json:"currentBalance"`
	}

	// MealLog records one day's meal selections and their financial effect.
	// Date is the natural key: the log collection never holds two entries
	// for the same date.
	MealLog struct {
		ID                 string  `json:"id"`
		Date               string  `json:"date"`
		HadTiffin          bool    `json:"hadTiffin"`
		HadLunch           bool    `json:"hadLunch"`
		HadDinner          bool    `json:"hadDinner"`
		AmountSpent        float64 `json:"amountSpent"`
		WalletBalanceAfter float64 `json:"walletBalanceAfter"`
	}

	// MealPrices is the current price table. Changing it never rewrites the
	// amountSpent frozen on historical logs.
	MealPrices struct {
		Tiffin float64 `json:"tiffin"`
		Lunch  float64 `json:"lunch"`
		Dinner float64 `json:"dinner"`
	}

	// MealSelection is a day's set of meal choices.
	MealSelection struct {
		Tiffin bool `json:"tiffin"`
		Lunch  bool `json:"lunch"`
		Dinner bool `json:"dinner"`
	}

	// RegularMealPlan is advisory configuration of habitual meals. Nothing
	// in the ledger reads it to auto-log.
	RegularMealPlan struct {
		IncludeTiffin bool `json:"includeTiffin"`
		IncludeLunch  bool `json:"includeLunch"`
		IncludeDinner bool `json:"includeDinner"`
		IsActive      bool `json:"isActive"`
	}

	// NotificationSettings holds the three reminder times as HH:MM strings.
	NotificationSettings struct {
		TiffinTime string `json:"tiffinTime"`
		LunchTime  string `json:"lunchTime"`
		DinnerTime string `json:"dinnerTime"`
		Enabled    bool   `json:"enabled"`
	}

	// SpendingSummary is the derived aggregate over the full log collection.
	SpendingSummary struct {
		TotalSpent   float64 `json:"totalSpent"`
		TiffinSpent  float64 `json:"tiffinSpent"`
		LunchSpent   float64 `json:"lunchSpent"`
		DinnerSpent  float64 `json:"dinnerSpent"`
		DaysActive   int     `json:"daysActive"`
		AverageDaily float64 `json:"averageDaily"`
	}
)

var (
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrWalletNotInitialized = errors.New("wallet not initialized")
	ErrInvalidDate          = errors.New("invalid date")
	ErrNegativePrice        = errors.New("negative meal price")
	ErrInvalidTime          = errors.New("invalid time of day")
)

// DefaultMealPrices returns the price table used before the user configures one.
func DefaultMealPrices() MealPrices {
	return MealPrices{Tiffin: 0, Lunch: 45, Dinner: 40}
}

// DefaultRegularMealPlan returns the advisory plan used before the user saves one.
func DefaultRegularMealPlan() RegularMealPlan {
	return RegularMealPlan{IncludeTiffin: false, IncludeLunch: true, IncludeDinner: true, IsActive: false}
}

// DefaultNotificationSettings returns the reminder times used before the user saves any.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{TiffinTime: "09:30", LunchTime: "14:00", DinnerTime: "21:00", Enabled: true}
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// FormatDate renders t as a YYYY-MM-DD date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidateTimeOfDay checks that s is a valid HH:MM clock time.
func ValidateTimeOfDay(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return ErrInvalidTime
	}
	return nil
}

func (p MealPrices) Validate() error {
	if p.Tiffin < 0 || p.Lunch < 0 || p.Dinner < 0 {
		return ErrNegativePrice
	}
	return nil
}

func (s NotificationSettings) Validate() error {
	for _, tod := range []string{s.TiffinTime, s.LunchTime, s.DinnerTime} {
		if err := ValidateTimeOfDay(tod); err != nil {
			return err
		}
	}
	return nil
}

// Selection returns the meal choices recorded on the log.
func (l MealLog) Selection() MealSelection {
	return MealSelection{Tiffin: l.HadTiffin, Lunch: l.HadLunch, Dinner: l.HadDinner}
}

func (l MealLog) Validate() error {
	if err := ValidateDate(l.Date); err != nil {
		return err
	}
	if l.AmountSpent < 0 {
		return ErrInvalidAmount
	}
	return nil
}
