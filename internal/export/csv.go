// Package export renders the ledger into the flat CSV document the user
// shares out of the app. Pure formatting: whatever the ledger and summary
// produced goes out verbatim.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SDhanushDev/fet/internal/core"
)

const header = "Date,Tiffin,Lunch,Dinner,Amount Spent,Wallet Balance"

// rupee prefixes every currency cell in the document.
const rupee = "₹"

// CSV renders logs (in the given order), the summary block, and the
// current price table as one comma-separated document.
func CSV(logs []core.MealLog, prices core.MealPrices, summary core.SpendingSummary) string {
	var b strings.Builder
	b.WriteString(header + "\n")

	for _, log := range logs {
		b.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s\n",
			log.Date,
			yesNo(log.HadTiffin),
			yesNo(log.HadLunch),
			yesNo(log.HadDinner),
			amount(log.AmountSpent),
			amount(log.WalletBalanceAfter)))
	}

	b.WriteString("\n--- SUMMARY ---\n")
	b.WriteString("Total Spent," + amount(summary.TotalSpent) + "\n")
	b.WriteString("Tiffin Spent," + amount(summary.TiffinSpent) + "\n")
	b.WriteString("Lunch Spent," + amount(summary.LunchSpent) + "\n")
	b.WriteString("Dinner Spent," + amount(summary.DinnerSpent) + "\n")
	b.WriteString("Days Active," + strconv.Itoa(summary.DaysActive) + "\n")
	b.WriteString("Average Daily," + amount(summary.AverageDaily) + "\n")

	b.WriteString("\n--- CURRENT MEAL PRICES ---\n")
	b.WriteString("Tiffin," + amount(prices.Tiffin) + "\n")
	b.WriteString("Lunch," + amount(prices.Lunch) + "\n")
	b.WriteString("Dinner," + amount(prices.Dinner) + "\n")

	return b.String()
}

// FileName returns the dated export file name, e.g. food-spending-2024-01-15.csv.
func FileName(now time.Time) string {
	return "food-spending-" + core.FormatDate(now) + ".csv"
}

// WriteFile writes the document under dir and returns the full path.
func WriteFile(dir string, content string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// amount renders a currency cell: rupee sign plus the number with minimal
// digits (85 not 85.00, 42.5 not 42.50), matching the historical exports.
func amount(v float64) string {
	return rupee + strconv.FormatFloat(v, 'f', -1, 64)
}
