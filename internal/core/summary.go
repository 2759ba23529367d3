package core

// CalculateSummary aggregates spend over the full log collection.
//
// TotalSpent sums each log's frozen amountSpent, while the per-meal splits
// multiply the selection flags by the price table passed in. After a price
// change the three splits therefore need not add up to TotalSpent. That
// asymmetry is long-standing observed behavior and is kept as is.
func CalculateSummary(logs []MealLog, prices MealPrices) SpendingSummary {
	var s SpendingSummary
	for _, log := range logs {
		s.TotalSpent += log.AmountSpent
		sel := log.Selection()
		if sel.Tiffin {
			s.TiffinSpent += prices.Tiffin
		}
		if sel.Lunch {
			s.LunchSpent += prices.Lunch
		}
		if sel.Dinner {
			s.DinnerSpent += prices.Dinner
		}
	}
	s.DaysActive = len(logs)
	if s.DaysActive > 0 {
		s.AverageDaily = s.TotalSpent / float64(s.DaysActive)
	}
	return s
}
