// Package pricing holds the price arithmetic shared by bookings, subscriptions and analytics.
package pricing

import "github.com/shopspring/decimal"

// DaysPerMonth is the flat month length used for subscription pricing.
const DaysPerMonth = 30

// BookingTotal is the price of a single day's order.
func BookingTotal(pricePerLiter float64, quantity int) float64 {
	return multiply(pricePerLiter, quantity, 1)
}

// MonthlyCost is the price of a subscription over a fixed 30-day month.
func MonthlyCost(pricePerLiter float64, quantity int) float64 {
	return multiply(pricePerLiter, quantity, DaysPerMonth)
}

// SubscriptionTotal is the price of a subscription over its whole duration.
func SubscriptionTotal(pricePerLiter float64, quantity, days int) float64 {
	return multiply(pricePerLiter, quantity, days)
}

// StockValue is the value of the litres currently on hand.
func StockValue(pricePerLiter float64, stock int) float64 {
	return multiply(pricePerLiter, stock, 1)
}

// Sum adds amounts without accumulating float error.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

func multiply(price float64, quantity, days int) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(int64(days))).
		Round(2).
		InexactFloat64()
}
