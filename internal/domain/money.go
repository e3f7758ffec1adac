package domain

import "fmt"

// Cents is a monetary amount in minor currency units (grosze for PLN).
// All money in this application is integer cents: the ledger sums integers,
// and the payment gateway contract requires integer minor units on the wire,
// so decimal values never cross a serialization boundary.
//
// Refunds are stored as positive amounts with MovementRefund kind; the sign
// is applied when aggregating, never at rest.
type Cents int64

// String formats the amount with two decimal places, e.g. 150000 -> "1500.00".
// Negative amounts (overpayment shown as negative balance due) keep the sign.
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Float64 returns the amount in major units for spreadsheet cells.
// Safe for display only; arithmetic stays in integer cents.
func (c Cents) Float64() float64 {
	return float64(c) / 100
}
