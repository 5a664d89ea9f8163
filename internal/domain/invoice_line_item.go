package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GSTRates are the GST slabs permitted on a line item.
var GSTRates = []int32{0, 5, 12, 18, 28}

// ValidGSTRate reports whether rate is one of the permitted GST slabs.
func ValidGSTRate(rate int32) bool {
	for _, r := range GSTRates {
		if rate == r {
			return true
		}
	}
	return false
}

// InvoiceLineItem is a single billable row on an invoice. ItemTotal and
// TaxAmount are derived; ComputeTotals must be called before persisting.
type InvoiceLineItem struct {
	ID            int32           `json:"id"`
	InvoiceID     int32           `json:"invoiceId"`
	ItemName      string          `json:"itemName"`
	Description   *string         `json:"description,omitempty"`
	Quantity      int32           `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Discount      decimal.Decimal `json:"discount"`
	GSTPercentage int32           `json:"gstPercentage"`
	ItemTotal     decimal.Decimal `json:"itemTotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ComputeTotals derives ItemTotal and TaxAmount from quantity, rate,
// discount and GST percentage:
//
//	itemTotal = quantity*rate - discount
//	taxAmount = itemTotal * gstPercentage / 100
//
// Amounts are rounded to 2 decimal places. A line whose total would be
// negative is rejected rather than clamped.
func (li *InvoiceLineItem) ComputeTotals() error {
	if li.Quantity < 1 {
		return ErrInvalidLineItem
	}
	if li.Rate.IsNegative() || li.Discount.IsNegative() {
		return ErrInvalidLineItem
	}
	if !ValidGSTRate(li.GSTPercentage) {
		return ErrInvalidGSTRate
	}

	total := decimal.NewFromInt32(li.Quantity).Mul(li.Rate).Sub(li.Discount)
	if total.IsNegative() {
		return ErrInvalidLineItem
	}

	li.ItemTotal = total.Round(2)
	li.TaxAmount = total.Mul(decimal.NewFromInt32(li.GSTPercentage)).Div(decimal.NewFromInt(100)).Round(2)
	return nil
}

// InvoiceTotals is the rolled-up money on an invoice.
type InvoiceTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// ComputeInvoiceTotals sums line item totals and taxes. An empty slice
// yields all-zero totals. TotalAmount == Subtotal + TaxAmount exactly.
func ComputeInvoiceTotals(items []*InvoiceLineItem) InvoiceTotals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.ItemTotal)
		tax = tax.Add(item.TaxAmount)
	}
	return InvoiceTotals{
		Subtotal:    subtotal.Round(2),
		TaxAmount:   tax.Round(2),
		TotalAmount: subtotal.Add(tax).Round(2),
	}
}
