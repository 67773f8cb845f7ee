package services

import (
	"github.com/nimbusworks/opsdesk/internal/models"
)

// Financial computation is pure and applied identically wherever line items
// appear. Amounts are stored unrounded; two-decimal formatting happens at
// render time only.

// LineTotal computes a quantity x unit-price line.
func LineTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// LabourTotal computes a days x day-rate line.
func LabourTotal(days, rate float64) float64 {
	return days * rate
}

// ComputeEstimation fills in every derived amount on an estimation: item
// totals, estimatedAmount, and profit. Called immediately before every
// persist. Profit is derived only when a quotation amount is present.
func ComputeEstimation(e *models.Estimation) {
	var sum float64

	for i := range e.Materials {
		e.Materials[i].Total = LineTotal(e.Materials[i].Quantity, e.Materials[i].UnitPrice)
		sum += e.Materials[i].Total
	}
	for i := range e.Labour {
		e.Labour[i].Total = LabourTotal(e.Labour[i].Days, e.Labour[i].Price)
		sum += e.Labour[i].Total
	}
	for i := range e.Terms {
		e.Terms[i].Total = LineTotal(e.Terms[i].Quantity, e.Terms[i].UnitPrice)
		sum += e.Terms[i].Total
	}

	e.EstimatedAmount = sum
	if e.QuotationAmount > 0 {
		e.Profit = e.QuotationAmount - e.EstimatedAmount - e.CommissionAmount
	}
}

// ComputeQuotation fills in item totals, subtotal, VAT amount, and total.
func ComputeQuotation(q *models.Quotation) {
	var subtotal float64
	for i := range q.Items {
		q.Items[i].Total = LineTotal(q.Items[i].Quantity, q.Items[i].UnitPrice)
		subtotal += q.Items[i].Total
	}
	q.SubTotal = subtotal
	q.VatAmount = subtotal * (q.VatPercentage / 100)
	q.Total = q.SubTotal + q.VatAmount
}
