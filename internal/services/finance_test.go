package services_test

import (
	"testing"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/services"
)

func TestComputeEstimationTotalsAndProfit(t *testing.T) {
	est := &models.Estimation{
		Materials: []models.EstimationMaterial{
			{Description: "Copper pipe", Quantity: 2, UnitPrice: 50},
		},
		Labour: []models.EstimationLabour{
			{Designation: "Technician", Days: 3, Price: 20},
		},
		QuotationAmount:  200,
		CommissionAmount: 10,
	}

	services.ComputeEstimation(est)

	if est.Materials[0].Total != 100 {
		t.Errorf("material total = %v, want 100", est.Materials[0].Total)
	}
	if est.Labour[0].Total != 60 {
		t.Errorf("labour total = %v, want 60", est.Labour[0].Total)
	}
	if est.EstimatedAmount != 160 {
		t.Errorf("estimated amount = %v, want 160", est.EstimatedAmount)
	}
	if est.Profit != 30 {
		t.Errorf("profit = %v, want 30 (200 - 160 - 10)", est.Profit)
	}
}

func TestComputeEstimationNoProfitWithoutQuotationAmount(t *testing.T) {
	est := &models.Estimation{
		Materials: []models.EstimationMaterial{
			{Quantity: 4, UnitPrice: 25},
		},
		QuotationAmount: 0,
	}

	services.ComputeEstimation(est)

	if est.EstimatedAmount != 100 {
		t.Errorf("estimated amount = %v, want 100", est.EstimatedAmount)
	}
	if est.Profit != 0 {
		t.Errorf("profit = %v, want 0 when no quotation amount", est.Profit)
	}
}

func TestComputeEstimationIncludesTerms(t *testing.T) {
	est := &models.Estimation{
		Terms: []models.EstimationTerm{
			{Quantity: 1, UnitPrice: 40},
			{Quantity: 2, UnitPrice: 5},
		},
	}

	services.ComputeEstimation(est)

	if est.EstimatedAmount != 50 {
		t.Errorf("estimated amount = %v, want 50", est.EstimatedAmount)
	}
}

func TestComputeQuotationVat(t *testing.T) {
	q := &models.Quotation{
		Items: []models.QuotationItem{
			{Quantity: 10, UnitPrice: 60},
			{Quantity: 4, UnitPrice: 100},
		},
		VatPercentage: 5,
	}

	services.ComputeQuotation(q)

	if q.SubTotal != 1000 {
		t.Errorf("subtotal = %v, want 1000", q.SubTotal)
	}
	if q.VatAmount != 50 {
		t.Errorf("vat amount = %v, want 50", q.VatAmount)
	}
	if q.Total != 1050 {
		t.Errorf("total = %v, want 1050", q.Total)
	}
}

func TestComputeQuotationZeroVat(t *testing.T) {
	q := &models.Quotation{
		Items:         []models.QuotationItem{{Quantity: 3, UnitPrice: 10}},
		VatPercentage: 0,
	}

	services.ComputeQuotation(q)

	if q.VatAmount != 0 || q.Total != 30 {
		t.Errorf("vat = %v total = %v, want 0 and 30", q.VatAmount, q.Total)
	}
}
