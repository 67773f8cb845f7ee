package services

import (
	"time"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/types"
	"gorm.io/gorm"
)

// InvoiceSummary is the money block of a generated invoice. TotalReceivable
// mirrors the quotation total; invoices never recompute pricing.
type InvoiceSummary struct {
	SubTotal        float64 `json:"subTotal"`
	VatPercentage   float64 `json:"vatPercentage"`
	VatAmount       float64 `json:"vatAmount"`
	TotalReceivable float64 `json:"totalReceivable"`
}

// InvoiceData is the assembled invoice payload. Invoices are derived
// on demand from the quotation and LPO rather than stored.
type InvoiceData struct {
	InvoiceNumber   string                 `json:"invoiceNumber"`
	IssuedAt        time.Time              `json:"issuedAt"`
	Project         *models.Project        `json:"project"`
	Client          *models.Client         `json:"client"`
	QuotationNumber string                 `json:"quotationNumber"`
	LpoNumber       string                 `json:"lpoNumber"`
	Items           []models.QuotationItem `json:"items"`
	Summary         InvoiceSummary         `json:"summary"`
}

// GenerateInvoiceData assembles invoice data for a project. Generation is
// gated on the project having a quotation with items and a recorded LPO.
func GenerateInvoiceData(db *gorm.DB, projectID uint) (*InvoiceData, error) {
	project, err := GetProject(db, projectID)
	if err != nil {
		return nil, err
	}
	quotation, err := GetQuotationByProject(db, projectID)
	if err != nil {
		return nil, err
	}
	lpo, err := GetLPOByProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if len(quotation.Items) == 0 {
		return nil, types.NewValidationError("No quotation items found for this project")
	}

	number, err := NextDocumentNumber(db, DocInvoice, projectID)
	if err != nil {
		return nil, types.NewInternalError("Failed to generate invoice number")
	}

	return &InvoiceData{
		InvoiceNumber:   number,
		IssuedAt:        time.Now(),
		Project:         project,
		Client:          project.Client,
		QuotationNumber: quotation.QuotationNumber,
		LpoNumber:       lpo.LpoNumber,
		Items:           quotation.Items,
		Summary: InvoiceSummary{
			SubTotal:        quotation.SubTotal,
			VatPercentage:   quotation.VatPercentage,
			VatAmount:       quotation.VatAmount,
			TotalReceivable: quotation.Total,
		},
	}, nil
}
