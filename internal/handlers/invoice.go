package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/pdf"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/nimbusworks/opsdesk/internal/utils"
)

// GenerateInvoice godoc
// @Summary Generate invoice data
// @Description Assembles invoice data from the project's quotation and LPO; nothing is persisted
// @Tags invoices
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/invoice [get]
func (h *Handler) GenerateInvoice(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	invoice, err := services.GenerateInvoiceData(h.DB, projectID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, invoice, "Invoice data generated")
}

// InvoicePDF godoc
// @Summary Download the invoice PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path int true "Project ID"
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/invoice/pdf [get]
func (h *Handler) InvoicePDF(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	invoice, err := services.GenerateInvoiceData(h.DB, projectID)
	if err != nil {
		return err
	}

	doc := &pdf.InvoiceDocument{
		InvoiceNumber:   invoice.InvoiceNumber,
		IssuedAt:        invoice.IssuedAt,
		Project:         invoice.Project,
		Client:          invoice.Client,
		QuotationNumber: invoice.QuotationNumber,
		LpoNumber:       invoice.LpoNumber,
		Items:           invoice.Items,
		SubTotal:        invoice.Summary.SubTotal,
		VatPercentage:   invoice.Summary.VatPercentage,
		VatAmount:       invoice.Summary.VatAmount,
		TotalReceivable: invoice.Summary.TotalReceivable,
	}
	html, err := pdf.BuildInvoiceHTML(doc)
	if err != nil {
		return types.NewInternalError("Failed to build invoice document")
	}
	return h.sendPDF(c, html, invoice.InvoiceNumber+".pdf")
}
