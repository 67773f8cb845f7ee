package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/middleware"
	"github.com/nimbusworks/opsdesk/internal/pdf"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/nimbusworks/opsdesk/internal/utils"
)

// quotationInput parses the quotation payload from either a plain JSON body
// or the "data" part of a multipart form carrying item images.
func quotationInput(c *fiber.Ctx) (services.QuotationInput, map[int]*services.FileUpload, error) {
	var in services.QuotationInput

	form, err := c.MultipartForm()
	if err != nil {
		if err := c.BodyParser(&in); err != nil {
			return in, nil, types.NewValidationError("Invalid request body")
		}
		return in, nil, nil
	}

	raw := ""
	if values, ok := form.Value["data"]; ok && len(values) > 0 {
		raw = values[0]
	}
	if raw == "" {
		return in, nil, types.NewValidationError("Missing 'data' field in multipart form")
	}
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return in, nil, types.NewValidationError("Invalid quotation payload")
	}

	images, err := itemImages(form, len(in.Items))
	if err != nil {
		return in, nil, err
	}
	return in, images, nil
}

// CreateQuotation godoc
// @Summary Create a quotation
// @Description Creates the single quotation for a project with optional per-item images and moves the project to quotation_sent
// @Tags quotations
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Project ID"
// @Param data formData string true "Quotation payload as JSON"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/quotation [post]
func (h *Handler) CreateQuotation(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	in, images, err := quotationInput(c)
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	quotation, err := services.CreateQuotation(c.UserContext(), h.DB, h.Storage, projectID, in, images, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, quotation, "Quotation created")
}

// GetProjectQuotation godoc
// @Summary Get a project's quotation
// @Tags quotations
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/quotation [get]
func (h *Handler) GetProjectQuotation(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	quotation, err := services.GetQuotationByProject(h.DB, projectID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, quotation, "Quotation fetched")
}

// ApproveQuotation godoc
// @Summary Approve a quotation
// @Description Records client approval and sets the project to quotation_approved
// @Tags quotations
// @Produce json
// @Param id path int true "Quotation ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/quotations/{id}/approve [patch]
func (h *Handler) ApproveQuotation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	quotation, err := services.ApproveQuotation(h.DB, id, user)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, quotation, "Quotation approved")
}

// RejectQuotation godoc
// @Summary Reject a quotation
// @Description Records client rejection and sets the project to quotation_rejected
// @Tags quotations
// @Produce json
// @Param id path int true "Quotation ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/quotations/{id}/reject [patch]
func (h *Handler) RejectQuotation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	quotation, err := services.RejectQuotation(h.DB, id, user)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, quotation, "Quotation rejected")
}

// DeleteQuotation godoc
// @Summary Delete a quotation
// @Description Deletes the quotation and reverts the project to estimation_prepared
// @Tags quotations
// @Produce json
// @Param id path int true "Quotation ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/quotations/{id} [delete]
func (h *Handler) DeleteQuotation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteQuotation(c.UserContext(), h.DB, h.Storage, h.Log, id); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, nil, "Quotation deleted")
}

// QuotationPDF godoc
// @Summary Download the quotation PDF
// @Tags quotations
// @Produce application/pdf
// @Param id path int true "Project ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/quotation/pdf [get]
func (h *Handler) QuotationPDF(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	quotation, err := services.GetQuotationByProject(h.DB, projectID)
	if err != nil {
		return err
	}
	project, err := services.GetProject(h.DB, projectID)
	if err != nil {
		return err
	}

	var terms []string
	if len(quotation.Terms) > 0 {
		_ = json.Unmarshal(quotation.Terms, &terms)
	}

	html, err := pdf.BuildQuotationHTML(quotation, project, project.Client, terms)
	if err != nil {
		return types.NewInternalError("Failed to build quotation document")
	}
	return h.sendPDF(c, html, quotation.QuotationNumber+".pdf")
}
