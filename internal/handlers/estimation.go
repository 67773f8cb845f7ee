package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/middleware"
	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/pdf"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/nimbusworks/opsdesk/internal/utils"
)

type checkEstimationRequest struct {
	ApproverEmail string `json:"approverEmail"`
}

// CreateEstimation godoc
// @Summary Create an estimation
// @Description Creates the single estimation for a project and moves a draft project to estimation_prepared
// @Tags estimations
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param estimation body services.EstimationInput true "Estimation fields"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/estimation [post]
func (h *Handler) CreateEstimation(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.EstimationInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	user := middleware.CurrentUser(c)

	est, err := services.CreateEstimation(h.DB, projectID, in, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, est, "Estimation created")
}

// GetProjectEstimation godoc
// @Summary Get a project's estimation
// @Tags estimations
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/estimation [get]
func (h *Handler) GetProjectEstimation(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	est, err := services.GetEstimationByProject(h.DB, projectID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, est, "Estimation fetched")
}

// UpdateEstimation godoc
// @Summary Update an estimation
// @Description Replaces line items and amounts; approved estimations are immutable
// @Tags estimations
// @Accept json
// @Produce json
// @Param id path int true "Estimation ID"
// @Param estimation body services.EstimationInput true "Estimation fields"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/estimations/{id} [put]
func (h *Handler) UpdateEstimation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.EstimationInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	est, err := services.UpdateEstimation(h.DB, id, in)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, est, "Estimation updated")
}

// CheckEstimation godoc
// @Summary Mark an estimation as checked
// @Description Marks the estimation reviewed and notifies the approver
// @Tags estimations
// @Accept json
// @Produce json
// @Param id path int true "Estimation ID"
// @Param check body checkEstimationRequest false "Approver to notify"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/estimations/{id}/check [patch]
func (h *Handler) CheckEstimation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req checkEstimationRequest
	_ = c.BodyParser(&req)
	user := middleware.CurrentUser(c)

	recipient := req.ApproverEmail
	if recipient == "" {
		// Default to the first admin on record.
		var admin models.User
		if err := h.DB.Where("role = ?", models.RoleAdmin).Order("id").First(&admin).Error; err == nil {
			recipient = admin.Email
		}
	}

	est, err := services.CheckEstimation(h.DB, h.Notifier, id, user, recipient)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, est, "Estimation checked")
}

// ApproveEstimation godoc
// @Summary Approve an estimation
// @Description Approves a checked estimation; approval is final
// @Tags estimations
// @Produce json
// @Param id path int true "Estimation ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/estimations/{id}/approve [patch]
func (h *Handler) ApproveEstimation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	est, err := services.ApproveEstimation(h.DB, id, user)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, est, "Estimation approved")
}

// RejectEstimation godoc
// @Summary Reject an estimation
// @Description Rejects an estimation so it goes back through review after edits
// @Tags estimations
// @Produce json
// @Param id path int true "Estimation ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/estimations/{id}/reject [patch]
func (h *Handler) RejectEstimation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	est, err := services.RejectEstimation(h.DB, id, user)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, est, "Estimation rejected")
}

// DeleteEstimation godoc
// @Summary Delete an estimation
// @Description Deletes an estimation, blocked once approved
// @Tags estimations
// @Produce json
// @Param id path int true "Estimation ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/estimations/{id} [delete]
func (h *Handler) DeleteEstimation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteEstimation(h.DB, id); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, nil, "Estimation deleted")
}

// EstimationPDF godoc
// @Summary Download the estimation PDF
// @Tags estimations
// @Produce application/pdf
// @Param id path int true "Project ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/estimation/pdf [get]
func (h *Handler) EstimationPDF(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	est, err := services.GetEstimationByProject(h.DB, projectID)
	if err != nil {
		return err
	}
	project, err := services.GetProject(h.DB, projectID)
	if err != nil {
		return err
	}

	html, err := pdf.BuildEstimationHTML(est, project, project.Client)
	if err != nil {
		return types.NewInternalError("Failed to build estimation document")
	}
	return h.sendPDF(c, html, est.EstimationNumber+".pdf")
}
