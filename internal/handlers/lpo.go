package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/middleware"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/nimbusworks/opsdesk/internal/utils"
)

// UploadLPO godoc
// @Summary Record a client LPO
// @Description Records a client purchase order with its scanned document and moves the project to lpo_received
// @Tags lpos
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Project ID"
// @Param lpoNumber formData string true "Client-issued LPO number"
// @Param amount formData number false "LPO amount"
// @Param document formData file false "Scanned LPO document"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/lpo [post]
func (h *Handler) UploadLPO(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var in services.LPOInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewValidationError("Invalid request body")
	}

	document, err := formFile(c, "document")
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	lpo, err := services.UploadLPO(c.UserContext(), h.DB, h.Storage, projectID, in, document, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, lpo, "LPO recorded")
}

// GetProjectLPO godoc
// @Summary Get a project's latest LPO
// @Tags lpos
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/lpo [get]
func (h *Handler) GetProjectLPO(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	lpo, err := services.GetLPOByProject(h.DB, projectID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, lpo, "LPO fetched")
}

// ListProjectLPOs godoc
// @Summary List a project's LPOs
// @Tags lpos
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/lpos [get]
func (h *Handler) ListProjectLPOs(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	lpos, err := services.ListLPOsByProject(h.DB, projectID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, lpos, "LPOs fetched")
}

// DeleteLPO godoc
// @Summary Delete an LPO
// @Tags lpos
// @Produce json
// @Param id path int true "LPO ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/lpos/{id} [delete]
func (h *Handler) DeleteLPO(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteLPO(c.UserContext(), h.DB, h.Storage, h.Log, id); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, nil, "LPO deleted")
}
