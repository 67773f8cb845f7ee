package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/middleware"
	"github.com/nimbusworks/opsdesk/internal/pdf"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/nimbusworks/opsdesk/internal/utils"
)

// AddWorkCompletionImages godoc
// @Summary Upload work completion images
// @Description Uploads titled site photos; the work completion record is created on the first upload
// @Tags work-completions
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Project ID"
// @Param titles formData string true "Image titles, one per file"
// @Param descriptions formData string false "Image descriptions, one per file"
// @Param images formData file true "Image files"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/work-completion/images [post]
func (h *Handler) AddWorkCompletionImages(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return types.NewValidationError("Expected a multipart form")
	}

	files, err := formFiles(form, "images")
	if err != nil {
		return err
	}
	titles := form.Value["titles"]
	descriptions := form.Value["descriptions"]
	user := middleware.CurrentUser(c)

	wcr, err := services.AddWorkCompletionImages(c.UserContext(), h.DB, h.Storage, projectID, titles, descriptions, files, user)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, wcr, "Work completion images uploaded")
}

// GetProjectWorkCompletion godoc
// @Summary Get a project's work completion record
// @Tags work-completions
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/work-completion [get]
func (h *Handler) GetProjectWorkCompletion(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	wcr, err := services.GetWorkCompletionByProject(h.DB, projectID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, wcr, "Work completion fetched")
}

// RemoveWorkCompletionImage godoc
// @Summary Remove a work completion image
// @Description Removes one image; only the creating engineer may modify the record
// @Tags work-completions
// @Produce json
// @Param id path int true "Project ID"
// @Param imageId path int true "Image ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/work-completion/images/{imageId} [delete]
func (h *Handler) RemoveWorkCompletionImage(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := paramID(c, "imageId")
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	wcr, err := services.RemoveWorkCompletionImage(c.UserContext(), h.DB, h.Storage, h.Log, projectID, imageID, user)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, wcr, "Work completion image removed")
}

// DeleteWorkCompletion godoc
// @Summary Delete a work completion record
// @Description Deletes the record with all its images; only the creating engineer may delete it
// @Tags work-completions
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/work-completion [delete]
func (h *Handler) DeleteWorkCompletion(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	if err := services.DeleteWorkCompletion(c.UserContext(), h.DB, h.Storage, h.Log, projectID, user); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, nil, "Work completion deleted")
}

// WorkCompletionPDF godoc
// @Summary Download the work completion report PDF
// @Tags work-completions
// @Produce application/pdf
// @Param id path int true "Project ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/work-completion/pdf [get]
func (h *Handler) WorkCompletionPDF(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	wcr, err := services.GetWorkCompletionByProject(h.DB, projectID)
	if err != nil {
		return err
	}
	project, err := services.GetProject(h.DB, projectID)
	if err != nil {
		return err
	}

	html, err := pdf.BuildWorkCompletionHTML(wcr, project, project.Client)
	if err != nil {
		return types.NewInternalError("Failed to build work completion document")
	}
	return h.sendPDF(c, html, wcr.WcrNumber+".pdf")
}
