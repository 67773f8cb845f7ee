package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/middleware"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/status"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/nimbusworks/opsdesk/internal/utils"
)

type statusUpdateRequest struct {
	Status status.ProjectStatus `json:"status"`
}

type progressUpdateRequest struct {
	Progress int `json:"progress"`
}

type assignRequest struct {
	EngineerID uint `json:"engineerId"`
}

// CreateProject godoc
// @Summary Create a project
// @Description Creates a project in draft with a generated project number
// @Tags projects
// @Accept json
// @Produce json
// @Param project body services.ProjectInput true "Project fields"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/projects [post]
func (h *Handler) CreateProject(c *fiber.Ctx) error {
	var in services.ProjectInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	user := middleware.CurrentUser(c)

	project, err := services.CreateProject(h.DB, in, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, project, "Project created")
}

// ListProjects godoc
// @Summary List projects
// @Description Returns a page of projects, filterable by search term and status
// @Tags projects
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Name or number search term"
// @Param status query string false "Status filter"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /api/projects [get]
func (h *Handler) ListProjects(c *fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	projects, total, err := services.ListProjects(h.DB, page, limit, c.Query("search"), status.ProjectStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"projects": projects,
		"total":    total,
		"page":     page,
		"limit":    limit,
	}, "Projects fetched")
}

// GetProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id} [get]
func (h *Handler) GetProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	project, err := services.GetProject(h.DB, id)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, project, "Project fetched")
}

// UpdateProject godoc
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param project body services.ProjectInput true "Project fields"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id} [put]
func (h *Handler) UpdateProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.ProjectInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	user := middleware.CurrentUser(c)

	project, err := services.UpdateProject(h.DB, id, in, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, project, "Project updated")
}

// UpdateProjectStatus godoc
// @Summary Update project status
// @Description Moves the project along the allowed status transitions
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param status body statusUpdateRequest true "Target status"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/status [patch]
func (h *Handler) UpdateProjectStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	user := middleware.CurrentUser(c)

	project, err := services.UpdateProjectStatus(h.DB, id, req.Status, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, project, "Project status updated")
}

// UpdateProjectProgress godoc
// @Summary Update project progress
// @Description Sets the progress percentage and applies progress-driven status advances
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param progress body progressUpdateRequest true "Progress percentage"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/progress [patch]
func (h *Handler) UpdateProjectProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req progressUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	user := middleware.CurrentUser(c)

	project, err := services.UpdateProjectProgress(h.DB, id, req.Progress, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, project, "Project progress updated")
}

// AssignProject godoc
// @Summary Assign an engineer
// @Description Assigns an engineer to the project and notifies them by mail
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param assignment body assignRequest true "Engineer to assign"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/assign [patch]
func (h *Handler) AssignProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	user := middleware.CurrentUser(c)

	project, err := services.AssignProject(h.DB, h.Notifier, id, req.EngineerID, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, project, "Project assigned")
}

// ListProjectComments godoc
// @Summary List project comments
// @Description Returns the project's audit trail, newest first
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id}/comments [get]
func (h *Handler) ListProjectComments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	comments, err := services.ListProjectComments(h.DB, id)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, comments, "Comments fetched")
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Deletes a project, permitted only while still in draft
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/projects/{id} [delete]
func (h *Handler) DeleteProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteProject(h.DB, id); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, nil, "Project deleted")
}
