package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/middleware"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/nimbusworks/opsdesk/internal/utils"
)

// CreateClient godoc
// @Summary Create a client
// @Description Registers a client with a unique TRN
// @Tags clients
// @Accept json
// @Produce json
// @Param client body services.ClientInput true "Client fields"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /api/clients [post]
func (h *Handler) CreateClient(c *fiber.Ctx) error {
	var in services.ClientInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	user := middleware.CurrentUser(c)

	client, err := services.CreateClient(h.DB, in, user.ID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, client, "Client created")
}

// ListClients godoc
// @Summary List clients
// @Description Returns a page of clients, searchable by name or TRN
// @Tags clients
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Name or TRN search term"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /api/clients [get]
func (h *Handler) ListClients(c *fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	clients, total, err := services.ListClients(h.DB, page, limit, c.Query("search"))
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"clients": clients,
		"total":   total,
		"page":    page,
		"limit":   limit,
	}, "Clients fetched")
}

// GetClient godoc
// @Summary Get a client
// @Tags clients
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/clients/{id} [get]
func (h *Handler) GetClient(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	client, err := services.GetClient(h.DB, id)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, client, "Client fetched")
}

// UpdateClient godoc
// @Summary Update a client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path int true "Client ID"
// @Param client body services.ClientInput true "Client fields"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/clients/{id} [put]
func (h *Handler) UpdateClient(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.ClientInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewValidationError("Invalid request body")
	}
	client, err := services.UpdateClient(h.DB, id, in)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, client, "Client updated")
}

// DeleteClient godoc
// @Summary Delete a client
// @Tags clients
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/clients/{id} [delete]
func (h *Handler) DeleteClient(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteClient(h.DB, id); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, nil, "Client deleted")
}
