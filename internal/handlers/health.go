package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/utils"
)

// Health godoc
// @Summary Service health
// @Description Reports reachability of the database, Authorizer, and object storage
// @Tags health
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /health [get]
func (h *Handler) Health(c *fiber.Ctx) error {
	health := services.CheckHealth(h.DB, h.Cfg)
	code := fiber.StatusOK
	if health.Status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return utils.Success(c, code, health, "Health checked")
}
