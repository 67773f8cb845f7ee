package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/middleware"
	"github.com/nimbusworks/opsdesk/internal/models"
)

// RegisterRoutes mounts the API under /api with per-route role requirements.
// super_admin passes every check.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)

	api := app.Group("/api")

	staff := middleware.Auth(h.DB, models.RoleAdmin, models.RoleEngineer, models.RoleFinance)
	admin := middleware.Auth(h.DB, models.RoleAdmin)
	adminFinance := middleware.Auth(h.DB, models.RoleAdmin, models.RoleFinance)
	engineer := middleware.Auth(h.DB, models.RoleAdmin, models.RoleEngineer)

	clients := api.Group("/clients")
	clients.Get("/", staff, h.ListClients)
	clients.Get("/:id", staff, h.GetClient)
	clients.Post("/", admin, h.CreateClient)
	clients.Put("/:id", admin, h.UpdateClient)
	clients.Delete("/:id", admin, h.DeleteClient)

	projects := api.Group("/projects")
	projects.Get("/", staff, h.ListProjects)
	projects.Get("/:id", staff, h.GetProject)
	projects.Post("/", admin, h.CreateProject)
	projects.Put("/:id", admin, h.UpdateProject)
	projects.Delete("/:id", admin, h.DeleteProject)
	projects.Patch("/:id/status", admin, h.UpdateProjectStatus)
	projects.Patch("/:id/progress", engineer, h.UpdateProjectProgress)
	projects.Patch("/:id/assign", admin, h.AssignProject)
	projects.Get("/:id/comments", staff, h.ListProjectComments)

	projects.Post("/:id/estimation", engineer, h.CreateEstimation)
	projects.Get("/:id/estimation", staff, h.GetProjectEstimation)
	projects.Get("/:id/estimation/pdf", staff, h.EstimationPDF)

	estimations := api.Group("/estimations")
	estimations.Put("/:id", engineer, h.UpdateEstimation)
	estimations.Patch("/:id/check", admin, h.CheckEstimation)
	estimations.Patch("/:id/approve", admin, h.ApproveEstimation)
	estimations.Patch("/:id/reject", admin, h.RejectEstimation)
	estimations.Delete("/:id", admin, h.DeleteEstimation)

	projects.Post("/:id/quotation", adminFinance, h.CreateQuotation)
	projects.Get("/:id/quotation", staff, h.GetProjectQuotation)
	projects.Get("/:id/quotation/pdf", staff, h.QuotationPDF)

	quotations := api.Group("/quotations")
	quotations.Patch("/:id/approve", adminFinance, h.ApproveQuotation)
	quotations.Patch("/:id/reject", adminFinance, h.RejectQuotation)
	quotations.Delete("/:id", admin, h.DeleteQuotation)

	projects.Post("/:id/lpo", adminFinance, h.UploadLPO)
	projects.Get("/:id/lpo", staff, h.GetProjectLPO)
	projects.Get("/:id/lpos", staff, h.ListProjectLPOs)

	lpos := api.Group("/lpos")
	lpos.Delete("/:id", admin, h.DeleteLPO)

	projects.Post("/:id/work-completion/images", engineer, h.AddWorkCompletionImages)
	projects.Get("/:id/work-completion", staff, h.GetProjectWorkCompletion)
	projects.Get("/:id/work-completion/pdf", staff, h.WorkCompletionPDF)
	projects.Delete("/:id/work-completion/images/:imageId", engineer, h.RemoveWorkCompletionImage)
	projects.Delete("/:id/work-completion", engineer, h.DeleteWorkCompletion)

	projects.Get("/:id/invoice", adminFinance, h.GenerateInvoice)
	projects.Get("/:id/invoice/pdf", adminFinance, h.InvoicePDF)
}
