package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/config"
	"github.com/nimbusworks/opsdesk/internal/database"
	"github.com/nimbusworks/opsdesk/internal/handlers"
	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/status"
	"github.com/nimbusworks/opsdesk/internal/utils"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// setupApp builds a fiber app with the production error handler and routes
// mounted behind a stub auth middleware that injects the given user.
func setupApp(t *testing.T, db *gorm.DB, user *models.User) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})

	h := handlers.New(db, &config.Config{}, nil, nil, nil, zerolog.Nop())
	api := app.Group("/api")

	clients := api.Group("/clients")
	clients.Get("/", h.ListClients)
	clients.Get("/:id", h.GetClient)
	clients.Post("/", h.CreateClient)
	clients.Put("/:id", h.UpdateClient)
	clients.Delete("/:id", h.DeleteClient)

	projects := api.Group("/projects")
	projects.Get("/", h.ListProjects)
	projects.Get("/:id", h.GetProject)
	projects.Post("/", h.CreateProject)
	projects.Patch("/:id/status", h.UpdateProjectStatus)
	projects.Patch("/:id/progress", h.UpdateProjectProgress)
	projects.Get("/:id/comments", h.ListProjectComments)
	projects.Post("/:id/estimation", h.CreateEstimation)
	projects.Get("/:id/estimation", h.GetProjectEstimation)
	projects.Post("/:id/quotation", h.CreateQuotation)
	projects.Get("/:id/quotation", h.GetProjectQuotation)
	projects.Post("/:id/lpo", h.UploadLPO)
	projects.Get("/:id/invoice", h.GenerateInvoice)

	return app
}

func seedTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := models.User{
		AuthID: "auth-" + role,
		Email:  role + "@example.com",
		Name:   "Test " + role,
		Role:   role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return &user
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.StatusCode, env
}

func TestCreateAndGetClient(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, models.RoleAdmin)
	app := setupApp(t, db, admin)

	code, env := doJSON(t, app, "POST", "/api/clients", map[string]string{
		"clientName": "Acme Facilities",
		"trn":        "100312345678901",
		"postalCode": "123456",
	})
	if code != 201 || !env.Success {
		t.Fatalf("status = %d env = %+v", code, env)
	}

	var created models.Client
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatal(err)
	}

	code, env = doJSON(t, app, "GET", fmt.Sprintf("/api/clients/%d", created.ID), nil)
	if code != 200 || !env.Success {
		t.Fatalf("status = %d env = %+v", code, env)
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, models.RoleAdmin)
	app := setupApp(t, db, admin)

	code, env := doJSON(t, app, "GET", "/api/clients/999", nil)
	if code != 404 {
		t.Fatalf("status = %d, want 404", code)
	}
	if env.Success {
		t.Error("error envelope must have success=false")
	}
	if env.StatusCode != 404 {
		t.Errorf("statusCode = %d, want 404 mirrored in body", env.StatusCode)
	}
	if env.Message != "Client not found" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestStatusEndpointRejectsIllegalTransition(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, models.RoleAdmin)
	app := setupApp(t, db, admin)

	client, err := services.CreateClient(db, services.ClientInput{ClientName: "C", TRN: "100300000000001"}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}
	project, err := services.CreateProject(db, services.ProjectInput{ProjectName: "P", ClientID: client.ID}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}

	code, env := doJSON(t, app, "PATCH", fmt.Sprintf("/api/projects/%d/status", project.ID), map[string]string{
		"status": "payment_received",
	})
	if code != 400 {
		t.Fatalf("status = %d, want 400", code)
	}
	if env.Message != "Cannot change project status from 'draft' to 'payment_received'" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestEstimationEndpointFlow(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, models.RoleAdmin)
	app := setupApp(t, db, admin)

	client, _ := services.CreateClient(db, services.ClientInput{ClientName: "C", TRN: "100300000000002"}, admin.ID)
	project, _ := services.CreateProject(db, services.ProjectInput{ProjectName: "P", ClientID: client.ID}, admin.ID)

	code, env := doJSON(t, app, "POST", fmt.Sprintf("/api/projects/%d/estimation", project.ID), map[string]interface{}{
		"materials":        []map[string]interface{}{{"description": "Pipe", "quantity": 2, "unitPrice": 50}},
		"labour":           []map[string]interface{}{{"designation": "Fitter", "days": 3, "price": 20}},
		"quotationAmount":  200,
		"commissionAmount": 10,
	})
	if code != 201 || !env.Success {
		t.Fatalf("status = %d env = %+v", code, env)
	}

	var est models.Estimation
	if err := json.Unmarshal(env.Data, &est); err != nil {
		t.Fatal(err)
	}
	if est.EstimatedAmount != 160 || est.Profit != 30 {
		t.Errorf("amount = %v profit = %v", est.EstimatedAmount, est.Profit)
	}

	// Duplicate create surfaces the uniform validation envelope.
	code, env = doJSON(t, app, "POST", fmt.Sprintf("/api/projects/%d/estimation", project.ID), map[string]interface{}{
		"materials": []map[string]interface{}{{"description": "Pipe", "quantity": 1, "unitPrice": 1}},
	})
	if code != 400 || env.Success {
		t.Fatalf("status = %d env = %+v, want 400 error", code, env)
	}
}

func TestQuotationMultipartCreate(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, models.RoleAdmin)
	app := setupApp(t, db, admin)

	client, _ := services.CreateClient(db, services.ClientInput{ClientName: "C", TRN: "100300000000003"}, admin.ID)
	project, _ := services.CreateProject(db, services.ProjectInput{ProjectName: "P", ClientID: client.ID}, admin.ID)
	if _, err := services.CreateEstimation(db, project.ID, services.EstimationInput{}, admin.ID); err != nil {
		t.Fatal(err)
	}

	payload := map[string]interface{}{
		"scopeOfWork":   "Supply and install",
		"items":         []map[string]interface{}{{"description": "Ducting", "quantity": 10, "unitPrice": 60}},
		"terms":         []string{"Net 30"},
		"vatPercentage": 5,
	}
	raw, _ := json.Marshal(payload)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("data", string(raw)); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/projects/%d/quotation", project.ID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	var q models.Quotation
	if err := json.Unmarshal(env.Data, &q); err != nil {
		t.Fatal(err)
	}
	if q.SubTotal != 600 || q.Total != 630 {
		t.Errorf("totals = %v/%v, want 600/630", q.SubTotal, q.Total)
	}

	// Project moved to quotation_sent.
	reloaded, err := services.GetProject(db, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != status.QuotationSent {
		t.Errorf("status = %s", reloaded.Status)
	}
}

func TestInvoiceEndpointGates(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, models.RoleAdmin)
	app := setupApp(t, db, admin)

	client, _ := services.CreateClient(db, services.ClientInput{ClientName: "C", TRN: "100300000000004"}, admin.ID)
	project, _ := services.CreateProject(db, services.ProjectInput{ProjectName: "P", ClientID: client.ID}, admin.ID)

	code, env := doJSON(t, app, "GET", fmt.Sprintf("/api/projects/%d/invoice", project.ID), nil)
	if code != 404 {
		t.Fatalf("status = %d, want 404", code)
	}
	if env.Message != "Quotation not found for this project" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestProgressEndpointAdvancesStatus(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, models.RoleAdmin)
	app := setupApp(t, db, admin)

	client, _ := services.CreateClient(db, services.ClientInput{ClientName: "C", TRN: "100300000000005"}, admin.ID)
	project, _ := services.CreateProject(db, services.ProjectInput{ProjectName: "P", ClientID: client.ID}, admin.ID)
	db.Model(&models.Project{}).Where("id = ?", project.ID).Update("status", status.WorkStarted)

	code, env := doJSON(t, app, "PATCH", fmt.Sprintf("/api/projects/%d/progress", project.ID), map[string]int{
		"progress": 100,
	})
	if code != 200 || !env.Success {
		t.Fatalf("status = %d env = %+v", code, env)
	}
	var p models.Project
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatal(err)
	}
	if p.Status != status.WorkCompleted {
		t.Errorf("status = %s, want work_completed", p.Status)
	}
}
