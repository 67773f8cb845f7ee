package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/nimbusworks/opsdesk/data"
	"github.com/nimbusworks/opsdesk/internal/models"
)

// Monetary values are formatted to two decimals at render time only; stored
// amounts are never rounded.
var templates = template.Must(template.New("documents").Funcs(template.FuncMap{
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"date": func(t time.Time) string {
		return t.Format("02 Jan 2006")
	},
}).ParseFS(data.Templates(), "templates/*.html"))

func render(name string, payload interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, payload); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// BuildEstimationHTML renders the internal estimation document.
func BuildEstimationHTML(est *models.Estimation, project *models.Project, client *models.Client) (string, error) {
	return render("estimation.html", map[string]interface{}{
		"Estimation": est,
		"Project":    project,
		"Client":     client,
		"IssuedAt":   time.Now(),
	})
}

// BuildQuotationHTML renders the client-facing quotation document.
func BuildQuotationHTML(q *models.Quotation, project *models.Project, client *models.Client, terms []string) (string, error) {
	return render("quotation.html", map[string]interface{}{
		"Quotation": q,
		"Project":   project,
		"Client":    client,
		"Terms":     terms,
		"IssuedAt":  time.Now(),
	})
}

// InvoiceDocument is the payload for the invoice template. It mirrors the
// invoice-data response shape.
type InvoiceDocument struct {
	InvoiceNumber   string
	IssuedAt        time.Time
	Project         *models.Project
	Client          *models.Client
	QuotationNumber string
	LpoNumber       string
	Items           []models.QuotationItem
	SubTotal        float64
	VatPercentage   float64
	VatAmount       float64
	TotalReceivable float64
}

// BuildInvoiceHTML renders the invoice document.
func BuildInvoiceHTML(doc *InvoiceDocument) (string, error) {
	return render("invoice.html", doc)
}

// BuildWorkCompletionHTML renders the work completion report.
func BuildWorkCompletionHTML(wc *models.WorkCompletion, project *models.Project, client *models.Client) (string, error) {
	return render("work_completion.html", map[string]interface{}{
		"WorkCompletion": wc,
		"Project":        project,
		"Client":         client,
		"IssuedAt":       time.Now(),
	})
}
