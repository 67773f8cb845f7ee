package services

import (
	"fmt"
	"time"

	"github.com/nimbusworks/opsdesk/internal/models"
	"gorm.io/gorm"
)

// DocumentType tags a document family for number generation.
type DocumentType string

const (
	DocProject        DocumentType = "PRJ"
	DocEstimation     DocumentType = "EST"
	DocQuotation      DocumentType = "QTN"
	DocInvoice        DocumentType = "INV"
	DocWorkCompletion DocumentType = "WCR"
)

// NextDocumentNumber produces the next human-readable identifier for a
// document type, e.g. EST-2024-0001. The sequence is the count of existing
// documents plus one: global for projects, per project for related
// documents. Two concurrent creations can race past the count and collide;
// there is no transactional counter. Known weakness, kept deliberately.
func NextDocumentNumber(db *gorm.DB, docType DocumentType, projectID uint) (string, error) {
	var count int64
	var err error

	switch docType {
	case DocProject:
		err = db.Model(&models.Project{}).Count(&count).Error
	case DocEstimation:
		err = db.Model(&models.Estimation{}).Where("project_id = ?", projectID).Count(&count).Error
	case DocQuotation:
		err = db.Model(&models.Quotation{}).Where("project_id = ?", projectID).Count(&count).Error
	case DocInvoice:
		// Invoices are not persisted; the sequence follows the project's
		// LPOs, which gate invoice generation.
		err = db.Model(&models.LPO{}).Where("project_id = ?", projectID).Count(&count).Error
	case DocWorkCompletion:
		err = db.Model(&models.WorkCompletion{}).Where("project_id = ?", projectID).Count(&count).Error
	default:
		return "", fmt.Errorf("unknown document type %q", docType)
	}
	if err != nil {
		return "", fmt.Errorf("failed to count %s documents: %w", docType, err)
	}

	return FormatDocumentNumber(docType, time.Now().Year(), count+1), nil
}

// FormatDocumentNumber renders a document number from its parts.
func FormatDocumentNumber(docType DocumentType, year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%04d", docType, year, sequence)
}
