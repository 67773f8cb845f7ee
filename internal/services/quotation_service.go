package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/status"
	"github.com/nimbusworks/opsdesk/internal/storage"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// FileUpload is an in-memory file received from a multipart request.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// QuotationItemInput is a quotation line item as submitted by clients.
type QuotationItemInput struct {
	Description string            `json:"description"`
	Quantity    types.FlexFloat64 `json:"quantity"`
	UnitPrice   types.FlexFloat64 `json:"unitPrice"`
}

// QuotationInput carries the mutable quotation fields.
type QuotationInput struct {
	ScopeOfWork   string                             `json:"scopeOfWork"`
	Items         types.FlexList[QuotationItemInput] `json:"items"`
	Terms         []string                           `json:"terms"`
	VatPercentage types.FlexFloat64                  `json:"vatPercentage"`
}

// CreateQuotation creates the single quotation for a project. Item images
// are uploaded to object storage in an unordered concurrent fan-out with no
// rollback of already-uploaded files on later failure. Creation links the
// project's estimation when one exists but does not require it, and moves
// the project to quotation_sent.
func CreateQuotation(ctx context.Context, db *gorm.DB, store storage.ObjectStorage, projectID uint, in QuotationInput, images map[int]*FileUpload, creatorID uint) (*models.Quotation, error) {
	project, err := GetProject(db, projectID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Quotation{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return nil, types.NewInternalError("Failed to check existing quotation")
	}
	if count > 0 {
		return nil, types.NewValidationError("Project '%s' already has a quotation", project.ProjectNumber)
	}
	if len(in.Items) == 0 {
		return nil, types.NewValidationError("Quotation requires at least one item")
	}

	if err := status.ValidateTransition(project.Status, status.QuotationSent); err != nil {
		return nil, err
	}

	// Soft link: estimation linkage is best-effort.
	var estimationID *uint
	if est, err := GetEstimationByProject(db, projectID); err == nil {
		estimationID = &est.ID
	}

	number, err := NextDocumentNumber(db, DocQuotation, projectID)
	if err != nil {
		return nil, types.NewInternalError("Failed to generate quotation number")
	}

	items := make([]models.QuotationItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = models.QuotationItem{
			Description: it.Description,
			Quantity:    it.Quantity.Float64(),
			UnitPrice:   it.UnitPrice.Float64(),
		}
	}

	if err := uploadItemImages(ctx, store, items, images); err != nil {
		return nil, err
	}

	terms, err := json.Marshal(in.Terms)
	if err != nil {
		return nil, types.NewInternalError("Failed to encode terms")
	}

	quotation := models.Quotation{
		QuotationNumber: number,
		ProjectID:       projectID,
		EstimationID:    estimationID,
		ScopeOfWork:     in.ScopeOfWork,
		Items:           items,
		Terms:           terms,
		VatPercentage:   in.VatPercentage.Float64(),
		CreatedByID:     &creatorID,
	}
	ComputeQuotation(&quotation)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quotation).Error; err != nil {
			return err
		}
		project.Status = status.QuotationSent
		return tx.Save(project).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to create quotation")
	}
	return &quotation, nil
}

// uploadItemImages fans out one upload per indexed image. Items keep the
// returned URL and key. Partial uploads are not rolled back on failure.
func uploadItemImages(ctx context.Context, store storage.ObjectStorage, items []models.QuotationItem, images map[int]*FileUpload) error {
	if store == nil || len(images) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for idx, file := range images {
		if idx < 0 || idx >= len(items) || file == nil {
			continue
		}
		wg.Add(1)
		go func(idx int, file *FileUpload) {
			defer wg.Done()
			key := storage.ObjectKey("quotations", file.Filename)
			obj, err := store.Upload(ctx, key, bytes.NewReader(file.Content), int64(len(file.Content)), file.ContentType)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			items[idx].ImageURL = obj.URL
			items[idx].ImageKey = obj.Key
		}(idx, file)
	}
	wg.Wait()

	if firstErr != nil {
		return types.NewInternalError("Failed to upload quotation item image")
	}
	return nil
}

// GetQuotation loads a quotation with its items.
func GetQuotation(db *gorm.DB, id uint) (*models.Quotation, error) {
	var quotation models.Quotation
	err := db.Preload("Items").Preload("Project").Preload("Project.Client").First(&quotation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Quotation not found")
		}
		return nil, types.NewInternalError("Failed to load quotation")
	}
	return &quotation, nil
}

// GetQuotationByProject loads the quotation belonging to a project.
func GetQuotationByProject(db *gorm.DB, projectID uint) (*models.Quotation, error) {
	var quotation models.Quotation
	err := db.Preload("Items").Where("project_id = ?", projectID).First(&quotation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Quotation not found for this project")
		}
		return nil, types.NewInternalError("Failed to load quotation")
	}
	return &quotation, nil
}

// ApproveQuotation records client approval: the project status is set to
// quotation_approved directly, without consulting the transition table.
// Preserved as a documented exception inherited from the workflow design.
func ApproveQuotation(db *gorm.DB, id uint, actor *models.User) (*models.Quotation, error) {
	return resolveQuotation(db, id, actor, status.QuotationApproved, models.ActionApproval, "approved")
}

// RejectQuotation records client rejection; like approval it bypasses the
// transition table.
func RejectQuotation(db *gorm.DB, id uint, actor *models.User) (*models.Quotation, error) {
	return resolveQuotation(db, id, actor, status.QuotationRejected, models.ActionRejection, "rejected")
}

func resolveQuotation(db *gorm.DB, id uint, actor *models.User, to status.ProjectStatus, action, verb string) (*models.Quotation, error) {
	quotation, err := GetQuotation(db, id)
	if err != nil {
		return nil, err
	}
	project, err := GetProject(db, quotation.ProjectID)
	if err != nil {
		return nil, err
	}

	project.Status = to
	project.UpdatedByID = &actor.ID

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}
		comment := models.Comment{
			ProjectID:   project.ID,
			ActionType:  action,
			Text:        "Quotation " + quotation.QuotationNumber + " " + verb,
			CreatedByID: &actor.ID,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to update quotation state")
	}

	quotation.Project = project
	return quotation, nil
}

// DeleteQuotation removes the quotation, reverts the project to
// estimation_prepared, and deletes item images from storage best-effort.
func DeleteQuotation(ctx context.Context, db *gorm.DB, store storage.ObjectStorage, log zerolog.Logger, id uint) error {
	quotation, err := GetQuotation(db, id)
	if err != nil {
		return err
	}
	project, err := GetProject(db, quotation.ProjectID)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("Items").Delete(quotation).Error; err != nil {
			return err
		}
		project.Status = status.EstimationPrepared
		return tx.Save(project).Error
	})
	if err != nil {
		return types.NewInternalError("Failed to delete quotation")
	}

	// Image cleanup after the commit is best-effort; a failed delete leaves
	// an orphaned object, never a failed request.
	if store != nil {
		for _, item := range quotation.Items {
			if item.ImageKey == "" {
				continue
			}
			if err := store.Delete(ctx, item.ImageKey); err != nil {
				log.Warn().Err(err).Str("key", item.ImageKey).Msg("failed to delete quotation item image")
			}
		}
	}
	return nil
}
