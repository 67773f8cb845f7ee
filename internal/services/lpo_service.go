package services

import (
	"bytes"
	"context"
	"errors"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/status"
	"github.com/nimbusworks/opsdesk/internal/storage"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// LPOInput carries the client-issued purchase order fields.
type LPOInput struct {
	LpoNumber string            `json:"lpoNumber"`
	Amount    types.FlexFloat64 `json:"amount"`
}

// UploadLPO records a client purchase order with its scanned document and
// moves the project to lpo_received. The status write is direct rather than
// table-validated so a late-arriving LPO cannot be blocked by whatever state
// the project drifted into.
func UploadLPO(ctx context.Context, db *gorm.DB, store storage.ObjectStorage, projectID uint, in LPOInput, document *FileUpload, creatorID uint) (*models.LPO, error) {
	project, err := GetProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if in.LpoNumber == "" {
		return nil, types.NewValidationError("LPO number is required")
	}

	lpo := models.LPO{
		ProjectID:   projectID,
		LpoNumber:   in.LpoNumber,
		Amount:      in.Amount.Float64(),
		CreatedByID: &creatorID,
	}

	if document != nil && store != nil {
		key := storage.ObjectKey("lpos", document.Filename)
		obj, err := store.Upload(ctx, key, bytes.NewReader(document.Content), int64(len(document.Content)), document.ContentType)
		if err != nil {
			return nil, types.NewInternalError("Failed to upload LPO document")
		}
		lpo.DocumentURL = obj.URL
		lpo.DocumentKey = obj.Key
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lpo).Error; err != nil {
			return err
		}
		project.Status = status.LPOReceived
		project.UpdatedByID = &creatorID
		return tx.Save(project).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to record LPO")
	}
	return &lpo, nil
}

// GetLPO loads an LPO by id.
func GetLPO(db *gorm.DB, id uint) (*models.LPO, error) {
	var lpo models.LPO
	if err := db.Preload("Project").First(&lpo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("LPO not found")
		}
		return nil, types.NewInternalError("Failed to load LPO")
	}
	return &lpo, nil
}

// GetLPOByProject returns the most recent LPO recorded for a project.
func GetLPOByProject(db *gorm.DB, projectID uint) (*models.LPO, error) {
	var lpo models.LPO
	err := db.Where("project_id = ?", projectID).Order("id desc").First(&lpo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("LPO not found for this project")
		}
		return nil, types.NewInternalError("Failed to load LPO")
	}
	return &lpo, nil
}

// ListLPOsByProject returns every LPO recorded for a project, newest first.
func ListLPOsByProject(db *gorm.DB, projectID uint) ([]models.LPO, error) {
	if _, err := GetProject(db, projectID); err != nil {
		return nil, err
	}
	var lpos []models.LPO
	if err := db.Where("project_id = ?", projectID).Order("id desc").Find(&lpos).Error; err != nil {
		return nil, types.NewInternalError("Failed to list LPOs")
	}
	return lpos, nil
}

// DeleteLPO removes an LPO record and deletes its stored document
// best-effort. The project status is left untouched.
func DeleteLPO(ctx context.Context, db *gorm.DB, store storage.ObjectStorage, log zerolog.Logger, id uint) error {
	lpo, err := GetLPO(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(lpo).Error; err != nil {
		return types.NewInternalError("Failed to delete LPO")
	}
	if store != nil && lpo.DocumentKey != "" {
		if err := store.Delete(ctx, lpo.DocumentKey); err != nil {
			log.Warn().Err(err).Str("key", lpo.DocumentKey).Msg("failed to delete LPO document")
		}
	}
	return nil
}
