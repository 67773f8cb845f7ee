package services

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/storage"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// AddWorkCompletionImages uploads titled site photos for a project. The
// work completion record is created lazily with a WCR number on the first
// upload; later uploads append to the existing record. Each image needs a
// title, matched to the files by position.
func AddWorkCompletionImages(ctx context.Context, db *gorm.DB, store storage.ObjectStorage, projectID uint, titles, descriptions []string, files []*FileUpload, actor *models.User) (*models.WorkCompletion, error) {
	if _, err := GetProject(db, projectID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, types.NewValidationError("At least one image is required")
	}
	if len(titles) != len(files) {
		return nil, types.NewValidationError("Number of titles must match number of images")
	}

	wcr, err := GetWorkCompletionByProject(db, projectID)
	if err != nil {
		var apiErr *types.ApiError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
			return nil, err
		}
		number, err := NextDocumentNumber(db, DocWorkCompletion, projectID)
		if err != nil {
			return nil, types.NewInternalError("Failed to generate work completion number")
		}
		wcr = &models.WorkCompletion{
			WcrNumber:   number,
			ProjectID:   projectID,
			CreatedByID: &actor.ID,
		}
		if err := db.Create(wcr).Error; err != nil {
			return nil, types.NewInternalError("Failed to create work completion record")
		}
	} else if wcr.CreatedByID != nil && *wcr.CreatedByID != actor.ID && actor.Role != models.RoleSuperAdmin {
		return nil, types.NewAuthorizationError("Only the engineer who created this work completion can modify it")
	}

	images := make([]models.WorkCompletionImage, len(files))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, file := range files {
		images[i] = models.WorkCompletionImage{
			WorkCompletionID: wcr.ID,
			Title:            titles[i],
		}
		if i < len(descriptions) {
			images[i].Description = descriptions[i]
		}
		wg.Add(1)
		go func(i int, file *FileUpload) {
			defer wg.Done()
			key := storage.ObjectKey("work-completions", file.Filename)
			obj, err := store.Upload(ctx, key, bytes.NewReader(file.Content), int64(len(file.Content)), file.ContentType)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			images[i].ImageURL = obj.URL
			images[i].ImageKey = obj.Key
		}(i, file)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, types.NewInternalError("Failed to upload work completion image")
	}

	if err := db.Create(&images).Error; err != nil {
		return nil, types.NewInternalError("Failed to save work completion images")
	}
	return GetWorkCompletionByProject(db, projectID)
}

// GetWorkCompletionByProject returns the work completion record for a
// project. Lookup is a findOne, so the oldest record wins if duplicates ever
// slip in.
func GetWorkCompletionByProject(db *gorm.DB, projectID uint) (*models.WorkCompletion, error) {
	var wcr models.WorkCompletion
	err := db.Preload("Images").Preload("Project").Preload("Project.Client").Preload("CreatedBy").
		Where("project_id = ?", projectID).First(&wcr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Work completion not found for this project")
		}
		return nil, types.NewInternalError("Failed to load work completion")
	}
	return &wcr, nil
}

// RemoveWorkCompletionImage deletes a single image record and its stored
// object. Only the creating engineer (or a super admin) may remove images.
func RemoveWorkCompletionImage(ctx context.Context, db *gorm.DB, store storage.ObjectStorage, log zerolog.Logger, projectID, imageID uint, actor *models.User) (*models.WorkCompletion, error) {
	wcr, err := GetWorkCompletionByProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if wcr.CreatedByID != nil && *wcr.CreatedByID != actor.ID && actor.Role != models.RoleSuperAdmin {
		return nil, types.NewAuthorizationError("Only the engineer who created this work completion can modify it")
	}

	var target *models.WorkCompletionImage
	for i := range wcr.Images {
		if wcr.Images[i].ID == imageID {
			target = &wcr.Images[i]
			break
		}
	}
	if target == nil {
		return nil, types.NewNotFoundError("Work completion image not found")
	}

	if err := db.Delete(&models.WorkCompletionImage{}, target.ID).Error; err != nil {
		return nil, types.NewInternalError("Failed to delete work completion image")
	}
	if store != nil && target.ImageKey != "" {
		if err := store.Delete(ctx, target.ImageKey); err != nil {
			log.Warn().Err(err).Str("key", target.ImageKey).Msg("failed to delete work completion image object")
		}
	}
	return GetWorkCompletionByProject(db, projectID)
}

// DeleteWorkCompletion removes the whole record with its images, deleting
// stored objects best-effort.
func DeleteWorkCompletion(ctx context.Context, db *gorm.DB, store storage.ObjectStorage, log zerolog.Logger, projectID uint, actor *models.User) error {
	wcr, err := GetWorkCompletionByProject(db, projectID)
	if err != nil {
		return err
	}
	if wcr.CreatedByID != nil && *wcr.CreatedByID != actor.ID && actor.Role != models.RoleSuperAdmin {
		return types.NewAuthorizationError("Only the engineer who created this work completion can modify it")
	}

	if err := db.Select("Images").Delete(wcr).Error; err != nil {
		return types.NewInternalError("Failed to delete work completion")
	}
	if store != nil {
		for _, img := range wcr.Images {
			if img.ImageKey == "" {
				continue
			}
			if err := store.Delete(ctx, img.ImageKey); err != nil {
				log.Warn().Err(err).Str("key", img.ImageKey).Msg("failed to delete work completion image object")
			}
		}
	}
	return nil
}
