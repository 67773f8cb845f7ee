package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/status"
	"github.com/nimbusworks/opsdesk/internal/types"
	"gorm.io/gorm"
)

// ProjectInput carries the mutable project fields.
type ProjectInput struct {
	ProjectName  string `json:"projectName"`
	Description  string `json:"description"`
	ClientID     uint   `json:"clientId"`
	SiteAddress  string `json:"siteAddress"`
	SiteLocation string `json:"siteLocation"`
}

// CreateProject creates a project in draft with a generated project number.
func CreateProject(db *gorm.DB, in ProjectInput, creatorID uint) (*models.Project, error) {
	if strings.TrimSpace(in.ProjectName) == "" {
		return nil, types.NewValidationError("Project name is required")
	}
	if _, err := GetClient(db, in.ClientID); err != nil {
		return nil, err
	}

	number, err := NextDocumentNumber(db, DocProject, 0)
	if err != nil {
		return nil, types.NewInternalError("Failed to generate project number")
	}

	project := models.Project{
		ProjectNumber: number,
		ProjectName:   in.ProjectName,
		Description:   in.Description,
		ClientID:      in.ClientID,
		SiteAddress:   in.SiteAddress,
		SiteLocation:  in.SiteLocation,
		Status:        status.Draft,
		CreatedByID:   &creatorID,
	}
	if err := db.Create(&project).Error; err != nil {
		return nil, types.NewInternalError("Failed to create project")
	}
	return &project, nil
}

// GetProject loads a project with its client and assignee.
func GetProject(db *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project
	err := db.Preload("Client").Preload("AssignedTo").First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Project not found")
		}
		return nil, types.NewInternalError("Failed to load project")
	}
	return &project, nil
}

// ListProjects returns a page of projects, optionally filtered by search
// term and status.
func ListProjects(db *gorm.DB, page, limit int, search string, filterStatus status.ProjectStatus) ([]models.Project, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	q := db.Model(&models.Project{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(project_name) LIKE ? OR lower(project_number) LIKE ?", like, like)
	}
	if filterStatus != "" {
		if !status.IsValid(filterStatus) {
			return nil, 0, types.NewValidationError("Invalid project status '%s'", filterStatus)
		}
		q = q.Where("status = ?", filterStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, types.NewInternalError("Failed to count projects")
	}

	var projects []models.Project
	if err := q.Preload("Client").Order("id desc").Limit(limit).Offset(offset).Find(&projects).Error; err != nil {
		return nil, 0, types.NewInternalError("Failed to list projects")
	}
	return projects, total, nil
}

// UpdateProject updates the descriptive fields of a project.
func UpdateProject(db *gorm.DB, id uint, in ProjectInput, actorID uint) (*models.Project, error) {
	project, err := GetProject(db, id)
	if err != nil {
		return nil, err
	}
	if in.ClientID != 0 && in.ClientID != project.ClientID {
		if _, err := GetClient(db, in.ClientID); err != nil {
			return nil, err
		}
		project.ClientID = in.ClientID
	}
	if in.ProjectName != "" {
		project.ProjectName = in.ProjectName
	}
	project.Description = in.Description
	project.SiteAddress = in.SiteAddress
	project.SiteLocation = in.SiteLocation
	project.UpdatedByID = &actorID

	if err := db.Save(project).Error; err != nil {
		return nil, types.NewInternalError("Failed to update project")
	}
	return project, nil
}

// UpdateProjectStatus moves a project along the transition table. The status
// write and the audit comment land in one transaction.
func UpdateProjectStatus(db *gorm.DB, id uint, to status.ProjectStatus, actorID uint) (*models.Project, error) {
	project, err := GetProject(db, id)
	if err != nil {
		return nil, err
	}

	if err := status.ValidateTransition(project.Status, to); err != nil {
		return nil, err
	}

	from := project.Status
	project.Status = to
	project.UpdatedByID = &actorID

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}
		comment := models.Comment{
			ProjectID:   project.ID,
			ActionType:  commentActionForStatus(to),
			Text:        "Status changed from '" + string(from) + "' to '" + string(to) + "'",
			CreatedByID: &actorID,
		}
		if raw, err := json.Marshal(map[string]string{"from": string(from), "to": string(to)}); err == nil {
			comment.Meta.JSON = raw
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to update project status")
	}
	return project, nil
}

// commentActionForStatus picks the audit action tag for a status change.
func commentActionForStatus(to status.ProjectStatus) string {
	switch to {
	case status.QuotationApproved:
		return models.ActionApproval
	case status.QuotationRejected, status.Cancelled:
		return models.ActionRejection
	default:
		return models.ActionProgressUpdate
	}
}

// UpdateProjectProgress sets the progress percentage and applies the
// progress-driven status advances. This path bypasses the transition table;
// see status.AdvanceForProgress.
func UpdateProjectProgress(db *gorm.DB, id uint, progress int, actorID uint) (*models.Project, error) {
	if progress < 0 || progress > 100 {
		return nil, types.NewValidationError("Progress must be between 0 and 100")
	}

	project, err := GetProject(db, id)
	if err != nil {
		return nil, err
	}

	project.Progress = progress
	project.Status = status.AdvanceForProgress(project.Status, progress)
	project.UpdatedByID = &actorID

	snapshot := progress
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}
		comment := models.Comment{
			ProjectID:   project.ID,
			ActionType:  models.ActionProgressUpdate,
			Text:        "Progress updated",
			Progress:    &snapshot,
			CreatedByID: &actorID,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to update project progress")
	}
	return project, nil
}

// AssignProject assigns an engineer to the project and fires the assignment
// notification.
func AssignProject(db *gorm.DB, notifier *Notifier, id, engineerID, actorID uint) (*models.Project, error) {
	project, err := GetProject(db, id)
	if err != nil {
		return nil, err
	}

	var engineer models.User
	if err := db.First(&engineer, engineerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Engineer not found")
		}
		return nil, types.NewInternalError("Failed to load engineer")
	}

	project.AssignedToID = &engineer.ID
	project.AssignedTo = &engineer
	project.UpdatedByID = &actorID
	if err := db.Save(project).Error; err != nil {
		return nil, types.NewInternalError("Failed to assign project")
	}

	if notifier != nil {
		notifier.ProjectAssigned(project, &engineer)
	}
	return project, nil
}

// DeleteProject removes a project, permitted only while still in draft.
func DeleteProject(db *gorm.DB, id uint) error {
	project, err := GetProject(db, id)
	if err != nil {
		return err
	}
	if project.Status != status.Draft {
		return types.NewValidationError("Only draft projects can be deleted, current status is '%s'", project.Status)
	}
	if err := db.Delete(project).Error; err != nil {
		return types.NewInternalError("Failed to delete project")
	}
	return nil
}

// ListProjectComments returns the audit trail for a project, newest first.
func ListProjectComments(db *gorm.DB, projectID uint) ([]models.Comment, error) {
	if _, err := GetProject(db, projectID); err != nil {
		return nil, err
	}
	var comments []models.Comment
	if err := db.Where("project_id = ?", projectID).Preload("CreatedBy").Order("id desc").Find(&comments).Error; err != nil {
		return nil, types.NewInternalError("Failed to list comments")
	}
	return comments, nil
}
