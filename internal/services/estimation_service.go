package services

import (
	"errors"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/status"
	"github.com/nimbusworks/opsdesk/internal/types"
	"gorm.io/gorm"
)

// MaterialInput is a material line item as submitted by clients.
type MaterialInput struct {
	Description string            `json:"description"`
	Quantity    types.FlexFloat64 `json:"quantity"`
	UnitPrice   types.FlexFloat64 `json:"unitPrice"`
}

// LabourInput is a labour line item as submitted by clients.
type LabourInput struct {
	Designation string            `json:"designation"`
	Days        types.FlexFloat64 `json:"days"`
	Price       types.FlexFloat64 `json:"price"`
}

// TermInput is a terms/miscellaneous line item as submitted by clients.
type TermInput struct {
	Description string            `json:"description"`
	Quantity    types.FlexFloat64 `json:"quantity"`
	UnitPrice   types.FlexFloat64 `json:"unitPrice"`
}

// EstimationInput carries the mutable estimation fields.
type EstimationInput struct {
	Materials        types.FlexList[MaterialInput] `json:"materials"`
	Labour           types.FlexList[LabourInput]   `json:"labour"`
	Terms            types.FlexList[TermInput]     `json:"terms"`
	QuotationAmount  types.FlexFloat64             `json:"quotationAmount"`
	CommissionAmount types.FlexFloat64             `json:"commissionAmount"`
}

func (in *EstimationInput) lineItems() ([]models.EstimationMaterial, []models.EstimationLabour, []models.EstimationTerm) {
	materials := make([]models.EstimationMaterial, 0, len(in.Materials))
	for _, m := range in.Materials {
		materials = append(materials, models.EstimationMaterial{
			Description: m.Description,
			Quantity:    m.Quantity.Float64(),
			UnitPrice:   m.UnitPrice.Float64(),
		})
	}
	labour := make([]models.EstimationLabour, 0, len(in.Labour))
	for _, l := range in.Labour {
		labour = append(labour, models.EstimationLabour{
			Designation: l.Designation,
			Days:        l.Days.Float64(),
			Price:       l.Price.Float64(),
		})
	}
	terms := make([]models.EstimationTerm, 0, len(in.Terms))
	for _, t := range in.Terms {
		terms = append(terms, models.EstimationTerm{
			Description: t.Description,
			Quantity:    t.Quantity.Float64(),
			UnitPrice:   t.UnitPrice.Float64(),
		})
	}
	return materials, labour, terms
}

// CreateEstimation creates the single estimation for a project and moves a
// draft project to estimation_prepared.
func CreateEstimation(db *gorm.DB, projectID uint, in EstimationInput, creatorID uint) (*models.Estimation, error) {
	project, err := GetProject(db, projectID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Estimation{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return nil, types.NewInternalError("Failed to check existing estimation")
	}
	if count > 0 {
		return nil, types.NewValidationError("Project '%s' already has an estimation", project.ProjectNumber)
	}

	number, err := NextDocumentNumber(db, DocEstimation, projectID)
	if err != nil {
		return nil, types.NewInternalError("Failed to generate estimation number")
	}

	materials, labour, terms := in.lineItems()
	est := models.Estimation{
		EstimationNumber: number,
		ProjectID:        projectID,
		Materials:        materials,
		Labour:           labour,
		Terms:            terms,
		QuotationAmount:  in.QuotationAmount.Float64(),
		CommissionAmount: in.CommissionAmount.Float64(),
		CreatedByID:      &creatorID,
	}
	ComputeEstimation(&est)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&est).Error; err != nil {
			return err
		}
		if project.Status == status.Draft {
			project.Status = status.EstimationPrepared
			if err := tx.Save(project).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to create estimation")
	}
	return &est, nil
}

// GetEstimation loads an estimation with its line items.
func GetEstimation(db *gorm.DB, id uint) (*models.Estimation, error) {
	var est models.Estimation
	err := db.Preload("Materials").Preload("Labour").Preload("Terms").
		Preload("Project").Preload("CheckedBy").Preload("ApprovedBy").
		First(&est, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Estimation not found")
		}
		return nil, types.NewInternalError("Failed to load estimation")
	}
	return &est, nil
}

// GetEstimationByProject loads the estimation belonging to a project.
func GetEstimationByProject(db *gorm.DB, projectID uint) (*models.Estimation, error) {
	var est models.Estimation
	err := db.Preload("Materials").Preload("Labour").Preload("Terms").
		Where("project_id = ?", projectID).First(&est).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Estimation not found for this project")
		}
		return nil, types.NewInternalError("Failed to load estimation")
	}
	return &est, nil
}

// UpdateEstimation replaces the line items and amounts. An approved
// estimation is immutable; editing a checked one silently reverts the
// checked flag so it must be re-reviewed.
func UpdateEstimation(db *gorm.DB, id uint, in EstimationInput) (*models.Estimation, error) {
	est, err := GetEstimation(db, id)
	if err != nil {
		return nil, err
	}
	if est.IsApproved {
		return nil, types.NewValidationError("An approved estimation cannot be modified")
	}

	materials, labour, terms := in.lineItems()
	est.Materials = materials
	est.Labour = labour
	est.Terms = terms
	est.QuotationAmount = in.QuotationAmount.Float64()
	est.CommissionAmount = in.CommissionAmount.Float64()
	if est.IsChecked {
		est.IsChecked = false
		est.CheckedByID = nil
	}
	ComputeEstimation(est)

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.EstimationMaterial{}, &models.EstimationLabour{}, &models.EstimationTerm{},
		} {
			if err := tx.Where("estimation_id = ?", est.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(est).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to update estimation")
	}
	return est, nil
}

// CheckEstimation marks the estimation as reviewed and notifies the
// approver. The check and its audit comment land in one transaction; the
// notification is best-effort.
func CheckEstimation(db *gorm.DB, notifier *Notifier, id uint, checker *models.User, approverEmail string) (*models.Estimation, error) {
	est, err := GetEstimation(db, id)
	if err != nil {
		return nil, err
	}
	if est.IsApproved {
		return nil, types.NewValidationError("Estimation is already approved")
	}

	est.IsChecked = true
	est.CheckedByID = &checker.ID

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(est).Error; err != nil {
			return err
		}
		comment := models.Comment{
			ProjectID:   est.ProjectID,
			ActionType:  models.ActionCheck,
			Text:        "Estimation " + est.EstimationNumber + " checked",
			CreatedByID: &checker.ID,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to check estimation")
	}

	if notifier != nil && est.Project != nil {
		notifier.EstimationChecked(est, est.Project, approverEmail, checker.Name)
	}
	return est, nil
}

// ApproveEstimation approves a checked estimation. Approval requires a prior
// check; re-approving is rejected.
func ApproveEstimation(db *gorm.DB, id uint, approver *models.User) (*models.Estimation, error) {
	est, err := GetEstimation(db, id)
	if err != nil {
		return nil, err
	}
	if !est.IsChecked {
		return nil, types.NewValidationError("Estimation must be checked before approval")
	}
	if est.IsApproved {
		return nil, types.NewValidationError("Estimation is already approved")
	}

	est.IsApproved = true
	est.ApprovedByID = &approver.ID

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(est).Error; err != nil {
			return err
		}
		comment := models.Comment{
			ProjectID:   est.ProjectID,
			ActionType:  models.ActionApproval,
			Text:        "Estimation " + est.EstimationNumber + " approved",
			CreatedByID: &approver.ID,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to approve estimation")
	}
	return est, nil
}

// RejectEstimation rejects an estimation, clearing both gates so it goes
// back through review after edits.
func RejectEstimation(db *gorm.DB, id uint, actor *models.User) (*models.Estimation, error) {
	est, err := GetEstimation(db, id)
	if err != nil {
		return nil, err
	}
	if est.IsApproved {
		return nil, types.NewValidationError("An approved estimation cannot be rejected")
	}

	est.IsChecked = false
	est.CheckedByID = nil

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(est).Error; err != nil {
			return err
		}
		comment := models.Comment{
			ProjectID:   est.ProjectID,
			ActionType:  models.ActionRejection,
			Text:        "Estimation " + est.EstimationNumber + " rejected",
			CreatedByID: &actor.ID,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, types.NewInternalError("Failed to reject estimation")
	}
	return est, nil
}

// DeleteEstimation removes an estimation, blocked once approved.
func DeleteEstimation(db *gorm.DB, id uint) error {
	est, err := GetEstimation(db, id)
	if err != nil {
		return err
	}
	if est.IsApproved {
		return types.NewValidationError("An approved estimation cannot be deleted")
	}
	if err := db.Select("Materials", "Labour", "Terms").Delete(est).Error; err != nil {
		return types.NewInternalError("Failed to delete estimation")
	}
	return nil
}
