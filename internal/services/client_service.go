package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/types"
	"gorm.io/gorm"
)

var postalCodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// ClientInput carries the mutable client fields.
type ClientInput struct {
	ClientName string `json:"clientName"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
	Mobile     string `json:"mobile"`
	Telephone  string `json:"telephone"`
	TRN        string `json:"trn"`
	Email      string `json:"email"`
}

func (in *ClientInput) validate() error {
	if strings.TrimSpace(in.ClientName) == "" {
		return types.NewValidationError("Client name is required")
	}
	if strings.TrimSpace(in.TRN) == "" {
		return types.NewValidationError("TRN is required")
	}
	if in.PostalCode != "" && !postalCodeRe.MatchString(in.PostalCode) {
		return types.NewValidationError("Postal code must be exactly 6 digits")
	}
	return nil
}

// trnTaken reports whether another client (excluding excludeID) already
// holds the TRN.
func trnTaken(db *gorm.DB, trn string, excludeID uint) (bool, error) {
	var count int64
	q := db.Model(&models.Client{}).Where("trn = ?", trn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateClient validates input and TRN uniqueness, then persists the client.
func CreateClient(db *gorm.DB, in ClientInput, creatorID uint) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	taken, err := trnTaken(db, in.TRN, 0)
	if err != nil {
		return nil, types.NewInternalError("Failed to check TRN uniqueness")
	}
	if taken {
		return nil, types.NewValidationError("A client with TRN '%s' already exists", in.TRN)
	}

	client := models.Client{
		ClientName:  in.ClientName,
		Address:     in.Address,
		PostalCode:  in.PostalCode,
		Mobile:      in.Mobile,
		Telephone:   in.Telephone,
		TRN:         in.TRN,
		Email:       in.Email,
		CreatedByID: &creatorID,
	}
	if err := db.Create(&client).Error; err != nil {
		return nil, types.NewInternalError("Failed to create client")
	}
	return &client, nil
}

// GetClient loads a client by id.
func GetClient(db *gorm.DB, id uint) (*models.Client, error) {
	var client models.Client
	if err := db.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Client not found")
		}
		return nil, types.NewInternalError("Failed to load client")
	}
	return &client, nil
}

// ListClients returns a page of clients, optionally filtered by a name or
// TRN search term.
func ListClients(db *gorm.DB, page, limit int, search string) ([]models.Client, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	q := db.Model(&models.Client{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(client_name) LIKE ? OR lower(trn) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, types.NewInternalError("Failed to count clients")
	}

	var clients []models.Client
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		return nil, 0, types.NewInternalError("Failed to list clients")
	}
	return clients, total, nil
}

// UpdateClient validates the new postal code and re-checks TRN uniqueness
// against every other client before saving.
func UpdateClient(db *gorm.DB, id uint, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	client, err := GetClient(db, id)
	if err != nil {
		return nil, err
	}

	taken, err := trnTaken(db, in.TRN, id)
	if err != nil {
		return nil, types.NewInternalError("Failed to check TRN uniqueness")
	}
	if taken {
		return nil, types.NewValidationError("A client with TRN '%s' already exists", in.TRN)
	}

	client.ClientName = in.ClientName
	client.Address = in.Address
	client.PostalCode = in.PostalCode
	client.Mobile = in.Mobile
	client.Telephone = in.Telephone
	client.TRN = in.TRN
	client.Email = in.Email
	if err := db.Save(client).Error; err != nil {
		return nil, types.NewInternalError("Failed to update client")
	}
	return client, nil
}

// DeleteClient removes a client unconditionally. There is no referential
// guard against in-flight projects referencing the client.
// TODO: block deletion while open projects reference the client; needs a
// product decision on what happens to their historical documents.
func DeleteClient(db *gorm.DB, id uint) error {
	client, err := GetClient(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(client).Error; err != nil {
		return types.NewInternalError("Failed to delete client")
	}
	return nil
}
