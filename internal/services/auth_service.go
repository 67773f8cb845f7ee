package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/authorizerdev/authorizer-go"
	"github.com/nimbusworks/opsdesk/internal/config"
	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	var initErr error

	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
	})

	return initErr
}

// SessionIdentity is the subset of the Authorizer profile the backend keeps.
type SessionIdentity struct {
	AuthID string
	Email  string
	Name   string
	Roles  []string
}

// ValidateSession validates a session token for the given roles and returns
// the authenticated identity.
func ValidateSession(token string, roles []string) (*SessionIdentity, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	// Convert roles to []*string
	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: token,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	return identityFromProfile(res.User)
}

// identityFromProfile extracts the fields we keep from the Authorizer user
// profile via a JSON round trip, which tolerates SDK struct changes.
func identityFromProfile(user interface{}) (*SessionIdentity, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to read user profile: %w", err)
	}
	var profile struct {
		ID         string   `json:"id"`
		Email      string   `json:"email"`
		GivenName  *string  `json:"given_name"`
		FamilyName *string  `json:"family_name"`
		Roles      []string `json:"roles"`
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse user profile: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("user profile has no id")
	}

	var nameParts []string
	if profile.GivenName != nil && *profile.GivenName != "" {
		nameParts = append(nameParts, *profile.GivenName)
	}
	if profile.FamilyName != nil && *profile.FamilyName != "" {
		nameParts = append(nameParts, *profile.FamilyName)
	}

	return &SessionIdentity{
		AuthID: profile.ID,
		Email:  profile.Email,
		Name:   strings.Join(nameParts, " "),
		Roles:  profile.Roles,
	}, nil
}

// EnsureUser upserts the local mirror row for an Authorizer identity and
// returns it. The local row exists so domain records can reference users by
// foreign key.
func EnsureUser(db *gorm.DB, identity *SessionIdentity) (*models.User, error) {
	role := models.RoleEngineer
	for _, r := range identity.Roles {
		switch r {
		case models.RoleSuperAdmin, models.RoleAdmin, models.RoleFinance, models.RoleEngineer:
			role = r
		}
		if role == models.RoleSuperAdmin {
			break
		}
	}

	user := models.User{
		AuthID: identity.AuthID,
		Email:  identity.Email,
		Name:   identity.Name,
		Role:   role,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "auth_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "role"}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	// OnConflict updates do not backfill the primary key on all drivers.
	if user.ID == 0 {
		if err := db.Where("auth_id = ?", identity.AuthID).First(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
	}
	return &user, nil
}
