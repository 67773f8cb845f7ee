package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/nimbusworks/opsdesk/internal/database"
	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/storage"
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
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	// One connection so every session sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := models.User{
		AuthID: fmt.Sprintf("auth-%s-%d", role, testSeq()),
		Email:  fmt.Sprintf("%s%d@example.com", role, testSeq()),
		Name:   "Test " + role,
		Role:   role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return &user
}

func seedClient(t *testing.T, db *gorm.DB) *models.Client {
	t.Helper()
	client := models.Client{
		ClientName: "Acme Facilities",
		TRN:        fmt.Sprintf("1003%011d", testSeq()),
		Address:    "Industrial Area 4",
		PostalCode: "123456",
		Email:      "contact@acme.example",
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("Failed to seed client: %v", err)
	}
	return &client
}

func seedProject(t *testing.T, db *gorm.DB, creator *models.User) *models.Project {
	t.Helper()
	client := seedClient(t, db)
	project, err := services.CreateProject(db, services.ProjectInput{
		ProjectName: "HVAC Refit",
		Description: "Full HVAC replacement",
		ClientID:    client.ID,
		SiteAddress: "Warehouse 7",
	}, creator.ID)
	if err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	return project
}

var (
	seqMu sync.Mutex
	seq   int
)

func testSeq() int {
	seqMu.Lock()
	defer seqMu.Unlock()
	seq++
	return seq
}

func jsonUnmarshal(payload string, v interface{}) error {
	return json.Unmarshal([]byte(payload), v)
}

// fakeStorage records uploads and deletes in memory.
type fakeStorage struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	deleted  []string
	failNext bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, fmt.Errorf("upload refused")
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.uploads[key] = content
	return &storage.Object{URL: "https://cdn.example/" + key, Key: key}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploads, key)
	f.deleted = append(f.deleted, key)
	return nil
}
