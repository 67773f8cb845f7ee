package testinfra_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/nimbusworks/opsdesk/internal/config"
	"github.com/nimbusworks/opsdesk/internal/database"
	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/storage"
	"github.com/nimbusworks/opsdesk/internal/testinfra"
)

// TestBackingServices exercises the full stack against real MariaDB and
// MinIO containers. Requires Docker; enable with OPSDESK_INTEGRATION=1.
func TestBackingServices(t *testing.T) {
	if os.Getenv("OPSDESK_INTEGRATION") == "" {
		t.Skip("set OPSDESK_INTEGRATION=1 to run container-backed tests")
	}

	tc, err := testinfra.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start containers: %v", err)
	}
	defer tc.Terminate(t)

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            tc.DBHost,
		DBPort:            tc.DBPort,
		DBDatabase:        "opsdesk",
		DBUser:            "opsdesk",
		DBPassword:        "opsdesk",
		DBConnectionLimit: 5,
		StorageEndpoint:   fmt.Sprintf("%s:%s", tc.StorageHost, tc.StoragePort),
		StorageAccessKey:  "opsdesk",
		StorageSecretKey:  "opsdesk-secret",
		StorageBucket:     "opsdesk-test",
		StorageRegion:     "us-east-1",
		StorageUseSSL:     false,
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to MariaDB: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	user := models.User{AuthID: "it-admin", Email: "it@example.com", Name: "IT Admin", Role: models.RoleAdmin}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	client, err := services.CreateClient(db, services.ClientInput{
		ClientName: "Integration Client",
		TRN:        "100399999999901",
	}, user.ID)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	project, err := services.CreateProject(db, services.ProjectInput{
		ProjectName: "Integration Project",
		ClientID:    client.ID,
	}, user.ID)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.ProjectNumber == "" {
		t.Error("project number not generated against MariaDB")
	}

	ctx := context.Background()
	store, err := storage.NewMinioStorage(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to MinIO: %v", err)
	}

	key := storage.ObjectKey("quotations", "it.txt")
	body := []byte("hello")
	obj, err := store.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "text/plain")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if obj.URL == "" || obj.Key != key {
		t.Errorf("upload returned url=%q key=%q", obj.URL, obj.Key)
	}
	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Errorf("Delete: %v", err)
	}
}
