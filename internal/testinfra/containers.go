// Package testinfra spins up throwaway backing services for integration
// tests and the local dev loop. Expects environment variables to be loaded
// from .env files.
package testinfra

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainers holds the started containers so callers can tear them down.
type TestContainers struct {
	Network          *testcontainers.DockerNetwork
	DBContainer      testcontainers.Container
	StorageContainer testcontainers.Container

	DBHost      string
	DBPort      string
	StorageHost string
	StoragePort string
}

// Terminate stops every started container and removes the network. Safe to
// call on a partially constructed value.
func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.StorageContainer != nil {
		if err := tc.StorageContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate storage: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MariaDB: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateAllTestContainers starts MariaDB and a MinIO-compatible object store
// on a shared network and returns their mapped endpoints.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	tc.Network = nw

	dbImage := getenv("DB_IMAGE", "mariadb:11")
	tcpDbPort, err := nat.NewPort("tcp", getenv("DB_PORT", "3306"))
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": getenv("DB_ROOT_PASSWORD", "root"),
				"MYSQL_DATABASE":      getenv("DB_DATABASE", "opsdesk"),
				"MYSQL_USER":          getenv("DB_USER", "opsdesk"),
				"MYSQL_PASSWORD":      getenv("DB_PASSWORD", "opsdesk"),
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{nw.Name},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start MariaDB")
	}
	tc.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	tc.DBHost = dbHost
	tc.DBPort = dbPort.Port()

	if err := waitForMariaDB(dbHost, dbPort.Port()); err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "MariaDB not ready")
	}
	logMessage(t, "DB_HOST=%s DB_PORT=%s", dbHost, dbPort.Port())

	storageImage := getenv("STORAGE_IMAGE", "minio/minio:latest")
	tcpStoragePort, err := nat.NewPort("tcp", "9000")
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create storage port")
	}

	storageContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        storageImage,
			ExposedPorts: []string{string(tcpStoragePort)},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     getenv("STORAGE_ACCESS_KEY", "opsdesk"),
				"MINIO_ROOT_PASSWORD": getenv("STORAGE_SECRET_KEY", "opsdesk-secret"),
			},
			WaitingFor: wait.ForListeningPort(tcpStoragePort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{nw.Name},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start object storage")
	}
	tc.StorageContainer = storageContainer

	storageHost, _ := storageContainer.Host(ctx)
	storagePort, _ := storageContainer.MappedPort(ctx, tcpStoragePort)
	tc.StorageHost = storageHost
	tc.StoragePort = storagePort.Port()
	logMessage(t, "STORAGE_ENDPOINT=%s:%s", storageHost, storagePort.Port())

	logMessage(t, "Test containers started successfully")
	return tc, nil
}

func waitForMariaDB(host, port string) error {
	dsn := fmt.Sprintf("root:%s@tcp(%s:%s)/", getenv("DB_ROOT_PASSWORD", "root"), host, port)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
