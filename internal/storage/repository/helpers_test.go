package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/cardlink/internal/migrations"
	"github.com/magabrotheeeer/cardlink/internal/models"
)

const postgresPort = nat.Port("5432/tcp")

// testDataFactory создаёт тестовые записи напрямую через SQL.
type testDataFactory struct {
	storage *Storage
}

func newTestDataFactory(storage *Storage) *testDataFactory {
	return &testDataFactory{storage: storage}
}

// createUser создаёт пользователя с тарифом и возвращает его UID.
func (f *testDataFactory) createUser(t *testing.T, plan models.Plan, expiresAt *time.Time) string {
	uid := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, plan, plan_expires_at)
		VALUES ($1, $2, $3, $4)`,
		uid, uid+"@example.com", string(plan), expiresAt)
	require.NoError(t, err)
	return uid
}

// createCard создаёт карточку владельца и возвращает её ID.
func (f *testDataFactory) createCard(t *testing.T, ownerUID, slug string, createdAt time.Time) string {
	id := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO cards (id, owner_uid, slug, type, title, created_at)
		VALUES ($1, $2, $3, 'employee', $3, $4)`,
		id, ownerUID, slug, createdAt)
	require.NoError(t, err)
	return id
}

func (f *testDataFactory) countRows(t *testing.T, table, cardID string) int {
	var count int
	err := f.storage.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE card_id = $1", table), cardID).Scan(&count)
	require.NoError(t, err)
	return count
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, postgresPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"))
	require.NoError(t, CheckDatabaseReady(ctx, storage))
	return storage
}
