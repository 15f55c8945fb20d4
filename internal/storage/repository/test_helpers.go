package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/plan-connect/internal/migrations"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его uid
func (f *TestDataFactory) CreateUser(t *testing.T, username, email, role string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4) RETURNING uid`,
		username, email, "hashedpassword", role).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreatePlan создает тестовый тарифный план и возвращает его id
func (f *TestDataFactory) CreatePlan(t *testing.T, name, segment, advisorUID string, price float64, active bool) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO plans
		(name, description, price, data_allowance, minutes, sms, speed_4g, segment, active, advisor_uid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		name, "тестовый тариф", price, "20 ГБ", "500", "100", "до 100 Мбит/c",
		segment, active, advisorUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateContract создает тестовый контракт в заданном статусе и возвращает его id
func (f *TestDataFactory) CreateContract(t *testing.T, customerUID, planID, status string,
	advisorUID *string, expiresAt *time.Time) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO contracts
		(customer_uid, plan_id, status, advisor_uid, expires_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		customerUID, planID, status, advisorUID, expiresAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateMessage создает тестовое сообщение чата и возвращает его id
func (f *TestDataFactory) CreateMessage(t *testing.T, contractID, authorUID, content string, createdAt time.Time) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO messages (content, author_uid, contract_id, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		content, authorUID, contractID, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute)))
	require.NoError(t, err, "failed to start container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"), "Failed to apply migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
