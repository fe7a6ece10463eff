package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/storefront/internal/migrations"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID.
func (f *TestDataFactory) CreateUser(t *testing.T, email string) string {
	t.Helper()
	uid, err := f.storage.RegisterUser(context.Background(), models.User{
		Email: email, PasswordHash: "hash", Role: models.RoleUser,
	})
	require.NoError(t, err)
	return uid
}

// CreatePlan создает тестовый план.
func (f *TestDataFactory) CreatePlan(t *testing.T, price int64, days int) int64 {
	t.Helper()
	id, err := f.storage.CreatePlan(context.Background(), models.Plan{
		Name: "plan", Price: price, DurationInDays: days,
	})
	require.NoError(t, err)
	return id
}

// CreateProduct создает товар каталога.
func (f *TestDataFactory) CreateProduct(t *testing.T, title string, price int64) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO products (title, price, file_ref, image_ref)
		VALUES ($1, $2, $3, $4) RETURNING id`, title, price, "files/"+title, "img/"+title).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateCheckoutOrder создает ожидающий заказ шлюза.
func (f *TestDataFactory) CreateCheckoutOrder(t *testing.T, gatewayOrderID, userUID string, amount int64) {
	t.Helper()
	require.NoError(t, f.storage.CreateCheckoutOrder(context.Background(), models.CheckoutOrder{
		GatewayOrderID: gatewayOrderID, UserUID: userUID, Amount: amount, Currency: "INR", Receipt: "rcpt_" + gatewayOrderID,
	}))
}

// CountRows возвращает число строк таблицы.
func (f *TestDataFactory) CountRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.storage.DB.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
