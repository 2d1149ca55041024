package repositories

import (
	"context"
	"testing"
	"time"

	"storefront/config"
	"storefront/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests need docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, config.RunMigrations(dsn, "../database/migration"))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func insertProduct(t *testing.T, db *pgxpool.Pool, id, name, color string, sizes []string, quantities string, active bool) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO products (id, name, price, color, sizes, size_quantities, is_active)
		VALUES ($1, $2, '49.50'::numeric, $3, $4, $5::jsonb, $6)`,
		id, name, color, sizes, quantities, active)
	require.NoError(t, err)
}

func createUser(t *testing.T, users *UserRepository, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "hash", Role: models.RoleCustomer, FullName: "Buyer"}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestProductRepository_StockFor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	insertProduct(t, db, "black-hoodie", "Black Hoodie", "black", []string{"M"}, `{"M": 1}`, true)
	insertProduct(t, db, "white-tee", "White Tee", "white", []string{"M", "L"}, `{"M": 4, "L": 0}`, true)

	stock, err := repo.StockFor(context.Background(), []string{"black-hoodie", "khaki-hoodie", "white-tee", "ghost"})
	require.NoError(t, err)

	assert.Equal(t, 1, stock.Available("black-hoodie", "M"))
	assert.Equal(t, 0, stock.Available("black-hoodie", "L"))
	assert.Equal(t, 19, stock.Available("khaki-hoodie", "M"))
	assert.Equal(t, 4, stock.Available("white-tee", "M"))
	assert.NotContains(t, stock, "ghost")
	assert.Equal(t, 0, stock.Available("ghost", "M"))

	empty, err := repo.StockFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductRepository_ListMergesCatalog(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	insertProduct(t, db, "white-tee", "White Tee", "white", []string{"M"}, `{"M": 4}`, true)
	insertProduct(t, db, "khaki-hoodie", "Khaki Hoodie", "khaki", []string{"M", "L", "XL"}, `{"M": 1}`, false)

	products, total, err := repo.List(ctx, models.ProductFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, products, 2)
	assert.Equal(t, "white-tee", products[0].ID)
	assert.Equal(t, "black-hoodie", products[1].ID)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("49.5")))

	page, total, err := repo.List(ctx, models.ProductFilter{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "black-hoodie", page[0].ID)

	_, total, err = repo.List(ctx, models.ProductFilter{Search: "TEE"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	sized, total, err := repo.List(ctx, models.ProductFilter{Size: "XL"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "black-hoodie", sized[0].ID)

	_, total, err = repo.List(ctx, models.ProductFilter{Search: "100%"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestProductRepository_FindByIDAndImage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	insertProduct(t, db, "white-tee", "White Tee", "white", []string{"M"}, `{"M": 4}`, true)

	p, err := repo.FindByID(ctx, "white-tee")
	require.NoError(t, err)
	assert.Equal(t, 4, p.SizeQuantities["M"])

	p, err = repo.FindByID(ctx, "black-hoodie")
	require.NoError(t, err)
	assert.Equal(t, "black", p.Color)

	_, err = repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.UpdateImageURL(ctx, "white-tee", "https://cdn.example/tee.png"))
	assert.ErrorIs(t, repo.UpdateImageURL(ctx, "ghost", "x"), ErrNotFound)
}

func TestOrderRepository_CreateFindAndCancel(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	buyer := createUser(t, users, "buyer@example.com")
	other := createUser(t, users, "other@example.com")

	items := []models.LineItem{{ProductID: "black-hoodie", Name: "Hoodie", UnitPrice: decimal.RequireFromString("99.99"), Quantity: 2, Size: "M"}}
	created, err := orders.Create(ctx, models.NewOrder{
		UserID:          buyer.ID,
		Items:           items,
		Total:           decimal.RequireFromString("199.98"),
		ShippingAddress: "12 Main St",
		PaymentMethod:   "card",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, created.Status)
	assert.Equal(t, "199.98", created.Total.StringFixed(2))
	assert.WithinDuration(t, created.CreatedAt.Add(7*24*time.Hour), created.EstimatedDelivery, time.Minute)
	assert.Equal(t, items[0].ProductID, created.Items[0].ProductID)

	found, err := orders.FindForUser(ctx, buyer.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = orders.FindForUser(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = orders.UpdateStatus(ctx, other.ID, created.ID, models.OrderStatusConfirmed, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, err := orders.UpdateStatus(ctx, buyer.ID, created.ID, models.OrderStatusConfirmed, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	_, err = orders.UpdateStatus(ctx, buyer.ID, created.ID, models.OrderStatusConfirmed, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderRepository_ListByUserNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	buyer := createUser(t, users, "buyer@example.com")
	var ids []string
	for i := 0; i < 2; i++ {
		o, err := orders.Create(ctx, models.NewOrder{UserID: buyer.ID, Items: []models.LineItem{}, Total: decimal.Zero, ShippingAddress: "x", PaymentMethod: "card"})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	list, err := orders.ListByUser(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[1], list[0].ID)
	assert.Equal(t, ids[0], list[1].ID)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	buyer := createUser(t, users, "Buyer@Example.com")
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "buyer@example.com", Password: "h", Role: models.RoleCustomer}), ErrDuplicate)

	found, err := users.FindByEmail(ctx, "BUYER@example.com")
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, found.ID)

	phone := "0812"
	updated, err := users.UpdateProfile(ctx, buyer.ID, models.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Buyer", updated.FullName)
	assert.Equal(t, "0812", updated.Phone)

	require.NoError(t, users.UpdatePhotoURL(ctx, buyer.ID, "https://cdn.example/me.png"))
	found, err = users.FindByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/me.png", found.PhotoURL)

	_, err = users.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, users.UpdatePhotoURL(ctx, "00000000-0000-0000-0000-000000000000", "x"), ErrNotFound)
}
