package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/repository"
	"github.com/amlwatch/aml-backend/internal/testutil"
)

func newUser(username, email string) *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Name:         username + " test",
		DOB:          time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:      "1 Test Street",
		Contact:      "5550001111",
		Email:        email,
		Username:     username,
		PasswordHash: "not-a-real-hash",
		Role:         domain.RoleAdmin,
		Access:       domain.AccessGranted,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestUserRepository_Create(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := newUser("ada", "ada@test.com")
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.Nil(t, got.CurrentBalance)

	t.Run("duplicate username", func(t *testing.T) {
		dup := newUser("ada", "other@test.com")
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrUserExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := newUser("grace", "ada@test.com")
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrUserExists)
	})
}

func TestUserRepository_GetByCustomerID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.SeedCustomer(t, db, "alice", "CUST-1001", "12345678")

	got, err := repo.GetByCustomerID(ctx, "CUST-1001")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	require.NotNil(t, got.CurrentBalance)
	assert.True(t, got.CurrentBalance.Equal(*alice.CurrentBalance))

	_, err = repo.GetByCustomerID(ctx, "CUST-9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_ListByRole(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "alice", "CUST-1001", "12345678")
	testutil.SeedCustomer(t, db, "carol", "CUST-2002", "88887777")
	testutil.SeedAdmin(t, db, "ada")

	customers, err := repo.ListByRole(ctx, domain.RoleCustomer, "")
	require.NoError(t, err)
	assert.Len(t, customers, 2)

	admins, err := repo.ListByRole(ctx, domain.RoleAdmin, "")
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	t.Run("search by name fragment", func(t *testing.T) {
		found, err := repo.ListByRole(ctx, domain.RoleCustomer, "ALIce")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "alice test", found[0].Name)
	})

	t.Run("search by customer id", func(t *testing.T) {
		found, err := repo.ListByRole(ctx, domain.RoleCustomer, "CUST-2002")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "carol test", found[0].Name)
	})
}

func TestUserRepository_UpdateVersioning(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	seeded := testutil.SeedCustomer(t, db, "alice", "CUST-1001", "12345678")

	current, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)

	current.Address = "2 New Street"
	require.NoError(t, repo.Update(ctx, current))

	// The first writer bumped the version, so a second write carrying the
	// stale version must fail.
	current.Address = "3 Stale Street"
	assert.ErrorIs(t, repo.Update(ctx, current), domain.ErrVersionConflict)

	fresh, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "2 New Street", fresh.Address)
	assert.Equal(t, current.Version+1, fresh.Version)
}

func TestUserRepository_SetAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	seeded := testutil.SeedCustomer(t, db, "alice", "CUST-1001", "12345678")

	require.NoError(t, repo.SetAccess(ctx, "CUST-1001", domain.AccessDenied))

	got, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccessDenied, got.Access)

	err = repo.SetAccess(ctx, "CUST-9999", domain.AccessGranted)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
