package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/amlwatch/aml-backend/internal/domain"
)

const TestPassword = "password123"

// SeedCustomer inserts a Customer row and returns it with the password
// TestPassword.
func SeedCustomer(t *testing.T, db *sql.DB, username, customerID, accountNumber string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	balance := decimal.NewFromInt(100000)
	bank := "HDFC Bank"
	acctType := "Savings Account"

	u := &domain.User{
		ID:             uuid.New(),
		CustomerID:     &customerID,
		Name:           username + " test",
		DOB:            time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:        "1 Test Street",
		Contact:        "5550001111",
		Email:          username + "@test.com",
		Username:       username,
		PasswordHash:   string(hash),
		Role:           domain.RoleCustomer,
		BankName:       &bank,
		AccountType:    &acctType,
		AccountNumber:  &accountNumber,
		CurrentBalance: &balance,
		Access:         domain.AccessGranted,
		CreatedAt:      time.Now().UTC(),
	}

	insertUser(t, db, u)
	return u
}

// SeedAdmin inserts an Admin row with the password TestPassword.
func SeedAdmin(t *testing.T, db *sql.DB, username string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	u := &domain.User{
		ID:           uuid.New(),
		Name:         username + " admin",
		DOB:          time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:      "1 Admin Street",
		Contact:      "5550002222",
		Email:        username + "@test.com",
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Access:       domain.AccessGranted,
		CreatedAt:    time.Now().UTC(),
	}

	insertUser(t, db, u)
	return u
}

func insertUser(t *testing.T, db *sql.DB, u *domain.User) {
	t.Helper()

	var balance any
	if u.CurrentBalance != nil {
		balance = u.CurrentBalance.String()
	}

	_, err := db.Exec(
		`INSERT INTO users (
			id, customer_id, name, dob, address, contact, email, username,
			password_hash, role, bank_name, account_type, account_number,
			current_balance, access, version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 0, $16)`,
		u.ID, u.CustomerID, u.Name, u.DOB, u.Address, u.Contact, u.Email, u.Username,
		u.PasswordHash, u.Role, u.BankName, u.AccountType, u.AccountNumber,
		balance, u.Access, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed user %s: %v", u.Username, err)
	}
}
