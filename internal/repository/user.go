package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/amlwatch/aml-backend/internal/domain"
)

const userColumns = `id, customer_id, name, dob, address, contact, email, username,
	password_hash, role, bank_name, account_type, account_number, current_balance,
	access, version, created_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (
			id, customer_id, name, dob, address, contact, email, username,
			password_hash, role, bank_name, account_type, account_number,
			current_balance, access, version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		user.ID, user.CustomerID, user.Name, user.DOB, user.Address, user.Contact,
		user.Email, user.Username, user.PasswordHash, user.Role, user.BankName,
		user.AccountType, user.AccountNumber, decimalPtr(user.CurrentBalance),
		user.Access, user.Version, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrUserExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByUsername: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE customer_id = $1 AND role = $2`,
		customerID, domain.RoleCustomer,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByCustomerID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByCustomerID: %w", err)
	}
	return u, nil
}

// ListByRole returns users of the given role, optionally filtered by a
// case-insensitive substring match on name or customer ID.
func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role, search string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1`
	args := []any{role}

	if search != "" {
		query += ` AND (name ILIKE $2 OR customer_id ILIKE $2)`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByRole: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByRole: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByRole: %w", err)
	}
	return users, nil
}

// Update writes the full mutable field set with a version check. A stale
// version yields ErrVersionConflict.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET
			name = $1, dob = $2, address = $3, contact = $4, email = $5,
			username = $6, password_hash = $7, bank_name = $8, account_type = $9,
			account_number = $10, current_balance = $11, access = $12,
			version = version + 1
		WHERE id = $13 AND version = $14`,
		user.Name, user.DOB, user.Address, user.Contact, user.Email,
		user.Username, user.PasswordHash, user.BankName, user.AccountType,
		user.AccountNumber, decimalPtr(user.CurrentBalance), user.Access,
		user.ID, user.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Update: %w", domain.ErrUserExists)
		}
		return fmt.Errorf("Update: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *UserRepository) SetAccess(ctx context.Context, customerID string, access domain.AccessStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET access = $1, version = version + 1
		WHERE customer_id = $2 AND role = $3`,
		access, customerID, domain.RoleCustomer,
	)
	if err != nil {
		return fmt.Errorf("SetAccess: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetAccess: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetAccess: %w", domain.ErrCustomerNotFound)
	}
	return nil
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var balance decimal.NullDecimal

	err := s.Scan(
		&u.ID, &u.CustomerID, &u.Name, &u.DOB, &u.Address, &u.Contact,
		&u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.BankName,
		&u.AccountType, &u.AccountNumber, &balance,
		&u.Access, &u.Version, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if balance.Valid {
		u.CurrentBalance = &balance.Decimal
	}
	return &u, nil
}

func decimalPtr(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
