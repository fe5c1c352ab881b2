package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amlwatch/aml-backend/internal/domain"
)

const transactionColumns = `id, sender, sender_name, sender_account_number,
	receiver, recipient_name, bank_name, amount, status, version, created_at`

// TransactionFilter narrows admin/officer listings. Search matches
// case-insensitively against the transaction id, sender id, sender name and
// recipient name; Date matches the creation day.
type TransactionFilter struct {
	Search string
	Date   *time.Time
}

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (
			id, sender, sender_name, sender_account_number, receiver,
			recipient_name, bank_name, amount, status, version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		txn.ID, txn.Sender, txn.SenderName, txn.SenderAccountNumber, txn.Receiver,
		txn.RecipientName, txn.BankName, txn.Amount, txn.Status, txn.Version, txn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateTransaction)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// ListForCustomer returns transactions where the customer is the sender or
// the receiving account holder.
func (r *TransactionRepository) ListForCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE sender = $1 OR receiver = $1
		ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListForCustomer: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows, "ListForCustomer")
}

func (r *TransactionRepository) ListAll(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var conds []string
	var args []any

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, `(id ILIKE `+p+` OR sender ILIKE `+p+
			` OR sender_name ILIKE `+p+` OR recipient_name ILIKE `+p+`)`)
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		conds = append(conds, fmt.Sprintf("created_at::date = $%d::date", len(args)))
	}

	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows, "ListAll")
}

// UpdateStatus performs a version-checked status write. A stale version
// yields ErrVersionConflict; callers resolve existence beforehand.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, version int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3`,
		status, id, version,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrVersionConflict)
	}
	return nil
}

func collectTransactions(rows *sql.Rows, op string) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return txns, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.Sender, &t.SenderName, &t.SenderAccountNumber,
		&t.Receiver, &t.RecipientName, &t.BankName, &t.Amount,
		&t.Status, &t.Version, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
