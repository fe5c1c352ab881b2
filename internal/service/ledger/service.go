// Package ledger implements the transaction lifecycle: creation with a
// sender snapshot, the classifier consult, and the manual flag/unflag
// transitions.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amlwatch/aml-backend/internal/chain"
	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/logging"
	"github.com/amlwatch/aml-backend/internal/repository"
)

type transactionRepo interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error)
	ListAll(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, version int64) error
}

type customerRepo interface {
	GetByCustomerID(ctx context.Context, customerID string) (*domain.User, error)
}

type suspicionClassifier interface {
	Classify(ctx context.Context, amount decimal.Decimal) (bool, error)
}

type chainRecorder interface {
	Enabled() bool
	Record(ctx context.Context, entry chain.Entry) error
}

type Service struct {
	transactions transactionRepo
	customers    customerRepo
	classifier   suspicionClassifier
	recorder     chainRecorder

	// failClosed controls the classifier failure policy: when true a
	// classifier error flags the transaction instead of leaving it Pending.
	failClosed        bool
	classifierTimeout time.Duration
}

func NewService(
	transactions transactionRepo,
	customers customerRepo,
	classifier suspicionClassifier,
	recorder chainRecorder,
	failClosed bool,
	classifierTimeout time.Duration,
) *Service {
	return &Service{
		transactions:      transactions,
		customers:         customers,
		classifier:        classifier,
		recorder:          recorder,
		failClosed:        failClosed,
		classifierTimeout: classifierTimeout,
	}
}

// ListForCustomer never returns a record where the customer is neither
// sender nor receiver.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	txns, err := s.transactions.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("ListForCustomer: %w", err)
	}
	return txns, nil
}

// ListAll serves admin and officer views. Sender name and account number come
// from the creation-time snapshot, so listings stay consistent with the
// stored record even after profile edits.
func (s *Service) ListAll(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	txns, err := s.transactions.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return txns, nil
}

// Flag marks a transaction suspicious. Flagging an already-flagged
// transaction is a no-op success.
func (s *Service) Flag(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.setStatus(ctx, id, domain.TransactionStatusFlagged)
}

// Unflag clears a suspicion mark by setting the status to Approved. There is
// no standalone approve operation: Approved is only reachable this way, even
// from Pending.
func (s *Service) Unflag(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.setStatus(ctx, id, domain.TransactionStatusApproved)
}

func (s *Service) setStatus(ctx context.Context, id string, status domain.TransactionStatus) (*domain.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("setStatus: %w", err)
	}

	if txn.Status == status {
		return txn, nil
	}

	if err := s.transactions.UpdateStatus(ctx, id, status, txn.Version); err != nil {
		return nil, fmt.Errorf("setStatus: %w", err)
	}

	logging.FromContext(ctx).Info("transaction status changed",
		"transaction_id", id,
		"from", txn.Status,
		"to", status,
	)

	txn.Status = status
	txn.Version++
	return txn, nil
}
