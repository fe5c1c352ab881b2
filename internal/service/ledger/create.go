package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amlwatch/aml-backend/internal/chain"
	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/logging"
)

// Transaction ids collide rarely enough that a couple of retries suffice.
const createAttempts = 3

type CreateRequest struct {
	SenderCustomerID string
	Receiver         string
	RecipientName    string
	BankName         string
	Amount           decimal.Decimal
}

// Create persists a Pending transaction carrying a snapshot of the sender's
// current name and account number, then consults the classifier and flags
// the record before returning if the classifier signals suspicious. The
// record is a historical fact: later profile edits never touch it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("Create: %w", domain.ErrInvalidAmount)
	}

	sender, err := s.customers.GetByCustomerID(ctx, req.SenderCustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Create: %w", domain.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("Create: %w", err)
	}

	accountNumber := ""
	if sender.AccountNumber != nil {
		accountNumber = *sender.AccountNumber
	}

	txn := &domain.Transaction{
		Sender:              req.SenderCustomerID,
		SenderName:          sender.Name,
		SenderAccountNumber: accountNumber,
		Receiver:            req.Receiver,
		RecipientName:       req.RecipientName,
		BankName:            req.BankName,
		Amount:              req.Amount,
		Status:              domain.TransactionStatusPending,
		CreatedAt:           time.Now().UTC(),
	}

	if err := s.persistWithFreshID(ctx, txn); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	if s.classify(ctx, txn.Amount) {
		if err := s.transactions.UpdateStatus(ctx, txn.ID, domain.TransactionStatusFlagged, txn.Version); err != nil {
			return nil, fmt.Errorf("Create: flag: %w", err)
		}
		txn.Status = domain.TransactionStatusFlagged
		txn.Version++

		log.Info("transaction flagged at creation", "transaction_id", txn.ID, "amount", txn.Amount)
		s.recordOnChain(ctx, txn)
	}

	return txn, nil
}

func (s *Service) persistWithFreshID(ctx context.Context, txn *domain.Transaction) error {
	var err error
	for range createAttempts {
		txn.ID = newTransactionID()
		err = s.transactions.Create(ctx, txn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateTransaction) {
			return err
		}
	}
	return err
}

// classify resolves the suspicion signal under the configured failure
// policy: a classifier error counts as suspicious only when failing closed.
func (s *Service) classify(ctx context.Context, amount decimal.Decimal) bool {
	ctx, cancel := context.WithTimeout(ctx, s.classifierTimeout)
	defer cancel()

	suspicious, err := s.classifier.Classify(ctx, amount)
	if err != nil {
		logging.FromContext(ctx).Error("classifier failed",
			"error", err,
			"fail_closed", s.failClosed,
		)
		return s.failClosed
	}
	return suspicious
}

// recordOnChain is best-effort: gateway failures are logged and swallowed.
func (s *Service) recordOnChain(ctx context.Context, txn *domain.Transaction) {
	if s.recorder == nil || !s.recorder.Enabled() {
		return
	}

	entry := chain.Entry{
		TransactionID:    txn.ID,
		CustomerID:       txn.Sender,
		CustomerName:     txn.SenderName,
		CustomerAccount:  txn.SenderAccountNumber,
		RecipientName:    txn.RecipientName,
		RecipientAccount: txn.Receiver,
		Amount:           txn.Amount,
		Flagged:          txn.Status == domain.TransactionStatusFlagged,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		logging.FromContext(ctx).Error("chain recording failed",
			"error", err,
			"transaction_id", txn.ID,
		)
	}
}

func newTransactionID() string {
	return fmt.Sprintf("TXN-%06d", rand.IntN(900000)+100000)
}
