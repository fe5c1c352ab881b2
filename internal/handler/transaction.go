package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amlwatch/aml-backend/internal/auth"
	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/logging"
	"github.com/amlwatch/aml-backend/internal/service/ledger"
)

type ledgerService interface {
	Create(ctx context.Context, req ledger.CreateRequest) (*domain.Transaction, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	ledger ledgerService
}

func NewTransactionHandler(svc ledgerService) *TransactionHandler {
	return &TransactionHandler{ledger: svc}
}

type createTransactionRequest struct {
	Receiver      string          `json:"receiver"`
	RecipientName string          `json:"recipient_name"`
	BankName      string          `json:"bank_name"`
	Amount        decimal.Decimal `json:"amount"`
}

func (r createTransactionRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Receiver == "" {
		errs = append(errs, FieldError{Field: "receiver", Message: "required"})
	}
	if r.RecipientName == "" {
		errs = append(errs, FieldError{Field: "recipient_name", Message: "required"})
	}
	if r.BankName == "" {
		errs = append(errs, FieldError{Field: "bank_name", Message: "required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	return errs
}

type transactionDTO struct {
	ID                  string          `json:"transaction_id"`
	Sender              string          `json:"sender"`
	SenderName          string          `json:"customer_name"`
	SenderAccountNumber string          `json:"customer_account_number"`
	Receiver            string          `json:"receiver"`
	RecipientName       string          `json:"recipient_name"`
	BankName            string          `json:"bank_name"`
	Amount              decimal.Decimal `json:"amount"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:                  t.ID,
		Sender:              t.Sender,
		SenderName:          t.SenderName,
		SenderAccountNumber: t.SenderAccountNumber,
		Receiver:            t.Receiver,
		RecipientName:       t.RecipientName,
		BankName:            t.BankName,
		Amount:              t.Amount,
		Status:              string(t.Status),
		CreatedAt:           t.CreatedAt,
	}
}

func toTransactionDTOs(txns []domain.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txns))
	for i := range txns {
		out = append(out, toTransactionDTO(&txns[i]))
	}
	return out
}

// Create submits a transfer on behalf of the authenticated customer. The
// response carries the post-classification status.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.CustomerID == nil {
		RespondAppError(w, ErrForbidden, nil)
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	txn, err := h.ledger.Create(r.Context(), ledger.CreateRequest{
		SenderCustomerID: *claims.CustomerID,
		Receiver:         req.Receiver,
		RecipientName:    req.RecipientName,
		BankName:         req.BankName,
		Amount:           req.Amount,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create transaction", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn))
}

// List returns the authenticated customer's transactions, as sender or
// receiver.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.CustomerID == nil {
		RespondAppError(w, ErrForbidden, nil)
		return
	}

	txns, err := h.ledger.ListForCustomer(r.Context(), *claims.CustomerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTOs(txns))
}
