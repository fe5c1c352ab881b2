package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/logging"
	"github.com/amlwatch/aml-backend/internal/repository"
)

type bankUserStore interface {
	Create(ctx context.Context, user *domain.User) error
	ListByRole(ctx context.Context, role domain.Role, search string) ([]domain.User, error)
	SetAccess(ctx context.Context, customerID string, access domain.AccessStatus) error
}

type bankLedgerService interface {
	ListAll(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error)
	Flag(ctx context.Context, id string) (*domain.Transaction, error)
	Unflag(ctx context.Context, id string) (*domain.Transaction, error)
}

type feedbackReader interface {
	List(ctx context.Context) ([]domain.Feedback, error)
}

// BankHandler serves the officer/admin surface: customer and officer
// management, the enriched transaction listing, manual flagging, and the
// feedback review.
type BankHandler struct {
	users    bankUserStore
	ledger   bankLedgerService
	feedback feedbackReader
}

func NewBankHandler(users bankUserStore, ledger bankLedgerService, feedback feedbackReader) *BankHandler {
	return &BankHandler{users: users, ledger: ledger, feedback: feedback}
}

func (h *BankHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	customers, err := h.users.ListByRole(r.Context(), domain.RoleCustomer, search)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list customers", "error", err)
		RespondDomainError(w, err)
		return
	}

	out := make([]profileDTO, 0, len(customers))
	for i := range customers {
		out = append(out, toProfileDTO(&customers[i]))
	}
	RespondSuccess(w, http.StatusOK, out)
}

type createOfficerRequest struct {
	OfficerID string `json:"officer_id"`
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	Address   string `json:"address"`
	Contact   string `json:"contact"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r createOfficerRequest) Validate() []FieldError {
	var errs []FieldError

	required := []struct{ field, value string }{
		{"officer_id", r.OfficerID},
		{"name", r.Name},
		{"dob", r.DOB},
		{"address", r.Address},
		{"contact", r.Contact},
		{"email", r.Email},
		{"password", r.Password},
	}
	for _, f := range required {
		if f.value == "" {
			errs = append(errs, FieldError{Field: f.field, Message: "required"})
		}
	}

	if r.DOB != "" {
		if _, err := time.Parse("2006-01-02", r.DOB); err != nil {
			errs = append(errs, FieldError{Field: "dob", Message: "must be a date in YYYY-MM-DD format"})
		}
	}

	return errs
}

// CreateOfficer registers a BankOfficer account. Officers sign in with their
// email as username; the officer reference is stored in the customer ID slot.
func (h *BankHandler) CreateOfficer(w http.ResponseWriter, r *http.Request) {
	var req createOfficerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to hash password", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	dob, _ := time.Parse("2006-01-02", req.DOB)
	officerID := req.OfficerID

	officer := &domain.User{
		ID:           uuid.New(),
		CustomerID:   &officerID,
		Name:         req.Name,
		DOB:          dob,
		Address:      req.Address,
		Contact:      req.Contact,
		Email:        req.Email,
		Username:     req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleBankOfficer,
		Access:       domain.AccessGranted,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Create(r.Context(), officer); err != nil {
		RespondDomainError(w, err)
		return
	}

	logging.FromContext(r.Context()).Info("officer created", "officer_id", officerID)
	RespondSuccess(w, http.StatusCreated, map[string]string{"message": "Officer added successfully"})
}

func (h *BankHandler) ListOfficers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	officers, err := h.users.ListByRole(r.Context(), domain.RoleBankOfficer, search)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list officers", "error", err)
		RespondDomainError(w, err)
		return
	}

	out := make([]profileDTO, 0, len(officers))
	for i := range officers {
		out = append(out, toProfileDTO(&officers[i]))
	}
	RespondSuccess(w, http.StatusOK, out)
}

type setAccessRequest struct {
	CustomerID string `json:"customer_id"`
	Access     string `json:"access"`
}

func (r setAccessRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CustomerID == "" {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if r.Access == "" {
		errs = append(errs, FieldError{Field: "access", Message: "required"})
	} else if !domain.AccessStatus(r.Access).IsValid() {
		errs = append(errs, FieldError{Field: "access", Message: "must be Granted, Denied, or Pending"})
	}
	return errs
}

func (h *BankHandler) SetAccess(w http.ResponseWriter, r *http.Request) {
	var req setAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.users.SetAccess(r.Context(), req.CustomerID, domain.AccessStatus(req.Access)); err != nil {
		logging.FromContext(r.Context()).Error("failed to update access", "error", err, "customer_id", req.CustomerID)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"message": "Customer access updated successfully"})
}

// ListTransactions returns every transaction, with optional search and date
// query filters.
func (h *BankHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := repository.TransactionFilter{
		Search: r.URL.Query().Get("search"),
	}

	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "date", Message: "must be a date in YYYY-MM-DD format"}})
			return
		}
		filter.Date = &parsed
	}

	txns, err := h.ledger.ListAll(r.Context(), filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTOs(txns))
}

func (h *BankHandler) FlagTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.ledger.Flag(r.Context(), r.PathValue("id"))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to flag transaction", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTO(txn))
}

func (h *BankHandler) UnflagTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.ledger.Unflag(r.Context(), r.PathValue("id"))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to unflag transaction", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTO(txn))
}

type feedbackDTO struct {
	ID          uuid.UUID `json:"id"`
	CustomerID  string    `json:"customer_id"`
	Suggestions string    `json:"suggestions"`
	Rating      string    `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFeedback returns all feedback records. An empty store yields an empty
// list, not a 404.
func (h *BankHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	records, err := h.feedback.List(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list feedback", "error", err)
		RespondDomainError(w, err)
		return
	}

	out := make([]feedbackDTO, 0, len(records))
	for _, fb := range records {
		out = append(out, feedbackDTO{
			ID:          fb.ID,
			CustomerID:  fb.CustomerID,
			Suggestions: fb.Suggestions,
			Rating:      string(fb.Rating),
			CreatedAt:   fb.CreatedAt,
		})
	}
	RespondSuccess(w, http.StatusOK, out)
}
