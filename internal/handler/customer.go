package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/amlwatch/aml-backend/internal/auth"
	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/logging"
)

type profileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type CustomerHandler struct {
	users profileStore
}

func NewCustomerHandler(users profileStore) *CustomerHandler {
	return &CustomerHandler{users: users}
}

type profileDTO struct {
	ID             uuid.UUID        `json:"id"`
	CustomerID     *string          `json:"customer_id"`
	Name           string           `json:"name"`
	DOB            string           `json:"dob"`
	Address        string           `json:"address"`
	Contact        string           `json:"contact"`
	Email          string           `json:"email"`
	Username       string           `json:"username"`
	Role           string           `json:"role"`
	BankName       *string          `json:"bank_name"`
	AccountType    *string          `json:"account_type"`
	AccountNumber  *string          `json:"account_number"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
	Access         string           `json:"access"`
	CreatedAt      time.Time        `json:"created_at"`
}

func toProfileDTO(u *domain.User) profileDTO {
	return profileDTO{
		ID:             u.ID,
		CustomerID:     u.CustomerID,
		Name:           u.Name,
		DOB:            u.DOB.Format("2006-01-02"),
		Address:        u.Address,
		Contact:        u.Contact,
		Email:          u.Email,
		Username:       u.Username,
		Role:           string(u.Role),
		BankName:       u.BankName,
		AccountType:    u.AccountType,
		AccountNumber:  u.AccountNumber,
		CurrentBalance: u.CurrentBalance,
		Access:         string(u.Access),
		CreatedAt:      u.CreatedAt,
	}
}

// Profile returns the authenticated user's record, password hash excluded.
func (h *CustomerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load profile", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toProfileDTO(user))
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	DOB      *string `json:"dob"`
	Address  *string `json:"address"`
	Contact  *string `json:"contact"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
	// Blank or absent leaves the stored hash untouched.
	Password       *string          `json:"password"`
	BankName       *string          `json:"bank_name"`
	AccountType    *string          `json:"account_type"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
}

// Update applies a partial profile update. The account number and customer ID
// are immutable once assigned, so they are not accepted here.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.DOB != nil && *req.DOB != "" {
		dob, err := time.Parse("2006-01-02", *req.DOB)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "dob", Message: "must be a date in YYYY-MM-DD format"}})
			return
		}
		user.DOB = dob
	}
	if req.Address != nil && *req.Address != "" {
		user.Address = *req.Address
	}
	if req.Contact != nil && *req.Contact != "" {
		user.Contact = *req.Contact
	}
	if req.Email != nil && *req.Email != "" {
		user.Email = *req.Email
	}
	if req.Username != nil && *req.Username != "" {
		user.Username = *req.Username
	}
	if req.BankName != nil && *req.BankName != "" {
		user.BankName = req.BankName
	}
	if req.AccountType != nil && *req.AccountType != "" {
		user.AccountType = req.AccountType
	}
	if req.CurrentBalance != nil {
		user.CurrentBalance = req.CurrentBalance
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			logging.FromContext(r.Context()).Error("failed to hash password", "error", err)
			RespondAppError(w, ErrInternalError, nil)
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		logging.FromContext(r.Context()).Error("failed to update profile", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toProfileDTO(user))
}
