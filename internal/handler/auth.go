package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/amlwatch/aml-backend/internal/auth"
	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/logging"
)

type userStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type AuthHandler struct {
	users     userStore
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthHandler(users userStore, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	DOB      string `json:"dob"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`

	// Required when role is Customer.
	BankName       string          `json:"bank_name"`
	AccountType    string          `json:"account_type"`
	AccountNumber  string          `json:"account_number"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

func (r registerRequest) Validate() []FieldError {
	var errs []FieldError

	required := []struct{ field, value string }{
		{"name", r.Name},
		{"dob", r.DOB},
		{"address", r.Address},
		{"contact", r.Contact},
		{"email", r.Email},
		{"username", r.Username},
		{"password", r.Password},
		{"role", r.Role},
	}
	for _, f := range required {
		if f.value == "" {
			errs = append(errs, FieldError{Field: f.field, Message: "required"})
		}
	}

	if r.Role != "" && !domain.Role(r.Role).IsValid() {
		errs = append(errs, FieldError{Field: "role", Message: "must be Admin, BankOfficer, or Customer"})
	}

	if r.DOB != "" {
		if _, err := time.Parse("2006-01-02", r.DOB); err != nil {
			errs = append(errs, FieldError{Field: "dob", Message: "must be a date in YYYY-MM-DD format"})
		}
	}

	if domain.Role(r.Role) == domain.RoleCustomer {
		if r.BankName == "" {
			errs = append(errs, FieldError{Field: "bank_name", Message: "required for customers"})
		}
		if r.AccountType == "" {
			errs = append(errs, FieldError{Field: "account_type", Message: "required for customers"})
		}
		if r.AccountNumber == "" {
			errs = append(errs, FieldError{Field: "account_number", Message: "required for customers"})
		} else if len(r.AccountNumber) != 8 {
			errs = append(errs, FieldError{Field: "account_number", Message: "must be exactly 8 characters"})
		}
		if !r.CurrentBalance.IsPositive() {
			errs = append(errs, FieldError{Field: "current_balance", Message: "required for customers"})
		}
	}

	return errs
}

type registerResponse struct {
	Message    string  `json:"message"`
	CustomerID *string `json:"customer_id"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
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
	role := domain.Role(req.Role)

	user := &domain.User{
		ID:           uuid.New(),
		Name:         req.Name,
		DOB:          dob,
		Address:      req.Address,
		Contact:      req.Contact,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		Access:       domain.AccessPending,
		CreatedAt:    time.Now().UTC(),
	}

	if role == domain.RoleCustomer {
		customerID := NewCustomerID()
		balance := req.CurrentBalance
		user.CustomerID = &customerID
		user.BankName = &req.BankName
		user.AccountType = &req.AccountType
		user.AccountNumber = &req.AccountNumber
		user.CurrentBalance = &balance
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			RespondAppError(w, ErrUserExists, nil)
			return
		}
		logging.FromContext(r.Context()).Error("failed to create user", "error", err)
		RespondDomainError(w, err)
		return
	}

	logging.FromContext(r.Context()).Info("user registered",
		"user_id", user.ID,
		"role", user.Role,
	)

	RespondSuccess(w, http.StatusCreated, registerResponse{
		Message:    "User registered successfully",
		CustomerID: user.CustomerID,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "required"})
	}
	return errs
}

type loginResponse struct {
	Token      string  `json:"token"`
	Role       string  `json:"role"`
	CustomerID *string `json:"customer_id"`
}

// Login deliberately returns the same error for an unknown username and a
// wrong password so callers cannot enumerate accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondAppError(w, ErrInvalidCredentials, nil)
			return
		}
		logging.FromContext(r.Context()).Error("failed to look up user", "error", err)
		RespondDomainError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}

	token, err := auth.GenerateToken(user, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to issue token", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, loginResponse{
		Token:      token,
		Role:       string(user.Role),
		CustomerID: user.CustomerID,
	})
}

// NewCustomerID mirrors the historical CUST-NNNN format; uniqueness is
// enforced by the store.
func NewCustomerID() string {
	return fmt.Sprintf("CUST-%04d", rand.IntN(9000)+1000)
}
