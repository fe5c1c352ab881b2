package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amlwatch/aml-backend/internal/auth"
	"github.com/amlwatch/aml-backend/internal/domain"
)

type memUserStore struct {
	byUsername map[string]*domain.User
	createErr  error
	created    []*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byUsername: map[string]*domain.User{}}
}

func (m *memUserStore) Create(_ context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byUsername[user.Username]; ok {
		return domain.ErrUserExists
	}
	m.byUsername[user.Username] = user
	m.created = append(m.created, user)
	return nil
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

const testSecret = "test-secret"

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func validRegisterBody() map[string]any {
	return map[string]any{
		"name":            "Alice Test",
		"dob":             "1990-01-01",
		"address":         "1 Test Street",
		"contact":         "5550001111",
		"email":           "alice@test.com",
		"username":        "alice",
		"password":        "password123",
		"role":            "Customer",
		"bank_name":       "HDFC Bank",
		"account_type":    "Savings Account",
		"account_number":  "12345678",
		"current_balance": "100000",
	}
}

func TestRegister_Customer(t *testing.T) {
	store := newMemUserStore()
	h := NewAuthHandler(store, testSecret, time.Hour)

	rec := postJSON(t, h.Register, "/api/auth/register", validRegisterBody())

	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Regexp(t, regexp.MustCompile(`^CUST-\d{4}$`), data["customer_id"])

	require.Len(t, store.created, 1)
	u := store.created[0]
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.Equal(t, domain.AccessPending, u.Access)
	assert.NotEqual(t, "password123", u.PasswordHash)
	require.NotNil(t, u.CurrentBalance)
	assert.Equal(t, "100000", u.CurrentBalance.String())
}

func TestRegister_AdminHasNoCustomerFields(t *testing.T) {
	store := newMemUserStore()
	h := NewAuthHandler(store, testSecret, time.Hour)

	body := map[string]any{
		"name":     "Ada Admin",
		"dob":      "1980-05-05",
		"address":  "2 Admin Street",
		"contact":  "5550002222",
		"email":    "ada@test.com",
		"username": "ada",
		"password": "password123",
		"role":     "Admin",
	}

	rec := postJSON(t, h.Register, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, store.created, 1)
	u := store.created[0]
	assert.Nil(t, u.CustomerID)
	assert.Nil(t, u.AccountNumber)
	assert.Nil(t, u.CurrentBalance)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(body map[string]any)
		wantField string
	}{
		{
			"missing name",
			func(b map[string]any) { b["name"] = "" },
			"name",
		},
		{
			"unknown role",
			func(b map[string]any) { b["role"] = "Supervisor" },
			"role",
		},
		{
			"malformed dob",
			func(b map[string]any) { b["dob"] = "01/01/1990" },
			"dob",
		},
		{
			"account number too short",
			func(b map[string]any) { b["account_number"] = "1234" },
			"account_number",
		},
		{
			"account number too long",
			func(b map[string]any) { b["account_number"] = "123456789" },
			"account_number",
		},
		{
			"customer without bank name",
			func(b map[string]any) { b["bank_name"] = "" },
			"bank_name",
		},
		{
			"customer with zero balance",
			func(b map[string]any) { b["current_balance"] = "0" },
			"current_balance",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemUserStore()
			h := NewAuthHandler(store, testSecret, time.Hour)

			body := validRegisterBody()
			tc.mutate(body)

			rec := postJSON(t, h.Register, "/api/auth/register", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

			found := false
			for _, fe := range resp.Error.Details.([]any) {
				if fe.(map[string]any)["field"] == tc.wantField {
					found = true
				}
			}
			assert.True(t, found, "expected a field error for %q", tc.wantField)
			assert.Empty(t, store.created)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	store := newMemUserStore()
	h := NewAuthHandler(store, testSecret, time.Hour)

	rec := postJSON(t, h.Register, "/api/auth/register", validRegisterBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Register, "/api/auth/register", validRegisterBody())
	require.Equal(t, http.StatusConflict, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "USER_ALREADY_EXISTS", resp.Error.Code)
}

func seedLoginUser(t *testing.T, store *memUserStore, username, password string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	customerID := "CUST-1001"
	u := &domain.User{
		ID:           uuid.New(),
		CustomerID:   &customerID,
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}
	store.byUsername[username] = u
	return u
}

func TestLogin_Success(t *testing.T) {
	store := newMemUserStore()
	seedLoginUser(t, store, "alice", "password123")
	h := NewAuthHandler(store, testSecret, time.Hour)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Customer", data["role"])
	assert.Equal(t, "CUST-1001", data["customer_id"])

	claims, err := auth.ValidateToken(data["token"].(string), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestLogin_SameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	store := newMemUserStore()
	seedLoginUser(t, store, "alice", "password123")
	h := NewAuthHandler(store, testSecret, time.Hour)

	wrongPassword := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "nope",
	})
	unknownUser := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"username": "mallory",
		"password": "nope",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t,
		decodeResponse(t, wrongPassword).Error.Code,
		decodeResponse(t, unknownUser).Error.Code,
	)
}

func TestLogin_MissingFields(t *testing.T) {
	h := NewAuthHandler(newMemUserStore(), testSecret, time.Hour)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
}
