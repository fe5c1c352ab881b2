package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlwatch/aml-backend/internal/auth"
	"github.com/amlwatch/aml-backend/internal/domain"
)

type memFeedbackStore struct {
	saved []*domain.Feedback
}

func (m *memFeedbackStore) Create(_ context.Context, fb *domain.Feedback) error {
	m.saved = append(m.saved, fb)
	return nil
}

func customerClaims(customerID string) *auth.Claims {
	return &auth.Claims{
		UserID:     uuid.New(),
		Username:   "alice",
		Role:       domain.RoleCustomer,
		CustomerID: &customerID,
	}
}

func submitFeedback(t *testing.T, h *FeedbackHandler, claims *auth.Claims, body any) *httptest.ResponseRecorder {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewReader(buf))
	if claims != nil {
		req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))
	}

	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	return rec
}

func TestSubmitFeedback(t *testing.T) {
	store := &memFeedbackStore{}
	h := NewFeedbackHandler(store)

	rec := submitFeedback(t, h, customerClaims("CUST-1001"), map[string]string{
		"rating":      "Excellent",
		"suggestions": "More statement detail please",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.saved, 1)

	fb := store.saved[0]
	assert.Equal(t, "CUST-1001", fb.CustomerID)
	assert.Equal(t, domain.RatingExcellent, fb.Rating)
	assert.Equal(t, "More statement detail please", fb.Suggestions)
}

func TestSubmitFeedback_CustomerIDComesFromToken(t *testing.T) {
	store := &memFeedbackStore{}
	h := NewFeedbackHandler(store)

	// A customer_id in the body must be ignored in favor of the token's.
	rec := submitFeedback(t, h, customerClaims("CUST-1001"), map[string]string{
		"rating":      "Wonderful",
		"customer_id": "CUST-9999",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "CUST-1001", store.saved[0].CustomerID)
}

func TestSubmitFeedback_RatingValidation(t *testing.T) {
	tests := []struct {
		name   string
		rating string
	}{
		{"missing rating", ""},
		{"unknown rating", "Mediocre"},
		{"case sensitive", "excellent"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &memFeedbackStore{}
			h := NewFeedbackHandler(store)

			rec := submitFeedback(t, h, customerClaims("CUST-1001"), map[string]string{
				"rating": tc.rating,
			})

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
			assert.Empty(t, store.saved)
		})
	}
}

func TestSubmitFeedback_RequiresCustomerClaims(t *testing.T) {
	store := &memFeedbackStore{}
	h := NewFeedbackHandler(store)

	t.Run("no claims", func(t *testing.T) {
		rec := submitFeedback(t, h, nil, map[string]string{"rating": "Excellent"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("staff token without customer id", func(t *testing.T) {
		claims := &auth.Claims{
			UserID:   uuid.New(),
			Username: "ada",
			Role:     domain.RoleAdmin,
		}
		rec := submitFeedback(t, h, claims, map[string]string{"rating": "Excellent"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	assert.Empty(t, store.saved)
}
