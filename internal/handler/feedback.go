package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/amlwatch/aml-backend/internal/auth"
	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/logging"
)

type feedbackWriter interface {
	Create(ctx context.Context, fb *domain.Feedback) error
}

type FeedbackHandler struct {
	feedback feedbackWriter
}

func NewFeedbackHandler(feedback feedbackWriter) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

type submitFeedbackRequest struct {
	Rating      string `json:"rating"`
	Suggestions string `json:"suggestions"`
}

func (r submitFeedbackRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Rating == "" {
		errs = append(errs, FieldError{Field: "rating", Message: "required"})
	} else if !domain.Rating(r.Rating).IsValid() {
		errs = append(errs, FieldError{Field: "rating", Message: "must be Excellent, Wonderful, Problematic, or Unable to use"})
	}
	return errs
}

// Submit records feedback for the authenticated customer. The customer ID
// comes from the verified token, never from the request body.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.CustomerID == nil {
		RespondAppError(w, ErrForbidden, nil)
		return
	}

	var req submitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	fb := &domain.Feedback{
		ID:          uuid.New(),
		CustomerID:  *claims.CustomerID,
		Suggestions: req.Suggestions,
		Rating:      domain.Rating(req.Rating),
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.feedback.Create(r.Context(), fb); err != nil {
		logging.FromContext(r.Context()).Error("failed to save feedback", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, map[string]string{"message": "Feedback submitted successfully"})
}
