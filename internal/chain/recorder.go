// Package chain submits flagged transactions to an external blockchain
// gateway. Recording is best-effort: the ledger never blocks or fails on a
// gateway error.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amlwatch/aml-backend/internal/logging"
)

type Entry struct {
	TransactionID    string
	CustomerID       string
	CustomerName     string
	CustomerAccount  string
	RecipientName    string
	RecipientAccount string
	Amount           decimal.Decimal
	Flagged          bool
}

type Recorder struct {
	baseURL    string
	httpClient *http.Client
}

func NewRecorder(baseURL string) *Recorder {
	return &Recorder{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Enabled reports whether a gateway URL was configured.
func (r *Recorder) Enabled() bool {
	return r.baseURL != ""
}

type recordPayload struct {
	TransactionID    string `json:"transaction_id"`
	CustomerID       string `json:"customer_id"`
	CustomerName     string `json:"customer_name"`
	CustomerAccount  string `json:"customer_account"`
	RecipientName    string `json:"recipient_name"`
	RecipientAccount string `json:"recipient_account"`
	Amount           string `json:"amount"`
	Flagged          bool   `json:"flagged"`
}

func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	log := logging.FromContext(ctx)

	payload := recordPayload{
		TransactionID:    entry.TransactionID,
		CustomerID:       entry.CustomerID,
		CustomerName:     entry.CustomerName,
		CustomerAccount:  entry.CustomerAccount,
		RecipientName:    entry.RecipientName,
		RecipientAccount: entry.RecipientAccount,
		Amount:           entry.Amount.String(),
		Flagged:          entry.Flagged,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("Record: marshal: %w", err)
	}

	url := r.baseURL + "/record"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("Record: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("Record: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("chain gateway response received",
		"transaction_id", entry.TransactionID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Record: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
