// mock-chain is a stand-in blockchain gateway for local development. It
// accepts record submissions and keeps them in memory.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/amlwatch/aml-backend/internal/logging"
)

type record struct {
	TransactionID    string `json:"transaction_id"`
	CustomerID       string `json:"customer_id"`
	CustomerName     string `json:"customer_name"`
	CustomerAccount  string `json:"customer_account"`
	RecipientName    string `json:"recipient_name"`
	RecipientAccount string `json:"recipient_account"`
	Amount           string `json:"amount"`
	Flagged          bool   `json:"flagged"`
}

type store struct {
	mu      sync.Mutex
	records []record
}

func main() {
	logging.Init("mock-chain", "info", os.Getenv("APP_ENV"))

	s := &store{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	mux.HandleFunc("POST /record", func(w http.ResponseWriter, r *http.Request) {
		var rec record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.records = append(s.records, rec)
		count := len(s.records)
		s.mu.Unlock()

		slog.Info("transaction recorded",
			"transaction_id", rec.TransactionID,
			"flagged", rec.Flagged,
			"total", count,
		)
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("GET /records", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.records); err != nil {
			slog.Error("failed to write records response", "error", err)
		}
	})

	slog.Info("mock chain gateway started", "addr", ":8082")
	if err := http.ListenAndServe(":8082", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
