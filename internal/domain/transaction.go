package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "Pending"
	TransactionStatusApproved TransactionStatus = "Approved"
	TransactionStatusFlagged  TransactionStatus = "Flagged"
)

// Transaction is a historical record: SenderName and SenderAccountNumber are
// snapshots of the sending customer taken at creation time and do not track
// later profile edits.
type Transaction struct {
	ID                  string
	Sender              string
	SenderName          string
	SenderAccountNumber string
	Receiver            string
	RecipientName       string
	BankName            string
	Amount              decimal.Decimal
	Status              TransactionStatus
	Version             int64
	CreatedAt           time.Time
}
