package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer    Role = "Customer"
	RoleBankOfficer Role = "BankOfficer"
	RoleAdmin       Role = "Admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleBankOfficer, RoleAdmin:
		return true
	}
	return false
}

type AccessStatus string

const (
	AccessGranted AccessStatus = "Granted"
	AccessDenied  AccessStatus = "Denied"
	AccessPending AccessStatus = "Pending"
)

func (a AccessStatus) IsValid() bool {
	switch a {
	case AccessGranted, AccessDenied, AccessPending:
		return true
	}
	return false
}

// User covers all three roles. The customer-specific fields are nil for
// Admin rows; CustomerID doubles as the officer reference for BankOfficer
// rows. CustomerID is assigned once at registration and never changes.
type User struct {
	ID             uuid.UUID
	CustomerID     *string
	Name           string
	DOB            time.Time
	Address        string
	Contact        string
	Email          string
	Username       string
	PasswordHash   string
	Role           Role
	BankName       *string
	AccountType    *string
	AccountNumber  *string
	CurrentBalance *decimal.Decimal
	Access         AccessStatus
	Version        int64
	CreatedAt      time.Time
}
