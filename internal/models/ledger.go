package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideCredit Side = "credit"
	SideDebit  Side = "debit"
)

// Counterparty is a point-in-time copy of the other party's identity. It is
// written once when the group is created and never re-synced.
type Counterparty struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone"`
}

type LedgerGroup struct {
	ID string `json:"_id"`
	Counterparty
	TransactionDetails []TransactionLine `json:"transactionDetails"`
}

type TransactionLine struct {
	ID        string          `json:"_id"`
	Money     decimal.Decimal `json:"money"`
	Reason    string          `json:"reason"`
	Remarks   string          `json:"remarks,omitempty"`
	ImageURL  []string        `json:"imageUrl"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Timestamp is the instant used for date filtering and ordering.
func (l TransactionLine) Timestamp() time.Time {
	if !l.UpdatedAt.IsZero() {
		return l.UpdatedAt
	}
	return l.CreatedAt
}
