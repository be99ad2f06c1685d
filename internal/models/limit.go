package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LimitStatus string

const (
	LimitActive   LimitStatus = "Active"
	LimitInactive LimitStatus = "Inactive"
)

// ExpenseLimit is a per-user spend ceiling. It is configuration only; nothing
// in the ledger is derived from it.
type ExpenseLimit struct {
	UserID     string                     `json:"userId" validate:"required"`
	Categories map[string]decimal.Decimal `json:"categories"`
	MaxLimit   decimal.Decimal            `json:"max_limit"`
	Status     LimitStatus                `json:"status" validate:"required,oneof=Active Inactive"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}
