package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleToPay    Role = "toPay"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee, RoleToPay:
		return true
	}
	return false
}

// Account is a user together with the ledger embedded in it. Credit holds one
// group per counterparty that has paid this account, Debit one group per
// counterparty this account has paid.
type Account struct {
	ID        string        `json:"_id" example:"6f1c0f7e-1a2b-4c3d-9e8f-001122334455"`
	Name      string        `json:"name" example:"Ravi Kumar"`
	Phone     string        `json:"phone" example:"9876543210"`
	Email     string        `json:"email,omitempty" example:"ravi@example.com"`
	Role      Role          `json:"type" example:"employee"`
	Credit    []LedgerGroup `json:"credit"`
	Debit     []LedgerGroup `json:"debit"`
	Expense   []string      `json:"expense,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Snapshot captures the account's identity for use as a counterparty.
func (a Account) Snapshot() Counterparty {
	return Counterparty{Name: a.Name, Email: a.Email, Phone: a.Phone}
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	UserID string
	Role   Role
}
