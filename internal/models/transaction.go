package models

import "github.com/shopspring/decimal"

// Transfer is a money movement from one phone to another as recorded by the
// ledger. FromPhone == ToPhone marks a self-credit.
type Transfer struct {
	From        Counterparty    `json:"from"`
	To          Counterparty    `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	Remarks     string          `json:"remarks,omitempty"`
	Attachments []string        `json:"attachments,omitempty"`
}

func (t Transfer) IsSelf() bool {
	return t.From.Phone == t.To.Phone
}
