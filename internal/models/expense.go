package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Family is one of the three structurally parallel expense domains.
type Family string

const (
	FamilyOffice Family = "office"
	FamilyTravel Family = "travel"
	FamilyToPay  Family = "toPay"
)

var Families = []Family{FamilyOffice, FamilyTravel, FamilyToPay}

// ParseFamily accepts the family name in any case, with or without an
// "Expense" suffix ("Office", "officeExpense", "to-pay").
func ParseFamily(s string) (Family, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.TrimSuffix(k, "expense")
	k = strings.NewReplacer("-", "", "_", "", " ", "").Replace(k)
	switch k {
	case "office":
		return FamilyOffice, true
	case "travel":
		return FamilyTravel, true
	case "topay":
		return FamilyToPay, true
	}
	return "", false
}

func (f Family) Label() string {
	switch f {
	case FamilyOffice:
		return "Office"
	case FamilyTravel:
		return "Travel"
	case FamilyToPay:
		return "ToPay"
	}
	return string(f)
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// ExpenseLineItem is one claim inside a category array. Amount never changes
// after submission; status, admin message, site name and files do.
type ExpenseLineItem struct {
	ID            string          `json:"_id"`
	Amount        decimal.Decimal `json:"amount"`
	SiteName      string          `json:"siteName,omitempty"`
	Description   string          `json:"description,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
	Details       map[string]any  `json:"details,omitempty"`
	Status        Status          `json:"status"`
	AdminMessage  string          `json:"adminMessage,omitempty"`
	LocationFiles []string        `json:"locationFiles"`
	PaymentFiles  []string        `json:"paymentFiles"`
	InvoiceFiles  []string        `json:"invoiceFiles"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ExpenseDocument holds one user's submissions for one business day within
// one family. Date is a yyyy-MM-dd string in the business timezone.
type ExpenseDocument struct {
	ID         string                         `json:"_id"`
	Family     Family                         `json:"family"`
	CreatedBy  string                         `json:"createdBy"`
	Date       string                         `json:"date"`
	Categories map[Category][]ExpenseLineItem `json:"categories"`
	CreatedAt  time.Time                      `json:"createdAt"`
	UpdatedAt  time.Time                      `json:"updatedAt"`
}

// HasItems reports whether any category array is non-empty.
func (d ExpenseDocument) HasItems() bool {
	for _, items := range d.Categories {
		if len(items) > 0 {
			return true
		}
	}
	return false
}

// Total sums every item amount across every category.
func (d ExpenseDocument) Total() decimal.Decimal {
	total := decimal.Zero
	for _, items := range d.Categories {
		for _, item := range items {
			total = total.Add(item.Amount)
		}
	}
	return total
}

// WithCategories returns a shallow copy of d carrying the given category map.
func (d ExpenseDocument) WithCategories(c map[Category][]ExpenseLineItem) ExpenseDocument {
	d.Categories = c
	return d
}
