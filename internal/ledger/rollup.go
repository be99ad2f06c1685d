package ledger

import (
	"time"

	"github.com/cashwise/backend/internal/models"
	"github.com/shopspring/decimal"
)

type RollupInput struct {
	// Account carries the complete, unfiltered ledger.
	Account  models.Account
	Dates    DateRange
	Location *time.Location
	// Expenses holds the already filtered documents of this user per family.
	Expenses map[models.Family][]models.ExpenseDocument
}

// UserRollup is one user's line of the admin dashboard. Balance is the
// all-time ledger position; every other figure is scoped to the date window.
type UserRollup struct {
	UserID             string                   `json:"userId"`
	Name               string                   `json:"name"`
	Phone              string                   `json:"phone"`
	Role               models.Role              `json:"type"`
	TotalCredit        decimal.Decimal          `json:"totalCredit"`
	TotalDebit         decimal.Decimal          `json:"totalDebit"`
	TotalOfficeExpense decimal.Decimal          `json:"totalOfficeExpense"`
	TotalTravelExpense decimal.Decimal          `json:"totalTravelExpense"`
	TotalToPayExpense  decimal.Decimal          `json:"totalToPayExpense"`
	Balance            decimal.Decimal          `json:"balance"`
	PeriodNet          decimal.Decimal          `json:"periodNet"`
	OfficeExpense      []models.ExpenseDocument `json:"officeExpense"`
	TravelExpense      []models.ExpenseDocument `json:"travelExpense"`
	ToPayExpense       []models.ExpenseDocument `json:"toPayExpense"`
}

func BuildRollup(in RollupInput) UserRollup {
	acc := in.Account
	window := FilterLedger(acc, LedgerCriteria{Dates: in.Dates, Location: in.Location, Type: TransactionAll})

	r := UserRollup{
		UserID:        acc.ID,
		Name:          acc.Name,
		Phone:         acc.Phone,
		Role:          acc.Role,
		TotalCredit:   SumLines(window.Credit),
		TotalDebit:    SumLines(window.Debit),
		Balance:       SumLines(acc.Credit).Sub(SumLines(acc.Debit)),
		OfficeExpense: nonNil(in.Expenses[models.FamilyOffice]),
		TravelExpense: nonNil(in.Expenses[models.FamilyTravel]),
		ToPayExpense:  nonNil(in.Expenses[models.FamilyToPay]),
	}
	r.TotalOfficeExpense = SumDocuments(r.OfficeExpense)
	r.TotalTravelExpense = SumDocuments(r.TravelExpense)
	r.TotalToPayExpense = SumDocuments(r.ToPayExpense)
	r.PeriodNet = r.TotalCredit.
		Sub(r.TotalDebit).
		Sub(r.TotalOfficeExpense).
		Sub(r.TotalTravelExpense).
		Sub(r.TotalToPayExpense)
	return r
}

// SumDocuments totals every item amount in every document.
func SumDocuments(docs []models.ExpenseDocument) decimal.Decimal {
	total := decimal.Zero
	for _, d := range docs {
		total = total.Add(d.Total())
	}
	return total
}

// RollupSummary is the organization-wide sum of a set of user rollups.
type RollupSummary struct {
	Users              int             `json:"users"`
	TotalCredit        decimal.Decimal `json:"totalCredit"`
	TotalDebit         decimal.Decimal `json:"totalDebit"`
	TotalOfficeExpense decimal.Decimal `json:"totalOfficeExpense"`
	TotalTravelExpense decimal.Decimal `json:"totalTravelExpense"`
	TotalToPayExpense  decimal.Decimal `json:"totalToPayExpense"`
	Balance            decimal.Decimal `json:"balance"`
	PeriodNet          decimal.Decimal `json:"periodNet"`
}

func Summarize(rollups []UserRollup) RollupSummary {
	s := RollupSummary{
		Users:              len(rollups),
		TotalCredit:        decimal.Zero,
		TotalDebit:         decimal.Zero,
		TotalOfficeExpense: decimal.Zero,
		TotalTravelExpense: decimal.Zero,
		TotalToPayExpense:  decimal.Zero,
		Balance:            decimal.Zero,
		PeriodNet:          decimal.Zero,
	}
	for _, r := range rollups {
		s.TotalCredit = s.TotalCredit.Add(r.TotalCredit)
		s.TotalDebit = s.TotalDebit.Add(r.TotalDebit)
		s.TotalOfficeExpense = s.TotalOfficeExpense.Add(r.TotalOfficeExpense)
		s.TotalTravelExpense = s.TotalTravelExpense.Add(r.TotalTravelExpense)
		s.TotalToPayExpense = s.TotalToPayExpense.Add(r.TotalToPayExpense)
		s.Balance = s.Balance.Add(r.Balance)
		s.PeriodNet = s.PeriodNet.Add(r.PeriodNet)
	}
	return s
}

func nonNil(docs []models.ExpenseDocument) []models.ExpenseDocument {
	if docs == nil {
		return []models.ExpenseDocument{}
	}
	return docs
}
