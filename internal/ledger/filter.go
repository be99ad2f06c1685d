package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/cashwise/backend/internal/models"
	"github.com/shopspring/decimal"
)

// AmountRange is the tri-state amount filter shared by ledger and expense
// queries. A bound is set when it is greater than zero:
//
//	neither set -> everything passes
//	min only    -> v >= min
//	max only    -> v <= max
//	both        -> min <= v <= max
type AmountRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func (r AmountRange) Active() bool {
	return r.Min.IsPositive() || r.Max.IsPositive()
}

func (r AmountRange) Contains(v decimal.Decimal) bool {
	minSet, maxSet := r.Min.IsPositive(), r.Max.IsPositive()
	switch {
	case minSet && maxSet:
		return v.GreaterThanOrEqual(r.Min) && v.LessThanOrEqual(r.Max)
	case minSet:
		return v.GreaterThanOrEqual(r.Min)
	case maxSet:
		return v.LessThanOrEqual(r.Max)
	}
	return true
}

type TransactionType string

const (
	TransactionAll    TransactionType = "all"
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// ParseTransactionType defaults to all for empty or unknown input.
func ParseTransactionType(s string) TransactionType {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionCredit:
		return TransactionCredit
	case TransactionDebit:
		return TransactionDebit
	}
	return TransactionAll
}

type LedgerCriteria struct {
	Name     string
	Dates    DateRange
	Amount   AmountRange
	Reason   string
	Limit    int
	Type     TransactionType
	Location *time.Location
}

// FilterLedger returns a copy of acc whose credit and debit groups are
// reduced by c. The side excluded by c.Type comes back empty.
func FilterLedger(acc models.Account, c LedgerCriteria) models.Account {
	out := acc
	out.Credit = []models.LedgerGroup{}
	out.Debit = []models.LedgerGroup{}
	if c.Type != TransactionDebit {
		out.Credit = FilterGroups(acc.Credit, c)
	}
	if c.Type != TransactionCredit {
		out.Debit = FilterGroups(acc.Debit, c)
	}
	return out
}

// FilterGroups applies the name, date, amount and reason filters. A group
// survives when at least one of its lines does; surviving lines and groups
// are ordered newest first and the group list is cut to c.Limit when positive.
func FilterGroups(groups []models.LedgerGroup, c LedgerCriteria) []models.LedgerGroup {
	name := strings.ToLower(strings.TrimSpace(c.Name))
	reason := strings.ToLower(strings.TrimSpace(c.Reason))

	out := make([]models.LedgerGroup, 0, len(groups))
	for _, g := range groups {
		if name != "" && !strings.Contains(strings.ToLower(g.Name), name) {
			continue
		}
		lines := make([]models.TransactionLine, 0, len(g.TransactionDetails))
		for _, line := range g.TransactionDetails {
			if !c.Dates.Contains(line.Timestamp(), c.Location) {
				continue
			}
			if !c.Amount.Contains(line.Money) {
				continue
			}
			if reason != "" && !strings.Contains(strings.ToLower(line.Reason), reason) {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].Timestamp().After(lines[j].Timestamp())
		})
		kept := g
		kept.TransactionDetails = lines
		out = append(out, kept)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDetails[0].Timestamp().After(out[j].TransactionDetails[0].Timestamp())
	})
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out
}

// FilterExpenses applies the amount filter to every category array of every
// document and keeps documents that still have an item. The result is cut to
// limit when positive; document order is preserved.
func FilterExpenses(docs []models.ExpenseDocument, amount AmountRange, limit int) []models.ExpenseDocument {
	out := reduceDocuments(docs, func(item models.ExpenseLineItem) bool {
		return amount.Contains(item.Amount)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilterByStatus keeps items whose status is in statuses. An empty set
// disables the filter.
func FilterByStatus(docs []models.ExpenseDocument, statuses []models.Status) []models.ExpenseDocument {
	if len(statuses) == 0 {
		return docs
	}
	allowed := make(map[models.Status]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	return reduceDocuments(docs, func(item models.ExpenseLineItem) bool {
		s, ok := models.ParseStatus(string(item.Status))
		return ok && allowed[s]
	})
}

// FilterByFormType keeps documents where at least one of the given category
// arrays is non-empty. Documents are returned whole. An empty set disables
// the filter.
func FilterByFormType(docs []models.ExpenseDocument, categories []models.Category) []models.ExpenseDocument {
	if len(categories) == 0 {
		return docs
	}
	out := make([]models.ExpenseDocument, 0, len(docs))
	for _, d := range docs {
		for _, c := range categories {
			if len(d.Categories[c]) > 0 {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func reduceDocuments(docs []models.ExpenseDocument, keep func(models.ExpenseLineItem) bool) []models.ExpenseDocument {
	out := make([]models.ExpenseDocument, 0, len(docs))
	for _, d := range docs {
		reduced := make(map[models.Category][]models.ExpenseLineItem, len(d.Categories))
		for cat, items := range d.Categories {
			kept := make([]models.ExpenseLineItem, 0, len(items))
			for _, item := range items {
				if keep(item) {
					kept = append(kept, item)
				}
			}
			reduced[cat] = kept
		}
		next := d.WithCategories(reduced)
		if next.HasItems() {
			out = append(out, next)
		}
	}
	return out
}
