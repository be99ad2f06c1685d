// Package ledger derives balances and filtered views from account ledgers and
// expense documents. Everything here is pure: inputs are never mutated and
// results depend only on arguments.
package ledger

import (
	"github.com/cashwise/backend/internal/models"
	"github.com/shopspring/decimal"
)

type Bucket string

const (
	BucketOffice Bucket = "office"
	BucketTravel Bucket = "travel"
	BucketToPay  Bucket = "toPay"
	BucketOther  Bucket = "other"
)

var Buckets = []Bucket{BucketOffice, BucketTravel, BucketToPay, BucketOther}

// BucketFor maps a transaction reason onto a balance bucket. Only the exact
// strings "office", "travel" and "toPay" have their own bucket; expense
// self-debits such as "Office Expense" land in "other".
func BucketFor(reason string) Bucket {
	switch Bucket(reason) {
	case BucketOffice, BucketTravel, BucketToPay:
		return Bucket(reason)
	}
	return BucketOther
}

type CategoryBalance struct {
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
	Net    decimal.Decimal `json:"net"`
}

type Balances struct {
	ByCategory map[Bucket]CategoryBalance `json:"byCategory"`
	TotalNet   decimal.Decimal            `json:"totalNet"`
}

// ComputeBalances replays every transaction line of the account into the
// four buckets. Rounding is applied to the per-bucket nets and the total only.
func ComputeBalances(acc models.Account) Balances {
	credit := sumByBucket(acc.Credit)
	debit := sumByBucket(acc.Debit)

	out := Balances{ByCategory: make(map[Bucket]CategoryBalance, len(Buckets)), TotalNet: decimal.Zero}
	total := decimal.Zero
	for _, b := range Buckets {
		net := RoundHalfUp(credit[b].Sub(debit[b]))
		out.ByCategory[b] = CategoryBalance{Credit: credit[b], Debit: debit[b], Net: net}
		total = total.Add(net)
	}
	out.TotalNet = RoundHalfUp(total)
	return out
}

func sumByBucket(groups []models.LedgerGroup) map[Bucket]decimal.Decimal {
	sums := map[Bucket]decimal.Decimal{
		BucketOffice: decimal.Zero,
		BucketTravel: decimal.Zero,
		BucketToPay:  decimal.Zero,
		BucketOther:  decimal.Zero,
	}
	for _, g := range groups {
		for _, line := range g.TransactionDetails {
			b := BucketFor(line.Reason)
			sums[b] = sums[b].Add(line.Money)
		}
	}
	return sums
}

var half = decimal.New(5, -1)

// RoundHalfUp rounds to the nearest integer with ties going toward +∞,
// so 2.5 becomes 3 and -2.5 becomes -2.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// SumLines totals the money of every line in every group.
func SumLines(groups []models.LedgerGroup) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		for _, line := range g.TransactionDetails {
			total = total.Add(line.Money)
		}
	}
	return total
}
