package ledger

import (
	"testing"
	"time"

	"github.com/cashwise/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func line(money, reason string, at time.Time) models.TransactionLine {
	return models.TransactionLine{
		ID:        reason + "-" + at.Format(time.RFC3339),
		Money:     dec(money),
		Reason:    reason,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func group(name, phone string, lines ...models.TransactionLine) models.LedgerGroup {
	return models.LedgerGroup{
		ID:                 phone,
		Counterparty:       models.Counterparty{Name: name, Phone: phone},
		TransactionDetails: lines,
	}
}

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, ist)
	if err != nil {
		panic(err)
	}
	return t
}
