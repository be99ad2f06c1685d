package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDay(t *testing.T) {
	now := time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC)

	got, err := NormalizeDay("", ist, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", got)

	got, err = NormalizeDay("2024-01-31", ist, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", got)

	got, err = NormalizeDay("2024-01-31T20:00:00Z", ist, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", got)

	_, err = NormalizeDay("31/01/2024", ist, now)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateRange(t *testing.T) {
	r := DateRange{From: "2024-03-01", To: "2024-03-31"}
	assert.True(t, r.ContainsDay("2024-03-01"))
	assert.True(t, r.ContainsDay("2024-03-31"))
	assert.False(t, r.ContainsDay("2024-04-01"))

	from, to := DateRange{}.Bounds()
	assert.Equal(t, "0000-01-01", from)
	assert.Equal(t, "9999-12-31", to)

	_, err := ParseDateRange("bad", "", ist)
	assert.Error(t, err)
}
