package ledger

import (
	"errors"
	"strings"
	"time"
)

// DayLayout is the storage format of business dates.
const DayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// BusinessDay formats t as a calendar day in loc.
func BusinessDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// NormalizeDay turns a client supplied date into a business day string.
// Accepted forms are yyyy-MM-dd, RFC3339 timestamps (converted into loc) and
// the empty string, which means the business day of now.
func NormalizeDay(raw string, loc *time.Location, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return BusinessDay(now, loc), nil
	}
	if t, err := time.Parse(DayLayout, raw); err == nil {
		return t.Format(DayLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return BusinessDay(t, loc), nil
	}
	return "", ErrInvalidDate
}

// DateRange is an inclusive range of business days. Empty bounds are open.
type DateRange struct {
	From string
	To   string
}

// ParseDateRange normalizes both bounds. Empty bounds stay empty.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	var r DateRange
	var err error
	if strings.TrimSpace(from) != "" {
		if r.From, err = NormalizeDay(from, loc, time.Time{}); err != nil {
			return DateRange{}, err
		}
	}
	if strings.TrimSpace(to) != "" {
		if r.To, err = NormalizeDay(to, loc, time.Time{}); err != nil {
			return DateRange{}, err
		}
	}
	return r, nil
}

func (r DateRange) Active() bool {
	return r.From != "" || r.To != ""
}

// ContainsDay compares yyyy-MM-dd strings, which order lexically.
func (r DateRange) ContainsDay(day string) bool {
	if r.From != "" && day < r.From {
		return false
	}
	if r.To != "" && day > r.To {
		return false
	}
	return true
}

func (r DateRange) Contains(t time.Time, loc *time.Location) bool {
	if !r.Active() {
		return true
	}
	return r.ContainsDay(BusinessDay(t, loc))
}

// Bounds returns the range with open ends replaced by sentinels suitable for
// a BETWEEN comparison on day strings.
func (r DateRange) Bounds() (string, string) {
	from, to := r.From, r.To
	if from == "" {
		from = "0000-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}
	return from, to
}
