package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	Timestamp time.Time        `json:"timestamp"`
	EventType string           `json:"event_type"`
	Reference string           `json:"reference"`
	AccountID string           `json:"account_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Status    string           `json:"status"`
	Details   any              `json:"details,omitempty"`
}

// Logger writes one JSON line per ledger-affecting event.
type Logger struct {
	out *log.Logger
	now func() time.Time
}

func NewLogger() *Logger {
	return &Logger{out: log.Default(), now: time.Now}
}

// NewLoggerTo writes through l instead of the process default logger.
func NewLoggerTo(l *log.Logger) *Logger {
	return &Logger{out: l, now: time.Now}
}

func (a *Logger) LogTransfer(reference, fromPhone, toPhone string, amount decimal.Decimal, status string) {
	a.log(Event{
		EventType: "TRANSFER",
		Reference: reference,
		Amount:    &amount,
		Status:    status,
		Details: map[string]string{
			"from_phone": fromPhone,
			"to_phone":   toPhone,
		},
	})
}

func (a *Logger) LogExpense(documentID, userID, category string, amount decimal.Decimal) {
	a.log(Event{
		EventType: "EXPENSE",
		Reference: documentID,
		AccountID: userID,
		Amount:    &amount,
		Status:    "SUCCESS",
		Details:   map[string]string{"category": category},
	})
}

func (a *Logger) LogReview(itemID, userID, status string) {
	a.log(Event{
		EventType: "REVIEW",
		Reference: itemID,
		AccountID: userID,
		Status:    "SUCCESS",
		Details:   map[string]string{"expense_status": status},
	})
}

func (a *Logger) LogAttach(itemID, documentID string, files int) {
	a.log(Event{
		EventType: "ATTACH",
		Reference: itemID,
		Status:    "SUCCESS",
		Details:   map[string]any{"document_id": documentID, "files": files},
	})
}

func (a *Logger) LogError(reference, accountID string, err error) {
	a.log(Event{
		EventType: "ERROR",
		Reference: reference,
		AccountID: accountID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	event.Timestamp = a.now()
	data, _ := json.Marshal(event)
	a.out.Printf("AUDIT: %s", string(data))
}
