// Package notify delivers best-effort alerts (SMS templates) about ledger
// activity. Delivery failures are logged and never reach the caller.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const (
	TemplateTransfer    = "TRANSFER"
	TemplateExpense     = "EXPENSE"
	TemplateAdminAction = "ADMIN_ACTION"
)

// Sender hands a rendered notification to a delivery channel.
type Sender interface {
	Send(ctx context.Context, template string, recipients []string, vars map[string]string) error
}

// Message is the wire form queued for the SMS worker.
type Message struct {
	Template   string            `json:"template"`
	Recipients []string          `json:"recipients"`
	Variables  map[string]string `json:"variables"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LogSender only writes notifications to the log. Used when no transport is
// configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, template string, recipients []string, vars map[string]string) error {
	log.Printf("[NOTIFY] %s -> %v %v", template, recipients, vars)
	return nil
}
