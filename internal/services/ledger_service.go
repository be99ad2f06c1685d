package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/cashwise/backend/internal/audit"
	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/notify"
	"github.com/cashwise/backend/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notifier queues a best-effort notification. Implementations must not block
// on delivery.
type Notifier interface {
	Dispatch(template string, recipients []string, vars map[string]string)
}

type TransferRequest struct {
	FromName    string
	FromEmail   string
	FromPhone   string
	ToName      string
	ToEmail     string
	ToPhone     string
	Amount      string
	Reason      string
	Remarks     string
	Attachments []string
}

type TransferResult struct {
	Reference string `json:"reference"`
	models.Transfer
	// Credit is the line appended to the receiving account. Debit is nil for
	// a self-credit.
	Credit *models.TransactionLine `json:"credit"`
	Debit  *models.TransactionLine `json:"debit,omitempty"`
}

type LedgerService struct {
	store    *storage.Store
	policy   *authz.Policy
	notifier Notifier
	audit    *audit.Logger
}

func NewLedgerService(store *storage.Store, policy *authz.Policy, notifier Notifier, auditLogger *audit.Logger) *LedgerService {
	return &LedgerService{
		store:    store,
		policy:   policy,
		notifier: notifier,
		audit:    auditLogger,
	}
}

// PostTransfer records amount as a credit on the receiving account and a
// debit on the paying account inside one transaction. When both phones are
// equal only the self-credit is written.
func (s *LedgerService) PostTransfer(ctx context.Context, actor models.Actor, req TransferRequest) (*TransferResult, error) {
	req.FromPhone = strings.TrimSpace(req.FromPhone)
	req.ToPhone = strings.TrimSpace(req.ToPhone)
	amount, err := s.checkTransfer(actor, req)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{
		Reference: uuid.New().String(),
		Transfer: models.Transfer{
			Amount:      amount,
			Reason:      req.Reason,
			Remarks:     req.Remarks,
			Attachments: req.Attachments,
		},
	}

	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		accounts, err := lockByPhone(ctx, q, req.FromPhone, req.ToPhone)
		if err != nil {
			return err
		}
		from, to := accounts[req.FromPhone], accounts[req.ToPhone]

		result.From = snapshot(req.FromName, req.FromEmail, from)
		result.To = snapshot(req.ToName, req.ToEmail, to)

		credit := &models.TransactionLine{Money: amount, Reason: req.Reason, Remarks: req.Remarks, ImageURL: req.Attachments}
		if err := appendLine(ctx, q, to.ID, models.SideCredit, result.From, credit); err != nil {
			return err
		}
		result.Credit = credit

		if result.IsSelf() {
			return nil
		}

		debit := &models.TransactionLine{Money: amount, Reason: req.Reason, Remarks: req.Remarks, ImageURL: req.Attachments}
		if err := appendLine(ctx, q, from.ID, models.SideDebit, result.To, debit); err != nil {
			return err
		}
		result.Debit = debit
		return nil
	})
	if err != nil {
		s.audit.LogTransfer(result.Reference, req.FromPhone, req.ToPhone, amount, "FAILED")
		return nil, asServiceError("post transfer", err)
	}

	s.audit.LogTransfer(result.Reference, result.From.Phone, result.To.Phone, amount, "SUCCESS")
	log.Printf("[LEDGER] Transfer %s: %s -> %s amount=%s self=%t",
		result.Reference, result.From.Phone, result.To.Phone, amount.StringFixed(2), result.IsSelf())

	s.notifier.Dispatch(notify.TemplateTransfer, []string{result.To.Phone}, map[string]string{
		"name":   result.To.Name,
		"from":   result.From.Name,
		"amount": amount.StringFixed(2),
		"reason": req.Reason,
	})

	return result, nil
}

// ValidateTransfer runs the checks of PostTransfer that need no storage, so
// callers can reject a request before accepting its uploads.
func (s *LedgerService) ValidateTransfer(actor models.Actor, req TransferRequest) error {
	req.FromPhone = strings.TrimSpace(req.FromPhone)
	req.ToPhone = strings.TrimSpace(req.ToPhone)
	_, err := s.checkTransfer(actor, req)
	return err
}

func (s *LedgerService) checkTransfer(actor models.Actor, req TransferRequest) (decimal.Decimal, error) {
	if err := authorize(s.policy, actor, authz.OpPostTransfer, ""); err != nil {
		return decimal.Zero, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	if req.FromPhone == "" {
		return decimal.Zero, ValidationError("From phone is required!")
	}
	if req.ToPhone == "" {
		return decimal.Zero, ValidationError("To phone is required!")
	}
	return amount, nil
}

// lockByPhone locks every distinct account in phone order so two transfers
// between the same pair cannot deadlock.
func lockByPhone(ctx context.Context, q *storage.Queries, phones ...string) (map[string]*models.Account, error) {
	ordered := make([]string, 0, len(phones))
	seen := make(map[string]bool, len(phones))
	for _, p := range phones {
		if !seen[p] {
			seen[p] = true
			ordered = append(ordered, p)
		}
	}
	if len(ordered) == 2 && ordered[0] > ordered[1] {
		ordered[0], ordered[1] = ordered[1], ordered[0]
	}

	accounts := make(map[string]*models.Account, len(ordered))
	for _, phone := range ordered {
		acc, err := q.LockAccountByPhone(ctx, phone)
		if errors.Is(err, storage.ErrNotFound) {
			e := NotFoundError("User not found!")
			e.Code = "BAD_REQUEST"
			e.Details = map[string]string{"phone": phone}
			return nil, e
		}
		if err != nil {
			return nil, StorageError("lock account", err)
		}
		accounts[phone] = acc
	}
	return accounts, nil
}

func appendLine(ctx context.Context, q *storage.Queries, accountID string, side models.Side, cp models.Counterparty, line *models.TransactionLine) error {
	groupID, err := q.EnsureLedgerGroup(ctx, accountID, side, cp)
	if err != nil {
		return StorageError("ensure ledger group", err)
	}
	if err := q.AppendTransactionLine(ctx, groupID, line); err != nil {
		return StorageError("append transaction line", err)
	}
	return nil
}

// snapshot prefers the names given with the request and falls back to the
// stored account.
func snapshot(name, email string, acc *models.Account) models.Counterparty {
	cp := acc.Snapshot()
	if n := strings.TrimSpace(name); n != "" {
		cp.Name = n
	}
	if e := strings.TrimSpace(email); e != "" {
		cp.Email = e
	}
	return cp
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ValidationError("Amount is required!")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ValidationError("Amount must be a valid number!")
	}
	if !amount.IsPositive() {
		return decimal.Zero, ValidationError("Amount must be greater than zero!")
	}
	if err := checkMoneyScale(amount, "Amount"); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// money columns are NUMERIC(14,2)
var maxMoney = decimal.New(1, 12)

// checkMoneyScale rejects values the money columns would round or overflow.
func checkMoneyScale(d decimal.Decimal, field string) error {
	if !d.Equal(d.Truncate(2)) {
		return ValidationError(field + " must have at most 2 decimal places!")
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return ValidationError(field + " is too large!")
	}
	return nil
}

// asServiceError keeps domain errors as they are and classifies anything
// else as a storage failure.
func asServiceError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return StorageError(op, err)
}
