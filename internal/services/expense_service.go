package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cashwise/backend/internal/audit"
	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/ledger"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/notify"
	"github.com/cashwise/backend/internal/storage"
	"github.com/shopspring/decimal"
)

type SubmitExpenseRequest struct {
	UserID        string
	Family        string
	Category      string
	Date          string
	Amount        string
	SiteName      string
	Description   string
	Remarks       string
	Details       map[string]any
	LocationFiles []string
	PaymentFiles  []string
	InvoiceFiles  []string
}

type ExpenseService struct {
	store      *storage.Store
	policy     *authz.Policy
	notifier   Notifier
	audit      *audit.Logger
	loc        *time.Location
	recipients []string
	now        func() time.Time
}

// NewExpenseService builds the recorder. Submission alerts go to recipients;
// loc fixes the business day boundaries.
func NewExpenseService(store *storage.Store, policy *authz.Policy, notifier Notifier, auditLogger *audit.Logger, loc *time.Location, recipients []string) *ExpenseService {
	return &ExpenseService{
		store:      store,
		policy:     policy,
		notifier:   notifier,
		audit:      auditLogger,
		loc:        loc,
		recipients: recipients,
		now:        time.Now,
	}
}

// SubmitExpense appends one line item to the user's document for the day and
// posts the matching self-debit. Both writes share one transaction.
func (s *ExpenseService) SubmitExpense(ctx context.Context, actor models.Actor, req SubmitExpenseRequest) (*models.ExpenseDocument, error) {
	sub, err := s.checkSubmit(actor, req)
	if err != nil {
		return nil, err
	}
	family, category, amount, date := sub.family, sub.category, sub.amount, sub.date

	item := &models.ExpenseLineItem{
		Amount:        amount,
		SiteName:      req.SiteName,
		Description:   req.Description,
		Remarks:       req.Remarks,
		Details:       req.Details,
		Status:        models.StatusPending,
		LocationFiles: req.LocationFiles,
		PaymentFiles:  req.PaymentFiles,
		InvoiceFiles:  req.InvoiceFiles,
	}

	var (
		account *models.Account
		doc     *models.ExpenseDocument
	)
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		account, err = q.GetAccountByID(ctx, req.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError("User not found!")
		}
		if err != nil {
			return StorageError("get account", err)
		}

		upserted, err := q.UpsertExpenseDocument(ctx, family, account.ID, date)
		if err != nil {
			return StorageError("upsert expense document", err)
		}
		if err := q.InsertExpenseItem(ctx, upserted.ID, category, item); err != nil {
			return StorageError("insert expense item", err)
		}
		if err := q.LinkExpense(ctx, account.ID, upserted.ID); err != nil {
			return StorageError("link expense", err)
		}

		debit := &models.TransactionLine{Money: amount, Reason: category.ExpenseReason()}
		if err := appendLine(ctx, q, account.ID, models.SideDebit, account.Snapshot(), debit); err != nil {
			return err
		}

		doc, err = q.GetExpenseDocument(ctx, upserted.ID)
		if err != nil {
			return StorageError("reload expense document", err)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError("submit expense", err)
	}

	s.audit.LogExpense(doc.ID, account.ID, string(category), amount)
	log.Printf("[EXPENSE] %s/%s item %s for user %s on %s amount=%s",
		family, category, item.ID, account.ID, date, amount.StringFixed(2))

	s.notifier.Dispatch(notify.TemplateExpense, s.recipients, map[string]string{
		"name":     account.Name,
		"userId":   account.ID,
		"amount":   amount.StringFixed(2),
		"category": category.Label(),
		"type":     family.Label(),
	})

	return doc, nil
}

type submission struct {
	family   models.Family
	category models.Category
	amount   decimal.Decimal
	date     string
}

// ValidateSubmit runs the checks of SubmitExpense that need no storage, so
// callers can reject a claim before accepting its uploads.
func (s *ExpenseService) ValidateSubmit(actor models.Actor, req SubmitExpenseRequest) error {
	_, err := s.checkSubmit(actor, req)
	return err
}

func (s *ExpenseService) checkSubmit(actor models.Actor, req SubmitExpenseRequest) (submission, error) {
	var sub submission
	if strings.TrimSpace(req.UserID) == "" {
		return sub, ValidationError("User id is required!")
	}
	if err := authorize(s.policy, actor, authz.OpSubmitExpense, req.UserID); err != nil {
		return sub, err
	}
	if !validID(req.UserID) {
		return sub, NotFoundError("User not found!")
	}

	family, ok := models.ParseFamily(req.Family)
	if !ok {
		return sub, ValidationError("Invalid expense type!")
	}
	category, spec, ok := models.LookupCategory(family, req.Category)
	if !ok {
		return sub, ValidationError(fmt.Sprintf("%s is not a valid %s expense category!", req.Category, family.Label()))
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return sub, err
	}
	if err := checkRequiredDetails(category, spec, req.Details); err != nil {
		return sub, err
	}
	date, err := ledger.NormalizeDay(req.Date, s.loc, s.now())
	if err != nil {
		return sub, ValidationError("Date must be yyyy-MM-dd!")
	}
	return submission{family: family, category: category, amount: amount, date: date}, nil
}

// checkRequiredDetails reports every missing structured field; the message
// names the first one.
func checkRequiredDetails(category models.Category, spec models.CategorySpec, details map[string]any) error {
	var missing []string
	for _, key := range spec.Required {
		if isBlank(details[key]) {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	verr := ValidationError(fmt.Sprintf("%s is required for %s expense!", models.FieldLabel(missing[0]), strings.ToLower(category.Label())))
	verr.Details = make(map[string]string, len(missing))
	for _, key := range missing {
		verr.Details[key] = "required"
	}
	return verr
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}
