package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cashwise/backend/internal/audit"
	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/ledger"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/notify"
	"github.com/cashwise/backend/internal/storage"
)

// ReviewRequest addresses one line item by its document key. Empty Status
// and nil SiteName leave the respective field unchanged; Message is only
// written together with a Status.
type ReviewRequest struct {
	Family     string
	UserID     string
	Date       string
	Category   string
	ItemID     string
	DocumentID string
	Status     string
	Message    string
	SiteName   *string
	Phone      string
}

type ReviewResult struct {
	Family         models.Family   `json:"expenseType"`
	UserID         string          `json:"userId"`
	Date           string          `json:"date"`
	Category       models.Category `json:"formType"`
	ItemID         string          `json:"expenseId"`
	Status         models.Status   `json:"status,omitempty"`
	MessageApplied bool            `json:"messageApplied"`
	Notified       bool            `json:"notified"`
}

type AttachFilesRequest struct {
	Family        string
	DocumentID    string
	Category      string
	ItemID        string
	LocationFiles []string
	PaymentFiles  []string
	InvoiceFiles  []string
}

type ReviewService struct {
	store    *storage.Store
	policy   *authz.Policy
	notifier Notifier
	audit    *audit.Logger
	loc      *time.Location
	// admin messages must be longer than this many characters
	minMessageLength int
	now              func() time.Time
}

func NewReviewService(store *storage.Store, policy *authz.Policy, notifier Notifier, auditLogger *audit.Logger, loc *time.Location, minMessageLength int) *ReviewService {
	return &ReviewService{
		store:            store,
		policy:           policy,
		notifier:         notifier,
		audit:            auditLogger,
		loc:              loc,
		minMessageLength: minMessageLength,
		now:              time.Now,
	}
}

// ReviewExpenseLine updates status, admin message and site name of a single
// line item, leaving its siblings untouched.
func (s *ReviewService) ReviewExpenseLine(ctx context.Context, actor models.Actor, req ReviewRequest) (*ReviewResult, error) {
	if err := authorize(s.policy, actor, authz.OpReviewExpense, ""); err != nil {
		return nil, err
	}

	for _, f := range []struct{ name, value string }{
		{"Expense type", req.Family},
		{"User id", req.UserID},
		{"Date", req.Date},
		{"Form type", req.Category},
		{"Expense id", req.ItemID},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, ValidationError(f.name + " is required!")
		}
	}

	family, ok := models.ParseFamily(req.Family)
	if !ok {
		return nil, ValidationError("Invalid expense type!")
	}
	category, _, ok := models.LookupCategory(family, req.Category)
	if !ok {
		return nil, ValidationError("Invalid form type!")
	}
	date, err := ledger.NormalizeDay(req.Date, s.loc, s.now())
	if err != nil {
		return nil, ValidationError("Date must be yyyy-MM-dd!")
	}
	if !validID(req.UserID) {
		return nil, NotFoundError("User not found!")
	}
	if !validID(req.ItemID) || (req.DocumentID != "" && !validID(req.DocumentID)) {
		return nil, NotFoundError("Expense item not found!")
	}

	update := storage.ReviewUpdate{
		Family:     family,
		UserID:     req.UserID,
		Date:       date,
		Category:   category,
		ItemID:     req.ItemID,
		DocumentID: req.DocumentID,
		SiteName:   req.SiteName,
	}
	result := &ReviewResult{Family: family, UserID: req.UserID, Date: date, Category: category, ItemID: req.ItemID}

	if strings.TrimSpace(req.Status) != "" {
		status, ok := models.ParseStatus(req.Status)
		if !ok || status == models.StatusPending {
			return nil, ValidationError("Status must be approved or rejected!")
		}
		update.Status = &status
		result.Status = status
	}
	// the admin message only travels with an approved/rejected transition
	if update.Status != nil && utf8.RuneCountInString(req.Message) > s.minMessageLength {
		msg := req.Message
		update.AdminMessage = &msg
		result.MessageApplied = true
	}

	if err := s.store.ReviewExpenseItem(ctx, update); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError("Expense item not found!")
		}
		return nil, StorageError("review expense item", err)
	}

	s.audit.LogReview(req.ItemID, req.UserID, string(result.Status))
	log.Printf("[REVIEW] %s/%s item %s of user %s on %s status=%q message=%t",
		family, category, req.ItemID, req.UserID, date, result.Status, result.MessageApplied)

	if req.Phone != "" && result.Status != "" {
		s.notifier.Dispatch(notify.TemplateAdminAction, []string{req.Phone}, map[string]string{
			"category": category.Label(),
			"status":   string(result.Status),
			"userId":   req.UserID,
			"phone":    req.Phone,
		})
		result.Notified = true
	}

	return result, nil
}

// AttachFiles appends attachment URLs to an existing line item. Self-only
// roles may attach to their own documents only.
func (s *ReviewService) AttachFiles(ctx context.Context, actor models.Actor, req AttachFilesRequest) error {
	if err := authorize(s.policy, actor, authz.OpAttachFiles, ""); err != nil {
		return err
	}

	family, ok := models.ParseFamily(req.Family)
	if !ok {
		return ValidationError("Invalid expense type!")
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		return ValidationError("Document id is required!")
	}
	if strings.TrimSpace(req.ItemID) == "" {
		return ValidationError("Expense id is required!")
	}
	var category models.Category
	if req.Category != "" {
		if category, _, ok = models.LookupCategory(family, req.Category); !ok {
			return ValidationError("Invalid form type!")
		}
	}
	files := len(req.LocationFiles) + len(req.PaymentFiles) + len(req.InvoiceFiles)
	if files == 0 {
		return ValidationError("Files are required!")
	}
	if !validID(req.DocumentID) {
		return NotFoundError("Expense document not found!")
	}
	if !validID(req.ItemID) {
		return NotFoundError("Expense item not found!")
	}

	owner, err := s.store.ExpenseDocumentOwner(ctx, family, req.DocumentID)
	if errors.Is(err, storage.ErrNotFound) {
		return NotFoundError("Expense document not found!")
	}
	if err != nil {
		return StorageError("get expense document", err)
	}
	if !s.policy.Privileged(actor) && owner != actor.UserID {
		return UnauthorizedError(authz.ErrNotOwner)
	}

	err = s.store.AppendItemFiles(ctx, storage.FileAppend{
		DocumentID: req.DocumentID,
		ItemID:     req.ItemID,
		Category:   category,
		Location:   req.LocationFiles,
		Payment:    req.PaymentFiles,
		Invoice:    req.InvoiceFiles,
	})
	if errors.Is(err, storage.ErrNotFound) {
		return NotFoundError("Expense item not found!")
	}
	if err != nil {
		return StorageError("append item files", err)
	}

	s.audit.LogAttach(req.ItemID, req.DocumentID, files)
	log.Printf("[REVIEW] Attached %d file(s) to item %s of document %s", files, req.ItemID, req.DocumentID)
	return nil
}
