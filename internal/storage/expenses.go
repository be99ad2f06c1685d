package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cashwise/backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// UpsertExpenseDocument returns the document for (family, createdBy, date),
// creating it when absent. The unique key makes concurrent upserts for the
// same day converge on one row.
func (q *Queries) UpsertExpenseDocument(ctx context.Context, family models.Family, createdBy, date string) (*models.ExpenseDocument, error) {
	now := q.now()
	doc := models.ExpenseDocument{
		Family:     family,
		CreatedBy:  createdBy,
		Date:       date,
		Categories: map[models.Category][]models.ExpenseLineItem{},
	}
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO expense_documents (id, family, created_by, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (family, created_by, date)
		DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`,
		uuid.New().String(), family, createdBy, date, now, now).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert expense document: %w", err)
	}
	return &doc, nil
}

// InsertExpenseItem pushes item into the category array of docID.
func (q *Queries) InsertExpenseItem(ctx context.Context, docID string, category models.Category, item *models.ExpenseLineItem) error {
	now := q.now()
	item.ID = uuid.New().String()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = models.StatusPending
	}
	if item.Details == nil {
		item.Details = map[string]any{}
	}
	for _, files := range []*[]string{&item.LocationFiles, &item.PaymentFiles, &item.InvoiceFiles} {
		if *files == nil {
			*files = []string{}
		}
	}

	details, err := json.Marshal(item.Details)
	if err != nil {
		return fmt.Errorf("encode expense details: %w", err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO expense_items (id, document_id, category, amount, status, admin_message, site_name,
		                           description, remarks, details, location_files, payment_files, invoice_files,
		                           created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		item.ID, docID, category, item.Amount, item.Status, item.AdminMessage, item.SiteName,
		item.Description, item.Remarks, details,
		pq.Array(item.LocationFiles), pq.Array(item.PaymentFiles), pq.Array(item.InvoiceFiles),
		now, now)
	if err != nil {
		return fmt.Errorf("insert expense item: %w", err)
	}
	return nil
}

const documentItemsQuery = `
	SELECT d.id, d.family, d.created_by, d.date, d.created_at, d.updated_at,
	       i.id, i.category, i.amount, i.status, i.admin_message, i.site_name, i.description, i.remarks,
	       i.details, i.location_files, i.payment_files, i.invoice_files, i.created_at, i.updated_at
	FROM expense_documents d
	LEFT JOIN expense_items i ON i.document_id = d.id`

// GetExpenseDocument loads one document with every line item.
func (q *Queries) GetExpenseDocument(ctx context.Context, id string) (*models.ExpenseDocument, error) {
	rows, err := q.db.QueryContext(ctx, documentItemsQuery+`
		WHERE d.id = $1
		ORDER BY i.created_at, i.id`, id)
	if err != nil {
		return nil, fmt.Errorf("get expense document: %w", err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

// ExpenseQuery selects documents of one family. Empty UserIDs means every
// user; From and To are inclusive yyyy-MM-dd bounds.
type ExpenseQuery struct {
	Family  models.Family
	UserIDs []string
	From    string
	To      string
}

// FindExpenseDocuments returns the matching documents, newest day first.
func (q *Queries) FindExpenseDocuments(ctx context.Context, eq ExpenseQuery) ([]models.ExpenseDocument, error) {
	args := []any{eq.Family, eq.From, eq.To}
	conds := []string{"d.family = $1", "d.date BETWEEN $2 AND $3"}
	if len(eq.UserIDs) > 0 {
		args = append(args, pq.Array(eq.UserIDs))
		conds = append(conds, fmt.Sprintf("d.created_by = ANY($%d::uuid[])", len(args)))
	}

	rows, err := q.db.QueryContext(ctx, documentItemsQuery+`
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY d.date DESC, d.created_at DESC, d.id, i.created_at, i.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s expenses: %w", eq.Family, err)
	}
	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]models.ExpenseDocument, error) {
	defer rows.Close()

	docs := []models.ExpenseDocument{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			doc      models.ExpenseDocument
			itemID   sql.NullString
			category sql.NullString
			amount   decimal.NullDecimal
			item     models.ExpenseLineItem
			status   sql.NullString
			message  sql.NullString
			site     sql.NullString
			desc     sql.NullString
			remarks  sql.NullString
			details  []byte
			location pq.StringArray
			payment  pq.StringArray
			invoice  pq.StringArray
			created  sql.NullTime
			updated  sql.NullTime
		)
		if err := rows.Scan(&doc.ID, &doc.Family, &doc.CreatedBy, &doc.Date, &doc.CreatedAt, &doc.UpdatedAt,
			&itemID, &category, &amount, &status, &message, &site, &desc, &remarks,
			&details, &location, &payment, &invoice, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}

		i, ok := index[doc.ID]
		if !ok {
			doc.Categories = map[models.Category][]models.ExpenseLineItem{}
			docs = append(docs, doc)
			i = len(docs) - 1
			index[doc.ID] = i
		}
		if !itemID.Valid {
			continue
		}

		item.ID = itemID.String
		item.Amount = amount.Decimal
		item.Status = models.Status(status.String)
		item.AdminMessage = message.String
		item.SiteName = site.String
		item.Description = desc.String
		item.Remarks = remarks.String
		item.LocationFiles = nonNilStrings(location)
		item.PaymentFiles = nonNilStrings(payment)
		item.InvoiceFiles = nonNilStrings(invoice)
		item.CreatedAt = created.Time
		item.UpdatedAt = updated.Time
		if len(details) > 0 {
			if err := json.Unmarshal(details, &item.Details); err != nil {
				return nil, fmt.Errorf("decode expense details: %w", err)
			}
		}

		cat := models.Category(category.String)
		docs[i].Categories[cat] = append(docs[i].Categories[cat], item)
	}
	return docs, rows.Err()
}

func nonNilStrings(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

// ReviewUpdate targets one line item by its document key. Nil fields are
// left untouched.
type ReviewUpdate struct {
	Family       models.Family
	UserID       string
	Date         string
	Category     models.Category
	ItemID       string
	DocumentID   string
	Status       *models.Status
	AdminMessage *string
	SiteName     *string
}

// ReviewExpenseItem applies u in a single filtered update. ErrNotFound means
// no line item matched the key.
func (q *Queries) ReviewExpenseItem(ctx context.Context, u ReviewUpdate) error {
	var status, message, site sql.NullString
	if u.Status != nil {
		status = sql.NullString{String: string(*u.Status), Valid: true}
	}
	if u.AdminMessage != nil {
		message = sql.NullString{String: *u.AdminMessage, Valid: true}
	}
	if u.SiteName != nil {
		site = sql.NullString{String: *u.SiteName, Valid: true}
	}

	result, err := q.db.ExecContext(ctx, `
		UPDATE expense_items i
		SET status = COALESCE($1, i.status),
		    admin_message = COALESCE($2, i.admin_message),
		    site_name = COALESCE($3, i.site_name),
		    updated_at = $4
		FROM expense_documents d
		WHERE i.document_id = d.id
		  AND d.family = $5
		  AND d.created_by = $6
		  AND d.date = $7
		  AND i.category = $8
		  AND i.id = $9
		  AND ($10 = '' OR d.id::text = $10)`,
		status, message, site, q.now(),
		u.Family, u.UserID, u.Date, u.Category, u.ItemID, u.DocumentID)
	if err != nil {
		return fmt.Errorf("review expense item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpenseDocumentOwner returns the creator of the document, or ErrNotFound.
func (q *Queries) ExpenseDocumentOwner(ctx context.Context, family models.Family, docID string) (string, error) {
	var owner string
	err := q.db.QueryRowContext(ctx, `
		SELECT created_by
		FROM expense_documents
		WHERE id = $1 AND family = $2`, docID, family).Scan(&owner)
	if err != nil {
		return "", notFound(err)
	}
	return owner, nil
}

// FileAppend lists URLs to add to one line item's attachment arrays.
type FileAppend struct {
	DocumentID string
	ItemID     string
	// Category optionally pins the item's category array.
	Category models.Category
	Location []string
	Payment  []string
	Invoice  []string
}

// AppendItemFiles concatenates the URLs onto the item's existing arrays.
func (q *Queries) AppendItemFiles(ctx context.Context, f FileAppend) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE expense_items
		SET location_files = array_cat(location_files, $1),
		    payment_files = array_cat(payment_files, $2),
		    invoice_files = array_cat(invoice_files, $3),
		    updated_at = $4
		WHERE id = $5 AND document_id = $6 AND ($7 = '' OR category = $7)`,
		pq.Array(nonNil(f.Location)), pq.Array(nonNil(f.Payment)), pq.Array(nonNil(f.Invoice)),
		q.now(), f.ItemID, f.DocumentID, f.Category)
	if err != nil {
		return fmt.Errorf("append item files: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
