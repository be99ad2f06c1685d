package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cashwise/backend/internal/attachments"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type ExpenseRecorder interface {
	ValidateSubmit(actor models.Actor, req services.SubmitExpenseRequest) error
	SubmitExpense(ctx context.Context, actor models.Actor, req services.SubmitExpenseRequest) (*models.ExpenseDocument, error)
}

type ExpenseReviewer interface {
	ReviewExpenseLine(ctx context.Context, actor models.Actor, req services.ReviewRequest) (*services.ReviewResult, error)
	AttachFiles(ctx context.Context, actor models.Actor, req services.AttachFilesRequest) error
}

type ExpenseHandler struct {
	expenses ExpenseRecorder
	review   ExpenseReviewer
	files    attachments.Store
}

func NewExpenseHandler(expenses ExpenseRecorder, review ExpenseReviewer, files attachments.Store) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, review: review, files: files}
}

// form fields consumed directly; anything else becomes a category detail
var expenseFormFields = map[string]bool{
	"amount": true, "date": true, "siteName": true, "description": true, "remarks": true, "details": true,
}

// SubmitExpense records one expense claim
// @Summary Submit expense
// @Description Appends a pending line item to the user's document for the day and debits the user's own ledger
// @Tags Expense
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Account id"
// @Param family path string true "office, travel or toPay"
// @Param category path string true "Expense category, e.g. food or hotel"
// @Param amount formData string true "Amount"
// @Param date formData string false "yyyy-MM-dd, defaults to today"
// @Param details formData string false "JSON object of category fields"
// @Param files[] formData file false "Location proofs"
// @Param paymentFiles[] formData file false "Payment proofs"
// @Param invoiceFiles[] formData file false "Invoices"
// @Success 201 {object} models.ExpenseDocument
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /form/{userId}/{family}/{category} [post]
func (h *ExpenseHandler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if err := parseForm(r); err != nil {
		SendErrorResponse(w, "Invalid form body", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}

	details := map[string]any{}
	if raw := strings.TrimSpace(r.FormValue("details")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &details); err != nil {
			SendErrorResponse(w, "Details must be a JSON object!", http.StatusBadRequest, string(services.KindValidation), nil)
			return
		}
	}
	for key, values := range r.PostForm {
		if expenseFormFields[key] || len(values) == 0 {
			continue
		}
		if _, set := details[key]; !set {
			details[key] = values[0]
		}
	}

	req := services.SubmitExpenseRequest{
		UserID:      chi.URLParam(r, "userId"),
		Family:      chi.URLParam(r, "family"),
		Category:    chi.URLParam(r, "category"),
		Date:        r.FormValue("date"),
		Amount:      r.FormValue("amount"),
		SiteName:    r.FormValue("siteName"),
		Description: r.FormValue("description"),
		Remarks:     r.FormValue("remarks"),
		Details:     details,
	}

	if err := h.expenses.ValidateSubmit(actor, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var err error
	if req.LocationFiles, err = saveFiles(r.Context(), h.files, r, "files"); err == nil {
		if req.PaymentFiles, err = saveFiles(r.Context(), h.files, r, "paymentFiles"); err == nil {
			req.InvoiceFiles, err = saveFiles(r.Context(), h.files, r, "invoiceFiles")
		}
	}
	if err != nil {
		discardFiles(r.Context(), h.files, req.LocationFiles, req.PaymentFiles)
		writeServiceError(w, r, services.StorageError("save attachments", err))
		return
	}

	doc, err := h.expenses.SubmitExpense(r.Context(), actor, req)
	if err != nil {
		discardFiles(r.Context(), h.files, req.LocationFiles, req.PaymentFiles, req.InvoiceFiles)
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// ReviewExpense approves or rejects one line item
// @Summary Review expense
// @Tags Expense
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param expenseType formData string true "office, travel or toPay"
// @Param userId formData string true "Owner of the document"
// @Param date formData string true "yyyy-MM-dd"
// @Param formType formData string true "Expense category"
// @Param expenseId formData string true "Line item id"
// @Param documentId formData string false "Document id"
// @Param status formData string false "approved or rejected"
// @Param message formData string false "Admin message, applied with a status when longer than 3 characters"
// @Param siteName formData string false "Site name"
// @Param phone formData string false "Phone to notify"
// @Success 200 {object} services.ReviewResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/expenses [put]
func (h *ExpenseHandler) ReviewExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if err := parseForm(r); err != nil {
		SendErrorResponse(w, "Invalid form body", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}

	req := services.ReviewRequest{
		Family:     r.FormValue("expenseType"),
		UserID:     r.FormValue("userId"),
		Date:       r.FormValue("date"),
		Category:   r.FormValue("formType"),
		ItemID:     r.FormValue("expenseId"),
		DocumentID: r.FormValue("documentId"),
		Status:     r.FormValue("status"),
		Message:    r.FormValue("message"),
		Phone:      strings.TrimSpace(r.FormValue("phone")),
	}
	if _, set := r.Form["siteName"]; set {
		site := r.FormValue("siteName")
		req.SiteName = &site
	}

	result, err := h.review.ReviewExpenseLine(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AttachFilesRequest is the JSON body of the file attach endpoint
// @Description File attach request structure
type AttachFilesRequest struct {
	SchemaType  string `json:"schemaType" example:"office"` // Expense family
	DocumentID  string `json:"documentId"`
	ExpenseType string `json:"expenseType" example:"food"` // Expense category
	FiledID     string `json:"filedId"`                    // Line item id
	Files       struct {
		LocationFiles []string `json:"locationFiles"`
		PaymentFiles  []string `json:"paymentFiles"`
		InvoiceFiles  []string `json:"invoiceFiles"`
	} `json:"files"`
}

// AttachFiles appends file URLs to an existing line item
// @Summary Attach files
// @Tags Expense
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AttachFilesRequest true "Files to attach"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/expenses [patch]
func (h *ExpenseHandler) AttachFiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var body AttachFilesRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}

	err := h.review.AttachFiles(r.Context(), actor, services.AttachFilesRequest{
		Family:        body.SchemaType,
		DocumentID:    body.DocumentID,
		Category:      body.ExpenseType,
		ItemID:        body.FiledID,
		LocationFiles: body.Files.LocationFiles,
		PaymentFiles:  body.Files.PaymentFiles,
		InvoiceFiles:  body.Files.InvoiceFiles,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
