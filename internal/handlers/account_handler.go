package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cashwise/backend/internal/attachments"
	"github.com/cashwise/backend/internal/ledger"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/services"
)

type AccountManager interface {
	CreateAccount(ctx context.Context, actor models.Actor, req services.CreateAccountRequest) (*models.Account, error)
	ListAccounts(ctx context.Context, actor models.Actor, role, name string) ([]models.Account, error)
}

type TransferPoster interface {
	ValidateTransfer(actor models.Actor, req services.TransferRequest) error
	PostTransfer(ctx context.Context, actor models.Actor, req services.TransferRequest) (*services.TransferResult, error)
}

type Reporter interface {
	TransactionHistory(ctx context.Context, actor models.Actor, q services.HistoryQuery) (*services.HistoryResult, error)
	AdminRollup(ctx context.Context, actor models.Actor, q services.RollupQuery) (*services.RollupResult, error)
	Balance(ctx context.Context, actor models.Actor, userID string) (*services.BalanceResult, error)
}

type AccountHandler struct {
	accounts AccountManager
	ledger   TransferPoster
	reports  Reporter
	files    attachments.Store
}

func NewAccountHandler(accounts AccountManager, ledger TransferPoster, reports Reporter, files attachments.Store) *AccountHandler {
	return &AccountHandler{accounts: accounts, ledger: ledger, reports: reports, files: files}
}

// CreateAccount registers a new account
// @Summary Create account
// @Description Register a user that can hold a ledger and submit expenses
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateAccountRequest true "Account details"
// @Success 201 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /account [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req services.CreateAccountRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}

	acc, err := h.accounts.CreateAccount(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

// ListAccounts lists accounts
// @Summary List accounts
// @Description Plain account listing filtered by type and a name substring
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Param type query string false "Account type"
// @Param name query string false "Name substring"
// @Success 200 {array} models.Account
// @Failure 400 {object} ErrorResponse
// @Router /account [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	accounts, err := h.accounts.ListAccounts(r.Context(), actor, q.Get("type"), q.Get("name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// Transfer posts money from one account to another
// @Summary Post transfer
// @Description Credits the receiver and debits the sender in one transaction. Sending to your own phone is a self-credit.
// @Tags Account
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param fromPhone formData string true "Sender phone"
// @Param toPhone formData string true "Receiver phone"
// @Param amount formData string true "Amount"
// @Param reason formData string false "Reason (office, travel, toPay or free text)"
// @Param files[] formData file false "Proof attachments"
// @Success 201 {object} services.TransferResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /account [put]
func (h *AccountHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if err := parseForm(r); err != nil {
		SendErrorResponse(w, "Invalid form body", http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}

	req := services.TransferRequest{
		FromName:  r.FormValue("fromName"),
		FromEmail: r.FormValue("fromEmail"),
		FromPhone: strings.TrimSpace(r.FormValue("fromPhone")),
		ToName:    r.FormValue("toName"),
		ToEmail:   r.FormValue("toEmail"),
		ToPhone:   strings.TrimSpace(r.FormValue("toPhone")),
		Amount:    r.FormValue("amount"),
		Reason:    r.FormValue("reason"),
		Remarks:   r.FormValue("remarks"),
	}
	if err := h.ledger.ValidateTransfer(actor, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	urls, err := saveFiles(r.Context(), h.files, r, "files")
	if err != nil {
		writeServiceError(w, r, services.StorageError("save attachments", err))
		return
	}
	req.Attachments = urls

	result, err := h.ledger.PostTransfer(r.Context(), actor, req)
	if err != nil {
		discardFiles(r.Context(), h.files, urls)
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Balance returns the category balances of an account
// @Summary Account balance
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Account id, defaults to the caller"
// @Success 200 {object} services.BalanceResult
// @Failure 404 {object} ErrorResponse
// @Router /account/balance [get]
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = actor.UserID
	}
	result, err := h.reports.Balance(r.Context(), actor, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// History returns the filtered ledger and expenses of one user
// @Summary Transaction history
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Param userId query string true "Account id"
// @Param name query string false "Counterparty name substring"
// @Param minAmount query number false "Minimum amount"
// @Param maxAmount query number false "Maximum amount"
// @Param fromDate query string false "yyyy-MM-dd"
// @Param toDate query string false "yyyy-MM-dd"
// @Param reason query string false "Reason substring"
// @Param limit query int false "Maximum groups and documents"
// @Param transactionType query string false "all, credit or debit"
// @Success 200 {object} services.HistoryResult
// @Failure 400 {object} ErrorResponse
// @Router /account/transaction [get]
func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	amount, err := parseAmountRange(q)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}

	result, err := h.reports.TransactionHistory(r.Context(), actor, services.HistoryQuery{
		UserID:   q.Get("userId"),
		Name:     q.Get("name"),
		FromDate: q.Get("fromDate"),
		ToDate:   q.Get("toDate"),
		Amount:   amount,
		Reason:   q.Get("reason"),
		Limit:    limit,
		Type:     ledger.ParseTransactionType(q.Get("transactionType")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Rollup builds the admin dashboard
// @Summary Admin rollup
// @Description Per-user totals over a date window plus the all-time balance
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param fromDate query string false "yyyy-MM-dd"
// @Param toDate query string false "yyyy-MM-dd"
// @Param user query []string false "Account ids" collectionFormat(multi)
// @Param formType query []string false "Expense categories" collectionFormat(multi)
// @Param expenseType query []string false "Expense families" collectionFormat(multi)
// @Param status query string false "Comma separated statuses"
// @Param minAmount query number false "Minimum item amount"
// @Param maxAmount query number false "Maximum item amount"
// @Param limit query int false "Maximum documents per family"
// @Success 200 {object} services.RollupResult
// @Failure 403 {object} ErrorResponse
// @Router /admin/account [get]
func (h *AccountHandler) Rollup(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	amount, err := parseAmountRange(q)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, string(services.KindValidation), nil)
		return
	}

	result, err := h.reports.AdminRollup(r.Context(), actor, services.RollupQuery{
		FromDate:     q.Get("fromDate"),
		ToDate:       q.Get("toDate"),
		UserIDs:      queryList(q, "user"),
		FormTypes:    queryList(q, "formType"),
		Statuses:     queryList(q, "status"),
		ExpenseTypes: queryList(q, "expenseType"),
		Amount:       amount,
		Limit:        limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
