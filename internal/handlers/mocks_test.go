package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccounts struct{ mock.Mock }

func (m *MockAccounts) CreateAccount(ctx context.Context, actor models.Actor, req services.CreateAccountRequest) (*models.Account, error) {
	args := m.Called(actor, req)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

func (m *MockAccounts) ListAccounts(ctx context.Context, actor models.Actor, role, name string) ([]models.Account, error) {
	args := m.Called(actor, role, name)
	accounts, _ := args.Get(0).([]models.Account)
	return accounts, args.Error(1)
}

type MockLedger struct {
	mock.Mock
	// rejected is what ValidateTransfer reports
	rejected error
}

func (m *MockLedger) ValidateTransfer(actor models.Actor, req services.TransferRequest) error {
	return m.rejected
}

func (m *MockLedger) PostTransfer(ctx context.Context, actor models.Actor, req services.TransferRequest) (*services.TransferResult, error) {
	args := m.Called(actor, req)
	res, _ := args.Get(0).(*services.TransferResult)
	return res, args.Error(1)
}

type MockReports struct{ mock.Mock }

func (m *MockReports) TransactionHistory(ctx context.Context, actor models.Actor, q services.HistoryQuery) (*services.HistoryResult, error) {
	args := m.Called(actor, q)
	res, _ := args.Get(0).(*services.HistoryResult)
	return res, args.Error(1)
}

func (m *MockReports) AdminRollup(ctx context.Context, actor models.Actor, q services.RollupQuery) (*services.RollupResult, error) {
	args := m.Called(actor, q)
	res, _ := args.Get(0).(*services.RollupResult)
	return res, args.Error(1)
}

func (m *MockReports) Balance(ctx context.Context, actor models.Actor, userID string) (*services.BalanceResult, error) {
	args := m.Called(actor, userID)
	res, _ := args.Get(0).(*services.BalanceResult)
	return res, args.Error(1)
}

type MockExpenses struct {
	mock.Mock
	// rejected is what ValidateSubmit reports
	rejected error
}

func (m *MockExpenses) ValidateSubmit(actor models.Actor, req services.SubmitExpenseRequest) error {
	return m.rejected
}

func (m *MockExpenses) SubmitExpense(ctx context.Context, actor models.Actor, req services.SubmitExpenseRequest) (*models.ExpenseDocument, error) {
	args := m.Called(actor, req)
	doc, _ := args.Get(0).(*models.ExpenseDocument)
	return doc, args.Error(1)
}

type MockReview struct{ mock.Mock }

func (m *MockReview) ReviewExpenseLine(ctx context.Context, actor models.Actor, req services.ReviewRequest) (*services.ReviewResult, error) {
	args := m.Called(actor, req)
	res, _ := args.Get(0).(*services.ReviewResult)
	return res, args.Error(1)
}

func (m *MockReview) AttachFiles(ctx context.Context, actor models.Actor, req services.AttachFilesRequest) error {
	return m.Called(actor, req).Error(0)
}

type MockAuth struct{ mock.Mock }

func (m *MockAuth) Login(ctx context.Context, req services.LoginRequest) (*services.AuthResponse, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*services.AuthResponse)
	return res, args.Error(1)
}

func (m *MockAuth) Logout(ctx context.Context, token string) error {
	return m.Called(token).Error(0)
}

type MockLimits struct{ mock.Mock }

func (m *MockLimits) Get(ctx context.Context, actor models.Actor, userID string) (*models.ExpenseLimit, error) {
	args := m.Called(actor, userID)
	res, _ := args.Get(0).(*models.ExpenseLimit)
	return res, args.Error(1)
}

func (m *MockLimits) Update(ctx context.Context, actor models.Actor, limit models.ExpenseLimit) (*models.ExpenseLimit, error) {
	args := m.Called(actor, limit)
	res, _ := args.Get(0).(*models.ExpenseLimit)
	return res, args.Error(1)
}

// memoryFiles records uploads and hands out sequential URLs.
type memoryFiles struct {
	mu      sync.Mutex
	saved   map[string]string
	deleted []string
	fail    bool
}

func (f *memoryFiles) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if f.fail {
		return "", errors.New("disk full")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	url := fmt.Sprintf("/uploads/%d-%s", len(f.saved)+1, name)
	f.saved[url] = string(body)
	return url, nil
}

func (f *memoryFiles) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, url)
	f.deleted = append(f.deleted, url)
	return nil
}

type tokenVerifier map[string]models.Actor

func (v tokenVerifier) Verify(_ context.Context, token string) (models.Actor, error) {
	actor, ok := v[token]
	if !ok {
		return models.Actor{}, errors.New("unknown token")
	}
	return actor, nil
}

var (
	adminActor    = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	employeeActor = models.Actor{UserID: "acc-1", Role: models.RoleEmployee}
)

type testServer struct {
	handler  http.Handler
	accounts *MockAccounts
	ledger   *MockLedger
	reports  *MockReports
	expenses *MockExpenses
	review   *MockReview
	auth     *MockAuth
	limits   *MockLimits
	files    *memoryFiles
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		accounts: new(MockAccounts),
		ledger:   new(MockLedger),
		reports:  new(MockReports),
		expenses: new(MockExpenses),
		review:   new(MockReview),
		auth:     new(MockAuth),
		limits:   new(MockLimits),
		files:    &memoryFiles{},
	}
	s.handler = NewRouter(RouterConfig{
		Auth:     NewAuthHandler(s.auth),
		Accounts: NewAccountHandler(s.accounts, s.ledger, s.reports, s.files),
		Expenses: NewExpenseHandler(s.expenses, s.review, s.files),
		Limits:   NewLimitHandler(s.limits),
		Verifier: tokenVerifier{
			"admin-token":    adminActor,
			"employee-token": employeeActor,
		},
		UploadsDir: t.TempDir(),
	})
	return s
}

func (s *testServer) do(r *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

type upload struct {
	field, name, body string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}
