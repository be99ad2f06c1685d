package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cashwise/backend/internal/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newExpenseService(t *testing.T) (*ExpenseService, sqlmock.Sqlmock, *MockNotifier) {
	store, dbMock := newTestStore(t)
	notifier := &MockNotifier{}
	service := NewExpenseService(store, testPolicy(), notifier, quietAudit(), ist, []string{"9999999999"})
	service.now = func() time.Time { return testNow }
	return service, dbMock, notifier
}

func expectSubmission(dbMock sqlmock.Sqlmock, family, category, date, reason string, amount decimal.Decimal, reload *sqlmock.Rows) {
	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").WithArgs(testUserID).
		WillReturnRows(accountRow(testUserID, "Asha", "9000000001", models.RoleEmployee))
	dbMock.ExpectQuery("INSERT INTO expense_documents").
		WithArgs(sqlmock.AnyArg(), family, testUserID, date, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testDocID, testNow, testNow))
	dbMock.ExpectExec("INSERT INTO expense_items").
		WithArgs(sqlmock.AnyArg(), testDocID, category, amount, "pending", "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectExec("INSERT INTO account_expenses").WithArgs(testUserID, testDocID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectQuery("INSERT INTO ledger_groups").
		WithArgs(sqlmock.AnyArg(), testUserID, "debit", "Asha", "", "9000000001", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("grp-self"))
	dbMock.ExpectExec("INSERT INTO transaction_lines").
		WithArgs(sqlmock.AnyArg(), "grp-self", amount, reason, "", pq.Array([]string{}), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectQuery("FROM expense_documents d LEFT JOIN expense_items i (.+) WHERE d.id = \\$1").WithArgs(testDocID).
		WillReturnRows(reload)
	dbMock.ExpectCommit()
}

func itemRow(rows *sqlmock.Rows, date, itemID, category, amount string) *sqlmock.Rows {
	return rows.AddRow(testDocID, "office", testUserID, date, testNow, testNow,
		itemID, category, amount, "pending", "", "", "", "", []byte(`{}`), "{}", "{}", "{}", testNow, testNow)
}

func TestExpenseService_SubmitExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("food expense creates pending item and self debit", func(t *testing.T) {
		service, dbMock, notifier := newExpenseService(t)
		amount := decimal.NewFromInt(200)

		reload := itemRow(sqlmock.NewRows(documentCols), "2025-03-10", testItemID, "food", "200.00")
		expectSubmission(dbMock, "office", "food", "2025-03-10", "Food Expense", amount, reload)
		notifier.On("Dispatch", "EXPENSE", []string{"9999999999"}, mock.MatchedBy(func(v map[string]string) bool {
			return v["name"] == "Asha" && v["userId"] == testUserID && v["amount"] == "200.00"
		})).Return()

		doc, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID:   testUserID,
			Family:   "Office",
			Category: "food",
			Date:     "2025-03-10",
			Amount:   "200",
		})
		require.NoError(t, err)
		assert.Equal(t, testDocID, doc.ID)
		require.Len(t, doc.Categories[models.CategoryFood], 1)
		assert.Equal(t, models.StatusPending, doc.Categories[models.CategoryFood][0].Status)
		assert.NoError(t, dbMock.ExpectationsWereMet())
		notifier.AssertExpectations(t)
	})

	t.Run("timestamps are bucketed in the business timezone", func(t *testing.T) {
		service, dbMock, notifier := newExpenseService(t)
		amount := decimal.NewFromInt(35)

		// 20:00 UTC on the 9th is 01:30 on the 10th in IST
		reload := itemRow(sqlmock.NewRows(documentCols), "2025-03-10", testItemID, "tea", "35.00")
		expectSubmission(dbMock, "office", "tea", "2025-03-10", "Tea Expense", amount, reload)
		notifier.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return()

		_, err := service.SubmitExpense(ctx, adminActor, SubmitExpenseRequest{
			UserID:   testUserID,
			Family:   "officeExpense",
			Category: "tea",
			Date:     "2025-03-09T20:00:00Z",
			Amount:   "35",
		})
		require.NoError(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("second category on the same day lands in the same document", func(t *testing.T) {
		service, dbMock, notifier := newExpenseService(t)
		notifier.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return()

		first := itemRow(sqlmock.NewRows(documentCols), "2025-03-10", testItemID, "food", "200.00")
		expectSubmission(dbMock, "office", "food", "2025-03-10", "Food Expense", decimal.NewFromInt(200), first)

		second := itemRow(itemRow(sqlmock.NewRows(documentCols), "2025-03-10", testItemID, "food", "200.00"),
			"2025-03-10", secondItemID, "dailyWages", "600.00")
		expectSubmission(dbMock, "office", "dailyWages", "2025-03-10", "Daily Wages Expense", decimal.NewFromInt(600), second)

		doc1, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID: testUserID, Family: "office", Category: "food", Date: "2025-03-10", Amount: "200",
		})
		require.NoError(t, err)
		doc2, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID: testUserID, Family: "office", Category: "daily_wages", Date: "2025-03-10", Amount: "600",
			Details: map[string]any{"numberOfWorkers": "4"},
		})
		require.NoError(t, err)

		assert.Equal(t, doc1.ID, doc2.ID)
		assert.Len(t, doc2.Categories[models.CategoryFood], 1)
		assert.Len(t, doc2.Categories[models.CategoryDailyWages], 1)
		assert.True(t, decimal.NewFromInt(800).Equal(doc2.Total()))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("hotel requires its structured fields", func(t *testing.T) {
		service, dbMock, _ := newExpenseService(t)

		_, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID:   testUserID,
			Family:   "travel",
			Category: "hotel",
			Amount:   "1500",
			Details:  map[string]any{"rent": "1500", "days": ""},
		})
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, KindValidation, e.Kind)
		assert.Equal(t, "Days is required for hotel expense!", e.Message)
		assert.Len(t, e.Details, 3)
		assert.Contains(t, e.Details, "startingDate")
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("category must belong to the family", func(t *testing.T) {
		service, _, _ := newExpenseService(t)

		_, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID: testUserID, Family: "office", Category: "hotel", Amount: "10",
		})
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("unknown family", func(t *testing.T) {
		service, _, _ := newExpenseService(t)

		_, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID: testUserID, Family: "leisure", Category: "food", Amount: "10",
		})
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "Invalid expense type!", e.Message)
	})

	t.Run("employees submit only for themselves", func(t *testing.T) {
		service, _, _ := newExpenseService(t)

		_, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID: secondUserID, Family: "office", Category: "food", Amount: "10",
		})
		assert.Equal(t, KindUnauthorized, KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		service, dbMock, notifier := newExpenseService(t)

		dbMock.ExpectBegin()
		dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").WithArgs(unknownUserID).
			WillReturnRows(sqlmock.NewRows(accountCols))
		dbMock.ExpectRollback()

		_, err := service.SubmitExpense(ctx, adminActor, SubmitExpenseRequest{
			UserID: unknownUserID, Family: "toPay", Category: "contractor", Amount: "10",
			Details: map[string]any{"contractorName": "Mehta & Sons"},
		})
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, KindNotFound, e.Kind)
		assert.Equal(t, "User not found!", e.Message)
		assert.NoError(t, dbMock.ExpectationsWereMet())
		notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad date", func(t *testing.T) {
		service, _, _ := newExpenseService(t)

		_, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID: testUserID, Family: "office", Category: "food", Amount: "10", Date: "10/03/2025",
		})
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("malformed user id is not found", func(t *testing.T) {
		service, dbMock, notifier := newExpenseService(t)

		_, err := service.SubmitExpense(ctx, adminActor, SubmitExpenseRequest{
			UserID: "abc", Family: "office", Category: "food", Amount: "10",
		})
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, KindNotFound, e.Kind)
		assert.Equal(t, "User not found!", e.Message)
		assert.NoError(t, dbMock.ExpectationsWereMet())
		notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("amount finer than paisa", func(t *testing.T) {
		service, dbMock, _ := newExpenseService(t)

		_, err := service.SubmitExpense(ctx, employeeActor, SubmitExpenseRequest{
			UserID: testUserID, Family: "office", Category: "food", Amount: "0.004",
		})
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, KindValidation, e.Kind)
		assert.Equal(t, "Amount must have at most 2 decimal places!", e.Message)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestExpenseService_ValidateSubmit(t *testing.T) {
	service, dbMock, _ := newExpenseService(t)
	valid := SubmitExpenseRequest{UserID: testUserID, Family: "office", Category: "food", Amount: "120"}

	assert.NoError(t, service.ValidateSubmit(employeeActor, valid))

	other := valid
	other.UserID = secondUserID
	assert.Equal(t, KindUnauthorized, KindOf(service.ValidateSubmit(employeeActor, other)))

	wrongFamily := valid
	wrongFamily.Category = "hotel"
	assert.Equal(t, KindValidation, KindOf(service.ValidateSubmit(employeeActor, wrongFamily)))

	malformed := valid
	malformed.UserID = "abc"
	assert.Equal(t, KindNotFound, KindOf(service.ValidateSubmit(adminActor, malformed)))

	assert.NoError(t, dbMock.ExpectationsWereMet())
}
