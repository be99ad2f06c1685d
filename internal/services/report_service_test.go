package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cashwise/backend/internal/ledger"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/storage"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const findExpenses = "FROM expense_documents d LEFT JOIN expense_items i (.+) WHERE d.family = \\$1"

func at(day string, hour int) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", day, ist)
	return t.Add(time.Duration(hour) * time.Hour)
}

// ledgerRows gives testUserID an all-time credit of 1100 (1000 in January, 100 on
// 5 March) and one 30 food debit on 10 March.
func ledgerRows() *sqlmock.Rows {
	return sqlmock.NewRows(ledgerCols).
		AddRow(testUserID, "grp-c", "credit", "Boss", "", "9000000009", "ln-1", "1000.00", "office", "", "{}", at("2025-01-02", 10), at("2025-01-02", 10)).
		AddRow(testUserID, "grp-c", "credit", "Boss", "", "9000000009", "ln-2", "100.00", "travel", "", "{}", at("2025-03-05", 10), at("2025-03-05", 10)).
		AddRow(testUserID, "grp-d", "debit", "Asha", "", "9000000001", "ln-3", "30.00", "Food Expense", "", "{}", at("2025-03-10", 10), at("2025-03-10", 10))
}

func officeDocRows(status string) *sqlmock.Rows {
	return sqlmock.NewRows(documentCols).
		AddRow(testDocID, "office", testUserID, "2025-03-10", testNow, testNow,
			testItemID, "food", "30.00", status, "", "", "", "", []byte(`{}`), "{}", "{}", "{}", testNow, testNow).
		AddRow(testDocID, "office", testUserID, "2025-03-10", testNow, testNow,
			secondItemID, "tea", "12.00", status, "", "", "", "", []byte(`{}`), "{}", "{}", "{}", testNow, testNow)
}

func newReportService(t *testing.T) (*ReportService, sqlmock.Sqlmock) {
	db, dbMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	dbMock.MatchExpectationsInOrder(false)

	return NewReportService(storage.New(db), testPolicy(), ist, 0), dbMock
}

func TestReportService_TransactionHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("filters ledger and expenses of one user", func(t *testing.T) {
		service, dbMock := newReportService(t)

		dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").WithArgs(testUserID).
			WillReturnRows(accountRow(testUserID, "Asha", "9000000001", models.RoleEmployee))
		dbMock.ExpectQuery("FROM ledger_groups g JOIN transaction_lines l").WithArgs(pq.Array([]string{testUserID})).
			WillReturnRows(ledgerRows())
		dbMock.ExpectQuery("SELECT ae.document_id FROM account_expenses").WithArgs(testUserID).
			WillReturnRows(sqlmock.NewRows([]string{"document_id"}).AddRow(testDocID))
		dbMock.ExpectQuery(findExpenses).WithArgs("office", "2025-03-01", "2025-03-31", pq.Array([]string{testUserID})).
			WillReturnRows(officeDocRows("pending"))
		dbMock.ExpectQuery(findExpenses).WithArgs("travel", "2025-03-01", "2025-03-31", pq.Array([]string{testUserID})).
			WillReturnRows(sqlmock.NewRows(documentCols))
		dbMock.ExpectQuery(findExpenses).WithArgs("toPay", "2025-03-01", "2025-03-31", pq.Array([]string{testUserID})).
			WillReturnRows(sqlmock.NewRows(documentCols))

		result, err := service.TransactionHistory(ctx, employeeActor, HistoryQuery{
			UserID:   testUserID,
			FromDate: "2025-03-01",
			ToDate:   "2025-03-31",
			Amount:   ledger.AmountRange{Min: decimal.NewFromInt(20)},
			Type:     ledger.TransactionAll,
		})
		require.NoError(t, err)

		assert.Equal(t, []string{testDocID}, result.Account.Expense)
		require.Len(t, result.Account.Credit, 1)
		require.Len(t, result.Account.Credit[0].TransactionDetails, 1)
		assert.Equal(t, "ln-2", result.Account.Credit[0].TransactionDetails[0].ID)
		require.Len(t, result.Account.Debit, 1)

		require.Len(t, result.OfficeExpense, 1)
		assert.Len(t, result.OfficeExpense[0].Categories[models.CategoryFood], 1)
		assert.Empty(t, result.OfficeExpense[0].Categories[models.CategoryTea])
		assert.NotNil(t, result.TravelExpense)
		assert.Empty(t, result.TravelExpense)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("credit only history", func(t *testing.T) {
		service, dbMock := newReportService(t)

		dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").
			WillReturnRows(accountRow(testUserID, "Asha", "9000000001", models.RoleEmployee))
		dbMock.ExpectQuery("FROM ledger_groups g JOIN transaction_lines l").WillReturnRows(ledgerRows())
		dbMock.ExpectQuery("SELECT ae.document_id FROM account_expenses").
			WillReturnRows(sqlmock.NewRows([]string{"document_id"}))
		for _, family := range []string{"office", "travel", "toPay"} {
			dbMock.ExpectQuery(findExpenses).WithArgs(family, "0000-01-01", "9999-12-31", pq.Array([]string{testUserID})).
				WillReturnRows(sqlmock.NewRows(documentCols))
		}

		result, err := service.TransactionHistory(ctx, adminActor, HistoryQuery{
			UserID: testUserID,
			Type:   ledger.TransactionCredit,
			Limit:  1,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Account.Debit)
		require.Len(t, result.Account.Credit, 1)
		assert.Equal(t, "ln-2", result.Account.Credit[0].TransactionDetails[0].ID)
	})

	t.Run("employees see only their own history", func(t *testing.T) {
		service, _ := newReportService(t)

		_, err := service.TransactionHistory(ctx, employeeActor, HistoryQuery{UserID: secondUserID})
		assert.Equal(t, KindUnauthorized, KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		service, dbMock := newReportService(t)
		dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(accountCols))

		_, err := service.TransactionHistory(ctx, adminActor, HistoryQuery{UserID: unknownUserID})
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("malformed user id", func(t *testing.T) {
		service, dbMock := newReportService(t)

		_, err := service.TransactionHistory(ctx, adminActor, HistoryQuery{UserID: "abc"})
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, KindNotFound, e.Kind)
		assert.Equal(t, "User not found!", e.Message)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestReportService_AdminRollup(t *testing.T) {
	ctx := context.Background()

	expectBase := func(dbMock sqlmock.Sqlmock) {
		dbMock.ExpectQuery("SELECT (.+) FROM accounts ORDER BY name, id").
			WillReturnRows(accountRow(testUserID, "Asha", "9000000001", models.RoleEmployee))
		dbMock.ExpectQuery("FROM ledger_groups g JOIN transaction_lines l").WithArgs(pq.Array([]string{testUserID})).
			WillReturnRows(ledgerRows())
	}

	t.Run("balance is all time while period figures are windowed", func(t *testing.T) {
		service, dbMock := newReportService(t)
		expectBase(dbMock)

		dbMock.ExpectQuery(findExpenses).WithArgs("office", "2025-03-08", "2025-03-12").
			WillReturnRows(sqlmock.NewRows(documentCols).
				AddRow(testDocID, "office", testUserID, "2025-03-10", testNow, testNow,
					testItemID, "food", "30.00", "pending", "", "", "", "", []byte(`{}`), "{}", "{}", "{}", testNow, testNow))
		dbMock.ExpectQuery(findExpenses).WithArgs("travel", "2025-03-08", "2025-03-12").
			WillReturnRows(sqlmock.NewRows(documentCols))
		dbMock.ExpectQuery(findExpenses).WithArgs("toPay", "2025-03-08", "2025-03-12").
			WillReturnRows(sqlmock.NewRows(documentCols))

		result, err := service.AdminRollup(ctx, managerActor, RollupQuery{FromDate: "2025-03-08", ToDate: "2025-03-12"})
		require.NoError(t, err)
		require.Len(t, result.Result, 1)

		r := result.Result[0]
		assert.True(t, decimal.NewFromInt(1070).Equal(r.Balance), r.Balance.String())
		assert.True(t, decimal.Zero.Equal(r.TotalCredit))
		assert.True(t, decimal.NewFromInt(30).Equal(r.TotalDebit))
		assert.True(t, decimal.NewFromInt(30).Equal(r.TotalOfficeExpense))
		assert.True(t, decimal.NewFromInt(-60).Equal(r.PeriodNet), r.PeriodNet.String())

		assert.Equal(t, 1, result.Summary.Users)
		assert.True(t, decimal.NewFromInt(1070).Equal(result.Summary.Balance))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("status, form type and expense type narrow the expenses", func(t *testing.T) {
		service, dbMock := newReportService(t)

		dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = ANY").WithArgs(pq.Array([]string{testUserID})).
			WillReturnRows(accountRow(testUserID, "Asha", "9000000001", models.RoleEmployee))
		dbMock.ExpectQuery("FROM ledger_groups g JOIN transaction_lines l").WillReturnRows(ledgerRows())
		dbMock.ExpectQuery(findExpenses).WithArgs("office", "0000-01-01", "9999-12-31", pq.Array([]string{testUserID})).
			WillReturnRows(officeDocRows("approved"))

		result, err := service.AdminRollup(ctx, adminActor, RollupQuery{
			UserIDs:      []string{testUserID},
			ExpenseTypes: []string{"Office"},
			FormTypes:    []string{"tea"},
			Statuses:     []string{"Approved,rejected"},
		})
		require.NoError(t, err)
		r := result.Result[0]
		require.Len(t, r.OfficeExpense, 1)
		assert.True(t, decimal.NewFromInt(42).Equal(r.TotalOfficeExpense))
		assert.Empty(t, r.TravelExpense)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("status filter drops documents without qualifying items", func(t *testing.T) {
		service, dbMock := newReportService(t)
		expectBase(dbMock)
		dbMock.ExpectQuery(findExpenses).WithArgs("office", "0000-01-01", "9999-12-31").
			WillReturnRows(officeDocRows("pending"))

		result, err := service.AdminRollup(ctx, adminActor, RollupQuery{
			ExpenseTypes: []string{"office"},
			Statuses:     []string{"approved"},
		})
		require.NoError(t, err)
		assert.Empty(t, result.Result[0].OfficeExpense)
		assert.True(t, decimal.Zero.Equal(result.Result[0].TotalOfficeExpense))
	})

	t.Run("invalid status", func(t *testing.T) {
		service, dbMock := newReportService(t)

		_, err := service.AdminRollup(ctx, adminActor, RollupQuery{Statuses: []string{"archived"}})
		assert.Equal(t, KindValidation, KindOf(err))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("malformed user in the selection", func(t *testing.T) {
		service, dbMock := newReportService(t)

		_, err := service.AdminRollup(ctx, adminActor, RollupQuery{UserIDs: []string{testUserID + ",abc"}})
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, KindValidation, e.Kind)
		assert.Equal(t, "Invalid user id: abc", e.Message)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("employees cannot view the dashboard", func(t *testing.T) {
		service, _ := newReportService(t)

		_, err := service.AdminRollup(ctx, employeeActor, RollupQuery{})
		assert.Equal(t, KindUnauthorized, KindOf(err))
	})
}

func TestReportService_Balance(t *testing.T) {
	service, dbMock := newReportService(t)

	dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").WithArgs(testUserID).
		WillReturnRows(accountRow(testUserID, "Asha", "9000000001", models.RoleEmployee))
	dbMock.ExpectQuery("FROM ledger_groups g JOIN transaction_lines l").WillReturnRows(ledgerRows())

	result, err := service.Balance(context.Background(), employeeActor, testUserID)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1000).Equal(result.ByCategory[ledger.BucketOffice].Net))
	assert.True(t, decimal.NewFromInt(100).Equal(result.ByCategory[ledger.BucketTravel].Net))
	assert.True(t, decimal.NewFromInt(-30).Equal(result.ByCategory[ledger.BucketOther].Net))
	assert.True(t, decimal.NewFromInt(1070).Equal(result.TotalNet))
}
