package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cashwise/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var limitCols = []string{"user_id", "categories", "max_limit", "status", "updated_at"}

func TestLimitService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("own limit", func(t *testing.T) {
		store, dbMock := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		dbMock.ExpectQuery("FROM expense_limits WHERE user_id = \\$1").WithArgs(testUserID).
			WillReturnRows(sqlmock.NewRows(limitCols).
				AddRow(testUserID, []byte(`{"food":"500"}`), "2000.00", "Active", testNow))

		limit, err := service.Get(ctx, employeeActor, testUserID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(limit.Categories["food"]))
		assert.Equal(t, models.LimitActive, limit.Status)
	})

	t.Run("missing", func(t *testing.T) {
		store, dbMock := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		dbMock.ExpectQuery("FROM expense_limits").WillReturnRows(sqlmock.NewRows(limitCols))

		_, err := service.Get(ctx, adminActor, secondUserID)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("another user's limit", func(t *testing.T) {
		store, _ := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		_, err := service.Get(ctx, employeeActor, secondUserID)
		assert.Equal(t, KindUnauthorized, KindOf(err))
	})

	t.Run("malformed user id", func(t *testing.T) {
		store, dbMock := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		_, err := service.Get(ctx, adminActor, "abc")
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestLimitService_Update(t *testing.T) {
	ctx := context.Background()
	limit := models.ExpenseLimit{
		UserID:     testUserID,
		Categories: map[string]decimal.Decimal{"food": decimal.NewFromInt(500)},
		MaxLimit:   decimal.NewFromInt(2000),
		Status:     models.LimitActive,
	}

	t.Run("admin sets a limit", func(t *testing.T) {
		store, dbMock := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").WithArgs(testUserID).
			WillReturnRows(accountRow(testUserID, "Asha", "9000000001", models.RoleEmployee))
		dbMock.ExpectExec("INSERT INTO expense_limits").
			WithArgs(testUserID, []byte(`{"food":"500"}`), decimal.NewFromInt(2000), "Active", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		saved, err := service.Update(ctx, adminActor, limit)
		require.NoError(t, err)
		assert.False(t, saved.UpdatedAt.IsZero())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("negative ceilings", func(t *testing.T) {
		store, dbMock := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		bad := limit
		bad.Categories = map[string]decimal.Decimal{"food": decimal.NewFromInt(-1)}
		_, err := service.Update(ctx, adminActor, bad)
		assert.Equal(t, KindValidation, KindOf(err))

		bad = limit
		bad.MaxLimit = decimal.NewFromInt(-5)
		_, err = service.Update(ctx, adminActor, bad)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("fractional paisa", func(t *testing.T) {
		store, dbMock := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		bad := limit
		bad.MaxLimit = decimal.RequireFromString("2000.005")
		_, err := service.Update(ctx, adminActor, bad)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("malformed user id", func(t *testing.T) {
		store, dbMock := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		bad := limit
		bad.UserID = "abc"
		_, err := service.Update(ctx, adminActor, bad)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("invalid status", func(t *testing.T) {
		store, _ := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		bad := limit
		bad.Status = "Paused"
		_, err := service.Update(ctx, adminActor, bad)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		store, dbMock := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		dbMock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(accountCols))

		_, err := service.Update(ctx, adminActor, limit)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("managers cannot change limits", func(t *testing.T) {
		store, _ := newTestStore(t)
		service := NewLimitService(store, testPolicy())

		_, err := service.Update(ctx, managerActor, limit)
		assert.Equal(t, KindUnauthorized, KindOf(err))
	})
}
