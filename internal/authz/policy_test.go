package authz

import (
	"testing"

	"github.com/cashwise/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPolicy(t *testing.T) {
	p := DefaultPolicy()
	admin := models.Actor{UserID: "a1", Role: models.RoleAdmin}
	manager := models.Actor{UserID: "m1", Role: models.RoleManager}
	employee := models.Actor{UserID: "e1", Role: models.RoleEmployee}
	toPay := models.Actor{UserID: "t1", Role: models.RoleToPay}

	t.Run("admin can do everything", func(t *testing.T) {
		for _, op := range allOps() {
			assert.NoError(t, p.AuthorizeFor(admin, op, "someone"), op)
		}
	})

	t.Run("manager cannot update limits", func(t *testing.T) {
		assert.NoError(t, p.Authorize(manager, OpAdminRollup))
		assert.NoError(t, p.Authorize(manager, OpPostTransfer))
		assert.ErrorIs(t, p.Authorize(manager, OpUpdateLimit), ErrForbidden)
	})

	t.Run("members are limited to themselves", func(t *testing.T) {
		assert.NoError(t, p.AuthorizeFor(employee, OpSubmitExpense, "e1"))
		assert.ErrorIs(t, p.AuthorizeFor(employee, OpSubmitExpense, "e2"), ErrNotOwner)
		assert.ErrorIs(t, p.Authorize(employee, OpPostTransfer), ErrForbidden)
		assert.ErrorIs(t, p.Authorize(toPay, OpAdminRollup), ErrForbidden)
		assert.ErrorIs(t, p.Authorize(toPay, OpReviewExpense), ErrForbidden)
		assert.False(t, p.Privileged(toPay))
		assert.True(t, p.Privileged(manager))
	})

	t.Run("unknown role and anonymous", func(t *testing.T) {
		assert.ErrorIs(t, p.Authorize(models.Actor{UserID: "x", Role: "guest"}, OpViewBalance), ErrForbidden)
		assert.ErrorIs(t, p.Authorize(models.Actor{}, OpViewBalance), ErrUnauthenticated)
		assert.False(t, p.Privileged(models.Actor{UserID: "x", Role: "guest"}))
	})
}
