package services

import (
	"context"
	"errors"
	"log"

	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/storage"
	"github.com/shopspring/decimal"
)

type LimitService struct {
	store     *storage.Store
	policy    *authz.Policy
	validator *ValidationHelper
}

func NewLimitService(store *storage.Store, policy *authz.Policy) *LimitService {
	return &LimitService{store: store, policy: policy, validator: NewValidationHelper()}
}

func (s *LimitService) Get(ctx context.Context, actor models.Actor, userID string) (*models.ExpenseLimit, error) {
	if err := authorize(s.policy, actor, authz.OpViewLimit, userID); err != nil {
		return nil, err
	}
	if !validID(userID) {
		return nil, NotFoundError("Expense limit not found!")
	}
	limit, err := s.store.GetLimit(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, NotFoundError("Expense limit not found!")
	}
	if err != nil {
		return nil, StorageError("get limit", err)
	}
	return limit, nil
}

func (s *LimitService) Update(ctx context.Context, actor models.Actor, limit models.ExpenseLimit) (*models.ExpenseLimit, error) {
	if err := authorize(s.policy, actor, authz.OpUpdateLimit, limit.UserID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&limit); err != nil {
		return nil, err
	}
	if limit.MaxLimit.IsNegative() {
		return nil, ValidationError("Max limit must not be negative!")
	}
	if err := checkMoneyScale(limit.MaxLimit, "Max limit"); err != nil {
		return nil, err
	}
	for category, ceiling := range limit.Categories {
		if ceiling.LessThan(decimal.Zero) {
			return nil, ValidationError("Limit for " + category + " must not be negative!")
		}
	}
	if !validID(limit.UserID) {
		return nil, NotFoundError("User not found!")
	}

	if _, err := s.store.GetAccountByID(ctx, limit.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError("User not found!")
		}
		return nil, StorageError("get account", err)
	}
	if err := s.store.UpsertLimit(ctx, &limit); err != nil {
		return nil, StorageError("upsert limit", err)
	}

	log.Printf("[EXPENSE] Limit for %s set to %s (%s) by %s", limit.UserID, limit.MaxLimit.StringFixed(2), limit.Status, actor.UserID)
	return &limit, nil
}
