package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/storage"
)

// CreateAccountRequest represents the account creation payload
// @Description Account creation request structure
type CreateAccountRequest struct {
	Name     string      `json:"name" validate:"required,min=2" example:"Ravi Kumar"`
	Phone    string      `json:"phone" validate:"required,numeric,min=10,max=15" example:"9876543210"`
	Email    string      `json:"email" validate:"omitempty,email" example:"ravi@example.com"`
	Role     models.Role `json:"type" validate:"required,oneof=admin manager employee toPay" example:"employee"`
	Password string      `json:"password" validate:"required,min=6" example:"password123"`
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type AccountService struct {
	store     *storage.Store
	policy    *authz.Policy
	hasher    PasswordHasher
	validator *ValidationHelper
}

func NewAccountService(store *storage.Store, policy *authz.Policy, hasher PasswordHasher) *AccountService {
	return &AccountService{
		store:     store,
		policy:    policy,
		hasher:    hasher,
		validator: NewValidationHelper(),
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, actor models.Actor, req CreateAccountRequest) (*models.Account, error) {
	if err := authorize(s.policy, actor, authz.OpCreateAccount, ""); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, StorageError("hash password", err)
	}

	acc := &models.Account{Name: req.Name, Phone: req.Phone, Email: req.Email, Role: req.Role}
	if err := s.store.CreateAccount(ctx, acc, hash); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ValidationError("Phone number already registered!")
		}
		return nil, StorageError("create account", err)
	}

	log.Printf("[AUTH] Account %s created for %s (%s) by %s", acc.ID, acc.Phone, acc.Role, actor.UserID)
	return acc, nil
}

// ListAccounts is a plain listing filtered by role and a name substring; it
// carries no ledger data.
func (s *AccountService) ListAccounts(ctx context.Context, actor models.Actor, role, name string) ([]models.Account, error) {
	if err := authorize(s.policy, actor, authz.OpListAccounts, ""); err != nil {
		return nil, err
	}

	filter := storage.AccountFilter{Name: strings.TrimSpace(name)}
	if role != "" {
		r := models.Role(role)
		if !r.Valid() {
			return nil, ValidationError("Invalid account type!")
		}
		filter.Role = r
	}

	accounts, err := s.store.ListAccounts(ctx, filter)
	if err != nil {
		return nil, StorageError("list accounts", err)
	}
	return accounts, nil
}
