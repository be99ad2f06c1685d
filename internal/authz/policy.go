// Package authz holds the role to operation policy table consulted at the
// start of every core operation.
package authz

import (
	"errors"

	"github.com/cashwise/backend/internal/models"
)

type Operation string

const (
	OpCreateAccount Operation = "account:create"
	OpListAccounts  Operation = "account:list"
	OpPostTransfer  Operation = "account:transfer"
	OpViewBalance   Operation = "account:balance"
	OpViewHistory   Operation = "account:history"
	OpAdminRollup   Operation = "admin:rollup"
	OpSubmitExpense Operation = "expense:submit"
	OpReviewExpense Operation = "expense:review"
	OpAttachFiles   Operation = "expense:attach"
	OpViewLimit     Operation = "limit:view"
	OpUpdateLimit   Operation = "limit:update"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("operation not permitted for role")
	ErrNotOwner        = errors.New("operation limited to own records")
)

type grant struct {
	ops      map[Operation]bool
	selfOnly bool
}

// Policy maps roles to the operations they may perform. Roles marked self
// only may act on their own user id and nobody else's.
type Policy struct {
	grants map[models.Role]grant
}

func allOps() []Operation {
	return []Operation{
		OpCreateAccount, OpListAccounts, OpPostTransfer, OpViewBalance, OpViewHistory,
		OpAdminRollup, OpSubmitExpense, OpReviewExpense, OpAttachFiles, OpViewLimit, OpUpdateLimit,
	}
}

func opSet(ops ...Operation) map[Operation]bool {
	m := make(map[Operation]bool, len(ops))
	for _, op := range ops {
		m[op] = true
	}
	return m
}

func DefaultPolicy() *Policy {
	manager := opSet(allOps()...)
	delete(manager, OpUpdateLimit)

	member := opSet(OpSubmitExpense, OpAttachFiles, OpViewHistory, OpViewBalance, OpViewLimit)

	return &Policy{grants: map[models.Role]grant{
		models.RoleAdmin:    {ops: opSet(allOps()...)},
		models.RoleManager:  {ops: manager},
		models.RoleEmployee: {ops: member, selfOnly: true},
		models.RoleToPay:    {ops: member, selfOnly: true},
	}}
}

func (p *Policy) Can(role models.Role, op Operation) bool {
	return p.grants[role].ops[op]
}

// Privileged reports whether the actor may act on behalf of other users.
func (p *Policy) Privileged(actor models.Actor) bool {
	g, ok := p.grants[actor.Role]
	return ok && !g.selfOnly
}

func (p *Policy) Authorize(actor models.Actor, op Operation) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	if !p.Can(actor.Role, op) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeFor additionally checks that self-only roles target themselves.
func (p *Policy) AuthorizeFor(actor models.Actor, op Operation, subjectID string) error {
	if err := p.Authorize(actor, op); err != nil {
		return err
	}
	if !p.Privileged(actor) && subjectID != actor.UserID {
		return ErrNotOwner
	}
	return nil
}
