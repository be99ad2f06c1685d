package services

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cashwise/backend/internal/audit"
	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Dispatch(template string, recipients []string, vars map[string]string) {
	m.Called(template, recipients, vars)
}

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

var (
	ist     = time.FixedZone("IST", 5*3600+1800)
	testNow = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	adminActor    = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	managerActor  = models.Actor{UserID: "manager-1", Role: models.RoleManager}
	employeeActor = models.Actor{UserID: testUserID, Role: models.RoleEmployee}
)

const (
	testUserID    = "5f0c2b8e-3d41-4a6f-9c1e-7b2a9d0e4c11"
	secondUserID  = "5f0c2b8e-3d41-4a6f-9c1e-7b2a9d0e4c12"
	unknownUserID = "5f0c2b8e-3d41-4a6f-9c1e-7b2a9d0e4c99"
	testDocID     = "a3e1d7c4-8b2f-4e59-b6a0-1c9d2f7e5a01"
	testItemID    = "c8b4f2a6-1e3d-4b7c-a9f0-6d2e8c1b3a01"
	secondItemID  = "c8b4f2a6-1e3d-4b7c-a9f0-6d2e8c1b3a02"
)

var accountCols = []string{"id", "name", "phone", "email", "role", "created_at", "updated_at"}

var ledgerCols = []string{
	"account_id", "id", "side", "counterparty_name", "counterparty_email", "counterparty_phone",
	"id", "money", "reason", "remarks", "image_urls", "created_at", "updated_at",
}

var documentCols = []string{
	"id", "family", "created_by", "date", "created_at", "updated_at",
	"id", "category", "amount", "status", "admin_message", "site_name", "description", "remarks",
	"details", "location_files", "payment_files", "invoice_files", "created_at", "updated_at",
}

func newTestStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.New(db), mock
}

func quietAudit() *audit.Logger {
	return audit.NewLoggerTo(log.New(io.Discard, "", 0))
}

func accountRow(id, name, phone string, role models.Role) *sqlmock.Rows {
	return sqlmock.NewRows(accountCols).AddRow(id, name, phone, "", string(role), testNow, testNow)
}

func testPolicy() *authz.Policy {
	return authz.DefaultPolicy()
}
