package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/cashwise/backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const accountColumns = `id, name, phone, email, role, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var acc models.Account
	if err := row.Scan(&acc.ID, &acc.Name, &acc.Phone, &acc.Email, &acc.Role, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, err
	}
	acc.Credit = []models.LedgerGroup{}
	acc.Debit = []models.LedgerGroup{}
	return &acc, nil
}

// GetAccountByID returns the account without its ledger.
func (q *Queries) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	acc, err := scanAccount(q.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return acc, nil
}

// LockAccountByPhone loads the account owning phone and holds a row lock on
// it until the surrounding transaction ends.
func (q *Queries) LockAccountByPhone(ctx context.Context, phone string) (*models.Account, error) {
	acc, err := scanAccount(q.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE phone = $1
		FOR UPDATE`, phone))
	if err != nil {
		return nil, notFound(err)
	}
	return acc, nil
}

// GetCredentials returns the account registered under phone together with
// its password hash.
func (q *Queries) GetCredentials(ctx context.Context, phone string) (*models.Account, string, error) {
	var acc models.Account
	var hash string
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, role, password_hash
		FROM accounts
		WHERE phone = $1`, phone).Scan(&acc.ID, &acc.Name, &acc.Phone, &acc.Email, &acc.Role, &hash)
	if err != nil {
		return nil, "", notFound(err)
	}
	return &acc, hash, nil
}

// CreateAccount inserts acc, assigning its id and timestamps.
func (q *Queries) CreateAccount(ctx context.Context, acc *models.Account, passwordHash string) error {
	now := q.now()
	acc.ID = uuid.New().String()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, phone, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		acc.ID, acc.Name, acc.Phone, acc.Email, acc.Role, passwordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	if acc.Credit == nil {
		acc.Credit = []models.LedgerGroup{}
	}
	if acc.Debit == nil {
		acc.Debit = []models.LedgerGroup{}
	}
	return nil
}

// AccountFilter narrows ListAccounts. Zero fields match everything.
type AccountFilter struct {
	IDs  []string
	Role models.Role
	Name string
}

func (q *Queries) ListAccounts(ctx context.Context, f AccountFilter) ([]models.Account, error) {
	var conds []string
	var args []any
	if len(f.IDs) > 0 {
		args = append(args, pq.Array(f.IDs))
		conds = append(conds, fmt.Sprintf("id = ANY($%d::uuid[])", len(args)))
	}
	if f.Role != "" {
		args = append(args, f.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY name, id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// EnsureLedgerGroup finds or creates the group for cp on the given side of
// accountID and returns its id. An existing group keeps its original
// counterparty snapshot.
func (q *Queries) EnsureLedgerGroup(ctx context.Context, accountID string, side models.Side, cp models.Counterparty) (string, error) {
	var id string
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO ledger_groups (id, account_id, side, counterparty_name, counterparty_email, counterparty_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id, side, counterparty_phone)
		DO UPDATE SET counterparty_phone = EXCLUDED.counterparty_phone
		RETURNING id`,
		uuid.New().String(), accountID, side, cp.Name, cp.Email, cp.Phone, q.now()).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("ensure %s group: %w", side, err)
	}
	return id, nil
}

// AppendTransactionLine adds line to the group. Lines are never updated.
func (q *Queries) AppendTransactionLine(ctx context.Context, groupID string, line *models.TransactionLine) error {
	now := q.now()
	line.ID = uuid.New().String()
	line.CreatedAt = now
	line.UpdatedAt = now
	if line.ImageURL == nil {
		line.ImageURL = []string{}
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transaction_lines (id, group_id, money, reason, remarks, image_urls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		line.ID, groupID, line.Money, line.Reason, line.Remarks, pq.Array(line.ImageURL), now, now)
	if err != nil {
		return fmt.Errorf("append transaction line: %w", err)
	}
	return nil
}

// LoadLedgers fills Credit and Debit of every account in one query.
func (q *Queries) LoadLedgers(ctx context.Context, accounts []models.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	index := make(map[string]int, len(accounts))
	ids := make([]string, 0, len(accounts))
	for i := range accounts {
		index[accounts[i].ID] = i
		ids = append(ids, accounts[i].ID)
		accounts[i].Credit = []models.LedgerGroup{}
		accounts[i].Debit = []models.LedgerGroup{}
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT g.account_id, g.id, g.side, g.counterparty_name, g.counterparty_email, g.counterparty_phone,
		       l.id, l.money, l.reason, l.remarks, l.image_urls, l.created_at, l.updated_at
		FROM ledger_groups g
		JOIN transaction_lines l ON l.group_id = g.id
		WHERE g.account_id = ANY($1::uuid[])
		ORDER BY g.created_at, g.id, l.created_at, l.id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load ledgers: %w", err)
	}
	defer rows.Close()

	// position of each group inside its account's side slice
	type slot struct {
		account int
		side    models.Side
		pos     int
	}
	groups := make(map[string]slot)

	for rows.Next() {
		var (
			accountID, groupID string
			side               models.Side
			cp                 models.Counterparty
			line               models.TransactionLine
			images             pq.StringArray
		)
		if err := rows.Scan(&accountID, &groupID, &side, &cp.Name, &cp.Email, &cp.Phone,
			&line.ID, &line.Money, &line.Reason, &line.Remarks, &images, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return fmt.Errorf("scan ledger line: %w", err)
		}
		line.ImageURL = []string(images)
		if line.ImageURL == nil {
			line.ImageURL = []string{}
		}

		i, ok := index[accountID]
		if !ok {
			continue
		}
		acc := &accounts[i]
		s, seen := groups[groupID]
		if !seen {
			g := models.LedgerGroup{ID: groupID, Counterparty: cp, TransactionDetails: []models.TransactionLine{}}
			s = slot{account: i, side: side}
			if side == models.SideCredit {
				s.pos = len(acc.Credit)
				acc.Credit = append(acc.Credit, g)
			} else {
				s.pos = len(acc.Debit)
				acc.Debit = append(acc.Debit, g)
			}
			groups[groupID] = s
		}

		if s.side == models.SideCredit {
			acc.Credit[s.pos].TransactionDetails = append(acc.Credit[s.pos].TransactionDetails, line)
		} else {
			acc.Debit[s.pos].TransactionDetails = append(acc.Debit[s.pos].TransactionDetails, line)
		}
	}
	return rows.Err()
}

// LinkExpense records docID in the account's expense back-references.
// Linking twice is a no-op.
func (q *Queries) LinkExpense(ctx context.Context, accountID, docID string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO account_expenses (account_id, document_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, accountID, docID)
	if err != nil {
		return fmt.Errorf("link expense: %w", err)
	}
	return nil
}

func (q *Queries) ListExpenseRefs(ctx context.Context, accountID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT ae.document_id
		FROM account_expenses ae
		JOIN expense_documents d ON d.id = ae.document_id
		WHERE ae.account_id = $1
		ORDER BY d.date, d.created_at`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list expense refs: %w", err)
	}
	defer rows.Close()

	refs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expense ref: %w", err)
		}
		refs = append(refs, id)
	}
	return refs, rows.Err()
}
