package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/ledger"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/storage"
	"golang.org/x/sync/errgroup"
)

type HistoryQuery struct {
	UserID   string
	Name     string
	FromDate string
	ToDate   string
	Amount   ledger.AmountRange
	Reason   string
	Limit    int
	Type     ledger.TransactionType
}

type HistoryResult struct {
	Account       models.Account           `json:"account"`
	OfficeExpense []models.ExpenseDocument `json:"officeExpense"`
	TravelExpense []models.ExpenseDocument `json:"travelExpense"`
	ToPayExpense  []models.ExpenseDocument `json:"toPayExpense"`
}

type RollupQuery struct {
	FromDate string
	ToDate   string
	// UserIDs empty selects every account.
	UserIDs      []string
	FormTypes    []string
	Statuses     []string
	ExpenseTypes []string
	Amount       ledger.AmountRange
	Limit        int
}

type RollupResult struct {
	Result  []ledger.UserRollup  `json:"result"`
	Summary ledger.RollupSummary `json:"summary"`
}

type BalanceResult struct {
	UserID string `json:"userId"`
	ledger.Balances
}

type ReportService struct {
	store        *storage.Store
	policy       *authz.Policy
	loc          *time.Location
	defaultLimit int
}

func NewReportService(store *storage.Store, policy *authz.Policy, loc *time.Location, defaultLimit int) *ReportService {
	return &ReportService{store: store, policy: policy, loc: loc, defaultLimit: defaultLimit}
}

func (s *ReportService) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.defaultLimit
}

// TransactionHistory returns the user's filtered ledger together with the
// user's expense documents of each family in the same window.
func (s *ReportService) TransactionHistory(ctx context.Context, actor models.Actor, q HistoryQuery) (*HistoryResult, error) {
	if strings.TrimSpace(q.UserID) == "" {
		return nil, ValidationError("User id is required!")
	}
	if err := authorize(s.policy, actor, authz.OpViewHistory, q.UserID); err != nil {
		return nil, err
	}
	dates, err := ledger.ParseDateRange(q.FromDate, q.ToDate, s.loc)
	if err != nil {
		return nil, ValidationError("Dates must be yyyy-MM-dd!")
	}
	limit := s.limit(q.Limit)

	acc, err := s.loadAccount(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	refs, err := s.store.ListExpenseRefs(ctx, acc.ID)
	if err != nil {
		return nil, StorageError("list expense refs", err)
	}
	acc.Expense = refs

	from, to := dates.Bounds()
	families := make([][]models.ExpenseDocument, len(models.Families))
	g, gctx := errgroup.WithContext(ctx)
	for i, family := range models.Families {
		g.Go(func() error {
			docs, err := s.store.FindExpenseDocuments(gctx, storage.ExpenseQuery{
				Family:  family,
				UserIDs: []string{acc.ID},
				From:    from,
				To:      to,
			})
			if err != nil {
				return err
			}
			families[i] = ledger.FilterExpenses(docs, q.Amount, limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, StorageError("find expenses", err)
	}

	result := &HistoryResult{
		Account: ledger.FilterLedger(*acc, ledger.LedgerCriteria{
			Name:     q.Name,
			Dates:    dates,
			Amount:   q.Amount,
			Reason:   q.Reason,
			Limit:    limit,
			Type:     q.Type,
			Location: s.loc,
		}),
		OfficeExpense: families[0],
		TravelExpense: families[1],
		ToPayExpense:  families[2],
	}
	log.Printf("[REPORT] History for %s: credit groups=%d debit groups=%d",
		acc.ID, len(result.Account.Credit), len(result.Account.Debit))
	return result, nil
}

// AdminRollup computes one dashboard line per selected user plus the
// organization-wide summary.
func (s *ReportService) AdminRollup(ctx context.Context, actor models.Actor, q RollupQuery) (*RollupResult, error) {
	if err := authorize(s.policy, actor, authz.OpAdminRollup, ""); err != nil {
		return nil, err
	}
	dates, err := ledger.ParseDateRange(q.FromDate, q.ToDate, s.loc)
	if err != nil {
		return nil, ValidationError("Dates must be yyyy-MM-dd!")
	}
	families, err := parseFamilies(q.ExpenseTypes)
	if err != nil {
		return nil, err
	}
	categories, err := parseCategories(q.FormTypes)
	if err != nil {
		return nil, err
	}
	statuses, err := parseStatuses(q.Statuses)
	if err != nil {
		return nil, err
	}
	limit := s.limit(q.Limit)
	userIDs, err := parseUserIDs(q.UserIDs)
	if err != nil {
		return nil, err
	}

	accounts, err := s.store.ListAccounts(ctx, storage.AccountFilter{IDs: userIDs})
	if err != nil {
		return nil, StorageError("list accounts", err)
	}
	if err := s.store.LoadLedgers(ctx, accounts); err != nil {
		return nil, StorageError("load ledgers", err)
	}

	from, to := dates.Bounds()
	byFamily := make([]map[string][]models.ExpenseDocument, len(families))
	g, gctx := errgroup.WithContext(ctx)
	for i, family := range families {
		g.Go(func() error {
			docs, err := s.store.FindExpenseDocuments(gctx, storage.ExpenseQuery{
				Family:  family,
				UserIDs: userIDs,
				From:    from,
				To:      to,
			})
			if err != nil {
				return err
			}
			docs = ledger.FilterByFormType(docs, categories)
			docs = ledger.FilterByStatus(docs, statuses)
			docs = ledger.FilterExpenses(docs, q.Amount, 0)

			perUser := make(map[string][]models.ExpenseDocument)
			for _, d := range docs {
				perUser[d.CreatedBy] = append(perUser[d.CreatedBy], d)
			}
			byFamily[i] = perUser
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, StorageError("find expenses", err)
	}

	rollups := make([]ledger.UserRollup, 0, len(accounts))
	for _, acc := range accounts {
		expenses := make(map[models.Family][]models.ExpenseDocument, len(families))
		for i, family := range families {
			expenses[family] = ledger.FilterExpenses(byFamily[i][acc.ID], ledger.AmountRange{}, limit)
		}
		rollups = append(rollups, ledger.BuildRollup(ledger.RollupInput{
			Account:  acc,
			Dates:    dates,
			Location: s.loc,
			Expenses: expenses,
		}))
	}

	result := &RollupResult{Result: rollups, Summary: ledger.Summarize(rollups)}
	log.Printf("[REPORT] Admin rollup over %d user(s), %d famil(ies), window %s..%s",
		len(rollups), len(families), dates.From, dates.To)
	return result, nil
}

// Balance computes the category balances of one account.
func (s *ReportService) Balance(ctx context.Context, actor models.Actor, userID string) (*BalanceResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ValidationError("User id is required!")
	}
	if err := authorize(s.policy, actor, authz.OpViewBalance, userID); err != nil {
		return nil, err
	}
	acc, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{UserID: acc.ID, Balances: ledger.ComputeBalances(*acc)}, nil
}

func (s *ReportService) loadAccount(ctx context.Context, userID string) (*models.Account, error) {
	if !validID(userID) {
		return nil, NotFoundError("User not found!")
	}
	acc, err := s.store.GetAccountByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, NotFoundError("User not found!")
	}
	if err != nil {
		return nil, StorageError("get account", err)
	}
	accounts := []models.Account{*acc}
	if err := s.store.LoadLedgers(ctx, accounts); err != nil {
		return nil, StorageError("load ledger", err)
	}
	return &accounts[0], nil
}

func parseFamilies(raw []string) ([]models.Family, error) {
	if len(raw) == 0 {
		return models.Families, nil
	}
	seen := make(map[models.Family]bool)
	var out []models.Family
	for _, r := range splitValues(raw) {
		f, ok := models.ParseFamily(r)
		if !ok {
			return nil, ValidationError("Invalid expense type: " + r)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return models.Families, nil
	}
	return out, nil
}

func parseUserIDs(raw []string) ([]string, error) {
	ids := splitValues(raw)
	for _, id := range ids {
		if !validID(id) {
			return nil, ValidationError("Invalid user id: " + id)
		}
	}
	return ids, nil
}

func parseCategories(raw []string) ([]models.Category, error) {
	var out []models.Category
	for _, r := range splitValues(raw) {
		c, ok := models.ParseCategory(r)
		if !ok {
			return nil, ValidationError("Invalid form type: " + r)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseStatuses(raw []string) ([]models.Status, error) {
	var out []models.Status
	for _, r := range splitValues(raw) {
		st, ok := models.ParseStatus(r)
		if !ok {
			return nil, ValidationError("Invalid status: " + r)
		}
		out = append(out, st)
	}
	return out, nil
}

// splitValues flattens repeated and comma separated values, dropping blanks.
func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
