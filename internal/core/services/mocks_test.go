package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryWithTx = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountEnabled(ctx context.Context, accountID string, enabled bool, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, enabled, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, accountID, balance, userID, now)
	return args.Error(0)
}

// --- Mock OperationRepository ---

type MockOperationRepository struct {
	mock.Mock
}

var _ portsrepo.OperationRepositoryFacade = (*MockOperationRepository)(nil)

func (m *MockOperationRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	args := m.Called(ctx, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) FindMovementsByAccountID(ctx context.Context, accountID string) ([]domain.Movement, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}

func (m *MockOperationRepository) ListMovementsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Movement), returnedNextToken, args.Error(2)
}

func (m *MockOperationRepository) SaveOperationInTx(ctx context.Context, tx pgx.Tx, op domain.Operation) error {
	args := m.Called(ctx, tx, op)
	return args.Error(0)
}

func (m *MockOperationRepository) FindMovementsByAccountIDInTx(ctx context.Context, tx pgx.Tx, accountID string) ([]domain.Movement, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}

func (m *MockOperationRepository) UpdateMovementBalanceInTx(ctx context.Context, tx pgx.Tx, movementID string, balance decimal.Decimal) error {
	args := m.Called(ctx, tx, movementID, balance)
	return args.Error(0)
}

// --- Mock DocumentRepository ---

type MockDocumentRepository struct {
	mock.Mock
}

var _ portsrepo.DocumentRepositoryWithTx = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockDocumentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDocumentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.FinancialDocument, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context, filter portsrepo.ListDocumentsFilter, limit int, nextToken *string) ([]domain.FinancialDocument, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.FinancialDocument), returnedNextToken, args.Error(2)
}

func (m *MockDocumentRepository) ListStatusHistory(ctx context.Context, documentID string) ([]portsrepo.DocumentStatusChange, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.DocumentStatusChange), args.Error(1)
}

func (m *MockDocumentRepository) ListOperationIDs(ctx context.Context, documentID string) ([]string, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.FinancialDocument, error) {
	args := m.Called(ctx, tx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.FinancialDocument, isNew bool) error {
	args := m.Called(ctx, tx, doc, isNew)
	return args.Error(0)
}

func (m *MockDocumentRepository) AddStatusHistoryInTx(ctx context.Context, tx pgx.Tx, change portsrepo.DocumentStatusChange) error {
	args := m.Called(ctx, tx, change)
	return args.Error(0)
}

func (m *MockDocumentRepository) AddDocumentOperationInTx(ctx context.Context, tx pgx.Tx, documentID, operationID string) error {
	args := m.Called(ctx, tx, documentID, operationID)
	return args.Error(0)
}

func (m *MockDocumentRepository) SetMatchedAmountInTx(ctx context.Context, tx pgx.Tx, documentID string, matched decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, documentID, matched, userID, now)
	return args.Error(0)
}

// --- Mock MatchRepository ---

type MockMatchRepository struct {
	mock.Mock
}

var _ portsrepo.MatchRepositoryWithTx = (*MockMatchRepository)(nil)

func (m *MockMatchRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockMatchRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockMatchRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockMatchRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.Match, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchRepository) ListMatchesByDocument(ctx context.Context, documentID string) ([]domain.Match, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockMatchRepository) FindMatchByIDForUpdate(ctx context.Context, tx pgx.Tx, matchID string) (*domain.Match, error) {
	args := m.Called(ctx, tx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchRepository) FindMatchByPairForUpdate(ctx context.Context, tx pgx.Tx, creditDocumentID, debitDocumentID string) (*domain.Match, error) {
	args := m.Called(ctx, tx, creditDocumentID, debitDocumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchRepository) SaveMatchInTx(ctx context.Context, tx pgx.Tx, match domain.Match, isNew bool) error {
	args := m.Called(ctx, tx, match, isNew)
	return args.Error(0)
}

func (m *MockMatchRepository) DeleteMatchInTx(ctx context.Context, tx pgx.Tx, matchID string) error {
	args := m.Called(ctx, tx, matchID)
	return args.Error(0)
}

func (m *MockMatchRepository) SumMatchedForDocumentInTx(ctx context.Context, tx pgx.Tx, documentID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, documentID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock SummaryRepository ---

type MockSummaryRepository struct {
	mock.Mock
}

var _ portsrepo.SummaryRepositoryFacade = (*MockSummaryRepository)(nil)

func (m *MockSummaryRepository) FindSummary(ctx context.Context, family domain.MatchFamily, partyID, currency string) (*domain.PartySummary, error) {
	args := m.Called(ctx, family, partyID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PartySummary), args.Error(1)
}

func (m *MockSummaryRepository) ListSummariesByParty(ctx context.Context, family domain.MatchFamily, partyID string) ([]domain.PartySummary, error) {
	args := m.Called(ctx, family, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PartySummary), args.Error(1)
}

func (m *MockSummaryRepository) GetOrCreateSummaryForUpdate(ctx context.Context, tx pgx.Tx, family domain.MatchFamily, partyID, currency, userID string, now time.Time) (*domain.PartySummary, error) {
	args := m.Called(ctx, tx, family, partyID, currency, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PartySummary), args.Error(1)
}

func (m *MockSummaryRepository) ApplySummaryDeltaInTx(ctx context.Context, tx pgx.Tx, summaryID string, delta portsrepo.SummaryDelta, userID string, now time.Time) error {
	args := m.Called(ctx, tx, summaryID, delta, userID, now)
	return args.Error(0)
}

// --- Mock PartyRepository ---

type MockPartyRepository struct {
	mock.Mock
}

var _ portsrepo.PartyRepositoryFacade = (*MockPartyRepository)(nil)

func (m *MockPartyRepository) SaveParty(ctx context.Context, party domain.RelatedParty) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) FindPartyByID(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.RelatedParty, error) {
	args := m.Called(ctx, kind, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RelatedParty), args.Error(1)
}

func (m *MockPartyRepository) ListParties(ctx context.Context, kind domain.PartyKind, limit, offset int) ([]domain.RelatedParty, error) {
	args := m.Called(ctx, kind, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RelatedParty), args.Error(1)
}

func (m *MockPartyRepository) UpdateParty(ctx context.Context, party domain.RelatedParty) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) SetPartyEnabled(ctx context.Context, kind domain.PartyKind, partyID string, enabled bool, userID string, now time.Time) error {
	args := m.Called(ctx, kind, partyID, enabled, userID, now)
	return args.Error(0)
}
