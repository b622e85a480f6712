package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/atlastours/backoffice/internal/core/domain"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/core/services"
)

type AccountingServiceTestSuite struct {
	suite.Suite
	mockAccountRepo   *MockAccountRepository
	mockOperationRepo *MockOperationRepository
	service           portssvc.AccountingSvcFacade
	userID            string
	cashEUR           domain.Account
	cashUSD           domain.Account
}

func (suite *AccountingServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockOperationRepo = new(MockOperationRepository)
	suite.service = services.NewAccountingService(suite.mockAccountRepo, suite.mockOperationRepo)

	suite.userID = uuid.NewString()
	suite.cashEUR = domain.Account{
		AccountID: uuid.NewString(),
		Name:      "Cash EUR",
		Currency:  "EUR",
		Balance:   decimal.NewFromInt(100),
		Enabled:   true,
	}
	suite.cashUSD = domain.Account{
		AccountID: uuid.NewString(),
		Name:      "Cash USD",
		Currency:  "USD",
		Balance:   decimal.NewFromInt(200),
		Enabled:   true,
	}
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_InputSingleLeg() {
	ctx := context.Background()
	account := suite.cashEUR

	var savedOp domain.Operation
	suite.mockOperationRepo.On("SaveOperationInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Operation")).
		Run(func(args mock.Arguments) {
			savedOp = args.Get(2).(domain.Operation)
		}).Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", ctx, mock.Anything, mock.AnythingOfType("map[string]decimal.Decimal"), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	op, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:    suite.userID,
		Concept:   domain.ConceptDeposit,
		Detail:    "Deposit test",
		Account:   &account,
		Direction: domain.Input,
		Amount:    decimal.NewFromFloat(50.555),
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(op)
	suite.Require().Len(op.Movements, 1)

	mv := op.Movements[0]
	suite.Equal(account.AccountID, mv.AccountID)
	suite.Equal(domain.Input, mv.Direction)
	// Banker's rounding to two places
	suite.True(mv.Amount.Equal(decimal.NewFromFloat(50.56)), "got %s", mv.Amount)
	suite.True(mv.Balance.Equal(decimal.NewFromFloat(150.56)), "got %s", mv.Balance)
	// The passed account is advanced in place
	suite.True(account.Balance.Equal(decimal.NewFromFloat(150.56)))
	suite.Equal(op.OperationID, savedOp.OperationID)

	suite.mockOperationRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_TransferPair() {
	ctx := context.Background()
	dst := suite.cashEUR
	src := domain.Account{
		AccountID: uuid.NewString(),
		Name:      "Bank EUR",
		Currency:  "EUR",
		Balance:   decimal.NewFromInt(500),
		Enabled:   true,
	}

	suite.mockOperationRepo.On("SaveOperationInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", ctx, mock.Anything, mock.Anything, suite.userID, mock.Anything).Return(nil).Once()

	op, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:       suite.userID,
		Concept:      domain.ConceptTransfer,
		Detail:       "Transfer test",
		Account:      &dst,
		Direction:    domain.Input,
		Amount:       decimal.NewFromInt(80),
		OtherAccount: &src,
	})

	suite.Require().NoError(err)
	suite.Require().Len(op.Movements, 2)
	suite.Equal(domain.Input, op.Movements[0].Direction)
	suite.Equal(domain.Output, op.Movements[1].Direction)
	suite.True(op.Movements[1].Amount.Equal(decimal.NewFromInt(80)))
	suite.True(dst.Balance.Equal(decimal.NewFromInt(180)))
	suite.True(src.Balance.Equal(decimal.NewFromInt(420)))
	suite.True(op.Movements[1].Balance.Equal(src.Balance))
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_ExchangePair() {
	ctx := context.Background()
	eur := suite.cashEUR
	usd := suite.cashUSD
	otherAmount := decimal.NewFromInt(110)

	suite.mockOperationRepo.On("SaveOperationInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", ctx, mock.Anything, mock.Anything, suite.userID, mock.Anything).Return(nil).Once()

	op, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:       suite.userID,
		Concept:      domain.ConceptCurrencyExchange,
		Detail:       "Exchange test",
		Account:      &eur,
		Direction:    domain.Input,
		Amount:       decimal.NewFromInt(100),
		OtherAccount: &usd,
		OtherAmount:  &otherAmount,
	})

	suite.Require().NoError(err)
	suite.Require().Len(op.Movements, 2)
	suite.True(eur.Balance.Equal(decimal.NewFromInt(200)))
	suite.True(usd.Balance.Equal(decimal.NewFromInt(90)))
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_UnknownDirection() {
	ctx := context.Background()
	account := suite.cashEUR

	_, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:    suite.userID,
		Account:   &account,
		Direction: domain.MovementDirection("SIDEWAYS"),
		Amount:    decimal.NewFromInt(10),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnknownDirection)
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "SaveOperationInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_DisabledAccount() {
	ctx := context.Background()
	account := suite.cashEUR
	account.Enabled = false

	_, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:    suite.userID,
		Account:   &account,
		Direction: domain.Input,
		Amount:    decimal.NewFromInt(10),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountDisabled)
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_NonPositiveAmount() {
	ctx := context.Background()
	account := suite.cashEUR

	_, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:    suite.userID,
		Account:   &account,
		Direction: domain.Input,
		Amount:    decimal.Zero,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAmountRequired)
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_InsufficientBalance() {
	ctx := context.Background()
	account := suite.cashEUR // balance 100

	_, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:    suite.userID,
		Account:   &account,
		Direction: domain.Output,
		Amount:    decimal.NewFromInt(150),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInsufficientBalance)
	suite.True(account.Balance.Equal(decimal.NewFromInt(100)), "balance must not move on failure")
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_PairCurrencyMismatch() {
	ctx := context.Background()
	eur := suite.cashEUR
	usd := suite.cashUSD

	// No OtherAmount: both legs share the amount, so currencies must match.
	_, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:       suite.userID,
		Account:      &eur,
		Direction:    domain.Input,
		Amount:       decimal.NewFromInt(10),
		OtherAccount: &usd,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCurrencyMismatch)
}

func (suite *AccountingServiceTestSuite) TestCheckBalance_Match() {
	ctx := context.Background()
	account := suite.cashEUR
	account.Balance = decimal.NewFromInt(70)

	movements := []domain.Movement{
		{MovementID: uuid.NewString(), AccountID: account.AccountID, Direction: domain.Input, Amount: decimal.NewFromInt(100)},
		{MovementID: uuid.NewString(), AccountID: account.AccountID, Direction: domain.Output, Amount: decimal.NewFromInt(30)},
	}
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockOperationRepo.On("FindMovementsByAccountID", ctx, account.AccountID).Return(movements, nil).Once()

	ok, computed, err := suite.service.CheckBalance(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.True(ok)
	suite.True(computed.Equal(decimal.NewFromInt(70)))
}

func (suite *AccountingServiceTestSuite) TestCheckBalance_Drift() {
	ctx := context.Background()
	account := suite.cashEUR
	account.Balance = decimal.NewFromInt(99)

	movements := []domain.Movement{
		{MovementID: uuid.NewString(), AccountID: account.AccountID, Direction: domain.Input, Amount: decimal.NewFromInt(100)},
	}
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockOperationRepo.On("FindMovementsByAccountID", ctx, account.AccountID).Return(movements, nil).Once()

	ok, computed, err := suite.service.CheckBalance(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.False(ok)
	suite.True(computed.Equal(decimal.NewFromInt(100)))
}

func (suite *AccountingServiceTestSuite) TestRecalculateBalance_RepairsDrift() {
	ctx := context.Background()
	account := suite.cashEUR
	account.Balance = decimal.NewFromInt(999) // stored balance drifted

	good := domain.Movement{MovementID: uuid.NewString(), AccountID: account.AccountID,
		Direction: domain.Input, Amount: decimal.NewFromInt(100), Balance: decimal.NewFromInt(100)}
	drifted := domain.Movement{MovementID: uuid.NewString(), AccountID: account.AccountID,
		Direction: domain.Output, Amount: decimal.NewFromInt(30), Balance: decimal.NewFromInt(65)} // should be 70

	suite.mockAccountRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockAccountRepo.On("Rollback", ctx, mock.Anything).Return(nil)
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()
	suite.mockOperationRepo.On("FindMovementsByAccountIDInTx", ctx, mock.Anything, account.AccountID).
		Return([]domain.Movement{good, drifted}, nil).Once()
	suite.mockOperationRepo.On("UpdateMovementBalanceInTx", ctx, mock.Anything, drifted.MovementID,
		mock.MatchedBy(func(b decimal.Decimal) bool { return b.Equal(decimal.NewFromInt(70)) })).Return(nil).Once()
	suite.mockAccountRepo.On("SetAccountBalanceInTx", ctx, mock.Anything, account.AccountID,
		mock.MatchedBy(func(b decimal.Decimal) bool { return b.Equal(decimal.NewFromInt(70)) }),
		suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	balance, err := suite.service.RecalculateBalance(ctx, account.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(70)))
	suite.mockOperationRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	// The correct snapshot was left untouched.
	suite.mockOperationRepo.AssertNumberOfCalls(suite.T(), "UpdateMovementBalanceInTx", 1)
}

func (suite *AccountingServiceTestSuite) TestRecalculateBalance_SameTimestampPair_KeepsPostingOrder() {
	ctx := context.Background()
	account := suite.cashEUR
	account.Balance = decimal.NewFromInt(550)

	// A revert and its repost share one timestamp; the repository orders by
	// the posting sequence, so replay must see them exactly as posted and
	// leave the drift-free snapshots alone.
	ts := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	movements := []domain.Movement{
		{MovementID: uuid.NewString(), Seq: 1, AccountID: account.AccountID,
			Direction: domain.Input, Amount: decimal.NewFromInt(500), Balance: decimal.NewFromInt(500), CreatedAt: ts.Add(-time.Hour)},
		{MovementID: uuid.NewString(), Seq: 2, AccountID: account.AccountID,
			Direction: domain.Output, Amount: decimal.NewFromInt(100), Balance: decimal.NewFromInt(400), CreatedAt: ts},
		{MovementID: uuid.NewString(), Seq: 3, AccountID: account.AccountID,
			Direction: domain.Input, Amount: decimal.NewFromInt(150), Balance: decimal.NewFromInt(550), CreatedAt: ts},
	}

	suite.mockAccountRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockAccountRepo.On("Rollback", ctx, mock.Anything).Return(nil)
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{account.AccountID}).
		Return(map[string]domain.Account{account.AccountID: account}, nil).Once()
	suite.mockOperationRepo.On("FindMovementsByAccountIDInTx", ctx, mock.Anything, account.AccountID).
		Return(movements, nil).Once()
	suite.mockAccountRepo.On("SetAccountBalanceInTx", ctx, mock.Anything, account.AccountID,
		mock.MatchedBy(func(b decimal.Decimal) bool { return b.Equal(decimal.NewFromInt(550)) }),
		suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	balance, err := suite.service.RecalculateBalance(ctx, account.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(550)))
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "UpdateMovementBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountingServiceTestSuite) TestRecalculateBalance_AccountMissing() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockAccountRepo.On("Rollback", ctx, mock.Anything).Return(nil)
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{accountID}).
		Return(map[string]domain.Account{}, nil).Once()

	_, err := suite.service.RecalculateBalance(ctx, accountID, suite.userID)

	suite.Require().Error(err)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *AccountingServiceTestSuite) TestListAccountMovements_DefaultLimit() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockOperationRepo.On("ListMovementsByAccountID", ctx, accountID, 20, (*string)(nil)).
		Return([]domain.Movement{}, nil, nil).Once()

	_, _, err := suite.service.ListAccountMovements(ctx, accountID, 0, nil)

	suite.Require().NoError(err)
	suite.mockOperationRepo.AssertExpectations(suite.T())
}

func (suite *AccountingServiceTestSuite) TestPostSimpleOperation_SaveError() {
	ctx := context.Background()
	account := suite.cashEUR
	repoErr := assert.AnError

	suite.mockOperationRepo.On("SaveOperationInTx", ctx, mock.Anything, mock.Anything).Return(repoErr).Once()

	_, err := suite.service.PostSimpleOperation(ctx, nil, portssvc.PostOperationParams{
		UserID:    suite.userID,
		Account:   &account,
		Direction: domain.Input,
		Amount:    decimal.NewFromInt(10),
	})

	suite.Require().Error(err)
	suite.Contains(err.Error(), repoErr.Error())
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountingService(t *testing.T) {
	suite.Run(t, new(AccountingServiceTestSuite))
}
