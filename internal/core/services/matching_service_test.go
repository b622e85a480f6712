package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/core/services"
)

type MatchingServiceTestSuite struct {
	suite.Suite
	mockDocumentRepo *MockDocumentRepository
	mockMatchRepo    *MockMatchRepository
	mockSummaryRepo  *MockSummaryRepository
	service          portssvc.MatchingSvcFacade
	userID           string
	agencyID         string
	payment          domain.FinancialDocument // agency credit side
	invoice          domain.FinancialDocument // agency debit side
}

func (suite *MatchingServiceTestSuite) SetupTest() {
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockMatchRepo = new(MockMatchRepository)
	suite.mockSummaryRepo = new(MockSummaryRepository)
	suite.service = services.NewMatchingService(suite.mockDocumentRepo, suite.mockMatchRepo, suite.mockSummaryRepo)

	suite.userID = uuid.NewString()
	suite.agencyID = uuid.NewString()
	accountID := uuid.NewString()

	suite.payment = domain.FinancialDocument{
		DocumentID: uuid.NewString(),
		Kind:       domain.KindAgencyPayment,
		Name:       "Agency Payment - 2026-03-01",
		Currency:   "EUR",
		Amount:     decimal.NewFromInt(300),
		Status:     domain.StatusReady,
		AccountID:  &accountID,
		AgencyID:   &suite.agencyID,
	}
	suite.invoice = domain.FinancialDocument{
		DocumentID: uuid.NewString(),
		Kind:       domain.KindAgencyInvoice,
		Name:       "Agency Invoice - 2026-03-02",
		Currency:   "EUR",
		Amount:     decimal.NewFromInt(200),
		Status:     domain.StatusReady,
		AgencyID:   &suite.agencyID,
	}
}

func (suite *MatchingServiceTestSuite) expectTx() {
	suite.mockMatchRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockMatchRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil)
}

func (suite *MatchingServiceTestSuite) expectPairLocked() {
	suite.mockDocumentRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, suite.payment.DocumentID).
		Return(&suite.payment, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, suite.invoice.DocumentID).
		Return(&suite.invoice, nil).Once()
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_Create() {
	ctx := context.Background()
	summaryID := uuid.NewString()
	amount := decimal.NewFromInt(150)

	suite.expectTx()
	suite.expectPairLocked()
	suite.mockMatchRepo.On("FindMatchByPairForUpdate", ctx, mock.Anything, suite.payment.DocumentID, suite.invoice.DocumentID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockMatchRepo.On("SaveMatchInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Match"), true).Return(nil).Once()
	suite.mockMatchRepo.On("SumMatchedForDocumentInTx", ctx, mock.Anything, suite.payment.DocumentID).Return(amount, nil).Once()
	suite.mockMatchRepo.On("SumMatchedForDocumentInTx", ctx, mock.Anything, suite.invoice.DocumentID).Return(amount, nil).Once()
	suite.mockDocumentRepo.On("SetMatchedAmountInTx", ctx, mock.Anything, suite.payment.DocumentID, amount, suite.userID, mock.Anything).Return(nil).Once()
	suite.mockDocumentRepo.On("SetMatchedAmountInTx", ctx, mock.Anything, suite.invoice.DocumentID, amount, suite.userID, mock.Anything).Return(nil).Once()
	suite.mockSummaryRepo.On("GetOrCreateSummaryForUpdate", ctx, mock.Anything, domain.MatchFamilyAgency, suite.agencyID, "EUR", suite.userID, mock.Anything).
		Return(&domain.PartySummary{SummaryID: summaryID}, nil).Once()
	suite.mockSummaryRepo.On("ApplySummaryDeltaInTx", ctx, mock.Anything, summaryID, mock.MatchedBy(func(d portsrepo.SummaryDelta) bool {
		return d.Matched.Equal(amount) && d.Credit.IsZero() && d.Debit.IsZero()
	}), suite.userID, mock.Anything).Return(nil).Once()
	suite.mockMatchRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	match, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           amount,
	})

	suite.Require().NoError(err)
	suite.NotEmpty(match.MatchID)
	suite.Equal(suite.userID, match.CreatedBy)
	suite.mockMatchRepo.AssertExpectations(suite.T())
	suite.mockSummaryRepo.AssertExpectations(suite.T())
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_DocumentNotReady() {
	ctx := context.Background()
	suite.invoice.Status = domain.StatusDraft

	suite.expectTx()
	suite.expectPairLocked()
	suite.mockMatchRepo.On("FindMatchByPairForUpdate", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(50),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDocumentNotReady)
	suite.mockMatchRepo.AssertNotCalled(suite.T(), "SaveMatchInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_WrongFamily() {
	ctx := context.Background()

	suite.expectTx()
	suite.expectPairLocked()
	suite.mockMatchRepo.On("FindMatchByPairForUpdate", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		Family:           domain.MatchFamilyProvider, // documents are agency kinds
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(50),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_PartyMismatch() {
	ctx := context.Background()
	otherAgency := uuid.NewString()
	suite.invoice.AgencyID = &otherAgency

	suite.expectTx()
	suite.expectPairLocked()
	suite.mockMatchRepo.On("FindMatchByPairForUpdate", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(50),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrRelatedPartyMismatch)
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_CurrencyMismatch() {
	ctx := context.Background()
	suite.invoice.Currency = "USD"

	suite.expectTx()
	suite.expectPairLocked()
	suite.mockMatchRepo.On("FindMatchByPairForUpdate", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(50),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCurrencyMismatch)
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_LoanAccountIdentityMismatch() {
	ctx := context.Background()
	entityID := uuid.NewString()
	accountA := uuid.NewString()
	accountB := uuid.NewString()

	deposit := domain.FinancialDocument{
		DocumentID:   uuid.NewString(),
		Kind:         domain.KindLoanEntityDeposit,
		Currency:     "EUR",
		Amount:       decimal.NewFromInt(100),
		Status:       domain.StatusReady,
		AccountID:    &accountA,
		LoanEntityID: &entityID,
	}
	withdraw := domain.FinancialDocument{
		DocumentID:   uuid.NewString(),
		Kind:         domain.KindLoanEntityWithdraw,
		Currency:     "EUR",
		Amount:       decimal.NewFromInt(100),
		Status:       domain.StatusReady,
		AccountID:    &accountB, // different posting account
		LoanEntityID: &entityID,
	}

	suite.expectTx()
	suite.mockDocumentRepo.On("FindDocumentByIDForUpdate", ctx, mock.Anything, deposit.DocumentID).Return(&deposit, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByIDForUpdate", ctx, mock.Anything, withdraw.DocumentID).Return(&withdraw, nil).Once()
	suite.mockMatchRepo.On("FindMatchByPairForUpdate", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		Family:           domain.MatchFamilyLoanEntity,
		CreditDocumentID: deposit.DocumentID,
		DebitDocumentID:  withdraw.DocumentID,
		Amount:           decimal.NewFromInt(50),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountMismatch)
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_Overmatched() {
	ctx := context.Background()
	suite.invoice.MatchedAmount = decimal.NewFromInt(180) // amount 200, only 20 left

	suite.expectTx()
	suite.expectPairLocked()
	suite.mockMatchRepo.On("FindMatchByPairForUpdate", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(50),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrOvermatched)
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_DuplicatePair() {
	ctx := context.Background()
	existing := domain.Match{
		MatchID:          uuid.NewString(),
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(10),
	}

	suite.expectTx()
	suite.expectPairLocked()
	suite.mockMatchRepo.On("FindMatchByPairForUpdate", ctx, mock.Anything, suite.payment.DocumentID, suite.invoice.DocumentID).
		Return(&existing, nil).Once()

	_, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(50),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_EditAmountOnly() {
	ctx := context.Background()
	matchID := uuid.NewString()
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	existing := domain.Match{
		MatchID:          matchID,
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(100),
	}
	existing.CreatedAt = created
	existing.CreatedBy = "someone-else"

	suite.expectTx()
	suite.mockMatchRepo.On("FindMatchByIDForUpdate", ctx, mock.Anything, matchID).Return(&existing, nil).Once()
	suite.expectPairLocked()

	var savedMatch domain.Match
	suite.mockMatchRepo.On("SaveMatchInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Match"), false).
		Run(func(args mock.Arguments) {
			savedMatch = args.Get(2).(domain.Match)
		}).Return(nil).Once()
	suite.mockMatchRepo.On("SumMatchedForDocumentInTx", ctx, mock.Anything, mock.Anything).Return(decimal.NewFromInt(150), nil).Twice()
	suite.mockDocumentRepo.On("SetMatchedAmountInTx", ctx, mock.Anything, mock.Anything, mock.Anything, suite.userID, mock.Anything).Return(nil).Twice()
	suite.mockSummaryRepo.On("GetOrCreateSummaryForUpdate", ctx, mock.Anything, domain.MatchFamilyAgency, suite.agencyID, "EUR", suite.userID, mock.Anything).
		Return(&domain.PartySummary{SummaryID: uuid.NewString()}, nil).Once()
	suite.mockSummaryRepo.On("ApplySummaryDeltaInTx", ctx, mock.Anything, mock.Anything, mock.MatchedBy(func(d portsrepo.SummaryDelta) bool {
		return d.Matched.Equal(decimal.NewFromInt(50)) // 150 - 100
	}), suite.userID, mock.Anything).Return(nil).Once()
	suite.mockMatchRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	match, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		MatchID:          matchID,
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(150),
	})

	suite.Require().NoError(err)
	// Creation audit is preserved on edits.
	suite.Equal(created, match.CreatedAt)
	suite.Equal("someone-else", match.CreatedBy)
	suite.Equal(suite.userID, savedMatch.LastUpdatedBy)
}

func (suite *MatchingServiceTestSuite) TestSaveMatch_EditCannotRepoint() {
	ctx := context.Background()
	matchID := uuid.NewString()
	existing := domain.Match{
		MatchID:          matchID,
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           decimal.NewFromInt(100),
	}

	suite.expectTx()
	suite.mockMatchRepo.On("FindMatchByIDForUpdate", ctx, mock.Anything, matchID).Return(&existing, nil).Once()

	_, err := suite.service.SaveMatch(ctx, suite.userID, domain.Match{
		MatchID:          matchID,
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  uuid.NewString(), // different debit document
		Amount:           decimal.NewFromInt(100),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "FindDocumentByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MatchingServiceTestSuite) TestDeleteMatch() {
	ctx := context.Background()
	matchID := uuid.NewString()
	amount := decimal.NewFromInt(120)
	match := domain.Match{
		MatchID:          matchID,
		Family:           domain.MatchFamilyAgency,
		CreditDocumentID: suite.payment.DocumentID,
		DebitDocumentID:  suite.invoice.DocumentID,
		Amount:           amount,
	}

	suite.expectTx()
	suite.mockMatchRepo.On("FindMatchByIDForUpdate", ctx, mock.Anything, matchID).Return(&match, nil).Once()
	suite.expectPairLocked()
	suite.mockMatchRepo.On("DeleteMatchInTx", ctx, mock.Anything, matchID).Return(nil).Once()
	suite.mockMatchRepo.On("SumMatchedForDocumentInTx", ctx, mock.Anything, mock.Anything).Return(decimal.Zero, nil).Twice()
	suite.mockDocumentRepo.On("SetMatchedAmountInTx", ctx, mock.Anything, mock.Anything, decimal.Zero, suite.userID, mock.Anything).Return(nil).Twice()
	suite.mockSummaryRepo.On("GetOrCreateSummaryForUpdate", ctx, mock.Anything, domain.MatchFamilyAgency, suite.agencyID, "EUR", suite.userID, mock.Anything).
		Return(&domain.PartySummary{SummaryID: uuid.NewString()}, nil).Once()
	suite.mockSummaryRepo.On("ApplySummaryDeltaInTx", ctx, mock.Anything, mock.Anything, mock.MatchedBy(func(d portsrepo.SummaryDelta) bool {
		return d.Matched.Equal(amount.Neg())
	}), suite.userID, mock.Anything).Return(nil).Once()
	suite.mockMatchRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	err := suite.service.DeleteMatch(ctx, suite.userID, matchID)

	suite.Require().NoError(err)
	suite.mockMatchRepo.AssertExpectations(suite.T())
	suite.mockSummaryRepo.AssertExpectations(suite.T())
}

func (suite *MatchingServiceTestSuite) TestValidateMatchedDocumentEdit() {
	old := suite.invoice
	old.MatchedAmount = decimal.NewFromInt(150)

	cases := []struct {
		name    string
		mutate  func(d *domain.FinancialDocument)
		wantErr error
	}{
		{"leave ready", func(d *domain.FinancialDocument) { d.Status = domain.StatusDraft }, services.ErrMatchLockedStatus},
		{"amount below matched", func(d *domain.FinancialDocument) { d.Amount = decimal.NewFromInt(100) }, services.ErrMatchLockedAmount},
		{"party change", func(d *domain.FinancialDocument) { id := uuid.NewString(); d.AgencyID = &id }, services.ErrMatchLockedRelatedEntity},
		{"currency change", func(d *domain.FinancialDocument) { d.Currency = "USD" }, services.ErrMatchLockedCurrency},
		{"amount raise ok", func(d *domain.FinancialDocument) { d.Amount = decimal.NewFromInt(500) }, nil},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			updated := old
			tc.mutate(&updated)
			err := suite.service.ValidateMatchedDocumentEdit(&old, &updated)
			if tc.wantErr == nil {
				suite.NoError(err)
			} else {
				suite.ErrorIs(err, tc.wantErr)
			}
		})
	}
}

func (suite *MatchingServiceTestSuite) TestValidateMatchedDocumentEdit_LoanAccountIdentity() {
	accountID := uuid.NewString()
	loanAccountID := uuid.NewString()

	entityID := uuid.NewString()
	loanEntityDoc := domain.FinancialDocument{
		Kind:          domain.KindLoanEntityDeposit,
		Currency:      "EUR",
		Amount:        decimal.NewFromInt(300),
		MatchedAmount: decimal.NewFromInt(100),
		Status:        domain.StatusReady,
		AccountID:     &accountID,
		LoanEntityID:  &entityID,
	}
	// Loan-entity matches key on the posting account.
	moved := loanEntityDoc
	other := uuid.NewString()
	moved.AccountID = &other
	err := suite.service.ValidateMatchedDocumentEdit(&loanEntityDoc, &moved)
	suite.ErrorIs(err, services.ErrMatchLockedAccount)

	loanAccountDoc := domain.FinancialDocument{
		Kind:          domain.KindLoanAccountWithdraw,
		Currency:      "EUR",
		Amount:        decimal.NewFromInt(300),
		MatchedAmount: decimal.NewFromInt(100),
		Status:        domain.StatusReady,
		AccountID:     &accountID,
		LoanAccountID: &loanAccountID,
	}
	// Loan-account matches key on the loan account itself, so moving it is an
	// account violation, not a party one.
	repointed := loanAccountDoc
	otherLoan := uuid.NewString()
	repointed.LoanAccountID = &otherLoan
	err = suite.service.ValidateMatchedDocumentEdit(&loanAccountDoc, &repointed)
	suite.ErrorIs(err, services.ErrMatchLockedAccount)

	// The posting account is not part of the match identity for this family.
	repaid := loanAccountDoc
	otherPosting := uuid.NewString()
	repaid.AccountID = &otherPosting
	suite.NoError(suite.service.ValidateMatchedDocumentEdit(&loanAccountDoc, &repaid))
}

func (suite *MatchingServiceTestSuite) TestApplyDocumentSummary_FirstReadySave() {
	ctx := context.Background()
	summaryID := uuid.NewString()
	now := time.Now().UTC()

	suite.mockSummaryRepo.On("GetOrCreateSummaryForUpdate", ctx, mock.Anything, domain.MatchFamilyAgency, suite.agencyID, "EUR", suite.userID, now).
		Return(&domain.PartySummary{SummaryID: summaryID}, nil).Once()
	suite.mockSummaryRepo.On("ApplySummaryDeltaInTx", ctx, mock.Anything, summaryID, mock.MatchedBy(func(d portsrepo.SummaryDelta) bool {
		return d.Debit.Equal(decimal.NewFromInt(200)) && d.Credit.IsZero() // invoice is debit side
	}), suite.userID, now).Return(nil).Once()

	err := suite.service.ApplyDocumentSummary(ctx, nil, nil, &suite.invoice, suite.userID, now)

	suite.Require().NoError(err)
	suite.mockSummaryRepo.AssertExpectations(suite.T())
}

func (suite *MatchingServiceTestSuite) TestApplyDocumentSummary_AmountDiff() {
	ctx := context.Background()
	summaryID := uuid.NewString()
	now := time.Now().UTC()

	old := suite.invoice
	updated := suite.invoice
	updated.Amount = decimal.NewFromInt(250)

	suite.mockSummaryRepo.On("GetOrCreateSummaryForUpdate", ctx, mock.Anything, domain.MatchFamilyAgency, suite.agencyID, "EUR", suite.userID, now).
		Return(&domain.PartySummary{SummaryID: summaryID}, nil).Once()
	suite.mockSummaryRepo.On("ApplySummaryDeltaInTx", ctx, mock.Anything, summaryID, mock.MatchedBy(func(d portsrepo.SummaryDelta) bool {
		return d.Debit.Equal(decimal.NewFromInt(50))
	}), suite.userID, now).Return(nil).Once()

	err := suite.service.ApplyDocumentSummary(ctx, nil, &old, &updated, suite.userID, now)

	suite.Require().NoError(err)
}

func (suite *MatchingServiceTestSuite) TestApplyDocumentSummary_NoChange() {
	ctx := context.Background()
	now := time.Now().UTC()

	old := suite.invoice
	updated := suite.invoice

	err := suite.service.ApplyDocumentSummary(ctx, nil, &old, &updated, suite.userID, now)

	suite.Require().NoError(err)
	suite.mockSummaryRepo.AssertNotCalled(suite.T(), "GetOrCreateSummaryForUpdate",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MatchingServiceTestSuite) TestApplyDocumentSummary_Cancelled() {
	ctx := context.Background()
	summaryID := uuid.NewString()
	now := time.Now().UTC()

	old := suite.invoice
	updated := suite.invoice
	updated.Status = domain.StatusCancelled

	suite.mockSummaryRepo.On("GetOrCreateSummaryForUpdate", ctx, mock.Anything, domain.MatchFamilyAgency, suite.agencyID, "EUR", suite.userID, now).
		Return(&domain.PartySummary{SummaryID: summaryID}, nil).Once()
	suite.mockSummaryRepo.On("ApplySummaryDeltaInTx", ctx, mock.Anything, summaryID, mock.MatchedBy(func(d portsrepo.SummaryDelta) bool {
		return d.Debit.Equal(decimal.NewFromInt(-200))
	}), suite.userID, now).Return(nil).Once()

	err := suite.service.ApplyDocumentSummary(ctx, nil, &old, &updated, suite.userID, now)

	suite.Require().NoError(err)
}

func (suite *MatchingServiceTestSuite) TestApplyDocumentSummary_PartyMove() {
	ctx := context.Background()
	otherAgency := uuid.NewString()
	oldSummary := uuid.NewString()
	newSummary := uuid.NewString()
	now := time.Now().UTC()

	old := suite.invoice
	updated := suite.invoice
	updated.AgencyID = &otherAgency

	suite.mockSummaryRepo.On("GetOrCreateSummaryForUpdate", ctx, mock.Anything, domain.MatchFamilyAgency, suite.agencyID, "EUR", suite.userID, now).
		Return(&domain.PartySummary{SummaryID: oldSummary}, nil).Once()
	suite.mockSummaryRepo.On("ApplySummaryDeltaInTx", ctx, mock.Anything, oldSummary, mock.MatchedBy(func(d portsrepo.SummaryDelta) bool {
		return d.Debit.Equal(decimal.NewFromInt(-200))
	}), suite.userID, now).Return(nil).Once()
	suite.mockSummaryRepo.On("GetOrCreateSummaryForUpdate", ctx, mock.Anything, domain.MatchFamilyAgency, otherAgency, "EUR", suite.userID, now).
		Return(&domain.PartySummary{SummaryID: newSummary}, nil).Once()
	suite.mockSummaryRepo.On("ApplySummaryDeltaInTx", ctx, mock.Anything, newSummary, mock.MatchedBy(func(d portsrepo.SummaryDelta) bool {
		return d.Debit.Equal(decimal.NewFromInt(200))
	}), suite.userID, now).Return(nil).Once()

	err := suite.service.ApplyDocumentSummary(ctx, nil, &old, &updated, suite.userID, now)

	suite.Require().NoError(err)
	suite.mockSummaryRepo.AssertExpectations(suite.T())
}

func (suite *MatchingServiceTestSuite) TestGetSummary_LoanAccountCurrencyUnscoped() {
	ctx := context.Background()
	accountID := uuid.NewString()

	// The loan-account family keys its summaries under an empty currency.
	suite.mockSummaryRepo.On("FindSummary", ctx, domain.MatchFamilyLoanAccount, accountID, "").
		Return(&domain.PartySummary{PartyID: accountID, Family: domain.MatchFamilyLoanAccount}, nil).Once()

	summary, err := suite.service.GetSummary(ctx, domain.MatchFamilyLoanAccount, accountID, "EUR")

	suite.Require().NoError(err)
	suite.Equal(accountID, summary.PartyID)
	suite.mockSummaryRepo.AssertExpectations(suite.T())
}

func TestMatchingService(t *testing.T) {
	suite.Run(t, new(MatchingServiceTestSuite))
}
