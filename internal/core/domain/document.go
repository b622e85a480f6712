package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus is the lifecycle state of a financial document.
// Transitions are free-form field edits, not a fixed graph: any state may move
// to any other, except that leaving Ready is rejected while active matches exist.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusReady     DocumentStatus = "READY"
	StatusCancelled DocumentStatus = "CANCELLED"
)

// Valid reports whether the status is a known lifecycle state.
func (s DocumentStatus) Valid() bool {
	return s == StatusDraft || s == StatusReady || s == StatusCancelled
}

// DocumentKind tags a financial document variant.
type DocumentKind string

const (
	KindDeposit            DocumentKind = "DEPOSIT"
	KindWithdraw           DocumentKind = "WITHDRAW"
	KindTransfer           DocumentKind = "TRANSFER"
	KindCurrencyExchange   DocumentKind = "CURRENCY_EXCHANGE"
	KindLoanEntityDeposit  DocumentKind = "LOAN_ENTITY_DEPOSIT"
	KindLoanEntityWithdraw DocumentKind = "LOAN_ENTITY_WITHDRAW"
	KindLoanAccountDeposit DocumentKind = "LOAN_ACCOUNT_DEPOSIT"
	KindLoanAccountWithdraw DocumentKind = "LOAN_ACCOUNT_WITHDRAW"
	KindAgencyInvoice      DocumentKind = "AGENCY_INVOICE"
	KindAgencyPayment      DocumentKind = "AGENCY_PAYMENT"
	KindAgencyDiscount     DocumentKind = "AGENCY_DISCOUNT"
	KindAgencyDevolution   DocumentKind = "AGENCY_DEVOLUTION"
	KindProviderInvoice    DocumentKind = "PROVIDER_INVOICE"
	KindProviderPayment    DocumentKind = "PROVIDER_PAYMENT"
	KindProviderDiscount   DocumentKind = "PROVIDER_DISCOUNT"
	KindProviderDevolution DocumentKind = "PROVIDER_DEVOLUTION"
)

// CurrencyRule constrains the currencies of the two legs of a two-account kind.
type CurrencyRule int

const (
	CurrencyRuleNone CurrencyRule = iota
	CurrencyRuleSameLegs
	CurrencyRuleDifferentLegs
)

// KindSpec describes the fixed behavior of one document kind: whether (and
// how) it posts to the ledger, its currency constraints, and the matching
// family/side it participates in.
type KindSpec struct {
	Label            string
	PostsToLedger    bool
	TwoLegged        bool
	PrimaryDirection MovementDirection
	CurrencyRule     CurrencyRule
	Concept          OperationConcept
	MatchFamily      MatchFamily // empty when the kind does not participate in matching
	MatchSide        MatchSide
}

var kindSpecs = map[DocumentKind]KindSpec{
	KindDeposit:  {Label: "Deposit", PostsToLedger: true, PrimaryDirection: Input, Concept: ConceptDeposit},
	KindWithdraw: {Label: "Withdraw", PostsToLedger: true, PrimaryDirection: Output, Concept: ConceptWithdraw},
	KindTransfer: {Label: "Transfer", PostsToLedger: true, TwoLegged: true, PrimaryDirection: Input,
		CurrencyRule: CurrencyRuleSameLegs, Concept: ConceptTransfer},
	KindCurrencyExchange: {Label: "Currency Exchange", PostsToLedger: true, TwoLegged: true, PrimaryDirection: Input,
		CurrencyRule: CurrencyRuleDifferentLegs, Concept: ConceptCurrencyExchange},
	KindLoanEntityDeposit: {Label: "Loan Entity Deposit", PostsToLedger: true, PrimaryDirection: Input,
		Concept: ConceptLoanEntity, MatchFamily: MatchFamilyLoanEntity, MatchSide: CreditSide},
	KindLoanEntityWithdraw: {Label: "Loan Entity Withdraw", PostsToLedger: true, PrimaryDirection: Output,
		Concept: ConceptLoanEntity, MatchFamily: MatchFamilyLoanEntity, MatchSide: DebitSide},
	KindLoanAccountDeposit: {Label: "Loan Account Deposit", PostsToLedger: true, PrimaryDirection: Input,
		Concept: ConceptLoanAccount, MatchFamily: MatchFamilyLoanAccount, MatchSide: CreditSide},
	KindLoanAccountWithdraw: {Label: "Loan Account Withdraw", PostsToLedger: true, PrimaryDirection: Output,
		Concept: ConceptLoanAccount, MatchFamily: MatchFamilyLoanAccount, MatchSide: DebitSide},
	KindAgencyInvoice: {Label: "Agency Invoice", Concept: ConceptAgency,
		MatchFamily: MatchFamilyAgency, MatchSide: DebitSide},
	KindAgencyPayment: {Label: "Agency Payment", PostsToLedger: true, PrimaryDirection: Input,
		Concept: ConceptAgency, MatchFamily: MatchFamilyAgency, MatchSide: CreditSide},
	KindAgencyDiscount: {Label: "Agency Discount", Concept: ConceptAgency,
		MatchFamily: MatchFamilyAgency, MatchSide: CreditSide},
	KindAgencyDevolution: {Label: "Agency Devolution", PostsToLedger: true, PrimaryDirection: Output,
		Concept: ConceptAgency, MatchFamily: MatchFamilyAgency, MatchSide: DebitSide},
	KindProviderInvoice: {Label: "Provider Invoice", Concept: ConceptProvider,
		MatchFamily: MatchFamilyProvider, MatchSide: CreditSide},
	KindProviderPayment: {Label: "Provider Payment", PostsToLedger: true, PrimaryDirection: Output,
		Concept: ConceptProvider, MatchFamily: MatchFamilyProvider, MatchSide: DebitSide},
	KindProviderDiscount: {Label: "Provider Discount", Concept: ConceptProvider,
		MatchFamily: MatchFamilyProvider, MatchSide: DebitSide},
	KindProviderDevolution: {Label: "Provider Devolution", PostsToLedger: true, PrimaryDirection: Input,
		Concept: ConceptProvider, MatchFamily: MatchFamilyProvider, MatchSide: CreditSide},
}

// Spec returns the behavior descriptor for the kind. ok is false for unknown kinds.
func (k DocumentKind) Spec() (KindSpec, bool) {
	s, ok := kindSpecs[k]
	return s, ok
}

// Valid reports whether the kind is a known document variant.
func (k DocumentKind) Valid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// FinancialDocument is the tagged-variant record for the whole document
// family: a common header plus kind-specific optional references. Which
// optional fields are meaningful is determined by the Kind's spec.
type FinancialDocument struct {
	DocumentID    string          `json:"documentID"` // Primary key (UUID)
	Kind          DocumentKind    `json:"kind"`
	Name          string          `json:"name"`         // Derived on every save
	DocumentType  string          `json:"documentType"` // Derived kind label
	Date          time.Time       `json:"date"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Status        DocumentStatus  `json:"status"`
	MatchedAmount decimal.Decimal `json:"matchedAmount"`
	Detail        string          `json:"detail"`

	// Ledger references (kinds with PostsToLedger).
	AccountID      *string          `json:"accountID,omitempty"`
	OtherAccountID *string          `json:"otherAccountID,omitempty"` // Two-legged kinds
	OtherAmount    *decimal.Decimal `json:"otherAmount,omitempty"`    // Currency exchange

	// Related-party references (matching kinds).
	LoanEntityID  *string `json:"loanEntityID,omitempty"`
	LoanAccountID *string `json:"loanAccountID,omitempty"` // Account acting as loan counterpart
	AgencyID      *string `json:"agencyID,omitempty"`
	ProviderID    *string `json:"providerID,omitempty"`

	// Last repost operation, nil while Draft/Cancelled.
	CurrentOperationID *string `json:"currentOperationID,omitempty"`

	AuditFields
}

// IsReady reports whether the document is in the Ready state.
func (d *FinancialDocument) IsReady() bool {
	return d.Status == StatusReady
}

// PartyID returns the related-party reference for the document's match family.
// ok is false when the kind does not participate in matching or the reference is unset.
func (d *FinancialDocument) PartyID() (string, bool) {
	spec, found := d.Kind.Spec()
	if !found || spec.MatchFamily == "" {
		return "", false
	}
	var ref *string
	switch spec.MatchFamily {
	case MatchFamilyLoanEntity:
		ref = d.LoanEntityID
	case MatchFamilyLoanAccount:
		ref = d.LoanAccountID
	case MatchFamilyAgency:
		ref = d.AgencyID
	case MatchFamilyProvider:
		ref = d.ProviderID
	}
	if ref == nil || *ref == "" {
		return "", false
	}
	return *ref, true
}

// MatchAccountID returns the account identity that loan matches must agree on:
// the posting account for loan-entity kinds, the loan account for loan-account kinds.
func (d *FinancialDocument) MatchAccountID() string {
	spec, found := d.Kind.Spec()
	if !found {
		return ""
	}
	switch spec.MatchFamily {
	case MatchFamilyLoanEntity:
		if d.AccountID != nil {
			return *d.AccountID
		}
	case MatchFamilyLoanAccount:
		if d.LoanAccountID != nil {
			return *d.LoanAccountID
		}
	}
	return ""
}

// Unmatched returns the part of the amount not yet covered by matches.
func (d *FinancialDocument) Unmatched() decimal.Decimal {
	return d.Amount.Sub(d.MatchedAmount)
}
