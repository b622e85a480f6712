package domain

import (
	"fmt"
	"strings"
)

// DocumentNameRefs carries the display names of the rows a document
// references, resolved by the caller before derivation.
type DocumentNameRefs struct {
	AccountName      string
	OtherAccountName string
	PartyName        string
}

// DeriveDocumentName regenerates the descriptive name of a document from its
// current field values. It is a pure function: it runs on every save, even
// when the edit has no ledger effect, so a Draft-only edit still renames the
// document.
func DeriveDocumentName(doc *FinancialDocument, refs DocumentNameRefs) string {
	spec, ok := doc.Kind.Spec()
	if !ok {
		return ""
	}

	parts := []string{spec.Label, doc.Date.Format("2006-01-02")}

	if refs.PartyName != "" {
		parts = append(parts, refs.PartyName)
	}

	amount := fmt.Sprintf("%s %s", doc.Amount.StringFixedBank(2), doc.Currency)
	switch {
	case spec.TwoLegged && doc.OtherAmount != nil && refs.OtherAccountName != "":
		// Cross-currency pair shows both legs.
		parts = append(parts, fmt.Sprintf("%s (%s) / %s (%s)",
			amount, refs.AccountName, doc.OtherAmount.StringFixedBank(2), refs.OtherAccountName))
	case spec.TwoLegged && refs.OtherAccountName != "":
		parts = append(parts, fmt.Sprintf("%s (%s <- %s)", amount, refs.AccountName, refs.OtherAccountName))
	case refs.AccountName != "":
		parts = append(parts, fmt.Sprintf("%s (%s)", amount, refs.AccountName))
	default:
		parts = append(parts, amount)
	}

	return strings.Join(parts, " - ")
}
