package commission

import (
	"fmt"

	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaidAmountExtractor computes, for a ledger line freshly joined to a
// reconciliation, the cumulative untaxed-equivalent amount settled on its
// invoice so far.
//
// The extraction sums the triggering line with every other already
// reconciled settlement line of the invoice's own ledger entry, inverts
// the sign for credit-note instruments, and projects the result onto the
// untaxed basis via the invoice's untaxed/total ratio. No rounding is
// applied here; rounding happens only at commission-amount quantization.
type PaidAmountExtractor struct{}

// NewPaidAmountExtractor creates a new extractor
func NewPaidAmountExtractor() *PaidAmountExtractor {
	return &PaidAmountExtractor{}
}

// UntaxedPaidAmount returns the signed untaxed-equivalent amount settled
// on the invoice up to and including the given reconciliation event.
// A zero invoice total makes the untaxed ratio undefined and fails with
// COMPUTATION_ERROR.
func (e *PaidAmountExtractor) UntaxedPaidAmount(inv *ledger.Invoice, line ledger.LedgerLine) (decimal.Decimal, error) {
	if inv.TotalAmount.IsZero() {
		return decimal.Zero, shared.NewDomainError("COMPUTATION_ERROR",
			fmt.Sprintf("invoice %s has zero total amount, untaxed ratio is undefined", inv.Number))
	}

	paid := line.SignedAmount()
	for _, other := range inv.LinesToPay {
		if other.ID == line.ID {
			continue
		}
		if other.IsReconciled() {
			paid = paid.Add(other.SignedAmount())
		}
	}

	if inv.Type.FlipsSign() {
		paid = paid.Neg()
	}

	ratio := inv.UntaxedAmount.Div(inv.TotalAmount)
	return paid.Mul(ratio), nil
}
