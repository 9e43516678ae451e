package accounting

import (
	"fmt"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits stored for every amount.
const AmountScale int32 = 2

// BalanceTolerance is the largest debit/credit difference still treated as balanced.
var BalanceTolerance = decimal.New(1, -AmountScale)

// RoundAmount rounds an amount to the stored scale.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(AmountScale)
}

func hasAmountScale(amount decimal.Decimal) bool {
	return amount.Equal(RoundAmount(amount))
}

// SignedBalance applies the sign convention for the given account type:
// asset/expense balances grow with debits, liability/equity/income balances with credits.
func SignedBalance(accountType domain.AccountType, opening, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	side, err := accountType.NormalSide()
	if err != nil {
		return decimal.Zero, err
	}
	switch side {
	case domain.DebitSide:
		return opening.Add(debit).Sub(credit), nil
	case domain.CreditSide:
		return opening.Add(credit).Sub(debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown entry side %q for account type %q", side, accountType)
	}
}

// LineMovement returns the signed effect of a single line on an account of the given type.
func LineMovement(accountType domain.AccountType, line domain.JournalEntryLine) (decimal.Decimal, error) {
	return SignedBalance(accountType, decimal.Zero, line.DebitAmount, line.CreditAmount)
}

// Totals sums the debit and credit columns of a line set.
func Totals(lines []domain.JournalEntryLine) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.DebitAmount)
		credit = credit.Add(line.CreditAmount)
	}
	return debit, credit
}

// IsBalanced reports whether two totals differ by no more than BalanceTolerance.
func IsBalanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThanOrEqual(BalanceTolerance)
}

// ValidateJournalLines checks the structural rules of a line set, in order:
// at least two lines, balanced totals, then per line exactly one positive side
// stated at AmountScale. Totals are compared as given, before any rounding.
// Account existence is checked by the caller since it needs storage.
func ValidateJournalLines(lines []domain.JournalEntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: got %d", apperrors.ErrInsufficientLines, len(lines))
	}

	debit, credit := Totals(lines)
	if !IsBalanced(debit, credit) {
		return fmt.Errorf("%w: debit %s, credit %s", apperrors.ErrUnbalanced, debit.StringFixed(AmountScale), credit.StringFixed(AmountScale))
	}

	for i, line := range lines {
		if !line.HasSingleSide() {
			return fmt.Errorf("%w: line %d (account %s) has debit %s and credit %s",
				apperrors.ErrInvalidLine, i+1, line.AccountID, line.DebitAmount.String(), line.CreditAmount.String())
		}
		if !hasAmountScale(line.DebitAmount) || !hasAmountScale(line.CreditAmount) {
			return fmt.Errorf("%w: line %d (account %s) has debit %s and credit %s",
				apperrors.ErrAmountPrecision, i+1, line.AccountID, line.DebitAmount.String(), line.CreditAmount.String())
		}
	}
	return nil
}
