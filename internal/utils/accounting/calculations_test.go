package accounting

import (
	"testing"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(account, debit, credit string) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		AccountID:    account,
		DebitAmount:  decimal.RequireFromString(debit),
		CreditAmount: decimal.RequireFromString(credit),
	}
}

func TestSignedBalance(t *testing.T) {
	opening := decimal.NewFromInt(1000)
	debit := decimal.NewFromInt(500)
	credit := decimal.NewFromInt(200)

	tests := []struct {
		accountType domain.AccountType
		want        string
	}{
		{domain.Asset, "1300"},
		{domain.Expense, "1300"},
		{domain.Liability, "700"},
		{domain.Equity, "700"},
		{domain.Income, "700"},
	}
	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			got, err := SignedBalance(tt.accountType, opening, debit, credit)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}

	_, err := SignedBalance(domain.AccountType("UNKNOWN"), opening, debit, credit)
	assert.Error(t, err)
}

func TestValidateJournalLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalEntryLine
		wantErr error
	}{
		{
			name:  "balanced two lines",
			lines: []domain.JournalEntryLine{line("a", "5000", "0"), line("b", "0", "5000")},
		},
		{
			name:  "within tolerance",
			lines: []domain.JournalEntryLine{line("a", "100.01", "0"), line("b", "0", "100")},
		},
		{
			name:    "single line",
			lines:   []domain.JournalEntryLine{line("a", "10", "0")},
			wantErr: apperrors.ErrInsufficientLines,
		},
		{
			name:    "no lines",
			wantErr: apperrors.ErrInsufficientLines,
		},
		{
			name:    "unbalanced",
			lines:   []domain.JournalEntryLine{line("a", "100.02", "0"), line("b", "0", "100")},
			wantErr: apperrors.ErrUnbalanced,
		},
		{
			name:    "double sided line",
			lines:   []domain.JournalEntryLine{line("a", "10", "10"), line("b", "0", "0")},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name:    "zero line",
			lines:   []domain.JournalEntryLine{line("a", "10", "0"), line("b", "0", "10"), line("c", "0", "0")},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name:    "raw totals are compared before rounding",
			lines:   []domain.JournalEntryLine{line("a", "100.0149", "0"), line("b", "0", "99.995")},
			wantErr: apperrors.ErrUnbalanced,
		},
		{
			name:    "more than two decimal places",
			lines:   []domain.JournalEntryLine{line("a", "100.005", "0"), line("b", "0", "100")},
			wantErr: apperrors.ErrAmountPrecision,
		},
		{
			name:  "trailing zeros are not extra precision",
			lines: []domain.JournalEntryLine{line("a", "100.100", "0"), line("b", "0", "100.1")},
		},
		{
			name:    "unbalanced is reported before invalid line",
			lines:   []domain.JournalEntryLine{line("a", "10", "10"), line("b", "0", "5")},
			wantErr: apperrors.ErrUnbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJournalLines(tt.lines)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, "10.13", RoundAmount(decimal.RequireFromString("10.125")).StringFixed(2))
	assert.Equal(t, "10.00", RoundAmount(decimal.RequireFromString("9.999")).StringFixed(2))
}
