package domain_test

import (
	"testing"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from domain.JournalStatus
		to   domain.JournalStatus
		want bool
	}{
		{name: "draft to posted", from: domain.Draft, to: domain.Posted, want: true},
		{name: "posted to reversed", from: domain.Posted, to: domain.Reversed, want: true},
		{name: "draft to reversed", from: domain.Draft, to: domain.Reversed, want: false},
		{name: "posted to posted", from: domain.Posted, to: domain.Posted, want: false},
		{name: "reversed to posted", from: domain.Reversed, to: domain.Posted, want: false},
		{name: "reversed to reversed", from: domain.Reversed, to: domain.Reversed, want: false},
		{name: "unknown status", from: domain.JournalStatus("VOID"), to: domain.Posted, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJournalEntryLine_HasSingleSide(t *testing.T) {
	tests := []struct {
		name   string
		debit  string
		credit string
		want   bool
	}{
		{name: "debit only", debit: "10.00", credit: "0", want: true},
		{name: "credit only", debit: "0", credit: "0.01", want: true},
		{name: "both positive", debit: "5", credit: "5", want: false},
		{name: "both zero", debit: "0", credit: "0", want: false},
		{name: "negative debit", debit: "-5", credit: "0", want: false},
		{name: "negative credit with positive debit", debit: "5", credit: "-5", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := domain.JournalEntryLine{
				DebitAmount:  decimal.RequireFromString(tt.debit),
				CreditAmount: decimal.RequireFromString(tt.credit),
			}
			assert.Equal(t, tt.want, line.HasSingleSide())
		})
	}
}

func TestJournalEntryLine_Swapped(t *testing.T) {
	line := domain.JournalEntryLine{
		AccountID:    "acc-1",
		DebitAmount:  decimal.NewFromInt(5000),
		CreditAmount: decimal.Zero,
	}

	swapped := line.Swapped()

	assert.Equal(t, "acc-1", swapped.AccountID)
	assert.True(t, swapped.DebitAmount.IsZero())
	assert.True(t, swapped.CreditAmount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, line.DebitAmount.Equal(decimal.NewFromInt(5000)), "original line must be untouched")
}

func TestJournalEntryType_IsValid(t *testing.T) {
	assert.True(t, domain.EntryPayment.IsValid())
	assert.True(t, domain.EntryOpeningBalance.IsValid())
	assert.False(t, domain.JournalEntryType("payment").IsValid())
	assert.False(t, domain.JournalEntryType("").IsValid())
}
