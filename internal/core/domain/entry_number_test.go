package domain_test

import (
	"testing"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatEntryNumber(t *testing.T) {
	assert.Equal(t, "JE-2025-0001", domain.FormatEntryNumber("JE", 2025, 1))
	assert.Equal(t, "JE-2025-0420", domain.FormatEntryNumber("JE", 2025, 420))
	assert.Equal(t, "JE-2025-12345", domain.FormatEntryNumber("JE", 2025, 12345))
}

func TestParseEntrySequence(t *testing.T) {
	tests := []struct {
		number string
		want   int64
		ok     bool
	}{
		{"JE-2025-0001", 1, true},
		{"JE-2025-12345", 12345, true},
		{"JE-2024-0009", 0, false},
		{"INV-2025-0009", 0, false},
		{"JE-2025-", 0, false},
		{"JE-2025-00x1", 0, false},
		{"JE-2025-0000", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			got, ok := domain.ParseEntrySequence("JE", 2025, tt.number)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
