package services

import (
	"testing"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestDecideAccountRemoval(t *testing.T) {
	tests := []struct {
		name     string
		system   bool
		hasLines bool
		want     domain.AccountRemoval
		wantErr  error
	}{
		{name: "unreferenced account is deleted", want: domain.RemovalDelete},
		{name: "referenced account is deactivated", hasLines: true, want: domain.RemovalDeactivate},
		{name: "system account is protected", system: true, wantErr: apperrors.ErrProtectedAccount},
		{name: "referenced system account is protected", system: true, hasLines: true, wantErr: apperrors.ErrProtectedAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decideAccountRemoval(domain.Account{Code: "1000", IsSystemAccount: tt.system}, tt.hasLines)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
