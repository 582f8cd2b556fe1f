package validator

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

type ledgerRequest struct {
	AwardValueCode string          `json:"award_value_code" validate:"required,award_code"`
	Amount         decimal.Decimal `json:"amount" validate:"amount"`
}

func safeDetails(err error) string {
	var payloads []string
	for _, sdp := range errors.GetAllSafeDetails(err) {
		payloads = append(payloads, sdp.SafeDetails...)
	}
	return strings.Join(payloads, "\n")
}

func TestValidateRequest(t *testing.T) {
	NewValidator()

	tests := []struct {
		name    string
		req     ledgerRequest
		field   string
		message string
	}{
		{name: "valid", req: ledgerRequest{AwardValueCode: "CSLF", Amount: decimal.RequireFromString("125.25")}},
		{name: "negative amount", req: ledgerRequest{AwardValueCode: "bcag", Amount: decimal.RequireFromString("-10")}},
		{
			name:    "missing code",
			req:     ledgerRequest{Amount: decimal.RequireFromString("10")},
			field:   "award_value_code",
			message: "award_value_code is required",
		},
		{
			name:    "code too long",
			req:     ledgerRequest{AwardValueCode: "CSLFX", Amount: decimal.RequireFromString("10")},
			field:   "award_value_code",
			message: "award_value_code must be an award code of up to 4 letters or digits",
		},
		{
			name:    "zero amount",
			req:     ledgerRequest{AwardValueCode: "CSLF", Amount: decimal.Zero},
			field:   "amount",
			message: "amount must be a non zero amount in dollars and cents",
		},
		{
			name:    "sub cent amount",
			req:     ledgerRequest{AwardValueCode: "CSLF", Amount: decimal.RequireFromString("10.001")},
			field:   "amount",
			message: "amount must be a non zero amount in dollars and cents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(&tt.req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
			assert.Equal(t, tt.message, ierr.GetHint(err))
			assert.Contains(t, safeDetails(err), `"`+tt.field+`":"`+tt.message+`"`)
		})
	}
}
