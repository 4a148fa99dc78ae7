package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		typ     TransactionType
		want    string
		wantErr bool
	}{
		{name: "signed debit without type", amount: "-86.43", want: "-86.43"},
		{name: "signed credit without type", amount: "3500", want: "3500"},
		{name: "magnitude with debit", amount: "86.43", typ: TypeDebit, want: "-86.43"},
		{name: "negative with debit stays negative", amount: "-86.43", typ: TypeDebit, want: "-86.43"},
		{name: "magnitude with credit", amount: "3500", typ: TypeCredit, want: "3500"},
		{name: "negative with credit contradicts", amount: "-5", typ: TypeCredit, wantErr: true},
		{name: "unknown type", amount: "5", typ: "refund", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignedAmount(decimal.RequireFromString(tt.amount), tt.typ)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			assert.Equal(t, TypeOf(got), TypeOf(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	for in, want := range map[string]TransactionType{
		"credit": TypeCredit, "INCOME": TypeCredit, "debit": TypeDebit, " expense ": TypeDebit,
	} {
		got, err := ParseTransactionType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTransactionType("transfer")
	assert.Error(t, err)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeDebit, TypeOf(decimal.RequireFromString("-0.01")))
	assert.Equal(t, TypeCredit, TypeOf(decimal.Zero))
	assert.Equal(t, TypeCredit, TypeOf(decimal.RequireFromString("12")))
}
