package infra

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericToDecimal_Zero(t *testing.T) {
	n := DecimalToNumeric(decimal.Zero)
	v, err := NumericToDecimal(n)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestNumericToDecimal_Odds(t *testing.T) {
	n := pgtype.Numeric{Int: big.NewInt(185), Exp: -2, Valid: true}
	v, err := NumericToDecimal(n)
	require.NoError(t, err)
	assert.Equal(t, "1.85", v.String())
}

func TestNumericToDecimal_PositiveExponent(t *testing.T) {
	n := pgtype.Numeric{Int: big.NewInt(1), Exp: 4, Valid: true}
	v, err := NumericToDecimal(n)
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromInt(10000)))
}

func TestNumericToDecimal_NullReturnsError(t *testing.T) {
	_, err := NumericToDecimal(pgtype.Numeric{Valid: false})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestNumericToDecimal_NaNReturnsError(t *testing.T) {
	_, err := NumericToDecimal(pgtype.Numeric{NaN: true, Valid: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NaN")
}

func TestNumericToDecimal_InfinityReturnsError(t *testing.T) {
	_, err := NumericToDecimal(pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true})
	assert.Error(t, err)
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, s := range []string{"18500.00", "2.35", "0.01", "-4.5", "123456789.99"} {
		t.Run(s, func(t *testing.T) {
			d := decimal.RequireFromString(s)
			v, err := NumericToDecimal(DecimalToNumeric(d))
			require.NoError(t, err)
			assert.True(t, d.Equal(v), "got %s", v)
		})
	}
}
