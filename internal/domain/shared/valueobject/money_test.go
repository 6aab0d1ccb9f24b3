package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid inputs", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(1000), UGX)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, UGX, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1000), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{"integer amount", "1500", false},
		{"decimal amount", "1500.75", false},
		{"negative amount", "-20.5", false},
		{"garbage", "abc", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount, UGX)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			expected, _ := decimal.NewFromString(tt.amount)
			assert.True(t, m.Amount().Equal(expected))
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyUGX(decimal.NewFromInt(600))
	b := NewMoneyUGX(decimal.NewFromInt(400))

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(200)))
	})

	t.Run("mismatched currencies fail", func(t *testing.T) {
		usd := Zero(USD)
		_, err := a.Add(usd)
		assert.Error(t, err)
		_, err = a.Subtract(usd)
		assert.Error(t, err)
	})

	t.Run("must add panics on mismatch", func(t *testing.T) {
		assert.Panics(t, func() {
			a.MustAdd(Zero(USD))
		})
	})
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyUGX(decimal.NewFromInt(100))
	big := NewMoneyUGX(decimal.NewFromInt(250))

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	gte, err := big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, small.Equals(NewMoneyUGX(decimal.NewFromInt(100))))
	assert.False(t, small.Equals(big))

	_, err = small.LessThan(Zero(KES))
	assert.Error(t, err)
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroUGX().IsZero())
	assert.True(t, NewMoneyUGX(decimal.NewFromInt(5)).IsPositive())
	assert.True(t, NewMoneyUGX(decimal.NewFromInt(5)).Negate().IsNegative())
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyUGX(decimal.RequireFromString("1234.56"))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"UGX"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("750.25"))
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("750.25")))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(42))
	})
}
