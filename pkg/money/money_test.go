package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Amount
	}{
		{raw: "5990", want: 599000},
		{raw: "12.5", want: 1250},
		{raw: " 0.01 ", want: 1},
		{raw: "0", want: 0},
	}
	for _, tt := range tests {
		got, err := Parse(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.005", "-3"} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestRepeatedAdditionDoesNotDrift(t *testing.T) {
	tenCents, err := Parse("0.10")
	require.NoError(t, err)

	var total Amount
	for i := 0; i < 1000; i++ {
		total = total.Add(tenCents)
	}
	assert.Equal(t, FromMajor(100), total)
	assert.Equal(t, "100.00", total.String())
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Price Amount `json:"price"`
	}

	var fromNumber payload
	require.NoError(t, json.Unmarshal([]byte(`{"price": 4990.5}`), &fromNumber))
	assert.Equal(t, Amount(499050), fromNumber.Price)

	var fromString payload
	require.NoError(t, json.Unmarshal([]byte(`{"price": "1200.00"}`), &fromString))
	assert.Equal(t, Amount(120000), fromString.Price)

	out, err := json.Marshal(fromNumber)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": 4990.50}`, string(out))

	var back payload
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, fromNumber.Price, back.Price)
}

func TestSumAndMul(t *testing.T) {
	assert.Equal(t, Amount(0), Sum())
	assert.Equal(t, Amount(1500), FromMinor(500).Mul(3))
	assert.Equal(t, Amount(6500), Sum(FromMinor(5000), FromMinor(500).Mul(3)))
}
