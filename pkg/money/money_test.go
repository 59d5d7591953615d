package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10", "10.0000"},
		{"10.5", "10.5000"},
		{"0.0001", "0.0001"},
		{"30.0000", "30.0000"},
		{"-2.25", "-2.2500"},
	}

	for _, tc := range cases {
		m, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, m.String())
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "10.00001", "1.123456"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestExactEqualityAcrossRepresentations(t *testing.T) {
	assert.True(t, MustParse("10.5").Equal(MustParse("10.5000")))
	assert.False(t, MustParse("30.0000").Equal(MustParse("30.0001")))
}

func TestArithmetic(t *testing.T) {
	price := MustParse("10.0000")

	assert.Equal(t, "30.0000", price.MulInt(3).String())
	assert.Equal(t, "12.5000", price.Add(MustParse("2.5")).String())
	assert.Equal(t, "7.5000", price.Sub(MustParse("2.5")).String())

	unitFee := MustParse("0.7500")
	assert.Equal(t, "2.2500", unitFee.Mul(MustParse("3")).String())
}

func TestSmallestUnitMatters(t *testing.T) {
	computed := MustParse("10.0000").MulInt(3)
	offByOne := MustParse("30.0001")

	assert.False(t, computed.Equal(offByOne))
	assert.Equal(t, -1, computed.Cmp(offByOne))
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().IsZero())
	got := Sum(MustParse("1.25"), MustParse("2.75"), MustParse("0.0001"))
	assert.Equal(t, "4.0001", got.String())
}

func TestZeroValue(t *testing.T) {
	var m Money
	assert.True(t, m.IsZero())
	assert.False(t, m.IsNegative())
	assert.Equal(t, "0.0000", m.String())
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Total Money `json:"total"`
	}

	out, err := json.Marshal(payload{Total: MustParse("19.99")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"19.9900"}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"total":"19.9900"}`), &in))
	assert.True(t, in.Total.Equal(MustParse("19.99")))

	var bare payload
	require.NoError(t, json.Unmarshal([]byte(`{"total":3.5}`), &bare))
	assert.Equal(t, "3.5000", bare.Total.String())
}

func TestJSONRejectsTooManyDigits(t *testing.T) {
	var m Money
	assert.Error(t, json.Unmarshal([]byte(`"1.00001"`), &m))
}

func TestUnmarshalJSONNull(t *testing.T) {
	m := MustParse("7.5")
	require.NoError(t, m.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, "7.5000", m.String())
}

func TestUnmarshalJSONRejectsMalformedTokens(t *testing.T) {
	for _, in := range []string{
		`"10.5`,
		`10.5"`,
		`"10\"5"`,
		`""`,
		`"`,
	} {
		var m Money
		assert.Error(t, m.UnmarshalJSON([]byte(in)), in)
	}
}

func TestScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.5000"))
	assert.Equal(t, "42.5000", m.String())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}
