package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("20.00")
	b := MustMoney("10.50")

	assert.Equal(t, "30.50", a.Add(b).String())
	assert.Equal(t, "9.50", a.Subtract(b).String())
	assert.Equal(t, "40.00", a.Multiply(2).String())
	assert.True(t, a.IsGreaterThan(b))
	assert.False(t, b.IsGreaterThan(a))
}

func TestMoney_RoundsToTwoDecimals(t *testing.T) {
	m, err := NewMoneyFromString("10.005")
	require.NoError(t, err)
	assert.Equal(t, "10.01", m.String())

	// 3 * 3.33 must not accumulate precision noise
	assert.Equal(t, "9.99", MustMoney("3.33").Multiply(3).String())
}

func TestMoney_ZeroValue(t *testing.T) {
	var m Money
	assert.True(t, m.Equals(ZeroMoney))
	assert.False(t, m.IsGreaterThanZero())
	assert.Equal(t, "0.00", m.String())
}

func TestMoney_ParseRejectsGarbage(t *testing.T) {
	_, err := NewMoneyFromString("twenty")
	assert.Error(t, err)
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Price Money `json:"price"`
	}

	raw, err := json.Marshal(wrapper{Price: MustMoney("50.00")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"50.00"}`, string(raw))

	var w wrapper
	require.NoError(t, json.Unmarshal(raw, &w))
	assert.True(t, w.Price.Equals(MustMoney("50.00")))
}
