package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageOf(t *testing.T) {
	assert.False(t, AverageOf(nil).Defined)
	assert.False(t, AverageOf([]float64{}).Defined)

	a := AverageOf([]float64{80, 90, 100})
	require.True(t, a.Defined)
	assert.InDelta(t, 90, a.Value, 1e-12)

	// a mean of exactly zero is still defined
	z := AverageOf([]float64{-5, 5})
	require.True(t, z.Defined)
	assert.Zero(t, z.Value)
}

func TestAverageJSON(t *testing.T) {
	b, err := json.Marshal(Average{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(DefinedAverage(0))
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))

	var a Average
	require.NoError(t, json.Unmarshal([]byte("null"), &a))
	assert.False(t, a.Defined)
	require.NoError(t, json.Unmarshal([]byte("42.5"), &a))
	assert.Equal(t, DefinedAverage(42.5), a)
}
