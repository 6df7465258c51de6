package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBpsTruncates(t *testing.T) {
	got, err := applyBps(54, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got, "5.4 truncates to 5")

	got, err = applyBps(0, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestMulDivMultipliesBeforeDividing(t *testing.T) {
	// 33*10/100: dividing first would lose the product entirely
	got, err := mulDiv(33, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestCheckedMulDetectsOverflow(t *testing.T) {
	_, err := checkedMul(math.MaxInt64, 2)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	got, err := checkedMul(math.MaxInt64, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}
