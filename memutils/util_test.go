package memutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, AlignUp(0, 16))
	require.Equal(t, 16, AlignUp(1, 16))
	require.Equal(t, 16, AlignUp(16, 16))
	require.Equal(t, 65552, AlignUp(65537, 16))
	require.Equal(t, 7, AlignUp(7, 1))
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, 0, AlignDown(15, 16))
	require.Equal(t, 16, AlignDown(31, 16))
	require.Equal(t, 32, AlignDown(32, 16))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, CheckPow2(uint(1), "value"))
	require.NoError(t, CheckPow2(uint(4096), "value"))

	err := CheckPow2(uint(24), "bufferAlignment")
	require.ErrorIs(t, err, PowerOfTwoError)
	require.ErrorContains(t, err, "bufferAlignment is 24")
}
