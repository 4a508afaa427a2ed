package devmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemorySizeResolve(t *testing.T) {
	require.Equal(t, 400, SizeBytes(400).Resolve(100, 65536))
	require.Equal(t, 65436, WholeSize.Resolve(100, 65536))
	require.Equal(t, 65536, WholeSize.Resolve(0, 65536))
	require.Equal(t, 0, WholeSize.Resolve(65536, 65536))

	// An explicit size is never reinterpreted, even when it matches the sentinel's shape
	require.Equal(t, 0, SizeBytes(0).Resolve(100, 65536))
}

func TestMemorySizeString(t *testing.T) {
	require.True(t, WholeSize.IsWhole())
	require.False(t, SizeBytes(16).IsWhole())
	require.Equal(t, "WholeSize", WholeSize.String())
	require.Equal(t, "16 bytes", SizeBytes(16).String())
}
