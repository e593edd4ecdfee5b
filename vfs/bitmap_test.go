package vfs_test

import (
	"testing"

	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetBit(t *testing.T) {
	bitmap := make(vfs.Bitmap, 2)
	require.NoError(t, bitmap.SetBit(0, 1))

	val, err := bitmap.GetBit(0)
	require.NoError(t, err)
	require.Equal(t, byte(1), val)
}

func TestSetOverwriteAndGetBit(t *testing.T) {
	bitmap := vfs.NewBitmap(16)
	require.NoError(t, bitmap.SetBit(9, 1))
	require.NoError(t, bitmap.SetBit(9, 0))

	val, err := bitmap.GetBit(9)
	require.NoError(t, err)
	require.Equal(t, byte(0), val)

	require.NoError(t, bitmap.SetBit(9, 1))
	val, err = bitmap.GetBit(9)
	require.NoError(t, err)
	require.Equal(t, byte(1), val)

	// Neighbouring bits are not affected.
	val, err = bitmap.GetBit(8)
	require.NoError(t, err)
	require.Equal(t, byte(0), val)
}

func TestBitmapCount(t *testing.T) {
	bitmap := vfs.NewBitmap(vfs.BlockCount)
	require.Equal(t, int32(vfs.BlockCount), bitmap.Len())
	require.Equal(t, 0, bitmap.Count())

	for _, position := range []int32{0, 7, 8, 100, 255} {
		require.NoError(t, bitmap.SetBit(position, 1))
	}
	require.Equal(t, 5, bitmap.Count())
}

func TestBitmapInvalidValue(t *testing.T) {
	bitmap := vfs.NewBitmap(8)
	require.Error(t, bitmap.SetBit(0, 2))
}

func TestBitmapOutOfRange(t *testing.T) {
	bitmap := vfs.NewBitmap(8)

	_, err := bitmap.GetBit(8)
	require.IsType(t, vfs.OutOfRange{}, err)

	_, err = bitmap.GetBit(-1)
	require.IsType(t, vfs.OutOfRange{}, err)

	require.IsType(t, vfs.OutOfRange{}, bitmap.SetBit(8, 1))
}
