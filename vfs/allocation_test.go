package vfs_test

import (
	"testing"

	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newAllocationTable() *vfs.AllocationTable {
	var t vfs.AllocationTable
	t.Reset()
	return &t
}

func TestBlockRefEncoding(t *testing.T) {
	require.Equal(t, byte(0), vfs.Free.Encode())
	require.Equal(t, byte(1), vfs.EndOfChain.Encode())
	require.Equal(t, byte(4), vfs.BlockAt(4).Encode())
	require.Equal(t, byte(255), vfs.BlockAt(255).Encode())

	for _, c := range []struct {
		encoded byte
		ref     vfs.BlockRef
	}{
		{0, vfs.Free},
		{1, vfs.EndOfChain},
		{4, vfs.BlockAt(4)},
		{200, vfs.BlockAt(200)},
		{255, vfs.BlockAt(255)},
	} {
		ref, err := vfs.DecodeBlockRef(c.encoded)
		require.NoError(t, err)
		require.Equal(t, c.ref, ref)
	}

	// Blocks 2 and 3 are metadata blocks and can never be referenced.
	for _, v := range []byte{2, 3} {
		_, err := vfs.DecodeBlockRef(v)
		require.Error(t, err)
	}

	b, ok := vfs.BlockAt(17).Block()
	require.True(t, ok)
	require.Equal(t, vfs.BlockPtr(17), b)
	_, ok = vfs.EndOfChain.Block()
	require.False(t, ok)
	require.Equal(t, vfs.Free, vfs.BlockRef{})
}

func TestAllocationTableAllocate(t *testing.T) {
	fat := newAllocationTable()
	require.Equal(t, vfs.DataBlockCount, fat.FreeCount())

	first, err := fat.Allocate()
	require.NoError(t, err)
	require.Equal(t, vfs.FirstDataBlock, first)
	require.Equal(t, vfs.EndOfChain, fat.Next(first))

	second, err := fat.Append(first)
	require.NoError(t, err)
	require.Equal(t, vfs.BlockPtr(5), second)
	require.Equal(t, vfs.BlockAt(second), fat.Next(first))
	require.Equal(t, vfs.EndOfChain, fat.Next(second))
	require.Equal(t, vfs.DataBlockCount-2, fat.FreeCount())

	// Only the end of a chain can be extended.
	_, err = fat.Append(first)
	require.Equal(t, codes.Internal, status.Code(err))

	chain, err := fat.Chain(vfs.BlockAt(first))
	require.NoError(t, err)
	require.Equal(t, []vfs.BlockPtr{4, 5}, chain)
}

func TestAllocationTableExhaustion(t *testing.T) {
	fat := newAllocationTable()
	tail, err := fat.Allocate()
	require.NoError(t, err)
	for fat.FreeCount() > 0 {
		tail, err = fat.Append(tail)
		require.NoError(t, err)
	}
	require.Equal(t, vfs.LastDataBlock, tail)

	_, err = fat.Allocate()
	require.True(t, vfs.IsExhausted(err))
	_, err = fat.Append(tail)
	require.True(t, vfs.IsExhausted(err))
	require.Equal(t, vfs.EndOfChain, fat.Next(tail))

	chain, err := fat.Chain(vfs.BlockAt(vfs.FirstDataBlock))
	require.NoError(t, err)
	require.Len(t, chain, vfs.DataBlockCount)

	require.Equal(t, vfs.DataBlockCount, fat.FreeChain(vfs.BlockAt(vfs.FirstDataBlock)))
	require.Equal(t, vfs.DataBlockCount, fat.FreeCount())
}

func TestAllocationTableFreeChain(t *testing.T) {
	fat := newAllocationTable()
	require.Equal(t, 0, fat.FreeChain(vfs.Free))

	a, err := fat.Allocate()
	require.NoError(t, err)
	b, err := fat.Append(a)
	require.NoError(t, err)
	other, err := fat.Allocate()
	require.NoError(t, err)
	_, err = fat.Append(b)
	require.NoError(t, err)

	require.Equal(t, 3, fat.FreeChain(vfs.BlockAt(a)))
	require.Equal(t, vfs.DataBlockCount-1, fat.FreeCount())
	require.Equal(t, vfs.EndOfChain, fat.Next(other))

	// Freeing stops at an entry that is already free.
	fat[10] = vfs.BlockAt(11)
	require.Equal(t, 1, fat.FreeChain(vfs.BlockAt(10)))
}

func TestAllocationTableBrokenChains(t *testing.T) {
	fat := newAllocationTable()
	fat[4] = vfs.BlockAt(5)
	fat[5] = vfs.BlockAt(4)
	blocks, err := fat.Chain(vfs.BlockAt(4))
	require.Equal(t, codes.Internal, status.Code(err))
	require.Equal(t, []vfs.BlockPtr{4, 5}, blocks)

	fat.Reset()
	fat[4] = vfs.BlockAt(6)
	_, err = fat.Chain(vfs.BlockAt(4))
	require.Equal(t, codes.Internal, status.Code(err))

	chain, err := fat.Chain(vfs.Free)
	require.NoError(t, err)
	require.Empty(t, chain)
}

func TestAllocationTableCodec(t *testing.T) {
	fat := newAllocationTable()
	a, err := fat.Allocate()
	require.NoError(t, err)
	_, err = fat.Append(a)
	require.NoError(t, err)

	encoded := fat.Encode()
	require.Equal(t, byte(5), encoded[4])
	require.Equal(t, byte(1), encoded[5])
	require.Equal(t, byte(0), encoded[6])

	var decoded vfs.AllocationTable
	require.NoError(t, decoded.Decode(encoded))
	require.Equal(t, *fat, decoded)

	encoded[2] = 1
	require.Error(t, decoded.Decode(encoded))
	encoded[2] = 0
	encoded[9] = 3
	require.Error(t, decoded.Decode(encoded))
}

func TestAllocationTableBlockAtOffset(t *testing.T) {
	fat := newAllocationTable()
	require.Equal(t, vfs.Free, fat.BlockAtOffset(vfs.Free, 0))

	a, err := fat.Allocate()
	require.NoError(t, err)
	b, err := fat.Append(a)
	require.NoError(t, err)

	for offset, expected := range map[int]vfs.BlockRef{
		0:                   vfs.BlockAt(a),
		vfs.BlockSize - 1:   vfs.BlockAt(a),
		vfs.BlockSize:       vfs.BlockAt(b),
		2*vfs.BlockSize - 1: vfs.BlockAt(b),
		2 * vfs.BlockSize:   vfs.EndOfChain,
	} {
		require.Equal(t, expected, fat.BlockAtOffset(vfs.BlockAt(a), offset), "offset %d", offset)
	}
}
