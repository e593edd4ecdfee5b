package vfs

import (
	"errors"
	"math/bits"
)

// Bitmap is a set of block numbers, one bit per block.
type Bitmap []byte

func NewBitmap(length int32) Bitmap {
	return make(Bitmap, NeededMemoryForBitmap(length))
}

func NeededMemoryForBitmap(length int32) int32 {
	return (length + 7) / 8
}

func (b Bitmap) SetBit(position int32, value byte) error {
	if value != 0 && value != 1 {
		return errors.New("value can be only 0 or 1")
	}

	posInSlice := position / 8

	if position < 0 || posInSlice >= int32(len(b)) {
		return OutOfRange{VolumePtr(position), 0, VolumePtr(b.Len() - 1)}
	}

	posInByte := position % 8

	if value == 1 {
		b[posInSlice] |= byte(1) << posInByte
	} else {
		b[posInSlice] &= ^(byte(1) << posInByte)
	}

	return nil
}

func (b Bitmap) GetBit(position int32) (byte, error) {
	posInSlice := position / 8
	posInByte := position % 8

	if position < 0 || posInSlice >= int32(len(b)) {
		return 0, OutOfRange{VolumePtr(position), 0, VolumePtr(b.Len() - 1)}
	}

	return (b[posInSlice] >> posInByte) & 1, nil
}

func (b Bitmap) Len() int32 {
	return int32(len(b)) * 8
}

// Count returns the number of set bits.
func (b Bitmap) Count() int {
	count := 0
	for _, v := range b {
		count += bits.OnesCount8(v)
	}
	return count
}
