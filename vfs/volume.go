package vfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

type VolumePtr int64
type BlockPtr uint8

// Volume is the storage arena. It is a fixed size byte space divided
// into BlockCount blocks of BlockSize bytes.
type Volume struct {
	data       []byte
	endianness binary.ByteOrder
}

func NewVolume() *Volume {
	return &Volume{
		data:       make([]byte, StorageSize),
		endianness: binary.LittleEndian,
	}
}

// NewVolumeFromBytes wraps an existing arena image. The image is
// copied, so the caller may reuse its slice.
func NewVolumeFromBytes(image []byte) (*Volume, error) {
	if len(image) != StorageSize {
		return nil, fmt.Errorf("volume image has %d bytes instead of %d", len(image), StorageSize)
	}

	v := NewVolume()
	copy(v.data, image)
	return v, nil
}

func IsBlockInRange(b BlockPtr) bool {
	return b >= FirstDataBlock && b <= LastDataBlock
}

// ReadBlock copies one whole data block into buf.
func (v *Volume) ReadBlock(b BlockPtr, buf []byte) error {
	if !IsBlockInRange(b) {
		return OutOfRange{index: VolumePtr(b), minIndex: VolumePtr(FirstDataBlock), maxIndex: VolumePtr(LastDataBlock)}
	}
	if len(buf) < BlockSize {
		return ShortBuffer{length: len(buf)}
	}

	start := BlockPtrToVolumePtr(b)
	copy(buf[:BlockSize], v.data[start:start+BlockSize])
	return nil
}

// WriteBlock copies one whole block from buf into the arena.
func (v *Volume) WriteBlock(b BlockPtr, buf []byte) error {
	if !IsBlockInRange(b) {
		return OutOfRange{index: VolumePtr(b), minIndex: VolumePtr(FirstDataBlock), maxIndex: VolumePtr(LastDataBlock)}
	}
	if len(buf) < BlockSize {
		return ShortBuffer{length: len(buf)}
	}

	start := BlockPtrToVolumePtr(b)
	copy(v.data[start:start+BlockSize], buf[:BlockSize])
	return nil
}

// WriteStruct encodes data at the given address. It is used for the
// metadata regions only; file payload always goes through WriteBlock.
func (v *Volume) WriteStruct(volumePtr VolumePtr, data interface{}) error {
	buf := new(bytes.Buffer)
	err := binary.Write(buf, v.endianness, data)
	if err != nil {
		return err
	}

	if volumePtr < 0 || int(volumePtr)+buf.Len() > len(v.data) {
		return OutOfRange{index: volumePtr + VolumePtr(buf.Len()), minIndex: 0, maxIndex: VolumePtr(len(v.data))}
	}
	copy(v.data[volumePtr:], buf.Bytes())

	return nil
}

func (v *Volume) ReadStruct(volumePtr VolumePtr, data interface{}) error {
	size := binary.Size(data)
	if size < 0 {
		return fmt.Errorf("cannot decode value of type %T", data)
	}
	if volumePtr < 0 || int(volumePtr)+size > len(v.data) {
		return OutOfRange{index: volumePtr + VolumePtr(size), minIndex: 0, maxIndex: VolumePtr(len(v.data))}
	}

	reader := bytes.NewReader(v.data[volumePtr : int(volumePtr)+size])
	return binary.Read(reader, v.endianness, data)
}

func (v *Volume) Size() VolumePtr {
	return VolumePtr(len(v.data))
}

// Clear zeroes the whole arena.
func (v *Volume) Clear() {
	for i := range v.data {
		v.data[i] = 0
	}
}

func (v *Volume) Clone() *Volume {
	c := NewVolume()
	copy(c.data, v.data)
	return c
}

func (v *Volume) Bytes() []byte {
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out
}
