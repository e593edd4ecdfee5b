package vfs

import (
	"fmt"
)

// MarshalBinary encodes the file system as an arena image: the
// directory in blocks 0-1, the allocation table in blocks 2-3 and the
// file payload in the data blocks.
func (fs *Filesystem) MarshalBinary() ([]byte, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	image := fs.volume.Clone()
	if err := image.WriteStruct(fs.Layout.DirectoryStartAddress, fs.directory.encode()); err != nil {
		return nil, fmt.Errorf("failed to encode directory: %w", err)
	}
	if err := image.WriteStruct(fs.Layout.FATStartAddress, fs.fat.Encode()); err != nil {
		return nil, fmt.Errorf("failed to encode allocation table: %w", err)
	}
	return image.Bytes(), nil
}

// UnmarshalBinary replaces the state of the file system with a decoded
// arena image. The state is left untouched if the image is malformed.
func (fs *Filesystem) UnmarshalBinary(data []byte) error {
	image, err := NewVolumeFromBytes(data)
	if err != nil {
		return err
	}

	var rawDirectory [DirectoryEntryCount]onDiskDirectoryEntry
	if err := image.ReadStruct(fs.Layout.DirectoryStartAddress, &rawDirectory); err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}
	var rawFAT [BlockCount]byte
	if err := image.ReadStruct(fs.Layout.FATStartAddress, &rawFAT); err != nil {
		return fmt.Errorf("failed to read allocation table: %w", err)
	}

	var directory Directory
	if err := directory.decode(rawDirectory); err != nil {
		return err
	}
	var fat AllocationTable
	if err := fat.Decode(rawFAT); err != nil {
		return err
	}
	for fd := FirstDescriptor; fd <= LastDescriptor; fd++ {
		de := directory[fd]
		if !de.IsActive() {
			continue
		}
		chain, err := fat.Chain(de.FirstBlock)
		if err != nil {
			return fmt.Errorf("file %s: %w", de.NameString(), err)
		}
		if len(chain) != BlocksForSize(int(de.Size)) {
			return fmt.Errorf("file %s has %d blocks for %d bytes", de.NameString(), len(chain), de.Size)
		}
		if de.Status == StatusOpen {
			if expected := fat.BlockAtOffset(de.FirstBlock, int(de.ByteOffset)); de.CurrentBlock != expected {
				return fmt.Errorf("file %s has its cursor at %d in block %s instead of %s", de.NameString(), de.ByteOffset, de.CurrentBlock, expected)
			}
		}
	}

	// Metadata lives in the tables; the reserved blocks of the live
	// arena stay zero.
	for i := VolumePtr(0); i < fs.Layout.DataStartAddress; i++ {
		image.data[i] = 0
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("unmarshal")
	fs.volume = image
	fs.directory = directory
	fs.fat = fat
	return nil
}
