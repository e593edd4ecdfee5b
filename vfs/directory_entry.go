package vfs

import (
	"fmt"
)

type Descriptor uint8

// InvalidDescriptor is never handed out; it is returned together with
// an error by the operations that produce descriptors.
const InvalidDescriptor Descriptor = 0

type Status uint8

const (
	StatusUnused Status = iota
	StatusClosed
	StatusOpen
)

func (s Status) String() string {
	switch s {
	case StatusUnused:
		return "unused"
	case StatusClosed:
		return "closed"
	case StatusOpen:
		return "open"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

type DirectoryEntryNotFound struct {
	Name string
}

func (d DirectoryEntryNotFound) Error() string {
	return fmt.Sprintf("directory entry with name %s was not found", d.Name)
}

// DirectoryEntry is the per file record. It also serves as the cursor
// of the single open instance of the file, so ByteOffset and
// CurrentBlock only carry meaning while the entry is open.
type DirectoryEntry struct {
	Status       Status
	FirstBlock   BlockRef
	Size         uint16
	ByteOffset   uint16
	CurrentBlock BlockRef
	Name         [NameBufferLength]byte
}

func (de DirectoryEntry) IsActive() bool {
	return de.Status != StatusUnused
}

func (de DirectoryEntry) NameString() string {
	return CToGoString(de.Name[:])
}

// resetCursor moves the cursor back to the start of the file.
func (de *DirectoryEntry) resetCursor() {
	de.ByteOffset = 0
	de.CurrentBlock = de.FirstBlock
}

// onDiskDirectoryEntry is the 16 byte arena representation of a
// directory entry.
type onDiskDirectoryEntry struct {
	Status       uint8
	FirstBlock   uint8
	Size         uint16
	ByteOffset   uint16
	CurrentBlock uint8
	Name         [NameBufferLength]byte
}

func (de DirectoryEntry) encode() onDiskDirectoryEntry {
	return onDiskDirectoryEntry{
		Status:       uint8(de.Status),
		FirstBlock:   de.FirstBlock.Encode(),
		Size:         de.Size,
		ByteOffset:   de.ByteOffset,
		CurrentBlock: de.CurrentBlock.Encode(),
		Name:         de.Name,
	}
}

func (d onDiskDirectoryEntry) decode() (DirectoryEntry, error) {
	if d.Status > uint8(StatusOpen) {
		return DirectoryEntry{}, fmt.Errorf("invalid status %d", d.Status)
	}
	firstBlock, err := DecodeBlockRef(d.FirstBlock)
	if err != nil {
		return DirectoryEntry{}, fmt.Errorf("first block: %w", err)
	}
	if firstBlock.IsEndOfChain() {
		return DirectoryEntry{}, fmt.Errorf("first block cannot be the end of a chain")
	}
	currentBlock, err := DecodeBlockRef(d.CurrentBlock)
	if err != nil {
		return DirectoryEntry{}, fmt.Errorf("current block: %w", err)
	}
	if int(d.Size) > MaxFileSize || d.ByteOffset > d.Size {
		return DirectoryEntry{}, fmt.Errorf("byte offset %d and size %d are inconsistent", d.ByteOffset, d.Size)
	}

	de := DirectoryEntry{
		Status:       Status(d.Status),
		FirstBlock:   firstBlock,
		Size:         d.Size,
		ByteOffset:   d.ByteOffset,
		CurrentBlock: currentBlock,
		Name:         d.Name,
	}
	if de.IsActive() {
		if err := ValidateName(de.NameString()); err != nil {
			return DirectoryEntry{}, err
		}
	} else if de != (DirectoryEntry{}) {
		return DirectoryEntry{}, fmt.Errorf("unused entry has non-zero fields")
	}
	return de, nil
}

// ValidateName checks that a name has at most NameLength characters,
// all of them alphanumeric, underscores or periods.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > NameLength {
		return InvalidName{Name: name}
	}

	for _, c := range []byte(name) {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum && c != '_' && c != '.' {
			return InvalidName{Name: name}
		}
	}

	return nil
}

// Directory is the flat directory table. Index 0 is never used, so that
// a zero descriptor can signal failure.
type Directory [DirectoryEntryCount]DirectoryEntry

func (d *Directory) Reset() {
	for i := range d {
		d[i] = DirectoryEntry{}
	}
}

func IsDescriptorInRange(fd Descriptor) bool {
	return fd >= FirstDescriptor && fd <= LastDescriptor
}

func (d *Directory) FindByName(name string) (Descriptor, error) {
	if len(name) > NameLength {
		return InvalidDescriptor, DirectoryEntryNotFound{name}
	}

	nameBytes := StringNameToBytes(name)
	for fd := FirstDescriptor; fd <= LastDescriptor; fd++ {
		if d[fd].IsActive() && d[fd].Name == nameBytes {
			return fd, nil
		}
	}

	return InvalidDescriptor, DirectoryEntryNotFound{name}
}

func (d *Directory) FindFree() (Descriptor, error) {
	for fd := FirstDescriptor; fd <= LastDescriptor; fd++ {
		if !d[fd].IsActive() {
			return fd, nil
		}
	}

	return InvalidDescriptor, errNoFreeDirectoryEntries
}

func (d *Directory) encode() [DirectoryEntryCount]onDiskDirectoryEntry {
	var out [DirectoryEntryCount]onDiskDirectoryEntry
	for i, de := range d {
		out[i] = de.encode()
	}
	return out
}

func (d *Directory) decode(in [DirectoryEntryCount]onDiskDirectoryEntry) error {
	var decoded Directory
	names := make(map[string]bool)
	for i, raw := range in {
		de, err := raw.decode()
		if err != nil {
			return fmt.Errorf("directory entry %d: %w", i, err)
		}
		if i == 0 && de.IsActive() {
			return fmt.Errorf("directory entry 0 is reserved")
		}
		if de.IsActive() {
			if names[de.NameString()] {
				return fmt.Errorf("directory entry %d: duplicate name %s", i, de.NameString())
			}
			names[de.NameString()] = true
		}
		decoded[i] = de
	}
	*d = decoded
	return nil
}
