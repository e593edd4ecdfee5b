package vfsapi

import (
	"errors"
	"fmt"

	"github.com/PapiCZ/kiv_tfs/vfs"
)

// FsCheck verifies the directory and the allocation table against each
// other. All problems found are returned joined into one error.
func FsCheck(fs *vfs.Filesystem) error {
	directory, fat := fs.Snapshot()
	return errors.Join(checkTables(directory, &fat)...)
}

func checkTables(directory vfs.Directory, fat *vfs.AllocationTable) []error {
	problems := make([]error, 0)

	if directory[0] != (vfs.DirectoryEntry{}) {
		problems = append(problems, errors.New("directory entry 0 is reserved but in use"))
	}

	// Blocks reachable from a file
	used := vfs.NewBitmap(vfs.BlockCount)
	names := make(map[string]vfs.Descriptor)
	for fd := vfs.FirstDescriptor; fd <= vfs.LastDescriptor; fd++ {
		de := directory[fd]
		if !de.IsActive() {
			if de != (vfs.DirectoryEntry{}) {
				problems = append(problems, fmt.Errorf("unused directory entry %d is not cleared", fd))
			}
			continue
		}

		name := de.NameString()
		if err := vfs.ValidateName(name); err != nil {
			problems = append(problems, fmt.Errorf("directory entry %d: %w", fd, err))
		}
		if other, ok := names[name]; ok {
			problems = append(problems, fmt.Errorf("directory entries %d and %d are both named %s", other, fd, name))
		}
		names[name] = fd

		blocks, err := fat.Chain(de.FirstBlock)
		if err != nil {
			problems = append(problems, fmt.Errorf("file %s: %w", name, err))
		}
		if expected := vfs.BlocksForSize(int(de.Size)); err == nil && len(blocks) != expected {
			problems = append(problems, fmt.Errorf("file %s has %d bytes in %d blocks instead of %d", name, de.Size, len(blocks), expected))
		}
		for _, b := range blocks {
			if bit, _ := used.GetBit(int32(b)); bit == 1 {
				problems = append(problems, fmt.Errorf("block %d of file %s is shared with another file", b, name))
				continue
			}
			_ = used.SetBit(int32(b), 1)
		}

		if de.ByteOffset > de.Size {
			problems = append(problems, fmt.Errorf("file %s has its cursor at %d past its size of %d bytes", name, de.ByteOffset, de.Size))
		}
		if de.Status == vfs.StatusClosed && (de.ByteOffset != 0 || de.CurrentBlock != de.FirstBlock) {
			problems = append(problems, fmt.Errorf("closed file %s has a cursor that was not reset", name))
		}
	}

	// Allocated blocks not owned by any file
	for b := int32(vfs.FirstDataBlock); b <= int32(vfs.LastDataBlock); b++ {
		if fat.Next(vfs.BlockPtr(b)).IsFree() {
			continue
		}
		if bit, _ := used.GetBit(b); bit == 0 {
			problems = append(problems, fmt.Errorf("block %d is allocated but not used by any file", b))
		}
	}

	return problems
}
