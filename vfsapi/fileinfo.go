package vfsapi

import (
	"github.com/PapiCZ/kiv_tfs/vfs"
)

type FileInfo struct {
	name   string
	fd     vfs.Descriptor
	size   int
	status vfs.Status
	blocks []vfs.BlockPtr
}

func (fi FileInfo) Name() string {
	return fi.name
}

func (fi FileInfo) Descriptor() vfs.Descriptor {
	return fi.fd
}

func (fi FileInfo) Size() int {
	return fi.size
}

func (fi FileInfo) Status() vfs.Status {
	return fi.status
}

func (fi FileInfo) IsOpen() bool {
	return fi.status == vfs.StatusOpen
}

// Blocks returns the storage blocks of the file in file order.
func (fi FileInfo) Blocks() []vfs.BlockPtr {
	return fi.blocks
}

// ReadDir lists all files in descriptor order.
func ReadDir(fs *vfs.Filesystem) ([]FileInfo, error) {
	fileInfos := make([]FileInfo, 0)

	directory, fat := fs.Snapshot()
	for fd := vfs.FirstDescriptor; fd <= vfs.LastDescriptor; fd++ {
		de := directory[fd]
		if !de.IsActive() {
			continue
		}

		blocks, err := fat.Chain(de.FirstBlock)
		if err != nil {
			return fileInfos, err
		}
		fileInfos = append(fileInfos, FileInfo{
			name:   de.NameString(),
			fd:     fd,
			size:   int(de.Size),
			status: de.Status,
			blocks: blocks,
		})
	}

	return fileInfos, nil
}

// BlockUsage describes one allocated storage block.
type BlockUsage struct {
	Block vfs.BlockPtr
	Next  vfs.BlockRef
	Owner string
}

// AllocationMap lists every allocated block together with its
// successor and the name of the file owning it. Blocks not reachable
// from any file have an empty owner.
func AllocationMap(fs *vfs.Filesystem) []BlockUsage {
	directory, fat := fs.Snapshot()

	owners := make(map[vfs.BlockPtr]string)
	for fd := vfs.FirstDescriptor; fd <= vfs.LastDescriptor; fd++ {
		de := directory[fd]
		if !de.IsActive() {
			continue
		}
		blocks, _ := fat.Chain(de.FirstBlock)
		for _, b := range blocks {
			owners[b] = de.NameString()
		}
	}

	usage := make([]BlockUsage, 0)
	for b := int(vfs.FirstDataBlock); b <= int(vfs.LastDataBlock); b++ {
		next := fat.Next(vfs.BlockPtr(b))
		if next.IsFree() {
			continue
		}
		usage = append(usage, BlockUsage{
			Block: vfs.BlockPtr(b),
			Next:  next,
			Owner: owners[vfs.BlockPtr(b)],
		})
	}
	return usage
}
