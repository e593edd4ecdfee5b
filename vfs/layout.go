package vfs

const (
	BlockSize   = 128
	BlockCount  = 256
	StorageSize = BlockSize * BlockCount

	// Blocks below FirstDataBlock hold the directory and the allocation
	// table and are never handed out to files.
	FirstDataBlock BlockPtr = 4
	LastDataBlock  BlockPtr = BlockCount - 1
	DataBlockCount          = BlockCount - int(FirstDataBlock)

	MaxFileSize = DataBlockCount * BlockSize

	DirectoryEntryCount = 16
	DirectoryEntrySize  = 16
	FirstDescriptor     Descriptor = 1
	LastDescriptor      Descriptor = DirectoryEntryCount - 1

	NameLength       = 8
	NameBufferLength = NameLength + 1
)

// Layout describes where each region lives inside the storage arena. It
// plays the role of a superblock, except that the values are fixed.
type Layout struct {
	BlockSize             int16
	BlockCount            int16
	DirectoryStartAddress VolumePtr
	FATStartAddress       VolumePtr
	DataStartAddress      VolumePtr
}

func NewLayout() Layout {
	return Layout{
		BlockSize:             BlockSize,
		BlockCount:            BlockCount,
		DirectoryStartAddress: 0,
		FATStartAddress:       DirectoryEntryCount * DirectoryEntrySize,
		DataStartAddress:      VolumePtr(FirstDataBlock) * BlockSize,
	}
}
