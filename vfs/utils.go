package vfs

func BlockPtrToVolumePtr(ptr BlockPtr) VolumePtr {
	return VolumePtr(ptr) * BlockSize
}

// BlocksForSize returns how many blocks a file of the given size
// occupies.
func BlocksForSize(size int) int {
	return (size + BlockSize - 1) / BlockSize
}

func StringNameToBytes(name string) [NameBufferLength]byte {
	var nameBytes [NameBufferLength]byte
	copy(nameBytes[:NameLength], name)
	return nameBytes
}

func CToGoString(data []byte) string {
	n := -1
	for i, b := range data {
		if b == 0 {
			break
		}
		n = i
	}
	return string(data[:n+1])
}
