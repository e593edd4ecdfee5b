package vfs_test

import (
	"testing"

	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/stretchr/testify/require"
)

func TestImageLayout(t *testing.T) {
	fs := vfs.NewFilesystem()
	fd := createWithContent(t, fs, "abc", pattern(200))
	require.Equal(t, vfs.Descriptor(1), fd)

	image, err := fs.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, image, vfs.StorageSize)

	// Directory entry 1 starts at byte 16: status, first block, size,
	// byte offset, current block and the name buffer.
	entry := image[16:32]
	require.Equal(t, byte(vfs.StatusOpen), entry[0])
	require.Equal(t, byte(4), entry[1])
	require.Equal(t, []byte{200, 0}, entry[2:4])
	require.Equal(t, []byte{200, 0}, entry[4:6])
	require.Equal(t, byte(5), entry[6])
	require.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0, 0, 0, 0}, entry[7:16])

	// Entry 0 is never used.
	require.Equal(t, make([]byte, 16), image[0:16])

	// The allocation table occupies blocks 2 and 3.
	fat := image[256:512]
	require.Equal(t, []byte{0, 0, 0, 0}, fat[0:4])
	require.Equal(t, byte(5), fat[4])
	require.Equal(t, byte(1), fat[5])
	require.Equal(t, byte(0), fat[6])

	require.Equal(t, pattern(200), image[512:712])
}

func TestImageRoundTrip(t *testing.T) {
	fs := vfs.NewFilesystem()
	require.NoError(t, fs.Close(createWithContent(t, fs, "first", pattern(1000))))
	second := createWithContent(t, fs, "second", pattern(129))
	require.NoError(t, fs.Seek(second, 100))

	image, err := fs.MarshalBinary()
	require.NoError(t, err)

	restored := vfs.NewFilesystem()
	require.NoError(t, restored.UnmarshalBinary(image))
	require.Equal(t, fs.Entries(), restored.Entries())
	require.Equal(t, fs.AllocationTable(), restored.AllocationTable())
	require.Equal(t, fs.FreeBlockCount(), restored.FreeBlockCount())

	again, err := restored.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, image, again)

	// The open file keeps its cursor.
	buf := make([]byte, 29)
	n, err := restored.Read(second, buf)
	require.NoError(t, err)
	require.Equal(t, 29, n)
	require.Equal(t, pattern(129)[100:], buf)

	fd, err := restored.Open("first")
	require.NoError(t, err)
	require.Equal(t, pattern(1000), readAll(t, restored, fd))
}

func TestImageMalformed(t *testing.T) {
	fs := vfs.NewFilesystem()
	require.NoError(t, fs.Close(createWithContent(t, fs, "keep", pattern(300))))
	valid, err := fs.MarshalBinary()
	require.NoError(t, err)

	for name, corrupt := range map[string]func(image []byte) []byte{
		"Truncated": func(image []byte) []byte {
			return image[:vfs.StorageSize-1]
		},
		"InvalidStatus": func(image []byte) []byte {
			image[16] = 3
			return image
		},
		"ReservedEntry": func(image []byte) []byte {
			copy(image[0:16], image[16:32])
			return image
		},
		"InvalidName": func(image []byte) []byte {
			image[16+7] = '-'
			return image
		},
		"SizeTooLarge": func(image []byte) []byte {
			image[16+2] = 0xff
			image[16+3] = 0xff
			return image
		},
		"FirstBlockEndOfChain": func(image []byte) []byte {
			image[16+1] = 1
			return image
		},
		"ReservedFATEntry": func(image []byte) []byte {
			image[256+3] = 1
			return image
		},
		"MetadataBlockReference": func(image []byte) []byte {
			image[256+4] = 2
			return image
		},
		"Cycle": func(image []byte) []byte {
			image[256+6] = 4
			return image
		},
		"ChainTooShort": func(image []byte) []byte {
			image[256+5] = 1
			image[256+6] = 0
			return image
		},
		"DuplicateName": func(image []byte) []byte {
			copy(image[32:48], image[16:32])
			return image
		},
	} {
		t.Run(name, func(t *testing.T) {
			image := append([]byte{}, valid...)
			restored := vfs.NewFilesystem()
			require.Error(t, restored.UnmarshalBinary(corrupt(image)))

			// The file system is left untouched.
			require.Equal(t, vfs.DataBlockCount, restored.FreeBlockCount())
			require.Equal(t, vfs.Directory{}, restored.Entries())
		})
	}
}

func TestImageOpenCursor(t *testing.T) {
	fs := vfs.NewFilesystem()
	fd := createWithContent(t, fs, "open", pattern(300))
	require.NoError(t, fs.Seek(fd, 130))
	valid, err := fs.MarshalBinary()
	require.NoError(t, err)

	// Byte 6 of the entry holds the block under the cursor.
	require.Equal(t, byte(5), valid[16+6])

	restored := vfs.NewFilesystem()
	require.NoError(t, restored.UnmarshalBinary(valid))
	buf := make([]byte, 10)
	n, err := restored.Read(fd, buf)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, pattern(300)[130:140], buf)

	for name, block := range map[string]byte{
		"PreviousBlock": 4,
		"LaterBlock":    6,
		"EndOfChain":    1,
		"Free":          0,
	} {
		t.Run(name, func(t *testing.T) {
			image := append([]byte{}, valid...)
			image[16+6] = block
			restored := vfs.NewFilesystem()
			require.ErrorContains(t, restored.UnmarshalBinary(image), "has its cursor at 130")
			require.Equal(t, vfs.Directory{}, restored.Entries())
		})
	}
}
