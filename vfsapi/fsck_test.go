package vfsapi_test

import (
	"bytes"
	"testing"

	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/PapiCZ/kiv_tfs/vfsapi"
	"github.com/stretchr/testify/require"
)

const (
	fatOffset   = 256
	entryOffset = 16
)

// corruptedFilesystem builds a file system with two files, lets modify
// patch its arena image and loads the result.
func corruptedFilesystem(t *testing.T, modify func(image []byte)) *vfs.Filesystem {
	fs := vfs.NewFilesystem()
	_, err := vfsapi.Import(fs, "first", bytes.NewReader(make([]byte, 200)))
	require.NoError(t, err)
	_, err = vfsapi.Import(fs, "second", bytes.NewReader(make([]byte, 10)))
	require.NoError(t, err)

	image, err := fs.MarshalBinary()
	require.NoError(t, err)
	modify(image)

	restored := vfs.NewFilesystem()
	require.NoError(t, restored.UnmarshalBinary(image))
	return restored
}

func TestFsCheckConsistent(t *testing.T) {
	fs := vfs.NewFilesystem()
	require.NoError(t, vfsapi.FsCheck(fs))

	_, err := vfsapi.Import(fs, "a", bytes.NewReader(make([]byte, 5000)))
	require.NoError(t, err)
	f, err := vfsapi.Create(fs, "b")
	require.NoError(t, err)
	_, err = f.Write(make([]byte, 130))
	require.NoError(t, err)
	require.NoError(t, vfsapi.FsCheck(fs))

	require.NoError(t, vfsapi.Remove(fs, "a"))
	require.NoError(t, vfsapi.FsCheck(fs))

	restored := corruptedFilesystem(t, func(image []byte) {})
	require.NoError(t, vfsapi.FsCheck(restored))
}

func TestFsCheckOrphanBlock(t *testing.T) {
	fs := corruptedFilesystem(t, func(image []byte) {
		image[fatOffset+100] = 1
	})
	err := vfsapi.FsCheck(fs)
	require.ErrorContains(t, err, "block 100 is allocated but not used by any file")
}

func TestFsCheckSharedBlock(t *testing.T) {
	// "first" occupies blocks 4 and 5, "second" occupies block 6. Let
	// "second" start in the last block of "first" instead.
	fs := corruptedFilesystem(t, func(image []byte) {
		image[2*entryOffset+1] = 5
		image[2*entryOffset+6] = 5
		image[fatOffset+6] = 0
	})
	err := vfsapi.FsCheck(fs)
	require.ErrorContains(t, err, "block 5 of file second is shared with another file")
}

func TestFsCheckCursorNotReset(t *testing.T) {
	fs := corruptedFilesystem(t, func(image []byte) {
		image[entryOffset+4] = 50
	})
	err := vfsapi.FsCheck(fs)
	require.ErrorContains(t, err, "closed file first has a cursor that was not reset")
}
