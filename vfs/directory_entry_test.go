package vfs_test

import (
	"testing"

	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/stretchr/testify/require"
)

func TestDirectoryFindByName(t *testing.T) {
	var d vfs.Directory
	d[3] = vfs.DirectoryEntry{
		Status:     vfs.StatusClosed,
		FirstBlock: vfs.Free,
		Name:       vfs.StringNameToBytes("foobar"),
	}

	fd, err := d.FindByName("foobar")
	require.NoError(t, err)
	require.Equal(t, vfs.Descriptor(3), fd)
	require.Equal(t, "foobar", d[fd].NameString())

	_, err = d.FindByName("foo")
	require.Equal(t, vfs.DirectoryEntryNotFound{Name: "foo"}, err)

	// Names are not truncated when looking them up.
	d[4] = vfs.DirectoryEntry{Status: vfs.StatusOpen, Name: vfs.StringNameToBytes("12345678")}
	_, err = d.FindByName("123456789")
	require.Error(t, err)

	free, err := d.FindFree()
	require.NoError(t, err)
	require.Equal(t, vfs.FirstDescriptor, free)
}

func TestDirectoryEntryZeroIsNeverUsed(t *testing.T) {
	var d vfs.Directory
	d[0] = vfs.DirectoryEntry{Status: vfs.StatusClosed, Name: vfs.StringNameToBytes("hidden")}

	_, err := d.FindByName("hidden")
	require.Error(t, err)
	require.False(t, vfs.IsDescriptorInRange(0))
	require.True(t, vfs.IsDescriptorInRange(1))
	require.True(t, vfs.IsDescriptorInRange(15))
	require.False(t, vfs.IsDescriptorInRange(16))
}

func TestValidateName(t *testing.T) {
	require.NoError(t, vfs.ValidateName("a"))
	require.NoError(t, vfs.ValidateName("abc_DEF."))
	require.Equal(t, vfs.InvalidName{Name: ""}, vfs.ValidateName(""))
	require.Equal(t, vfs.InvalidName{Name: "123456789"}, vfs.ValidateName("123456789"))
	require.Equal(t, vfs.InvalidName{Name: "a/b"}, vfs.ValidateName("a/b"))
}

func TestStringNameToBytes(t *testing.T) {
	require.Equal(t, [vfs.NameBufferLength]byte{'a', 'b', 0, 0, 0, 0, 0, 0, 0}, vfs.StringNameToBytes("ab"))
	name := vfs.StringNameToBytes("12345678")
	require.Equal(t, byte(0), name[vfs.NameLength])
	require.Equal(t, "12345678", vfs.CToGoString(name[:]))
}
