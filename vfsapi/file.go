package vfsapi

import (
	"fmt"
	"io"

	"github.com/PapiCZ/kiv_tfs/vfs"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// File is an open file of a Filesystem, usable with the io package.
// The file system keeps one cursor per file, so there can be at most
// one File per name at a time.
type File struct {
	filesystem *vfs.Filesystem
	fd         vfs.Descriptor
	name       string
}

var (
	_ io.ReadWriteSeeker = (*File)(nil)
	_ io.Closer          = (*File)(nil)
)

func Open(fs *vfs.Filesystem, name string) (*File, error) {
	fd, err := fs.Open(name)
	if err != nil {
		return nil, err
	}

	return &File{
		filesystem: fs,
		fd:         fd,
		name:       name,
	}, nil
}

func Create(fs *vfs.Filesystem, name string) (*File, error) {
	fd, err := fs.Create(name)
	if err != nil {
		return nil, err
	}

	return &File{
		filesystem: fs,
		fd:         fd,
		name:       name,
	}, nil
}

// Remove deletes a file by name. Open files are closed first.
func Remove(fs *vfs.Filesystem, name string) error {
	fd, err := fs.Lookup(name)
	if err != nil {
		return err
	}

	return fs.Delete(fd)
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Descriptor() vfs.Descriptor {
	return f.fd
}

func (f *File) Size() (int, error) {
	return f.filesystem.Size(f.fd)
}

// Read reports the end of the file as io.EOF.
func (f *File) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n, err := f.filesystem.Read(f.fd, p)
	if vfs.IsEndOfFile(err) {
		return n, io.EOF
	}
	return n, err
}

func (f *File) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	return f.filesystem.Write(f.fd, p)
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	de, err := f.filesystem.Stat(f.fd)
	if err != nil {
		return 0, err
	}

	var position int64
	switch whence {
	case io.SeekStart:
		position = offset
	case io.SeekCurrent:
		position = int64(de.ByteOffset) + offset
	case io.SeekEnd:
		position = int64(de.Size) + offset
	default:
		return 0, status.Errorf(codes.InvalidArgument, "Invalid whence %d", whence)
	}
	if position < 0 || position > int64(vfs.MaxFileSize) {
		return 0, status.Errorf(codes.OutOfRange, "Offset %d lies outside file of %d bytes", position, de.Size)
	}

	if err := f.filesystem.Seek(f.fd, int(position)); err != nil {
		return 0, err
	}
	return position, nil
}

func (f *File) Close() error {
	return f.filesystem.Close(f.fd)
}

func (f *File) String() string {
	return fmt.Sprintf("%s (fd %d)", f.name, f.fd)
}
