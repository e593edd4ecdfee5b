package vfsapi

import (
	"io"

	"github.com/PapiCZ/kiv_tfs/vfs"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Import stores the content of r as a new file, replacing any existing
// file of the same name. If the content does not fit, nothing
// of the new file is kept.
func Import(fs *vfs.Filesystem, name string, r io.Reader) (int64, error) {
	if fd, err := fs.Lookup(name); err == nil {
		if err := fs.Delete(fd); err != nil {
			return 0, err
		}
	} else if status.Code(err) != codes.NotFound {
		return 0, err
	}

	f, err := Create(fs, name)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = Remove(fs, name)
		return 0, err
	}

	return n, f.Close()
}

// Export writes the whole content of a closed file to w.
func Export(fs *vfs.Filesystem, name string, w io.Writer) (int64, error) {
	f, err := Open(fs, name)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(w, f)
	if err != nil {
		_ = f.Close()
		return n, err
	}

	return n, f.Close()
}

// ReadAll returns the whole content of a closed file.
func ReadAll(fs *vfs.Filesystem, name string) ([]byte, error) {
	f, err := Open(fs, name)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return data, f.Close()
}
