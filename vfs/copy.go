package vfs

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Copy duplicates a closed, non-empty file under a new name. An
// existing closed destination is replaced. If the destination cannot
// hold the whole source, no partial copy is left behind. Both files
// are closed afterwards.
func (fs *Filesystem) Copy(from, to string) (int, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("copy", "name", from, "to", to)
	n, err := fs.copy(from, to)
	fs.logger.logResult("copy", err, "name", from, "to", to)
	return n, err
}

func (fs *Filesystem) copy(from, to string) (int, error) {
	fromFd, err := fs.lookup(from)
	if err != nil {
		return 0, err
	}
	source := &fs.directory[fromFd]
	if source.Status != StatusClosed {
		return 0, status.Errorf(codes.FailedPrecondition, "Source file %s is open", from)
	}
	if source.Size == 0 {
		return 0, status.Errorf(codes.FailedPrecondition, "Source file %s is empty", from)
	}
	if from == to {
		return 0, status.Errorf(codes.InvalidArgument, "Cannot copy file %s onto itself", from)
	}

	if toFd, err := fs.lookup(to); err == nil {
		if fs.directory[toFd].Status != StatusClosed {
			return 0, status.Errorf(codes.FailedPrecondition, "Destination file %s is open", to)
		}
		if err := fs.delete(toFd); err != nil {
			return 0, err
		}
	} else if status.Code(err) != codes.NotFound {
		return 0, err
	}

	toFd, err := fs.create(to)
	if err != nil {
		return 0, err
	}
	fromFd, err = fs.open(from)
	if err != nil {
		_ = fs.delete(toFd)
		return 0, err
	}

	var buf [BlockSize]byte
	copied := 0
	for {
		n, err := fs.read(fromFd, buf[:])
		if n == 0 {
			if err != nil && !IsEndOfFile(err) {
				_ = fs.delete(toFd)
				_ = fs.close(fromFd)
				return 0, err
			}
			break
		}

		written, err := fs.write(toFd, buf[:n])
		filesystemBytesRead.Add(float64(n))
		filesystemBytesWritten.Add(float64(written))
		if written != n {
			if err == nil {
				err = status.Errorf(codes.Internal, "Wrote %d bytes instead of %d", written, n)
			}
			_ = fs.delete(toFd)
			_ = fs.close(fromFd)
			return 0, err
		}
		copied += written
	}

	_ = fs.close(fromFd)
	_ = fs.close(toFd)
	return copied, nil
}
