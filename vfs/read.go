package vfs

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Read transfers up to len(p) bytes from the cursor of an open file
// into p and advances the cursor. Fewer bytes are returned when the end
// of the file is reached. A read that cannot start returns 0 and an
// error; reading at the end of the file yields an OutOfRange error.
func (fs *Filesystem) Read(fd Descriptor, p []byte) (int, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("read", "fd", fd, "count", len(p))
	n, err := fs.read(fd, p)
	fs.logger.logResult("read", err, "fd", fd, "count", len(p), "transferred", n)
	filesystemBytesRead.Add(float64(n))
	return n, err
}

func (fs *Filesystem) read(fd Descriptor, p []byte) (int, error) {
	de, err := fs.openEntry(fd)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, status.Error(codes.InvalidArgument, "Attempted to read 0 bytes")
	}
	if de.FirstBlock.IsFree() {
		return 0, status.Errorf(codes.OutOfRange, "File descriptor %d has no storage blocks", fd)
	}
	if de.Size == 0 {
		return 0, status.Errorf(codes.OutOfRange, "File descriptor %d is empty", fd)
	}
	if de.ByteOffset >= de.Size {
		return 0, status.Errorf(codes.OutOfRange, "File descriptor %d is at end of file", fd)
	}

	var buf [BlockSize]byte
	current := de.CurrentBlock
	if err := fs.loadBlock(current, buf[:]); err != nil {
		return 0, err
	}

	count := 0
	index := int(de.ByteOffset) % BlockSize
	for count < len(p) && de.ByteOffset < de.Size {
		if index >= BlockSize {
			b, _ := current.Block()
			current = fs.fat.Next(b)
			de.CurrentBlock = current
			if err := fs.loadBlock(current, buf[:]); err != nil {
				return count, err
			}
			index = 0
		}

		p[count] = buf[index]
		count++
		index++
		de.ByteOffset++
	}

	// Step onto the next block already, so that a following read or
	// write without an intervening seek starts at the right place.
	if index >= BlockSize {
		b, _ := current.Block()
		de.CurrentBlock = fs.fat.Next(b)
	}

	return count, nil
}

// loadBlock reads the block behind a cursor reference. References that
// do not point to a data block are reported as internal errors.
func (fs *Filesystem) loadBlock(ref BlockRef, buf []byte) error {
	b, ok := ref.Block()
	if !ok {
		return status.Errorf(codes.Internal, "Cursor refers to %s instead of a storage block", ref)
	}
	if err := fs.volume.ReadBlock(b, buf); err != nil {
		return status.Errorf(codes.Internal, "Failed to read block %d: %s", b, err)
	}
	return nil
}
