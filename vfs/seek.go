package vfs

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Seek moves the cursor of an open file. An offset equal to the size is
// allowed; it is the position at which a write appends to the file.
func (fs *Filesystem) Seek(fd Descriptor, offset int) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("seek", "fd", fd, "offset", offset)
	err := fs.seek(fd, offset)
	fs.logger.logResult("seek", err, "fd", fd, "offset", offset)
	return err
}

func (fs *Filesystem) seek(fd Descriptor, offset int) error {
	de, err := fs.openEntry(fd)
	if err != nil {
		return err
	}
	if offset < 0 || offset > int(de.Size) {
		return status.Errorf(codes.OutOfRange, "Offset %d lies outside file of %d bytes", offset, de.Size)
	}

	de.ByteOffset = uint16(offset)
	de.CurrentBlock = fs.fat.BlockAtOffset(de.FirstBlock, offset)
	return nil
}
