package vfs

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Write transfers p into an open file at its cursor, growing the file
// when needed, and advances the cursor. When the storage runs out the
// bytes written so far are kept and their count is returned together
// with a ResourceExhausted error.
func (fs *Filesystem) Write(fd Descriptor, p []byte) (int, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("write", "fd", fd, "count", len(p))
	n, err := fs.write(fd, p)
	fs.logger.logResult("write", err, "fd", fd, "count", len(p), "transferred", n)
	filesystemBytesWritten.Add(float64(n))
	return n, err
}

func (fs *Filesystem) write(fd Descriptor, p []byte) (int, error) {
	de, err := fs.openEntry(fd)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, status.Error(codes.InvalidArgument, "Attempted to write 0 bytes")
	}

	current, offset, err := fs.positionForWrite(de)
	if err != nil {
		return 0, err
	}

	written := 0
	cursor := BlockAt(current)
	var writeErr error
	var buf [BlockSize]byte
	for written < len(p) {
		n := len(p) - written
		if room := BlockSize - offset; n > room {
			n = room
		}

		// Read-modify-write, so that bytes of the block outside
		// the written range are preserved.
		if err := fs.volume.ReadBlock(current, buf[:]); err != nil {
			writeErr = status.Errorf(codes.Internal, "Failed to read block %d: %s", current, err)
			break
		}
		copy(buf[offset:offset+n], p[written:written+n])
		if err := fs.volume.WriteBlock(current, buf[:]); err != nil {
			writeErr = status.Errorf(codes.Internal, "Failed to write block %d: %s", current, err)
			break
		}

		written += n
		offset += n
		if offset < BlockSize {
			continue
		}

		// The cursor crossed into the next block.
		offset = 0
		if b, ok := fs.fat.Next(current).Block(); ok {
			current = b
			cursor = BlockAt(b)
			continue
		}
		cursor = EndOfChain
		if written == len(p) {
			break
		}
		b, err := fs.allocateAfter(BlockAt(current))
		if err != nil {
			writeErr = err
			break
		}
		current = b
		cursor = BlockAt(b)
	}

	de.ByteOffset += uint16(written)
	if de.ByteOffset > de.Size {
		de.Size = de.ByteOffset
	}
	de.CurrentBlock = cursor
	return written, writeErr
}

// positionForWrite finds the block holding the cursor and the offset
// within that block, allocating blocks where the chain is too short.
func (fs *Filesystem) positionForWrite(de *DirectoryEntry) (BlockPtr, int, error) {
	if de.FirstBlock.IsFree() {
		b, err := fs.allocateAfter(Free)
		if err != nil {
			return 0, 0, err
		}
		de.FirstBlock = BlockAt(b)
		return b, 0, nil
	}

	current, _ := de.FirstBlock.Block()
	offset := int(de.ByteOffset)
	for offset >= BlockSize {
		offset -= BlockSize
		next := fs.fat.Next(current)
		if next.IsEndOfChain() {
			b, err := fs.allocateAfter(BlockAt(current))
			if err != nil {
				return 0, 0, err
			}
			next = BlockAt(b)
		}
		b, ok := next.Block()
		if !ok {
			return 0, 0, status.Errorf(codes.Internal, "Chain of block %d is interrupted", current)
		}
		current = b
	}
	return current, offset, nil
}
