package vfs

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type OutOfRange struct {
	index    VolumePtr
	minIndex VolumePtr
	maxIndex VolumePtr
}

func (o OutOfRange) Error() string {
	return fmt.Sprintf("index out of range [%d], valid range is [%d, %d]", o.index, o.minIndex, o.maxIndex)
}

type ShortBuffer struct {
	length int
}

func (s ShortBuffer) Error() string {
	return fmt.Sprintf("buffer of %d bytes is shorter than a block of %d bytes", s.length, BlockSize)
}

type InvalidName struct {
	Name string
}

func (i InvalidName) Error() string {
	return fmt.Sprintf("invalid file name %q", i.Name)
}

// IsExhausted reports whether an operation stopped because the
// directory or the storage ran out of free slots.
func IsExhausted(err error) bool {
	return status.Code(err) == codes.ResourceExhausted
}

// IsEndOfFile reports whether a read failed because there was nothing
// left to read at the cursor.
func IsEndOfFile(err error) bool {
	return status.Code(err) == codes.OutOfRange
}

func errDescriptorOutOfRange(fd Descriptor) error {
	return status.Errorf(codes.InvalidArgument, "File descriptor %d is out of range [%d, %d]", fd, FirstDescriptor, LastDescriptor)
}

func errNotOpen(fd Descriptor) error {
	return status.Errorf(codes.FailedPrecondition, "File descriptor %d is not open", fd)
}

func errUnused(fd Descriptor) error {
	return status.Errorf(codes.NotFound, "File descriptor %d does not refer to a file", fd)
}

func errInvalidName(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

var (
	errNoFreeBlocks           = status.Error(codes.ResourceExhausted, "No free storage blocks available")
	errNoFreeDirectoryEntries = status.Error(codes.ResourceExhausted, "No free directory entries available")
)
