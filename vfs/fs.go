package vfs

import (
	"errors"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Filesystem owns the storage arena together with the allocation table
// and the directory. All state is guarded by a single mutex, so that
// chain invariants hold even with concurrent callers.
type Filesystem struct {
	lock      sync.Mutex
	Layout    Layout
	volume    *Volume
	fat       AllocationTable
	directory Directory
	logger    *Logger
}

type options struct {
	logger *Logger
}

// Option configures a Filesystem.
type Option func(*options)

// WithLogger sets the logger used for call and error logging. If nil
// is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// NewFilesystem creates an initialized, empty file system.
func NewFilesystem(opts ...Option) *Filesystem {
	o := options{
		logger: NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	registerMetrics()

	fs := &Filesystem{
		Layout: NewLayout(),
		volume: NewVolume(),
		logger: o.logger,
	}
	fs.init()
	return fs
}

// Init resets the directory to empty and marks every block free.
func (fs *Filesystem) Init() {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("init")
	fs.init()
}

func (fs *Filesystem) init() {
	fs.volume.Clear()
	fs.fat.Reset()
	fs.directory.Reset()
}

// entry returns the directory entry of an active descriptor.
func (fs *Filesystem) entry(fd Descriptor) (*DirectoryEntry, error) {
	if !IsDescriptorInRange(fd) {
		return nil, errDescriptorOutOfRange(fd)
	}
	de := &fs.directory[fd]
	if !de.IsActive() {
		return nil, errUnused(fd)
	}
	return de, nil
}

// openEntry returns the directory entry of an open descriptor.
func (fs *Filesystem) openEntry(fd Descriptor) (*DirectoryEntry, error) {
	if !IsDescriptorInRange(fd) {
		return nil, errDescriptorOutOfRange(fd)
	}
	de := &fs.directory[fd]
	if de.Status != StatusOpen {
		return nil, errNotOpen(fd)
	}
	return de, nil
}

func (fs *Filesystem) lookup(name string) (Descriptor, error) {
	if err := ValidateName(name); err != nil {
		return InvalidDescriptor, errInvalidName(err)
	}
	fd, err := fs.directory.FindByName(name)
	if err != nil {
		return InvalidDescriptor, status.Error(codes.NotFound, err.Error())
	}
	return fd, nil
}

// Lookup maps a file name to its descriptor without changing the state
// of the file.
func (fs *Filesystem) Lookup(name string) (Descriptor, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	return fs.lookup(name)
}

// Exists reports whether a name belongs to an active directory entry.
// Invalid names never exist.
func (fs *Filesystem) Exists(name string) bool {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("exists", "name", name)
	_, err := fs.lookup(name)
	return err == nil
}

// Create adds a new, empty and open file.
func (fs *Filesystem) Create(name string) (Descriptor, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("create", "name", name)
	fd, err := fs.create(name)
	fs.logger.logResult("create", err, "name", name)
	return fd, err
}

func (fs *Filesystem) create(name string) (Descriptor, error) {
	if err := ValidateName(name); err != nil {
		return InvalidDescriptor, errInvalidName(err)
	}
	if _, err := fs.directory.FindByName(name); err == nil {
		return InvalidDescriptor, status.Errorf(codes.AlreadyExists, "File %s already exists", name)
	}
	fd, err := fs.directory.FindFree()
	if err != nil {
		filesystemAllocationFailures.WithLabelValues("directory_entry").Inc()
		return InvalidDescriptor, err
	}

	fs.directory[fd] = DirectoryEntry{
		Status:       StatusOpen,
		FirstBlock:   Free,
		Size:         0,
		ByteOffset:   0,
		CurrentBlock: Free,
		Name:         StringNameToBytes(name),
	}
	filesystemFilesCreated.Inc()
	return fd, nil
}

// Open opens a closed file and places its cursor at the start. A file
// can only have one open instance at a time.
func (fs *Filesystem) Open(name string) (Descriptor, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("open", "name", name)
	fd, err := fs.open(name)
	fs.logger.logResult("open", err, "name", name)
	return fd, err
}

func (fs *Filesystem) open(name string) (Descriptor, error) {
	fd, err := fs.lookup(name)
	if err != nil {
		return InvalidDescriptor, err
	}
	de := &fs.directory[fd]
	if de.Status == StatusOpen {
		return InvalidDescriptor, status.Errorf(codes.FailedPrecondition, "File %s is already open", name)
	}

	de.Status = StatusOpen
	de.resetCursor()
	return fd, nil
}

// Close closes an open file and resets its cursor.
func (fs *Filesystem) Close(fd Descriptor) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("close", "fd", fd)
	err := fs.close(fd)
	fs.logger.logResult("close", err, "fd", fd)
	return err
}

func (fs *Filesystem) close(fd Descriptor) error {
	de, err := fs.openEntry(fd)
	if err != nil {
		return err
	}

	de.Status = StatusClosed
	de.resetCursor()
	return nil
}

// Size returns the size of an active file in bytes. On failure it
// returns MaxFileSize+1, which no file can reach.
func (fs *Filesystem) Size(fd Descriptor) (int, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("size", "fd", fd)
	de, err := fs.entry(fd)
	if err != nil {
		fs.logger.logResult("size", err, "fd", fd)
		return MaxFileSize + 1, err
	}
	return int(de.Size), nil
}

// Rename gives an active file a new, unused name.
func (fs *Filesystem) Rename(oldName, newName string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("rename", "name", oldName, "new_name", newName)
	err := fs.rename(oldName, newName)
	fs.logger.logResult("rename", err, "name", oldName, "new_name", newName)
	return err
}

func (fs *Filesystem) rename(oldName, newName string) error {
	fd, err := fs.lookup(oldName)
	if err != nil {
		return err
	}
	if err := ValidateName(newName); err != nil {
		return errInvalidName(err)
	}
	if oldName == newName {
		return nil
	}
	if _, err := fs.directory.FindByName(newName); err == nil {
		return status.Errorf(codes.AlreadyExists, "File %s already exists", newName)
	}

	fs.directory[fd].Name = StringNameToBytes(newName)
	return nil
}

// Stat returns a copy of the directory entry of an active file.
func (fs *Filesystem) Stat(fd Descriptor) (DirectoryEntry, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	de, err := fs.entry(fd)
	if err != nil {
		return DirectoryEntry{}, err
	}
	return *de, nil
}

// Entries returns a copy of the whole directory table.
func (fs *Filesystem) Entries() Directory {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	return fs.directory
}

// AllocationTable returns a copy of the allocation table.
func (fs *Filesystem) AllocationTable() AllocationTable {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	return fs.fat
}

// Snapshot returns copies of the directory and the allocation table
// taken at the same instant.
func (fs *Filesystem) Snapshot() (Directory, AllocationTable) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	return fs.directory, fs.fat
}

// Chain returns the blocks allocated to an active file, in file order.
func (fs *Filesystem) Chain(fd Descriptor) ([]BlockPtr, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	de, err := fs.entry(fd)
	if err != nil {
		return nil, err
	}
	return fs.fat.Chain(de.FirstBlock)
}

func (fs *Filesystem) FreeBlockCount() int {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	return fs.fat.FreeCount()
}

// ReadBlock exposes the raw content of a data block, for reporting.
func (fs *Filesystem) ReadBlock(b BlockPtr) ([]byte, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	buf := make([]byte, BlockSize)
	if err := fs.volume.ReadBlock(b, buf); err != nil {
		var oor OutOfRange
		if errors.As(err, &oor) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, err
	}
	return buf, nil
}

// allocateAfter extends a chain by one block, or starts a new chain if
// tail is Free.
func (fs *Filesystem) allocateAfter(tail BlockRef) (BlockPtr, error) {
	var b BlockPtr
	var err error
	if t, ok := tail.Block(); ok {
		b, err = fs.fat.Append(t)
	} else {
		b, err = fs.fat.Allocate()
	}
	if err != nil {
		if IsExhausted(err) {
			filesystemAllocationFailures.WithLabelValues("block").Inc()
		}
		return 0, err
	}
	filesystemBlocksAllocated.Inc()
	return b, nil
}
