package vfs

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type RefKind uint8

const (
	RefFree RefKind = iota
	RefEndOfChain
	RefBlock
)

const (
	encodedFree       = 0
	encodedEndOfChain = 1
)

// BlockRef is the value of an allocation table entry. The same type is
// used for the first and current block of a directory entry, where
// Free means that no block is allocated and EndOfChain means that the
// cursor sits just past the last block of the file.
type BlockRef struct {
	kind  RefKind
	block BlockPtr
}

var (
	Free       = BlockRef{kind: RefFree}
	EndOfChain = BlockRef{kind: RefEndOfChain}
)

func BlockAt(b BlockPtr) BlockRef {
	return BlockRef{kind: RefBlock, block: b}
}

func (r BlockRef) Kind() RefKind {
	return r.kind
}

func (r BlockRef) IsFree() bool {
	return r.kind == RefFree
}

func (r BlockRef) IsEndOfChain() bool {
	return r.kind == RefEndOfChain
}

// Block returns the referenced block, if any.
func (r BlockRef) Block() (BlockPtr, bool) {
	return r.block, r.kind == RefBlock
}

func (r BlockRef) Encode() byte {
	switch r.kind {
	case RefEndOfChain:
		return encodedEndOfChain
	case RefBlock:
		return byte(r.block)
	default:
		return encodedFree
	}
}

func DecodeBlockRef(v byte) (BlockRef, error) {
	switch {
	case v == encodedFree:
		return Free, nil
	case v == encodedEndOfChain:
		return EndOfChain, nil
	case IsBlockInRange(BlockPtr(v)):
		return BlockAt(BlockPtr(v)), nil
	default:
		return Free, fmt.Errorf("byte %d is not a valid block reference", v)
	}
}

func (r BlockRef) String() string {
	switch r.kind {
	case RefEndOfChain:
		return "end"
	case RefBlock:
		return fmt.Sprintf("%d", r.block)
	default:
		return "free"
	}
}

// AllocationTable holds one entry per storage block. Entries of the
// reserved metadata blocks always stay Free and are never allocated.
type AllocationTable [BlockCount]BlockRef

func (t *AllocationTable) Reset() {
	for i := range t {
		t[i] = Free
	}
}

// FindFree returns the first free data block.
func (t *AllocationTable) FindFree() (BlockPtr, error) {
	for b := int(FirstDataBlock); b <= int(LastDataBlock); b++ {
		if t[b].IsFree() {
			return BlockPtr(b), nil
		}
	}

	return 0, errNoFreeBlocks
}

// Allocate claims the first free data block and marks it as the end of
// a chain.
func (t *AllocationTable) Allocate() (BlockPtr, error) {
	b, err := t.FindFree()
	if err != nil {
		return 0, err
	}
	t[b] = EndOfChain
	return b, nil
}

// Append allocates a new block and splices it in after tail, which must
// currently be the end of its chain.
func (t *AllocationTable) Append(tail BlockPtr) (BlockPtr, error) {
	if !t[tail].IsEndOfChain() {
		return 0, status.Errorf(codes.Internal, "Block %d is not the end of its chain", tail)
	}

	b, err := t.Allocate()
	if err != nil {
		return 0, err
	}
	t[tail] = BlockAt(b)
	return b, nil
}

func (t *AllocationTable) Next(b BlockPtr) BlockRef {
	return t[b]
}

// BlockAtOffset follows the chain starting at first to the block holding
// the byte at offset. An offset right past a chain that fills its last
// block yields EndOfChain.
func (t *AllocationTable) BlockAtOffset(first BlockRef, offset int) BlockRef {
	block := first
	for remaining := offset; remaining >= BlockSize; remaining -= BlockSize {
		b, ok := block.Block()
		if !ok {
			break
		}
		block = t[b]
	}
	return block
}

// FreeChain releases every block of the chain starting at first. It
// stops at the end of the chain, or at an entry that is already free.
func (t *AllocationTable) FreeChain(first BlockRef) int {
	freed := 0
	current, ok := first.Block()
	for ok {
		next := t[current]
		if next.IsFree() {
			break
		}
		t[current] = Free
		freed++
		current, ok = next.Block()
	}
	return freed
}

// Chain collects the blocks of the chain starting at first, in order.
// Broken or cyclic chains are reported as an error together with the
// blocks that could be collected.
func (t *AllocationTable) Chain(first BlockRef) ([]BlockPtr, error) {
	blocks := make([]BlockPtr, 0)
	seen := NewBitmap(BlockCount)

	current, ok := first.Block()
	for ok {
		if !IsBlockInRange(current) {
			return blocks, status.Errorf(codes.Internal, "Chain refers to reserved block %d", current)
		}
		if bit, _ := seen.GetBit(int32(current)); bit != 0 {
			return blocks, status.Errorf(codes.Internal, "Chain contains a cycle at block %d", current)
		}
		_ = seen.SetBit(int32(current), 1)
		blocks = append(blocks, current)

		next := t[current]
		if next.IsFree() {
			return blocks, status.Errorf(codes.Internal, "Chain is interrupted by free block %d", current)
		}
		current, ok = next.Block()
	}
	return blocks, nil
}

func (t *AllocationTable) FreeCount() int {
	count := 0
	for b := int(FirstDataBlock); b <= int(LastDataBlock); b++ {
		if t[b].IsFree() {
			count++
		}
	}
	return count
}

func (t *AllocationTable) Encode() [BlockCount]byte {
	var out [BlockCount]byte
	for i, ref := range t {
		out[i] = ref.Encode()
	}
	return out
}

func (t *AllocationTable) Decode(in [BlockCount]byte) error {
	var decoded AllocationTable
	for i, v := range in {
		ref, err := DecodeBlockRef(v)
		if err != nil {
			return fmt.Errorf("allocation table entry %d: %w", i, err)
		}
		if BlockPtr(i) < FirstDataBlock && !ref.IsFree() {
			return fmt.Errorf("allocation table entry %d belongs to a reserved block but is %s", i, ref)
		}
		decoded[i] = ref
	}
	*t = decoded
	return nil
}
