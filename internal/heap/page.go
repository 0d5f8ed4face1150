package heap

import (
	"errors"

	"github.com/fwu96/btreeindex/internal/storage"
	"github.com/fwu96/btreeindex/pkg/bx"
)

const pageHeaderSize = 2 // tuple count

var (
	ErrNoSpace = errors.New("heap: not enough free space in page")
	ErrBadSlot = errors.New("heap: invalid slot")
)

// hpage is a typed view over a relation page holding fixed-width tuples.
//
//	+------------------+ 0
//	| tupleCount (u16) |
//	+------------------+ 2
//	| tuple #1         |
//	| tuple #2         |
//	| ...              |
//	+------------------+ PageSize
//
// Slots are 1-based so that a RecordID with Slot == 0 never points at a
// tuple.
type hpage struct {
	page      *storage.Page
	tupleSize int
}

func (h hpage) capacity() int {
	return (storage.PageSize - pageHeaderSize) / h.tupleSize
}

func (h hpage) count() int {
	return int(bx.U16(h.page.Bytes()))
}

func (h hpage) setCount(n int) {
	bx.PutU16(h.page.Bytes(), uint16(n))
}

func (h hpage) tupleOff(slot int) int {
	return pageHeaderSize + (slot-1)*h.tupleSize
}

// insert appends the tuple and returns its 1-based slot.
func (h hpage) insert(tuple []byte) (int, error) {
	n := h.count()
	if n >= h.capacity() {
		return 0, ErrNoSpace
	}

	slot := n + 1
	copy(h.page.Bytes()[h.tupleOff(slot):], tuple)
	h.setCount(slot)
	return slot, nil
}

func (h hpage) read(slot int) ([]byte, error) {
	if slot < 1 || slot > h.count() {
		return nil, ErrBadSlot
	}
	off := h.tupleOff(slot)
	return h.page.Bytes()[off : off+h.tupleSize], nil
}
