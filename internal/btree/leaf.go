package btree

import (
	"github.com/fwu96/btreeindex/internal/heap"
	"github.com/fwu96/btreeindex/internal/storage"
	"github.com/fwu96/btreeindex/pkg/bx"
)

// Leaf page layout. Occupied slots form a contiguous prefix; the first slot
// whose rid has Slot == 0 marks the end (slot number 0 never identifies a
// tuple).
//
//	+---------------------------+ 0
//	| rightSibPageNo (u32)      |
//	+---------------------------+ 4
//	| keyArray[leafCapacity]    |
//	+---------------------------+ 4 + L*8
//	| ridArray[leafCapacity]    |   (pageNo u32, slot u16 each)
//	+---------------------------+
const (
	offLeafKeys = sibPtrSize
	offLeafRIDs = offLeafKeys + leafCapacity*keySize

	leafLayoutSize = offLeafRIDs + leafCapacity*ridSize
)

// leafNode is a typed read/write view over a leaf page's bytes.
type leafNode struct {
	page *storage.Page
}

func asLeaf(p *storage.Page) (leafNode, error) {
	if len(p.Bytes()) < leafLayoutSize {
		return leafNode{}, ErrLayout
	}
	return leafNode{page: p}, nil
}

func (n leafNode) rightSib() uint32 {
	return bx.U32(n.page.Bytes())
}

func (n leafNode) setRightSib(no uint32) {
	bx.PutU32(n.page.Bytes(), no)
}

func (n leafNode) keyAt(i int) KeyType {
	return bx.I64At(n.page.Bytes(), offLeafKeys+i*keySize)
}

func (n leafNode) setKeyAt(i int, k KeyType) {
	bx.PutI64At(n.page.Bytes(), offLeafKeys+i*keySize, k)
}

func (n leafNode) ridAt(i int) heap.RecordID {
	off := offLeafRIDs + i*ridSize
	return heap.RecordID{
		PageNo: bx.U32At(n.page.Bytes(), off),
		Slot:   bx.U16At(n.page.Bytes(), off+pageNoSize),
	}
}

func (n leafNode) setRIDAt(i int, rid heap.RecordID) {
	off := offLeafRIDs + i*ridSize
	bx.PutU32At(n.page.Bytes(), off, rid.PageNo)
	bx.PutU16At(n.page.Bytes(), off+pageNoSize, rid.Slot)
}

func (n leafNode) slotUsed(i int) bool {
	return n.ridAt(i).Slot != 0
}

func (n leafNode) full() bool {
	return n.slotUsed(leafCapacity - 1)
}

// numEntries counts the occupied prefix.
func (n leafNode) numEntries() int {
	for i := 0; i < leafCapacity; i++ {
		if !n.slotUsed(i) {
			return i
		}
	}
	return leafCapacity
}

// insert places the pair at the first index whose slot is unused or whose key
// is greater than pair.key, shift-carrying displaced entries one slot right.
// Equal keys land after the entries already present, so duplicates keep
// insertion order. Precondition: the leaf is not full.
func (n leafNode) insert(pair ridKeyPair) {
	carry := pair
	for i := 0; i < leafCapacity; i++ {
		if !n.slotUsed(i) {
			n.setKeyAt(i, carry.key)
			n.setRIDAt(i, carry.rid)
			return
		}
		if n.keyAt(i) > pair.key {
			k, r := n.keyAt(i), n.ridAt(i)
			n.setKeyAt(i, carry.key)
			n.setRIDAt(i, carry.rid)
			carry = ridKeyPair{key: k, rid: r}
		}
	}
}
