package btree

import (
	"github.com/fwu96/btreeindex/internal/storage"
	"github.com/fwu96/btreeindex/pkg/bx"
)

// Internal node page layout. level is 1 when the children are leaves, 0 when
// they are internal nodes themselves. Key slot i separates child i (keys
// below keyArray[i]) from child i+1 (keys at or above it). Occupancy is
// decided by the child-pointer sentinel: key slot i is in use iff
// pageNoArray[i+1] != 0, and unused slots follow used ones.
//
//	+-------------------------------+ 0
//	| level (u32)                   |
//	+-------------------------------+ 4
//	| keyArray[internalCapacity]    |
//	+-------------------------------+ 4 + N*8
//	| pageNoArray[internalCapacity+1]|
//	+-------------------------------+
const (
	offInternalKeys     = levelSize
	offInternalChildren = offInternalKeys + internalCapacity*keySize

	internalLayoutSize = offInternalChildren + (internalCapacity+1)*pageNoSize
)

// internalNode is a typed read/write view over an internal page's bytes.
type internalNode struct {
	page *storage.Page
}

func asInternal(p *storage.Page) (internalNode, error) {
	if len(p.Bytes()) < internalLayoutSize {
		return internalNode{}, ErrLayout
	}
	return internalNode{page: p}, nil
}

func (n internalNode) level() int {
	return int(bx.U32(n.page.Bytes()))
}

func (n internalNode) setLevel(level int) {
	bx.PutU32(n.page.Bytes(), uint32(level))
}

func (n internalNode) keyAt(i int) KeyType {
	return bx.I64At(n.page.Bytes(), offInternalKeys+i*keySize)
}

func (n internalNode) setKeyAt(i int, k KeyType) {
	bx.PutI64At(n.page.Bytes(), offInternalKeys+i*keySize, k)
}

func (n internalNode) childAt(i int) uint32 {
	return bx.U32At(n.page.Bytes(), offInternalChildren+i*pageNoSize)
}

func (n internalNode) setChildAt(i int, no uint32) {
	bx.PutU32At(n.page.Bytes(), offInternalChildren+i*pageNoSize, no)
}

func (n internalNode) full() bool {
	return n.childAt(internalCapacity) != 0
}

// numKeys counts the occupied key prefix via the child-pointer sentinel.
func (n internalNode) numKeys() int {
	for i := 0; i < internalCapacity; i++ {
		if n.childAt(i+1) == 0 {
			return i
		}
	}
	return internalCapacity
}

// searchChild selects the subtree for a probe key: the first child whose
// separator exceeds the key, or the rightmost occupied child when none does.
func (n internalNode) searchChild(k KeyType) uint32 {
	m := n.numKeys()
	for i := 0; i < m; i++ {
		if k < n.keyAt(i) {
			return n.childAt(i)
		}
	}
	return n.childAt(m)
}

// initRoot fills an empty node with its first separator and both children.
// Only root replacement reaches an empty internal node, so the left child
// pointer is always the old root.
func (n internalNode) initRoot(leftPageNo uint32, right pageKeyPair) {
	n.setKeyAt(0, right.key)
	n.setChildAt(0, leftPageNo)
	n.setChildAt(1, right.pageNo)
}

// insertPromotion places a promoted (separator, right-child) pair into a
// non-empty node by shift-carry, keeping pageNoArray[i+1] aligned with
// keyArray[i]. The left sibling's pointer already lives in the node — it is
// the child the split originated from. Precondition: the node is not full.
func (n internalNode) insertPromotion(p pageKeyPair) {
	carry := p
	for i := 0; i < internalCapacity; i++ {
		if n.childAt(i+1) == 0 {
			n.setKeyAt(i, carry.key)
			n.setChildAt(i+1, carry.pageNo)
			return
		}
		if n.keyAt(i) > p.key {
			k, c := n.keyAt(i), n.childAt(i+1)
			n.setKeyAt(i, carry.key)
			n.setChildAt(i+1, carry.pageNo)
			carry = pageKeyPair{key: k, pageNo: c}
		}
	}
}
