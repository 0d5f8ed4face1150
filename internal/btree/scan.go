package btree

import (
	"github.com/fwu96/btreeindex/internal/heap"
	"github.com/fwu96/btreeindex/internal/storage"
)

// scanState is the cursor of the one live range scan. A nil *scanState on
// the index means no scan is active and no leaf is pinned.
type scanState struct {
	pageNo    uint32
	page      *storage.Page // pinned leaf
	nextEntry int

	lowVal  KeyType
	highVal KeyType
	lowOp   Operator
	highOp  Operator
}

// checkValid reports whether the key satisfies both scan bounds.
func (st *scanState) checkValid(k KeyType) bool {
	switch {
	case st.lowOp == GT && !(k > st.lowVal):
		return false
	case st.lowOp == GTE && !(k >= st.lowVal):
		return false
	case st.highOp == LT && !(k < st.highVal):
		return false
	case st.highOp == LTE && !(k <= st.highVal):
		return false
	}
	return true
}

// aboveHigh reports whether the key already fails the high bound. Keys are
// scanned in non-decreasing order, so nothing after such a key can qualify.
func (st *scanState) aboveHigh(k KeyType) bool {
	if st.highOp == LT {
		return k >= st.highVal
	}
	return k > st.highVal
}

// StartScan begins a range scan over [lowVal, highVal] under the given
// operators. On success the first qualifying entry is located, its leaf is
// pinned, and the cursor points at it. A scan already in progress is ended
// first.
func (ix *Index) StartScan(lowVal KeyType, lowOp Operator, highVal KeyType, highOp Operator) error {
	if (lowOp != GT && lowOp != GTE) || (highOp != LT && highOp != LTE) {
		return ErrBadOpcodes
	}
	if lowVal > highVal {
		return ErrBadScanRange
	}

	if ix.scan != nil {
		if err := ix.EndScan(); err != nil {
			return err
		}
	}

	st := &scanState{
		lowVal:  lowVal,
		highVal: highVal,
		lowOp:   lowOp,
		highOp:  highOp,
	}

	pageNo, page, err := ix.descendToLeaf(lowVal)
	if err != nil {
		return err
	}
	st.pageNo, st.page = pageNo, page

	if err := ix.seekFirst(st); err != nil {
		return err
	}

	ix.scan = st
	return nil
}

// descendToLeaf walks from the root to the leaf that would hold the probe
// key, pinning one page per level and returning the leaf still pinned.
func (ix *Index) descendToLeaf(key KeyType) (uint32, *storage.Page, error) {
	pageNo := ix.rootPageNo
	isLeaf := ix.rootIsLeaf()

	for !isLeaf {
		page, err := ix.bm.ReadPage(ix.file, pageNo)
		if err != nil {
			return 0, nil, err
		}
		node, err := asInternal(page)
		if err != nil {
			_ = ix.bm.UnpinPage(ix.file, pageNo, false)
			return 0, nil, err
		}

		childNo := node.searchChild(key)
		childIsLeaf := node.level() == 1

		if err := ix.bm.UnpinPage(ix.file, pageNo, false); err != nil {
			return 0, nil, err
		}
		pageNo, isLeaf = childNo, childIsLeaf
	}

	page, err := ix.bm.ReadPage(ix.file, pageNo)
	if err != nil {
		return 0, nil, err
	}
	return pageNo, page, nil
}

// seekFirst positions the cursor at the first qualifying entry, starting at
// the pinned leaf the descent chose. The descent lands on the leaf that
// would contain lowVal itself; with a strict low bound every qualifying key
// may live further right, so exhausted leaves are crossed via the sibling
// link before giving up. On failure the pinned leaf is released and
// ErrNoSuchKeyFound returned.
func (ix *Index) seekFirst(st *scanState) error {
	for {
		leaf, err := asLeaf(st.page)
		if err != nil {
			_ = ix.bm.UnpinPage(ix.file, st.pageNo, false)
			return err
		}

		for i := 0; i < leafCapacity && leaf.slotUsed(i); i++ {
			k := leaf.keyAt(i)
			if st.checkValid(k) {
				st.nextEntry = i
				return nil
			}
			if st.aboveHigh(k) {
				_ = ix.bm.UnpinPage(ix.file, st.pageNo, false)
				return ErrNoSuchKeyFound
			}
		}

		sibNo := leaf.rightSib()
		if err := ix.bm.UnpinPage(ix.file, st.pageNo, false); err != nil {
			return err
		}
		if sibNo == 0 {
			return ErrNoSuchKeyFound
		}

		page, err := ix.bm.ReadPage(ix.file, sibNo)
		if err != nil {
			return err
		}
		st.pageNo, st.page = sibNo, page
	}
}

// ScanNext emits the record id of the next qualifying entry. An exhausted
// leaf is left behind via the sibling link; a key past the high bound, or
// running out of leaves, terminates the scan with ErrIndexScanCompleted and
// returns the index to the idle state.
func (ix *Index) ScanNext(rid *heap.RecordID) error {
	if ix.scan == nil {
		return ErrScanNotInitialized
	}
	st := ix.scan

	for {
		leaf, err := asLeaf(st.page)
		if err != nil {
			return err
		}

		if st.nextEntry >= leafCapacity || !leaf.slotUsed(st.nextEntry) {
			sibNo := leaf.rightSib()
			if err := ix.bm.UnpinPage(ix.file, st.pageNo, false); err != nil {
				return err
			}
			if sibNo == 0 {
				ix.scan = nil
				return ErrIndexScanCompleted
			}

			page, err := ix.bm.ReadPage(ix.file, sibNo)
			if err != nil {
				ix.scan = nil
				return err
			}
			st.pageNo, st.page, st.nextEntry = sibNo, page, 0
			continue
		}

		k := leaf.keyAt(st.nextEntry)
		if !st.checkValid(k) {
			if err := ix.bm.UnpinPage(ix.file, st.pageNo, false); err != nil {
				return err
			}
			ix.scan = nil
			return ErrIndexScanCompleted
		}

		*rid = leaf.ridAt(st.nextEntry)
		st.nextEntry++
		return nil
	}
}

// EndScan terminates the live scan, releasing its pinned leaf.
func (ix *Index) EndScan() error {
	if ix.scan == nil {
		return ErrScanNotInitialized
	}

	st := ix.scan
	ix.scan = nil
	if st.page != nil {
		return ix.bm.UnpinPage(ix.file, st.pageNo, false)
	}
	return nil
}
