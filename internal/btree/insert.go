package btree

import (
	"log/slog"

	"github.com/fwu96/btreeindex/internal/heap"
)

// InsertEntry adds one (key, rid) entry. The descent starts at the root; a
// leaf split propagates a promotion upward through internal nodes, and a
// promotion escaping the root grows the tree by one level.
func (ix *Index) InsertEntry(key KeyType, rid heap.RecordID) error {
	pair := ridKeyPair{key: key, rid: rid}

	rootWasLeaf := ix.rootIsLeaf()
	promo, err := ix.insert(pair, ix.rootPageNo, rootWasLeaf)
	if err != nil {
		return err
	}
	if promo == nil {
		return nil
	}
	return ix.growRoot(*promo, rootWasLeaf)
}

// insert descends to the leaf for pair.key and inserts there. The return
// value is the promotion produced by a split at this level, or nil when the
// subtree absorbed the entry.
func (ix *Index) insert(pair ridKeyPair, pageNo uint32, isLeaf bool) (*pageKeyPair, error) {
	page, err := ix.bm.ReadPage(ix.file, pageNo)
	if err != nil {
		return nil, err
	}

	if isLeaf {
		leaf, err := asLeaf(page)
		if err != nil {
			_ = ix.bm.UnpinPage(ix.file, pageNo, false)
			return nil, err
		}

		if !leaf.full() {
			leaf.insert(pair)
			return nil, ix.bm.UnpinPage(ix.file, pageNo, true)
		}

		promo, err := ix.splitLeaf(leaf, pageNo, pair)
		if err != nil {
			_ = ix.bm.UnpinPage(ix.file, pageNo, true)
			return nil, err
		}
		return promo, ix.bm.UnpinPage(ix.file, pageNo, true)
	}

	node, err := asInternal(page)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, pageNo, false)
		return nil, err
	}

	childNo := node.searchChild(pair.key)
	childPromo, err := ix.insert(pair, childNo, node.level() == 1)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, pageNo, false)
		return nil, err
	}

	if childPromo == nil {
		// The frame itself is untouched but descendants changed under it;
		// unpin dirty to stay on the safe side.
		return nil, ix.bm.UnpinPage(ix.file, pageNo, true)
	}

	if !node.full() {
		node.insertPromotion(*childPromo)
		return nil, ix.bm.UnpinPage(ix.file, pageNo, true)
	}

	promo, err := ix.splitNonLeaf(pageNo, node, *childPromo)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, pageNo, true)
		return nil, err
	}
	return promo, ix.bm.UnpinPage(ix.file, pageNo, true)
}

// splitLeaf moves the upper half of a full leaf into a freshly allocated
// sibling, relinks the sibling chain, inserts the incoming pair on the side
// its key belongs, and returns the promotion for the parent. The separator
// key is duplicated into the parent and stays present in the sibling leaf.
// The caller unpins the original leaf; the new sibling is unpinned here.
func (ix *Index) splitLeaf(leaf leafNode, leafPageNo uint32, pair ridKeyPair) (*pageKeyPair, error) {
	sibNo, sibPage, err := ix.bm.AllocPage(ix.file)
	if err != nil {
		return nil, err
	}
	sib, err := asLeaf(sibPage)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, sibNo, false)
		return nil, err
	}

	half := leafCapacity / 2
	for i := half; i < leafCapacity; i++ {
		sib.setKeyAt(i-half, leaf.keyAt(i))
		sib.setRIDAt(i-half, leaf.ridAt(i))
		leaf.setKeyAt(i, 0)
		leaf.setRIDAt(i, heap.RecordID{})
	}

	sib.setRightSib(leaf.rightSib())
	leaf.setRightSib(sibNo)

	if pair.key < sib.keyAt(0) {
		leaf.insert(pair)
	} else {
		sib.insert(pair)
	}

	promo := pageKeyPair{key: sib.keyAt(0), pageNo: sibNo}
	if err := ix.bm.UnpinPage(ix.file, sibNo, true); err != nil {
		return nil, err
	}

	slog.Debug("btree.leaf.split",
		"page", leafPageNo,
		"sibling", sibNo,
		"sepKey", promo.key,
	)
	return &promo, nil
}

// splitNonLeaf moves the upper keys and pointers of a full internal node
// into a new sibling at the same level. The middle key is promoted, not
// copied: it leaves the node and becomes the separator returned to the
// parent. The caller unpins the original node; the sibling is unpinned here.
func (ix *Index) splitNonLeaf(pageNo uint32, node internalNode, incoming pageKeyPair) (*pageKeyPair, error) {
	sibNo, sibPage, err := ix.bm.AllocPage(ix.file)
	if err != nil {
		return nil, err
	}
	sib, err := asInternal(sibPage)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, sibNo, false)
		return nil, err
	}
	sib.setLevel(node.level())

	mid := internalCapacity / 2
	for i := mid + 1; i < internalCapacity; i++ {
		sib.setKeyAt(i-mid-1, node.keyAt(i))
		node.setKeyAt(i, 0)
		sib.setChildAt(i-mid-1, node.childAt(i))
		node.setChildAt(i, 0)
	}
	sib.setChildAt(internalCapacity-mid-1, node.childAt(internalCapacity))
	node.setChildAt(internalCapacity, 0)

	midKey := node.keyAt(mid)
	node.setKeyAt(mid, 0)

	// The promoted middle key is the boundary between the two halves: an
	// incoming separator at or above it belongs in the sibling along with
	// the child it points into.
	if incoming.key < midKey {
		node.insertPromotion(incoming)
	} else {
		sib.insertPromotion(incoming)
	}

	promo := pageKeyPair{key: midKey, pageNo: sibNo}
	if err := ix.bm.UnpinPage(ix.file, sibNo, true); err != nil {
		return nil, err
	}

	slog.Debug("btree.internal.split",
		"page", pageNo,
		"sibling", sibNo,
		"sepKey", promo.key,
		"level", node.level(),
	)
	return &promo, nil
}

// growRoot allocates a new internal root above the split old root and points
// the meta page at it. The old root keeps its page; it simply stops being the
// root.
func (ix *Index) growRoot(promo pageKeyPair, childrenAreLeaves bool) error {
	newRootNo, rootPage, err := ix.bm.AllocPage(ix.file)
	if err != nil {
		return err
	}
	root, err := asInternal(rootPage)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, newRootNo, false)
		return err
	}

	if childrenAreLeaves {
		root.setLevel(1)
	} else {
		root.setLevel(0)
	}
	root.initRoot(ix.rootPageNo, promo)

	if err := ix.bm.UnpinPage(ix.file, newRootNo, true); err != nil {
		return err
	}

	if err := ix.writeRootPageNo(newRootNo); err != nil {
		return err
	}

	slog.Debug("btree.root.grow",
		"oldRoot", ix.rootPageNo,
		"newRoot", newRootNo,
		"sepKey", promo.key,
	)
	ix.rootPageNo = newRootNo
	return nil
}

// writeRootPageNo rewrites the meta page's root pointer.
func (ix *Index) writeRootPageNo(no uint32) error {
	page, err := ix.bm.ReadPage(ix.file, metaPageNo)
	if err != nil {
		return err
	}
	meta, err := asMeta(page)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, metaPageNo, false)
		return err
	}
	meta.setRootPageNo(no)
	return ix.bm.UnpinPage(ix.file, metaPageNo, true)
}
