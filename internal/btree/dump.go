package btree

import (
	"fmt"
	"math"
	"strings"
)

// DumpLeaves walks the leaf chain left to right and renders each leaf's keys
// on one line, for debugging and for tests that assert the chain.
func (ix *Index) DumpLeaves() (string, error) {
	pageNo, page, err := ix.descendToLeaf(math.MinInt64)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for {
		leaf, err := asLeaf(page)
		if err != nil {
			_ = ix.bm.UnpinPage(ix.file, pageNo, false)
			return "", err
		}

		fmt.Fprintf(&b, "leaf %d:", pageNo)
		for i := 0; i < leafCapacity && leaf.slotUsed(i); i++ {
			fmt.Fprintf(&b, " %d", leaf.keyAt(i))
		}
		b.WriteByte('\n')

		sibNo := leaf.rightSib()
		if err := ix.bm.UnpinPage(ix.file, pageNo, false); err != nil {
			return "", err
		}
		if sibNo == 0 {
			return b.String(), nil
		}

		page, err = ix.bm.ReadPage(ix.file, sibNo)
		if err != nil {
			return "", err
		}
		pageNo = sibNo
	}
}
