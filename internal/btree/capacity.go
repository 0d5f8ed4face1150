package btree

import "github.com/fwu96/btreeindex/internal/storage"

// On-page element widths. Every node is one page; capacities fall out of the
// page size and these widths alone.
const (
	keySize    = 8 // KeyType
	pageNoSize = 4
	slotSize   = 2
	ridSize    = pageNoSize + slotSize
	levelSize  = 4
	sibPtrSize = 4

	// leafCapacity is the number of (key, rid) slots in a leaf:
	// the page minus the right-sibling pointer, divided among entries.
	leafCapacity = (storage.PageSize - sibPtrSize) / (keySize + ridSize)

	// internalCapacity is the number of key slots in an internal node:
	// the page minus the level field and the extra child pointer, divided
	// among (key, child) pairs. Child slots number internalCapacity+1.
	internalCapacity = (storage.PageSize - levelSize - pageNoSize) / (keySize + pageNoSize)
)
