package btree

import "errors"

var (
	// ErrBadIndexInfo reports that an existing index file's meta page
	// disagrees with the arguments it was reopened with.
	ErrBadIndexInfo = errors.New("btree: index metadata does not match open arguments")

	// ErrBadOpcodes reports an invalid operator pair for a range scan.
	ErrBadOpcodes = errors.New("btree: low operator must be GT/GTE and high operator LT/LTE")

	// ErrBadScanRange reports lowVal > highVal.
	ErrBadScanRange = errors.New("btree: low value greater than high value")

	// ErrNoSuchKeyFound reports that no key in the tree satisfies the scan
	// predicate.
	ErrNoSuchKeyFound = errors.New("btree: no key in scan range")

	// ErrScanNotInitialized reports ScanNext or EndScan outside an active
	// scan.
	ErrScanNotInitialized = errors.New("btree: no scan in progress")

	// ErrIndexScanCompleted reports that the active scan has emitted its
	// last qualifying entry.
	ErrIndexScanCompleted = errors.New("btree: scan exhausted")

	// ErrLayout reports a page buffer smaller than the node layout requires.
	ErrLayout = errors.New("btree: page buffer smaller than node layout")

	// ErrKeyType reports an attribute type this build does not instantiate.
	ErrKeyType = errors.New("btree: unsupported key type")
)
