package btree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fwu96/btreeindex/internal/heap"
)

// drain pulls qualifying rids until the scan terminates, asserting the
// terminal error is ErrIndexScanCompleted.
func drain(t *testing.T, ix *Index) []heap.RecordID {
	t.Helper()

	var out []heap.RecordID
	for {
		var rid heap.RecordID
		err := ix.ScanNext(&rid)
		if err != nil {
			require.ErrorIs(t, err, ErrIndexScanCompleted)
			return out
		}
		out = append(out, rid)
	}
}

func TestScanSingleEntryLeaf(t *testing.T) {
	env, rids := newTestEnv(t, []KeyType{7})
	ix := env.openIndex(t)

	require.NoError(t, ix.StartScan(0, GT, 10, LT))
	got := drain(t, ix)
	require.Equal(t, rids[7], got)
}

func TestScanHalfOpenRange(t *testing.T) {
	env, rids := newTestEnv(t, seqKeys(5001))
	ix := env.openIndex(t)

	require.NoError(t, ix.StartScan(25, GTE, 1000, LT))
	got := drain(t, ix)

	require.Len(t, got, 975)
	for i, r := range got {
		require.Equal(t, rids[KeyType(25+i)][0], r)
	}
}

func TestScanTopBoundaryInclusive(t *testing.T) {
	env, rids := newTestEnv(t, revKeys(5001))
	ix := env.openIndex(t)

	require.NoError(t, ix.StartScan(4999, GT, 5000, LTE))
	got := drain(t, ix)

	require.Len(t, got, 1)
	require.Equal(t, rids[5000][0], got[0])
}

func TestScanStrictEmptyBoundary(t *testing.T) {
	env, _ := newTestEnv(t, revKeys(5001))
	ix := env.openIndex(t)

	// key > 4999 and key <= 4999 cannot both hold.
	require.ErrorIs(t, ix.StartScan(4999, GT, 4999, LTE), ErrNoSuchKeyFound)
}

func TestScanBadOpcodes(t *testing.T) {
	env, _ := newTestEnv(t, shuffledKeys(5001, 7))
	ix := env.openIndex(t)

	require.ErrorIs(t, ix.StartScan(100, LT, 200, LT), ErrBadOpcodes)
	require.ErrorIs(t, ix.StartScan(100, GT, 200, GT), ErrBadOpcodes)
	require.ErrorIs(t, ix.StartScan(100, LTE, 200, LTE), ErrBadOpcodes)
}

func TestScanBadRange(t *testing.T) {
	env, _ := newTestEnv(t, seqKeys(1000))
	ix := env.openIndex(t)

	require.ErrorIs(t, ix.StartScan(500, GT, 400, LT), ErrBadScanRange)
}

func TestRestartScanGetsFreshCursor(t *testing.T) {
	env, rids := newTestEnv(t, seqKeys(1000))
	ix := env.openIndex(t)

	require.NoError(t, ix.StartScan(10, GTE, 20, LT))
	first := drain(t, ix)
	require.Len(t, first, 10)

	// Scan again without an explicit EndScan in between.
	require.NoError(t, ix.StartScan(10, GTE, 20, LT))
	second := drain(t, ix)
	require.Equal(t, first, second)

	// And restart while a scan is still active.
	require.NoError(t, ix.StartScan(10, GTE, 20, LT))
	var rid heap.RecordID
	require.NoError(t, ix.ScanNext(&rid))
	require.Equal(t, rids[10][0], rid)

	require.NoError(t, ix.StartScan(500, GTE, 501, LT))
	third := drain(t, ix)
	require.Len(t, third, 1)
	require.Equal(t, rids[500][0], third[0])
}

func TestScanRangeAboveAllKeys(t *testing.T) {
	env, _ := newTestEnv(t, seqKeys(5001))
	ix := env.openIndex(t)

	require.ErrorIs(t, ix.StartScan(10_000_000, GT, 20_000_000, LT), ErrNoSuchKeyFound)
}

func TestScanRangeBelowAllKeys(t *testing.T) {
	env, _ := newTestEnv(t, seqKeys(100))
	ix := env.openIndex(t)

	require.ErrorIs(t, ix.StartScan(-2000, GT, -1000, LT), ErrNoSuchKeyFound)
}

func TestScanGapBetweenKeys(t *testing.T) {
	env, _ := newTestEnv(t, []KeyType{1, 3, 7})
	ix := env.openIndex(t)

	// No key lies strictly between 3 and 7.
	require.ErrorIs(t, ix.StartScan(3, GT, 7, LT), ErrNoSuchKeyFound)
}

func TestStrictLowBoundCrossesLeafBoundary(t *testing.T) {
	// One leaf split: the left leaf ends at leafCapacity/2 - 1. A strict
	// low bound on exactly that key descends into the left leaf, where
	// nothing qualifies; the first qualifying entry lives in the sibling.
	env, rids := newTestEnv(t, seqKeys(leafCapacity+1))
	ix := env.openIndex(t)
	require.False(t, ix.rootIsLeaf())

	boundary := KeyType(leafCapacity/2 - 1)
	require.NoError(t, ix.StartScan(boundary, GT, boundary+9, LT))
	got := drain(t, ix)
	require.Len(t, got, 8)
	for i, r := range got {
		require.Equal(t, rids[boundary+1+KeyType(i)][0], r)
	}
}

func TestScanNotInitialized(t *testing.T) {
	env, _ := newTestEnv(t, seqKeys(10))
	ix := env.openIndex(t)

	var rid heap.RecordID
	require.ErrorIs(t, ix.ScanNext(&rid), ErrScanNotInitialized)
	require.ErrorIs(t, ix.EndScan(), ErrScanNotInitialized)

	// A terminal ScanNext returns the index to idle.
	require.NoError(t, ix.StartScan(0, GTE, 100, LTE))
	_ = drain(t, ix)
	require.ErrorIs(t, ix.ScanNext(&rid), ErrScanNotInitialized)
	require.ErrorIs(t, ix.EndScan(), ErrScanNotInitialized)
}

func TestEndScanReleasesLeaf(t *testing.T) {
	env, _ := newTestEnv(t, seqKeys(10))
	ix := env.openIndex(t)

	require.NoError(t, ix.StartScan(0, GTE, 100, LTE))
	require.NoError(t, ix.EndScan())

	// With no pinned leaf left, the file flushes cleanly.
	require.NoError(t, ix.bm.FlushFile(ix.file))
}

func TestScanOnEmptyIndex(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	ix := env.openIndex(t)

	require.ErrorIs(t, ix.StartScan(0, GTE, 100, LTE), ErrNoSuchKeyFound)
}

func TestScanSpansManyLeaves(t *testing.T) {
	const n = 3000 // several leaves
	env, rids := newTestEnv(t, shuffledKeys(n, 99))
	ix := env.openIndex(t)

	require.NoError(t, ix.StartScan(100, GTE, 2900, LTE))
	got := drain(t, ix)
	require.Len(t, got, 2801)
	for i, r := range got {
		require.Equal(t, rids[KeyType(100+i)][0], r)
	}
}
