package heap

import "errors"

// ErrEndOfFile signals that a FileScan has run past the last tuple. Bulk load
// treats it as the expected terminal outcome, not a failure.
var ErrEndOfFile = errors.New("heap: end of file")

// FileScan iterates every tuple of a table in (page, slot) order. Next pins
// one page at a time and unpins it before returning, so no page stays pinned
// between calls.
type FileScan struct {
	table  *Table
	pageNo uint32
	slot   int
	record []byte
	done   bool
}

// Scan positions a new scan before the first tuple.
func (t *Table) Scan() *FileScan {
	return &FileScan{table: t, pageNo: 1, slot: 0}
}

// Next advances to the following tuple and returns its record id, or
// ErrEndOfFile past the last tuple.
func (s *FileScan) Next() (RecordID, error) {
	if s.done {
		return RecordID{}, ErrEndOfFile
	}

	for s.pageNo <= s.table.File.PageCount() {
		page, err := s.table.BM.ReadPage(s.table.File, s.pageNo)
		if err != nil {
			return RecordID{}, err
		}

		hp := hpage{page: page, tupleSize: s.table.TupleSize}
		if s.slot < hp.count() {
			s.slot++
			raw, err := hp.read(s.slot)
			if err != nil {
				_ = s.table.BM.UnpinPage(s.table.File, s.pageNo, false)
				return RecordID{}, err
			}

			s.record = make([]byte, len(raw))
			copy(s.record, raw)

			if err := s.table.BM.UnpinPage(s.table.File, s.pageNo, false); err != nil {
				return RecordID{}, err
			}
			return RecordID{PageNo: s.pageNo, Slot: uint16(s.slot)}, nil
		}

		if err := s.table.BM.UnpinPage(s.table.File, s.pageNo, false); err != nil {
			return RecordID{}, err
		}
		s.pageNo++
		s.slot = 0
	}

	s.done = true
	s.record = nil
	return RecordID{}, ErrEndOfFile
}

// Record returns the tuple bytes of the most recent successful Next.
func (s *FileScan) Record() []byte {
	return s.record
}
