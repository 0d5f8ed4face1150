package heap

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fwu96/btreeindex/internal/bufferpool"
	"github.com/fwu96/btreeindex/internal/storage"
)

var ErrTupleSize = errors.New("heap: tuple length != table tuple size")

// Table is a heap relation of fixed-width raw tuples. The index layer treats
// tuples as opaque bytes with the key at a known byte offset.
type Table struct {
	Name      string
	TupleSize int
	File      *storage.BlobFile
	BM        *bufferpool.Manager
}

// CreateTable creates the relation file <dir>/<name> and returns an empty
// table. Fails with storage.ErrFileExists when the relation already exists.
func CreateTable(bm *bufferpool.Manager, dir, name string, tupleSize int) (*Table, error) {
	if tupleSize <= 0 || tupleSize > storage.PageSize-pageHeaderSize {
		return nil, fmt.Errorf("heap: bad tuple size %d", tupleSize)
	}

	f, err := storage.CreateBlobFile(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	return &Table{Name: name, TupleSize: tupleSize, File: f, BM: bm}, nil
}

// OpenTable opens an existing relation file.
func OpenTable(bm *bufferpool.Manager, dir, name string, tupleSize int) (*Table, error) {
	f, err := storage.OpenBlobFile(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	return &Table{Name: name, TupleSize: tupleSize, File: f, BM: bm}, nil
}

// Insert appends the tuple to the last page, allocating a new page when the
// last one is full, and returns the tuple's record id.
func (t *Table) Insert(tuple []byte) (RecordID, error) {
	if len(tuple) != t.TupleSize {
		return RecordID{}, ErrTupleSize
	}

	if last := t.File.PageCount(); last > 0 {
		page, err := t.BM.ReadPage(t.File, last)
		if err != nil {
			return RecordID{}, err
		}

		hp := hpage{page: page, tupleSize: t.TupleSize}
		slot, err := hp.insert(tuple)
		if err == nil {
			if err := t.BM.UnpinPage(t.File, last, true); err != nil {
				return RecordID{}, err
			}
			return RecordID{PageNo: last, Slot: uint16(slot)}, nil
		}
		if !errors.Is(err, ErrNoSpace) {
			_ = t.BM.UnpinPage(t.File, last, false)
			return RecordID{}, err
		}
		_ = t.BM.UnpinPage(t.File, last, false)
	}

	pageNo, page, err := t.BM.AllocPage(t.File)
	if err != nil {
		return RecordID{}, err
	}

	hp := hpage{page: page, tupleSize: t.TupleSize}
	slot, err := hp.insert(tuple)
	if err != nil {
		_ = t.BM.UnpinPage(t.File, pageNo, false)
		return RecordID{}, err
	}

	if err := t.BM.UnpinPage(t.File, pageNo, true); err != nil {
		return RecordID{}, err
	}
	return RecordID{PageNo: pageNo, Slot: uint16(slot)}, nil
}

// Get reads one tuple by record id. The returned slice is a copy; the page is
// unpinned before returning.
func (t *Table) Get(rid RecordID) ([]byte, error) {
	page, err := t.BM.ReadPage(t.File, rid.PageNo)
	if err != nil {
		return nil, err
	}

	hp := hpage{page: page, tupleSize: t.TupleSize}
	raw, err := hp.read(int(rid.Slot))
	if err != nil {
		_ = t.BM.UnpinPage(t.File, rid.PageNo, false)
		return nil, err
	}

	out := make([]byte, len(raw))
	copy(out, raw)

	if err := t.BM.UnpinPage(t.File, rid.PageNo, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Close flushes the relation through the buffer manager and closes the file.
func (t *Table) Close() error {
	if err := t.BM.FlushFile(t.File); err != nil {
		return err
	}
	return t.File.Close()
}
