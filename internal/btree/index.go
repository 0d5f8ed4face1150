package btree

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fwu96/btreeindex/internal/bufferpool"
	"github.com/fwu96/btreeindex/internal/heap"
	"github.com/fwu96/btreeindex/internal/storage"
	"github.com/fwu96/btreeindex/pkg/bx"
)

// initialRootPageNo is the page allocated for the root leaf at create time.
// The root only ever moves upward: page 2 is a leaf for the life of the
// index, and any later root is an internal node on a higher page number, so
// rootPageNo == 2 doubles as "the root is a leaf".
const initialRootPageNo = 2

// Index is a B+-tree over one integer attribute of a heap relation. It maps
// each tuple's key to the record id of the tuple that produced it. At most
// one scan is live at a time.
type Index struct {
	name string
	file *storage.BlobFile
	bm   *bufferpool.Manager

	relationName   string
	attrByteOffset int
	attrType       Datatype
	rootPageNo     uint32

	scan *scanState
}

// IndexFileName derives the index file name from the relation name and the
// indexed attribute's byte offset.
func IndexFileName(relationName string, attrByteOffset int) string {
	return fmt.Sprintf("%s.%d", relationName, attrByteOffset)
}

// Open creates or opens the index for one attribute of the relation.
//
// When the index file does not exist yet it is created with a meta page and
// an empty root leaf, then bulk-loaded by scanning every tuple of the
// relation. When the file exists its meta page is validated against the
// arguments (ErrBadIndexInfo on any mismatch) and the tree is used as is —
// the relation is not rescanned.
func Open(bm *bufferpool.Manager, dir string, rel *heap.Table, attrByteOffset int, attrType Datatype) (*Index, error) {
	if attrType != Integer {
		return nil, fmt.Errorf("%w: %s", ErrKeyType, attrType)
	}
	if attrByteOffset < 0 || attrByteOffset+keySize > rel.TupleSize {
		return nil, fmt.Errorf("btree: attribute offset %d outside %d-byte tuple", attrByteOffset, rel.TupleSize)
	}

	name := IndexFileName(rel.Name, attrByteOffset)
	path := filepath.Join(dir, name)

	ix := &Index{
		name:           name,
		bm:             bm,
		relationName:   rel.Name,
		attrByteOffset: attrByteOffset,
		attrType:       attrType,
	}

	file, err := storage.CreateBlobFile(path)
	switch {
	case err == nil:
		ix.file = file
		if err := ix.create(rel); err != nil {
			_ = file.Close()
			return nil, err
		}
	case errors.Is(err, storage.ErrFileExists):
		file, err = storage.OpenBlobFile(path)
		if err != nil {
			return nil, err
		}
		ix.file = file
		if err := ix.reopen(); err != nil {
			_ = file.Close()
			return nil, err
		}
	default:
		return nil, err
	}

	return ix, nil
}

// Name is the index file's base name, <relationName>.<attrByteOffset>.
func (ix *Index) Name() string { return ix.name }

func (ix *Index) rootIsLeaf() bool {
	return ix.rootPageNo == initialRootPageNo
}

// create lays out a fresh index file (meta page 1, empty root leaf page 2)
// and bulk-loads it from the relation.
func (ix *Index) create(rel *heap.Table) error {
	metaNo, metaPage, err := ix.bm.AllocPage(ix.file)
	if err != nil {
		return err
	}
	if metaNo != metaPageNo {
		_ = ix.bm.UnpinPage(ix.file, metaNo, false)
		return fmt.Errorf("btree: meta page allocated at %d, want %d", metaNo, metaPageNo)
	}

	meta, err := asMeta(metaPage)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, metaNo, false)
		return err
	}
	meta.setRelationName(ix.relationName)
	meta.setAttrByteOffset(ix.attrByteOffset)
	meta.setAttrType(ix.attrType)
	meta.setRootPageNo(initialRootPageNo)
	if err := ix.bm.UnpinPage(ix.file, metaNo, true); err != nil {
		return err
	}

	rootNo, _, err := ix.bm.AllocPage(ix.file)
	if err != nil {
		return err
	}
	if rootNo != initialRootPageNo {
		_ = ix.bm.UnpinPage(ix.file, rootNo, false)
		return fmt.Errorf("btree: root leaf allocated at %d, want %d", rootNo, initialRootPageNo)
	}
	// A freshly allocated page is zeroed, which is exactly an empty leaf.
	if err := ix.bm.UnpinPage(ix.file, rootNo, true); err != nil {
		return err
	}

	ix.rootPageNo = initialRootPageNo
	return ix.bulkLoad(rel)
}

// reopen validates the meta page against the open arguments and adopts the
// persisted root.
func (ix *Index) reopen() error {
	page, err := ix.bm.ReadPage(ix.file, metaPageNo)
	if err != nil {
		return err
	}
	meta, err := asMeta(page)
	if err != nil {
		_ = ix.bm.UnpinPage(ix.file, metaPageNo, false)
		return err
	}

	ok := meta.relationName() == truncateName(ix.relationName) &&
		meta.attrByteOffset() == ix.attrByteOffset &&
		meta.attrType() == ix.attrType
	rootPageNo := meta.rootPageNo()

	if err := ix.bm.UnpinPage(ix.file, metaPageNo, false); err != nil {
		return err
	}
	if !ok {
		return ErrBadIndexInfo
	}

	ix.rootPageNo = rootPageNo
	slog.Debug("btree.reopen",
		"index", ix.name,
		"rootPageNo", rootPageNo,
	)
	return nil
}

// truncateName mirrors the meta page's bounded relation name field.
func truncateName(name string) string {
	if len(name) > relationNameLen {
		return name[:relationNameLen]
	}
	return name
}

// bulkLoad feeds every tuple of the relation through InsertEntry, extracting
// the key from the tuple's attribute offset. The scan's end-of-file is the
// expected terminal outcome and triggers the flush.
func (ix *Index) bulkLoad(rel *heap.Table) error {
	fs := rel.Scan()
	var n int
	for {
		rid, err := fs.Next()
		if errors.Is(err, heap.ErrEndOfFile) {
			break
		}
		if err != nil {
			return err
		}

		key := bx.I64At(fs.Record(), ix.attrByteOffset)
		if err := ix.InsertEntry(key, rid); err != nil {
			return err
		}
		n++
	}

	slog.Debug("btree.bulkload.done",
		"index", ix.name,
		"entries", n,
	)
	return ix.bm.FlushFile(ix.file)
}

// Close ends any live scan, flushes the index file, and releases the file
// handle. Errors are logged, not propagated: close must always release local
// resources.
func (ix *Index) Close() {
	if ix.scan != nil {
		_ = ix.EndScan()
	}
	if err := ix.bm.FlushFile(ix.file); err != nil {
		slog.Error("btree.close.flush", "index", ix.name, "err", err)
	}
	if err := ix.file.Close(); err != nil {
		slog.Error("btree.close.file", "index", ix.name, "err", err)
	}
}
