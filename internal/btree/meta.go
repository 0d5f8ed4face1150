package btree

import (
	"strings"

	"github.com/fwu96/btreeindex/internal/storage"
	"github.com/fwu96/btreeindex/pkg/bx"
)

// The meta page is always page 1 of an index file and holds the identity of
// the index plus the authoritative root page number.
//
//	+---------------------------+ 0
//	| relationName (20 bytes)   |
//	+---------------------------+ 20
//	| attrByteOffset (i32)      |
//	+---------------------------+ 24
//	| attrType (u32)            |
//	+---------------------------+ 28
//	| rootPageNo (u32)          |
//	+---------------------------+ 32
const (
	metaPageNo = 1

	relationNameLen   = 20
	offAttrByteOffset = relationNameLen
	offAttrType       = offAttrByteOffset + 4
	offRootPageNo     = offAttrType + 4

	metaLayoutSize = offRootPageNo + 4
)

// metaNode is a typed read/write view over the meta page's bytes.
type metaNode struct {
	page *storage.Page
}

func asMeta(p *storage.Page) (metaNode, error) {
	if len(p.Bytes()) < metaLayoutSize {
		return metaNode{}, ErrLayout
	}
	return metaNode{page: p}, nil
}

func (m metaNode) relationName() string {
	raw := m.page.Bytes()[:relationNameLen]
	return strings.TrimRight(string(raw), "\x00")
}

func (m metaNode) setRelationName(name string) {
	b := m.page.Bytes()[:relationNameLen]
	for i := range b {
		b[i] = 0
	}
	copy(b, name)
}

func (m metaNode) attrByteOffset() int {
	return int(bx.I32At(m.page.Bytes(), offAttrByteOffset))
}

func (m metaNode) setAttrByteOffset(off int) {
	bx.PutI32At(m.page.Bytes(), offAttrByteOffset, int32(off))
}

func (m metaNode) attrType() Datatype {
	return Datatype(bx.U32At(m.page.Bytes(), offAttrType))
}

func (m metaNode) setAttrType(t Datatype) {
	bx.PutU32At(m.page.Bytes(), offAttrType, uint32(t))
}

func (m metaNode) rootPageNo() uint32 {
	return bx.U32At(m.page.Bytes(), offRootPageNo)
}

func (m metaNode) setRootPageNo(no uint32) {
	bx.PutU32At(m.page.Bytes(), offRootPageNo, no)
}
