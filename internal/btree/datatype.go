package btree

import "github.com/fwu96/btreeindex/internal/heap"

// KeyType is the key type carried by index entries. Only 64-bit integer keys
// are instantiated; DOUBLE and STRING share the same node layout with the
// element width substituted and are not built here.
type KeyType = int64

// Datatype identifies the attribute type an index is built over.
type Datatype uint32

const (
	Integer Datatype = 0
	Double  Datatype = 1
	String  Datatype = 2
)

func (d Datatype) String() string {
	switch d {
	case Integer:
		return "integer"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Operator is a range-scan comparison operator. The low bound takes GT or
// GTE, the high bound LT or LTE.
type Operator uint8

const (
	LT Operator = iota
	LTE
	GTE
	GT
)

func (op Operator) String() string {
	switch op {
	case LT:
		return "<"
	case LTE:
		return "<="
	case GTE:
		return ">="
	case GT:
		return ">"
	default:
		return "?"
	}
}

// ridKeyPair is a (key, record id) entry on its way into a leaf.
type ridKeyPair struct {
	key KeyType
	rid heap.RecordID
}

// pageKeyPair is a (separator key, page number) promotion bubbled up from a
// split, or a child entry on its way into an internal node.
type pageKeyPair struct {
	key    KeyType
	pageNo uint32
}
