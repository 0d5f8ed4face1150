package main

import (
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/fwu96/btreeindex/internal"
	"github.com/fwu96/btreeindex/internal/btree"
	"github.com/fwu96/btreeindex/internal/bufferpool"
	"github.com/fwu96/btreeindex/internal/heap"
	"github.com/fwu96/btreeindex/pkg/bx"
)

// Tuple layout of the demo relation:
// [i int64][d float64][s 24 bytes], key = i at offset 0.
const (
	tupleSize = 40
	keyOffset = 0
)

func main() {
	workdir := "data/manual_test"
	capacity := bufferpool.DefaultCapacity

	if cfg, err := internal.LoadConfig("config.yml"); err == nil {
		workdir = cfg.Storage.Workdir
		capacity = cfg.Bufferpool.Capacity
		if cfg.Debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	bm := bufferpool.NewManager(capacity)

	tbl, err := heap.CreateTable(bm, workdir, "relA", tupleSize)
	if err != nil {
		log.Fatalf("CreateTable: %v", err)
	}
	defer func() { _ = tbl.Close() }()

	// Insert 5000 tuples with keys in reverse order.
	for i := 4999; i >= 0; i-- {
		tup := make([]byte, tupleSize)
		bx.PutI64At(tup, keyOffset, int64(i))
		bx.PutU64At(tup, 8, math.Float64bits(float64(i)))
		copy(tup[16:], fmt.Sprintf("record-%d", i))
		if _, err := tbl.Insert(tup); err != nil {
			log.Fatalf("Insert: %v", err)
		}
	}

	idx, err := btree.Open(bm, workdir, tbl, keyOffset, btree.Integer)
	if err != nil {
		log.Fatalf("btree.Open: %v", err)
	}
	defer idx.Close()
	fmt.Println("opened index", idx.Name())

	if err := idx.StartScan(25, btree.GTE, 40, btree.LT); err != nil {
		log.Fatalf("StartScan: %v", err)
	}
	fmt.Println("keys in [25, 40):")
	for {
		var rid heap.RecordID
		if err := idx.ScanNext(&rid); err != nil {
			break
		}
		tup, err := tbl.Get(rid)
		if err != nil {
			log.Fatalf("Get: %v", err)
		}
		fmt.Printf("  key=%d rid={%d %d} payload=%q\n",
			bx.I64At(tup, keyOffset), rid.PageNo, rid.Slot, string(tup[16:]))
	}
}
