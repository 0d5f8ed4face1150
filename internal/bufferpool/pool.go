package bufferpool

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/fwu96/btreeindex/internal/storage"
	"github.com/fwu96/btreeindex/pkg/clockx"
)

var (
	DefaultCapacity = 128

	ErrNoFreeFrame = errors.New("bufferpool: no free frame available (all pinned)")
	ErrPagePinned  = errors.New("bufferpool: page is pinned")
)

// PageTag uniquely identifies a page across every file served by the pool.
type PageTag struct {
	File   string
	PageNo uint32
}

type Frame struct {
	Tag   PageTag
	File  *storage.BlobFile
	Page  *storage.Page
	Dirty bool
	Pin   int32
}

// Manager is a shared buffer pool over any number of blob files. Pages are
// handed out pinned; callers must unpin every page on every exit path and
// report mutations through the dirty flag. Unpinned frames are evicted in
// CLOCK order.
type Manager struct {
	mu     sync.Mutex
	frames []*Frame        // len == capacity, nil == free slot
	table  map[PageTag]int // tag -> frame index
	repl   *clockx.Clock   // tracks frame indices [0..capacity)
}

func NewManager(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{
		frames: make([]*Frame, capacity),
		table:  make(map[PageTag]int),
		repl:   clockx.New(capacity),
	}
}

// AllocPage allocates a new page in the file, pins it, and returns its page
// number together with a writable view.
func (m *Manager) AllocPage(f *storage.BlobFile) (uint32, *storage.Page, error) {
	page, err := f.AllocatePage()
	if err != nil {
		return 0, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tag := PageTag{File: f.Path(), PageNo: page.PageNo()}
	idx, err := m.grabFrame()
	if err != nil {
		return 0, nil, err
	}

	m.install(idx, tag, f, page)
	return page.PageNo(), page, nil
}

// ReadPage pins page pageNo of the file and returns a writable view. A hit
// bumps the pin count of the resident frame; a miss reads from disk, evicting
// an unpinned frame if the pool is full.
func (m *Manager) ReadPage(f *storage.BlobFile, pageNo uint32) (*storage.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag := PageTag{File: f.Path(), PageNo: pageNo}
	if idx, ok := m.table[tag]; ok {
		fr := m.frames[idx]
		wasZero := fr.Pin == 0
		fr.Pin++

		m.repl.Touch(idx)
		if wasZero {
			m.repl.SetEvictable(idx, false)
		}
		return fr.Page, nil
	}

	idx, err := m.grabFrame()
	if err != nil {
		return nil, err
	}

	page, err := f.ReadPage(pageNo)
	if err != nil {
		m.releaseFrame(idx)
		return nil, err
	}

	m.install(idx, tag, f, page)
	return page, nil
}

// UnpinPage decrements the pin count of the page. The dirty flag is sticky:
// once any unpinner reports dirty the frame stays dirty until flushed.
func (m *Manager) UnpinPage(f *storage.BlobFile, pageNo uint32, dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag := PageTag{File: f.Path(), PageNo: pageNo}
	idx, ok := m.table[tag]
	if !ok {
		return nil
	}

	fr := m.frames[idx]
	if dirty {
		fr.Dirty = true
	}

	if fr.Pin > 0 {
		fr.Pin--
		if fr.Pin == 0 {
			m.repl.SetEvictable(idx, true)
		}
	}
	return nil
}

// FlushFile writes every dirty frame belonging to the file back to disk. It
// fails with ErrPagePinned if any frame of the file is still pinned, because
// a pinned page may still be mutated by its holder.
func (m *Manager) FlushFile(f *storage.BlobFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := f.Path()
	for _, fr := range m.frames {
		if fr == nil || fr.Tag.File != key {
			continue
		}
		if fr.Pin > 0 {
			return ErrPagePinned
		}
	}

	for _, fr := range m.frames {
		if fr == nil || fr.Tag.File != key || !fr.Dirty {
			continue
		}
		if err := fr.File.WritePage(fr.Page); err != nil {
			return err
		}
		fr.Dirty = false
	}
	return nil
}

// DropFile evicts every (unpinned) frame of the file from the pool without
// writing, for callers that are discarding the file.
func (m *Manager) DropFile(f *storage.BlobFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := f.Path()
	for idx, fr := range m.frames {
		if fr == nil || fr.Tag.File != key {
			continue
		}
		if fr.Pin > 0 {
			return ErrPagePinned
		}
		delete(m.table, fr.Tag)
		m.frames[idx] = nil
		m.repl.Remove(idx)
	}
	return nil
}

// grabFrame returns the index of a free frame, evicting if necessary.
// Caller holds the mutex.
func (m *Manager) grabFrame() (int, error) {
	for i, fr := range m.frames {
		if fr == nil {
			return i, nil
		}
	}

	idx, ok := m.repl.Evict()
	if !ok {
		return -1, ErrNoFreeFrame
	}

	victim := m.frames[idx]
	if victim == nil || victim.Pin != 0 {
		if victim != nil && victim.Pin == 0 {
			m.repl.Touch(idx)
			m.repl.SetEvictable(idx, true)
		}
		return -1, ErrNoFreeFrame
	}

	if victim.Dirty {
		if err := victim.File.WritePage(victim.Page); err != nil {
			m.repl.Touch(idx)
			m.repl.SetEvictable(idx, true)
			return -1, err
		}
		slog.Debug("bufferpool.evict.writeback",
			"file", victim.Tag.File,
			"pageNo", victim.Tag.PageNo,
		)
	}

	delete(m.table, victim.Tag)
	m.frames[idx] = nil
	return idx, nil
}

// releaseFrame undoes grabFrame after a failed disk read. Caller holds the
// mutex.
func (m *Manager) releaseFrame(idx int) {
	m.frames[idx] = nil
	m.repl.Remove(idx)
}

func (m *Manager) install(idx int, tag PageTag, f *storage.BlobFile, page *storage.Page) {
	m.frames[idx] = &Frame{
		Tag:  tag,
		File: f,
		Page: page,
		Pin:  1,
	}
	m.table[tag] = idx

	m.repl.Touch(idx)
	m.repl.SetEvictable(idx, false)
}
