package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *BlobFile {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rel.blob")
	f, err := CreateBlobFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestCreateThenCreateAgain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rel.blob")

	f, err := CreateBlobFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = CreateBlobFile(path)
	require.ErrorIs(t, err, ErrFileExists)
}

func TestOpenMissing(t *testing.T) {
	_, err := OpenBlobFile(filepath.Join(t.TempDir(), "nope.blob"))
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestAllocateNumbersFromOne(t *testing.T) {
	f := newTestFile(t)

	p1, err := f.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, uint32(1), p1.PageNo())

	p2, err := f.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, uint32(2), p2.PageNo())

	require.Equal(t, uint32(2), f.PageCount())
}

func TestWriteReadRoundTrip(t *testing.T) {
	f := newTestFile(t)

	p, err := f.AllocatePage()
	require.NoError(t, err)

	copy(p.Bytes(), []byte("hello pages"))
	require.NoError(t, f.WritePage(p))

	got, err := f.ReadPage(p.PageNo())
	require.NoError(t, err)
	require.Equal(t, []byte("hello pages"), got.Bytes()[:11])
}

func TestReadOutOfRange(t *testing.T) {
	f := newTestFile(t)

	_, err := f.ReadPage(1)
	require.ErrorIs(t, err, ErrBadPageNo)

	_, err = f.ReadPage(0)
	require.ErrorIs(t, err, ErrBadPageNo)
}

func TestReopenSeesPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rel.blob")

	f, err := CreateBlobFile(path)
	require.NoError(t, err)

	p, err := f.AllocatePage()
	require.NoError(t, err)
	copy(p.Bytes(), []byte{0xAB, 0xCD})
	require.NoError(t, f.WritePage(p))
	require.NoError(t, f.Close())

	g, err := OpenBlobFile(path)
	require.NoError(t, err)
	defer func() { _ = g.Close() }()

	require.Equal(t, uint32(1), g.PageCount())
	got, err := g.ReadPage(1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB, 0xCD}, got.Bytes()[:2])
}
