package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetered(t *testing.T) *MeteredProvider {
	t.Helper()
	p, err := NewMeteredProvider(NewMemDBProvider())
	require.NoError(t, err)
	return p
}

func TestMeteredProviderBuildsIndexFromExistingData(t *testing.T) {
	inner := NewMemDBProvider()
	require.NoError(t, inner.Put([]byte("aa"), []byte("1234")))
	require.NoError(t, inner.Put([]byte("bbb"), []byte("12")))

	p, err := NewMeteredProvider(inner)
	require.NoError(t, err)

	assert.Equal(t, uint64(2+4+3+2), p.UsedBytes())

	size, ok := p.SizeOf([]byte("aa"))
	require.True(t, ok)
	assert.Equal(t, uint64(6), size)
}

func TestMeteredProviderTracksPutAndDelete(t *testing.T) {
	p := newTestMetered(t)

	require.NoError(t, p.Put([]byte("key"), []byte("value")))
	assert.Equal(t, uint64(8), p.UsedBytes())

	// Overwriting replaces the tracked size instead of accumulating.
	require.NoError(t, p.Put([]byte("key"), []byte("v")))
	assert.Equal(t, uint64(4), p.UsedBytes())

	require.NoError(t, p.Delete([]byte("key")))
	assert.Equal(t, uint64(0), p.UsedBytes())

	// Deleting an absent key is a no-op for the index.
	require.NoError(t, p.Delete([]byte("ghost")))
	assert.Equal(t, uint64(0), p.UsedBytes())
}

func TestMeteredBatchPendingDelta(t *testing.T) {
	p := newTestMetered(t)
	require.NoError(t, p.Put([]byte("live"), []byte("1234"))) // 8 bytes

	batch := p.MeteredBatch()
	defer batch.Close()

	// New key grows by its full size.
	batch.Put([]byte("new"), []byte("12345"))
	assert.Equal(t, int64(8), batch.PendingDelta())

	// Same-size overwrite of a live key is neutral.
	batch.Put([]byte("live"), []byte("abcd"))
	assert.Equal(t, int64(8), batch.PendingDelta())

	// Growing a live key counts only the growth.
	batch.Put([]byte("live"), []byte("abcdef"))
	assert.Equal(t, int64(10), batch.PendingDelta())

	// Deleting a staged key takes back its staged size.
	batch.Delete([]byte("new"))
	assert.Equal(t, int64(2), batch.PendingDelta())

	// Deleting the live key removes its committed size.
	batch.Delete([]byte("live"))
	assert.Equal(t, int64(-8), batch.PendingDelta())
}

func TestMeteredBatchRestagingSameKey(t *testing.T) {
	p := newTestMetered(t)

	batch := p.MeteredBatch()
	defer batch.Close()

	batch.Put([]byte("k"), []byte("1234567890")) // +11
	batch.Put([]byte("k"), []byte("12"))         // restaged at 3
	assert.Equal(t, int64(3), batch.PendingDelta())

	require.NoError(t, batch.Write())
	assert.Equal(t, uint64(3), p.UsedBytes())
}

func TestMeteredBatchWriteFoldsIntoIndex(t *testing.T) {
	p := newTestMetered(t)
	require.NoError(t, p.Put([]byte("gone"), []byte("xx")))

	batch := p.MeteredBatch()
	batch.Put([]byte("kept"), []byte("yyyy"))
	batch.Delete([]byte("gone"))
	delta := batch.PendingDelta()

	before := p.UsedBytes()
	require.NoError(t, batch.Write())
	batch.Close()

	assert.Equal(t, int64(p.UsedBytes())-int64(before), delta)

	val, err := p.Get([]byte("kept"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yyyy"), val)

	got, err := p.Get([]byte("gone"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDiscardedBatchLeavesStateUntouched(t *testing.T) {
	p := newTestMetered(t)
	require.NoError(t, p.Put([]byte("live"), []byte("1234")))
	before := p.UsedBytes()

	batch := p.MeteredBatch()
	batch.Put([]byte("staged"), []byte("zzzz"))
	batch.Delete([]byte("live"))
	batch.Close()

	assert.Equal(t, before, p.UsedBytes())
	val, err := p.Get([]byte("live"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1234"), val)
}

func TestMeteredBatchReset(t *testing.T) {
	p := newTestMetered(t)

	batch := p.MeteredBatch()
	defer batch.Close()

	batch.Put([]byte("a"), []byte("bb"))
	require.NotZero(t, batch.PendingDelta())

	batch.Reset()
	assert.Zero(t, batch.PendingDelta())

	require.NoError(t, batch.Write())
	assert.Zero(t, p.UsedBytes())
}
