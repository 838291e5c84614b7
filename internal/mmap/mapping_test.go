package mmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon_ReadWriteClose(t *testing.T) {
	m, err := MapAnon(8192)
	require.NoError(t, err)

	assert.Equal(t, 8192, m.Size())
	data := m.Bytes()
	require.Len(t, data, 8192)
	assert.NotZero(t, m.Addr())

	// Anonymous mappings are zero-filled.
	for _, b := range data[:64] {
		require.Zero(t, b)
	}

	copy(data[100:], "device")
	r, err := m.Region(100, 6)
	require.NoError(t, err)
	assert.Equal(t, "device", string(r))

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
	assert.Nil(t, m.Bytes())
	assert.Zero(t, m.Addr())

	// Idempotent
	require.NoError(t, m.Close())
}

func TestClose_FailedUnmapStaysOpen(t *testing.T) {
	m, err := MapAnon(4096)
	require.NoError(t, err)

	unmap := m.unmap
	m.unmap = func([]byte) error { return errors.New("munmap") }
	require.Error(t, m.Close())
	assert.False(t, m.Closed())
	assert.Len(t, m.Bytes(), 4096)

	m.unmap = unmap
	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
}

func TestMapAnon_InvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestRegion_Bounds(t *testing.T) {
	m, err := MapAnon(1024)
	require.NoError(t, err)
	defer m.Close()

	r, err := m.Region(1000, 24)
	require.NoError(t, err)
	assert.Len(t, r, 24)
	assert.Equal(t, 24, cap(r))

	_, err = m.Region(-1, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = m.Region(1000, 25)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	require.NoError(t, m.Close())
	_, err = m.Region(0, 1)
	assert.ErrorIs(t, err, ErrClosed)
}
