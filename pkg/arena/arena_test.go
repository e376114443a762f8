package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_Push(t *testing.T) {
	a := New(64)

	b1, err := a.Push(3)
	require.NoError(t, err)
	assert.Len(t, b1, 3)
	assert.Equal(t, 3, a.Used())

	b2, err := a.Push(5)
	require.NoError(t, err)
	assert.Len(t, b2, 5)
	// b2 starts 8-byte aligned after b1's 3 bytes.
	assert.Equal(t, 13, a.Used())
}

func TestArena_Push_OutOfMemory(t *testing.T) {
	a := New(8)
	_, err := a.Push(16)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestArena_MarkResetTo(t *testing.T) {
	a := New(64)

	_, err := a.Push(16)
	require.NoError(t, err)
	mark := a.Mark()

	view, err := a.Push(8)
	require.NoError(t, err)
	view[0] = 0x42

	require.NoError(t, a.ResetTo(mark))
	assert.Equal(t, mark, a.Used())

	// Re-pushing after reset reuses the same bytes.
	reused, err := a.Push(8)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), reused[0])
}

func TestArena_ResetTo_InvalidMark(t *testing.T) {
	a := New(64)
	a.Push(8)

	assert.Error(t, a.ResetTo(-1))
	assert.Error(t, a.ResetTo(100))
}

func TestArena_Free(t *testing.T) {
	a := New(16)
	a.Push(4)
	a.Free()
	assert.Equal(t, 0, a.Used())
	assert.Equal(t, 0, a.Capacity())
}

func TestArena_MustPush_PanicsOnExhaustion(t *testing.T) {
	a := New(4)
	assert.Panics(t, func() {
		a.MustPush(8)
	})
}
