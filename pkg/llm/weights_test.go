package llm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWeights_TiesWhenClassifierBlockAbsent(t *testing.T) {
	c := tinyConfig()
	w := randomWeights(c, true, 10)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, w.blob))

	got, err := LoadWeights(&buf, c)
	require.NoError(t, err)
	assert.True(t, got.Tied())
	assert.Equal(t, got.WclsOffset(), uint32(got.embedOffset))
}

func TestLoadWeights_UntiedWhenClassifierBlockPresent(t *testing.T) {
	c := tinyConfig()
	w := randomWeights(c, false, 11)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, w.blob))

	got, err := LoadWeights(&buf, c)
	require.NoError(t, err)
	assert.False(t, got.Tied())
	assert.NotEqual(t, got.WclsOffset(), uint32(got.embedOffset))
}

func TestLoadWeights_ErrorsOnTruncatedMainBlob(t *testing.T) {
	c := tinyConfig()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []float32{1, 2, 3}))

	_, err := LoadWeights(&buf, c)
	assert.Error(t, err)
}

func TestWeights_EmbeddingRow(t *testing.T) {
	c := tinyConfig()
	w := randomWeights(c, true, 12)
	row := w.EmbeddingRow(2)
	assert.Len(t, row, int(c.Dim))
	assert.Equal(t, w.blob[w.embedOffset+2*int(c.Dim):w.embedOffset+3*int(c.Dim)], row)
}

func TestWeights_PerLayerOffsetsDontOverlapAcrossLayers(t *testing.T) {
	c := tinyConfig()
	w := randomWeights(c, true, 13)

	assert.NotEqual(t, w.WqOffset(0), w.WqOffset(1))
	assert.NotEqual(t, w.WkOffset(0), w.WkOffset(1))
	assert.NotEqual(t, w.W1Offset(0), w.W1Offset(1))
}
