package llm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_RoundTrip(t *testing.T) {
	c := tinyConfig()
	var buf bytes.Buffer
	fields := []int32{c.Dim, c.HiddenDim, c.NLayers, c.NHeads, c.NKVHeads, c.VocabSize, c.SeqLen}
	for _, f := range fields {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, f))
	}

	got, err := readConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestConfig_HeadSizeAndKVDim(t *testing.T) {
	c := &Config{Dim: 64, NHeads: 8, NKVHeads: 2}
	assert.Equal(t, int32(8), c.HeadSize())
	assert.Equal(t, int32(16), c.KVDim())
}

func TestConfig_Validate_RejectsIndivisibleHeads(t *testing.T) {
	c := &Config{Dim: 10, NHeads: 3, NKVHeads: 1}
	assert.Error(t, c.Validate())
}

func TestConfig_Validate_RejectsIndivisibleKVHeads(t *testing.T) {
	c := &Config{Dim: 8, NHeads: 4, NKVHeads: 3}
	assert.Error(t, c.Validate())
}

func TestConfig_Validate_AcceptsValidShape(t *testing.T) {
	c := tinyConfig()
	assert.NoError(t, c.Validate())
}
