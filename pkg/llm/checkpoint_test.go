package llm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRawCheckpoint(t *testing.T, c *Config) []byte {
	t.Helper()
	var buf bytes.Buffer
	fields := []int32{c.Dim, c.HiddenDim, c.NLayers, c.NHeads, c.NKVHeads, c.VocabSize, c.SeqLen}
	for _, f := range fields {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, f))
	}

	w := randomWeights(c, true, 42)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, w.blob))
	return buf.Bytes()
}

func TestLoadCheckpoint_RawFormat(t *testing.T) {
	c := tinyConfig()
	raw := writeRawCheckpoint(t, c)

	gotConfig, gotWeights, err := LoadCheckpoint(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, c.Dim, gotConfig.Dim)
	assert.Equal(t, c.VocabSize, gotConfig.VocabSize)
	assert.True(t, gotWeights.Tied())
}

func writeGGUFString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint64(len(s)))
	buf.WriteString(s)
}

func writeGGUFInt32KV(buf *bytes.Buffer, key string, val int32) {
	writeGGUFString(buf, key)
	binary.Write(buf, binary.LittleEndian, uint32(ggufTypeInt32))
	binary.Write(buf, binary.LittleEndian, val)
}

func TestLoadCheckpoint_GGUFFormat(t *testing.T) {
	c := tinyConfig()
	w := randomWeights(c, true, 7)

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, ggufMagicLE)
	binary.Write(&buf, binary.LittleEndian, uint32(3)) // version

	kv := map[string]int32{
		"llama.embedding_length":        c.Dim,
		"llama.feed_forward_length":     c.HiddenDim,
		"llama.block_count":             c.NLayers,
		"llama.attention.head_count":    c.NHeads,
		"llama.attention.head_count_kv": c.NKVHeads,
		"llama.vocab_size":              c.VocabSize,
		"llama.context_length":          c.SeqLen,
	}
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // tensor_count
	binary.Write(&buf, binary.LittleEndian, uint64(len(kv)))
	for k, v := range kv {
		writeGGUFInt32KV(&buf, k, v)
	}

	binary.Write(&buf, binary.LittleEndian, w.blob)

	gotConfig, gotWeights, err := LoadCheckpoint(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, c.Dim, gotConfig.Dim)
	assert.Equal(t, c.NHeads, gotConfig.NHeads)
	assert.True(t, gotWeights.Tied())
}

func TestLoadCheckpoint_EmptyReaderErrors(t *testing.T) {
	_, _, err := LoadCheckpoint(bytes.NewReader(nil))
	assert.Error(t, err)
}
