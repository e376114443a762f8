package tokenizer

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildVocab encodes a tokenizer file for entries in vocabulary order:
// single bytes first (so Encode's first pass always finds a token), then
// merges with their score.
func buildVocab(t *testing.T, entries []struct {
	str   string
	score float32
}) *Tokenizer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(8)))
	for _, e := range entries {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, e.score))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(len(e.str))))
		buf.WriteString(e.str)
	}
	tok, err := Load(&buf, len(entries))
	require.NoError(t, err)
	return tok
}

func TestLoad(t *testing.T) {
	tok := buildVocab(t, []struct {
		str   string
		score float32
	}{
		{"a", 0.0},
		{"b", 0.0},
		{"ab", 1.0},
	})
	assert.Equal(t, 3, tok.VocabSize())
}

func TestEncode_SingleBytes(t *testing.T) {
	tok := buildVocab(t, []struct {
		str   string
		score float32
	}{
		{"a", 0.0},
		{"b", 0.0},
		{"c", 0.0},
	})
	ids := tok.Encode("abc")
	require.Len(t, ids, 3)
	assert.Equal(t, "a", tok.Decode(ids[0]))
	assert.Equal(t, "b", tok.Decode(ids[1]))
	assert.Equal(t, "c", tok.Decode(ids[2]))
}

func TestEncode_MergesHighestScoringPairFirst(t *testing.T) {
	tok := buildVocab(t, []struct {
		str   string
		score float32
	}{
		{"a", 0.0},
		{"b", 0.0},
		{"c", 0.0},
		{"ab", 1.0},
		{"bc", 2.0},
	})

	ids := tok.Encode("abc")
	require.Len(t, ids, 2)
	// "bc" scores higher than "ab", so it merges first, leaving "a" + "bc".
	assert.Equal(t, "a", tok.Decode(ids[0]))
	assert.Equal(t, "bc", tok.Decode(ids[1]))
}

func TestEncode_DropsUnknownBytes(t *testing.T) {
	tok := buildVocab(t, []struct {
		str   string
		score float32
	}{
		{"a", 0.0},
	})
	ids := tok.Encode("axa")
	assert.Len(t, ids, 2)
}

func TestEncode_Deterministic(t *testing.T) {
	tok := buildVocab(t, []struct {
		str   string
		score float32
	}{
		{"a", 0.0},
		{"b", 0.0},
		{"ab", 1.0},
	})
	first := tok.Encode("abab")
	second := tok.Encode("abab")
	assert.Equal(t, first, second)
}

func TestDecode_OutOfRange(t *testing.T) {
	tok := buildVocab(t, []struct {
		str   string
		score float32
	}{
		{"a", 0.0},
	})
	assert.Equal(t, "", tok.Decode(-1))
	assert.Equal(t, "", tok.Decode(99))
}
