// Package tokenizer implements a byte-pair-encoding tokenizer over a
// pre-trained vocabulary: single bytes decode to individual tokens, and
// repeated greedy merges combine adjacent tokens into higher-scoring
// multi-byte tokens, the same algorithm the reference C tokenizer uses.
package tokenizer

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// Tokenizer holds a fixed vocabulary loaded once at startup.
type Tokenizer struct {
	vocab          []string
	vocabScores    []float32
	sortedIndex    []int // indices into vocab, sorted by vocab[i] string value
	maxTokenLength int32
}

// Load reads the tokenizer file format: int32 maxTokenLength, then for each
// of vocabSize entries: float32 score, int32 length, length bytes of UTF-8
// with no terminator.
func Load(r io.Reader, vocabSize int) (*Tokenizer, error) {
	t := &Tokenizer{
		vocab:       make([]string, vocabSize),
		vocabScores: make([]float32, vocabSize),
	}

	if err := binary.Read(r, binary.LittleEndian, &t.maxTokenLength); err != nil {
		return nil, fmt.Errorf("tokenizer: reading max token length: %w", err)
	}

	for i := 0; i < vocabSize; i++ {
		if err := binary.Read(r, binary.LittleEndian, &t.vocabScores[i]); err != nil {
			return nil, fmt.Errorf("tokenizer: reading score %d: %w", i, err)
		}

		var length int32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("tokenizer: reading length %d: %w", i, err)
		}

		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("tokenizer: reading string %d: %w", i, err)
		}
		t.vocab[i] = string(buf)
	}

	t.sortedIndex = make([]int, vocabSize)
	for i := range t.sortedIndex {
		t.sortedIndex[i] = i
	}
	sort.Slice(t.sortedIndex, func(a, b int) bool {
		return t.vocab[t.sortedIndex[a]] < t.vocab[t.sortedIndex[b]]
	})

	return t, nil
}

// VocabSize returns the number of tokens in the vocabulary.
func (t *Tokenizer) VocabSize() int {
	return len(t.vocab)
}

// find returns the token id for str, or -1 if it is not in the vocabulary.
func (t *Tokenizer) find(str string) int {
	n := len(t.sortedIndex)
	i := sort.Search(n, func(i int) bool {
		return t.vocab[t.sortedIndex[i]] >= str
	})
	if i < n && t.vocab[t.sortedIndex[i]] == str {
		return t.sortedIndex[i]
	}
	return -1
}

// Encode tokenizes text by first mapping every byte to its single-byte
// token (bytes absent from the vocabulary are dropped), then repeatedly
// merging the adjacent pair whose concatenation scores highest in the
// vocabulary, leftmost index breaking ties, until no mergeable pair remains.
func (t *Tokenizer) Encode(text string) []int {
	tokens := make([]int, 0, len(text))
	for i := 0; i < len(text); i++ {
		if id := t.find(string(text[i])); id != -1 {
			tokens = append(tokens, id)
		}
	}

	for {
		bestScore := float32(-1e10)
		bestID := -1
		bestIdx := -1

		for i := 0; i < len(tokens)-1; i++ {
			merged := t.vocab[tokens[i]] + t.vocab[tokens[i+1]]
			id := t.find(merged)
			if id == -1 {
				continue
			}
			if t.vocabScores[id] > bestScore {
				bestScore = t.vocabScores[id]
				bestID = id
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			break
		}

		tokens[bestIdx] = bestID
		tokens = append(tokens[:bestIdx+1], tokens[bestIdx+2:]...)
	}

	return tokens
}

// Decode returns the literal vocabulary bytes for a single token.
func (t *Tokenizer) Decode(token int) string {
	if token < 0 || token >= len(t.vocab) {
		return ""
	}
	return t.vocab[token]
}
