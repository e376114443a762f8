// Package embed turns text into the fixed-width vectors the vector index
// searches over. It tokenizes with pkg/tokenizer, runs each token through
// an llm.Engine forward pass, and L2-normalizes the model's final hidden
// state into the output vector — the same recipe the reference CLI's
// embed_text_llm uses, minus the C arena bookkeeping.
//
// ELI12 (Explain Like I'm 12):
//
// To turn a sentence into a "vibe vector," we feed it into the model one
// piece at a time. Each piece nudges the model's internal state a little.
// Once the whole sentence has been fed in, that internal state IS the
// vibe — we just rescale it so all vibes are the same "loudness" (length
// 1), which makes comparing two vibes a matter of a single dot product.
package embed

import (
	"fmt"
	"math"

	"github.com/orneryd/nornicvec/pkg/llm"
	"github.com/orneryd/nornicvec/pkg/nvecerr"
	"github.com/orneryd/nornicvec/pkg/tokenizer"
)

// Embedder turns text into a vector of Dim() length using a shared
// llm.Engine. Not safe for concurrent use: successive calls reuse the
// engine's KV cache and RunState, matching the reference implementation's
// single-threaded embed_text_llm.
type Embedder struct {
	engine    *llm.Engine
	tokenizer *tokenizer.Tokenizer
	dim       int
}

// New wraps engine and tok into an Embedder. dim must match engine's
// configured Config.Dim.
func New(engine *llm.Engine, tok *tokenizer.Tokenizer, dim int) *Embedder {
	return &Embedder{engine: engine, tokenizer: tok, dim: dim}
}

// Dim returns the length of vectors produced by Embed.
func (e *Embedder) Dim() int {
	return e.dim
}

// Embed tokenizes text, feeds every token through the engine at successive
// positions, and returns the L2-normalized final hidden state. An empty
// text is rejected outright; a near-zero hidden state (norm <= 1e-5, which
// only arises from a degenerate or all-padding token run) yields a zero
// vector rather than dividing by a tiny norm.
func (e *Embedder) Embed(text string) ([]float32, error) {
	if text == "" {
		return nil, nvecerr.ErrEmptyNote
	}

	tokens := e.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("embed: %q produced no tokens", text)
	}
	if len(tokens) > int(e.engine.Config.SeqLen) {
		return nil, fmt.Errorf("embed: text tokenizes to %d tokens, exceeds seq_len %d", len(tokens), e.engine.Config.SeqLen)
	}

	for pos, tok := range tokens {
		if err := e.engine.Forward(tok, pos); err != nil {
			return nil, fmt.Errorf("embed: forward pass at position %d: %w", pos, err)
		}
	}

	out := make([]float32, e.dim)
	var normSq float32
	for _, v := range e.engine.State.X {
		normSq += v * v
	}
	norm := float32(math.Sqrt(float64(normSq)))

	if norm > 1e-5 {
		for i := range out {
			out[i] = e.engine.State.X[i] / norm
		}
	}
	return out, nil
}
