package llm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Weights is a single contiguous float32 blob holding every tensor in
// checkpoint order, plus the element offset of each tensor into that blob.
// Keeping everything in one blob lets the GPU context upload it once and
// address every MatMul operand by an offset relative to the blob's start,
// matching the reference implementation's arena-relative weight_offset
// convention.
type Weights struct {
	blob []float32

	dim, hiddenDim, nLayers, nHeads, nKVHeads, vocabSize int

	embedOffset    int
	attnNormOffset int
	wqOffset       int
	wkOffset       int
	wvOffset       int
	woOffset       int
	ffnNormOffset  int
	w1Offset       int
	w2Offset       int
	w3Offset       int
	finalNormOff   int
	wclsOffset     int
	tied           bool
}

// LoadWeights reads the weight tensors from r in the checkpoint's fixed
// order: token-embedding table, attention-norm, wq, wk, wv, wo, ffn-norm,
// w1, w2, w3, final-norm, and an optional classifier block. When the file
// ends before the classifier block, the classifier aliases the
// token-embedding table (tied weights).
func LoadWeights(r io.Reader, c *Config) (*Weights, error) {
	dim := int(c.Dim)
	hiddenDim := int(c.HiddenDim)
	nLayers := int(c.NLayers)
	nHeads := int(c.NHeads)
	nKVHeads := int(c.NKVHeads)
	vocabSize := int(c.VocabSize)
	headSize := dim / nHeads
	kvDim := (dim * nKVHeads) / nHeads

	sizes := []int{
		vocabSize * dim,               // token_embedding_table
		nLayers * dim,                 // rms_att_weight
		nLayers * dim * nHeads * headSize,   // wq
		nLayers * dim * nKVHeads * headSize, // wk
		nLayers * dim * nKVHeads * headSize, // wv
		nLayers * nHeads * headSize * dim,   // wo
		nLayers * dim,                 // rms_ffn_weight
		nLayers * hiddenDim * dim,     // w1
		nLayers * dim * hiddenDim,     // w2
		nLayers * hiddenDim * dim,     // w3
		dim,                           // rms_final_weight
	}

	total := 0
	for _, s := range sizes {
		total += s
	}

	w := &Weights{
		dim: dim, hiddenDim: hiddenDim, nLayers: nLayers,
		nHeads: nHeads, nKVHeads: nKVHeads, vocabSize: vocabSize,
	}

	offset := 0
	w.embedOffset = offset
	offset += sizes[0]
	w.attnNormOffset = offset
	offset += sizes[1]
	w.wqOffset = offset
	offset += sizes[2]
	w.wkOffset = offset
	offset += sizes[3]
	w.wvOffset = offset
	offset += sizes[4]
	w.woOffset = offset
	offset += sizes[5]
	w.ffnNormOffset = offset
	offset += sizes[6]
	w.w1Offset = offset
	offset += sizes[7]
	w.w2Offset = offset
	offset += sizes[8]
	w.w3Offset = offset
	offset += sizes[9]
	w.finalNormOff = offset
	offset += sizes[10]

	blob := make([]float32, total, total+vocabSize*dim)
	if err := binary.Read(r, binary.LittleEndian, blob); err != nil {
		return nil, fmt.Errorf("llm: reading weight tensors: %w", err)
	}

	// The classifier block is optional: read whatever remains, and accept
	// short reads the way io.ReadFull would reject, but don't error on EOF.
	cls := make([]float32, vocabSize*dim)
	n, err := readFloat32Prefix(r, cls)
	if err != nil {
		return nil, fmt.Errorf("llm: reading classifier weights: %w", err)
	}
	if n == len(cls) {
		w.wclsOffset = len(blob)
		blob = append(blob, cls...)
	} else {
		w.tied = true
		w.wclsOffset = w.embedOffset
	}

	w.blob = blob
	return w, nil
}

// readFloat32Prefix reads as many complete float32 values as are available
// from r into out, returning the count read. It distinguishes a clean EOF
// (count < len(out), no error) from a corrupt trailing partial value.
func readFloat32Prefix(r io.Reader, out []float32) (int, error) {
	buf := make([]byte, 4*len(out))
	n, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		complete := n / 4
		if n%4 != 0 {
			return 0, fmt.Errorf("partial float32 value at EOF")
		}
		for i := 0; i < complete; i++ {
			out[i] = float32FromBytes(buf[i*4 : i*4+4])
		}
		return complete, nil
	}
	if err != nil {
		return 0, err
	}
	for i := range out {
		out[i] = float32FromBytes(buf[i*4 : i*4+4])
	}
	return len(out), nil
}

func float32FromBytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// Blob returns the full weight buffer, suitable for a single GPU upload.
func (w *Weights) Blob() []float32 { return w.blob }

// EmbeddingRow returns the embedding vector for token.
func (w *Weights) EmbeddingRow(token int) []float32 {
	start := w.embedOffset + token*w.dim
	return w.blob[start : start+w.dim]
}

// AttnNorm returns the attention RMSNorm weight for layer l.
func (w *Weights) AttnNorm(l int) []float32 {
	start := w.attnNormOffset + l*w.dim
	return w.blob[start : start+w.dim]
}

// FFNNorm returns the FFN RMSNorm weight for layer l.
func (w *Weights) FFNNorm(l int) []float32 {
	start := w.ffnNormOffset + l*w.dim
	return w.blob[start : start+w.dim]
}

// FinalNorm returns the final RMSNorm weight.
func (w *Weights) FinalNorm() []float32 {
	return w.blob[w.finalNormOff : w.finalNormOff+w.dim]
}

func headSize(dim, nHeads int) int { return dim / nHeads }

// WqOffset, WkOffset, WvOffset, WoOffset, W1Offset, W2Offset, W3Offset, and
// WclsOffset return the element offset of each MatMul operand for layer l,
// relative to Blob()'s start — the value MatMul's weightOffset expects.
func (w *Weights) WqOffset(l int) uint32 {
	hs := headSize(w.dim, w.nHeads)
	return uint32(w.wqOffset + l*w.dim*w.nHeads*hs)
}

func (w *Weights) WkOffset(l int) uint32 {
	hs := headSize(w.dim, w.nHeads)
	return uint32(w.wkOffset + l*w.dim*w.nKVHeads*hs)
}

func (w *Weights) WvOffset(l int) uint32 {
	hs := headSize(w.dim, w.nHeads)
	return uint32(w.wvOffset + l*w.dim*w.nKVHeads*hs)
}

func (w *Weights) WoOffset(l int) uint32 {
	hs := headSize(w.dim, w.nHeads)
	return uint32(w.woOffset + l*w.nHeads*hs*w.dim)
}

func (w *Weights) W1Offset(l int) uint32 {
	return uint32(w.w1Offset + l*w.hiddenDim*w.dim)
}

func (w *Weights) W2Offset(l int) uint32 {
	return uint32(w.w2Offset + l*w.dim*w.hiddenDim)
}

func (w *Weights) W3Offset(l int) uint32 {
	return uint32(w.w3Offset + l*w.hiddenDim*w.dim)
}

// WclsOffset returns the classifier's offset; it equals the embedding
// table's offset when weights are tied.
func (w *Weights) WclsOffset() uint32 { return uint32(w.wclsOffset) }

// Tied reports whether the classifier shares the embedding table.
func (w *Weights) Tied() bool { return w.tied }
