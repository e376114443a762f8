package llm

// RunState holds the scratch buffers reused across every position of a
// single sequence. It is constructed once after Weights and never freed
// until process exit.
type RunState struct {
	X   []float32 // current activation, dim
	Xb  []float32 // residual scratch, dim
	Xb2 []float32 // residual scratch, dim
	Hb  []float32 // FFN scratch, hidden_dim
	Hb2 []float32 // FFN scratch, hidden_dim
	Q   []float32 // current query, dim
	K   []float32 // current key, kv_dim
	V   []float32 // current value, kv_dim
	Att []float32 // attention scores, n_heads * seq_len

	Logits []float32 // vocab_size

	KeyCache   []float32 // n_layers * seq_len * kv_dim
	ValueCache []float32 // n_layers * seq_len * kv_dim
}

// NewRunState allocates scratch buffers sized from c.
func NewRunState(c *Config) *RunState {
	dim := int(c.Dim)
	hiddenDim := int(c.HiddenDim)
	kvDim := int(c.KVDim())
	nLayers := int(c.NLayers)
	nHeads := int(c.NHeads)
	seqLen := int(c.SeqLen)

	return &RunState{
		X:          make([]float32, dim),
		Xb:         make([]float32, dim),
		Xb2:        make([]float32, dim),
		Hb:         make([]float32, hiddenDim),
		Hb2:        make([]float32, hiddenDim),
		Q:          make([]float32, dim),
		K:          make([]float32, kvDim),
		V:          make([]float32, kvDim),
		Att:        make([]float32, nHeads*seqLen),
		Logits:     make([]float32, c.VocabSize),
		KeyCache:   make([]float32, nLayers*seqLen*kvDim),
		ValueCache: make([]float32, nLayers*seqLen*kvDim),
	}
}
