package llm

import (
	"math"

	"github.com/orneryd/nornicvec/pkg/gpu"
)

// Engine drives one-token forward passes against a Config/Weights pair,
// dispatching every matrix multiply through a gpu.Device and keeping
// RMSNorm, RoPE, attention, and SwiGLU on the CPU — the same hybrid split
// as the reference implementation: MatMul is O(n^2)/O(n^3) and benefits
// from GPU parallelism, while the O(n) elementwise ops would lose more to
// transfer and launch overhead than they'd gain from offloading at
// batch_size=1.
type Engine struct {
	Config  *Config
	Weights *Weights
	State   *RunState
	Device  gpu.Device
}

// NewEngine uploads w's weight blob to device and returns an Engine ready
// for Forward calls.
func NewEngine(c *Config, w *Weights, device gpu.Device) (*Engine, error) {
	if err := device.UploadWeights(w.Blob()); err != nil {
		return nil, err
	}
	return &Engine{
		Config:  c,
		Weights: w,
		State:   NewRunState(c),
		Device:  device,
	}, nil
}

// Forward mutates e.State for one token at position pos. Preconditions:
// 0 <= pos < seq_len; successive calls within a sequence pass increasing
// pos so the KV cache accumulates correctly.
func (e *Engine) Forward(token, pos int) error {
	c := e.Config
	w := e.Weights
	s := e.State

	dim := int(c.Dim)
	hiddenDim := int(c.HiddenDim)
	nLayers := int(c.NLayers)
	nHeads := int(c.NHeads)
	nKVHeads := int(c.NKVHeads)
	seqLen := int(c.SeqLen)
	headSz := dim / nHeads
	kvDim := (dim * nKVHeads) / nHeads
	kvMul := nHeads / nKVHeads

	copy(s.X, w.EmbeddingRow(token))

	for l := 0; l < nLayers; l++ {
		rmsNorm(s.Xb, s.X, w.AttnNorm(l))

		q, err := e.Device.MatMul(w.WqOffset(l), uint32(dim), uint32(dim), s.Xb)
		if err != nil {
			return err
		}
		k, err := e.Device.MatMul(w.WkOffset(l), uint32(dim), uint32(kvDim), s.Xb)
		if err != nil {
			return err
		}
		v, err := e.Device.MatMul(w.WvOffset(l), uint32(dim), uint32(kvDim), s.Xb)
		if err != nil {
			return err
		}
		copy(s.Q, q)
		copy(s.K, k)
		copy(s.V, v)

		applyRoPE(s.Q, s.K, pos, headSz, kvDim)

		loff := l * seqLen * kvDim
		copy(s.KeyCache[loff+pos*kvDim:loff+pos*kvDim+kvDim], s.K)
		copy(s.ValueCache[loff+pos*kvDim:loff+pos*kvDim+kvDim], s.V)

		for h := 0; h < nHeads; h++ {
			q := s.Q[h*headSz : h*headSz+headSz]
			att := s.Att[h*seqLen : h*seqLen+seqLen]

			for t := 0; t <= pos; t++ {
				kRow := s.KeyCache[loff+t*kvDim+(h/kvMul)*headSz : loff+t*kvDim+(h/kvMul)*headSz+headSz]
				score := dotProduct(q, kRow)
				att[t] = score / float32(math.Sqrt(float64(headSz)))
			}

			softmax(att[:pos+1])

			xb := s.Xb[h*headSz : h*headSz+headSz]
			for i := range xb {
				xb[i] = 0
			}
			for t := 0; t <= pos; t++ {
				vRow := s.ValueCache[loff+t*kvDim+(h/kvMul)*headSz : loff+t*kvDim+(h/kvMul)*headSz+headSz]
				a := att[t]
				for i := range xb {
					xb[i] += a * vRow[i]
				}
			}
		}

		xb2, err := e.Device.MatMul(w.WoOffset(l), uint32(dim), uint32(dim), s.Xb)
		if err != nil {
			return err
		}
		copy(s.Xb2, xb2)

		for i := 0; i < dim; i++ {
			s.X[i] += s.Xb2[i]
		}

		rmsNorm(s.Xb, s.X, w.FFNNorm(l))

		hb, err := e.Device.MatMul(w.W1Offset(l), uint32(dim), uint32(hiddenDim), s.Xb)
		if err != nil {
			return err
		}
		hb2, err := e.Device.MatMul(w.W3Offset(l), uint32(dim), uint32(hiddenDim), s.Xb)
		if err != nil {
			return err
		}
		copy(s.Hb, hb)
		copy(s.Hb2, hb2)

		for i := 0; i < hiddenDim; i++ {
			val := s.Hb[i]
			val *= float32(1.0 / (1.0 + math.Exp(float64(-val)))) // silu
			val *= s.Hb2[i]
			s.Hb[i] = val
		}

		xbOut, err := e.Device.MatMul(w.W2Offset(l), uint32(hiddenDim), uint32(dim), s.Hb)
		if err != nil {
			return err
		}
		copy(s.Xb, xbOut)

		for i := 0; i < dim; i++ {
			s.X[i] += s.Xb[i]
		}
	}

	rmsNorm(s.X, s.X, w.FinalNorm())

	logits, err := e.Device.MatMul(w.WclsOffset(), uint32(dim), uint32(c.VocabSize), s.X)
	if err != nil {
		return err
	}
	copy(s.Logits, logits)

	return nil
}

// rmsNorm normalizes x by its root-mean-square and scales by weight,
// writing the result into o. o and x may alias.
func rmsNorm(o, x, weight []float32) {
	var ss float32
	for _, v := range x {
		ss += v * v
	}
	ss /= float32(len(x))
	ss += 1e-5
	ss = 1.0 / float32(math.Sqrt(float64(ss)))
	for i := range x {
		o[i] = weight[i] * (ss * x[i])
	}
}

// softmax normalizes x in place, shifting by the max for numerical
// stability.
func softmax(x []float32) {
	maxVal := x[0]
	for _, v := range x[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	var sum float32
	for i, v := range x {
		x[i] = float32(math.Exp(float64(v - maxVal)))
		sum += x[i]
	}
	for i := range x {
		x[i] /= sum
	}
}

// applyRoPE rotates q and k in place by position-dependent angles. Pairs
// with index < kvDim rotate both q and k; pairs beyond kvDim (when n_heads
// > n_kv_heads) rotate only q.
func applyRoPE(q, k []float32, pos, headSize, kvDim int) {
	dim := len(q)
	for i := 0; i < dim; i += 2 {
		headDim := i % headSize
		freq := 1.0 / math.Pow(10000.0, float64(headDim)/float64(headSize))
		val := float64(pos) * freq
		fcr := float32(math.Cos(val))
		fci := float32(math.Sin(val))

		rotn := 1
		if i < kvDim {
			rotn = 2
		}
		for v := 0; v < rotn; v++ {
			vec := q
			if v == 1 {
				vec = k
			}
			v0 := vec[i]
			v1 := vec[i+1]
			vec[i] = v0*fcr - v1*fci
			vec[i+1] = v0*fci + v1*fcr
		}
	}
}

func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
