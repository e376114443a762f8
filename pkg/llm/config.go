// Package llm implements the decoder-only transformer: a fixed-shape
// Config header, slice-backed Weights and RunState, and the one-token
// Forward pass that drives the GPU's MatMul pipeline for every matrix
// multiply while keeping norms, RoPE, attention, and activations on the
// CPU.
package llm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Config is the fixed seven-field model header, read as 32-bit signed
// integers in file order.
type Config struct {
	Dim       int32
	HiddenDim int32
	NLayers   int32
	NHeads    int32
	NKVHeads  int32
	VocabSize int32
	SeqLen    int32
}

// HeadSize returns dim / n_heads.
func (c *Config) HeadSize() int32 { return c.Dim / c.NHeads }

// KVDim returns (dim * n_kv_heads) / n_heads.
func (c *Config) KVDim() int32 { return (c.Dim * c.NKVHeads) / c.NHeads }

// Validate checks the invariants the forward pass depends on.
func (c *Config) Validate() error {
	if c.NHeads == 0 || c.Dim%c.NHeads != 0 {
		return fmt.Errorf("llm: dim %d not divisible by n_heads %d", c.Dim, c.NHeads)
	}
	if c.NKVHeads == 0 || c.NHeads%c.NKVHeads != 0 {
		return fmt.Errorf("llm: n_heads %d not divisible by n_kv_heads %d", c.NHeads, c.NKVHeads)
	}
	return nil
}

func readConfig(r io.Reader) (*Config, error) {
	c := &Config{}
	fields := []*int32{&c.Dim, &c.HiddenDim, &c.NLayers, &c.NHeads, &c.NKVHeads, &c.VocabSize, &c.SeqLen}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("llm: reading config header: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
