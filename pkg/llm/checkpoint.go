package llm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"unsafe"

	"golang.org/x/crypto/blake2b"
)

// ggufMagicLE is the little-endian encoding of the four-byte ASCII string
// "GGUF", matching gguf-parser-go's GGUFMagicGGUFLe constant.
const ggufMagicLE uint32 = 0x46554747

// LoadCheckpoint reads a Config and Weights pair from r. It peeks the
// first four bytes to tell the raw spec-native layout (§6) from a GGUF
// container, and dispatches to the matching loader. The raw layout is the
// default; GGUF support is additive.
func LoadCheckpoint(r io.Reader) (*Config, *Weights, error) {
	br := bufio.NewReader(r)
	peek, err := br.Peek(4)
	if err != nil {
		return nil, nil, fmt.Errorf("llm: reading checkpoint header: %w", err)
	}

	var c *Config
	var w *Weights
	if binary.LittleEndian.Uint32(peek) == ggufMagicLE {
		c, w, err = loadGGUFCheckpoint(br)
	} else {
		c, err = readConfig(br)
		if err == nil {
			w, err = LoadWeights(br, c)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	log.Printf("llm: loaded checkpoint: dim=%d layers=%d vocab=%d digest=%s",
		c.Dim, c.NLayers, c.VocabSize, blobDigest(w.Blob()))
	return c, w, nil
}

// blobDigest returns a short blake2b-256 hex digest of a weight blob, used
// only for the load-time log line above — a cheap way to confirm two runs
// loaded byte-identical weights without diffing gigabytes of floats.
func blobDigest(blob []float32) string {
	if len(blob) == 0 {
		return "empty"
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&blob[0])), len(blob)*4)
	sum := blake2b.Sum256(raw)
	return fmt.Sprintf("%x", sum[:8])
}

// loadGGUFCheckpoint reads a GGUF container far enough to recover a Config
// and the tensors LoadWeights expects, then hands the remaining tensor
// bytes to the same blob layout the raw loader builds. GGUF key-value
// metadata carries the architecture hyperparameters under keys like
// "llama.embedding_length" in the upstream format; this loader expects the
// narrower set this module needs and errors on anything else, since full
// arbitrary-architecture GGUF support is out of scope.
func loadGGUFCheckpoint(r io.Reader) (*Config, *Weights, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, nil, fmt.Errorf("gguf: reading magic: %w", err)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("gguf: reading version: %w", err)
	}
	if version != 2 && version != 3 {
		return nil, nil, fmt.Errorf("gguf: unsupported version %d", version)
	}

	var tensorCount, kvCount uint64
	if err := binary.Read(r, binary.LittleEndian, &tensorCount); err != nil {
		return nil, nil, fmt.Errorf("gguf: reading tensor count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &kvCount); err != nil {
		return nil, nil, fmt.Errorf("gguf: reading kv count: %w", err)
	}

	kv, err := readGGUFMetadata(r, kvCount)
	if err != nil {
		return nil, nil, err
	}
	for _, key := range []string{"llama.embedding_length", "llama.feed_forward_length", "llama.block_count",
		"llama.attention.head_count", "llama.vocab_size", "llama.context_length"} {
		if _, ok := kv[key]; !ok {
			return nil, nil, fmt.Errorf("gguf: missing metadata key %q", key)
		}
	}

	c := &Config{
		Dim:       kv.mustInt32("llama.embedding_length"),
		HiddenDim: kv.mustInt32("llama.feed_forward_length"),
		NLayers:   kv.mustInt32("llama.block_count"),
		NHeads:    kv.mustInt32("llama.attention.head_count"),
		NKVHeads:  kv.int32OrDefault("llama.attention.head_count_kv", kv.mustInt32("llama.attention.head_count")),
		VocabSize: kv.mustInt32("llama.vocab_size"),
		SeqLen:    kv.mustInt32("llama.context_length"),
	}
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	// Tensor info records precede tensor data; this module only needs the
	// aggregate blob, so skip the descriptors and read the weight bytes
	// with the raw loader's fixed checkpoint-order assumption.
	if err := skipGGUFTensorInfo(r, tensorCount); err != nil {
		return nil, nil, err
	}

	w, err := LoadWeights(r, c)
	if err != nil {
		return nil, nil, fmt.Errorf("gguf: reading tensor data: %w", err)
	}
	return c, w, nil
}

type ggufKV map[string]int64

func (kv ggufKV) mustInt32(key string) int32 {
	v, ok := kv[key]
	if !ok {
		return 0
	}
	return int32(v)
}

func (kv ggufKV) int32OrDefault(key string, def int32) int32 {
	v, ok := kv[key]
	if !ok {
		return def
	}
	return int32(v)
}

// readGGUFMetadata reads kvCount key-value pairs, retaining only integer
// scalar values this loader's Config mapping needs and discarding the rest.
func readGGUFMetadata(r io.Reader, kvCount uint64) (ggufKV, error) {
	kv := make(ggufKV, kvCount)
	for i := uint64(0); i < kvCount; i++ {
		key, err := readGGUFString(r)
		if err != nil {
			return nil, fmt.Errorf("gguf: reading kv %d key: %w", i, err)
		}
		var valType uint32
		if err := binary.Read(r, binary.LittleEndian, &valType); err != nil {
			return nil, fmt.Errorf("gguf: reading kv %d type: %w", i, err)
		}
		val, err := readGGUFValue(r, valType)
		if err != nil {
			return nil, fmt.Errorf("gguf: reading kv %d value: %w", i, err)
		}
		if iv, ok := val.(int64); ok {
			kv[key] = iv
		}
	}
	return kv, nil
}

// ggufValueType mirrors the GGUF metadata value-type tags.
const (
	ggufTypeUint8   = 0
	ggufTypeInt8    = 1
	ggufTypeUint16  = 2
	ggufTypeInt16   = 3
	ggufTypeUint32  = 4
	ggufTypeInt32   = 5
	ggufTypeFloat32 = 6
	ggufTypeBool    = 7
	ggufTypeString  = 8
	ggufTypeArray   = 9
	ggufTypeUint64  = 10
	ggufTypeInt64   = 11
	ggufTypeFloat64 = 12
)

func readGGUFValue(r io.Reader, valType uint32) (interface{}, error) {
	switch valType {
	case ggufTypeUint8, ggufTypeInt8, ggufTypeBool:
		var v int8
		err := binary.Read(r, binary.LittleEndian, &v)
		return int64(v), err
	case ggufTypeUint16, ggufTypeInt16:
		var v int16
		err := binary.Read(r, binary.LittleEndian, &v)
		return int64(v), err
	case ggufTypeUint32, ggufTypeInt32:
		var v int32
		err := binary.Read(r, binary.LittleEndian, &v)
		return int64(v), err
	case ggufTypeFloat32:
		var v float32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeUint64, ggufTypeInt64:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeFloat64:
		var v float64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeString:
		s, err := readGGUFString(r)
		return s, err
	case ggufTypeArray:
		return readGGUFArray(r)
	default:
		return nil, fmt.Errorf("gguf: unknown value type %d", valType)
	}
}

func readGGUFArray(r io.Reader) (interface{}, error) {
	var elemType uint32
	if err := binary.Read(r, binary.LittleEndian, &elemType); err != nil {
		return nil, err
	}
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		if _, err := readGGUFValue(r, elemType); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func readGGUFString(r io.Reader) (string, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// skipGGUFTensorInfo consumes tensorCount tensor-info records (name,
// dimensions, type, offset) without retaining them: this loader reads
// tensor data by the raw checkpoint's fixed order rather than by the
// per-tensor offsets GGUF records, since its Weights layout is fixed.
func skipGGUFTensorInfo(r io.Reader, tensorCount uint64) error {
	for i := uint64(0); i < tensorCount; i++ {
		if _, err := readGGUFString(r); err != nil {
			return fmt.Errorf("gguf: reading tensor %d name: %w", i, err)
		}
		var nDims uint32
		if err := binary.Read(r, binary.LittleEndian, &nDims); err != nil {
			return fmt.Errorf("gguf: reading tensor %d dims: %w", i, err)
		}
		dims := make([]uint64, nDims)
		if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
			return fmt.Errorf("gguf: reading tensor %d shape: %w", i, err)
		}
		var tensorType uint32
		if err := binary.Read(r, binary.LittleEndian, &tensorType); err != nil {
			return fmt.Errorf("gguf: reading tensor %d type: %w", i, err)
		}
		var offset uint64
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return fmt.Errorf("gguf: reading tensor %d offset: %w", i, err)
		}
	}
	return nil
}
