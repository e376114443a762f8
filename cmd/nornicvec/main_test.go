package main

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tinyModelConfig struct {
	Dim, HiddenDim, NLayers, NHeads, NKVHeads, VocabSize, SeqLen int32
}

func smallModel() tinyModelConfig {
	return tinyModelConfig{Dim: 8, HiddenDim: 16, NLayers: 2, NHeads: 4, NKVHeads: 2, VocabSize: 16, SeqLen: 8}
}

func writeCheckpoint(t *testing.T, dir string, c tinyModelConfig) string {
	t.Helper()
	path := filepath.Join(dir, "model.bin")

	var buf bytes.Buffer
	fields := []int32{c.Dim, c.HiddenDim, c.NLayers, c.NHeads, c.NKVHeads, c.VocabSize, c.SeqLen}
	for _, f := range fields {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, f))
	}

	dim, hiddenDim, nLayers, nHeads, nKVHeads, vocabSize := int(c.Dim), int(c.HiddenDim), int(c.NLayers), int(c.NHeads), int(c.NKVHeads), int(c.VocabSize)
	headSize := dim / nHeads
	total := vocabSize*dim +
		nLayers*dim +
		nLayers*dim*nHeads*headSize +
		nLayers*dim*nKVHeads*headSize +
		nLayers*dim*nKVHeads*headSize +
		nLayers*nHeads*headSize*dim +
		nLayers*dim +
		nLayers*hiddenDim*dim +
		nLayers*dim*hiddenDim +
		nLayers*hiddenDim*dim +
		dim

	r := rand.New(rand.NewSource(11))
	for i := 0; i < total; i++ {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, float32(r.NormFloat64())*0.1))
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func writeTokenizer(t *testing.T, dir string, vocabSize int) string {
	t.Helper()
	path := filepath.Join(dir, "tokenizer.bin")

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(8)))
	letters := "abcdefghijklmnop"
	for i := 0; i < vocabSize; i++ {
		str := string(letters[i%len(letters)])
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, float32(0)))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(len(str))))
		buf.WriteString(str)
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func writeConfigFile(t *testing.T, dir string) string {
	t.Helper()
	c := smallModel()
	ckpt := writeCheckpoint(t, dir, c)
	tok := writeTokenizer(t, dir, int(c.VocabSize))

	path := filepath.Join(dir, "nornicvec.yaml")
	contents := "" +
		"arena_bytes: 65536\n" +
		"gpu_backend: none\n" +
		"db_dir: " + filepath.Join(dir, "db") + "\n" +
		"capacity: 10\n" +
		"checkpoint_path: " + ckpt + "\n" +
		"tokenizer_path: " + tok + "\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func runCmd(t *testing.T, configPathArg string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPathArg}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_SaveThenRecall(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir)

	_, err := runCmd(t, cfgPath, "save", "the cat sat")
	require.NoError(t, err)
	_, err = runCmd(t, cfgPath, "save", "the dog ran")
	require.NoError(t, err)

	// Querying with a note's own text maximizes its cosine score
	// regardless of how the (untrained, randomly seeded) embedding
	// weights score unrelated text, so this is deterministic without
	// depending on any learned semantics.
	out, err := runCmd(t, cfgPath, "recall", "-k", "1", "the cat sat")
	require.NoError(t, err)
	assert.Contains(t, out, "the cat sat")
}

func TestCLI_SaveRejectsEmptyNote(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir)

	_, err := runCmd(t, cfgPath, "save", "")
	assert.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestCLI_Clear(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir)

	_, err := runCmd(t, cfgPath, "save", "hello")
	require.NoError(t, err)

	_, err = runCmd(t, cfgPath, "clear")
	require.NoError(t, err)

	out, err := runCmd(t, cfgPath, "recall", "hello")
	require.NoError(t, err)
	assert.Empty(t, out)
}
