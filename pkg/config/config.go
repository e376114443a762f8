// Package config loads the process-scoped settings pkg/store needs to open
// a checkpoint, tokenizer, and on-disk vector store, following the
// teacher's gpu.Config/pool.PoolConfig convention of a plain struct plus a
// Default constructor and a best-effort file loader.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/orneryd/nornicvec/pkg/gpu"
	"gopkg.in/yaml.v3"
)

// Config holds everything needed to open a Store.
type Config struct {
	// ArenaBytes sizes the bump allocator backing weight/run-state buffers.
	ArenaBytes int `yaml:"arena_bytes"`

	// GPUBackend selects a preferred compute backend: "auto" probes the
	// platform's hardware backends and falls back to "none" (CPU) if none
	// initialize; any other value is tried first, and if it fails the
	// platform's other backends and then "none" (CPU) are tried in turn.
	GPUBackend string `yaml:"gpu_backend"`

	// DBDir is the directory prefix applied to a bare base name (one
	// without a path separator) per spec's persisted-state layout.
	DBDir string `yaml:"db_dir"`

	// Capacity bounds how many rows the vector/text/metadata stores can
	// hold, matching the reference implementation's fixed MAX_NOTES.
	Capacity int `yaml:"capacity"`

	CheckpointPath string `yaml:"checkpoint_path"`
	TokenizerPath  string `yaml:"tokenizer_path"`
}

// Default returns the out-of-the-box configuration: CPU-fallback GPU
// selection, a 256MiB arena, and db/ as the store directory.
func Default() *Config {
	return &Config{
		ArenaBytes:     256 << 20,
		GPUBackend:     "auto",
		DBDir:          "db",
		Capacity:       10000,
		CheckpointPath: "model.bin",
		TokenizerPath:  "tokenizer.bin",
	}
}

// Load reads a YAML config file at path, starting from Default() so a
// partial file only overrides the fields it sets. A missing file is not an
// error: Load returns Default() unchanged, the way the teacher's
// gpu.DefaultConfig() is used whenever no override file is present.
func Load(path string) (*Config, error) {
	c := Default()

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects shapes the rest of the system can't operate on.
func (c *Config) Validate() error {
	if c.ArenaBytes <= 0 {
		return fmt.Errorf("config: arena_bytes must be positive, got %d", c.ArenaBytes)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("config: capacity must be positive, got %d", c.Capacity)
	}
	if _, err := c.gpuBackend(); err != nil {
		return err
	}
	return nil
}

// GPUManagerConfig translates GPUBackend into the gpu.Config Manager needs.
func (c *Config) GPUManagerConfig() (*gpu.Config, error) {
	backend, err := c.gpuBackend()
	if err != nil {
		return nil, err
	}
	if backend == gpu.BackendCPU {
		return &gpu.Config{Enabled: false}, nil
	}
	return &gpu.Config{
		Enabled:          true,
		PreferredBackend: backend,
		FallbackOnError:  true,
	}, nil
}

func (c *Config) gpuBackend() (gpu.Backend, error) {
	switch c.GPUBackend {
	case "", "auto":
		return gpu.BackendNone, nil
	case "none":
		return gpu.BackendCPU, nil
	case "vulkan":
		return gpu.BackendVulkan, nil
	case "cuda":
		return gpu.BackendCUDA, nil
	case "opencl":
		return gpu.BackendOpenCL, nil
	case "metal":
		return gpu.BackendMetal, nil
	default:
		return gpu.BackendNone, fmt.Errorf("config: unknown gpu_backend %q", c.GPUBackend)
	}
}
