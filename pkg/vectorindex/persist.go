package vectorindex

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/orneryd/nornicvec/pkg/gpu"
)

// Save writes the index to path in the §6 Index file format: int32 dim,
// int32 count, int32 metric, count×uint64 ids, count×dim×float32 vectors.
// It writes to a temp file and renames over path so a save is all-or-
// nothing with respect to the previous on-disk state.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("vectorindex: creating temp file: %w", err)
	}

	if err := writeIndex(f, idx); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("vectorindex: closing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("vectorindex: renaming temp file: %w", err)
	}
	return nil
}

func writeIndex(w io.Writer, idx *Index) error {
	if err := binary.Write(w, binary.LittleEndian, int32(idx.dim)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(idx.count)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(idx.metric)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, idx.ids); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, idx.vectors)
}

// Load reads an index file back. It allocates headroom beyond the stored
// count the way the reference implementation does (count+1000), so the
// loaded index can keep accepting Add calls without an immediate resize.
func Load(path string, device gpu.Device) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: opening %s: %w", path, err)
	}
	defer f.Close()

	var dim, count, metric int32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("vectorindex: reading dim: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("vectorindex: reading count: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &metric); err != nil {
		return nil, fmt.Errorf("vectorindex: reading metric: %w", err)
	}

	idx, err := Create(int(dim), Metric(metric), int(count)+1000, device)
	if err != nil {
		return nil, err
	}

	idx.ids = make([]uint64, count, idx.capacity)
	if err := binary.Read(f, binary.LittleEndian, idx.ids); err != nil {
		return nil, fmt.Errorf("vectorindex: reading ids: %w", err)
	}

	idx.vectors = make([]float32, int(count)*int(dim), idx.capacity*int(dim))
	if err := binary.Read(f, binary.LittleEndian, idx.vectors); err != nil {
		return nil, fmt.Errorf("vectorindex: reading vectors: %w", err)
	}
	idx.count = int(count)

	return idx, nil
}
