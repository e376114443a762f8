package metadata

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/orneryd/nornicvec/pkg/nvecerr"
)

// Store holds one raw flow-syntax string per row, parallel to a
// vectorindex.Index and textstore.Store. An empty string means "no
// metadata" for that row.
type Store struct {
	mu       sync.RWMutex
	raw      []string
	capacity int
}

// Create allocates a Store sized for capacity rows.
func Create(capacity int) *Store {
	return &Store{raw: make([]string, 0, capacity), capacity: capacity}
}

// Add appends flow (which may be empty) and returns its row index.
func (s *Store) Add(flow string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.raw) >= s.capacity {
		return 0, fmt.Errorf("metadata: store at capacity")
	}
	id := len(s.raw)
	s.raw = append(s.raw, flow)
	return id, nil
}

// Set overwrites row's raw flow string, used by id-override save.
func (s *Store) Set(row int, flow string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 0 || row >= len(s.raw) {
		return nvecerr.ErrUnknownOverrideID
	}
	s.raw[row] = flow
	return nil
}

// Count returns the number of rows currently stored.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.raw)
}

// Filter parses filterExpr once, then evaluates it against every row,
// writing mask[i] = true for rows that pass. Rows with no metadata
// evaluate against an empty Record.
func (s *Store) Filter(filterExpr string) ([]bool, error) {
	filterRec, err := Parse(filterExpr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", nvecerr.ErrMalformedFilter, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	mask := make([]bool, len(s.raw))
	for i, raw := range s.raw {
		dataRec, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", nvecerr.ErrMalformedFilter, i, err)
		}
		ok, err := Matches(dataRec, filterRec)
		if err != nil {
			return nil, err
		}
		mask[i] = ok
	}
	return mask, nil
}

// Save writes the store in the same layout as textstore's Text file:
// int32 count, then per row int32 length followed by raw bytes.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("metadata: creating temp file: %w", err)
	}

	if err := writeRows(f, s.raw); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("metadata: closing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("metadata: renaming temp file: %w", err)
	}
	return nil
}

func writeRows(w io.Writer, rows []string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(rows))); err != nil {
		return err
	}
	for _, row := range rows {
		if err := binary.Write(w, binary.LittleEndian, int32(len(row))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, row); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a metadata file back, with count+1000 headroom like
// textstore.Load.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: opening %s: %w", path, err)
	}
	defer f.Close()

	var count int32
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("metadata: reading count: %w", err)
	}

	s := Create(int(count) + 1000)
	for i := int32(0); i < count; i++ {
		var length int32
		if err := binary.Read(f, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("metadata: reading row %d length: %w", i, err)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("metadata: reading row %d text: %w", i, err)
		}
		s.raw = append(s.raw, string(buf))
	}
	return s, nil
}
