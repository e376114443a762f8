// Package vectorindex implements the flat, append-only (id, vector) store:
// capacity is fixed at creation, row i's id is whatever caller-supplied id
// was appended at position i, and search dispatches through a gpu.Device
// rather than an approximate graph index.
package vectorindex

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/orneryd/nornicvec/pkg/gpu"
)

// Metric selects the similarity function Search dispatches. MetricL2 is
// reserved and unsupported, matching the reference implementation's
// unused VDB_METRIC_L2 enumerant.
type Metric int32

const (
	MetricL2     Metric = 0
	MetricCosine Metric = 1
	MetricDot    Metric = 2
)

var (
	ErrIndexFull         = errors.New("vectorindex: index at capacity")
	ErrUnknownRow        = errors.New("vectorindex: unknown row id")
	ErrInvalidDimensions = errors.New("vectorindex: vector length does not match index dimension")
	ErrUnsupportedMetric = errors.New("vectorindex: metric not supported")
)

// Result is one scored hit, mirroring the reference's VDB_Result.
type Result struct {
	ID    uint64
	Score float32
}

// Index is a fixed-capacity flat vector store. The zero value is not
// usable; construct with Create or Load.
type Index struct {
	mu sync.RWMutex

	dim      int
	metric   Metric
	count    int
	capacity int

	ids     []uint64
	vectors []float32

	device gpu.Device
}

// Create allocates row arrays sized for capacity. MetricL2 is rejected:
// the reference implementation never computes it, and this module treats
// it as unsupported rather than silently defaulting to another metric.
func Create(dim int, metric Metric, capacity int, device gpu.Device) (*Index, error) {
	if metric == MetricL2 {
		return nil, fmt.Errorf("%w: L2", ErrUnsupportedMetric)
	}
	return &Index{
		dim:      dim,
		metric:   metric,
		capacity: capacity,
		ids:      make([]uint64, 0, capacity),
		vectors:  make([]float32, 0, capacity*dim),
		device:   device,
	}, nil
}

// Add appends vec at row index Count(), recording id as that row's
// user-visible identifier. Fails with ErrIndexFull once count == capacity.
func (idx *Index) Add(id uint64, vec []float32) error {
	if len(vec) != idx.dim {
		return fmt.Errorf("%w: got %d want %d", ErrInvalidDimensions, len(vec), idx.dim)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.count >= idx.capacity {
		return ErrIndexFull
	}

	idx.ids = append(idx.ids, id)
	idx.vectors = append(idx.vectors, vec...)
	idx.count++
	return nil
}

// Set overwrites an existing row in place, used by id-override save. The
// row's id is unchanged; only the vector is replaced.
func (idx *Index) Set(row int, vec []float32) error {
	if len(vec) != idx.dim {
		return fmt.Errorf("%w: got %d want %d", ErrInvalidDimensions, len(vec), idx.dim)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if row < 0 || row >= idx.count {
		return ErrUnknownRow
	}
	copy(idx.vectors[row*idx.dim:row*idx.dim+idx.dim], vec)
	return nil
}

// Count returns the number of rows currently stored.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.count
}

// Dim returns the vector dimensionality.
func (idx *Index) Dim() int { return idx.dim }

// Metric returns the configured similarity metric.
func (idx *Index) Metric() Metric { return idx.metric }

// Search scores query against every row not excluded by mask (mask may be
// nil to search every row), dispatches the GPU Similarity pipeline over
// the compacted search set, and returns the top min(k, n_search) results
// in descending score order, tie-broken by ascending id. Remaining slots
// up to k are padded with {id: 0, score: -1.0}.
func (idx *Index) Search(query []float32, k int, mask []bool) ([]Result, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: got %d want %d", ErrInvalidDimensions, len(query), idx.dim)
	}

	idx.mu.RLock()
	ids, vectors := idx.compactSearchSet(mask)
	metric := gpuMetric(idx.metric)
	dim := idx.dim
	idx.mu.RUnlock()

	n := len(ids)
	out := make([]Result, k)
	for i := range out {
		out[i] = Result{ID: 0, Score: -1.0}
	}
	if n == 0 {
		return out, nil
	}

	scores, err := idx.device.Similarity(vectors, query, uint32(n), uint32(dim), metric)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: similarity dispatch: %w", err)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := scores[order[a]], scores[order[b]]
		if sa != sb {
			return sa > sb
		}
		return ids[order[a]] < ids[order[b]]
	})

	top := k
	if top > n {
		top = n
	}
	for i := 0; i < top; i++ {
		r := order[i]
		out[i] = Result{ID: ids[r], Score: scores[r]}
	}
	return out, nil
}

// compactSearchSet returns the (ids, vectors) pair mask permits, or the
// full arrays when mask is nil. Caller must hold at least a read lock.
func (idx *Index) compactSearchSet(mask []bool) ([]uint64, []float32) {
	if mask == nil {
		return idx.ids, idx.vectors
	}

	ids := make([]uint64, 0, idx.count)
	vectors := make([]float32, 0, idx.count*idx.dim)
	for i := 0; i < idx.count; i++ {
		if i < len(mask) && !mask[i] {
			continue
		}
		ids = append(ids, idx.ids[i])
		vectors = append(vectors, idx.vectors[i*idx.dim:i*idx.dim+idx.dim]...)
	}
	return ids, vectors
}

func gpuMetric(m Metric) gpu.Metric {
	if m == MetricDot {
		return gpu.MetricDot
	}
	return gpu.MetricCosine
}
