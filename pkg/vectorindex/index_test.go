package vectorindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/orneryd/nornicvec/pkg/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cpuDevice(t *testing.T) gpu.Device {
	t.Helper()
	mgr, err := gpu.NewManager(&gpu.Config{Enabled: false})
	require.NoError(t, err)
	return mgr.Device()
}

func TestCreate_RejectsL2(t *testing.T) {
	_, err := Create(4, MetricL2, 10, cpuDevice(t))
	assert.ErrorIs(t, err, ErrUnsupportedMetric)
}

func TestAdd_AppendsAndTracksCount(t *testing.T) {
	idx, err := Create(3, MetricDot, 2, cpuDevice(t))
	require.NoError(t, err)

	require.NoError(t, idx.Add(10, []float32{1, 2, 3}))
	require.NoError(t, idx.Add(20, []float32{4, 5, 6}))
	assert.Equal(t, 2, idx.Count())
}

func TestAdd_FailsWhenFull(t *testing.T) {
	idx, err := Create(2, MetricDot, 1, cpuDevice(t))
	require.NoError(t, err)

	require.NoError(t, idx.Add(1, []float32{1, 1}))
	err = idx.Add(2, []float32{2, 2})
	assert.ErrorIs(t, err, ErrIndexFull)
	assert.Equal(t, 1, idx.Count())
}

func TestAdd_RejectsWrongDimension(t *testing.T) {
	idx, err := Create(3, MetricDot, 10, cpuDevice(t))
	require.NoError(t, err)
	assert.ErrorIs(t, idx.Add(1, []float32{1, 2}), ErrInvalidDimensions)
}

func TestSet_OverwritesRowInPlace(t *testing.T) {
	idx, err := Create(2, MetricDot, 10, cpuDevice(t))
	require.NoError(t, err)
	require.NoError(t, idx.Add(1, []float32{1, 1}))

	require.NoError(t, idx.Set(0, []float32{9, 9}))
	res, err := idx.Search([]float32{9, 9}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res[0].ID)
	assert.InDelta(t, 162, res[0].Score, 1e-4)
}

func TestSet_UnknownRowErrors(t *testing.T) {
	idx, err := Create(2, MetricDot, 10, cpuDevice(t))
	require.NoError(t, err)
	assert.ErrorIs(t, idx.Set(0, []float32{1, 1}), ErrUnknownRow)
}

func TestSearch_OrdersDescendingByScoreTieBreaksByID(t *testing.T) {
	idx, err := Create(1, MetricDot, 10, cpuDevice(t))
	require.NoError(t, err)
	require.NoError(t, idx.Add(5, []float32{1}))
	require.NoError(t, idx.Add(2, []float32{1}))
	require.NoError(t, idx.Add(9, []float32{1}))

	res, err := idx.Search([]float32{1}, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 5, 9}, []uint64{res[0].ID, res[1].ID, res[2].ID})
}

func TestSearch_PadsRemainingSlots(t *testing.T) {
	idx, err := Create(1, MetricDot, 10, cpuDevice(t))
	require.NoError(t, err)
	require.NoError(t, idx.Add(1, []float32{1}))

	res, err := idx.Search([]float32{1}, 3, nil)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, uint64(1), res[0].ID)
	assert.Equal(t, uint64(0), res[1].ID)
	assert.Equal(t, float32(-1.0), res[1].Score)
}

func TestSearch_RespectsMask(t *testing.T) {
	idx, err := Create(1, MetricDot, 10, cpuDevice(t))
	require.NoError(t, err)
	require.NoError(t, idx.Add(1, []float32{1}))
	require.NoError(t, idx.Add(2, []float32{5}))

	res, err := idx.Search([]float32{1}, 2, []bool{false, true})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res[0].ID)
	assert.Equal(t, uint64(0), res[1].ID)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	idx, err := Create(2, MetricCosine, 10, cpuDevice(t))
	require.NoError(t, err)
	require.NoError(t, idx.Add(1, []float32{0.6, 0.8}))
	require.NoError(t, idx.Add(2, []float32{1, 0}))

	path := filepath.Join(t.TempDir(), "test.memo")
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path, cpuDevice(t))
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Count())
	assert.Equal(t, 2, loaded.Dim())
	assert.Equal(t, MetricCosine, loaded.Metric())

	res, err := loaded.Search([]float32{1, 0}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res[0].ID)
}

func TestSave_AllOrNothingOnWriteFailure(t *testing.T) {
	idx, err := Create(1, MetricDot, 10, cpuDevice(t))
	require.NoError(t, err)
	require.NoError(t, idx.Add(1, []float32{1}))

	dir := t.TempDir()
	path := filepath.Join(dir, "base.memo")
	require.NoError(t, idx.Save(path))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	badDir := filepath.Join(dir, "does-not-exist", "base.memo")
	assert.Error(t, idx.Save(badDir))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
