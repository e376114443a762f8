package gpu

import (
	"github.com/orneryd/nornicvec/pkg/gpu/cuda"
	"github.com/orneryd/nornicvec/pkg/gpu/metal"
	"github.com/orneryd/nornicvec/pkg/gpu/opencl"
	"github.com/orneryd/nornicvec/pkg/gpu/vulkan"
)

// Each backend package exposes its own Buffer/Device types rather than this
// package's Device interface, since each is also usable standalone. These
// adapters translate the unified Device contract onto each backend's native
// calling convention: stage embeddings/query into device buffers, dispatch,
// read back.
//
// Metric maps onto the backends' "normalized" CosineSimilarity flag: Dot
// reuses the pre-normalized kernel variant (a plain dot product, no norm
// division), Cosine uses the full kernel (dot divided by both norms).

type vulkanDevice struct{ dev *vulkan.Device }

func (d *vulkanDevice) UploadWeights(blob []float32) error { return d.dev.UploadWeights(blob) }

func (d *vulkanDevice) MatMul(weightOffset, n, dd uint32, input []float32) ([]float32, error) {
	return d.dev.MatMul(weightOffset, n, dd, input)
}

func (d *vulkanDevice) Similarity(embeddings, query []float32, count, dim uint32, metric Metric) ([]float32, error) {
	embBuf, err := d.dev.NewBuffer(embeddings)
	if err != nil {
		return nil, err
	}
	defer embBuf.Release()
	queryBuf, err := d.dev.NewBuffer(query)
	if err != nil {
		return nil, err
	}
	defer queryBuf.Release()
	scoresBuf, err := d.dev.NewEmptyBuffer(uint64(count))
	if err != nil {
		return nil, err
	}
	defer scoresBuf.Release()

	if err := d.dev.CosineSimilarity(embBuf, queryBuf, scoresBuf, count, dim, metric == MetricDot); err != nil {
		return nil, err
	}
	return scoresBuf.ReadFloat32(int(count)), nil
}

func (d *vulkanDevice) Name() string { return "vulkan" }
func (d *vulkanDevice) Release()     { d.dev.Release() }

type cudaDevice struct{ dev *cuda.Device }

func (d *cudaDevice) UploadWeights(blob []float32) error { return d.dev.UploadWeights(blob) }

func (d *cudaDevice) MatMul(weightOffset, n, dd uint32, input []float32) ([]float32, error) {
	return d.dev.MatMul(weightOffset, n, dd, input)
}

func (d *cudaDevice) Similarity(embeddings, query []float32, count, dim uint32, metric Metric) ([]float32, error) {
	embBuf, err := d.dev.NewBuffer(embeddings, cuda.MemoryDevice)
	if err != nil {
		return nil, err
	}
	defer embBuf.Release()
	queryBuf, err := d.dev.NewBuffer(query, cuda.MemoryDevice)
	if err != nil {
		return nil, err
	}
	defer queryBuf.Release()
	scoresBuf, err := d.dev.NewEmptyBuffer(uint64(count), cuda.MemoryDevice)
	if err != nil {
		return nil, err
	}
	defer scoresBuf.Release()

	if err := d.dev.CosineSimilarity(embBuf, queryBuf, scoresBuf, count, dim, metric == MetricDot); err != nil {
		return nil, err
	}
	return scoresBuf.ReadFloat32(int(count)), nil
}

func (d *cudaDevice) Name() string { return d.dev.Name() }
func (d *cudaDevice) Release()     { d.dev.Release() }

type openclDevice struct{ dev *opencl.Device }

func (d *openclDevice) UploadWeights(blob []float32) error { return d.dev.UploadWeights(blob) }

func (d *openclDevice) MatMul(weightOffset, n, dd uint32, input []float32) ([]float32, error) {
	return d.dev.MatMul(weightOffset, n, dd, input)
}

func (d *openclDevice) Similarity(embeddings, query []float32, count, dim uint32, metric Metric) ([]float32, error) {
	embBuf, err := d.dev.NewBuffer(embeddings)
	if err != nil {
		return nil, err
	}
	defer embBuf.Release()
	queryBuf, err := d.dev.NewBuffer(query)
	if err != nil {
		return nil, err
	}
	defer queryBuf.Release()
	scoresBuf, err := d.dev.NewEmptyBuffer(uint64(count))
	if err != nil {
		return nil, err
	}
	defer scoresBuf.Release()

	if err := d.dev.CosineSimilarity(embBuf, queryBuf, scoresBuf, count, dim, metric == MetricDot); err != nil {
		return nil, err
	}
	return scoresBuf.ReadFloat32(int(count)), nil
}

func (d *openclDevice) Name() string { return d.dev.Name() }
func (d *openclDevice) Release()     { d.dev.Release() }

type metalDevice struct{ dev *metal.Device }

func (d *metalDevice) UploadWeights(blob []float32) error { return d.dev.UploadWeights(blob) }

func (d *metalDevice) MatMul(weightOffset, n, dd uint32, input []float32) ([]float32, error) {
	return d.dev.MatMul(weightOffset, n, dd, input)
}

func (d *metalDevice) Similarity(embeddings, query []float32, count, dim uint32, metric Metric) ([]float32, error) {
	embBuf, err := d.dev.NewBuffer(embeddings, metal.StorageShared)
	if err != nil {
		return nil, err
	}
	defer embBuf.Release()
	queryBuf, err := d.dev.NewBuffer(query, metal.StorageShared)
	if err != nil {
		return nil, err
	}
	defer queryBuf.Release()
	scoresBuf, err := d.dev.NewEmptyBuffer(uint64(count)*4, metal.StorageShared)
	if err != nil {
		return nil, err
	}
	defer scoresBuf.Release()

	if err := d.dev.ComputeCosineSimilarity(embBuf, queryBuf, scoresBuf, count, dim, metric == MetricDot); err != nil {
		return nil, err
	}
	return scoresBuf.ReadFloat32(int(count)), nil
}

func (d *metalDevice) Name() string { return d.dev.Name() }
func (d *metalDevice) Release()     { d.dev.Release() }
