// Package gpu provides GPU acceleration for nornicvec's inference and
// vector-search compute. This file is the high-level Manager that probes
// the platform for a working hardware backend and falls back to the CPU
// device when none is available.
package gpu

import (
	"runtime"
	"sync"

	"github.com/orneryd/nornicvec/pkg/gpu/cuda"
	"github.com/orneryd/nornicvec/pkg/gpu/metal"
	"github.com/orneryd/nornicvec/pkg/gpu/opencl"
	"github.com/orneryd/nornicvec/pkg/gpu/vulkan"
)

// Manager owns the active compute Device and reports which backend won
// auto-detection.
//
// Usage:
//
//	mgr, err := gpu.NewManager(nil)
//	if err != nil {
//		// Enabled=true with FallbackOnError=false and no hardware present.
//	}
//	defer mgr.Release()
//
//	dev := mgr.Device()
//	dev.UploadWeights(checkpoint.WeightBlob)
//	out, _ := dev.MatMul(offset, n, d, input)
type Manager struct {
	backend Backend
	device  Device

	mu    sync.RWMutex
	stats Stats
}

// Stats tracks backend usage.
type Stats struct {
	MatMulDispatches     int64
	SimilarityDispatches int64
	BytesUploaded        int64
}

// NewManager creates a Manager with auto-detection.
//
// The manager tries backends in platform order:
//   - darwin: Metal
//   - linux/windows: Vulkan, OpenCL, CUDA
//
// If config.PreferredBackend is set, it is tried first. If every hardware
// backend fails and config.FallbackOnError is true (the default), the
// manager runs on the CPU device rather than returning an error.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}

	mgr := &Manager{backend: BackendCPU, device: newCPUDevice()}

	if !config.Enabled {
		return mgr, nil
	}

	if err := mgr.initBackend(config.PreferredBackend); err != nil {
		if config.FallbackOnError {
			return mgr, nil
		}
		return nil, err
	}

	return mgr, nil
}

func (m *Manager) initBackend(preferred Backend) error {
	var backends []Backend
	if preferred != BackendNone {
		backends = append(backends, preferred)
	}

	switch runtime.GOOS {
	case "darwin":
		backends = append(backends, BackendMetal)
	case "linux", "windows":
		backends = append(backends, BackendVulkan, BackendOpenCL, BackendCUDA)
	}

	for _, backend := range backends {
		if err := m.tryBackend(backend); err == nil {
			return nil
		}
	}

	return ErrGPUNotAvailable
}

func (m *Manager) tryBackend(backend Backend) error {
	switch backend {
	case BackendMetal:
		return m.tryMetal()
	case BackendVulkan:
		return m.tryVulkan()
	case BackendOpenCL:
		return m.tryOpenCL()
	case BackendCUDA:
		return m.tryCUDA()
	default:
		return ErrGPUNotAvailable
	}
}

func (m *Manager) tryMetal() error {
	if !metal.IsAvailable() {
		return ErrGPUNotAvailable
	}
	device, err := metal.NewDevice()
	if err != nil {
		return err
	}
	m.backend = BackendMetal
	m.device = &metalDevice{dev: device}
	return nil
}

func (m *Manager) tryVulkan() error {
	if !vulkan.IsAvailable() {
		return ErrGPUNotAvailable
	}
	device, err := vulkan.NewDevice(0)
	if err != nil {
		return err
	}
	m.backend = BackendVulkan
	m.device = &vulkanDevice{dev: device}
	return nil
}

func (m *Manager) tryOpenCL() error {
	if !opencl.IsAvailable() {
		return ErrGPUNotAvailable
	}
	device, err := opencl.NewDevice(0)
	if err != nil {
		return err
	}
	m.backend = BackendOpenCL
	m.device = &openclDevice{dev: device}
	return nil
}

func (m *Manager) tryCUDA() error {
	if !cuda.IsAvailable() {
		return ErrGPUNotAvailable
	}
	device, err := cuda.NewDevice(0)
	if err != nil {
		return err
	}
	m.backend = BackendCUDA
	m.device = &cudaDevice{dev: device}
	return nil
}

// Device returns the active compute device, instrumented to update Stats.
func (m *Manager) Device() Device {
	return &instrumentedDevice{mgr: m, inner: m.device}
}

// instrumentedDevice wraps the active backend so Manager.Stats() reflects
// real dispatch counts regardless of which backend is active.
type instrumentedDevice struct {
	mgr   *Manager
	inner Device
}

func (d *instrumentedDevice) UploadWeights(blob []float32) error {
	err := d.inner.UploadWeights(blob)
	if err == nil {
		d.mgr.mu.Lock()
		d.mgr.stats.BytesUploaded += int64(len(blob) * 4)
		d.mgr.mu.Unlock()
	}
	return err
}

func (d *instrumentedDevice) MatMul(weightOffset, n, dd uint32, input []float32) ([]float32, error) {
	out, err := d.inner.MatMul(weightOffset, n, dd, input)
	if err == nil {
		d.mgr.recordMatMul()
	}
	return out, err
}

func (d *instrumentedDevice) Similarity(embeddings, query []float32, count, dim uint32, metric Metric) ([]float32, error) {
	out, err := d.inner.Similarity(embeddings, query, count, dim, metric)
	if err == nil {
		d.mgr.recordSimilarity()
	}
	return out, err
}

func (d *instrumentedDevice) Name() string { return d.inner.Name() }
func (d *instrumentedDevice) Release()     { d.inner.Release() }

// Backend reports which backend won auto-detection.
func (m *Manager) Backend() Backend {
	return m.backend
}

// IsHardwareAccelerated reports whether a non-CPU backend is active.
func (m *Manager) IsHardwareAccelerated() bool {
	return m.backend != BackendCPU && m.backend != BackendNone
}

// Stats returns backend usage counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

func (m *Manager) recordMatMul() {
	m.mu.Lock()
	m.stats.MatMulDispatches++
	m.mu.Unlock()
}

func (m *Manager) recordSimilarity() {
	m.mu.Lock()
	m.stats.SimilarityDispatches++
	m.mu.Unlock()
}

// Release frees the active device's resources.
func (m *Manager) Release() {
	if m.device != nil {
		m.device.Release()
	}
	m.backend = BackendNone
}
