//go:build !darwin
// +build !darwin

// Package metal provides Metal GPU acceleration for macOS and Apple Silicon.
// This is a stub implementation for non-Darwin systems.
package metal

import (
	"errors"
)

// Errors
var (
	ErrMetalNotAvailable = errors.New("metal: Metal is not available (non-Darwin platform)")
	ErrDeviceCreation     = errors.New("metal: failed to create Metal device")
	ErrBufferCreation     = errors.New("metal: failed to create buffer")
	ErrKernelExecution    = errors.New("metal: kernel execution failed")
	ErrInvalidBuffer      = errors.New("metal: invalid buffer")
)

// StorageMode selects the Metal resource storage mode for a buffer.
type StorageMode int

const (
	StorageShared   StorageMode = 0
	StorageManaged  StorageMode = 1
	StoragePrivate  StorageMode = 2
)

// Device represents a Metal GPU device (stub).
type Device struct{}

// Buffer represents a Metal memory buffer (stub).
type Buffer struct{}

// SearchResult holds a similarity search result.
type SearchResult struct {
	Index uint32
	Score float32
}

// IsAvailable returns false on non-Darwin systems.
func IsAvailable() bool {
	return false
}

// NewDevice returns an error on non-Darwin systems.
func NewDevice() (*Device, error) {
	return nil, ErrMetalNotAvailable
}

// Release is a no-op stub.
func (d *Device) Release() {}

// Name returns empty string.
func (d *Device) Name() string { return "" }

// MemoryBytes returns 0.
func (d *Device) MemoryBytes() uint64 { return 0 }

// MemoryMB returns 0.
func (d *Device) MemoryMB() int { return 0 }

// NewBuffer returns an error.
func (d *Device) NewBuffer(data []float32, mode StorageMode) (*Buffer, error) {
	return nil, ErrMetalNotAvailable
}

// NewBufferNoCopy returns an error.
func (d *Device) NewBufferNoCopy(data []float32, mode StorageMode) (*Buffer, error) {
	return nil, ErrMetalNotAvailable
}

// NewEmptyBuffer returns an error.
func (d *Device) NewEmptyBuffer(bytes uint64, mode StorageMode) (*Buffer, error) {
	return nil, ErrMetalNotAvailable
}

// Release is a no-op stub.
func (b *Buffer) Release() {}

// Size returns 0.
func (b *Buffer) Size() uint64 { return 0 }

// Contents returns nil.
func (b *Buffer) Contents() []byte { return nil }

// ReadFloat32 returns nil.
func (b *Buffer) ReadFloat32(count int) []float32 { return nil }

// ReadUint32 returns nil.
func (b *Buffer) ReadUint32(count int) []uint32 { return nil }

// WriteFloat32 returns an error.
func (b *Buffer) WriteFloat32(data []float32, offset int) error {
	return ErrMetalNotAvailable
}

// ComputeCosineSimilarity returns an error.
func (d *Device) ComputeCosineSimilarity(embeddings, query, scores *Buffer, n, dimensions uint32, normalized bool) error {
	return ErrMetalNotAvailable
}

// ComputeTopK returns an error.
func (d *Device) ComputeTopK(scores, indices, topkScores *Buffer, n, k uint32) error {
	return ErrMetalNotAvailable
}

// NormalizeVectors returns an error.
func (d *Device) NormalizeVectors(vectors *Buffer, n, dimensions uint32) error {
	return ErrMetalNotAvailable
}

// Search returns an error.
func (d *Device) Search(embeddings *Buffer, query []float32, n, dimensions uint32, k int, normalized bool) ([]SearchResult, error) {
	return nil, ErrMetalNotAvailable
}

// UploadWeights returns an error. A real backend copies the blob into a
// private-storage buffer once, ahead of any MatMul dispatch.
func (d *Device) UploadWeights(blob []float32) error {
	return ErrMetalNotAvailable
}

// MatMul returns an error. A real backend dispatches a compute kernel
// computing one output element per thread as the dot product of input
// with the weight row at weightOffset.
func (d *Device) MatMul(weightOffset, n, d_ uint32, input []float32) ([]float32, error) {
	return nil, ErrMetalNotAvailable
}
