//go:build !vulkan
// +build !vulkan

package vulkan

import "testing"

func TestIsAvailable(t *testing.T) {
	if IsAvailable() {
		t.Error("IsAvailable() should be false in stub build")
	}
}

func TestDeviceCount(t *testing.T) {
	if DeviceCount() != 0 {
		t.Error("DeviceCount() should be 0 in stub build")
	}
}

func TestNewDevice(t *testing.T) {
	_, err := NewDevice(0)
	if err != ErrVulkanNotAvailable {
		t.Errorf("NewDevice() error = %v, want ErrVulkanNotAvailable", err)
	}
}

func TestStubDeviceOperations(t *testing.T) {
	device := &Device{}
	buffer := Buffer{}

	if _, err := device.NewBuffer([]float32{1.0}); err != ErrVulkanNotAvailable {
		t.Errorf("NewBuffer() error = %v, want ErrVulkanNotAvailable", err)
	}
	if _, err := device.NewEmptyBuffer(10); err != ErrVulkanNotAvailable {
		t.Errorf("NewEmptyBuffer() error = %v, want ErrVulkanNotAvailable", err)
	}
	if err := device.NormalizeVectors(&buffer, 10, 3); err != ErrVulkanNotAvailable {
		t.Errorf("NormalizeVectors() error = %v, want ErrVulkanNotAvailable", err)
	}
	if err := device.CosineSimilarity(&buffer, &buffer, &buffer, 10, 3, true); err != ErrVulkanNotAvailable {
		t.Errorf("CosineSimilarity() error = %v, want ErrVulkanNotAvailable", err)
	}
	if _, _, err := device.TopK(&buffer, 10, 5); err != ErrVulkanNotAvailable {
		t.Errorf("TopK() error = %v, want ErrVulkanNotAvailable", err)
	}
	if _, err := device.Search(&buffer, []float32{1.0}, 10, 1, 5, true); err != ErrVulkanNotAvailable {
		t.Errorf("Search() error = %v, want ErrVulkanNotAvailable", err)
	}
}

func TestStubDeviceMatMul(t *testing.T) {
	device := &Device{}

	if err := device.UploadWeights([]float32{1.0, 2.0}); err != ErrVulkanNotAvailable {
		t.Errorf("UploadWeights() error = %v, want ErrVulkanNotAvailable", err)
	}
	if _, err := device.MatMul(0, 2, 1, []float32{1.0, 1.0}); err != ErrVulkanNotAvailable {
		t.Errorf("MatMul() error = %v, want ErrVulkanNotAvailable", err)
	}
}

func TestBufferStub(t *testing.T) {
	buffer := &Buffer{}
	buffer.Release()
	if buffer.Size() != 0 {
		t.Error("Size() should be 0")
	}
	if buffer.ReadFloat32(5) != nil {
		t.Error("ReadFloat32() should be nil")
	}
}
