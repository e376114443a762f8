package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	t.Run("falls back to CPU when disabled", func(t *testing.T) {
		mgr, err := NewManager(&Config{Enabled: false})
		require.NoError(t, err)
		assert.Equal(t, BackendCPU, mgr.Backend())
		assert.False(t, mgr.IsHardwareAccelerated())
	})

	t.Run("default config falls back to CPU on this platform", func(t *testing.T) {
		mgr, err := NewManager(nil)
		require.NoError(t, err)
		assert.NotNil(t, mgr.Device())
	})

	t.Run("fallback disabled with no hardware returns error", func(t *testing.T) {
		_, err := NewManager(&Config{Enabled: true, FallbackOnError: false, PreferredBackend: BackendVulkan})
		assert.ErrorIs(t, err, ErrGPUNotAvailable)
	})
}

func TestManager_Device(t *testing.T) {
	mgr, err := NewManager(&Config{Enabled: false})
	require.NoError(t, err)

	dev := mgr.Device()
	require.NoError(t, dev.UploadWeights([]float32{1, 0, 0, 1}))

	out, err := dev.MatMul(0, 2, 2, []float32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, out)

	stats := mgr.Stats()
	assert.Equal(t, int64(1), stats.MatMulDispatches)
	assert.Equal(t, int64(16), stats.BytesUploaded)
}

func TestBackend_String(t *testing.T) {
	assert.Equal(t, "cpu", BackendCPU.String())
	assert.Equal(t, "vulkan", BackendVulkan.String())
	assert.Equal(t, "none", BackendNone.String())
}
