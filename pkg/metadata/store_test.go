package metadata

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddAndCount(t *testing.T) {
	s := Create(10)
	id1, err := s.Add("tag: go")
	require.NoError(t, err)
	id2, err := s.Add("")
	require.NoError(t, err)

	assert.Equal(t, 0, id1)
	assert.Equal(t, 1, id2)
	assert.Equal(t, 2, s.Count())
}

func TestStore_Set_UnknownRowErrors(t *testing.T) {
	s := Create(10)
	err := s.Set(0, "tag: go")
	assert.Error(t, err)
}

func TestStore_Filter_ProducesMaskOverRows(t *testing.T) {
	s := Create(10)
	_, err := s.Add("status: active")
	require.NoError(t, err)
	_, err = s.Add("status: archived")
	require.NoError(t, err)
	_, err = s.Add("")
	require.NoError(t, err)

	mask, err := s.Filter("status: active")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, mask)
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	s := Create(10)
	_, err := s.Add("status: active")
	require.NoError(t, err)
	_, err = s.Add("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.meta")
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Count())

	mask, err := loaded.Filter("status: active")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, mask)
}
