package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matches(t *testing.T, data, filter string) bool {
	t.Helper()
	dataRec, err := Parse(data)
	require.NoError(t, err)
	filterRec, err := Parse(filter)
	require.NoError(t, err)
	ok, err := Matches(dataRec, filterRec)
	require.NoError(t, err)
	return ok
}

func TestMatches_PlainEquality(t *testing.T) {
	assert.True(t, matches(t, "status: active", "status: active"))
	assert.False(t, matches(t, "status: inactive", "status: active"))
}

func TestMatches_MissingFieldFails(t *testing.T) {
	assert.False(t, matches(t, "name: alice", "age: 30"))
}

func TestMatches_ImplicitAndAcrossFields(t *testing.T) {
	assert.True(t, matches(t, "age: 30, status: active", "age: 30, status: active"))
	assert.False(t, matches(t, "age: 30, status: inactive", "age: 30, status: active"))
}

func TestMatches_GTE_LTE(t *testing.T) {
	assert.True(t, matches(t, "age: 30", "age: {$gte: 18}"))
	assert.False(t, matches(t, "age: 10", "age: {$gte: 18}"))
	assert.True(t, matches(t, "age: 10", "age: {$lte: 18}"))
	assert.False(t, matches(t, "age: 30", "age: {$lte: 18}"))
}

func TestMatches_NE(t *testing.T) {
	assert.True(t, matches(t, "status: active", "status: {$ne: inactive}"))
	assert.False(t, matches(t, "status: active", "status: {$ne: active}"))
}

func TestMatches_Prefix(t *testing.T) {
	assert.True(t, matches(t, "path: foo/bar", "path: {$prefix: foo}"))
	assert.False(t, matches(t, "path: bar/foo", "path: {$prefix: foo}"))
}

func TestMatches_Contains(t *testing.T) {
	assert.True(t, matches(t, "tags: [go, rust]", "tags: {$contains: go}"))
	assert.False(t, matches(t, "tags: [go, rust]", "tags: {$contains: c}"))
}

func TestMatches_BareArrayMembership(t *testing.T) {
	assert.True(t, matches(t, "tags: [go, rust]", "tags: go"))
	assert.False(t, matches(t, "tags: [go, rust]", "tags: c"))
}

func TestMatches_And(t *testing.T) {
	assert.True(t, matches(t, "age: 30, status: active", "$and: [{age: {$gte: 18}}, {status: active}]"))
	assert.False(t, matches(t, "age: 10, status: active", "$and: [{age: {$gte: 18}}, {status: active}]"))
}

func TestMatches_Or(t *testing.T) {
	assert.True(t, matches(t, "status: pending", "$or: [{status: active}, {status: pending}]"))
	assert.False(t, matches(t, "status: archived", "$or: [{status: active}, {status: pending}]"))
}

func TestMatches_UnknownOperatorErrors(t *testing.T) {
	dataRec, err := Parse("age: 30")
	require.NoError(t, err)
	filterRec, err := Parse("age: {$bogus: 1}")
	require.NoError(t, err)
	_, err = Matches(dataRec, filterRec)
	assert.Error(t, err)
}

func TestMatches_StringOrdinalComparisonIsByteOrder(t *testing.T) {
	assert.True(t, matches(t, "name: banana", "name: {$gte: apple}"))
	assert.False(t, matches(t, "name: apple", "name: {$gte: banana}"))
}

func TestMatches_EmptyFilterAlwaysPasses(t *testing.T) {
	assert.True(t, matches(t, "age: 30", ""))
	assert.True(t, matches(t, "", ""))
}
