package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRKeyRoundTrip(t *testing.T) {
	rkey := RKey("a", "b")
	assert.Equal(t, "a_b", rkey)

	src, tgt, ok := ParseRKey(rkey)
	require.True(t, ok)
	assert.Equal(t, "a", src)
	assert.Equal(t, "b", tgt)
}

func TestParseRKeyRejectsPlainKey(t *testing.T) {
	_, _, ok := ParseRKey("noseparator")
	assert.False(t, ok)
}

func TestBasisLifecycle(t *testing.T) {
	c := New()
	c.PutBasis("b1")
	assert.Equal(t, KindBasis, c.Kind("b1"))
	assert.True(t, c.Exists("b1"))
	assert.Equal(t, []string{"b1"}, c.Bases())

	c.RemoveBasis("b1")
	assert.False(t, c.Exists("b1"))
	assert.Empty(t, c.Bases())
}

func TestVectorSetIndexedUnderBasis(t *testing.T) {
	c := New()
	c.PutBasis("b1")
	c.PutVectorSet("b1", "v1")
	c.PutVectorSet("b1", "v2")

	assert.Equal(t, KindVectorSet, c.Kind("v1"))
	bkey, ok := c.BasisOf("v1")
	require.True(t, ok)
	assert.Equal(t, "b1", bkey)
	assert.Equal(t, []string{"v1", "v2"}, c.VectorSetsOf("b1"))

	c.RemoveVectorSet("v1")
	assert.Equal(t, []string{"v2"}, c.VectorSetsOf("b1"))
	assert.False(t, c.Exists("v1"))
}

func TestRecommendationIndices(t *testing.T) {
	c := New()
	c.PutBasis("b1")
	c.PutVectorSet("b1", "src")
	c.PutVectorSet("b1", "tgt")
	c.PutRecommendation("b1", "src", "tgt")

	assert.Equal(t, []string{"tgt"}, c.TargetsOf("src"))
	assert.Equal(t, []string{"src"}, c.SourcesOf("tgt"))
	assert.Equal(t, KindRecommendation, c.Kind(RKey("src", "tgt")))

	src, tgt, ok := c.RemoveRecommendation(RKey("src", "tgt"))
	require.True(t, ok)
	assert.Equal(t, "src", src)
	assert.Equal(t, "tgt", tgt)
	assert.Empty(t, c.TargetsOf("src"))
	assert.Empty(t, c.SourcesOf("tgt"))
}

func TestRemoveRecommendationUnknownKeyIsNoop(t *testing.T) {
	c := New()
	_, _, ok := c.RemoveRecommendation("missing_key")
	assert.False(t, ok)
}

func TestIncrCounter(t *testing.T) {
	c := New()
	c.PutBasis("b1")
	c.PutVectorSet("b1", "v1")
	assert.Equal(t, 1, c.IncrCounter("v1"))
	assert.Equal(t, 2, c.IncrCounter("v1"))
}
