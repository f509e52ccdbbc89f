package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/errs"
)

func TestValidKeyFormatRejectsUnderscore(t *testing.T) {
	assert.NoError(t, ValidKeyFormat("b1"))
	err := ValidKeyFormat("b_1")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidKeyFormat))
}

func TestExistsAndNotExists(t *testing.T) {
	c := catalog.New()
	c.PutBasis("b1")

	assert.NoError(t, Exists(c, "b1"))
	assert.True(t, errs.Is(NotExists(c, "b1"), errs.DuplicateEntry))

	assert.True(t, errs.Is(Exists(c, "missing"), errs.UnknownEntry))
	assert.NoError(t, NotExists(c, "missing"))
}

func TestKindIs(t *testing.T) {
	c := catalog.New()
	c.PutBasis("b1")
	c.PutVectorSet("b1", "v1")

	assert.NoError(t, KindIs(c, "b1", catalog.KindBasis))
	assert.True(t, errs.Is(KindIs(c, "b1", catalog.KindVectorSet), errs.KindMismatch))
	assert.True(t, errs.Is(KindIs(c, "missing", catalog.KindBasis), errs.UnknownEntry))
}

func TestValidId(t *testing.T) {
	assert.NoError(t, ValidId(1))
	assert.True(t, errs.Is(ValidId(0), errs.InvalidId))
	assert.True(t, errs.Is(ValidId(-1), errs.InvalidId))
}

func TestValidProbs(t *testing.T) {
	assert.NoError(t, ValidProbs([]float64{0, 0.5, 1}))
	assert.True(t, errs.Is(ValidProbs([]float64{1.1}), errs.InvalidProbability))
	assert.True(t, errs.Is(ValidProbs([]float64{-0.1}), errs.InvalidProbability))
}

func TestValidSparsePairsOddLength(t *testing.T) {
	assert.True(t, errs.Is(ValidSparsePairs(10, []int{1}), errs.InvalidSparsePair))
}

func TestValidSparsePairsAllowsRepeatedIndex(t *testing.T) {
	assert.NoError(t, ValidSparsePairs(10, []int{1, 5, 1, 7}))
}

func TestValidSparsePairsOutOfRange(t *testing.T) {
	assert.True(t, errs.Is(ValidSparsePairs(3, []int{4, 1}), errs.InvalidSparsePair))
	assert.True(t, errs.Is(ValidSparsePairs(3, []int{0, -1}), errs.InvalidSparsePair))
}

func TestSameBasis(t *testing.T) {
	c := catalog.New()
	c.PutBasis("b1")
	c.PutBasis("b2")
	c.PutVectorSet("b1", "v1")
	c.PutVectorSet("b2", "v2")

	assert.True(t, errs.Is(SameBasis(c, "v1", "v2"), errs.BasisMismatch))

	c.PutVectorSet("b1", "v3")
	assert.NoError(t, SameBasis(c, "v1", "v3"))
}

func TestValidDumpPath(t *testing.T) {
	stat := func(p string) (bool, error) {
		if p == "exists.dmp" {
			return true, nil
		}
		return false, nil
	}
	assert.NoError(t, ValidDumpPath("exists.dmp", stat))
	assert.True(t, errs.Is(ValidDumpPath("missing.dmp", stat), errs.DumpMissing))

	statErr := func(p string) (bool, error) { return false, errors.New("boom") }
	assert.True(t, errs.Is(ValidDumpPath("x.dmp", statErr), errs.DumpMissing))
}

// TestValidSparsePairsWithinBoundsAlwaysPasses checks §4.2's actual
// contract against randomly generated pair lists: any list of
// (index, weight) pairs with indices in [0, maxIndex] and non-negative
// weights validates, including lists that repeat an index — repetition
// is never part of the stated contract.
func TestValidSparsePairsWithinBoundsAlwaysPasses(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxIndex := rapid.IntRange(0, 64).Draw(rt, "maxIndex")
		n := rapid.IntRange(0, 32).Draw(rt, "n")

		pairs := make([]int, 0, n*2)
		for i := 0; i < n; i++ {
			idx := rapid.IntRange(0, maxIndex).Draw(rt, "idx")
			weight := rapid.IntRange(0, 1000).Draw(rt, "weight")
			pairs = append(pairs, idx, weight)
		}
		assert.NoError(t, ValidSparsePairs(maxIndex, pairs))
	})
}

// TestValidSparsePairsOutOfRangeIndexAlwaysFails mirrors the above for
// the rejection side: any index outside [0, maxIndex] fails regardless
// of what else is in the list.
func TestValidSparsePairsOutOfRangeIndexAlwaysFails(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxIndex := rapid.IntRange(0, 64).Draw(rt, "maxIndex")
		badIdx := rapid.OneOf(rapid.IntRange(-64, -1), rapid.IntRange(maxIndex+1, maxIndex+64)).Draw(rt, "badIdx")
		weight := rapid.IntRange(0, 1000).Draw(rt, "weight")

		err := ValidSparsePairs(maxIndex, []int{badIdx, weight})
		assert.True(t, errs.Is(err, errs.InvalidSparsePair))
	})
}
