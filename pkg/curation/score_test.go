package curation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorerOutlierIsMostUnique(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	vectors := [][]float64{
		{0, 0},
		{0.1, 0},
		{0, 0.1},
		{5, 5},
	}

	scorer, err := NewScorer(ids, vectors, Params{Neighbors: 2, Alpha: 1})
	require.NoError(t, err)
	scores := scorer.Rank()
	require.Len(t, scores, 4)

	assert.Equal(t, "d", scores[0].Sample, "the far outlier must rank first under pure uniqueness")
	assert.InDelta(t, 1.0, scores[0].Uniqueness, 1e-9)
	for _, score := range scores {
		assert.GreaterOrEqual(t, score.Uniqueness, 0.0)
		assert.LessOrEqual(t, score.Uniqueness, 1.0)
		assert.GreaterOrEqual(t, score.Representativeness, 0.0)
		assert.LessOrEqual(t, score.Representativeness, 1.0)
		assert.GreaterOrEqual(t, score.Blend, 0.0)
		assert.LessOrEqual(t, score.Blend, 1.0)
	}
}

func TestScorerCentroidSampleIsMostRepresentative(t *testing.T) {
	// "center" sits exactly on the centroid of the five vectors.
	ids := []string{"center", "north", "south", "east", "west"}
	vectors := [][]float64{
		{0, 0},
		{0, 1},
		{0, -1},
		{1, 0},
		{-1, 0},
	}

	scorer, err := NewScorer(ids, vectors, Params{Neighbors: 2, Alpha: 0})
	require.NoError(t, err)
	scores := scorer.Rank()

	assert.Equal(t, "center", scores[0].Sample)
	assert.InDelta(t, 1.0, scores[0].Representativeness, 1e-9)
	for _, score := range scores[1:] {
		assert.Less(t, score.Representativeness, 1.0)
	}
}

func TestScorerDuplicateVectorsScoreZeroUniqueness(t *testing.T) {
	ids := []string{"a", "b", "c"}
	vectors := [][]float64{
		{0, 0},
		{0, 0},
		{3, 4},
	}

	scorer, err := NewScorer(ids, vectors, Params{Neighbors: 1, Alpha: 1})
	require.NoError(t, err)
	scores := scorer.Rank()

	assert.Equal(t, "c", scores[0].Sample)
	// The duplicates tie at blend zero and fall back to id order.
	assert.Equal(t, "a", scores[1].Sample)
	assert.Equal(t, "b", scores[2].Sample)
	assert.InDelta(t, 0.0, scores[1].Uniqueness, 1e-9)
	assert.InDelta(t, 0.0, scores[2].Uniqueness, 1e-9)
}

func TestScorerBlendWeighting(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	vectors := [][]float64{
		{0, 0},
		{1, 0},
		{0, 1},
		{10, 10},
	}

	scorer, err := NewScorer(ids, vectors, Params{Neighbors: 2, Alpha: 0.7})
	require.NoError(t, err)
	for _, score := range scorer.Rank() {
		want := 0.7*score.Uniqueness + 0.3*score.Representativeness
		assert.InDelta(t, want, score.Blend, 1e-9)
	}
}

func TestScorerNeighborsClampedToSampleCount(t *testing.T) {
	ids := []string{"a", "b"}
	vectors := [][]float64{{0, 0}, {3, 4}}

	scorer, err := NewScorer(ids, vectors, Params{Neighbors: 10, Alpha: 1})
	require.NoError(t, err)
	scores := scorer.Rank()

	// Each sample has exactly one neighbor at distance 5, so both
	// normalize to uniqueness 1.
	assert.InDelta(t, 1.0, scores[0].Uniqueness, 1e-9)
	assert.InDelta(t, 1.0, scores[1].Uniqueness, 1e-9)
}

func TestNewScorerValidation(t *testing.T) {
	_, err := NewScorer([]string{"a"}, [][]float64{{1}}, Params{})
	require.Error(t, err, "one sample cannot be scored")

	_, err = NewScorer([]string{"a", "b"}, [][]float64{{1}}, Params{})
	require.Error(t, err, "id/vector count mismatch")

	_, err = NewScorer([]string{"a", "b"}, [][]float64{{1, 2}, {1}}, Params{})
	require.Error(t, err, "ragged dimensions")

	_, err = NewScorer([]string{"a", "b"}, [][]float64{{1}, {2}}, Params{Alpha: 1.5})
	require.Error(t, err, "alpha above 1")

	_, err = NewScorer([]string{"a", "b"}, [][]float64{{1}, {2}}, Params{Alpha: math.NaN()})
	require.Error(t, err, "alpha NaN")
}
