// Package curation ranks dataset samples for annotation by blending two
// complementary signals computed over externally produced embedding
// vectors: uniqueness (mean distance to the nearest neighbors) surfaces
// rare samples, representativeness (closeness to the embedding centroid)
// surfaces typical ones. Both are normalized to [0, 1] within the scored
// set before blending.
package curation

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"
)

// embPoint is one embedding vector in the form the KD-tree works on.
type embPoint []float64

// Compare implements the kdtree.Comparable interface
func (p embPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(embPoint)
	return p[d] - q[d]
}

// Dims returns the embedding dimensionality
func (p embPoint) Dims() int { return len(p) }

// Distance returns the squared Euclidean distance between two vectors
func (p embPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(embPoint)
	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += d * d // Return squared distance for efficiency
	}
	return sum
}

// embPoints is a collection of embPoint that satisfies kdtree.Interface
type embPoints []embPoint

func (p embPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p embPoints) Len() int                              { return len(p) }
func (p embPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p embPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(embPlane{embPoints: p, Dim: d}, kdtree.MedianOfRandoms(embPlane{embPoints: p, Dim: d}, 100))
}

// embPlane implements sort.Interface and kdtree.SortSlicer for embPoints
type embPlane struct {
	embPoints
	kdtree.Dim
}

func (p embPlane) Less(i, j int) bool {
	return p.embPoints[i][p.Dim] < p.embPoints[j][p.Dim]
}

func (p embPlane) Slice(start, end int) kdtree.SortSlicer {
	return embPlane{embPoints: p.embPoints[start:end], Dim: p.Dim}
}

func (p embPlane) Swap(i, j int) {
	p.embPoints[i], p.embPoints[j] = p.embPoints[j], p.embPoints[i]
}

// Default scoring parameters.
const (
	DefaultNeighbors = 3
	DefaultAlpha     = 0.7
)

// Params holds the scoring configuration.
type Params struct {
	// Neighbors is how many nearest samples feed the uniqueness distance.
	// Zero or less selects DefaultNeighbors; values beyond the available
	// sample count are clamped to it.
	Neighbors int

	// Alpha weights uniqueness against representativeness in the blend:
	// score = alpha*uniqueness + (1-alpha)*representativeness. It must
	// lie in [0, 1]; zero is a valid weight and means pure
	// representativeness.
	Alpha float64
}

// Score is one sample's ranked result. All three values are normalized to
// [0, 1] within the scored set.
type Score struct {
	Sample             string  `dataframe:"sample"`
	Uniqueness         float64 `dataframe:"uniqueness"`
	Representativeness float64 `dataframe:"representativeness"`
	Blend              float64 `dataframe:"score"`
}

// Scorer computes blended curation scores over a fixed embedding set.
type Scorer struct {
	ids    []string
	vecs   [][]float64
	tree   *kdtree.Tree
	params Params
}

// NewScorer validates the embeddings and indexes them for neighbor
// queries. At least two samples are required and every vector must share
// one dimensionality.
func NewScorer(ids []string, vectors [][]float64, params Params) (*Scorer, error) {
	if len(ids) != len(vectors) {
		return nil, errors.Errorf("got %d ids for %d vectors", len(ids), len(vectors))
	}
	if len(vectors) < 2 {
		return nil, errors.Errorf("need at least 2 samples to score, got %d", len(vectors))
	}
	dims := len(vectors[0])
	if dims == 0 {
		return nil, errors.New("embedding vectors are empty")
	}
	for i, v := range vectors {
		if len(v) != dims {
			return nil, errors.Errorf("sample %s has %d dimensions, want %d", ids[i], len(v), dims)
		}
	}
	if params.Neighbors <= 0 {
		params.Neighbors = DefaultNeighbors
	}
	if params.Neighbors > len(vectors)-1 {
		params.Neighbors = len(vectors) - 1
	}
	if math.IsNaN(params.Alpha) || params.Alpha < 0 || params.Alpha > 1 {
		return nil, errors.Errorf("alpha must be in [0, 1], got %v", params.Alpha)
	}

	// Building the tree partitions the point slice in place, so it gets
	// its own outer slice; ids and vectors keep the caller's order.
	points := make(embPoints, len(vectors))
	for i, v := range vectors {
		points[i] = embPoint(v)
	}
	return &Scorer{
		ids:    ids,
		vecs:   vectors,
		tree:   kdtree.New(points, true),
		params: params,
	}, nil
}

// Rank scores every sample and returns the results ordered best-first,
// ties broken by sample id so repeated runs produce identical output.
func (s *Scorer) Rank() []Score {
	n := len(s.vecs)

	uniqueness := make([]float64, n)
	for i, v := range s.vecs {
		uniqueness[i] = s.meanNeighborDistance(embPoint(v))
	}
	if max := floats.Max(uniqueness); max > 0 {
		floats.Scale(1/max, uniqueness)
	}

	centroid := make([]float64, len(s.vecs[0]))
	for _, v := range s.vecs {
		floats.Add(centroid, v)
	}
	floats.Scale(1/float64(n), centroid)
	representativeness := make([]float64, n)
	for i, v := range s.vecs {
		representativeness[i] = 1 / (1 + floats.Distance(v, centroid, 2))
	}
	if max := floats.Max(representativeness); max > 0 {
		floats.Scale(1/max, representativeness)
	}

	scores := make([]Score, n)
	for i := range scores {
		scores[i] = Score{
			Sample:             s.ids[i],
			Uniqueness:         uniqueness[i],
			Representativeness: representativeness[i],
			Blend:              s.params.Alpha*uniqueness[i] + (1-s.params.Alpha)*representativeness[i],
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Blend != scores[j].Blend {
			return scores[i].Blend > scores[j].Blend
		}
		return scores[i].Sample < scores[j].Sample
	})
	return scores
}

// meanNeighborDistance averages the Euclidean distance from the query to
// its k nearest neighbors. The query itself is in the tree, so the search
// asks for one extra hit and drops the closest zero; a duplicate vector
// still contributes its own zero after that.
func (s *Scorer) meanNeighborDistance(query embPoint) float64 {
	keeper := kdtree.NewNKeeper(s.params.Neighbors + 1)
	s.tree.NearestSet(keeper, query)

	distances := make([]float64, 0, keeper.Len())
	for _, item := range keeper.Heap {
		// Skip the sentinel value
		if item.Comparable == nil {
			continue
		}
		distances = append(distances, math.Sqrt(item.Dist))
	}
	sort.Float64s(distances)
	if len(distances) > 0 {
		distances = distances[1:]
	}
	if len(distances) > s.params.Neighbors {
		distances = distances[:s.params.Neighbors]
	}
	if len(distances) == 0 {
		return 0
	}
	return stat.Mean(distances, nil)
}
