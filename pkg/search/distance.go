package search

import (
	"fmt"
	"math"
)

// Metric selects the distance function for similarity search
type Metric string

const (
	MetricEuclidean Metric = "euclidean"
	MetricCosine    Metric = "cosine"
)

// Presentational similarity scales. Euclidean distances run larger than
// cosine distances, so its scale is wider. These constants only shape the
// display score; ranking is always by raw distance.
const (
	euclideanScale = 2.0
	cosineScale    = 0.25
)

// ParseMetric validates a metric name. Malformed metrics are caller contract
// violations and fail fast.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricEuclidean, MetricCosine:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("unknown distance metric %q", s)
	}
}

// Distance computes the metric between two feature vectors. Vectors of
// unequal length are compared as if the shorter one were zero-padded; with
// the fixed feature schema this is an invariant guard, not a routine path.
func (m Metric) Distance(a, b []float64) float64 {
	switch m {
	case MetricCosine:
		return Cosine(a, b)
	default:
		return Euclidean(a, b)
	}
}

// Similarity maps a distance into (0, 1] for display: exp(-distance/scale)
func (m Metric) Similarity(distance float64) float64 {
	scale := euclideanScale
	if m == MetricCosine {
		scale = cosineScale
	}
	return math.Exp(-distance / scale)
}

// Euclidean is the L2 norm of the vector difference
func Euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		d := at(a, i) - at(b, i)
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Cosine is 1 - cosine similarity, in [0, 2]. A zero vector has no direction;
// it is treated as orthogonal to everything (distance 1.0) rather than
// dividing by zero.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := at(a, i), at(b, i)
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}
