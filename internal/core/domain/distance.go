package domain

import (
	"math"
	"sort"
)

// DistanceMetric defines how two embedding vectors are compared.
// Every metric returns a distance: lower means more similar.
type DistanceMetric string

// Available distance metrics.
const (
	// DistanceL2 is the squared Euclidean distance.
	DistanceL2 DistanceMetric = "l2"

	// DistanceCosine is one minus the cosine similarity.
	DistanceCosine DistanceMetric = "cosine"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	return m == DistanceL2 || m == DistanceCosine
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// Distance compares a and b under the metric.
// Vectors must have equal length; callers check dimensions first.
func (m DistanceMetric) Distance(a, b []float32) float64 {
	if m == DistanceCosine {
		return 1 - cosineSimilarity(a, b)
	}
	return squaredL2(a, b)
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank orders matches by ascending distance and keeps at most k.
// Ties are broken by id so results are reproducible.
func Rank(matches []Match, k int) []Match {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
