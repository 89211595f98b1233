package solnet

import (
	"math"
	"math/rand"
	"testing"
)

// testConfig returns a small configuration that keeps tests fast.
func testConfig() *Config {
	return &Config{
		ModelVersion:     "test",
		NodeDim:          6,
		EdgeDim:          4,
		HiddenDim:        8,
		MPSteps:          2,
		S2SSteps:         2,
		EdgeMLPHidden:    16,
		HeadDims:         []int{12, 6},
		Dropout:          0.15,
		ScaleInteraction: true,
	}
}

// chainGraph builds a path graph with n atoms and random features.  Each bond
// appears in both directions with identical features.
func chainGraph(rng *rand.Rand, n, nodeDim, edgeDim int) *MolecularGraph {
	g := &MolecularGraph{
		NodeFeatures: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		f := make([]float64, nodeDim)
		for j := range f {
			f[j] = rng.NormFloat64()
		}
		g.NodeFeatures[i] = f
	}
	for i := 0; i+1 < n; i++ {
		f := make([]float64, edgeDim)
		for j := range f {
			f[j] = rng.NormFloat64()
		}
		g.EdgeIndex = append(g.EdgeIndex, [2]int{i, i + 1}, [2]int{i + 1, i})
		g.EdgeFeatures = append(g.EdgeFeatures, f, append([]float64(nil), f...))
	}
	return g
}

// permuteGraph reorders a graph's nodes by perm (perm[i] is the new position
// of old node i) and remaps the edges accordingly.
func permuteGraph(g *MolecularGraph, perm []int) *MolecularGraph {
	out := &MolecularGraph{
		NodeFeatures: make([][]float64, len(g.NodeFeatures)),
		EdgeIndex:    make([][2]int, len(g.EdgeIndex)),
		EdgeFeatures: make([][]float64, len(g.EdgeFeatures)),
	}
	for i, f := range g.NodeFeatures {
		out.NodeFeatures[perm[i]] = f
	}
	for i, e := range g.EdgeIndex {
		out.EdgeIndex[i] = [2]int{perm[e[0]], perm[e[1]]}
		out.EdgeFeatures[i] = g.EdgeFeatures[i]
	}
	return out
}

func almostEqual(t *testing.T, want, got, tol float64, msg string) {
	t.Helper()
	if math.Abs(want-got) > tol {
		t.Errorf("%s: want %v, got %v (tolerance %v)", msg, want, got, tol)
	}
}
