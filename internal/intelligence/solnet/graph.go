package solnet

import (
	"gonum.org/v1/gonum/mat"

	"github.com/akash-acog/sol/pkg/errors"
)

// MolecularGraph is a single molecule's graph representation as produced by
// the featurizer.  The graph is directed with both (i,j) and (j,i) present
// for every bond; both directions carry identical feature vectors.  Immutable
// after construction.
type MolecularGraph struct {
	// NodeFeatures holds one fixed-length feature vector per atom.
	NodeFeatures [][]float64 `json:"node_features"`

	// EdgeIndex holds (source, target) pairs; indices are local to this graph.
	EdgeIndex [][2]int `json:"edge_index"`

	// EdgeFeatures parallels EdgeIndex, one vector per directed edge.
	EdgeFeatures [][]float64 `json:"edge_features"`

	// Positions optionally holds 3D coordinates per atom.  Not consumed by
	// the network.
	Positions [][3]float64 `json:"positions,omitempty"`

	// SMILES records the source string for diagnostics.
	SMILES string `json:"smiles,omitempty"`
}

// NumAtoms returns the node count.
func (g *MolecularGraph) NumAtoms() int { return len(g.NodeFeatures) }

// Validate checks structural invariants: at least one atom, consistent
// feature widths, parallel edge arrays, and in-range edge endpoints.
func (g *MolecularGraph) Validate(nodeDim, edgeDim int) error {
	if len(g.NodeFeatures) == 0 {
		return errors.New(errors.ErrCodeEmptyMolecule, "graph has no atoms").
			WithDetail(g.SMILES)
	}
	for i, f := range g.NodeFeatures {
		if len(f) != nodeDim {
			return errors.Newf(errors.ErrCodeDimensionMismatch,
				"atom %d has %d features, model expects %d", i, len(f), nodeDim)
		}
	}
	if len(g.EdgeFeatures) != len(g.EdgeIndex) {
		return errors.Newf(errors.ErrCodeDimensionMismatch,
			"edge_features length %d does not match edge_index length %d",
			len(g.EdgeFeatures), len(g.EdgeIndex))
	}
	n := len(g.NodeFeatures)
	for i, e := range g.EdgeIndex {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return errors.Newf(errors.ErrCodeDimensionMismatch,
				"edge %d references node out of range [0, %d)", i, n)
		}
		if len(g.EdgeFeatures[i]) != edgeDim {
			return errors.Newf(errors.ErrCodeDimensionMismatch,
				"edge %d has %d features, model expects %d", i, len(g.EdgeFeatures[i]), edgeDim)
		}
	}
	return nil
}

// GraphBatch packs many molecular graphs into flat arrays for vectorized
// processing.  Node indices in EdgeIndex are offset so they address NodeFeatures
// globally; BatchIndex maps every node back to its graph.
type GraphBatch struct {
	// NodeFeatures is (N_total, node_dim).
	NodeFeatures *mat.Dense

	// EdgeIndex holds global (source, target) pairs.
	EdgeIndex [][2]int

	// EdgeFeatures is (E_total, edge_dim); nil when the batch has no edges.
	EdgeFeatures *mat.Dense

	// BatchIndex has length N_total; entry k is the 0-based id of the graph
	// node k belongs to.  Monotonic non-decreasing.
	BatchIndex []int

	// NumGraphs is the number of graphs packed.
	NumGraphs int
}

// NewGraphBatch concatenates graphs into a batch.  Every graph must already
// satisfy Validate for the given dimensions; a graph with zero atoms is
// rejected because it would break the batch_index contract.
func NewGraphBatch(graphs []*MolecularGraph, nodeDim, edgeDim int) (*GraphBatch, error) {
	if len(graphs) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "batch must contain at least one graph")
	}

	totalNodes, totalEdges := 0, 0
	for _, g := range graphs {
		if err := g.Validate(nodeDim, edgeDim); err != nil {
			return nil, err
		}
		totalNodes += g.NumAtoms()
		totalEdges += len(g.EdgeIndex)
	}

	b := &GraphBatch{
		NodeFeatures: mat.NewDense(totalNodes, nodeDim, nil),
		EdgeIndex:    make([][2]int, 0, totalEdges),
		BatchIndex:   make([]int, 0, totalNodes),
		NumGraphs:    len(graphs),
	}
	if totalEdges > 0 {
		b.EdgeFeatures = mat.NewDense(totalEdges, edgeDim, nil)
	}

	nodeOffset, edgeOffset := 0, 0
	for gi, g := range graphs {
		for i, f := range g.NodeFeatures {
			b.NodeFeatures.SetRow(nodeOffset+i, f)
			b.BatchIndex = append(b.BatchIndex, gi)
		}
		for i, e := range g.EdgeIndex {
			b.EdgeIndex = append(b.EdgeIndex, [2]int{e[0] + nodeOffset, e[1] + nodeOffset})
			b.EdgeFeatures.SetRow(edgeOffset+i, g.EdgeFeatures[i])
		}
		nodeOffset += g.NumAtoms()
		edgeOffset += len(g.EdgeIndex)
	}

	return b, nil
}

// NumNodes returns the total node count across all packed graphs.
func (b *GraphBatch) NumNodes() int {
	r, _ := b.NodeFeatures.Dims()
	return r
}
