// Package featurize converts SMILES strings into the molecular graphs
// consumed by the solubility network.  Hydrogens are materialized as real
// graph nodes and every bond contributes both edge directions with shared
// features.
package featurize

import (
	"fmt"

	"github.com/akash-acog/sol/internal/intelligence/solnet"
	"github.com/akash-acog/sol/pkg/errors"
)

// Featurizer turns SMILES into feature-annotated graphs.  The zero value is
// usable and produces 35-dim atom features without partial charges.
type Featurizer struct {
	// PartialCharges appends a computed partial-charge slot to every atom
	// vector, raising the node dimension from 35 to 36.
	PartialCharges bool
	// MaxAtoms bounds the atom count after hydrogen materialization.
	// Zero means unbounded.
	MaxAtoms int
}

// NodeDim returns the atom feature width this featurizer produces.
func (f *Featurizer) NodeDim() int {
	if f.PartialCharges {
		return atomFeatureDim + 1
	}
	return atomFeatureDim
}

// EdgeDim returns the bond feature width.
func (f *Featurizer) EdgeDim() int { return bondFeatureDim }

// SmilesToGraph parses, perceives and encodes a single molecule.
func (f *Featurizer) SmilesToGraph(smiles string) (*solnet.MolecularGraph, error) {
	m, err := parseSMILES(smiles)
	if err != nil {
		return nil, err
	}
	m.perceive()

	n := len(m.atoms)
	if n == 0 {
		return nil, errors.New(errors.ErrCodeEmptyMolecule, "molecule has no atoms").
			WithDetail(smiles)
	}
	if f.MaxAtoms > 0 && n > f.MaxAtoms {
		return nil, errors.New(errors.ErrCodeMoleculeTooLarge,
			fmt.Sprintf("molecule has %d atoms, limit is %d", n, f.MaxAtoms)).
			WithDetail(smiles)
	}

	if f.PartialCharges {
		m.computePartialCharges()
	}

	g := &solnet.MolecularGraph{
		NodeFeatures: make([][]float64, n),
		EdgeIndex:    make([][2]int, 0, 2*len(m.bonds)),
		EdgeFeatures: make([][]float64, 0, 2*len(m.bonds)),
		SMILES:       smiles,
	}
	for i := 0; i < n; i++ {
		g.NodeFeatures[i] = m.encodeAtom(i, f.PartialCharges)
	}
	for bi, b := range m.bonds {
		feat := m.encodeBond(bi)
		g.EdgeIndex = append(g.EdgeIndex, [2]int{b.a, b.b}, [2]int{b.b, b.a})
		g.EdgeFeatures = append(g.EdgeFeatures, feat, feat)
	}

	if err := g.Validate(f.NodeDim(), f.EdgeDim()); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeaturizationFailed,
			"featurized graph failed validation")
	}
	return g, nil
}

// SmilesPairToGraphs featurizes a solute/solvent pair with one call.
func (f *Featurizer) SmilesPairToGraphs(soluteSMILES, solventSMILES string) (solute, solvent *solnet.MolecularGraph, err error) {
	solute, err = f.SmilesToGraph(soluteSMILES)
	if err != nil {
		return nil, nil, err
	}
	solvent, err = f.SmilesToGraph(solventSMILES)
	if err != nil {
		return nil, nil, err
	}
	return solute, solvent, nil
}
