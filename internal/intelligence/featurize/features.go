package featurize

// Atom feature layout. One-hot blocks use a trailing "other" slot where
// noted; out-of-range values land there.
const (
	// Symbols for the atomic-number one-hot, last slot is "other".
	atomSymbolDim  = 11
	atomDegreeDim  = 7 // degrees 0..5, then >5
	atomChargeDim  = 1 // formal charge as a scalar, not one-hot
	atomHybridDim  = 6 // SP, SP2, SP3, SP3D, SP3D2, other
	atomAromDim    = 1
	atomNumHDim    = 6 // 0..4 attached hydrogens, then >4
	atomChiralDim  = 3 // unspecified, clockwise, counter-clockwise
	atomFeatureDim = atomSymbolDim + atomDegreeDim + atomChargeDim +
		atomHybridDim + atomAromDim + atomNumHDim + atomChiralDim // 35

	// Bond features: type one-hot (single, double, triple, aromatic),
	// conjugated, in-ring, stereo one-hot (none, any, Z, E).
	bondTypeDim    = 4
	bondStereoDim  = 4
	bondFeatureDim = bondTypeDim + 2 + bondStereoDim // 10
)

// atomSymbolIndex maps the atomic numbers covered by the one-hot block to
// their slot; everything else uses the final "other" slot.
var atomSymbolIndex = map[int]int{
	1:  0, // H
	6:  1, // C
	7:  2, // N
	8:  3, // O
	9:  4, // F
	15: 5, // P
	16: 6, // S
	17: 7, // Cl
	35: 8, // Br
	53: 9, // I
}

// encodeAtom writes the feature vector for atom i.  When withCharges is set
// the vector carries an extra trailing partial-charge slot and m.charges
// must already be populated.
func (m *molecule) encodeAtom(i int, withCharges bool) []float64 {
	dim := atomFeatureDim
	if withCharges {
		dim++
	}
	f := make([]float64, dim)
	a := m.atoms[i]
	off := 0

	// Atomic symbol.
	if idx, ok := atomSymbolIndex[a.atomicNum]; ok {
		f[off+idx] = 1
	} else {
		f[off+atomSymbolDim-1] = 1
	}
	off += atomSymbolDim

	// Degree, counting every neighbour including materialized hydrogens.
	deg := len(m.adj[i])
	if deg > 5 {
		deg = 6
	}
	f[off+deg] = 1
	off += atomDegreeDim

	// Formal charge, kept as a signed scalar.
	f[off] = float64(a.charge)
	off += atomChargeDim

	f[off+m.hybridizationOf(i)] = 1
	off += atomHybridDim

	if a.aromatic {
		f[off] = 1
	}
	off += atomAromDim

	numH := 0
	for _, bi := range m.adj[i] {
		other := m.bonds[bi].a
		if other == i {
			other = m.bonds[bi].b
		}
		if m.atoms[other].isHydrogen {
			numH++
		}
	}
	if numH > 4 {
		numH = 5
	}
	f[off+numH] = 1
	off += atomNumHDim

	f[off+a.chirality] = 1
	off += atomChiralDim

	if withCharges {
		f[off] = m.charges[i]
	}
	return f
}

// encodeBond writes the feature vector for bond bi.  Both edge directions of
// a bond share the same vector.
func (m *molecule) encodeBond(bi int) []float64 {
	f := make([]float64, bondFeatureDim)
	b := m.bonds[bi]

	switch b.order {
	case orderSingle:
		f[0] = 1
	case orderDouble:
		f[1] = 1
	case orderTriple:
		f[2] = 1
	case orderAromatic:
		f[3] = 1
	}
	if b.conjugated {
		f[4] = 1
	}
	if b.ring {
		f[5] = 1
	}
	f[6+b.stereo] = 1
	return f
}
