package featurize

import "math"

// buildAdjacency fills m.adj from m.bonds.
func (m *molecule) buildAdjacency() {
	m.adj = make([][]int, len(m.atoms))
	for bi, b := range m.bonds {
		m.adj[b.a] = append(m.adj[b.a], bi)
		m.adj[b.b] = append(m.adj[b.b], bi)
	}
}

// bondOrderSum returns the total bond order at atom i, counting aromatic
// bonds as 1.5.
func (m *molecule) bondOrderSum(i int) float64 {
	sum := 0.0
	for _, bi := range m.adj[i] {
		switch m.bonds[bi].order {
		case orderAromatic:
			sum += 1.5
		default:
			sum += float64(m.bonds[bi].order)
		}
	}
	return sum
}

// implicitHCount estimates the hydrogens to materialize on atom i.  Bracket
// atoms carry their count explicitly; organic-subset atoms fill up to the
// element's default valence, adjusted by formal charge.  This is the usual
// lightweight approximation of a chemistry kernel's valence model.
func (m *molecule) implicitHCount(i int) int {
	a := m.atoms[i]
	if a.bracket {
		if a.explicitH > 0 {
			return a.explicitH
		}
		return 0
	}
	valence, ok := defaultValence[a.atomicNum]
	if !ok {
		return 0
	}
	switch {
	case a.atomicNum == 7 || a.atomicNum == 15: // N, P
		valence += a.charge
	case a.atomicNum == 8 || a.atomicNum == 16: // O, S
		valence += a.charge
	case a.atomicNum == 6: // C
		valence -= int(math.Abs(float64(a.charge)))
	}
	h := valence - int(math.Ceil(m.bondOrderSum(i)))
	if h < 0 {
		return 0
	}
	return h
}

// materializeHydrogens appends one explicit hydrogen node plus a single bond
// for every implicit or bracket-specified hydrogen, mirroring AddHs-style
// expansion so hydrogens participate in message passing.
func (m *molecule) materializeHydrogens() {
	heavy := len(m.atoms)
	for i := 0; i < heavy; i++ {
		if m.atoms[i].isHydrogen {
			continue
		}
		for k := 0; k < m.implicitHCount(i); k++ {
			hIdx := len(m.atoms)
			m.atoms = append(m.atoms, atom{
				symbol:     "H",
				atomicNum:  1,
				explicitH:  0,
				isHydrogen: true,
			})
			m.bonds = append(m.bonds, bond{a: i, b: hIdx, order: orderSingle})
		}
	}
	m.buildAdjacency()
}

// perceiveRings marks every bond that lies on a cycle.  A bond is a ring
// bond iff it is not a bridge; bridges are found with one DFS over the bond
// graph.
func (m *molecule) perceiveRings() {
	n := len(m.atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	var dfs func(u, parentBond int)
	dfs = func(u, parentBond int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, bi := range m.adj[u] {
			if bi == parentBond {
				continue
			}
			b := &m.bonds[bi]
			v := b.a
			if v == u {
				v = b.b
			}
			if disc[v] == -1 {
				dfs(v, bi)
				if low[v] < low[u] {
					low[u] = low[v]
				}
				// A bridge cannot be on a cycle; everything else is.
				if low[v] <= disc[u] {
					b.ring = true
				}
			} else {
				if disc[v] < low[u] {
					low[u] = disc[v]
				}
				if disc[v] < disc[u] {
					b.ring = true
				}
			}
		}
	}

	for u := 0; u < n; u++ {
		if disc[u] == -1 {
			dfs(u, -1)
		}
	}
}

// atomInRing reports whether atom i touches any ring bond.
func (m *molecule) atomInRing(i int) bool {
	for _, bi := range m.adj[i] {
		if m.bonds[bi].ring {
			return true
		}
	}
	return false
}

// hasMultipleBond reports whether atom i has a double, triple or aromatic
// bond.
func (m *molecule) hasMultipleBond(i int) bool {
	for _, bi := range m.adj[i] {
		if m.bonds[bi].order != orderSingle {
			return true
		}
	}
	return false
}

// hybridization bins: 0 SP, 1 SP2, 2 SP3, 3 SP3D, 4 SP3D2, 5 other.
const (
	hybSP = iota
	hybSP2
	hybSP3
	hybSP3D
	hybSP3D2
	hybOther
)

// hybridizationOf estimates an atom's hybridization from its bonds and
// degree.  Hydrogens have no hybrid orbital and map to "other".
func (m *molecule) hybridizationOf(i int) int {
	a := m.atoms[i]
	if a.isHydrogen {
		return hybOther
	}

	doubles, triples := 0, 0
	for _, bi := range m.adj[i] {
		switch m.bonds[bi].order {
		case orderDouble:
			doubles++
		case orderTriple:
			triples++
		}
	}

	switch {
	case triples > 0 || doubles >= 2:
		return hybSP
	case a.aromatic || doubles == 1:
		return hybSP2
	case len(m.adj[i]) == 5:
		return hybSP3D
	case len(m.adj[i]) >= 6:
		return hybSP3D2
	default:
		return hybSP3
	}
}

// perceiveConjugation marks bonds whose two atoms both carry pi systems:
// aromatic bonds always, and any bond whose endpoints each have a multiple
// bond somewhere.
func (m *molecule) perceiveConjugation() {
	for bi := range m.bonds {
		b := &m.bonds[bi]
		if b.order == orderAromatic {
			b.conjugated = true
			continue
		}
		b.conjugated = m.hasMultipleBond(b.a) && m.hasMultipleBond(b.b)
	}
}

// stereo bins on double bonds: 0 none, 1 any, 2 Z, 3 E.
const (
	stereoNone = iota
	stereoAny
	stereoZ
	stereoE
)

// directionAt returns the stereo marker of a directional single bond at
// atom i, normalized as if the bond were written pointing away from i.
// Returns 0 when no marked single bond touches i.
func (m *molecule) directionAt(i, excludeBond int) int {
	for _, bi := range m.adj[i] {
		if bi == excludeBond {
			continue
		}
		b := m.bonds[bi]
		if b.dir == 0 || b.order != orderSingle {
			continue
		}
		if b.a == i {
			return b.dir
		}
		return -b.dir
	}
	return 0
}

// perceiveStereo classifies marked double bonds as Z or E.  With both
// neighbour bonds normalized to point away from the double bond, equal
// markers put the substituents on the same side (Z) and opposing markers on
// opposite sides (E).  A double bond with only one marked neighbour stays
// unclassified.
func (m *molecule) perceiveStereo() {
	for bi := range m.bonds {
		b := &m.bonds[bi]
		if b.order != orderDouble {
			continue
		}
		da := m.directionAt(b.a, bi)
		db := m.directionAt(b.b, bi)
		if da == 0 || db == 0 {
			continue
		}
		if da == db {
			b.stereo = stereoZ
		} else {
			b.stereo = stereoE
		}
	}
}

// perceive runs the full perception pipeline after parsing.
func (m *molecule) perceive() {
	m.buildAdjacency()
	m.materializeHydrogens()
	m.perceiveRings()
	m.perceiveConjugation()
	m.perceiveStereo()
}
