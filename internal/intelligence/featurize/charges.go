package featurize

import "math"

// Electronegativity polynomials for the PEOE-style charge iteration:
// chi(q) = a + b*q + c*q^2.  Parameters follow Gasteiger and Marsili's
// published sp3-centric set keyed by atomic number.
type electronegativity struct {
	a, b, c float64
}

var peoeParams = map[int]electronegativity{
	1:  {7.17, 6.24, -0.56},  // H
	6:  {7.98, 9.18, 1.88},   // C
	7:  {11.54, 10.82, 1.36}, // N
	8:  {14.18, 12.92, 1.39}, // O
	9:  {14.66, 13.85, 2.31}, // F
	15: {8.90, 8.24, 0.96},   // P
	16: {10.14, 9.13, 1.38},  // S
	17: {11.00, 9.69, 1.35},  // Cl
	35: {10.08, 8.47, 1.16},  // Br
	53: {9.90, 7.96, 0.96},   // I
}

const peoeIterations = 6

// computePartialCharges runs a damped electronegativity-equalization
// iteration over the molecular graph and stores per-atom partial charges.
// Atoms of elements outside the parameter table, and any non-finite result,
// fall back to 0.0 so featurization never fails on exotic structures.
func (m *molecule) computePartialCharges() {
	n := len(m.atoms)
	m.charges = make([]float64, n)

	params := make([]electronegativity, n)
	known := make([]bool, n)
	for i, a := range m.atoms {
		p, ok := peoeParams[a.atomicNum]
		params[i] = p
		known[i] = ok
		m.charges[i] = float64(a.charge)
	}

	chi := func(i int) float64 {
		q := m.charges[i]
		return params[i].a + params[i].b*q + params[i].c*q*q
	}
	// Cation electronegativity caps the transfer denominator; hydrogen
	// uses its fixed literature value.
	chiPlus := func(i int) float64 {
		if m.atoms[i].atomicNum == 1 {
			return 20.02
		}
		return params[i].a + params[i].b + params[i].c
	}

	damping := 1.0
	for iter := 0; iter < peoeIterations; iter++ {
		damping *= 0.5
		delta := make([]float64, n)
		for _, b := range m.bonds {
			if !known[b.a] || !known[b.b] {
				continue
			}
			ca, cb := chi(b.a), chi(b.b)
			var dq float64
			if ca > cb {
				dq = (ca - cb) / chiPlus(b.b) * damping
				delta[b.a] -= dq
				delta[b.b] += dq
			} else {
				dq = (cb - ca) / chiPlus(b.a) * damping
				delta[b.b] -= dq
				delta[b.a] += dq
			}
		}
		for i := range m.charges {
			m.charges[i] += delta[i]
		}
	}

	for i := range m.charges {
		if !known[i] || math.IsNaN(m.charges[i]) || math.IsInf(m.charges[i], 0) {
			m.charges[i] = 0
		}
	}
}
