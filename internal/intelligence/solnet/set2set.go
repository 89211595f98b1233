package solnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// set2set pools a variable-count node set per graph into one fixed vector of
// width 2H, invariant to node order.  An LSTM refines a query over a fixed
// number of steps; each step attends over the graph's nodes with the current
// query and concatenates the attention read onto the query for the next step.
// Solute and solvent use two independent instances with their own weights.
type set2set struct {
	lstm   *lstmCell
	steps  int
	hidden int
}

func newSet2Set(hidden, steps int, rng *rand.Rand) *set2set {
	return &set2set{
		// Query input is the previous (query, read) concatenation of width 2H.
		lstm:   newLSTMCell(2*hidden, hidden, rng),
		steps:  steps,
		hidden: hidden,
	}
}

// forward pools flat (N_total, H) node vectors into (B, 2H) graph vectors.
func (s *set2set) forward(flat *mat.Dense, batchIndex []int, numGraphs int) *mat.Dense {
	n, _ := flat.Dims()
	H := s.hidden

	// Per-graph LSTM state and running (query, read) output.
	hState := make([][]float64, numGraphs)
	cState := make([][]float64, numGraphs)
	qStar := make([][]float64, numGraphs)
	for b := 0; b < numGraphs; b++ {
		hState[b] = make([]float64, H)
		cState[b] = make([]float64, H)
		qStar[b] = make([]float64, 2*H)
	}

	attn := make([]float64, n)
	for step := 0; step < s.steps; step++ {
		// Refine each graph's query.
		query := make([][]float64, numGraphs)
		for b := 0; b < numGraphs; b++ {
			hState[b], cState[b] = s.lstm.step(qStar[b], hState[b], cState[b])
			query[b] = hState[b]
		}

		// Scores e_k = <x_k, q_{graph(k)}>, softmax-normalized per graph.
		maxScore := make([]float64, numGraphs)
		for b := range maxScore {
			maxScore[b] = math.Inf(-1)
		}
		for k := 0; k < n; k++ {
			row := flat.RawRowView(k)
			q := query[batchIndex[k]]
			score := 0.0
			for j, v := range row {
				score += v * q[j]
			}
			attn[k] = score
			if score > maxScore[batchIndex[k]] {
				maxScore[batchIndex[k]] = score
			}
		}
		sum := make([]float64, numGraphs)
		for k := 0; k < n; k++ {
			attn[k] = math.Exp(attn[k] - maxScore[batchIndex[k]])
			sum[batchIndex[k]] += attn[k]
		}

		// Weighted read per graph.
		read := make([][]float64, numGraphs)
		for b := 0; b < numGraphs; b++ {
			read[b] = make([]float64, H)
		}
		for k := 0; k < n; k++ {
			b := batchIndex[k]
			w := attn[k] / sum[b]
			row := flat.RawRowView(k)
			r := read[b]
			for j, v := range row {
				r[j] += w * v
			}
		}

		for b := 0; b < numGraphs; b++ {
			copy(qStar[b][:H], query[b])
			copy(qStar[b][H:], read[b])
		}
	}

	out := mat.NewDense(numGraphs, 2*H, nil)
	for b := 0; b < numGraphs; b++ {
		out.SetRow(b, qStar[b])
	}
	return out
}
