package neural

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// network is a dense network with one tanh hidden layer and a linear
// output layer. Weights are stored row-major so that the whole network
// serialises as plain slices.
type network struct {
	Inputs  int       `json:"inputs"`
	Hidden  int       `json:"hidden"`
	Outputs int       `json:"outputs"`
	W1      []float64 `json:"w1"`
	B1      []float64 `json:"b1"`
	W2      []float64 `json:"w2"`
	B2      []float64 `json:"b2"`
}

// newNetwork draws Glorot-uniform weights from rng. Biases start at zero.
func newNetwork(inputs, hidden, outputs int, rng *rand.Rand) *network {
	n := &network{
		Inputs:  inputs,
		Hidden:  hidden,
		Outputs: outputs,
		W1:      make([]float64, hidden*inputs),
		B1:      make([]float64, hidden),
		W2:      make([]float64, outputs*hidden),
		B2:      make([]float64, outputs),
	}
	uniform(n.W1, math.Sqrt(6/float64(inputs+hidden)), rng)
	uniform(n.W2, math.Sqrt(6/float64(hidden+outputs)), rng)
	return n
}

func uniform(w []float64, limit float64, rng *rand.Rand) {
	for i := range w {
		w[i] = (2*rng.Float64() - 1) * limit
	}
}

// weights returns matrix views over W1 and W2. Updates through the views
// change the network.
func (n *network) weights() (w1, w2 *mat.Dense) {
	return mat.NewDense(n.Hidden, n.Inputs, n.W1), mat.NewDense(n.Outputs, n.Hidden, n.W2)
}

func (n *network) forward(x []float64) (h, y *mat.VecDense) {
	w1, w2 := n.weights()

	h = mat.NewVecDense(n.Hidden, nil)
	h.MulVec(w1, mat.NewVecDense(n.Inputs, x))
	for i := 0; i < n.Hidden; i++ {
		h.SetVec(i, math.Tanh(h.AtVec(i)+n.B1[i]))
	}

	y = mat.NewVecDense(n.Outputs, nil)
	y.MulVec(w2, h)
	y.AddVec(y, mat.NewVecDense(n.Outputs, n.B2))
	return h, y
}

// predict returns the network output for x.
func (n *network) predict(x []float64) []float64 {
	_, y := n.forward(x)
	out := make([]float64, n.Outputs)
	copy(out, y.RawVector().Data)
	return out
}

// loss is the mean squared error of the output for x against target.
func (n *network) loss(x, target []float64) float64 {
	_, y := n.forward(x)
	d := mat.NewVecDense(n.Outputs, nil)
	d.SubVec(y, mat.NewVecDense(n.Outputs, target))
	return mat.Dot(d, d) / float64(n.Outputs)
}

// step takes one gradient descent step on the squared error of a single
// sample and returns the loss before the update.
func (n *network) step(x, target []float64, lr float64) float64 {
	h, y := n.forward(x)
	w1, w2 := n.weights()

	dy := mat.NewVecDense(n.Outputs, nil)
	dy.SubVec(y, mat.NewVecDense(n.Outputs, target))
	loss := mat.Dot(dy, dy) / float64(n.Outputs)
	dy.ScaleVec(2/float64(n.Outputs), dy)

	// Backpropagate through W2 before it changes.
	dh := mat.NewVecDense(n.Hidden, nil)
	dh.MulVec(w2.T(), dy)
	for i := 0; i < n.Hidden; i++ {
		v := h.AtVec(i)
		dh.SetVec(i, dh.AtVec(i)*(1-v*v))
	}

	w2.RankOne(w2, -lr, dy, h)
	floats.AddScaled(n.B2, -lr, dy.RawVector().Data)
	w1.RankOne(w1, -lr, dh, mat.NewVecDense(n.Inputs, x))
	floats.AddScaled(n.B1, -lr, dh.RawVector().Data)
	return loss
}

func (n *network) clone() *network {
	c := *n
	c.W1 = append([]float64(nil), n.W1...)
	c.B1 = append([]float64(nil), n.B1...)
	c.W2 = append([]float64(nil), n.W2...)
	c.B2 = append([]float64(nil), n.B2...)
	return &c
}
