package neural_network

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
	"github.com/YuminosukeSato/pricefit/pkg/log"
)

// Output activations.
const (
	OutputIdentity = "identity"
	OutputSoftmax  = "softmax"
)

// Network is a fully connected ReLU network. Coefs[l] has shape
// fan_in × fan_out. Exported for gob.
type Network struct {
	Coefs      []*mat.Dense
	Intercepts []*mat.VecDense
	Output     string
}

// newNetwork draws Glorot-uniform weights and biases layer by layer.
func newNetwork(sizes []int, output string, rng *rand.Rand) *Network {
	n := &Network{Output: output}
	for l := 0; l < len(sizes)-1; l++ {
		fanIn, fanOut := sizes[l], sizes[l+1]
		bound := math.Sqrt(6 / float64(fanIn+fanOut))
		w := make([]float64, fanIn*fanOut)
		for i := range w {
			w[i] = rng.Float64()*2*bound - bound
		}
		b := make([]float64, fanOut)
		for i := range b {
			b[i] = rng.Float64()*2*bound - bound
		}
		n.Coefs = append(n.Coefs, mat.NewDense(fanIn, fanOut, w))
		n.Intercepts = append(n.Intercepts, mat.NewVecDense(fanOut, b))
	}
	return n
}

// forward returns the activations of every layer; acts[0] is X.
func (n *Network) forward(X mat.Matrix) []mat.Matrix {
	acts := make([]mat.Matrix, len(n.Coefs)+1)
	acts[0] = X
	last := len(n.Coefs) - 1
	for l := range n.Coefs {
		z := n.affine(l, acts[l])
		rows, _ := z.Dims()
		for i := 0; i < rows; i++ {
			row := z.RawRowView(i)
			switch {
			case l < last:
				relu(row)
			case n.Output == OutputSoftmax:
				softmax(row)
			}
		}
		acts[l+1] = z
	}
	return acts
}

// affine returns in·Coefs[l] + Intercepts[l].
func (n *Network) affine(l int, in mat.Matrix) *mat.Dense {
	rows, _ := in.Dims()
	_, out := n.Coefs[l].Dims()
	z := mat.NewDense(rows, out, nil)
	z.Mul(in, n.Coefs[l])
	bias := n.Intercepts[l].RawVector().Data
	for i := 0; i < rows; i++ {
		floats.Add(z.RawRowView(i), bias)
	}
	return z
}

// predict returns the output layer for X.
func (n *Network) predict(X mat.Matrix) *mat.Dense {
	acts := n.forward(X)
	return acts[len(acts)-1].(*mat.Dense)
}

func relu(x []float64) {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
}

func softmax(x []float64) {
	lse := errors.LogSumExp(x)
	for i, v := range x {
		x[i] = math.Exp(v - lse)
	}
}

// loss is the data term of the objective on one batch plus the L2 penalty.
// acts is the result of forward. Cross-entropy uses the log-softmax of the
// output logits.
func (n *Network) loss(acts []mat.Matrix, Y *mat.Dense, alpha float64) float64 {
	last := len(n.Coefs) - 1
	out := acts[last+1].(*mat.Dense)
	rows, _ := out.Dims()
	batch := float64(rows)
	var data float64
	if n.Output == OutputSoftmax {
		logits := n.affine(last, acts[last])
		for i := 0; i < rows; i++ {
			z := logits.RawRowView(i)
			lse := errors.LogSumExp(z)
			for k, y := range Y.RawRowView(i) {
				if y > 0 {
					data -= y * (z[k] - lse)
				}
			}
		}
		data /= batch
	} else {
		var diff mat.Dense
		diff.Sub(Y, out)
		_, k := out.Dims()
		d := diff.RawMatrix().Data
		data = floats.Dot(d, d) / (2 * batch * float64(k))
	}
	var sq float64
	for _, w := range n.Coefs {
		sq += floats.Dot(w.RawMatrix().Data, w.RawMatrix().Data)
	}
	return data + 0.5*alpha*sq/batch
}

// gradients backpropagates one batch. For both output layers the error at
// the output is out - Y.
func (n *Network) gradients(acts []mat.Matrix, Y *mat.Dense, alpha float64) (gw []*mat.Dense, gb []*mat.VecDense) {
	L := len(n.Coefs)
	rows, _ := Y.Dims()
	batch := float64(rows)
	gw = make([]*mat.Dense, L)
	gb = make([]*mat.VecDense, L)

	delta := mat.NewDense(rows, Y.RawMatrix().Cols, nil)
	delta.Sub(acts[L], Y)
	if n.Output == OutputIdentity {
		// squared loss is averaged over outputs as well
		_, k := Y.Dims()
		delta.Scale(1/float64(k), delta)
	}

	for l := L - 1; l >= 0; l-- {
		fanIn, fanOut := n.Coefs[l].Dims()
		g := mat.NewDense(fanIn, fanOut, nil)
		g.Mul(acts[l].T(), delta)
		var penalty mat.Dense
		penalty.Scale(alpha, n.Coefs[l])
		g.Add(g, &penalty)
		g.Scale(1/batch, g)
		gw[l] = g

		b := make([]float64, fanOut)
		for i := 0; i < rows; i++ {
			floats.Add(b, delta.RawRowView(i))
		}
		floats.Scale(1/batch, b)
		gb[l] = mat.NewVecDense(fanOut, b)

		if l > 0 {
			prev := mat.NewDense(rows, fanIn, nil)
			prev.Mul(delta, n.Coefs[l].T())
			a := acts[l].(*mat.Dense)
			for i := 0; i < rows; i++ {
				pr, ar := prev.RawRowView(i), a.RawRowView(i)
				for j := range pr {
					if ar[j] <= 0 {
						pr[j] = 0
					}
				}
			}
			delta = prev
		}
	}
	return gw, gb
}

// params returns the flat parameter slices in a fixed order.
func (n *Network) params() [][]float64 {
	out := make([][]float64, 0, 2*len(n.Coefs))
	for _, w := range n.Coefs {
		out = append(out, w.RawMatrix().Data)
	}
	for _, b := range n.Intercepts {
		out = append(out, b.RawVector().Data)
	}
	return out
}

func flatGrads(gw []*mat.Dense, gb []*mat.VecDense) [][]float64 {
	out := make([][]float64, 0, len(gw)+len(gb))
	for _, g := range gw {
		out = append(out, g.RawMatrix().Data)
	}
	for _, g := range gb {
		out = append(out, g.RawVector().Data)
	}
	return out
}

// adam holds the first and second moment estimates of every parameter.
type adam struct {
	lr, beta1, beta2, eps float64
	t                     int
	m, v                  [][]float64
}

func newAdam(p Params, params [][]float64) *adam {
	a := &adam{lr: p.LearningRateInit, beta1: p.Beta1, beta2: p.Beta2, eps: p.Epsilon}
	for _, ps := range params {
		a.m = append(a.m, make([]float64, len(ps)))
		a.v = append(a.v, make([]float64, len(ps)))
	}
	return a
}

func (a *adam) step(params, grads [][]float64) {
	a.t++
	t := float64(a.t)
	lr := a.lr * math.Sqrt(1-math.Pow(a.beta2, t)) / (1 - math.Pow(a.beta1, t))
	for i, p := range params {
		g, m, v := grads[i], a.m[i], a.v[i]
		for j := range p {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g[j]
			v[j] = a.beta2*v[j] + (1-a.beta2)*g[j]*g[j]
			p[j] -= lr * m[j] / (math.Sqrt(v[j]) + a.eps)
		}
	}
}

// trainResult summarises one call to fitNetwork.
type trainResult struct {
	net       *Network
	lossCurve []float64
	nIter     int
	converged bool
}

// fitNetwork trains a fresh network on X (n × p) and Y (n × k). The same
// seeded source draws the initial weights and the per-epoch shuffles.
func fitNetwork(name string, X, Y *mat.Dense, output string, p Params) (trainResult, error) {
	logger := log.GetLoggerWithName(name)
	start := time.Now()

	rows, nIn := X.Dims()
	_, nOut := Y.Dims()
	sizes := append(append([]int{nIn}, p.HiddenLayerSizes...), nOut)

	rng := rand.New(rand.NewSource(p.RandomState))
	net := newNetwork(sizes, output, rng)
	params := net.params()
	opt := newAdam(p, params)
	batchSize := p.batchSize(rows)

	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}

	res := trainResult{net: net}
	bestLoss := math.Inf(1)
	noImprovement := 0
	for epoch := 0; epoch < p.MaxIter; epoch++ {
		if p.Shuffle {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		accum := 0.0
		for s := 0; s < rows; s += batchSize {
			e := s + batchSize
			if e > rows {
				e = rows
			}
			xb, yb := gather(X, order[s:e]), gather(Y, order[s:e])
			acts := net.forward(xb)
			accum += net.loss(acts, yb, p.Alpha) * float64(e-s)

			gw, gb := net.gradients(acts, yb, p.Alpha)
			opt.step(params, flatGrads(gw, gb))
		}

		epochLoss := accum / float64(rows)
		if err := errors.CheckScalar(name+".Fit", epochLoss, epoch+1); err != nil {
			return res, err
		}
		res.lossCurve = append(res.lossCurve, epochLoss)
		res.nIter = epoch + 1

		if epochLoss > bestLoss-p.Tol {
			noImprovement++
		} else {
			noImprovement = 0
		}
		if epochLoss < bestLoss {
			bestLoss = epochLoss
		}
		if noImprovement > p.NIterNoChange {
			res.converged = true
			break
		}
	}

	if !res.converged {
		errors.Warn(errors.NewConvergenceWarning(name, p.MaxIter,
			"maximum iterations reached and the optimization hasn't converged yet"))
	}
	logger.Debug("network trained",
		log.SamplesKey, rows,
		log.FeaturesKey, nIn,
		log.IterationKey, res.nIter,
		log.LossKey, bestLoss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// gather copies the listed rows of m into a new matrix.
func gather(m *mat.Dense, idx []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, r := range idx {
		copy(out.RawRowView(i), m.RawRowView(r))
	}
	return out
}
