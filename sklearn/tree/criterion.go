package tree

import "math"

// criterion measures node impurity and scores candidate splits while
// samples are moved one at a time from the right child to the left child.
type criterion interface {
	// value returns the prediction stored at a node holding idx.
	value(idx []int) []float64
	// impurity returns the impurity of a node holding idx.
	impurity(idx []int) float64
	// reset places every sample of idx in the right child.
	reset(idx []int)
	// move transfers sample i from the right child to the left child.
	move(i int)
	// proxy scores the current partition; larger is better. It differs from
	// the weighted child impurity by a constant for a given node.
	proxy() float64
}

// squaredError is the variance reduction criterion for regression.
type squaredError struct {
	y []float64

	nLeft, nRight     float64
	sumLeft, sumRight float64
}

func (c *squaredError) value(idx []int) []float64 {
	sum := 0.0
	for _, i := range idx {
		sum += c.y[i]
	}
	return []float64{sum / float64(len(idx))}
}

func (c *squaredError) impurity(idx []int) float64 {
	mean := c.value(idx)[0]
	var sq float64
	for _, i := range idx {
		d := c.y[i] - mean
		sq += d * d
	}
	return sq / float64(len(idx))
}

func (c *squaredError) reset(idx []int) {
	c.nLeft, c.sumLeft = 0, 0
	c.nRight, c.sumRight = float64(len(idx)), 0
	for _, i := range idx {
		c.sumRight += c.y[i]
	}
}

func (c *squaredError) move(i int) {
	c.nLeft++
	c.nRight--
	c.sumLeft += c.y[i]
	c.sumRight -= c.y[i]
}

func (c *squaredError) proxy() float64 {
	return c.sumLeft*c.sumLeft/c.nLeft + c.sumRight*c.sumRight/c.nRight
}

// classCriterion implements gini and entropy over encoded class indices.
type classCriterion struct {
	y        []int
	nClasses int
	entropy  bool

	left, right   []float64
	nLeft, nRight float64
	// gini: sum of squared counts; entropy: sum of c·log(c).
	accLeft, accRight float64
}

func newClassCriterion(y []int, nClasses int, entropy bool) *classCriterion {
	return &classCriterion{
		y:        y,
		nClasses: nClasses,
		entropy:  entropy,
		left:     make([]float64, nClasses),
		right:    make([]float64, nClasses),
	}
}

func (c *classCriterion) counts(idx []int) []float64 {
	counts := make([]float64, c.nClasses)
	for _, i := range idx {
		counts[c.y[i]]++
	}
	return counts
}

func (c *classCriterion) value(idx []int) []float64 {
	counts := c.counts(idx)
	n := float64(len(idx))
	for k := range counts {
		counts[k] /= n
	}
	return counts
}

func (c *classCriterion) impurity(idx []int) float64 {
	counts := c.counts(idx)
	n := float64(len(idx))
	if c.entropy {
		h := 0.0
		for _, cnt := range counts {
			if cnt > 0 {
				p := cnt / n
				h -= p * math.Log2(p)
			}
		}
		return h
	}
	g := 1.0
	for _, cnt := range counts {
		p := cnt / n
		g -= p * p
	}
	return g
}

func (c *classCriterion) term(count float64) float64 {
	if c.entropy {
		if count <= 0 {
			return 0
		}
		return count * math.Log(count)
	}
	return count * count
}

func (c *classCriterion) reset(idx []int) {
	for k := range c.left {
		c.left[k] = 0
		c.right[k] = 0
	}
	for _, i := range idx {
		c.right[c.y[i]]++
	}
	c.nLeft, c.nRight = 0, float64(len(idx))
	c.accLeft, c.accRight = 0, 0
	for _, cnt := range c.right {
		c.accRight += c.term(cnt)
	}
}

func (c *classCriterion) move(i int) {
	k := c.y[i]
	c.accLeft += c.term(c.left[k]+1) - c.term(c.left[k])
	c.accRight += c.term(c.right[k]-1) - c.term(c.right[k])
	c.left[k]++
	c.right[k]--
	c.nLeft++
	c.nRight--
}

func (c *classCriterion) proxy() float64 {
	if c.entropy {
		// -(nL·H_L + nR·H_R) with natural logs
		return c.accLeft - c.nLeft*math.Log(c.nLeft) + c.accRight - c.nRight*math.Log(c.nRight)
	}
	// -(nL·G_L + nR·G_R) up to the constant n
	return c.accLeft/c.nLeft + c.accRight/c.nRight
}
