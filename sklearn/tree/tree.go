// Package tree implements CART decision trees for regression and
// classification on gonum matrices.
package tree

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// featureThreshold is the minimum gap between two sorted feature values for
// a split to be placed between them.
const featureThreshold = 1e-7

const leafFeature = -1

// Node is one node of a fitted tree. Leaves have Feature == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	// Value is the mean target for regression or the class distribution for
	// classification.
	Value    []float64
	NSamples int
	Impurity float64
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.Feature == leafFeature }

// Tree is a fitted binary tree stored as a flat node slice; node 0 is the root.
type Tree struct {
	Nodes     []Node
	NFeatures int
	MaxDepth  int
}

// apply returns the index of the leaf reached by row x.
func (t *Tree) apply(x []float64) int {
	n := 0
	for !t.Nodes[n].IsLeaf() {
		node := &t.Nodes[n]
		if x[node.Feature] <= node.Threshold {
			n = node.Left
		} else {
			n = node.Right
		}
	}
	return n
}

// Value returns the leaf value reached by row x.
func (t *Tree) Value(x []float64) []float64 {
	return t.Nodes[t.apply(x)].Value
}

// NLeaves returns the number of leaves.
func (t *Tree) NLeaves() int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			n++
		}
	}
	return n
}

// importances returns the normalised total impurity decrease per feature.
func (t *Tree) importances() []float64 {
	imp := make([]float64, t.NFeatures)
	for i := range t.Nodes {
		node := &t.Nodes[i]
		if node.IsLeaf() {
			continue
		}
		l, r := &t.Nodes[node.Left], &t.Nodes[node.Right]
		imp[node.Feature] += float64(node.NSamples)*node.Impurity -
			float64(l.NSamples)*l.Impurity -
			float64(r.NSamples)*r.Impurity
	}
	total := 0.0
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for j := range imp {
			imp[j] /= total
		}
	}
	return imp
}

// builder grows a tree depth first.
type builder struct {
	params    Params
	x         []float64 // row-major samples
	nFeatures int
	crit      criterion
	rng       *rand.Rand

	tree *Tree
	// scratch buffers reused across nodes
	order []int
	vals  []float64
}

func newBuilder(X *mat.Dense, crit criterion, params Params) *builder {
	r, c := X.Dims()
	raw := X.RawMatrix().Data
	if X.RawMatrix().Stride != c {
		raw = make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			raw = append(raw, X.RawRowView(i)...)
		}
	}
	return &builder{
		params:    params,
		x:         raw,
		nFeatures: c,
		crit:      crit,
		rng:       rand.New(rand.NewSource(params.RandomState)),
		tree:      &Tree{NFeatures: c},
	}
}

func (b *builder) at(i, f int) float64 {
	return b.x[i*b.nFeatures+f]
}

// build grows the tree on the samples in idx; repeated indices act as
// sample weights.
func (b *builder) build(idx []int) *Tree {
	b.grow(idx, 0)
	return b.tree
}

type split struct {
	feature   int
	threshold float64
	pos       int
	proxy     float64
}

func (b *builder) grow(idx []int, depth int) int {
	id := len(b.tree.Nodes)
	impurity := b.crit.impurity(idx)
	b.tree.Nodes = append(b.tree.Nodes, Node{
		Feature:  leafFeature,
		Value:    b.crit.value(idx),
		NSamples: len(idx),
		Impurity: impurity,
	})
	if depth > b.tree.MaxDepth {
		b.tree.MaxDepth = depth
	}

	n := len(idx)
	p := b.params
	if (p.MaxDepth > 0 && depth >= p.MaxDepth) ||
		n < p.MinSamplesSplit ||
		n < 2*p.MinSamplesLeaf ||
		impurity <= featureThreshold {
		return id
	}

	best, ok := b.bestSplit(idx)
	if !ok {
		return id
	}

	sorted := b.sortBy(idx, best.feature)
	left := append([]int(nil), sorted[:best.pos]...)
	right := append([]int(nil), sorted[best.pos:]...)

	leftID := b.grow(left, depth+1)
	rightID := b.grow(right, depth+1)

	node := &b.tree.Nodes[id]
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = leftID
	node.Right = rightID
	return id
}

// bestSplit visits features in a seeded random order and stops once
// MaxFeatures non-constant features have been examined.
func (b *builder) bestSplit(idx []int) (split, bool) {
	maxFeatures := b.params.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > b.nFeatures {
		maxFeatures = b.nFeatures
	}

	best := split{feature: -1}
	visited := 0
	for _, f := range b.rng.Perm(b.nFeatures) {
		if visited >= maxFeatures {
			break
		}
		sorted := b.sortBy(idx, f)
		vals := b.vals[:len(sorted)]
		if vals[len(vals)-1] <= vals[0]+featureThreshold {
			continue
		}
		visited++

		b.crit.reset(sorted)
		minLeaf := b.params.MinSamplesLeaf
		for pos := 1; pos < len(sorted); pos++ {
			b.crit.move(sorted[pos-1])
			if pos < minLeaf || len(sorted)-pos < minLeaf {
				continue
			}
			if vals[pos] <= vals[pos-1]+featureThreshold {
				continue
			}
			if proxy := b.crit.proxy(); best.feature < 0 || proxy > best.proxy {
				threshold := (vals[pos-1] + vals[pos]) / 2
				if threshold >= vals[pos] {
					threshold = vals[pos-1]
				}
				best = split{feature: f, threshold: threshold, pos: pos, proxy: proxy}
			}
		}
	}
	return best, best.feature >= 0
}

// sortBy returns idx ordered by feature f (stable, so equal values keep
// their incoming order) and fills b.vals with the matching values.
func (b *builder) sortBy(idx []int, f int) []int {
	if cap(b.order) < len(idx) {
		b.order = make([]int, len(idx))
		b.vals = make([]float64, len(idx))
	}
	order := b.order[:len(idx)]
	copy(order, idx)
	sort.SliceStable(order, func(i, j int) bool {
		return b.at(order[i], f) < b.at(order[j], f)
	})
	vals := b.vals[:len(idx)]
	for i, s := range order {
		vals[i] = b.at(s, f)
	}
	return order
}

// denseRows converts X to *mat.Dense without copying when possible.
func denseRows(X mat.Matrix) *mat.Dense {
	if d, ok := X.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(X)
}

// identity returns 0..n-1.
func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
