// Package forest implements an ensemble of extremely randomized decision
// trees for multi-class text classification. Training draws random split
// thresholds over a random sqrt-sized feature subset per node, weights
// classes by inverse frequency, and is fully deterministic for a given
// seed. A trained forest is immutable and safe for concurrent use.
package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Options control training. Zero values fall back to the settings used
// for the main-emotion model.
type Options struct {
	Trees           int   `json:"trees"`
	MinSamplesSplit int   `json:"minSamplesSplit"`
	MinSamplesLeaf  int   `json:"minSamplesLeaf"`
	Seed            int64 `json:"seed"`
}

func (o Options) withDefaults() Options {
	if o.Trees <= 0 {
		o.Trees = 350
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = 2
	}
	if o.MinSamplesLeaf < 1 {
		o.MinSamplesLeaf = 1
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	return o
}

// Node is one decision point. Feature == -1 marks a leaf carrying a
// normalized class distribution.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Dist      []float64 `json:"dist,omitempty"`
}

// Tree is a flat array of nodes; index 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is a trained ensemble. Classes are sorted and Dist slices are
// indexed accordingly.
type Forest struct {
	Classes []string `json:"classes"`
	Trees   []Tree   `json:"trees"`
	Opts    Options  `json:"opts"`
}

// Train fits an ensemble on row vectors X with string labels y.
func Train(X [][]float64, y []string, opts Options) (*Forest, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, errors.New("forest: training set is empty or misaligned")
	}
	opts = opts.withDefaults()

	classes := distinctSorted(y)
	if len(classes) < 2 {
		return nil, fmt.Errorf("forest: need at least 2 classes, got %d", len(classes))
	}
	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}

	labels := make([]int, len(y))
	counts := make([]float64, len(classes))
	for i, label := range y {
		labels[i] = classIdx[label]
		counts[classIdx[label]]++
	}

	// Balanced class weighting: n_samples / (n_classes * class_count).
	weights := make([]float64, len(classes))
	total := float64(len(y))
	for i, c := range counts {
		weights[i] = total / (float64(len(classes)) * c)
	}

	nFeatures := len(X[0])
	maxCandidates := int(math.Round(math.Sqrt(float64(nFeatures))))
	if maxCandidates < 1 {
		maxCandidates = 1
	}

	all := make([]int, len(X))
	for i := range all {
		all[i] = i
	}

	trees := make([]Tree, opts.Trees)
	for t := range trees {
		b := &builder{
			X:             X,
			labels:        labels,
			weights:       weights,
			nClasses:      len(classes),
			nFeatures:     nFeatures,
			maxCandidates: maxCandidates,
			opts:          opts,
			rng:           rand.New(rand.NewSource(opts.Seed + int64(t))),
		}
		b.grow(all)
		trees[t] = Tree{Nodes: b.nodes}
	}

	return &Forest{Classes: classes, Trees: trees, Opts: opts}, nil
}

// Predict returns the highest-probability class for x.
func (f *Forest) Predict(x []float64) string {
	proba := f.PredictProba(x)
	best := 0
	for i := 1; i < len(proba); i++ {
		if proba[i] > proba[best] {
			best = i
		}
	}
	return f.Classes[best]
}

// PredictProba averages the leaf distributions across all trees. The
// result is indexed like Classes and sums to 1.
func (f *Forest) PredictProba(x []float64) []float64 {
	proba := make([]float64, len(f.Classes))
	for _, tree := range f.Trees {
		dist := tree.traverse(x)
		for i, p := range dist {
			proba[i] += p
		}
	}
	n := float64(len(f.Trees))
	for i := range proba {
		proba[i] /= n
	}
	return proba
}

func (t Tree) traverse(x []float64) []float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Feature < 0 {
			return node.Dist
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

type builder struct {
	X             [][]float64
	labels        []int
	weights       []float64
	nClasses      int
	nFeatures     int
	maxCandidates int
	opts          Options
	rng           *rand.Rand
	nodes         []Node
}

// grow recursively builds the tree over the given sample indices and
// returns the index of the created node.
func (b *builder) grow(samples []int) int {
	dist, pure := b.classDistribution(samples)

	if pure || len(samples) < b.opts.MinSamplesSplit {
		return b.leaf(dist)
	}

	feature, threshold, left, right, ok := b.bestRandomSplit(samples)
	if !ok {
		return b.leaf(dist)
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: feature, Threshold: threshold})
	leftIdx := b.grow(left)
	rightIdx := b.grow(right)
	b.nodes[idx].Left = leftIdx
	b.nodes[idx].Right = rightIdx
	return idx
}

func (b *builder) leaf(dist []float64) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Dist: dist})
	return idx
}

// classDistribution returns the weighted, normalized class distribution
// of the samples and whether they are single-class.
func (b *builder) classDistribution(samples []int) ([]float64, bool) {
	dist := make([]float64, b.nClasses)
	first := b.labels[samples[0]]
	pure := true
	for _, s := range samples {
		label := b.labels[s]
		dist[label] += b.weights[label]
		if label != first {
			pure = false
		}
	}
	var sum float64
	for _, d := range dist {
		sum += d
	}
	for i := range dist {
		dist[i] /= sum
	}
	return dist, pure
}

// bestRandomSplit tries one uniform-random threshold on each of up to
// maxCandidates random features and keeps the split with the lowest
// weighted Gini impurity. ok is false when no candidate separates the
// samples while respecting MinSamplesLeaf.
func (b *builder) bestRandomSplit(samples []int) (feature int, threshold float64, left, right []int, ok bool) {
	bestScore := math.Inf(1)
	for _, f := range b.candidateFeatures() {
		lo, hi := b.featureRange(samples, f)
		if lo == hi {
			continue
		}
		thr := lo + b.rng.Float64()*(hi-lo)

		var l, r []int
		for _, s := range samples {
			if b.X[s][f] <= thr {
				l = append(l, s)
			} else {
				r = append(r, s)
			}
		}
		if len(l) < b.opts.MinSamplesLeaf || len(r) < b.opts.MinSamplesLeaf {
			continue
		}

		score := b.weightedGini(l, r)
		if score < bestScore {
			bestScore = score
			feature, threshold, left, right, ok = f, thr, l, r, true
		}
	}
	return feature, threshold, left, right, ok
}

func (b *builder) candidateFeatures() []int {
	if b.maxCandidates >= b.nFeatures {
		feats := make([]int, b.nFeatures)
		for i := range feats {
			feats[i] = i
		}
		return feats
	}
	return b.rng.Perm(b.nFeatures)[:b.maxCandidates]
}

func (b *builder) featureRange(samples []int, f int) (lo, hi float64) {
	lo, hi = b.X[samples[0]][f], b.X[samples[0]][f]
	for _, s := range samples[1:] {
		v := b.X[s][f]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func (b *builder) weightedGini(left, right []int) float64 {
	gl, wl := b.gini(left)
	gr, wr := b.gini(right)
	return (wl*gl + wr*gr) / (wl + wr)
}

// gini returns the weighted Gini impurity of the samples along with
// their total weight.
func (b *builder) gini(samples []int) (impurity, weight float64) {
	dist := make([]float64, b.nClasses)
	for _, s := range samples {
		label := b.labels[s]
		dist[label] += b.weights[label]
		weight += b.weights[label]
	}
	impurity = 1
	for _, d := range dist {
		p := d / weight
		impurity -= p * p
	}
	return impurity, weight
}

func distinctSorted(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	var out []string
	for _, l := range labels {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}
