package main

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/moodflick/backend/internal/analysis/forest"
)

// stratifiedSplit shuffles per-label index buckets and holds out
// testFrac of each, so train and test keep the label distribution.
func stratifiedSplit(labels []string, testFrac float64, seed int64) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewSource(seed))

	buckets := make(map[string][]int)
	var order []string
	for i, label := range labels {
		if _, ok := buckets[label]; !ok {
			order = append(order, label)
		}
		buckets[label] = append(buckets[label], i)
	}
	sort.Strings(order)

	for _, label := range order {
		idx := buckets[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(float64(len(idx)) * testFrac)
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}

	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return trainIdx, testIdx
}

func accuracy(model *forest.Forest, x [][]float64, y []string) float64 {
	if len(y) == 0 {
		return 0
	}
	correct := 0
	for i, vec := range x {
		if model.Predict(vec) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

// printClassificationReport prints per-class precision, recall and
// support on the held-out set.
func printClassificationReport(model *forest.Forest, x [][]float64, y []string) {
	type counters struct {
		tp, fp, fn int
	}
	stats := make(map[string]*counters)
	for _, class := range model.Classes {
		stats[class] = &counters{}
	}

	for i, vec := range x {
		pred := model.Predict(vec)
		if pred == y[i] {
			stats[pred].tp++
			continue
		}
		if c, ok := stats[pred]; ok {
			c.fp++
		}
		if c, ok := stats[y[i]]; ok {
			c.fn++
		}
	}

	support := make(map[string]int)
	for _, label := range y {
		support[label]++
	}

	fmt.Printf("%-12s %9s %9s %9s\n", "class", "precision", "recall", "support")
	for _, class := range model.Classes {
		c := stats[class]
		precision := ratio(c.tp, c.tp+c.fp)
		recall := ratio(c.tp, c.tp+c.fn)
		fmt.Printf("%-12s %9.3f %9.3f %9d\n", class, precision, recall, support[class])
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
