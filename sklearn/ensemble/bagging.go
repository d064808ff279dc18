package ensemble

import (
	"math/rand"
	"time"

	"github.com/YuminosukeSato/pricefit/core/parallel"
	"github.com/YuminosukeSato/pricefit/pkg/log"
)

// treeSeeds draws one seed per tree from the forest seed, in tree order.
func treeSeeds(seed int64, n int) []int64 {
	rng := rand.New(rand.NewSource(seed))
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}
	return seeds
}

// sampleRows returns the training rows of one tree: a bootstrap sample of
// size n drawn with the tree's own seed, or every row.
func sampleRows(n int, seed int64, bootstrap bool) []int {
	idx := make([]int, n)
	if !bootstrap {
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

// fitTrees fits every member through fit, logging the elapsed time.
func fitTrees(name string, p Params, nSamples, nFeatures int, fit func(i int, seed int64, rows []int) error) error {
	logger := log.GetLoggerWithName(name)
	start := time.Now()
	seeds := treeSeeds(p.RandomState, p.NEstimators)

	err := parallel.ForEach(p.NEstimators, p.NJobs, func(i int) error {
		return fit(i, seeds[i], sampleRows(nSamples, seeds[i], p.Bootstrap))
	})
	if err != nil {
		return err
	}

	logger.Debug("forest fitted",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"n_estimators", p.NEstimators,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// averageImportances averages per-tree importances and renormalises.
func averageImportances(per [][]float64, nFeatures int) []float64 {
	out := make([]float64, nFeatures)
	for _, imp := range per {
		for j, v := range imp {
			out[j] += v
		}
	}
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for j := range out {
			out[j] /= total
		}
	}
	return out
}
