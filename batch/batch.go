// Package batch fans a decode out over a batch of matrices, one
// worker goroutine per partition of the batch, all workers sharing a
// single read-only LanguageModel.
package batch

import (
	"sync"

	"github.com/kwbeam/wordbeamsearch/decoder"
	"github.com/kwbeam/wordbeamsearch/label"
	"github.com/kwbeam/wordbeamsearch/langmodel"
)

// Result is one batch element's decode outcome.
type Result struct {
	Labels []label.Label
	Err    error
}

// Decode runs the decoder over every element of mats concurrently
// using numWorkers goroutines, returning one Result per input element
// in input order. numWorkers <= 0 or > len(mats) is clamped to
// len(mats); numWorkers == 0 with an empty mats returns an empty
// slice.
//
// Each worker gets its own Decoder built from cfg so that
// NGramsForecastAndSample's per-decoder random source does not need
// to be shared, but all workers decode against the same lm.
func Decode(lm *langmodel.LanguageModel, cfg decoder.Config, mats []decoder.Matrix, numWorkers int) []Result {
	results := make([]Result, len(mats))
	if len(mats) == 0 {
		return results
	}

	if numWorkers <= 0 || numWorkers > len(mats) {
		numWorkers = len(mats)
	}

	groups := splitWork(numWorkers, len(mats))

	var wg sync.WaitGroup
	for worker, indices := range groups {
		worker, indices := worker, indices
		wg.Add(1)
		go func() {
			defer wg.Done()
			doWork(lm, cfg, worker, mats, indices, results)
		}()
	}
	wg.Wait()

	return results
}

func doWork(lm *langmodel.LanguageModel, cfg decoder.Config, worker int, mats []decoder.Matrix, indices []int, results []Result) {
	workerCfg := cfg
	workerCfg.Seed += int64(worker)

	d, err := decoder.New(lm, workerCfg)
	if err != nil {
		for _, idx := range indices {
			results[idx] = Result{Err: err}
		}
		return
	}

	for _, idx := range indices {
		labels, err := d.Decode(mats[idx])
		results[idx] = Result{Labels: labels, Err: err}
	}
}

// splitWork partitions [0, batchSize) into numThreads roughly equal,
// contiguous index groups. Any remainder is distributed one index at
// a time, taken from the back of the range, to the first groups.
func splitWork(numThreads, batchSize int) [][]int {
	res := make([][]int, numThreads)

	div := batchSize / numThreads
	rem := batchSize % numThreads
	front, back := 0, batchSize-1

	for th := 0; th < numThreads; th++ {
		if rem > 0 {
			res[th] = append(res[th], back)
			back--
			rem--
		}
		for i := 0; i < div; i++ {
			res[th] = append(res[th], front)
			front++
		}
	}

	return res
}
