package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/kwbeam/wordbeamsearch/batch"
	"github.com/kwbeam/wordbeamsearch/dataset"
	"github.com/kwbeam/wordbeamsearch/decoder"
	"github.com/kwbeam/wordbeamsearch/internal/cliutil"
	"github.com/kwbeam/wordbeamsearch/langmodel"
	"github.com/kwbeam/wordbeamsearch/wbsconfig"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] config\n\n", os.Args[0])
		flag.PrintDefaults()
	}
}

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
var nPasses = flag.Int("passes", 5, "number of repeated decode passes over the sample directory")

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if *nPasses < 1 {
		fmt.Fprintln(os.Stderr, "passes must be at least 1")
		os.Exit(1)
	}

	config := wbsconfig.MustParse(flag.Arg(0))

	lmType, err := langmodel.ParseType(config.LMType)
	cliutil.ExitIfError("invalid lm_type", err)

	ds, err := dataset.Open(config.SampleDir, lmType, config.Smoothing, config.ApplySoftmax)
	cliutil.ExitIfError("cannot open sample directory", err)

	samples, err := ds.All()
	cliutil.ExitIfError("cannot read samples", err)

	mats := make([]decoder.Matrix, len(samples))
	for i, s := range samples {
		mats[i] = s.Matrix
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		cliutil.ExitIfError("cannot create CPU profile", err)
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	decodeCfg := decoder.Config{BeamWidth: config.BeamWidth, Seed: config.Seed}

	for pass := 0; pass < *nPasses; pass++ {
		start := time.Now()
		results := batch.Decode(ds.LanguageModel(), decodeCfg, mats, config.Workers)
		elapsed := time.Since(start)

		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}

		fmt.Printf("pass %d: %d samples in %s (%d failed)\n", pass, len(mats), elapsed, failed)
	}
}
