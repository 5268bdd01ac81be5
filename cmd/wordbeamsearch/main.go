package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/kwbeam/wordbeamsearch/dataset"
	"github.com/kwbeam/wordbeamsearch/decoder"
	"github.com/kwbeam/wordbeamsearch/internal/cliutil"
	"github.com/kwbeam/wordbeamsearch/langmodel"
	"github.com/kwbeam/wordbeamsearch/metrics"
	"github.com/kwbeam/wordbeamsearch/wbsconfig"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] config\n\n", os.Args[0])
		flag.PrintDefaults()
	}
}

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	config := wbsconfig.MustParse(flag.Arg(0))

	lmType, err := langmodel.ParseType(config.LMType)
	cliutil.ExitIfError("invalid lm_type", err)

	ds, err := dataset.Open(config.SampleDir, lmType, config.Smoothing, config.ApplySoftmax)
	cliutil.ExitIfError("cannot open sample directory", err)

	d, err := decoder.New(ds.LanguageModel(), decoder.Config{BeamWidth: config.BeamWidth, Seed: config.Seed})
	cliutil.ExitIfError("cannot build decoder", err)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		cliutil.ExitIfError("cannot create CPU profile", err)
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	m := metrics.New(ds.LanguageModel().Alphabet().IsWordLabel)

	for ds.HasNext() {
		sample, err := ds.Next()
		cliutil.ExitIfError("cannot read sample", err)

		decoded, err := d.Decode(sample.Matrix)
		cliutil.ExitIfError("decode failed", err)

		m.AddResult(sample.GroundTruth, decoded)

		recognized, err := ds.LanguageModel().Alphabet().ToString(decoded)
		cliutil.ExitIfError("cannot render output", err)
		fmt.Printf("sample %d: %s\n", sample.Index, recognized)
	}

	fmt.Printf("CER: %.4f\n", m.CER())
	fmt.Printf("WER: %.4f\n", m.WER())
}
