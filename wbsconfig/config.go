// Package wbsconfig provides the TOML configuration format the
// command-line drivers read: sample directory, language model
// parameters, and decoder settings.
package wbsconfig

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the decoded contents of a driver's TOML configuration
// file.
type Config struct {
	// SampleDir is a directory laid out per the dataset package's
	// contract: corpus.txt, chars.txt, wordChars.txt, and numbered
	// mat_i.csv / gt_i.txt pairs.
	SampleDir string `toml:"sample_dir"`
	// LMType selects the language model's scoring mode, by name
	// (case-insensitive): Words, NGrams, NGramsForecast,
	// NGramsForecastAndSample.
	LMType string `toml:"lm_type"`
	// Smoothing is the bigram add-k constant.
	Smoothing float64 `toml:"smoothing"`
	// BeamWidth is the number of beams carried between time steps.
	BeamWidth int `toml:"beam_width"`
	// Workers bounds how many samples are decoded concurrently. A
	// value <= 0, or one larger than the number of samples, means one
	// worker per sample.
	Workers int `toml:"workers"`
	// Seed seeds NGramsForecastAndSample's random sampling.
	Seed int64 `toml:"seed"`
	// ApplySoftmax controls whether matrices loaded from CSV are
	// treated as pre-softmax logits and normalized on load.
	ApplySoftmax bool `toml:"apply_softmax"`
}

func defaultConfig() *Config {
	return &Config{
		SampleDir: "samples",
		LMType:    "NGrams",
		Smoothing: 0.0,
		BeamWidth: 25,
		Workers:   0,
		Seed:      0,
	}
}

// MustParse parses the configuration at filename, or exits the process
// with a diagnostic message if that is not possible.
func MustParse(filename string) *Config {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open configuration file: %s\n", err)
		os.Exit(1)
	}
	defer f.Close()

	config, err := Parse(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot parse configuration file: %s\n", err)
		os.Exit(1)
	}

	config.SampleDir = relToConfig(filename, config.SampleDir)
	return config
}

// Parse decodes a Config from reader, starting from the package
// defaults.
func Parse(reader io.Reader) (*Config, error) {
	config := defaultConfig()
	if _, err := toml.DecodeReader(reader, config); err != nil {
		return config, err
	}
	return config, nil
}

// relToConfig resolves filePath relative to the directory containing
// configPath, unless filePath is already absolute.
func relToConfig(configPath, filePath string) string {
	if len(filePath) == 0 || filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(filepath.Dir(configPath), filePath)
}
