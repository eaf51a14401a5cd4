package assembly

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrNoInputs        = errors.New("no *.fastq* files found")
	ErrDuplicateSample = errors.New("duplicate sample name")
)

// Sample is one input read file and the name its outputs are published under.
type Sample struct {
	Name  string
	Reads string
}

// SampleName returns the file name up to its first dot.
func SampleName(path string) string {
	return strings.SplitN(filepath.Base(path), ".", 2)[0]
}

// DiscoverSamples returns the read files of dir sorted by path. Sample names
// must be unique since every sample publishes into the same output directory.
func DiscoverSamples(dir string) ([]Sample, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.fastq*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var samples []Sample
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			continue
		}
		name := SampleName(m)
		if name == "" {
			return nil, fmt.Errorf("cannot derive a sample name from %s", m)
		}
		samples = append(samples, Sample{Name: name, Reads: m})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputs, dir)
	}

	names := lo.Map(samples, func(s Sample, _ int) string { return s.Name })
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSample, strings.Join(dups, ", "))
	}
	return samples, nil
}
