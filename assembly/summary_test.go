package assembly

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gmaffy/ont-assembly/seqstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSummaryTableConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), SummaryFile)
	table, err := CreateSummaryTable(path, BranchTrimFilter)
	require.NoError(t, err)

	const samples = 64
	var wg sync.WaitGroup
	for i := 0; i < samples; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := NewRecord(fmt.Sprintf("sample%02d", i))
			for _, st := range BranchTrimFilter.Stages() {
				r.Add(st, seqstats.Stats{Count: i + 1, Bases: (i + 1) * 1000})
			}
			assert.NoError(t, table.Append(r))
		}(i)
	}
	wg.Wait()

	rows := readCSV(t, path)
	require.Len(t, rows, samples+1)
	assert.Equal(t, BranchTrimFilter.Header(), rows[0])

	seen := make(map[string]bool)
	for _, row := range rows[1:] {
		require.Len(t, row, 11)
		assert.False(t, seen[row[0]], "duplicate row for %s", row[0])
		seen[row[0]] = true
		assert.Equal(t, "1000", row[2])
	}
	assert.Len(t, seen, samples)
}

func TestSummaryTableRejectsDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), SummaryFile)
	table, err := CreateSummaryTable(path, BranchRaw)
	require.NoError(t, err)

	r := NewRecord("short")
	r.Add(StageRaw, seqstats.Stats{})
	assert.Error(t, table.Append(r))

	rows := readCSV(t, path)
	assert.Len(t, rows, 1)
}

func TestSetup(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results")
	cfg := Config{OutputDir: out, Model: "r1041_e82_400bps_sup_g615", MedakaBatchSize: 50, TrimAdapters: true}
	table, err := Setup(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, SummaryFile), table.Path())

	params, err := os.ReadFile(filepath.Join(out, ParametersFile))
	require.NoError(t, err)
	assert.Equal(t, "model: r1041_e82_400bps_sup_g615\nmedakaBatchSize: 50\n", string(params))

	rows := readCSV(t, table.Path())
	require.Len(t, rows, 1)
	assert.Equal(t, BranchTrim.Header(), rows[0])
}

func TestDiscoverSamples(t *testing.T) {
	t.Run("NamesAndOrder", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{"sampleB.fastq", "sampleA.fastq.gz", "notes.txt", "sampleC.filtered.fastq"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0644))
		}
		samples, err := DiscoverSamples(dir)
		require.NoError(t, err)
		require.Len(t, samples, 3)
		assert.Equal(t, "sampleA", samples[0].Name)
		assert.Equal(t, filepath.Join(dir, "sampleA.fastq.gz"), samples[0].Reads)
		assert.Equal(t, "sampleB", samples[1].Name)
		assert.Equal(t, "sampleC", samples[2].Name)
	})

	t.Run("Duplicates", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{"sampleA.fastq", "sampleA.fastq.gz", "sampleB.fastq"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0644))
		}
		_, err := DiscoverSamples(dir)
		require.ErrorIs(t, err, ErrDuplicateSample)
		assert.Contains(t, err.Error(), "sampleA")
	})

	t.Run("NoInputs", func(t *testing.T) {
		_, err := DiscoverSamples(t.TempDir())
		assert.ErrorIs(t, err, ErrNoInputs)
	})
}
