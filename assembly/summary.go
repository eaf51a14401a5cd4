package assembly

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gmaffy/ont-assembly/seqstats"
	"github.com/gmaffy/ont-assembly/utils"
)

const (
	ParametersFile = "analysis-parameters.txt"
	SummaryFile    = "stats-summary.csv"
	LogFile        = "assembly.log"
)

// Record accumulates the statistics of one sample as it moves through its branch.
type Record struct {
	Sample string
	stages []Stage
	stats  []seqstats.Stats
}

func NewRecord(sample string) Record {
	return Record{Sample: sample}
}

func (r *Record) Add(stage Stage, s seqstats.Stats) {
	r.stages = append(r.stages, stage)
	r.stats = append(r.stats, s)
}

// Stats returns the statistics collected at stage.
func (r Record) Stats(stage Stage) (seqstats.Stats, bool) {
	for i, s := range r.stages {
		if s == stage {
			return r.stats[i], true
		}
	}
	return seqstats.Stats{}, false
}

// Fields returns the summary table row for r.
func (r Record) Fields() []string {
	fields := []string{r.Sample}
	for _, s := range r.stats {
		fields = append(fields, s.Fields()...)
	}
	return fields
}

// Validate checks that r collected exactly the stages of b, in order.
func (r Record) Validate(b Branch) error {
	want := b.Stages()
	if len(r.stages) != len(want) {
		return fmt.Errorf("summary record for %s has %d stages, branch %s needs %d", r.Sample, len(r.stages), b, len(want))
	}
	for i := range want {
		if r.stages[i] != want[i] {
			return fmt.Errorf("summary record for %s has %s at position %d, branch %s needs %s",
				r.Sample, r.stages[i].Columns()[0], i, b, want[i].Columns()[0])
		}
	}
	return nil
}

// SummaryTable is the run-wide statistics table. Rows are appended whole,
// one write per row, so concurrent samples never interleave.
type SummaryTable struct {
	mu     sync.Mutex
	path   string
	branch Branch
}

func csvLine(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// CreateSummaryTable writes a header-only table for branch b at path.
func CreateSummaryTable(path string, b Branch) (*SummaryTable, error) {
	line, err := csvLine(b.Header())
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, line, 0644); err != nil {
		return nil, err
	}
	return &SummaryTable{path: path, branch: b}, nil
}

// OpenSummaryTable reopens an existing table for appending. Its header must
// match branch b.
func OpenSummaryTable(path string, b Branch) (*SummaryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("reading summary header: %w", err)
	}
	if !slices.Equal(header, b.Header()) {
		return nil, fmt.Errorf("%w: summary table %s was written for another branch than %s", ErrInvalidConfig, path, b)
	}
	return &SummaryTable{path: path, branch: b}, nil
}

func (t *SummaryTable) Path() string {
	return t.path
}

// Append writes r as one line at the end of the table.
func (t *SummaryTable) Append(r Record) error {
	if err := r.Validate(t.branch); err != nil {
		return err
	}
	line, err := csvLine(r.Fields())
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Setup creates the output directory, the parameters log and the empty summary
// table. When resuming, an existing summary table is kept.
func Setup(cfg Config) (*SummaryTable, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := utils.WriteConfig(filepath.Join(cfg.OutputDir, ParametersFile), ParameterKeys, cfg.parameters()); err != nil {
		return nil, fmt.Errorf("writing parameters log: %w", err)
	}
	path := filepath.Join(cfg.OutputDir, SummaryFile)
	if _, err := os.Stat(path); err == nil && cfg.Resume {
		return OpenSummaryTable(path, cfg.Branch())
	}
	table, err := CreateSummaryTable(path, cfg.Branch())
	if err != nil {
		return nil, fmt.Errorf("creating summary table: %w", err)
	}
	return table, nil
}
