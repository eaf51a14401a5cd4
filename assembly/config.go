package assembly

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/gmaffy/ont-assembly/utils"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the run parameters. It is resolved once before any sample is
// processed and is not modified afterwards.
type Config struct {
	InputDir        string
	OutputDir       string
	Model           string
	TrimAdapters    bool
	MinReadLen      int
	MaxReadLen      int
	MedakaBatchSize int
	PreGuppy5       bool
	Threads         int
	Jobs            int
	QCReport        bool
	KeepWork        bool
	// Resume skips samples that a previous run in OutputDir logged as completed.
	Resume bool
}

const (
	DefaultMedakaBatchSize = 100
	DefaultThreads         = 1
)

func invalid(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, a...))
}

// Validate reports the first configuration error in c.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return invalid("input directory is required (--input)")
	}
	info, err := os.Stat(c.InputDir)
	if err != nil {
		return invalid("input directory %s is not a valid path", c.InputDir)
	}
	if !info.IsDir() {
		return invalid("input path %s is not a directory", c.InputDir)
	}
	if c.OutputDir == "" {
		return invalid("output directory is required (--output)")
	}
	if info, err := os.Stat(c.OutputDir); err == nil && !info.IsDir() {
		return invalid("output path %s is not a directory", c.OutputDir)
	}
	if c.Model == "" {
		return invalid("medaka model is required (--model)")
	}
	if c.Threads < 1 {
		return invalid("threads must be at least 1, got %d", c.Threads)
	}
	if c.MedakaBatchSize < 1 {
		return invalid("medakaBatchSize must be at least 1, got %d", c.MedakaBatchSize)
	}
	if c.MinReadLen < 0 || c.MaxReadLen < 0 {
		return invalid("read length bounds must not be negative")
	}
	if c.MinReadLen > 0 && c.MaxReadLen > 0 && c.MinReadLen > c.MaxReadLen {
		return invalid("minReadLen %d is greater than maxReadLen %d", c.MinReadLen, c.MaxReadLen)
	}
	if c.Jobs < 0 {
		return invalid("jobs must not be negative")
	}
	return nil
}

// FilterEnabled is true when a minimum or maximum read length was supplied.
func (c Config) FilterEnabled() bool {
	return c.MinReadLen > 0 || c.MaxReadLen > 0
}

// Branch returns the step sequence selected by the run-wide flags.
func (c Config) Branch() Branch {
	return SelectBranch(c.TrimAdapters, c.FilterEnabled())
}

// ParallelJobs returns how many samples may run at once. Without an explicit
// job count the CPU cores are shared out by the per-tool thread count.
func (c Config) ParallelJobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	threads := c.Threads
	if threads < 1 {
		threads = 1
	}
	jobs := runtime.NumCPU() / threads
	if jobs < 1 {
		jobs = 1
	}
	return jobs
}

// ParameterKeys are the entries of analysis-parameters.txt, in order.
var ParameterKeys = []string{"model", "medakaBatchSize"}

func (c Config) parameters() utils.Config {
	return utils.Config{
		"model":           c.Model,
		"medakaBatchSize": strconv.Itoa(c.MedakaBatchSize),
	}
}
