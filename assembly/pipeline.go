package assembly

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gmaffy/ont-assembly/utils"
	"golang.org/x/sync/errgroup"
)

// Result describes a finished run.
type Result struct {
	Branch    Branch
	Jobs      int
	Samples   []Sample
	Completed []string
	Skipped   []string
	Failed    map[string]error
	Summary   string
}

// Run assembles every sample of cfg.InputDir. Samples are processed
// independently; a failed sample is reported in the returned error without
// stopping the others.
func Run(ctx context.Context, cfg Config, runner Runner, logger *slog.Logger) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	samples, err := DiscoverSamples(cfg.InputDir)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Completed samples are only skipped while their rows are still in the summary table.
	var logged []utils.LogEntry
	if _, statErr := os.Stat(filepath.Join(cfg.OutputDir, SummaryFile)); cfg.Resume && statErr == nil {
		logged, err = utils.ParseLogFile(filepath.Join(cfg.OutputDir, LogFile))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("reading previous run log: %w", err)
		}
	}

	table, err := Setup(cfg)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Branch:  cfg.Branch(),
		Jobs:    cfg.ParallelJobs(),
		Samples: samples,
		Failed:  make(map[string]error),
		Summary: table.Path(),
	}
	logger.Info(utils.LogMsg, "PROGRAM", "INITIALISE", "SAMPLE", "ALL", "STATUS", utils.StatusStarted,
		"BRANCH", res.Branch.String(), "SAMPLES", len(samples), "JOBS", res.Jobs)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(res.Jobs)
	for _, s := range samples {
		if utils.StageHasCompleted(logged, ProgSample, s.Name) {
			logger.Info(utils.LogMsg, "PROGRAM", ProgSample, "SAMPLE", s.Name, "STATUS", utils.StatusSkipped)
			res.Skipped = append(res.Skipped, s.Name)
			continue
		}
		s := s
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = runSample(cfg, runner, logger, table, res.Branch, s)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error(utils.LogMsg, "PROGRAM", ProgSample, "SAMPLE", s.Name, "STATUS", utils.StatusFailed, "ERROR", err.Error())
				res.Failed[s.Name] = err
				return nil
			}
			logger.Info(utils.LogMsg, "PROGRAM", ProgSample, "SAMPLE", s.Name, "STATUS", utils.StatusCompleted)
			res.Completed = append(res.Completed, s.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	sort.Strings(res.Completed)

	status := utils.StatusCompleted
	if len(res.Failed) > 0 {
		status = utils.StatusFailed
	}
	logger.Info(utils.LogMsg, "PROGRAM", "FINALISE", "SAMPLE", "ALL", "STATUS", status,
		"COMPLETED", len(res.Completed), "SKIPPED", len(res.Skipped), "FAILED", len(res.Failed))
	return res, res.err()
}

func (r Result) err() error {
	names := make([]string, 0, len(r.Failed))
	for n := range r.Failed {
		names = append(names, n)
	}
	sort.Strings(names)
	errs := make([]error, 0, len(names))
	for _, n := range names {
		errs = append(errs, fmt.Errorf("sample %s: %w", n, r.Failed[n]))
	}
	return errors.Join(errs...)
}

func runSample(cfg Config, runner Runner, logger *slog.Logger, table *SummaryTable, b Branch, s Sample) error {
	rec, err := newSampleRun(cfg, runner, logger, s).run(b)
	if err != nil {
		return err
	}
	return table.Append(rec)
}
