package assembly

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gmaffy/ont-assembly/seqstats"
	"github.com/gmaffy/ont-assembly/tools"
	"github.com/gmaffy/ont-assembly/utils"
)

// Runner executes an external program on behalf of a sample.
type Runner interface {
	Run(program, sample string, cmd *exec.Cmd) error
}

// Program names used in the run log.
const (
	ProgNanoPlot = "NANOPLOT"
	ProgPorechop = "PORECHOP"
	ProgFiltlong = "FILTLONG"
	ProgFlye     = "FLYE"
	ProgMedaka   = "MEDAKA"
	ProgStats    = "STATS"
	ProgPublish  = "PUBLISH"
	ProgSample   = "SAMPLE"
)

// sampleRun carries one sample through its branch. reads always names the
// read set the next step consumes.
type sampleRun struct {
	cfg       Config
	runner    Runner
	logger    *slog.Logger
	sample    Sample
	workDir   string
	reads     string
	record    Record
	artifacts []string
}

func newSampleRun(cfg Config, runner Runner, logger *slog.Logger, s Sample) *sampleRun {
	return &sampleRun{
		cfg:     cfg,
		runner:  runner,
		logger:  logger,
		sample:  s,
		workDir: filepath.Join(cfg.OutputDir, "work", s.Name),
		reads:   s.Reads,
		record:  NewRecord(s.Name),
	}
}

func (r *sampleRun) path(suffix string) string {
	return filepath.Join(r.workDir, r.sample.Name+suffix)
}

func (r *sampleRun) collect(stage Stage, path string) error {
	s, err := seqstats.Collect(path)
	if err != nil {
		r.logger.Error(utils.LogMsg, "PROGRAM", ProgStats, "SAMPLE", r.sample.Name, "STATUS", utils.StatusFailed, "ERROR", err.Error())
		return fmt.Errorf("collecting %s statistics: %w", stage.Columns()[0], err)
	}
	r.record.Add(stage, s)
	r.logger.Debug(utils.LogMsg, "PROGRAM", ProgStats, "SAMPLE", r.sample.Name, "STAGE", stage.Columns()[0],
		"COUNT", s.Count, "MEAN", seqstats.FormatLength(s.Mean()))
	return nil
}

// tool runs cmd with its stderr, and its stdout unless already redirected,
// captured to a per-program log in the work directory.
func (r *sampleRun) tool(program string, cmd *exec.Cmd) error {
	logFile, err := os.Create(r.path("-" + program + ".log"))
	if err != nil {
		return err
	}
	defer logFile.Close()
	if cmd.Stdout == nil {
		cmd.Stdout = logFile
	}
	cmd.Stderr = logFile
	return r.runner.Run(program, r.sample.Name, cmd)
}

func (r *sampleRun) softFail(program, reason string) {
	r.logger.Warn(utils.LogMsg, "PROGRAM", program, "SAMPLE", r.sample.Name, "STATUS", utils.StatusSoftFailed, "ERROR", reason)
}

func (r *sampleRun) qcReport() error {
	outDir := r.path("-nanoplot")
	cmd, err := tools.NanoPlot{Threads: r.cfg.Threads, Fastq: r.reads, OutDir: outDir, Prefix: r.sample.Name + "-"}.BuildCommand()
	if err != nil {
		return err
	}
	if err := r.tool(ProgNanoPlot, cmd); err != nil {
		return err
	}
	r.artifacts = append(r.artifacts, outDir)
	return nil
}

func (r *sampleRun) trim() error {
	trimmed := r.path("-trimmed.fastq")
	report := r.path("-trimming-report.txt")
	cmd, err := tools.Porechop{Input: r.reads, Output: trimmed, Threads: r.cfg.Threads, Verbosity: 1}.BuildCommand()
	if err != nil {
		return err
	}
	reportFile, err := os.Create(report)
	if err != nil {
		return err
	}
	defer reportFile.Close()
	cmd.Stdout = reportFile
	if err := r.tool(ProgPorechop, cmd); err != nil {
		return err
	}
	if err := r.collect(StageTrimmed, trimmed); err != nil {
		return err
	}
	r.reads = trimmed
	r.artifacts = append(r.artifacts, trimmed, report)
	return nil
}

func (r *sampleRun) filter() error {
	filtered := r.path("-filtered.fastq")
	cmd, err := tools.Filtlong{MinLength: r.cfg.MinReadLen, MaxLength: r.cfg.MaxReadLen, Reads: r.reads}.BuildCommand()
	if err != nil {
		return err
	}
	out, err := os.Create(filtered)
	if err != nil {
		return err
	}
	defer out.Close()
	cmd.Stdout = out
	if err := r.tool(ProgFiltlong, cmd); err != nil {
		return err
	}
	if err := out.Sync(); err != nil {
		return err
	}
	if err := r.collect(StageFiltered, filtered); err != nil {
		return err
	}
	r.reads = filtered
	return nil
}

// adopt moves produced to canonical, substituting an empty file when the
// tool left nothing behind.
func (r *sampleRun) adopt(program, produced, canonical string) error {
	if info, err := os.Stat(produced); err == nil && info.Mode().IsRegular() {
		if err := os.Rename(produced, canonical); err != nil {
			return err
		}
		return nil
	}
	r.softFail(program, fmt.Sprintf("%s not produced, substituting empty %s", filepath.Base(produced), filepath.Base(canonical)))
	return utils.Touch(canonical)
}

func (r *sampleRun) assemble() error {
	flyeDir := r.path("-flye")
	draft := r.path("-draft-assembly.fasta")
	if err := os.MkdirAll(flyeDir, 0755); err != nil {
		return err
	}
	cmd, err := tools.NewFlye(r.reads, flyeDir, r.cfg.Threads, r.cfg.PreGuppy5).BuildCommand()
	if err != nil {
		return err
	}
	if err := r.tool(ProgFlye, cmd); err != nil {
		r.softFail(ProgFlye, err.Error())
	}
	if err := r.adopt(ProgFlye, filepath.Join(flyeDir, "assembly.fasta"), draft); err != nil {
		return err
	}
	if err := r.collect(StageDraft, draft); err != nil {
		return err
	}
	r.artifacts = append(r.artifacts, draft, flyeDir)
	return nil
}

func (r *sampleRun) polish() error {
	draft := r.path("-draft-assembly.fasta")
	corrected := r.path("-corrected-assembly.fasta")
	medakaDir := r.path("-medaka")

	if s, _ := r.record.Stats(StageDraft); s.Count == 0 {
		r.softFail(ProgMedaka, "draft assembly has no contigs, substituting empty corrected assembly")
		if err := utils.Touch(corrected); err != nil {
			return err
		}
	} else {
		cmd, err := tools.Medaka{
			Reads:     r.reads,
			Draft:     draft,
			OutDir:    medakaDir,
			Threads:   r.cfg.Threads,
			Model:     r.cfg.Model,
			BatchSize: r.cfg.MedakaBatchSize,
		}.BuildCommand()
		if err != nil {
			return err
		}
		if err := r.tool(ProgMedaka, cmd); err != nil {
			r.softFail(ProgMedaka, err.Error())
		}
		if err := r.adopt(ProgMedaka, filepath.Join(medakaDir, "consensus.fasta"), corrected); err != nil {
			return err
		}
	}
	if err := r.collect(StageCorrected, corrected); err != nil {
		return err
	}
	r.artifacts = append(r.artifacts, corrected)
	return nil
}

// publish copies the sample's artifacts into the output directory.
func (r *sampleRun) publish() error {
	for _, a := range r.artifacts {
		info, err := os.Stat(a)
		if err != nil {
			return err
		}
		dst := filepath.Join(r.cfg.OutputDir, filepath.Base(a))
		if info.IsDir() {
			if err := os.RemoveAll(dst); err != nil {
				return err
			}
			err = utils.CopyDir(a, dst)
		} else {
			err = utils.CopyFile(a, dst)
		}
		if err != nil {
			return fmt.Errorf("publishing %s: %w", filepath.Base(a), err)
		}
	}
	r.logger.Info(utils.LogMsg, "PROGRAM", ProgPublish, "SAMPLE", r.sample.Name, "STATUS", utils.StatusCompleted)
	if r.cfg.KeepWork {
		return nil
	}
	return os.RemoveAll(r.workDir)
}

func (r *sampleRun) step(s Step) error {
	switch s {
	case StepTrim:
		return r.trim()
	case StepFilter:
		return r.filter()
	case StepAssemble:
		return r.assemble()
	case StepPolish:
		return r.polish()
	}
	return fmt.Errorf("unknown step %d", s)
}

// run executes branch b for the sample and returns its summary record.
func (r *sampleRun) run(b Branch) (Record, error) {
	if err := os.MkdirAll(r.workDir, 0755); err != nil {
		return Record{}, err
	}
	if err := r.collect(StageRaw, r.reads); err != nil {
		return Record{}, err
	}
	if r.cfg.QCReport {
		if err := r.qcReport(); err != nil {
			return Record{}, err
		}
	}
	for _, s := range b.Steps() {
		if err := r.step(s); err != nil {
			return Record{}, fmt.Errorf("%s step: %w", s, err)
		}
	}
	if err := r.publish(); err != nil {
		return Record{}, err
	}
	return r.record, nil
}
