// Package tools builds command lines for the external long read tools
// driven by the assembly pipeline.
package tools

import (
	"errors"
	"os/exec"

	"github.com/biogo/external"
)

var (
	ErrMissingRequired = errors.New("tools: missing required argument")
	ErrReadType        = errors.New("tools: exactly one flye read type must be set")
)

func command(cb external.CommandBuilder) (*exec.Cmd, error) {
	cl, err := external.Build(cb)
	if err != nil {
		return nil, err
	}
	return exec.Command(cl[0], cl[1:]...), nil
}

// Porechop defines parameters for the porechop adapter trimmer.
type Porechop struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}porechop{{end}}"`

	Input     string `buildarg:"{{if .}}-i{{split}}{{.}}{{end}}"`          // -i: reads to trim
	Output    string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`          // -o: trimmed reads
	Threads   int    `buildarg:"{{if .}}--threads{{split}}{{.}}{{end}}"`   // --threads
	Verbosity int    `buildarg:"{{if .}}--verbosity{{split}}{{.}}{{end}}"` // --verbosity: report detail written to stdout
}

// BuildCommand returns an exec.Cmd built from the parameters in p.
func (p Porechop) BuildCommand() (*exec.Cmd, error) {
	if p.Input == "" || p.Output == "" {
		return nil, ErrMissingRequired
	}
	return command(p)
}

// Filtlong defines parameters for the filtlong length filter. Filtered
// reads are written to the command's stdout.
type Filtlong struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}filtlong{{end}}"`

	MinLength int `buildarg:"{{if .}}--min_length{{split}}{{.}}{{end}}"`
	MaxLength int `buildarg:"{{if .}}--max_length{{split}}{{.}}{{end}}"`

	Reads string `buildarg:"{{.}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in f.
func (f Filtlong) BuildCommand() (*exec.Cmd, error) {
	if f.Reads == "" || (f.MinLength <= 0 && f.MaxLength <= 0) {
		return nil, ErrMissingRequired
	}
	return command(f)
}

// NanoPlot defines parameters for the NanoPlot read quality report.
type NanoPlot struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}NanoPlot{{end}}"`

	Threads int    `buildarg:"{{if .}}-t{{split}}{{.}}{{end}}"`
	Fastq   string `buildarg:"{{if .}}--fastq{{split}}{{.}}{{end}}"`
	OutDir  string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`
	Prefix  string `buildarg:"{{if .}}-p{{split}}{{.}}{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in n.
func (n NanoPlot) BuildCommand() (*exec.Cmd, error) {
	if n.Fastq == "" || n.OutDir == "" {
		return nil, ErrMissingRequired
	}
	return command(n)
}

// Flye defines parameters for the flye assembler. Exactly one of NanoRaw
// and NanoHQ holds the path to the reads.
type Flye struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}flye{{end}}"`

	NanoRaw string `buildarg:"{{if .}}--nano-raw{{split}}{{.}}{{end}}"` // pre Guppy5 basecalls
	NanoHQ  string `buildarg:"{{if .}}--nano-hq{{split}}{{.}}{{end}}"`  // Guppy5+ SUP/HAC basecalls

	OutDir  string `buildarg:"{{if .}}--out-dir{{split}}{{.}}{{end}}"`
	Threads int    `buildarg:"{{if .}}--threads{{split}}{{.}}{{end}}"`
}

// NewFlye returns a Flye for reads, selecting the read type from preGuppy5.
func NewFlye(reads, outDir string, threads int, preGuppy5 bool) Flye {
	f := Flye{OutDir: outDir, Threads: threads}
	if preGuppy5 {
		f.NanoRaw = reads
	} else {
		f.NanoHQ = reads
	}
	return f
}

// BuildCommand returns an exec.Cmd built from the parameters in f.
func (f Flye) BuildCommand() (*exec.Cmd, error) {
	if (f.NanoRaw == "") == (f.NanoHQ == "") {
		return nil, ErrReadType
	}
	if f.OutDir == "" {
		return nil, ErrMissingRequired
	}
	return command(f)
}

// Medaka defines parameters for the medaka_consensus polishing pipeline.
// BatchSize is passed through as given.
type Medaka struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}medaka_consensus{{end}}"`

	Reads     string `buildarg:"{{if .}}-i{{split}}{{.}}{{end}}"`
	Draft     string `buildarg:"{{if .}}-d{{split}}{{.}}{{end}}"`
	OutDir    string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`
	Threads   int    `buildarg:"{{if .}}-t{{split}}{{.}}{{end}}"`
	Model     string `buildarg:"{{if .}}-m{{split}}{{.}}{{end}}"`
	BatchSize int    `buildarg:"{{if .}}-b{{split}}{{.}}{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in m.
func (m Medaka) BuildCommand() (*exec.Cmd, error) {
	if m.Reads == "" || m.Draft == "" || m.OutDir == "" || m.Model == "" {
		return nil, ErrMissingRequired
	}
	return command(m)
}

// Programs returns the executables needed for a run.
func Programs(trim, filter, qc bool) []string {
	var progs []string
	if qc {
		progs = append(progs, "NanoPlot")
	}
	if trim {
		progs = append(progs, "porechop")
	}
	if filter {
		progs = append(progs, "filtlong")
	}
	return append(progs, "flye", "medaka_consensus")
}
