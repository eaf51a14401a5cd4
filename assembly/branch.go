package assembly

// Step is one external processing step of a sample pipeline.
type Step int

const (
	StepTrim Step = iota
	StepFilter
	StepAssemble
	StepPolish
)

func (s Step) String() string {
	switch s {
	case StepTrim:
		return "Trim"
	case StepFilter:
		return "Filter"
	case StepAssemble:
		return "Assemble"
	case StepPolish:
		return "Polish"
	}
	return "Unknown"
}

// Stage is a point of the pipeline at which sequence statistics are collected.
type Stage int

const (
	StageRaw Stage = iota
	StageTrimmed
	StageFiltered
	StageDraft
	StageCorrected
)

// Columns returns the summary table columns holding the stage's count and
// average length.
func (s Stage) Columns() [2]string {
	switch s {
	case StageRaw:
		return [2]string{"Raw Reads", "Average Raw Read Length"}
	case StageTrimmed:
		return [2]string{"Trimmed Reads", "Average Trimmed Read Length"}
	case StageFiltered:
		return [2]string{"Filtered Reads", "Average Filtered Read Length"}
	case StageDraft:
		return [2]string{"Draft Contigs", "Average Draft Contig Length"}
	case StageCorrected:
		return [2]string{"Corrected Contigs", "Average Corrected Contig Length"}
	}
	return [2]string{"Unknown", "Average Unknown Length"}
}

func (s Step) stage() Stage {
	switch s {
	case StepTrim:
		return StageTrimmed
	case StepFilter:
		return StageFiltered
	case StepAssemble:
		return StageDraft
	default:
		return StageCorrected
	}
}

// Branch is one of the four step sequences a sample can follow before assembly.
type Branch int

const (
	BranchTrimFilter Branch = iota + 1
	BranchTrim
	BranchFilter
	BranchRaw
)

// SelectBranch maps the trim and length filter switches onto a branch.
func SelectBranch(trim, filter bool) Branch {
	switch {
	case trim && filter:
		return BranchTrimFilter
	case trim:
		return BranchTrim
	case filter:
		return BranchFilter
	default:
		return BranchRaw
	}
}

func (b Branch) String() string {
	switch b {
	case BranchTrimFilter:
		return "trim+filter"
	case BranchTrim:
		return "trim"
	case BranchFilter:
		return "filter"
	case BranchRaw:
		return "raw"
	}
	return "unknown"
}

// Steps returns the ordered steps run for every sample on branch b.
func (b Branch) Steps() []Step {
	switch b {
	case BranchTrimFilter:
		return []Step{StepTrim, StepFilter, StepAssemble, StepPolish}
	case BranchTrim:
		return []Step{StepTrim, StepAssemble, StepPolish}
	case BranchFilter:
		return []Step{StepFilter, StepAssemble, StepPolish}
	default:
		return []Step{StepAssemble, StepPolish}
	}
}

// Stages returns the statistics collection points of b, starting with the raw reads.
func (b Branch) Stages() []Stage {
	stages := []Stage{StageRaw}
	for _, s := range b.Steps() {
		stages = append(stages, s.stage())
	}
	return stages
}

// Header returns the summary table header for b.
func (b Branch) Header() []string {
	header := []string{"Sample"}
	for _, s := range b.Stages() {
		cols := s.Columns()
		header = append(header, cols[0], cols[1])
	}
	return header
}
