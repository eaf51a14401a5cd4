package utils

import (
	"fmt"
	"log/slog"
	"os/exec"
)

const (
	StatusStarted    = "STARTED"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSoftFailed = "SOFT_FAILED"
	StatusSkipped    = "SKIPPED"
)

// LogMsg is the message of every pipeline record in the run log.
const LogMsg = "ASSEMBLY"

// CmdRunner runs external programs, recording their progress in the run log.
type CmdRunner struct {
	Logger *slog.Logger
}

func (r CmdRunner) Run(program, sample string, cmd *exec.Cmd) error {
	cmdStr := cmd.String()
	r.Logger.Info(LogMsg, "PROGRAM", program, "SAMPLE", sample, "STATUS", StatusStarted, "CMD", cmdStr)
	if err := cmd.Run(); err != nil {
		r.Logger.Error(LogMsg, "PROGRAM", program, "SAMPLE", sample, "STATUS", StatusFailed, "CMD", cmdStr, "ERROR", err.Error())
		return fmt.Errorf("%s failed for %s: %w", program, sample, err)
	}
	r.Logger.Info(LogMsg, "PROGRAM", program, "SAMPLE", sample, "STATUS", StatusCompleted, "CMD", cmdStr)
	return nil
}
