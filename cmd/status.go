/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/gmaffy/ont-assembly/assembly"
	"github.com/gmaffy/ont-assembly/utils"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status -o <output directory of a run>",
	Short: "Shows the progress of every sample of a run",
	Long: `status reads assembly.log from a run's output directory and prints the
latest status of every tool for every sample.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		entries, err := utils.ParseLogFile(filepath.Join(outDir, assembly.LogFile))
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), entries)
		return nil
	},
}

func colorStatus(status string) string {
	switch status {
	case utils.StatusCompleted:
		return color.GreenString(status)
	case utils.StatusFailed:
		return color.RedString(status)
	case utils.StatusSoftFailed:
		return color.YellowString(status)
	}
	return color.CyanString(status)
}

func printStatus(w io.Writer, entries []utils.LogEntry) {
	samples, progress := utils.SampleProgress(entries)
	if len(samples) == 0 {
		fmt.Fprintln(w, "No samples logged yet")
		return
	}
	done := 0
	for _, s := range samples {
		if utils.StageHasCompleted(entries, assembly.ProgSample, s) {
			done++
		}
		fmt.Fprintf(w, "%s\n", s)
		for _, p := range progress[s] {
			fmt.Fprintf(w, "  %-10s %s  %s\n", p.Program, colorStatus(p.Status), p.Time)
		}
	}
	fmt.Fprintf(w, "\n%d samples completed\n", done)
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringP("output", "o", ".", "output directory of a run")
}
