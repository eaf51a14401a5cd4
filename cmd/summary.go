/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gmaffy/ont-assembly/assembly"
	"github.com/gmaffy/ont-assembly/report"
	"github.com/spf13/cobra"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary -o <output directory of a run> [--html report.html]",
	Short: "Prints the statistics table of a run",
	Long: `summary reads stats-summary.csv from a run's output directory, prints it
with a row of column means and optionally renders bar charts of every stage to an HTML page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		htmlFile, err := cmd.Flags().GetString("html")
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return writeSummary(cmd, filepath.Join(outDir, assembly.SummaryFile), htmlFile)
	},
}

func writeSummary(cmd *cobra.Command, table, htmlFile string) error {
	s, err := report.Load(table)
	if err != nil {
		return err
	}
	if err := s.WriteTable(cmd.OutOrStdout()); err != nil {
		return err
	}
	if htmlFile == "" {
		return nil
	}

	f, err := os.Create(htmlFile)
	if err != nil {
		return err
	}
	if err := s.RenderHTML(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nCharts written to %s\n", htmlFile)
	return nil
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringP("output", "o", ".", "output directory of a run")
	summaryCmd.Flags().String("html", "", "write bar charts of the table to this HTML file")
}
