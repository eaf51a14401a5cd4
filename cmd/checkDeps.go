/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"fmt"
	"os/exec"

	"github.com/fatih/color"
	"github.com/gmaffy/ont-assembly/tools"
	"github.com/gmaffy/ont-assembly/utils"
	"github.com/spf13/cobra"
)

// checkDepsCmd represents the checkDeps command
var checkDepsCmd = &cobra.Command{
	Use:   "checkDeps",
	Short: "Checks that every external tool is in PATH",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		progs := tools.Programs(true, true, true)
		for _, p := range progs {
			if path, err := exec.LookPath(p); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", p, color.RedString("MISSING"))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", p, color.GreenString(path))
			}
		}
		return utils.CheckDeps(progs...)
	},
}

func init() {
	rootCmd.AddCommand(checkDepsCmd)
}
