/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/gmaffy/ont-assembly/assembly"
	"github.com/gmaffy/ont-assembly/tools"
	"github.com/gmaffy/ont-assembly/utils"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ont-assembly",
	Short: "Assemble and polish Oxford Nanopore read sets",
	Long: `Runs the following pipeline on every *.fastq* file of the input directory:

1.	Adapter trimming: ( porechop, with --trimONTAdapters)
2.	Length filtering: ( filtlong, with --minReadLen and/or --maxReadLen)
3.	Assembly: ( flye)
4.	Polishing: ( medaka)

Read and contig statistics for every sample are collected in stats-summary.csv.
`,
	RunE: runAssembly,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string

var (
	runCfg       assembly.Config
	skipDepCheck bool
	verbose      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (key: value per line, keys are flag names)")

	rootCmd.Flags().StringVarP(&runCfg.InputDir, "input", "i", "", "directory of read files (*.fastq*)")
	rootCmd.Flags().StringVarP(&runCfg.OutputDir, "output", "o", "", "output directory, created if absent")
	rootCmd.Flags().StringVarP(&runCfg.Model, "model", "m", "", "medaka model")
	rootCmd.Flags().BoolVar(&runCfg.TrimAdapters, "trimONTAdapters", false, "trim ONT adapters with porechop")
	rootCmd.Flags().IntVar(&runCfg.MinReadLen, "minReadLen", 0, "minimum read length, 0 disables")
	rootCmd.Flags().IntVar(&runCfg.MaxReadLen, "maxReadLen", 0, "maximum read length, 0 disables")
	rootCmd.Flags().IntVar(&runCfg.MedakaBatchSize, "medakaBatchSize", assembly.DefaultMedakaBatchSize, "medaka batch size, lower it if the GPU runs out of memory")
	rootCmd.Flags().BoolVar(&runCfg.PreGuppy5, "preGuppy5", false, "reads were basecalled before Guppy 5 (flye --nano-raw)")
	rootCmd.Flags().IntVarP(&runCfg.Threads, "threads", "t", assembly.DefaultThreads, "threads per external tool")
	rootCmd.Flags().IntVarP(&runCfg.Jobs, "jobs", "j", 0, "samples processed in parallel (default CPU cores / threads)")
	rootCmd.Flags().BoolVar(&runCfg.QCReport, "nanoplot", false, "run NanoPlot on the raw reads of every sample")
	rootCmd.Flags().BoolVar(&runCfg.KeepWork, "keepWork", false, "keep intermediate files of completed samples")
	rootCmd.Flags().BoolVar(&runCfg.Resume, "resume", false, "skip samples a previous run in the output directory completed")
	rootCmd.Flags().BoolVar(&skipDepCheck, "skipDepCheck", false, "do not check that the external tools are in PATH")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log statistics of every stage")
}

// applyConfigFile sets every flag named in the config file that was not
// given on the command line.
func applyConfigFile(flags *pflag.FlagSet) error {
	if cfgFile == "" {
		return nil
	}
	fmt.Println("Reading config file ...")
	cfg, err := utils.ReadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	for key, value := range cfg {
		flag := flags.Lookup(key)
		if flag == nil {
			return fmt.Errorf("%w: unknown config key %q in %s", assembly.ErrInvalidConfig, key, cfgFile)
		}
		if flag.Changed {
			continue
		}
		if err := flags.Set(key, value); err != nil {
			return fmt.Errorf("%w: config key %s: %v", assembly.ErrInvalidConfig, key, err)
		}
	}
	return nil
}

func newLogger(outDir string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, nil, err
	}
	logFile, err := os.OpenFile(filepath.Join(outDir, assembly.LogFile), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slogmulti.Fanout(
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	))
	return logger, logFile.Close, nil
}

func runAssembly(cmd *cobra.Command, args []string) error {
	if err := applyConfigFile(cmd.Flags()); err != nil {
		return err
	}
	if err := runCfg.Validate(); err != nil {
		return err
	}
	cmd.SilenceUsage = true
	if _, err := assembly.DiscoverSamples(runCfg.InputDir); err != nil {
		return fmt.Errorf("%w: %w", assembly.ErrInvalidConfig, err)
	}

	if !skipDepCheck {
		fmt.Printf("Checking dependencies ...\n\n")
		if err := utils.CheckDeps(tools.Programs(runCfg.TrimAdapters, runCfg.FilterEnabled(), runCfg.QCReport)...); err != nil {
			return fmt.Errorf("dependency check failed: %w", err)
		}
		fmt.Printf("Dependencies OK\n\n----------------------------------------------------------\n\n")
	}

	logger, closeLog, err := newLogger(runCfg.OutputDir)
	if err != nil {
		return err
	}
	defer closeLog()

	fmt.Printf("Input: %s\nOutput: %s\nModel: %s\nBranch: %s\nThreads: %d\n\n",
		runCfg.InputDir, runCfg.OutputDir, runCfg.Model, runCfg.Branch(), runCfg.Threads)

	res, err := assembly.Run(cmd.Context(), runCfg, utils.CmdRunner{Logger: logger}, logger)
	if len(res.Samples) > 0 {
		printResult(res)
	}
	return err
}

func printResult(res assembly.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("\n----------------------------------------------------------\n\n")
	fmt.Printf("Processed %d samples (%d in parallel)\n", len(res.Samples), res.Jobs)
	for _, s := range res.Completed {
		fmt.Printf("  %s %s\n", green("COMPLETED"), s)
	}
	for _, s := range res.Skipped {
		fmt.Printf("  %s %s\n", color.CyanString("SKIPPED"), s)
	}
	for _, s := range res.Samples {
		if err, failed := res.Failed[s.Name]; failed {
			fmt.Printf("  %s %s: %v\n", red("FAILED"), s.Name, err)
		}
	}
	fmt.Printf("\nSummary table: %s\n", res.Summary)
}
