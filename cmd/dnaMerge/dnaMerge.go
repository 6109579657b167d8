package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dasnellings/dnamerge/config"
	"github.com/dasnellings/dnamerge/kits"
	"github.com/dasnellings/dnamerge/merge"
	"github.com/dasnellings/dnamerge/output"
	"github.com/dasnellings/dnamerge/pipeline"
	"github.com/dasnellings/dnamerge/progress"
	"github.com/dasnellings/dnamerge/snp"
)

const version = "1.0.0"

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// progressBar renders parse, merge and output events as one bar. Parse
// progress is averaged over the input files.
type progressBar struct {
	bar   *pb.ProgressBar
	parse []int
	merge int
	out   int
}

func newProgressBar(files int) *progressBar {
	return &progressBar{bar: pb.Full.Start64(300), parse: make([]int, files)}
}

func (p *progressBar) update(ev progress.Event) {
	switch ev.Stage {
	case progress.StageParse:
		if ev.File >= 0 && ev.File < len(p.parse) {
			p.parse[ev.File] = ev.Percent
		}
	case progress.StageMerge:
		p.merge = ev.Percent
	case progress.StageOutput:
		p.out = ev.Percent
	}
	var sum int
	for _, v := range p.parse {
		sum += v
	}
	p.bar.SetCurrent(int64(sum/len(p.parse) + p.merge + p.out))
}

func mergeCommand() *cobra.Command {
	var (
		configDir      string
		outputPath     string
		outputDir      string
		dialect        string
		resolution     string
		logPath        string
		prefer         int
		fillMissing    bool
		allowMultibase bool
		invalidPos     bool
		compress       bool
		noLog          bool
		quiet          bool
		verbose        bool
		kitFormats     map[string]string
	)
	cmd := &cobra.Command{
		Use:   "merge [flags] kit1 [kit2 ... kit10]",
		Short: "Merge or convert raw DNA exports",
		Long: `Merge up to ten raw DNA exports into one file importable by MyHeritage or AncestryDNA.
A single input is converted to the other vendor's format.

Files are given in priority order: when kits disagree the first file wins unless
--fill-missing or --resolution consensus says otherwise. 23andMe and FamilyTreeDNA
exports cannot be detected from their content and need --kit-format.`,
		Args: cobra.RangeArgs(1, pipeline.MaxFiles),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("format") {
				cfg.Output = dialect
			}
			if flags.Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if flags.Changed("resolution") {
				cfg.Resolution = resolution
			}
			if flags.Changed("fill-missing") {
				cfg.FillMissing = fillMissing
			}
			if flags.Changed("allow-multibase") {
				cfg.AllowMultibase = allowMultibase
			}
			if flags.Changed("include-invalid-positions") {
				cfg.IncludeInvalidPositions = invalidPos
			}
			if flags.Changed("compress") {
				cfg.Compress = compress
			}
			if noLog {
				cfg.WriteLog = false
			}
			for file, f := range kitFormats {
				if cfg.Formats == nil {
					cfg.Formats = make(map[string]string)
				}
				cfg.Formats[file] = f
			}
			if err = cfg.Validate(); err != nil {
				return err
			}

			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			return runMerge(cmd.Context(), args, cfg, outputPath, logPath, prefer, quiet)
		},
	}
	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory holding dnamerge.yml")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: descriptive name in --output-dir)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", ".", "Directory for generated files")
	cmd.Flags().StringVarP(&dialect, "format", "f", "", "Output format: myheritage or ancestry")
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "priority", "Conflict resolution: priority or consensus")
	cmd.Flags().StringVar(&logPath, "log", "", "Log file (default: next to the output)")
	cmd.Flags().IntVarP(&prefer, "prefer", "p", 1, "1-based input that takes top priority")
	cmd.Flags().BoolVarP(&fillMissing, "fill-missing", "m", false, "Fill no-calls from lower priority files")
	cmd.Flags().BoolVar(&allowMultibase, "allow-multibase", false, "Keep LivingDNA indel genotypes")
	cmd.Flags().BoolVar(&invalidPos, "include-invalid-positions", false, "Keep markers reported at chromosome or position 0")
	cmd.Flags().BoolVarP(&compress, "compress", "z", false, "Gzip the output")
	cmd.Flags().BoolVar(&noLog, "no-log", false, "Do not write the merge log")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	cmd.Flags().StringToStringVarP(&kitFormats, "kit-format", "k", nil, "Input format by file, e.g. genome.txt=23andme")
	return cmd
}

// formatFor looks a kit up by path, then by base name.
func formatFor(path string, formats map[string]string) snp.Format {
	f, ok := formats[path]
	if !ok {
		f, ok = formats[filepath.Base(path)]
	}
	if !ok {
		return snp.Unknown
	}
	format, _ := snp.ParseFormat(f)
	return format
}

func runMerge(ctx context.Context, files []string, cfg *config.Config, outputPath, logPath string, prefer int, quiet bool) error {
	res, _ := merge.ParseResolution(cfg.Resolution)
	pc := pipeline.Config{
		OutputPath: outputPath,
		OutputDir:  cfg.OutputDir,
		Compress:   cfg.Compress,
		WriteLog:   cfg.WriteLog,
		LogPath:    logPath,
		Prefer:     prefer - 1,
		Parse: kits.Options{
			AllowMultibase:          cfg.AllowMultibase,
			IncludeInvalidPositions: cfg.IncludeInvalidPositions,
		},
		Merge: merge.Options{FillMissing: cfg.FillMissing, Resolution: res},
	}
	if cfg.Output != "" {
		d, _ := output.ParseDialect(cfg.Output)
		pc.Dialect = &d
	}
	for _, f := range files {
		pc.Inputs = append(pc.Inputs, pipeline.Input{Path: f, Format: formatFor(f, cfg.Formats)})
	}

	var bar *progressBar
	if !quiet {
		bar = newProgressBar(len(files))
	}
	reporter := progress.NewReporter()
	pc.Progress = reporter.Func()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range reporter.Subscribe() {
			if bar != nil {
				bar.update(ev)
			}
			log.Debug(strings.TrimSpace(progress.Format(ev)))
		}
	}()
	sum, err := pipeline.Run(ctx, pc)
	reporter.Close()
	<-done
	if bar != nil {
		if err == nil {
			bar.bar.SetCurrent(300)
		}
		bar.bar.Finish()
	}
	if err != nil {
		return err
	}

	for i, in := range sum.Inputs {
		fmt.Printf("File %d: %s (%s)\n", i+1, in.Path, in.Format)
	}
	fmt.Printf("Markers: %d  Conflicts: %d  Skipped rows: %d\n", sum.Markers, sum.Conflicts, sum.Skipped)
	if len(sum.Inputs) > 1 {
		fmt.Printf("Shared by all files: %d  Reported by one file: %d\n", sum.Coverage.SharedByAll, sum.Coverage.Unique)
	}
	if sum.ExcludedPAR > 0 {
		fmt.Println(yellow(fmt.Sprintf("%d pseudoautosomal markers cannot be represented in %s format and were left out", sum.ExcludedPAR, sum.Dialect)))
	}
	fmt.Printf("\n%s output at: %s\n", sum.Dialect, cyan(sum.OutputPath))
	if sum.LogPath != "" {
		fmt.Printf("merge log at: %s\n", cyan(sum.LogPath))
	}
	return nil
}

func detectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect kit [kit ...]",
		Short: "Report the vendor format of raw DNA exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				text, err := pipeline.ReadInput(path)
				if err != nil {
					return err
				}
				format := kits.Detect(text)
				if format == snp.Unknown {
					fmt.Printf("%s\t%s\n", path, yellow(format))
					continue
				}
				fmt.Printf("%s\t%s\n", path, cyan(format))
			}
			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dnaMerge version %s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			var names []string
			for _, f := range kits.Formats() {
				names = append(names, f.String())
			}
			fmt.Printf("Input formats: %s\n", strings.Join(names, ", "))
		},
	}
}

func main() {
	log.SetLevel(log.WarnLevel)
	rootCmd := &cobra.Command{
		Use:   "dnaMerge",
		Short: "Merge and convert consumer DNA raw data exports",
		Long: `dnaMerge reads raw genotype exports from AncestryDNA, 23andMe, MyHeritage,
FamilyTreeDNA, LivingDNA and Illumina GenomeStudio final reports, reconciles
them by marker and writes a file that MyHeritage or AncestryDNA can import.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(mergeCommand())
	rootCmd.AddCommand(detectCommand())
	rootCmd.AddCommand(versionCommand())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
