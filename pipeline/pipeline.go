// Package pipeline runs a complete merge: it reads raw exports from disk,
// parses them, merges the markers and writes the output and audit log.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dasnellings/dnamerge/kits"
	"github.com/dasnellings/dnamerge/merge"
	"github.com/dasnellings/dnamerge/output"
	"github.com/dasnellings/dnamerge/progress"
	"github.com/dasnellings/dnamerge/snp"
)

// MaxFiles is the largest number of inputs a single run accepts.
const MaxFiles int = 10

var (
	ErrUnknownFormat = errors.New("unable to detect file format")
	ErrTooManyFiles  = fmt.Errorf("more than %d input files", MaxFiles)
	ErrNoInputs      = errors.New("no input files")
)

// Input is one raw export. A zero Format is detected from the content.
type Input struct {
	Path   string
	Format snp.Format
}

type Config struct {
	Inputs []Input
	// Prefer moves the input at this index to the front of the priority
	// order.
	Prefer int
	// Dialect is the output format. Nil converts a single input to the
	// other vendor and writes MyHeritage for merges.
	Dialect *output.Dialect
	// OutputPath defaults to a descriptive name in OutputDir.
	OutputPath string
	OutputDir  string
	// Compress gzips the output. Output paths ending in .gz are always
	// compressed.
	Compress bool
	WriteLog bool
	LogPath  string
	Parse    kits.Options
	Merge    merge.Options
	Progress progress.Func
	Now      time.Time
}

type Summary struct {
	RunID       string
	Inputs      []Input
	Dialect     output.Dialect
	Markers     int
	Conflicts   int
	Skipped     int
	ExcludedPAR int
	Coverage    merge.Coverage
	OutputPath  string
	LogPath     string
}

// syncFunc serializes progress events coming from concurrent parsers.
func syncFunc(fn progress.Func) progress.Func {
	if fn == nil {
		return nil
	}
	var mu sync.Mutex
	return func(ev progress.Event) {
		mu.Lock()
		fn(ev)
		mu.Unlock()
	}
}

// prioritize returns inputs with the preferred one first.
func prioritize(inputs []Input, prefer int) []Input {
	ans := make([]Input, 0, len(inputs))
	if prefer <= 0 || prefer >= len(inputs) {
		return append(ans, inputs...)
	}
	ans = append(ans, inputs[prefer])
	ans = append(ans, inputs[:prefer]...)
	return append(ans, inputs[prefer+1:]...)
}

// Run executes the merge described by cfg. Every input must have a known
// format before anything is merged.
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	switch {
	case len(cfg.Inputs) == 0:
		return nil, ErrNoInputs
	case len(cfg.Inputs) > MaxFiles:
		return nil, fmt.Errorf("%d inputs: %w", len(cfg.Inputs), ErrTooManyFiles)
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	sum := &Summary{RunID: uuid.New().String(), Inputs: prioritize(cfg.Inputs, cfg.Prefer)}
	logger := log.WithField("run", sum.RunID)
	fn := syncFunc(cfg.Progress)

	contents, err := load(ctx, sum.Inputs)
	if err != nil {
		return nil, err
	}
	for i := range sum.Inputs {
		logger.WithFields(log.Fields{"file": sum.Inputs[i].Path, "format": sum.Inputs[i].Format}).Info("loaded input")
	}

	results, err := parseAll(ctx, sum.Inputs, contents, cfg.Parse, fn)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	res := merge.MergeN(results, cfg.Merge, fn)
	sum.Markers = len(res.Markers)
	sum.Conflicts = len(res.Conflicts)
	sum.Skipped = len(res.Skipped)
	sum.Coverage = res.Coverage
	logger.WithFields(log.Fields{
		"markers":   sum.Markers,
		"conflicts": sum.Conflicts,
		"skipped":   sum.Skipped,
		"shared":    sum.Coverage.SharedByAll,
	}).Info("merged")
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case cfg.Dialect != nil:
		sum.Dialect = *cfg.Dialect
	case len(sum.Inputs) == 1:
		sum.Dialect = output.Opposite(sum.Inputs[0].Format)
	default:
		sum.Dialect = output.MyHeritage
	}

	names := make([]string, len(sum.Inputs))
	formats := make([]snp.Format, len(sum.Inputs))
	for i := range sum.Inputs {
		names[i] = filepath.Base(sum.Inputs[i].Path)
		formats[i] = sum.Inputs[i].Format
	}
	stem := OutputStem(formats, names, sum.Dialect, cfg.Merge.FillMissing, cfg.Now)

	sum.OutputPath = cfg.OutputPath
	if sum.OutputPath == "" {
		sum.OutputPath = filepath.Join(cfg.OutputDir, stem+"."+sum.Dialect.Extension())
		if cfg.Compress {
			sum.OutputPath += ".gz"
		}
	}
	tracker := progress.NewTracker(fn, progress.StageOutput, -1)
	tracker.Report(0)
	sum.ExcludedPAR, err = writeOutput(sum.OutputPath, cfg.Compress, res.Markers, sum.Dialect, output.Options{FileCount: len(sum.Inputs), Now: cfg.Now})
	if err != nil {
		return nil, err
	}
	if sum.ExcludedPAR > 0 {
		logger.Warnf("%d pseudoautosomal markers excluded from %s output", sum.ExcludedPAR, sum.Dialect)
	}

	if cfg.WriteLog {
		sum.LogPath = cfg.LogPath
		if sum.LogPath == "" {
			sum.LogPath = filepath.Join(cfg.OutputDir, stem+"--log.txt")
		}
		text := output.GenerateLog(res.Conflicts, res.Skipped, names, res.Metadata, output.LogOptions{
			ExcludedPAR: sum.ExcludedPAR,
			RunID:       sum.RunID,
			Now:         cfg.Now,
		})
		if err = writeLog(sum.LogPath, text); err != nil {
			return nil, err
		}
	}
	tracker.Report(100)
	logger.WithField("output", sum.OutputPath).Info("wrote output")
	return sum, nil
}

// load reads every input concurrently and settles its format. Inputs keep
// their position so priority order is preserved.
func load(ctx context.Context, inputs []Input) ([]string, error) {
	contents := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := os.Stat(inputs[i].Path); err != nil {
				return err
			}
			text, err := ReadInput(inputs[i].Path)
			if err != nil {
				return err
			}
			contents[i] = text
			if inputs[i].Format == snp.Unknown {
				inputs[i].Format = kits.Detect(text)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var unknown []string
	for i := range inputs {
		if inputs[i].Format == snp.Unknown {
			unknown = append(unknown, inputs[i].Path)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(unknown, ", "), ErrUnknownFormat)
	}
	return contents, nil
}

func parseAll(ctx context.Context, inputs []Input, contents []string, opts kits.Options, fn progress.Func) ([]snp.ParseResult, error) {
	results := make([]snp.ParseResult, len(inputs))
	opts.Progress = fn
	g, gctx := errgroup.WithContext(ctx)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := kits.ForFormat(inputs[i].Format)
			if err != nil {
				return fmt.Errorf("%s: %w", inputs[i].Path, err)
			}
			results[i] = p.Parse(contents[i], i, opts)
			log.WithFields(log.Fields{
				"file":    inputs[i].Path,
				"markers": len(results[i].Markers),
				"skipped": len(results[i].Skipped),
			}).Debug("parsed input")
			return nil
		})
	}
	return results, g.Wait()
}

func writeOutput(path string, compress bool, markers []snp.Marker, d output.Dialect, opts output.Options) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	var w io.Writer = f
	var gz *pgzip.Writer
	if compress || strings.HasSuffix(path, ".gz") {
		gz = pgzip.NewWriter(f)
		w = gz
	}
	excluded, err := output.Write(w, markers, d, opts)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if gz != nil {
		if err = gz.Close(); err != nil {
			f.Close()
			return 0, fmt.Errorf("compressing %s: %w", path, err)
		}
	}
	return excluded, f.Close()
}

func writeLog(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating log: %w", err)
	}
	if _, err = io.WriteString(f, text); err != nil {
		f.Close()
		return fmt.Errorf("writing log %s: %w", path, err)
	}
	return f.Close()
}

// OutputStem names the files of a run after what it did, e.g.
// "convert-23andme-to-ancestry--2024-03-05--14-07" or
// "myheritage--preferred-kit.txt--fill-missing-no--2024-03-05--14-07".
func OutputStem(formats []snp.Format, names []string, d output.Dialect, fillMissing bool, now time.Time) string {
	ts := now.UTC().Format("2006-01-02--15-04")
	if len(formats) == 1 {
		return fmt.Sprintf("convert-%s-to-%s--%s", formats[0], d, ts)
	}
	preferred := "file1"
	if len(names) > 0 && names[0] != "" {
		preferred = names[0]
	}
	fill := "no"
	if fillMissing {
		fill = "yes"
	}
	return fmt.Sprintf("%s--preferred-%s--fill-missing-%s--%s", d, preferred, fill, ts)
}
