// Package output renders merged markers as vendor-importable raw data files,
// as a single-sample VCF, and as a plain text audit log.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dasnellings/dnamerge/snp"
)

// Dialect is a target output format.
type Dialect int

const (
	MyHeritage Dialect = iota
	Ancestry
)

func (d Dialect) String() string {
	if d == Ancestry {
		return "ancestry"
	}
	return "myheritage"
}

// Extension is the file extension the vendor's importer expects.
func (d Dialect) Extension() string {
	if d == Ancestry {
		return "txt"
	}
	return "csv"
}

// Format is the parse format that reads this dialect back.
func (d Dialect) Format() snp.Format {
	if d == Ancestry {
		return snp.Ancestry
	}
	return snp.MyHeritage
}

func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "myheritage", "mh":
		return MyHeritage, nil
	case "ancestry", "ancestrydna":
		return Ancestry, nil
	}
	return MyHeritage, fmt.Errorf("unrecognized output dialect %q", s)
}

// Opposite picks the conversion target for a single input of format f.
func Opposite(f snp.Format) Dialect {
	if f == snp.Ancestry {
		return MyHeritage
	}
	return Ancestry
}

type Options struct {
	// FileCount is the number of inputs reported in the preamble.
	FileCount int
	Now       time.Time
	// Source names the generating program. Defaults to "dnamerge".
	Source string
}

type Result struct {
	Text        string
	ExcludedPAR int
}

// writeFunc writes markers in one dialect and returns the number of
// pseudoautosomal markers it had to drop.
type writeFunc func(w *bufio.Writer, markers []snp.Marker, opts Options) int

var writers = map[Dialect]writeFunc{
	MyHeritage: writeMyHeritage,
	Ancestry:   writeAncestry,
}

// Write streams markers to w in dialect d.
func Write(w io.Writer, markers []snp.Marker, d Dialect, opts Options) (excludedPAR int, err error) {
	fn, ok := writers[d]
	if !ok {
		return 0, fmt.Errorf("no writer registered for dialect %d", d)
	}
	if opts.Source == "" {
		opts.Source = "dnamerge"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	bw := bufio.NewWriter(w)
	excludedPAR = fn(bw, markers, opts)
	return excludedPAR, bw.Flush()
}

// Generate renders markers in dialect d.
func Generate(markers []snp.Marker, d Dialect, opts Options) (Result, error) {
	var sb strings.Builder
	n, err := Write(&sb, markers, d, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: sb.String(), ExcludedPAR: n}, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05") + " UTC"
}

const disclaimer string = "THIS INFORMATION IS FOR YOUR PERSONAL USE AND IS INTENDED FOR GENEALOGICAL RESEARCH ONLY."
