package kits

import (
	"fmt"
	"sort"

	"github.com/dasnellings/dnamerge/progress"
	"github.com/dasnellings/dnamerge/snp"
)

// Options control optional row acceptance rules shared by all parsers.
type Options struct {
	// AllowMultibase keeps indel calls such as "TAAGTGTAAGTG" (stored split
	// as "TAAGTG TAAGTG") for dialects that report them.
	AllowMultibase bool
	// IncludeInvalidPositions keeps rows on chromosome 0 or position 0
	// subject to snp.ShouldKeepInvalidPosition.
	IncludeInvalidPositions bool
	Progress                progress.Func
}

// Parser turns the raw text of one export into a ParseResult. Rejected
// rows never fail a parse; they are reported as skipped entries.
type Parser interface {
	Format() snp.Format
	Parse(content string, file int, opts Options) snp.ParseResult
}

var parsers = map[snp.Format]Parser{
	snp.Ancestry:         ancestryParser{},
	snp.TwentyThreeAndMe: twentyThreeAndMeParser{},
	snp.MyHeritage:       myHeritageParser{},
	snp.FTDNA:            ftdnaParser{},
	snp.LivingDNA:        livingDNAParser{},
	snp.GenomeStudio:     genomeStudioParser{},
}

// ForFormat returns the parser registered for f.
func ForFormat(f snp.Format) (Parser, error) {
	p, ok := parsers[f]
	if !ok {
		return nil, fmt.Errorf("no parser for format %q", f)
	}
	return p, nil
}

// Formats lists the formats that have a parser.
func Formats() []snp.Format {
	ans := make([]snp.Format, 0, len(parsers))
	for f := range parsers {
		ans = append(ans, f)
	}
	sort.Slice(ans, func(i, j int) bool { return ans[i] < ans[j] })
	return ans
}
