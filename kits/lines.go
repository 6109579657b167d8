package kits

import (
	"fmt"
	"strings"

	"github.com/dasnellings/dnamerge/progress"
	"github.com/dasnellings/dnamerge/snp"
)

// record is one data row split into the columns every dialect provides.
type record struct {
	id       string
	chrom    string
	pos      string
	genotype string
}

// dialect describes how a vendor export differs from the common row
// pipeline: comments, column header, delimiter and genotype rules.
type dialect struct {
	format snp.Format

	// comment extracts metadata from a comment line (and, for dialects
	// with needHeader, from any line preceding the column header).
	comment func(line string, md *snp.Metadata)

	// header reports whether line is the column header row. It is only
	// consulted until it first returns true.
	header func(line string) bool

	// needHeader ignores every row until header has matched.
	needHeader bool

	// split breaks a data row into a record. A non-empty reason rejects
	// the row.
	split func(line string) (record, string)

	singleChar bool
	multibase  bool
	chromHint  string
}

func (d dialect) parse(content string, file int, opts Options) snp.ParseResult {
	lines := strings.Split(content, "\n")
	ans := snp.ParseResult{Format: d.format}
	tracker := progress.NewTracker(opts.Progress, progress.StageParse, file)
	headerFound := d.header == nil

	var trimmed, reason string
	var rec record
	var m snp.Marker
	for i, line := range lines {
		if i > 0 && i%progress.BatchSize == 0 {
			tracker.Report(progress.Scaled(i, len(lines), 0, 100, 99))
		}
		trimmed = strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if d.comment != nil {
				d.comment(trimmed, &ans.Metadata)
			}
			continue
		}
		if !headerFound && d.header(trimmed) {
			headerFound = true
			continue
		}
		if !headerFound && d.needHeader {
			if d.comment != nil {
				d.comment(trimmed, &ans.Metadata)
			}
			continue
		}

		if rec, reason = d.split(trimmed); reason == "" {
			m, reason = d.check(rec, file, opts)
		}
		if reason != "" {
			ans.Skipped = append(ans.Skipped, snp.NewSkippedEntry(i+1, trimmed, reason, file))
			continue
		}
		ans.Markers = append(ans.Markers, m)
	}
	tracker.Report(100)
	return ans
}

// check applies the shared acceptance rules to a split row.
func (d dialect) check(r record, file int, opts Options) (snp.Marker, string) {
	if r.id == "" || r.chrom == "" || r.pos == "" || r.genotype == "" {
		return snp.Marker{}, "Missing required fields"
	}

	if snp.HasInvalidPosition(r.chrom, r.pos) {
		if !snp.ShouldKeepInvalidPosition(r.id, r.genotype, opts.IncludeInvalidPositions) {
			return snp.Marker{}, fmt.Sprintf("Invalid position: chromosome=%s, position=%s", r.chrom, r.pos)
		}
		g, reason := d.checkGenotype(r.genotype, true, opts)
		if reason != "" {
			return snp.Marker{}, reason
		}
		return snp.Marker{ID: r.id, Chromosome: strings.ToUpper(r.chrom), Position: r.pos, Genotype: g, File: file}, ""
	}

	if !snp.IsValidChromosome(r.chrom, d.format) {
		return snp.Marker{}, fmt.Sprintf("Invalid chromosome: %s (valid: %s)", r.chrom, d.chromHint)
	}
	g, reason := d.checkGenotype(r.genotype, d.singleChar, opts)
	if reason != "" {
		return snp.Marker{}, reason
	}
	return snp.Marker{ID: r.id, Chromosome: canonicalChromosome(r.chrom), Position: r.pos, Genotype: g, File: file}, ""
}

func (d dialect) checkGenotype(g string, allowSingle bool, opts Options) (string, string) {
	if snp.ValidateGenotype(g, allowSingle) {
		return g, ""
	}
	if d.multibase && snp.IsMultibaseGenotype(g) {
		if !opts.AllowMultibase {
			return "", "Skipped multi-base genotype (Indel): " + g
		}
		return snp.SplitMultibaseGenotype(g), ""
	}
	return "", "Invalid genotype: " + g
}

// canonicalChromosome upper-cases letter chromosomes and spells the
// mitochondrion MT. Numeric tokens, including Ancestry's 23-26, are kept.
func canonicalChromosome(c string) string {
	chr := strings.ToUpper(c)
	if chr == "M" {
		return "MT"
	}
	return chr
}

func splitColumns(fields []string, want int) (record, string) {
	if len(fields) < want {
		return record{}, fmt.Sprintf("Insufficient columns (expected %d)", want)
	}
	return record{
		id:       strings.TrimSpace(fields[0]),
		chrom:    strings.TrimSpace(fields[1]),
		pos:      strings.TrimSpace(fields[2]),
		genotype: strings.TrimSpace(fields[3]),
	}, ""
}

func containsRsid(line string) bool {
	return strings.Contains(strings.ToLower(line), "rsid")
}

// splitQuoted tokenizes a comma-separated line in which any field may be
// wrapped in double quotes. A doubled quote inside a quoted field is a
// literal quote.
func splitQuoted(line string) []string {
	var ans []string
	var sb strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			sb.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			ans = append(ans, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	return append(ans, sb.String())
}
