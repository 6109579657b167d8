package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dasnellings/dnamerge/snp"
)

// DetailedConflicts is the number of conflicts rendered with one column
// per file. Later conflicts use the compact form.
const DetailedConflicts int = 20

const logContentWidth int = 42

type LogOptions struct {
	ExcludedPAR int
	RunID       string
	Now         time.Time
}

// GenerateLog renders the audit log of a merge: input files and their
// metadata, summary counts, every conflict and every skipped row.
func GenerateLog(conflicts []snp.ConflictEntry, skipped []snp.SkippedEntry, fileNames []string, metadata []snp.Metadata, opts LogOptions) string {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	files := len(fileNames)
	if len(metadata) > files {
		files = len(metadata)
	}

	sb := new(strings.Builder)
	sb.WriteString("DNA Merge Log\n")
	sb.WriteString("Generated: " + timestamp(opts.Now) + "\n")
	if opts.RunID != "" {
		sb.WriteString("Run ID: " + opts.RunID + "\n")
	}

	sb.WriteString("\n=== FILES ===\n")
	for i := 0; i < files; i++ {
		name := "N/A"
		if i < len(fileNames) && fileNames[i] != "" {
			name = fileNames[i]
		}
		fmt.Fprintf(sb, "File %d: %s\n", i+1, name)
		if i < len(metadata) {
			for _, f := range metadata[i].Fields() {
				fmt.Fprintf(sb, "  %s: %s\n", f.Label, f.Value)
			}
		}
	}

	sb.WriteString("\n=== SUMMARY ===\n")
	fmt.Fprintf(sb, "Files merged: %d\n", files)
	fmt.Fprintf(sb, "Conflicts detected: %d\n", len(conflicts))
	fmt.Fprintf(sb, "Invalid rows skipped: %d\n", len(skipped))
	if opts.ExcludedPAR > 0 {
		fmt.Fprintf(sb, "Pseudoautosomal region (PAR) SNPs excluded for MyHeritage format: %d\n", opts.ExcludedPAR)
	}
	sb.WriteString("\n")

	if len(conflicts) > 0 {
		writeConflicts(sb, conflicts, files)
	}
	if len(skipped) > 0 {
		writeSkipped(sb, skipped)
	}
	return sb.String()
}

func slotText(s snp.Slot) string {
	if !s.Reported {
		return "n/a"
	}
	return s.Genotype
}

func writeConflicts(sb *strings.Builder, conflicts []snp.ConflictEntry, files int) {
	sb.WriteString("=== CONFLICTS (Same RSID, Different Genotypes) ===\n")
	sb.WriteString("RSID              | Chr | Position  | ")
	for i := 0; i < files; i++ {
		fmt.Fprintf(sb, "%-6s | ", fmt.Sprintf("File %d", i+1))
	}
	sb.WriteString("Chosen | Source  | Resolution Reason\n")
	sb.WriteString("------------------|-----|-----------|")
	for i := 0; i < files; i++ {
		sb.WriteString("--------|")
	}
	sb.WriteString("--------|---------|---------------------------\n")

	n := len(conflicts)
	if n > DetailedConflicts {
		n = DetailedConflicts
	}
	for _, c := range conflicts[:n] {
		fmt.Fprintf(sb, "%-17s | %-3s | %-9s | ", c.ID, c.Chromosome, c.Position)
		for i := 0; i < files; i++ {
			var s snp.Slot
			if i < len(c.Files) {
				s = c.Files[i]
			}
			fmt.Fprintf(sb, "%-6s | ", slotText(s))
		}
		fmt.Fprintf(sb, "%-6s | %-7s | %s\n", c.Chosen, fmt.Sprintf("File %d", c.ChosenFrom+1), c.Reason)
	}
	sb.WriteString("\n")

	if len(conflicts) <= DetailedConflicts {
		return
	}
	fmt.Fprintf(sb, "Additional conflicts (%d), showing files that differ from the chosen value:\n", len(conflicts)-DetailedConflicts)
	var diffs []string
	for _, c := range conflicts[DetailedConflicts:] {
		diffs = diffs[:0]
		chosen := snp.NormalizeForComparison(c.Chosen)
		for i, s := range c.Files {
			if s.Reported && snp.NormalizeForComparison(s.Genotype) != chosen {
				diffs = append(diffs, fmt.Sprintf("F%d:%s", i+1, s.Genotype))
			}
		}
		fmt.Fprintf(sb, "%-17s | %-3s | %-9s | %s -> %s (File %d) | %s\n",
			c.ID, c.Chromosome, c.Position, strings.Join(diffs, " "), c.Chosen, c.ChosenFrom+1, c.Reason)
	}
	sb.WriteString("\n")
}

func writeSkipped(sb *strings.Builder, skipped []snp.SkippedEntry) {
	sb.WriteString("=== SKIPPED ROWS (Invalid Data) ===\n")
	sb.WriteString("File | Line | Content                                    | Reason\n")
	sb.WriteString("-----|------|--------------------------------------------|-----------------------\n")
	for _, s := range skipped {
		content := []rune(strings.ReplaceAll(s.Content, "\t", " "))
		if len(content) > logContentWidth {
			content = content[:logContentWidth]
		}
		fmt.Fprintf(sb, "%-4d | %-4d | %-42s | %s\n", s.File+1, s.Line, string(content), s.Reason)
	}
}
