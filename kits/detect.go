package kits

import (
	"strings"

	"github.com/dasnellings/dnamerge/snp"
)

// Detect inspects raw export text and returns its vendor dialect, or
// snp.Unknown when no rule fires. There is no structural rule for 23andMe
// or FTDNA exports; callers must name those formats explicitly.
func Detect(content string) snp.Format {
	return DetectLines(strings.Split(content, "\n"))
}

func DetectLines(lines []string) snp.Format {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			lower := strings.ToLower(line)
			switch {
			case strings.Contains(lower, "ancestrydna"):
				return snp.Ancestry
			case strings.Contains(lower, "myheritage"):
				return snp.MyHeritage
			case strings.Contains(lower, "living dna"):
				return snp.LivingDNA
			}
			continue
		}
		if isGenomeStudioHeader(strings.TrimRight(line, "\t\r")) {
			return snp.GenomeStudio
		}
		if strings.Contains(line, "\t") && !strings.Contains(line, ",") {
			lower := strings.ToLower(line)
			if strings.Contains(lower, "rsid") && strings.Contains(lower, "allele") {
				return snp.Ancestry
			}
		}
		if strings.Contains(line, ",") && strings.Contains(line, "\"") {
			upper := strings.ToUpper(line)
			if strings.Contains(upper, "RSID") && strings.Contains(upper, "RESULT") {
				return snp.MyHeritage
			}
		}
	}
	return snp.Unknown
}
