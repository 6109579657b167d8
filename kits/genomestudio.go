package kits

import (
	"fmt"
	"strings"

	"github.com/dasnellings/dnamerge/snp"
)

// Illumina GenomeStudio final report headers as exported by the array
// vendors that consumer kits are built on.
const gsHeader1 string = "SNP Name\tChromosome\tPosition\tAl1Fwd\tAl2Fwd\tX\tY\tB Allele Freq\tLog R Ratio"
const gsHeader2 string = "SNP Name\tChr\tPosition\tAllele1 - Forward\tAllele2 - Forward\tX Raw\tY Raw\tX\tY\tTheta\tB Allele Freq\tLog R Ratio\tR\tAllele1 - Top\tAllele2 - Top\tGC Score\tGT Score\tCluster Sep"
const gsHeader3 string = "SNP Name\tChr\tPosition\tAllele1 - Top\tAllele2 - Top\tX\tY\tLog R Ratio\tB Allele Freq"
const gsHeader4 string = "SNP Name\tChr\tPosition\tAl1Fwd\tAl2Fwd\tX\tY\tB Allele Freq\tLog R Ratio"
const gsHeader5 string = "SNP Name\tChromosome\tPosition\tGC Score\tAllele1 - Top\tAllele2 - Top\tAllele1 - AB\tAllele2 - AB\tX\tY\tRaw X\tRaw Y\tR Illumina\tTheta Illumina\tB Allele Freq\tLog R Ratio"
const gsHeader6 string = "sample.id\tSNP\tchr\tpos\tA1.forward\tA2.forward\tX\tY\tB.Allele.Freq\tLogRRatio"

// gsLayout holds the column indices of the fields we keep.
// TOP strand alleles are taken as reported; reorienting them needs the
// array manifest.
type gsLayout struct {
	marker, chrom, pos, allele1, allele2 int
}

var (
	gsLayoutFirst  = &gsLayout{0, 1, 2, 3, 4}
	gsLayoutGC     = &gsLayout{0, 1, 2, 4, 5}
	gsLayoutSample = &gsLayout{1, 2, 3, 4, 5}
)

func isGenomeStudioHeader(line string) bool {
	return strings.HasPrefix(line, "SNP Name\t") || strings.HasPrefix(line, "sample.id\tSNP\t")
}

// layoutForHeader selects the column layout for a report header. Headers
// outside the known set are resolved by column name.
func layoutForHeader(line string) *gsLayout {
	switch line {
	case gsHeader1, gsHeader2, gsHeader3, gsHeader4:
		return gsLayoutFirst
	case gsHeader5:
		return gsLayoutGC
	case gsHeader6:
		return gsLayoutSample
	}

	names := strings.Split(line, "\t")
	find := func(candidates ...string) int {
		for _, c := range candidates {
			for i, n := range names {
				if strings.EqualFold(strings.TrimSpace(n), c) {
					return i
				}
			}
		}
		return -1
	}
	ans := &gsLayout{
		marker:  find("SNP Name", "SNP"),
		chrom:   find("Chr", "Chromosome"),
		pos:     find("Position", "pos"),
		allele1: find("Allele1 - Forward", "Al1Fwd", "A1.forward", "Allele1 - Plus", "Allele1 - Top"),
		allele2: find("Allele2 - Forward", "Al2Fwd", "A2.forward", "Allele2 - Plus", "Allele2 - Top"),
	}
	if ans.marker < 0 || ans.chrom < 0 || ans.pos < 0 || ans.allele1 < 0 || ans.allele2 < 0 {
		return nil
	}
	return ans
}

// genomeStudioComment reads the [Header] block that precedes the data
// section of a final report.
func genomeStudioComment(line string, md *snp.Metadata) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == '\t' })
	if len(fields) < 2 {
		return
	}
	v := strings.TrimSpace(fields[len(fields)-1])
	switch strings.TrimSpace(fields[0]) {
	case "Content":
		md.Chip = v
	case "GSGT Version":
		md.Version = v
	case "Processing Date":
		md.Timestamp = v
	}
}

// GenomeStudio final reports: a [Header] preamble, then a tab-separated
// table whose header row determines the column layout.
type genomeStudioParser struct{}

func (genomeStudioParser) Format() snp.Format { return snp.GenomeStudio }

func (genomeStudioParser) Parse(content string, file int, opts Options) snp.ParseResult {
	var layout *gsLayout
	d := dialect{
		format:  snp.GenomeStudio,
		comment: genomeStudioComment,
		header: func(line string) bool {
			if !isGenomeStudioHeader(line) {
				return false
			}
			layout = layoutForHeader(line)
			return true
		},
		needHeader: true,
		split: func(line string) (record, string) {
			if layout == nil {
				return record{}, "Unrecognized report header"
			}
			return layout.split(line)
		},
		chromHint: standardChromHint,
	}
	return d.parse(content, file, opts)
}

func (l *gsLayout) split(line string) (record, string) {
	fields := strings.Split(line, "\t")
	need := l.allele2
	for _, i := range []int{l.marker, l.chrom, l.pos, l.allele1} {
		if i > need {
			need = i
		}
	}
	if len(fields) <= need {
		return record{}, fmt.Sprintf("Insufficient columns (expected %d)", need+1)
	}
	return record{
		id:       strings.TrimSpace(fields[l.marker]),
		chrom:    strings.TrimSpace(fields[l.chrom]),
		pos:      strings.TrimSpace(fields[l.pos]),
		genotype: strings.ToUpper(strings.TrimSpace(fields[l.allele1]) + strings.TrimSpace(fields[l.allele2])),
	}, ""
}
