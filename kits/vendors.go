package kits

import (
	"strings"

	"github.com/dasnellings/dnamerge/snp"
)

const standardChromHint string = "1-22, X, Y, MT"

// AncestryDNA: tab-separated rsid, chromosome, position, allele1, allele2
// with X, Y, PAR and MT encoded as 23-26.
type ancestryParser struct{}

var ancestryDialect = dialect{
	format:    snp.Ancestry,
	header:    containsRsid,
	split:     splitAncestry,
	chromHint: "1-26, X, Y, MT",
}

func (ancestryParser) Format() snp.Format { return snp.Ancestry }

func (ancestryParser) Parse(content string, file int, opts Options) snp.ParseResult {
	return ancestryDialect.parse(content, file, opts)
}

func splitAncestry(line string) (record, string) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return record{}, "Insufficient columns (expected 5)"
	}
	rec, _ := splitColumns(fields, 4)
	rec.genotype = strings.TrimSpace(fields[3]) + strings.TrimSpace(fields[4])
	return rec, ""
}

// 23andMe: tab-separated rsid, chromosome, position, genotype. The column
// header is itself a comment. Haploid X, Y and MT calls are single letters.
type twentyThreeAndMeParser struct{}

var twentyThreeAndMeDialect = dialect{
	format:     snp.TwentyThreeAndMe,
	comment:    twentyThreeAndMeComment,
	header:     containsRsid,
	split:      func(line string) (record, string) { return splitColumns(strings.Split(line, "\t"), 4) },
	singleChar: true,
	chromHint:  standardChromHint,
}

func (twentyThreeAndMeParser) Format() snp.Format { return snp.TwentyThreeAndMe }

func (twentyThreeAndMeParser) Parse(content string, file int, opts Options) snp.ParseResult {
	return twentyThreeAndMeDialect.parse(content, file, opts)
}

// MyHeritage: quoted CSV "RSID","CHROMOSOME","POSITION","RESULT".
type myHeritageParser struct{}

var myHeritageDialect = dialect{
	format:    snp.MyHeritage,
	comment:   myHeritageComment,
	header:    containsRsid,
	split:     func(line string) (record, string) { return splitColumns(splitQuoted(line), 4) },
	chromHint: standardChromHint,
}

func (myHeritageParser) Format() snp.Format { return snp.MyHeritage }

func (myHeritageParser) Parse(content string, file int, opts Options) snp.ParseResult {
	return myHeritageDialect.parse(content, file, opts)
}

// FamilyTreeDNA: CSV with or without quotes. Identifiers are often
// vendor-internal, e.g. "2010-08-Y-1221".
type ftdnaParser struct{}

var ftdnaDialect = dialect{
	format:    snp.FTDNA,
	header:    containsRsid,
	split:     func(line string) (record, string) { return splitColumns(splitQuoted(line), 4) },
	chromHint: standardChromHint,
}

func (ftdnaParser) Format() snp.Format { return snp.FTDNA }

func (ftdnaParser) Parse(content string, file int, opts Options) snp.ParseResult {
	return ftdnaDialect.parse(content, file, opts)
}

// LivingDNA: whitespace-separated rsid, chromosome, position, genotype.
// Indels are reported as a single run of bases.
type livingDNAParser struct{}

var livingDNADialect = dialect{
	format:    snp.LivingDNA,
	comment:   livingDNAComment,
	header:    containsRsid,
	split:     func(line string) (record, string) { return splitColumns(strings.Fields(line), 4) },
	multibase: true,
	chromHint: standardChromHint,
}

func (livingDNAParser) Format() snp.Format { return snp.LivingDNA }

func (livingDNAParser) Parse(content string, file int, opts Options) snp.ParseResult {
	return livingDNADialect.parse(content, file, opts)
}
