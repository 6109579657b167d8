package output

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasnellings/dnamerge/kits"
	"github.com/dasnellings/dnamerge/snp"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func markers() []snp.Marker {
	return []snp.Marker{
		{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG"},
		{ID: "rs2", Chromosome: "X", Position: "200", Genotype: "A"},
		{ID: "rs3", Chromosome: "XY", Position: "300", Genotype: "CT"},
		{ID: "rs4", Chromosome: "26", Position: "400", Genotype: "00"},
		{ID: "rs5", Chromosome: "5", Position: "500", Genotype: "TAAGTG TAAGTG"},
	}
}

func TestGenerate_MyHeritage(t *testing.T) {
	res, err := Generate(markers(), MyHeritage, Options{FileCount: 3, Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, 1, res.ExcludedPAR)
	lines := strings.Split(res.Text, "\n")
	assert.Equal(t, "##fileformat=MyHeritage", lines[0])
	assert.Equal(t, "##format=MHv1.0", lines[1])
	assert.Equal(t, "##source=dnamerge", lines[2])
	assert.Equal(t, "##timestamp=2024-03-05 14:07:09 UTC", lines[3])
	assert.Equal(t, "##merged_files=3", lines[4])
	assert.Contains(t, res.Text, "RSID,CHROMOSOME,POSITION,RESULT\n")
	assert.Contains(t, res.Text, `"rs1","1","100","AG"`+"\n")
	assert.Contains(t, res.Text, `"rs2","X","200","AA"`+"\n")
	assert.Contains(t, res.Text, `"rs4","MT","400","--"`+"\n")
	assert.NotContains(t, res.Text, "rs3")
}

func TestGenerate_Ancestry(t *testing.T) {
	res, err := Generate(markers(), Ancestry, Options{FileCount: 2, Now: fixedNow, Source: "test"})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExcludedPAR)
	assert.True(t, strings.HasPrefix(res.Text, "#AncestryDNA merged data\n#Generated by test at: 2024-03-05 14:07:09 UTC\n#Merged from 2 files\n"))
	assert.Contains(t, res.Text, "rsid\tchromosome\tposition\tallele1\tallele2\n")
	assert.Contains(t, res.Text, "rs1\t1\t100\tA\tG\n")
	assert.Contains(t, res.Text, "rs2\t23\t200\tA\tA\n")
	assert.Contains(t, res.Text, "rs3\t25\t300\tC\tT\n")
	assert.Contains(t, res.Text, "rs4\t26\t400\t0\t0\n")
	assert.Contains(t, res.Text, "rs5\t5\t500\tTAAGTG\tTAAGTG\n")
}

func TestGenerate_RoundTrip(t *testing.T) {
	for _, d := range []Dialect{MyHeritage, Ancestry} {
		t.Run(d.String(), func(t *testing.T) {
			in := []snp.Marker{
				{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG"},
				{ID: "rs2", Chromosome: "MT", Position: "200", Genotype: "--"},
			}
			res, err := Generate(in, d, Options{FileCount: 1, Now: fixedNow})
			require.NoError(t, err)

			assert.Equal(t, d.Format(), kits.Detect(res.Text))
			p, err := kits.ForFormat(d.Format())
			require.NoError(t, err)
			parsed := p.Parse(res.Text, 0, kits.Options{})
			assert.Empty(t, parsed.Skipped)
			require.Len(t, parsed.Markers, 2)
			assert.Equal(t, "AG", parsed.Markers[0].Genotype)
			assert.True(t, snp.IsMissingValue(parsed.Markers[1].Genotype))
		})
	}
}

func TestDialects(t *testing.T) {
	d, err := ParseDialect("AncestryDNA")
	require.NoError(t, err)
	assert.Equal(t, Ancestry, d)
	assert.Equal(t, "txt", d.Extension())
	assert.Equal(t, "csv", MyHeritage.Extension())
	_, err = ParseDialect("vcf")
	assert.Error(t, err)

	assert.Equal(t, MyHeritage, Opposite(snp.Ancestry))
	assert.Equal(t, Ancestry, Opposite(snp.MyHeritage))
	assert.Equal(t, Ancestry, Opposite(snp.TwentyThreeAndMe))

	_, err = Generate(nil, Dialect(9), Options{})
	assert.Error(t, err)
}

type mapRef map[string]string

func (r mapRef) Base(chr string, pos int) (string, error) {
	b, ok := r[fmt.Sprintf("%s:%d", chr, pos)]
	if !ok {
		return "", errors.New("not found")
	}
	return b, nil
}

func TestWriteVcf_WithReference(t *testing.T) {
	ref := mapRef{"chr1:100": "G", "chr1:150": "C", "chrX:200": "A", "chrM:400": "T", "chr2:50": "A"}
	in := []snp.Marker{
		{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG"},
		{ID: "rs2", Chromosome: "1", Position: "150", Genotype: "AT"},
		{ID: "rs3", Chromosome: "X", Position: "200", Genotype: "A"},
		{ID: "rs4", Chromosome: "26", Position: "400", Genotype: "--"},
		{ID: "rs5", Chromosome: "2", Position: "50", Genotype: "DI"},
		{ID: "rs6", Chromosome: "0", Position: "0", Genotype: "AA"},
		{ID: "rs7", Chromosome: "3", Position: "70", Genotype: "CC"},
	}
	var sb strings.Builder
	stats, err := WriteVcf(&sb, in, VcfOptions{Sample: "kit1", Ref: ref, ChrPrefix: "chr", Reference: "hg19.fa"})
	require.NoError(t, err)

	assert.Equal(t, VcfStats{Written: 4, NoCall: 1, Skipped: 3}, stats)
	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "##fileformat=VCFv4.2\n##source=dnamerge\n##reference=hg19.fa\n"+
		"##contig=<ID=chr1>\n##contig=<ID=chrX>\n##contig=<ID=chrM>\n##FORMAT="))
	assert.NotContains(t, out, "##contig=<ID=chr2>")
	assert.NotContains(t, out, "##contig=<ID=chr3>")
	assert.Contains(t, out, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tkit1\n")
	assert.Contains(t, out, "chr1\t100\trs1\tG\tA\t.\t.\t.\tGT\t1/0\n")
	assert.Contains(t, out, "chr1\t150\trs2\tC\tA,T\t.\t.\t.\tGT\t1/2\n")
	assert.Contains(t, out, "chrX\t200\trs3\tA\t.\t.\t.\t.\tGT\t0/0\n")
	assert.Contains(t, out, "chrM\t400\trs4\tT\t.\t.\t.\t.\tGT\t./.\n")
	assert.NotContains(t, out, "rs5")
	assert.NotContains(t, out, "rs7")
}

func TestWriteVcf_GenotypeColumn(t *testing.T) {
	ref := mapRef{"1:100": "A", "1:200": "A"}
	in := []snp.Marker{
		{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG"},
		{ID: "rs2", Chromosome: "1", Position: "200", Genotype: "GG"},
	}
	var sb strings.Builder
	_, err := WriteVcf(&sb, in, VcfOptions{Ref: ref})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "1\t100\trs1\tA\tG\t.\t.\t.\tGT\t0/1", lines[5])
	assert.Equal(t, "1\t200\trs2\tA\tG\t.\t.\t.\tGT\t1/1", lines[6])
}

func TestWriteVcf_WithoutReference(t *testing.T) {
	in := []snp.Marker{
		{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG"},
		{ID: "rs2", Chromosome: "MT", Position: "200", Genotype: "--"},
		{ID: "rs3", Chromosome: "25", Position: "300", Genotype: "TT"},
	}
	var sb strings.Builder
	stats, err := WriteVcf(&sb, in, VcfOptions{})
	require.NoError(t, err)

	assert.Equal(t, VcfStats{Written: 2, Skipped: 1}, stats)
	assert.Contains(t, sb.String(), "\tFORMAT\tSAMPLE\n")
	assert.Contains(t, sb.String(), "##contig=<ID=1>\n##contig=<ID=X>\n")
	assert.Contains(t, sb.String(), "1\t100\trs1\tA\tG\t.\t.\t.\tGT\t0/1\n")
	assert.Contains(t, sb.String(), "X\t300\trs3\tT\t.\t.\t.\t.\tGT\t0/0\n")
	assert.NotContains(t, sb.String(), "##contig=<ID=MT>")
}

func TestGenerateLog(t *testing.T) {
	conflicts := []snp.ConflictEntry{{
		ID: "rs123", Chromosome: "1", Position: "100",
		Files:  []snp.Slot{{Genotype: "AA", Reported: true}, {Genotype: "AC", Reported: true}, {}},
		Chosen: "AA", ChosenFrom: 0, Reason: "Used File 1 (highest priority)",
	}}
	skipped := []snp.SkippedEntry{{Line: 10, Content: "rs9\t1\t5\tZZ", Reason: "Invalid genotype: ZZ", File: 1}}
	metadata := []snp.Metadata{{FileID: "1234567890abcdef", Signature: "abc123def456", Timestamp: "2026-01-25T08:00:00Z"}, {Chip: "GSA", Version: "MHv1.0"}, {}}

	log := GenerateLog(conflicts, skipped, []string{"23andme.txt", "myheritage.csv", ""}, metadata, LogOptions{ExcludedPAR: 4, RunID: "run-1", Now: fixedNow})

	assert.True(t, strings.HasPrefix(log, "DNA Merge Log\nGenerated: 2024-03-05 14:07:09 UTC\nRun ID: run-1\n"))
	assert.Contains(t, log, "=== FILES ===\nFile 1: 23andme.txt\n  File ID: 1234567890abcdef\n  Signature: abc123def456\n  Timestamp: 2026-01-25T08:00:00Z\nFile 2: myheritage.csv\n  Chip: GSA\n  Version: MHv1.0\nFile 3: N/A\n")
	assert.Contains(t, log, "Files merged: 3\n")
	assert.Contains(t, log, "Conflicts detected: 1\n")
	assert.Contains(t, log, "Invalid rows skipped: 1\n")
	assert.Contains(t, log, "Pseudoautosomal region (PAR) SNPs excluded for MyHeritage format: 4\n")
	assert.Contains(t, log, "=== CONFLICTS (Same RSID, Different Genotypes) ===\n")
	assert.Contains(t, log, "RSID              | Chr | Position  | File 1 | File 2 | File 3 | Chosen | Source  | Resolution Reason\n")
	assert.Contains(t, log, "rs123             | 1   | 100       | AA     | AC     | n/a    | AA     | File 1  | Used File 1 (highest priority)\n")
	assert.Contains(t, log, "=== SKIPPED ROWS (Invalid Data) ===\n")
	assert.Contains(t, log, "2    | 10   | rs9 1 5 ZZ"+strings.Repeat(" ", 32)+" | Invalid genotype: ZZ\n")
	assert.NotContains(t, log, "Additional conflicts")
}

func TestGenerateLog_CompactConflicts(t *testing.T) {
	var conflicts []snp.ConflictEntry
	for i := 0; i < DetailedConflicts+2; i++ {
		conflicts = append(conflicts, snp.ConflictEntry{
			ID: fmt.Sprintf("rs%d", i), Chromosome: "2", Position: "7",
			Files:  []snp.Slot{{Genotype: "CC", Reported: true}, {Genotype: "C", Reported: true}, {Genotype: "CT", Reported: true}},
			Chosen: "CC", ChosenFrom: 0, Reason: "Used File 1 (highest priority)",
		})
	}
	log := GenerateLog(conflicts, nil, []string{"a", "b", "c"}, nil, LogOptions{Now: fixedNow})

	assert.Contains(t, log, "Additional conflicts (2), showing files that differ from the chosen value:\n")
	assert.Contains(t, log, "rs21              | 2   | 7         | F3:CT -> CC (File 1) | Used File 1 (highest priority)\n")
	assert.NotContains(t, log, "F2:C ")
	assert.NotContains(t, log, "Pseudoautosomal")
	assert.NotContains(t, log, "SKIPPED ROWS")
	assert.NotContains(t, log, "Run ID")
}

func TestGenerateLog_LongContentTruncated(t *testing.T) {
	skipped := []snp.SkippedEntry{{Line: 1, Content: strings.Repeat("x", 100), Reason: "r"}}
	log := GenerateLog(nil, skipped, []string{"a"}, nil, LogOptions{Now: fixedNow})
	assert.Contains(t, log, "1    | 1    | "+strings.Repeat("x", 42)+" | r\n")
}
