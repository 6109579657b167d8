package kits

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasnellings/dnamerge/progress"
	"github.com/dasnellings/dnamerge/snp"
)

func parse(t *testing.T, f snp.Format, content string, file int, opts Options) snp.ParseResult {
	t.Helper()
	p, err := ForFormat(f)
	require.NoError(t, err)
	require.Equal(t, f, p.Format())
	return p.Parse(content, file, opts)
}

func TestAncestryParser(t *testing.T) {
	content := strings.Join([]string{
		"#AncestryDNA raw data download",
		"rsid\tchromosome\tposition\tallele1\tallele2",
		"rs1\t1\t100\tA\tG",
		"rs2\t23\t200\t0\t0",
		"rs3\t27\t300\tA\tA",
		"rs4\t1\t400\tA",
		"",
	}, "\n")
	res := parse(t, snp.Ancestry, content, 2, Options{})

	assert.Equal(t, snp.Ancestry, res.Format)
	assert.Equal(t, []snp.Marker{
		{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG", File: 2},
		{ID: "rs2", Chromosome: "23", Position: "200", Genotype: "00", File: 2},
	}, res.Markers)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, snp.SkippedEntry{Line: 5, Content: "rs3\t27\t300\tA\tA", Reason: "Invalid chromosome: 27 (valid: 1-26, X, Y, MT)", File: 2}, res.Skipped[0])
	assert.Equal(t, 6, res.Skipped[1].Line)
	assert.Equal(t, "Insufficient columns (expected 5)", res.Skipped[1].Reason)
	assert.True(t, res.Metadata.IsZero())
}

func TestTwentyThreeAndMeParser(t *testing.T) {
	content := strings.Join([]string{
		"# This data file generated by 23andMe at: Mon Jan 01 2024",
		"# file_id: abc123",
		"# signature: 0f0f",
		"# timestamp: 2024-01-01 10:00:00",
		"# rsid\tchromosome\tposition\tgenotype",
		"rs1\t1\t100\tag",
		"rs2\tX\t200\tA",
		"rs3\tMT\t300\t--",
		"i700\t0\t0\t--",
		"rs4\t5\t500\tZZ",
	}, "\n")
	res := parse(t, snp.TwentyThreeAndMe, content, 0, Options{})

	require.Len(t, res.Markers, 3)
	assert.Equal(t, "ag", res.Markers[0].Genotype)
	assert.Equal(t, snp.Marker{ID: "rs2", Chromosome: "X", Position: "200", Genotype: "A"}, res.Markers[1])
	assert.Equal(t, "MT", res.Markers[2].Chromosome)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "Invalid position: chromosome=0, position=0", res.Skipped[0].Reason)
	assert.Equal(t, 9, res.Skipped[0].Line)
	assert.Equal(t, "Invalid genotype: ZZ", res.Skipped[1].Reason)

	assert.Equal(t, snp.Metadata{FileID: "abc123", Signature: "0f0f", Timestamp: "2024-01-01 10:00:00"}, res.Metadata)
}

func TestInvalidPositions(t *testing.T) {
	content := strings.Join([]string{
		"rs5\t0\t0\t--",
		"i700\t0\t0\t--",
		"i701\t0\t0\tAG",
		"rs6\t1\t0\tT",
	}, "\n")

	res := parse(t, snp.TwentyThreeAndMe, content, 0, Options{})
	assert.Empty(t, res.Markers)
	assert.Len(t, res.Skipped, 4)

	res = parse(t, snp.TwentyThreeAndMe, content, 0, Options{IncludeInvalidPositions: true})
	require.Len(t, res.Markers, 3)
	assert.Equal(t, snp.Marker{ID: "rs5", Chromosome: "0", Position: "0", Genotype: "--"}, res.Markers[0])
	assert.Equal(t, "i701", res.Markers[1].ID)
	assert.Equal(t, "T", res.Markers[2].Genotype)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Line)
}

func TestMyHeritageParser(t *testing.T) {
	content := strings.Join([]string{
		"##fileformat=MyHeritage",
		"##chip=GSA",
		"##format=MHv1.0",
		"##reference=build37",
		"RSID,CHROMOSOME,POSITION,RESULT",
		`"rs1","1","100","AG"`,
		`"rs2","2","200","ZZ"`,
		`"rs3","3"`,
		`"rs4","","400","CC"`,
	}, "\r\n")
	res := parse(t, snp.MyHeritage, content, 1, Options{})

	assert.Equal(t, []snp.Marker{{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG", File: 1}}, res.Markers)
	require.Len(t, res.Skipped, 3)
	assert.Equal(t, "Invalid genotype: ZZ", res.Skipped[0].Reason)
	assert.Equal(t, 7, res.Skipped[0].Line)
	assert.Equal(t, "Insufficient columns (expected 4)", res.Skipped[1].Reason)
	assert.Equal(t, "Missing required fields", res.Skipped[2].Reason)
	assert.Equal(t, snp.Metadata{Chip: "GSA", Version: "MHv1.0", Reference: "build37"}, res.Metadata)
}

func TestFTDNAParser(t *testing.T) {
	content := strings.Join([]string{
		"RSID,CHROMOSOME,POSITION,RESULT",
		`"rs1","1","100","AA"`,
		"rs2,2,200,CT",
		`"2010-08-Y-1221","Y","300","--"`,
		`"rs3","M","400","A"`,
	}, "\n")
	res := parse(t, snp.FTDNA, content, 0, Options{})

	require.Len(t, res.Markers, 3)
	assert.Equal(t, "rs2", res.Markers[1].ID)
	assert.Equal(t, "CT", res.Markers[1].Genotype)
	assert.Equal(t, "2010-08-Y-1221", res.Markers[2].ID)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Invalid genotype: A", res.Skipped[0].Reason)
}

func TestLivingDNAParser(t *testing.T) {
	content := strings.Join([]string{
		"# Living DNA customer genotype data download file version: 1.0.1",
		"# Genotype chip: GSAv3",
		"# Human Genome Reference Build 37 (GRCh37.p13)",
		"# rsid\tchromosome\tposition\tgenotype",
		"rs1   1  100  AG",
		"rs2\t2\t200\tTAAGTGTAAGTG",
		"rs3\tm\t300\tATA",
	}, "\n")

	res := parse(t, snp.LivingDNA, content, 0, Options{})
	require.Len(t, res.Markers, 1)
	assert.Equal(t, "AG", res.Markers[0].Genotype)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "Skipped multi-base genotype (Indel): TAAGTGTAAGTG", res.Skipped[0].Reason)
	assert.Equal(t, snp.Metadata{Chip: "GSAv3", Version: "1.0.1", Reference: "37"}, res.Metadata)

	res = parse(t, snp.LivingDNA, content, 0, Options{AllowMultibase: true})
	require.Len(t, res.Markers, 3)
	assert.Equal(t, "TAAGTG TAAGTG", res.Markers[1].Genotype)
	assert.Equal(t, "A TA", res.Markers[2].Genotype)
	assert.Equal(t, "MT", res.Markers[2].Chromosome)
	assert.Empty(t, res.Skipped)
}

func TestMultibaseOnlyForLivingDNA(t *testing.T) {
	res := parse(t, snp.TwentyThreeAndMe, "rs1\t1\t100\tTAAGTG", 0, Options{AllowMultibase: true})
	assert.Empty(t, res.Markers)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Invalid genotype: TAAGTG", res.Skipped[0].Reason)
}

func TestGenomeStudioParser(t *testing.T) {
	content := strings.Join([]string{
		"[Header]",
		"GSGT Version\t2.0.4",
		"Processing Date\t5/12/2020 1:23 PM",
		"Content\t\tGSA-24v3-0_A1.bpm",
		"[Data]",
		gsHeader3,
		"rs1\t1\t100\tA\tG\t0.1\t0.2\t0.0\t0.5",
		"rs2\tMT\t200\t-\t-\t0.1\t0.2\t0.0\t0.5",
		"GSA-1\t0\t0\t-\t-\t0.1\t0.2\t0.0\t0.5",
		"rs3\t2",
	}, "\n")
	res := parse(t, snp.GenomeStudio, content, 0, Options{})

	assert.Equal(t, []snp.Marker{
		{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "AG"},
		{ID: "rs2", Chromosome: "MT", Position: "200", Genotype: "--"},
	}, res.Markers)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "Invalid position: chromosome=0, position=0", res.Skipped[0].Reason)
	assert.Equal(t, "Insufficient columns (expected 5)", res.Skipped[1].Reason)
	assert.Equal(t, snp.Metadata{Chip: "GSA-24v3-0_A1.bpm", Version: "2.0.4", Timestamp: "5/12/2020 1:23 PM"}, res.Metadata)
}

func TestGenomeStudioLayouts(t *testing.T) {
	tests := []struct {
		name   string
		header string
		row    string
		want   snp.Marker
	}{
		{"forward", gsHeader1, "rs1\t1\t100\tC\tT\t0\t0\t0\t0", snp.Marker{ID: "rs1", Chromosome: "1", Position: "100", Genotype: "CT"}},
		{"gc score", gsHeader5, "rs1\tX\t100\t0.9\tA\tA\tA\tA\t0\t0\t0\t0\t0\t0\t0\t0", snp.Marker{ID: "rs1", Chromosome: "X", Position: "100", Genotype: "AA"}},
		{"sample", gsHeader6, "S1\trs1\t2\t100\tg\tg\t0\t0\t0\t0", snp.Marker{ID: "rs1", Chromosome: "2", Position: "100", Genotype: "GG"}},
		{"by column name", "SNP Name\tSample ID\tChr\tPosition\tAllele1 - Plus\tAllele2 - Plus", "rs1\tS1\t3\t100\tT\tG", snp.Marker{ID: "rs1", Chromosome: "3", Position: "100", Genotype: "TG"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, snp.GenomeStudio, tt.header+"\n"+tt.row, 0, Options{})
			require.Empty(t, res.Skipped)
			assert.Equal(t, []snp.Marker{tt.want}, res.Markers)
		})
	}
}

func TestGenomeStudioUnknownHeader(t *testing.T) {
	res := parse(t, snp.GenomeStudio, "SNP Name\tFoo\tBar\nrs1\tx\ty", 0, Options{})
	assert.Empty(t, res.Markers)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Unrecognized report header", res.Skipped[0].Reason)
}

func TestParserProgress(t *testing.T) {
	rows := make([]string, 12000)
	for i := range rows {
		rows[i] = fmt.Sprintf("rs%d\t1\t%d\tAG", i+1, i+1)
	}
	var got []int
	fn := func(ev progress.Event) {
		assert.Equal(t, progress.StageParse, ev.Stage)
		assert.Equal(t, 3, ev.File)
		got = append(got, ev.Percent)
	}
	res := parse(t, snp.TwentyThreeAndMe, strings.Join(rows, "\n"), 3, Options{Progress: fn})

	assert.Len(t, res.Markers, 12000)
	assert.Equal(t, []int{42, 83, 100}, got)
}

func TestSkippedContentIsTruncated(t *testing.T) {
	long := "rs1\t1\t100\t" + strings.Repeat("Z", 200)
	res := parse(t, snp.TwentyThreeAndMe, long, 0, Options{})
	require.Len(t, res.Skipped, 1)
	assert.Len(t, []rune(res.Skipped[0].Content), snp.MaxSkippedContent)
}

func TestSplitQuoted(t *testing.T) {
	assert.Equal(t, []string{"a", "b,c", "d", ""}, splitQuoted(`"a","b,c",d,""`))
	assert.Equal(t, []string{`say "hi"`}, splitQuoted(`"say ""hi"""`))
	assert.Equal(t, []string{"a", "", "b"}, splitQuoted("a,,b"))
}

func TestRegistry(t *testing.T) {
	_, err := ForFormat(snp.Unknown)
	assert.Error(t, err)
	assert.Equal(t, []snp.Format{
		snp.Ancestry, snp.MyHeritage, snp.LivingDNA, snp.TwentyThreeAndMe, snp.FTDNA, snp.GenomeStudio,
	}, Formats())
}
