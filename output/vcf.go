package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
	"github.com/vertgenlab/gonomics/vcf"

	"github.com/dasnellings/dnamerge/snp"
)

const vcfHeaderInfo string = "##fileformat=VCFv4.2\n" +
	"##source=dnamerge\n" +
	"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT"

// RefLookup returns the reference base at a 1-based position.
type RefLookup interface {
	Base(chr string, pos int) (string, error)
}

// FastaRef looks up reference bases in an indexed fasta.
type FastaRef struct {
	seeker *fasta.Seeker
}

// OpenFastaRef opens filename and its .fai index.
func OpenFastaRef(filename string) *FastaRef {
	return &FastaRef{seeker: fasta.NewSeeker(filename, filename+".fai")}
}

func (r *FastaRef) Base(chr string, pos int) (string, error) {
	bases, err := fasta.SeekByName(r.seeker, chr, pos-1, pos)
	if err != nil {
		return "", err
	}
	if len(bases) == 0 {
		return "", fmt.Errorf("no reference base at %s:%d", chr, pos)
	}
	return strings.ToUpper(dna.BaseToString(bases[0])), nil
}

func (r *FastaRef) Close() error {
	return r.seeker.Close()
}

type VcfOptions struct {
	Sample string
	// Ref supplies REF alleles. Without it REF is the first called allele
	// and no-calls cannot be placed.
	Ref RefLookup
	// ChrPrefix is prepended to chromosome names, e.g. "chr" for UCSC
	// assemblies. MT is written as M when a prefix is set.
	ChrPrefix string
	Reference string
}

type VcfStats struct {
	Written int
	NoCall  int
	Skipped int
}

// vcfChrom spells a canonical chromosome for a VCF. The pseudoautosomal
// region is placed on X.
func vcfChrom(c, prefix string) (string, bool) {
	chr := snp.ChromosomeForMyHeritage(strings.ToUpper(c))
	switch chr {
	case "XY", "25":
		chr = "X"
	case "MT":
		if prefix != "" {
			chr = "M"
		}
	}
	if snp.ChromosomeSortKey(chr) == 999 {
		return "", false
	}
	return prefix + chr, true
}

func isBase(s string) bool {
	return s == "A" || s == "C" || s == "G" || s == "T"
}

// WriteVcf writes markers as a single-sample VCF. Indel calls, markers
// without a usable position and markers the reference cannot place are
// skipped and counted. Every written chromosome is declared as a contig.
func WriteVcf(w io.Writer, markers []snp.Marker, opts VcfOptions) (VcfStats, error) {
	var stats VcfStats
	records := make([]vcf.Vcf, 0, len(markers))
	var contigs []string
	for _, m := range markers {
		if snp.HasInvalidPosition(m.Chromosome, m.Position) {
			stats.Skipped++
			continue
		}
		chr, ok := vcfChrom(m.Chromosome, opts.ChrPrefix)
		if !ok {
			stats.Skipped++
			continue
		}
		pos, _ := strconv.Atoi(strings.TrimSpace(m.Position))

		g := snp.NormalizeForComparison(m.Genotype)
		noCall := snp.IsMissingValue(g)
		if !noCall && (len(g) != 2 || !isBase(g[:1]) || !isBase(g[1:])) {
			stats.Skipped++
			continue
		}

		var ref string
		switch {
		case opts.Ref != nil:
			base, err := opts.Ref.Base(chr, pos)
			if err != nil || !isBase(base) {
				stats.Skipped++
				continue
			}
			ref = base
		case noCall:
			stats.Skipped++
			continue
		default:
			ref = g[:1]
		}

		curr := vcf.Vcf{Chr: chr, Pos: pos, Id: m.ID, Ref: ref, Filter: ".", Info: ".", Format: []string{"GT"}}
		sample := vcf.Sample{Phase: make([]bool, 2), FormatData: []string{}}
		if noCall {
			sample.Alleles = []int16{-1, -1}
			stats.NoCall++
		} else {
			sample.Alleles = []int16{alleleIndex(g[:1], ref, &curr.Alt), alleleIndex(g[1:], ref, &curr.Alt)}
		}
		if len(curr.Alt) == 0 {
			curr.Alt = []string{"."}
		}
		curr.Samples = []vcf.Sample{sample}
		records = append(records, curr)
		if len(contigs) == 0 || contigs[len(contigs)-1] != chr {
			contigs = appendContig(contigs, chr)
		}
		stats.Written++
	}

	bw := bufio.NewWriter(w)
	vcf.NewWriteHeader(bw, vcfHeader(opts, contigs))
	for i := range records {
		if err := writeRecord(bw, records[i]); err != nil {
			return stats, err
		}
	}
	return stats, bw.Flush()
}

func appendContig(contigs []string, chr string) []string {
	for _, c := range contigs {
		if c == chr {
			return contigs
		}
	}
	return append(contigs, chr)
}

func vcfHeader(opts VcfOptions, contigs []string) vcf.Header {
	lines := strings.Split(vcfHeaderInfo, "\n")
	var header vcf.Header
	header.Text = append(header.Text, lines[:2]...)
	if opts.Reference != "" {
		header.Text = append(header.Text, "##reference="+opts.Reference)
	}
	for _, c := range contigs {
		header.Text = append(header.Text, "##contig=<ID="+c+">")
	}
	header.Text = append(header.Text, lines[2:]...)
	sample := opts.Sample
	if sample == "" {
		sample = "SAMPLE"
	}
	header.Text[len(header.Text)-1] += "\t" + sample
	return header
}

// writeRecord writes one data line. QUAL is unknown for array calls and
// uncalled alleles are written as ".".
func writeRecord(w io.Writer, v vcf.Vcf) error {
	_, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t.\t%s\t%s\t%s\t%s\n", v.Chr, v.Pos, v.Id, v.Ref,
		strings.Join(v.Alt, ","), v.Filter, v.Info, vcf.FormatToString(v.Format), genotypeField(v.Samples[0]))
	return err
}

func genotypeField(s vcf.Sample) string {
	if len(s.Alleles) == 0 {
		return "."
	}
	var sb strings.Builder
	for i, a := range s.Alleles {
		if i > 0 {
			sb.WriteString(vcf.PhasedToString(s.Phase[i]))
		}
		if a < 0 {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(strconv.Itoa(int(a)))
	}
	return sb.String()
}

// alleleIndex returns the GT index of allele, adding it to alt if needed.
func alleleIndex(allele, ref string, alt *[]string) int16 {
	if allele == ref {
		return 0
	}
	for i, a := range *alt {
		if a == allele {
			return int16(i + 1)
		}
	}
	*alt = append(*alt, allele)
	return int16(len(*alt))
}
