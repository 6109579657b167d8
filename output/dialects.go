package output

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/dasnellings/dnamerge/snp"
)

func writeMyHeritage(w *bufio.Writer, markers []snp.Marker, opts Options) int {
	w.WriteString("##fileformat=MyHeritage\n")
	w.WriteString("##format=MHv1.0\n")
	w.WriteString("##source=" + opts.Source + "\n")
	w.WriteString("##timestamp=" + timestamp(opts.Now) + "\n")
	w.WriteString("##merged_files=" + strconv.Itoa(opts.FileCount) + "\n")
	w.WriteString("#\n")
	w.WriteString("# Merged DNA raw data.\n")
	w.WriteString("# For each SNP, we provide the identifier, chromosome number, base pair position and genotype.\n")
	w.WriteString("# " + disclaimer + "\n")
	w.WriteString("RSID,CHROMOSOME,POSITION,RESULT\n")

	var excluded int
	for _, m := range markers {
		// no MyHeritage spelling for the pseudoautosomal region
		if snp.IsPseudoautosomal(m.Chromosome) {
			excluded++
			continue
		}
		w.WriteString(quote(m.ID) + "," +
			quote(snp.ChromosomeForMyHeritage(m.Chromosome)) + "," +
			quote(m.Position) + "," +
			quote(snp.NormalizeForFormat(m.Genotype, snp.MyHeritage)) + "\n")
	}
	return excluded
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeAncestry(w *bufio.Writer, markers []snp.Marker, opts Options) int {
	w.WriteString("#AncestryDNA merged data\n")
	w.WriteString("#Generated by " + opts.Source + " at: " + timestamp(opts.Now) + "\n")
	w.WriteString("#Merged from " + strconv.Itoa(opts.FileCount) + " files\n")
	w.WriteString("#" + disclaimer + "\n")
	w.WriteString("rsid\tchromosome\tposition\tallele1\tallele2\n")

	var a1, a2 string
	for _, m := range markers {
		a1, a2 = splitAlleles(snp.NormalizeForFormat(m.Genotype, snp.Ancestry))
		w.WriteString(m.ID + "\t" + snp.ChromosomeForAncestry(m.Chromosome) + "\t" + m.Position + "\t" + a1 + "\t" + a2 + "\n")
	}
	return 0
}

// splitAlleles separates a genotype into its two alleles. Indels are
// stored as "allele1 allele2".
func splitAlleles(g string) (string, string) {
	if a, b, found := strings.Cut(g, " "); found {
		return a, b
	}
	switch len(g) {
	case 0:
		return "", ""
	case 1:
		return g, ""
	}
	return g[:1], g[1:2]
}
