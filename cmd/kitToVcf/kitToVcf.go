package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/biogo/hts/bgzf"
	"github.com/briandowns/spinner"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"

	"github.com/dasnellings/dnamerge/kits"
	"github.com/dasnellings/dnamerge/merge"
	"github.com/dasnellings/dnamerge/output"
	"github.com/dasnellings/dnamerge/pipeline"
	"github.com/dasnellings/dnamerge/snp"
)

func usage() {
	fmt.Print(
		"kitToVcf - Convert consumer DNA raw data exports to a single-sample VCF.\n" +
			"Multiple kits from the same person are merged by priority before conversion.\n" +
			"Usage:\n" +
			"./kitToVcf [options] -kits kit1.txt,kit2.csv -o sample.vcf.gz\n\n")
	flag.PrintDefaults()
}

func main() {
	kitFiles := flag.String("kits", "", "Raw data export. May be a comma-seperated list of files given in priority order.")
	formats := flag.String("formats", "", "Comma-seperated formats matching -kits. Leave an entry empty to detect it, e.g. ',23andme'.")
	fastaFilename := flag.String("ref", "", "Reference fasta file with a .fai index. Without it REF is taken from the called alleles and no-calls are left out.")
	chrPrefix := flag.String("chrPrefix", "", "Prefix added to chromosome names, e.g. 'chr' for hg19.")
	sample := flag.String("sample", "", "Sample name. Defaults to the first kit file name.")
	fillMissing := flag.Bool("fillMissing", true, "Fill no-calls from lower priority kits.")
	outFile := flag.String("o", "stdout", "Output VCF file. Names ending in .gz are bgzipped.")
	flag.Parse()

	if *kitFiles == "" {
		usage()
		log.Fatal("ERROR: at least one kit file is required (-kits)")
	}

	files, fmts, err := splitKits(*kitFiles, *formats)
	if err != nil {
		usage()
		log.Fatalf("ERROR: %s", err)
	}
	if *sample == "" {
		*sample = strings.TrimSuffix(filepath.Base(files[0]), filepath.Ext(files[0]))
	}

	kitToVcf(files, fmts, *fastaFilename, *chrPrefix, *sample, *fillMissing, *outFile)
}

// splitKits splits the -kits and -formats lists and checks they agree.
func splitKits(kitList, formatList string) ([]string, []string, error) {
	files := strings.Split(kitList, ",")
	if len(files) > pipeline.MaxFiles {
		return nil, nil, fmt.Errorf("%d kits given, at most %d can be merged", len(files), pipeline.MaxFiles)
	}
	if formatList == "" {
		return files, nil, nil
	}
	formats := strings.Split(formatList, ",")
	if len(formats) != len(files) {
		return nil, nil, fmt.Errorf("%d formats given for %d kits", len(formats), len(files))
	}
	return files, formats, nil
}

func kitToVcf(files, formats []string, fastaFile, chrPrefix, sample string, fillMissing bool, outFile string) {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Writer = os.Stderr
	s.Suffix = " reading kits"
	s.Start()

	results := make([]snp.ParseResult, len(files))
	for i := range files {
		text, err := pipeline.ReadInput(files[i])
		exception.PanicOnErr(err)
		format := snp.Unknown
		if len(formats) > 0 && formats[i] != "" {
			format, err = snp.ParseFormat(formats[i])
			exception.PanicOnErr(err)
		} else {
			format = kits.Detect(text)
		}
		p, err := kits.ForFormat(format)
		if err != nil {
			s.Stop()
			log.Fatalf("ERROR: %s: %s", files[i], err)
		}
		results[i] = p.Parse(text, i, kits.Options{})
	}

	s.Suffix = " merging"
	res := merge.MergeN(results, merge.Options{FillMissing: fillMissing}, nil)

	s.Suffix = " writing " + outFile
	opts := output.VcfOptions{Sample: sample, ChrPrefix: chrPrefix}
	if fastaFile != "" {
		ref := output.OpenFastaRef(fastaFile)
		defer ref.Close()
		opts.Ref = ref
		opts.Reference = fastaFile
	}

	var stats output.VcfStats
	var err error
	if strings.HasSuffix(outFile, ".gz") {
		// bgzf blocks keep the file readable by tabix.
		f, err := os.Create(outFile)
		exception.PanicOnErr(err)
		bg := bgzf.NewWriter(f, gzip.BestCompression)
		stats, err = output.WriteVcf(bg, res.Markers, opts)
		exception.PanicOnErr(err)
		exception.PanicOnErr(bg.Close())
		exception.PanicOnErr(f.Close())
	} else {
		out := fileio.EasyCreate(outFile)
		stats, err = output.WriteVcf(out, res.Markers, opts)
		exception.PanicOnErr(err)
		exception.PanicOnErr(out.Close())
	}
	s.Stop()

	log.Printf("Wrote %d records (%d no-calls). Left out %d markers without a placeable REF/ALT.", stats.Written, stats.NoCall, stats.Skipped)
	if len(res.Skipped) > 0 {
		log.Printf("%d unparsable rows were ignored.", len(res.Skipped))
	}
}
