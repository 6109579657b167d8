package kits

import (
	"regexp"
	"strings"

	"github.com/dasnellings/dnamerge/snp"
)

var (
	livingDNAChip      = regexp.MustCompile(`(?i)genotype chip:\s*(\S+)`)
	livingDNAVersion   = regexp.MustCompile(`(?i)file version:\s*(\S+)`)
	livingDNAReference = regexp.MustCompile(`(?i)human genome reference build\s*(\d+)`)
)

// valueAfter returns the trimmed text following key in line, matching key
// case-insensitively.
func valueAfter(line, key string) (string, bool) {
	idx := strings.Index(strings.ToLower(line), strings.ToLower(key))
	if idx < 0 {
		return "", false
	}
	v := strings.TrimSpace(line[idx+len(key):])
	return v, v != ""
}

// myHeritageComment reads "##chip=", "##format=" and "##reference=" lines.
func myHeritageComment(line string, md *snp.Metadata) {
	lower := strings.ToLower(line)
	switch {
	case strings.HasPrefix(lower, "##chip="):
		md.Chip = strings.TrimSpace(line[len("##chip="):])
	case strings.HasPrefix(lower, "##format="):
		md.Version = strings.TrimSpace(line[len("##format="):])
	case strings.HasPrefix(lower, "##reference="):
		md.Reference = strings.TrimSpace(line[len("##reference="):])
	}
}

// twentyThreeAndMeComment reads the file_id, signature and timestamp lines
// of a 23andMe preamble.
func twentyThreeAndMeComment(line string, md *snp.Metadata) {
	if v, ok := valueAfter(line, "file_id:"); ok {
		md.FileID = v
	}
	if v, ok := valueAfter(line, "signature:"); ok {
		md.Signature = v
	}
	if v, ok := valueAfter(line, "timestamp:"); ok {
		md.Timestamp = v
	}
}

func livingDNAComment(line string, md *snp.Metadata) {
	if m := livingDNAChip.FindStringSubmatch(line); m != nil {
		md.Chip = m[1]
	}
	if m := livingDNAVersion.FindStringSubmatch(line); m != nil {
		md.Version = m[1]
	}
	if m := livingDNAReference.FindStringSubmatch(line); m != nil {
		md.Reference = m[1]
	}
}
