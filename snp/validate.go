package snp

import (
	"strconv"
	"strings"
)

var validPairs = map[string]bool{
	"AA": true, "AT": true, "AC": true, "AG": true,
	"TA": true, "TT": true, "TC": true, "TG": true,
	"CA": true, "CT": true, "CC": true, "CG": true,
	"GA": true, "GT": true, "GC": true, "GG": true,
	// no-calls, deletions and insertions
	"--": true, "00": true, "DD": true, "II": true, "DI": true, "ID": true,
}

var validSingle = map[string]bool{
	"A": true, "T": true, "C": true, "G": true,
	"-": true, "0": true, "D": true, "I": true,
}

// ValidateGenotype reports whether g is a nucleotide pair or a special
// marker. Hemizygous single-character calls are accepted only when
// allowSingleChar is set.
func ValidateGenotype(g string, allowSingleChar bool) bool {
	n := strings.ToUpper(strings.TrimSpace(g))
	if validPairs[n] {
		return true
	}
	return allowSingleChar && validSingle[n]
}

func IsMissingValue(g string) bool {
	n := strings.ToUpper(strings.TrimSpace(g))
	return n == "--" || n == "00"
}

// IsValidChromosome accepts 1-22, X, Y, XY, MT and M for every dialect.
// Ancestry additionally encodes X, Y, PAR and MT as 23-26.
func IsValidChromosome(c string, format Format) bool {
	chr := strings.ToUpper(strings.TrimSpace(c))
	switch chr {
	case "X", "Y", "XY", "MT", "M":
		return true
	}
	num, err := strconv.Atoi(chr)
	if err != nil {
		return false
	}
	if num >= 1 && num <= 22 {
		return true
	}
	return format == Ancestry && num >= 23 && num <= 26
}

// IsMultibaseGenotype reports whether g is an indel call: more than two
// characters, all of them A, C, G or T.
func IsMultibaseGenotype(g string) bool {
	n := strings.ToUpper(strings.TrimSpace(g))
	if len(n) <= 2 {
		return false
	}
	for i := 0; i < len(n); i++ {
		switch n[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

// SplitMultibaseGenotype returns "allele1 allele2". Odd-length calls put
// the shorter allele first. Anything else is returned unchanged.
func SplitMultibaseGenotype(g string) string {
	if !IsMultibaseGenotype(g) {
		return g
	}
	n := strings.ToUpper(strings.TrimSpace(g))
	half := len(n) / 2
	return n[:half] + " " + n[half:]
}

func IsStandardID(id string) bool {
	s := strings.ToLower(strings.TrimSpace(id))
	if len(s) < 3 || !strings.HasPrefix(s, "rs") {
		return false
	}
	for i := 2; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func IsValidPosition(p string) bool {
	num, err := strconv.Atoi(strings.TrimSpace(p))
	return err == nil && num > 0
}

// HasInvalidPosition is true for the vendor placeholders used on unmapped
// markers: chromosome "0" or a non-positive position.
func HasInvalidPosition(c, p string) bool {
	return strings.TrimSpace(c) == "0" || !IsValidPosition(p)
}

// ShouldKeepInvalidPosition decides whether a row with an invalid position
// survives. Standard rs identifiers are always kept; other identifiers only
// when they carry a call. Indel markers count as calls.
func ShouldKeepInvalidPosition(id, genotype string, enabled bool) bool {
	if !enabled {
		return false
	}
	if IsStandardID(id) {
		return true
	}
	return !IsMissingValue(genotype)
}
