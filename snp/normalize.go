package snp

import (
	"strconv"
	"strings"
)

// NormalizeForComparison upper-cases g and doubles hemizygous calls so
// that "A" and "AA" compare equal.
func NormalizeForComparison(g string) string {
	n := strings.ToUpper(strings.TrimSpace(g))
	if len(n) == 1 {
		return n + n
	}
	return n
}

// NormalizeForFormat prepares a genotype for an output dialect. Ancestry
// spells no-calls "00", MyHeritage spells them "--".
func NormalizeForFormat(g string, target Format) string {
	n := NormalizeForComparison(g)
	switch target {
	case Ancestry:
		if n == "--" {
			return "00"
		}
	case MyHeritage:
		if n == "00" || n == "0 0" {
			return "--"
		}
	}
	return n
}

// ChromosomeSortKey ranks chromosomes 1-22, X, Y, XY, MT. Numeric tokens
// keep their value so Ancestry's 23-26 rank with the letter forms.
// Unrecognized tokens sort last.
func ChromosomeSortKey(c string) int {
	switch strings.ToUpper(strings.TrimSpace(c)) {
	case "X":
		return 23
	case "Y":
		return 24
	case "XY":
		return 25
	case "MT", "M":
		return 26
	}
	num, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return 999
	}
	return num
}

func IsPseudoautosomal(c string) bool {
	chr := strings.ToUpper(strings.TrimSpace(c))
	return chr == "XY" || chr == "25"
}

// ChromosomeForAncestry maps letter chromosomes to Ancestry's numeric codes.
func ChromosomeForAncestry(c string) string {
	switch strings.ToUpper(c) {
	case "X":
		return "23"
	case "Y":
		return "24"
	case "XY":
		return "25"
	case "MT", "M":
		return "26"
	}
	return c
}

// ChromosomeForMyHeritage maps Ancestry's numeric codes to letters. The PAR
// code 25 has no MyHeritage spelling and is returned unchanged.
func ChromosomeForMyHeritage(c string) string {
	switch c {
	case "23":
		return "X"
	case "24":
		return "Y"
	case "26":
		return "MT"
	}
	if strings.ToUpper(c) == "M" {
		return "MT"
	}
	return c
}
