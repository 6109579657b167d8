package merge

import (
	"fmt"
	"strings"

	"github.com/dasnellings/dnamerge/snp"
)

const placeholder string = "--"

// missing treats hemizygous no-calls ("-", "0") like their paired forms.
func missing(g string) bool {
	return snp.IsMissingValue(snp.NormalizeForComparison(g))
}

// distinctCalls counts the different normalized genotypes among the
// reporting files. Missing values count as a genotype of their own.
func distinctCalls(slots []snp.Slot) int {
	var seen []string
	for _, s := range slots {
		if !s.Reported {
			continue
		}
		n := snp.NormalizeForComparison(s.Genotype)
		found := false
		for _, v := range seen {
			if v == n {
				found = true
				break
			}
		}
		if !found {
			seen = append(seen, n)
		}
	}
	return len(seen)
}

func rawOrPlaceholder(s snp.Slot) string {
	if !s.Reported || s.Genotype == "" {
		return placeholder
	}
	return s.Genotype
}

func byPriority(slots []snp.Slot, fillMissing bool) (string, int, string) {
	if !fillMissing {
		return rawOrPlaceholder(slots[0]), 0, "Used File 1 (highest priority)"
	}
	for i, s := range slots {
		if s.Reported && !missing(s.Genotype) {
			return s.Genotype, i, fmt.Sprintf("Filled missing from File %d (highest priority non-missing)", i+1)
		}
	}
	return rawOrPlaceholder(slots[0]), 0, "All files missing, used File 1 placeholder"
}

// tally counts one normalized genotype. Tallies are kept in the order the
// genotypes were first seen so ties resolve to the lowest file index.
type tally struct {
	genotype string
	count    int
	first    int
}

func byConsensus(slots []snp.Slot) (string, int, string) {
	var tallies []tally
	for i, s := range slots {
		if !s.Reported || missing(s.Genotype) {
			continue
		}
		n := snp.NormalizeForComparison(s.Genotype)
		j := 0
		for j < len(tallies) && tallies[j].genotype != n {
			j++
		}
		if j == len(tallies) {
			tallies = append(tallies, tally{genotype: n, first: i})
		}
		tallies[j].count++
	}
	if len(tallies) == 0 {
		return placeholder, 0, "Consensus: All files missing, used File 1 placeholder"
	}

	best := 0
	for j := range tallies {
		if tallies[j].count > tallies[best].count {
			best = j
		}
	}
	var tied []string
	for _, t := range tallies {
		if t.count == tallies[best].count {
			tied = append(tied, t.genotype)
		}
	}

	from := tallies[best].first
	if len(tied) == 1 {
		return slots[from].Genotype, from, fmt.Sprintf("Consensus: %s (%d/%d files)", tallies[best].genotype, tallies[best].count, len(slots))
	}
	// the first tally reaching the top count was seen first
	return slots[from].Genotype, from, fmt.Sprintf("Consensus: Tie between %s, used %s from File %d (priority)",
		strings.Join(tied, ", "), tallies[best].genotype, from+1)
}
