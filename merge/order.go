package merge

import (
	"sort"
	"strconv"
	"strings"

	psort "github.com/exascience/pargo/sort"

	"github.com/dasnellings/dnamerge/snp"
)

type keyedMarker struct {
	chrom int
	pos   int
	m     snp.Marker
}

func lessKeyed(a, b *keyedMarker) bool {
	if a.chrom != b.chrom {
		return a.chrom < b.chrom
	}
	return a.pos < b.pos
}

type stableMarkerSorter []keyedMarker

func (s stableMarkerSorter) SequentialSort(i, j int) {
	part := s[i:j]
	sort.SliceStable(part, func(a, b int) bool {
		return lessKeyed(&part[a], &part[b])
	})
}

func (s stableMarkerSorter) NewTemp() psort.StableSorter {
	return stableMarkerSorter(make([]keyedMarker, len(s)))
}

func (s stableMarkerSorter) Len() int {
	return len(s)
}

func (s stableMarkerSorter) Less(i, j int) bool {
	return lessKeyed(&s[i], &s[j])
}

func (s stableMarkerSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stableMarkerSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// sortMarkers orders markers by chromosome rank then numeric position.
// Equal keys keep their input order. Unparsable positions sort as 0.
func sortMarkers(markers []snp.Marker) {
	keyed := make(stableMarkerSorter, len(markers))
	for i, m := range markers {
		pos, err := strconv.Atoi(strings.TrimSpace(m.Position))
		if err != nil {
			pos = 0
		}
		keyed[i] = keyedMarker{chrom: snp.ChromosomeSortKey(m.Chromosome), pos: pos, m: m}
	}
	psort.StableSort(keyed)
	for i := range keyed {
		markers[i] = keyed[i].m
	}
}
