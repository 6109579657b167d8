// Package merge reconciles the markers of several parsed exports into one
// set keyed by identifier. Files are ordered by priority, the first file
// being the most trusted.
package merge

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/dasnellings/dnamerge/progress"
	"github.com/dasnellings/dnamerge/snp"
)

// Resolution selects how a disagreement between files is settled.
type Resolution int

const (
	Priority Resolution = iota
	Consensus
)

func (r Resolution) String() string {
	if r == Consensus {
		return "consensus"
	}
	return "priority"
}

func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "priority", "":
		return Priority, nil
	case "consensus":
		return Consensus, nil
	}
	return Priority, fmt.Errorf("unrecognized conflict resolution %q", s)
}

type Options struct {
	// FillMissing prefers the highest priority file that has a call over
	// strict file order.
	FillMissing bool
	Resolution  Resolution
}

// Coverage summarizes which files reported the merged markers.
type Coverage struct {
	PerFile     []int
	SharedByAll int
	Unique      int
}

type Result struct {
	Markers   []snp.Marker
	Conflicts []snp.ConflictEntry
	Skipped   []snp.SkippedEntry
	Metadata  []snp.Metadata
	Coverage  Coverage
}

// entry is one indexed identifier. Chromosome and position come from the
// first file that reported it.
type entry struct {
	marker   snp.Marker
	slots    []snp.Slot
	reported *bitset.BitSet
}

// MergeN indexes every marker of files, resolves conflicting calls
// according to opts and returns the markers in genomic order. Progress is
// reported as 0-60 while indexing, 60-90 while resolving and 90-100 while
// ordering.
func MergeN(files []snp.ParseResult, opts Options, fn progress.Func) Result {
	tracker := progress.NewTracker(fn, progress.StageMerge, -1)
	ans := Result{Metadata: make([]snp.Metadata, len(files))}

	entries, skipped := index(files, tracker)
	ans.Skipped = skipped
	for i := range files {
		ans.Metadata[i] = files[i].Metadata
	}
	tracker.Report(60)

	ans.Conflicts = resolve(entries, opts, tracker)
	tracker.Report(90)

	ans.Coverage = coverage(entries, len(files))
	ans.Markers = make([]snp.Marker, len(entries))
	for i := range entries {
		ans.Markers[i] = entries[i].marker
	}
	sortMarkers(ans.Markers)
	tracker.Report(100)
	return ans
}

func index(files []snp.ParseResult, tracker *progress.Tracker) ([]entry, []snp.SkippedEntry) {
	var total, done int
	for i := range files {
		total += len(files[i].Markers)
	}

	var entries []entry
	var skipped []snp.SkippedEntry
	byID := make(map[string]int, total)
	for f := range files {
		for _, s := range files[f].Skipped {
			s.File = f
			skipped = append(skipped, s)
		}
		for i, m := range files[f].Markers {
			done++
			if i > 0 && i%progress.BatchSize == 0 {
				tracker.Report(progress.Scaled(done, total, 0, 60, 59))
			}
			if idx, found := byID[m.ID]; found {
				entries[idx].slots[f] = snp.Slot{Genotype: m.Genotype, Reported: true}
				entries[idx].reported.Set(uint(f))
				continue
			}
			m.File = f
			e := entry{
				marker:   m,
				slots:    make([]snp.Slot, len(files)),
				reported: bitset.New(uint(len(files))),
			}
			e.slots[f] = snp.Slot{Genotype: m.Genotype, Reported: true}
			e.reported.Set(uint(f))
			byID[m.ID] = len(entries)
			entries = append(entries, e)
		}
	}
	return entries, skipped
}

func resolve(entries []entry, opts Options, tracker *progress.Tracker) []snp.ConflictEntry {
	var conflicts []snp.ConflictEntry
	for i := range entries {
		if i > 0 && i%progress.BatchSize == 0 {
			tracker.Report(progress.Scaled(i, len(entries), 60, 90, 89))
		}
		e := &entries[i]
		if distinctCalls(e.slots) <= 1 {
			continue
		}

		var g, reason string
		var from int
		switch {
		case opts.Resolution == Consensus && len(e.slots) > 2:
			g, from, reason = byConsensus(e.slots)
		case opts.Resolution == Consensus:
			g, from, reason = byPriority(e.slots, true)
		default:
			g, from, reason = byPriority(e.slots, opts.FillMissing)
		}

		slots := make([]snp.Slot, len(e.slots))
		copy(slots, e.slots)
		conflicts = append(conflicts, snp.ConflictEntry{
			ID:         e.marker.ID,
			Chromosome: e.marker.Chromosome,
			Position:   e.marker.Position,
			Files:      slots,
			Chosen:     g,
			ChosenFrom: from,
			Reason:     reason,
		})
		e.marker.Genotype = g
		e.marker.File = from
	}
	return conflicts
}

func coverage(entries []entry, files int) Coverage {
	ans := Coverage{PerFile: make([]int, files)}
	for i := range entries {
		r := entries[i].reported
		n := int(r.Count())
		for f, ok := r.NextSet(0); ok; f, ok = r.NextSet(f + 1) {
			ans.PerFile[f]++
		}
		if n == files {
			ans.SharedByAll++
		}
		if n == 1 {
			ans.Unique++
		}
	}
	return ans
}
