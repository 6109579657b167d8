package snp

import (
	"fmt"
	"strings"
)

// MaxSkippedContent bounds how much of a rejected line is kept on a SkippedEntry.
const MaxSkippedContent int = 120

// Format tags the vendor dialect of a raw export.
type Format int

const (
	Unknown Format = iota
	Ancestry
	MyHeritage
	LivingDNA
	TwentyThreeAndMe
	FTDNA
	GenomeStudio
)

var formatNames = []string{
	Unknown:          "unknown",
	Ancestry:         "ancestry",
	MyHeritage:       "myheritage",
	LivingDNA:        "livingdna",
	TwentyThreeAndMe: "23andme",
	FTDNA:            "ftdna",
	GenomeStudio:     "genomestudio",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[Unknown]
	}
	return formatNames[f]
}

// ParseFormat is the inverse of Format.String. It accepts a few common
// spellings of the vendor names.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ancestry", "ancestrydna":
		return Ancestry, nil
	case "myheritage":
		return MyHeritage, nil
	case "livingdna", "living dna":
		return LivingDNA, nil
	case "23andme", "twentythreeandme":
		return TwentyThreeAndMe, nil
	case "ftdna", "familytreedna":
		return FTDNA, nil
	case "genomestudio", "illumina":
		return GenomeStudio, nil
	case "unknown", "":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unrecognized format %q", s)
	}
}

// Marker is one accepted genotype record. File is the index of the input
// file the record currently represents.
type Marker struct {
	ID         string
	Chromosome string
	Position   string
	Genotype   string
	File       int
}

type SkippedEntry struct {
	Line    int
	Content string
	Reason  string
	File    int
}

// NewSkippedEntry truncates content to MaxSkippedContent runes.
func NewSkippedEntry(line int, content, reason string, file int) SkippedEntry {
	if r := []rune(content); len(r) > MaxSkippedContent {
		content = string(r[:MaxSkippedContent])
	}
	return SkippedEntry{Line: line, Content: content, Reason: reason, File: file}
}

// Metadata holds the optional header fields some vendors write as comments.
type Metadata struct {
	Chip      string
	Version   string
	Reference string
	FileID    string
	Signature string
	Timestamp string
}

func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

// Field is a labelled metadata value.
type Field struct {
	Label string
	Value string
}

// Fields returns the populated metadata values in display order.
func (m Metadata) Fields() []Field {
	all := []Field{
		{"Chip", m.Chip},
		{"Version", m.Version},
		{"Reference", m.Reference},
		{"File ID", m.FileID},
		{"Signature", m.Signature},
		{"Timestamp", m.Timestamp},
	}
	ans := make([]Field, 0, len(all))
	for _, f := range all {
		if f.Value != "" {
			ans = append(ans, f)
		}
	}
	return ans
}

// ParseResult is everything a parser extracted from one input file.
type ParseResult struct {
	Markers  []Marker
	Skipped  []SkippedEntry
	Format   Format
	Metadata Metadata
}

// Slot is one file's genotype for a marker. Reported is false when the
// file never listed the marker.
type Slot struct {
	Genotype string
	Reported bool
}

// ConflictEntry records a marker whose files disagree after normalization.
type ConflictEntry struct {
	ID         string
	Chromosome string
	Position   string
	Files      []Slot
	Chosen     string
	ChosenFrom int
	Reason     string
}
