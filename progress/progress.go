package progress

import "fmt"

// BatchSize is the number of lines or markers processed between progress
// reports.
const BatchSize int = 5000

// Stage names the pipeline phase an Event belongs to.
type Stage string

const (
	StageParse  Stage = "parse"
	StageMerge  Stage = "merge"
	StageOutput Stage = "output"
)

// Event is a progress report. File is the input index for parse events and
// -1 otherwise.
type Event struct {
	Stage   Stage
	File    int
	Percent int
}

// Func receives progress events synchronously at batch boundaries.
type Func func(Event)

// Tracker forwards only strictly increasing percentages, clamped to
// [0, 100], so consumers always see a monotonic sequence.
type Tracker struct {
	fn    Func
	stage Stage
	file  int
	last  int
}

func NewTracker(fn Func, stage Stage, file int) *Tracker {
	return &Tracker{fn: fn, stage: stage, file: file, last: -1}
}

func (t *Tracker) Report(percent int) {
	if t == nil || t.fn == nil {
		return
	}
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	if percent <= t.last {
		return
	}
	t.last = percent
	t.fn(Event{Stage: t.stage, File: t.file, Percent: percent})
}

// Scaled maps done/total onto [lo, hi] and caps the result at limit.
func Scaled(done, total, lo, hi, limit int) int {
	if total <= 0 {
		return lo
	}
	p := lo + int(float64(done)/float64(total)*float64(hi-lo)+0.5)
	if p > limit {
		return limit
	}
	return p
}

// Reporter fans events into a buffered channel for consumers on another
// goroutine.
type Reporter struct {
	ch chan Event
}

func NewReporter() *Reporter {
	return &Reporter{ch: make(chan Event, 64)}
}

// Emit never blocks; events are dropped while the buffer is full.
func (r *Reporter) Emit(ev Event) {
	select {
	case r.ch <- ev:
	default:
	}
}

func (r *Reporter) Func() Func { return r.Emit }

func (r *Reporter) Subscribe() <-chan Event { return r.ch }

func (r *Reporter) Close() { close(r.ch) }

// Format renders an event as a status line.
func Format(ev Event) string {
	if ev.File >= 0 {
		return fmt.Sprintf("  %s file %d: %d%%", ev.Stage, ev.File+1, ev.Percent)
	}
	return fmt.Sprintf("  %s: %d%%", ev.Stage, ev.Percent)
}
