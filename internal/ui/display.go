package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Tracker renders a single-line processed/discovered asset counter
type Tracker struct {
	Prefix   string
	Interval time.Duration

	mu   sync.Mutex
	out  io.Writer
	last time.Time
}

func NewTracker(prefix string) *Tracker {
	return &Tracker{
		Prefix:   prefix,
		Interval: 100 * time.Millisecond,
		out:      Output,
	}
}

// Update redraws the counter, at most once per Interval
func (t *Tracker) Update(processed, discovered, failed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		return
	}
	t.last = now
	t.render(processed, discovered, failed)
}

// Done draws the final state and ends the line
func (t *Tracker) Done(processed, discovered, failed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.render(processed, discovered, failed)
	fmt.Fprintln(t.out)
}

func (t *Tracker) render(processed, discovered, failed int64) {
	fmt.Fprintf(t.out, "\r%s %s assets (%s failed)   ",
		blue.Sprint(t.Prefix),
		cyan.Sprintf("%d/%d", processed, discovered),
		red.Sprint(failed),
	)
}

// PrintTable prints items under a title, showing at most limit rows
func PrintTable(items []string, title string, limit int) {
	Section(title)
	rule := strings.Repeat("-", 60)

	fmt.Fprintln(Output, rule)
	fmt.Fprintf(Output, "%-5s | %s\n", "#", "Item")
	fmt.Fprintln(Output, rule)

	shown := len(items)
	if shown > limit {
		shown = limit
	}
	for i := 0; i < shown; i++ {
		item := items[i]
		if len(item) > 50 {
			item = "..." + item[len(item)-47:]
		}
		fmt.Fprintf(Output, "%-5d | %s\n", i+1, green.Sprint(item))
	}

	if len(items) > limit {
		fmt.Fprintln(Output, rule)
		yellow.Fprintf(Output, "... and %d more not shown (displaying first %d).\n", len(items)-limit, limit)
	}
	fmt.Fprintln(Output, rule)
}
