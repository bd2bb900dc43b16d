package wikichars

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// An IDSet remembers every article id handed out in a run.
type IDSet struct {
	mu  sync.Mutex
	ids map[uint64]struct{}
}

// NewIDSet gets an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{ids: map[uint64]struct{}{}}
}

// Add records id, reporting false if it was already present.
func (s *IDSet) Add(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Len is the number of distinct ids seen.
func (s *IDSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// TemplateStats tallies template names the rule table couldn't
// resolve, so the table can be grown offline.
type TemplateStats struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewTemplateStats gets an empty counter.
func NewTemplateStats() *TemplateStats {
	return &TemplateStats{counts: map[string]int64{}}
}

// Add bumps the counter for name.
func (t *TemplateStats) Add(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[name]++
}

// Merge folds another table's counts into this one.
func (t *TemplateStats) Merge(counts map[string]int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range counts {
		t.counts[k] += v
	}
}

// Count gets the current count for name.
func (t *TemplateStats) Count(name string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[name]
}

// Snapshot copies the current counts.
func (t *TemplateStats) Snapshot() map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	rv := make(map[string]int64, len(t.counts))
	for k, v := range t.counts {
		rv[k] = v
	}
	return rv
}

// A TemplateCount is one row of the unresolved template table.
type TemplateCount struct {
	Name  string
	Count int64
}

// Sorted returns the counts, most frequent first.
func (t *TemplateStats) Sorted() []TemplateCount {
	snap := t.Snapshot()
	rv := make([]TemplateCount, 0, len(snap))
	for k, v := range snap {
		rv = append(rv, TemplateCount{k, v})
	}
	sort.Slice(rv, func(i, j int) bool {
		if rv[i].Count != rv[j].Count {
			return rv[i].Count > rv[j].Count
		}
		return rv[i].Name < rv[j].Name
	})
	return rv
}

// Report writes the top n rows (all of them if n <= 0) as an aligned
// two column table.
//
// Template names are frequently CJK, so alignment goes by display
// width rather than rune count.
func (t *TemplateStats) Report(w io.Writer, n int) error {
	rows := t.Sorted()
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}

	width := runewidth.StringWidth("template")
	for _, r := range rows {
		if sw := runewidth.StringWidth(r.Name); sw > width {
			width = sw
		}
	}

	pad := func(s string) string {
		return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
	}

	if _, err := fmt.Fprintf(w, "%s  %s\n", pad("template"), "count"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s  %s\n", pad(r.Name),
			humanize.Comma(r.Count)); err != nil {
			return err
		}
	}
	return nil
}
