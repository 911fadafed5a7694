package credits

import (
	"sort"
	"strings"

	"rollcall/internal/textutil"
)

// DefaultValuesPerLabel bounds each label in a trimmed view.
const DefaultValuesPerLabel = 12

// Entry is one label and the values shown beneath it on a credits frame.
type Entry struct {
	Label  string   `json:"key"`
	Values []string `json:"values"`
}

// Extraction is the structured OCR result for a single frame.
type Extraction struct {
	Entries []Entry `json:"entries"`
}

// Empty reports whether the extraction carries no entries.
func (e Extraction) Empty() bool {
	return len(e.Entries) == 0
}

// Snapshot accumulates every distinct value observed under each label while
// one media file is processed. Values are only ever added.
//
// A Snapshot is owned by a single loop and is not safe for concurrent use.
type Snapshot struct {
	labels map[string]map[string]struct{}
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{labels: make(map[string]map[string]struct{})}
}

// Merge folds the extraction into the snapshot. Labels are trimmed and
// skipped when empty; values are whitespace-collapsed and skipped when empty.
// Merging the same extraction twice has no further effect.
func (s *Snapshot) Merge(extraction Extraction) {
	if s.labels == nil {
		s.labels = make(map[string]map[string]struct{})
	}
	for _, entry := range extraction.Entries {
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			continue
		}
		bucket := s.labels[label]
		for _, raw := range entry.Values {
			value := textutil.CollapseSpace(raw)
			if value == "" {
				continue
			}
			if bucket == nil {
				bucket = make(map[string]struct{})
				s.labels[label] = bucket
			}
			bucket[value] = struct{}{}
		}
	}
}

// Len returns the number of labels held.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// ValueCount returns the total number of distinct values across labels.
func (s *Snapshot) ValueCount() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, values := range s.labels {
		total += len(values)
	}
	return total
}

// Trim returns a read-only view with each label's values sorted and cut to
// perKey entries. A non-positive perKey uses DefaultValuesPerLabel. The
// snapshot is not modified.
func (s *Snapshot) Trim(perKey int) View {
	if perKey <= 0 {
		perKey = DefaultValuesPerLabel
	}
	view := make(View)
	if s == nil {
		return view
	}
	for label, bucket := range s.labels {
		values := make([]string, 0, len(bucket))
		for value := range bucket {
			values = append(values, value)
		}
		sort.Strings(values)
		if len(values) > perKey {
			values = values[:perKey]
		}
		view[label] = values
	}
	return view
}

// View is a bounded, deterministic projection of a snapshot.
type View map[string][]string

// Labels returns the view's labels in sorted order.
func (v View) Labels() []string {
	labels := make([]string, 0, len(v))
	for label := range v {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
