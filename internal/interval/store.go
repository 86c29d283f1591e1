// Package interval holds the annotation data model: labelled time ranges on
// one media source, the many-to-many match relation between two sources, and
// the CSV logs both are persisted to.
package interval

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrReadOnly        = errors.New("interval store is load-only")
	ErrUnknownInterval = errors.New("unknown interval")
)

// Interval is a [Start, End] range in seconds on one media timeline.
type Interval struct {
	ID      int
	Start   float64
	End     float64
	Matched bool
}

// New returns an interval with its bounds ordered.
func New(id int, start, end float64) Interval {
	if start > end {
		start, end = end, start
	}
	return Interval{ID: id, Start: start, End: end}
}

func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// String renders the interval the way it is logged.
func (iv Interval) String() string {
	return FormatTime(iv.Start) + " - " + FormatTime(iv.End)
}

// Store is the ordered interval list of one media source. Ids equal the
// position in the list.
type Store struct {
	path      string
	intervals []Interval
	log       *logWriter
}

// LoadStore reads an interval log in load-only mode. A missing file gives an
// empty store.
func LoadStore(path string) (*Store, error) {
	records, err := readLog(path, IntervalHeader)
	if err != nil {
		return nil, err
	}

	intervals := make([]Interval, 0, len(records))
	for _, rec := range records {
		start, err := ParseTime(rec.fields[0])
		if err != nil {
			return nil, &RowError{Path: path, Line: rec.line, Err: err}
		}
		end, err := ParseTime(rec.fields[1])
		if err != nil {
			return nil, &RowError{Path: path, Line: rec.line, Err: err}
		}
		intervals = append(intervals, New(0, start, end))
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
	for i := range intervals {
		intervals[i].ID = i
	}

	return &Store{path: path, intervals: intervals}, nil
}

// OpenAppendStore loads an interval log and keeps it open so new intervals
// can be appended.
func OpenAppendStore(path string) (*Store, error) {
	s, err := LoadStore(path)
	if err != nil {
		return nil, err
	}
	lw, err := openLogWriter(path, IntervalHeader)
	if err != nil {
		return nil, err
	}
	s.log = lw
	return s, nil
}

// NewMemoryStore builds a load-only store from bounds, ordered as given.
func NewMemoryStore(bounds ...[2]float64) *Store {
	s := &Store{}
	for i, b := range bounds {
		s.intervals = append(s.intervals, New(i, b[0], b[1]))
	}
	return s
}

func (s *Store) Path() string { return s.path }

func (s *Store) Len() int { return len(s.intervals) }

// Appendable reports whether Append is allowed.
func (s *Store) Appendable() bool { return s.log != nil }

func (s *Store) At(i int) (Interval, bool) {
	if i < 0 || i >= len(s.intervals) {
		return Interval{}, false
	}
	return s.intervals[i], true
}

func (s *Store) ByID(id int) (Interval, bool) {
	return s.At(id)
}

func (s *Store) Has(id int) bool {
	return id >= 0 && id < len(s.intervals)
}

// All returns a copy of the intervals in store order.
func (s *Store) All() []Interval {
	out := make([]Interval, len(s.intervals))
	copy(out, s.intervals)
	return out
}

// Append adds an interval, swapping bounds if needed, and persists one row.
// Memory is left untouched when the row cannot be written.
func (s *Store) Append(start, end float64) (Interval, error) {
	if s.log == nil {
		return Interval{}, ErrReadOnly
	}
	iv := New(len(s.intervals), start, end)
	if err := s.log.write(intervalRecord(iv.Start, iv.End)); err != nil {
		return Interval{}, err
	}
	s.intervals = append(s.intervals, iv)
	return iv, nil
}

// FindByBounds looks up an interval by exact numeric bounds.
func (s *Store) FindByBounds(start, end float64) (Interval, bool) {
	for _, iv := range s.intervals {
		if iv.Start == start && iv.End == end {
			return iv, true
		}
	}
	return Interval{}, false
}

// findByLoggedBounds resolves bounds read back from a log. Exact matches win;
// otherwise bounds are compared at the whole-second precision rows are
// written with. It returns the candidate count, and the interval only when
// exactly one candidate exists.
func (s *Store) findByLoggedBounds(start, end float64) (Interval, int) {
	var found Interval
	n := 0
	for _, iv := range s.intervals {
		if iv.Start == start && iv.End == end {
			found = iv
			n++
		}
	}
	if n == 0 {
		for _, iv := range s.intervals {
			if wholeSecond(iv.Start) == start && wholeSecond(iv.End) == end {
				found = iv
				n++
			}
		}
	}
	if n != 1 {
		return Interval{}, n
	}
	return found, n
}

func (s *Store) setMatched(id int, matched bool) {
	if s.Has(id) {
		s.intervals[id].Matched = matched
	}
}

// Close flushes and closes the append log. It is safe to call twice.
func (s *Store) Close() error {
	if s.log == nil {
		return nil
	}
	err := s.log.close()
	s.log = nil
	return err
}

// saveStore writes intervals as a complete interval log, replacing path.
func saveStore(path string, intervals []Interval) error {
	records := make([][]string, 0, len(intervals))
	for _, iv := range intervals {
		records = append(records, intervalRecord(iv.Start, iv.End))
	}
	if err := writeLogAtomic(path, IntervalHeader, records); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
